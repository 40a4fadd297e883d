package handlers

import (
	"encoding/json"
	"fmt"

	"main/internal/presence"
	"main/internal/room"
	"main/internal/user"
)

// InteractionHandler handles element-interaction messages: who is currently
// moving, resizing, or editing which element.
type InteractionHandler struct {
	broadcaster Broadcaster
}

func NewInteractionHandler(broadcaster Broadcaster) *InteractionHandler {
	return &InteractionHandler{broadcaster: broadcaster}
}

var allowedActions = map[string]bool{
	"moving":   true,
	"resizing": true,
	"editing":  true,
}

// HandleStart records the interaction and relays it with the user's room
// color. A second start on the same element overwrites the first; the client
// view is last-message-wins.
func (h *InteractionHandler) HandleStart(rm *room.Room, u *user.User, data map[string]interface{}) error {
	elementID, ok := data["elementId"].(string)
	if !ok {
		return fmt.Errorf("missing elementId")
	}
	action, ok := data["action"].(string)
	if !ok || !allowedActions[action] {
		return fmt.Errorf("missing or invalid action")
	}

	rm.Presence.Begin(elementID, presence.Record{
		UserID:   u.ID,
		Username: u.Username,
		Action:   action,
	})

	data["userId"] = u.ID
	data["username"] = u.Username
	data["color"] = rm.GetUserColor(u.ID)

	msg, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal interaction message: %w", err)
	}
	h.broadcaster.Broadcast(rm, msg, u.Connection)
	return nil
}

// HandleEnd clears the interaction and relays the end. Ending an element
// nobody touched is a no-op for the tracker but still relays, so laggy
// clients converge.
func (h *InteractionHandler) HandleEnd(rm *room.Room, u *user.User, data map[string]interface{}) error {
	elementID, ok := data["elementId"].(string)
	if !ok {
		return fmt.Errorf("missing elementId")
	}

	rm.Presence.End(elementID)

	data["userId"] = u.ID
	msg, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal interaction message: %w", err)
	}
	h.broadcaster.Broadcast(rm, msg, u.Connection)
	return nil
}
