package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"main/internal/canvas"
	"main/internal/element"
	"main/internal/presence"
	"main/internal/room"
	"main/internal/user"
)

// PointerHandler drives the server-side drag/resize state machine. Pointer
// moves only advance the session; the terminal placement on release is what
// gets persisted and broadcast.
type PointerHandler struct {
	store       ElementStore
	broadcaster Broadcaster
}

func NewPointerHandler(store ElementStore, broadcaster Broadcaster) *PointerHandler {
	return &PointerHandler{
		store:       store,
		broadcaster: broadcaster,
	}
}

// Handle dispatches one pointer message by phase.
func (h *PointerHandler) Handle(rm *room.Room, u *user.User, data map[string]interface{}) error {
	phase, ok := data["phase"].(string)
	if !ok {
		return fmt.Errorf("missing pointer phase")
	}

	switch phase {
	case "down":
		return h.handleDown(rm, u, data)
	case "move":
		return h.handleMove(u, data)
	case "up", "cancel":
		return h.handleUp(rm, u)
	default:
		return fmt.Errorf("unknown pointer phase: %s", phase)
	}
}

func (h *PointerHandler) handleDown(rm *room.Room, u *user.User, data map[string]interface{}) error {
	if u.Session.Pointer != nil && u.Session.Pointer.Active() {
		return canvas.ErrSessionActive
	}

	elementID, ok := data["elementId"].(string)
	if !ok {
		return fmt.Errorf("missing elementId")
	}
	el, ok := rm.Tree.Get(elementID)
	if !ok {
		return fmt.Errorf("element not found: %s", elementID)
	}

	pointer, ok := pointAt(data, "x", "y")
	if !ok {
		return fmt.Errorf("missing pointer position")
	}
	origin, ok := pointAt(data, "originX", "originY")
	if !ok {
		return fmt.Errorf("missing canvas origin")
	}
	zoom, _ := data["zoom"].(float64)
	snap, _ := data["snap"].(bool)

	sess := canvas.NewSession(zoom, snap)
	placement := canvas.Placement{
		X:      el.Position.X,
		Y:      el.Position.Y,
		Width:  el.Size.Width,
		Height: el.Size.Height,
	}

	mode, _ := data["mode"].(string)
	var action string
	switch mode {
	case "drag":
		if err := sess.StartDrag(placement, pointer, origin); err != nil {
			return err
		}
		action = "moving"
	case "resize":
		handle, _ := data["handle"].(string)
		if err := sess.StartResize(placement, pointer, canvas.Handle(handle)); err != nil {
			return err
		}
		action = "resizing"
	default:
		return fmt.Errorf("unknown pointer mode: %s", mode)
	}

	u.Session.Pointer = sess
	u.Session.PointerElementID = elementID

	rm.Presence.Begin(elementID, presence.Record{
		UserID:   u.ID,
		Username: u.Username,
		Action:   action,
	})

	start := map[string]interface{}{
		"type":      "element-interaction",
		"elementId": elementID,
		"action":    action,
		"userId":    u.ID,
		"username":  u.Username,
		"color":     rm.GetUserColor(u.ID),
	}
	msg, err := json.Marshal(start)
	if err != nil {
		return fmt.Errorf("marshal interaction message: %w", err)
	}
	h.broadcaster.Broadcast(rm, msg, u.Connection)
	return nil
}

// handleMove only advances the session. Intermediate placements are
// optimistic state on the moving client; nothing is broadcast until release.
func (h *PointerHandler) handleMove(u *user.User, data map[string]interface{}) error {
	sess := u.Session.Pointer
	if sess == nil || !sess.Active() {
		return canvas.ErrSessionIdle
	}

	pointer, ok := pointAt(data, "x", "y")
	if !ok {
		return fmt.Errorf("missing pointer position")
	}
	origin, _ := pointAt(data, "originX", "originY")

	_, err := sess.Move(pointer, origin)
	return err
}

func (h *PointerHandler) handleUp(rm *room.Room, u *user.User) error {
	sess := u.Session.Pointer
	elementID := u.Session.PointerElementID
	u.Session.Pointer = nil
	u.Session.PointerElementID = ""

	if sess == nil {
		return canvas.ErrSessionIdle
	}

	placement, active := sess.End()
	if active {
		patch := element.Patch{
			Position: &element.Position{X: placement.X, Y: placement.Y},
			Size:     &element.Size{Width: placement.Width, Height: placement.Height},
		}

		updated, err := rm.Tree.Update(elementID, patch)
		if err == nil {
			if _, err := h.store.UpdateElement(context.Background(), rm.ProjectID, elementID, patch); err != nil {
				return fmt.Errorf("persist placement: %w", err)
			}
			rm.Touch()

			relay := map[string]interface{}{
				"type":    "design-updated",
				"change":  "element-updated",
				"element": updated,
				"userId":  u.ID,
			}
			msg, err := json.Marshal(relay)
			if err != nil {
				return fmt.Errorf("marshal placement message: %w", err)
			}
			h.broadcaster.Broadcast(rm, msg, u.Connection)
		}
	}

	rm.Presence.End(elementID)
	end := map[string]interface{}{
		"type":      "element-interaction-end",
		"elementId": elementID,
		"userId":    u.ID,
	}
	msg, err := json.Marshal(end)
	if err != nil {
		return fmt.Errorf("marshal interaction end: %w", err)
	}
	h.broadcaster.Broadcast(rm, msg, u.Connection)
	return nil
}

func pointAt(data map[string]interface{}, xKey, yKey string) (canvas.Point, bool) {
	x, okX := data[xKey].(float64)
	y, okY := data[yKey].(float64)
	return canvas.Point{X: x, Y: y}, okX && okY
}
