package handlers

import (
	"encoding/json"
	"fmt"

	"main/internal/element"
	"main/internal/middleware"
	"main/internal/room"
	internalUser "main/internal/user"
)

// MessageRouter routes incoming messages to appropriate handlers
type MessageRouter struct {
	designHandler      *DesignHandler
	interactionHandler *InteractionHandler
	pointerHandler     *PointerHandler
}

func NewMessageRouter(
	validator *element.Validator,
	limits *middleware.Limits,
	store ElementStore,
	broadcaster Broadcaster,
) *MessageRouter {
	return &MessageRouter{
		designHandler:      NewDesignHandler(validator, limits, broadcaster),
		interactionHandler: NewInteractionHandler(broadcaster),
		pointerHandler:     NewPointerHandler(store, broadcaster),
	}
}

// Route: process a message via appropriate handler
func (mr *MessageRouter) Route(rm *room.Room, u *internalUser.User, msg []byte) error {
	var data map[string]interface{}
	if err := json.Unmarshal(msg, &data); err != nil {
		return fmt.Errorf("unmarshal base message: %w", err)
	}

	messageType, ok := data["type"].(string)
	if !ok {
		return fmt.Errorf("missing message type")
	}

	switch messageType {
	case "update-design":
		return mr.designHandler.Handle(rm, u, data)
	case "element-interaction":
		return mr.interactionHandler.HandleStart(rm, u, data)
	case "element-interaction-end":
		return mr.interactionHandler.HandleEnd(rm, u, data)
	case "pointer":
		return mr.pointerHandler.Handle(rm, u, data)
	default:
		return fmt.Errorf("unknown message type: %s", messageType)
	}
}
