package handlers

import (
	"encoding/json"
	"fmt"

	"main/internal/element"
	"main/internal/middleware"
	"main/internal/room"
	"main/internal/user"
)

// DesignHandler: handles design mutation messages (add, update, delete)
type DesignHandler struct {
	validator   *element.Validator
	limits      *middleware.Limits
	broadcaster Broadcaster
}

func NewDesignHandler(validator *element.Validator, limits *middleware.Limits, broadcaster Broadcaster) *DesignHandler {
	return &DesignHandler{
		validator:   validator,
		limits:      limits,
		broadcaster: broadcaster,
	}
}

// Handle applies one update-design message to the room's tree mirror and
// relays it to the other participants as design-updated. The change field
// discriminates the mutation kind.
func (h *DesignHandler) Handle(rm *room.Room, u *user.User, data map[string]interface{}) error {
	change, ok := data["change"].(string)
	if !ok {
		return fmt.Errorf("missing change kind")
	}

	switch change {
	case "element-added":
		return h.handleAdded(rm, u, data)
	case "element-updated":
		return h.handleUpdated(rm, u, data)
	case "element-deleted":
		return h.handleDeleted(rm, u, data)
	default:
		return fmt.Errorf("unknown change kind: %s", change)
	}
}

// decodeElement extracts and validates the element payload.
func (h *DesignHandler) decodeElement(rm *room.Room, data map[string]interface{}) (*element.Element, error) {
	elementMsg, ok := data["element"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("missing element data")
	}
	if styles, ok := elementMsg["styles"].(map[string]interface{}); ok {
		if err := h.limits.ValidateStyleComplexity(styles); err != nil {
			return nil, err
		}
	}

	raw, err := json.Marshal(elementMsg)
	if err != nil {
		return nil, fmt.Errorf("re-encode element payload: %w", err)
	}
	el := &element.Element{}
	if err := json.Unmarshal(raw, el); err != nil {
		return nil, fmt.Errorf("decode element payload: %w", err)
	}
	if el.ID == "" {
		return nil, fmt.Errorf("missing element id")
	}
	el.ProjectID = rm.ProjectID

	if err := h.validator.ValidateAndSanitize(el); err != nil {
		return nil, fmt.Errorf("element validation failed: %w", err)
	}
	return el, nil
}

// handleAdded: element-added changes
func (h *DesignHandler) handleAdded(rm *room.Room, u *user.User, data map[string]interface{}) error {
	// Check element limit before adding
	if !h.limits.CanAddElement(rm.Tree) {
		return fmt.Errorf("project at maximum element capacity")
	}

	el, err := h.decodeElement(rm, data)
	if err != nil {
		return err
	}

	rm.Tree.ApplyAdded(el)
	rm.Touch()

	return h.relay(rm, u, data, el)
}

// handleUpdated: element-updated changes
func (h *DesignHandler) handleUpdated(rm *room.Room, u *user.User, data map[string]interface{}) error {
	el, err := h.decodeElement(rm, data)
	if err != nil {
		return err
	}

	// Updates racing a delete drop out silently
	rm.Tree.ApplyUpdated(el)
	rm.Touch()

	return h.relay(rm, u, data, el)
}

// handleDeleted: element-deleted changes
func (h *DesignHandler) handleDeleted(rm *room.Room, u *user.User, data map[string]interface{}) error {
	elementID, ok := data["elementId"].(string)
	if !ok {
		return fmt.Errorf("missing elementId")
	}

	rm.Tree.ApplyDeleted(elementID)
	rm.Touch()

	data["type"] = "design-updated"
	data["elementId"] = h.validator.SanitizeString(elementID)
	data["userId"] = u.ID
	msg, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal broadcast message: %w", err)
	}
	h.broadcaster.Broadcast(rm, msg, u.Connection)
	return nil
}

// relay rebroadcasts the mutation with the sanitized element and sender id.
func (h *DesignHandler) relay(rm *room.Room, u *user.User, data map[string]interface{}, el *element.Element) error {
	data["type"] = "design-updated"
	data["element"] = el
	data["userId"] = u.ID
	msg, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal broadcast message: %w", err)
	}
	h.broadcaster.Broadcast(rm, msg, u.Connection)
	return nil
}
