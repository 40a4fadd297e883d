package handlers

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/gorilla/websocket"

	"main/internal/element"
	"main/internal/middleware"
	"main/internal/room"
	"main/internal/user"
)

// fakeBroadcaster records every relayed message instead of writing sockets.
type fakeBroadcaster struct {
	messages []map[string]interface{}
}

func (f *fakeBroadcaster) Broadcast(rm room.RoomConnections, msg []byte, sender *websocket.Conn) {
	var data map[string]interface{}
	if err := json.Unmarshal(msg, &data); err != nil {
		panic(err)
	}
	f.messages = append(f.messages, data)
}

func (f *fakeBroadcaster) last() map[string]interface{} {
	if len(f.messages) == 0 {
		return nil
	}
	return f.messages[len(f.messages)-1]
}

// fakeStore records placement persistence.
type fakeStore struct {
	updates []element.Patch
	fail    error
}

func (f *fakeStore) UpdateElement(ctx context.Context, projectID, id string, patch element.Patch) (*element.Element, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	f.updates = append(f.updates, patch)
	return &element.Element{ID: id, ProjectID: projectID}, nil
}

func testLimits() *middleware.Limits {
	return middleware.NewLimits(25, 1000, 65536, 500, 5, 200, 30, 10)
}

func testRoom(t *testing.T, u *user.User) *room.Room {
	t.Helper()
	m := room.NewManager(nil, 10, 10)
	rm, err := m.JoinRoom(context.Background(), "p1", u)
	if err != nil {
		t.Fatalf("join room: %v", err)
	}
	return rm
}

func testConnectedUser(id, name string) *user.User {
	return &user.User{ID: id, Username: name, Session: &user.Session{UserID: id, Username: name}}
}

func elementPayload(id, kind, name string, x, y, w, hgt float64) map[string]interface{} {
	return map[string]interface{}{
		"id":       id,
		"type":     kind,
		"name":     name,
		"position": map[string]interface{}{"x": x, "y": y},
		"size":     map[string]interface{}{"width": w, "height": hgt},
	}
}

func newTestRouter(b *fakeBroadcaster, s *fakeStore) *MessageRouter {
	return NewMessageRouter(element.NewValidator(), testLimits(), s, b)
}

func TestDesignAddRelaysAndMirrors(t *testing.T) {
	u := testConnectedUser("u1", "alice")
	rm := testRoom(t, u)
	b := &fakeBroadcaster{}
	router := newTestRouter(b, &fakeStore{})

	msg, _ := json.Marshal(map[string]interface{}{
		"type":    "update-design",
		"change":  "element-added",
		"element": elementPayload("e1", "button", "CTA", 100, 100, 120, 40),
	})
	if err := router.Route(rm, u, msg); err != nil {
		t.Fatalf("route: %v", err)
	}

	if _, ok := rm.Tree.Get("e1"); !ok {
		t.Error("added element should land in the room tree")
	}
	out := b.last()
	if out == nil {
		t.Fatal("mutation should be relayed")
	}
	if out["type"] != "design-updated" || out["change"] != "element-added" {
		t.Errorf("relay envelope wrong: %+v", out)
	}
	if out["userId"] != "u1" {
		t.Errorf("relay should carry the sender id: %+v", out)
	}
}

func TestDesignAddRejectsUnknownType(t *testing.T) {
	u := testConnectedUser("u1", "alice")
	rm := testRoom(t, u)
	b := &fakeBroadcaster{}
	router := newTestRouter(b, &fakeStore{})

	msg, _ := json.Marshal(map[string]interface{}{
		"type":    "update-design",
		"change":  "element-added",
		"element": elementPayload("e1", "blink", "Old", 0, 0, 10, 10),
	})
	if err := router.Route(rm, u, msg); err == nil {
		t.Error("unknown element type should be rejected")
	}
	if len(b.messages) != 0 {
		t.Error("rejected mutation must not be relayed")
	}
}

func TestDesignUpdateAfterDeleteIsSilent(t *testing.T) {
	u := testConnectedUser("u1", "alice")
	rm := testRoom(t, u)
	b := &fakeBroadcaster{}
	router := newTestRouter(b, &fakeStore{})

	msg, _ := json.Marshal(map[string]interface{}{
		"type":    "update-design",
		"change":  "element-updated",
		"element": elementPayload("ghost", "text", "Gone", 0, 0, 10, 10),
	})
	if err := router.Route(rm, u, msg); err != nil {
		t.Fatalf("racing update should not error: %v", err)
	}
	if _, ok := rm.Tree.Get("ghost"); ok {
		t.Error("update must not resurrect a deleted element")
	}
	// the relay still goes out so every client applies the same no-op
	if len(b.messages) != 1 {
		t.Errorf("want 1 relayed message, got %d", len(b.messages))
	}
}

func TestDesignDeleteRelays(t *testing.T) {
	u := testConnectedUser("u1", "alice")
	rm := testRoom(t, u)
	b := &fakeBroadcaster{}
	router := newTestRouter(b, &fakeStore{})

	add, _ := json.Marshal(map[string]interface{}{
		"type":    "update-design",
		"change":  "element-added",
		"element": elementPayload("e1", "text", "Note", 0, 0, 10, 10),
	})
	if err := router.Route(rm, u, add); err != nil {
		t.Fatalf("add: %v", err)
	}

	del, _ := json.Marshal(map[string]interface{}{
		"type":      "update-design",
		"change":    "element-deleted",
		"elementId": "e1",
	})
	if err := router.Route(rm, u, del); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := rm.Tree.Get("e1"); ok {
		t.Error("deleted element should leave the tree")
	}
	out := b.last()
	if out["change"] != "element-deleted" || out["elementId"] != "e1" {
		t.Errorf("delete relay wrong: %+v", out)
	}
}

func TestInteractionLifecycle(t *testing.T) {
	u := testConnectedUser("u1", "alice")
	rm := testRoom(t, u)
	b := &fakeBroadcaster{}
	router := newTestRouter(b, &fakeStore{})

	start, _ := json.Marshal(map[string]interface{}{
		"type":      "element-interaction",
		"elementId": "e1",
		"action":    "editing",
	})
	if err := router.Route(rm, u, start); err != nil {
		t.Fatalf("start: %v", err)
	}
	if rec, ok := rm.Presence.Get("e1"); !ok || rec.UserID != "u1" || rec.Action != "editing" {
		t.Errorf("presence not recorded: %+v ok=%v", rec, ok)
	}
	out := b.last()
	if out["color"] == "" || out["username"] != "alice" {
		t.Errorf("start relay should carry identity and color: %+v", out)
	}

	end, _ := json.Marshal(map[string]interface{}{
		"type":      "element-interaction-end",
		"elementId": "e1",
	})
	if err := router.Route(rm, u, end); err != nil {
		t.Fatalf("end: %v", err)
	}
	if _, ok := rm.Presence.Get("e1"); ok {
		t.Error("presence should clear on end")
	}
}

func TestInteractionRejectsUnknownAction(t *testing.T) {
	u := testConnectedUser("u1", "alice")
	rm := testRoom(t, u)
	router := newTestRouter(&fakeBroadcaster{}, &fakeStore{})

	msg, _ := json.Marshal(map[string]interface{}{
		"type":      "element-interaction",
		"elementId": "e1",
		"action":    "teleporting",
	})
	if err := router.Route(rm, u, msg); err == nil {
		t.Error("unknown action should be rejected")
	}
}

func TestPointerDragLifecycle(t *testing.T) {
	u := testConnectedUser("u1", "alice")
	rm := testRoom(t, u)
	b := &fakeBroadcaster{}
	s := &fakeStore{}
	router := newTestRouter(b, s)

	el, err := rm.Tree.Create(element.CreateAttrs{
		Type: "button", Name: "CTA",
		Position: element.Position{X: 100, Y: 100},
		Size:     element.Size{Width: 120, Height: 40},
	})
	if err != nil {
		t.Fatalf("seed element: %v", err)
	}

	down, _ := json.Marshal(map[string]interface{}{
		"type": "pointer", "phase": "down", "mode": "drag",
		"elementId": el.ID,
		"x":         150.0, "y": 120.0,
		"originX": 50.0, "originY": 20.0,
		"zoom": 1.0, "snap": true,
	})
	if err := router.Route(rm, u, down); err != nil {
		t.Fatalf("down: %v", err)
	}
	if b.last()["type"] != "element-interaction" || b.last()["action"] != "moving" {
		t.Errorf("down should announce the interaction: %+v", b.last())
	}
	if _, ok := rm.Presence.Get(el.ID); !ok {
		t.Error("down should record presence")
	}

	// intermediate moves stay local
	relayed := len(b.messages)
	move, _ := json.Marshal(map[string]interface{}{
		"type": "pointer", "phase": "move",
		"x": 183.0, "y": 156.0,
		"originX": 50.0, "originY": 20.0,
	})
	if err := router.Route(rm, u, move); err != nil {
		t.Fatalf("move: %v", err)
	}
	if len(b.messages) != relayed {
		t.Error("intermediate moves must not broadcast")
	}

	up, _ := json.Marshal(map[string]interface{}{"type": "pointer", "phase": "up"})
	if err := router.Route(rm, u, up); err != nil {
		t.Fatalf("up: %v", err)
	}

	if len(s.updates) != 1 {
		t.Fatalf("release should persist exactly once, got %d", len(s.updates))
	}
	// raw drop point 130,136 snaps to the grid
	if s.updates[0].Position.X != 130 || s.updates[0].Position.Y != 140 {
		t.Errorf("persisted position = %+v, want 130,140", s.updates[0].Position)
	}

	got, _ := rm.Tree.Get(el.ID)
	if got.Position.X != 130 || got.Position.Y != 140 {
		t.Errorf("tree position = %+v, want 130,140", got.Position)
	}
	if _, ok := rm.Presence.Get(el.ID); ok {
		t.Error("up should clear presence")
	}
	if b.last()["type"] != "element-interaction-end" {
		t.Errorf("up should end the interaction: %+v", b.last())
	}
	if u.Session.Pointer != nil {
		t.Error("session should clear on release")
	}
}

func TestPointerMoveWithoutDownFails(t *testing.T) {
	u := testConnectedUser("u1", "alice")
	rm := testRoom(t, u)
	router := newTestRouter(&fakeBroadcaster{}, &fakeStore{})

	move, _ := json.Marshal(map[string]interface{}{
		"type": "pointer", "phase": "move",
		"x": 10.0, "y": 10.0, "originX": 0.0, "originY": 0.0,
	})
	if err := router.Route(rm, u, move); err == nil {
		t.Error("move without an active session should fail")
	}
}
