package room

import (
	"errors"
	"sort"
	"sync"
	"time"

	"main/internal/element"
	"main/internal/presence"
	"main/internal/user"
)

var ErrRoomFull = errors.New("room is full")

// RosterEntry is one participant as reported to clients.
type RosterEntry struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Color    string `json:"color"`
}

// Room is one project's live collaboration state: the connected users, their
// assigned colors, the element tree mirror, and who is touching what.
type Room struct {
	ProjectID      string
	Connections    map[string]*user.User
	UserColors     map[string]string // userID → color (room-specific)
	colorGenerator *user.ColorGenerator
	Tree           *element.Tree
	Presence       *presence.Tracker
	LastActive     time.Time
	CreatedAt      time.Time
	mu             sync.RWMutex
}

func newRoom(projectID string, tree *element.Tree) *Room {
	return &Room{
		ProjectID:      projectID,
		Connections:    make(map[string]*user.User),
		UserColors:     make(map[string]string),
		colorGenerator: user.NewColorGenerator(),
		Tree:           tree,
		Presence:       presence.NewTracker(),
		LastActive:     time.Now(),
		CreatedAt:      time.Now(),
	}
}

// Join: adds user to room and assigns a unique color
func (r *Room) Join(u *user.User, maxRoomSize int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.Connections) >= maxRoomSize {
		return ErrRoomFull
	}

	r.Connections[u.ID] = u

	// Assign color if user doesn't have one in this room yet
	if _, hasColor := r.UserColors[u.ID]; !hasColor {
		r.UserColors[u.ID] = r.colorGenerator.NextColor()
	}

	r.LastActive = time.Now()
	return nil
}

// Leave: remove user from room
func (r *Room) Leave(u *user.User) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.Connections, u.ID)

	r.LastActive = time.Now()
}

// Touch marks the room active after a design mutation.
func (r *Room) Touch() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.LastActive = time.Now()
}

// Roster returns the connected participants sorted by user id so repeated
// snapshots are stable.
func (r *Room) Roster() []RosterEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roster := make([]RosterEntry, 0, len(r.Connections))
	for id, u := range r.Connections {
		roster = append(roster, RosterEntry{
			UserID:   id,
			Username: u.Username,
			Color:    r.UserColors[id],
		})
	}
	sort.Slice(roster, func(i, j int) bool { return roster[i].UserID < roster[j].UserID })
	return roster
}

// GetConnectionCount: returns number of connections in room
func (r *Room) ConnectionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.Connections)
}

// GetConnections: returns snapshot of current connections (for broadcasting)
func (r *Room) GetConnections() map[string]*user.User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// Create a copy to avoid race conditions
	snapshot := make(map[string]*user.User, len(r.Connections))
	for k, v := range r.Connections {
		snapshot[k] = v
	}
	return snapshot
}

// RemoveConnection: removes user connection from room (cleanup after failed broadcast)
func (r *Room) RemoveConnection(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.Connections, userID)
}

// GetUserColor: returns the user's color in this room
func (r *Room) GetUserColor(userID string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.UserColors[userID]
}
