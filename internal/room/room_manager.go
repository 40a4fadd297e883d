package room

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"main/internal/element"
	"main/internal/user"
)

var ErrServerFull = errors.New("server at maximum room capacity")

// ElementLoader seeds a new room's tree mirror from persisted state.
type ElementLoader func(ctx context.Context, projectID string) ([]*element.Element, error)

// Manager manages the live rooms, one per open project.
type Manager struct {
	rooms       map[string]*Room
	loader      ElementLoader
	maxRooms    int
	maxRoomSize int
	mu          sync.RWMutex
}

// NewManager creates a new room manager
func NewManager(loader ElementLoader, maxRooms, maxRoomSize int) *Manager {
	return &Manager{
		rooms:       make(map[string]*Room),
		loader:      loader,
		maxRooms:    maxRooms,
		maxRoomSize: maxRoomSize,
	}
}

// getOrCreate returns the project's room, loading the element tree on first
// open. Caller holds mu.
func (rm *Manager) getOrCreate(ctx context.Context, projectID string) (*Room, error) {
	if r, exists := rm.rooms[projectID]; exists {
		return r, nil
	}

	// Check global room limit before creating new room
	if len(rm.rooms) >= rm.maxRooms {
		return nil, ErrServerFull
	}

	tree := element.NewTree(projectID)
	if rm.loader != nil {
		elements, err := rm.loader(ctx, projectID)
		if err != nil {
			return nil, fmt.Errorf("failed to load project elements: %w", err)
		}
		tree.Seed(elements)
	}

	r := newRoom(projectID, tree)
	rm.rooms[projectID] = r
	return r, nil
}

// JoinRoom adds a user to a project's room, opening it if necessary.
func (rm *Manager) JoinRoom(ctx context.Context, projectID string, u *user.User) (*Room, error) {
	if projectID == "" {
		return nil, errors.New("project id missing")
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()

	r, err := rm.getOrCreate(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := r.Join(u, rm.maxRoomSize); err != nil {
		return nil, err
	}

	u.Session.LastProject = projectID
	return r, nil
}

// Cleanup removes expired rooms
func (rm *Manager) Cleanup() {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	now := time.Now()

	// Room removed if 1 hour empty or 24 hours old
	for projectID, r := range rm.rooms {
		r.mu.RLock()
		empty := len(r.Connections) == 0
		inactive := now.Sub(r.LastActive) > 1*time.Hour
		expired := now.Sub(r.CreatedAt) > 24*time.Hour
		r.mu.RUnlock()

		if (inactive && empty) || expired {
			delete(rm.rooms, projectID)
		}
	}
}

// GetRoom: checks if a room exists and returns it
func (rm *Manager) GetRoom(projectID string) (*Room, bool) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	r, exists := rm.rooms[projectID]
	return r, exists
}

// RoomCount returns the total number of open rooms
func (rm *Manager) RoomCount() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	return len(rm.rooms)
}
