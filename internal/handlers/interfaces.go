package handlers

import (
	"context"

	"main/internal/element"
	"main/internal/room"

	"github.com/gorilla/websocket"
)

// Broadcaster defines the broadcast operation for sending messages to room users
type Broadcaster interface {
	Broadcast(rm room.RoomConnections, msg []byte, sender *websocket.Conn)
}

// ElementStore defines the persistence operations the channel handlers need
type ElementStore interface {
	UpdateElement(ctx context.Context, projectID, id string, patch element.Patch) (*element.Element, error)
}
