package user

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"main/internal/canvas"
)

// Session persists across disconnects so a returning user keeps their
// identity, rate budget, and rejoin hint.
type Session struct {
	UserID      string
	Username    string
	LastProject string
	LastSeen    time.Time
	RateLimiter *rate.Limiter

	// Pointer tracks the in-flight drag or resize on this user's current
	// connection. Only the connection's read loop touches it.
	Pointer          *canvas.Session
	PointerElementID string
}

// User represents one live connection.
type User struct {
	ID         string
	Username   string
	Session    *Session
	Connection *websocket.Conn
	writeMu    sync.Mutex
}

// WriteMessage serializes writes to the connection. gorilla/websocket allows
// only one concurrent writer.
func (u *User) WriteMessage(messageType int, data []byte) error {
	u.writeMu.Lock()
	defer u.writeMu.Unlock()
	return u.Connection.WriteMessage(messageType, data)
}

// WriteControl sends a control frame. Unlike data writes it needs no mutex:
// gorilla's WriteControl may be called concurrently with other connection
// methods, and the deadline travels in the call instead of connection state.
func (u *User) WriteControl(messageType int, deadline time.Time) error {
	return u.Connection.WriteControl(messageType, nil, deadline)
}

// GenerateUUID generates a random id for anonymous identification
func GenerateUUID() string {
	bytes := make([]byte, 16)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
