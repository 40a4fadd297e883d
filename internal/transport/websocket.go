package transport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"main/internal/auth"
	"main/internal/handlers"
	"main/internal/middleware"
	"main/internal/room"
	"main/internal/store"
	"main/internal/user"

	"github.com/gorilla/websocket"
)

// ProjectAccess gates room joins on persisted sharing state.
type ProjectAccess interface {
	Access(ctx context.Context, userID, projectID string) error
}

// Handler owns the collaboration channel: the upgrade, the authenticate and
// join-project handshake, and the per-connection read loop.
type Handler struct {
	upgrader      websocket.Upgrader
	ipRateLimiter *middleware.IPRateLimit
	limits        *middleware.Limits
	sessionMgr    *user.SessionManager
	roomManager   *room.Manager
	msgRouter     *handlers.MessageRouter
	broadcaster   *room.Broadcaster
	tokens        *auth.Service
	access        ProjectAccess
	pongWait      time.Duration
}

func NewHandler(
	domains []string,
	ipRateLimiter *middleware.IPRateLimit,
	limits *middleware.Limits,
	sessionMgr *user.SessionManager,
	roomManager *room.Manager,
	msgRouter *handlers.MessageRouter,
	broadcaster *room.Broadcaster,
	tokens *auth.Service,
	access ProjectAccess,
) *Handler {
	return &Handler{
		upgrader: websocket.Upgrader{
			// CORS
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("origin")
				for _, allowed := range domains {
					if origin == strings.TrimSpace(allowed) {
						return true
					}
				}
				return false
			},
		},
		ipRateLimiter: ipRateLimiter,
		limits:        limits,
		sessionMgr:    sessionMgr,
		roomManager:   roomManager,
		msgRouter:     msgRouter,
		broadcaster:   broadcaster,
		tokens:        tokens,
		access:        access,
		pongWait:      60 * time.Second,
	}
}

// GetClientIP: extracts the real client IP from the request
func GetClientIP(r *http.Request) string {
	// Use RemoteAddr only - cannot be spoofed by client
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx] // Remove port
	}
	return ip
}

// HandleWebSocket: upgrades HTTP to WebSocket and runs the handshake
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Check if rate limited
	clientIP := GetClientIP(r)
	if !h.ipRateLimiter.Allow(clientIP) {
		slog.Warn("connection rate limit exceeded", "ip", clientIP)
		http.Error(w, "Too many connections", http.StatusTooManyRequests)
		return
	}

	// Set security headers before upgrade
	w.Header().Set("X-Content-Type-Options", "nosniff")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade connection", "error", err)
		return
	}
	defer conn.Close()

	// Authenticate within the handshake deadline
	claims, err := h.authenticate(conn, 5*time.Second)
	if err != nil {
		slog.Warn("authentication failed", "ip", clientIP, "error", err)
		return
	}

	session := h.sessionMgr.GetOrCreate(claims.UserID, claims.Username)
	u := &user.User{
		ID:         claims.UserID,
		Username:   claims.Username,
		Session:    session,
		Connection: conn,
	}

	authResponse := map[string]interface{}{
		"type":     "authenticated",
		"userId":   u.ID,
		"username": u.Username,
	}
	if err := h.writeJSON(u, authResponse); err != nil {
		slog.Error("failed to send auth response", "error", err)
		return
	}

	// Wait for the join request
	projectID, err := h.readJoin(conn, 5*time.Second)
	if err != nil {
		slog.Warn("join failed", "userId", u.ID, "error", err)
		return
	}

	// Sharing check before opening the room
	ctx := r.Context()
	if err := h.access.Access(ctx, u.ID, projectID); err != nil {
		h.writeJSON(u, map[string]interface{}{
			"type":    "error",
			"message": joinErrorMessage(err),
		})
		slog.Warn("join denied", "userId", u.ID, "projectId", projectID, "error", err)
		return
	}

	rm, err := h.roomManager.JoinRoom(ctx, projectID, u)
	if err != nil {
		h.writeJSON(u, map[string]interface{}{
			"type":    "error",
			"message": err.Error(),
		})
		slog.Warn("failed to join room", "userId", u.ID, "projectId", projectID, "error", err)
		return
	}
	defer h.disconnect(rm, u)

	// Direct ack to the joiner: full state snapshot
	joined := map[string]interface{}{
		"type":         "joined",
		"projectId":    projectID,
		"color":        rm.GetUserColor(u.ID),
		"elements":     rm.Tree.List(),
		"activeUsers":  rm.Roster(),
		"interactions": rm.Presence.Snapshot(),
	}
	if err := h.writeJSON(u, joined); err != nil {
		slog.Error("failed to send join ack", "userId", u.ID, "error", err)
		return
	}

	// Everyone else learns about the newcomer
	h.broadcastJSON(rm, u, map[string]interface{}{
		"type": "user-joined",
		"user": room.RosterEntry{
			UserID:   u.ID,
			Username: u.Username,
			Color:    rm.GetUserColor(u.ID),
		},
		"activeUsers": rm.Roster(),
	})

	slog.Info("user joined project", "userId", u.ID, "projectId", projectID)
	h.run(conn, rm, u)
}

// authenticate reads the first message and validates its token.
func (h *Handler) authenticate(conn *websocket.Conn, timeout time.Duration) (*auth.Claims, error) {
	conn.SetReadDeadline(time.Now().Add(timeout))
	defer conn.SetReadDeadline(time.Time{})

	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil, err
	}

	var authMsg struct {
		Type  string `json:"type"`
		Token string `json:"token"`
	}
	if err := json.Unmarshal(msg, &authMsg); err != nil {
		return nil, err
	}
	if authMsg.Type != "authenticate" {
		return nil, errors.New("expected authenticate message")
	}
	return h.tokens.Parse(authMsg.Token)
}

// readJoin reads the join-project message and returns the project id.
func (h *Handler) readJoin(conn *websocket.Conn, timeout time.Duration) (string, error) {
	conn.SetReadDeadline(time.Now().Add(timeout))
	defer conn.SetReadDeadline(time.Time{})

	_, msg, err := conn.ReadMessage()
	if err != nil {
		return "", err
	}

	var joinMsg struct {
		Type      string `json:"type"`
		ProjectID string `json:"projectId"`
	}
	if err := json.Unmarshal(msg, &joinMsg); err != nil {
		return "", err
	}
	if joinMsg.Type != "join-project" {
		return "", errors.New("expected join-project message")
	}
	if joinMsg.ProjectID == "" {
		return "", errors.New("missing project id")
	}
	return joinMsg.ProjectID, nil
}

// disconnect releases everything the connection held: in-flight interactions
// end, the pointer session drops, and the remaining users get the new roster.
func (h *Handler) disconnect(rm *room.Room, u *user.User) {
	u.Session.Pointer = nil
	u.Session.PointerElementID = ""

	// End this user's interactions so no element stays marked busy
	for _, elementID := range rm.Presence.EndAllBy(u.ID) {
		h.broadcastJSON(rm, u, map[string]interface{}{
			"type":      "element-interaction-end",
			"elementId": elementID,
			"userId":    u.ID,
		})
	}

	rm.Leave(u)

	h.broadcastJSON(rm, u, map[string]interface{}{
		"type": "user-left",
		"user": room.RosterEntry{
			UserID:   u.ID,
			Username: u.Username,
			Color:    rm.GetUserColor(u.ID),
		},
		"activeUsers": rm.Roster(),
	})

	slog.Info("user left project", "userId", u.ID, "projectId", rm.ProjectID)
}

func (h *Handler) writeJSON(u *user.User, v map[string]interface{}) error {
	msg, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return u.WriteMessage(websocket.TextMessage, msg)
}

func (h *Handler) broadcastJSON(rm *room.Room, u *user.User, v map[string]interface{}) {
	msg, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to marshal broadcast", "error", err)
		return
	}
	h.broadcaster.Broadcast(rm, msg, u.Connection)
}

func joinErrorMessage(err error) string {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return "project not found"
	case errors.Is(err, store.ErrForbidden):
		return "no access to project"
	default:
		return "failed to join project"
	}
}

// run: message loop for WebSocket connections
func (h *Handler) run(conn *websocket.Conn, rm *room.Room, u *user.User) {
	pongWait := h.pongWait
	pingPeriod := (pongWait * 9) / 10 // Send pings at 90% of pong deadline

	// Set up pong handler to extend deadline when pong received
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// Start ping ticker in background
	pingTicker := time.NewTicker(pingPeriod)
	defer pingTicker.Stop()

	// Channel to signal when read loop exits
	done := make(chan struct{})
	defer close(done)

	// Ping goroutine
	go func() {
		for {
			select {
			case <-pingTicker.C:
				// Control write; safe to race the broadcast writers
				if err := u.WriteControl(websocket.PingMessage, time.Now().Add(10*time.Second)); err != nil {
					return // Connection dead, ping goroutine exits
				}
			case <-done:
				return // Main loop exited, stop pinging
			}
		}
	}()

	// Main read loop
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			break // Connection dead
		}

		// Validate message size
		if !h.limits.ValidateMessageSize(len(msg)) {
			slog.Warn("message too large", "userId", u.ID, "bytes", len(msg))
			continue // Drop oversized message
		}

		// Check rate limit from session
		if !u.Session.RateLimiter.Allow() {
			slog.Warn("message rate limit exceeded", "userId", u.ID)
			continue // Drop message
		}

		if err := h.msgRouter.Route(rm, u, msg); err != nil {
			slog.Warn("failed to handle message", "userId", u.ID, "error", err)
			continue // Skip message
		}
	}
}
