package user

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// SessionManager manages user sessions
type SessionManager struct {
	sessions map[string]*Session
	msgRate  rate.Limit
	burst    int
	mu       sync.RWMutex
}

// NewSessionManager creates a new session manager. msgRate and burst seed
// each session's per-user message limiter.
func NewSessionManager(msgRate rate.Limit, burst int) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Session),
		msgRate:  msgRate,
		burst:    burst,
	}
}

// GetOrCreate gets an existing session or creates a new one
func (sm *SessionManager) GetOrCreate(userID, username string) *Session {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	session, exists := sm.sessions[userID]
	if exists {
		session.Username = username
		session.LastSeen = time.Now()
		return session
	}

	session = &Session{
		UserID:      userID,
		Username:    username,
		LastSeen:    time.Now(),
		RateLimiter: rate.NewLimiter(sm.msgRate, sm.burst),
	}
	sm.sessions[userID] = session
	return session
}

// UpdateLastSeen updates the last seen time for a user session
func (sm *SessionManager) UpdateLastSeen(userID string, lastSeen time.Time) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if session, exists := sm.sessions[userID]; exists {
		session.LastSeen = lastSeen
	}
}

// GetLastSeen gets the last seen time for a user session
func (sm *SessionManager) GetLastSeen(userID string) (time.Time, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if session, exists := sm.sessions[userID]; exists {
		return session.LastSeen, true
	}
	return time.Time{}, false
}

// Cleanup removes expired user sessions
func (sm *SessionManager) Cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	now := time.Now()
	for userID, session := range sm.sessions {
		// Remove sessions inactive for 1 hour
		if now.Sub(session.LastSeen) > 1*time.Hour {
			delete(sm.sessions, userID)
		}
	}
}
