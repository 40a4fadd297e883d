package presence

import (
	"sync"
)

// Record: ephemeral "who is doing what" marker for one element. Advisory
// only; it never gates the underlying mutation.
type Record struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Action   string `json:"action"`
}

// Tracker holds the active interaction records for one room. It owns no
// timers: cleanup is driven by explicit end signals and disconnect sweeps.
type Tracker struct {
	records map[string]Record // elementID -> record
	mu      sync.RWMutex
}

func NewTracker() *Tracker {
	return &Tracker{
		records: make(map[string]Record),
	}
}

// Begin upserts the interaction record for an element. A later writer
// overwrites any prior occupant; there is no locking semantic.
func (t *Tracker) Begin(elementID string, rec Record) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.records[elementID] = rec
}

// End removes the record unconditionally, regardless of who began it. Ending
// an element with no active record is a no-op.
func (t *Tracker) End(elementID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.records, elementID)
}

// Get returns the active record for an element, if any.
func (t *Tracker) Get(elementID string) (Record, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	rec, ok := t.records[elementID]
	return rec, ok
}

// EndAllBy removes every record attributed to a user and returns the ids of
// the elements that were released. Called when a session disconnects without
// sending its end signals.
func (t *Tracker) EndAllBy(userID string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var released []string
	for elementID, rec := range t.records {
		if rec.UserID == userID {
			delete(t.records, elementID)
			released = append(released, elementID)
		}
	}
	return released
}

// Snapshot returns a copy of all active records.
func (t *Tracker) Snapshot() map[string]Record {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[string]Record, len(t.records))
	for k, v := range t.records {
		out[k] = v
	}
	return out
}

// Len returns the number of active records.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.records)
}
