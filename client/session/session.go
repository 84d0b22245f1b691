// Package session keeps per-role login sessions for the platform client.
// Each role has one slot; sessions for different roles coexist, mirroring a
// browser keeping separate tokens per dashboard.
package session

import "sync"

// Role identifies which dashboard a session belongs to.
type Role string

const (
	RoleFreelancer Role = "FREELANCER"
	RoleClient     Role = "CLIENT"
	RoleAdmin      Role = "ADMIN"
)

// Session is one role's authenticated state. Tokens carry no client-side
// expiry; staleness is discovered when the server answers 401.
type Session struct {
	Role        Role   `json:"role"`
	Token       string `json:"token"`
	IdentityID  string `json:"identityId,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}

// EventType distinguishes watcher notifications.
type EventType string

const (
	EventSet     EventType = "set"
	EventCleared EventType = "cleared"
)

// Event notifies watchers of a slot change.
type Event struct {
	Type    EventType
	Role    Role
	Session Session
}

// Store holds one session slot per role.
type Store interface {
	// Get returns the session for a role, reporting whether one is present.
	Get(role Role) (Session, bool)
	// Set stores a session in its role's slot, replacing any previous one.
	Set(s Session) error
	// Clear empties a role's slot. Clearing an empty slot is a no-op.
	Clear(role Role) error
	// Watch registers a callback for slot changes and returns a cancel func.
	Watch(fn func(Event)) func()
}

// watcherSet fans change events out to registered callbacks. Embedded by
// the store implementations.
type watcherSet struct {
	mu       sync.Mutex
	nextID   int
	watchers map[int]func(Event)
}

func (w *watcherSet) Watch(fn func(Event)) func() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watchers == nil {
		w.watchers = make(map[int]func(Event))
	}
	id := w.nextID
	w.nextID++
	w.watchers[id] = fn
	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		delete(w.watchers, id)
	}
}

func (w *watcherSet) notify(e Event) {
	w.mu.Lock()
	fns := make([]func(Event), 0, len(w.watchers))
	for _, fn := range w.watchers {
		fns = append(fns, fn)
	}
	w.mu.Unlock()

	for _, fn := range fns {
		fn(e)
	}
}
