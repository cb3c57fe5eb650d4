package application

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// DefaultMaxSessions bounds the number of tracked sessions.
const DefaultMaxSessions = 10000

// SessionState is the handshake state of one client session.
type SessionState struct {
	ID          string
	initialized atomic.Bool
}

// Initialized reports whether the session completed initialize.
func (s *SessionState) Initialized() bool {
	return s.initialized.Load()
}

// MarkInitialized records a successful initialize. Repeating it is harmless.
func (s *SessionState) MarkInitialized() {
	s.initialized.Store(true)
}

// SessionStore tracks handshake state per session id.
// The empty id is the shared default session used by clients that do not
// send a session header. When the store is full the oldest session is evicted.
type SessionStore struct {
	mu       sync.RWMutex
	sessions *orderedmap.OrderedMap[string, *SessionState]
	fallback *SessionState
	max      int
}

// NewSessionStore creates a store holding at most max sessions.
// A non-positive max selects DefaultMaxSessions.
func NewSessionStore(max int) *SessionStore {
	if max <= 0 {
		max = DefaultMaxSessions
	}
	return &SessionStore{
		sessions: orderedmap.New[string, *SessionState](),
		fallback: &SessionState{},
		max:      max,
	}
}

// Get returns the session for id. Unknown ids yield nil.
func (s *SessionStore) Get(id string) *SessionState {
	if id == "" {
		return s.fallback
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	session, _ := s.sessions.Get(id)
	return session
}

// Open returns the session for id, creating it if needed.
// An empty id opens a session under a freshly generated id.
func (s *SessionStore) Open(id string) *SessionState {
	if id == "" {
		id = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if session, exists := s.sessions.Get(id); exists {
		return session
	}

	for s.sessions.Len() >= s.max {
		oldest := s.sessions.Oldest()
		s.sessions.Delete(oldest.Key)
	}

	session := &SessionState{ID: id}
	s.sessions.Set(id, session)
	return session
}

// Default returns the shared session of header-less clients.
func (s *SessionStore) Default() *SessionState {
	return s.fallback
}

// Len returns the number of keyed sessions, excluding the default one.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions.Len()
}
