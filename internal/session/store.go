package session

import (
	"sync"

	"ledgerbot/internal/domain"
)

// Store keeps conversational state per canonical identity
type Store interface {
	// Get returns a copy of the identity's session, or a new one at the menu
	Get(identity string) *domain.Session
	Save(identity string, s *domain.Session)
	Reset(identity string)
}

// MemoryStore is a volatile Store. Sessions are lost on restart.
type MemoryStore struct {
	sessions map[string]*domain.Session
	mu       sync.RWMutex
}

// NewMemoryStore creates an empty in-memory session store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*domain.Session),
	}
}

// Get returns user's current session
func (m *MemoryStore) Get(identity string) *domain.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, exists := m.sessions[identity]
	if !exists {
		return domain.NewSession()
	}
	return s.Clone()
}

// Save stores a copy of the session
func (m *MemoryStore) Save(identity string, s *domain.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[identity] = s.Clone()
}

// Reset forgets the session, so the next Get starts at the menu
func (m *MemoryStore) Reset(identity string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, identity)
}
