package session

import (
	"sync"

	"github.com/xavrousseau/datalyzer/internal/dataset"
)

// Manager owns all live sessions, keyed by id.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	maxUploadBytes int64
}

func NewManager(maxUploadBytes int64) *Manager {
	return &Manager{
		sessions:       make(map[string]*Session),
		maxUploadBytes: maxUploadBytes,
	}
}

// Create registers and returns a fresh session.
func (m *Manager) Create() *Session {
	s := New(m.maxUploadBytes)
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Get looks up a session by id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, &dataset.NotFoundError{Kind: "session", Name: id}
	}
	return s, nil
}

// Delete discards a session and all its state.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return &dataset.NotFoundError{Kind: "session", Name: id}
	}
	delete(m.sessions, id)
	return nil
}

// IDs lists the live session ids.
func (m *Manager) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		out = append(out, id)
	}
	return out
}
