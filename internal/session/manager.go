package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Manager tracks live sessions. Sessions share nothing but the factory.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	logs     LogFactory
}

func NewManager(logs LogFactory) *Manager {
	if logs == nil {
		logs = MemoryLogs()
	}
	return &Manager{sessions: make(map[string]*Session), logs: logs}
}

func (m *Manager) Create(_ context.Context) (*Session, error) {
	id := uuid.NewString()
	s := New(id, m.logs(id))

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	slog.Debug("session created", "session_id", id)
	return s, nil
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// End discards the session and its history.
func (m *Manager) End(ctx context.Context, id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	return s.end(ctx)
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
