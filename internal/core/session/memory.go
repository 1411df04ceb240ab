package session

import (
	"context"
	"sync"

	"github.com/invoiceflow/console/internal/core/domain"
)

// MemoryKV is a map-backed SessionKV for tests and redis-less development.
type MemoryKV struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
}

// NewMemoryKV creates an empty in-memory session store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{sessions: make(map[string]domain.Session)}
}

func (m *MemoryKV) Get(_ context.Context, id string) (*domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	clone := s
	if s.RoleTokens != nil {
		clone.RoleTokens = make(map[string]string, len(s.RoleTokens))
		for k, v := range s.RoleTokens {
			clone.RoleTokens[k] = v
		}
	}
	if s.User != nil {
		u := *s.User
		clone.User = &u
	}
	return &clone, nil
}

func (m *MemoryKV) Put(_ context.Context, session *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = *session
	return nil
}

func (m *MemoryKV) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}
