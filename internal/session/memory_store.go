package session

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"adventure-server/internal/models"
)

// MemoryStore keeps sessions in process memory. Suited to development and
// single-instance deployments; state is lost on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*models.SessionState
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[uuid.UUID]*models.SessionState)}
}

func (s *MemoryStore) Get(_ context.Context, sessionID uuid.UUID) (*models.SessionState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.sessions[sessionID]
	if !ok {
		return nil, models.ErrSessionNotFound
	}
	return state, nil
}

func (s *MemoryStore) Put(_ context.Context, state *models.SessionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[state.SessionID] = state
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, sessionID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}
