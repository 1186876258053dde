package session

import (
	"context"

	"github.com/google/uuid"

	"adventure-server/internal/models"
)

// Store persists live session state between turns. Callers serialize access
// per session; the store itself only guarantees its own internal safety.
type Store interface {
	// Get returns the stored state or models.ErrSessionNotFound.
	Get(ctx context.Context, sessionID uuid.UUID) (*models.SessionState, error)

	// Put stores the state, overwriting any previous version.
	Put(ctx context.Context, state *models.SessionState) error

	// Remove deletes the session. Removing an absent session is not an error.
	Remove(ctx context.Context, sessionID uuid.UUID) error
}
