package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"adventure-server/internal/engine"
	"adventure-server/internal/messaging"
	"adventure-server/internal/models"
	"adventure-server/internal/session"
	"adventure-server/internal/world"
)

// SessionView is the full client-facing view of a session at rest.
type SessionView struct {
	SessionID  uuid.UUID                 `json:"session_id"`
	WorldID    string                    `json:"world_id"`
	WorldTitle string                    `json:"world_title"`
	Narrative  string                    `json:"narrative,omitempty"`
	Scene      models.PerceptionSnapshot `json:"scene"`
	TurnCount  int                       `json:"turn_count"`
	Status     models.SessionStatus      `json:"status"`
}

// TurnResult is what a single processed command returns to the client.
type TurnResult struct {
	SessionID       uuid.UUID                 `json:"session_id"`
	Narrative       string                    `json:"narrative"`
	Events          []models.Event            `json:"events"`
	Scene           models.PerceptionSnapshot `json:"scene"`
	TurnCount       int                       `json:"turn_count"`
	Status          models.SessionStatus      `json:"status"`
	TurnConsumed    bool                      `json:"turn_consumed"`
	GameComplete    bool                      `json:"game_complete"`
	EndingNarrative string                    `json:"ending_narrative,omitempty"`
}

// turnProcessor is the slice of the engine the service drives.
type turnProcessor interface {
	ProcessTurn(ctx context.Context, state *models.SessionState, world *models.WorldData, rawInput string) (*engine.TurnOutcome, error)
}

// GameService owns session lifecycle and turn processing. Turns within one
// session are serialized; different sessions proceed concurrently.
type GameService interface {
	ListWorlds(ctx context.Context) ([]world.Summary, error)
	NewSession(ctx context.Context, worldID string) (*SessionView, error)
	ProcessAction(ctx context.Context, sessionID uuid.UUID, input string) (*TurnResult, error)
	GetState(ctx context.Context, sessionID uuid.UUID) (*SessionView, error)
	EndSession(ctx context.Context, sessionID uuid.UUID) error
}

type gameService struct {
	worlds    world.Provider
	store     session.Store
	processor turnProcessor
	publisher messaging.TurnEventPublisher
	logger    *zap.Logger

	mu    sync.Mutex
	locks map[uuid.UUID]*sessionLock
}

// sessionLock serializes turns for one session. Entries are refcounted so a
// lock is dropped from the map only once no goroutine holds or awaits it.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

var _ GameService = (*gameService)(nil)

func NewGameService(
	worlds world.Provider,
	store session.Store,
	processor turnProcessor,
	publisher messaging.TurnEventPublisher,
	logger *zap.Logger,
) GameService {
	return &gameService{
		worlds:    worlds,
		store:     store,
		processor: processor,
		publisher: publisher,
		logger:    logger.Named("GameService"),
		locks:     make(map[uuid.UUID]*sessionLock),
	}
}

// acquireSession blocks until this goroutine holds the session's lock.
// Every acquire must be paired with a releaseSession.
func (s *gameService) acquireSession(sessionID uuid.UUID) *sessionLock {
	s.mu.Lock()
	lock, ok := s.locks[sessionID]
	if !ok {
		lock = &sessionLock{}
		s.locks[sessionID] = lock
	}
	lock.refs++
	s.mu.Unlock()

	lock.mu.Lock()
	return lock
}

func (s *gameService) releaseSession(sessionID uuid.UUID, lock *sessionLock) {
	lock.mu.Unlock()

	s.mu.Lock()
	lock.refs--
	if lock.refs == 0 {
		delete(s.locks, sessionID)
	}
	s.mu.Unlock()
}

func (s *gameService) ListWorlds(ctx context.Context) ([]world.Summary, error) {
	return s.worlds.ListWorlds(ctx)
}

func (s *gameService) NewSession(ctx context.Context, worldID string) (*SessionView, error) {
	logFields := []zap.Field{zap.String("worldID", worldID)}
	w, err := s.worlds.GetWorld(ctx, worldID)
	if err != nil {
		s.logger.Warn("Failed to load world for new session", append(logFields, zap.Error(err))...)
		return nil, err
	}

	state := models.NewSessionState(w)
	if err := s.store.Put(ctx, state); err != nil {
		s.logger.Error("Failed to store new session", append(logFields, zap.Error(err))...)
		return nil, err
	}

	s.logger.Info("Session created",
		zap.String("sessionID", state.SessionID.String()),
		zap.String("worldID", worldID),
	)
	return &SessionView{
		SessionID:  state.SessionID,
		WorldID:    w.ID,
		WorldTitle: w.Title,
		Narrative:  w.OpeningNarrative,
		Scene:      engine.BuildSnapshot(state, w),
		TurnCount:  state.TurnCount,
		Status:     state.Status,
	}, nil
}

func (s *gameService) ProcessAction(ctx context.Context, sessionID uuid.UUID, input string) (*TurnResult, error) {
	lock := s.acquireSession(sessionID)
	defer s.releaseSession(sessionID, lock)

	state, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	w, err := s.worlds.GetWorld(ctx, state.WorldID)
	if err != nil {
		s.logger.Error("Session references unknown world",
			zap.String("sessionID", sessionID.String()),
			zap.String("worldID", state.WorldID),
			zap.Error(err),
		)
		return nil, err
	}

	outcome, err := s.processor.ProcessTurn(ctx, state, w, input)
	if err != nil {
		return nil, err
	}

	if outcome.TurnConsumed {
		if err := s.store.Put(ctx, state); err != nil {
			s.logger.Error("Failed to persist session after turn",
				zap.String("sessionID", sessionID.String()),
				zap.Error(err),
			)
			return nil, err
		}
		s.publishTurn(ctx, state, outcome)
	}

	return &TurnResult{
		SessionID:       state.SessionID,
		Narrative:       outcome.Narrative,
		Events:          outcome.Events,
		Scene:           outcome.Snapshot,
		TurnCount:       state.TurnCount,
		Status:          state.Status,
		TurnConsumed:    outcome.TurnConsumed,
		GameComplete:    outcome.GameComplete,
		EndingNarrative: outcome.EndingNarrative,
	}, nil
}

// publishTurn ships the turn's events to the broker. Best-effort: the turn
// is already committed, so a publish failure is only logged.
func (s *gameService) publishTurn(ctx context.Context, state *models.SessionState, outcome *engine.TurnOutcome) {
	payload := messaging.TurnEventPayload{
		SessionID: state.SessionID.String(),
		WorldID:   state.WorldID,
		TurnCount: state.TurnCount,
		Status:    string(state.Status),
		Events:    outcome.Events,
		Timestamp: time.Now().UTC(),
	}
	if err := s.publisher.PublishTurnEvents(ctx, payload); err != nil {
		s.logger.Warn("Failed to publish turn events",
			zap.String("sessionID", state.SessionID.String()),
			zap.Error(err),
		)
	}
}

func (s *gameService) GetState(ctx context.Context, sessionID uuid.UUID) (*SessionView, error) {
	state, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	w, err := s.worlds.GetWorld(ctx, state.WorldID)
	if err != nil {
		return nil, err
	}
	return &SessionView{
		SessionID:  state.SessionID,
		WorldID:    w.ID,
		WorldTitle: w.Title,
		Scene:      engine.BuildSnapshot(state, w),
		TurnCount:  state.TurnCount,
		Status:     state.Status,
	}, nil
}

func (s *gameService) EndSession(ctx context.Context, sessionID uuid.UUID) error {
	lock := s.acquireSession(sessionID)
	defer s.releaseSession(sessionID, lock)

	if _, err := s.store.Get(ctx, sessionID); err != nil {
		return err
	}
	if err := s.store.Remove(ctx, sessionID); err != nil {
		return err
	}
	s.logger.Info("Session ended", zap.String("sessionID", sessionID.String()))
	return nil
}
