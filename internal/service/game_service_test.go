package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"adventure-server/internal/engine"
	"adventure-server/internal/messaging"
	"adventure-server/internal/models"
	"adventure-server/internal/session"
	"adventure-server/internal/world"
)

type mockWorldProvider struct{ mock.Mock }

func (m *mockWorldProvider) GetWorld(ctx context.Context, worldID string) (*models.WorldData, error) {
	args := m.Called(ctx, worldID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WorldData), args.Error(1)
}

func (m *mockWorldProvider) ListWorlds(ctx context.Context) ([]world.Summary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]world.Summary), args.Error(1)
}

type mockProcessor struct{ mock.Mock }

func (m *mockProcessor) ProcessTurn(ctx context.Context, state *models.SessionState, w *models.WorldData, rawInput string) (*engine.TurnOutcome, error) {
	args := m.Called(ctx, state, w, rawInput)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*engine.TurnOutcome), args.Error(1)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) PublishTurnEvents(ctx context.Context, payload messaging.TurnEventPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

func serviceWorld() *models.WorldData {
	return &models.WorldData{
		ID:               "crypt",
		Title:            "The Sunken Crypt",
		OpeningNarrative: "Cold air rises from below.",
		Start:            models.StartConfig{Location: "antechamber"},
		Locations: map[string]*models.Location{
			"antechamber": {Name: "Antechamber"},
		},
	}
}

func newServiceUnderTest(t *testing.T) (GameService, *mockWorldProvider, *session.MemoryStore, *mockProcessor, *mockPublisher) {
	t.Helper()
	worlds := new(mockWorldProvider)
	store := session.NewMemoryStore()
	processor := new(mockProcessor)
	publisher := new(mockPublisher)
	svc := NewGameService(worlds, store, processor, publisher, zap.NewNop())
	return svc, worlds, store, processor, publisher
}

func TestNewSession(t *testing.T) {
	ctx := context.Background()

	t.Run("creates and stores a playing session", func(t *testing.T) {
		svc, worlds, store, _, _ := newServiceUnderTest(t)
		worlds.On("GetWorld", ctx, "crypt").Return(serviceWorld(), nil).Once()

		view, err := svc.NewSession(ctx, "crypt")
		require.NoError(t, err)
		assert.Equal(t, "crypt", view.WorldID)
		assert.Equal(t, "The Sunken Crypt", view.WorldTitle)
		assert.Equal(t, "Cold air rises from below.", view.Narrative)
		assert.Equal(t, "antechamber", view.Scene.LocationID)
		assert.Equal(t, models.StatusPlaying, view.Status)
		assert.Equal(t, 0, view.TurnCount)

		stored, err := store.Get(ctx, view.SessionID)
		require.NoError(t, err)
		assert.Equal(t, "antechamber", stored.CurrentLocation)
	})

	t.Run("unknown world", func(t *testing.T) {
		svc, worlds, _, _, _ := newServiceUnderTest(t)
		worlds.On("GetWorld", ctx, "atlantis").Return(nil, models.ErrWorldNotFound).Once()

		_, err := svc.NewSession(ctx, "atlantis")
		assert.ErrorIs(t, err, models.ErrWorldNotFound)
	})
}

func TestProcessAction(t *testing.T) {
	ctx := context.Background()

	t.Run("persists and publishes a consumed turn", func(t *testing.T) {
		svc, worlds, store, processor, publisher := newServiceUnderTest(t)
		w := serviceWorld()
		state := models.NewSessionState(w)
		require.NoError(t, store.Put(ctx, state))
		worlds.On("GetWorld", ctx, "crypt").Return(w, nil)

		outcome := &engine.TurnOutcome{
			Narrative: "You look around.",
			Events: []models.Event{
				models.NewEvent(models.EventSceneBrowsed, "antechamber"),
			},
			Snapshot:     engine.BuildSnapshot(state, w),
			TurnConsumed: true,
		}
		processor.On("ProcessTurn", ctx, state, w, "look").
			Run(func(args mock.Arguments) {
				args.Get(1).(*models.SessionState).TurnCount++
			}).
			Return(outcome, nil).Once()
		publisher.On("PublishTurnEvents", ctx, mock.MatchedBy(func(p messaging.TurnEventPayload) bool {
			return p.SessionID == state.SessionID.String() && p.TurnCount == 1 && len(p.Events) == 1
		})).Return(nil).Once()

		result, err := svc.ProcessAction(ctx, state.SessionID, "look")
		require.NoError(t, err)
		assert.Equal(t, "You look around.", result.Narrative)
		require.Len(t, result.Events, 1)
		assert.Equal(t, models.EventSceneBrowsed, result.Events[0].Type)
		assert.Equal(t, 1, result.TurnCount)
		assert.True(t, result.TurnConsumed)

		stored, err := store.Get(ctx, state.SessionID)
		require.NoError(t, err)
		assert.Equal(t, 1, stored.TurnCount)
		publisher.AssertExpectations(t)
	})

	t.Run("unconsumed turn is neither persisted nor published", func(t *testing.T) {
		svc, worlds, store, processor, publisher := newServiceUnderTest(t)
		w := serviceWorld()
		state := models.NewSessionState(w)
		require.NoError(t, store.Put(ctx, state))
		worlds.On("GetWorld", ctx, "crypt").Return(w, nil)

		outcome := &engine.TurnOutcome{
			Narrative:   engine.UnsupportedMessage,
			Unsupported: true,
		}
		processor.On("ProcessTurn", ctx, state, w, "open door").Return(outcome, nil).Once()

		result, err := svc.ProcessAction(ctx, state.SessionID, "open door")
		require.NoError(t, err)
		assert.False(t, result.TurnConsumed)
		publisher.AssertNotCalled(t, "PublishTurnEvents")
	})

	t.Run("publish failure does not fail the turn", func(t *testing.T) {
		svc, worlds, store, processor, publisher := newServiceUnderTest(t)
		w := serviceWorld()
		state := models.NewSessionState(w)
		require.NoError(t, store.Put(ctx, state))
		worlds.On("GetWorld", ctx, "crypt").Return(w, nil)
		processor.On("ProcessTurn", ctx, state, w, "look").
			Return(&engine.TurnOutcome{Narrative: "ok", TurnConsumed: true}, nil).Once()
		publisher.On("PublishTurnEvents", ctx, mock.Anything).Return(errors.New("broker down")).Once()

		_, err := svc.ProcessAction(ctx, state.SessionID, "look")
		require.NoError(t, err)
	})

	t.Run("unknown session", func(t *testing.T) {
		svc, _, _, _, _ := newServiceUnderTest(t)
		_, err := svc.ProcessAction(ctx, uuid.New(), "look")
		assert.ErrorIs(t, err, models.ErrSessionNotFound)
	})

	t.Run("processor error is passed through", func(t *testing.T) {
		svc, worlds, store, processor, _ := newServiceUnderTest(t)
		w := serviceWorld()
		state := models.NewSessionState(w)
		require.NoError(t, store.Put(ctx, state))
		worlds.On("GetWorld", ctx, "crypt").Return(w, nil)
		processor.On("ProcessTurn", ctx, state, w, "mumble").
			Return(nil, models.ErrResolveFailed).Once()

		_, err := svc.ProcessAction(ctx, state.SessionID, "mumble")
		assert.ErrorIs(t, err, models.ErrResolveFailed)
	})
}

func TestSessionLocksAreReleased(t *testing.T) {
	ctx := context.Background()
	svc, worlds, store, processor, publisher := newServiceUnderTest(t)
	w := serviceWorld()
	state := models.NewSessionState(w)
	require.NoError(t, store.Put(ctx, state))
	worlds.On("GetWorld", ctx, "crypt").Return(w, nil)
	processor.On("ProcessTurn", ctx, state, w, "look").
		Return(&engine.TurnOutcome{Narrative: "ok", TurnConsumed: true}, nil)
	publisher.On("PublishTurnEvents", ctx, mock.Anything).Return(nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ProcessAction(ctx, state.SessionID, "look")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	require.NoError(t, svc.EndSession(ctx, state.SessionID))

	gs := svc.(*gameService)
	gs.mu.Lock()
	defer gs.mu.Unlock()
	assert.Empty(t, gs.locks, "no turn in flight, no lock entries retained")
}

func TestGetState(t *testing.T) {
	ctx := context.Background()
	svc, worlds, store, _, _ := newServiceUnderTest(t)
	w := serviceWorld()
	state := models.NewSessionState(w)
	state.TurnCount = 4
	require.NoError(t, store.Put(ctx, state))
	worlds.On("GetWorld", ctx, "crypt").Return(w, nil)

	view, err := svc.GetState(ctx, state.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 4, view.TurnCount)
	assert.Equal(t, "antechamber", view.Scene.LocationID)
	assert.Empty(t, view.Narrative, "state reads carry no fresh narration")
}

func TestEndSession(t *testing.T) {
	ctx := context.Background()
	svc, worlds, store, _, _ := newServiceUnderTest(t)
	w := serviceWorld()
	state := models.NewSessionState(w)
	require.NoError(t, store.Put(ctx, state))
	worlds.On("GetWorld", ctx, "crypt").Return(w, nil)

	require.NoError(t, svc.EndSession(ctx, state.SessionID))
	_, err := store.Get(ctx, state.SessionID)
	assert.ErrorIs(t, err, models.ErrSessionNotFound)

	assert.ErrorIs(t, svc.EndSession(ctx, state.SessionID), models.ErrSessionNotFound)
}

func TestListWorlds(t *testing.T) {
	ctx := context.Background()
	svc, worlds, _, _, _ := newServiceUnderTest(t)
	worlds.On("ListWorlds", ctx).Return([]world.Summary{{ID: "crypt", Title: "The Sunken Crypt"}}, nil).Once()

	summaries, err := svc.ListWorlds(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "crypt", summaries[0].ID)
}
