package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"adventure-server/internal/models"
	"adventure-server/internal/service"
	"adventure-server/internal/world"
)

type mockGameService struct{ mock.Mock }

func (m *mockGameService) ListWorlds(ctx context.Context) ([]world.Summary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]world.Summary), args.Error(1)
}

func (m *mockGameService) NewSession(ctx context.Context, worldID string) (*service.SessionView, error) {
	args := m.Called(ctx, worldID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SessionView), args.Error(1)
}

func (m *mockGameService) ProcessAction(ctx context.Context, sessionID uuid.UUID, input string) (*service.TurnResult, error) {
	args := m.Called(ctx, sessionID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TurnResult), args.Error(1)
}

func (m *mockGameService) GetState(ctx context.Context, sessionID uuid.UUID) (*service.SessionView, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SessionView), args.Error(1)
}

func (m *mockGameService) EndSession(ctx context.Context, sessionID uuid.UUID) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func setupHandler(t *testing.T) (*echo.Echo, *mockGameService) {
	t.Helper()
	svc := new(mockGameService)
	h := NewGameHandler(svc, zap.NewNop())
	e := echo.New()
	h.RegisterRoutes(e, nil)
	return e, svc
}

func TestHealth(t *testing.T) {
	e, _ := setupHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListWorldsRoute(t *testing.T) {
	e, svc := setupHandler(t)
	svc.On("ListWorlds", mock.Anything).
		Return([]world.Summary{{ID: "crypt", Title: "The Sunken Crypt"}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/worlds", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"crypt"`)
}

func TestNewSessionRoute(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		e, svc := setupHandler(t)
		view := &service.SessionView{
			SessionID: uuid.New(),
			WorldID:   "crypt",
			Narrative: "Cold air rises from below.",
			Status:    models.StatusPlaying,
		}
		svc.On("NewSession", mock.Anything, "crypt").Return(view, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/worlds/crypt/sessions", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), "Cold air rises from below.")
	})

	t.Run("world not found", func(t *testing.T) {
		e, svc := setupHandler(t)
		svc.On("NewSession", mock.Anything, "atlantis").Return(nil, models.ErrWorldNotFound).Once()

		req := httptest.NewRequest(http.MethodPost, "/worlds/atlantis/sessions", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestProcessActionRoute(t *testing.T) {
	sessionID := uuid.New()

	t.Run("ok", func(t *testing.T) {
		e, svc := setupHandler(t)
		moved := models.NewEvent(models.EventLocationChanged, "gallery")
		result := &service.TurnResult{
			SessionID:    sessionID,
			Narrative:    "You step east into the gallery.",
			Events:       []models.Event{moved},
			TurnCount:    1,
			Status:       models.StatusPlaying,
			TurnConsumed: true,
		}
		svc.On("ProcessAction", mock.Anything, sessionID, "go east").Return(result, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/sessions/"+sessionID.String()+"/action",
			strings.NewReader(`{"input":"go east"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "You step east into the gallery.")

		var body service.TurnResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Events, 1)
		assert.Equal(t, models.EventLocationChanged, body.Events[0].Type)
	})

	t.Run("blank input", func(t *testing.T) {
		e, svc := setupHandler(t)
		req := httptest.NewRequest(http.MethodPost, "/sessions/"+sessionID.String()+"/action",
			strings.NewReader(`{"input":""}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "ProcessAction")
	})

	t.Run("bad session id", func(t *testing.T) {
		e, _ := setupHandler(t)
		req := httptest.NewRequest(http.MethodPost, "/sessions/not-a-uuid/action",
			strings.NewReader(`{"input":"look"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("resolver unavailable", func(t *testing.T) {
		e, svc := setupHandler(t)
		svc.On("ProcessAction", mock.Anything, sessionID, "mumble").
			Return(nil, models.ErrResolveFailed).Once()

		req := httptest.NewRequest(http.MethodPost, "/sessions/"+sessionID.String()+"/action",
			strings.NewReader(`{"input":"mumble"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestGetStateRoute(t *testing.T) {
	e, svc := setupHandler(t)
	sessionID := uuid.New()
	svc.On("GetState", mock.Anything, sessionID).Return(nil, models.ErrSessionNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/sessions/"+sessionID.String()+"/state", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEndSessionRoute(t *testing.T) {
	e, svc := setupHandler(t)
	sessionID := uuid.New()
	svc.On("EndSession", mock.Anything, sessionID).Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/sessions/"+sessionID.String(), nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}
