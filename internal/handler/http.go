package handler

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"adventure-server/internal/models"
	"adventure-server/internal/service"
)

// GameHandler exposes the game service over HTTP.
type GameHandler struct {
	service  service.GameService
	logger   *zap.Logger
	validate *validator.Validate
}

func NewGameHandler(s service.GameService, logger *zap.Logger) *GameHandler {
	return &GameHandler{
		service:  s,
		logger:   logger.Named("GameHandler"),
		validate: validator.New(),
	}
}

// RegisterRoutes registers the game routes. The auth middleware, when
// non-nil, guards everything except the health probe.
func (h *GameHandler) RegisterRoutes(e *echo.Echo, auth echo.MiddlewareFunc) {
	e.GET("/health", h.health)

	var mw []echo.MiddlewareFunc
	if auth != nil {
		mw = append(mw, auth)
	}

	worldsGroup := e.Group("/worlds", mw...)
	{
		worldsGroup.GET("", h.listWorlds)
		worldsGroup.POST("/:world_id/sessions", h.newSession)
	}

	sessionsGroup := e.Group("/sessions", mw...)
	{
		sessionsGroup.POST("/:session_id/action", h.processAction)
		sessionsGroup.GET("/:session_id/state", h.getState)
		sessionsGroup.DELETE("/:session_id", h.endSession)
	}
}

func (h *GameHandler) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *GameHandler) listWorlds(c echo.Context) error {
	summaries, err := h.service.ListWorlds(c.Request().Context())
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, summaries)
}

func (h *GameHandler) newSession(c echo.Context) error {
	var req NewSessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, APIError{Message: "invalid request"})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, APIError{Message: "world_id is required"})
	}

	view, err := h.service.NewSession(c.Request().Context(), req.WorldID)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, view)
}

func (h *GameHandler) processAction(c echo.Context) error {
	sessionID, err := parseSessionID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, APIError{Message: "invalid session id"})
	}

	var req ActionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, APIError{Message: "invalid request body"})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, APIError{Message: "input is required and must be at most 500 characters"})
	}

	result, err := h.service.ProcessAction(c.Request().Context(), sessionID, req.Input)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *GameHandler) getState(c echo.Context) error {
	sessionID, err := parseSessionID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, APIError{Message: "invalid session id"})
	}

	view, err := h.service.GetState(c.Request().Context(), sessionID)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *GameHandler) endSession(c echo.Context) error {
	sessionID, err := parseSessionID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, APIError{Message: "invalid session id"})
	}

	if err := h.service.EndSession(c.Request().Context(), sessionID); err != nil {
		return h.handleServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func parseSessionID(c echo.Context) (uuid.UUID, error) {
	return uuid.Parse(c.Param("session_id"))
}

// handleServiceError maps service-layer sentinels onto HTTP statuses.
func (h *GameHandler) handleServiceError(c echo.Context, err error) error {
	var statusCode int
	var apiErr APIError

	switch {
	case errors.Is(err, models.ErrWorldNotFound):
		statusCode = http.StatusNotFound
		apiErr = APIError{Message: "world not found"}
	case errors.Is(err, models.ErrSessionNotFound):
		statusCode = http.StatusNotFound
		apiErr = APIError{Message: "session not found"}
	case errors.Is(err, models.ErrResolveFailed):
		statusCode = http.StatusServiceUnavailable
		apiErr = APIError{Message: "could not interpret the command, try again"}
	case errors.Is(err, models.ErrWorldInvalid):
		statusCode = http.StatusInternalServerError
		apiErr = APIError{Message: "world definition is invalid"}
	case errors.Is(err, models.ErrBadRequest):
		statusCode = http.StatusBadRequest
		apiErr = APIError{Message: err.Error()}
	case errors.Is(err, models.ErrUnauthorized):
		statusCode = http.StatusUnauthorized
		apiErr = APIError{Message: "unauthorized"}
	default:
		h.logger.Error("Unhandled service error", zap.Error(err))
		statusCode = http.StatusInternalServerError
		apiErr = APIError{Message: "internal server error"}
	}
	return c.JSON(statusCode, apiErr)
}
