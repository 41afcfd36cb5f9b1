package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/MShkut/personal-finance-tracker/internal/auth"
	"github.com/MShkut/personal-finance-tracker/internal/session"
	"github.com/MShkut/personal-finance-tracker/internal/views"
)

type AppHandler struct {
	Sessions *session.Registry
	Logger   *slog.Logger
}

// NewAppHandler создает обработчик верхнеуровневого представления.
func NewAppHandler(sessions *session.Registry, logger *slog.Logger) *AppHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AppHandler{Sessions: sessions, Logger: logger}
}

type NavigateRequest struct {
	View string `json:"view" validate:"required"`
}

// State возвращает текущее представление. Первый запрос сессии читает хранилище.
func (h *AppHandler) State(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	s, err := h.Sessions.Get(c.Request().Context(), userID)
	if err != nil {
		return sessionError(c, h.Logger, userID, err)
	}
	return c.JSON(http.StatusOK, s.Router.State())
}

// Navigate переключает представление.
func (h *AppHandler) Navigate(c echo.Context) error {
	var req NavigateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	s, err := h.Sessions.Get(c.Request().Context(), userID)
	if err != nil {
		return sessionError(c, h.Logger, userID, err)
	}

	if req.View == string(views.ViewOnboarding) {
		s.RestartFlow()
	}

	state, err := s.Router.Navigate(views.View(req.View))
	if err != nil {
		if errors.Is(err, views.ErrUnknownView) {
			return badRequest(c, "unknown view")
		}
		return conflict(c, err.Error())
	}

	return c.JSON(http.StatusOK, state)
}

// Reload сбрасывает сессию, как перезагрузка страницы.
func (h *AppHandler) Reload(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	h.Sessions.Reload(userID)

	s, err := h.Sessions.Get(c.Request().Context(), userID)
	if err != nil {
		return sessionError(c, h.Logger, userID, err)
	}
	return c.JSON(http.StatusOK, s.Router.State())
}

// sessionError логирует ошибку открытия сессии и отвечает 500.
func sessionError(c echo.Context, logger *slog.Logger, userID uuid.UUID, err error) error {
	logger.ErrorContext(c.Request().Context(), "open session failed",
		slog.String("user_id", userID.String()),
		slog.String("error", err.Error()),
	)
	return serverError(c)
}
