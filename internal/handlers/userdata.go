package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/MShkut/personal-finance-tracker/internal/auth"
	"github.com/MShkut/personal-finance-tracker/internal/dashboard"
	"github.com/MShkut/personal-finance-tracker/internal/session"
	"github.com/MShkut/personal-finance-tracker/internal/userdata"
)

type UserDataHandler struct {
	Store    *userdata.Store
	Sessions *session.Registry
	Currency string
	Logger   *slog.Logger
}

// NewUserDataHandler создает обработчик сохраненных данных и сводки.
func NewUserDataHandler(store *userdata.Store, sessions *session.Registry, currency string, logger *slog.Logger) *UserDataHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserDataHandler{Store: store, Sessions: sessions, Currency: currency, Logger: logger}
}

// Get возвращает сохраненную запись онбординга.
func (h *UserDataHandler) Get(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	data, err := h.Store.LoadUserData(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, userdata.ErrCorruptData) {
			return unprocessable(c, err.Error())
		}
		return serverError(c)
	}
	if data == nil {
		return notFound(c, "no saved data")
	}
	return c.JSON(http.StatusOK, data)
}

// Reset удаляет запись онбординга и сбрасывает сессию, следующий запрос снова
// откроет мастер.
func (h *UserDataHandler) Reset(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	ctx := c.Request().Context()
	if err := h.Store.ResetUserData(ctx, userID); err != nil {
		h.Logger.ErrorContext(ctx, "reset user data failed",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()),
		)
		return serverError(c)
	}
	h.Sessions.Reload(userID)

	h.Logger.InfoContext(ctx, "user data reset", slog.String("user_id", userID.String()))
	return c.NoContent(http.StatusNoContent)
}

// Dashboard возвращает сводку бюджета и статистику транзакций.
func (h *UserDataHandler) Dashboard(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	ctx := c.Request().Context()
	data, err := h.Store.LoadUserData(ctx, userID)
	if err != nil {
		if errors.Is(err, userdata.ErrCorruptData) {
			return unprocessable(c, err.Error())
		}
		return serverError(c)
	}
	if data == nil {
		return notFound(c, "onboarding not completed")
	}

	list, err := h.Store.LoadTransactions(ctx, userID)
	if err != nil {
		h.Logger.WarnContext(ctx, "transactions unavailable for dashboard", slog.String("error", err.Error()))
		list = nil
	}

	return c.JSON(http.StatusOK, dashboard.Build(*data, list, h.Currency))
}
