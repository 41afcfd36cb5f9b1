package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/MShkut/personal-finance-tracker/internal/auth"
	"github.com/MShkut/personal-finance-tracker/internal/models"
	"github.com/MShkut/personal-finance-tracker/internal/theme"
)

type ThemeHandler struct {
	Service *theme.Service
	Logger  *slog.Logger
}

// NewThemeHandler создает обработчик темы оформления.
func NewThemeHandler(service *theme.Service, logger *slog.Logger) *ThemeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ThemeHandler{Service: service, Logger: logger}
}

type ThemeResponse struct {
	Preference models.ThemePreference `json:"preference"`
	Palette    theme.Palette          `json:"palette"`
}

func (h *ThemeHandler) Get(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	pref, palette, err := h.Service.Get(c.Request().Context(), userID)
	if err != nil {
		return h.themeError(c, err)
	}
	return c.JSON(http.StatusOK, ThemeResponse{Preference: pref, Palette: palette})
}

// Toggle переключает светлую и темную тему.
func (h *ThemeHandler) Toggle(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	pref, palette, err := h.Service.Toggle(c.Request().Context(), userID)
	if err != nil {
		return h.themeError(c, err)
	}
	return c.JSON(http.StatusOK, ThemeResponse{Preference: pref, Palette: palette})
}

func (h *ThemeHandler) themeError(c echo.Context, err error) error {
	h.Logger.ErrorContext(c.Request().Context(), "theme request failed", slog.String("error", err.Error()))
	return serverError(c)
}
