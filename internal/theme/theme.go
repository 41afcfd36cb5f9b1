// Package theme хранит светлую или темную тему пользователя и палитру для неё.
package theme

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MShkut/personal-finance-tracker/internal/models"
	"github.com/MShkut/personal-finance-tracker/internal/notifications"
)

// Palette описывает цвета, которые зависят от темы.
type Palette struct {
	Mode       string `json:"mode"`
	Background string `json:"background"`
	Surface    string `json:"surface"`
	Text       string `json:"text"`
	MutedText  string `json:"mutedText"`
	BadgeHigh  string `json:"badgeHigh"`
	BadgeMed   string `json:"badgeMedium"`
	BadgeLow   string `json:"badgeLow"`
	BadgeSplit string `json:"badgeSplit"`
	Inflow     string `json:"inflow"`
	Outflow    string `json:"outflow"`
	Manual     string `json:"manual"`
	ToggleIcon string `json:"toggleIcon"`
	ToggleHint string `json:"toggleHint"`
}

var (
	Light = Palette{
		Mode:       "light",
		Background: "bg-gray-50",
		Surface:    "bg-white",
		Text:       "text-gray-900",
		MutedText:  "text-gray-600",
		BadgeHigh:  "bg-green-100 text-green-700",
		BadgeMed:   "bg-yellow-100 text-yellow-700",
		BadgeLow:   "bg-red-100 text-red-700",
		BadgeSplit: "bg-purple-100 text-purple-700",
		Inflow:     "text-green-600",
		Outflow:    "text-red-600",
		Manual:     "text-blue-600",
		ToggleIcon: "◑",
		ToggleHint: "Switch to dark mode",
	}

	Dark = Palette{
		Mode:       "dark",
		Background: "bg-gray-900",
		Surface:    "bg-gray-800",
		Text:       "text-gray-100",
		MutedText:  "text-gray-400",
		BadgeHigh:  "bg-green-900/20 text-green-400",
		BadgeMed:   "bg-yellow-900/20 text-yellow-400",
		BadgeLow:   "bg-red-900/20 text-red-400",
		BadgeSplit: "bg-purple-900/20 text-purple-400",
		Inflow:     "text-green-400",
		Outflow:    "text-red-400",
		Manual:     "text-blue-400",
		ToggleIcon: "◐",
		ToggleHint: "Switch to light mode",
	}
)

// For возвращает палитру для предпочтения.
func For(pref models.ThemePreference) Palette {
	if pref.DarkMode {
		return Dark
	}
	return Light
}

// Store хранит предпочтение темы.
type Store interface {
	LoadTheme(ctx context.Context, userID uuid.UUID) (models.ThemePreference, error)
	SaveTheme(ctx context.Context, userID uuid.UUID, theme models.ThemePreference) error
}

type Service struct {
	store     Store
	publisher notifications.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewService создает сервис темы. publisher может быть nil.
func NewService(store Store, publisher notifications.Publisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, publisher: publisher, logger: logger, now: time.Now}
}

// Get возвращает предпочтение и палитру пользователя.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (models.ThemePreference, Palette, error) {
	pref, err := s.store.LoadTheme(ctx, userID)
	if err != nil {
		return models.ThemePreference{}, Light, err
	}
	return pref, For(pref), nil
}

// Toggle переключает тему, сохраняет её и уведомляет подписчиков.
func (s *Service) Toggle(ctx context.Context, userID uuid.UUID) (models.ThemePreference, Palette, error) {
	pref, err := s.store.LoadTheme(ctx, userID)
	if err != nil {
		return models.ThemePreference{}, Light, err
	}

	pref.DarkMode = !pref.DarkMode
	pref.UpdatedAt = s.now().UTC()

	if err := s.store.SaveTheme(ctx, userID, pref); err != nil {
		return models.ThemePreference{}, Light, fmt.Errorf("toggle theme: %w", err)
	}

	palette := For(pref)
	notifications.Notify(ctx, s.publisher, s.logger, userID, notifications.EventThemeChanged, map[string]interface{}{
		"darkMode": pref.DarkMode,
	})

	return pref, palette, nil
}
