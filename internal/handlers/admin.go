package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/MShkut/personal-finance-tracker/internal/auth"
	"github.com/MShkut/personal-finance-tracker/internal/repository"
	"github.com/MShkut/personal-finance-tracker/internal/userdata"
)

type AdminHandler struct {
	Users    repository.UserStore
	Records  repository.RecordStore
	UserData *userdata.Store
	Logger   *slog.Logger
}

// NewAdminHandler создает обработчик админских эндпоинтов.
func NewAdminHandler(users repository.UserStore, records repository.RecordStore, logger *slog.Logger) *AdminHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminHandler{
		Users:    users,
		Records:  records,
		UserData: userdata.NewStore(records),
		Logger:   logger,
	}
}

type AdminUserResponse struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	Name       *string   `json:"name,omitempty"`
	Onboarding string    `json:"onboarding"`
	Step       int       `json:"step"`
	CreatedAt  string    `json:"created_at"`
	UpdatedAt  string    `json:"updated_at"`
}

type AdminUsersResponse struct {
	Total int                 `json:"total"`
	Users []AdminUserResponse `json:"users"`
}

type AdminUsageResponse struct {
	Users            int `json:"users"`
	OnboardingSaved  int `json:"onboarding_saved"`
	TransactionLists int `json:"transaction_lists"`
	ThemesSaved      int `json:"themes_saved"`
}

// ListUsers возвращает пользователей со статусом онбординга.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	limit, offset, err := parsePagination(c, 50, 200)
	if err != nil {
		return badRequest(c, err.Error())
	}

	ctx := c.Request().Context()
	users, err := h.Users.List(ctx, limit, offset)
	if err != nil {
		return serverError(c)
	}

	total, err := h.Users.Count(ctx)
	if err != nil {
		return serverError(c)
	}

	response := make([]AdminUserResponse, 0, len(users))
	for _, user := range users {
		status := onboardingStatus(ctx, h.UserData, user.ID)
		response = append(response, AdminUserResponse{
			ID:         user.ID,
			Email:      user.Email,
			Name:       user.Name,
			Onboarding: status.Status,
			Step:       status.Step,
			CreatedAt:  user.CreatedAt.Format(timeLayout),
			UpdatedAt:  user.UpdatedAt.Format(timeLayout),
		})
	}

	return c.JSON(http.StatusOK, AdminUsersResponse{
		Total: total,
		Users: response,
	})
}

// Usage возвращает число пользователей и сохраненных записей по ключам.
func (h *AdminHandler) Usage(c echo.Context) error {
	ctx := c.Request().Context()

	users, err := h.Users.Count(ctx)
	if err != nil {
		return serverError(c)
	}

	counts := make(map[string]int, 3)
	for _, key := range []string{userdata.KeyOnboarding, userdata.KeyTransactions, userdata.KeyTheme} {
		count, err := h.Records.CountKey(ctx, key)
		if err != nil {
			h.Logger.ErrorContext(ctx, "count records failed", slog.String("key", key), slog.String("error", err.Error()))
			return serverError(c)
		}
		counts[key] = count
	}

	return c.JSON(http.StatusOK, AdminUsageResponse{
		Users:            users,
		OnboardingSaved:  counts[userdata.KeyOnboarding],
		TransactionLists: counts[userdata.KeyTransactions],
		ThemesSaved:      counts[userdata.KeyTheme],
	})
}

// AdminMiddleware ограничивает доступ к админским роутам по email.
func AdminMiddleware(users repository.UserStore, emails []string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(emails))
	for _, email := range emails {
		trimmed := strings.ToLower(strings.TrimSpace(email))
		if trimmed == "" {
			continue
		}
		allowed[trimmed] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := auth.UserIDFromContext(c)
			if !ok {
				return unauthorized(c)
			}

			if len(allowed) == 0 {
				return forbidden(c)
			}

			user, err := users.GetByID(c.Request().Context(), userID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return forbidden(c)
				}
				return serverError(c)
			}

			if _, ok := allowed[strings.ToLower(strings.TrimSpace(user.Email))]; !ok {
				return forbidden(c)
			}

			return next(c)
		}
	}
}

func parsePagination(c echo.Context, defaultLimit, maxLimit int) (int, int, error) {
	limit := defaultLimit
	if raw := strings.TrimSpace(c.QueryParam("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return 0, 0, errors.New("invalid limit")
		}
		if parsed > maxLimit {
			parsed = maxLimit
		}
		limit = parsed
	}

	offset := 0
	if raw := strings.TrimSpace(c.QueryParam("offset")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return 0, 0, errors.New("invalid offset")
		}
		offset = parsed
	}

	return limit, offset, nil
}
