package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/MShkut/personal-finance-tracker/internal/auth"
	"github.com/MShkut/personal-finance-tracker/internal/models"
	"github.com/MShkut/personal-finance-tracker/internal/repository"
	"github.com/MShkut/personal-finance-tracker/internal/userdata"
)

// Статусы онбординга пользователя.
const (
	OnboardingNone     = "none"
	OnboardingStarted  = "in_progress"
	OnboardingComplete = "complete"
	OnboardingCorrupt  = "corrupt"
)

type AuthHandler struct {
	Users        repository.UserStore
	UserData     *userdata.Store
	TokenManager *auth.TokenManager
	Logger       *slog.Logger
}

// NewAuthHandler создает обработчик регистрации, входа и профиля.
func NewAuthHandler(users repository.UserStore, data *userdata.Store, manager *auth.TokenManager, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{Users: users, UserData: data, TokenManager: manager, Logger: logger}
}

type RegisterRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8,max=72"`
	Name     *string `json:"name" validate:"omitempty,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthUser struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  *string   `json:"name,omitempty"`
}

// OnboardingStatus сообщает клиенту, куда вести пользователя после входа.
type OnboardingStatus struct {
	Status string `json:"status"`
	Step   int    `json:"step"`
}

type AuthResponse struct {
	AccessToken string           `json:"access_token"`
	ExpiresAt   time.Time        `json:"expires_at"`
	User        AuthUser         `json:"user"`
	Onboarding  OnboardingStatus `json:"onboarding"`
}

type UserResponse struct {
	User       AuthUser         `json:"user"`
	Onboarding OnboardingStatus `json:"onboarding"`
}

// Register создает учетную запись. У нового пользователя онбординга еще нет.
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	passwordHash, err := auth.HashPassword(strings.TrimSpace(req.Password))
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return badRequest(c, err.Error())
		}
		return serverError(c)
	}

	ctx := c.Request().Context()
	user, err := h.Users.Create(ctx, normalizeEmail(req.Email), passwordHash, normalizeName(req.Name))
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return conflict(c, "user already exists")
		}
		h.Logger.ErrorContext(ctx, "create user failed", slog.String("error", err.Error()))
		return serverError(c)
	}
	h.Logger.InfoContext(ctx, "user registered", slog.String("user_id", user.ID.String()))

	return h.respondWithToken(c, http.StatusCreated, user, OnboardingStatus{Status: OnboardingNone})
}

// Login проверяет пароль и выдает токен вместе со статусом онбординга.
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	ctx := c.Request().Context()
	user, err := h.Users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return unauthorized(c)
		}
		return serverError(c)
	}

	if err := auth.ComparePassword(user.PasswordHash, strings.TrimSpace(req.Password)); err != nil {
		return unauthorized(c)
	}

	return h.respondWithToken(c, http.StatusOK, user, onboardingStatus(ctx, h.UserData, user.ID))
}

// Me возвращает профиль текущего пользователя и состояние его онбординга.
func (h *AuthHandler) Me(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	ctx := c.Request().Context()
	user, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "user not found")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, UserResponse{
		User:       toAuthUser(user),
		Onboarding: onboardingStatus(ctx, h.UserData, user.ID),
	})
}

func (h *AuthHandler) respondWithToken(c echo.Context, status int, user models.User, onboarding OnboardingStatus) error {
	token, err := h.TokenManager.Issue(user.ID)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(status, AuthResponse{
		AccessToken: token.Token,
		ExpiresAt:   token.ExpiresAt,
		User:        toAuthUser(user),
		Onboarding:  onboarding,
	})
}

// onboardingStatus читает сохраненную запись. Поврежденная запись дает статус corrupt.
func onboardingStatus(ctx context.Context, store *userdata.Store, userID uuid.UUID) OnboardingStatus {
	if store == nil {
		return OnboardingStatus{Status: OnboardingNone}
	}

	data, err := store.LoadUserData(ctx, userID)
	switch {
	case err != nil:
		return OnboardingStatus{Status: OnboardingCorrupt}
	case data == nil:
		return OnboardingStatus{Status: OnboardingNone}
	case data.OnboardingComplete:
		return OnboardingStatus{Status: OnboardingComplete, Step: data.OnboardingStep}
	default:
		return OnboardingStatus{Status: OnboardingStarted, Step: data.OnboardingStep}
	}
}

func toAuthUser(user models.User) AuthUser {
	return AuthUser{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizeName(name *string) *string {
	if name == nil {
		return nil
	}

	trimmed := strings.TrimSpace(*name)
	if trimmed == "" {
		return nil
	}

	return &trimmed
}
