package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// TestTokenRoundTrip проверяет выпуск и разбор access-токена.
func TestTokenRoundTrip(t *testing.T) {
	manager := NewTokenManager("secret", "finance-tracker", time.Hour)
	userID := uuid.New()

	token, err := manager.Issue(userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := manager.Parse(token.Token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != userID {
		t.Fatalf("expected %s, got %s", userID, got)
	}
}

// TestTokenWrongIssuer проверяет отклонение токена чужого издателя.
func TestTokenWrongIssuer(t *testing.T) {
	token, err := NewTokenManager("secret", "other", time.Hour).Issue(uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := NewTokenManager("secret", "finance-tracker", time.Hour).Parse(token.Token); err == nil {
		t.Fatalf("expected issuer mismatch error")
	}
}

// TestJWTMiddlewareQueryToken проверяет токен в query для GET-запросов.
func TestJWTMiddlewareQueryToken(t *testing.T) {
	manager := NewTokenManager("secret", "finance-tracker", time.Hour)
	userID := uuid.New()
	token, err := manager.Issue(userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/stream?access_token="+token.Token, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen uuid.UUID
	handler := JWTMiddleware(manager)(func(c echo.Context) error {
		seen, _ = UserIDFromContext(c)
		return nil
	})

	if err := handler(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen != userID {
		t.Fatalf("expected %s, got %s", userID, seen)
	}
}

// TestJWTMiddlewareMissingHeader проверяет ответ без заголовка авторизации.
func TestJWTMiddlewareMissingHeader(t *testing.T) {
	manager := NewTokenManager("secret", "finance-tracker", time.Hour)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	err := JWTMiddleware(manager)(func(c echo.Context) error { return nil })(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

// TestComparePassword проверяет хэширование пароля.
func TestComparePassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ComparePassword(hash, "correct horse"); err != nil {
		t.Fatalf("expected match, got %v", err)
	}
	if err := ComparePassword(hash, "wrong"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}

	long := make([]byte, 73)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := HashPassword(string(long)); !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("expected ErrPasswordTooLong, got %v", err)
	}
}
