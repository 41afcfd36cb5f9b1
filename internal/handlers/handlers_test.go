package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/MShkut/personal-finance-tracker/internal/forms"
	"github.com/MShkut/personal-finance-tracker/internal/onboarding"
	"github.com/MShkut/personal-finance-tracker/internal/transactions"
)

func newContext(target string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

// TestParsePagination проверяет разбор limit и offset.
func TestParsePagination(t *testing.T) {
	c, _ := newContext("/?limit=500&offset=20")
	limit, offset, err := parsePagination(c, 50, 200)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if limit != 200 || offset != 20 {
		t.Fatalf("expected 200/20, got %d/%d", limit, offset)
	}

	for _, target := range []string{"/?limit=0", "/?limit=abc", "/?offset=-1"} {
		c, _ := newContext(target)
		if _, _, err := parsePagination(c, 50, 200); err == nil {
			t.Fatalf("%s: expected error", target)
		}
	}
}

// TestFlowErrorStatus проверяет соответствие ошибок мастера HTTP-статусам.
func TestFlowErrorStatus(t *testing.T) {
	h := NewOnboardingHandler(nil, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: income", onboarding.ErrStepMismatch), http.StatusConflict},
		{onboarding.ErrComplete, http.StatusConflict},
		{onboarding.ErrCannotContinue, http.StatusUnprocessableEntity},
		{onboarding.ErrUnknownKey, http.StatusBadRequest},
		{onboarding.ErrInvalidValue, http.StatusBadRequest},
		{onboarding.ErrUnknownList, http.StatusNotFound},
		{forms.ErrItemNotFound, http.StatusNotFound},
		{errors.New("disk full"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		c, rec := newContext("/")
		if err := h.flowError(c, tc.err); err != nil {
			t.Fatalf("expected written response, got %v", err)
		}
		if rec.Code != tc.want {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.want, rec.Code)
		}
	}
}

// TestTransactionErrorStatus проверяет соответствие ошибок транзакций HTTP-статусам.
func TestTransactionErrorStatus(t *testing.T) {
	h := NewTransactionHandler(nil, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	cases := []struct {
		err  error
		want int
	}{
		{transactions.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: row 3: bad date", transactions.ErrImport), http.StatusBadRequest},
		{transactions.ErrInvalidSplit, http.StatusBadRequest},
		{transactions.ErrUnknownCategory, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		c, rec := newContext("/")
		if err := h.serviceError(c, tc.err); err != nil {
			t.Fatalf("expected written response, got %v", err)
		}
		if rec.Code != tc.want {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.want, rec.Code)
		}
	}
}
