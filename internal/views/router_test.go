package views

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/MShkut/personal-finance-tracker/internal/models"
	"github.com/MShkut/personal-finance-tracker/internal/userdata"
)

type countingLoader struct {
	data  *models.OnboardingFormData
	err   error
	calls int
}

func (l *countingLoader) LoadUserData(context.Context, uuid.UUID) (*models.OnboardingFormData, error) {
	l.calls++
	return l.data, l.err
}

func errCorrupt() error {
	return fmt.Errorf("%w: bad json", userdata.ErrCorruptData)
}

func completedData() *models.OnboardingFormData {
	return &models.OnboardingFormData{
		SchemaVersion:      models.SchemaVersion,
		Household:          &models.Household{Name: "Smith Family"},
		Income:             &models.IncomeData{},
		SavingsAllocation:  &models.SavingsAllocationData{},
		Expenses:           &models.ExpensesData{},
		NetWorth:           &models.NetWorthData{},
		OnboardingStep:     5,
		OnboardingComplete: true,
		CompletedAt:        time.Now().UTC().Format(time.RFC3339),
	}
}

// TestRouterFreshStart проверяет переход в мастер без сохраненных данных.
func TestRouterFreshStart(t *testing.T) {
	router := NewRouter(uuid.New(), &countingLoader{})

	if router.State().View != ViewLoading {
		t.Fatalf("expected loading before init, got %s", router.State().View)
	}

	state, err := router.Init(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.View != ViewOnboarding {
		t.Fatalf("expected onboarding, got %s", state.View)
	}
}

// TestRouterCompleted проверяет переход на дашборд после завершенного онбординга.
func TestRouterCompleted(t *testing.T) {
	loader := &countingLoader{data: completedData()}
	router := NewRouter(uuid.New(), loader)

	state, err := router.Init(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.View != ViewDashboard || state.Data == nil {
		t.Fatalf("expected dashboard with data, got %+v", state)
	}
}

// TestRouterIncompleteStaysOnboarding проверяет, что незавершенная запись ведет в мастер.
func TestRouterIncompleteStaysOnboarding(t *testing.T) {
	loader := &countingLoader{data: &models.OnboardingFormData{
		SchemaVersion:  models.SchemaVersion,
		Household:      &models.Household{Name: "Smith Family"},
		Income:         &models.IncomeData{},
		OnboardingStep: 2,
	}}
	router := NewRouter(uuid.New(), loader)

	state, err := router.Init(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.View != ViewOnboarding {
		t.Fatalf("expected onboarding, got %s", state.View)
	}
	if router.Loaded() == nil || router.Loaded().OnboardingStep != 2 {
		t.Fatalf("expected loaded record to be kept for seeding")
	}
}

// TestRouterReadsOnce проверяет однократное чтение хранилища.
func TestRouterReadsOnce(t *testing.T) {
	loader := &countingLoader{}
	router := NewRouter(uuid.New(), loader)
	ctx := context.Background()

	if _, err := router.Init(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	loader.data = completedData()

	state, err := router.Init(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected 1 read, got %d", loader.calls)
	}
	if state.View != ViewOnboarding {
		t.Fatalf("expected stale onboarding view, got %s", state.View)
	}
}

// TestRouterNavigate проверяет навигацию между представлениями.
func TestRouterNavigate(t *testing.T) {
	router := NewRouter(uuid.New(), &countingLoader{data: completedData()})

	if _, err := router.Navigate(ViewImport); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}

	if _, err := router.Init(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	state, err := router.Navigate(ViewImport)
	if err != nil || state.View != ViewImport {
		t.Fatalf("expected import view, got %+v, %v", state, err)
	}

	state, err = router.Navigate(ViewDashboard)
	if err != nil || state.View != ViewDashboard {
		t.Fatalf("expected dashboard view, got %+v, %v", state, err)
	}

	if _, err := router.Navigate("settings"); !errors.Is(err, ErrUnknownView) {
		t.Fatalf("expected ErrUnknownView, got %v", err)
	}
}

// TestRouterComplete проверяет переход после завершения мастера.
func TestRouterComplete(t *testing.T) {
	router := NewRouter(uuid.New(), &countingLoader{})
	if _, err := router.Init(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	state := router.Complete(*completedData())
	if state.View != ViewDashboard || state.Data == nil || !state.Data.OnboardingComplete {
		t.Fatalf("expected dashboard with completed data, got %+v", state)
	}
}

// TestRouterCorruptRecord проверяет, что поврежденная запись ведет в мастер с пометкой.
func TestRouterCorruptRecord(t *testing.T) {
	loader := &countingLoader{err: errCorrupt()}
	router := NewRouter(uuid.New(), loader)

	state, err := router.Init(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.View != ViewOnboarding || !state.Corrupt {
		t.Fatalf("expected corrupt onboarding state, got %+v", state)
	}
}

// TestRouterStoreFailure проверяет, что ошибка хранилища оставляет loading.
func TestRouterStoreFailure(t *testing.T) {
	loader := &countingLoader{err: errors.New("connection refused")}
	router := NewRouter(uuid.New(), loader)

	state, err := router.Init(context.Background())
	if err == nil {
		t.Fatalf("expected error")
	}
	if state.View != ViewLoading || state.Initialized {
		t.Fatalf("expected loading state, got %+v", state)
	}
}
