// Package views выбирает верхнеуровневое представление пользователя.
package views

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/MShkut/personal-finance-tracker/internal/models"
	"github.com/MShkut/personal-finance-tracker/internal/userdata"
)

type View string

const (
	ViewLoading    View = "loading"
	ViewOnboarding View = "onboarding"
	ViewDashboard  View = "dashboard"
	ViewImport     View = "import"
)

var (
	ErrUnknownView    = errors.New("unknown view")
	ErrNotInitialized = errors.New("router is not initialized")
)

// ParseView проверяет идентификатор представления.
func ParseView(value string) (View, error) {
	switch view := View(value); view {
	case ViewLoading, ViewOnboarding, ViewDashboard, ViewImport:
		return view, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownView, value)
	}
}

// Loader читает сохраненные данные онбординга.
type Loader interface {
	LoadUserData(ctx context.Context, userID uuid.UUID) (*models.OnboardingFormData, error)
}

type State struct {
	View        View                       `json:"view"`
	Initialized bool                       `json:"initialized"`
	Corrupt     bool                       `json:"corrupt,omitempty"`
	Data        *models.OnboardingFormData `json:"data,omitempty"`
}

// Router хранит текущее представление. Хранилище читается один раз при Init,
// последующие изменения записи на выбор представления не влияют.
type Router struct {
	mu          sync.Mutex
	userID      uuid.UUID
	loader      Loader
	view        View
	initialized bool
	corrupt     bool
	loaded      *models.OnboardingFormData
	data        *models.OnboardingFormData
}

// NewRouter создает роутер в состоянии loading.
func NewRouter(userID uuid.UUID, loader Loader) *Router {
	return &Router{
		userID: userID,
		loader: loader,
		view:   ViewLoading,
	}
}

// Init читает хранилище при первом вызове и выбирает onboarding или dashboard.
// Повторные вызовы возвращают текущее состояние без чтения.
func (r *Router) Init(ctx context.Context) (State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.initialized {
		return r.state(), nil
	}

	data, err := r.loader.LoadUserData(ctx, r.userID)
	if err != nil {
		if !errors.Is(err, userdata.ErrCorruptData) {
			return r.state(), fmt.Errorf("init router: %w", err)
		}
		r.corrupt = true
		data = nil
	}

	r.initialized = true
	r.loaded = data

	if data != nil && data.OnboardingComplete {
		r.data = data
		r.view = ViewDashboard
	} else {
		r.view = ViewOnboarding
	}

	return r.state(), nil
}

// Loaded возвращает запись, прочитанную при инициализации.
func (r *Router) Loaded() *models.OnboardingFormData {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loaded
}

// Navigate переключает представление.
func (r *Router) Navigate(view View) (State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := ParseView(string(view)); err != nil {
		return r.state(), err
	}
	if !r.initialized {
		return r.state(), ErrNotInitialized
	}

	r.view = view
	return r.state(), nil
}

// Complete переводит пользователя из мастера на дашборд с итоговыми данными.
func (r *Router) Complete(data models.OnboardingFormData) State {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.initialized = true
	r.corrupt = false
	r.data = &data
	r.view = ViewDashboard
	return r.state()
}

// State возвращает текущее состояние роутера.
func (r *Router) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state()
}

func (r *Router) state() State {
	return State{
		View:        r.view,
		Initialized: r.initialized,
		Corrupt:     r.corrupt,
		Data:        r.data,
	}
}
