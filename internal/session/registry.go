// Package session хранит состояние интерфейса каждого пользователя между запросами:
// текущее представление и мастер онбординга.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/MShkut/personal-finance-tracker/internal/onboarding"
	"github.com/MShkut/personal-finance-tracker/internal/views"
)

type Session struct {
	UserID uuid.UUID
	Router *views.Router

	mu       sync.Mutex
	flow     *onboarding.Flow
	store    onboarding.Store
	opts     onboarding.Options
	lastSeen time.Time
}

// Flow возвращает мастер онбординга сессии.
func (s *Session) Flow() *onboarding.Flow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flow
}

// RestartFlow начинает завершенный мастер заново с ранее введенными данными.
func (s *Session) RestartFlow() *onboarding.Flow {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.flow.IsComplete() {
		data := s.flow.FormData()
		s.flow = onboarding.NewFlow(s.UserID, s.store, &data, onboarding.Options{
			Currency: s.opts.Currency,
			Logger:   s.opts.Logger,
			Now:      s.opts.Now,
		})
	}
	return s.flow
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen.Before(cutoff)
}

type Registry struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	store    onboarding.Store
	opts     onboarding.Options
	logger   *slog.Logger
	now      func() time.Time
}

// NewRegistry создает реестр сессий.
func NewRegistry(store onboarding.Store, opts onboarding.Options, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Logger == nil {
		opts.Logger = logger
	}

	return &Registry{
		sessions: make(map[uuid.UUID]*Session),
		store:    store,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
}

// Get возвращает сессию пользователя, создавая её при первом обращении.
// Новая сессия один раз читает хранилище через роутер и заполняет мастер прочитанной записью.
func (r *Registry) Get(ctx context.Context, userID uuid.UUID) (*Session, error) {
	r.mu.Lock()
	existing, ok := r.sessions[userID]
	r.mu.Unlock()

	if ok {
		existing.touch(r.now())
		return existing, nil
	}

	router := views.NewRouter(userID, r.store)
	if _, err := router.Init(ctx); err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}

	created := &Session{
		UserID:   userID,
		Router:   router,
		flow:     onboarding.NewFlow(userID, r.store, router.Loaded(), r.opts),
		store:    r.store,
		opts:     r.opts,
		lastSeen: r.now(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.sessions[userID]; ok {
		return existing, nil
	}
	r.sessions[userID] = created
	return created, nil
}

// Reload сбрасывает сессию пользователя. Следующий Get заново прочитает хранилище.
func (r *Registry) Reload(userID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, userID)
}

// Len возвращает число активных сессий.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// EvictIdle удаляет сессии, к которым не обращались дольше ttl.
func (r *Registry) EvictIdle(ttl time.Duration) int {
	cutoff := r.now().Add(-ttl)

	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for userID, s := range r.sessions {
		if s.idleSince(cutoff) {
			delete(r.sessions, userID)
			evicted++
		}
	}
	return evicted
}

// StartSweeper запускает периодическую очистку простаивающих сессий по cron-расписанию.
// Возвращаемая функция останавливает планировщик и ждет завершения текущего запуска.
func (r *Registry) StartSweeper(schedule string, ttl time.Duration) (func(), error) {
	scheduler := cron.New()

	_, err := scheduler.AddFunc(schedule, func() {
		if evicted := r.EvictIdle(ttl); evicted > 0 {
			r.logger.Info("idle sessions evicted", slog.Int("count", evicted), slog.Int("remaining", r.Len()))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule session sweep %q: %w", schedule, err)
	}

	scheduler.Start()
	return func() {
		<-scheduler.Stop().Done()
	}, nil
}
