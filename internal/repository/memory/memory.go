// Package memory содержит хранилища в памяти процесса для тестов и локального запуска.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MShkut/personal-finance-tracker/internal/models"
	"github.com/MShkut/personal-finance-tracker/internal/repository"
)

type UserStore struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]models.User
	byEmail map[string]uuid.UUID
}

// NewUserStore создает пустое хранилище пользователей.
func NewUserStore() *UserStore {
	return &UserStore{
		byID:    make(map[uuid.UUID]models.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

func (s *UserStore) Create(_ context.Context, email, passwordHash string, name *string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[email]; exists {
		return models.User{}, repository.ErrConflict
	}

	now := time.Now().UTC()
	user := models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.byID[user.ID] = user
	s.byEmail[email] = user.ID
	return user, nil
}

func (s *UserStore) GetByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return models.User{}, repository.ErrNotFound
	}
	return s.byID[id], nil
}

func (s *UserStore) GetByID(_ context.Context, id uuid.UUID) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.byID[id]
	if !ok {
		return models.User{}, repository.ErrNotFound
	}
	return user, nil
}

func (s *UserStore) List(_ context.Context, limit, offset int) ([]models.User, error) {
	s.mu.RLock()
	users := make([]models.User, 0, len(s.byID))
	for _, user := range s.byID {
		users = append(users, user)
	}
	s.mu.RUnlock()

	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})

	if offset >= len(users) {
		return []models.User{}, nil
	}
	end := offset + limit
	if end > len(users) {
		end = len(users)
	}
	return users[offset:end], nil
}

func (s *UserStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID), nil
}

type recordKey struct {
	userID uuid.UUID
	key    string
}

type RecordStore struct {
	mu      sync.RWMutex
	records map[recordKey][]byte
	// PutErr, если задан, возвращается из Put вместо записи.
	PutErr error
}

// NewRecordStore создает пустое key-value хранилище.
func NewRecordStore() *RecordStore {
	return &RecordStore{records: make(map[recordKey][]byte)}
}

func (s *RecordStore) Get(_ context.Context, userID uuid.UUID, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payload, ok := s.records[recordKey{userID: userID, key: key}]
	if !ok {
		return nil, repository.ErrNotFound
	}

	out := make([]byte, len(payload))
	copy(out, payload)
	return out, nil
}

func (s *RecordStore) Put(_ context.Context, userID uuid.UUID, key string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.PutErr != nil {
		return s.PutErr
	}

	stored := make([]byte, len(payload))
	copy(stored, payload)
	s.records[recordKey{userID: userID, key: key}] = stored
	return nil
}

func (s *RecordStore) Delete(_ context.Context, userID uuid.UUID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, recordKey{userID: userID, key: key})
	return nil
}

func (s *RecordStore) CountKey(_ context.Context, key string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for k := range s.records {
		if k.key == key {
			total++
		}
	}
	return total, nil
}
