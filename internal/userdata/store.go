// Package userdata описывает типизированный контракт хранения данных пользователя
// поверх непрозрачного key-value хранилища.
package userdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MShkut/personal-finance-tracker/internal/models"
	"github.com/MShkut/personal-finance-tracker/internal/repository"
)

const (
	KeyOnboarding   = "onboarding"
	KeyTransactions = "transactions"
	KeyTheme        = "theme"

	maxStepIndex = 5
)

// ErrCorruptData означает, что сохраненная запись не прошла проверку формы.
var ErrCorruptData = errors.New("corrupt user data")

type Store struct {
	records repository.RecordStore
}

// NewStore создает хранилище пользовательских данных.
func NewStore(records repository.RecordStore) *Store {
	return &Store{records: records}
}

// LoadUserData возвращает сохраненные данные онбординга или nil, если их нет.
// Отсутствие записи не считается ошибкой.
func (s *Store) LoadUserData(ctx context.Context, userID uuid.UUID) (*models.OnboardingFormData, error) {
	payload, err := s.records.Get(ctx, userID, KeyOnboarding)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load user data: %w", err)
	}

	var data models.OnboardingFormData
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptData, err)
	}

	if err := validate(data); err != nil {
		return nil, err
	}

	return &data, nil
}

// SaveUserData полностью перезаписывает данные онбординга.
func (s *Store) SaveUserData(ctx context.Context, userID uuid.UUID, data models.OnboardingFormData) error {
	data.SchemaVersion = models.SchemaVersion

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode user data: %w", err)
	}

	if err := s.records.Put(ctx, userID, KeyOnboarding, payload); err != nil {
		return fmt.Errorf("save user data: %w", err)
	}

	return nil
}

// ResetUserData удаляет данные онбординга пользователя.
func (s *Store) ResetUserData(ctx context.Context, userID uuid.UUID) error {
	if err := s.records.Delete(ctx, userID, KeyOnboarding); err != nil {
		return fmt.Errorf("reset user data: %w", err)
	}
	return nil
}

// LoadTransactions возвращает сохраненные транзакции. Без записи список пуст.
func (s *Store) LoadTransactions(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error) {
	payload, err := s.records.Get(ctx, userID, KeyTransactions)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return []models.Transaction{}, nil
		}
		return nil, fmt.Errorf("load transactions: %w", err)
	}

	transactions := make([]models.Transaction, 0)
	if err := json.Unmarshal(payload, &transactions); err != nil {
		return nil, fmt.Errorf("%w: transactions: %v", ErrCorruptData, err)
	}

	return transactions, nil
}

// SaveTransactions полностью перезаписывает список транзакций.
func (s *Store) SaveTransactions(ctx context.Context, userID uuid.UUID, transactions []models.Transaction) error {
	if transactions == nil {
		transactions = []models.Transaction{}
	}

	payload, err := json.Marshal(transactions)
	if err != nil {
		return fmt.Errorf("encode transactions: %w", err)
	}

	if err := s.records.Put(ctx, userID, KeyTransactions, payload); err != nil {
		return fmt.Errorf("save transactions: %w", err)
	}

	return nil
}

// LoadTheme возвращает сохраненную тему. По умолчанию светлая.
func (s *Store) LoadTheme(ctx context.Context, userID uuid.UUID) (models.ThemePreference, error) {
	payload, err := s.records.Get(ctx, userID, KeyTheme)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.ThemePreference{}, nil
		}
		return models.ThemePreference{}, fmt.Errorf("load theme: %w", err)
	}

	var theme models.ThemePreference
	if err := json.Unmarshal(payload, &theme); err != nil {
		return models.ThemePreference{}, fmt.Errorf("%w: theme: %v", ErrCorruptData, err)
	}

	return theme, nil
}

// SaveTheme сохраняет тему пользователя.
func (s *Store) SaveTheme(ctx context.Context, userID uuid.UUID, theme models.ThemePreference) error {
	if theme.UpdatedAt.IsZero() {
		theme.UpdatedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(theme)
	if err != nil {
		return fmt.Errorf("encode theme: %w", err)
	}

	if err := s.records.Put(ctx, userID, KeyTheme, payload); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}

	return nil
}

func validate(data models.OnboardingFormData) error {
	if data.SchemaVersion != models.SchemaVersion {
		return fmt.Errorf("%w: unsupported schema version %d", ErrCorruptData, data.SchemaVersion)
	}

	if data.OnboardingStep < 0 || data.OnboardingStep > maxStepIndex {
		return fmt.Errorf("%w: onboarding step %d out of range", ErrCorruptData, data.OnboardingStep)
	}

	if data.OnboardingComplete {
		if !data.HasAllSections() {
			return fmt.Errorf("%w: completed onboarding is missing sections", ErrCorruptData)
		}
		if _, err := time.Parse(time.RFC3339, data.CompletedAt); err != nil {
			return fmt.Errorf("%w: invalid completedAt %q", ErrCorruptData, data.CompletedAt)
		}
	}

	return nil
}
