package transactions

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MShkut/personal-finance-tracker/internal/ai"
	"github.com/MShkut/personal-finance-tracker/internal/models"
	"github.com/MShkut/personal-finance-tracker/internal/notifications"
	"github.com/MShkut/personal-finance-tracker/internal/review"
	"github.com/MShkut/personal-finance-tracker/internal/theme"
	"github.com/MShkut/personal-finance-tracker/internal/userdata"
)

// aiThreshold задает уверенность правил, ниже которой операция уходит в AI.
const aiThreshold = 0.5

var (
	ErrNotFound        = errors.New("transaction not found")
	ErrUnknownCategory = errors.New("unknown category")
	ErrInvalidEntry    = errors.New("invalid transaction")
)

// Store хранит данные онбординга и транзакции пользователя.
type Store interface {
	LoadUserData(ctx context.Context, userID uuid.UUID) (*models.OnboardingFormData, error)
	LoadTransactions(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error)
	SaveTransactions(ctx context.Context, userID uuid.UUID, transactions []models.Transaction) error
}

// Recategorizer предлагает категории для операций, в которых правила не уверены.
type Recategorizer interface {
	Categorize(ctx context.Context, input ai.CategorizeInput) ([]ai.Suggestion, error)
}

// ManualEntry описывает операцию, введенную вручную.
type ManualEntry struct {
	Date        string          `json:"date" validate:"required"`
	Description string          `json:"description" validate:"required,max=200"`
	Amount      decimal.Decimal `json:"amount"`
	CategoryID  string          `json:"categoryId"`
}

type ImportResult struct {
	Imported      int `json:"imported"`
	Recategorized int `json:"recategorized"`
	Total         int `json:"total"`
	LowConfidence int `json:"lowConfidence"`
	Uncategorized int `json:"uncategorized"`
}

type Service struct {
	store         Store
	recategorizer Recategorizer
	publisher     notifications.Publisher
	logger        *slog.Logger
	currency      string
	newID         func() string

	mu sync.Mutex
}

// NewService создает сервис транзакций. recategorizer и publisher могут быть nil.
func NewService(store Store, recategorizer Recategorizer, publisher notifications.Publisher, logger *slog.Logger, currency string) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:         store,
		recategorizer: recategorizer,
		publisher:     publisher,
		logger:        logger,
		currency:      currency,
		newID:         uuid.NewString,
	}
}

var _ review.Actions = (*Service)(nil)

// Categories возвращает категории пользователя. Поврежденная запись онбординга
// не мешает работе, используются встроенные категории.
func (s *Service) Categories(ctx context.Context, userID uuid.UUID) ([]models.Category, error) {
	data, err := s.store.LoadUserData(ctx, userID)
	if err != nil {
		if !errors.Is(err, userdata.ErrCorruptData) {
			return nil, err
		}
		s.logger.WarnContext(ctx, "categories from corrupt user data",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()),
		)
		data = nil
	}
	return Categories(data), nil
}

// List возвращает сохраненные транзакции пользователя.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error) {
	return s.store.LoadTransactions(ctx, userID)
}

// Review строит страницу проверки для пользователя.
func (s *Service) Review(ctx context.Context, userID uuid.UUID, opts review.Options, palette theme.Palette) (review.Result, error) {
	transactions, err := s.store.LoadTransactions(ctx, userID)
	if err != nil {
		return review.Result{}, err
	}
	categories, err := s.Categories(ctx, userID)
	if err != nil {
		return review.Result{}, err
	}
	if opts.Currency == "" {
		opts.Currency = s.currency
	}
	return review.Build(transactions, categories, opts, IsSplitWorthy, palette), nil
}

// Import разбирает CSV-выписку, категоризирует строки и добавляет их к сохраненным.
// Ошибка любой строки отменяет весь импорт.
func (s *Service) Import(ctx context.Context, userID uuid.UUID, r io.Reader) (ImportResult, error) {
	rows, err := ParseCSV(r)
	if err != nil {
		return ImportResult{}, err
	}

	categories, err := s.Categories(ctx, userID)
	if err != nil {
		return ImportResult{}, err
	}
	categorizer := NewCategorizer(categories)

	imported := make([]models.Transaction, 0, len(rows))
	for _, row := range rows {
		category, confidence := categorizer.Categorize(row.Description, row.Amount)
		imported = append(imported, models.Transaction{
			ID:          s.newID(),
			Date:        row.Date,
			Amount:      row.Amount,
			Description: row.Description,
			Category:    category,
			Confidence:  confidence,
			OriginalData: &models.OriginalData{
				Source: models.SourceCSV,
				Row:    row.Line,
				Raw:    row.Raw,
			},
		})
	}

	result := ImportResult{Imported: len(imported)}
	result.Recategorized = s.recategorize(ctx, userID, imported, categories, categorizer)

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.store.LoadTransactions(ctx, userID)
	if err != nil {
		return ImportResult{}, err
	}
	all := append(existing, imported...)
	if err := s.store.SaveTransactions(ctx, userID, all); err != nil {
		return ImportResult{}, err
	}

	result.Total = len(all)
	for _, tx := range imported {
		if tx.Confidence < review.LowConfidenceThreshold {
			result.LowConfidence++
		}
		if tx.Category == nil {
			result.Uncategorized++
		}
	}

	s.logger.InfoContext(ctx, "transactions imported",
		slog.String("user_id", userID.String()),
		slog.Int("imported", result.Imported),
		slog.Int("recategorized", result.Recategorized),
	)
	s.notify(ctx, userID, "import", result.Total)

	return result, nil
}

// recategorize отправляет в AI операции с уверенностью ниже порога и применяет
// подсказки, которые увереннее правил. Ошибка AI только логируется.
func (s *Service) recategorize(ctx context.Context, userID uuid.UUID, transactions []models.Transaction, categories []models.Category, categorizer *Categorizer) int {
	if s.recategorizer == nil {
		return 0
	}

	input := ai.CategorizeInput{Currency: s.currency}
	index := make(map[string]int)
	for i, tx := range transactions {
		if tx.Confidence >= aiThreshold {
			continue
		}
		index[tx.ID] = i
		input.Transactions = append(input.Transactions, ai.TransactionInput{
			ID:          tx.ID,
			Date:        tx.Date,
			Description: tx.Description,
			Amount:      tx.Amount.String(),
		})
	}
	if len(input.Transactions) == 0 {
		return 0
	}

	for _, category := range categories {
		input.Categories = append(input.Categories, ai.CategoryOption{
			ID:   category.ID,
			Name: category.Name,
			Type: string(category.Type),
		})
	}

	suggestions, err := s.recategorizer.Categorize(ctx, input)
	if err != nil {
		s.logger.WarnContext(ctx, "ai categorization failed",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()),
		)
	}

	applied := 0
	for _, suggestion := range suggestions {
		i, ok := index[suggestion.ID]
		if !ok || suggestion.Confidence <= transactions[i].Confidence {
			continue
		}
		category, ok := categorizer.Find(suggestion.CategoryID)
		if !ok {
			continue
		}
		transactions[i].Category = &category
		transactions[i].Confidence = suggestion.Confidence
		applied++
	}
	return applied
}

// AddManual добавляет операцию, введенную пользователем. Без категории она
// категоризируется правилами.
func (s *Service) AddManual(ctx context.Context, userID uuid.UUID, entry ManualEntry) (models.Transaction, error) {
	parsed, ok := review.ParseDate(entry.Date)
	if !ok {
		return models.Transaction{}, fmt.Errorf("%w: invalid date %q", ErrInvalidEntry, entry.Date)
	}
	description := strings.TrimSpace(entry.Description)
	if description == "" || entry.Amount.IsZero() {
		return models.Transaction{}, fmt.Errorf("%w: description and non-zero amount are required", ErrInvalidEntry)
	}

	categories, err := s.Categories(ctx, userID)
	if err != nil {
		return models.Transaction{}, err
	}
	categorizer := NewCategorizer(categories)

	tx := models.Transaction{
		ID:           s.newID(),
		Date:         parsed.Format(dateLayout),
		Amount:       entry.Amount,
		Description:  description,
		OriginalData: &models.OriginalData{Source: models.SourceManual},
	}

	if entry.CategoryID != "" {
		category, ok := categorizer.Find(entry.CategoryID)
		if !ok {
			return models.Transaction{}, fmt.Errorf("%w: %s", ErrUnknownCategory, entry.CategoryID)
		}
		tx.Category = &category
		tx.Confidence = 1
		tx.Confirmed = true
	} else {
		tx.Category, tx.Confidence = categorizer.Categorize(description, entry.Amount)
	}

	err = s.mutate(ctx, userID, func(transactions []models.Transaction) ([]models.Transaction, error) {
		return append(transactions, tx), nil
	})
	if err != nil {
		return models.Transaction{}, err
	}

	s.notify(ctx, userID, "manual", 1)
	return tx, nil
}

// ChangeCategory назначает категорию вручную. Уверенность становится 1, операция подтверждается.
func (s *Service) ChangeCategory(ctx context.Context, userID uuid.UUID, transactionID, categoryID string) (models.Transaction, error) {
	categories, err := s.Categories(ctx, userID)
	if err != nil {
		return models.Transaction{}, err
	}
	category, ok := NewCategorizer(categories).Find(categoryID)
	if !ok {
		return models.Transaction{}, fmt.Errorf("%w: %s", ErrUnknownCategory, categoryID)
	}

	var updated models.Transaction
	err = s.mutate(ctx, userID, func(transactions []models.Transaction) ([]models.Transaction, error) {
		i := indexOf(transactions, transactionID)
		if i < 0 {
			return nil, ErrNotFound
		}
		transactions[i].Category = &category
		transactions[i].Confidence = 1
		transactions[i].Confirmed = true
		updated = transactions[i]
		return transactions, nil
	})
	if err != nil {
		return models.Transaction{}, err
	}

	s.notify(ctx, userID, "category", 1)
	return updated, nil
}

// ConfirmAll подтверждает все операции и возвращает число изменившихся.
func (s *Service) ConfirmAll(ctx context.Context, userID uuid.UUID) (int, error) {
	changed := 0
	err := s.mutate(ctx, userID, func(transactions []models.Transaction) ([]models.Transaction, error) {
		for i := range transactions {
			if !transactions[i].Confirmed {
				transactions[i].Confirmed = true
				changed++
			}
		}
		return transactions, nil
	})
	if err != nil {
		return 0, err
	}

	if changed > 0 {
		s.notify(ctx, userID, "confirm", changed)
	}
	return changed, nil
}

// Split заменяет операцию её частями на том же месте списка.
func (s *Service) Split(ctx context.Context, userID uuid.UUID, transactionID string, req review.SplitRequest) ([]models.Transaction, error) {
	var children []models.Transaction
	err := s.mutate(ctx, userID, func(transactions []models.Transaction) ([]models.Transaction, error) {
		i := indexOf(transactions, transactionID)
		if i < 0 {
			return nil, ErrNotFound
		}
		parent := transactions[i]
		if parent.IsSplitPart() {
			return nil, fmt.Errorf("%w: transaction is already a split part", ErrInvalidSplit)
		}

		amounts, err := splitAmounts(parent.Amount, req)
		if err != nil {
			return nil, err
		}
		children = splitChildren(parent, amounts, s.newID)

		out := make([]models.Transaction, 0, len(transactions)+len(children)-1)
		out = append(out, transactions[:i]...)
		out = append(out, children...)
		out = append(out, transactions[i+1:]...)
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, userID, "split", len(children))
	return children, nil
}

func (s *Service) mutate(ctx context.Context, userID uuid.UUID, apply func([]models.Transaction) ([]models.Transaction, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	transactions, err := s.store.LoadTransactions(ctx, userID)
	if err != nil {
		return err
	}

	updated, err := apply(transactions)
	if err != nil {
		return err
	}

	return s.store.SaveTransactions(ctx, userID, updated)
}

func (s *Service) notify(ctx context.Context, userID uuid.UUID, reason string, count int) {
	notifications.Notify(ctx, s.publisher, s.logger, userID, notifications.EventTransactionsUpdated, map[string]interface{}{
		"reason": reason,
		"count":  count,
	})
}

func indexOf(transactions []models.Transaction, id string) int {
	for i, tx := range transactions {
		if tx.ID == id {
			return i
		}
	}
	return -1
}
