// Package review строит представление списка транзакций для проверки категорий.
// Список принадлежит вызывающей стороне, изменения выполняются через Actions.
package review

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MShkut/personal-finance-tracker/internal/forms"
	"github.com/MShkut/personal-finance-tracker/internal/models"
	"github.com/MShkut/personal-finance-tracker/internal/theme"
)

// Пороги полос уверенности (0.5/0.8) и фильтра low-confidence (0.7) различаются намеренно.
const (
	HighThreshold          = 0.8
	MediumThreshold        = 0.5
	LowConfidenceThreshold = 0.7
)

const (
	SortConfidence = "confidence"
	SortDate       = "date"
	SortAmount     = "amount"

	FilterAll           = "all"
	FilterLowConfidence = "low-confidence"
	FilterUnconfirmed   = "unconfirmed"

	UnknownType = "unknown"

	defaultCategoryColor = "bg-gray-400"
)

type Band string

const (
	BandHigh   Band = "High"
	BandMedium Band = "Medium"
	BandLow    Band = "Low"
)

// BandOf возвращает полосу уверенности.
func BandOf(confidence float64) Band {
	switch {
	case confidence >= HighThreshold:
		return BandHigh
	case confidence >= MediumThreshold:
		return BandMedium
	default:
		return BandLow
	}
}

// SplitRequest задает разбиение: явные суммы частей или число равных частей.
type SplitRequest struct {
	Amounts []decimal.Decimal `json:"amounts,omitempty"`
	Parts   int               `json:"parts,omitempty"`
}

// Actions выполняет изменения, которые пользователь запускает со страницы проверки.
type Actions interface {
	ChangeCategory(ctx context.Context, userID uuid.UUID, transactionID, categoryID string) (models.Transaction, error)
	ConfirmAll(ctx context.Context, userID uuid.UUID) (int, error)
	Split(ctx context.Context, userID uuid.UUID, transactionID string, req SplitRequest) ([]models.Transaction, error)
}

type Options struct {
	SortBy   string
	FilterBy string
	Currency string
}

type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var (
	SortOptions = []Option{
		{Value: SortConfidence, Label: "Sort by Confidence"},
		{Value: SortDate, Label: "Sort by Date"},
		{Value: SortAmount, Label: "Sort by Amount"},
	}

	FilterOptions = []Option{
		{Value: FilterAll, Label: "All Transactions"},
		{Value: FilterLowConfidence, Label: "Low Confidence"},
		{Value: FilterUnconfirmed, Label: "Unconfirmed"},
		{Value: string(models.CategoryTypeIncome), Label: "Income"},
		{Value: string(models.CategoryTypeExpense), Label: "Expenses"},
		{Value: string(models.CategoryTypeSavings), Label: "Savings"},
	}
)

type Stats struct {
	Totals        map[string]decimal.Decimal `json:"totals"`
	Display       map[string]string          `json:"display"`
	LowConfidence int                        `json:"lowConfidence"`
	Total         int                        `json:"total"`
}

type Item struct {
	Transaction     models.Transaction `json:"transaction"`
	Band            Band               `json:"band"`
	ConfidenceLabel string             `json:"confidenceLabel"`
	BadgeClass      string             `json:"badgeClass"`
	Border          string             `json:"border"`
	AmountDisplay   string             `json:"amountDisplay"`
	AmountClass     string             `json:"amountClass"`
	DateDisplay     string             `json:"dateDisplay"`
	SplitBadge      string             `json:"splitBadge,omitempty"`
	SplitBadgeClass string             `json:"splitBadgeClass,omitempty"`
	SplitWorthy     bool               `json:"splitWorthy"`
	SplitHint       string             `json:"splitHint"`
	Manual          bool               `json:"manual"`
	ManualClass     string             `json:"manualClass,omitempty"`
	Status          string             `json:"status"`
	CategoryName    string             `json:"categoryName"`
	CategoryColor   string             `json:"categoryColor"`
}

type Result struct {
	SortBy        string            `json:"sortBy"`
	FilterBy      string            `json:"filterBy"`
	Items         []Item            `json:"items"`
	Stats         Stats             `json:"stats"`
	Summary       string            `json:"summary,omitempty"`
	EmptyMessage  string            `json:"emptyMessage,omitempty"`
	ConfirmLabel  string            `json:"confirmLabel"`
	Categories    []models.Category `json:"categories"`
	SortOptions   []Option          `json:"sortOptions"`
	FilterOptions []Option          `json:"filterOptions"`
	Palette       theme.Palette     `json:"palette"`
}

// Build сортирует, фильтрует и размечает транзакции. Статистика считается
// по полному списку, а не по отфильтрованному.
func Build(transactions []models.Transaction, categories []models.Category, opts Options, isSplitWorthy func(models.Transaction) bool, palette theme.Palette) Result {
	if opts.SortBy == "" {
		opts.SortBy = SortConfidence
	}
	if opts.FilterBy == "" {
		opts.FilterBy = FilterAll
	}
	if opts.Currency == "" {
		opts.Currency = forms.DefaultCurrency
	}
	if isSplitWorthy == nil {
		isSplitWorthy = func(models.Transaction) bool { return false }
	}

	filtered := Filter(Sort(transactions, opts.SortBy), opts.FilterBy)

	items := make([]Item, 0, len(filtered))
	for _, tx := range filtered {
		items = append(items, decorate(tx, isSplitWorthy(tx), palette, opts.Currency))
	}

	if categories == nil {
		categories = []models.Category{}
	}

	result := Result{
		SortBy:        opts.SortBy,
		FilterBy:      opts.FilterBy,
		Items:         items,
		Stats:         ComputeStats(transactions, opts.Currency),
		ConfirmLabel:  fmt.Sprintf("Confirm All (%d)", len(transactions)),
		Categories:    categories,
		SortOptions:   SortOptions,
		FilterOptions: FilterOptions,
		Palette:       palette,
	}

	if len(items) == 0 {
		result.EmptyMessage = "No transactions match the current filter."
	} else {
		result.Summary = Summary(len(items), len(transactions), opts.FilterBy)
	}

	return result
}

// Sort возвращает отсортированную копию. Неизвестный ключ сохраняет исходный порядок.
func Sort(transactions []models.Transaction, key string) []models.Transaction {
	sorted := make([]models.Transaction, len(transactions))
	copy(sorted, transactions)

	var less func(a, b models.Transaction) bool
	switch key {
	case SortConfidence:
		less = func(a, b models.Transaction) bool { return a.Confidence < b.Confidence }
	case SortDate:
		less = func(a, b models.Transaction) bool {
			da, okA := ParseDate(a.Date)
			db, okB := ParseDate(b.Date)
			return okA && okB && da.After(db)
		}
	case SortAmount:
		less = func(a, b models.Transaction) bool { return a.Amount.Abs().GreaterThan(b.Amount.Abs()) }
	default:
		return sorted
	}

	sort.SliceStable(sorted, func(i, j int) bool { return less(sorted[i], sorted[j]) })
	return sorted
}

// Filter оставляет транзакции, подходящие под фильтр. Значение, не являющееся
// встроенным фильтром, сравнивается с типом категории.
func Filter(transactions []models.Transaction, filter string) []models.Transaction {
	out := make([]models.Transaction, 0, len(transactions))
	for _, tx := range transactions {
		if matches(tx, filter) {
			out = append(out, tx)
		}
	}
	return out
}

func matches(tx models.Transaction, filter string) bool {
	switch filter {
	case FilterAll:
		return true
	case FilterLowConfidence:
		return tx.Confidence < LowConfidenceThreshold
	case FilterUnconfirmed:
		return !tx.Confirmed
	default:
		return tx.Category != nil && string(tx.Category.Type) == filter
	}
}

// ComputeStats считает суммы по типам категорий, число транзакций с низкой уверенностью и общее число.
func ComputeStats(transactions []models.Transaction, currency string) Stats {
	stats := Stats{
		Totals:  make(map[string]decimal.Decimal),
		Display: make(map[string]string),
	}

	for _, categoryType := range []models.CategoryType{models.CategoryTypeIncome, models.CategoryTypeExpense, models.CategoryTypeSavings} {
		stats.Totals[string(categoryType)] = decimal.Zero
	}

	for _, tx := range transactions {
		key := string(tx.CategoryType())
		if key == "" {
			key = UnknownType
		}
		stats.Totals[key] = stats.Totals[key].Add(tx.Amount.Abs())
		if tx.Confidence < LowConfidenceThreshold {
			stats.LowConfidence++
		}
		stats.Total++
	}

	for key, total := range stats.Totals {
		stats.Display[key] = forms.FormatCurrency(total.Round(0), currency)
	}

	return stats
}

// Summary строит подпись под списком.
func Summary(shown, total int, filter string) string {
	summary := fmt.Sprintf("Showing %d of %d transactions", shown, total)
	if filter != FilterAll {
		summary += fmt.Sprintf(" (filtered by %s)", strings.Replace(filter, "-", " ", 1))
	}
	return summary
}

// ConfidenceLabel возвращает подпись вида "High (85%)".
func ConfidenceLabel(confidence float64) string {
	return fmt.Sprintf("%s (%d%%)", BandOf(confidence), int(math.Round(confidence*100)))
}

// Border возвращает состояние рамки карточки транзакции.
func Border(tx models.Transaction) string {
	switch {
	case tx.Confirmed:
		return "confirmed"
	case tx.Confidence < MediumThreshold:
		return "low"
	case tx.Confidence < HighThreshold:
		return "medium"
	default:
		return "high"
	}
}

// SplitBadge возвращает подпись "Split i/n" для части разбиения.
func SplitBadge(tx models.Transaction) string {
	if !tx.IsSplitPart() {
		return ""
	}
	return fmt.Sprintf("Split %d/%d", tx.OriginalData.SplitIndex, tx.OriginalData.SplitTotal)
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"01/02/2006",
	"1/2/2006",
	"2006/01/02",
	"Jan 2, 2006",
}

// ParseDate разбирает дату транзакции в одном из поддерживаемых форматов.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

func decorate(tx models.Transaction, splitWorthy bool, palette theme.Palette, currency string) Item {
	band := BandOf(tx.Confidence)
	item := Item{
		Transaction:     tx,
		Band:            band,
		ConfidenceLabel: ConfidenceLabel(tx.Confidence),
		Border:          Border(tx),
		AmountDisplay:   forms.FormatCurrency(tx.Amount.Abs(), currency),
		AmountClass:     palette.Outflow,
		DateDisplay:     tx.Date,
		SplitBadge:      SplitBadge(tx),
		SplitWorthy:     splitWorthy,
		SplitHint:       "Split this transaction",
		Status:          "Needs review",
		CategoryName:    "No category",
		CategoryColor:   defaultCategoryColor,
	}

	switch band {
	case BandHigh:
		item.BadgeClass = palette.BadgeHigh
	case BandMedium:
		item.BadgeClass = palette.BadgeMed
	default:
		item.BadgeClass = palette.BadgeLow
	}

	if tx.Amount.IsPositive() {
		item.AmountDisplay = "+" + item.AmountDisplay
		item.AmountClass = palette.Inflow
	}

	if parsed, ok := ParseDate(tx.Date); ok {
		item.DateDisplay = parsed.Format("Jan 2, 2006")
	}

	if item.SplitBadge != "" {
		item.SplitBadgeClass = palette.BadgeSplit
	}

	if splitWorthy {
		item.SplitHint = "This transaction looks like it could be split"
	}

	if tx.OriginalData != nil && tx.OriginalData.Source == models.SourceManual {
		item.Manual = true
		item.ManualClass = palette.Manual
	}

	if tx.Confirmed {
		item.Status = "Confirmed"
	}

	if tx.Category != nil {
		item.CategoryName = tx.Category.Name
		if tx.Category.Color != "" {
			item.CategoryColor = tx.Category.Color
		}
	}

	return item
}
