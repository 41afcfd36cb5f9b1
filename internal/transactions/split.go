package transactions

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MShkut/personal-finance-tracker/internal/models"
	"github.com/MShkut/personal-finance-tracker/internal/review"
)

const (
	maxSplitParts = 12

	splitWorthyThreshold = 100
)

var ErrInvalidSplit = errors.New("invalid split")

// Мерчанты, у которых в одном чеке часто смешаны разные категории.
var splitWorthyMerchants = []string{"amazon", "walmart", "target", "costco", "paypal", "venmo", "check"}

// IsSplitWorthy сообщает, стоит ли предлагать разбиение операции.
func IsSplitWorthy(tx models.Transaction) bool {
	if tx.IsSplitPart() {
		return false
	}
	if tx.Amount.Abs().LessThan(decimal.NewFromInt(splitWorthyThreshold)) {
		return false
	}

	text := strings.ToLower(tx.Description)
	for _, merchant := range splitWorthyMerchants {
		if strings.Contains(text, merchant) {
			return true
		}
	}
	return false
}

// splitAmounts возвращает суммы частей. Явные суммы должны иметь знак родителя
// и в сумме давать его; при равном делении остаток копеек уходит в последнюю часть.
func splitAmounts(parent decimal.Decimal, req review.SplitRequest) ([]decimal.Decimal, error) {
	if len(req.Amounts) > 0 {
		if len(req.Amounts) < 2 || len(req.Amounts) > maxSplitParts {
			return nil, fmt.Errorf("%w: expected 2 to %d parts, got %d", ErrInvalidSplit, maxSplitParts, len(req.Amounts))
		}

		total := decimal.Zero
		for _, amount := range req.Amounts {
			if amount.IsZero() || amount.Sign() != parent.Sign() {
				return nil, fmt.Errorf("%w: part %s must be non-zero with the sign of %s", ErrInvalidSplit, amount, parent)
			}
			total = total.Add(amount)
		}
		if !total.Equal(parent) {
			return nil, fmt.Errorf("%w: parts sum to %s, expected %s", ErrInvalidSplit, total, parent)
		}

		out := make([]decimal.Decimal, len(req.Amounts))
		copy(out, req.Amounts)
		return out, nil
	}

	if req.Parts < 2 || req.Parts > maxSplitParts {
		return nil, fmt.Errorf("%w: expected 2 to %d parts, got %d", ErrInvalidSplit, maxSplitParts, req.Parts)
	}

	parts := decimal.NewFromInt(int64(req.Parts))
	share := parent.Div(parts).Truncate(2)
	if share.IsZero() {
		return nil, fmt.Errorf("%w: %s is too small for %d parts", ErrInvalidSplit, parent, req.Parts)
	}

	out := make([]decimal.Decimal, req.Parts)
	for i := 0; i < req.Parts-1; i++ {
		out[i] = share
	}
	out[req.Parts-1] = parent.Sub(share.Mul(decimal.NewFromInt(int64(req.Parts - 1))))

	return out, nil
}

func splitChildren(parent models.Transaction, amounts []decimal.Decimal, newID func() string) []models.Transaction {
	children := make([]models.Transaction, 0, len(amounts))
	for i, amount := range amounts {
		child := parent
		child.ID = newID()
		child.Amount = amount
		child.Confirmed = false
		child.OriginalData = &models.OriginalData{
			Source:     models.SourceSplit,
			SplitFrom:  parent.ID,
			SplitIndex: i + 1,
			SplitTotal: len(amounts),
		}
		if parent.OriginalData != nil {
			child.OriginalData.Row = parent.OriginalData.Row
		}
		if parent.Category != nil {
			category := *parent.Category
			child.Category = &category
		}
		children = append(children, child)
	}
	return children
}
