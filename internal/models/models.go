package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CategoryType string

type TransactionSource string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
	CategoryTypeSavings CategoryType = "savings"

	SourceCSV    TransactionSource = "csv"
	SourceManual TransactionSource = "manual"
	SourceSplit  TransactionSource = "split"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         *string   `json:"name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Category struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Type  CategoryType `json:"type"`
	Color string       `json:"color"`
}

// OriginalData хранит происхождение транзакции: источник импорта и связь с разбиением.
type OriginalData struct {
	Source     TransactionSource `json:"source,omitempty"`
	Row        int               `json:"row,omitempty"`
	Raw        map[string]string `json:"raw,omitempty"`
	SplitFrom  string            `json:"splitFrom,omitempty"`
	SplitIndex int               `json:"splitIndex,omitempty"`
	SplitTotal int               `json:"splitTotal,omitempty"`
}

// Transaction описывает операцию из выписки. Положительная сумма означает поступление.
type Transaction struct {
	ID           string          `json:"id"`
	Date         string          `json:"date"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description"`
	Category     *Category       `json:"category,omitempty"`
	Confidence   float64         `json:"confidence"`
	Confirmed    bool            `json:"confirmed"`
	OriginalData *OriginalData   `json:"originalData,omitempty"`
}

// CategoryType возвращает тип категории или пустую строку для операций без категории.
func (t Transaction) CategoryType() CategoryType {
	if t.Category == nil {
		return ""
	}
	return t.Category.Type
}

// IsSplitPart сообщает, получена ли операция разбиением другой.
func (t Transaction) IsSplitPart() bool {
	return t.OriginalData != nil && t.OriginalData.SplitFrom != ""
}

type ThemePreference struct {
	DarkMode  bool      `json:"darkMode"`
	UpdatedAt time.Time `json:"updatedAt"`
}
