// Package transactions импортирует выписки, категоризирует операции и выполняет
// изменения со страницы проверки транзакций.
package transactions

import (
	"strings"
	"unicode"

	"github.com/MShkut/personal-finance-tracker/internal/models"
)

const (
	CategoryOtherIncome = "other-income"

	incomePrefix  = "income-"
	savingsPrefix = "savings-"
	expensePrefix = "expense-"
)

var defaultCategories = []models.Category{
	{ID: "salary", Name: "Salary", Type: models.CategoryTypeIncome, Color: "bg-green-500"},
	{ID: CategoryOtherIncome, Name: "Other Income", Type: models.CategoryTypeIncome, Color: "bg-emerald-500"},
	{ID: "housing", Name: "Housing", Type: models.CategoryTypeExpense, Color: "bg-blue-500"},
	{ID: "utilities", Name: "Utilities", Type: models.CategoryTypeExpense, Color: "bg-yellow-500"},
	{ID: "groceries", Name: "Groceries", Type: models.CategoryTypeExpense, Color: "bg-orange-500"},
	{ID: "dining", Name: "Dining Out", Type: models.CategoryTypeExpense, Color: "bg-red-500"},
	{ID: "transportation", Name: "Transportation", Type: models.CategoryTypeExpense, Color: "bg-indigo-500"},
	{ID: "shopping", Name: "Shopping", Type: models.CategoryTypeExpense, Color: "bg-pink-500"},
	{ID: "entertainment", Name: "Entertainment", Type: models.CategoryTypeExpense, Color: "bg-purple-500"},
	{ID: "health", Name: "Health", Type: models.CategoryTypeExpense, Color: "bg-teal-500"},
	{ID: "savings-transfer", Name: "Savings Transfer", Type: models.CategoryTypeSavings, Color: "bg-cyan-500"},
}

// DefaultCategories возвращает копию встроенного набора категорий.
func DefaultCategories() []models.Category {
	out := make([]models.Category, len(defaultCategories))
	copy(out, defaultCategories)
	return out
}

// Categories объединяет встроенные категории с источниками дохода, статьями
// сбережений и расходами из онбординга. data может быть nil.
func Categories(data *models.OnboardingFormData) []models.Category {
	categories := DefaultCategories()
	if data == nil {
		return categories
	}

	seen := make(map[string]bool, len(categories))
	for _, category := range categories {
		seen[category.ID] = true
	}

	add := func(prefix, name string, categoryType models.CategoryType, color string) {
		id := slug(name)
		if id == "" {
			return
		}
		id = prefix + id
		if seen[id] {
			return
		}
		seen[id] = true
		categories = append(categories, models.Category{
			ID:    id,
			Name:  strings.TrimSpace(name),
			Type:  categoryType,
			Color: color,
		})
	}

	if data.Income != nil {
		for _, source := range data.Income.IncomeSources {
			add(incomePrefix, source.Name, models.CategoryTypeIncome, "bg-green-400")
		}
	}
	if data.SavingsAllocation != nil {
		for _, allocation := range data.SavingsAllocation.Allocations {
			add(savingsPrefix, allocation.Name, models.CategoryTypeSavings, "bg-cyan-400")
		}
	}
	if data.Expenses != nil {
		for _, expense := range data.Expenses.Items {
			color := "bg-blue-400"
			if expense.Category == models.ExpenseDiscretionary {
				color = "bg-pink-400"
			}
			add(expensePrefix, expense.Name, models.CategoryTypeExpense, color)
		}
	}

	return categories
}

func isUserCategory(id string) bool {
	return strings.HasPrefix(id, incomePrefix) ||
		strings.HasPrefix(id, savingsPrefix) ||
		strings.HasPrefix(id, expensePrefix)
}

// slug приводит имя к виду "car-payment".
func slug(name string) string {
	var builder strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			builder.WriteRune(r)
			dash = false
			continue
		}
		if !dash && builder.Len() > 0 {
			builder.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(builder.String(), "-")
}
