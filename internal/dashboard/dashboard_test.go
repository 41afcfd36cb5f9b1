package dashboard

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/MShkut/personal-finance-tracker/internal/models"
)

// TestBuildSummary проверяет итоговые суммы и остаток.
func TestBuildSummary(t *testing.T) {
	data := models.OnboardingFormData{
		Household:          &models.Household{Name: "Smith Family"},
		Period:             &models.Period{Type: models.PeriodMonthly},
		Income:             &models.IncomeData{TotalYearlyIncome: decimal.NewFromInt(60000)},
		SavingsAllocation:  &models.SavingsAllocationData{TotalYearlySavings: decimal.NewFromInt(12000), SavingsRate: 20},
		Expenses:           &models.ExpensesData{TotalYearlyExpenses: decimal.NewFromInt(36000), ByCategory: map[string]decimal.Decimal{models.ExpenseEssential: decimal.NewFromInt(36000)}},
		NetWorth:           &models.NetWorthData{TotalAssets: decimal.NewFromInt(10000), TotalLiabilities: decimal.NewFromInt(2000), NetWorth: decimal.NewFromInt(8000)},
		OnboardingComplete: true,
		CompletedAt:        "2026-03-01T12:00:00Z",
	}
	transactions := []models.Transaction{
		{ID: "a", Amount: decimal.NewFromInt(-40), Confidence: 0.3},
		{ID: "b", Amount: decimal.NewFromInt(2000), Confidence: 0.9, Category: &models.Category{ID: "salary", Type: models.CategoryTypeIncome}},
	}

	summary := Build(data, transactions, "USD")

	if !summary.Remaining.Yearly.Amount.Equal(decimal.NewFromInt(12000)) {
		t.Fatalf("expected remaining 12000, got %s", summary.Remaining.Yearly.Amount)
	}
	if summary.Remaining.Monthly.Display != "$1,000.00" {
		t.Fatalf("expected $1,000.00, got %s", summary.Remaining.Monthly.Display)
	}
	if summary.NetWorth.Display != "$8,000.00" {
		t.Fatalf("expected $8,000.00, got %s", summary.NetWorth.Display)
	}
	if summary.ByCategory[models.ExpenseEssential].Display != "$36,000.00" {
		t.Fatalf("expected essential $36,000.00, got %+v", summary.ByCategory)
	}
	if summary.Transactions.Total != 2 || summary.Transactions.LowConfidence != 1 {
		t.Fatalf("unexpected transaction stats %+v", summary.Transactions)
	}
	if summary.Household != "Smith Family" || !summary.Complete {
		t.Fatalf("unexpected header %+v", summary)
	}
}

// TestBuildPartialData проверяет сводку без заполненных разделов.
func TestBuildPartialData(t *testing.T) {
	summary := Build(models.OnboardingFormData{}, nil, "")

	if !summary.Income.Yearly.Amount.IsZero() || summary.NetWorth.Display != "$0.00" {
		t.Fatalf("expected zero summary, got %+v", summary)
	}
	if summary.Transactions.Total != 0 {
		t.Fatalf("expected no transactions, got %d", summary.Transactions.Total)
	}
}
