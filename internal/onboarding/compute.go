package onboarding

import (
	"github.com/shopspring/decimal"

	"github.com/MShkut/personal-finance-tracker/internal/forms"
	"github.com/MShkut/personal-finance-tracker/internal/models"
)

// Доля основного источника, начиная с которой доход не считается диверсифицированным.
var diversifiedShareLimit = decimal.NewFromFloat(0.75)

func yearlyTotal(items []models.ListItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(forms.ConvertToYearly(item.Amount.Value(), item.Frequency))
	}
	return total
}

func plainTotal(items []models.ListItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Amount.Value())
	}
	return total
}

func share(part, total decimal.Decimal) float64 {
	if !total.IsPositive() {
		return 0
	}
	value, _ := part.Div(total).Round(4).Float64()
	return value
}

func computeIncome(sources []models.ListItem) models.IncomeData {
	total := yearlyTotal(sources)
	return models.IncomeData{
		IncomeSources:     sources,
		TotalYearlyIncome: total,
		MonthlyIncome:     forms.ToMonthly(total),
		Insights:          analyzeIncome(sources, total),
	}
}

func analyzeIncome(sources []models.ListItem, total decimal.Decimal) models.IncomeInsights {
	insights := models.IncomeInsights{SourceCount: len(sources)}
	if !total.IsPositive() {
		return insights
	}

	primary := decimal.Zero
	oneTime := decimal.Zero
	for _, source := range sources {
		yearly := forms.ConvertToYearly(source.Amount.Value(), source.Frequency)
		if yearly.GreaterThan(primary) {
			primary = yearly
			insights.PrimarySource = source.Name
		}
		if frequency, ok := forms.ParseFrequency(string(source.Frequency)); ok && frequency == forms.OneTime {
			oneTime = oneTime.Add(yearly)
		}
	}

	insights.PrimaryShare = share(primary, total)
	insights.OneTimeShare = share(oneTime, total)
	insights.Diversified = len(sources) > 1 && primary.Div(total).LessThan(diversifiedShareLimit)
	return insights
}

func yearlyIncome(data models.OnboardingFormData) decimal.Decimal {
	if data.Income == nil {
		return decimal.Zero
	}
	return data.Income.TotalYearlyIncome
}

func yearlySavings(data models.OnboardingFormData) decimal.Decimal {
	if data.SavingsAllocation == nil {
		return decimal.Zero
	}
	return data.SavingsAllocation.TotalYearlySavings
}

func computeSavings(allocations []models.ListItem, income decimal.Decimal) models.SavingsAllocationData {
	total := yearlyTotal(allocations)
	rate := share(total, income) * 100
	return models.SavingsAllocationData{
		Allocations:           allocations,
		TotalYearlySavings:    total,
		MonthlySavings:        forms.ToMonthly(total),
		SavingsRate:           rate,
		RemainingYearlyIncome: income.Sub(total),
	}
}

func computeExpenses(items []models.ListItem, income, savings decimal.Decimal) models.ExpensesData {
	total := decimal.Zero
	byCategory := map[string]decimal.Decimal{
		models.ExpenseEssential:     decimal.Zero,
		models.ExpenseDiscretionary: decimal.Zero,
	}

	for _, item := range items {
		yearly := forms.ConvertToYearly(item.Amount.Value(), item.Frequency)
		total = total.Add(yearly)
		byCategory[item.Category] = byCategory[item.Category].Add(yearly)
	}

	remaining := income.Sub(savings).Sub(total)
	return models.ExpensesData{
		Items:               items,
		TotalYearlyExpenses: total,
		MonthlyExpenses:     forms.ToMonthly(total),
		ByCategory:          byCategory,
		RemainingYearly:     remaining,
		Balanced:            !remaining.IsNegative(),
	}
}

func computeNetWorth(assets, liabilities []models.ListItem) models.NetWorthData {
	totalAssets := plainTotal(assets)
	totalLiabilities := plainTotal(liabilities)
	return models.NetWorthData{
		Assets:           assets,
		Liabilities:      liabilities,
		TotalAssets:      totalAssets,
		TotalLiabilities: totalLiabilities,
		NetWorth:         totalAssets.Sub(totalLiabilities),
	}
}
