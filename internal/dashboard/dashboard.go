// Package dashboard собирает сводку по завершенному онбордингу и транзакциям.
package dashboard

import (
	"github.com/shopspring/decimal"

	"github.com/MShkut/personal-finance-tracker/internal/forms"
	"github.com/MShkut/personal-finance-tracker/internal/models"
	"github.com/MShkut/personal-finance-tracker/internal/onboarding"
	"github.com/MShkut/personal-finance-tracker/internal/review"
)

// Line описывает годовую и месячную сумму одной строки сводки.
type Line struct {
	Yearly  onboarding.Money `json:"yearly"`
	Monthly onboarding.Money `json:"monthly"`
}

type Summary struct {
	Household    string                      `json:"household"`
	Period       models.PeriodType           `json:"period"`
	Complete     bool                        `json:"complete"`
	CompletedAt  string                      `json:"completedAt,omitempty"`
	Income       Line                        `json:"income"`
	Savings      Line                        `json:"savings"`
	SavingsRate  float64                     `json:"savingsRate"`
	Expenses     Line                        `json:"expenses"`
	ByCategory   map[string]onboarding.Money `json:"byCategory"`
	Remaining    Line                        `json:"remaining"`
	Assets       onboarding.Money            `json:"assets"`
	Liabilities  onboarding.Money            `json:"liabilities"`
	NetWorth     onboarding.Money            `json:"netWorth"`
	Transactions review.Stats                `json:"transactions"`
}

// Build строит сводку. data может быть неполной, отсутствующие разделы дают нули.
func Build(data models.OnboardingFormData, transactions []models.Transaction, currency string) Summary {
	if currency == "" {
		currency = forms.DefaultCurrency
	}
	money := func(amount decimal.Decimal) onboarding.Money {
		return onboarding.Money{Amount: amount, Display: forms.FormatCurrency(amount, currency)}
	}
	line := func(yearly decimal.Decimal) Line {
		return Line{Yearly: money(yearly), Monthly: money(forms.ToMonthly(yearly))}
	}

	summary := Summary{
		Complete:     data.OnboardingComplete,
		CompletedAt:  data.CompletedAt,
		ByCategory:   make(map[string]onboarding.Money),
		Transactions: review.ComputeStats(transactions, currency),
	}

	if data.Household != nil {
		summary.Household = data.Household.Name
	}
	if data.Period != nil {
		summary.Period = data.Period.Type
	}

	income := decimal.Zero
	if data.Income != nil {
		income = data.Income.TotalYearlyIncome
	}
	savings := decimal.Zero
	if data.SavingsAllocation != nil {
		savings = data.SavingsAllocation.TotalYearlySavings
		summary.SavingsRate = data.SavingsAllocation.SavingsRate
	}
	expenses := decimal.Zero
	if data.Expenses != nil {
		expenses = data.Expenses.TotalYearlyExpenses
		for category, total := range data.Expenses.ByCategory {
			summary.ByCategory[category] = money(total)
		}
	}

	summary.Income = line(income)
	summary.Savings = line(savings)
	summary.Expenses = line(expenses)
	summary.Remaining = line(income.Sub(savings).Sub(expenses))

	assets, liabilities, netWorth := decimal.Zero, decimal.Zero, decimal.Zero
	if data.NetWorth != nil {
		assets = data.NetWorth.TotalAssets
		liabilities = data.NetWorth.TotalLiabilities
		netWorth = data.NetWorth.NetWorth
	}
	summary.Assets = money(assets)
	summary.Liabilities = money(liabilities)
	summary.NetWorth = money(netWorth)

	return summary
}
