package models

import (
	"github.com/shopspring/decimal"

	"github.com/MShkut/personal-finance-tracker/internal/forms"
)

// SchemaVersion задает текущую версию формата сохраненной записи онбординга.
const SchemaVersion = 1

type FormKey string

type PeriodType string

const (
	KeyHousehold         FormKey = "household"
	KeyPeriod            FormKey = "period"
	KeyIncome            FormKey = "income"
	KeySavingsAllocation FormKey = "savingsAllocation"
	KeyExpenses          FormKey = "expenses"
	KeyNetWorth          FormKey = "netWorth"

	PeriodMonthly PeriodType = "monthly"
	PeriodYearly  PeriodType = "yearly"

	ExpenseEssential     = "essential"
	ExpenseDiscretionary = "discretionary"
)

type Household struct {
	Name    string `json:"name"`
	Members int    `json:"members,omitempty"`
}

type Period struct {
	Type      PeriodType `json:"type"`
	StartDate string     `json:"startDate,omitempty"`
}

// ListItem описывает строку любого списка мастера.
type ListItem struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Amount    forms.Amount    `json:"amount"`
	Frequency forms.Frequency `json:"frequency,omitempty"`
	Category  string          `json:"category,omitempty"`
}

func (i ListItem) ItemID() string { return i.ID }

func (i ListItem) WithID(id string) ListItem {
	i.ID = id
	return i
}

type IncomeInsights struct {
	PrimarySource string  `json:"primarySource,omitempty"`
	PrimaryShare  float64 `json:"primaryShare"`
	OneTimeShare  float64 `json:"oneTimeShare"`
	SourceCount   int     `json:"sourceCount"`
	Diversified   bool    `json:"diversified"`
}

type IncomeData struct {
	IncomeSources     []ListItem      `json:"incomeSources"`
	TotalYearlyIncome decimal.Decimal `json:"totalYearlyIncome"`
	MonthlyIncome     decimal.Decimal `json:"monthlyIncome"`
	Insights          IncomeInsights  `json:"insights"`
}

type SavingsAllocationData struct {
	Allocations           []ListItem      `json:"allocations"`
	TotalYearlySavings    decimal.Decimal `json:"totalYearlySavings"`
	MonthlySavings        decimal.Decimal `json:"monthlySavings"`
	SavingsRate           float64         `json:"savingsRate"`
	RemainingYearlyIncome decimal.Decimal `json:"remainingYearlyIncome"`
}

type ExpensesData struct {
	Items               []ListItem                 `json:"items"`
	TotalYearlyExpenses decimal.Decimal            `json:"totalYearlyExpenses"`
	MonthlyExpenses     decimal.Decimal            `json:"monthlyExpenses"`
	ByCategory          map[string]decimal.Decimal `json:"byCategory"`
	RemainingYearly     decimal.Decimal            `json:"remainingYearly"`
	Balanced            bool                       `json:"balanced"`
}

type NetWorthData struct {
	Assets           []ListItem      `json:"assets"`
	Liabilities      []ListItem      `json:"liabilities"`
	TotalAssets      decimal.Decimal `json:"totalAssets"`
	TotalLiabilities decimal.Decimal `json:"totalLiabilities"`
	NetWorth         decimal.Decimal `json:"netWorth"`
}

// OnboardingFormData содержит накопленные данные мастера настройки.
// После onboardingComplete все пять разделов заполнены.
type OnboardingFormData struct {
	SchemaVersion      int                    `json:"schemaVersion"`
	Household          *Household             `json:"household,omitempty"`
	Period             *Period                `json:"period,omitempty"`
	Income             *IncomeData            `json:"income,omitempty"`
	SavingsAllocation  *SavingsAllocationData `json:"savingsAllocation,omitempty"`
	Expenses           *ExpensesData          `json:"expenses,omitempty"`
	NetWorth           *NetWorthData          `json:"netWorth,omitempty"`
	OnboardingStep     int                    `json:"onboardingStep"`
	OnboardingComplete bool                   `json:"onboardingComplete,omitempty"`
	CompletedAt        string                 `json:"completedAt,omitempty"`
}

// HasAllSections проверяет, что заполнены все пять разделов данных.
func (d OnboardingFormData) HasAllSections() bool {
	return d.Household != nil &&
		d.Income != nil &&
		d.SavingsAllocation != nil &&
		d.Expenses != nil &&
		d.NetWorth != nil
}

// Merge переносит в d заполненные разделы из other. Остальные разделы d не меняются.
func (d *OnboardingFormData) Merge(other OnboardingFormData) {
	if other.Household != nil {
		d.Household = other.Household
	}
	if other.Period != nil {
		d.Period = other.Period
	}
	if other.Income != nil {
		d.Income = other.Income
	}
	if other.SavingsAllocation != nil {
		d.SavingsAllocation = other.SavingsAllocation
	}
	if other.Expenses != nil {
		d.Expenses = other.Expenses
	}
	if other.NetWorth != nil {
		d.NetWorth = other.NetWorth
	}
}
