package onboarding

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/MShkut/personal-finance-tracker/internal/forms"
	"github.com/MShkut/personal-finance-tracker/internal/models"
)

// Money содержит сумму и её отображение в валюте пользователя.
type Money struct {
	Amount  decimal.Decimal `json:"amount"`
	Display string          `json:"display"`
}

type View struct {
	Step        Step   `json:"step"`
	Name        string `json:"name"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	NextLabel   string `json:"nextLabel"`
	ShowBack    bool   `json:"showBack"`
	CanContinue bool   `json:"canContinue"`

	Welcome  *WelcomeView  `json:"welcome,omitempty"`
	Income   *IncomeView   `json:"income,omitempty"`
	Savings  *SavingsView  `json:"savings,omitempty"`
	Expenses *ExpensesView `json:"expenses,omitempty"`
	NetWorth *NetWorthView `json:"netWorth,omitempty"`
}

type WelcomeView struct {
	HouseholdName string              `json:"householdName"`
	Members       int                 `json:"members"`
	Period        models.Period       `json:"period"`
	PeriodOptions []models.PeriodType `json:"periodOptions"`
	CanContinue   bool                `json:"canContinue"`
}

type IncomeView struct {
	Sources          []models.ListItem     `json:"sources"`
	FrequencyOptions []forms.Frequency     `json:"frequencyOptions"`
	TotalYearly      Money                 `json:"totalYearly"`
	Monthly          Money                 `json:"monthly"`
	SourceCountLabel string                `json:"sourceCountLabel"`
	Insights         models.IncomeInsights `json:"insights"`
	AddLabel         string                `json:"addLabel"`
	CanContinue      bool                  `json:"canContinue"`
}

type SavingsView struct {
	Allocations      []models.ListItem `json:"allocations"`
	FrequencyOptions []forms.Frequency `json:"frequencyOptions"`
	YearlyIncome     Money             `json:"yearlyIncome"`
	TotalYearly      Money             `json:"totalYearly"`
	Monthly          Money             `json:"monthly"`
	SavingsRate      float64           `json:"savingsRate"`
	Remaining        Money             `json:"remaining"`
	CanContinue      bool              `json:"canContinue"`
}

type ExpensesView struct {
	Items            []models.ListItem `json:"items"`
	FrequencyOptions []forms.Frequency `json:"frequencyOptions"`
	TotalYearly      Money             `json:"totalYearly"`
	Monthly          Money             `json:"monthly"`
	ByCategory       map[string]Money  `json:"byCategory"`
	Remaining        Money             `json:"remaining"`
	Balanced         bool              `json:"balanced"`
	CanContinue      bool              `json:"canContinue"`
}

type NetWorthView struct {
	Assets           []models.ListItem `json:"assets"`
	Liabilities      []models.ListItem `json:"liabilities"`
	TotalAssets      Money             `json:"totalAssets"`
	TotalLiabilities Money             `json:"totalLiabilities"`
	NetWorth         Money             `json:"netWorth"`
	CanContinue      bool              `json:"canContinue"`
}

// View строит модель представления текущего шага.
func (f *Flow) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.viewOf(f.step)
}

func (f *Flow) viewOf(step Step) View {
	owner := possessive(f.data.Household)
	view := View{
		Step:     step,
		Name:     step.String(),
		ShowBack: step != StepWelcome,
	}

	switch step {
	case StepWelcome:
		content := f.welcomeView()
		view.Title = "Welcome"
		view.Subtitle = "Tell us who this budget is for and how you want to plan it."
		view.NextLabel = "Continue to Income"
		view.CanContinue = content.CanContinue
		view.Welcome = &content
	case StepIncome:
		content := f.incomeView()
		view.Title = owner + " Income Sources"
		view.Subtitle = "Start by entering all sources of regular income. This forms the foundation of your financial plan."
		view.NextLabel = "Continue to Savings"
		view.CanContinue = content.CanContinue
		view.Income = &content
	case StepSavings:
		content := f.savingsView()
		view.Title = owner + " Savings Allocation"
		view.Subtitle = "Decide how much of your income goes to savings before spending."
		view.NextLabel = "Continue to Expenses"
		view.CanContinue = content.CanContinue
		view.Savings = &content
	case StepExpenses:
		content := f.expensesView()
		view.Title = owner + " Expenses"
		view.Subtitle = "List your regular expenses and mark which ones are essential."
		view.NextLabel = "Continue to Net Worth"
		view.CanContinue = content.CanContinue
		view.Expenses = &content
	case StepNetWorth:
		content := f.netWorthView()
		view.Title = owner + " Net Worth"
		view.Subtitle = "Add what you own and what you owe to see where you stand today."
		view.NextLabel = "Complete Setup"
		view.CanContinue = content.CanContinue
		view.NetWorth = &content
	}

	return view
}

// possessive строит притяжательную форму названия домохозяйства для заголовков.
func possessive(household *models.Household) string {
	if household == nil || !forms.HasValidString(household.Name) {
		return "Your"
	}
	return household.Name + "'s"
}

func (f *Flow) money(amount decimal.Decimal) Money {
	return Money{Amount: amount, Display: forms.FormatCurrency(amount, f.currency)}
}

func (f *Flow) welcomeView() WelcomeView {
	view := WelcomeView{
		Period:        models.Period{Type: models.PeriodMonthly},
		PeriodOptions: []models.PeriodType{models.PeriodMonthly, models.PeriodYearly},
	}
	if f.data.Household != nil {
		view.HouseholdName = f.data.Household.Name
		view.Members = f.data.Household.Members
	}
	if f.data.Period != nil {
		view.Period = *f.data.Period
	}
	view.CanContinue = forms.HasValidString(view.HouseholdName)
	return view
}

func (f *Flow) incomeView() IncomeView {
	sources := f.drafts[ListIncomeSources].Items()
	income := computeIncome(sources)

	addLabel := "Add another income source"
	if len(sources) == 0 {
		addLabel = "Add your first income source"
	}

	return IncomeView{
		Sources:          sources,
		FrequencyOptions: forms.FrequencyOptions(true),
		TotalYearly:      f.money(income.TotalYearlyIncome),
		Monthly:          f.money(income.MonthlyIncome),
		SourceCountLabel: sourceCountLabel(len(sources)),
		Insights:         income.Insights,
		AddLabel:         addLabel,
		CanContinue: income.TotalYearlyIncome.IsPositive() &&
			listKinds[ListIncomeSources].allValid(sources),
	}
}

func sourceCountLabel(count int) string {
	if count == 1 {
		return "1 source"
	}
	return fmt.Sprintf("%d sources", count)
}

func (f *Flow) savingsView() SavingsView {
	allocations := f.drafts[ListSavingsAllocations].Items()
	income := yearlyIncome(f.data)
	savings := computeSavings(allocations, income)

	return SavingsView{
		Allocations:      allocations,
		FrequencyOptions: forms.FrequencyOptions(false),
		YearlyIncome:     f.money(income),
		TotalYearly:      f.money(savings.TotalYearlySavings),
		Monthly:          f.money(savings.MonthlySavings),
		SavingsRate:      savings.SavingsRate,
		Remaining:        f.money(savings.RemainingYearlyIncome),
		CanContinue: listKinds[ListSavingsAllocations].allValid(allocations) &&
			savings.TotalYearlySavings.LessThanOrEqual(income),
	}
}

func (f *Flow) expensesView() ExpensesView {
	items := f.drafts[ListExpenses].Items()
	expenses := computeExpenses(items, yearlyIncome(f.data), yearlySavings(f.data))

	byCategory := make(map[string]Money, len(expenses.ByCategory))
	for category, amount := range expenses.ByCategory {
		byCategory[category] = f.money(amount)
	}

	return ExpensesView{
		Items:            items,
		FrequencyOptions: forms.FrequencyOptions(false),
		TotalYearly:      f.money(expenses.TotalYearlyExpenses),
		Monthly:          f.money(expenses.MonthlyExpenses),
		ByCategory:       byCategory,
		Remaining:        f.money(expenses.RemainingYearly),
		Balanced:         expenses.Balanced,
		CanContinue:      len(items) > 0 && listKinds[ListExpenses].allValid(items),
	}
}

func (f *Flow) netWorthView() NetWorthView {
	assets := f.drafts[ListAssets].Items()
	liabilities := f.drafts[ListLiabilities].Items()
	netWorth := computeNetWorth(assets, liabilities)

	return NetWorthView{
		Assets:           assets,
		Liabilities:      liabilities,
		TotalAssets:      f.money(netWorth.TotalAssets),
		TotalLiabilities: f.money(netWorth.TotalLiabilities),
		NetWorth:         f.money(netWorth.NetWorth),
		CanContinue: listKinds[ListAssets].allValid(assets) &&
			listKinds[ListLiabilities].allValid(liabilities),
	}
}
