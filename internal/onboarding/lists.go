package onboarding

import (
	"strings"

	"github.com/MShkut/personal-finance-tracker/internal/forms"
	"github.com/MShkut/personal-finance-tracker/internal/models"
)

type ListName string

const (
	ListIncomeSources      ListName = "incomeSources"
	ListSavingsAllocations ListName = "savingsAllocations"
	ListExpenses           ListName = "expenses"
	ListAssets             ListName = "assets"
	ListLiabilities        ListName = "liabilities"
)

type listKind struct {
	withFrequency bool
	allowOneTime  bool
	withCategory  bool
}

var listKinds = map[ListName]listKind{
	ListIncomeSources:      {withFrequency: true, allowOneTime: true},
	ListSavingsAllocations: {withFrequency: true},
	ListExpenses:           {withFrequency: true, withCategory: true},
	ListAssets:             {},
	ListLiabilities:        {},
}

// ParseListName проверяет имя списка из URL.
func ParseListName(value string) (ListName, bool) {
	name := ListName(strings.TrimSpace(value))
	_, ok := listKinds[name]
	return name, ok
}

// normalize заполняет значения по умолчанию, как это делает форма при добавлении строки.
func (k listKind) normalize(item models.ListItem) models.ListItem {
	item.Name = strings.TrimSpace(item.Name)

	if k.withFrequency {
		if parsed, ok := forms.ParseFrequency(string(item.Frequency)); ok {
			item.Frequency = parsed
		} else if strings.TrimSpace(string(item.Frequency)) == "" {
			item.Frequency = forms.Monthly
		}
	} else {
		item.Frequency = ""
	}

	if k.withCategory {
		category := strings.ToLower(strings.TrimSpace(item.Category))
		if category == "" {
			category = models.ExpenseEssential
		}
		item.Category = category
	} else {
		item.Category = ""
	}

	return item
}

// valid проверяет заполненность строки списка.
func (k listKind) valid(item models.ListItem) bool {
	if !forms.HasValidString(item.Name) {
		return false
	}

	if k.withFrequency {
		if !forms.IsPositiveNumber(item.Amount) {
			return false
		}
		if !forms.IsValidFrequency(item.Frequency, k.allowOneTime) {
			return false
		}
	} else if !forms.IsNonNegativeNumber(item.Amount) {
		return false
	}

	if k.withCategory {
		return item.Category == models.ExpenseEssential || item.Category == models.ExpenseDiscretionary
	}

	return true
}

func (k listKind) allValid(items []models.ListItem) bool {
	for _, item := range items {
		if !k.valid(item) {
			return false
		}
	}
	return true
}

func newDrafts(seed *models.OnboardingFormData) map[ListName]*forms.List[models.ListItem] {
	drafts := make(map[ListName]*forms.List[models.ListItem], len(listKinds))
	for name := range listKinds {
		drafts[name] = forms.NewList[models.ListItem]()
	}

	if seed == nil {
		return drafts
	}

	if seed.Income != nil {
		drafts[ListIncomeSources] = forms.NewList(seed.Income.IncomeSources...)
	}
	if seed.SavingsAllocation != nil {
		drafts[ListSavingsAllocations] = forms.NewList(seed.SavingsAllocation.Allocations...)
	}
	if seed.Expenses != nil {
		drafts[ListExpenses] = forms.NewList(seed.Expenses.Items...)
	}
	if seed.NetWorth != nil {
		drafts[ListAssets] = forms.NewList(seed.NetWorth.Assets...)
		drafts[ListLiabilities] = forms.NewList(seed.NetWorth.Liabilities...)
	}

	return drafts
}
