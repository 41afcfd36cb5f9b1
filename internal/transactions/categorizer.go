package transactions

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MShkut/personal-finance-tracker/internal/models"
)

const (
	userRuleConfidence     = 0.9
	keywordConfidence      = 0.85
	signMismatchConfidence = 0.6
	incomeFallback         = 0.4
	uncategorizedFallback  = 0.3
)

type keywordRule struct {
	categoryID string
	keywords   []string
}

// Порядок важен: "uber eats" должен сработать раньше "uber".
var keywordRules = []keywordRule{
	{categoryID: "salary", keywords: []string{"payroll", "salary", "direct dep", "direct deposit"}},
	{categoryID: "savings-transfer", keywords: []string{"transfer to savings", "savings transfer", "vanguard", "fidelity", "brokerage"}},
	{categoryID: "housing", keywords: []string{"rent", "mortgage", "hoa", "landlord"}},
	{categoryID: "utilities", keywords: []string{"electric", "water bill", "gas bill", "internet", "comcast", "verizon", "at&t", "utility"}},
	{categoryID: "groceries", keywords: []string{"grocery", "supermarket", "whole foods", "trader joe", "kroger", "safeway", "aldi"}},
	{categoryID: "dining", keywords: []string{"restaurant", "cafe", "coffee", "starbucks", "mcdonald", "pizza", "doordash", "uber eats", "grubhub"}},
	{categoryID: "transportation", keywords: []string{"uber", "lyft", "shell", "chevron", "exxon", "fuel", "parking", "transit"}},
	{categoryID: "shopping", keywords: []string{"amazon", "target", "walmart", "costco", "ebay"}},
	{categoryID: "entertainment", keywords: []string{"netflix", "spotify", "hulu", "cinema", "theater", "steam"}},
	{categoryID: "health", keywords: []string{"pharmacy", "cvs", "walgreens", "clinic", "dental", "doctor"}},
}

// Categorizer подбирает категорию по описанию операции.
type Categorizer struct {
	byID      map[string]models.Category
	userRules []models.Category
}

// NewCategorizer создает категоризатор для набора категорий пользователя.
func NewCategorizer(categories []models.Category) *Categorizer {
	c := &Categorizer{byID: make(map[string]models.Category, len(categories))}
	for _, category := range categories {
		c.byID[category.ID] = category
		if isUserCategory(category.ID) && len(category.Name) >= 3 {
			c.userRules = append(c.userRules, category)
		}
	}
	return c
}

// Categorize возвращает категорию и уверенность. Категории пользователя проверяются
// первыми, затем встроенные ключевые слова, затем знак суммы.
func (c *Categorizer) Categorize(description string, amount decimal.Decimal) (*models.Category, float64) {
	text := strings.ToLower(description)

	for _, category := range c.userRules {
		if strings.Contains(text, strings.ToLower(category.Name)) {
			return c.scored(category, amount, userRuleConfidence)
		}
	}

	for _, rule := range keywordRules {
		category, ok := c.byID[rule.categoryID]
		if !ok {
			continue
		}
		for _, keyword := range rule.keywords {
			if strings.Contains(text, keyword) {
				return c.scored(category, amount, keywordConfidence)
			}
		}
	}

	if amount.IsPositive() {
		if category, ok := c.byID[CategoryOtherIncome]; ok {
			return &category, incomeFallback
		}
	}

	return nil, uncategorizedFallback
}

// Find возвращает категорию по id.
func (c *Categorizer) Find(id string) (models.Category, bool) {
	category, ok := c.byID[id]
	return category, ok
}

// scored снижает уверенность, если знак суммы не совпадает с типом категории.
func (c *Categorizer) scored(category models.Category, amount decimal.Decimal, confidence float64) (*models.Category, float64) {
	inflow := amount.IsPositive()
	if (category.Type == models.CategoryTypeIncome) != inflow {
		confidence = signMismatchConfidence
	}
	return &category, confidence
}
