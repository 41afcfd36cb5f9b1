package ai

type TransactionInput struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
}

type CategoryOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type CategorizeInput struct {
	Currency     string             `json:"currency"`
	Categories   []CategoryOption   `json:"categories"`
	Transactions []TransactionInput `json:"transactions"`
}

// Suggestion предлагает категорию для одной транзакции.
type Suggestion struct {
	ID         string  `json:"id"`
	CategoryID string  `json:"categoryId"`
	Confidence float64 `json:"confidence"`
}

type CategorizeResponse struct {
	Suggestions []Suggestion `json:"suggestions"`
}
