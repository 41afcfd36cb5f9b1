package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// maxBatch ограничивает число транзакций в одном запросе к модели.
const maxBatch = 50

var ErrNoJSON = errors.New("ai response does not contain json")

type Service struct {
	client Client
}

// NewService создает сервис категоризации поверх AI-клиента.
func NewService(client Client) *Service {
	return &Service{client: client}
}

// Categorize запрашивает категории пачками и оставляет только подсказки,
// которые ссылаются на известные транзакции и категории.
func (s *Service) Categorize(ctx context.Context, input CategorizeInput) ([]Suggestion, error) {
	if len(input.Transactions) == 0 || len(input.Categories) == 0 {
		return nil, nil
	}

	suggestions := make([]Suggestion, 0, len(input.Transactions))
	for start := 0; start < len(input.Transactions); start += maxBatch {
		end := start + maxBatch
		if end > len(input.Transactions) {
			end = len(input.Transactions)
		}

		batch := input
		batch.Transactions = input.Transactions[start:end]

		result, err := s.categorizeBatch(ctx, batch)
		if err != nil {
			return suggestions, err
		}
		suggestions = append(suggestions, result...)
	}

	return suggestions, nil
}

func (s *Service) categorizeBatch(ctx context.Context, input CategorizeInput) ([]Suggestion, error) {
	prompt, err := buildCategorizePrompt(input)
	if err != nil {
		return nil, err
	}

	messages := []Message{
		{Role: "system", Content: "You categorize bank transactions. Respond with JSON only, without extra text."},
		{Role: "user", Content: prompt},
	}

	content, _, err := s.client.Chat(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("categorize: %w", err)
	}

	var response CategorizeResponse
	if err := parseJSON(content, &response); err != nil {
		return nil, fmt.Errorf("categorize: %w", err)
	}

	return filterSuggestions(response.Suggestions, input), nil
}

func buildCategorizePrompt(input CategorizeInput) (string, error) {
	payload, err := json.Marshal(input)
	if err != nil {
		return "", err
	}

	prompt := fmt.Sprintf(`Assign one category to each transaction.

Requirements:
- Output JSON only, no code fences, no extra text.
- Schema:
{
  "suggestions": [
    {"id": string, "categoryId": string, "confidence": number}
  ]
}
- "id" must be a transaction id from the input.
- "categoryId" must be a category id from the input.
- Positive amounts are money received, negative amounts are money spent.
- "confidence" is between 0 and 1.
- Skip transactions you cannot categorize.

Input:
%s`, string(payload))

	return prompt, nil
}

func filterSuggestions(suggestions []Suggestion, input CategorizeInput) []Suggestion {
	transactions := make(map[string]bool, len(input.Transactions))
	for _, tx := range input.Transactions {
		transactions[tx.ID] = true
	}
	categories := make(map[string]bool, len(input.Categories))
	for _, category := range input.Categories {
		categories[category.ID] = true
	}

	seen := make(map[string]bool, len(suggestions))
	out := make([]Suggestion, 0, len(suggestions))
	for _, suggestion := range suggestions {
		suggestion.ID = strings.TrimSpace(suggestion.ID)
		suggestion.CategoryID = strings.TrimSpace(suggestion.CategoryID)
		if !transactions[suggestion.ID] || !categories[suggestion.CategoryID] || seen[suggestion.ID] {
			continue
		}
		seen[suggestion.ID] = true
		suggestion.Confidence = clamp(suggestion.Confidence)
		out = append(out, suggestion)
	}
	return out
}

func clamp(value float64) float64 {
	switch {
	case value < 0:
		return 0
	case value > 1:
		return 1
	default:
		return value
	}
}

func parseJSON(input string, target interface{}) error {
	payload := extractJSON(input)
	if payload == "" {
		return ErrNoJSON
	}

	return json.Unmarshal([]byte(payload), target)
}

// extractJSON снимает markdown-ограждение и возвращает первый JSON-объект в тексте.
func extractJSON(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}

	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimPrefix(strings.TrimSpace(trimmed), "json")
		if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
			trimmed = trimmed[:idx]
		}
		trimmed = strings.TrimSpace(trimmed)
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return ""
	}

	return trimmed[start : end+1]
}
