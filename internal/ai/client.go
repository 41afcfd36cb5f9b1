// Package ai запрашивает у языковой модели категории для транзакций,
// в которых правила не уверены.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/MShkut/personal-finance-tracker/internal/config"
)

const (
	defaultMaxTokens = 2048

	ProviderNone   = "none"
	ProviderGemini = "gemini"
	ProviderGroq   = "groq"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client отправляет диалог модели и возвращает текст ответа и сырое тело.
type Client interface {
	Chat(ctx context.Context, messages []Message) (string, []byte, error)
}

// NewClient выбирает клиента по провайдеру. Для "none" возвращает nil.
func NewClient(cfg config.AIConfig) (Client, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderNone:
		return nil, nil
	case ProviderGemini:
		return NewGeminiClient(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Timeout, cfg.MaxOutputTokens), nil
	case ProviderGroq:
		return NewGroqClient(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Timeout, cfg.MaxOutputTokens), nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}
}

func resolveMaxTokens(value int) int {
	if value > 0 {
		return value
	}

	return defaultMaxTokens
}

// apiError извлекает сообщение об ошибке из тела ответа провайдера.
type apiError struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// postJSON отправляет запрос и возвращает тело успешного ответа.
// Для ответов вне 2xx тело возвращается вместе с ошибкой.
func postJSON(ctx context.Context, httpClient *http.Client, provider, endpoint string, headers map[string]string, request interface{}) ([]byte, error) {
	payload, err := json.Marshal(request)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	response, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		var parsed apiError
		if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != nil {
			return body, fmt.Errorf("%s api error: %s", provider, parsed.Error.Message)
		}
		return body, fmt.Errorf("%s api error: status %d: %s", provider, response.StatusCode, strings.TrimSpace(string(body)))
	}

	return body, nil
}
