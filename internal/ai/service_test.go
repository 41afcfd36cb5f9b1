package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MShkut/personal-finance-tracker/internal/config"
)

type stubClient struct {
	replies []string
	calls   int
	err     error
}

func (c *stubClient) Chat(_ context.Context, _ []Message) (string, []byte, error) {
	if c.err != nil {
		return "", nil, c.err
	}
	reply := c.replies[c.calls%len(c.replies)]
	c.calls++
	return reply, []byte(reply), nil
}

func categorizeInput(count int) CategorizeInput {
	input := CategorizeInput{
		Currency:   "USD",
		Categories: []CategoryOption{{ID: "groceries", Name: "Groceries", Type: "expense"}},
	}
	for i := 0; i < count; i++ {
		input.Transactions = append(input.Transactions, TransactionInput{ID: fmt.Sprintf("tx-%d", i), Description: "SHOP", Amount: "-10"})
	}
	return input
}

// TestExtractJSON проверяет извлечение JSON из ответа с markdown.
func TestExtractJSON(t *testing.T) {
	cases := map[string]string{
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"Sure: {\"a\":1} done":    `{"a":1}`,
		"no json here":            "",
	}
	for input, expected := range cases {
		if got := extractJSON(input); got != expected {
			t.Fatalf("expected %q, got %q", expected, got)
		}
	}
}

// TestCategorizeFiltersUnknown проверяет отбрасывание чужих id и ограничение уверенности.
func TestCategorizeFiltersUnknown(t *testing.T) {
	client := &stubClient{replies: []string{`{"suggestions":[
		{"id":"tx-0","categoryId":"groceries","confidence":1.7},
		{"id":"tx-0","categoryId":"groceries","confidence":0.2},
		{"id":"tx-9","categoryId":"groceries","confidence":0.9},
		{"id":"tx-1","categoryId":"rent","confidence":0.9}
	]}`}}

	suggestions, err := NewService(client).Categorize(context.Background(), categorizeInput(2))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(suggestions) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(suggestions))
	}
	if suggestions[0].Confidence != 1 {
		t.Fatalf("expected confidence 1, got %v", suggestions[0].Confidence)
	}
}

// TestCategorizeBatches проверяет разбиение запроса на пачки.
func TestCategorizeBatches(t *testing.T) {
	client := &stubClient{replies: []string{`{"suggestions":[]}`}}

	if _, err := NewService(client).Categorize(context.Background(), categorizeInput(maxBatch+1)); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if client.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", client.calls)
	}
}

// TestCategorizeNoJSON проверяет ошибку при ответе без JSON.
func TestCategorizeNoJSON(t *testing.T) {
	client := &stubClient{replies: []string{"I cannot help"}}

	_, err := NewService(client).Categorize(context.Background(), categorizeInput(1))
	if !errors.Is(err, ErrNoJSON) {
		t.Fatalf("expected ErrNoJSON, got %v", err)
	}
}

// TestNewClient проверяет выбор клиента по провайдеру.
func TestNewClient(t *testing.T) {
	client, err := NewClient(config.AIConfig{Provider: "none"})
	if err != nil || client != nil {
		t.Fatalf("expected nil client, got %v (err=%v)", client, err)
	}

	client, err = NewClient(config.AIConfig{Provider: "Gemini", APIKey: "key"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := client.(*GeminiClient); !ok {
		t.Fatalf("expected gemini client, got %T", client)
	}

	if _, err := NewClient(config.AIConfig{Provider: "openai"}); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

// TestGroqClientChat проверяет запрос к OpenAI-совместимому API.
func TestGroqClientChat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("expected /chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("expected bearer header, got %q", r.Header.Get("Authorization"))
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"suggestions\":[]}"}}]}`))
	}))
	defer server.Close()

	client := NewGroqClient("secret", server.URL+"/", "model", time.Second, 0)
	content, _, err := client.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if content != `{"suggestions":[]}` {
		t.Fatalf("expected suggestions json, got %q", content)
	}
}

// TestGeminiClientError проверяет разбор ошибки API.
func TestGeminiClientError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer server.Close()

	client := NewGeminiClient("key", server.URL, "model", time.Second, 0)
	_, _, err := client.Chat(context.Background(), []Message{{Role: "system", Content: "sys"}, {Role: "user", Content: "hi"}})
	if err == nil || !strings.Contains(err.Error(), "bad key") {
		t.Fatalf("expected bad key error, got %v", err)
	}
}
