package config

import (
	"reflect"
	"testing"
)

// TestParseCSVEnv проверяет разбор списка email из ENV.
func TestParseCSVEnv(t *testing.T) {
	t.Setenv("ADMIN_EMAILS", " Admin@example.com, ,USER@Example.com ")

	got := parseCSVEnv("ADMIN_EMAILS")
	want := []string{"admin@example.com", "user@example.com"}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

// TestParseCSVEnvMissing проверяет поведение при отсутствии переменной.
func TestParseCSVEnvMissing(t *testing.T) {
	got := parseCSVEnv("MISSING_ENV")
	if got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

// TestParseBoolEnv проверяет разбор булевых флагов.
func TestParseBoolEnv(t *testing.T) {
	t.Setenv("ONBOARDING_RESUME", "true")

	got, err := parseBoolEnv("ONBOARDING_RESUME", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got {
		t.Fatalf("expected true, got false")
	}

	t.Setenv("ONBOARDING_RESUME", "maybe")
	if _, err := parseBoolEnv("ONBOARDING_RESUME", false); err == nil {
		t.Fatalf("expected error for invalid boolean")
	}
}

// TestLoadDefaults проверяет значения по умолчанию.
func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV_FILE", "")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Database.Driver != DriverSQLite {
		t.Fatalf("expected driver %s, got %s", DriverSQLite, cfg.Database.Driver)
	}
	if cfg.Onboarding.Resume {
		t.Fatalf("expected resume disabled by default")
	}
	if cfg.AI.Enabled() {
		t.Fatalf("expected AI disabled by default")
	}
	if cfg.Currency != "USD" {
		t.Fatalf("expected USD, got %s", cfg.Currency)
	}
}

// TestLoadValidation проверяет ошибки валидации конфигурации.
func TestLoadValidation(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing secret", env: map[string]string{"JWT_SECRET": ""}},
		{name: "bad driver", env: map[string]string{"DB_DRIVER": "mysql"}},
		{name: "bad provider", env: map[string]string{"AI_PROVIDER": "openai"}},
		{name: "bad log level", env: map[string]string{"LOG_LEVEL": "trace"}},
		{name: "bad duration", env: map[string]string{"SESSION_IDLE_TTL": "-1m"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("ENV_FILE", "")
			t.Setenv("JWT_SECRET", "secret")
			for key, value := range tc.env {
				t.Setenv(key, value)
			}

			if _, err := Load(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
