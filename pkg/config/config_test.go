package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// chdirTemp moves the test into an empty temp dir so Load() does not pick
// up a stray config.yaml.
func chdirTemp(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	originalDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("failed to change directory: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(originalDir)
	})
	return tmpDir
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load("test-version")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Version != "test-version" {
		t.Errorf("expected version test-version, got %s", cfg.Version)
	}
	if cfg.LLM.Provider != "openai" {
		t.Errorf("expected default provider openai, got %s", cfg.LLM.Provider)
	}
	if cfg.Retrieval.KColumns != 40 {
		t.Errorf("expected default k_columns 40, got %d", cfg.Retrieval.KColumns)
	}
	if cfg.Retrieval.MaxTables != 5 {
		t.Errorf("expected default max_tables 5, got %d", cfg.Retrieval.MaxTables)
	}
	if cfg.Retrieval.MaxColsPerTable != 10 {
		t.Errorf("expected default max_cols_per_table 10, got %d", cfg.Retrieval.MaxColsPerTable)
	}
	if cfg.Retrieval.MaxCharPerTable != 2000 {
		t.Errorf("expected default max_char_per_table 2000, got %d", cfg.Retrieval.MaxCharPerTable)
	}
	if cfg.Generate.MaxAttempts != 3 {
		t.Errorf("expected default max_attempts 3, got %d", cfg.Generate.MaxAttempts)
	}
	if cfg.Embedding.BatchSize != 16 {
		t.Errorf("expected default batch_size 16, got %d", cfg.Embedding.BatchSize)
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	tmpDir := chdirTemp(t)

	yamlContent := `
env: "test"
llm:
  model: "yaml-model"
retrieval:
  max_tables: 7
database:
  host: "db.example.com"
`
	if err := os.WriteFile(filepath.Join(tmpDir, "config.yaml"), []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	t.Setenv("LLM_MODEL", "env-model")
	t.Setenv("PGHOST", "env-host")

	cfg, err := Load("v1")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.LLM.Model != "env-model" {
		t.Errorf("env var should override yaml, got %s", cfg.LLM.Model)
	}
	if cfg.Database.Host != "env-host" {
		t.Errorf("env var should override yaml, got %s", cfg.Database.Host)
	}
	if cfg.Retrieval.MaxTables != 7 {
		t.Errorf("yaml value should apply without env override, got %d", cfg.Retrieval.MaxTables)
	}
	if cfg.Env != "test" {
		t.Errorf("expected env test, got %s", cfg.Env)
	}
}

func TestLoad_RejectsUnknownProvider(t *testing.T) {
	chdirTemp(t)
	t.Setenv("LLM_PROVIDER", "palm")

	if _, err := Load("v1"); err == nil {
		t.Fatal("expected an error for an unknown provider")
	}
}

func TestLoad_RejectsNonPositiveMaxAttempts(t *testing.T) {
	chdirTemp(t)
	t.Setenv("GENERATE_MAX_ATTEMPTS", "0")

	if _, err := Load("v1"); err == nil {
		t.Fatal("expected an error for max_attempts of 0")
	}
}

func TestConnectionString(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "llmsql",
		Password: "secret",
		Database: "llmsql",
		SSLMode:  "disable",
	}

	got := cfg.ConnectionString()
	want := "host=localhost port=5432 user=llmsql password=secret dbname=llmsql sslmode=disable"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestMigrateURL(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "llmsql",
		Password: "p@ss/word",
		Database: "llmsql",
		SSLMode:  "disable",
	}

	got := cfg.MigrateURL()
	if !strings.HasPrefix(got, "pgx5://") {
		t.Errorf("migrate URL should use the pgx5 scheme, got %q", got)
	}
	if strings.Contains(got, "p@ss/word") {
		t.Errorf("password should be URL-escaped, got %q", got)
	}
}

func TestEffectiveEmbeddingFallbacks(t *testing.T) {
	cfg := &Config{}
	cfg.LLM.BaseURL = "https://llm.example.com/v1"
	cfg.LLM.APIKey = "llm-key"

	if got := cfg.EffectiveEmbeddingBaseURL(); got != "https://llm.example.com/v1" {
		t.Errorf("expected fallback to LLM base URL, got %s", got)
	}
	if got := cfg.EffectiveEmbeddingAPIKey(); got != "llm-key" {
		t.Errorf("expected fallback to LLM key, got %s", got)
	}

	cfg.Embedding.BaseURL = "https://embed.example.com/v1"
	cfg.Embedding.APIKey = "embed-key"

	if got := cfg.EffectiveEmbeddingBaseURL(); got != "https://embed.example.com/v1" {
		t.Errorf("expected dedicated embedding URL, got %s", got)
	}
	if got := cfg.EffectiveEmbeddingAPIKey(); got != "embed-key" {
		t.Errorf("expected dedicated embedding key, got %s", got)
	}
}
