package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for the engine.
// Values come from config.yaml with environment-variable overrides; env vars
// always win. Secrets (API keys, database password) are env-only.
type Config struct {
	Env     string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version string `yaml:"-"` // set at load time, not from config

	LLM       LLMConfig       `yaml:"llm"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Database  DatabaseConfig  `yaml:"database"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Generate  GenerateConfig  `yaml:"generate"`
}

// LLMConfig configures the completion gateway.
type LLMConfig struct {
	// Provider selects the completion backend: "openai" (any
	// OpenAI-compatible endpoint) or "anthropic".
	Provider string `yaml:"provider" env:"LLM_PROVIDER" env-default:"openai"`
	BaseURL  string `yaml:"base_url" env:"LLM_BASE_URL" env-default:"https://api.openai.com/v1"`
	Model    string `yaml:"model" env:"LLM_MODEL" env-default:"gpt-4o"`
	APIKey   string `yaml:"-" env:"LLM_API_KEY"` // secret - not in YAML
	// TimeoutSeconds bounds a single completion round trip. A timeout is a
	// terminal failure for the request; there is no transport-level retry.
	TimeoutSeconds int     `yaml:"timeout_seconds" env:"LLM_TIMEOUT_SECONDS" env-default:"200"`
	Temperature    float64 `yaml:"temperature" env:"LLM_TEMPERATURE" env-default:"0"`
}

// EmbeddingConfig configures the embedding gateway.
type EmbeddingConfig struct {
	BaseURL    string `yaml:"base_url" env:"EMBEDDING_BASE_URL" env-default:""`
	Model      string `yaml:"model" env:"EMBEDDING_MODEL" env-default:"text-embedding-3-small"`
	APIKey     string `yaml:"-" env:"EMBEDDING_API_KEY"` // secret - not in YAML
	Dimensions int    `yaml:"dimensions" env:"EMBEDDING_DIMENSIONS" env-default:"1536"`
	BatchSize  int    `yaml:"batch_size" env:"EMBEDDING_BATCH_SIZE" env-default:"16"`
}

// DatabaseConfig holds PostgreSQL settings for the schema embedding index.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"llmsql"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"llmsql"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"5"`
}

// RetrievalConfig holds the schema-pruning defaults: how many columns to
// pull from the index, how many tables survive aggregation, how many columns
// per table survive re-filtering, and the per-column character budget during
// rendering.
type RetrievalConfig struct {
	KColumns        int `yaml:"k_columns" env:"RETRIEVAL_K_COLUMNS" env-default:"40"`
	MaxTables       int `yaml:"max_tables" env:"RETRIEVAL_MAX_TABLES" env-default:"5"`
	MaxColsPerTable int `yaml:"max_cols_per_table" env:"RETRIEVAL_MAX_COLS_PER_TABLE" env-default:"10"`
	MaxCharPerTable int `yaml:"max_char_per_table" env:"RETRIEVAL_MAX_CHAR_PER_TABLE" env-default:"2000"`
}

// GenerateConfig bounds the generate/validate/repair loop.
type GenerateConfig struct {
	MaxAttempts int `yaml:"max_attempts" env:"GENERATE_MAX_ATTEMPTS" env-default:"3"`
}

// Load reads configuration from config.yaml with environment overrides.
// If config.yaml does not exist, environment variables and defaults alone
// are used. The version parameter is injected at build time.
func Load(version string) (*Config, error) {
	cfg := &Config{Version: version}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		// Fall back to env-only when there is no config file.
		if !strings.Contains(err.Error(), "no such file") {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.LLM.Provider {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("unsupported llm provider %q (want openai or anthropic)", c.LLM.Provider)
	}
	if c.Embedding.BatchSize <= 0 {
		return fmt.Errorf("embedding batch_size must be positive, got %d", c.Embedding.BatchSize)
	}
	if c.Generate.MaxAttempts < 1 {
		return fmt.Errorf("generate max_attempts must be at least 1, got %d", c.Generate.MaxAttempts)
	}
	return nil
}

// EffectiveEmbeddingBaseURL falls back to the LLM endpoint when no dedicated
// embedding endpoint is configured.
func (c *Config) EffectiveEmbeddingBaseURL() string {
	if c.Embedding.BaseURL != "" {
		return c.Embedding.BaseURL
	}
	return c.LLM.BaseURL
}

// EffectiveEmbeddingAPIKey falls back to the LLM key when no dedicated
// embedding key is configured.
func (c *Config) EffectiveEmbeddingAPIKey() string {
	if c.Embedding.APIKey != "" {
		return c.Embedding.APIKey
	}
	return c.LLM.APIKey
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// MigrateURL returns the database URL for the migration runner. The pgx5
// scheme selects golang-migrate's pgx/v5 driver.
func (c *DatabaseConfig) MigrateURL() string {
	u := url.URL{
		Scheme:   "pgx5",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     c.Database,
		RawQuery: "sslmode=" + c.SSLMode,
	}
	return u.String()
}
