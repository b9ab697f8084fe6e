package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for vigil-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8090"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Authentication configuration
	Auth AuthConfig `yaml:"auth"`

	// Database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// LLM provider configuration
	LLM LLMConfig `yaml:"llm"`

	// Heuristic analysis calibration
	Analysis AnalysisConfig `yaml:"analysis"`
}

// AuthConfig holds authentication-related configuration.
type AuthConfig struct {
	// EnableVerification controls whether bearer tokens are validated.
	// Set to false for local development.
	EnableVerification bool `yaml:"enable_verification" env:"AUTH_ENABLE_VERIFICATION" env-default:"true"`

	// JWTSecret is the HS256 signing secret for API tokens.
	JWTSecret string `yaml:"-" env:"JWT_SECRET"` // Secret - not in YAML
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"vigil"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"vigil_engine"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"migrations"`
}

// LLMConfig holds settings for the external completion provider.
type LLMConfig struct {
	// Provider selects the client implementation: "openai" (any
	// OpenAI-compatible endpoint) or "anthropic".
	Provider string `yaml:"provider" env:"LLM_PROVIDER" env-default:"openai"`
	Endpoint string `yaml:"endpoint" env:"LLM_ENDPOINT" env-default:"https://api.openai.com/v1"`
	Model    string `yaml:"model" env:"LLM_MODEL" env-default:"gpt-4o-mini"`
	APIKey   string `yaml:"-" env:"LLM_API_KEY"` // Secret - not in YAML

	// Temperature for classification calls. Low by default to keep the
	// structured JSON output stable.
	Temperature float64 `yaml:"temperature" env:"LLM_TEMPERATURE" env-default:"0.2"`
}

// AnalysisConfig holds the calibration parameters of the heuristic pipeline.
// None of these thresholds were derived from data; they are operator-tunable
// starting points and should be adjusted against labelled samples.
type AnalysisConfig struct {
	// JaccardThreshold is the minimum token-set similarity for a
	// language-similarity correlation edge.
	JaccardThreshold float64 `yaml:"jaccard_threshold" env:"ANALYSIS_JACCARD_THRESHOLD" env-default:"0.7"`

	// TimingWindowMinutes is the clustering window for timing-pattern
	// correlations. The boundary is inclusive: two threats exactly this
	// far apart fall in the same cluster.
	TimingWindowMinutes int `yaml:"timing_window_minutes" env:"ANALYSIS_TIMING_WINDOW_MINUTES" env-default:"30"`

	// UsernameConfidence and TimingConfidence are the fixed confidences
	// assigned to username-pattern and timing-pattern edges.
	UsernameConfidence float64 `yaml:"username_confidence" env:"ANALYSIS_USERNAME_CONFIDENCE" env-default:"0.9"`
	TimingConfidence   float64 `yaml:"timing_confidence" env:"ANALYSIS_TIMING_CONFIDENCE" env-default:"0.8"`

	// MaxCorrelations caps the ranked correlation list returned per batch.
	MaxCorrelations int `yaml:"max_correlations" env:"ANALYSIS_MAX_CORRELATIONS" env-default:"20"`

	// MinMatchConfidence is the floor below which entity matches are
	// discarded during relevance filtering.
	MinMatchConfidence float64 `yaml:"min_match_confidence" env:"ANALYSIS_MIN_MATCH_CONFIDENCE" env-default:"0.6"`
}

// TimingWindow returns the timing-pattern window as a duration.
func (a *AnalysisConfig) TimingWindow() time.Duration {
	return time.Duration(a.TimingWindowMinutes) * time.Minute
}

// Load reads configuration from config.yaml with environment variable overrides.
// The version parameter is injected at build time and set on the returned Config.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Auth.EnableVerification && c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must be set when auth verification is enabled")
	}
	if c.Analysis.JaccardThreshold <= 0 || c.Analysis.JaccardThreshold > 1 {
		return fmt.Errorf("jaccard_threshold must be in (0, 1], got %v", c.Analysis.JaccardThreshold)
	}
	if c.Analysis.TimingWindowMinutes <= 0 {
		return fmt.Errorf("timing_window_minutes must be positive, got %d", c.Analysis.TimingWindowMinutes)
	}
	return nil
}

// ConnectionString returns a PostgreSQL connection string. Localhost hosts
// are rewritten when running inside Docker so the database on the host
// machine stays reachable.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		ResolveHostForDocker(c.Host), c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}
