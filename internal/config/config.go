// Package config provides application configuration management with
// multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (~/.kanon/config.yaml or ./config.yaml)
//  3. Default values
//
// Main configuration categories:
//   - Server: listen address, CORS, rate limiting
//   - Storage: PostgreSQL connection (see storage.go); optional, the
//     service falls back to in-process demo data and the file store
//   - Upstream: the OpenAI-compatible completion endpoint driving
//     simulation runs
//   - Gemini: model used for strategy synthesis and report memoranda
//   - Tracing: optional OTLP/HTTP trace export
//
// Sensitive values (passwords, API keys) are never logged. Validation uses
// sentinel errors checkable with errors.Is().
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrInvalidServerPort indicates the HTTP listen port is out of range.
	ErrInvalidServerPort = errors.New("invalid server port")

	// ErrInvalidModelName indicates a model name is empty.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidTemperature indicates the temperature value is out of range.
	ErrInvalidTemperature = errors.New("invalid temperature")

	// ErrInvalidMaxTokens indicates the max tokens value is out of range.
	ErrInvalidMaxTokens = errors.New("invalid max tokens")

	// ErrInvalidUpstreamURL indicates the completion endpoint URL is unusable.
	ErrInvalidUpstreamURL = errors.New("invalid upstream base URL")

	// ErrInvalidPostgresPort indicates the PostgreSQL port is out of range.
	ErrInvalidPostgresPort = errors.New("invalid PostgreSQL port")

	// ErrInvalidPostgresDBName indicates the PostgreSQL database name is empty.
	ErrInvalidPostgresDBName = errors.New("invalid PostgreSQL database name")

	// ErrInvalidPostgresSSLMode indicates the PostgreSQL SSL mode is unknown.
	ErrInvalidPostgresSSLMode = errors.New("invalid PostgreSQL SSL mode")

	// ErrInvalidRateLimit indicates the rate-limit settings are out of range.
	ErrInvalidRateLimit = errors.New("invalid rate limit")

	// ErrInvalidDataDir indicates the file-store directory is empty.
	ErrInvalidDataDir = errors.New("invalid data directory")
)

// Default model identifiers.
const (
	// DefaultGeminiModel backs strategy synthesis and report memoranda.
	DefaultGeminiModel = "gemini-2.5-flash"

	// DefaultEmbedderModel produces case embeddings for similarity search.
	// gemini-embedding-001 truncates to 768 dimensions to match the
	// pgvector schema; see research.VectorDimension.
	DefaultEmbedderModel = "gemini-embedding-001"

	// DefaultUpstreamModel is the simulation completion model.
	DefaultUpstreamModel = "gpt-4o-mini"
)

// TracingConfig configures the optional OTLP/HTTP trace exporter. Export is
// off unless Endpoint is set.
type TracingConfig struct {
	Endpoint    string `mapstructure:"endpoint" json:"endpoint"`
	Environment string `mapstructure:"environment" json:"environment"`
	ServiceName string `mapstructure:"service_name" json:"service_name"`
}

// Enabled reports whether trace export is configured.
func (t TracingConfig) Enabled() bool { return t.Endpoint != "" }

// Config stores application configuration.
// Sensitive fields are excluded from JSON so the config can be dumped for
// debugging without leaking credentials.
type Config struct {
	// Server configuration
	ServerHost  string   `mapstructure:"server_host" json:"server_host"`
	ServerPort  int      `mapstructure:"server_port" json:"server_port"`
	CORSOrigins []string `mapstructure:"cors_origins" json:"cors_origins"`
	// TrustProxy trusts X-Real-IP/X-Forwarded-For headers. Set true only
	// behind a reverse proxy.
	TrustProxy     bool    `mapstructure:"trust_proxy" json:"trust_proxy"`
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps" json:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst" json:"rate_limit_burst"`

	// Logging
	LogLevel string `mapstructure:"log_level" json:"log_level"`
	LogJSON  bool   `mapstructure:"log_json" json:"log_json"`

	// Simulation upstream (OpenAI-compatible completion endpoint)
	UpstreamBaseURL    string  `mapstructure:"upstream_base_url" json:"upstream_base_url"`
	UpstreamAPIKey     string  `mapstructure:"upstream_api_key" json:"-"` // SENSITIVE
	UpstreamModel      string  `mapstructure:"upstream_model" json:"upstream_model"`
	UpstreamTemp       float32 `mapstructure:"upstream_temperature" json:"upstream_temperature"`
	UpstreamMaxTokens  int     `mapstructure:"upstream_max_tokens" json:"upstream_max_tokens"`
	CompletionTimeoutS int     `mapstructure:"completion_timeout_seconds" json:"completion_timeout_seconds"`

	// SimulationEndpoint is the run-simulations URL the CLI client drives.
	SimulationEndpoint string `mapstructure:"simulation_endpoint" json:"simulation_endpoint"`

	// Gemini configuration (strategy synthesis, report memoranda,
	// embeddings). The API key comes from GEMINI_API_KEY directly.
	GeminiModel   string `mapstructure:"gemini_model" json:"gemini_model"`
	EmbedderModel string `mapstructure:"embedder_model" json:"embedder_model"`

	// Storage configuration (see storage.go). An empty PostgresHost leaves
	// the database disabled and the service in demo mode.
	PostgresHost     string `mapstructure:"postgres_host" json:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port" json:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user" json:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password" json:"-"` // SENSITIVE
	PostgresDBName   string `mapstructure:"postgres_db_name" json:"postgres_db_name"`
	PostgresSSLMode  string `mapstructure:"postgres_ssl_mode" json:"postgres_ssl_mode"`

	// DataDir holds the file-backed wizard store.
	DataDir string `mapstructure:"data_dir" json:"data_dir"`

	// Tracing configuration
	Tracing TracingConfig `mapstructure:"tracing" json:"tracing"`
}

// GeminiAPIKey returns the Gemini API key from the environment. Empty means
// AI-backed features (strategy synthesis, memoranda, embeddings) are
// unavailable; handlers report that instead of failing at startup.
func (c *Config) GeminiAPIKey() string {
	return os.Getenv("GEMINI_API_KEY")
}

// Load loads configuration.
// Priority: Environment variables > Configuration file > Default values
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}
	configDir := filepath.Join(home, ".kanon")
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)
	viper.AddConfigPath(".")

	setDefaults(configDir)
	bindEnvVariables()

	if err := viper.ReadInConfig(); err != nil {
		// A missing config file is not an error; defaults apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using default values",
			"search_paths", []string{configDir, "."})
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// DATABASE_URL overrides individual postgres_* settings.
	if err := cfg.parseDatabaseURL(); err != nil {
		return nil, fmt.Errorf("parsing DATABASE_URL: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}
	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults(configDir string) {
	// Server defaults
	viper.SetDefault("server_host", "0.0.0.0")
	viper.SetDefault("server_port", 8080)
	viper.SetDefault("cors_origins", []string{"http://localhost:3000"})
	viper.SetDefault("trust_proxy", false)
	viper.SetDefault("rate_limit_rps", 10.0)
	viper.SetDefault("rate_limit_burst", 20)

	// Logging defaults
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_json", false)

	// Upstream defaults
	viper.SetDefault("upstream_base_url", "https://api.openai.com/v1")
	viper.SetDefault("upstream_model", DefaultUpstreamModel)
	viper.SetDefault("upstream_temperature", 0.8)
	viper.SetDefault("upstream_max_tokens", 2048)
	viper.SetDefault("completion_timeout_seconds", 120)
	viper.SetDefault("simulation_endpoint", "http://localhost:8080/api/run-simulations")

	// Gemini defaults
	viper.SetDefault("gemini_model", DefaultGeminiModel)
	viper.SetDefault("embedder_model", DefaultEmbedderModel)

	// PostgreSQL defaults: host intentionally empty (database optional)
	viper.SetDefault("postgres_host", "")
	viper.SetDefault("postgres_port", 5432)
	viper.SetDefault("postgres_user", "kanon")
	viper.SetDefault("postgres_password", "")
	viper.SetDefault("postgres_db_name", "kanon")
	viper.SetDefault("postgres_ssl_mode", "disable")

	viper.SetDefault("data_dir", filepath.Join(configDir, "data"))

	// Tracing defaults (disabled)
	viper.SetDefault("tracing.endpoint", "")
	viper.SetDefault("tracing.environment", "dev")
	viper.SetDefault("tracing.service_name", "kanon")
}

// bindEnvVariables binds environment overrides explicitly.
func bindEnvVariables() {
	// Hardcoded keys can't fail to bind; a panic here is a bug, not a
	// runtime condition.
	mustBind := func(key, envVar string) {
		if err := viper.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("server_host", "KANON_SERVER_HOST")
	mustBind("server_port", "KANON_SERVER_PORT")
	mustBind("cors_origins", "KANON_CORS_ORIGINS")
	mustBind("trust_proxy", "KANON_TRUST_PROXY")

	mustBind("log_level", "KANON_LOG_LEVEL")
	mustBind("log_json", "KANON_LOG_JSON")

	mustBind("upstream_base_url", "KANON_UPSTREAM_BASE_URL")
	mustBind("upstream_api_key", "KANON_UPSTREAM_API_KEY")
	mustBind("upstream_model", "KANON_UPSTREAM_MODEL")
	mustBind("simulation_endpoint", "KANON_SIMULATION_ENDPOINT")

	mustBind("gemini_model", "KANON_GEMINI_MODEL")
	mustBind("data_dir", "KANON_DATA_DIR")

	mustBind("tracing.endpoint", "KANON_OTLP_ENDPOINT")
	mustBind("tracing.environment", "KANON_ENVIRONMENT")

	// NOTE: GEMINI_API_KEY is read directly (see GeminiAPIKey), not via
	// viper, so it never lands in a dumpable config struct.
	// NOTE: DATABASE_URL is parsed separately in parseDatabaseURL.
}
