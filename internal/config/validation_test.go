package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validBaseConfig returns a Config with all required fields set.
func validBaseConfig() *Config {
	return &Config{
		ServerHost:         "0.0.0.0",
		ServerPort:         8080,
		RateLimitRPS:       10,
		RateLimitBurst:     20,
		UpstreamBaseURL:    "https://api.openai.com/v1",
		UpstreamModel:      "gpt-4o-mini",
		UpstreamTemp:       0.8,
		UpstreamMaxTokens:  2048,
		GeminiModel:        "gemini-2.5-flash",
		EmbedderModel:      "gemini-embedding-001",
		SimulationEndpoint: "http://localhost:8080/api/run-simulations",
		DataDir:            "/tmp/kanon-test",
	}
}

func TestValidate_Success(t *testing.T) {
	t.Parallel()

	assert.NoError(t, validBaseConfig().Validate())
}

func TestValidate_SuccessWithDatabase(t *testing.T) {
	t.Parallel()

	cfg := validBaseConfig()
	cfg.PostgresHost = "localhost"
	cfg.PostgresPort = 5432
	cfg.PostgresUser = "kanon"
	cfg.PostgresPassword = "test_password"
	cfg.PostgresDBName = "kanon"
	cfg.PostgresSSLMode = "disable"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_NilConfig(t *testing.T) {
	t.Parallel()

	var cfg *Config
	assert.ErrorIs(t, cfg.Validate(), ErrConfigNil)
}

func TestValidate_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "port zero",
			mutate:  func(c *Config) { c.ServerPort = 0 },
			wantErr: ErrInvalidServerPort,
		},
		{
			name:    "port too large",
			mutate:  func(c *Config) { c.ServerPort = 70000 },
			wantErr: ErrInvalidServerPort,
		},
		{
			name:    "zero rate limit",
			mutate:  func(c *Config) { c.RateLimitRPS = 0 },
			wantErr: ErrInvalidRateLimit,
		},
		{
			name:    "zero burst",
			mutate:  func(c *Config) { c.RateLimitBurst = 0 },
			wantErr: ErrInvalidRateLimit,
		},
		{
			name:    "empty upstream URL",
			mutate:  func(c *Config) { c.UpstreamBaseURL = "" },
			wantErr: ErrInvalidUpstreamURL,
		},
		{
			name:    "relative upstream URL",
			mutate:  func(c *Config) { c.UpstreamBaseURL = "/v1" },
			wantErr: ErrInvalidUpstreamURL,
		},
		{
			name:    "empty upstream model",
			mutate:  func(c *Config) { c.UpstreamModel = "" },
			wantErr: ErrInvalidModelName,
		},
		{
			name:    "negative temperature",
			mutate:  func(c *Config) { c.UpstreamTemp = -0.1 },
			wantErr: ErrInvalidTemperature,
		},
		{
			name:    "temperature above range",
			mutate:  func(c *Config) { c.UpstreamTemp = 2.5 },
			wantErr: ErrInvalidTemperature,
		},
		{
			name:    "zero max tokens",
			mutate:  func(c *Config) { c.UpstreamMaxTokens = 0 },
			wantErr: ErrInvalidMaxTokens,
		},
		{
			name:    "empty gemini model",
			mutate:  func(c *Config) { c.GeminiModel = "" },
			wantErr: ErrInvalidModelName,
		},
		{
			name:    "empty embedder model",
			mutate:  func(c *Config) { c.EmbedderModel = "" },
			wantErr: ErrInvalidModelName,
		},
		{
			name: "bad postgres port",
			mutate: func(c *Config) {
				c.PostgresHost = "localhost"
				c.PostgresPort = -1
				c.PostgresDBName = "kanon"
				c.PostgresSSLMode = "disable"
			},
			wantErr: ErrInvalidPostgresPort,
		},
		{
			name: "empty database name",
			mutate: func(c *Config) {
				c.PostgresHost = "localhost"
				c.PostgresPort = 5432
				c.PostgresDBName = ""
				c.PostgresSSLMode = "disable"
			},
			wantErr: ErrInvalidPostgresDBName,
		},
		{
			name: "unknown sslmode",
			mutate: func(c *Config) {
				c.PostgresHost = "localhost"
				c.PostgresPort = 5432
				c.PostgresDBName = "kanon"
				c.PostgresSSLMode = "mandatory"
			},
			wantErr: ErrInvalidPostgresSSLMode,
		},
		{
			name:    "empty data dir",
			mutate:  func(c *Config) { c.DataDir = "" },
			wantErr: ErrInvalidDataDir,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validBaseConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidate_DatabaseOptional(t *testing.T) {
	t.Parallel()

	// Postgres settings are ignored entirely when no host is configured.
	cfg := validBaseConfig()
	cfg.PostgresHost = ""
	cfg.PostgresPort = -1
	cfg.PostgresSSLMode = "nonsense"
	assert.NoError(t, cfg.Validate())
	assert.False(t, cfg.DatabaseConfigured())
}
