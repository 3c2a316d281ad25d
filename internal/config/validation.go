package config

import (
	"fmt"
	"net/url"
	"slices"
)

// validSSLModes are the PostgreSQL sslmode values pgx accepts.
var validSSLModes = []string{"disable", "allow", "prefer", "require", "verify-ca", "verify-full"}

// Validate validates configuration values. Returns sentinel errors that can
// be checked with errors.Is().
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	// 1. Server validation
	if c.ServerPort < 1 || c.ServerPort > 65535 {
		return fmt.Errorf("%w: must be between 1 and 65535, got %d", ErrInvalidServerPort, c.ServerPort)
	}
	if c.RateLimitRPS <= 0 {
		return fmt.Errorf("%w: rate_limit_rps must be positive, got %g", ErrInvalidRateLimit, c.RateLimitRPS)
	}
	if c.RateLimitBurst < 1 {
		return fmt.Errorf("%w: rate_limit_burst must be at least 1, got %d", ErrInvalidRateLimit, c.RateLimitBurst)
	}

	// 2. Upstream completion validation
	if c.UpstreamBaseURL == "" {
		return fmt.Errorf("%w: upstream_base_url cannot be empty", ErrInvalidUpstreamURL)
	}
	if u, err := url.Parse(c.UpstreamBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %q is not an absolute URL", ErrInvalidUpstreamURL, c.UpstreamBaseURL)
	}
	if c.UpstreamModel == "" {
		return fmt.Errorf("%w: upstream_model cannot be empty", ErrInvalidModelName)
	}
	// Temperature range per the OpenAI-compatible API contract.
	if c.UpstreamTemp < 0.0 || c.UpstreamTemp > 2.0 {
		return fmt.Errorf("%w: must be between 0.0 and 2.0, got %.2f", ErrInvalidTemperature, c.UpstreamTemp)
	}
	if c.UpstreamMaxTokens < 1 {
		return fmt.Errorf("%w: must be at least 1, got %d", ErrInvalidMaxTokens, c.UpstreamMaxTokens)
	}

	// 3. Gemini validation
	if c.GeminiModel == "" {
		return fmt.Errorf("%w: gemini_model cannot be empty", ErrInvalidModelName)
	}
	if c.EmbedderModel == "" {
		return fmt.Errorf("%w: embedder_model cannot be empty", ErrInvalidModelName)
	}

	// 4. PostgreSQL validation, only when a database is configured
	if c.DatabaseConfigured() {
		if c.PostgresPort < 1 || c.PostgresPort > 65535 {
			return fmt.Errorf("%w: must be between 1 and 65535, got %d", ErrInvalidPostgresPort, c.PostgresPort)
		}
		if c.PostgresDBName == "" {
			return fmt.Errorf("%w: database name cannot be empty", ErrInvalidPostgresDBName)
		}
		if !slices.Contains(validSSLModes, c.PostgresSSLMode) {
			return fmt.Errorf("%w: %q is not a valid sslmode", ErrInvalidPostgresSSLMode, c.PostgresSSLMode)
		}
	}

	// 5. File store validation
	if c.DataDir == "" {
		return fmt.Errorf("%w: data_dir cannot be empty", ErrInvalidDataDir)
	}

	return nil
}
