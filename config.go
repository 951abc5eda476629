package identity

import (
	"time"

	"github.com/caarlos0/env/v11"
	validation "github.com/go-ozzo/ozzo-validation"
)

const (
	// DefaultTokenExpiration is the session token lifetime in hours
	DefaultTokenExpiration = 8
	// DefaultEventBuffer is the outbound event queue depth
	DefaultEventBuffer = 64
	// MinSigningKeyLength is the smallest signing key accepted at startup
	MinSigningKeyLength = 32
)

// Config holds the process-wide identity settings. It is read once at
// startup, validated, and passed by reference into the constructors,
// there is no ambient access.
type Config struct {
	SigningKey       string        `env:"IDENTITY_SIGNING_KEY"`
	Issuer           string        `env:"IDENTITY_ISSUER"`
	Audience         []string      `env:"IDENTITY_AUDIENCE" envSeparator:","`
	TokenExpiration  int           `env:"IDENTITY_TOKEN_EXPIRATION" envDefault:"8"`
	PasswordCost     int           `env:"IDENTITY_PASSWORD_COST" envDefault:"12"`
	MaxLoginAttempts int           `env:"IDENTITY_MAX_LOGIN_ATTEMPTS" envDefault:"5"`
	LockoutDuration  time.Duration `env:"IDENTITY_LOCKOUT_DURATION" envDefault:"15m"`
	EventBuffer      int           `env:"IDENTITY_EVENT_BUFFER" envDefault:"64"`
}

// LoadConfig reads the configuration from the environment and
// validates it. A missing or short signing key is a startup error,
// never a per request one.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate enforces the startup invariants
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.SigningKey, validation.Required, validation.Length(MinSigningKeyLength, 0)),
		validation.Field(&c.Issuer, validation.Required),
		validation.Field(&c.Audience, validation.Required, validation.Length(1, 0)),
		validation.Field(&c.TokenExpiration, validation.Required, validation.Min(1)),
		validation.Field(&c.MaxLoginAttempts, validation.Required, validation.Min(1)),
	)
}

// LockoutPolicy derives the lockout policy from the configured knobs
func (c *Config) LockoutPolicy() LockoutPolicy {
	return LockoutPolicy{
		MaxAttempts:     c.MaxLoginAttempts,
		LockoutDuration: c.LockoutDuration,
	}
}
