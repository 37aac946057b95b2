package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aussiebroadwan/gatekeep/pkg/httpx"
	"github.com/aussiebroadwan/gatekeep/pkg/jwtx"
	"github.com/caarlos0/env/v11"
)

var (
	ErrMissingTokenSecret = errors.New("AUTH_TOKEN_SECRET or AUTH_TOKEN_SECRET_FILE is required outside dev")
	ErrShortTokenSecret   = fmt.Errorf("token secret must be at least %d bytes", jwtx.MinSecretSize)
)

type Config struct {
	Issuer          string        `env:"AUTH_ISSUER"            envDefault:"gatekeep"`  // iss claim for access tokens
	TokenSecret     string        `env:"AUTH_TOKEN_SECRET"`                             // HS256 signing secret
	TokenSecretFile string        `env:"AUTH_TOKEN_SECRET_FILE"`                        // read when TokenSecret is empty
	TokenTTL        time.Duration `env:"AUTH_TOKEN_TTL"         envDefault:"30m"`
	TOTPIssuer      string        `env:"AUTH_TOTP_ISSUER"       envDefault:"MyAuthApp"` // label shown in authenticator apps
	DatabaseFile    string        `env:"AUTH_DATABASE_FILE"     envDefault:"auth.db"`
	PepperFile      string        `env:"AUTH_PEPPER_FILE"       envDefault:"pepper"`

	Env                 string        `env:"ENV"                   envDefault:"dev"`  // dev, staging, prod
	LogLevel            string        `env:"LOG_LEVEL"             envDefault:"info"` // debug, info, warn, error
	LogFormat           string        `env:"LOG_FORMAT"            envDefault:"json"` // json, text
	Port                int           `env:"PORT"                  envDefault:"8080"`
	ShutdownGracePeriod time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`

	// Zero requests in a profile disables that limit.
	RateLimits httpx.Limits `envPrefix:"RATELIMIT_"`
}

// IsDev reports whether the service runs in the development environment.
func (c Config) IsDev() bool {
	return strings.EqualFold(c.Env, "dev")
}

// LoadConfig reads the configuration from the environment. An empty token
// secret is only accepted in dev, where New generates an ephemeral one.
func LoadConfig() (Config, error) {
	cfg := Config{RateLimits: httpx.DefaultLimits()}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.TokenSecret == "" && cfg.TokenSecretFile != "" {
		raw, err := os.ReadFile(cfg.TokenSecretFile)
		if err != nil {
			return Config{}, fmt.Errorf("read token secret file: %w", err)
		}
		cfg.TokenSecret = strings.TrimSpace(string(raw))
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values env.Parse cannot express as tags.
func (c Config) Validate() error {
	switch {
	case c.TokenSecret == "" && !c.IsDev():
		return ErrMissingTokenSecret
	case c.TokenSecret != "" && len(c.TokenSecret) < jwtx.MinSecretSize:
		return ErrShortTokenSecret
	case c.Issuer == "":
		return errors.New("AUTH_ISSUER must not be empty")
	case c.TokenTTL <= 0:
		return fmt.Errorf("AUTH_TOKEN_TTL must be positive, got %s", c.TokenTTL)
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("PORT out of range: %d", c.Port)
	}
	return nil
}
