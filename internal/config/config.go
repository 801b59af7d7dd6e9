package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

// Config holds the environment configuration for the API server.
type Config struct {
	HTTPAddr      string `env:"HTTP_ADDR"      envDefault:":8080"`
	MongoURI      string `env:"MONGO_URI"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"inkwell"`

	// FrontendURL is the base URL used to build password reset links.
	FrontendURL string `env:"FRONTEND_URL"`

	// GoogleClientID enables login with a Google ID token when set.
	GoogleClientID string `env:"GOOGLE_CLIENT_ID"`

	Token     TokenConfig
	ImageHost ImageHostConfig
}

// TokenConfig holds JWT signing configuration.
type TokenConfig struct {
	Secret                      string        `env:"JWT_SECRET"`
	Issuer                      string        `env:"JWT_ISSUER"                      envDefault:"inkwell-api"`
	AccessTokenExpiresIn        time.Duration `env:"ACCESS_TOKEN_EXPIRES_IN"         envDefault:"24h"`
	PasswordResetTokenExpiresIn time.Duration `env:"PASSWORD_RESET_TOKEN_EXPIRES_IN" envDefault:"1h"`
}

// ImageHostConfig holds credentials for the external image hosting service.
type ImageHostConfig struct {
	BaseURL string `env:"IMAGE_HOST_BASE_URL"`
	APIKey  string `env:"IMAGE_HOST_API_KEY"`
}

// New creates a Config instance from environment variables.
func New(logger *zerolog.Logger) *Config {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse environment variables")
	}

	if err := cfg.validate(); err != nil {
		logger.Fatal().Err(err).Msg("failed to validate configuration")
	}

	return &cfg
}

// validate checks if the configuration is complete.
func (c *Config) validate() error {
	if c.MongoURI == "" {
		return fmt.Errorf("missing MONGO_URI environment variable")
	}
	if c.Token.Secret == "" {
		return fmt.Errorf("missing JWT_SECRET environment variable")
	}
	if c.FrontendURL == "" {
		return fmt.Errorf("missing FRONTEND_URL environment variable")
	}

	return nil
}
