package env

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

const (
	DefaultEnvFile = ".env"
	LocalEnvFile   = ".env.local"
)

// Environment is the deployment mode of the process.
type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
	Test        Environment = "test"
)

// Config carries process-wide settings shared by all adapters.
type Config struct {
	Environment Environment `envconfig:"APP_ENV" default:"production"`
}

// IsDevelopment reports whether adapters should share state across re-initialisation.
func (c Config) IsDevelopment() bool {
	return c.Environment == Development
}

// InitConfig loads .env.local and .env (earlier files win, real env wins over both)
// and fills config from the environment.
func InitConfig(config any) error {
	// nolint:errcheck // env files are optional
	_ = godotenv.Load(LocalEnvFile)
	// nolint:errcheck // env files are optional
	_ = godotenv.Load(DefaultEnvFile)

	if err := envconfig.Process("", config); err != nil {
		return errors.Wrap(err, "failed to envconfig.Process")
	}

	return nil
}

// Current reads Config from the environment, falling back to production on error.
func Current() Config {
	var c Config
	if err := InitConfig(&c); err != nil {
		return Config{Environment: Production}
	}
	return c
}
