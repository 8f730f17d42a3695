package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/faciam-dev/crudkit/sdk/settings"
)

// Env is the process environment understood by crudctl and crud-devserver.
type Env struct {
	APIURL    string `env:"CRUD_API_URL"`
	Origin    string `env:"CRUD_ORIGIN"`
	Profile   string `env:"CRUD_PROFILE"`
	LogLevel  string `env:"CRUD_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"CRUD_LOG_FORMAT" envDefault:"text"`
	// Username and Password let crudctl login run without prompting.
	Username string `env:"CRUD_USERNAME"`
	Password string `env:"CRUD_PASSWORD"`

	SettingsRedis settings.RedisConfig
}

// LoadEnv reads an optional .env file from the working directory and parses
// the environment.
func LoadEnv() (Env, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return Env{}, fmt.Errorf("load .env file: %w", err)
		}
	}
	var e Env
	if err := env.Parse(&e); err != nil {
		return e, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}
