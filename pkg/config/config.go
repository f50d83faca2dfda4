package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName string `env:"SERVICE_NAME"`
	ServerPort  int    `env:"SERVER_PORT" envDefault:"8080" validate:"gt=0,lte=65535"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s" validate:"gt=0"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s" validate:"gt=0"`

	DatabaseDriver string `env:"DATABASE_DRIVER" envDefault:"postgres" validate:"oneof=postgres sqlite"`
	DatabaseURL    string `env:"DATABASE_URL"`

	JWT JWTConfig `envPrefix:"JWT_"`

	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`

	Elastic ElasticConfig `envPrefix:"ES_"`
}

type JWTConfig struct {
	Secret     string        `env:"SECRET"`
	Issuer     string        `env:"ISSUER" envDefault:"rent_system" validate:"required"`
	Audience   string        `env:"AUDIENCE" envDefault:"rent_system_clients" validate:"required"`
	AccessTTL  time.Duration `env:"ACCESS_TTL" envDefault:"60m" validate:"gt=0"`
	RefreshTTL time.Duration `env:"REFRESH_TTL" envDefault:"168h" validate:"gt=0"`
}

type ElasticConfig struct {
	URL      string `env:"URL" validate:"omitempty,url"`
	User     string `env:"USER"`
	Password string `env:"PASSWORD"`
	Index    string `env:"INDEX" envDefault:"properties"`
}

func (j JWTConfig) SecretBytes() []byte { return []byte(j.Secret) }

// Load reads the optional dotenv files, then the process environment, and
// validates the result. Missing dotenv files are not an error.
func Load(dotenvFiles ...string) (Config, error) {
	var cfg Config
	if err := LoadInto(&cfg, dotenvFiles...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadInto fills any struct tagged for caarlos0/env, so services can embed
// Config and add their own fields.
func LoadInto(target any, dotenvFiles ...string) error {
	for _, f := range dotenvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}

	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(target); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}
