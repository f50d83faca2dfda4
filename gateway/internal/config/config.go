package config

import (
	"log"

	"github.com/Skotchmaster/rent_system/pkg/config"
)

type Config struct {
	config.Config

	AuthURL   string `env:"AUTH_URL" validate:"required,url"`
	RentalURL string `env:"RENTAL_URL" validate:"required,url"`
	// Precheck verifies bearer tokens on mutating rental routes before
	// proxying. The rental service verifies them again either way.
	Precheck bool `env:"GATEWAY_PRECHECK" envDefault:"true"`
}

func Load() Config {
	var cfg Config
	if err := config.LoadInto(&cfg, "gateway/.env", ".env"); err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "gateway"
	}
	if cfg.Precheck {
		config.MustNonEmpty(cfg.JWT.Secret, "JWT_SECRET")
	}
	return cfg
}
