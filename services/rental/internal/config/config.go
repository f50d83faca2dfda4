package config

import (
	"log"

	"github.com/Skotchmaster/rent_system/pkg/config"
)

type ServiceConfig struct {
	config.Config

	SearchEnabled bool `env:"SEARCH_ENABLED" envDefault:"true"`
}

func Load() ServiceConfig {
	var cfg ServiceConfig
	if err := config.LoadInto(&cfg, "services/rental/.env", ".env"); err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "rental"
	}

	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmpty(cfg.JWT.Secret, "JWT_SECRET")

	return cfg
}
