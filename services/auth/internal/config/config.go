package config

import (
	"log"
	"strings"

	"github.com/Skotchmaster/rent_system/pkg/config"
)

type ServiceConfig struct {
	config.Config

	AllowedRoles []string `env:"ALLOWED_ROLES" envSeparator:"," envDefault:"renter,owner,admin"`
	CookiePath   string   `env:"COOKIE_PATH" envDefault:"/api/v1/auth"`
}

func Load() ServiceConfig {
	var cfg ServiceConfig
	if err := config.LoadInto(&cfg, "services/auth/.env", ".env"); err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "auth"
	}

	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmpty(cfg.JWT.Secret, "JWT_SECRET")
	config.MustNonEmptySlice(cfg.AllowedRoles, "ALLOWED_ROLES")

	for i, r := range cfg.AllowedRoles {
		cfg.AllowedRoles[i] = strings.ToLower(strings.TrimSpace(r))
	}
	return cfg
}
