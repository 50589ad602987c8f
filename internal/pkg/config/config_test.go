package config

import (
	"context"
	"strings"
	"testing"

	"github.com/sethvargo/go-envconfig"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := loadFrom(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("loadFrom returned error: %v", err)
	}

	if cfg.Port != "8080" || cfg.StoreBackend != BackendMemory || cfg.RevocationBackend != BackendMemory {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.LoginRateLimit != 5 || cfg.SeedExamples {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Admin.Email != "admin@empresa.com" || cfg.Mongo.Database != "app_gestor" || cfg.Postgres.MaxConns != 10 {
		t.Fatalf("unexpected nested defaults: %+v", cfg)
	}
	if cfg.IsProduction() {
		t.Fatalf("default env must not be production")
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := loadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"PORT":               "9000",
		"ENV":                "Production",
		"JWT_SECRET":         strings.Repeat("s", 32),
		"STORE_BACKEND":      "postgres",
		"REVOCATION_BACKEND": "redis",
		"REDIS_DB":           "2",
		"SEED_EXAMPLES":      "true",
	}))
	if err != nil {
		t.Fatalf("loadFrom returned error: %v", err)
	}
	if cfg.Port != "9000" || cfg.StoreBackend != BackendPostgres || cfg.Redis.DB != 2 || !cfg.SeedExamples {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if !cfg.IsProduction() {
		t.Fatalf("expected production")
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Env:               "development",
			StoreBackend:      BackendMemory,
			RevocationBackend: BackendMemory,
			LoginRateLimit:    5,
		}
	}

	if err := (&Config{}).Validate(); err == nil {
		t.Fatalf("zero config must not validate")
	}
	base := valid()
	if err := base.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := map[string]func(*Config){
		"unknown store":      func(c *Config) { c.StoreBackend = "sqlite" },
		"unknown revocation": func(c *Config) { c.RevocationBackend = BackendMongo },
		"production secret":  func(c *Config) { c.Env = "production" },
		"short secret":       func(c *Config) { c.JWTSecret = "short" },
		"non-positive limit": func(c *Config) { c.LoginRateLimit = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := valid()
			mutate(&c)
			if err := c.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}
