// Copyright (C) 2025 the quixsi maintainers
// See root-dir/LICENSE for more information

package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config carries the environment-backed settings. Runtime knobs like the
// listen address or the database connection string stay on flags.
type Config struct {
	AdminUser     string `env:"COMPOSE_ADMIN" envDefault:"admin"`
	AdminPassword string `env:"COMPOSE_PASSWORD" envDefault:"admin"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// A missing .env file is fine, the environment wins anyway.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
