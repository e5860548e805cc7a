// Package config provides the application configuration, parsed once at
// process start from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the configuration values for the application. Components
// receive the values they need explicitly; nothing reads the environment
// after Load returns.
type Config struct {
	// Address is the server's listening address (ip:port).
	Address string `env:"ADDRESS" envDefault:"localhost:3000"`

	// MongoURI is the document store connection string.
	MongoURI string `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017"`

	// Database is the database name holding the users and todos collections.
	Database string `env:"MONGODB_DATABASE" envDefault:"TodoApp"`

	// JWTSecret signs and verifies issued tokens.
	JWTSecret string `env:"JWT_SECRET" envDefault:"abc123"`

	// BcryptCost is the bcrypt cost factor for password hashing.
	BcryptCost int `env:"BCRYPT_COST" envDefault:"10"`
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
