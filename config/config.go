// Package config provides environment-based configuration for gatekit.
//
// Configuration is loaded from environment variables using Viper, with
// sensible defaults for development. This package handles database connection
// settings, logging levels, the server port, and the caller-token secret.
//
// # Environment Variables
//
//   - DB_TYPE: Database type (sqlite, postgres, mysql). Default: sqlite
//   - DSN: Database connection string. Default: gatekit.db
//   - SKIP_AUTO_MIGRATE: Skip automatic database migrations. Default: false
//   - LOG_LEVEL: Logging level (debug, info, warn, error). Default: info
//   - PORT: HTTP server port. Default: 8080
//   - JWT_SECRET: HMAC key used to verify caller bearer tokens. The server
//     refuses to start without it; tokens are minted by the surrounding
//     platform, never by gatekit itself.
//   - GUARD_TABLES: Comma-separated entity tables that get guarded roster
//     routes (GET /api/v1/<table>/:entityId/links). Default: companies
package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	DBType          string `mapstructure:"DB_TYPE"` // sqlite, postgres, mysql
	DSN             string `mapstructure:"DSN"`
	SkipAutoMigrate bool   `mapstructure:"SKIP_AUTO_MIGRATE"`
	LogLevel        string `mapstructure:"LOG_LEVEL"`
	Port            int    `mapstructure:"PORT"`
	JWTSecret       string `mapstructure:"JWT_SECRET"`
	GuardTables     string `mapstructure:"GUARD_TABLES"`
}

// GuardedTables returns the entity tables configured for guarded roster
// routes, split and trimmed.
func (c *Config) GuardedTables() []string {
	var tables []string
	for _, t := range strings.Split(c.GuardTables, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tables = append(tables, t)
		}
	}
	return tables
}

func LoadConfig() (*Config, error) {
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("PORT", 8080)
	viper.SetDefault("DB_TYPE", "sqlite")
	viper.SetDefault("DSN", "gatekit.db")
	viper.SetDefault("SKIP_AUTO_MIGRATE", false)
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("GUARD_TABLES", "companies")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
