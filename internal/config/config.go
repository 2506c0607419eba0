package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	Log    LogConfig
	Engine EngineConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr        string `mapstructure:"addr"`
	MaxUploadMB int    `mapstructure:"max_upload_mb"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// EngineConfig holds the parsing engine's tunable heuristics. Statement
// layouts vary by issuer, so these are configuration rather than literals.
type EngineConfig struct {
	HeaderRegionTokens int     `mapstructure:"header_region_tokens"`
	BalanceProximity   float64 `mapstructure:"balance_proximity"`
	LineTolerance      float64 `mapstructure:"line_tolerance"`
	BoxLineTolerance   float64 `mapstructure:"box_line_tolerance"`
	DescriptionLimit   int     `mapstructure:"description_limit"`
}

// Load reads configuration from environment variables with the
// LEDGERPARSE_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("LEDGERPARSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.max_upload_mb", 32)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Engine defaults
	v.SetDefault("engine.header_region_tokens", 100)
	v.SetDefault("engine.balance_proximity", 50)
	v.SetDefault("engine.line_tolerance", 5)
	v.SetDefault("engine.box_line_tolerance", 20)
	v.SetDefault("engine.description_limit", 200)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}
