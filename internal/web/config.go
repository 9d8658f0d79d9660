package web

import (
	"github.com/ourkan95/Duplicate-Detector/internal/config"
)

// Config represents the web server configuration
type Config struct {
	Server   config.ServerConfig
	Features FeatureConfig
}

// FeatureConfig contains feature toggles
type FeatureConfig struct {
	ExportEnabled bool
}

// NewConfig derives the server configuration from the loaded application config
func NewConfig(cfg *config.Config) *Config {
	return &Config{
		Server:   cfg.Server,
		Features: FeatureConfig{ExportEnabled: cfg.Server.ExportFiles},
	}
}
