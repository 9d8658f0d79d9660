// Package config loads the duplicate detector configuration from defaults,
// an optional dedup.yaml, .env files and DEDUP_* environment variables.
package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. DEDUP_PIPELINE_THRESHOLD
const EnvPrefix = "DEDUP"

// Embedding providers
const (
	ProviderOpenAI = "openai"
	ProviderHash   = "hash"
)

// Config holds all configuration for a run
type Config struct {
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Weights   WeightsConfig   `mapstructure:"weights"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	Input     InputConfig     `mapstructure:"input"`
	Output    OutputConfig    `mapstructure:"output"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// PipelineConfig holds thresholds and run switches
type PipelineConfig struct {
	Threshold         float64 `mapstructure:"threshold"`
	StageThreshold    float64 `mapstructure:"stage_threshold"`
	MismatchThreshold float64 `mapstructure:"mismatch_threshold"`
	GeoBlocking       bool    `mapstructure:"geo_blocking"`
	Preview           int     `mapstructure:"preview"`
	Debug             bool    `mapstructure:"debug"`
}

// WeightsConfig holds the aggregate score weights
type WeightsConfig struct {
	Address float64 `mapstructure:"address"`
	Geo     float64 `mapstructure:"geo"`
	Name    float64 `mapstructure:"name"`
}

// EmbeddingConfig selects and tunes the embedding provider
type EmbeddingConfig struct {
	Provider          string        `mapstructure:"provider"`
	Model             string        `mapstructure:"model"`      // address fields
	NameModel         string        `mapstructure:"name_model"` // empty means Model
	SlugModel         string        `mapstructure:"slug_model"` // empty means Model
	BaseURL           string        `mapstructure:"base_url"`
	APIKey            string        `mapstructure:"api_key"`
	Dimensions        int           `mapstructure:"dimensions"`
	BatchSize         int           `mapstructure:"batch_size"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	MaxRetries        int           `mapstructure:"max_retries"`
	InitialBackoff    time.Duration `mapstructure:"initial_backoff"`
	Timeout           time.Duration `mapstructure:"timeout"`
}

// InputConfig locates the listing spreadsheet
type InputConfig struct {
	Path  string `mapstructure:"path"`
	Sheet string `mapstructure:"sheet"`
}

// OutputConfig controls where artifacts are written
type OutputConfig struct {
	Dir    string `mapstructure:"dir"`
	Format string `mapstructure:"format"`
}

// DatabaseConfig holds the optional Postgres result sink
type DatabaseConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	Name         string `mapstructure:"name"`
	SSLMode      string `mapstructure:"sslmode"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

// ServerConfig holds the review API listener settings
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	APIKey       string        `mapstructure:"api_key"` // empty disables the X-API-Key check
	ExportFiles  bool          `mapstructure:"export_files"`
}

// LoggingConfig holds log level and format
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DSN returns the lib/pq keyword connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// Address returns host:port for the HTTP listener
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ModelFor returns the model configured for a scorer ("address", "name" or "slug")
func (c *EmbeddingConfig) ModelFor(scorer string) string {
	switch scorer {
	case "name":
		if c.NameModel != "" {
			return c.NameModel
		}
	case "slug":
		if c.SlugModel != "" {
			return c.SlugModel
		}
	}
	return c.Model
}

// SetDefaults registers every default on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("pipeline.threshold", 0.75)
	v.SetDefault("pipeline.stage_threshold", 0.75)
	v.SetDefault("pipeline.mismatch_threshold", 0.9)
	v.SetDefault("pipeline.geo_blocking", true)
	v.SetDefault("pipeline.preview", 5)
	v.SetDefault("pipeline.debug", false)

	v.SetDefault("weights.address", 0.25)
	v.SetDefault("weights.geo", 0.50)
	v.SetDefault("weights.name", 0.25)

	v.SetDefault("embedding.provider", ProviderOpenAI)
	v.SetDefault("embedding.model", "text-embedding-3-small")
	v.SetDefault("embedding.name_model", "")
	v.SetDefault("embedding.slug_model", "")
	v.SetDefault("embedding.base_url", "")
	v.SetDefault("embedding.api_key", "")
	v.SetDefault("embedding.dimensions", 256)
	v.SetDefault("embedding.batch_size", 32)
	v.SetDefault("embedding.requests_per_second", 5.0)
	v.SetDefault("embedding.burst", 5)
	v.SetDefault("embedding.max_retries", 2)
	v.SetDefault("embedding.initial_backoff", "500ms")
	v.SetDefault("embedding.timeout", "60s")

	v.SetDefault("input.path", "hotels_with_prices.xlsx")
	v.SetDefault("input.sheet", "")

	v.SetDefault("output.dir", ".")
	v.SetDefault("output.format", "xlsx")

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "dedup")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "dedup")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 10)

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.api_key", "")
	v.SetDefault("server.export_files", true)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Load reads configuration into a Config. Flags bound on v before the call
// take precedence over env, file and defaults. configFile may be empty, in
// which case dedup.yaml is looked up in the working directory and ./config.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if err := LoadEnv(); err != nil {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("dedup")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// the conventional variable works when no DEDUP_ key is set
	if cfg.Embedding.APIKey == "" {
		cfg.Embedding.APIKey = GetEnv("OPENAI_API_KEY", "")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks ranges, weights and enumerations
func (c *Config) Validate() error {
	for name, v := range map[string]float64{
		"pipeline.threshold":          c.Pipeline.Threshold,
		"pipeline.stage_threshold":    c.Pipeline.StageThreshold,
		"pipeline.mismatch_threshold": c.Pipeline.MismatchThreshold,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be between 0 and 1, got %v", name, v)
		}
	}

	w := c.Weights
	if w.Address < 0 || w.Geo < 0 || w.Name < 0 {
		return fmt.Errorf("weights must be non-negative")
	}
	if sum := w.Address + w.Geo + w.Name; math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("weights must sum to 1.0, got %.4f", sum)
	}

	switch strings.ToLower(c.Embedding.Provider) {
	case ProviderOpenAI:
		if c.Embedding.APIKey == "" && c.Embedding.BaseURL == "" {
			return fmt.Errorf("embedding.api_key (or OPENAI_API_KEY) is required for the openai provider")
		}
	case ProviderHash:
		if c.Embedding.Dimensions <= 0 {
			return fmt.Errorf("embedding.dimensions must be positive")
		}
	default:
		return fmt.Errorf("unknown embedding provider: %s", c.Embedding.Provider)
	}
	if c.Embedding.BatchSize <= 0 {
		return fmt.Errorf("embedding.batch_size must be positive")
	}
	if c.Embedding.MaxRetries < 0 {
		return fmt.Errorf("embedding.max_retries must not be negative")
	}

	switch strings.ToLower(c.Output.Format) {
	case "xlsx", "csv":
	default:
		return fmt.Errorf("unknown output format: %s", c.Output.Format)
	}

	if c.Database.Enabled {
		if c.Database.Host == "" || c.Database.Name == "" {
			return fmt.Errorf("database host and name are required when the database is enabled")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			return fmt.Errorf("invalid database port: %d", c.Database.Port)
		}
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	validLogLevels := map[string]bool{
		"trace": true, "debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	return nil
}
