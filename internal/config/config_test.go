package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DEDUP_EMBEDDING_PROVIDER", "hash")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, 0.75, cfg.Pipeline.Threshold)
	assert.Equal(t, 0.75, cfg.Pipeline.StageThreshold)
	assert.Equal(t, 0.9, cfg.Pipeline.MismatchThreshold)
	assert.True(t, cfg.Pipeline.GeoBlocking)
	assert.Equal(t, WeightsConfig{Address: 0.25, Geo: 0.5, Name: 0.25}, cfg.Weights)
	assert.Equal(t, 500*time.Millisecond, cfg.Embedding.InitialBackoff)
	assert.Equal(t, "xlsx", cfg.Output.Format)
	assert.False(t, cfg.Database.Enabled)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Address())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DEDUP_EMBEDDING_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("DEDUP_PIPELINE_THRESHOLD", "0.8")
	t.Setenv("DEDUP_OUTPUT_FORMAT", "csv")
	t.Setenv("DEDUP_EMBEDDING_TIMEOUT", "5s")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, 0.8, cfg.Pipeline.Threshold)
	assert.Equal(t, "csv", cfg.Output.Format)
	assert.Equal(t, "sk-test", cfg.Embedding.APIKey)
	assert.Equal(t, 5*time.Second, cfg.Embedding.Timeout)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dedup.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
pipeline:
  mismatch_threshold: 0.75
  geo_blocking: false
embedding:
  provider: hash
  dimensions: 64
weights:
  address: 0.4
  geo: 0.2
  name: 0.4
`), 0o644))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, 0.75, cfg.Pipeline.MismatchThreshold)
	assert.False(t, cfg.Pipeline.GeoBlocking)
	assert.Equal(t, 64, cfg.Embedding.Dimensions)
	assert.Equal(t, 0.4, cfg.Weights.Address)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	t.Setenv("DEDUP_EMBEDDING_PROVIDER", "hash")
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func validConfig(t *testing.T) *Config {
	t.Helper()
	t.Setenv("DEDUP_EMBEDDING_PROVIDER", "hash")
	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"threshold above one", func(c *Config) { c.Pipeline.Threshold = 1.2 }},
		{"negative mismatch threshold", func(c *Config) { c.Pipeline.MismatchThreshold = -0.1 }},
		{"weights do not sum to one", func(c *Config) { c.Weights.Geo = 0.6 }},
		{"negative weight", func(c *Config) { c.Weights = WeightsConfig{Address: -0.5, Geo: 1, Name: 0.5} }},
		{"unknown provider", func(c *Config) { c.Embedding.Provider = "word2vec" }},
		{"openai without key", func(c *Config) { c.Embedding.Provider = ProviderOpenAI; c.Embedding.APIKey = "" }},
		{"zero batch size", func(c *Config) { c.Embedding.BatchSize = 0 }},
		{"unknown output format", func(c *Config) { c.Output.Format = "json" }},
		{"database without host", func(c *Config) { c.Database.Enabled = true; c.Database.Host = "" }},
		{"bad server port", func(c *Config) { c.Server.Port = 70000 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			require.NoError(t, cfg.Validate())
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p", Name: "dedup", SSLMode: "require"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=dedup sslmode=require", c.DSN())
}

func TestEmbeddingConfig_ModelFor(t *testing.T) {
	c := EmbeddingConfig{Model: "base", NameModel: "names"}
	assert.Equal(t, "base", c.ModelFor("address"))
	assert.Equal(t, "names", c.ModelFor("name"))
	assert.Equal(t, "base", c.ModelFor("slug"))
}

func TestGetEnv(t *testing.T) {
	t.Setenv("DEDUP_TEST_VALUE", "set")
	assert.Equal(t, "set", GetEnv("DEDUP_TEST_VALUE", "fallback"))
	assert.Equal(t, "fallback", GetEnv("DEDUP_TEST_UNSET_VALUE", "fallback"))
}
