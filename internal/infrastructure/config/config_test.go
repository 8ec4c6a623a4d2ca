package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "http://localhost:3000", cfg.Remote.BaseURL)
	assert.Equal(t, "http://localhost:5000", cfg.Remote.APIBaseURL)
	assert.Equal(t, 10*time.Second, cfg.Remote.Timeout)
	assert.Equal(t, 10, cfg.Personalization.PageSize)
	assert.Equal(t, 5, cfg.Personalization.Threshold)
	assert.Equal(t, 5, cfg.Personalization.InitialReveal)
	assert.Equal(t, 3, cfg.Personalization.RevealStep)
	assert.Equal(t, DefaultTags, cfg.Personalization.Tags)
	assert.Equal(t, ":3000", cfg.Stub.Addr)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipebook.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
remote:
  base_url: http://recipes.internal:3000
personalization:
  threshold: 3
storage:
  driver: memory
`), 0o600))
	t.Setenv("RECIPEBOOK_PERSONALIZATION_PAGE_SIZE", "4")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://recipes.internal:3000", cfg.Remote.BaseURL)
	assert.Equal(t, 3, cfg.Personalization.Threshold)
	assert.Equal(t, 4, cfg.Personalization.PageSize)
	assert.Equal(t, "memory", cfg.Storage.Driver)
}

func TestLoad_RejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipebook.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
storage:
  driver: postgres
`), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"sqlite without path", func(c *Config) { c.Storage.Path = "" }, true},
		{"memory without path", func(c *Config) { c.Storage.Driver = "memory"; c.Storage.Path = "" }, false},
		{"redis without host", func(c *Config) { c.Storage.Driver = "redis"; c.Storage.Redis.Host = "" }, true},
		{"zero page size", func(c *Config) { c.Personalization.PageSize = 0 }, true},
		{"zero threshold", func(c *Config) { c.Personalization.Threshold = 0 }, true},
		{"bad base url", func(c *Config) { c.Remote.BaseURL = "not a url" }, true},
		{"unknown log level", func(c *Config) { c.App.LogLevel = "loud" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRedisAddr(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "localhost:6379", cfg.RedisAddr())
}
