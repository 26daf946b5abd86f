package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Valid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Generation.MaxRetries)
	assert.Equal(t, CacheMemory, cfg.Cache.Backend)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questgen.yaml")
	data := `
llm:
  provider: openai
  openai:
    model: gpt-4o
generation:
  max_retries: 2
  call_timeout: 5s
cache:
  backend: redis
  redis_addr: cache:6379
  ttl: 10m
server:
  addr: 127.0.0.1:9000
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o", cfg.LLM.OpenAI.Model)
	assert.Equal(t, 2, cfg.Generation.MaxRetries)
	assert.Equal(t, 5*time.Second, cfg.Generation.CallTimeout)
	assert.Equal(t, 1024, cfg.Generation.MaxTokens, "unset fields keep defaults")
	assert.Equal(t, CacheRedis, cfg.Cache.Backend)
	assert.Equal(t, "cache:6379", cfg.Cache.RedisAddr)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questgen.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o644))

	t.Setenv("QUESTGEN_LOG_LEVEL", "warn")
	t.Setenv("QUESTGEN_CACHE", "none")
	t.Setenv("QUESTGEN_DB", "/tmp/q.db")
	t.Setenv("QUESTGEN_REDIS_DB", "not-a-number")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, CacheNone, cfg.Cache.Backend)
	assert.Equal(t, "/tmp/q.db", cfg.Store.Path)
	assert.Equal(t, 0, cfg.Cache.RedisDB)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorContains(t, err, "read config")
}

func TestParse_UnknownKey(t *testing.T) {
	cfg := Default()
	err := Parse([]byte("cache:\n  backnd: redis\n"), &cfg)
	assert.ErrorContains(t, err, "parse config")
}

func TestParse_Empty(t *testing.T) {
	cfg := Default()
	require.NoError(t, Parse([]byte("  \n"), &cfg))
	assert.Equal(t, Default(), cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"negative retries", func(c *Config) { c.Generation.MaxRetries = -1 }, "generation.max_retries"},
		{"too many retries", func(c *Config) { c.Generation.MaxRetries = 4 }, "generation.max_retries"},
		{"transport attempts", func(c *Config) { c.LLM.Retry.MaxAttempts = 5 }, "llm.retry.max_attempts"},
		{"temperature", func(c *Config) { c.Generation.Temperature = 1.5 }, "generation.temperature"},
		{"unknown cache", func(c *Config) { c.Cache.Backend = "memcached" }, "cache.backend"},
		{"redis without addr", func(c *Config) { c.Cache.Backend = CacheRedis; c.Cache.RedisAddr = "" }, "cache.redis_addr"},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }, "server.addr"},
		{"log level", func(c *Config) { c.Log.Level = "verbose" }, "log.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "config."+tt.field)
		})
	}
}

func TestValidate_ReportsAll(t *testing.T) {
	cfg := Default()
	cfg.Server.Addr = ""
	cfg.Log.Level = "verbose"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.addr")
	assert.Contains(t, err.Error(), "log.level")
}
