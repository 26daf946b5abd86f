// Package config loads questgen settings from an optional YAML file and
// QUESTGEN_* environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/questgen/internal/llm"
	"github.com/abhisek/questgen/internal/logging"
	"github.com/abhisek/questgen/internal/problemgen"
)

// Cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config holds all configuration. Precedence: defaults, then the file,
// then environment variables.
type Config struct {
	LLM        llm.Config        `yaml:"llm"`
	Generation problemgen.Config `yaml:"generation"`
	Store      StoreConfig       `yaml:"store"`
	Cache      CacheConfig       `yaml:"cache"`
	Server     ServerConfig      `yaml:"server"`
	Log        logging.Config    `yaml:"log"`
}

// StoreConfig locates the SQLite database.
type StoreConfig struct {
	// Path is the database file. Empty means the default XDG location.
	Path string `yaml:"path"`
}

// CacheConfig selects the skill cache in front of the curriculum.
type CacheConfig struct {
	// Backend is "none", "memory" or "redis".
	Backend string `yaml:"backend"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	// TTL is the lifetime of Redis entries. Zero keeps them forever.
	TTL time.Duration `yaml:"ttl"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LLM:        llm.DefaultConfig(),
		Generation: problemgen.DefaultConfig(),
		Cache: CacheConfig{
			Backend:   CacheMemory,
			RedisAddr: "localhost:6379",
			TTL:       time.Hour,
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 2 * time.Minute,
		},
		Log: logging.Config{Level: "info"},
	}
}

// Load reads path (optional; empty skips the file), applies environment
// overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := Parse(data, &cfg); err != nil {
			return Config{}, err
		}
	}

	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes YAML into cfg, keeping values the document leaves unset.
// Unknown keys are rejected.
func Parse(data []byte, cfg *Config) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// ApplyEnv applies QUESTGEN_* overrides for every section.
func (c *Config) ApplyEnv() {
	c.LLM.ApplyEnv()
	c.Generation.ApplyEnv()
	for _, o := range envOverrides {
		if v := os.Getenv(o.envVar); v != "" {
			o.apply(c, v)
		}
	}
}

// ValidationError names the offending field.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config.%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// Validate checks every section except LLM credentials, which are only
// required by commands that call a backend.
func (c Config) Validate() error {
	var errs []error

	if c.Generation.MaxRetries < 0 || c.Generation.MaxRetries >= problemgen.MaxBackendCalls {
		errs = append(errs, &ValidationError{Field: "generation.max_retries", Value: c.Generation.MaxRetries,
			Message: fmt.Sprintf("must be between 0 and %d", problemgen.MaxBackendCalls-1)})
	}
	// Transport retries share the per-question call budget.
	if c.LLM.Retry.MaxAttempts > problemgen.MaxBackendCalls {
		errs = append(errs, &ValidationError{Field: "llm.retry.max_attempts", Value: c.LLM.Retry.MaxAttempts,
			Message: fmt.Sprintf("must not exceed %d", problemgen.MaxBackendCalls)})
	}
	if c.Generation.CallTimeout < 0 {
		errs = append(errs, &ValidationError{Field: "generation.call_timeout", Value: c.Generation.CallTimeout, Message: "must be non-negative"})
	}
	if c.Generation.Temperature < 0 || c.Generation.Temperature > 1 {
		errs = append(errs, &ValidationError{Field: "generation.temperature", Value: c.Generation.Temperature, Message: "must be between 0 and 1"})
	}

	switch c.Cache.Backend {
	case CacheNone, CacheMemory:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			errs = append(errs, &ValidationError{Field: "cache.redis_addr", Value: c.Cache.RedisAddr, Message: "required for the redis backend"})
		}
	default:
		errs = append(errs, &ValidationError{Field: "cache.backend", Value: c.Cache.Backend, Message: "must be none, memory or redis"})
	}
	if c.Cache.TTL < 0 {
		errs = append(errs, &ValidationError{Field: "cache.ttl", Value: c.Cache.TTL, Message: "must be non-negative"})
	}

	if c.Server.Addr == "" {
		errs = append(errs, &ValidationError{Field: "server.addr", Value: c.Server.Addr, Message: "must not be empty"})
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, &ValidationError{Field: "log.level", Value: c.Log.Level, Message: "must be debug, info, warn or error"})
	}

	return errors.Join(errs...)
}
