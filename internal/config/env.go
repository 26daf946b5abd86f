package config

import (
	"strconv"
	"time"
)

// envOverrides maps environment variables to config field setters.
// Malformed numbers and durations are ignored.
var envOverrides = []struct {
	envVar string
	apply  func(*Config, string)
}{
	{
		envVar: "QUESTGEN_DB",
		apply: func(c *Config, v string) {
			c.Store.Path = v
		},
	},
	{
		envVar: "QUESTGEN_CACHE",
		apply: func(c *Config, v string) {
			c.Cache.Backend = v
		},
	},
	{
		envVar: "QUESTGEN_REDIS_ADDR",
		apply: func(c *Config, v string) {
			c.Cache.RedisAddr = v
		},
	},
	{
		envVar: "QUESTGEN_REDIS_PASSWORD",
		apply: func(c *Config, v string) {
			c.Cache.RedisPassword = v
		},
	},
	{
		envVar: "QUESTGEN_REDIS_DB",
		apply: func(c *Config, v string) {
			if n, err := strconv.Atoi(v); err == nil {
				c.Cache.RedisDB = n
			}
		},
	},
	{
		envVar: "QUESTGEN_CACHE_TTL",
		apply: func(c *Config, v string) {
			if d, err := time.ParseDuration(v); err == nil {
				c.Cache.TTL = d
			}
		},
	},
	{
		envVar: "QUESTGEN_ADDR",
		apply: func(c *Config, v string) {
			c.Server.Addr = v
		},
	},
	{
		envVar: "QUESTGEN_LOG_LEVEL",
		apply: func(c *Config, v string) {
			c.Log.Level = v
		},
	},
}
