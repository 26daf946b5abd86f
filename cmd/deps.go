package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/abhisek/questgen/internal/config"
	"github.com/abhisek/questgen/internal/curriculum"
	"github.com/abhisek/questgen/internal/llm"
	"github.com/abhisek/questgen/internal/pipeline"
	"github.com/abhisek/questgen/internal/problemgen"
	"github.com/abhisek/questgen/internal/store"
)

// skillStore builds the curriculum store with the configured cache. An
// unreachable Redis degrades to the in-memory cache. The returned func
// releases the Redis client.
func skillStore(ctx context.Context, c config.CacheConfig, log *zap.Logger) (curriculum.Store, func()) {
	catalog := curriculum.SeedCatalog()

	switch c.Backend {
	case config.CacheNone:
		return catalog, func() {}
	case config.CacheRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		err := rdb.Ping(pingCtx).Err()
		if err == nil {
			log.Debug("using redis skill cache", zap.String("addr", c.RedisAddr))
			cache := curriculum.NewRedisCache(rdb, c.TTL)
			return curriculum.NewCachedStore(catalog, cache, log), func() { rdb.Close() }
		}
		log.Warn("redis unavailable, using in-memory skill cache", zap.String("addr", c.RedisAddr), zap.Error(err))
		rdb.Close()
	}
	return curriculum.NewCachedStore(catalog, curriculum.NewMemoryCache(), log), func() {}
}

// provider builds the LLM provider from the loaded config, falling back to
// the first standard API key found in the environment.
func provider(ctx context.Context, events store.EventRepo, log *zap.Logger) (llm.Provider, error) {
	lc := cfg.LLM
	if lc.Validate() != nil {
		discovered, ok := llm.DiscoverConfig()
		if !ok {
			return nil, fmt.Errorf("no LLM configured: %w", lc.Validate())
		}
		discovered.Retry = lc.Retry
		lc = discovered
	}
	return llm.NewProvider(ctx, lc, events, log)
}

// coordinator wires the full pipeline around p.
func coordinator(p llm.Provider, skills curriculum.Store, runs store.RunRepo, log *zap.Logger) *pipeline.Coordinator {
	orch := problemgen.NewOrchestrator(p, cfg.Generation, problemgen.WithLogger(log))
	opts := []pipeline.Option{
		pipeline.WithSkillStore(skills),
		pipeline.WithLogger(log),
	}
	if runs != nil {
		opts = append(opts, pipeline.WithRecorder(runs))
	}
	return pipeline.NewCoordinator(orch, opts...)
}
