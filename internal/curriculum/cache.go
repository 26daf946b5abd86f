package curriculum

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/abhisek/questgen/internal/questiontype"
)

// Cache stores skill lists by key. A miss is (nil, false, nil).
type Cache interface {
	Get(ctx context.Context, key string) ([]Skill, bool, error)
	Set(ctx context.Context, key string, skills []Skill) error
}

// MemoryCache is a process-local Cache without expiry.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string][]Skill
}

// NewMemoryCache returns an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string][]Skill)}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]Skill, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	skills, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	return append([]Skill(nil), skills...), true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, skills []Skill) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = append([]Skill(nil), skills...)
	return nil
}

// Len returns the number of cached keys.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// RedisCache keeps skill lists in Redis as JSON.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache returns a cache using client. A zero ttl keeps entries
// until evicted.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, prefix: "questgen:skills:", ttl: ttl}
}

func (c *RedisCache) key(key string) string {
	return c.prefix + key
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]Skill, bool, error) {
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var skills []Skill
	if err := json.Unmarshal(data, &skills); err != nil {
		return nil, false, fmt.Errorf("decode cached skills: %w", err)
	}
	return skills, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, skills []Skill) error {
	data, err := json.Marshal(skills)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(key), data, c.ttl).Err()
}

// CachedStore is a read-through Store. Concurrent misses for the same key
// share one backing lookup; cache population races are last-writer-wins.
type CachedStore struct {
	store  Store
	cache  Cache
	group  singleflight.Group
	logger *zap.Logger
}

// NewCachedStore wraps store with cache. Cache failures are logged and the
// backing store is used instead.
func NewCachedStore(store Store, cache Cache, logger *zap.Logger) *CachedStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedStore{store: store, cache: cache, logger: logger}
}

// cacheKey normalizes grade and subject so aliases share an entry.
func cacheKey(grade, subject string) string {
	g := strings.TrimSpace(grade)
	if n, ok := questiontype.NormalizeGrade(grade); ok {
		g = questiontype.GradeLabel(n)
	}
	return "grade:" + g + ":subject:" + strings.ToLower(strings.TrimSpace(subject))
}

func (s *CachedStore) Skills(ctx context.Context, grade, subject string) ([]Skill, error) {
	key := cacheKey(grade, subject)

	skills, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("skill cache read failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		return skills, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		skills, err := s.store.Skills(ctx, grade, subject)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(ctx, key, skills); err != nil {
			s.logger.Warn("skill cache write failed", zap.String("key", key), zap.Error(err))
		}
		return skills, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]Skill(nil), v.([]Skill)...), nil
}

// SkillByID is cached under its own key as a one-element list.
func (s *CachedStore) SkillByID(ctx context.Context, id string) (Skill, error) {
	key := "id:" + id

	skills, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("skill cache read failed", zap.String("key", key), zap.Error(err))
	} else if ok && len(skills) == 1 {
		return skills[0], nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		skill, err := s.store.SkillByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(ctx, key, []Skill{skill}); err != nil {
			s.logger.Warn("skill cache write failed", zap.String("key", key), zap.Error(err))
		}
		return skill, nil
	})
	if err != nil {
		return Skill{}, err
	}
	return v.(Skill), nil
}
