package settings

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/joseph-ayodele/pricetag-ocr/internal/repository"
)

// Store is a string key-value store for user settings.
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
}

// MemoryStore keeps settings in process memory.
type MemoryStore struct {
	mu sync.RWMutex
	m  map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: make(map[string]string)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

// SQLStore persists settings in the settings table.
type SQLStore struct {
	repo repository.SettingsRepository
}

func NewSQLStore(repo repository.SettingsRepository) *SQLStore {
	return &SQLStore{repo: repo}
}

func (s *SQLStore) Get(ctx context.Context, key string) (string, bool, error) {
	return s.repo.Get(ctx, key)
}

func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	return s.repo.Put(ctx, key, value)
}

// RedisHashKey is the hash holding all settings fields.
const RedisHashKey = "pricetag:settings"

// RedisStore persists settings as fields of one redis hash.
type RedisStore struct {
	client redis.Cmdable
	key    string
}

func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client, key: RedisHashKey}
}

// DialRedis parses a redis:// URL and pings the server.
func DialRedis(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.HGet(ctx, s.key, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	return s.client.HSet(ctx, s.key, key, value).Err()
}
