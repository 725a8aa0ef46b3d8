package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// KVStore is a Redis implementation of progress.KV. Every player gets its own
// key namespace so one Redis can serve many local installs.
type KVStore struct {
	client  *redis.Client
	profile string
}

func NewKVStore(client *redis.Client, profile string) *KVStore {
	if profile == "" {
		profile = "default"
	}
	return &KVStore{client: client, profile: profile}
}

func (s *KVStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *KVStore) Set(ctx context.Context, key, value string) error {
	// progress never expires
	return s.client.Set(ctx, s.key(key), value, 0).Err()
}

func (s *KVStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, s.key(k))
	}
	return s.client.Del(ctx, full...).Err()
}

func (s *KVStore) key(name string) string {
	return "quiz:progress:" + s.profile + ":" + name
}
