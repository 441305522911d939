package redisstore

import (
	"context"
	"errors"
	"sort"

	"github.com/RezaEskandarii/lrrctl/internal/store"
	"github.com/redis/go-redis/v9"
)

// DefaultHashKey is the Redis hash holding every local key.
const DefaultHashKey = "lrrctl:local"

type redisLocalStore struct {
	client *redis.Client
	hash   string
}

func NewRedisLocalStore(client *redis.Client, hash string) store.LocalStore {
	if hash == "" {
		hash = DefaultHashKey
	}
	return &redisLocalStore{client: client, hash: hash}
}

func (s *redisLocalStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.HGet(ctx, s.hash, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

func (s *redisLocalStore) Set(ctx context.Context, key, value string) error {
	return s.client.HSet(ctx, s.hash, key, value).Err()
}

func (s *redisLocalStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.client.HDel(ctx, s.hash, keys...).Err()
}

func (s *redisLocalStore) Keys(ctx context.Context) ([]string, error) {
	keys, err := s.client.HKeys(ctx, s.hash).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *redisLocalStore) Close() error {
	return s.client.Close()
}
