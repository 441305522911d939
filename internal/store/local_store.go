package store

import (
	"context"
	"strings"
)

// LocalStore is the console's persistent key/value store. It keeps preferences and
// the reading progress saved by older clients.
type LocalStore interface {
	// Get returns the value of key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set creates or replaces the value of key.
	Set(ctx context.Context, key, value string) error

	// Delete removes the given keys. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error

	// Keys lists every stored key.
	Keys(ctx context.Context) ([]string, error)

	Close() error
}

// KeysWithSuffix lists the stored keys ending in suffix.
func KeysWithSuffix(ctx context.Context, s LocalStore, suffix string) ([]string, error) {
	keys, err := s.Keys(ctx)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, k := range keys {
		if strings.HasSuffix(k, suffix) {
			out = append(out, k)
		}
	}
	return out, nil
}
