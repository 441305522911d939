package lock

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const DefaultGuardTTL = time.Hour

// releaseScript deletes the guard only when it still belongs to the caller.
const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then return redis.call("DEL", KEYS[1]) else return 0 end`

// RedisRunGuard stores guards as expiring keys, so a crashed console cannot hold one
// forever.
type RedisRunGuard struct {
	client *redis.Client
	owner  string
	ttl    time.Duration
}

// NewOwnerID returns a guard owner unique to this process, so consoles sharing an
// instance name never release each other's guards.
func NewOwnerID(instance string) string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "unknown-host"
	}
	return fmt.Sprintf("%s@%s/%s", instance, host, uuid.NewString())
}

func NewRedisRunGuard(client *redis.Client, owner string, ttl time.Duration) *RedisRunGuard {
	if ttl <= 0 {
		ttl = DefaultGuardTTL
	}
	return &RedisRunGuard{client: client, owner: owner, ttl: ttl}
}

func (g *RedisRunGuard) TryAcquire(ctx context.Context, name string) (bool, error) {
	ok, err := g.client.SetNX(ctx, guardKey(name), g.owner, g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock: %w", err)
	}
	return ok, nil
}

func (g *RedisRunGuard) Release(ctx context.Context, name string) error {
	deleted, err := g.client.Eval(ctx, releaseScript, []string{guardKey(name)}, g.owner).Int64()
	if err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	if deleted == 0 {
		return ErrNotHeld
	}
	return nil
}

func guardKey(name string) string {
	return "lrrctl:guard:" + name
}
