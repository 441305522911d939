package lock

import (
	"context"
	"errors"
	"hash/fnv"
)

// Names of the guards taken by long-running console actions.
const (
	ScriptGuard    = "script"
	ThumbnailGuard = "thumbnails"
	ProgressGuard  = "progress-migration"
	SchemaGuard    = "schema-migration"
)

// ErrNotHeld is returned when releasing a guard this owner does not hold.
var ErrNotHeld = errors.New("guard is not held")

// RunGuard allows only one long-running action per name at a time. TryAcquire
// never blocks: a busy guard reports false.
type RunGuard interface {
	TryAcquire(ctx context.Context, name string) (bool, error)
	Release(ctx context.Context, name string) error
}

// advisoryKey maps a guard name to a Postgres advisory lock key.
func advisoryKey(name string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("lrrctl:" + name))
	return int64(h.Sum64())
}
