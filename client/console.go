package client

import (
	"context"
	"errors"

	"github.com/RezaEskandarii/lrrctl/internal/lock"
	"github.com/RezaEskandarii/lrrctl/internal/store"
	"github.com/RezaEskandarii/lrrctl/internal/store/memory"
	"github.com/RezaEskandarii/lrrctl/types"
	"github.com/RezaEskandarii/lrrctl/types/config"
	"go.uber.org/zap"
)

const (
	busyHeading = "A script is already running."
	busyBody    = "Please wait for the script to terminate."
)

// ErrActionFailed is returned by Run when the action ended in an error toast.
var ErrActionFailed = errors.New("action failed")

// Console performs the archive server's management actions. Every outcome is
// reported through the client's notifier; methods return whether the action
// completed successfully.
type Console struct {
	api                  *APIClient
	poller               *JobPoller
	guard                lock.RunGuard
	local                store.LocalStore
	releaseURL           string
	migrationConcurrency int64
}

type ConsoleOption func(*Console)

// WithGuard sets the guard that keeps long-running actions from overlapping.
func WithGuard(guard lock.RunGuard) ConsoleOption {
	return func(c *Console) {
		if guard != nil {
			c.guard = guard
		}
	}
}

func WithLocalStore(s store.LocalStore) ConsoleOption {
	return func(c *Console) {
		if s != nil {
			c.local = s
		}
	}
}

func WithReleaseURL(u string) ConsoleOption {
	return func(c *Console) {
		if u != "" {
			c.releaseURL = u
		}
	}
}

func WithMigrationConcurrency(n int) ConsoleOption {
	return func(c *Console) {
		if n > 0 {
			c.migrationConcurrency = int64(n)
		}
	}
}

func NewConsole(api *APIClient, poller *JobPoller, opts ...ConsoleOption) *Console {
	if poller == nil {
		poller = NewJobPoller(api)
	}
	c := &Console{
		api:                  api,
		poller:               poller,
		guard:                lock.NewMemoryRunGuard(),
		local:                memory.NewMemoryLocalStore(),
		releaseURL:           config.DefaultReleaseURL,
		migrationConcurrency: config.DefaultMigrationConcurrency,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Console) API() *APIClient {
	return c.api
}

func (c *Console) Poller() *JobPoller {
	return c.poller
}

func (c *Console) LocalStore() store.LocalStore {
	return c.local
}

// acquire takes the named guard. A busy guard raises the busy toast; a guard
// backend failure is logged and reported the same way.
func (c *Console) acquire(ctx context.Context, name string) bool {
	ok, err := c.guard.TryAcquire(ctx, name)
	if err != nil {
		c.api.Logger().Error("failed to acquire guard", zap.String("guard", name), zap.Error(err))
	}
	if !ok {
		c.api.notify(ctx, types.ErrorToast(busyHeading, busyBody))
		return false
	}
	return true
}

func (c *Console) release(ctx context.Context, name string) {
	if err := c.guard.Release(context.WithoutCancel(ctx), name); err != nil {
		c.api.Logger().Warn("failed to release guard", zap.String("guard", name), zap.Error(err))
	}
}

// Run adapts an action reporting success as a bool to an error, for the scheduler
// and the command line.
func Run(ok bool) error {
	if !ok {
		return ErrActionFailed
	}
	return nil
}
