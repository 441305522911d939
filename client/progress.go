package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"

	"github.com/RezaEskandarii/lrrctl/internal/lock"
	"github.com/RezaEskandarii/lrrctl/internal/store"
	"github.com/RezaEskandarii/lrrctl/types"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// MigrationReport summarizes a reading progress migration.
type MigrationReport struct {
	Found    int
	Pushed   int
	Skipped  int
	Failed   int
	Archives []string
}

// MigrateProgress moves reading positions saved locally by older clients to the
// server. A local position is only pushed when it is further than the server's;
// either way the local keys are dropped once the server accepted it. Archives whose
// metadata could not be read, or whose push was rejected, keep their local keys
// for a later run.
func (c *Console) MigrateProgress(ctx context.Context) (MigrationReport, bool) {
	log := c.api.Logger()

	entries, err := store.ListLocalProgress(ctx, c.local)
	if err != nil {
		log.Error("failed to read local progress", zap.Error(err))
		return MigrationReport{}, false
	}
	if len(entries) == 0 {
		log.Info("no local reading progression to migrate")
		return MigrationReport{}, true
	}

	if !c.acquire(ctx, lock.ProgressGuard) {
		return MigrationReport{}, false
	}
	defer c.release(ctx, lock.ProgressGuard)

	c.api.notify(ctx, types.ToastMessage{
		Heading: "Your Reading Progression is now saved on the server!",
		Body:    "You seem to have some local progression hanging around. Please wait warmly while we migrate it to the server for you.",
		Icon:    types.IconInfo,
	})

	var (
		pushed, skipped, failed atomic.Int64
		wg                      sync.WaitGroup
		mu                      sync.Mutex
		migrated                []string
	)
	sem := semaphore.NewWeighted(c.migrationConcurrency)

	for _, entry := range entries {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)

		go func(entry store.LocalProgress) {
			defer func() {
				sem.Release(1)
				wg.Done()
			}()

			outcome := c.migrateOne(ctx, entry)
			switch outcome {
			case migrationPushed:
				pushed.Add(1)
			case migrationSkipped:
				skipped.Add(1)
			default:
				failed.Add(1)
				return
			}
			mu.Lock()
			migrated = append(migrated, entry.ArchiveID)
			mu.Unlock()
		}(entry)
	}
	wg.Wait()

	report := MigrationReport{
		Found:    len(entries),
		Pushed:   int(pushed.Load()),
		Skipped:  int(skipped.Load()),
		Failed:   int(failed.Load()),
		Archives: migrated,
	}
	if ctx.Err() != nil {
		return report, false
	}
	if report.Failed > 0 {
		log.Warn("reading progression partially migrated",
			zap.Int("found", report.Found), zap.Int("pushed", report.Pushed),
			zap.Int("skipped", report.Skipped), zap.Int("failed", report.Failed))
		return report, false
	}

	c.api.notify(ctx, types.ToastMessage{
		Heading: "Reading progression has been fully migrated!",
		Body:    "You'll have to reopen archives in the Reader to see the migrated progression values.",
		Icon:    types.IconSuccess,
	})
	log.Info("reading progression migrated",
		zap.Int("found", report.Found), zap.Int("pushed", report.Pushed),
		zap.Int("skipped", report.Skipped), zap.Int("failed", report.Failed))
	return report, true
}

type migrationOutcome int

const (
	migrationFailed migrationOutcome = iota
	migrationPushed
	migrationSkipped
)

func (c *Console) migrateOne(ctx context.Context, entry store.LocalProgress) migrationOutcome {
	log := c.api.Logger().With(zap.String("archive", entry.ArchiveID))
	id := url.PathEscape(entry.ArchiveID)

	result, err := c.api.Fetch(ctx, Request{Endpoint: "/api/archives/" + id + "/metadata", Method: http.MethodGet})
	if err != nil {
		log.Warn("failed to read archive metadata", zap.Error(err))
		return migrationFailed
	}
	var meta types.ArchiveMetadata
	if err := result.Decode(&meta); err != nil {
		log.Warn("failed to decode archive metadata", zap.Error(err))
		return migrationFailed
	}

	outcome := migrationSkipped
	if types.Numeric(entry.Page) > meta.Progress {
		if !c.api.Call(ctx, fmt.Sprintf("/api/archives/%s/progress/%d?force=1", id, entry.Page), http.MethodPut,
			"", "Error updating reading progress!", nil) {
			return migrationFailed
		}
		outcome = migrationPushed
	}

	if err := store.ClearLocalProgress(ctx, c.local, entry.ArchiveID); err != nil {
		log.Warn("failed to clear local progress", zap.Error(err))
	}
	return outcome
}

// Welcome greets the user the first time the console runs against a store.
func (c *Console) Welcome(ctx context.Context, version string) bool {
	_, seen, err := c.local.Get(ctx, store.KeySawWelcomeNotice)
	if err != nil {
		c.api.Logger().Warn("failed to read local store", zap.Error(err))
		return false
	}
	if seen {
		return false
	}
	if err := c.local.Set(ctx, store.KeySawWelcomeNotice, "true"); err != nil {
		c.api.Logger().Warn("failed to write local store", zap.Error(err))
	}

	c.api.notify(ctx, types.ToastMessage{
		Heading: fmt.Sprintf("Welcome to LANraragi %s!", version),
		Body:    "If you want to perform advanced operations on an archive, remember to just right-click its name. Happy reading!",
		Icon:    types.IconInfo,
	})
	return true
}
