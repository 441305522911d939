package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/RezaEskandarii/lrrctl/internal/lock"
	"github.com/RezaEskandarii/lrrctl/types"
)

// CleanTempFolder empties the server's temporary folder and returns its new size.
func (c *Console) CleanTempFolder(ctx context.Context) (string, bool) {
	var newSize string
	ok := c.api.Call(ctx, "/api/tempfolder", http.MethodDelete,
		"Temporary folder cleaned!", "Error while cleaning the temporary folder:",
		func(result types.RequestResult) error {
			newSize = result.String("newsize")
			return nil
		})
	return newSize, ok
}

func (c *Console) InvalidateCache(ctx context.Context) bool {
	return c.api.Call(ctx, "/api/search/cache", http.MethodDelete,
		"Search cache discarded!", "Error while deleting the cache! Check the logs.", nil)
}

// ClearNew removes the "new" flag of one archive without a success toast.
func (c *Console) ClearNew(ctx context.Context, archiveID string) bool {
	return c.api.Call(ctx, "/api/archives/"+url.PathEscape(archiveID)+"/isnew", http.MethodDelete,
		"", "Error clearing the new flag! Check the logs.", nil)
}

func (c *Console) ClearAllNew(ctx context.Context) bool {
	return c.api.Call(ctx, "/api/database/isnew", http.MethodDelete,
		"All archives are no longer new!", "Error while clearing flags! Check the logs.", nil)
}

// DropDatabase resets the server database. Confirmation is the caller's job.
func (c *Console) DropDatabase(ctx context.Context) bool {
	return c.api.Call(ctx, "/api/database/drop", http.MethodPost,
		"Sayonara! Redirecting...", "Error while resetting the database? Check the logs.", nil)
}

// CleanDatabase removes stale entries. Entries the server only unlinked are reported
// with a persistent warning since they go away on the next cleanup.
func (c *Console) CleanDatabase(ctx context.Context) (types.CleanDatabaseResult, bool) {
	var res types.CleanDatabaseResult
	ok := c.api.Call(ctx, "/api/database/clean", http.MethodPost,
		"", "Error while cleaning the database! Check the logs.",
		func(result types.RequestResult) error {
			if err := result.Decode(&res); err != nil {
				return err
			}
			c.api.notify(ctx, types.SuccessToast(
				fmt.Sprintf("Successfully cleaned the database and removed %d entries!", res.Deleted.Int())))

			if res.Unlinked > 0 {
				c.api.notify(ctx, types.ToastMessage{
					Heading: fmt.Sprintf("%d other entries have been unlinked from the database and will be deleted on the next cleanup!", res.Unlinked.Int()),
					Body:    "Do a backup now if some files disappeared from your archive index.",
					Icon:    types.IconWarning,
				})
			}
			return nil
		})
	return res, ok
}

// RegenThumbnails queues a thumbnail job and follows it to the end. Only one
// regeneration runs at a time.
func (c *Console) RegenThumbnails(ctx context.Context, force bool) bool {
	if !c.acquire(ctx, lock.ThumbnailGuard) {
		return false
	}
	defer c.release(ctx, lock.ThumbnailGuard)

	forceParam := 0
	if force {
		forceParam = 1
	}

	var ticket types.JobTicket
	queued := c.api.Call(ctx, fmt.Sprintf("/api/regen_thumbs?force=%d", forceParam), http.MethodPost,
		"Queued up a job to regenerate thumbnails! Stay tuned for updates or check the Minion console.",
		"Error while sending job to Minion:",
		func(result types.RequestResult) error {
			return result.Decode(&ticket)
		})
	if !queued {
		return false
	}

	finished := false
	c.poller.Poll(ctx, ticket.Job,
		func(status types.JobStatus) {
			var res types.ThumbnailResult
			if err := status.DecodeResult(&res); err != nil {
				panic(fmt.Errorf("unreadable thumbnail result: %w", err))
			}
			c.api.notify(ctx, types.ToastMessage{
				Heading: "All thumbnails generated! Encountered the following errors:",
				Body:    renderValue(res.Errors),
				Icon:    types.IconSuccess,
			})
			finished = true
		}, nil)
	return finished
}

// ShinobuStatus queries the server's background file watcher.
func (c *Console) ShinobuStatus(ctx context.Context) (types.ShinobuStatus, bool) {
	var status types.ShinobuStatus
	ok := c.api.Call(ctx, "/api/shinobu", http.MethodGet,
		"", "Error while querying Shinobu status:",
		func(result types.RequestResult) error {
			return result.Decode(&status)
		})
	return status, ok
}

// RestartShinobu restarts the background worker and reports its new status.
func (c *Console) RestartShinobu(ctx context.Context) (types.ShinobuStatus, bool) {
	restarted := c.api.Call(ctx, "/api/shinobu/restart", http.MethodPost,
		"Background worker restarted!", "Error while restarting the background worker:", nil)
	if !restarted {
		return types.ShinobuStatus{}, false
	}
	return c.ShinobuStatus(ctx)
}
