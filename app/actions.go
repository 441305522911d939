package app

import (
	"context"

	"github.com/RezaEskandarii/lrrctl/client"
	"github.com/RezaEskandarii/lrrctl/types/config"
)

// Names of the console actions that can be scheduled or triggered from the dashboard.
const (
	ActionCleanTemp       = "clean-temp"
	ActionInvalidateCache = "invalidate-cache"
	ActionShinobuStatus   = "shinobu-status"
	ActionCleanDatabase   = "clean-db"
	ActionRegenThumbnails = "regen-thumbs"
	ActionCheckVersion    = "check-version"
	ActionClearAllNew     = "clear-all-new"
	ActionMigrateProgress = "migrate-progress"
)

func registerActions(handler *config.ActionHandler, console *client.Console) error {
	actions := map[string]config.ActionFunc{
		ActionCleanTemp: func(ctx context.Context) error {
			_, ok := console.CleanTempFolder(ctx)
			return client.Run(ok)
		},
		ActionInvalidateCache: func(ctx context.Context) error {
			return client.Run(console.InvalidateCache(ctx))
		},
		ActionShinobuStatus: func(ctx context.Context) error {
			_, ok := console.ShinobuStatus(ctx)
			return client.Run(ok)
		},
		ActionCleanDatabase: func(ctx context.Context) error {
			_, ok := console.CleanDatabase(ctx)
			return client.Run(ok)
		},
		ActionRegenThumbnails: func(ctx context.Context) error {
			return client.Run(console.RegenThumbnails(ctx, false))
		},
		ActionCheckVersion: func(ctx context.Context) error {
			info, ok := console.ServerInfo(ctx)
			if !ok {
				return client.ErrActionFailed
			}
			console.CheckVersion(ctx, info.Version)
			return nil
		},
		ActionClearAllNew: func(ctx context.Context) error {
			return client.Run(console.ClearAllNew(ctx))
		},
		ActionMigrateProgress: func(ctx context.Context) error {
			_, ok := console.MigrateProgress(ctx)
			return client.Run(ok)
		},
	}
	for name, fn := range actions {
		if err := handler.Register(name, fn); err != nil {
			return err
		}
	}
	return nil
}
