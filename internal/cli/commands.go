package cli

import (
	"context"
	"flag"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/RezaEskandarii/lrrctl/client"
	"github.com/RezaEskandarii/lrrctl/internal/notify"
	"github.com/RezaEskandarii/lrrctl/internal/store"
	"github.com/RezaEskandarii/lrrctl/types"
	"go.uber.org/zap"
)

var commands = map[string]command{
	"clean-temp":           {usage: "empty the server's temporary folder", run: cleanTemp},
	"invalidate-cache":     {usage: "discard the search cache", run: simple((*client.Console).InvalidateCache)},
	"clear-new":            {args: "<id>", usage: "remove the new flag of an archive", run: clearNew},
	"clear-all-new":        {usage: "remove the new flag of every archive", run: simple((*client.Console).ClearAllNew)},
	"drop-db":              {args: "-yes", usage: "reset the whole database", run: dropDatabase},
	"clean-db":             {usage: "remove entries of archives that no longer exist", run: cleanDatabase},
	"regen-thumbs":         {args: "[-force]", usage: "regenerate missing (or all) thumbnails", run: regenThumbnails},
	"shinobu":              {usage: "show the background worker status", run: shinobuStatus},
	"restart-shinobu":      {usage: "restart the background worker", run: restartShinobu},
	"categories":           {usage: "list categories, pinned first", run: listCategories},
	"archive-categories":   {args: "<id>", usage: "list the categories of an archive", run: archiveCategories},
	"add-to-category":      {args: "<archive> <category>", usage: "add an archive to a category", run: categoryMembership(true)},
	"remove-from-category": {args: "<archive> <category>", usage: "remove an archive from a category", run: categoryMembership(false)},
	"delete-archive":       {args: "<id>", usage: "delete an archive and its file", run: deleteArchive},
	"save-metadata":        {args: "<id> -title T -tags T", usage: "overwrite title and tags of an archive", run: saveMetadata},
	"use-plugin":           {args: "-plugin P -id ID [-arg A]", usage: "run a metadata plugin on an archive", run: usePlugin},
	"run-script":           {args: "-plugin P [-arg A]", usage: "queue a script plugin and wait for it", run: runScript},
	"tags":                 {args: "[-min N]", usage: "list tags used at least N times", run: tagSuggestions},
	"migrate-progress":     {usage: "push locally saved reading progress to the server", run: migrateProgress},
	"set-progress":         {args: "<id> <page>", usage: "save a local reading position", run: setProgress},
	"settings":             {args: "[-view-mode N] [-crop-thumbs B] [-column1 NS] [-column2 NS]", usage: "show or change local preferences", run: settings},
	"check-version":        {args: "[-current V]", usage: "check GitHub for a newer server release", run: checkVersion},
	"job":                  {args: "<id>", usage: "wait for a Minion job and print its result", run: waitJob},
	"serve":                {usage: "run the toast dashboard and the scheduled actions", run: serve},
}

func simple(action func(*client.Console, context.Context) bool) func(context.Context, *env, []string) error {
	return func(ctx context.Context, e *env, args []string) error {
		if err := exactArgs(args, 0, "no arguments"); err != nil {
			return err
		}
		return client.Run(action(e.c.Console, ctx))
	}
}

func cleanTemp(ctx context.Context, e *env, args []string) error {
	size, ok := e.c.Console.CleanTempFolder(ctx)
	if ok {
		fmt.Fprintf(e.out, "temporary folder size: %s MB\n", size)
	}
	return client.Run(ok)
}

func clearNew(ctx context.Context, e *env, args []string) error {
	if err := exactArgs(args, 1, "<id>"); err != nil {
		return err
	}
	return client.Run(e.c.Console.ClearNew(ctx, args[0]))
}

func dropDatabase(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("drop-db", flag.ContinueOnError)
	yes := fs.Bool("yes", false, "confirm the reset")
	if _, err := parseInterspersed(fs, args); err != nil {
		return err
	}
	if !*yes {
		return fmt.Errorf("%w: refusing to drop the database without -yes", ErrUsage)
	}
	return client.Run(e.c.Console.DropDatabase(ctx))
}

func cleanDatabase(ctx context.Context, e *env, args []string) error {
	res, ok := e.c.Console.CleanDatabase(ctx)
	if ok {
		fmt.Fprintf(e.out, "deleted: %d\nunlinked: %d\n", res.Deleted.Int(), res.Unlinked.Int())
	}
	return client.Run(ok)
}

func regenThumbnails(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("regen-thumbs", flag.ContinueOnError)
	force := fs.Bool("force", false, "regenerate every thumbnail")
	if _, err := parseInterspersed(fs, args); err != nil {
		return err
	}
	return client.Run(e.c.Console.RegenThumbnails(ctx, *force))
}

func printShinobu(e *env, status types.ShinobuStatus) {
	fmt.Fprintf(e.out, "alive: %t\npid: %d\n", status.Alive(), status.PID.Int())
}

func shinobuStatus(ctx context.Context, e *env, args []string) error {
	status, ok := e.c.Console.ShinobuStatus(ctx)
	if ok {
		printShinobu(e, status)
	}
	return client.Run(ok)
}

func restartShinobu(ctx context.Context, e *env, args []string) error {
	status, ok := e.c.Console.RestartShinobu(ctx)
	if ok {
		printShinobu(e, status)
	}
	return client.Run(ok)
}

func printCategories(e *env, categories []types.Category) {
	for _, cat := range categories {
		pin := " "
		if cat.Pinned != 0 {
			pin = "*"
		}
		fmt.Fprintf(e.out, "%s %s\t%s\n", pin, cat.ID, cat.Name)
	}
}

func listCategories(ctx context.Context, e *env, args []string) error {
	categories, ok := e.c.Console.ListCategories(ctx)
	if ok {
		printCategories(e, categories)
	}
	return client.Run(ok)
}

func archiveCategories(ctx context.Context, e *env, args []string) error {
	if err := exactArgs(args, 1, "<id>"); err != nil {
		return err
	}
	categories, ok := e.c.Console.ArchiveCategories(ctx, args[0])
	if ok {
		printCategories(e, categories)
	}
	return client.Run(ok)
}

func categoryMembership(add bool) func(context.Context, *env, []string) error {
	return func(ctx context.Context, e *env, args []string) error {
		if err := exactArgs(args, 2, "<archive> <category>"); err != nil {
			return err
		}
		if add {
			return client.Run(e.c.Console.AddArchiveToCategory(ctx, args[0], args[1]))
		}
		return client.Run(e.c.Console.RemoveArchiveFromCategory(ctx, args[0], args[1]))
	}
}

func deleteArchive(ctx context.Context, e *env, args []string) error {
	if err := exactArgs(args, 1, "<id>"); err != nil {
		return err
	}
	return client.Run(e.c.Console.DeleteArchive(ctx, args[0]))
}

func saveMetadata(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("save-metadata", flag.ContinueOnError)
	title := fs.String("title", "", "new title")
	tags := fs.String("tags", "", "new comma separated tags")
	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if err := exactArgs(positional, 1, "<id>"); err != nil {
		return err
	}
	return client.Run(e.c.Console.SaveMetadata(ctx, positional[0], *title, *tags))
}

func usePlugin(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("use-plugin", flag.ContinueOnError)
	plugin := fs.String("plugin", "", "plugin namespace")
	id := fs.String("id", "", "archive id")
	arg := fs.String("arg", "", "plugin argument")
	if _, err := parseInterspersed(fs, args); err != nil {
		return err
	}
	if *plugin == "" || *id == "" {
		return fmt.Errorf("%w: -plugin and -id are required", ErrUsage)
	}
	result, ok := e.c.Console.UsePlugin(ctx, *plugin, *id, *arg)
	if ok {
		if result.Title != "" {
			fmt.Fprintf(e.out, "title: %s\n", result.Title)
		}
		if result.NewTags != "" {
			fmt.Fprintf(e.out, "new tags: %s\n", strings.TrimSpace(result.NewTags))
		}
	}
	return client.Run(ok)
}

func runScript(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("run-script", flag.ContinueOnError)
	plugin := fs.String("plugin", "", "script namespace")
	arg := fs.String("arg", "", "script argument")
	if _, err := parseInterspersed(fs, args); err != nil {
		return err
	}
	if *plugin == "" {
		return fmt.Errorf("%w: -plugin is required", ErrUsage)
	}
	return client.Run(e.c.Console.RunScript(ctx, client.ScriptRequest{Plugin: *plugin, Arg: *arg}))
}

func tagSuggestions(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("tags", flag.ContinueOnError)
	minWeight := fs.Int("min", 1, "minimum number of uses")
	if _, err := parseInterspersed(fs, args); err != nil {
		return err
	}
	labels, ok := e.c.Console.TagSuggestions(ctx, *minWeight)
	for _, label := range labels {
		fmt.Fprintln(e.out, label)
	}
	return client.Run(ok)
}

func migrateProgress(ctx context.Context, e *env, args []string) error {
	report, ok := e.c.Console.MigrateProgress(ctx)
	fmt.Fprintf(e.out, "found: %d\npushed: %d\nskipped: %d\nfailed: %d\n",
		report.Found, report.Pushed, report.Skipped, report.Failed)
	return client.Run(ok)
}

func setProgress(ctx context.Context, e *env, args []string) error {
	if err := exactArgs(args, 2, "<id> <page>"); err != nil {
		return err
	}
	page, err := strconv.Atoi(args[1])
	if err != nil || page < 1 {
		return fmt.Errorf("%w: page must be a positive number", ErrUsage)
	}
	return store.SetLocalProgress(ctx, e.c.LocalStore, args[0], page)
}

func settings(ctx context.Context, e *env, args []string) error {
	current, err := store.LoadSettings(ctx, e.c.LocalStore)
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("settings", flag.ContinueOnError)
	fs.IntVar(&current.IndexViewMode, "view-mode", current.IndexViewMode, "0 compact, 1 thumbnails")
	fs.BoolVar(&current.CropThumbs, "crop-thumbs", current.CropThumbs, "crop thumbnails")
	fs.StringVar(&current.CustomColumn1, "column1", current.CustomColumn1, "namespace of the first custom column")
	fs.StringVar(&current.CustomColumn2, "column2", current.CustomColumn2, "namespace of the second custom column")
	if _, err := parseInterspersed(fs, args); err != nil {
		return err
	}
	if fs.NFlag() > 0 {
		if err := store.SaveSettings(ctx, e.c.LocalStore, current); err != nil {
			return err
		}
	}

	fmt.Fprintf(e.out, "view-mode: %d\ncrop-thumbs: %t\ncolumn1: %s\ncolumn2: %s\n",
		current.IndexViewMode, current.CropThumbs, current.CustomColumn1, current.CustomColumn2)
	return nil
}

func checkVersion(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("check-version", flag.ContinueOnError)
	current := fs.String("current", "", "version to compare against, the server's by default")
	if _, err := parseInterspersed(fs, args); err != nil {
		return err
	}
	if *current == "" {
		info, ok := e.c.Console.ServerInfo(ctx)
		if !ok {
			return client.ErrActionFailed
		}
		*current = info.Version
	}

	release, newer := e.c.Console.CheckVersion(ctx, *current)
	if newer {
		fmt.Fprintf(e.out, "%s is available: %s\n", release.TagName, release.HTMLURL)
	} else {
		fmt.Fprintf(e.out, "%s is up to date\n", *current)
	}
	return nil
}

func waitJob(ctx context.Context, e *env, args []string) error {
	if err := exactArgs(args, 1, "<id>"); err != nil {
		return err
	}
	status, err := e.c.Poller.Wait(ctx, types.JobID(args[0]))
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "state: %s\n", status.State)
	if text := status.ResultText(); text != "" {
		fmt.Fprintf(e.out, "result: %s\n", text)
	}
	return nil
}

func serve(ctx context.Context, e *env, args []string) error {
	c := e.c
	log := c.Logger

	if err := c.Scheduler.AddAll(c.Config.Schedules); err != nil {
		return err
	}
	go c.Scheduler.Start(ctx)

	// toasts published by other consoles show up on this dashboard too
	if c.Redis != nil && c.Config.RedisChannel != "" {
		source, err := notify.SubscribeRedis(ctx, c.Redis, c.Config.RedisChannel)
		if err != nil {
			return fmt.Errorf("subscribe to %s: %w", c.Config.RedisChannel, err)
		}
		go notify.Relay(ctx, source, c.Board, log)
	}
	if c.MessageBroker != nil {
		source, err := c.MessageBroker.Consume(ctx, c.Config.RabbitMQConfig.Queue)
		if err != nil {
			return fmt.Errorf("consume %s: %w", c.Config.RabbitMQConfig.Queue, err)
		}
		go notify.Relay(ctx, source, c.Board, log)
	}

	if info, ok := c.Console.ServerInfo(ctx); ok {
		c.Console.Welcome(ctx, info.Version)
	}

	log.Info("serving dashboard", zap.Uint("port", c.Config.Dashboard.Port),
		zap.Strings("scheduled", scheduledNames(c.Scheduler.Scheduled())))
	return c.Dashboard.Serve(ctx)
}

func scheduledNames(scheduled map[string]time.Time) []string {
	names := make([]string, 0, len(scheduled))
	for name := range scheduled {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
