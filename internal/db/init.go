package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"github.com/RezaEskandarii/lrrctl/internal/lock"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const schema = "lrrctl_schema"

//go:embed migrations/*.sql
var migrations embed.FS

// ErrMigrationBusy is returned when another console is migrating the same database.
var ErrMigrationBusy = errors.New("another instance is running the migrations")

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, postgresURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", postgresURL)
	if err != nil {
		return nil, err
	}
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Init creates the schema and runs the embedded migration scripts in file name order.
// The guard keeps two consoles from migrating the same database concurrently.
func Init(ctx context.Context, db *sql.DB, guard lock.RunGuard, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	acquired, err := guard.TryAcquire(ctx, lock.SchemaGuard)
	if err != nil {
		return err
	}
	if !acquired {
		return ErrMigrationBusy
	}
	defer func() {
		if err := guard.Release(ctx, lock.SchemaGuard); err != nil {
			logger.Warn("failed to release migration guard", zap.Error(err))
		}
	}()

	if _, err = db.ExecContext(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schema)); err != nil {
		return err
	}

	scripts, err := readSQLScripts()
	if err != nil {
		return err
	}
	for _, script := range scripts {
		logger.Debug("running migration", zap.String("script", script.name))
		if _, err := db.ExecContext(ctx, script.body); err != nil {
			return fmt.Errorf("migration %s: %w", script.name, err)
		}
	}
	return nil
}

type sqlScript struct {
	name string
	body string
}

func readSQLScripts() ([]sqlScript, error) {
	entries, err := fs.ReadDir(migrations, "migrations")
	if err != nil {
		return nil, err
	}

	var scripts []sqlScript
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		content, err := migrations.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, sqlScript{name: entry.Name(), body: string(content)})
	}
	sort.Slice(scripts, func(i, j int) bool { return scripts[i].name < scripts[j].name })
	return scripts, nil
}
