package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/RezaEskandarii/lrrctl/internal/lock"
	"github.com/RezaEskandarii/lrrctl/internal/notify"
	"github.com/RezaEskandarii/lrrctl/types/config"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tempfolder", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"operation": "cleantemp", "success": 1, "newsize": "0.0"}`))
	})
	mux.HandleFunc("/api/info", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name": "LANraragi", "version": "0.8.1"}`))
	})
	mux.HandleFunc("/latest", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"tag_name": "v.0.9.0", "html_url": "https://example.org/v.0.9.0"}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestNewContainer_Memory(t *testing.T) {
	server := newServer(t)
	cfg, err := config.NewConsoleConfig(server.URL, config.WithReleaseURL(server.URL+"/latest"))
	require.NoError(t, err)

	recorder := notify.NewRecorder()
	c, err := NewContainer(context.Background(), cfg, WithNotifier(recorder))
	require.NoError(t, err)
	defer c.Close()

	assert.IsType(t, &lock.MemoryRunGuard{}, c.Guard)
	assert.Nil(t, c.MessageBroker)
	assert.Nil(t, c.DB)
	assert.Equal(t, []string{
		ActionCheckVersion, ActionCleanDatabase, ActionCleanTemp, ActionClearAllNew,
		ActionInvalidateCache, ActionMigrateProgress, ActionRegenThumbnails, ActionShinobuStatus,
	}, c.ActionHandler.List())

	require.NoError(t, c.Scheduler.Trigger(context.Background(), ActionCleanTemp))
	toasts := recorder.Toasts()
	require.Len(t, toasts, 1)
	assert.Equal(t, "Temporary folder cleaned!", toasts[0].Heading)
	assert.Equal(t, 1, c.Board.Len())
}

func TestNewContainer_CheckVersionAction(t *testing.T) {
	server := newServer(t)
	cfg, err := config.NewConsoleConfig(server.URL, config.WithReleaseURL(server.URL+"/latest"))
	require.NoError(t, err)

	recorder := notify.NewRecorder()
	c, err := NewContainer(context.Background(), cfg, WithNotifier(recorder))
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.ActionHandler.Execute(context.Background(), ActionCheckVersion))
	toasts := recorder.Toasts()
	require.Len(t, toasts, 1)
	assert.Equal(t, "A new version of LANraragi (v.0.9.0) is available!", toasts[0].Heading)
}

func TestNewContainer_FailedActionReturnsError(t *testing.T) {
	server := newServer(t)
	cfg, err := config.NewConsoleConfig(server.URL)
	require.NoError(t, err)

	c, err := NewContainer(context.Background(), cfg)
	require.NoError(t, err)
	defer c.Close()

	// the stub server has no shinobu route and answers 404
	assert.Error(t, c.Scheduler.Trigger(context.Background(), ActionShinobuStatus))
	history := c.Scheduler.History()
	require.Len(t, history, 1)
	assert.Equal(t, ActionShinobuStatus, history[0].Action)
}

func TestNewContainer_Postgres(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	mock.ExpectQuery("SELECT pg_try_advisory_lock").
		WillReturnRows(sqlmock.NewRows([]string{"pg_try_advisory_lock"}).AddRow(true))
	mock.ExpectExec("CREATE SCHEMA IF NOT EXISTS lrrctl_schema").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS lrrctl_schema.local_storage").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT pg_advisory_unlock").
		WillReturnRows(sqlmock.NewRows([]string{"pg_advisory_unlock"}).AddRow(true))
	// the guard pins one pooled connection while the migrations run on a second
	mock.ExpectClose()
	mock.ExpectClose()

	cfg, err := config.NewConsoleConfig("http://localhost:3000",
		config.WithPostgresConfig(config.PostgresConfig{ConnectionUrl: "postgres://localhost/lrr"}))
	require.NoError(t, err)

	c, err := NewContainer(context.Background(), cfg, WithDB(db))
	require.NoError(t, err)
	assert.IsType(t, &lock.PostgresRunGuard{}, c.Guard)

	require.NoError(t, c.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewContainer_Redis(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mock.ExpectHGet("lrrctl:local", "indexViewMode").RedisNil()

	cfg, err := config.NewConsoleConfig("http://localhost:3000",
		config.WithRedisConfig(config.RedisConfig{Address: "localhost:6379"}),
		config.WithStorageDriver(config.Redis),
		config.WithInstance("console-1"))
	require.NoError(t, err)

	c, err := NewContainer(context.Background(), cfg, WithRedis(rdb))
	require.NoError(t, err)
	defer c.Close()

	assert.IsType(t, &lock.RedisRunGuard{}, c.Guard)
	_, found, err := c.LocalStore.Get(context.Background(), "indexViewMode")
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewContainer_UnsupportedDriver(t *testing.T) {
	cfg, err := config.NewConsoleConfig("http://localhost:3000")
	require.NoError(t, err)
	cfg.StorageDriver = config.StorageDriver(42)

	_, err = NewContainer(context.Background(), cfg)
	assert.ErrorContains(t, err, "unsupported storage driver")
}
