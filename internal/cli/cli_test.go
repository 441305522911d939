package cli

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/RezaEskandarii/lrrctl/app"
	"github.com/RezaEskandarii/lrrctl/types/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seenRequest struct {
	method string
	path   string
	query  string
	body   string
}

type harness struct {
	server   *httptest.Server
	mu       sync.Mutex
	routes   map[string]string
	seen     []seenRequest
	out      bytes.Buffer
	errOut   bytes.Buffer
	cli      *CLI
	built    *app.Container
	loadPath string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{routes: make(map[string]string)}
	h.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		h.mu.Lock()
		h.seen = append(h.seen, seenRequest{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery, body: string(body)})
		payload, ok := h.routes[r.Method+" "+r.URL.Path]
		h.mu.Unlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(payload))
	}))
	t.Cleanup(h.server.Close)

	load := func(path string) (*config.ConsoleConfig, error) {
		h.loadPath = path
		return config.NewConsoleConfig(h.server.URL,
			config.WithPollInterval(time.Millisecond),
			config.WithReleaseURL(h.server.URL+"/latest"))
	}
	factory := func(ctx context.Context, cfg *config.ConsoleConfig) (*app.Container, error) {
		// one container for the whole test so the memory store survives between runs
		if h.built == nil {
			c, err := app.NewContainer(ctx, cfg)
			if err != nil {
				return nil, err
			}
			h.built = c
		}
		return h.built, nil
	}
	h.cli = New(&h.out, &h.errOut, load, factory)
	return h
}

func (h *harness) route(method, path, payload string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.routes[method+" "+path] = payload
}

func (h *harness) run(args ...string) error {
	h.out.Reset()
	return h.cli.Run(context.Background(), args)
}

func (h *harness) requests() []seenRequest {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]seenRequest(nil), h.seen...)
}

func TestRun_HelpListsCommands(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("help"))
	assert.Contains(t, h.out.String(), "clean-temp")
	assert.Contains(t, h.out.String(), "save-metadata <id> -title T -tags T")
	assert.Nil(t, h.built)
}

func TestRun_UnknownCommand(t *testing.T) {
	h := newHarness(t)
	err := h.run("frobnicate")
	assert.ErrorIs(t, err, ErrUsage)
	assert.Contains(t, h.errOut.String(), "usage: lrrctl")
}

func TestRun_ConfigFlag(t *testing.T) {
	h := newHarness(t)
	h.route(http.MethodDelete, "/api/search/cache", `{"operation": "clear_cache", "success": 1}`)
	require.NoError(t, h.run("-config", "/etc/lrrctl.yaml", "invalidate-cache"))
	assert.Equal(t, "/etc/lrrctl.yaml", h.loadPath)
}

func TestRun_ConfigError(t *testing.T) {
	h := newHarness(t)
	h.cli.load = func(string) (*config.ConsoleConfig, error) { return nil, errors.New("bad yaml") }
	assert.ErrorContains(t, h.run("clean-temp"), "bad yaml")
}

func TestCleanTemp(t *testing.T) {
	h := newHarness(t)
	h.route(http.MethodDelete, "/api/tempfolder", `{"operation": "cleantemp", "success": 1, "newsize": "12.5"}`)

	require.NoError(t, h.run("clean-temp"))
	assert.Equal(t, "temporary folder size: 12.5 MB\n", h.out.String())
}

func TestFailedActionReturnsError(t *testing.T) {
	h := newHarness(t)
	h.route(http.MethodDelete, "/api/database/isnew", `{"success": 0, "error": "locked"}`)

	assert.Error(t, h.run("clear-all-new"))
}

func TestDropDatabase_RequiresConfirmation(t *testing.T) {
	h := newHarness(t)
	h.route(http.MethodPost, "/api/database/drop", `{"success": 1}`)

	assert.ErrorIs(t, h.run("drop-db"), ErrUsage)
	assert.Empty(t, h.requests())

	require.NoError(t, h.run("drop-db", "-yes"))
	require.Len(t, h.requests(), 1)
}

func TestSaveMetadata_FlagsAfterID(t *testing.T) {
	h := newHarness(t)
	h.route(http.MethodPut, "/api/archives/abc/metadata", `{"operation": "update_metadata", "success": 1}`)

	require.NoError(t, h.run("save-metadata", "abc", "-title", "New Title", "-tags", "artist:someone"))
	reqs := h.requests()
	require.Len(t, reqs, 1)
	form, err := url.ParseQuery(reqs[0].body)
	require.NoError(t, err)
	assert.Equal(t, "New Title", form.Get("title"))
	assert.Equal(t, "artist:someone", form.Get("tags"))
}

func TestPositionalArgumentsChecked(t *testing.T) {
	h := newHarness(t)
	assert.ErrorIs(t, h.run("clear-new"), ErrUsage)
	assert.ErrorIs(t, h.run("add-to-category", "only-one"), ErrUsage)
	assert.ErrorIs(t, h.run("use-plugin", "-plugin", "nhplugin"), ErrUsage)
	assert.Empty(t, h.requests())
}

func TestCategories_PinnedFirst(t *testing.T) {
	h := newHarness(t)
	h.route(http.MethodGet, "/api/categories", `[
		{"id": "SET_1", "name": "old", "pinned": "0", "last_used": "100"},
		{"id": "SET_2", "name": "fav", "pinned": "1", "last_used": "1"}
	]`)

	require.NoError(t, h.run("categories"))
	assert.Equal(t, "* SET_2\tfav\n  SET_1\told\n", h.out.String())
}

func TestSettings_ShowAndChange(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("settings"))
	assert.Contains(t, h.out.String(), "view-mode: 1\n")
	assert.Contains(t, h.out.String(), "column1: artist\n")

	require.NoError(t, h.run("settings", "-view-mode", "0", "-column1", "group"))
	require.NoError(t, h.run("settings"))
	assert.Contains(t, h.out.String(), "view-mode: 0\n")
	assert.Contains(t, h.out.String(), "column1: group\n")
	assert.Contains(t, h.out.String(), "column2: series\n")
}

func TestSetProgressThenMigrate(t *testing.T) {
	h := newHarness(t)
	h.route(http.MethodGet, "/api/archives/abc/metadata", `{"arcid": "abc", "progress": 3}`)
	h.route(http.MethodPut, "/api/archives/abc/progress/10", `{"success": 1}`)

	assert.ErrorIs(t, h.run("set-progress", "abc", "zero"), ErrUsage)
	require.NoError(t, h.run("set-progress", "abc", "10"))
	require.NoError(t, h.run("migrate-progress"))
	assert.Contains(t, h.out.String(), "pushed: 1\n")

	var pushed bool
	for _, r := range h.requests() {
		if r.method == http.MethodPut && r.path == "/api/archives/abc/progress/10" {
			pushed = r.query == "force=1"
		}
	}
	assert.True(t, pushed)
}

func TestCheckVersion_UsesServerVersion(t *testing.T) {
	h := newHarness(t)
	h.route(http.MethodGet, "/api/info", `{"name": "LANraragi", "version": "0.8.1"}`)
	h.route(http.MethodGet, "/latest", `{"tag_name": "v.0.9.0", "html_url": "https://example.org/v.0.9.0"}`)

	require.NoError(t, h.run("check-version"))
	assert.Equal(t, "v.0.9.0 is available: https://example.org/v.0.9.0\n", h.out.String())

	require.NoError(t, h.run("check-version", "-current", "0.9.0"))
	assert.Equal(t, "0.9.0 is up to date\n", h.out.String())
}

func TestJob_PrintsResult(t *testing.T) {
	h := newHarness(t)
	h.route(http.MethodGet, "/api/minion/42", `{"id": 42, "state": "finished", "result": {"success": 1}}`)

	require.NoError(t, h.run("job", "42"))
	assert.Equal(t, "state: finished\nresult: {\"success\": 1}\n", h.out.String())
}

func TestJob_Failed(t *testing.T) {
	h := newHarness(t)
	h.route(http.MethodGet, "/api/minion/7", `{"id": 7, "state": "failed", "result": "disk full"}`)

	err := h.run("job", "7")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestParseInterspersed(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	n := fs.Int("n", 0, "")
	v := fs.Bool("v", false, "")

	positional, err := parseInterspersed(fs, []string{"a", "-n", "3", "b", "-v"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, positional)
	assert.Equal(t, 3, *n)
	assert.True(t, *v)

	_, err = parseInterspersed(fs, []string{"-unknown"})
	assert.ErrorIs(t, err, ErrUsage)
}
