package test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/RezaEskandarii/lrrctl/client"
	"github.com/RezaEskandarii/lrrctl/internal/notify"
	"github.com/stretchr/testify/require"
)

// stubRequest is one request seen by the stub server.
type stubRequest struct {
	Method string
	Path   string
	Query  string
	Body   string
	Header http.Header
}

// stubServer answers "METHOD /path" routes with canned JSON and records every request.
type stubServer struct {
	*httptest.Server
	mu       sync.Mutex
	routes   map[string]http.HandlerFunc
	requests []stubRequest
}

func newStubServer(t *testing.T) *stubServer {
	t.Helper()
	s := &stubServer{routes: make(map[string]http.HandlerFunc)}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		s.mu.Lock()
		s.requests = append(s.requests, stubRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Body:   string(body),
			Header: r.Header.Clone(),
		})
		h, ok := s.routes[r.Method+" "+r.URL.Path]
		s.mu.Unlock()

		if !ok {
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *stubServer) handle(method, path string, h http.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[method+" "+path] = h
}

func (s *stubServer) json(method, path, body string) {
	s.handle(method, path, jsonHandler(http.StatusOK, body))
}

// sequence answers successive requests with the given bodies, repeating the last one.
func (s *stubServer) sequence(method, path string, bodies ...string) {
	var mu sync.Mutex
	i := 0
	s.handle(method, path, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		body := bodies[i]
		if i < len(bodies)-1 {
			i++
		}
		mu.Unlock()
		jsonHandler(http.StatusOK, body)(w, r)
	})
}

func (s *stubServer) Requests() []stubRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]stubRequest(nil), s.requests...)
}

func (s *stubServer) count(method, path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

func jsonHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

// recordingSleeper returns immediately and records each requested delay.
type recordingSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.delays = append(s.delays, d)
	s.mu.Unlock()
	return ctx.Err()
}

func (s *recordingSleeper) Delays() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.delays...)
}

type fixture struct {
	server   *stubServer
	recorder *notify.Recorder
	api      *client.APIClient
	sleeper  *recordingSleeper
	poller   *client.JobPoller
}

func newFixture(t *testing.T, opts ...client.ClientOption) *fixture {
	t.Helper()
	server := newStubServer(t)
	recorder := notify.NewRecorder()

	api, err := client.NewAPIClient(server.URL, recorder, opts...)
	require.NoError(t, err)

	sleeper := &recordingSleeper{}
	poller := client.NewJobPoller(api, client.WithSleeper(sleeper.Sleep))

	return &fixture{
		server:   server,
		recorder: recorder,
		api:      api,
		sleeper:  sleeper,
		poller:   poller,
	}
}

func (f *fixture) console(opts ...client.ConsoleOption) *client.Console {
	return client.NewConsole(f.api, f.poller, opts...)
}
