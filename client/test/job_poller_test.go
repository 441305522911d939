package test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/RezaEskandarii/lrrctl/client"
	"github.com/RezaEskandarii/lrrctl/custom_errors"
	"github.com/RezaEskandarii/lrrctl/internal/state"
	"github.com/RezaEskandarii/lrrctl/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoll_RunningThenFinished(t *testing.T) {
	const n = 4
	f := newFixture(t)
	bodies := make([]string, 0, n+1)
	for i := 0; i < n; i++ {
		bodies = append(bodies, `{"id": 7, "state": "running"}`)
	}
	bodies = append(bodies, `{"id": 7, "state": "finished", "result": {"errors": []}}`)
	f.server.sequence(http.MethodGet, "/api/minion/7", bodies...)

	var finished []types.JobStatus
	failed := 0
	f.poller.Poll(context.Background(), "7",
		func(s types.JobStatus) { finished = append(finished, s) },
		func(error) { failed++ })

	assert.Equal(t, n+1, f.server.count(http.MethodGet, "/api/minion/7"))
	require.Len(t, finished, 1)
	assert.Equal(t, state.StateFinished, finished[0].State)
	assert.Equal(t, types.JobID("7"), finished[0].ID)
	assert.Zero(t, failed)

	delays := f.sleeper.Delays()
	require.Len(t, delays, n)
	for _, d := range delays {
		assert.Equal(t, time.Second, d)
	}
	assert.Zero(t, f.recorder.Len())
}

func TestPoll_FailedJobDoesNotRetry(t *testing.T) {
	f := newFixture(t)
	f.server.json(http.MethodGet, "/api/minion/9", `{"id": 9, "state": "failed", "result": "disk full"}`)

	var failures []error
	finished := 0
	f.poller.Poll(context.Background(), "9",
		func(types.JobStatus) { finished++ },
		func(err error) { failures = append(failures, err) })

	assert.Equal(t, 1, f.server.count(http.MethodGet, "/api/minion/9"))
	assert.Zero(t, finished)
	require.Len(t, failures, 1)

	var jobErr *custom_errors.JobError
	require.True(t, errors.As(failures[0], &jobErr))
	assert.Equal(t, "disk full", jobErr.Detail)

	toasts := f.recorder.Toasts()
	require.Len(t, toasts, 1)
	assert.Equal(t, client.JobStatusHeading, toasts[0].Heading)
	assert.Equal(t, "disk full", toasts[0].Body)
	assert.Empty(t, f.sleeper.Delays())
}

func TestPoll_StructuredFailureResult(t *testing.T) {
	f := newFixture(t)
	f.server.json(http.MethodGet, "/api/minion/3", `{"state": "failed", "result": {"code": 5}}`)

	f.poller.Poll(context.Background(), "3", nil, nil)
	require.Equal(t, 1, f.recorder.Len())
	assert.JSONEq(t, `{"code": 5}`, f.recorder.Toasts()[0].Body)
}

func TestPoll_ErrorFieldIsHardFailure(t *testing.T) {
	f := newFixture(t)
	f.server.json(http.MethodGet, "/api/minion/5", `{"error": "Job not found"}`)

	failed := 0
	f.poller.Poll(context.Background(), "5", nil, func(error) { failed++ })

	assert.Equal(t, 1, failed)
	assert.Equal(t, 1, f.server.count(http.MethodGet, "/api/minion/5"))
	assert.Equal(t, "Job not found", f.recorder.Toasts()[0].Body)
}

func TestPoll_FalsySuccessIsHardFailure(t *testing.T) {
	f := newFixture(t)
	f.server.json(http.MethodGet, "/api/minion/6", `{"success": 0}`)

	var failure error
	f.poller.Poll(context.Background(), "6", nil, func(err error) { failure = err })

	var appErr *custom_errors.ApplicationError
	require.ErrorAs(t, failure, &appErr)
	assert.Equal(t, 1, f.server.count(http.MethodGet, "/api/minion/6"))
	toasts := f.recorder.Toasts()
	require.Len(t, toasts, 1)
	assert.Equal(t, "job status query was rejected", toasts[0].Body)
}

func TestPoll_TransportFailureIsHardFailure(t *testing.T) {
	f := newFixture(t)
	f.server.sequence(http.MethodGet, "/api/minion/1", `{"state": "running"}`, `not json`)

	var failure error
	f.poller.Poll(context.Background(), "1", nil, func(err error) { failure = err })

	assert.ErrorIs(t, failure, custom_errors.ErrInvalidResponse)
	assert.Equal(t, 2, f.server.count(http.MethodGet, "/api/minion/1"))
	toasts := f.recorder.Toasts()
	require.Len(t, toasts, 1)
	assert.Equal(t, client.JobStatusHeading, toasts[0].Heading)
}

func TestPoll_MinionStateNamesAreNonTerminal(t *testing.T) {
	f := newFixture(t)
	f.server.sequence(http.MethodGet, "/api/minion/2",
		`{"state": "inactive"}`, `{"state": "active"}`, `{"state": "queued"}`, `{"state": "finished"}`)

	status, err := f.poller.Wait(context.Background(), "2")
	require.NoError(t, err)
	assert.Equal(t, state.StateFinished, status.State)
	assert.Len(t, f.sleeper.Delays(), 3)
}

func TestPoll_PanicInOnFinishedRoutesToFailure(t *testing.T) {
	f := newFixture(t)
	f.server.json(http.MethodGet, "/api/minion/4", `{"state": "finished"}`)

	var failure error
	f.poller.Poll(context.Background(), "4",
		func(types.JobStatus) { panic("bad result") },
		func(err error) { failure = err })

	require.Error(t, failure)
	assert.Equal(t, "bad result", failure.Error())
	assert.Equal(t, 1, f.recorder.Len())
}

func TestPoll_CancellationAbandonsSilently(t *testing.T) {
	f := newFixture(t)
	f.server.json(http.MethodGet, "/api/minion/8", `{"state": "running"}`)

	ctx, cancel := context.WithCancel(context.Background())
	poller := client.NewJobPoller(f.api, client.WithSleeper(func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}))

	called := false
	done := poller.Go(ctx, "8",
		func(types.JobStatus) { called = true },
		func(error) { called = true })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop after cancellation")
	}
	assert.False(t, called)
	assert.Zero(t, f.recorder.Len())
	assert.Equal(t, 1, f.server.count(http.MethodGet, "/api/minion/8"))
}

func TestPoll_RealTimerInterval(t *testing.T) {
	f := newFixture(t)
	f.server.sequence(http.MethodGet, "/api/minion/6", `{"state": "running"}`, `{"state": "finished"}`)

	poller := client.NewJobPoller(f.api, client.WithPollInterval(20*time.Millisecond))
	start := time.Now()
	status, err := poller.Wait(context.Background(), "6")
	require.NoError(t, err)
	assert.Equal(t, state.StateFinished, status.State)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestPoll_EscapesJobID(t *testing.T) {
	f := newFixture(t)
	f.server.json(http.MethodGet, "/api/minion/a b", `{"state": "finished"}`)

	_, err := f.poller.Wait(context.Background(), "a b")
	require.NoError(t, err)
	reqs := f.server.Requests()
	require.Len(t, reqs, 1)
	assert.True(t, strings.HasSuffix(reqs[0].Path, "a b"))
}
