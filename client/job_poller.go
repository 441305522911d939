package client

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/RezaEskandarii/lrrctl/custom_errors"
	"github.com/RezaEskandarii/lrrctl/internal/state"
	"github.com/RezaEskandarii/lrrctl/types"
	"go.uber.org/zap"
)

// JobStatusHeading is the heading of every toast raised while polling a job.
const JobStatusHeading = "Error while checking Minion job status"

// Sleeper waits d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// TimerSleeper is the default Sleeper.
func TimerSleeper(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// JobPoller follows a Minion job until it finishes or fails. Queries are strictly
// sequential and separated by a fixed interval; there is no retry limit.
type JobPoller struct {
	api      *APIClient
	interval time.Duration
	sleep    Sleeper
}

type PollerOption func(*JobPoller)

func WithPollInterval(d time.Duration) PollerOption {
	return func(p *JobPoller) {
		if d > 0 {
			p.interval = d
		}
	}
}

func WithSleeper(s Sleeper) PollerOption {
	return func(p *JobPoller) {
		if s != nil {
			p.sleep = s
		}
	}
}

func NewJobPoller(api *APIClient, opts ...PollerOption) *JobPoller {
	p := &JobPoller{
		api:      api,
		interval: time.Second,
		sleep:    TimerSleeper,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Wait queries the job until it reaches a terminal state. A failed job yields a
// *custom_errors.JobError; a query that cannot be read, or whose body carries an
// error field or a falsy success flag, stops polling at once. Cancelling ctx returns ctx.Err().
func (p *JobPoller) Wait(ctx context.Context, jobID types.JobID) (types.JobStatus, error) {
	endpoint := "/api/minion/" + url.PathEscape(jobID.String())
	log := p.api.Logger().With(zap.String("job", jobID.String()))

	var last state.JobState
	for attempt := 1; ; attempt++ {
		result, err := p.api.Fetch(ctx, Request{Endpoint: endpoint, Method: http.MethodGet})
		if err != nil {
			if ctx.Err() != nil {
				return types.JobStatus{}, ctx.Err()
			}
			return types.JobStatus{}, err
		}

		if msg := result.String("error"); msg != "" {
			return types.JobStatus{}, &custom_errors.ApplicationError{Message: msg}
		}
		if !result.Succeeded() {
			msg := result.ErrorMessage()
			if msg == "" {
				msg = "job status query was rejected"
			}
			return types.JobStatus{}, &custom_errors.ApplicationError{Message: msg}
		}

		var status types.JobStatus
		if err := result.Decode(&status); err != nil {
			log.Warn("failed to decode job status", zap.Error(err))
			return types.JobStatus{}, custom_errors.ErrInvalidResponse
		}

		if last != "" && !state.IsValidTransition(last, status.State) {
			log.Warn("job state went backwards", zap.String("from", last.String()), zap.String("to", status.State.String()))
		}
		last = status.State

		switch status.State {
		case state.StateFinished:
			log.Debug("job finished", zap.Int("queries", attempt))
			return status, nil
		case state.StateFailed:
			return status, &custom_errors.JobError{JobID: jobID.String(), Detail: status.ResultText()}
		}

		log.Debug("job not done yet", zap.String("state", status.State.String()), zap.Int("queries", attempt))
		if err := p.sleep(ctx, p.interval); err != nil {
			return status, err
		}
	}
}

// Poll waits for the job and dispatches to exactly one continuation. Failures raise
// one error toast before onFailed runs; a panic in onFinished is handled the same
// way. A cancelled ctx abandons the job silently. Either continuation may be nil.
func (p *JobPoller) Poll(ctx context.Context, jobID types.JobID, onFinished func(types.JobStatus), onFailed func(error)) {
	status, err := p.Wait(ctx, jobID)
	if err != nil && ctx.Err() != nil {
		p.api.Logger().Debug("job polling abandoned", zap.String("job", jobID.String()))
		return
	}

	if err == nil && onFinished != nil {
		err = runFinished(onFinished, status)
	}
	if err == nil {
		return
	}

	p.api.notify(ctx, types.ErrorToast(JobStatusHeading, err.Error()))
	if onFailed != nil {
		onFailed(err)
	}
}

// Go runs Poll in its own goroutine. The returned channel is closed once a
// continuation has run or polling was abandoned.
func (p *JobPoller) Go(ctx context.Context, jobID types.JobID, onFinished func(types.JobStatus), onFailed func(error)) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Poll(ctx, jobID, onFinished, onFailed)
	}()
	return done
}

func runFinished(fn func(types.JobStatus), status types.JobStatus) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = custom_errors.FromPanic(r)
		}
	}()
	fn(status)
	return nil
}
