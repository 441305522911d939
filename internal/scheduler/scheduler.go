// Package scheduler runs registered console actions on cron schedules.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/RezaEskandarii/lrrctl/internal/lock"
	"github.com/RezaEskandarii/lrrctl/internal/state"
	"github.com/RezaEskandarii/lrrctl/types/config"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// historySize bounds the number of run records kept in memory.
const historySize = 200

// ErrSkipped marks a run that did not start because another instance held its guard.
var ErrSkipped = errors.New("run skipped: action already running")

// RunRecord is the outcome of one scheduled run.
type RunRecord struct {
	Action  string         `json:"action"`
	State   state.JobState `json:"state"`
	Error   string         `json:"error,omitempty"`
	RanAt   time.Time      `json:"ran_at"`
	NextRun time.Time      `json:"next_run"`
}

type runResult struct {
	action  string
	err     error
	ranAt   time.Time
	nextRun time.Time
}

// Scheduler triggers actions of an ActionHandler on cron specs. Every run holds a
// guard named after its action so two consoles sharing a guard backend never run the
// same action at once.
type Scheduler struct {
	cron     *cron.Cron
	handler  *config.ActionHandler
	guard    lock.RunGuard
	logger   *zap.Logger
	results  chan runResult
	mu       sync.Mutex
	history  []RunRecord
	schedule map[string]cron.Schedule
	entries  map[string]cron.EntryID
	base     context.Context
}

func New(handler *config.ActionHandler, guard lock.RunGuard, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if guard == nil {
		guard = lock.NewMemoryRunGuard()
	}
	return &Scheduler{
		cron:     cron.New(),
		handler:  handler,
		guard:    guard,
		logger:   logger,
		results:  make(chan runResult, 100),
		schedule: make(map[string]cron.Schedule),
		entries:  make(map[string]cron.EntryID),
	}
}

// Add schedules a registered action. Standard five field specs and descriptors
// such as "@every 1h" are accepted.
func (s *Scheduler) Add(action, spec string) error {
	if !s.handler.Exists(action) {
		return fmt.Errorf("action '%s' is not registered", action)
	}
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return fmt.Errorf("invalid cron spec %q for %s: %w", spec, action, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[action]; exists {
		return fmt.Errorf("action '%s' already scheduled", action)
	}

	id := s.cron.Schedule(schedule, cron.FuncJob(func() {
		ctx := s.baseContext()
		res := s.runOnce(ctx, action)
		select {
		case s.results <- res:
		case <-ctx.Done():
			s.record(res)
		}
	}))
	s.entries[action] = id
	s.schedule[action] = schedule
	return nil
}

// AddAll schedules every entry of schedules, stopping at the first error.
func (s *Scheduler) AddAll(schedules map[string]string) error {
	names := make([]string, 0, len(schedules))
	for name := range schedules {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := s.Add(name, schedules[name]); err != nil {
			return err
		}
	}
	return nil
}

// Start runs the scheduler until ctx is done, then waits for running actions.
// Scheduled runs see ctx, so cancelling it also stops the actions in flight.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.base = ctx
	s.mu.Unlock()

	go s.processResults(ctx)
	s.cron.Start()
	s.logger.Info("scheduler started", zap.Int("actions", len(s.entries)))

	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// Trigger runs an action immediately, outside its schedule, and returns its error.
func (s *Scheduler) Trigger(ctx context.Context, action string) error {
	res := s.runOnce(ctx, action)
	s.record(res)
	return res.err
}

func (s *Scheduler) runOnce(ctx context.Context, action string) (res runResult) {
	now := time.Now()
	res = runResult{action: action, ranAt: now, nextRun: s.nextRun(action, now)}
	defer func() {
		if r := recover(); r != nil {
			res.err = fmt.Errorf("panic in action %s: %v", action, r)
		}
	}()

	guardName := "schedule:" + action
	acquired, err := s.guard.TryAcquire(ctx, guardName)
	if err != nil {
		res.err = err
		return res
	}
	if !acquired {
		res.err = ErrSkipped
		return res
	}
	defer func() {
		if rerr := s.guard.Release(context.WithoutCancel(ctx), guardName); rerr != nil {
			s.logger.Warn("failed to release schedule guard", zap.String("action", action), zap.Error(rerr))
		}
	}()

	res.err = s.handler.Execute(ctx, action)
	return res
}

func (s *Scheduler) baseContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.base == nil {
		return context.Background()
	}
	return s.base
}

func (s *Scheduler) nextRun(action string, from time.Time) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if schedule, ok := s.schedule[action]; ok {
		return schedule.Next(from)
	}
	return time.Time{}
}

func (s *Scheduler) processResults(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case res := <-s.results:
			s.record(res)
		}
	}
}

func (s *Scheduler) record(res runResult) {
	record := RunRecord{
		Action:  res.action,
		State:   state.StateFinished,
		RanAt:   res.ranAt,
		NextRun: res.nextRun,
	}
	log := s.logger.With(zap.String("action", res.action))

	switch {
	case errors.Is(res.err, ErrSkipped):
		log.Info("scheduled run skipped")
		record.State = state.StateInactive
		record.Error = res.err.Error()
	case res.err != nil:
		log.Error("scheduled run failed", zap.Error(res.err))
		record.State = state.StateFailed
		record.Error = res.err.Error()
	default:
		log.Info("scheduled run finished", zap.Time("next_run", res.nextRun))
	}

	if !state.IsValidTransition(state.StateRunning, record.State) && record.State != state.StateInactive {
		log.Warn("unexpected run state", zap.String("state", record.State.String()))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, record)
	if len(s.history) > historySize {
		s.history = s.history[len(s.history)-historySize:]
	}
}

// History returns the recorded runs, newest first.
func (s *Scheduler) History() []RunRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RunRecord, len(s.history))
	for i, r := range s.history {
		out[len(s.history)-1-i] = r
	}
	return out
}

// Scheduled lists the scheduled actions with their next run time.
func (s *Scheduler) Scheduled() map[string]time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]time.Time, len(s.entries))
	for name, id := range s.entries {
		out[name] = s.cron.Entry(id).Next
	}
	return out
}
