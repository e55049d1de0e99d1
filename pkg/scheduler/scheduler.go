// Package scheduler runs tools on cron schedules.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/harun/barrot/pkg/toolexecutor"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// ErrJobNotFound is returned for an unknown job id
var ErrJobNotFound = errors.New("job not found")

// Runner executes a tool addressed by name or id
type Runner interface {
	ExecuteByName(ctx context.Context, nameOrID string, params map[string]any, useCache bool) toolexecutor.Result
}

// JobSpec describes a job to add
type JobSpec struct {
	Name       string
	Schedule   string
	Tool       string
	Parameters map[string]any
	UseCache   bool
}

// Job is a scheduled tool run and the outcome of its last trigger
type Job struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Schedule   string         `json:"schedule"`
	Tool       string         `json:"tool"`
	Parameters map[string]any `json:"parameters,omitempty"`
	UseCache   bool           `json:"use_cache"`
	Runs       int            `json:"runs"`
	LastRun    *time.Time     `json:"last_run,omitempty"`
	LastError  string         `json:"last_error,omitempty"`
	NextRun    *time.Time     `json:"next_run,omitempty"`

	entryID cron.EntryID
}

// parser accepts standard 5-field expressions and descriptors such as @hourly
var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Observer is called after every run with the job state and the result
type Observer func(job Job, result toolexecutor.Result)

// Option configures a Scheduler
type Option func(*Scheduler)

// WithObserver registers fn to be called after each run
func WithObserver(fn Observer) Option {
	return func(s *Scheduler) {
		s.observers = append(s.observers, fn)
	}
}

// Scheduler triggers jobs through a Runner
type Scheduler struct {
	runner    Runner
	logger    zerolog.Logger
	cron      *cron.Cron
	observers []Observer

	jobs map[string]*Job
	mu   sync.RWMutex
}

// New creates a scheduler. Nothing fires until Start.
func New(runner Runner, logger zerolog.Logger, opts ...Option) *Scheduler {
	l := logger.With().Str("component", "scheduler").Logger()
	cl := cron.PrintfLogger(&l)

	s := &Scheduler{
		runner: runner,
		logger: l,
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		jobs: make(map[string]*Job),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add validates and schedules a job
func (s *Scheduler) Add(spec JobSpec) (*Job, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("job name is required")
	}
	if spec.Tool == "" {
		return nil, fmt.Errorf("job %s: tool is required", spec.Name)
	}
	schedule, err := parser.Parse(spec.Schedule)
	if err != nil {
		return nil, fmt.Errorf("job %s: invalid cron expression: %w", spec.Name, err)
	}

	job := &Job{
		ID:         uuid.New().String(),
		Name:       spec.Name,
		Schedule:   spec.Schedule,
		Tool:       spec.Tool,
		Parameters: spec.Parameters,
		UseCache:   spec.UseCache,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := job.ID
	job.entryID = s.cron.Schedule(schedule, cron.FuncJob(func() {
		s.trigger(context.Background(), id)
	}))
	s.jobs[id] = job

	s.logger.Info().
		Str("job_id", id).
		Str("name", job.Name).
		Str("schedule", job.Schedule).
		Str("tool", job.Tool).
		Msg("Job scheduled")

	return s.snapshot(job), nil
}

// Remove unschedules a job
func (s *Scheduler) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	s.cron.Remove(job.entryID)
	delete(s.jobs, id)

	s.logger.Info().Str("job_id", id).Str("name", job.Name).Msg("Job removed")
	return nil
}

// Jobs returns every job ordered by name
func (s *Scheduler) Jobs() []*Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]*Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, s.snapshot(job))
	}
	sort.Slice(jobs, func(i, j int) bool {
		if jobs[i].Name != jobs[j].Name {
			return jobs[i].Name < jobs[j].Name
		}
		return jobs[i].ID < jobs[j].ID
	})
	return jobs
}

// Start begins firing jobs in the background
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info().Int("job_count", len(s.Jobs())).Msg("Scheduler started")
}

// Stop prevents new triggers and waits for running ones or ctx
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info().Msg("Scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunNow triggers a job immediately and waits for the result
func (s *Scheduler) RunNow(ctx context.Context, id string) (toolexecutor.Result, error) {
	s.mu.RLock()
	_, ok := s.jobs[id]
	s.mu.RUnlock()
	if !ok {
		return toolexecutor.Result{}, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	return s.trigger(ctx, id), nil
}

func (s *Scheduler) trigger(ctx context.Context, id string) toolexecutor.Result {
	s.mu.RLock()
	job, ok := s.jobs[id]
	if !ok {
		s.mu.RUnlock()
		return toolexecutor.Result{}
	}
	tool, params, useCache := job.Tool, job.Parameters, job.UseCache
	s.mu.RUnlock()

	start := time.Now()
	result := s.runner.ExecuteByName(ctx, tool, params, useCache)

	s.mu.Lock()
	var state Job
	if job, ok := s.jobs[id]; ok {
		job.Runs++
		job.LastRun = &start
		job.LastError = result.Error
		state = *s.snapshot(job)
	}
	s.mu.Unlock()

	for _, observe := range s.observers {
		observe(state, result)
	}

	var event *zerolog.Event
	if result.Success {
		event = s.logger.Info()
	} else {
		event = s.logger.Warn().Str("error", result.Error)
	}
	event.
		Str("job_id", id).
		Str("tool", tool).
		Bool("cached", result.Cached).
		Dur("duration", time.Since(start)).
		Msg("Job run finished")

	return result
}

// snapshot copies a job and fills NextRun. Callers hold s.mu.
func (s *Scheduler) snapshot(job *Job) *Job {
	cp := *job
	if next := s.cron.Entry(job.entryID).Next; !next.IsZero() {
		cp.NextRun = &next
	}
	if job.LastRun != nil {
		last := *job.LastRun
		cp.LastRun = &last
	}
	return &cp
}
