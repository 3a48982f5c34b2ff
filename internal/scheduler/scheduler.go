// Package scheduler runs named, interval-based background jobs: a
// shutdown-signal-gated loop with sleep-and-retry bodies, generalized
// from one job's body to an arbitrary named-job plan.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chainvault/ingestor/internal/cache"
	"github.com/chainvault/ingestor/internal/log"
	"github.com/chainvault/ingestor/internal/metrics"
	"github.com/chainvault/ingestor/internal/shutdown"
	"github.com/chainvault/ingestor/types"
)

var logger = log.NewModuleLogger(log.ModuleScheduler)

// Job is one named unit of periodic work.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Plan is the validated, immutable set of jobs a Runner executes.
type Plan struct {
	jobs []Job
}

// PlanBuilder enumerates jobs and validates the plan before any job is
// spawned.
type PlanBuilder struct {
	jobs []Job
	seen map[string]bool
	errs []string
}

func NewPlanBuilder() *PlanBuilder {
	return &PlanBuilder{seen: make(map[string]bool)}
}

func (b *PlanBuilder) AddJob(name string, interval time.Duration, run func(ctx context.Context) error) *PlanBuilder {
	if b.seen[name] {
		b.errs = append(b.errs, fmt.Sprintf("duplicate job name %q", name))
		return b
	}
	if interval <= 0 {
		b.errs = append(b.errs, fmt.Sprintf("job %q: interval must be positive", name))
		return b
	}
	if run == nil {
		b.errs = append(b.errs, fmt.Sprintf("job %q: run function is required", name))
		return b
	}
	b.seen[name] = true
	b.jobs = append(b.jobs, Job{Name: name, Interval: interval, Run: run})
	return b
}

// Build fails fast if any AddJob call was invalid; no job is ever
// spawned off a partially-invalid plan.
func (b *PlanBuilder) Build() (Plan, error) {
	if len(b.errs) > 0 {
		return Plan{}, fmt.Errorf("invalid job plan: %v", b.errs)
	}
	if len(b.jobs) == 0 {
		return Plan{}, fmt.Errorf("invalid job plan: no jobs")
	}
	return Plan{jobs: b.jobs}, nil
}

// JobSchedule decides whether a named job should run now, backed by the
// shared cache so multiple replicas of the same plan serialize
// execution softly across replicas.
type JobSchedule struct {
	cache cache.Cache
}

func NewJobSchedule(c cache.Cache) *JobSchedule {
	return &JobSchedule{cache: c}
}

// Decision is the result of JobSchedule.Evaluate.
type Decision struct {
	ShouldRun bool
	Wait      time.Duration
}

func scheduleKey(name string) string { return "schedule:" + name }

// Evaluate implements the cross-replica at-most-once-per-interval check.
// It is a soft guarantee: the read-then-write here is not atomic, so a
// race between replicas can yield a duplicate Run; acceptable because
// every job is idempotent by design.
func (s *JobSchedule) Evaluate(ctx context.Context, name string, interval time.Duration, now time.Time) (Decision, error) {
	raw, ok, err := s.cache.Get(ctx, scheduleKey(name))
	if err != nil {
		return Decision{}, err
	}
	if !ok {
		return Decision{ShouldRun: true}, nil
	}
	last, err := time.Parse(time.RFC3339Nano, string(raw))
	if err != nil {
		return Decision{ShouldRun: true}, nil
	}
	elapsed := now.Sub(last)
	if elapsed >= interval {
		return Decision{ShouldRun: true}, nil
	}
	return Decision{Wait: interval - elapsed}, nil
}

// MarkSuccess records now as the job's last successful run.
func (s *JobSchedule) MarkSuccess(ctx context.Context, name string, now time.Time) error {
	return s.cache.Set(ctx, scheduleKey(name), []byte(now.Format(time.RFC3339Nano)), 0)
}

// JobStatusReporter records job outcomes into the shared cache as
// types.JobStatus, the cached-not-persisted status record.
type JobStatusReporter struct {
	cache cache.Cache
}

func NewJobStatusReporter(c cache.Cache) *JobStatusReporter {
	return &JobStatusReporter{cache: c}
}

func jobStatusKey(name string) string { return cache.JobStatusKey("ingestor", name) }

func (r *JobStatusReporter) load(ctx context.Context, name string) types.JobStatus {
	var status types.JobStatus
	_, _ = cache.GetJSON(ctx, r.cache, jobStatusKey(name), &status)
	return status
}

// ReportSuccess records a successful run.
func (r *JobStatusReporter) ReportSuccess(ctx context.Context, name string, interval, duration time.Duration) error {
	status := r.load(ctx, name)
	now := time.Now()
	status.IntervalSec = int64(interval.Seconds())
	status.LastRunDurationMs = duration.Milliseconds()
	status.LastSuccessUnix = now.Unix()
	status.TotalProcessed++
	return cache.SetJSON(ctx, r.cache, jobStatusKey(name), status, statusTTL(interval))
}

// ReportError records a failed run with a stable, truncated error
// string so error-label histograms converge.
func (r *JobStatusReporter) ReportError(ctx context.Context, name string, interval time.Duration, message string) error {
	message = truncate(message, 200)
	status := r.load(ctx, name)
	now := time.Now()
	status.LastError = message
	status.LastErrorAtUnix = now.Unix()
	status.TotalErrors++
	status.Errors = accumulateError(status.Errors, message, now)
	return cache.SetJSON(ctx, r.cache, jobStatusKey(name), status, statusTTL(interval))
}

// statusTTL keeps the cached record alive well past any sensible
// interval so a slow job doesn't have its status evicted mid-run.
func statusTTL(interval time.Duration) time.Duration {
	return interval*10 + time.Hour
}

func accumulateError(errs []types.ErrorSample, message string, at time.Time) []types.ErrorSample {
	for i := range errs {
		if errs[i].Message == message {
			errs[i].Count++
			errs[i].LastSeen = at
			return errs
		}
	}
	return append(errs, types.ErrorSample{Message: message, Count: 1, LastSeen: at})
}

// Runner drives a Plan's jobs, one goroutine per job, honoring a
// shutdown.Signal the way every long-lived loop in this process waits
// for its goroutines to finish after the signal fires.
type Runner struct {
	plan     Plan
	schedule *JobSchedule
	reporter *JobStatusReporter
	shutdown *shutdown.Signal
	grace    time.Duration
}

func NewRunner(plan Plan, schedule *JobSchedule, reporter *JobStatusReporter, sig *shutdown.Signal, grace time.Duration) *Runner {
	if grace <= 0 {
		grace = 30 * time.Second
	}
	return &Runner{plan: plan, schedule: schedule, reporter: reporter, shutdown: sig, grace: grace}
}

// Run starts every job and blocks until the shutdown signal fires and
// every job loop has drained (or the grace deadline elapses), returning
// the names of jobs still running at that point.
func (r *Runner) Run(ctx context.Context) []string {
	var wg sync.WaitGroup
	jobDone := make(map[string]chan struct{}, len(r.plan.jobs))

	for _, job := range r.plan.jobs {
		job := job
		finished := make(chan struct{})
		jobDone[job.Name] = finished
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer close(finished)
			r.runJobLoop(ctx, job)
		}()
	}

	allDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(allDone)
	}()

	select {
	case <-allDone:
		return nil
	case <-r.shutdown.Done():
	}

	if shutdown.WaitGrace(allDone, r.grace) {
		return nil
	}
	var names []string
	for name, finished := range jobDone {
		select {
		case <-finished:
		default:
			names = append(names, name)
		}
	}
	return names
}

func (r *Runner) runJobLoop(ctx context.Context, job Job) {
	jobMetrics := metrics.NewJob(job.Name)
	jobMetrics.SetInterval(job.Interval)

	for {
		if r.shutdown.Fired() {
			return
		}

		decision, err := r.schedule.Evaluate(ctx, job.Name, job.Interval, time.Now())
		if err != nil {
			logger.Warn("schedule evaluation failed, proceeding as Run", "job", job.Name, "err", err)
			decision = Decision{ShouldRun: true}
		}
		if !decision.ShouldRun {
			if !sleepOrShutdown(ctx, r.shutdown, decision.Wait) {
				return
			}
			continue
		}

		start := time.Now()
		runErr := job.Run(ctx)
		duration := time.Since(start)
		jobMetrics.SetLastDuration(duration)

		if runErr != nil {
			msg := truncate(runErr.Error(), 200)
			jobMetrics.SetLastError(msg)
			if err := r.reporter.ReportError(ctx, job.Name, job.Interval, msg); err != nil {
				logger.Warn("report error failed", "job", job.Name, "err", err)
			}
			logger.Error("job failed", "job", job.Name, "err", runErr)
		} else {
			if err := r.schedule.MarkSuccess(ctx, job.Name, time.Now()); err != nil {
				logger.Warn("mark success failed", "job", job.Name, "err", err)
			}
			if err := r.reporter.ReportSuccess(ctx, job.Name, job.Interval, duration); err != nil {
				logger.Warn("report success failed", "job", job.Name, "err", err)
			}
			jobMetrics.SetLastSuccess(time.Now())
		}

		if !sleepOrShutdown(ctx, r.shutdown, job.Interval) {
			return
		}
	}
}

func sleepOrShutdown(ctx context.Context, sig *shutdown.Signal, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-sig.Done():
		return false
	case <-ctx.Done():
		return false
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
