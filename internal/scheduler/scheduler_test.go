package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainvault/ingestor/internal/cache"
	"github.com/chainvault/ingestor/internal/shutdown"
)

func TestPlanBuilderRejectsDuplicateNames(t *testing.T) {
	b := NewPlanBuilder()
	b.AddJob("x", time.Second, func(context.Context) error { return nil })
	b.AddJob("x", time.Second, func(context.Context) error { return nil })
	_, err := b.Build()
	assert.Error(t, err)
}

func TestPlanBuilderRejectsNonPositiveInterval(t *testing.T) {
	b := NewPlanBuilder()
	b.AddJob("x", 0, func(context.Context) error { return nil })
	_, err := b.Build()
	assert.Error(t, err)
}

func TestPlanBuilderBuildsValidPlan(t *testing.T) {
	b := NewPlanBuilder()
	b.AddJob("x", time.Second, func(context.Context) error { return nil })
	plan, err := b.Build()
	require.NoError(t, err)
	assert.Len(t, plan.jobs, 1)
}

func TestJobScheduleRunsWhenNeverRun(t *testing.T) {
	c := cache.NewMemCache()
	s := NewJobSchedule(c)
	d, err := s.Evaluate(context.Background(), "job", time.Minute, time.Now())
	require.NoError(t, err)
	assert.True(t, d.ShouldRun)
}

func TestJobScheduleWaitsWithinInterval(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemCache()
	s := NewJobSchedule(c)
	now := time.Now()
	require.NoError(t, s.MarkSuccess(ctx, "job", now))

	d, err := s.Evaluate(ctx, "job", time.Minute, now.Add(10*time.Second))
	require.NoError(t, err)
	assert.False(t, d.ShouldRun)
	assert.InDelta(t, 50*time.Second, d.Wait, float64(time.Second))
}

func TestJobScheduleRunsAfterIntervalElapses(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemCache()
	s := NewJobSchedule(c)
	now := time.Now()
	require.NoError(t, s.MarkSuccess(ctx, "job", now))

	d, err := s.Evaluate(ctx, "job", time.Minute, now.Add(2*time.Minute))
	require.NoError(t, err)
	assert.True(t, d.ShouldRun)
}

func TestRunnerExecutesJobAndReportsSuccess(t *testing.T) {
	c := cache.NewMemCache()
	var calls int32
	b := NewPlanBuilder()
	b.AddJob("tick", 10*time.Millisecond, func(context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	plan, err := b.Build()
	require.NoError(t, err)

	sig := shutdown.New()
	r := NewRunner(plan, NewJobSchedule(c), NewJobStatusReporter(c), sig, time.Second)

	done := make(chan []string)
	go func() { done <- r.Run(context.Background()) }()

	require.Eventually(t, func() bool { return atomic.LoadInt32(&calls) >= 1 }, time.Second, time.Millisecond)
	sig.Fire()
	stillRunning := <-done
	assert.Empty(t, stillRunning)

	var status struct {
		LastSuccessUnix int64
	}
	ok, err := cache.GetJSON(context.Background(), c, jobStatusKey("tick"), &status)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotZero(t, status.LastSuccessUnix)
}

func TestRunnerReportsErrorOnFailure(t *testing.T) {
	c := cache.NewMemCache()
	b := NewPlanBuilder()
	b.AddJob("failing", 10*time.Millisecond, func(context.Context) error {
		return errors.New("boom")
	})
	plan, err := b.Build()
	require.NoError(t, err)

	sig := shutdown.New()
	reporter := NewJobStatusReporter(c)
	r := NewRunner(plan, NewJobSchedule(c), reporter, sig, time.Second)

	done := make(chan []string)
	go func() { done <- r.Run(context.Background()) }()

	var status struct {
		LastError string
	}
	require.Eventually(t, func() bool {
		ok, _ := cache.GetJSON(context.Background(), c, jobStatusKey("failing"), &status)
		return ok && status.LastError == "boom"
	}, time.Second, time.Millisecond)

	sig.Fire()
	<-done
}
