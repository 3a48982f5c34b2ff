// Package metrics publishes the gauges and counters this repository
// names, backed by rcrowley/go-metrics: a package-level metrics.Registry
// plus metrics.GetOrRegisterGauge/Counter keyed by a dotted name.
package metrics

import (
	"sync"
	"time"

	gometrics "github.com/rcrowley/go-metrics"
)

// Registry is the process-wide metrics registry: a single registry
// shared by every gauge and counter this process registers, rather
// than one per component.
var Registry = gometrics.NewRegistry()

func gauge(name string) gometrics.Gauge {
	return gometrics.GetOrRegisterGauge(name, Registry)
}

func counter(name string) gometrics.Counter {
	return gometrics.GetOrRegisterCounter(name, Registry)
}

// Chain publishes the per-chain gauges: current_block,
// latest_block, is_enabled, updated_at, errors_total{error}.
type Chain struct {
	chain string
}

func NewChain(chain string) *Chain {
	return &Chain{chain: chain}
}

func (c *Chain) name(suffix string) string { return "chain." + c.chain + "." + suffix }

func (c *Chain) SetCurrentBlock(n int64) { gauge(c.name("current_block")).Update(n) }
func (c *Chain) SetLatestBlock(n int64)  { gauge(c.name("latest_block")).Update(n) }

func (c *Chain) SetEnabled(enabled bool) {
	v := int64(0)
	if enabled {
		v = 1
	}
	gauge(c.name("is_enabled")).Update(v)
}

func (c *Chain) Touch(at time.Time) { gauge(c.name("updated_at")).Update(at.Unix()) }

func (c *Chain) IncError(label string) {
	counter(c.name("errors_total{" + Sanitize(label) + "}")).Inc(1)
}

// Consumer publishes the per-consumer counters/gauges.
type Consumer struct {
	queue string
}

func NewConsumer(queue string) *Consumer {
	return &Consumer{queue: queue}
}

func (c *Consumer) name(suffix string) string { return "consumer." + c.queue + "." + suffix }

func (c *Consumer) IncProcessed()        { counter(c.name("processed_total")).Inc(1) }
func (c *Consumer) SetLastSuccess(t time.Time) { gauge(c.name("last_success_at")).Update(t.Unix()) }

// ObserveDuration folds a new sample into a crude running-average gauge
// under the "avg_duration_ms" name, without pulling in a separate
// histogram dependency for what a running average already serves.
func (c *Consumer) ObserveDuration(d time.Duration) {
	g := gauge(c.name("avg_duration_ms"))
	cnt := counter(c.name("avg_duration_ms.samples"))
	prev := g.Value()
	n := cnt.Count()
	cnt.Inc(1)
	next := (prev*n + d.Milliseconds()) / (n + 1)
	g.Update(next)
}

func (c *Consumer) IncError(label string) {
	counter(c.name("errors_total{" + Sanitize(label) + "}")).Inc(1)
}

// Job publishes the per-job gauges.
type Job struct {
	name string
}

func NewJob(name string) *Job {
	return &Job{name: name}
}

func (j *Job) gname(suffix string) string { return "job." + j.name + "." + suffix }

func (j *Job) SetLastSuccess(t time.Time)      { gauge(j.gname("last_success_at")).Update(t.Unix()) }
func (j *Job) SetLastDuration(d time.Duration) { gauge(j.gname("last_duration_ms")).Update(d.Milliseconds()) }
func (j *Job) SetInterval(d time.Duration)     { gauge(j.gname("interval")).Update(d.Milliseconds()) }

func (j *Job) SetLastError(msg string) {
	s := Sanitize(msg)
	registerLastError(j.gname("last_error"), s)
}

var (
	lastErrorsMu sync.Mutex
	lastErrors   = map[string]string{}
)

func registerLastError(name, msg string) {
	lastErrorsMu.Lock()
	defer lastErrorsMu.Unlock()
	lastErrors[name] = msg
}

// LastError returns the most recently recorded sanitized error string
// for a job.
func LastError(jobName string) string {
	lastErrorsMu.Lock()
	defer lastErrorsMu.Unlock()
	return lastErrors["job."+jobName+".last_error"]
}
