// Package consumer is the generic consumer framework every queue's
// business logic plugs into: a Runner that drives one queue until its
// context is canceled, a per-queue duration and outcome metrics sink, and
// a ChainConsumerRunner that runs several Runners side by side, all
// shaped around one generic message-consumer contract. A failed message
// is not retried.
package consumer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/chainvault/ingestor/internal/broker"
	"github.com/chainvault/ingestor/internal/cache"
	"github.com/chainvault/ingestor/internal/errs"
	"github.com/chainvault/ingestor/internal/log"
	"github.com/chainvault/ingestor/internal/metrics"
)

var logger = log.NewModuleLogger(log.ModuleConsumer)

// MessageConsumer is the per-queue business logic every consumer
// plugs in, generic over its decoded payload type P and result type R.
type MessageConsumer[P any, R any] interface {
	// ShouldProcess lets a consumer skip work it has already seen
	// without decrementing the dedup TTL window.
	ShouldProcess(ctx context.Context, msg P) (bool, error)
	Process(ctx context.Context, msg P) (R, error)
}

// DedupKeyFunc derives the cache.Once key for a decoded message; most
// consumers key on (queue, natural id).
type DedupKeyFunc[P any] func(msg P) string

// Runner drives one queue: decode, dedup, ShouldProcess, Process,
// ack/nack, behind a configurable prefetch. It handles deliveries one at
// a time until the broker closes the delivery channel, which follows
// cancellation of the ctx passed to Run.
type Runner[P any, R any] struct {
	Queue    broker.QueueName
	Broker   broker.Broker
	Cache    cache.Cache
	Consumer MessageConsumer[P, R]
	DedupKey DedupKeyFunc[P]
	DedupTTL time.Duration
	Prefetch int
	metrics  *metrics.Consumer
}

// NewRunner wires the per-queue metrics sink by queue name.
func NewRunner[P any, R any](queue broker.QueueName, b broker.Broker, c cache.Cache, mc MessageConsumer[P, R], dedupKey DedupKeyFunc[P], dedupTTL time.Duration, prefetch int) *Runner[P, R] {
	return &Runner[P, R]{
		Queue:    queue,
		Broker:   b,
		Cache:    c,
		Consumer: mc,
		DedupKey: dedupKey,
		DedupTTL: dedupTTL,
		Prefetch: prefetch,
		metrics:  metrics.NewConsumer(string(queue)),
	}
}

// Run consumes until ctx is canceled, draining in-flight deliveries
// before returning (shutdown.WaitGrace wraps this at the call site).
func (r *Runner[P, R]) Run(ctx context.Context) error {
	prefetch := r.Prefetch
	if prefetch <= 0 {
		prefetch = 1
	}
	deliveries, err := r.Broker.Consume(ctx, r.Queue, prefetch)
	if err != nil {
		return err
	}
	for d := range deliveries {
		r.handleOne(ctx, d)
	}
	return nil
}

func (r *Runner[P, R]) handleOne(ctx context.Context, d broker.Delivery) {
	var msg P
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		logger.Error("malformed message, dead-lettering", "queue", r.Queue, "err", err)
		r.metrics.IncError("decode")
		_ = d.NackDeadLetter()
		return
	}

	if r.DedupKey != nil {
		first, err := cache.Once(ctx, r.Cache, r.DedupKey(msg), r.DedupTTL)
		if err != nil {
			logger.Warn("dedup check failed, processing anyway", "queue", r.Queue, "err", err)
		} else if !first {
			_ = d.Ack()
			return
		}
	}

	should, err := r.Consumer.ShouldProcess(ctx, msg)
	if err != nil {
		r.nackForError(d, err)
		return
	}
	if !should {
		_ = d.Ack()
		return
	}

	start := time.Now()
	_, err = r.Consumer.Process(ctx, msg)
	r.metrics.ObserveDuration(time.Since(start))
	if err != nil {
		r.nackForError(d, err)
		return
	}

	r.metrics.IncProcessed()
	r.metrics.SetLastSuccess(time.Now())
	_ = d.Ack()
}

// nackForError implements the ack/nack protocol: every
// process failure nacks without requeue, regardless of errs.Kind; retry
// with backoff and a max-attempt count is the broker binding's job (the
// queue's dead-letter/retry topology), not the consumer's.
func (r *Runner[P, R]) nackForError(d broker.Delivery, err error) {
	r.metrics.IncError(err.Error())
	logger.Error("process failed, nacking without requeue", "queue", r.Queue, "kind", errs.KindOf(err), "err", err)
	_ = d.NackDeadLetter()
}
