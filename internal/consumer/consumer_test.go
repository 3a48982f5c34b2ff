package consumer

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainvault/ingestor/internal/broker"
	"github.com/chainvault/ingestor/internal/cache"
	"github.com/chainvault/ingestor/internal/errs"
)

type testMsg struct {
	Id  string
	Bad bool
}

type fakeConsumer struct {
	processed []string
	failWith  error
}

func (f *fakeConsumer) ShouldProcess(_ context.Context, msg testMsg) (bool, error) {
	return !msg.Bad, nil
}

func (f *fakeConsumer) Process(_ context.Context, msg testMsg) (struct{}, error) {
	if f.failWith != nil {
		return struct{}{}, f.failWith
	}
	f.processed = append(f.processed, msg.Id)
	return struct{}{}, nil
}

func publish(t *testing.T, b *broker.MemBroker, queue broker.QueueName, msg testMsg) {
	t.Helper()
	body, err := json.Marshal(msg)
	require.NoError(t, err)
	require.NoError(t, b.Publish(context.Background(), queue, body))
}

func TestRunnerProcessesAndAcks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	b := broker.NewMemBroker()
	c := cache.NewMemCache()
	fc := &fakeConsumer{}
	r := NewRunner[testMsg, struct{}](broker.QueueFetchAssets, b, c, fc, func(m testMsg) string { return m.Id }, time.Minute, 1)

	publish(t, b, broker.QueueFetchAssets, testMsg{Id: "a"})

	done := make(chan struct{})
	go func() { r.Run(ctx); close(done) }()

	require.Eventually(t, func() bool { return len(fc.processed) == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, []string{"a"}, fc.processed)
	assert.Equal(t, 1, b.Acked)

	cancel()
	<-done
}

func TestRunnerSkipsWhenShouldProcessFalse(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	b := broker.NewMemBroker()
	c := cache.NewMemCache()
	fc := &fakeConsumer{}
	r := NewRunner[testMsg, struct{}](broker.QueueFetchAssets, b, c, fc, nil, 0, 1)

	publish(t, b, broker.QueueFetchAssets, testMsg{Id: "skip", Bad: true})

	done := make(chan struct{})
	go func() { r.Run(ctx); close(done) }()

	require.Eventually(t, func() bool { return b.Acked == 1 }, time.Second, time.Millisecond)
	assert.Empty(t, fc.processed)

	cancel()
	<-done
}

func TestRunnerDeadLettersProcessFailuresRegardlessOfKind(t *testing.T) {
	for _, failWith := range []error{errs.Transient(assert.AnError), errs.DataShape(assert.AnError)} {
		ctx, cancel := context.WithCancel(context.Background())
		b := broker.NewMemBroker()
		c := cache.NewMemCache()
		fc := &fakeConsumer{failWith: failWith}
		r := NewRunner[testMsg, struct{}](broker.QueueFetchAssets, b, c, fc, nil, 0, 1)

		publish(t, b, broker.QueueFetchAssets, testMsg{Id: "x"})

		done := make(chan struct{})
		go func() { r.Run(ctx); close(done) }()

		require.Eventually(t, func() bool { return len(b.DeadLettered) == 1 }, time.Second, time.Millisecond,
			"broker-owned retry policy, not consumer kind, decides requeue behavior")

		cancel()
		<-done
	}
}

func TestRunnerDedupSkipsSecondDelivery(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	b := broker.NewMemBroker()
	c := cache.NewMemCache()
	fc := &fakeConsumer{}
	r := NewRunner[testMsg, struct{}](broker.QueueFetchAssets, b, c, fc, func(m testMsg) string { return cache.DedupKey("test", m.Id) }, time.Minute, 1)

	publish(t, b, broker.QueueFetchAssets, testMsg{Id: "dup"})
	publish(t, b, broker.QueueFetchAssets, testMsg{Id: "dup"})

	done := make(chan struct{})
	go func() { r.Run(ctx); close(done) }()

	require.Eventually(t, func() bool { return b.Acked == 2 }, time.Second, time.Millisecond)
	assert.Equal(t, []string{"dup"}, fc.processed, "second delivery of the same id must not be processed twice")

	cancel()
	<-done
}
