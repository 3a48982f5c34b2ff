package broker

import (
	"context"
	"sync"
)

// MemBroker is an in-process Broker for tests, modeling ack/nack
// observably instead of talking to a real AMQP server: a
// NackDeadLetter is recorded in DeadLettered rather than silently
// dropped, so consumer tests can assert on dead-lettering behavior.
type MemBroker struct {
	mu           sync.Mutex
	queues       map[QueueName][][]byte
	consumed     map[QueueName]chan Delivery
	Acked        int
	Requeued     int
	DeadLettered [][]byte
}

func NewMemBroker() *MemBroker {
	return &MemBroker{
		queues:   make(map[QueueName][][]byte),
		consumed: make(map[QueueName]chan Delivery),
	}
}

func (b *MemBroker) Publish(_ context.Context, queue QueueName, body []byte) error {
	d := b.wrap(body)
	b.mu.Lock()
	ch, hasConsumer := b.consumed[queue]
	b.mu.Unlock()

	if hasConsumer {
		ch <- d
		return nil
	}
	b.mu.Lock()
	b.queues[queue] = append(b.queues[queue], body)
	b.mu.Unlock()
	return nil
}

func (b *MemBroker) wrap(body []byte) Delivery {
	return Delivery{
		Body: body,
		ack: func() error {
			b.mu.Lock()
			b.Acked++
			b.mu.Unlock()
			return nil
		},
		nackRequeue: func() error {
			b.mu.Lock()
			b.Requeued++
			b.mu.Unlock()
			return nil
		},
		nackDeadLetter: func() error {
			b.mu.Lock()
			b.DeadLettered = append(b.DeadLettered, body)
			b.mu.Unlock()
			return nil
		},
	}
}

func (b *MemBroker) Consume(ctx context.Context, queue QueueName, _ int) (<-chan Delivery, error) {
	b.mu.Lock()
	ch := make(chan Delivery, 16)
	b.consumed[queue] = ch
	backlog := b.queues[queue]
	b.queues[queue] = nil
	b.mu.Unlock()

	for _, body := range backlog {
		ch <- b.wrap(body)
	}

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		defer b.mu.Unlock()
		close(ch)
		delete(b.consumed, queue)
	}()
	return ch, nil
}

func (b *MemBroker) Close() error { return nil }

var _ Broker = (*MemBroker)(nil)
