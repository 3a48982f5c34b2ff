// Package broker is the message-queue boundary the consumer framework
// depends on: a *Config struct plus a small interface in front of it,
// backed by RabbitMQ. The consumer protocol this package names (ack /
// nack-without-requeue / broker-owned dead-lettering) is AMQP
// vocabulary that a Kafka offset-commit consumer group cannot express,
// so this package is built on amqp091-go rather than a Kafka client.
package broker

import (
	"context"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/chainvault/ingestor/internal/log"
	"github.com/chainvault/ingestor/types"
)

var logger = log.NewModuleLogger(log.ModuleBroker)

// QueueName is the closed set of queues this repository names.
type QueueName = types.QueueName

const (
	QueueChainTransactions = types.QueueChainTransactions
	QueueFetchTokenAddress = types.QueueFetchTokenAddress
	QueueFetchAssets       = types.QueueFetchAssets
	QueueNotificationsPush = types.QueueNotificationsPush
)

// Delivery wraps one consumed message with its ack/nack handles,
// matching the broker-owns-dead-lettering contract: a nack without
// requeue routes straight to the queue's configured DLX. The handles are
// closures rather than a held amqp.Delivery so MemBroker can implement
// the same contract observably in tests.
type Delivery struct {
	Body           []byte
	ack            func() error
	nackRequeue    func() error
	nackDeadLetter func() error
}

func (d Delivery) Ack() error { return d.ack() }

func (d Delivery) NackRequeue() error { return d.nackRequeue() }

func (d Delivery) NackDeadLetter() error { return d.nackDeadLetter() }

func deliveryFromAMQP(raw amqp.Delivery) Delivery {
	return Delivery{
		Body:           raw.Body,
		ack:            func() error { return raw.Ack(false) },
		nackRequeue:    func() error { return raw.Nack(false, true) },
		nackDeadLetter: func() error { return raw.Nack(false, false) },
	}
}

// RetryPolicy mirrors the rabbitmq.retry.{delay,timeout} config keys
// below.
type RetryPolicy struct {
	Delay   time.Duration
	Timeout time.Duration
}

// Broker is the publish/consume boundary every domain package depends
// on through this interface; nothing outside this package imports
// amqp091-go directly.
type Broker interface {
	Publish(ctx context.Context, queue QueueName, body []byte) error
	Consume(ctx context.Context, queue QueueName, prefetch int) (<-chan Delivery, error)
	Close() error
}

// Config is the subset of connection settings the core cares about.
type Config struct {
	URL   string
	Retry RetryPolicy
}

// AMQPBroker is the production Broker, dialing once and declaring the
// closed set of queues (each with a dead-letter exchange) at startup.
type AMQPBroker struct {
	conn  *amqp.Connection
	retry RetryPolicy
}

// Dial connects with a bounded retry loop driven by Retry: connect,
// retry on failure, give up after Timeout, the idiom every external
// dependency dial in this process uses at boot.
func Dial(cfg Config) (*AMQPBroker, error) {
	delay := cfg.Retry.Delay
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}
	timeout := cfg.Retry.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	deadline := time.Now().Add(timeout)
	var lastErr error
	for {
		conn, err := amqp.Dial(cfg.URL)
		if err == nil {
			b := &AMQPBroker{conn: conn, retry: cfg.Retry}
			if err := b.declareTopology(); err != nil {
				return nil, err
			}
			logger.Info("connected to broker")
			return b, nil
		}
		lastErr = err
		if time.Now().After(deadline) {
			return nil, lastErr
		}
		time.Sleep(delay)
	}
}

var allQueues = []QueueName{QueueChainTransactions, QueueFetchTokenAddress, QueueFetchAssets, QueueNotificationsPush}

func (b *AMQPBroker) declareTopology() error {
	ch, err := b.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	for _, q := range allQueues {
		dlx := string(q) + ".dlx"
		if err := ch.ExchangeDeclare(dlx, "fanout", true, false, false, false, nil); err != nil {
			return err
		}
		dlq := string(q) + ".dead"
		if _, err := ch.QueueDeclare(dlq, true, false, false, false, nil); err != nil {
			return err
		}
		if err := ch.QueueBind(dlq, "", dlx, false, nil); err != nil {
			return err
		}
		args := amqp.Table{"x-dead-letter-exchange": dlx}
		if _, err := ch.QueueDeclare(string(q), true, false, false, false, args); err != nil {
			return err
		}
	}
	return nil
}

func (b *AMQPBroker) Publish(ctx context.Context, queue QueueName, body []byte) error {
	ch, err := b.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()
	return ch.PublishWithContext(ctx, "", string(queue), false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
	})
}

func (b *AMQPBroker) Consume(ctx context.Context, queue QueueName, prefetch int) (<-chan Delivery, error) {
	ch, err := b.conn.Channel()
	if err != nil {
		return nil, err
	}
	if prefetch <= 0 {
		prefetch = 1
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		ch.Close()
		return nil, err
	}
	raw, err := ch.ConsumeWithContext(ctx, string(queue), "", false, false, false, false, nil)
	if err != nil {
		ch.Close()
		return nil, err
	}
	out := make(chan Delivery)
	go func() {
		defer close(out)
		defer ch.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-raw:
				if !ok {
					return
				}
				select {
				case out <- deliveryFromAMQP(d):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (b *AMQPBroker) Close() error { return b.conn.Close() }
