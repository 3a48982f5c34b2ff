package broker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemBrokerDeliversBacklogOnConsume(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	b := NewMemBroker()

	require.NoError(t, b.Publish(ctx, QueueChainTransactions, []byte("a")))
	require.NoError(t, b.Publish(ctx, QueueChainTransactions, []byte("b")))

	ch, err := b.Consume(ctx, QueueChainTransactions, 1)
	require.NoError(t, err)

	first := <-ch
	second := <-ch
	assert.Equal(t, []byte("a"), first.Body)
	assert.Equal(t, []byte("b"), second.Body)
}

func TestMemBrokerAckNackTracking(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	b := NewMemBroker()
	ch, err := b.Consume(ctx, QueueFetchTokenAddress, 1)
	require.NoError(t, err)

	require.NoError(t, b.Publish(ctx, QueueFetchTokenAddress, []byte("x")))
	d := <-ch
	require.NoError(t, d.NackDeadLetter())

	require.Len(t, b.DeadLettered, 1)
	assert.Equal(t, []byte("x"), b.DeadLettered[0])
}

func TestMemBrokerPublishRoutesLiveConsumerDirectly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	b := NewMemBroker()
	ch, err := b.Consume(ctx, QueueFetchAssets, 1)
	require.NoError(t, err)

	go func() {
		_ = b.Publish(ctx, QueueFetchAssets, []byte("live"))
	}()

	select {
	case d := <-ch:
		assert.Equal(t, []byte("live"), d.Body)
		require.NoError(t, d.Ack())
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for delivery")
	}
	assert.Equal(t, 1, b.Acked)
}
