package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainvault/ingestor/types"
)

func TestMemRepositoryParserStateLifecycle(t *testing.T) {
	ctx := context.Background()
	r := NewMemRepository()

	require.NoError(t, r.EnsureParserState(ctx, types.ChainBitcoin))
	require.NoError(t, r.SetLatestBlock(ctx, types.ChainBitcoin, 100))
	require.NoError(t, r.SetCurrentBlock(ctx, types.ChainBitcoin, 90))

	states, err := r.GetAllParserStates(ctx)
	require.NoError(t, err)
	require.Len(t, states, 1)
	assert.Equal(t, int64(100), states[0].LatestBlock)
	assert.Equal(t, int64(90), states[0].CurrentBlock)
}

func TestMemRepositoryUpsertTransactionsIsIdempotentOnHash(t *testing.T) {
	ctx := context.Background()
	r := NewMemRepository()
	tx := types.Transaction{Chain: types.ChainBitcoin, Hash: "abc", Value: 1}

	require.NoError(t, r.UpsertTransactions(ctx, []types.Transaction{tx}))
	tx.Value = 2
	require.NoError(t, r.UpsertTransactions(ctx, []types.Transaction{tx}))

	got, ok, err := r.GetTransactionByHash(ctx, types.ChainBitcoin, "abc")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(2), got.Value)
}

func TestMemRepositorySubscribersFor(t *testing.T) {
	ctx := context.Background()
	r := NewMemRepository()
	r.PutSubscription(types.Subscription{DeviceId: "dev1", Chain: types.ChainBitcoin, Address: "addr1"})
	r.PutSubscription(types.Subscription{DeviceId: "dev2", Chain: types.ChainEthereum, Address: "addr1"})

	subs, err := r.SubscribersFor(ctx, types.ChainBitcoin, "addr1")
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "dev1", subs[0].DeviceId)
}

func TestMemRepositoryInactiveDevices(t *testing.T) {
	ctx := context.Background()
	r := NewMemRepository()
	now := time.Now()
	r.PutDevice(types.Device{DeviceId: "stale", UpdatedAt: now.Add(-48 * time.Hour)})
	r.PutDevice(types.Device{DeviceId: "fresh", UpdatedAt: now})

	inactive, err := r.InactiveDevices(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, inactive, 1)
	assert.Equal(t, "stale", inactive[0].DeviceId)
}

func TestMemRepositoryDeleteTransactionsOlderThan(t *testing.T) {
	ctx := context.Background()
	r := NewMemRepository()
	now := time.Now()
	require.NoError(t, r.UpsertTransactions(ctx, []types.Transaction{
		{Chain: types.ChainBitcoin, Hash: "old", CreatedAt: now.Add(-72 * time.Hour)},
		{Chain: types.ChainBitcoin, Hash: "new", CreatedAt: now},
	}))

	n, err := r.DeleteTransactionsOlderThan(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, ok, _ := r.GetTransactionByHash(ctx, types.ChainBitcoin, "old")
	assert.False(t, ok)
	_, ok, _ = r.GetTransactionByHash(ctx, types.ChainBitcoin, "new")
	assert.True(t, ok)
}
