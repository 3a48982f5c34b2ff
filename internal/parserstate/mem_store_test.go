package parserstate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainvault/ingestor/types"
)

func TestMemStoreEnsureRowsIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	require.NoError(t, s.EnsureRows(ctx, []types.ChainId{types.ChainBitcoin}))
	require.NoError(t, s.SetCurrentBlock(ctx, types.ChainBitcoin, 42))
	require.NoError(t, s.EnsureRows(ctx, []types.ChainId{types.ChainBitcoin}))

	assert.Equal(t, int64(42), s.Get(types.ChainBitcoin).CurrentBlock, "EnsureRows must not reset an existing row")
}

func TestMemStoreSetLatestAndCurrentBlockAreIndependent(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	require.NoError(t, s.EnsureRows(ctx, []types.ChainId{types.ChainEthereum}))
	require.NoError(t, s.SetLatestBlock(ctx, types.ChainEthereum, 100))
	require.NoError(t, s.SetCurrentBlock(ctx, types.ChainEthereum, 90))

	got := s.Get(types.ChainEthereum)
	assert.Equal(t, int64(100), got.LatestBlock)
	assert.Equal(t, int64(90), got.CurrentBlock)
}
