package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTransactionWithDirectionDoesNotMutateReceiver(t *testing.T) {
	base := Transaction{Hash: "abc"}
	withDir := base.WithDirection(DirectionIncoming)

	assert.Equal(t, DirectionUnknown, base.Direction(), "original value is unaffected")
	assert.Equal(t, DirectionIncoming, withDir.Direction())
}

func TestTransactionIsOutdated(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	fresh := Transaction{CreatedAt: now.Add(-1 * time.Minute)}
	stale := Transaction{CreatedAt: now.Add(-1 * time.Hour)}

	assert.False(t, fresh.IsOutdated(now, 15*time.Minute))
	assert.True(t, stale.IsOutdated(now, 15*time.Minute))
}

func TestDeriveAddressesDedupsAndSkipsEmpty(t *testing.T) {
	tx := Transaction{Chain: ChainBitcoin, Hash: "h1", From: "addrA", To: "addrA"}
	addrs := DeriveAddresses(tx)
	assert.Len(t, addrs, 1, "a self-transfer collapses to one row")
	assert.Equal(t, "addrA", addrs[0].Address)
}

func TestDeriveAddressesSkipsEmptyParticipant(t *testing.T) {
	tx := Transaction{Chain: ChainBitcoin, Hash: "h2", From: "", To: "addrB"}
	addrs := DeriveAddresses(tx)
	assert.Len(t, addrs, 1)
	assert.Equal(t, "addrB", addrs[0].Address)
}

func TestDeriveAddressesTwoDistinctParticipants(t *testing.T) {
	tx := Transaction{Chain: ChainEthereum, Hash: "h3", From: "addrA", To: "addrB"}
	addrs := DeriveAddresses(tx)
	assert.Len(t, addrs, 2)
}

func TestAssetIdEqual(t *testing.T) {
	native := AssetId{Chain: ChainEthereum}
	token := AssetId{Chain: ChainEthereum, TokenId: "0xusdc"}

	assert.True(t, native.Equal(AssetId{Chain: ChainEthereum}))
	assert.False(t, native.Equal(token))
	assert.True(t, native.IsNative())
	assert.False(t, token.IsNative())
}

func TestAssetIdString(t *testing.T) {
	assert.Equal(t, "ethereum", AssetId{Chain: ChainEthereum}.String())
	assert.Equal(t, "ethereum_0xusdc", AssetId{Chain: ChainEthereum, TokenId: "0xusdc"}.String())
}
