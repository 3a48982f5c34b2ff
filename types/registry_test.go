package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPropertiesOfKnownChainUsesRegisteredValues(t *testing.T) {
	p := PropertiesOf(ChainBitcoin)
	assert.Equal(t, "Bitcoin", p.DisplayName)
	assert.Equal(t, ChainKindUTXO, p.Kind)
	assert.Equal(t, 2*time.Hour, p.OutdatedThreshold)
	assert.Equal(t, int64(6), p.DefaultBatchSize)
}

func TestPropertiesOfFillsZeroFieldsWithDefaults(t *testing.T) {
	p := PropertiesOf(ChainSmartChain)
	assert.Equal(t, int64(0), p.MinimumTransferAmount, "explicit zero stays zero, not defaulted")
	assert.NotZero(t, p.OutdatedThreshold)
	assert.NotZero(t, p.DefaultPollInterval)
	assert.NotZero(t, p.DefaultBatchSize)
}

func TestPropertiesOfUnknownChainFallsBackToDefaults(t *testing.T) {
	p := PropertiesOf(ChainId("not-a-real-chain"))
	assert.Equal(t, "not-a-real-chain", p.DisplayName)
	assert.Equal(t, ChainKindOther, p.Kind)
	assert.Equal(t, defaultOutdatedThreshold, p.OutdatedThreshold)
	assert.Equal(t, defaultPollInterval, p.DefaultPollInterval)
	assert.Equal(t, int64(defaultBatchSize), p.DefaultBatchSize)
}

func TestAllChainsIncludesEveryRegisteredChain(t *testing.T) {
	all := AllChains()
	assert.Contains(t, all, ChainBitcoin)
	assert.Contains(t, all, ChainEthereum)
	assert.Len(t, all, len(chainRegistry))
}
