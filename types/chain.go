package types

import "time"

// ChainKind groups chains that share the same transaction/address shape.
type ChainKind int

const (
	ChainKindUnknown ChainKind = iota
	ChainKindUTXO
	ChainKindEVM
	ChainKindCosmos
	ChainKindSubstrate
	ChainKindMove
	ChainKindOther
)

func (k ChainKind) String() string {
	switch k {
	case ChainKindUTXO:
		return "utxo"
	case ChainKindEVM:
		return "evm"
	case ChainKindCosmos:
		return "cosmos"
	case ChainKindSubstrate:
		return "substrate"
	case ChainKindMove:
		return "move"
	case ChainKindOther:
		return "other"
	default:
		return "unknown"
	}
}

// ChainId is the closed set of blockchains the core ingests. New chains
// are added here and in the ChainRegistry table, never inferred at runtime.
type ChainId string

const (
	ChainBitcoin    ChainId = "bitcoin"
	ChainLitecoin   ChainId = "litecoin"
	ChainDoge       ChainId = "doge"
	ChainEthereum   ChainId = "ethereum"
	ChainSmartChain ChainId = "smartchain"
	ChainPolygon    ChainId = "polygon"
	ChainArbitrum   ChainId = "arbitrum"
	ChainOptimism   ChainId = "optimism"
	ChainBase       ChainId = "base"
	ChainAvalanche  ChainId = "avalanchec"
	ChainFantom     ChainId = "fantom"
	ChainTron       ChainId = "tron"
	ChainXRP        ChainId = "xrp"
	ChainStellar    ChainId = "stellar"
	ChainSolana     ChainId = "solana"
	ChainPolkadot   ChainId = "polkadot"
	ChainCosmos     ChainId = "cosmos"
	ChainOsmosis    ChainId = "osmosis"
	ChainAptos      ChainId = "aptos"
	ChainSui        ChainId = "sui"
	ChainNear       ChainId = "near"
	ChainAlgorand   ChainId = "algorand"
	ChainCardano    ChainId = "cardano"
	ChainTon        ChainId = "ton"
	ChainHyperCore  ChainId = "hypercore"
)

// ChainProperties holds the static, per-chain constants the pipeline and
// normalizer consult. Values mirror the pipeline's rules for minimum transfer
// amount and outdated threshold, with sane defaults for the rest.
type ChainProperties struct {
	DisplayName           string
	Decimals              int
	Denom                 string
	Kind                  ChainKind
	MinimumTransferAmount int64
	OutdatedThreshold     time.Duration
	DefaultPollInterval   time.Duration
	DefaultBatchSize      int64
}
