package types

import "time"

// defaultOutdatedThreshold, defaultPollInterval and defaultBatchSize are
// the fallbacks for chains not otherwise singled out.
const (
	defaultOutdatedThreshold = 15 * time.Minute
	defaultPollInterval      = 5 * time.Second
	defaultBatchSize         = 20
)

// chainRegistry is the closed, static table of per-chain properties. It is
// populated once at package init and never mutated; PropertiesOf looks
// entries up by value, never by pointer, so concurrent readers need no lock.
var chainRegistry = map[ChainId]ChainProperties{
	ChainBitcoin: {
		DisplayName: "Bitcoin", Decimals: 8, Kind: ChainKindUTXO,
		MinimumTransferAmount: 0,
		OutdatedThreshold:     2 * time.Hour,
		DefaultPollInterval:   30 * time.Second,
		DefaultBatchSize:      6,
	},
	ChainLitecoin: {
		DisplayName: "Litecoin", Decimals: 8, Kind: ChainKindUTXO,
		MinimumTransferAmount: 0,
		OutdatedThreshold:     30 * time.Minute,
		DefaultPollInterval:   10 * time.Second,
		DefaultBatchSize:      12,
	},
	ChainDoge: {
		DisplayName: "Dogecoin", Decimals: 8, Kind: ChainKindUTXO,
		MinimumTransferAmount: 0,
		OutdatedThreshold:     30 * time.Minute,
		DefaultPollInterval:   15 * time.Second,
		DefaultBatchSize:      12,
	},
	ChainEthereum: {
		DisplayName: "Ethereum", Decimals: 18, Kind: ChainKindEVM,
		MinimumTransferAmount: 0,
		OutdatedThreshold:     defaultOutdatedThreshold,
		DefaultPollInterval:   12 * time.Second,
		DefaultBatchSize:      20,
	},
	ChainSmartChain: {
		DisplayName: "BNB Smart Chain", Decimals: 18, Kind: ChainKindEVM,
		DefaultPollInterval: 3 * time.Second, DefaultBatchSize: 40,
		OutdatedThreshold: defaultOutdatedThreshold,
	},
	ChainPolygon: {
		DisplayName: "Polygon", Decimals: 18, Kind: ChainKindEVM,
		DefaultPollInterval: 2 * time.Second, DefaultBatchSize: 60,
		OutdatedThreshold: defaultOutdatedThreshold,
	},
	ChainArbitrum: {
		DisplayName: "Arbitrum", Decimals: 18, Kind: ChainKindEVM,
		DefaultPollInterval: 1 * time.Second, DefaultBatchSize: 80,
		OutdatedThreshold: defaultOutdatedThreshold,
	},
	ChainOptimism: {
		DisplayName: "Optimism", Decimals: 18, Kind: ChainKindEVM,
		DefaultPollInterval: 2 * time.Second, DefaultBatchSize: 60,
		OutdatedThreshold: defaultOutdatedThreshold,
	},
	ChainBase: {
		DisplayName: "Base", Decimals: 18, Kind: ChainKindEVM,
		DefaultPollInterval: 2 * time.Second, DefaultBatchSize: 60,
		OutdatedThreshold: defaultOutdatedThreshold,
	},
	ChainAvalanche: {
		DisplayName: "Avalanche C-Chain", Decimals: 18, Kind: ChainKindEVM,
		DefaultPollInterval: 2 * time.Second, DefaultBatchSize: 40,
		OutdatedThreshold: defaultOutdatedThreshold,
	},
	ChainFantom: {
		DisplayName: "Fantom", Decimals: 18, Kind: ChainKindEVM,
		DefaultPollInterval: 1 * time.Second, DefaultBatchSize: 60,
		OutdatedThreshold: defaultOutdatedThreshold,
	},
	ChainTron: {
		DisplayName: "Tron", Decimals: 6, Kind: ChainKindOther,
		MinimumTransferAmount: 5_000,
		OutdatedThreshold:     defaultOutdatedThreshold,
		DefaultPollInterval:   3 * time.Second, DefaultBatchSize: 40,
	},
	ChainXRP: {
		DisplayName: "XRP Ledger", Decimals: 6, Kind: ChainKindOther,
		MinimumTransferAmount: 5_000,
		OutdatedThreshold:     defaultOutdatedThreshold,
		DefaultPollInterval:   4 * time.Second, DefaultBatchSize: 20,
	},
	ChainStellar: {
		DisplayName: "Stellar", Decimals: 7, Kind: ChainKindOther,
		MinimumTransferAmount: 50_000,
		OutdatedThreshold:     defaultOutdatedThreshold,
		DefaultPollInterval:   5 * time.Second, DefaultBatchSize: 20,
	},
	ChainSolana: {
		DisplayName: "Solana", Decimals: 9, Kind: ChainKindOther,
		MinimumTransferAmount: 1_000,
		OutdatedThreshold:     defaultOutdatedThreshold,
		DefaultPollInterval:   1 * time.Second, DefaultBatchSize: 100,
	},
	ChainPolkadot: {
		DisplayName: "Polkadot", Decimals: 10, Denom: "DOT", Kind: ChainKindSubstrate,
		MinimumTransferAmount: 10_000_000,
		OutdatedThreshold:     defaultOutdatedThreshold,
		DefaultPollInterval:   6 * time.Second, DefaultBatchSize: 20,
	},
	ChainCosmos: {
		DisplayName: "Cosmos Hub", Decimals: 6, Denom: "uatom", Kind: ChainKindCosmos,
		OutdatedThreshold:   defaultOutdatedThreshold,
		DefaultPollInterval: 6 * time.Second, DefaultBatchSize: 20,
	},
	ChainOsmosis: {
		DisplayName: "Osmosis", Decimals: 6, Denom: "uosmo", Kind: ChainKindCosmos,
		OutdatedThreshold:   defaultOutdatedThreshold,
		DefaultPollInterval: 5 * time.Second, DefaultBatchSize: 20,
	},
	ChainAptos: {
		DisplayName: "Aptos", Decimals: 8, Kind: ChainKindMove,
		OutdatedThreshold:   defaultOutdatedThreshold,
		DefaultPollInterval: 1 * time.Second, DefaultBatchSize: 60,
	},
	ChainSui: {
		DisplayName: "Sui", Decimals: 9, Kind: ChainKindMove,
		OutdatedThreshold:   defaultOutdatedThreshold,
		DefaultPollInterval: 1 * time.Second, DefaultBatchSize: 60,
	},
	ChainNear: {
		DisplayName: "NEAR", Decimals: 24, Kind: ChainKindOther,
		OutdatedThreshold:   defaultOutdatedThreshold,
		DefaultPollInterval: 1 * time.Second, DefaultBatchSize: 60,
	},
	ChainAlgorand: {
		DisplayName: "Algorand", Decimals: 6, Kind: ChainKindOther,
		OutdatedThreshold:   defaultOutdatedThreshold,
		DefaultPollInterval: 4 * time.Second, DefaultBatchSize: 20,
	},
	ChainCardano: {
		DisplayName: "Cardano", Decimals: 6, Kind: ChainKindUTXO,
		OutdatedThreshold:   defaultOutdatedThreshold,
		DefaultPollInterval: 20 * time.Second, DefaultBatchSize: 10,
	},
	ChainTon: {
		DisplayName: "TON", Decimals: 9, Kind: ChainKindOther,
		OutdatedThreshold:   defaultOutdatedThreshold,
		DefaultPollInterval: 5 * time.Second, DefaultBatchSize: 20,
	},
	ChainHyperCore: {
		DisplayName: "Hyperliquid", Decimals: 8, Kind: ChainKindOther,
		OutdatedThreshold:   defaultOutdatedThreshold,
		DefaultPollInterval: 1 * time.Second, DefaultBatchSize: 40,
	},
}

// PropertiesOf returns the static properties for a chain, falling back to
// conservative defaults for any chain missing from the table rather than
// panicking; new chains can be onboarded with a provider before their
// tuning constants land.
func PropertiesOf(c ChainId) ChainProperties {
	if p, ok := chainRegistry[c]; ok {
		if p.OutdatedThreshold == 0 {
			p.OutdatedThreshold = defaultOutdatedThreshold
		}
		if p.DefaultPollInterval == 0 {
			p.DefaultPollInterval = defaultPollInterval
		}
		if p.DefaultBatchSize == 0 {
			p.DefaultBatchSize = defaultBatchSize
		}
		return p
	}
	return ChainProperties{
		DisplayName:           string(c),
		Kind:                  ChainKindOther,
		MinimumTransferAmount: 0,
		OutdatedThreshold:     defaultOutdatedThreshold,
		DefaultPollInterval:   defaultPollInterval,
		DefaultBatchSize:      defaultBatchSize,
	}
}

// AllChains returns every chain in the closed registry. Order is
// unspecified; callers that need determinism should sort.
func AllChains() []ChainId {
	out := make([]ChainId, 0, len(chainRegistry))
	for c := range chainRegistry {
		out = append(out, c)
	}
	return out
}
