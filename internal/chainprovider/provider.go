// Package chainprovider defines the capability contract every
// per-chain RPC adapter implements. Concrete per-chain
// implementations are out of core scope; the core only ever holds this
// interface.
package chainprovider

import (
	"context"

	"github.com/chainvault/ingestor/types"
)

// Kind classifies a provider-returned error so callers can decide
// retry/backoff/skip without string matching.
type Kind int

const (
	KindNetwork Kind = iota
	KindUpstream
	KindTimeout
	KindNotYetAvailable
	KindSkipped
	KindNotAToken
)

// Error is the typed error every Provider method returns on failure.
type Error struct {
	Kind  Kind
	Chain types.ChainId
	Op    string
	Err   error
}

func (e *Error) Error() string {
	return e.Op + "(" + string(e.Chain) + "): " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// IsRetryLater reports whether err signals "try again next tick"
// rather than a hard failure (NotYetAvailable / Skipped).
func IsRetryLater(err error) bool {
	pe, ok := err.(*Error)
	if !ok {
		return false
	}
	return pe.Kind == KindNotYetAvailable || pe.Kind == KindSkipped
}

// Provider is the uniform per-chain capability the Block Pipeline
// consumes. All normalization happens behind this interface; the core
// never parses a chain-specific wire format.
type Provider interface {
	Chain() types.ChainId

	// GetLatestBlock returns the chain's current block height.
	GetLatestBlock(ctx context.Context) (int64, error)

	// GetTransactions returns every normalized transaction in block
	// blockNumber. A provider may return fewer than the chain actually
	// has if some fall below the chain's minimum-value threshold.
	GetTransactions(ctx context.Context, blockNumber int64) ([]types.Transaction, error)

	// GetTransactionsByAddress returns normalized transactions
	// involving addr, most recent first.
	GetTransactionsByAddress(ctx context.Context, addr string) ([]types.Transaction, error)

	// GetTokenData returns metadata for a token id on this chain.
	GetTokenData(ctx context.Context, tokenId string) (types.Asset, error)
}
