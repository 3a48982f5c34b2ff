// Package repository is the durable-storage boundary every domain
// package reads and writes through: a single fat interface in front of
// one concrete, driver-backed implementation.
package repository

import (
	"context"
	"time"

	"github.com/chainvault/ingestor/internal/log"
	"github.com/chainvault/ingestor/types"
)

var logger = log.NewModuleLogger(log.ModuleRepository)

// Repository is the storage boundary every domain package depends on
// through this interface only; no package outside repository imports
// gorm or a driver directly.
type Repository interface {
	// Parser state.
	EnsureParserState(ctx context.Context, chain types.ChainId) error
	GetAllParserStates(ctx context.Context) ([]types.ParserState, error)
	SetLatestBlock(ctx context.Context, chain types.ChainId, block int64) error
	SetCurrentBlock(ctx context.Context, chain types.ChainId, block int64) error

	// Transactions.
	UpsertTransactions(ctx context.Context, txs []types.Transaction) error
	GetTransactionByHash(ctx context.Context, chain types.ChainId, hash string) (types.Transaction, bool, error)
	DeleteTransactionsOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// Devices.
	GetDevice(ctx context.Context, deviceId string) (types.Device, bool, error)
	SubscribersFor(ctx context.Context, chain types.ChainId, address string) ([]types.Subscription, error)
	TouchDevice(ctx context.Context, deviceId string, at time.Time) error
	InactiveDevices(ctx context.Context, since time.Time) ([]types.Device, error)

	// Assets.
	GetAssets(ctx context.Context, ids []types.AssetId) ([]types.Asset, error)
	UpsertToken(ctx context.Context, asset types.Asset) error

	Close() error
}

// ErrNotFound is returned by single-row lookups that find nothing.
var ErrNotFound = &RepoError{Kind: KindNotFound, Msg: "not found"}

// Kind classifies a repository failure, mirroring the error taxonomy's
// Transient/DataShape/Fatal taxonomy at the storage boundary.
type Kind int

const (
	KindNotFound Kind = iota
	KindConflict
	KindTransient
	KindFatal
)

// RepoError is the typed error every Repository method returns.
type RepoError struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *RepoError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *RepoError) Unwrap() error { return e.Err }
