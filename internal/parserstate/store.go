// Package parserstate is the persistent-cursor boundary the pipeline
// depends on, kept separate from internal/repository so a pipeline
// worker's view of storage stays narrow and distinct from any one
// backing implementation.
package parserstate

import (
	"context"

	"github.com/chainvault/ingestor/types"
)

// Store is the cursor boundary the Block Pipeline depends on.
type Store interface {
	// EnsureRows creates a row for every chain in chains that does not
	// already have one; pipeline.Worker.Run calls it for its own chain
	// before it loads the cursor.
	EnsureRows(ctx context.Context, chains []types.ChainId) error

	GetAll(ctx context.Context) ([]types.ParserState, error)

	SetLatestBlock(ctx context.Context, chain types.ChainId, block int64) error
	SetCurrentBlock(ctx context.Context, chain types.ChainId, block int64) error
}
