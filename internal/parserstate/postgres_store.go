package parserstate

import (
	"context"

	"github.com/chainvault/ingestor/internal/repository"
	"github.com/chainvault/ingestor/types"
)

// PostgresStore adapts repository.Repository's parser-state methods to
// the Store interface: a thin adapter between a broad storage
// interface and a narrower domain-facing one.
type PostgresStore struct {
	repo repository.Repository
}

func NewPostgresStore(repo repository.Repository) *PostgresStore {
	return &PostgresStore{repo: repo}
}

func (s *PostgresStore) EnsureRows(ctx context.Context, chains []types.ChainId) error {
	for _, c := range chains {
		if err := s.repo.EnsureParserState(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) GetAll(ctx context.Context) ([]types.ParserState, error) {
	return s.repo.GetAllParserStates(ctx)
}

func (s *PostgresStore) SetLatestBlock(ctx context.Context, chain types.ChainId, block int64) error {
	return s.repo.SetLatestBlock(ctx, chain, block)
}

func (s *PostgresStore) SetCurrentBlock(ctx context.Context, chain types.ChainId, block int64) error {
	return s.repo.SetCurrentBlock(ctx, chain, block)
}

var _ Store = (*PostgresStore)(nil)
