package parserstate

import (
	"context"
	"sync"
	"time"

	"github.com/chainvault/ingestor/types"
)

// MemStore is an in-process Store for tests: the in-memory counterpart
// to PostgresStore, behind the same interface.
type MemStore struct {
	mu     sync.Mutex
	states map[types.ChainId]types.ParserState
}

func NewMemStore() *MemStore {
	return &MemStore{states: make(map[types.ChainId]types.ParserState)}
}

func (s *MemStore) EnsureRows(_ context.Context, chains []types.ChainId) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range chains {
		if _, ok := s.states[c]; !ok {
			s.states[c] = types.ParserState{Chain: c, IsEnabled: true, UpdatedAt: time.Now()}
		}
	}
	return nil
}

func (s *MemStore) GetAll(_ context.Context) ([]types.ParserState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.ParserState, 0, len(s.states))
	for _, st := range s.states {
		out = append(out, st)
	}
	return out, nil
}

func (s *MemStore) SetLatestBlock(_ context.Context, chain types.ChainId, block int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.states[chain]
	st.Chain = chain
	st.LatestBlock = block
	st.UpdatedAt = time.Now()
	s.states[chain] = st
	return nil
}

func (s *MemStore) SetCurrentBlock(_ context.Context, chain types.ChainId, block int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.states[chain]
	st.Chain = chain
	st.CurrentBlock = block
	st.UpdatedAt = time.Now()
	s.states[chain] = st
	return nil
}

// Get returns the current row for chain, used by pipeline tests that
// need to assert on state without going through GetAll.
func (s *MemStore) Get(chain types.ChainId) types.ParserState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[chain]
}

var _ Store = (*MemStore)(nil)
