package chainprovider

import (
	"fmt"
	"sync"

	"github.com/chainvault/ingestor/types"
)

// Registry is the map-based capability lookup the pipeline runner uses
// to fan out one worker per enabled chain.
type Registry struct {
	mu        sync.RWMutex
	providers map[types.ChainId]Provider
}

func NewRegistry() *Registry {
	return &Registry{providers: make(map[types.ChainId]Provider)}
}

func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Chain()] = p
}

func (r *Registry) Get(chain types.ChainId) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[chain]
	if !ok {
		return nil, fmt.Errorf("no provider registered for chain %q", chain)
	}
	return p, nil
}

func (r *Registry) Chains() []types.ChainId {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.ChainId, 0, len(r.providers))
	for c := range r.providers {
		out = append(out, c)
	}
	return out
}
