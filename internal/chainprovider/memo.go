package chainprovider

import (
	"context"

	lru "github.com/hashicorp/golang-lru"

	"github.com/chainvault/ingestor/types"
)

const defaultTokenCacheSize = 4096

// Memo wraps a Provider's GetTokenData in an in-process ARC cache, to
// bound RPC fan-out for repeated token lookups triggered by the
// notification fan-out's fetch_assets step.
type Memo struct {
	Provider
	cache *lru.ARCCache
}

// NewMemo wraps p with an ARC cache of size entries (defaultTokenCacheSize
// if size <= 0).
func NewMemo(p Provider, size int) (*Memo, error) {
	if size <= 0 {
		size = defaultTokenCacheSize
	}
	cache, err := lru.NewARC(size)
	if err != nil {
		return nil, err
	}
	return &Memo{Provider: p, cache: cache}, nil
}

func (m *Memo) GetTokenData(ctx context.Context, tokenId string) (types.Asset, error) {
	if v, ok := m.cache.Get(tokenId); ok {
		return v.(types.Asset), nil
	}
	asset, err := m.Provider.GetTokenData(ctx, tokenId)
	if err != nil {
		return types.Asset{}, err
	}
	m.cache.Add(tokenId, asset)
	return asset, nil
}
