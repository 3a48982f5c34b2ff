package discovery

import (
	"context"
	"encoding/json"

	"github.com/chainvault/ingestor/internal/chainprovider"
	"github.com/chainvault/ingestor/internal/repository"
	"github.com/chainvault/ingestor/types"
)

func marshalAssetIds(ids []types.AssetId) ([]byte, error) {
	return json.Marshal(ids)
}

// AssetConsumer is the fetch_assets MessageConsumer: it resolves each id
// via its chain's provider and persists the metadata, completing the
// "your new token automatically appears in the wallet" path.
type AssetConsumer struct {
	providers *chainprovider.Registry
	repo      repository.Repository
}

func NewAssetConsumer(providers *chainprovider.Registry, repo repository.Repository) *AssetConsumer {
	return &AssetConsumer{providers: providers, repo: repo}
}

func (c *AssetConsumer) ShouldProcess(context.Context, []types.AssetId) (bool, error) {
	return true, nil
}

// Process resolves every id in the batch, skipping (and logging) any
// single id a provider reports as NotAToken rather than failing the
// whole delivery over one bad id.
func (c *AssetConsumer) Process(ctx context.Context, ids []types.AssetId) (int, error) {
	resolved := 0
	for _, id := range ids {
		provider, err := c.providers.Get(id.Chain)
		if err != nil {
			return resolved, err
		}
		asset, err := provider.GetTokenData(ctx, id.TokenId)
		if err != nil {
			if pe, ok := err.(*chainprovider.Error); ok && pe.Kind == chainprovider.KindNotAToken {
				logger.Warn("token id is not a token, skipping", "chain", id.Chain, "token", id.TokenId)
				continue
			}
			return resolved, err
		}
		if err := c.repo.UpsertToken(ctx, asset); err != nil {
			return resolved, err
		}
		resolved++
	}
	return resolved, nil
}
