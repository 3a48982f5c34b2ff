// Package discovery implements the two follow-up consumers the
// Notification Fan-out's step 4 side effect feeds: fetch_token_addresses
// turns a (chain, address) pair into a set of candidate token ids, and
// fetch_assets resolves each previously-unknown id into persisted
// metadata, the fetch_token_addresses/fetch_assets hand-off.
package discovery

import (
	"context"

	"github.com/chainvault/ingestor/internal/broker"
	"github.com/chainvault/ingestor/internal/chainprovider"
	"github.com/chainvault/ingestor/internal/log"
	"github.com/chainvault/ingestor/internal/repository"
	"github.com/chainvault/ingestor/types"
)

var logger = log.NewModuleLogger(log.ModuleDiscovery)

// TokenAddressConsumer is the fetch_token_addresses MessageConsumer: it
// asks the chain's provider what this address has touched, diffs the
// referenced tokens against the repository, and enqueues FetchAssets for
// whatever isn't already known.
type TokenAddressConsumer struct {
	providers *chainprovider.Registry
	repo      repository.Repository
	broker    broker.Broker
}

func NewTokenAddressConsumer(providers *chainprovider.Registry, repo repository.Repository, b broker.Broker) *TokenAddressConsumer {
	return &TokenAddressConsumer{providers: providers, repo: repo, broker: b}
}

// ShouldProcess never skips; dedup for this queue is the caller's
// (consumer.Runner's DedupKeyFunc) concern, not this consumer's.
func (c *TokenAddressConsumer) ShouldProcess(context.Context, types.ChainAddressPayload) (bool, error) {
	return true, nil
}

func (c *TokenAddressConsumer) Process(ctx context.Context, payload types.ChainAddressPayload) (int, error) {
	provider, err := c.providers.Get(payload.Chain)
	if err != nil {
		return 0, err
	}

	txs, err := provider.GetTransactionsByAddress(ctx, payload.Address)
	if err != nil {
		return 0, err
	}

	candidates := distinctTokenIds(txs)
	if len(candidates) == 0 {
		return 0, nil
	}

	known, err := c.repo.GetAssets(ctx, candidates)
	if err != nil {
		return 0, err
	}
	knownSet := make(map[string]bool, len(known))
	for _, a := range known {
		knownSet[a.Id.String()] = true
	}

	var unknown []types.AssetId
	for _, id := range candidates {
		if !knownSet[id.String()] {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) == 0 {
		return 0, nil
	}

	if err := publishFetchAssets(ctx, c.broker, unknown); err != nil {
		return 0, err
	}
	return len(unknown), nil
}

// distinctTokenIds collects every non-native asset id referenced by txs,
// in first-seen order, so a batch doesn't ask the repository about the
// same token twice.
func distinctTokenIds(txs []types.Transaction) []types.AssetId {
	seen := make(map[string]bool)
	var out []types.AssetId
	for _, t := range txs {
		if t.Asset.IsNative() {
			continue
		}
		key := t.Asset.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t.Asset)
	}
	return out
}

func publishFetchAssets(ctx context.Context, b broker.Broker, ids []types.AssetId) error {
	body, err := marshalAssetIds(ids)
	if err != nil {
		return err
	}
	return b.Publish(ctx, broker.QueueFetchAssets, body)
}
