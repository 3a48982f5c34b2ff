package chainprovider

import (
	"context"

	"github.com/chainvault/ingestor/types"
)

type fakeProvider struct {
	chain    types.ChainId
	tokens   map[string]types.Asset
	fetchCnt int
}

func (f *fakeProvider) Chain() types.ChainId { return f.chain }

func (f *fakeProvider) GetLatestBlock(context.Context) (int64, error) { return 0, nil }

func (f *fakeProvider) GetTransactions(context.Context, int64) ([]types.Transaction, error) {
	return nil, nil
}

func (f *fakeProvider) GetTransactionsByAddress(context.Context, string) ([]types.Transaction, error) {
	return nil, nil
}

func (f *fakeProvider) GetTokenData(_ context.Context, tokenId string) (types.Asset, error) {
	f.fetchCnt++
	return f.tokens[tokenId], nil
}
