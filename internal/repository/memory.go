package repository

import (
	"context"
	"sync"
	"time"

	"github.com/chainvault/ingestor/types"
)

// MemRepository is an in-process Repository for tests: the in-memory
// counterpart to a driver-backed implementation, behind the same
// interface.
type MemRepository struct {
	mu            sync.Mutex
	parserStates  map[types.ChainId]types.ParserState
	transactions  map[string]types.Transaction // key: chain|hash
	devices       map[string]types.Device
	subscriptions []types.Subscription
	assets        map[string]types.Asset
}

func NewMemRepository() *MemRepository {
	return &MemRepository{
		parserStates: make(map[types.ChainId]types.ParserState),
		transactions: make(map[string]types.Transaction),
		devices:      make(map[string]types.Device),
		assets:       make(map[string]types.Asset),
	}
}

func txKey(chain types.ChainId, hash string) string { return string(chain) + "|" + hash }

func (m *MemRepository) Close() error { return nil }

func (m *MemRepository) EnsureParserState(_ context.Context, chain types.ChainId) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.parserStates[chain]; !ok {
		m.parserStates[chain] = types.ParserState{Chain: chain, IsEnabled: true, UpdatedAt: time.Now()}
	}
	return nil
}

func (m *MemRepository) GetAllParserStates(_ context.Context) ([]types.ParserState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]types.ParserState, 0, len(m.parserStates))
	for _, s := range m.parserStates {
		out = append(out, s)
	}
	return out, nil
}

func (m *MemRepository) SetLatestBlock(_ context.Context, chain types.ChainId, block int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.parserStates[chain]
	s.Chain = chain
	s.LatestBlock = block
	s.UpdatedAt = time.Now()
	m.parserStates[chain] = s
	return nil
}

func (m *MemRepository) SetCurrentBlock(_ context.Context, chain types.ChainId, block int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.parserStates[chain]
	s.Chain = chain
	s.CurrentBlock = block
	s.UpdatedAt = time.Now()
	m.parserStates[chain] = s
	return nil
}

func (m *MemRepository) UpsertTransactions(_ context.Context, txs []types.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range txs {
		m.transactions[txKey(t.Chain, t.Hash)] = t
	}
	return nil
}

func (m *MemRepository) GetTransactionByHash(_ context.Context, chain types.ChainId, hash string) (types.Transaction, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.transactions[txKey(chain, hash)]
	return t, ok, nil
}

func (m *MemRepository) DeleteTransactionsOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k, t := range m.transactions {
		if t.CreatedAt.Before(cutoff) {
			delete(m.transactions, k)
			n++
		}
	}
	return n, nil
}

func (m *MemRepository) GetDevice(_ context.Context, deviceId string) (types.Device, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.devices[deviceId]
	return d, ok, nil
}

func (m *MemRepository) PutDevice(d types.Device) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.devices[d.DeviceId] = d
}

func (m *MemRepository) PutSubscription(s types.Subscription) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscriptions = append(m.subscriptions, s)
}

func (m *MemRepository) SubscribersFor(_ context.Context, chain types.ChainId, address string) ([]types.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []types.Subscription
	for _, s := range m.subscriptions {
		if s.Chain == chain && s.Address == address {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *MemRepository) TouchDevice(_ context.Context, deviceId string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.devices[deviceId]
	if !ok {
		return ErrNotFound
	}
	d.UpdatedAt = at
	m.devices[deviceId] = d
	return nil
}

func (m *MemRepository) InactiveDevices(_ context.Context, since time.Time) ([]types.Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []types.Device
	for _, d := range m.devices {
		if d.UpdatedAt.Before(since) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *MemRepository) GetAssets(_ context.Context, ids []types.AssetId) ([]types.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]types.Asset, 0, len(ids))
	for _, id := range ids {
		if a, ok := m.assets[id.String()]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *MemRepository) UpsertToken(_ context.Context, asset types.Asset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assets[asset.Id.String()] = asset
	return nil
}

var _ Repository = (*MemRepository)(nil)
var _ Repository = (*GormRepository)(nil)
