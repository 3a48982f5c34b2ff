package notify

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainvault/ingestor/internal/broker"
	"github.com/chainvault/ingestor/internal/cache"
	"github.com/chainvault/ingestor/internal/repository"
	"github.com/chainvault/ingestor/types"
)

func setup(t *testing.T) (*repository.MemRepository, *cache.MemCache, *broker.MemBroker, *Fanout) {
	t.Helper()
	repo := repository.NewMemRepository()
	c := cache.NewMemCache()
	b := broker.NewMemBroker()
	return repo, c, b, NewFanout(repo, c, b)
}

func TestFanoutSkipsPushDisabledDevice(t *testing.T) {
	ctx := context.Background()
	repo, _, b, f := setup(t)
	repo.PutDevice(types.Device{DeviceId: "d1", IsPushEnabled: false})
	repo.PutSubscription(types.Subscription{DeviceId: "d1", Chain: types.ChainBitcoin, Address: "addr1"})

	ch, err := b.Consume(ctx, broker.QueueNotificationsPush, 1)
	require.NoError(t, err)

	payload := types.TransactionPayload{
		Transaction: types.Transaction{Chain: types.ChainBitcoin, Hash: "h1", From: "addrX", To: "addr1", Kind: types.TransactionKindTransfer},
		Addresses:   []types.TransactionAddress{{Chain: types.ChainBitcoin, TransactionHash: "h1", Address: "addr1"}},
	}
	require.NoError(t, f.Handle(ctx, payload))

	select {
	case <-ch:
		t.Fatal("push-disabled device must not receive a notification")
	default:
	}
}

func TestFanoutSendsNotificationToSubscriber(t *testing.T) {
	ctx := context.Background()
	repo, _, b, f := setup(t)
	repo.PutDevice(types.Device{DeviceId: "d1", IsPushEnabled: true})
	repo.PutSubscription(types.Subscription{DeviceId: "d1", Chain: types.ChainBitcoin, Address: "addr1"})

	ch, err := b.Consume(ctx, broker.QueueNotificationsPush, 1)
	require.NoError(t, err)

	payload := types.TransactionPayload{
		Transaction: types.Transaction{Chain: types.ChainBitcoin, Hash: "h1", From: "addrX", To: "addr1", Kind: types.TransactionKindTransfer, Value: 100},
		Addresses:   []types.TransactionAddress{{Chain: types.ChainBitcoin, TransactionHash: "h1", Address: "addr1"}},
	}
	require.NoError(t, f.Handle(ctx, payload))

	d := <-ch
	var np types.NotificationsPayload
	require.NoError(t, json.Unmarshal(d.Body, &np))
	require.Len(t, np.Notifications, 1)
	assert.Equal(t, "d1", np.Notifications[0].DeviceId)
}

func TestFanoutSelfTransferNotifiedOnce(t *testing.T) {
	ctx := context.Background()
	repo, _, b, f := setup(t)
	repo.PutDevice(types.Device{DeviceId: "d1", IsPushEnabled: true})
	repo.PutSubscription(types.Subscription{DeviceId: "d1", Chain: types.ChainBitcoin, Address: "same"})

	ch, err := b.Consume(ctx, broker.QueueNotificationsPush, 1)
	require.NoError(t, err)

	payload := types.TransactionPayload{
		Transaction: types.Transaction{Chain: types.ChainBitcoin, Hash: "h1", From: "same", To: "same", Kind: types.TransactionKindTransfer},
		Addresses:   []types.TransactionAddress{{Chain: types.ChainBitcoin, TransactionHash: "h1", Address: "same"}},
	}
	require.NoError(t, f.Handle(ctx, payload))

	d := <-ch
	var np types.NotificationsPayload
	require.NoError(t, json.Unmarshal(d.Body, &np))
	assert.Len(t, np.Notifications, 1, "a self-transfer must notify once, not twice")
}

func TestFanoutDedupsRepeatedDelivery(t *testing.T) {
	ctx := context.Background()
	repo, _, b, f := setup(t)
	repo.PutDevice(types.Device{DeviceId: "d1", IsPushEnabled: true})
	repo.PutSubscription(types.Subscription{DeviceId: "d1", Chain: types.ChainBitcoin, Address: "addr1"})

	payload := types.TransactionPayload{
		Transaction: types.Transaction{Chain: types.ChainBitcoin, Hash: "h1", From: "addrX", To: "addr1", Kind: types.TransactionKindTransfer},
		Addresses:   []types.TransactionAddress{{Chain: types.ChainBitcoin, TransactionHash: "h1", Address: "addr1"}},
	}

	ch, err := b.Consume(ctx, broker.QueueNotificationsPush, 1)
	require.NoError(t, err)

	require.NoError(t, f.Handle(ctx, payload))
	<-ch

	require.NoError(t, f.Handle(ctx, payload))
	select {
	case <-ch:
		t.Fatal("redelivery of the same transaction must be deduped")
	default:
	}
}

func TestFanoutPublishesFetchTokenAddressesForRecipient(t *testing.T) {
	ctx := context.Background()
	repo, _, b, f := setup(t)
	repo.PutDevice(types.Device{DeviceId: "d1", IsPushEnabled: true})
	repo.PutSubscription(types.Subscription{DeviceId: "d1", Chain: types.ChainBitcoin, Address: "addr1"})

	notifyCh, err := b.Consume(ctx, broker.QueueNotificationsPush, 1)
	require.NoError(t, err)
	fetchCh, err := b.Consume(ctx, broker.QueueFetchTokenAddress, 1)
	require.NoError(t, err)

	payload := types.TransactionPayload{
		Transaction: types.Transaction{Chain: types.ChainBitcoin, Hash: "h1", From: "addrX", To: "addr1", Kind: types.TransactionKindTransfer},
		Addresses:   []types.TransactionAddress{{Chain: types.ChainBitcoin, TransactionHash: "h1", Address: "addr1"}},
	}
	require.NoError(t, f.Handle(ctx, payload))
	<-notifyCh

	d := <-fetchCh
	var p types.ChainAddressPayload
	require.NoError(t, json.Unmarshal(d.Body, &p))
	assert.Equal(t, "addr1", p.Address)
}
