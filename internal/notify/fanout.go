// Package notify is the notification fan-out path:
// turning one persisted transaction into per-device push notifications
// and the token-discovery side effect.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chainvault/ingestor/internal/broker"
	"github.com/chainvault/ingestor/internal/cache"
	"github.com/chainvault/ingestor/internal/log"
	"github.com/chainvault/ingestor/internal/repository"
	"github.com/chainvault/ingestor/types"
)

var logger = log.NewModuleLogger(log.ModuleNotify)

// replayWindow is the dedup TTL fan-out requires: "at least
// the transaction's replay window (24h)".
const replayWindow = 24 * time.Hour

// Fanout implements Handle, the single entrypoint the Consumer
// Framework calls for every delivered TransactionPayload.
type Fanout struct {
	repo      repository.Repository
	cache     cache.Cache
	broker    broker.Broker
	templates *Templates
}

func NewFanout(repo repository.Repository, c cache.Cache, b broker.Broker) *Fanout {
	return &Fanout{repo: repo, cache: c, broker: b, templates: NewTemplates()}
}

// Handle runs the fan-out steps for one transaction: look up
func (f *Fanout) Handle(ctx context.Context, payload types.TransactionPayload) error {
	notificationsByDevice := make(map[string][]types.Notification)

	for _, addr := range payload.Addresses {
		subs, err := f.repo.SubscribersFor(ctx, addr.Chain, addr.Address)
		if err != nil {
			return err
		}
		for _, sub := range subs {
			if err := f.handleSubscriber(ctx, sub, addr, payload.Transaction, notificationsByDevice); err != nil {
				return err
			}
		}
	}

	for deviceId, notifications := range notificationsByDevice {
		if err := f.publishNotifications(ctx, notifications); err != nil {
			logger.Error("publish notifications failed", "device", deviceId, "err", err)
			return err
		}
	}
	return nil
}

func (f *Fanout) handleSubscriber(ctx context.Context, sub types.Subscription, addr types.TransactionAddress, tx types.Transaction, out map[string][]types.Notification) error {
	device, ok, err := f.repo.GetDevice(ctx, sub.DeviceId)
	if err != nil {
		return err
	}
	if !ok || !device.IsPushEnabled {
		return nil
	}

	// types.DeriveAddresses already collapses a self-transfer's From and
	// To into one TransactionAddress row, so a self-transfer is only ever
	// iterated once here; no separate "already notified on outgoing"
	// skip is needed on top of that.
	direction := directionFor(tx, addr.Address)

	dedupKey := cache.DedupKey("notify", fmt.Sprintf("%s:%s:%s", device.DeviceId, tx.Chain, tx.Hash))
	first, err := cache.Once(ctx, f.cache, dedupKey, replayWindow)
	if err != nil {
		return err
	}
	if !first {
		return nil
	}

	title, body := f.templates.Render(tx.Kind, direction, amountLabel(tx), counterpartyFor(tx, direction))
	out[device.DeviceId] = append(out[device.DeviceId], types.Notification{
		DeviceId: device.DeviceId,
		Title:    title,
		Body:     body,
		Data: map[string]string{
			"chain": string(tx.Chain),
			"hash":  tx.Hash,
		},
	})

	if addr.Address == tx.To {
		if err := f.publishFetchTokenAddresses(ctx, tx.Chain, addr.Address); err != nil {
			return err
		}
	}
	return nil
}

func (f *Fanout) publishNotifications(ctx context.Context, notifications []types.Notification) error {
	body, err := json.Marshal(types.NotificationsPayload{Notifications: notifications})
	if err != nil {
		return err
	}
	return f.broker.Publish(ctx, broker.QueueNotificationsPush, body)
}

// publishFetchTokenAddresses is the fan-out's token-discovery side effect: a
// recipient address gets its token balances re-scanned so new tokens
// show up automatically.
func (f *Fanout) publishFetchTokenAddresses(ctx context.Context, chain types.ChainId, address string) error {
	body, err := json.Marshal(types.ChainAddressPayload{Chain: chain, Address: address})
	if err != nil {
		return err
	}
	return f.broker.Publish(ctx, broker.QueueFetchTokenAddress, body)
}

func directionFor(tx types.Transaction, observed string) types.TransactionDirection {
	switch {
	case tx.From == observed && tx.To == observed:
		return types.DirectionSelfTransfer
	case tx.From == observed:
		return types.DirectionOutgoing
	case tx.To == observed:
		return types.DirectionIncoming
	default:
		return types.DirectionUnknown
	}
}

func amountLabel(tx types.Transaction) string {
	return fmt.Sprintf("%d %s", tx.Value, tx.Asset.String())
}

func counterpartyFor(tx types.Transaction, direction types.TransactionDirection) string {
	if direction == types.DirectionOutgoing {
		return tx.To
	}
	return tx.From
}
