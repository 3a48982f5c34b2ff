package notify

import (
	"context"

	"github.com/chainvault/ingestor/types"
)

// PushDispatcher is the notifications_push MessageConsumer. Delivery to
// a concrete push provider (FCM, APNs, web push) is out of core scope,
// the same boundary drawn around chainprovider's concrete RPC adapters,
// so this implementation logs the batch and acks; a production
// deployment swaps this for a provider-backed implementation behind the
// same interface.
type PushDispatcher struct{}

func NewPushDispatcher() *PushDispatcher {
	return &PushDispatcher{}
}

func (d *PushDispatcher) ShouldProcess(context.Context, types.NotificationsPayload) (bool, error) {
	return true, nil
}

func (d *PushDispatcher) Process(_ context.Context, payload types.NotificationsPayload) (int, error) {
	for _, n := range payload.Notifications {
		logger.Info("push notification dispatched", "device", n.DeviceId, "title", n.Title)
	}
	return len(payload.Notifications), nil
}
