package notify

import (
	"context"

	"github.com/chainvault/ingestor/types"
)

// Consumer adapts Fanout.Handle to consumer.MessageConsumer's
// ShouldProcess/Process shape, the way the Consumer Framework expects
// every queue's business logic to be plugged in.
type Consumer struct {
	fanout *Fanout
}

func NewConsumer(f *Fanout) *Consumer {
	return &Consumer{fanout: f}
}

// ShouldProcess never skips; the fanout's own per-device dedup cache
// (cache.Once on "dedup:notify:<device>:<chain>:<hash>") is the real gate.
func (c *Consumer) ShouldProcess(ctx context.Context, payload types.TransactionPayload) (bool, error) {
	return true, nil
}

func (c *Consumer) Process(ctx context.Context, payload types.TransactionPayload) (struct{}, error) {
	return struct{}{}, c.fanout.Handle(ctx, payload)
}
