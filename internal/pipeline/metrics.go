package pipeline

import (
	"time"

	"github.com/chainvault/ingestor/internal/metrics"
)

// Metrics publishes the per-chain gauges this package names, plus
// errors_total{error} recorded on every step-1/3 failed attempt; not
// only on loop-ending errors, so a chain that's retrying steadily still
// shows up distinctly from one that's wedged (original daemon behavior,
// silent in the distilled spec).
type Metrics struct {
	chain *metrics.Chain
}

func NewMetrics(chain string) *Metrics {
	return &Metrics{chain: metrics.NewChain(chain)}
}

func (m *Metrics) SetCurrentBlock(n int64) { m.chain.SetCurrentBlock(n) }
func (m *Metrics) SetLatestBlock(n int64)  { m.chain.SetLatestBlock(n) }
func (m *Metrics) SetEnabled(enabled bool) { m.chain.SetEnabled(enabled) }
func (m *Metrics) Touch(at time.Time)      { m.chain.Touch(at) }
func (m *Metrics) IncError(label string)   { m.chain.IncError(label) }
