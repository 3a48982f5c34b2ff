package consumer

import (
	"context"
	"sync"

	"github.com/chainvault/ingestor/internal/log"
)

// ChainConsumerRunner binds N independent Runner instances to the same
// logical queue, one per configured chain, so a malfunctioning provider
// for one chain never blocks delivery for another: the fan-out shape
// this repository needs for fetch_token_addresses, one goroutine per
// configured chain, each stopping when the shared ctx is canceled.
type ChainConsumerRunner struct {
	runners []chainRunner
}

type chainRunner struct {
	chain string
	run   func(ctx context.Context) error
}

// NewChainConsumerRunner returns an empty fan-out. Add binds one run
// function per chain (already bound to that chain's MessageConsumer),
// and Run starts and stops them together.
func NewChainConsumerRunner() *ChainConsumerRunner {
	return &ChainConsumerRunner{}
}

func (c *ChainConsumerRunner) Add(chain string, run func(ctx context.Context) error) {
	c.runners = append(c.runners, chainRunner{chain: chain, run: run})
}

// Run starts every bound runner and blocks until ctx is canceled and
// every goroutine has returned. A single chain's runner erroring does
// not stop the others; it is logged and that chain simply stops
// consuming until the next process restart.
func (c *ChainConsumerRunner) Run(ctx context.Context) {
	logger := log.NewModuleLogger(log.ModuleConsumer)
	var wg sync.WaitGroup
	for _, r := range c.runners {
		r := r
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := r.run(ctx); err != nil && ctx.Err() == nil {
				logger.Error("chain consumer runner exited", "chain", r.chain, "err", err)
			}
		}()
	}
	wg.Wait()
}
