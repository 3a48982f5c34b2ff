package pipeline

import (
	"context"
	"sync"
)

// Manager starts one Worker per enabled chain and waits for all of them
// to return, mirroring consumer.ChainConsumerRunner's fan-out shape: one
// chain's worker erroring out never stops another chain's worker.
type Manager struct {
	workers []*Worker
}

func NewManager() *Manager {
	return &Manager{}
}

func (m *Manager) Add(w *Worker) {
	m.workers = append(m.workers, w)
}

// Run blocks until every worker's Run has returned, which happens once
// the shared shutdown signal fires and each worker finishes its
// in-flight iteration.
func (m *Manager) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, w := range m.workers {
		w := w
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := w.Run(ctx); err != nil {
				logger.Error("pipeline worker exited", "chain", w.chain, "err", err)
			}
		}()
	}
	wg.Wait()
}
