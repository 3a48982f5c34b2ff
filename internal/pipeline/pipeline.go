// Package pipeline runs the block-ingestion loop: one
// worker per chain drives current_block toward latest_block, fetching,
// normalizing, persisting, and publishing each intervening block.
//
// The bounded parallel-fetch pool uses a fixed number of goroutines
// draining a jobs channel, rather than one goroutine per block, so a
// long backlog can't spawn unbounded concurrent fetches.
package pipeline

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/chainvault/ingestor/internal/broker"
	"github.com/chainvault/ingestor/internal/chainprovider"
	"github.com/chainvault/ingestor/internal/log"
	"github.com/chainvault/ingestor/internal/parserstate"
	"github.com/chainvault/ingestor/internal/repository"
	"github.com/chainvault/ingestor/internal/scheduler"
	"github.com/chainvault/ingestor/internal/shutdown"
	"github.com/chainvault/ingestor/types"
)

var logger = log.NewModuleLogger(log.ModulePipeline)

// Config tunes one chain's Worker. Zero values fall back to the
// chain's registry defaults (types.PropertiesOf).
type Config struct {
	BatchSize          int64
	PollInterval       time.Duration
	MaxParallelFetches int
}

// Worker drives the 9-step loop for exactly one chain. The concurrency
// invariant this package enforces ("exactly one worker per chain") is the
// caller's responsibility: a Worker owns current_block locally and
// never re-reads it from the store mid-run, so two Workers for the
// same chain would race; the owner (cmd/ingestor) must never start two.
type Worker struct {
	chain    types.ChainId
	props    types.ChainProperties
	provider chainprovider.Provider
	repo     repository.Repository
	store    parserstate.Store
	broker   broker.Broker
	reporter *scheduler.JobStatusReporter
	shutdown *shutdown.Signal
	metrics  *Metrics

	batchSize    int64
	pollInterval time.Duration
	maxParallel  int
	jobName      string

	current int64
}

func NewWorker(chain types.ChainId, provider chainprovider.Provider, repo repository.Repository, store parserstate.Store, brk broker.Broker, reporter *scheduler.JobStatusReporter, sig *shutdown.Signal, cfg Config) *Worker {
	props := types.PropertiesOf(chain)

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = props.DefaultBatchSize
	}
	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = props.DefaultPollInterval
	}
	maxParallel := cfg.MaxParallelFetches
	if maxParallel <= 0 {
		maxParallel = 4
	}

	return &Worker{
		chain:        chain,
		props:        props,
		provider:     provider,
		repo:         repo,
		store:        store,
		broker:       brk,
		reporter:     reporter,
		shutdown:     sig,
		metrics:      NewMetrics(string(chain)),
		batchSize:    batchSize,
		pollInterval: pollInterval,
		maxParallel:  maxParallel,
		jobName:      "parser_" + string(chain),
	}
}

// Run makes sure the chain has a ParserState row, loads its current
// block once, then drives the 9-step loop until the shutdown signal
// fires. A fired signal is only
// observed between iterations (scenario 6, "shutdown mid-batch"): a
// batch already underway runs to completion, persists, advances
// current_block, and reports success before the loop exits.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.store.EnsureRows(ctx, []types.ChainId{w.chain}); err != nil {
		return err
	}
	if err := w.loadCurrent(ctx); err != nil {
		return err
	}
	w.metrics.SetEnabled(true)

	for {
		if w.shutdown.Fired() {
			return nil
		}

		wait := w.runIteration(ctx)
		if wait <= 0 {
			continue
		}
		if !sleepOrShutdown(ctx, w.shutdown, wait) {
			return nil
		}
	}
}

func (w *Worker) loadCurrent(ctx context.Context) error {
	states, err := w.store.GetAll(ctx)
	if err != nil {
		return err
	}
	for _, s := range states {
		if s.Chain == w.chain {
			w.current = s.CurrentBlock
			return nil
		}
	}
	return nil
}

// runIteration performs one pass of steps 1-9 and returns how long the
// caller should idle before the next pass (0 means "try again now").
func (w *Worker) runIteration(ctx context.Context) time.Duration {
	start := time.Now()

	// Step 1: sense head.
	latest, err := w.provider.GetLatestBlock(ctx)
	if err != nil {
		w.metrics.IncError(err.Error())
		logger.Warn("sense head failed, backing off", "chain", w.chain, "err", err)
		return w.pollInterval
	}
	w.metrics.SetLatestBlock(latest)

	// Step 2: compute batch.
	to := w.current + w.batchSize
	if to > latest {
		to = latest
	}
	if to <= w.current {
		return w.pollInterval
	}

	// Step 3: fetch blocks (current, to] up to maxParallel at once,
	// joined and ordered by block number before normalization.
	txs, err := w.fetchRange(ctx, w.current, to)
	if err != nil {
		w.metrics.IncError(err.Error())
		if chainprovider.IsRetryLater(err) {
			logger.Info("block not yet available, backing off", "chain", w.chain, "err", err)
		} else {
			logger.Error("fetch failed, backing off", "chain", w.chain, "err", err)
		}
		return w.pollInterval
	}

	// Step 4: normalize and filter.
	kept := w.filter(ctx, txs)

	// Persist and publish one block at a time so each
	// repository write is atomic per block, not across
	// the whole batch; this is what lets an in-progress iteration
	// "complete block-by-block" after a shutdown signal fires
	// mid-batch rather than aborting outright. Reorg policy:
	// UpsertTransactions is keyed on (chain, hash) only, so a different
	// hash at a previously-seen position is inserted as a new row;
	// history is never rewritten.
	byBlock := make(map[int64][]types.Transaction, to-w.current)
	for _, t := range kept {
		byBlock[t.BlockNumber] = append(byBlock[t.BlockNumber], t)
	}
	for block := w.current + 1; block <= to; block++ {
		blockTxs := byBlock[block]
		if len(blockTxs) == 0 {
			continue
		}
		if err := w.repo.UpsertTransactions(ctx, blockTxs); err != nil {
			w.reportError(ctx, err)
			return w.pollInterval
		}
		if err := w.publish(ctx, blockTxs); err != nil {
			w.reportError(ctx, err)
			return w.pollInterval
		}
	}

	// Step 8: advance.
	if err := w.store.SetCurrentBlock(ctx, w.chain, to); err != nil {
		w.reportError(ctx, err)
		return w.pollInterval
	}
	w.current = to
	w.metrics.SetCurrentBlock(to)
	w.metrics.Touch(time.Now())

	// Step 9: report.
	duration := time.Since(start)
	if err := w.reporter.ReportSuccess(ctx, w.jobName, w.pollInterval, duration); err != nil {
		logger.Warn("report success failed", "chain", w.chain, "err", err)
	}

	if to < latest {
		return 0
	}
	return w.pollInterval
}

func (w *Worker) reportError(ctx context.Context, err error) {
	w.metrics.IncError(err.Error())
	logger.Error("pipeline iteration failed", "chain", w.chain, "err", err)
	if rErr := w.reporter.ReportError(ctx, w.jobName, w.pollInterval, err.Error()); rErr != nil {
		logger.Warn("report error failed", "chain", w.chain, "err", rErr)
	}
}

type blockResult struct {
	number int64
	txs    []types.Transaction
	err    error
}

// fetchRange fetches every block in (from, to] with up to maxParallel
// requests in flight, then joins the results in block-number order so
// step 4 sees a deterministic, sorted stream regardless of completion
// order. The first error found scanning in order aborts the whole
// batch: no partial persist, matching "no state mutation" on failure.
func (w *Worker) fetchRange(ctx context.Context, from, to int64) ([]types.Transaction, error) {
	n := int(to - from)
	jobs := make(chan int64, n)
	results := make(chan blockResult, n)

	workers := w.maxParallel
	if workers > n {
		workers = n
	}
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for number := range jobs {
				txs, err := w.provider.GetTransactions(ctx, number)
				results <- blockResult{number: number, txs: txs, err: err}
			}
		}()
	}
	for b := from + 1; b <= to; b++ {
		jobs <- b
	}
	close(jobs)
	wg.Wait()
	close(results)

	byNumber := make(map[int64]blockResult, n)
	for r := range results {
		byNumber[r.number] = r
	}

	numbers := make([]int64, 0, n)
	for num := range byNumber {
		numbers = append(numbers, num)
	}
	sort.Slice(numbers, func(i, j int) bool { return numbers[i] < numbers[j] })

	var all []types.Transaction
	for _, num := range numbers {
		r := byNumber[num]
		if r.err != nil {
			return nil, r.err
		}
		all = append(all, r.txs...)
	}
	return all, nil
}

// filter implements step 4: drop indeterminate-state transactions, dust
// below the chain's minimum transfer amount, and outdated-and-unknown
// transactions. An outdated transaction that's already persisted is
// kept so the upsert still runs (it may carry updated fields).
func (w *Worker) filter(ctx context.Context, txs []types.Transaction) []types.Transaction {
	now := time.Now()
	out := make([]types.Transaction, 0, len(txs))
	for _, t := range txs {
		if t.State == types.TransactionStateUnknown {
			continue
		}
		if t.Kind == types.TransactionKindTransfer && t.Value < w.props.MinimumTransferAmount {
			continue
		}
		if t.IsOutdated(now, w.props.OutdatedThreshold) {
			_, known, err := w.repo.GetTransactionByHash(ctx, t.Chain, t.Hash)
			if err != nil {
				logger.Warn("known-transaction lookup failed, dropping conservatively", "chain", w.chain, "hash", t.Hash, "err", err)
				continue
			}
			if !known {
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

// publish emits one TransactionPayload per persisted transaction,
// batched per call but always after the repository commit.
func (w *Worker) publish(ctx context.Context, txs []types.Transaction) error {
	for _, t := range txs {
		payload := types.TransactionPayload{Transaction: t, Addresses: types.DeriveAddresses(t)}
		body, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		if err := w.broker.Publish(ctx, broker.QueueChainTransactions, body); err != nil {
			return err
		}
	}
	return nil
}

func sleepOrShutdown(ctx context.Context, sig *shutdown.Signal, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-sig.Done():
		return false
	case <-ctx.Done():
		return false
	}
}
