package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chainvault/ingestor/internal/broker"
	"github.com/chainvault/ingestor/internal/cache"
	"github.com/chainvault/ingestor/internal/consumer"
	"github.com/chainvault/ingestor/internal/discovery"
	"github.com/chainvault/ingestor/internal/notify"
	"github.com/chainvault/ingestor/internal/pipeline"
	"github.com/chainvault/ingestor/internal/scheduler"
	"github.com/chainvault/ingestor/internal/shutdown"
	"github.com/chainvault/ingestor/types"
)

const drainGrace = 30 * time.Second

// plan is what a role resolves to before anything is started: a short,
// human-readable summary (for --dry-run and logging) and the function
// that actually runs it and reports whether shutdown drained cleanly.
type plan struct {
	summary string
	run     func(ctx context.Context, sig *shutdown.Signal) (clean bool)
}

// resolveRole turns the CLI's positional role argument into a plan,
// without starting anything; this split is what lets --dry-run
// validate a role and exit 0 without touching the broker or database.
func resolveRole(r *resources, role string) (plan, error) {
	switch {
	case role == "parser":
		return planParser(r)
	case role == "notifier":
		return planConsumer(r, broker.QueueChainTransactions)
	case strings.HasPrefix(role, "consumer-"):
		return planConsumer(r, broker.QueueName(strings.TrimPrefix(role, "consumer-")))
	case strings.HasPrefix(role, "jobs-"):
		return planJobs(r, strings.TrimPrefix(role, "jobs-"))
	default:
		return plan{}, fmt.Errorf("unknown role %q (want parser, notifier, consumer-<queue>, or jobs-<group>)", role)
	}
}

// planParser starts one pipeline.Worker per enabled chain that also has
// a registered provider. Concrete per-chain providers are out of core
// scope (see internal/chainprovider), so an enabled chain with no
// provider registered is logged and skipped; planParser returns an error
// only when that leaves no chain to run.
func planParser(r *resources) (plan, error) {
	mgr := pipeline.NewManager()
	var names []string
	for name, chainCfg := range r.cfg.Chains {
		if !chainCfg.Enabled {
			continue
		}
		chain := types.ChainId(name)
		provider, err := r.providers.Get(chain)
		if err != nil {
			logger.Warn("chain enabled but no provider registered, skipping", "chain", chain)
			continue
		}
		w := pipeline.NewWorker(chain, provider, r.repo, r.store, r.broker, r.reporter, r.shutdownSignal(), pipeline.Config{
			BatchSize:          int64(chainCfg.BatchSize),
			PollInterval:       chainCfg.PollInterval,
			MaxParallelFetches: chainCfg.MaxParallelFetches,
		})
		mgr.Add(w)
		names = append(names, name)
	}
	if len(names) == 0 {
		return plan{}, fmt.Errorf("parser role: no enabled chain has a registered provider")
	}

	summary := fmt.Sprintf("parser: %d chain worker(s): %s", len(names), strings.Join(names, ", "))
	return plan{summary: summary, run: func(ctx context.Context, sig *shutdown.Signal) bool {
		mgr.Run(ctx)
		return true
	}}, nil
}

// planConsumer binds the one MessageConsumer this codebase defines for
// queue, matching the framework's "binds to one queue" shape. The
// fetch_token_addresses queue additionally fans out through
// ChainConsumerRunner, one consumer.Runner goroutine per enabled chain,
// exercising the runner-per-chain helper the framework provides.
func planConsumer(r *resources, queue broker.QueueName) (plan, error) {
	prefetch := r.cfg.Consumer.Prefetch

	switch queue {
	case broker.QueueChainTransactions:
		mc := notify.NewConsumer(notify.NewFanout(r.repo, r.cache, r.broker))
		run := consumer.NewRunner[types.TransactionPayload, struct{}](queue, r.broker, r.cache, mc, nil, 0, prefetch)
		return plan{summary: "consumer: " + string(queue), run: func(ctx context.Context, sig *shutdown.Signal) bool {
			return runConsumer(ctx, sig, run.Run)
		}}, nil

	case broker.QueueFetchTokenAddress:
		mc := discovery.NewTokenAddressConsumer(r.providers, r.repo, r.broker)
		dedupKey := func(msg types.ChainAddressPayload) string {
			return cache.DedupKey("discover", string(msg.Chain)+":"+msg.Address)
		}
		chainRunner := consumer.NewChainConsumerRunner()
		var chains []string
		for name, chainCfg := range r.cfg.Chains {
			if !chainCfg.Enabled {
				continue
			}
			run := consumer.NewRunner[types.ChainAddressPayload, int](queue, r.broker, r.cache, mc, dedupKey, 5*time.Minute, prefetch)
			chainRunner.Add(name, run.Run)
			chains = append(chains, name)
		}
		if len(chains) == 0 {
			return plan{}, fmt.Errorf("consumer-%s role: no enabled chains configured", queue)
		}
		summary := fmt.Sprintf("consumer: %s fanned out over %d chain(s): %s", queue, len(chains), strings.Join(chains, ", "))
		return plan{summary: summary, run: func(ctx context.Context, sig *shutdown.Signal) bool {
			done := make(chan struct{})
			go func() { chainRunner.Run(ctx); close(done) }()
			return waitDrain(sig, done)
		}}, nil

	case broker.QueueFetchAssets:
		mc := discovery.NewAssetConsumer(r.providers, r.repo)
		run := consumer.NewRunner[[]types.AssetId, int](queue, r.broker, r.cache, mc, nil, 0, prefetch)
		return plan{summary: "consumer: " + string(queue), run: func(ctx context.Context, sig *shutdown.Signal) bool {
			return runConsumer(ctx, sig, run.Run)
		}}, nil

	case broker.QueueNotificationsPush:
		mc := notify.NewPushDispatcher()
		run := consumer.NewRunner[types.NotificationsPayload, int](queue, r.broker, r.cache, mc, nil, 0, prefetch)
		return plan{summary: "consumer: " + string(queue), run: func(ctx context.Context, sig *shutdown.Signal) bool {
			return runConsumer(ctx, sig, run.Run)
		}}, nil

	default:
		return plan{}, fmt.Errorf("unknown queue %q", queue)
	}
}

// runConsumer drives a single Runner.Run under the shared shutdown
// signal, applying the grace-window drain every role requires.
func runConsumer(ctx context.Context, sig *shutdown.Signal, run func(ctx context.Context) error) bool {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("consumer exited with error", "err", err)
		}
	}()
	return waitDrain(sig, done)
}

func waitDrain(sig *shutdown.Signal, done chan struct{}) bool {
	<-sig.Done()
	return shutdown.WaitGrace(done, drainGrace)
}

// knownJobGroups maps a jobs-<group> role to the named jobs the
// job.<name>.interval config table configures, restricted to what
// the repository actually exposes (device/transaction housekeeping);
// a richer "assets" refresh job needs a "list known assets" repository
// method this pack's Repository interface doesn't have, so it is not
// implemented here.
var knownJobGroups = map[string][]string{
	"housekeeping": {"device_gc", "transaction_retention"},
}

const (
	staleDeviceThreshold = 30 * 24 * time.Hour
	transactionRetention = 90 * 24 * time.Hour
)

func planJobs(r *resources, group string) (plan, error) {
	jobNames, ok := knownJobGroups[group]
	if !ok {
		return plan{}, fmt.Errorf("unknown job group %q", group)
	}

	builder := scheduler.NewPlanBuilder()
	for _, name := range jobNames {
		jobCfg, configured := r.cfg.Job[name]
		interval := jobCfg.Interval
		if !configured || interval <= 0 {
			interval = time.Hour
		}
		builder.AddJob(name, interval, jobRun(r, name))
	}
	p, err := builder.Build()
	if err != nil {
		return plan{}, err
	}

	schedule := scheduler.NewJobSchedule(r.cache)
	return plan{summary: fmt.Sprintf("jobs-%s: %s", group, strings.Join(jobNames, ", ")), run: func(ctx context.Context, sig *shutdown.Signal) bool {
		runner := scheduler.NewRunner(p, schedule, r.reporter, sig, drainGrace)
		stuck := runner.Run(ctx)
		if len(stuck) > 0 {
			logger.Error("jobs still running past grace deadline", "jobs", stuck)
			return false
		}
		return true
	}}, nil
}

func jobRun(r *resources, name string) func(ctx context.Context) error {
	switch name {
	case "device_gc":
		return func(ctx context.Context) error {
			stale, err := r.repo.InactiveDevices(ctx, time.Now().Add(-staleDeviceThreshold))
			if err != nil {
				return err
			}
			logger.Info("device_gc found inactive devices", "count", len(stale))
			return nil
		}
	case "transaction_retention":
		return func(ctx context.Context) error {
			n, err := r.repo.DeleteTransactionsOlderThan(ctx, time.Now().Add(-transactionRetention))
			if err != nil {
				return err
			}
			logger.Info("transaction_retention deleted old rows", "count", n)
			return nil
		}
	default:
		return func(context.Context) error { return fmt.Errorf("no run function for job %q", name) }
	}
}
