// Command ingestor is the chain-ingestion-and-notification process.
// One positional role argument selects what the process does: parser,
// notifier, consumer-<queue>, or jobs-<group>; cmd/kcn's single
// urfave/cli app with a Before/Action pair is the shape this mirrors,
// generalized from "run the node" to "run the requested role."
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"

	"github.com/chainvault/ingestor/internal/config"
	"github.com/chainvault/ingestor/internal/log"
	"github.com/chainvault/ingestor/internal/shutdown"
)

var logger = log.NewModuleLogger(log.ModuleCmd)

var (
	configFlag = cli.StringFlag{
		Name:   "config",
		Usage:  "path to the TOML config file",
		EnvVar: "INGESTOR_CONFIG",
	}
	dryRunFlag = cli.BoolFlag{
		Name:  "dry-run",
		Usage: "validate the requested role's plan and exit without starting it",
	}
	verboseFlag = cli.BoolFlag{
		Name:  "verbose",
		Usage: "enable debug-level logging",
	}
)

// exitError carries a specific process exit code through cli.App.Run,
// which otherwise only distinguishes "no error" from "error."
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "ingestor"
	app.Usage = "chain ingestion and notification process"
	app.ArgsUsage = "<parser|notifier|consumer-<queue>|jobs-<group>>"
	app.Flags = []cli.Flag{configFlag, dryRunFlag, verboseFlag}
	app.Action = run
	return app
}

func run(c *cli.Context) error {
	log.SetLevel(c.Bool(verboseFlag.Name))

	role := c.Args().First()
	if role == "" {
		cli.ShowAppHelp(c)
		return &exitError{code: 2, err: fmt.Errorf("missing role argument")}
	}

	cfg, err := config.Load(c.String(configFlag.Name))
	if err != nil {
		return &exitError{code: 2, err: fmt.Errorf("load config: %w", err)}
	}

	sig := shutdown.New()
	dryRun := c.Bool(dryRunFlag.Name)

	res, err := connect(cfg, sig, dryRun)
	if err != nil {
		return &exitError{code: 2, err: err}
	}
	defer res.close()

	p, err := resolveRole(res, role)
	if err != nil {
		return &exitError{code: 2, err: err}
	}

	logger.Info("resolved role plan", "role", role, "plan", p.summary)
	if dryRun {
		fmt.Println(p.summary)
		return nil
	}

	notifyOnSignal(sig)

	ctx := sig.Context(context.Background())
	clean := p.run(ctx, sig)
	if !clean {
		return &exitError{code: 1, err: fmt.Errorf("role %q did not drain within the grace window", role)}
	}
	return nil
}

// notifyOnSignal fires sig on SIGINT/SIGTERM, the cooperative trigger
// every long-lived loop in this process observes between iterations.
func notifyOnSignal(sig *shutdown.Signal) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-ch
		logger.Info("received signal, starting graceful shutdown", "signal", s.String())
		sig.Fire()
	}()
}

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		if ee, ok := err.(*exitError); ok {
			fmt.Fprintln(os.Stderr, ee.err)
			os.Exit(ee.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
