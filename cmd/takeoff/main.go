package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/uvafan/toy-takeoff-modeling/internal/bank"
	"github.com/uvafan/toy-takeoff-modeling/internal/config"
	"github.com/uvafan/toy-takeoff-modeling/internal/logging"
	"github.com/uvafan/toy-takeoff-modeling/internal/metrics"
	"github.com/uvafan/toy-takeoff-modeling/internal/montecarlo"
	"github.com/uvafan/toy-takeoff-modeling/internal/plan"
	"github.com/uvafan/toy-takeoff-modeling/internal/reporter"
	"github.com/uvafan/toy-takeoff-modeling/internal/ui"
)

type options struct {
	configPath  string
	trials      int
	seed        uint64
	workers     int
	json        bool
	logLevel    string
	color       string
	metricsOut  string
	writeSample string
	showPlan    bool
	milestones  bool
	logo        bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "takeoff",
		Short: "Monte Carlo simulation of AI milestone timelines",
		Long: `Takeoff samples many independent timelines of AI milestones, each milestone
drawn from its own distribution (absolute, or relative to an earlier
milestone, with a chance of never happening), and reports how long it takes
to get from each start milestone to its end milestone.

Without --config the built-in AI takeoff scenario is used.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "YAML configuration file (default: built-in scenario)")
	f.IntVarP(&opts.trials, "trials", "n", config.DefaultTrials, "Number of trials")
	f.Uint64Var(&opts.seed, "seed", 0, "Random seed (default: from config, else derived from the clock)")
	f.IntVarP(&opts.workers, "workers", "w", 0, "Parallel workers (0 = GOMAXPROCS)")
	f.BoolVar(&opts.json, "json", false, "Machine-readable JSON output")
	f.StringVar(&opts.logLevel, "log-level", "", "Log level: info, debug or trace (default: from config)")
	f.StringVar(&opts.color, "color", ui.ColorAuto, "Colorize output: auto, always or never")
	f.StringVar(&opts.metricsOut, "metrics-out", "", "Write run metrics in Prometheus textfile format")
	f.StringVar(&opts.writeSample, "write-sample", "", "Write the built-in scenario to a file and exit")
	f.BoolVar(&opts.showPlan, "plan", false, "Print the expected-value plan before the results")
	f.BoolVar(&opts.milestones, "milestones", false, "Include the per-milestone occurrence table")
	f.BoolVar(&opts.logo, "logo", false, "Print the banner")

	return cmd
}

func run(cmd *cobra.Command, opts options) error {
	out := cmd.OutOrStdout()

	outFile, _ := out.(*os.File)
	if err := ui.Configure(opts.color, outFile); err != nil {
		return err
	}

	if opts.writeSample != "" {
		if err := os.WriteFile(opts.writeSample, []byte(config.SampleYAML), 0644); err != nil {
			return fmt.Errorf("write sample: %w", err)
		}
		fmt.Fprintf(out, "Wrote sample configuration to %s\n", opts.writeSample)
		return nil
	}

	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	logger := logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr())
	seed := resolveSeed(cfg, logger)

	b, err := bank.New(cfg.Milestones)
	if err != nil {
		return fmt.Errorf("build milestone bank: %w", err)
	}

	runner, err := montecarlo.New(b, cfg.Pairs, montecarlo.Config{
		Trials:  cfg.Trials,
		Workers: cfg.Workers,
		Seed:    seed,
	})
	if err != nil {
		return fmt.Errorf("create runner: %w", err)
	}
	rec := metrics.New()
	runner.Metrics = rec
	runner.Logger = logger

	if opts.logo && !opts.json {
		ui.PrintLogo(cmd.ErrOrStderr())
	}

	if opts.showPlan && !opts.json {
		p, err := plan.Analyze(b)
		if err != nil {
			return fmt.Errorf("analyze plan: %w", err)
		}
		reporter.PrintPlan(out, p)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	rs, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	if opts.metricsOut != "" {
		if err := rec.WriteTextfile(opts.metricsOut); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
		logger.Debug("metrics written", "path", opts.metricsOut)
	}

	rpt := reporter.New(rs)
	if opts.json {
		data, err := rpt.JSON()
		if err != nil {
			return err
		}
		return outputJSON(out, data)
	}

	if opts.milestones {
		rpt.PrintMilestones(out)
	}
	rpt.PrintReport(out)
	return nil
}

// loadConfig reads the configuration bundle and applies command-line
// overrides on top of the file and environment.
func loadConfig(cmd *cobra.Command, opts options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("trials") {
		cfg.Trials = opts.trials
	}
	if flags.Changed("seed") {
		seed := opts.seed
		cfg.Seed = &seed
	}
	if flags.Changed("workers") {
		cfg.Workers = opts.workers
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = opts.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveSeed returns the configured seed, or derives one from the clock and
// logs it so the run can be reproduced.
func resolveSeed(cfg *config.Config, logger *slog.Logger) uint64 {
	if cfg.Seed != nil {
		return *cfg.Seed
	}
	seed := uint64(time.Now().UnixNano())
	logger.Info("no seed configured, derived from clock", "seed", seed)
	return seed
}

// --- Output helpers ---

func outputJSON(w io.Writer, data []byte) error {
	_, err := fmt.Fprintln(w, string(data))
	return err
}
