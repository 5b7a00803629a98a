// Command listbench compares a virtualized list with an eagerly laid out one.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"gioui.org/app"
	"gioui.org/unit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"git.sr.ht/~gioverse/listbench/async"
	"git.sr.ht/~gioverse/listbench/config"
	"git.sr.ht/~gioverse/listbench/gen"
	"git.sr.ht/~gioverse/listbench/metrics"
	"git.sr.ht/~gioverse/listbench/profile"
	"git.sr.ht/~gioverse/listbench/regen"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// options are the command line overrides for the config file.
type options struct {
	configPath string
	flags      config.Config
	eager      bool
	seed       int64
	count      int
}

func newRootCmd() *cobra.Command {
	var opts options
	root := &cobra.Command{
		Use:           "listbench",
		Short:         "Compare a virtualized list with an eagerly laid out list",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUI(cmd, opts)
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "config file (.toml, .yaml, .yml or .json)")
	pf.StringVar(&opts.flags.LogLevel, "log-level", "", "log level: debug|info|warn|error")

	f := root.Flags()
	f.IntVar(&opts.flags.DefaultCount, "count", 0, "initial number of items")
	f.IntVar(&opts.flags.Workers, "workers", 0, "workers generating item lists")
	f.DurationVar((*time.Duration)(&opts.flags.Settle), "settle", 0, "settling interval before a requested count is generated")
	f.BoolVar(&opts.eager, "eager", false, "start with the eager list instead of the virtualized one")
	f.StringVar(&opts.flags.Profile, "profile", "", "create the provided kind of profile. Use one of "+profile.Help())
	f.StringVar(&opts.flags.MetricsAddr, "metrics-addr", "", "serve /metrics and /status on this address")

	genCmd := &cobra.Command{
		Use:   "generate",
		Short: "Print a generated item list without opening a window",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts)
		},
	}
	genCmd.Flags().IntVar(&opts.count, "count", 10, "number of items")
	genCmd.Flags().Int64Var(&opts.seed, "seed", 0, "random seed (0 picks one)")
	root.AddCommand(genCmd)
	return root
}

// loadConfig merges flags over the config file over the defaults.
func loadConfig(opts options) (config.Config, error) {
	base := config.Default()
	if opts.configPath != "" {
		file, err := config.Load(opts.configPath)
		if err != nil {
			return config.Config{}, err
		}
		base = file.Merge(base)
	}
	cfg := opts.flags
	if opts.eager {
		lazy := false
		cfg.Lazy = &lazy
	}
	cfg = cfg.Merge(base)
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newLogger(level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("parsing log level: %w", err)
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(lvl).
		With().Timestamp().Str("app", "listbench").
		Logger(), nil
}

func runUI(cmd *cobra.Command, opts options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	popt, err := profile.Parse(cfg.Profile)
	if err != nil {
		return err
	}

	ctrl := &regen.Controller{
		Initial:   cfg.DefaultCount,
		Settle:    cfg.Settle.Std(),
		Generator: &gen.Generator{},
		Scheduler: &async.FixedWorkerPool{Workers: cfg.Workers},
		Logger:    log.With().Str("component", "regen").Logger(),
	}
	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		observer := metrics.NewRegen()
		if err := observer.Register(reg); err != nil {
			return fmt.Errorf("registering metrics: %w", err)
		}
		ctrl.Observer = observer
		srv := &metrics.Server{
			Addr:    cfg.MetricsAddr,
			Handler: metrics.NewRouter(reg, ctrl),
			Logger:  log,
		}
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		go func() {
			if err := srv.Run(ctx); err != nil {
				log.Error().Err(err).Msg("metrics server stopped")
			}
		}()
	}

	go func() {
		w := app.NewWindow(
			app.Title("List benchmark"),
			app.Size(unit.Dp(480), unit.Dp(800)),
		)
		err := loop(w, cfg, ctrl, popt.NewProfiler(log), log)
		ctrl.Close()
		if err != nil {
			log.Error().Err(err).Msg("premature window close")
			os.Exit(1)
		}
		os.Exit(0)
	}()
	// Surrender main thread to OS.
	// Necessary for certain platforms.
	app.Main()
	return nil
}

func runGenerate(cmd *cobra.Command, opts options) error {
	g := &gen.Generator{}
	if opts.seed != 0 {
		g = gen.New(opts.seed)
	}
	out := cmd.OutOrStdout()
	for _, it := range g.Generate(opts.count) {
		if _, err := fmt.Fprintf(out, "%d\t%s\t%s\n", it.ID, it.Title, it.Description); err != nil {
			return fmt.Errorf("writing items: %w", err)
		}
	}
	return nil
}
