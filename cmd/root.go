package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/bms/app"
	"github.com/kilianp07/bms/config"
	"github.com/kilianp07/bms/infra/logger"
)

var (
	cfgPath  string
	cycles   int
	interval time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "bms",
	Short: "Battery pack SoC estimation and thermal control",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runService(cmd, (*app.Service).Run)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (YAML or JSON)")
	rootCmd.PersistentFlags().IntVar(&cycles, "cycles", 0, "number of ticks to run, 0 runs until interrupted")
	rootCmd.PersistentFlags().DurationVar(&interval, "interval", 0, "pause between ticks, 0 runs unpaced")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// loadConfig loads the configuration and applies the flags that were set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	flags := cmd.Flags()
	if flags.Changed("cycles") {
		cfg.Simulation.Cycles = cycles
	}
	if flags.Changed("interval") {
		cfg.Simulation.IntervalMS = int(interval / time.Millisecond)
	}
	if err := cfg.Simulation.Validate(); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	if err := logger.Setup(cfg.Logging.Options()); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runService(cmd *cobra.Command, run func(*app.Service, context.Context) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	return run(svc, ctx)
}
