// Command analyze compares the control and test campaign exports and writes
// KPI tables, significance tests and charts.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/AngelCh415/campaign-ab/internal/config"
	"github.com/AngelCh415/campaign-ab/internal/logging"
	"github.com/AngelCh415/campaign-ab/internal/pipeline"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyse a control/test campaign A/B experiment",
		Long: `analyze loads the control and test daily campaign exports, computes CTR,
conversion rate, CPA and ROAS per variant, runs two-sample t-tests on the
configured daily counters and writes the result tables, charts and a console
summary.

Configuration is layered: built-in defaults, then the YAML file given by
--config (or ` + config.DefaultPath + ` when present), then ABTEST_* environment
variables, e.g. ABTEST_SIGNIFICANCE_ALPHA=0.01.`,
		Version:      version,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, cfgPath)
		},
	}
	cmd.Flags().StringVar(&cfgPath, "config", "", "YAML config file (default "+config.DefaultPath+" if present)")
	return cmd
}

func run(cmd *cobra.Command, cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	log, err := logging.NewWithWriter(cfg.Log, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	res, err := pipeline.New(cfg, log, cmd.OutOrStdout()).Run(cmd.Context())
	if err != nil {
		log.Error("analysis failed", zap.Error(err))
		return err
	}
	log.Info("analysis complete",
		zap.String("run_id", res.RunID),
		zap.String("results_dir", cfg.Output.ResultsDir),
		zap.Strings("tables", res.Tables),
		zap.Strings("charts", res.Charts))
	return nil
}
