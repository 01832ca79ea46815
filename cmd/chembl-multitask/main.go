// Command chembl-multitask builds a multi-task bioactivity dataset from a
// ChEMBL database: extract, deduplicate and label, filter targets, and write
// the compound × target matrix artifact.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/katbiondi/chembl-multitask/internal/config"
	"github.com/katbiondi/chembl-multitask/internal/engine"
	"github.com/katbiondi/chembl-multitask/internal/engine/filter"
	"github.com/katbiondi/chembl-multitask/internal/engine/labeler"
	"github.com/katbiondi/chembl-multitask/internal/engine/matrix"
	"github.com/katbiondi/chembl-multitask/internal/logging"
	"github.com/katbiondi/chembl-multitask/internal/output/hdf5"
	"github.com/katbiondi/chembl-multitask/internal/pipeline"
	"github.com/katbiondi/chembl-multitask/internal/source"

	// Register source implementations.
	_ "github.com/katbiondi/chembl-multitask/internal/source/csvfile"
	_ "github.com/katbiondi/chembl-multitask/internal/source/postgres"
	_ "github.com/katbiondi/chembl-multitask/internal/source/sqlite"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "chembl-multitask",
		Short:         "Build a multi-task bioactivity dataset from ChEMBL",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newBuildCmd())
	root.AddCommand(newSourcesCmd())
	return root
}

// buildFlags are the CLI overrides layered on top of the environment config.
type buildFlags struct {
	provider    string
	dsn         string
	out         string
	ckptDir     string
	rulesPath   string
	radius      int
	bits        int
	workers     int
	minActive   int
	minInactive int
	minDocs     int
	logLevel    string
}

func newBuildCmd() *cobra.Command {
	var flags buildFlags
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Run the full extraction pipeline and write the dataset",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			applyFlags(&cfg, cmd, flags)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runBuild(cfg)
		},
	}

	cmd.Flags().StringVar(&flags.provider, "source", "", "source provider (postgres, sqlite, csv)")
	cmd.Flags().StringVar(&flags.dsn, "dsn", "", "database connection string or input file path")
	cmd.Flags().StringVar(&flags.out, "out", "", "output artifact path")
	cmd.Flags().StringVar(&flags.ckptDir, "checkpoint-dir", "", "directory for stage CSV dumps")
	cmd.Flags().StringVar(&flags.rulesPath, "rules", "", "YAML file replacing the built-in family rules")
	cmd.Flags().IntVar(&flags.radius, "radius", 0, "fingerprint radius")
	cmd.Flags().IntVar(&flags.bits, "bits", 0, "fingerprint length")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "fingerprint workers (0 = NumCPU)")
	cmd.Flags().IntVar(&flags.minActive, "min-active", 0, "minimum distinct active molecules per target")
	cmd.Flags().IntVar(&flags.minInactive, "min-inactive", 0, "minimum distinct inactive molecules per target")
	cmd.Flags().IntVar(&flags.minDocs, "min-docs", 0, "minimum distinct documents per target")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	return cmd
}

// applyFlags overrides config values with explicitly set flags.
func applyFlags(cfg *config.Config, cmd *cobra.Command, flags buildFlags) {
	set := cmd.Flags().Changed
	if set("source") {
		cfg.Source.Provider = flags.provider
	}
	if set("dsn") {
		cfg.Source.DSN = flags.dsn
	}
	if set("out") {
		cfg.Output.Path = flags.out
	}
	if set("checkpoint-dir") {
		cfg.Output.CheckpointDir = flags.ckptDir
	}
	if set("rules") {
		cfg.Labeling.RulesPath = flags.rulesPath
	}
	if set("radius") {
		cfg.Fingerprint.Radius = flags.radius
	}
	if set("bits") {
		cfg.Fingerprint.NumBits = flags.bits
	}
	if set("workers") {
		cfg.Fingerprint.Workers = flags.workers
	}
	if set("min-active") {
		cfg.Filter.MinActive = flags.minActive
	}
	if set("min-inactive") {
		cfg.Filter.MinInactive = flags.minInactive
	}
	if set("min-docs") {
		cfg.Filter.MinDocs = flags.minDocs
	}
	if set("log-level") {
		cfg.LogLevel = flags.logLevel
	}
}

func runBuild(cfg config.Config) error {
	logging.Init(logging.ParseLevel(cfg.LogLevel))

	labelCfg := labeler.Config{DefaultThreshold: cfg.Labeling.DefaultThreshold}
	if cfg.Labeling.RulesPath != "" {
		threshold, rules, err := labeler.LoadRules(cfg.Labeling.RulesPath)
		if err != nil {
			return err
		}
		labelCfg.DefaultThreshold = threshold
		labelCfg.Rules = rules
		log.Info("loaded labeling rules", "path", cfg.Labeling.RulesPath, "rules", len(rules))
	}

	builder, err := matrix.New(matrix.Config{
		Radius:  cfg.Fingerprint.Radius,
		NumBits: cfg.Fingerprint.NumBits,
		Workers: cfg.Fingerprint.Workers,
	})
	if err != nil {
		return err
	}

	eng := engine.New(
		labeler.New(labelCfg),
		filter.New(filter.Config{
			MinActive:   cfg.Filter.MinActive,
			MinInactive: cfg.Filter.MinInactive,
			MinDocs:     cfg.Filter.MinDocs,
		}),
		builder,
	)

	writer, err := hdf5.New(cfg.Output.Path)
	if err != nil {
		return err
	}

	ctor, err := source.Get(cfg.Source.Provider)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p := pipeline.New(ctor(), eng, writer, cfg.Output.CheckpointDir)
	log.Info("starting pipeline", "source", cfg.Source.Provider, "out", cfg.Output.Path)
	if err := p.Run(ctx, source.Config{Provider: cfg.Source.Provider, DSN: cfg.Source.DSN}); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	return nil
}

func newSourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List registered source providers",
		Run: func(cmd *cobra.Command, _ []string) {
			for _, name := range source.Providers() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}
}
