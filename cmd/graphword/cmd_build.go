package main

import (
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sanonone/graphword/pkg/builder"
	"github.com/sanonone/graphword/pkg/config"
)

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyBuildFlags(cmd, &cfg)

	bc := cfg.Builder
	opts := builder.DefaultOptions(bc.VocabularyPath, bc.OutputPath)
	opts.MinWordLength = bc.MinWordLength
	opts.MaxWordLength = bc.MaxWordLength
	opts.Pace = bc.Pace
	opts.CrossLength = bc.CrossLength
	opts.Workers = bc.Workers

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	if err := builder.New(opts).Run(ctx); err != nil {
		return err
	}
	slog.Info("Graph build finished", "output", opts.OutputPath, "duration", time.Since(start).String())
	return nil
}

func applyBuildFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("vocabulary") {
		cfg.Builder.VocabularyPath = vocabPath
	}
	if flags.Changed("output") {
		cfg.Builder.OutputPath = outputPath
	}
	if flags.Changed("min-length") {
		cfg.Builder.MinWordLength = minLength
	}
	if flags.Changed("max-length") {
		cfg.Builder.MaxWordLength = maxLength
	}
	if flags.Changed("cross-length") {
		cfg.Builder.CrossLength = crossLen
	}
}
