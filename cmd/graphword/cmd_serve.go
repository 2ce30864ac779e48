package main

import (
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sanonone/graphword/internal/mcp"
	"github.com/sanonone/graphword/internal/server"
	"github.com/sanonone/graphword/pkg/config"
	"github.com/sanonone/graphword/pkg/engine"
	"github.com/sanonone/graphword/pkg/events"
)

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyServeFlags(cmd, &cfg)
	mcp.Version = version

	opts := engine.DefaultOptions(cfg.Graph.Path)
	if cfg.Graph.SnapshotDir != "" {
		opts.SnapshotDir = cfg.Graph.SnapshotDir
	}
	opts.Watch = cfg.Graph.Watch
	opts.WatchDebounce = cfg.Graph.WatchDebounce

	eng, err := engine.Open(opts)
	if err != nil {
		return err
	}
	defer eng.Close()

	if eng.Current().NodeCount() == 0 {
		slog.Warn("Serving an empty graph; run 'graphword build' to create it", "path", cfg.Graph.Path)
	}

	var evLog *events.Logger
	if cfg.Events.Enabled {
		evLog = events.NewLogger(events.Options{Dir: cfg.Events.Dir, Skip: cfg.Events.Skip})
	}

	srv := server.NewServer(eng, evLog, server.Options{
		Addr:         cfg.Server.Addr,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		EnableMCP:    cfg.Server.EnableMCP,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(srv.Run)
	g.Go(func() error {
		<-ctx.Done()
		srv.Shutdown()
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("graphword stopped")
	return nil
}

func applyServeFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("http-addr") {
		cfg.Server.Addr = httpAddr
	}
	if flags.Changed("graph") {
		cfg.Graph.Path = graphPath
	}
	if flags.Changed("events-dir") {
		cfg.Events.Dir = eventsDir
	}
	if flags.Changed("watch") {
		cfg.Graph.Watch = watch
	}
	if noEvents {
		cfg.Events.Enabled = false
	}
}
