package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/extrachat/server/internal/admin"
	"github.com/extrachat/server/internal/announce"
	"github.com/extrachat/server/internal/config"
	"github.com/extrachat/server/internal/db"
	"github.com/extrachat/server/internal/handlers"
	"github.com/extrachat/server/internal/identity"
	"github.com/extrachat/server/internal/logging"
	"github.com/extrachat/server/internal/metrics"
	"github.com/extrachat/server/internal/refresher"
	"github.com/extrachat/server/internal/registry"
	"github.com/extrachat/server/internal/server"
)

const configPath = "config.toml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	path := configPath
	if len(os.Args) > 1 {
		path = os.Args[1]
	} else if p := os.Getenv("EXTRACHAT_CONFIG"); p != "" {
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logging.New(os.Stdout, nil)
	slog.SetDefault(log)
	log.Info("config loaded", "address", cfg.Server.Address)
	if cfg.Influx != nil {
		// Metrics export itself is out of scope (spec §1 Non-goal); this
		// just confirms the [influx] block was noticed, not ignored.
		log.Info("influx export configured but not wired", "url", cfg.Influx.URL, "bucket", cfg.Influx.Bucket)
	}

	store, err := db.New(ctx, cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer store.Close()
	log.Info("database connected")

	if err := db.RunMigrations(ctx, cfg.Database.Path); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	log.Info("database migrations applied")

	reg := registry.New()
	m := metrics.New(prometheus.DefaultRegisterer)
	verifier := identity.NewStatic()
	ref := refresher.New(store, verifier, log)
	bus := announce.New(reg, m, log)
	h := handlers.New(store, reg, verifier, ref, m)
	srv := server.New(cfg.Server.Address, h, reg, log)
	console := admin.New(os.Stdin, bus, log, cancel)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ref.Run(gctx)
		return nil
	})

	g.Go(func() error {
		bus.RunMetricsTick(gctx)
		return nil
	})

	g.Go(func() error {
		log.Info("starting admin console")
		console.Run()
		return nil
	})

	g.Go(func() error {
		log.Info("starting websocket server", "address", cfg.Server.Address)
		if err := srv.Run(gctx); err != nil {
			return fmt.Errorf("websocket server: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
