// Command ledger_api serves the accounting REST API: chart of accounts,
// journal, postings, debts, period closing and reports.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/htbacgiang/ecobacgiangBE/internal/api"
	"github.com/htbacgiang/ecobacgiangBE/internal/api/service"
	"github.com/htbacgiang/ecobacgiangBE/internal/components"
	"github.com/htbacgiang/ecobacgiangBE/internal/config"
	"github.com/htbacgiang/ecobacgiangBE/internal/data/mongo"
	"github.com/htbacgiang/ecobacgiangBE/internal/logger"
	"github.com/htbacgiang/ecobacgiangBE/internal/platform/persistence"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.LoadConfig("ledger_api")
	if err != nil {
		// no logger yet
		fmt.Fprintf(os.Stderr, "load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)
	if err := run(cfg, log); err != nil {
		log.Error("ledger_api exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("ledger_api stopped")
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	postgresDB, err := persistence.NewPostgresDB(ctx, log, &cfg.Postgres)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer postgresDB.Close()

	mongoDB, err := persistence.NewMongoDB(ctx, log, &cfg.MongoDB, mongo.NewRegistry())
	if err != nil {
		return fmt.Errorf("mongodb: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.MongoDB.Timeout)
		defer cancel()
		if err := mongoDB.Close(closeCtx); err != nil {
			log.Error("MongoDB close failed", "error", err)
		}
	}()

	if err := mongo.EnsureIndexes(ctx, log, mongoDB.Database()); err != nil {
		return fmt.Errorf("mongodb indexes: %w", err)
	}

	l := components.CreateLedger(mongoDB, postgresDB, log, cfg)
	server := api.NewServer(log, cfg, api.Services{
		Accounts: l.Chart,
		Journal:  l.Journal,
		Postings: l.Postings,
		Assets:   service.NewAssetService(log, l.Assets),
		Periods:  l.Closing,
		Debts:    l.Debts,
		Reports:  l.Reports,
		Health: map[string]service.HealthChecker{
			"mongodb":  mongoDB,
			"postgres": postgresDB,
		},
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down HTTP server", "timeout", cfg.Server.ShutdownTimeout.String())
		return server.Stop(context.Background(), cfg.Server.ShutdownTimeout)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
