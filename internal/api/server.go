// Package api exposes the ledger over HTTP with gin.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/htbacgiang/ecobacgiangBE/internal/api/handler"
	"github.com/htbacgiang/ecobacgiangBE/internal/api/service"
	"github.com/htbacgiang/ecobacgiangBE/internal/config"
)

// Services are the ledger components the HTTP surface delegates to
type Services struct {
	Accounts service.AccountService
	Journal  service.JournalService
	Postings service.PostingService
	Assets   service.AssetService
	Periods  service.PeriodService
	Debts    service.DebtService
	Reports  service.ReportService
	Health   map[string]service.HealthChecker
}

// Server owns the HTTP listener of ledger_api.
type Server struct {
	logger     *slog.Logger
	httpServer *http.Server
	httpRouter *gin.Engine
}

// NewServer wires one handler per service. Gin runs in release mode outside
// development so the route table is not dumped on startup.
func NewServer(log *slog.Logger, cfg *config.Config, svc Services) *Server {
	if cfg.Application.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	httpRouter := gin.New()
	setupRouter(log, httpRouter, handlers{
		accounts: handler.NewAccountHandler(log, svc.Accounts),
		journal:  handler.NewJournalHandler(log, svc.Journal),
		postings: handler.NewPostingHandler(log, svc.Postings),
		assets:   handler.NewAssetHandler(log, svc.Assets),
		periods:  handler.NewPeriodHandler(log, svc.Periods),
		debts:    handler.NewDebtHandler(log, svc.Debts),
		reports:  handler.NewReportHandler(log, svc.Reports),
		health:   handler.NewHealthHandler(svc.Health),
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           httpRouter,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ErrorLog:          slog.NewLogLogger(log.Handler(), slog.LevelWarn),
	}

	return &Server{
		logger:     log,
		httpServer: httpServer,
		httpRouter: httpRouter,
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.httpRouter
}

// Start blocks serving requests. It returns nil once Stop has been called.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen on %s: %w", s.httpServer.Addr, err)
	}
	return nil
}

// Stop drains in-flight requests for at most timeout.
func (s *Server) Stop(ctx context.Context, timeout time.Duration) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}
