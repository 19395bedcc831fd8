package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/htbacgiang/ecobacgiangBE/internal/api/handler"
	"github.com/htbacgiang/ecobacgiangBE/internal/api/middleware"
)

// handlers groups the route handlers wired by setupRouter
type handlers struct {
	accounts *handler.AccountHandler
	journal  *handler.JournalHandler
	postings *handler.PostingHandler
	assets   *handler.AssetHandler
	periods  *handler.PeriodHandler
	debts    *handler.DebtHandler
	reports  *handler.ReportHandler
	health   *handler.HealthHandler
}

// setupRouter configures API routes and middleware for the application
func setupRouter(logger *slog.Logger, r *gin.Engine, h handlers) {
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger))

	v1 := r.Group("/api/v1")
	{
		accounts := v1.Group("/accounts")
		{
			accounts.GET("", h.accounts.List)
			accounts.POST("", h.accounts.Create)
		}

		entries := v1.Group("/journal-entries")
		{
			entries.GET("", h.journal.List)
			entries.POST("", h.journal.Create)
			entries.GET("/:id", h.journal.Get)
			entries.PUT("/:id", h.journal.Update)
			entries.DELETE("/:id", h.journal.Delete)
		}

		postings := v1.Group("/postings")
		{
			postings.POST("/entry", h.postings.General)
			postings.POST("/sale", h.postings.Sale)
			postings.POST("/cogs", h.postings.COGS)
			postings.POST("/transfer", h.postings.Transfer)
			postings.POST("/adjusting", h.postings.Adjusting)
		}
		v1.POST("/depreciation/calculate", h.postings.Depreciation)

		assets := v1.Group("/assets")
		{
			assets.GET("", h.assets.List)
			assets.POST("", h.assets.Create)
		}

		periods := v1.Group("/periods")
		{
			periods.GET("", h.periods.List)
			periods.POST("", h.periods.Create)
			periods.POST("/:id/close", h.periods.Close)
		}

		v1.GET("/receivables", h.debts.ListReceivables)
		v1.GET("/receivables/aging", h.debts.ReceivableAging)
		v1.GET("/payables", h.debts.ListPayables)
		v1.GET("/payables/aging", h.debts.PayableAging)
		v1.POST("/debts/:id/payments", h.debts.ApplyPayment)

		reports := v1.Group("/reports")
		{
			reports.GET("/trial-balance", h.reports.TrialBalance)
			reports.GET("/account-ledger/:code", h.reports.AccountLedger)
			reports.GET("/balance-sheet", h.reports.BalanceSheet)
			reports.GET("/profit-loss", h.reports.ProfitAndLoss)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", h.health.Check)
	v1.GET("/health", h.health.Check)
}
