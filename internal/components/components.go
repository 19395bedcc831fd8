// Package components assembles the ledger engines shared by the API and the
// event processor.
package components

import (
	"log/slog"

	"github.com/htbacgiang/ecobacgiangBE/internal/config"
	"github.com/htbacgiang/ecobacgiangBE/internal/data/mongo"
	"github.com/htbacgiang/ecobacgiangBE/internal/data/postgres"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/asset"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/outbox"
	"github.com/htbacgiang/ecobacgiangBE/internal/ledger"
	"github.com/htbacgiang/ecobacgiangBE/internal/platform/persistence"
	"github.com/shopspring/decimal"
)

// Ledger holds the wired engines
type Ledger struct {
	Chart    *ledger.ChartOfAccounts
	Journal  *ledger.JournalStore
	Postings *ledger.PostingEngine
	Debts    *ledger.DebtLedger
	Closing  *ledger.ClosingEngine
	Reports  *ledger.ReportingEngine
	Assets   asset.Repository
	Outbox   outbox.Repository
}

// LedgerOptions converts the configured tunables into engine options
func LedgerOptions(cfg *config.LedgerConfig) ledger.Options {
	return ledger.Options{
		ReceivableGraceDays:  cfg.ReceivableGraceDays,
		DefaultTermDays:      cfg.DefaultTermDays,
		CorporateTaxRate:     decimal.NewFromFloat(cfg.CorporateTaxRate),
		MatchAmountTolerance: decimal.NewFromFloat(cfg.MatchAmountTolerance),
		MatchLookback:        cfg.MatchLookback,
	}
}

// CreateLedger builds repositories over MongoDB and the partner directory
// over PostgreSQL, then the engines on top of them. Events go to the outbox.
func CreateLedger(
	mongoDB *persistence.MongoDB,
	postgresDB *persistence.PostgresDB,
	log *slog.Logger,
	cfg *config.Config,
) *Ledger {
	db := mongoDB.Database()
	opts := LedgerOptions(&cfg.Ledger)

	accountRepo := mongo.NewAccountRepository(log, db)
	journalRepo := mongo.NewJournalRepository(log, db)
	debtRepo := mongo.NewDebtRepository(log, db)
	periodRepo := mongo.NewPeriodRepository(log, db)
	assetRepo := mongo.NewAssetRepository(log, db)
	productRepo := mongo.NewProductRepository(log, db)
	outboxRepo := mongo.NewOutboxRepository(log, db)
	partnerRepo := postgres.NewPartnerRepository(log, postgresDB)

	tx := mongo.NewTxManager(log, mongoDB.Client(), cfg.Ledger.DetachTimeout)
	publisher := ledger.NewOutboxPublisher(outboxRepo, log)

	chart := ledger.NewChartOfAccounts(accountRepo, tx, log)
	guard := ledger.NewLockGuard(periodRepo)
	journalStore := ledger.NewJournalStore(journalRepo, debtRepo, chart, guard, publisher, tx, log)
	partners := ledger.NewPartnerDirectory(partnerRepo, log)

	return &Ledger{
		Chart:    chart,
		Journal:  journalStore,
		Postings: ledger.NewPostingEngine(journalStore, chart, journalRepo, debtRepo, assetRepo, productRepo, partners, tx, opts, log),
		Debts:    ledger.NewDebtLedger(debtRepo, journalStore, publisher, tx, opts, log),
		Closing:  ledger.NewClosingEngine(periodRepo, journalRepo, accountRepo, journalStore, publisher, tx, log),
		Reports:  ledger.NewReportingEngine(journalRepo, accountRepo, periodRepo, opts, log),
		Assets:   assetRepo,
		Outbox:   outboxRepo,
	}
}
