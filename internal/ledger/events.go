package ledger

import (
	"time"

	"github.com/htbacgiang/ecobacgiangBE/internal/domain/debt"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/journal"
	"github.com/shopspring/decimal"
)

// EntryPostedEvent is published on ledger.entry.posted.
type EntryPostedEvent struct {
	EntryID         string            `json:"entry_id"`
	Reference       string            `json:"reference"`
	Type            journal.EntryType `json:"type"`
	TransactionDate time.Time         `json:"transaction_date"`
	SourceType      string            `json:"source_type,omitempty"`
	SourceID        string            `json:"source_id,omitempty"`
	TotalDebit      decimal.Decimal   `json:"total_debit"`
	PostedAt        time.Time         `json:"posted_at"`
}

// PaymentSettledEvent is published on ledger.payment.settled.
type PaymentSettledEvent struct {
	DebtID          string             `json:"debt_id"`
	Kind            debt.Kind          `json:"kind"`
	PartnerID       string             `json:"partner_id"`
	Amount          decimal.Decimal    `json:"amount"`
	RemainingAmount decimal.Decimal    `json:"remaining_amount"`
	PaymentStatus   debt.PaymentStatus `json:"payment_status"`
	JournalEntryID  string             `json:"journal_entry_id,omitempty"`
	PaidAt          time.Time          `json:"paid_at"`
}

// PeriodClosedEvent is published on ledger.period.closed.
type PeriodClosedEvent struct {
	PeriodID  string          `json:"period_id"`
	Name      string          `json:"name"`
	LockDate  time.Time       `json:"lock_date"`
	NetProfit decimal.Decimal `json:"net_profit"`
	EntryIDs  []string        `json:"entry_ids"`
	ClosedBy  string          `json:"closed_by"`
	ClosedAt  time.Time       `json:"closed_at"`
}
