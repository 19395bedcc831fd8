package debt

import (
	"time"

	"github.com/google/uuid"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Kind separates money owed to us from money we owe.
type Kind string

const (
	KindReceivable Kind = "receivable"
	KindPayable    Kind = "payable"
)

// IsValid reports whether k is a known debt kind.
func (k Kind) IsValid() bool {
	return k == KindReceivable || k == KindPayable
}

// PaymentStatus is derived from the remaining amount.
type PaymentStatus string

const (
	StatusUnpaid  PaymentStatus = "unpaid"
	StatusPartial PaymentStatus = "partial"
	StatusPaid    PaymentStatus = "paid"
)

// DefaultTermDays is used when a debt has no due date.
const DefaultTermDays = 30

// Payment is one settlement applied to a debt.
type Payment struct {
	Amount         decimal.Decimal `json:"amount" bson:"amount"`
	PaidAt         time.Time       `json:"paid_at" bson:"paid_at"`
	Method         string          `json:"method,omitempty" bson:"method,omitempty"`
	JournalEntryID string          `json:"journal_entry_id,omitempty" bson:"journal_entry_id,omitempty"`
}

// Debt is a receivable or payable created by a posting on 131 or 331.
type Debt struct {
	ID               string          `json:"id" bson:"_id"`
	Kind             Kind            `json:"kind" bson:"kind"`
	JournalEntryID   string          `json:"journal_entry_id" bson:"journal_entry_id"`
	JournalReference string          `json:"journal_reference" bson:"journal_reference"`
	PartnerID        string          `json:"partner_id" bson:"partner_id"`
	PartnerName      string          `json:"partner_name" bson:"partner_name"`
	SourceID         string          `json:"source_id,omitempty" bson:"source_id,omitempty"`
	Description      string          `json:"description,omitempty" bson:"description,omitempty"`
	OriginalAmount   decimal.Decimal `json:"original_amount" bson:"original_amount"`
	RemainingAmount  decimal.Decimal `json:"remaining_amount" bson:"remaining_amount"`
	PaymentStatus    PaymentStatus   `json:"payment_status" bson:"payment_status"`
	DueDate          *time.Time      `json:"due_date,omitempty" bson:"due_date,omitempty"`
	InvoiceDate      *time.Time      `json:"invoice_date,omitempty" bson:"invoice_date,omitempty"`
	Payments         []Payment       `json:"payments" bson:"payments"`
	CreatedAt        time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" bson:"updated_at"`
}

// NewDebt builds an unpaid debt for amount.
func NewDebt(kind Kind, amount decimal.Decimal, entryID, reference, partnerID, partnerName string) (*Debt, error) {
	if !kind.IsValid() {
		return nil, shared.NewValidationError("invalid debt kind", "kind", kind)
	}
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("debt amount must be positive", "amount", amount.String())
	}
	now := time.Now().UTC()
	return &Debt{
		ID:               uuid.NewString(),
		Kind:             kind,
		JournalEntryID:   entryID,
		JournalReference: reference,
		PartnerID:        partnerID,
		PartnerName:      partnerName,
		OriginalAmount:   amount,
		RemainingAmount:  amount,
		PaymentStatus:    StatusUnpaid,
		Payments:         []Payment{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// StatusFor derives the payment status from remaining and original amounts.
func StatusFor(remaining, original decimal.Decimal) PaymentStatus {
	switch {
	case !remaining.IsPositive():
		return StatusPaid
	case remaining.Equal(original):
		return StatusUnpaid
	default:
		return StatusPartial
	}
}

// ApplyPayment reduces the remaining amount and records the payment. It
// returns the amount actually applied, capped at the previous remaining.
func (d *Debt) ApplyPayment(amount decimal.Decimal, paidAt time.Time, method, entryID string) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, shared.NewValidationError("payment amount must be positive", "debt_id", d.ID, "amount", amount.String())
	}
	if d.PaymentStatus == StatusPaid {
		return decimal.Zero, shared.NewStateError("debt is already settled", "debt_id", d.ID)
	}
	applied := decimal.Min(amount, d.RemainingAmount)
	d.RemainingAmount = shared.MaxZero(d.RemainingAmount.Sub(amount))
	d.PaymentStatus = StatusFor(d.RemainingAmount, d.OriginalAmount)
	d.Payments = append(d.Payments, Payment{
		Amount:         applied,
		PaidAt:         paidAt,
		Method:         method,
		JournalEntryID: entryID,
	})
	d.UpdatedAt = time.Now().UTC()
	return applied, nil
}

// EffectiveDueDate falls back to invoice date, then creation date, plus the
// default term when no due date was recorded.
func (d *Debt) EffectiveDueDate() time.Time {
	if d.DueDate != nil {
		return *d.DueDate
	}
	if d.InvoiceDate != nil {
		return d.InvoiceDate.AddDate(0, 0, DefaultTermDays)
	}
	return d.CreatedAt.AddDate(0, 0, DefaultTermDays)
}

// IsOutstanding reports whether anything is left to pay.
func (d *Debt) IsOutstanding() bool {
	return d.RemainingAmount.IsPositive()
}
