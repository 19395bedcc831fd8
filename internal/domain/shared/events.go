package shared

import (
	"time"

	"github.com/shopspring/decimal"
)

// Topics published by the ledger through the outbox.
const (
	TopicEntryPosted    = "ledger.entry.posted"
	TopicPaymentSettled = "ledger.payment.settled"
	TopicPeriodClosed   = "ledger.period.closed"
)

// PaymentEvent is a payment confirmation signal from the payment gateway side.
// Reference, when set, must identify the debt exactly (debt id or entry reference).
type PaymentEvent struct {
	EventID       string          `json:"event_id"`
	Reference     string          `json:"reference,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method"`
	ReceivedAt    time.Time       `json:"received_at"`
	CorrelationID string          `json:"correlation_id,omitempty"`
}
