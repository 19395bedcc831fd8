package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is the way a customer pays for an order.
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodVNPay        PaymentMethod = "vnpay"
	PaymentMethodMomo         PaymentMethod = "momo"
	PaymentMethodCOD          PaymentMethod = "cod"
)

// IsBankClass reports whether money lands on the bank account immediately.
func (m PaymentMethod) IsBankClass() bool {
	switch m {
	case PaymentMethodBankTransfer, PaymentMethodCard, PaymentMethodVNPay, PaymentMethodMomo:
		return true
	}
	return false
}

// IsValid reports whether m is a known payment method.
func (m PaymentMethod) IsValid() bool {
	return m == PaymentMethodCash || m == PaymentMethodCOD || m.IsBankClass()
}

// Status is the fulfilment status reported by the order service.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusPaid      Status = "paid"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// HasShipped reports whether goods have left the warehouse.
func (s Status) HasShipped() bool {
	return s == StatusShipped || s == StatusDelivered
}

// Line is one product row of an order.
type Line struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

// Customer identifies the buyer. ExternalID is the stable id in the order service.
type Customer struct {
	ExternalID string `json:"external_id,omitempty"`
	Name       string `json:"name"`
	Phone      string `json:"phone,omitempty"`
}

// Order is the snapshot the ledger receives from the order service.
type Order struct {
	ID            string          `json:"id"`
	Number        string          `json:"number,omitempty"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Status        Status          `json:"status"`
	Customer      Customer        `json:"customer"`
	Lines         []Line          `json:"lines"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
	ShippedAt     *time.Time      `json:"shipped_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Event is consumed from the order service whenever an order changes status.
type Event struct {
	EventID       string    `json:"event_id"`
	Order         Order     `json:"order"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}
