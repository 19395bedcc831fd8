package handler

import (
	"strings"
	"time"

	"github.com/htbacgiang/ecobacgiangBE/internal/domain/journal"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/partner"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest represents a request to add an account to the chart
type CreateAccountRequest struct {
	Code       string `json:"code" binding:"required,numeric,min=3,max=8"`
	Name       string `json:"name" binding:"required"`
	Type       string `json:"type" binding:"required,oneof=asset liability equity revenue expense"`
	ParentCode string `json:"parent_code,omitempty"`
}

// ListAccountsQuery filters the chart of accounts
type ListAccountsQuery struct {
	Type   string `form:"type" binding:"omitempty,oneof=asset liability equity revenue expense"`
	Status string `form:"status" binding:"omitempty,oneof=active inactive"`
}

// LineRequest is one debit or credit leg in a request body
type LineRequest struct {
	AccountCode string          `json:"account_code" binding:"required"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	PartnerID   string          `json:"partner_id,omitempty"`
	PartnerKind string          `json:"partner_kind,omitempty"`
	Description string          `json:"description,omitempty"`
}

func (r LineRequest) toLine() journal.Line {
	return journal.Line{
		AccountCode: strings.TrimSpace(r.AccountCode),
		Debit:       r.Debit,
		Credit:      r.Credit,
		PartnerID:   r.PartnerID,
		PartnerKind: r.PartnerKind,
		Description: r.Description,
	}
}

func toLines(in []LineRequest) []journal.Line {
	if in == nil {
		return nil
	}
	lines := make([]journal.Line, len(in))
	for i, l := range in {
		lines[i] = l.toLine()
	}
	return lines
}

// CreateJournalEntryRequest represents a manual journal entry
type CreateJournalEntryRequest struct {
	TransactionDate string        `json:"transaction_date" binding:"required"`
	Memo            string        `json:"memo"`
	Lines           []LineRequest `json:"lines" binding:"required,min=2,dive"`
}

// UpdateJournalEntryRequest replaces the editable parts of an entry. Omitted
// fields are kept.
type UpdateJournalEntryRequest struct {
	TransactionDate *string       `json:"transaction_date,omitempty"`
	Memo            *string       `json:"memo,omitempty"`
	Lines           []LineRequest `json:"lines,omitempty" binding:"omitempty,min=2,dive"`
}

// ListJournalEntriesQuery filters and pages the journal
type ListJournalEntriesQuery struct {
	Type        string `form:"type"`
	From        string `form:"from"`
	To          string `form:"to"`
	AccountCode string `form:"account_code"`
	SourceType  string `form:"source_type"`
	SourceID    string `form:"source_id"`
	PaginationParams
}

// PartnerRequest identifies a customer or supplier by id or name
type PartnerRequest struct {
	ExternalID string `json:"external_id,omitempty"`
	Name       string `json:"name,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

func (r *PartnerRequest) toRef() partner.Ref {
	if r == nil {
		return partner.Ref{}
	}
	return partner.Ref{ExternalID: r.ExternalID, Name: r.Name, Phone: r.Phone}
}

// GeneralEntryRequest represents a rule-driven income or expense posting
type GeneralEntryRequest struct {
	Kind          string          `json:"kind" binding:"required,oneof=income expense"`
	Category      string          `json:"category" binding:"required"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentStatus string          `json:"payment_status" binding:"required,oneof=paid unpaid"`
	PaymentMethod string          `json:"payment_method"`
	Prepayment    bool            `json:"prepayment"`
	Partner       *PartnerRequest `json:"partner,omitempty"`
	Date          string          `json:"date"`
	DueDate       string          `json:"due_date"`
	Memo          string          `json:"memo"`
}

// TransferRequest moves money between two asset accounts
type TransferRequest struct {
	FromAccount string          `json:"from_account" binding:"required"`
	ToAccount   string          `json:"to_account" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"`
	Memo        string          `json:"memo"`
}

// AdjustingEntryRequest corrects a possibly closed period with an entry dated today
type AdjustingEntryRequest struct {
	CorrectedDate string        `json:"corrected_date" binding:"required"`
	Memo          string        `json:"memo"`
	Lines         []LineRequest `json:"lines" binding:"required,min=2,dive"`
}

// DepreciationRequest selects the month to depreciate, as yyyy-mm or a date in it
type DepreciationRequest struct {
	Month string `json:"month" binding:"required"`
}

// CreateAssetRequest registers a fixed asset
type CreateAssetRequest struct {
	Code             string          `json:"code" binding:"required"`
	Name             string          `json:"name" binding:"required"`
	OriginalCost     decimal.Decimal `json:"original_cost"`
	UsefulLifeMonths int             `json:"useful_life_months" binding:"required,gt=0"`
	AcquiredAt       string          `json:"acquired_at"`
}

// CreatePeriodRequest opens an accounting period
type CreatePeriodRequest struct {
	Name      string `json:"name" binding:"required"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
}

// ClosePeriodRequest closes a period. An empty lock date locks through the period end.
type ClosePeriodRequest struct {
	LockDate string `json:"lock_date"`
	ClosedBy string `json:"closed_by"`
}

// ListDebtsQuery filters and pages receivables or payables
type ListDebtsQuery struct {
	Status      string `form:"status" binding:"omitempty,oneof=unpaid partial paid"`
	PartnerID   string `form:"partner_id"`
	Outstanding bool   `form:"outstanding"`
	PaginationParams
}

// ApplyPaymentRequest settles part or all of a debt
type ApplyPaymentRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Method      string          `json:"method"`
	PaidAt      string          `json:"paid_at"`
	PostReceipt *bool           `json:"post_receipt,omitempty"`
}

// DateRangeQuery bounds a report. Both ends are optional and inclusive.
type DateRangeQuery struct {
	From string `form:"from"`
	To   string `form:"to"`
}

// AsOfQuery anchors a point-in-time report. Empty means today.
type AsOfQuery struct {
	AsOf string `form:"as_of"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=20" binding:"min=1,max=200"`
}

func (p PaginationParams) limitOffset() (int, int) {
	return p.PerPage, (p.Page - 1) * p.PerPage
}

// parseDate parses a required date field
func parseDate(field, value string) (time.Time, error) {
	t, err := shared.ParseDate(strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, shared.NewValidationError("invalid "+field, field, value)
	}
	return t, nil
}

// parseOptionalDate returns nil for an empty value
func parseOptionalDate(field, value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, err := parseDate(field, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// parseMonth accepts yyyy-mm or any date within the month
func parseMonth(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse("2006-01", value); err == nil {
		return t, nil
	}
	return parseDate("month", value)
}
