package journal

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// EntryType classifies the business event behind an entry.
type EntryType string

const (
	TypeSale         EntryType = "sale"
	TypeCOGS         EntryType = "cogs"
	TypeDepreciation EntryType = "depreciation"
	TypeManual       EntryType = "manual"
	TypeTransfer     EntryType = "transfer"
	TypeAdjusting    EntryType = "adjusting"
	TypeClosing      EntryType = "closing"
	TypePayment      EntryType = "payment"
)

// IsValid reports whether t is a known entry type.
func (t EntryType) IsValid() bool {
	switch t {
	case TypeSale, TypeCOGS, TypeDepreciation, TypeManual, TypeTransfer, TypeAdjusting, TypeClosing, TypePayment:
		return true
	}
	return false
}

// ReferencePrefix is the prefix used for generated reference numbers.
func (t EntryType) ReferencePrefix() string {
	switch t {
	case TypeSale:
		return "SO"
	case TypeCOGS:
		return "COGS"
	case TypeDepreciation:
		return "DEP"
	case TypeTransfer:
		return "TRF"
	case TypeAdjusting:
		return "ADJ"
	case TypeClosing:
		return "CLS"
	case TypePayment:
		return "PAY"
	default:
		return "JE"
	}
}

// Status of a journal entry. Posted is the only state an entry can be in.
type Status string

const StatusPosted Status = "posted"

// Source types linking an entry back to what produced it.
const (
	SourceOrder  = "order"
	SourceDebt   = "debt"
	SourceAsset  = "asset"
	SourcePeriod = "period"
)

// Line is one debit or credit leg of an entry.
type Line struct {
	AccountCode string          `json:"account_code" bson:"account_code"`
	Debit       decimal.Decimal `json:"debit" bson:"debit"`
	Credit      decimal.Decimal `json:"credit" bson:"credit"`
	PartnerID   string          `json:"partner_id,omitempty" bson:"partner_id,omitempty"`
	PartnerKind string          `json:"partner_kind,omitempty" bson:"partner_kind,omitempty"`
	Description string          `json:"description,omitempty" bson:"description,omitempty"`
}

// DebitLine builds a debit leg.
func DebitLine(code string, amount decimal.Decimal, description string) Line {
	return Line{AccountCode: code, Debit: amount, Credit: decimal.Zero, Description: description}
}

// CreditLine builds a credit leg.
func CreditLine(code string, amount decimal.Decimal, description string) Line {
	return Line{AccountCode: code, Debit: decimal.Zero, Credit: amount, Description: description}
}

// Entry is a balanced journal entry. It owns its lines.
type Entry struct {
	ID              string     `json:"id" bson:"_id"`
	Reference       string     `json:"reference" bson:"reference"`
	TransactionDate time.Time  `json:"transaction_date" bson:"transaction_date"`
	PostedAt        time.Time  `json:"posted_at" bson:"posted_at"`
	Memo            string     `json:"memo,omitempty" bson:"memo,omitempty"`
	Type            EntryType  `json:"type" bson:"type"`
	Lines           []Line     `json:"lines" bson:"lines"`
	SourceID        string     `json:"source_id,omitempty" bson:"source_id,omitempty"`
	SourceType      string     `json:"source_type,omitempty" bson:"source_type,omitempty"`
	CorrectedDate   *time.Time `json:"corrected_date,omitempty" bson:"corrected_date,omitempty"`
	Status          Status     `json:"status" bson:"status"`
	CorrelationID   string     `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	UpdatedAt       time.Time  `json:"updated_at" bson:"updated_at"`
}

// Totals sums the debit and credit sides.
func (e *Entry) Totals() (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, l := range e.Lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit, credit
}

// AccountCodes returns the distinct codes referenced by the lines, in order.
func (e *Entry) AccountCodes() []string {
	seen := make(map[string]struct{}, len(e.Lines))
	codes := make([]string, 0, len(e.Lines))
	for _, l := range e.Lines {
		if _, ok := seen[l.AccountCode]; ok {
			continue
		}
		seen[l.AccountCode] = struct{}{}
		codes = append(codes, l.AccountCode)
	}
	return codes
}

// HasAccount reports whether any line touches code.
func (e *Entry) HasAccount(code string) bool {
	for _, l := range e.Lines {
		if l.AccountCode == code {
			return true
		}
	}
	return false
}

// Validate checks the structural double-entry rules.
func (e *Entry) Validate() error {
	if !e.Type.IsValid() {
		return shared.NewValidationError("invalid entry type", "type", e.Type)
	}
	if e.TransactionDate.IsZero() {
		return shared.NewValidationError("transaction date is required", "reference", e.Reference)
	}
	if len(e.Lines) < 2 {
		return shared.NewValidationError("entry needs at least two lines", "reference", e.Reference, "lines", len(e.Lines))
	}
	for i, l := range e.Lines {
		if strings.TrimSpace(l.AccountCode) == "" {
			return shared.NewValidationError("line account code is required", "line", i)
		}
		if l.Debit.IsNegative() || l.Credit.IsNegative() {
			return shared.NewValidationError("line amounts must not be negative", "line", i, "account", l.AccountCode)
		}
		if l.Debit.IsPositive() && l.Credit.IsPositive() {
			return shared.NewValidationError("line cannot be both debit and credit", "line", i, "account", l.AccountCode)
		}
		if l.Debit.IsZero() && l.Credit.IsZero() {
			return shared.NewValidationError("line carries no amount", "line", i, "account", l.AccountCode)
		}
	}
	debit, credit := e.Totals()
	if !shared.WithinTolerance(debit, credit) {
		return shared.NewValidationError("entry is not balanced",
			"reference", e.Reference, "debit", debit.StringFixed(2), "credit", credit.StringFixed(2))
	}
	return nil
}

// NewEntry builds an unposted entry of the given type with a generated
// reference number.
func NewEntry(typ EntryType, date time.Time, memo string, lines []Line) *Entry {
	return &Entry{
		Reference:       NewReference(typ.ReferencePrefix(), date),
		TransactionDate: shared.StartOfDay(date),
		Memo:            memo,
		Type:            typ,
		Lines:           lines,
	}
}

// NewReference builds <PREFIX>-<yyyymmdd>-<8 hex>.
func NewReference(prefix string, date time.Time) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("%s-%s-%s", prefix, date.UTC().Format("20060102"), strings.ToUpper(id[:8]))
}

// DepreciationReference is deterministic per asset and month.
func DepreciationReference(month time.Time, assetCode string) string {
	return fmt.Sprintf("DEP-%s-%s", month.UTC().Format("200601"), assetCode)
}

// ClosingReference is deterministic per period and closing step.
func ClosingReference(periodID, step string) string {
	return fmt.Sprintf("CLS-%s-%s", periodID, step)
}

// MarkPosted assigns identity and posting metadata.
func (e *Entry) MarkPosted(now time.Time) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.PostedAt = now
	e.UpdatedAt = now
	e.Status = StatusPosted
}
