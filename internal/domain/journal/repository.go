package journal

import (
	"context"
	"time"

	"github.com/htbacgiang/ecobacgiangBE/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ListFilter narrows entry listings. Zero values match everything.
type ListFilter struct {
	Type        EntryType
	From        *time.Time
	To          *time.Time
	AccountCode string
	SourceType  string
	SourceID    string
	Limit       int
	Offset      int
}

// LineFilter selects posted lines for aggregation.
type LineFilter struct {
	From         *time.Time
	To           *time.Time
	AccountCodes []string
	ExcludeTypes []EntryType
}

// AccountTotal is the debit/credit sum of one account's lines.
type AccountTotal struct {
	AccountCode string          `json:"account_code" bson:"_id"`
	Debit       decimal.Decimal `json:"debit" bson:"debit"`
	Credit      decimal.Decimal `json:"credit" bson:"credit"`
}

// LedgerLine is a single line together with the header of its entry.
type LedgerLine struct {
	EntryID         string    `json:"entry_id" bson:"_id"`
	Reference       string    `json:"reference" bson:"reference"`
	TransactionDate time.Time `json:"transaction_date" bson:"transaction_date"`
	PostedAt        time.Time `json:"posted_at" bson:"posted_at"`
	Memo            string    `json:"memo,omitempty" bson:"memo,omitempty"`
	Type            EntryType `json:"type" bson:"type"`
	Line            Line      `json:"line" bson:"lines"`
}

// Repository manages journal entry persistence and line aggregation.
type Repository interface {
	Insert(ctx context.Context, entry *Entry) error
	GetByID(ctx context.Context, id string) (*Entry, error)
	GetByReference(ctx context.Context, reference string) (*Entry, error)
	// FindBySource returns the posted entry of typ produced by a source, or a
	// NOT_FOUND error.
	FindBySource(ctx context.Context, sourceType, sourceID string, typ EntryType) (*Entry, error)
	// FindBySourceAccount returns the first entry for sourceID with a line on
	// accountCode, or a NOT_FOUND error.
	FindBySourceAccount(ctx context.Context, sourceID, accountCode string) (*Entry, error)
	List(ctx context.Context, filter ListFilter) ([]*Entry, int64, error)
	Replace(ctx context.Context, entry *Entry) error
	Delete(ctx context.Context, id string) error
	AccountTotals(ctx context.Context, filter LineFilter) ([]AccountTotal, error)
	// AccountLines returns the lines of one account ordered by transaction
	// date, posted-at and reference.
	AccountLines(ctx context.Context, code string, from, to *time.Time) ([]LedgerLine, error)
}

// ErrEntryNotFound is returned for a missing entry.
func ErrEntryNotFound(id string) error {
	return shared.NewNotFoundError("journal entry", id)
}

// ErrDuplicateReference is returned when a reference number is reused.
func ErrDuplicateReference(reference string) error {
	return shared.NewConflictError("duplicate journal reference", "reference", reference)
}
