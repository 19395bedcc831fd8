package asset

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Status of a fixed asset.
type Status string

const (
	StatusActive           Status = "active"
	StatusFullyDepreciated Status = "fully_depreciated"
	StatusDisposed         Status = "disposed"
)

// DepreciationRecord is one monthly charge against an asset.
type DepreciationRecord struct {
	Month          string          `json:"month" bson:"month"` // yyyy-mm
	Amount         decimal.Decimal `json:"amount" bson:"amount"`
	JournalEntryID string          `json:"journal_entry_id" bson:"journal_entry_id"`
	Reference      string          `json:"reference" bson:"reference"`
	PostedAt       time.Time       `json:"posted_at" bson:"posted_at"`
}

// FixedAsset is depreciated straight-line over its useful life.
type FixedAsset struct {
	ID                      string               `json:"id" bson:"_id"`
	Code                    string               `json:"code" bson:"code"`
	Name                    string               `json:"name" bson:"name"`
	OriginalCost            decimal.Decimal      `json:"original_cost" bson:"original_cost"`
	UsefulLifeMonths        int                  `json:"useful_life_months" bson:"useful_life_months"`
	AccumulatedDepreciation decimal.Decimal      `json:"accumulated_depreciation" bson:"accumulated_depreciation"`
	BookValue               decimal.Decimal      `json:"book_value" bson:"book_value"`
	Status                  Status               `json:"status" bson:"status"`
	AcquiredAt              time.Time            `json:"acquired_at" bson:"acquired_at"`
	History                 []DepreciationRecord `json:"history" bson:"history"`
	CreatedAt               time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt               time.Time            `json:"updated_at" bson:"updated_at"`
}

// MonthKey formats t as yyyy-mm.
func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// NewFixedAsset validates and builds an active asset.
func NewFixedAsset(code, name string, cost decimal.Decimal, usefulLifeMonths int, acquiredAt time.Time) (*FixedAsset, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.NewValidationError("asset code is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewValidationError("asset name is required", "code", code)
	}
	if !cost.IsPositive() {
		return nil, shared.NewValidationError("asset cost must be positive", "code", code)
	}
	if usefulLifeMonths <= 0 {
		return nil, shared.NewValidationError("useful life must be positive", "code", code)
	}
	now := time.Now().UTC()
	return &FixedAsset{
		ID:                      uuid.NewString(),
		Code:                    code,
		Name:                    strings.TrimSpace(name),
		OriginalCost:            cost,
		UsefulLifeMonths:        usefulLifeMonths,
		AccumulatedDepreciation: decimal.Zero,
		BookValue:               cost,
		Status:                  StatusActive,
		AcquiredAt:              acquiredAt,
		History:                 []DepreciationRecord{},
		CreatedAt:               now,
		UpdatedAt:               now,
	}, nil
}

// MonthlyAmount is cost/life rounded to two places, capped at book value.
func (a *FixedAsset) MonthlyAmount() decimal.Decimal {
	if a.UsefulLifeMonths <= 0 {
		return decimal.Zero
	}
	monthly := shared.RoundMoney(a.OriginalCost.Div(decimal.NewFromInt(int64(a.UsefulLifeMonths))))
	return decimal.Min(monthly, shared.MaxZero(a.BookValue))
}

// DepreciatedIn reports whether a history row exists for month.
func (a *FixedAsset) DepreciatedIn(month string) bool {
	for _, h := range a.History {
		if h.Month == month {
			return true
		}
	}
	return false
}

// ApplyDepreciation records a monthly charge and refreshes derived values.
func (a *FixedAsset) ApplyDepreciation(rec DepreciationRecord) {
	a.AccumulatedDepreciation = a.AccumulatedDepreciation.Add(rec.Amount)
	if a.AccumulatedDepreciation.GreaterThan(a.OriginalCost) {
		a.AccumulatedDepreciation = a.OriginalCost
	}
	a.BookValue = a.OriginalCost.Sub(a.AccumulatedDepreciation)
	if !a.BookValue.IsPositive() {
		a.Status = StatusFullyDepreciated
	}
	a.History = append(a.History, rec)
	a.UpdatedAt = time.Now().UTC()
}
