package account

import (
	"strings"
	"time"

	"github.com/htbacgiang/ecobacgiangBE/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Type is the accounting class of an account.
type Type string

const (
	TypeAsset     Type = "asset"
	TypeLiability Type = "liability"
	TypeEquity    Type = "equity"
	TypeRevenue   Type = "revenue"
	TypeExpense   Type = "expense"
)

// IsValid reports whether t is one of the five account classes.
func (t Type) IsValid() bool {
	switch t {
	case TypeAsset, TypeLiability, TypeEquity, TypeRevenue, TypeExpense:
		return true
	}
	return false
}

// IsDebitNormal reports whether balances of this class grow on the debit side.
func (t Type) IsDebitNormal() bool {
	return t == TypeAsset || t == TypeExpense
}

// IsTemporary reports whether the class is zeroed at period close.
func (t Type) IsTemporary() bool {
	return t == TypeRevenue || t == TypeExpense
}

// Status of an account in the chart.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Account is a node of the chart of accounts. Code is the natural key.
type Account struct {
	Code       string    `json:"code" bson:"_id"`
	Name       string    `json:"name" bson:"name"`
	Type       Type      `json:"type" bson:"type"`
	Level      int       `json:"level" bson:"level"`
	ParentCode string    `json:"parent_code,omitempty" bson:"parent_code,omitempty"`
	Status     Status    `json:"status" bson:"status"`
	System     bool      `json:"system" bson:"system"` // provisioned from the well-known list
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updated_at"`
}

// NewAccount validates the fields and builds an active account.
func NewAccount(code, name string, typ Type, parentCode string) (*Account, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.NewValidationError("account code is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewValidationError("account name is required", "code", code)
	}
	if !typ.IsValid() {
		return nil, shared.NewValidationError("invalid account type", "code", code, "type", typ)
	}
	level := 1
	if parentCode != "" {
		if !strings.HasPrefix(code, parentCode) || code == parentCode {
			return nil, shared.NewValidationError("account code must extend its parent code", "code", code, "parent_code", parentCode)
		}
		level = 2
	}
	now := time.Now().UTC()
	return &Account{
		Code:       code,
		Name:       strings.TrimSpace(name),
		Type:       typ,
		Level:      level,
		ParentCode: parentCode,
		Status:     StatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Balance applies the nature-aware sign rule to raw debit/credit totals.
func (a *Account) Balance(debit, credit decimal.Decimal) decimal.Decimal {
	if a.Type.IsDebitNormal() {
		return debit.Sub(credit)
	}
	return credit.Sub(debit)
}
