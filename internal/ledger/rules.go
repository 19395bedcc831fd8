package ledger

import (
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/account"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/debt"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/journal"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/order"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// FlowKind is the direction of a general posting.
type FlowKind string

const (
	FlowExpense FlowKind = "expense"
	FlowIncome  FlowKind = "income"
)

// SettlementStatus says whether cash moved at posting time.
type SettlementStatus string

const (
	SettlementPaid   SettlementStatus = "paid"
	SettlementUnpaid SettlementStatus = "unpaid"
)

// Category is the closed set of business categories a general posting may use.
type Category string

const (
	CategorySelling        Category = "selling"
	CategoryMarketing      Category = "marketing"
	CategoryShipping       Category = "shipping"
	CategoryAdministrative Category = "administrative"
	CategoryRent           Category = "rent"
	CategoryUtilities      Category = "utilities"
	CategoryPayroll        Category = "payroll"
	CategoryInterest       Category = "interest"
	CategoryPurchase       Category = "purchase"
	CategoryOtherExpense   Category = "other_expense"

	CategorySales           Category = "sales"
	CategoryFinancialIncome Category = "financial_income"
	CategoryOtherIncome     Category = "other_income"
)

var expenseCategories = map[Category]string{
	CategorySelling:        account.CodeSellingExpense,
	CategoryMarketing:      account.CodeSellingExpense,
	CategoryShipping:       account.CodeSellingExpense,
	CategoryAdministrative: account.CodeAdminExpense,
	CategoryRent:           account.CodeAdminExpense,
	CategoryUtilities:      account.CodeAdminExpense,
	CategoryPayroll:        account.CodeAdminExpense,
	CategoryInterest:       account.CodeFinancialExpense,
	CategoryPurchase:       account.CodeInventory,
	CategoryOtherExpense:   account.CodeOtherExpense,
}

var incomeCategories = map[Category]string{
	CategorySales:           account.CodeSalesRevenue,
	CategoryFinancialIncome: account.CodeFinancialIncome,
	CategoryOtherIncome:     account.CodeOtherIncome,
}

// CategoryAccount maps a category of the given flow to its account code.
func CategoryAccount(kind FlowKind, c Category) (string, error) {
	var table map[Category]string
	switch kind {
	case FlowExpense:
		table = expenseCategories
	case FlowIncome:
		table = incomeCategories
	default:
		return "", shared.NewValidationError("invalid posting kind", "kind", kind)
	}
	code, ok := table[c]
	if !ok {
		return "", shared.NewValidationError("unknown category", "kind", kind, "category", c)
	}
	return code, nil
}

// SettlementAccount picks cash or bank from the payment method.
func SettlementAccount(method string) string {
	if order.PaymentMethod(method) == order.PaymentMethodCash || method == "" {
		return account.CodeCash
	}
	return account.CodeBank
}

// GeneralPosting is the resolved shape of a general entry.
type GeneralPosting struct {
	Lines    []journal.Line
	DebtKind debt.Kind // empty when no debt is created
}

// GeneralRule is the decision table for general postings.
func GeneralRule(kind FlowKind, category Category, status SettlementStatus, method string, prepayment bool, amount decimal.Decimal) (GeneralPosting, error) {
	target, err := CategoryAccount(kind, category)
	if err != nil {
		return GeneralPosting{}, err
	}
	if status != SettlementPaid && status != SettlementUnpaid {
		return GeneralPosting{}, shared.NewValidationError("invalid payment status", "payment_status", status)
	}

	desc := string(category)
	switch kind {
	case FlowExpense:
		if prepayment {
			return GeneralPosting{}, shared.NewValidationError("prepayment applies to income only", "category", category)
		}
		switch {
		case category == CategoryPayroll:
			return GeneralPosting{Lines: []journal.Line{
				journal.DebitLine(target, amount, desc),
				journal.CreditLine(account.CodePayroll, amount, desc),
			}}, nil
		case status == SettlementPaid:
			return GeneralPosting{Lines: []journal.Line{
				journal.DebitLine(target, amount, desc),
				journal.CreditLine(SettlementAccount(method), amount, desc),
			}}, nil
		default:
			return GeneralPosting{Lines: []journal.Line{
				journal.DebitLine(target, amount, desc),
				journal.CreditLine(account.CodePayable, amount, desc),
			}, DebtKind: debt.KindPayable}, nil
		}

	default:
		switch {
		case status == SettlementPaid && prepayment:
			return GeneralPosting{Lines: []journal.Line{
				journal.DebitLine(SettlementAccount(method), amount, desc),
				journal.CreditLine(account.CodeDeferredRevenue, amount, desc),
			}}, nil
		case status == SettlementPaid:
			return GeneralPosting{Lines: []journal.Line{
				journal.DebitLine(SettlementAccount(method), amount, desc),
				journal.CreditLine(target, amount, desc),
			}}, nil
		case prepayment:
			return GeneralPosting{}, shared.NewValidationError("prepayment requires a paid status", "category", category)
		default:
			return GeneralPosting{Lines: []journal.Line{
				journal.DebitLine(account.CodeReceivable, amount, desc),
				journal.CreditLine(target, amount, desc),
			}, DebtKind: debt.KindReceivable}, nil
		}
	}
}
