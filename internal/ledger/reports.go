package ledger

import (
	"sort"
	"strings"
	"time"

	"github.com/htbacgiang/ecobacgiangBE/internal/domain/account"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/journal"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TrialBalanceRow is one account of the trial balance.
type TrialBalanceRow struct {
	Code    string          `json:"code"`
	Name    string          `json:"name"`
	Type    account.Type    `json:"type"`
	Debit   decimal.Decimal `json:"debit"`
	Credit  decimal.Decimal `json:"credit"`
	Balance decimal.Decimal `json:"balance"`
}

// TrialBalance lists every account touched in the range.
type TrialBalance struct {
	From        *time.Time        `json:"from,omitempty"`
	To          *time.Time        `json:"to,omitempty"`
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal   `json:"total_debit"`
	TotalCredit decimal.Decimal   `json:"total_credit"`
	Balanced    bool              `json:"balanced"`
}

// BuildTrialBalance joins account totals with account metadata, sorted by code.
func BuildTrialBalance(totals []journal.AccountTotal, accounts map[string]*account.Account) TrialBalance {
	tb := TrialBalance{Rows: make([]TrialBalanceRow, 0, len(totals)), TotalDebit: decimal.Zero, TotalCredit: decimal.Zero}
	for _, t := range totals {
		row := TrialBalanceRow{Code: t.AccountCode, Debit: t.Debit, Credit: t.Credit, Balance: t.Debit.Sub(t.Credit)}
		if acc, ok := accounts[t.AccountCode]; ok {
			row.Name, row.Type = acc.Name, acc.Type
			row.Balance = acc.Balance(t.Debit, t.Credit)
		}
		tb.Rows = append(tb.Rows, row)
		tb.TotalDebit = tb.TotalDebit.Add(t.Debit)
		tb.TotalCredit = tb.TotalCredit.Add(t.Credit)
	}
	sort.Slice(tb.Rows, func(i, j int) bool { return tb.Rows[i].Code < tb.Rows[j].Code })
	tb.Balanced = shared.WithinTolerance(tb.TotalDebit, tb.TotalCredit)
	return tb
}

// AccountLedgerRow is one line of an account ledger with its running balance.
type AccountLedgerRow struct {
	EntryID         string            `json:"entry_id"`
	Reference       string            `json:"reference"`
	TransactionDate time.Time         `json:"transaction_date"`
	Type            journal.EntryType `json:"type"`
	Memo            string            `json:"memo,omitempty"`
	Description     string            `json:"description,omitempty"`
	Debit           decimal.Decimal   `json:"debit"`
	Credit          decimal.Decimal   `json:"credit"`
	Balance         decimal.Decimal   `json:"balance"`
}

// AccountLedger replays one account's lines in order.
type AccountLedger struct {
	Account        *account.Account   `json:"account"`
	Rows           []AccountLedgerRow `json:"rows"`
	TotalDebit     decimal.Decimal    `json:"total_debit"`
	TotalCredit    decimal.Decimal    `json:"total_credit"`
	ClosingBalance decimal.Decimal    `json:"closing_balance"`
}

// BuildAccountLedger accumulates debit minus credit from zero.
func BuildAccountLedger(acc *account.Account, lines []journal.LedgerLine) AccountLedger {
	sorted := make([]journal.LedgerLine, len(lines))
	copy(sorted, lines)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.TransactionDate.Equal(b.TransactionDate) {
			return a.TransactionDate.Before(b.TransactionDate)
		}
		if !a.PostedAt.Equal(b.PostedAt) {
			return a.PostedAt.Before(b.PostedAt)
		}
		return a.Reference < b.Reference
	})

	out := AccountLedger{Account: acc, Rows: make([]AccountLedgerRow, 0, len(sorted))}
	running, debit, credit := decimal.Zero, decimal.Zero, decimal.Zero
	for _, l := range sorted {
		running = running.Add(l.Line.Debit).Sub(l.Line.Credit)
		debit = debit.Add(l.Line.Debit)
		credit = credit.Add(l.Line.Credit)
		out.Rows = append(out.Rows, AccountLedgerRow{
			EntryID:         l.EntryID,
			Reference:       l.Reference,
			TransactionDate: l.TransactionDate,
			Type:            l.Type,
			Memo:            l.Memo,
			Description:     l.Line.Description,
			Debit:           l.Line.Debit,
			Credit:          l.Line.Credit,
			Balance:         running,
		})
	}
	out.TotalDebit, out.TotalCredit, out.ClosingBalance = debit, credit, running
	return out
}

// BalanceSheetLine is one account in a balance sheet section.
type BalanceSheetLine struct {
	Code    string          `json:"code"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

// BalanceSheetSection groups the accounts of one class.
type BalanceSheetSection struct {
	Label    string             `json:"label"`
	Accounts []BalanceSheetLine `json:"accounts"`
	Total    decimal.Decimal    `json:"total"`
}

// BalanceSheet is the position at a date.
type BalanceSheet struct {
	AsOf                      time.Time           `json:"as_of"`
	Assets                    BalanceSheetSection `json:"assets"`
	Liabilities               BalanceSheetSection `json:"liabilities"`
	Equity                    BalanceSheetSection `json:"equity"`
	CurrentRetainedEarnings   decimal.Decimal     `json:"current_retained_earnings"`
	TotalLiabilitiesAndEquity decimal.Decimal     `json:"total_liabilities_and_equity"`
	Difference                decimal.Decimal     `json:"difference"`
	Balanced                  bool                `json:"balanced"`
	LockedThrough             *time.Time          `json:"locked_through,omitempty"`
}

// BuildBalanceSheet places nature-aware cumulative balances into sections
// and folds in the profit not yet closed.
func BuildBalanceSheet(asOf time.Time, totals []journal.AccountTotal, accounts map[string]*account.Account, unclosedProfit decimal.Decimal) BalanceSheet {
	bs := BalanceSheet{
		AsOf:        asOf,
		Assets:      BalanceSheetSection{Label: "Assets", Accounts: []BalanceSheetLine{}, Total: decimal.Zero},
		Liabilities: BalanceSheetSection{Label: "Liabilities", Accounts: []BalanceSheetLine{}, Total: decimal.Zero},
		Equity:      BalanceSheetSection{Label: "Equity", Accounts: []BalanceSheetLine{}, Total: decimal.Zero},
	}

	sorted := make([]journal.AccountTotal, len(totals))
	copy(sorted, totals)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].AccountCode < sorted[j].AccountCode })

	for _, t := range sorted {
		acc, ok := accounts[t.AccountCode]
		if !ok {
			continue
		}
		balance := acc.Balance(t.Debit, t.Credit)
		if balance.IsZero() {
			continue
		}
		row := BalanceSheetLine{Code: acc.Code, Name: acc.Name, Balance: balance}
		var section *BalanceSheetSection
		switch acc.Type {
		case account.TypeAsset:
			section = &bs.Assets
		case account.TypeLiability:
			section = &bs.Liabilities
		case account.TypeEquity:
			section = &bs.Equity
		default:
			continue
		}
		section.Accounts = append(section.Accounts, row)
		section.Total = section.Total.Add(balance)
	}

	bs.CurrentRetainedEarnings = unclosedProfit
	bs.TotalLiabilitiesAndEquity = bs.Liabilities.Total.Add(bs.Equity.Total).Add(unclosedProfit)
	bs.Difference = bs.Assets.Total.Sub(bs.TotalLiabilitiesAndEquity)
	bs.Balanced = bs.Difference.Abs().LessThanOrEqual(shared.BalanceTolerance)
	return bs
}

// UnclosedProfit is revenue minus expense over the given totals.
func UnclosedProfit(totals []journal.AccountTotal, accounts map[string]*account.Account) decimal.Decimal {
	profit := decimal.Zero
	for _, t := range totals {
		acc, ok := accounts[t.AccountCode]
		if !ok {
			continue
		}
		switch acc.Type {
		case account.TypeRevenue:
			profit = profit.Add(t.Credit.Sub(t.Debit))
		case account.TypeExpense:
			profit = profit.Sub(t.Debit.Sub(t.Credit))
		}
	}
	return profit
}

// ProfitAndLoss is the income statement for a range.
type ProfitAndLoss struct {
	From             *time.Time      `json:"from,omitempty"`
	To               *time.Time      `json:"to,omitempty"`
	Revenue          decimal.Decimal `json:"revenue"`
	COGS             decimal.Decimal `json:"cogs"`
	GrossProfit      decimal.Decimal `json:"gross_profit"`
	FinancialIncome  decimal.Decimal `json:"financial_income"`
	FinancialExpense decimal.Decimal `json:"financial_expense"`
	SellingExpense   decimal.Decimal `json:"selling_expense"`
	AdminExpense     decimal.Decimal `json:"admin_expense"`
	OperatingProfit  decimal.Decimal `json:"operating_profit"`
	OtherIncome      decimal.Decimal `json:"other_income"`
	OtherExpense     decimal.Decimal `json:"other_expense"`
	ProfitBeforeTax  decimal.Decimal `json:"profit_before_tax"`
	TaxRate          decimal.Decimal `json:"tax_rate"`
	IncomeTaxExpense decimal.Decimal `json:"income_tax_expense"`
	NetProfit        decimal.Decimal `json:"net_profit"`
}

// BuildProfitAndLoss classifies nature-aware balances by code prefix. Expense
// accounts outside the named lines, except 821, count as other expense.
func BuildProfitAndLoss(totals []journal.AccountTotal, accounts map[string]*account.Account, taxRate decimal.Decimal) ProfitAndLoss {
	pl := ProfitAndLoss{
		Revenue:          decimal.Zero,
		COGS:             decimal.Zero,
		FinancialIncome:  decimal.Zero,
		FinancialExpense: decimal.Zero,
		SellingExpense:   decimal.Zero,
		AdminExpense:     decimal.Zero,
		OtherIncome:      decimal.Zero,
		OtherExpense:     decimal.Zero,
		IncomeTaxExpense: decimal.Zero,
		TaxRate:          taxRate,
	}
	for _, t := range totals {
		acc, ok := accounts[t.AccountCode]
		if !ok {
			continue
		}
		code := acc.Code
		switch acc.Type {
		case account.TypeRevenue:
			amount := t.Credit.Sub(t.Debit)
			switch {
			case strings.HasPrefix(code, account.CodeSalesRevenue):
				pl.Revenue = pl.Revenue.Add(amount)
			case strings.HasPrefix(code, account.CodeFinancialIncome):
				pl.FinancialIncome = pl.FinancialIncome.Add(amount)
			default:
				pl.OtherIncome = pl.OtherIncome.Add(amount)
			}
		case account.TypeExpense:
			amount := t.Debit.Sub(t.Credit)
			switch {
			case strings.HasPrefix(code, account.CodeCOGS):
				pl.COGS = pl.COGS.Add(amount)
			case strings.HasPrefix(code, account.CodeSellingExpense):
				pl.SellingExpense = pl.SellingExpense.Add(amount)
			case strings.HasPrefix(code, account.CodeAdminExpense):
				pl.AdminExpense = pl.AdminExpense.Add(amount)
			case strings.HasPrefix(code, account.CodeFinancialExpense):
				pl.FinancialExpense = pl.FinancialExpense.Add(amount)
			case strings.HasPrefix(code, account.CodeIncomeTaxExpense):
				// recomputed from pre-tax profit below
			default:
				pl.OtherExpense = pl.OtherExpense.Add(amount)
			}
		}
	}

	pl.GrossProfit = pl.Revenue.Sub(pl.COGS)
	pl.OperatingProfit = pl.GrossProfit.
		Add(pl.FinancialIncome).
		Sub(pl.FinancialExpense).
		Sub(pl.SellingExpense).
		Sub(pl.AdminExpense)
	pl.ProfitBeforeTax = pl.OperatingProfit.Add(pl.OtherIncome).Sub(pl.OtherExpense)
	if pl.ProfitBeforeTax.IsPositive() {
		pl.IncomeTaxExpense = shared.RoundMoney(pl.ProfitBeforeTax.Mul(taxRate))
	}
	pl.NetProfit = pl.ProfitBeforeTax.Sub(pl.IncomeTaxExpense)
	return pl
}
