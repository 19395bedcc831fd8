package account

// WellKnown is the allow-list of codes that may be provisioned on first use.
// 214 is a contra-asset kept under the asset class; 911 is typed equity so the
// closing run never picks it up as a revenue or expense account.
var WellKnown = map[string]struct {
	Name string
	Type Type
}{
	"111":  {"Cash", TypeAsset},
	"112":  {"Bank deposits", TypeAsset},
	"131":  {"Receivables from customers", TypeAsset},
	"156":  {"Inventory", TypeAsset},
	"211":  {"Fixed assets", TypeAsset},
	"214":  {"Accumulated depreciation", TypeAsset},
	"331":  {"Payables to suppliers", TypeLiability},
	"3331": {"VAT payable", TypeLiability},
	"3334": {"Corporate income tax payable", TypeLiability},
	"334":  {"Payroll payable", TypeLiability},
	"3387": {"Deferred revenue", TypeLiability},
	"411":  {"Owner capital", TypeEquity},
	"421":  {"Retained earnings", TypeEquity},
	"511":  {"Sales revenue", TypeRevenue},
	"515":  {"Financial income", TypeRevenue},
	"632":  {"Cost of goods sold", TypeExpense},
	"635":  {"Financial expense", TypeExpense},
	"641":  {"Selling expense", TypeExpense},
	"642":  {"Administrative expense", TypeExpense},
	"711":  {"Other income", TypeRevenue},
	"811":  {"Other expense", TypeExpense},
	"821":  {"Corporate income tax expense", TypeExpense},
	"911":  {"Income summary", TypeEquity},
}

// Codes used by the posting rules.
const (
	CodeCash              = "111"
	CodeBank              = "112"
	CodeReceivable        = "131"
	CodeInventory         = "156"
	CodeFixedAssets       = "211"
	CodeAccumDepreciation = "214"
	CodePayable           = "331"
	CodeVATPayable        = "3331"
	CodeTaxPayable        = "3334"
	CodePayroll           = "334"
	CodeDeferredRevenue   = "3387"
	CodeOwnerCapital      = "411"
	CodeRetainedEarnings  = "421"
	CodeSalesRevenue      = "511"
	CodeFinancialIncome   = "515"
	CodeCOGS              = "632"
	CodeFinancialExpense  = "635"
	CodeSellingExpense    = "641"
	CodeAdminExpense      = "642"
	CodeOtherIncome       = "711"
	CodeOtherExpense      = "811"
	CodeIncomeTaxExpense  = "821"
	CodeIncomeSummary     = "911"
)

// NewWellKnown builds the allow-listed account for code, or false when code is
// not on the list.
func NewWellKnown(code string) (*Account, bool) {
	def, ok := WellKnown[code]
	if !ok {
		return nil, false
	}
	acc, err := NewAccount(code, def.Name, def.Type, "")
	if err != nil {
		return nil, false
	}
	acc.System = true
	return acc, true
}
