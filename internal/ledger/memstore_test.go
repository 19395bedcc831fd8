package ledger

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/htbacgiang/ecobacgiangBE/internal/domain/account"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/asset"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/debt"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/journal"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/outbox"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/partner"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/period"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/product"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// memDB is an in-memory stand-in for the document store. Values are copied
// on the way in and out so that a transaction can be rolled back by
// restoring a snapshot.
type memDB struct {
	mu       sync.Mutex
	accounts map[string]account.Account
	entries  map[string]journal.Entry
	debts    map[string]debt.Debt
	assets   map[string]asset.FixedAsset
	periods  map[string]period.Period
	products map[string]product.CostView
	partners map[string]partner.Partner
	outbox   map[string]outbox.Message
	order    int
	seq      map[string]int
}

func newMemDB() *memDB {
	return &memDB{
		accounts: map[string]account.Account{},
		entries:  map[string]journal.Entry{},
		debts:    map[string]debt.Debt{},
		assets:   map[string]asset.FixedAsset{},
		periods:  map[string]period.Period{},
		products: map[string]product.CostView{},
		partners: map[string]partner.Partner{},
		outbox:   map[string]outbox.Message{},
		seq:      map[string]int{},
	}
}

func cloneMap[K comparable, V any](m map[K]V, clone func(V) V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = clone(v)
	}
	return out
}

func same[V any](v V) V { return v }

func cloneEntry(e journal.Entry) journal.Entry {
	e.Lines = append([]journal.Line(nil), e.Lines...)
	return e
}

func cloneDebt(d debt.Debt) debt.Debt {
	d.Payments = append([]debt.Payment(nil), d.Payments...)
	return d
}

func cloneAsset(a asset.FixedAsset) asset.FixedAsset {
	a.History = append([]asset.DepreciationRecord(nil), a.History...)
	return a
}

type memSnapshot struct {
	accounts map[string]account.Account
	entries  map[string]journal.Entry
	debts    map[string]debt.Debt
	assets   map[string]asset.FixedAsset
	periods  map[string]period.Period
	products map[string]product.CostView
	outbox   map[string]outbox.Message
}

func (db *memDB) snapshot() memSnapshot {
	db.mu.Lock()
	defer db.mu.Unlock()
	return memSnapshot{
		accounts: cloneMap(db.accounts, same[account.Account]),
		entries:  cloneMap(db.entries, cloneEntry),
		debts:    cloneMap(db.debts, cloneDebt),
		assets:   cloneMap(db.assets, cloneAsset),
		periods:  cloneMap(db.periods, same[period.Period]),
		products: cloneMap(db.products, same[product.CostView]),
		outbox:   cloneMap(db.outbox, same[outbox.Message]),
	}
}

// restore rolls back everything except accounts, which are provisioned
// through a detached context, and partners, which live in Postgres.
func (db *memDB) restore(s memSnapshot) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.entries, db.debts, db.assets = s.entries, s.debts, s.assets
	db.periods, db.products, db.outbox = s.periods, s.products, s.outbox
}

type txKey struct{}

// memTx rolls the memDB back when fn fails. Nested calls join.
type memTx struct {
	db        *memDB
	commits   int
	rollbacks int
}

func (t *memTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	snap := t.db.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		t.db.restore(snap)
		t.rollbacks++
		return err
	}
	t.commits++
	return nil
}

func (t *memTx) Detach(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithCancel(context.Background())
}

// accounts

type memAccounts struct{ db *memDB }

func (r memAccounts) Create(_ context.Context, a *account.Account) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.accounts[a.Code]; ok {
		return account.ErrDuplicateAccount(a.Code)
	}
	r.db.accounts[a.Code] = *a
	return nil
}

func (r memAccounts) GetByCode(_ context.Context, code string) (*account.Account, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	a, ok := r.db.accounts[code]
	if !ok {
		return nil, account.ErrAccountNotFound(code)
	}
	return &a, nil
}

func (r memAccounts) List(_ context.Context, f account.Filter) ([]*account.Account, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []*account.Account{}
	for _, a := range r.db.accounts {
		if (f.Type != "" && a.Type != f.Type) || (f.Status != "" && a.Status != f.Status) {
			continue
		}
		a := a
		out = append(out, &a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r memAccounts) ListByCodes(_ context.Context, codes []string) (map[string]*account.Account, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := map[string]*account.Account{}
	for _, c := range codes {
		if a, ok := r.db.accounts[c]; ok {
			a := a
			out[c] = &a
		}
	}
	return out, nil
}

// journal entries

type memEntries struct{ db *memDB }

func (r memEntries) Insert(_ context.Context, e *journal.Entry) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, other := range r.db.entries {
		if other.Reference == e.Reference {
			return journal.ErrDuplicateReference(e.Reference)
		}
	}
	r.db.order++
	r.db.seq[e.ID] = r.db.order
	r.db.entries[e.ID] = cloneEntry(*e)
	return nil
}

func (r memEntries) GetByID(_ context.Context, id string) (*journal.Entry, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	e, ok := r.db.entries[id]
	if !ok {
		return nil, journal.ErrEntryNotFound(id)
	}
	e = cloneEntry(e)
	return &e, nil
}

func (r memEntries) find(match func(journal.Entry) bool) (*journal.Entry, bool) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var found *journal.Entry
	best := 0
	for id, e := range r.db.entries {
		if match(e) && (found == nil || r.db.seq[id] < best) {
			e := cloneEntry(e)
			found, best = &e, r.db.seq[id]
		}
	}
	return found, found != nil
}

func (r memEntries) GetByReference(_ context.Context, ref string) (*journal.Entry, error) {
	if e, ok := r.find(func(e journal.Entry) bool { return e.Reference == ref }); ok {
		return e, nil
	}
	return nil, journal.ErrEntryNotFound(ref)
}

func (r memEntries) FindBySource(_ context.Context, sourceType, sourceID string, typ journal.EntryType) (*journal.Entry, error) {
	if e, ok := r.find(func(e journal.Entry) bool {
		return e.SourceType == sourceType && e.SourceID == sourceID && e.Type == typ
	}); ok {
		return e, nil
	}
	return nil, journal.ErrEntryNotFound(sourceID)
}

func (r memEntries) FindBySourceAccount(_ context.Context, sourceID, code string) (*journal.Entry, error) {
	if e, ok := r.find(func(e journal.Entry) bool { return e.SourceID == sourceID && e.HasAccount(code) }); ok {
		return e, nil
	}
	return nil, journal.ErrEntryNotFound(sourceID)
}

func (r memEntries) all() []journal.Entry {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]journal.Entry, 0, len(r.db.entries))
	for _, e := range r.db.entries {
		out = append(out, cloneEntry(e))
	}
	sort.Slice(out, func(i, j int) bool { return r.db.seq[out[i].ID] < r.db.seq[out[j].ID] })
	return out
}

func inRange(t time.Time, from, to *time.Time) bool {
	return (from == nil || !t.Before(*from)) && (to == nil || !t.After(*to))
}

func (r memEntries) List(_ context.Context, f journal.ListFilter) ([]*journal.Entry, int64, error) {
	var out []*journal.Entry
	for _, e := range r.all() {
		if f.Type != "" && e.Type != f.Type {
			continue
		}
		if f.SourceID != "" && e.SourceID != f.SourceID {
			continue
		}
		if f.AccountCode != "" && !e.HasAccount(f.AccountCode) {
			continue
		}
		if !inRange(e.TransactionDate, f.From, f.To) {
			continue
		}
		e := e
		out = append(out, &e)
	}
	total := int64(len(out))
	if f.Offset < len(out) {
		out = out[f.Offset:]
	} else {
		out = nil
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, total, nil
}

func (r memEntries) Replace(_ context.Context, e *journal.Entry) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.entries[e.ID]; !ok {
		return journal.ErrEntryNotFound(e.ID)
	}
	r.db.entries[e.ID] = cloneEntry(*e)
	return nil
}

func (r memEntries) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.entries[id]; !ok {
		return journal.ErrEntryNotFound(id)
	}
	delete(r.db.entries, id)
	return nil
}

func (r memEntries) AccountTotals(_ context.Context, f journal.LineFilter) ([]journal.AccountTotal, error) {
	sums := map[string]*journal.AccountTotal{}
	var order []string
	for _, e := range r.all() {
		if !inRange(e.TransactionDate, f.From, f.To) || excluded(e.Type, f.ExcludeTypes) {
			continue
		}
		for _, l := range e.Lines {
			if len(f.AccountCodes) > 0 && !contains(f.AccountCodes, l.AccountCode) {
				continue
			}
			t, ok := sums[l.AccountCode]
			if !ok {
				t = &journal.AccountTotal{AccountCode: l.AccountCode, Debit: decimal.Zero, Credit: decimal.Zero}
				sums[l.AccountCode] = t
				order = append(order, l.AccountCode)
			}
			t.Debit = t.Debit.Add(l.Debit)
			t.Credit = t.Credit.Add(l.Credit)
		}
	}
	out := make([]journal.AccountTotal, 0, len(order))
	for _, c := range order {
		out = append(out, *sums[c])
	}
	return out, nil
}

func (r memEntries) AccountLines(_ context.Context, code string, from, to *time.Time) ([]journal.LedgerLine, error) {
	var out []journal.LedgerLine
	for _, e := range r.all() {
		if !inRange(e.TransactionDate, from, to) {
			continue
		}
		for _, l := range e.Lines {
			if l.AccountCode != code {
				continue
			}
			out = append(out, journal.LedgerLine{
				EntryID: e.ID, Reference: e.Reference, TransactionDate: e.TransactionDate,
				PostedAt: e.PostedAt, Memo: e.Memo, Type: e.Type, Line: l,
			})
		}
	}
	return out, nil
}

func excluded(t journal.EntryType, types []journal.EntryType) bool {
	for _, x := range types {
		if x == t {
			return true
		}
	}
	return false
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// debts

type memDebts struct{ db *memDB }

func (r memDebts) Create(_ context.Context, d *debt.Debt) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.debts[d.ID] = cloneDebt(*d)
	return nil
}

func (r memDebts) GetByID(_ context.Context, id string) (*debt.Debt, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	d, ok := r.db.debts[id]
	if !ok {
		return nil, debt.ErrDebtNotFound(id)
	}
	d = cloneDebt(d)
	return &d, nil
}

func (r memDebts) GetByJournalReference(_ context.Context, ref string) (*debt.Debt, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, d := range r.db.debts {
		if d.JournalReference == ref {
			d = cloneDebt(d)
			return &d, nil
		}
	}
	return nil, debt.ErrDebtNotFound(ref)
}

func (r memDebts) List(_ context.Context, f debt.Filter) ([]*debt.Debt, int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*debt.Debt
	for _, d := range r.db.debts {
		if f.Kind != "" && d.Kind != f.Kind {
			continue
		}
		if f.Status != "" && d.PaymentStatus != f.Status {
			continue
		}
		if f.PartnerID != "" && d.PartnerID != f.PartnerID {
			continue
		}
		if f.Outstanding && !d.IsOutstanding() {
			continue
		}
		d := cloneDebt(d)
		out = append(out, &d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, int64(len(out)), nil
}

func (r memDebts) Update(_ context.Context, d *debt.Debt) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.debts[d.ID]; !ok {
		return debt.ErrDebtNotFound(d.ID)
	}
	r.db.debts[d.ID] = cloneDebt(*d)
	return nil
}

func (r memDebts) CountByJournalEntry(_ context.Context, entryID string) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for _, d := range r.db.debts {
		if d.JournalEntryID == entryID || slices.ContainsFunc(d.Payments, func(p debt.Payment) bool {
			return p.JournalEntryID == entryID
		}) {
			n++
		}
	}
	return n, nil
}

// assets

type memAssets struct{ db *memDB }

func (r memAssets) Create(_ context.Context, a *asset.FixedAsset) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.assets[a.ID] = cloneAsset(*a)
	return nil
}

func (r memAssets) GetByID(_ context.Context, id string) (*asset.FixedAsset, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	a, ok := r.db.assets[id]
	if !ok {
		return nil, asset.ErrAssetNotFound(id)
	}
	a = cloneAsset(a)
	return &a, nil
}

func (r memAssets) List(ctx context.Context) ([]*asset.FixedAsset, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*asset.FixedAsset
	for _, a := range r.db.assets {
		a := cloneAsset(a)
		out = append(out, &a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r memAssets) ListActive(ctx context.Context) ([]*asset.FixedAsset, error) {
	all, _ := r.List(ctx)
	var out []*asset.FixedAsset
	for _, a := range all {
		if a.Status == asset.StatusActive {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r memAssets) Update(_ context.Context, a *asset.FixedAsset) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.assets[a.ID] = cloneAsset(*a)
	return nil
}

// periods

type memPeriods struct{ db *memDB }

func (r memPeriods) Create(_ context.Context, p *period.Period) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.periods[p.ID] = *p
	return nil
}

func (r memPeriods) GetByID(_ context.Context, id string) (*period.Period, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.periods[id]
	if !ok {
		return nil, period.ErrPeriodNotFound(id)
	}
	return &p, nil
}

func (r memPeriods) List(_ context.Context) ([]*period.Period, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*period.Period
	for _, p := range r.db.periods {
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (r memPeriods) MarkClosed(_ context.Context, id string, lock time.Time, by string, at time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.periods[id]
	if !ok {
		return period.ErrPeriodNotFound(id)
	}
	if p.Status != period.StatusOpen {
		return period.ErrPeriodClosed(id)
	}
	p.Status, p.LockDate, p.ClosedBy, p.ClosedAt = period.StatusClosed, &lock, by, &at
	r.db.periods[id] = p
	return nil
}

func (r memPeriods) LatestLockDate(_ context.Context) (*time.Time, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var latest *time.Time
	for _, p := range r.db.periods {
		if p.Status == period.StatusClosed && p.LockDate != nil && (latest == nil || p.LockDate.After(*latest)) {
			v := *p.LockDate
			latest = &v
		}
	}
	return latest, nil
}

// products

type memProducts struct{ db *memDB }

func (r memProducts) GetCost(_ context.Context, id string) (*product.CostView, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.products[id]
	if !ok {
		return nil, product.ErrProductNotFound(id)
	}
	return &p, nil
}

func (r memProducts) DecrementStock(_ context.Context, id string, qty int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.products[id]
	if !ok {
		return product.ErrProductNotFound(id)
	}
	p.Stock -= qty
	if p.Stock < 0 {
		p.Stock = 0
	}
	r.db.products[id] = p
	return nil
}

// partners

type memPartners struct {
	db        *memDB
	createErr func(p *partner.Partner) error
}

func (r *memPartners) Create(_ context.Context, p *partner.Partner) error {
	if r.createErr != nil {
		if err := r.createErr(p); err != nil {
			return err
		}
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, other := range r.db.partners {
		if other.Kind == p.Kind && other.ExternalID == p.ExternalID {
			return partner.ErrDuplicatePartner(p.Kind, p.ExternalID)
		}
	}
	r.db.order++
	r.db.partners[p.ID] = *p
	return nil
}

func (r *memPartners) GetByExternalID(_ context.Context, kind partner.Kind, externalID string) (*partner.Partner, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, p := range r.db.partners {
		if p.Kind == kind && p.ExternalID == externalID {
			return &p, nil
		}
	}
	return nil, partner.ErrPartnerNotFound(kind, externalID)
}

func (r *memPartners) FindByName(_ context.Context, kind partner.Kind, name string) ([]*partner.Partner, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*partner.Partner
	for _, p := range r.db.partners {
		if p.Kind == kind && strings.EqualFold(p.Name, name) {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memPartners) UpdateContact(_ context.Context, id, name, phone string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.partners[id]
	if !ok {
		return shared.NewNotFoundError("partner", id)
	}
	p.Name, p.Phone = name, phone
	r.db.partners[id] = p
	return nil
}

// outbox

type memOutbox struct{ db *memDB }

func (r memOutbox) Create(_ context.Context, m *outbox.Message) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.outbox[m.ID] = *m
	return nil
}

func (r memOutbox) GetPending(context.Context, int) ([]*outbox.Message, error) { return nil, nil }
func (r memOutbox) UpdateStatus(context.Context, string, outbox.Status) error  { return nil }
func (r memOutbox) IncrementAttempts(context.Context, string) error            { return nil }
func (r memOutbox) Delete(context.Context, string) error                       { return nil }

func (db *memDB) topics() map[string]int {
	db.mu.Lock()
	defer db.mu.Unlock()
	out := map[string]int{}
	for _, m := range db.outbox {
		out[m.Topic]++
	}
	return out
}

// harness wires every engine over one memDB.
type harness struct {
	db       *memDB
	tx       *memTx
	partners *memPartners
	chart    *ChartOfAccounts
	journal  *JournalStore
	posting  *PostingEngine
	debts    *DebtLedger
	closing  *ClosingEngine
	reports  *ReportingEngine
	dir      *PartnerDirectory
	now      time.Time
}

func newHarness() *harness {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db := newMemDB()
	tx := &memTx{db: db}
	partners := &memPartners{db: db}
	opts := DefaultOptions()

	chart := NewChartOfAccounts(memAccounts{db}, tx, logger)
	guard := NewLockGuard(memPeriods{db})
	publisher := NewOutboxPublisher(memOutbox{db}, logger)
	js := NewJournalStore(memEntries{db}, memDebts{db}, chart, guard, publisher, tx, logger)
	dir := NewPartnerDirectory(partners, logger)

	h := &harness{
		db:       db,
		tx:       tx,
		partners: partners,
		chart:    chart,
		journal:  js,
		dir:      dir,
		posting:  NewPostingEngine(js, chart, memEntries{db}, memDebts{db}, memAssets{db}, memProducts{db}, dir, tx, opts, logger),
		debts:    NewDebtLedger(memDebts{db}, js, publisher, tx, opts, logger),
		closing:  NewClosingEngine(memPeriods{db}, memEntries{db}, memAccounts{db}, js, publisher, tx, logger),
		reports:  NewReportingEngine(memEntries{db}, memAccounts{db}, memPeriods{db}, opts, logger),
		now:      time.Date(2024, 7, 15, 9, 0, 0, 0, time.UTC),
	}
	fixed := func() time.Time { return h.now }
	h.journal.now, h.posting.now, h.debts.now, h.closing.now, h.reports.now = fixed, fixed, fixed, fixed, fixed
	return h
}

func (h *harness) allEntries() []journal.Entry {
	return memEntries{h.db}.all()
}

func (h *harness) partnerCount() int {
	h.db.mu.Lock()
	defer h.db.mu.Unlock()
	return len(h.db.partners)
}

func (h *harness) allDebts() []*debt.Debt {
	out, _, _ := memDebts{h.db}.List(context.Background(), debt.Filter{})
	return out
}

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }
