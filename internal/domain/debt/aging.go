package debt

import (
	"time"

	"github.com/htbacgiang/ecobacgiangBE/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aging buckets by days past due.
const (
	BucketCurrent = "current"
	Bucket1To30   = "1-30"
	Bucket31To60  = "31-60"
	Bucket61To90  = "61-90"
	BucketOver90  = "90+"
)

// BucketOrder is the presentation order of aging buckets.
var BucketOrder = []string{BucketCurrent, Bucket1To30, Bucket31To60, Bucket61To90, BucketOver90}

// AgingBucket aggregates the outstanding debts that fall in one band.
type AgingBucket struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
	Count  int             `json:"count"`
}

// AgingReport groups outstanding debts by days overdue.
type AgingReport struct {
	Kind    Kind            `json:"kind"`
	AsOf    time.Time       `json:"as_of"`
	Buckets []AgingBucket   `json:"buckets"`
	Total   decimal.Decimal `json:"total"`
	Count   int             `json:"count"`
}

// BucketFor maps days overdue to a bucket name.
func BucketFor(daysOverdue int) string {
	switch {
	case daysOverdue <= 0:
		return BucketCurrent
	case daysOverdue <= 30:
		return Bucket1To30
	case daysOverdue <= 60:
		return Bucket31To60
	case daysOverdue <= 90:
		return Bucket61To90
	default:
		return BucketOver90
	}
}

// BuildAging buckets the outstanding debts of kind as of asOf.
func BuildAging(kind Kind, debts []*Debt, asOf time.Time) AgingReport {
	idx := make(map[string]int, len(BucketOrder))
	buckets := make([]AgingBucket, len(BucketOrder))
	for i, name := range BucketOrder {
		idx[name] = i
		buckets[i] = AgingBucket{Name: name, Amount: decimal.Zero}
	}

	report := AgingReport{Kind: kind, AsOf: asOf, Total: decimal.Zero}
	for _, d := range debts {
		if d.Kind != kind || !d.IsOutstanding() {
			continue
		}
		days := shared.DaysBetween(d.EffectiveDueDate(), asOf)
		b := &buckets[idx[BucketFor(days)]]
		b.Amount = b.Amount.Add(d.RemainingAmount)
		b.Count++
		report.Total = report.Total.Add(d.RemainingAmount)
		report.Count++
	}
	report.Buckets = buckets
	return report
}
