package period

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/shared"
)

// Status of an accounting period. Closed is terminal.
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// Period is a bounded accounting interval.
type Period struct {
	ID        string     `json:"id" bson:"_id"`
	Name      string     `json:"name" bson:"name"`
	StartDate time.Time  `json:"start_date" bson:"start_date"`
	EndDate   time.Time  `json:"end_date" bson:"end_date"`
	LockDate  *time.Time `json:"lock_date,omitempty" bson:"lock_date,omitempty"`
	Status    Status     `json:"status" bson:"status"`
	ClosedBy  string     `json:"closed_by,omitempty" bson:"closed_by,omitempty"`
	ClosedAt  *time.Time `json:"closed_at,omitempty" bson:"closed_at,omitempty"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
}

// NewPeriod builds an open period covering whole days start..end.
func NewPeriod(name string, start, end time.Time) (*Period, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewValidationError("period name is required")
	}
	if start.IsZero() || end.IsZero() {
		return nil, shared.NewValidationError("period dates are required", "name", name)
	}
	start, end = shared.StartOfDay(start), shared.StartOfDay(end)
	if end.Before(start) {
		return nil, shared.NewValidationError("period end is before start", "name", name)
	}
	return &Period{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(name),
		StartDate: start,
		EndDate:   end,
		Status:    StatusOpen,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Overlaps reports whether the two periods share at least one day.
func (p *Period) Overlaps(other *Period) bool {
	return !p.EndDate.Before(other.StartDate) && !other.EndDate.Before(p.StartDate)
}

// IsClosed reports whether the period has been closed.
func (p *Period) IsClosed() bool {
	return p.Status == StatusClosed
}

// Contains reports whether t falls on a day inside the period.
func (p *Period) Contains(t time.Time) bool {
	day := shared.StartOfDay(t)
	return !day.Before(p.StartDate) && !day.After(p.EndDate)
}
