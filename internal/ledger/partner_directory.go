package ledger

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/partner"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/shared"
)

// maxSyntheticAttempts bounds the suffix retries for auto-generated ids.
const maxSyntheticAttempts = 5

// PartnerDirectory resolves counterparties to stable partner records.
type PartnerDirectory struct {
	repo   partner.Repository
	logger *slog.Logger
}

func NewPartnerDirectory(repo partner.Repository, logger *slog.Logger) *PartnerDirectory {
	return &PartnerDirectory{
		repo:   repo,
		logger: logger.With("component", "partner_directory"),
	}
}

// Resolve finds or creates the partner for ref. An empty ref resolves to the
// shared default partner of the direction.
func (d *PartnerDirectory) Resolve(ctx context.Context, kind partner.Kind, ref partner.Ref) (*partner.Partner, error) {
	if !kind.IsValid() {
		return nil, shared.NewValidationError("invalid partner kind", "kind", kind)
	}
	ref.ExternalID = strings.TrimSpace(ref.ExternalID)
	ref.Name = partner.NormalizeName(ref.Name)
	ref.Phone = partner.NormalizePhone(ref.Phone)

	if ref.IsZero() {
		return d.Default(ctx, kind)
	}
	if ref.ExternalID != "" {
		return d.resolveByExternalID(ctx, kind, ref)
	}
	return d.resolveByName(ctx, kind, ref)
}

// Default returns the shared fallback partner, creating it on first use.
func (d *PartnerDirectory) Default(ctx context.Context, kind partner.Kind) (*partner.Partner, error) {
	externalID := kind.DefaultExternalID()
	p, err := d.repo.GetByExternalID(ctx, kind, externalID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	name := "Walk-in customer"
	if kind == partner.KindSupplier {
		name = "Sundry supplier"
	}
	p = newPartner(kind, externalID, name, "")
	p.IsDefault = true
	if err := d.repo.Create(ctx, p); err != nil {
		if errors.Is(err, shared.ErrConflict) {
			return d.repo.GetByExternalID(ctx, kind, externalID)
		}
		return nil, err
	}
	d.logger.Info("Default partner created", "kind", kind, "partner_id", p.ID)
	return p, nil
}

func (d *PartnerDirectory) resolveByExternalID(ctx context.Context, kind partner.Kind, ref partner.Ref) (*partner.Partner, error) {
	p, err := d.repo.GetByExternalID(ctx, kind, ref.ExternalID)
	if err == nil {
		d.backfill(ctx, p, ref)
		return p, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	name := ref.Name
	if name == "" {
		name = ref.ExternalID
	}
	p = newPartner(kind, ref.ExternalID, name, ref.Phone)
	if err := d.repo.Create(ctx, p); err != nil {
		if errors.Is(err, shared.ErrConflict) {
			return d.repo.GetByExternalID(ctx, kind, ref.ExternalID)
		}
		return nil, err
	}
	d.logger.Info("Partner created", "kind", kind, "external_id", p.ExternalID)
	return p, nil
}

// resolveByName applies the deduplication policy: same name and matching
// phone is the same partner; a record without a phone adopts the caller's;
// a different phone is a different partner.
func (d *PartnerDirectory) resolveByName(ctx context.Context, kind partner.Kind, ref partner.Ref) (*partner.Partner, error) {
	candidates, err := d.repo.FindByName(ctx, kind, ref.Name)
	if err != nil {
		return nil, err
	}
	for _, c := range candidates {
		if c.IsDefault || !partner.SameName(c.Name, ref.Name) {
			continue
		}
		switch {
		case ref.Phone == "" || c.Phone == ref.Phone:
			return c, nil
		case c.Phone == "":
			d.backfill(ctx, c, ref)
			return c, nil
		}
	}

	for attempt := 1; attempt <= maxSyntheticAttempts; attempt++ {
		p := newPartner(kind, partner.SyntheticExternalID(kind, ref.Name, attempt), ref.Name, ref.Phone)
		err := d.repo.Create(ctx, p)
		if err == nil {
			d.logger.Info("Partner created", "kind", kind, "external_id", p.ExternalID)
			return p, nil
		}
		if !errors.Is(err, shared.ErrConflict) {
			return nil, err
		}
		d.logger.Debug("Synthetic partner id taken, retrying", "external_id", p.ExternalID, "attempt", attempt)
	}

	d.logger.Warn("Falling back to default partner", "kind", kind, "name", ref.Name)
	return d.Default(ctx, kind)
}

// backfill copies missing contact details from ref. Failures are logged only.
func (d *PartnerDirectory) backfill(ctx context.Context, p *partner.Partner, ref partner.Ref) {
	name, phone := p.Name, p.Phone
	if phone == "" && ref.Phone != "" {
		phone = ref.Phone
	}
	if (name == "" || name == p.ExternalID) && ref.Name != "" {
		name = ref.Name
	}
	if name == p.Name && phone == p.Phone {
		return
	}
	if err := d.repo.UpdateContact(ctx, p.ID, name, phone); err != nil {
		d.logger.Warn("Failed to backfill partner contact", "partner_id", p.ID, "error", err)
		return
	}
	p.Name, p.Phone = name, phone
}

func newPartner(kind partner.Kind, externalID, name, phone string) *partner.Partner {
	now := time.Now().UTC()
	return &partner.Partner{
		ID:         uuid.NewString(),
		Kind:       kind,
		ExternalID: externalID,
		Name:       name,
		Phone:      phone,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
