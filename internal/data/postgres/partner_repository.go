// Package postgres provides the PostgreSQL side of the ledger: the partner
// directory of customers and suppliers that debts are attached to.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/htbacgiang/ecobacgiangBE/internal/domain/partner"
	"github.com/htbacgiang/ecobacgiangBE/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// PartnerRepository implements the partner.Repository interface for PostgreSQL
type PartnerRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewPartnerRepository creates a new PostgreSQL partner repository.
func NewPartnerRepository(logger *slog.Logger, db *persistence.PostgresDB) partner.Repository {
	return &PartnerRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// Create inserts a partner. A second partner with the same kind and external
// id violates the unique constraint and yields ErrDuplicatePartner.
func (r *PartnerRepository) Create(ctx context.Context, p *partner.Partner) error {
	query := `
		INSERT INTO partners (id, kind, external_id, name, phone, is_default, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.querier.Exec(ctx, query,
		p.ID,
		p.Kind,
		p.ExternalID,
		p.Name,
		p.Phone,
		p.IsDefault,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return partner.ErrDuplicatePartner(p.Kind, p.ExternalID)
		}
		r.logger.Error("Failed to create partner",
			"kind", p.Kind,
			"external_id", p.ExternalID,
			"error", err)
		return fmt.Errorf("failed to create partner: %w", err)
	}

	return nil
}

// GetByExternalID retrieves a partner by kind and external id
func (r *PartnerRepository) GetByExternalID(ctx context.Context, kind partner.Kind, externalID string) (*partner.Partner, error) {
	query := `
		SELECT id, kind, external_id, name, phone, is_default, created_at, updated_at
		FROM partners
		WHERE kind = $1 AND external_id = $2
	`

	var p partner.Partner
	err := r.querier.QueryRow(ctx, query, kind, externalID).Scan(
		&p.ID,
		&p.Kind,
		&p.ExternalID,
		&p.Name,
		&p.Phone,
		&p.IsDefault,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, partner.ErrPartnerNotFound(kind, externalID)
		}
		r.logger.Error("Failed to get partner",
			"kind", kind,
			"external_id", externalID,
			"error", err)
		return nil, fmt.Errorf("failed to get partner: %w", err)
	}

	return &p, nil
}

// FindByName returns the partners of kind whose name matches ignoring case,
// oldest first.
func (r *PartnerRepository) FindByName(ctx context.Context, kind partner.Kind, name string) ([]*partner.Partner, error) {
	query := `
		SELECT id, kind, external_id, name, phone, is_default, created_at, updated_at
		FROM partners
		WHERE kind = $1 AND LOWER(name) = LOWER($2)
		ORDER BY created_at ASC
	`

	rows, err := r.querier.Query(ctx, query, kind, name)
	if err != nil {
		r.logger.Error("Failed to find partners by name", "kind", kind, "error", err)
		return nil, fmt.Errorf("failed to find partners by name: %w", err)
	}
	defer rows.Close()

	partners := make([]*partner.Partner, 0)
	for rows.Next() {
		var p partner.Partner
		if err := rows.Scan(
			&p.ID,
			&p.Kind,
			&p.ExternalID,
			&p.Name,
			&p.Phone,
			&p.IsDefault,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			r.logger.Error("Failed to scan partner row", "error", err)
			return nil, fmt.Errorf("failed to scan partner row: %w", err)
		}
		partners = append(partners, &p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating partner rows", "error", err)
		return nil, fmt.Errorf("error iterating partner rows: %w", err)
	}

	return partners, nil
}

// UpdateContact overwrites the display name and phone of a partner
func (r *PartnerRepository) UpdateContact(ctx context.Context, id, name, phone string) error {
	query := `
		UPDATE partners
		SET name = $1, phone = $2, updated_at = NOW()
		WHERE id = $3
	`

	tag, err := r.querier.Exec(ctx, query, name, phone, id)
	if err != nil {
		r.logger.Error("Failed to update partner contact", "id", id, "error", err)
		return fmt.Errorf("failed to update partner contact: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return partner.ErrPartnerNotFound("", id)
	}

	return nil
}
