package partner

import "context"

// Repository manages partner persistence.
type Repository interface {
	Create(ctx context.Context, p *Partner) error
	GetByExternalID(ctx context.Context, kind Kind, externalID string) (*Partner, error)
	// FindByName returns partners whose name matches case-insensitively,
	// oldest first.
	FindByName(ctx context.Context, kind Kind, name string) ([]*Partner, error)
	UpdateContact(ctx context.Context, id, name, phone string) error
}
