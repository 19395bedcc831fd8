package outbox

import (
	"context"

	"github.com/htbacgiang/ecobacgiangBE/internal/domain/shared"
)

// Repository manages transactional outbox message persistence
type Repository interface {
	Create(ctx context.Context, message *Message) error
	GetPending(ctx context.Context, limit int) ([]*Message, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
	IncrementAttempts(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// ErrMessageNotFound indicates missing outbox message
func ErrMessageNotFound(id string) error {
	return shared.NewNotFoundError("outbox message", id)
}
