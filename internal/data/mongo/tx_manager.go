package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/htbacgiang/ecobacgiangBE/internal/domain/shared"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// TxManager runs units of work in MongoDB session transactions.
type TxManager struct {
	client        *mongo.Client
	detachTimeout time.Duration
	logger        *slog.Logger
}

func NewTxManager(logger *slog.Logger, client *mongo.Client, detachTimeout time.Duration) *TxManager {
	return &TxManager{
		client:        client,
		detachTimeout: detachTimeout,
		logger:        logger.With("component", "mongo_tx_manager"),
	}
}

// WithTransaction commits when fn succeeds and aborts otherwise. A context
// already bound to a session joins that transaction. There are no retries:
// the first error is returned to the caller.
func (m *TxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if mongo.SessionFromContext(ctx) != nil {
		return fn(ctx)
	}

	session, err := m.client.StartSession()
	if err != nil {
		m.logger.Error("Failed to start session", "error", err)
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(context.Background())

	txOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	return mongo.WithSession(ctx, session, func(sc mongo.SessionContext) error {
		if err := session.StartTransaction(txOpts); err != nil {
			m.logger.Error("Failed to start transaction", "error", err)
			return fmt.Errorf("failed to start transaction: %w", err)
		}

		if err := fn(sc); err != nil {
			if abortErr := session.AbortTransaction(context.Background()); abortErr != nil {
				m.logger.Warn("Failed to abort transaction", "error", abortErr)
			}
			return err
		}

		if err := session.CommitTransaction(sc); err != nil {
			m.logger.Error("Failed to commit transaction", "error", err)
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		return nil
	})
}

// Detach returns a session-free context that keeps the caller's deadline and
// correlation id.
func (m *TxManager) Detach(ctx context.Context) (context.Context, context.CancelFunc) {
	base := shared.WithCorrelationID(context.Background(), shared.CorrelationID(ctx))
	if deadline, ok := ctx.Deadline(); ok {
		return context.WithDeadline(base, deadline)
	}
	return context.WithTimeout(base, m.detachTimeout)
}
