package outbox_poller

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/htbacgiang/ecobacgiangBE/internal/config"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/outbox"
)

// Poller drains the ledger outbox into the broker. Messages that keep
// failing are parked as failed_to_publish after maxAttempts relays.
type Poller struct {
	repo        outbox.Repository
	relay       Relay
	logger      *slog.Logger
	interval    time.Duration
	batchSize   int
	maxAttempts int
}

func NewPoller(
	cfg *config.OutboxConfig,
	repo outbox.Repository,
	relay Relay,
	logger *slog.Logger,
) *Poller {
	return &Poller{
		repo:        repo,
		relay:       relay,
		logger:      logger.With("component", "outbox_poller"),
		interval:    cfg.PollingInterval,
		batchSize:   cfg.BatchSize,
		maxAttempts: cfg.MaxRetryAttempts,
	}
}

// batchStats summarises one drain pass.
type batchStats struct {
	fetched int
	relayed int
	failed  int
	parked  int
}

// Start drains once immediately and then on every tick until ctx is done.
func (p *Poller) Start(ctx context.Context) {
	p.logger.Info("Outbox poller started",
		"interval", p.interval.String(),
		"batch_size", p.batchSize,
		"max_attempts", p.maxAttempts,
	)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		p.tick(ctx)
		select {
		case <-ctx.Done():
			p.logger.Info("Outbox poller stopped")
			return
		case <-ticker.C:
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	stats, err := p.drain(ctx)
	if err != nil {
		p.logger.Error("Outbox drain failed", "error", err)
		return
	}
	if stats.fetched > 0 {
		p.logger.Info("Outbox drained",
			"fetched", stats.fetched,
			"relayed", stats.relayed,
			"failed", stats.failed,
			"parked", stats.parked,
		)
	}
}

func (p *Poller) drain(ctx context.Context) (batchStats, error) {
	var stats batchStats

	pending, err := p.repo.GetPending(ctx, p.batchSize)
	if err != nil {
		return stats, fmt.Errorf("fetch pending outbox messages: %w", err)
	}
	stats.fetched = len(pending)

	for _, msg := range pending {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		relayErr := p.relay.Relay(ctx, msg)
		if relayErr == nil {
			stats.relayed++
			continue
		}

		stats.failed++
		if p.recordFailure(ctx, msg, relayErr) {
			stats.parked++
		}
	}
	return stats, nil
}

// recordFailure bumps the attempt counter and parks the message once the
// budget is spent. It reports whether the message was parked.
func (p *Poller) recordFailure(ctx context.Context, msg *outbox.Message, relayErr error) bool {
	log := p.logger.With("outbox_id", msg.ID, "topic", msg.Topic)
	if msg.CorrelationID != "" {
		log = log.With("correlation_id", msg.CorrelationID)
	}

	attempts := msg.Attempts + 1
	log.Warn("Outbox relay failed", "attempt", attempts, "error", relayErr)

	if err := p.repo.IncrementAttempts(ctx, msg.ID); err != nil {
		log.Error("Could not record outbox attempt", "error", err)
		return false
	}
	if attempts < p.maxAttempts {
		return false
	}

	if err := p.repo.UpdateStatus(ctx, msg.ID, outbox.StatusFailedToPublish); err != nil {
		log.Error("Could not park outbox message", "error", err)
		return false
	}
	log.Error("Outbox message parked after exhausting attempts", "attempts", attempts)
	return true
}
