package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/htbacgiang/ecobacgiangBE/internal/domain/order"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/shared"
	"github.com/panjf2000/ants/v2"
)

// drainTimeout bounds how long Shutdown waits for in-flight postings.
const drainTimeout = 10 * time.Second

// WorkerPoolProcessingService caps the number of concurrent ledger postings.
// Callers still block until their posting finished, so a Kafka offset is
// only committed once the journal entry is durable.
type WorkerPoolProcessingService struct {
	next   ProcessingService
	pool   *ants.Pool
	logger *slog.Logger
}

type WorkerPoolConfig struct {
	Size int
}

func NewWorkerPoolProcessingService(
	next ProcessingService,
	config WorkerPoolConfig,
	logger *slog.Logger,
) (*WorkerPoolProcessingService, error) {
	logger = logger.With("component", "worker_pool")

	pool, err := ants.NewPool(config.Size,
		ants.WithLogger(slogAdapter{logger}),
	)
	if err != nil {
		return nil, fmt.Errorf("create worker pool of %d: %w", config.Size, err)
	}

	return &WorkerPoolProcessingService{
		next:   next,
		pool:   pool,
		logger: logger,
	}, nil
}

func (s *WorkerPoolProcessingService) ProcessOrderEvent(ctx context.Context, event *order.Event) error {
	evt := *event
	return s.run(ctx, "order", evt.EventID, func() error {
		return s.next.ProcessOrderEvent(ctx, &evt)
	})
}

func (s *WorkerPoolProcessingService) ProcessPaymentEvent(ctx context.Context, event *shared.PaymentEvent) error {
	evt := *event
	return s.run(ctx, "payment", evt.EventID, func() error {
		return s.next.ProcessPaymentEvent(ctx, &evt)
	})
}

// run executes task on a pooled goroutine and waits for it. A panicking
// posting is reported as an error so the message goes to the dead letter
// topic instead of killing the worker.
func (s *WorkerPoolProcessingService) run(ctx context.Context, kind, eventID string, task func() error) error {
	log := s.logger.With("event_kind", kind, "event_id", eventID)
	if id := shared.CorrelationID(ctx); id != "" {
		log = log.With("correlation_id", id)
	}

	done := make(chan error, 1)
	submitErr := s.pool.Submit(func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error("Posting panicked", "panic", r)
				done <- fmt.Errorf("posting %s event %s panicked: %v", kind, eventID, r)
			}
		}()
		done <- task()
	})
	if submitErr != nil {
		log.Error("Worker pool rejected event", "error", submitErr)
		return fmt.Errorf("submit %s event: %w", kind, submitErr)
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops accepting work and waits up to drainTimeout for running
// postings.
func (s *WorkerPoolProcessingService) Shutdown() {
	s.logger.Info("Draining worker pool", "running", s.pool.Running())
	if err := s.pool.ReleaseTimeout(drainTimeout); err != nil {
		s.logger.Warn("Worker pool did not drain in time", "error", err, "still_running", s.pool.Running())
	}
}

func (s *WorkerPoolProcessingService) Running() int {
	return s.pool.Running()
}

func (s *WorkerPoolProcessingService) Capacity() int {
	return s.pool.Cap()
}

// slogAdapter routes ants' internal messages into the service logger.
type slogAdapter struct{ logger *slog.Logger }

func (a slogAdapter) Printf(format string, args ...interface{}) {
	a.logger.Warn(fmt.Sprintf(format, args...))
}
