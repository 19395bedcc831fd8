// Command event_processor turns order and payment events into journal
// postings and relays the ledger outbox to Kafka.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/htbacgiang/ecobacgiangBE/internal/components"
	"github.com/htbacgiang/ecobacgiangBE/internal/config"
	"github.com/htbacgiang/ecobacgiangBE/internal/data/mongo"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/shared"
	"github.com/htbacgiang/ecobacgiangBE/internal/event_processor/consumer"
	"github.com/htbacgiang/ecobacgiangBE/internal/event_processor/outbox_poller"
	"github.com/htbacgiang/ecobacgiangBE/internal/event_processor/service"
	"github.com/htbacgiang/ecobacgiangBE/internal/logger"
	"github.com/htbacgiang/ecobacgiangBE/internal/platform/messaging/consumers"
	"github.com/htbacgiang/ecobacgiangBE/internal/platform/messaging/producers"
	"github.com/htbacgiang/ecobacgiangBE/internal/platform/persistence"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.LoadConfig("event_processor")
	if err != nil {
		// no logger yet
		fmt.Fprintf(os.Stderr, "load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)
	if err := run(cfg, log); err != nil {
		log.Error("event_processor exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("event_processor stopped")
}

// closers releases resources in reverse order of acquisition.
type closers struct {
	log   *slog.Logger
	names []string
	fns   []func() error
}

func (c *closers) add(name string, fn func() error) {
	c.names = append(c.names, name)
	c.fns = append(c.fns, fn)
}

func (c *closers) closeAll() error {
	var errs []error
	for i := len(c.fns) - 1; i >= 0; i-- {
		if err := c.fns[i](); err != nil {
			c.log.Error("Close failed", "resource", c.names[i], "error", err)
			errs = append(errs, fmt.Errorf("close %s: %w", c.names[i], err))
		}
	}
	return errors.Join(errs...)
}

func run(cfg *config.Config, log *slog.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	res := &closers{log: log}
	defer func() {
		err = errors.Join(err, res.closeAll())
	}()

	postgresDB, err := persistence.NewPostgresDB(ctx, log, &cfg.Postgres)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	res.add("postgres", func() error { postgresDB.Close(); return nil })

	mongoDB, err := persistence.NewMongoDB(ctx, log, &cfg.MongoDB, mongo.NewRegistry())
	if err != nil {
		return fmt.Errorf("mongodb: %w", err)
	}
	res.add("mongodb", func() error {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.MongoDB.Timeout)
		defer cancel()
		return mongoDB.Close(closeCtx)
	})

	if err := mongo.EnsureIndexes(ctx, log, mongoDB.Database()); err != nil {
		return fmt.Errorf("mongodb indexes: %w", err)
	}

	l := components.CreateLedger(mongoDB, postgresDB, log, cfg)

	// A typed nil must not reach the handlers as a non-nil interface.
	var deadLetters producers.DeadLetterPublisher
	dlqProducer, err := producers.NewDLQProducer(ctx, log, &cfg.Kafka)
	if err != nil {
		return fmt.Errorf("dlq producer: %w", err)
	}
	if dlqProducer != nil {
		deadLetters = dlqProducer
		res.add("dlq producer", dlqProducer.Close)
	}

	eventProducer, err := producers.NewLedgerEventProducer(ctx, log, &cfg.Kafka,
		shared.TopicEntryPosted,
		shared.TopicPaymentSettled,
		shared.TopicPeriodClosed,
	)
	if err != nil {
		return fmt.Errorf("ledger event producer: %w", err)
	}
	res.add("ledger event producer", eventProducer.Close)

	processing, err := service.NewWorkerPoolProcessingService(
		service.NewProcessingService(l.Postings, l.Debts, log),
		service.WorkerPoolConfig{Size: cfg.WorkerPool.Size},
		log,
	)
	if err != nil {
		return err
	}
	res.add("worker pool", func() error { processing.Shutdown(); return nil })

	subscriptions := []struct {
		topic   string
		handler consumers.MessageHandler
	}{
		{cfg.Kafka.OrderTopic, consumer.NewOrderEventHandler(log, cfg.Kafka.OrderTopic, processing, deadLetters).HandleMessage},
		{cfg.Kafka.PaymentTopic, consumer.NewPaymentEventHandler(log, cfg.Kafka.PaymentTopic, processing, deadLetters).HandleMessage},
	}
	for _, sub := range subscriptions {
		c := consumers.NewKafkaConsumer(log, &cfg.Kafka, sub.topic).WithDeadLetters(deadLetters)
		res.add("consumer "+sub.topic, c.Close)
		if err := c.Subscribe(ctx, sub.handler); err != nil {
			return fmt.Errorf("subscribe %s: %w", sub.topic, err)
		}
	}

	poller := outbox_poller.NewPoller(
		&cfg.Outbox,
		l.Outbox,
		outbox_poller.NewKafkaRelay(l.Outbox, eventProducer, log),
		log,
	)

	log.Info("event_processor running",
		"order_topic", cfg.Kafka.OrderTopic,
		"payment_topic", cfg.Kafka.PaymentTopic,
		"workers", cfg.WorkerPool.Size,
	)

	var g errgroup.Group
	g.Go(func() error {
		poller.Start(ctx)
		return nil
	})
	<-ctx.Done()
	log.Info("Shutdown signal received")
	return g.Wait()
}
