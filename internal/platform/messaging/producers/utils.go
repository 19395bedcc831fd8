package producers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// topicAdmin is the slice of *kafka.Conn used to provision topics.
type topicAdmin interface {
	ReadPartitions(topics ...string) ([]kafka.Partition, error)
	CreateTopics(topics ...kafka.TopicConfig) error
}

var (
	partitionReadAttempts = 5
	partitionReadBackoff  = 2 * time.Second
)

// dialAny returns a connection to the first reachable broker.
func dialAny(ctx context.Context, brokers []string) (*kafka.Conn, error) {
	if len(brokers) == 0 {
		return nil, errors.New("no kafka brokers configured")
	}
	var errs []error
	for _, addr := range brokers {
		conn, err := kafka.DialContext(ctx, "tcp", addr)
		if err == nil {
			return conn, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", addr, err))
	}
	return nil, fmt.Errorf("dial kafka: %w", errors.Join(errs...))
}

// ensureTopics creates every named topic the broker does not report. A fresh
// broker may lag on metadata, so partition reads are retried first.
func ensureTopics(admin topicAdmin, numPartitions, replicationFactor int, log *slog.Logger, topics ...string) error {
	numPartitions = max(numPartitions, 1)
	replicationFactor = max(replicationFactor, 1)

	for _, topic := range topics {
		if topic == "" {
			continue
		}

		n, readErr := countPartitions(admin, topic, log)
		if n > 0 {
			log.Debug("Kafka topic present", "topic", topic, "partitions", n)
			continue
		}

		log.Info("Creating Kafka topic", "topic", topic, "partitions", numPartitions, "last_read_error", readErr)
		err := admin.CreateTopics(kafka.TopicConfig{
			Topic:             topic,
			NumPartitions:     numPartitions,
			ReplicationFactor: replicationFactor,
		})
		if err != nil {
			return fmt.Errorf("create kafka topic %s: %w", topic, err)
		}
	}
	return nil
}

func countPartitions(admin topicAdmin, topic string, log *slog.Logger) (int, error) {
	var err error
	for attempt := 1; attempt <= partitionReadAttempts; attempt++ {
		var partitions []kafka.Partition
		partitions, err = admin.ReadPartitions(topic)
		if err == nil && len(partitions) > 0 {
			return len(partitions), nil
		}
		log.Debug("Topic metadata unavailable", "topic", topic, "attempt", attempt, "error", err)
		if attempt < partitionReadAttempts {
			time.Sleep(partitionReadBackoff)
		}
	}
	return 0, err
}
