// Package config provides configuration structures and validation for the ledger
// binaries. It covers the HTTP server, the MongoDB ledger store, the PostgreSQL
// partner directory, Kafka intake and relay, and the accounting tunables.
package config

import (
	"errors"
	"strings"
	"time"
)

// Config holds the complete application configuration with settings for all components.
// Each field represents a major subsystem's configuration (e.g., HTTP server, databases,
// message queues) and is validated during application startup.
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Server      ServerConfig
	Kafka       KafkaConfig
	Postgres    PostgresConfig
	MongoDB     MongoDBConfig
	Outbox      OutboxConfig
	WorkerPool  WorkerPoolConfig
	Ledger      LedgerConfig
}

// ApplicationConfig contains general application configuration
type ApplicationConfig struct {
	Env  string
	Name string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port            int           // Port to listen on
	ShutdownTimeout time.Duration // Grace period for server shutdown
	ReadTimeout     time.Duration // Maximum duration for reading entire request
	WriteTimeout    time.Duration // Maximum duration for writing response
	IdleTimeout     time.Duration // Maximum duration to wait for next request
}

// KafkaConfig contains Kafka configuration
type KafkaConfig struct {
	Brokers           string // Comma separated host:port list
	OrderTopic        string // Order status transitions consumed for sale and COGS postings
	PaymentTopic      string // Payment confirmations consumed by the matcher
	NumPartitions     int    // Number of partitions for topics
	ReplicationFactor int    // Replication factor for topics
	ConsumerGroup     string
	MinBytes          int
	MaxBytes          int
	MaxWait           time.Duration
	StartOffset       int64
	DLQTopic          string // Topic for Dead Letter Queue
}

// BrokerList splits Brokers into addresses, dropping blanks.
func (k KafkaConfig) BrokerList() []string {
	var brokers []string
	for _, b := range strings.Split(k.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// PostgresConfig contains PostgreSQL configuration
type PostgresConfig struct {
	URL             string        // Database connection string
	MaxConns        int32         // Maximum number of open connections
	MinConns        int32         // Maximum number of idle connections
	ConnMaxLifetime time.Duration // Maximum lifetime of a connection
	ConnMaxIdleTime time.Duration // Maximum idle time of a connection
	MigrationsPath  string        // Path to migration files
}

// MongoDBConfig contains MongoDB configuration
type MongoDBConfig struct {
	URI             string
	Database        string
	Timeout         time.Duration
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
}

// OutboxConfig contains outbox pattern configuration
type OutboxConfig struct {
	PollingInterval  time.Duration
	BatchSize        int
	MaxRetryAttempts int // Maximum number of retry attempts for outbox messages
}

// WorkerPoolConfig contains worker pool configuration
type WorkerPoolConfig struct {
	Size int // Maximum number of workers in the pool
}

// LedgerConfig contains the accounting tunables of the posting, matching and
// reporting engines
type LedgerConfig struct {
	ReceivableGraceDays  int           // Due date offset of COD receivables from the ship date
	DefaultTermDays      int           // Term applied when a debt has no due date
	CorporateTaxRate     float64       // Flat rate applied to positive pre-tax profit
	MatchAmountTolerance float64       // Relative amount band of the heuristic payment matcher
	MatchLookback        time.Duration // How far back the heuristic matcher looks for invoices
	DetachTimeout        time.Duration // Budget for writes that must outlive a rolled-back transaction
}

// violations collects every invalid setting so one start-up attempt reports
// them all.
type violations []string

func (v *violations) required(key, value string) {
	if strings.TrimSpace(value) == "" {
		*v = append(*v, key+" is required")
	}
}

func (v *violations) positive(key string, value int64) {
	if value <= 0 {
		*v = append(*v, key+" must be greater than 0")
	}
}

func (v *violations) positiveDuration(key string, value time.Duration) {
	v.positive(key, int64(value))
}

// fraction requires value in [0, 1)
func (v *violations) fraction(key string, value float64) {
	if value < 0 || value >= 1 {
		*v = append(*v, key+" must be in [0, 1)")
	}
}

// validate checks every section. KAFKA_DLQ_TOPIC may be empty: dead letters
// are then disabled and unparseable events are retried.
func (c *Config) validate() error {
	var errs violations

	errs.positive("SERVER_PORT", int64(c.Server.Port))
	errs.positiveDuration("SERVER_SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)
	errs.positiveDuration("SERVER_READ_TIMEOUT", c.Server.ReadTimeout)
	errs.positiveDuration("SERVER_WRITE_TIMEOUT", c.Server.WriteTimeout)
	errs.positiveDuration("SERVER_IDLE_TIMEOUT", c.Server.IdleTimeout)

	errs.required("KAFKA_BROKERS", strings.Join(c.Kafka.BrokerList(), ","))
	errs.required("KAFKA_ORDER_TOPIC", c.Kafka.OrderTopic)
	errs.required("KAFKA_PAYMENT_TOPIC", c.Kafka.PaymentTopic)
	errs.required("KAFKA_CONSUMER_GROUP", c.Kafka.ConsumerGroup)
	errs.positive("KAFKA_CONSUMER_MIN_BYTES", int64(c.Kafka.MinBytes))
	errs.positive("KAFKA_CONSUMER_MAX_BYTES", int64(c.Kafka.MaxBytes))
	errs.positiveDuration("KAFKA_CONSUMER_MAX_WAIT", c.Kafka.MaxWait)
	if c.Kafka.DLQTopic != "" && (c.Kafka.DLQTopic == c.Kafka.OrderTopic || c.Kafka.DLQTopic == c.Kafka.PaymentTopic) {
		errs = append(errs, "KAFKA_DLQ_TOPIC must differ from the consumed topics")
	}

	errs.required("POSTGRES_URL", c.Postgres.URL)
	errs.required("POSTGRES_MIGRATIONS_PATH", c.Postgres.MigrationsPath)
	errs.positive("POSTGRES_MAX_CONNS", int64(c.Postgres.MaxConns))
	errs.positive("POSTGRES_MIN_CONNS", int64(c.Postgres.MinConns))
	errs.positiveDuration("POSTGRES_MAX_CONN_LIFETIME", c.Postgres.ConnMaxLifetime)
	errs.positiveDuration("POSTGRES_MAX_CONN_IDLE_TIME", c.Postgres.ConnMaxIdleTime)

	errs.required("MONGO_URI", c.MongoDB.URI)
	errs.required("MONGO_DATABASE", c.MongoDB.Database)
	errs.positiveDuration("MONGO_TIMEOUT", c.MongoDB.Timeout)
	errs.positive("MONGO_MAX_POOL_SIZE", int64(c.MongoDB.MaxPoolSize))
	errs.positive("MONGO_MIN_POOL_SIZE", int64(c.MongoDB.MinPoolSize))
	errs.positiveDuration("MONGO_MAX_CONN_IDLE_TIME", c.MongoDB.MaxConnIdleTime)

	errs.positiveDuration("OUTBOX_POLLING_INTERVAL", c.Outbox.PollingInterval)
	errs.positive("OUTBOX_BATCH_SIZE", int64(c.Outbox.BatchSize))
	errs.positive("OUTBOX_MAX_RETRY_ATTEMPTS", int64(c.Outbox.MaxRetryAttempts))

	errs.positive("WORKER_POOL_SIZE", int64(c.WorkerPool.Size))

	if c.Ledger.ReceivableGraceDays < 0 {
		errs = append(errs, "LEDGER_RECEIVABLE_GRACE_DAYS must not be negative")
	}
	errs.positive("LEDGER_DEFAULT_TERM_DAYS", int64(c.Ledger.DefaultTermDays))
	errs.fraction("LEDGER_CORPORATE_TAX_RATE", c.Ledger.CorporateTaxRate)
	errs.fraction("LEDGER_MATCH_AMOUNT_TOLERANCE", c.Ledger.MatchAmountTolerance)
	errs.positiveDuration("LEDGER_MATCH_LOOKBACK", c.Ledger.MatchLookback)
	errs.positiveDuration("LEDGER_DETACH_TIMEOUT", c.Ledger.DetachTimeout)

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, ", "))
	}
	return nil
}
