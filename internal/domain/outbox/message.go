package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Status tracks relay progress of an outbox message.
type Status string

const (
	StatusPending         Status = "pending"
	StatusProcessed       Status = "processed"
	StatusFailedToPublish Status = "failed_to_publish"
)

// Message stores a ledger event for reliable publishing
type Message struct {
	ID            string          `json:"id" bson:"_id"`
	Topic         string          `json:"topic" bson:"topic"`
	Key           string          `json:"key" bson:"key"`
	Payload       json.RawMessage `json:"payload" bson:"payload"`
	Status        Status          `json:"status" bson:"status"`
	Attempts      int             `json:"attempts" bson:"attempts"`
	CorrelationID string          `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at" bson:"created_at"`
	LastAttemptAt *time.Time      `json:"last_attempt_at,omitempty" bson:"last_attempt_at,omitempty"`
}

// NewMessage marshals payload into a pending message for topic.
func NewMessage(topic, key string, payload any) (*Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Message{
		ID:        uuid.NewString(),
		Topic:     topic,
		Key:       key,
		Payload:   raw,
		Status:    StatusPending,
		Attempts:  0,
		CreatedAt: time.Now(),
	}, nil
}

func (m *Message) IncrementAttempts() {
	m.Attempts++
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsProcessed() {
	m.Status = StatusProcessed
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsFailed() {
	m.Status = StatusFailedToPublish
	now := time.Now()
	m.LastAttemptAt = &now
}

// Decode unmarshals the payload into v
func (m *Message) Decode(v any) error {
	return json.Unmarshal(m.Payload, v)
}
