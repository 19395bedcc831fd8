package consumers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/htbacgiang/ecobacgiangBE/internal/config"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReader serves queued messages and then blocks until ctx is done.
type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	fetchErrs []error
	committed []int64
	closed    bool
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.fetchErrs) > 0 {
		err := r.fetchErrs[0]
		r.fetchErrs = r.fetchErrs[1:]
		r.mu.Unlock()
		return kafka.Message{}, err
	}
	if len(r.queue) > 0 {
		msg := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error {
	r.closed = true
	return nil
}

func (r *fakeReader) commits() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.committed...)
}

type fakeDeadLetters struct {
	mu      sync.Mutex
	fail    bool
	records []string
}

func (d *fakeDeadLetters) PublishToDLQ(_ context.Context, sourceTopic, key string, _ []byte, reason string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fail {
		return errors.New("dlq unavailable")
	}
	d.records = append(d.records, sourceTopic+"/"+key+": "+reason)
	return nil
}

func (d *fakeDeadLetters) parked() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.records...)
}

func newTestConsumer(reader KafkaReader) *KafkaConsumer {
	return &KafkaConsumer{
		reader:     reader,
		topic:      "order_events",
		groupID:    "ledger",
		attempts:   3,
		backoff:    time.Millisecond,
		maxBackoff: 2 * time.Millisecond,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestNewKafkaConsumer(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.KafkaConfig{
		Brokers:       "localhost:9092",
		ConsumerGroup: "test-group",
		MinBytes:      1024,
		MaxBytes:      10240,
		MaxWait:       time.Second,
	}

	consumer := NewKafkaConsumer(logger, cfg, "payment_events")
	require.NotNil(t, consumer)
	require.NotNil(t, consumer.reader)
	assert.Equal(t, "payment_events", consumer.Topic())
	assert.Equal(t, "test-group", consumer.groupID)
	assert.Equal(t, defaultHandleAttempts, consumer.attempts)
	require.NoError(t, consumer.Close())
}

func TestKafkaConsumer_Subscribe(t *testing.T) {
	t.Run("Always failing message holds the partition", func(t *testing.T) {
		reader := &fakeReader{
			fetchErrs: []error{errors.New("broker unavailable")},
			queue: []kafka.Message{
				{Offset: 1, Key: []byte("ok"), Value: []byte(`{}`)},
				{Offset: 2, Key: []byte("fail"), Value: []byte(`{}`)},
				{Offset: 3, Key: []byte("ok"), Value: []byte(`{}`)},
			},
		}
		consumer := newTestConsumer(reader)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var failures atomic.Int32
		var okCalls atomic.Int32
		handler := func(_ context.Context, key, _ []byte) error {
			if string(key) == "fail" {
				failures.Add(1)
				return errors.New("posting failed")
			}
			okCalls.Add(1)
			return nil
		}

		require.NoError(t, consumer.Subscribe(ctx, handler))

		// well past the in-place attempts, the record is still being retried
		assert.Eventually(t, func() bool {
			return failures.Load() >= 10
		}, 2*time.Second, 5*time.Millisecond)
		assert.Equal(t, []int64{1}, reader.commits())
		assert.Equal(t, int32(1), okCalls.Load())

		cancel()
		time.Sleep(20 * time.Millisecond)
		assert.Equal(t, []int64{1}, reader.commits())
	})

	t.Run("Always failing message is dead-lettered then committed", func(t *testing.T) {
		reader := &fakeReader{
			queue: []kafka.Message{
				{Offset: 2, Key: []byte("fail"), Value: []byte(`{}`)},
				{Offset: 3, Key: []byte("ok"), Value: []byte(`{}`)},
			},
		}
		sink := &fakeDeadLetters{}
		consumer := newTestConsumer(reader).WithDeadLetters(sink)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var mu sync.Mutex
		var seen []string
		handler := func(_ context.Context, key, _ []byte) error {
			mu.Lock()
			seen = append(seen, string(key))
			mu.Unlock()
			if string(key) == "fail" {
				return errors.New("posting failed")
			}
			return nil
		}

		require.NoError(t, consumer.Subscribe(ctx, handler))

		assert.Eventually(t, func() bool {
			return len(reader.commits()) == 2
		}, time.Second, 5*time.Millisecond)
		assert.Equal(t, []int64{2, 3}, reader.commits())

		parked := sink.parked()
		require.Len(t, parked, 1)
		assert.Contains(t, parked[0], "order_events/fail")
		assert.Contains(t, parked[0], "posting failed")

		mu.Lock()
		assert.Equal(t, []string{"fail", "fail", "fail", "ok"}, seen)
		mu.Unlock()
	})

	t.Run("Dead letter failure keeps the message uncommitted", func(t *testing.T) {
		reader := &fakeReader{queue: []kafka.Message{{Offset: 5, Key: []byte("fail")}}}
		sink := &fakeDeadLetters{fail: true}
		consumer := newTestConsumer(reader).WithDeadLetters(sink)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var calls atomic.Int32
		handler := func(context.Context, []byte, []byte) error {
			calls.Add(1)
			return errors.New("posting failed")
		}

		require.NoError(t, consumer.Subscribe(ctx, handler))

		assert.Eventually(t, func() bool {
			return calls.Load() >= 7
		}, 2*time.Second, 5*time.Millisecond)
		assert.Empty(t, reader.commits())
		assert.Empty(t, sink.parked())
	})

	t.Run("Transient failure recovers and commits", func(t *testing.T) {
		reader := &fakeReader{queue: []kafka.Message{{Offset: 7, Key: []byte("SO-1001")}}}
		consumer := newTestConsumer(reader)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var calls atomic.Int32
		handler := func(context.Context, []byte, []byte) error {
			if calls.Add(1) == 1 {
				return errors.New("write conflict")
			}
			return nil
		}

		require.NoError(t, consumer.Subscribe(ctx, handler))

		assert.Eventually(t, func() bool {
			return len(reader.commits()) == 1
		}, time.Second, 5*time.Millisecond)
		assert.Equal(t, []int64{7}, reader.commits())
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("Nil handler", func(t *testing.T) {
		consumer := newTestConsumer(&fakeReader{})
		assert.Error(t, consumer.Subscribe(context.Background(), nil))
	})
}

func TestKafkaConsumer_Close(t *testing.T) {
	t.Run("CloseWithNilReader", func(t *testing.T) {
		consumer := &KafkaConsumer{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
		require.NoError(t, consumer.Close())
	})

	t.Run("ClosesReader", func(t *testing.T) {
		reader := &fakeReader{}
		require.NoError(t, newTestConsumer(reader).Close())
		assert.True(t, reader.closed)
	})
}
