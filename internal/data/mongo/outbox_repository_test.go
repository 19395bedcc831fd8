package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/htbacgiang/ecobacgiangBE/internal/domain/outbox"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestOutboxRepository(t *testing.T) {
	mt := newMockT(t)
	ctx := context.Background()

	mt.Run("Create", func(mt *mtest.T) {
		repo := NewOutboxRepository(newTestLogger(), mt.DB)
		msg, err := outbox.NewMessage(shared.TopicEntryPosted, "SO-1", map[string]string{"reference": "SO-1"})
		require.NoError(t, err)

		mt.AddMockResponses(mtest.CreateSuccessResponse())
		require.NoError(t, repo.Create(ctx, msg))
	})

	mt.Run("GetPending", func(mt *mtest.T) {
		repo := NewOutboxRepository(newTestLogger(), mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(OutboxCollection), mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "m1"},
			{Key: "topic", Value: shared.TopicEntryPosted},
			{Key: "key", Value: "SO-1"},
			{Key: "payload", Value: primitive.Binary{Data: []byte(`{"reference":"SO-1"}`)}},
			{Key: "status", Value: "pending"},
			{Key: "attempts", Value: 2},
			{Key: "created_at", Value: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
		}))

		msgs, err := repo.GetPending(ctx, 10)
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		assert.Equal(t, "SO-1", msgs[0].Key)
		assert.Equal(t, 2, msgs[0].Attempts)

		var payload map[string]string
		require.NoError(t, msgs[0].Decode(&payload))
		assert.Equal(t, "SO-1", payload["reference"])
	})

	mt.Run("UpdateStatus missing message", func(mt *mtest.T) {
		repo := NewOutboxRepository(newTestLogger(), mt.DB)
		mt.AddMockResponses(updatedResponse(0))

		err := repo.UpdateStatus(ctx, "m1", outbox.StatusProcessed)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	mt.Run("IncrementAttempts", func(mt *mtest.T) {
		repo := NewOutboxRepository(newTestLogger(), mt.DB)
		mt.AddMockResponses(updatedResponse(1))

		require.NoError(t, repo.IncrementAttempts(ctx, "m1"))
	})
}
