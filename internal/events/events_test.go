package events

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bargir/dispatch-gateway/pkg/redis"
)

func setupTestStream(t *testing.T) *Stream {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	// Use unique connection name per test to avoid global adapter caching issues
	connName := t.Name() + "-" + mr.Addr()
	adapter, err := redis.NewRedisAdapter(connName, "", &goredis.UniversalOptions{
		Addrs: []string{mr.Addr()},
	})
	require.NoError(t, err)

	stream, err := NewStream(adapter, StreamConfig{
		Name:          "test:shipment:events",
		ConsumerGroup: "test-tracker",
		ConsumerName:  "test-tracker-1",
		BatchSize:     10,
		PollInterval:  10 * time.Millisecond,
	})
	require.NoError(t, err)
	require.NoError(t, stream.EnsureGroup())

	return stream
}

func testEvent(kind Kind) Event {
	driverID := int64(7)
	return Event{
		Kind:           kind,
		ShipmentID:     1,
		ShipmentNumber: "SHP-001",
		Status:         "ASSIGNED",
		DriverID:       &driverID,
		At:             time.Now().UTC(),
	}
}

func TestStream_PublishAndRead(t *testing.T) {
	stream := setupTestStream(t)
	ctx := context.Background()

	id, err := stream.Publish(ctx, testEvent(KindDriverAssigned))
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	batch, err := stream.ReadBatch(ctx)
	require.NoError(t, err)
	require.Len(t, batch, 1)

	got := batch[0].Event
	assert.Equal(t, KindDriverAssigned, got.Kind)
	assert.Equal(t, int64(1), got.ShipmentID)
	assert.Equal(t, "SHP-001", got.ShipmentNumber)
	assert.Equal(t, "ASSIGNED", got.Status)
	require.NotNil(t, got.DriverID)
	assert.Equal(t, int64(7), *got.DriverID)
}

func TestStream_AckRemovesFromPending(t *testing.T) {
	stream := setupTestStream(t)
	ctx := context.Background()

	_, err := stream.Publish(ctx, testEvent(KindStatusChanged))
	require.NoError(t, err)

	batch, err := stream.ReadBatch(ctx)
	require.NoError(t, err)
	require.Len(t, batch, 1)

	require.NoError(t, stream.Ack(batch[0].ID))

	// the group cursor has moved past the acked entry
	again, err := stream.ReadBatch(ctx)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestStream_EnsureGroupIsIdempotent(t *testing.T) {
	stream := setupTestStream(t)

	assert.NoError(t, stream.EnsureGroup())
	assert.NoError(t, stream.EnsureGroup())
}

func TestStream_Len(t *testing.T) {
	stream := setupTestStream(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := stream.Publish(ctx, testEvent(KindStatusChanged))
		require.NoError(t, err)
	}

	n, err := stream.Len()
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestNewStream_RequiresName(t *testing.T) {
	_, err := NewStream(nil, StreamConfig{})
	assert.Error(t, err)
}
