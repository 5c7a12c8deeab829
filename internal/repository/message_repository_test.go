package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bargir/dispatch-gateway/internal/model"
)

func TestMessageRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepository(db.DB)
	ctx := context.Background()

	dispatcher := seedUser(t, db, "dispatcher@example.com", model.RoleDispatcher)
	customer := seedUser(t, db, "customer@example.com", model.RoleCustomer)

	t.Run("appends one row", func(t *testing.T) {
		created, err := repo.Create(ctx, &model.Message{
			SenderID:    dispatcher.ID,
			RecipientID: customer.ID,
			Content:     "Your shipment is delayed",
			MessageType: model.MessageToCustomer,
		})
		require.NoError(t, err)
		assert.NotZero(t, created.ID)
		assert.Equal(t, dispatcher.ID, created.SenderID)
		assert.False(t, created.IsRead)
		assert.NotZero(t, created.CreatedAt)

		total, err := repo.CountBySender(ctx, dispatcher.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
	})

	t.Run("keeps the shipment link", func(t *testing.T) {
		shipment := seedShipment(t, db, "SHP-001", model.StatusPending, nil, nil)

		created, err := repo.Create(ctx, &model.Message{
			SenderID:    dispatcher.ID,
			RecipientID: customer.ID,
			ShipmentID:  &shipment.ID,
			Content:     "Pickup scheduled",
			MessageType: model.MessageToCustomer,
		})
		require.NoError(t, err)
		require.NotNil(t, created.ShipmentID)
		assert.Equal(t, shipment.ID, *created.ShipmentID)
	})
}

func TestMessageRepository_ListBySender(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepository(db.DB)
	ctx := context.Background()

	dispatcher := seedUser(t, db, "dispatcher@example.com", model.RoleDispatcher)
	other := seedUser(t, db, "other@example.com", model.RoleDispatcher)
	customer := seedUser(t, db, "customer@example.com", model.RoleCustomer)
	shipment := seedShipment(t, db, "SHP-001", model.StatusPending, nil, nil)

	for i := 0; i < 3; i++ {
		_, err := repo.Create(ctx, &model.Message{
			SenderID:    dispatcher.ID,
			RecipientID: customer.ID,
			ShipmentID:  &shipment.ID,
			Content:     fmt.Sprintf("update %d", i),
			MessageType: model.MessageToCustomer,
		})
		require.NoError(t, err)
		time.Sleep(10 * time.Millisecond)
	}
	_, err := repo.Create(ctx, &model.Message{
		SenderID:    other.ID,
		RecipientID: customer.ID,
		Content:     "unrelated",
		MessageType: model.MessageToCustomer,
	})
	require.NoError(t, err)

	t.Run("returns only the sender's rows, most recent first", func(t *testing.T) {
		rows, err := repo.ListBySender(ctx, dispatcher.ID)
		require.NoError(t, err)
		require.Len(t, rows, 3)

		assert.Equal(t, "update 2", rows[0].Content)
		assert.Equal(t, "update 0", rows[2].Content)
		for _, r := range rows {
			assert.Equal(t, dispatcher.ID, r.SenderID)
		}
	})

	t.Run("annotates recipient identity and shipment number", func(t *testing.T) {
		rows, err := repo.ListBySender(ctx, dispatcher.ID)
		require.NoError(t, err)
		require.NotEmpty(t, rows)

		first := rows[0]
		assert.Equal(t, customer.FullName, first.RecipientName)
		assert.Equal(t, model.RoleCustomer, first.RecipientRole)
		require.NotNil(t, first.ShipmentNumber)
		assert.Equal(t, "SHP-001", *first.ShipmentNumber)
	})

	t.Run("unlinked message has nil shipment number", func(t *testing.T) {
		rows, err := repo.ListBySender(ctx, other.ID)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Nil(t, rows[0].ShipmentNumber)
	})

	t.Run("sender with no messages gets empty list", func(t *testing.T) {
		rows, err := repo.ListBySender(ctx, 999)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})
}

func TestMessageRepository_CountBySender(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepository(db.DB)
	ctx := context.Background()

	dispatcher := seedUser(t, db, "dispatcher@example.com", model.RoleDispatcher)
	customer := seedUser(t, db, "customer@example.com", model.RoleCustomer)

	const n = 5
	for i := 0; i < n; i++ {
		_, err := repo.Create(ctx, &model.Message{
			SenderID:    dispatcher.ID,
			RecipientID: customer.ID,
			Content:     "ping",
			MessageType: model.MessageToCustomer,
		})
		require.NoError(t, err)
	}

	total, err := repo.CountBySender(ctx, dispatcher.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(n), total)
}
