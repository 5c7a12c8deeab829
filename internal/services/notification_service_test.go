package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bargir/dispatch-gateway/internal/model"
	"github.com/bargir/dispatch-gateway/internal/repository"
)

func dispatcherPrincipal() model.Principal {
	return model.Principal{
		ID:       1,
		FullName: "Dana Dispatcher",
		Email:    "dispatcher@example.com",
		Role:     model.RoleDispatcher,
	}
}

func customerRecipient() *model.User {
	return &model.User{
		ID:       5,
		FullName: "Carla Customer",
		Role:     model.RoleCustomer,
	}
}

func TestNotificationService_Send(t *testing.T) {
	ctx := context.Background()

	t.Run("appends exactly one ledger row", func(t *testing.T) {
		messages := new(MockMessageRepository)
		users := new(MockUserRepository)
		shipments := new(MockShipmentRepository)
		svc := NewNotificationService(messages, users, shipments)

		users.On("GetByID", ctx, int64(5)).Return(customerRecipient(), nil)
		messages.On("Create", ctx, mock.MatchedBy(func(m *model.Message) bool {
			return m.SenderID == 1 && m.RecipientID == 5 && m.Content == "Delayed"
		})).Return(&model.Message{
			ID:          10,
			SenderID:    1,
			RecipientID: 5,
			Content:     "Delayed",
			MessageType: model.MessageToCustomer,
			CreatedAt:   time.Now().UTC(),
		}, nil).Once()

		msg, recipient, err := svc.Send(ctx, dispatcherPrincipal(), model.SendMessageRequest{
			RecipientID: 5,
			Content:     "Delayed",
			MessageType: model.MessageToCustomer,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(10), msg.ID)
		assert.Equal(t, "Carla Customer", recipient.FullName)

		messages.AssertNumberOfCalls(t, "Create", 1)
	})

	t.Run("only dispatchers originate notifications", func(t *testing.T) {
		messages := new(MockMessageRepository)
		users := new(MockUserRepository)
		shipments := new(MockShipmentRepository)
		svc := NewNotificationService(messages, users, shipments)

		sender := dispatcherPrincipal()
		sender.Role = model.RoleDriver

		_, _, err := svc.Send(ctx, sender, model.SendMessageRequest{
			RecipientID: 5,
			Content:     "hi",
			MessageType: model.MessageToCustomer,
		})
		assert.ErrorIs(t, err, ErrForbidden)
		messages.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("blank content is rejected", func(t *testing.T) {
		messages := new(MockMessageRepository)
		users := new(MockUserRepository)
		shipments := new(MockShipmentRepository)
		svc := NewNotificationService(messages, users, shipments)

		_, _, err := svc.Send(ctx, dispatcherPrincipal(), model.SendMessageRequest{
			RecipientID: 5,
			Content:     "   ",
			MessageType: model.MessageToCustomer,
		})
		assert.ErrorIs(t, err, ErrEmptyContent)
	})

	t.Run("unknown message type is rejected", func(t *testing.T) {
		messages := new(MockMessageRepository)
		users := new(MockUserRepository)
		shipments := new(MockShipmentRepository)
		svc := NewNotificationService(messages, users, shipments)

		_, _, err := svc.Send(ctx, dispatcherPrincipal(), model.SendMessageRequest{
			RecipientID: 5,
			Content:     "hi",
			MessageType: "broadcast",
		})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("unknown recipient yields not found", func(t *testing.T) {
		messages := new(MockMessageRepository)
		users := new(MockUserRepository)
		shipments := new(MockShipmentRepository)
		svc := NewNotificationService(messages, users, shipments)

		users.On("GetByID", ctx, int64(999)).Return(nil, repository.ErrUserNotFound)

		_, _, err := svc.Send(ctx, dispatcherPrincipal(), model.SendMessageRequest{
			RecipientID: 999,
			Content:     "hi",
			MessageType: model.MessageToCustomer,
		})
		assert.ErrorIs(t, err, ErrRecipientNotFound)
		messages.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("linked shipment must exist", func(t *testing.T) {
		messages := new(MockMessageRepository)
		users := new(MockUserRepository)
		shipments := new(MockShipmentRepository)
		svc := NewNotificationService(messages, users, shipments)

		shipmentID := int64(999)
		users.On("GetByID", ctx, int64(5)).Return(customerRecipient(), nil)
		shipments.On("GetByID", ctx, shipmentID).Return(nil, repository.ErrShipmentNotFound)

		_, _, err := svc.Send(ctx, dispatcherPrincipal(), model.SendMessageRequest{
			RecipientID: 5,
			Content:     "hi",
			ShipmentID:  &shipmentID,
			MessageType: model.MessageToCustomer,
		})
		assert.ErrorIs(t, err, repository.ErrShipmentNotFound)
		messages.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("content is trimmed before the append", func(t *testing.T) {
		messages := new(MockMessageRepository)
		users := new(MockUserRepository)
		shipments := new(MockShipmentRepository)
		svc := NewNotificationService(messages, users, shipments)

		users.On("GetByID", ctx, int64(5)).Return(customerRecipient(), nil)
		messages.On("Create", ctx, mock.MatchedBy(func(m *model.Message) bool {
			return m.Content == "Delayed"
		})).Return(&model.Message{ID: 11, Content: "Delayed"}, nil)

		_, _, err := svc.Send(ctx, dispatcherPrincipal(), model.SendMessageRequest{
			RecipientID: 5,
			Content:     "  Delayed  ",
			MessageType: model.MessageToCustomer,
		})
		require.NoError(t, err)
		messages.AssertExpectations(t)
	})
}

func TestNotificationService_ListSent(t *testing.T) {
	ctx := context.Background()

	messages := new(MockMessageRepository)
	users := new(MockUserRepository)
	shipments := new(MockShipmentRepository)
	svc := NewNotificationService(messages, users, shipments)

	rows := []*model.MessageRow{
		{Message: model.Message{ID: 2, SenderID: 1}, RecipientName: "Carla Customer", RecipientRole: model.RoleCustomer},
		{Message: model.Message{ID: 1, SenderID: 1}, RecipientName: "Carla Customer", RecipientRole: model.RoleCustomer},
	}
	messages.On("ListBySender", ctx, int64(1)).Return(rows, nil)

	got, err := svc.ListSent(ctx, dispatcherPrincipal())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].ID)
}
