package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/bargir/dispatch-gateway/internal/events"
	"github.com/bargir/dispatch-gateway/internal/model"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) TouchLogin(ctx context.Context, id int64, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

type MockAuthProvider struct {
	mock.Mock
}

func (m *MockAuthProvider) Issue(ctx context.Context, user *model.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *MockAuthProvider) Resolve(ctx context.Context, token string) (*model.Principal, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Principal), args.Error(1)
}

func (m *MockAuthProvider) Revoke(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

type MockShipmentRepository struct {
	mock.Mock
}

func (m *MockShipmentRepository) GetByID(ctx context.Context, id int64) (*model.Shipment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) GetRow(ctx context.Context, id int64) (*model.ShipmentRow, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ShipmentRow), args.Error(1)
}

func (m *MockShipmentRepository) List(ctx context.Context, f model.ShipmentFilter) ([]*model.ShipmentRow, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.ShipmentRow), args.Error(1)
}

func (m *MockShipmentRepository) AssignDriver(ctx context.Context, shipmentID, driverID int64) (*model.Shipment, error) {
	args := m.Called(ctx, shipmentID, driverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) UpdateStatus(ctx context.Context, shipmentID int64, status model.ShipmentStatus) (*model.Shipment, error) {
	args := m.Called(ctx, shipmentID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Shipment), args.Error(1)
}

type MockDriverRepository struct {
	mock.Mock
}

func (m *MockDriverRepository) GetByID(ctx context.Context, id int64) (*model.Driver, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Driver), args.Error(1)
}

func (m *MockDriverRepository) List(ctx context.Context) ([]*model.Driver, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Driver), args.Error(1)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, ev events.Event) (string, error) {
	args := m.Called(ctx, ev)
	return args.String(0), args.Error(1)
}

type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) Create(ctx context.Context, msg *model.Message) (*model.Message, error) {
	args := m.Called(ctx, msg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Message), args.Error(1)
}

func (m *MockMessageRepository) ListBySender(ctx context.Context, senderID int64) ([]*model.MessageRow, error) {
	args := m.Called(ctx, senderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.MessageRow), args.Error(1)
}

func (m *MockMessageRepository) CountBySender(ctx context.Context, senderID int64) (int64, error) {
	args := m.Called(ctx, senderID)
	return args.Get(0).(int64), args.Error(1)
}
