package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bargir/dispatch-gateway/internal/model"
	"github.com/bargir/dispatch-gateway/internal/repository"
	"github.com/bargir/dispatch-gateway/pkg/prom"
)

var (
	ErrRecipientNotFound = errors.New("recipient not found")
	ErrEmptyContent      = errors.New("message content cannot be empty")
	ErrValidation        = errors.New("invalid message")
)

type MessageRepository interface {
	Create(ctx context.Context, msg *model.Message) (*model.Message, error)
	ListBySender(ctx context.Context, senderID int64) ([]*model.MessageRow, error)
	CountBySender(ctx context.Context, senderID int64) (int64, error)
}

type RecipientSource interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

type ShipmentSource interface {
	GetByID(ctx context.Context, id int64) (*model.Shipment, error)
}

// NotificationService is the append-only messaging ledger. Every sent
// notification is attributable to a dispatcher sender, a recipient, and
// optionally a shipment.
type NotificationService struct {
	messages  MessageRepository
	users     RecipientSource
	shipments ShipmentSource
}

func NewNotificationService(messages MessageRepository, users RecipientSource, shipments ShipmentSource) *NotificationService {
	return &NotificationService{
		messages:  messages,
		users:     users,
		shipments: shipments,
	}
}

// Send appends one ledger row. The recipient must exist; a shipment link,
// when present, must reference a real shipment. Only dispatchers originate
// notifications.
func (s *NotificationService) Send(ctx context.Context, sender model.Principal, p model.SendMessageRequest) (*model.Message, *model.User, error) {
	defer observeCommand("send_message", time.Now())

	if sender.Role != model.RoleDispatcher {
		return nil, nil, ErrForbidden
	}
	if err := p.Validate(); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	p.Content = strings.TrimSpace(p.Content)
	if p.Content == "" {
		return nil, nil, ErrEmptyContent
	}

	recipient, err := s.users.GetByID(ctx, p.RecipientID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil, ErrRecipientNotFound
		}
		return nil, nil, fmt.Errorf("load recipient: %w", err)
	}

	if p.ShipmentID != nil {
		if _, err := s.shipments.GetByID(ctx, *p.ShipmentID); err != nil {
			return nil, nil, fmt.Errorf("load shipment: %w", err)
		}
	}

	msg := &model.Message{
		SenderID:    sender.ID,
		RecipientID: p.RecipientID,
		ShipmentID:  p.ShipmentID,
		Content:     p.Content,
		MessageType: p.MessageType,
	}

	created, err := s.messages.Create(ctx, msg)
	if err != nil {
		return nil, nil, fmt.Errorf("create message: %w", err)
	}

	prom.IncCounterVec(prom.SystemDispatch, prom.MetricMessagesSent, string(p.MessageType))
	return created, recipient, nil
}

// ListSent returns the sender's ledger entries, most recent first.
func (s *NotificationService) ListSent(ctx context.Context, sender model.Principal) ([]*model.MessageRow, error) {
	return s.messages.ListBySender(ctx, sender.ID)
}
