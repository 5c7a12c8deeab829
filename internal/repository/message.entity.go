package repository

import (
	"time"

	"github.com/bargir/dispatch-gateway/internal/model"
)

type MessageEntity struct {
	ID          int64     `db:"id"           gorm:"primaryKey;autoIncrement;column:id"`
	SenderID    int64     `db:"sender_id"    gorm:"column:sender_id;not null;index"`
	RecipientID int64     `db:"recipient_id" gorm:"column:recipient_id;not null;index"`
	ShipmentID  *int64    `db:"shipment_id"  gorm:"column:shipment_id;index"`
	Content     string    `db:"content"      gorm:"column:content;not null"`
	MessageType string    `db:"message_type" gorm:"column:message_type;not null"`
	IsRead      bool      `db:"is_read"      gorm:"column:is_read;not null;default:false"`
	CreatedAt   time.Time `db:"created_at"   gorm:"column:created_at;autoCreateTime"`
}

func (MessageEntity) TableName() string {
	return "messages"
}

func toMessageEntity(m *model.Message) *MessageEntity {
	if m == nil {
		return nil
	}
	return &MessageEntity{
		ID:          m.ID,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		ShipmentID:  m.ShipmentID,
		Content:     m.Content,
		MessageType: string(m.MessageType),
		IsRead:      m.IsRead,
		CreatedAt:   m.CreatedAt,
	}
}

func toMessageModel(e *MessageEntity) (*model.Message, error) {
	if e == nil {
		return nil, nil
	}
	mt, err := model.ParseMessageType(e.MessageType)
	if err != nil {
		return nil, err
	}
	return &model.Message{
		ID:          e.ID,
		SenderID:    e.SenderID,
		RecipientID: e.RecipientID,
		ShipmentID:  e.ShipmentID,
		Content:     e.Content,
		MessageType: mt,
		IsRead:      e.IsRead,
		CreatedAt:   e.CreatedAt,
	}, nil
}

// MessageRowEntity is a ledger entry joined with the recipient identity and
// the linked shipment number.
type MessageRowEntity struct {
	MessageEntity
	RecipientName  string  `gorm:"column:recipient_name"`
	RecipientRole  string  `gorm:"column:recipient_role"`
	ShipmentNumber *string `gorm:"column:shipment_number"`
}

func toMessageRowModel(e *MessageRowEntity) (*model.MessageRow, error) {
	if e == nil {
		return nil, nil
	}
	m, err := toMessageModel(&e.MessageEntity)
	if err != nil {
		return nil, err
	}
	role, err := model.ParseRole(e.RecipientRole)
	if err != nil {
		return nil, err
	}
	return &model.MessageRow{
		Message:        *m,
		RecipientName:  e.RecipientName,
		RecipientRole:  role,
		ShipmentNumber: e.ShipmentNumber,
	}, nil
}

func toMessageRowModels(entities []*MessageRowEntity) ([]*model.MessageRow, error) {
	if entities == nil {
		return nil, nil
	}
	models := make([]*model.MessageRow, len(entities))
	for i, e := range entities {
		m, err := toMessageRowModel(e)
		if err != nil {
			return nil, err
		}
		models[i] = m
	}
	return models, nil
}
