package model

import (
	"errors"
	"fmt"
	"time"
)

// MessageType is the direction of a dispatcher notification.
type MessageType string

const (
	MessageToCustomer MessageType = "to_customer"
	MessageToDriver   MessageType = "to_driver"
)

func ParseMessageType(s string) (MessageType, error) {
	switch MessageType(s) {
	case MessageToCustomer, MessageToDriver:
		return MessageType(s), nil
	}
	return "", fmt.Errorf("unknown message type %q", s)
}

func (t MessageType) String() string { return string(t) }

// Message is one entry of the append-only notification ledger. Rows are
// never deleted and never mutated except the is_read flag.
type Message struct {
	ID          int64       `json:"id"`
	SenderID    int64       `json:"sender_id"`
	RecipientID int64       `json:"recipient_id"`
	ShipmentID  *int64      `json:"shipment_id"`
	Content     string      `json:"content"`
	MessageType MessageType `json:"message_type"`
	IsRead      bool        `json:"is_read"`
	CreatedAt   time.Time   `json:"created_at"`
}

func (Message) TableName() string { return "messages" }

// SendMessageRequest is the input for appending to the ledger.
type SendMessageRequest struct {
	RecipientID int64
	Content     string
	ShipmentID  *int64
	MessageType MessageType
}

func (p SendMessageRequest) Validate() error {
	if p.RecipientID == 0 {
		return errors.New("recipient_id is required")
	}
	if p.Content == "" {
		return errors.New("content is required")
	}
	if _, err := ParseMessageType(string(p.MessageType)); err != nil {
		return err
	}
	return nil
}

// MessageRow is a ledger entry joined with the recipient identity and the
// linked shipment number, as the sent-history view needs them.
type MessageRow struct {
	Message
	RecipientName  string
	RecipientRole  Role
	ShipmentNumber *string
}
