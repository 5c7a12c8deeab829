package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/bargir/dispatch-gateway/internal/model"
	"github.com/bargir/dispatch-gateway/pkg/pg"
)

var (
	ErrMessageNotFound = errors.New("message not found")
)

// MessageRepository is append-only: ledger rows are created and read, never
// deleted. The only mutation the schema permits is the is_read flag, which
// belongs to the recipient read-receipt flow outside this repository.
type MessageRepository struct {
	*pg.DB
}

func NewMessageRepository(db *pg.DB) *MessageRepository {
	return &MessageRepository{
		db,
	}
}

func (r *MessageRepository) Create(ctx context.Context, msg *model.Message) (*model.Message, error) {
	entity := toMessageEntity(msg)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toMessageModel(entity)
}

// ListBySender returns every ledger entry a sender wrote, joined with the
// recipient identity and the linked shipment number, most recent first.
func (r *MessageRepository) ListBySender(ctx context.Context, senderID int64) ([]*model.MessageRow, error) {
	var entities []*MessageRowEntity
	err := r.Read(ctx).WithContext(ctx).
		Table("messages AS m").
		Select(`
            m.*,
            u.full_name       AS recipient_name,
            u.role            AS recipient_role,
            s.shipment_number AS shipment_number
        `).
		Joins("JOIN users AS u ON m.recipient_id = u.id").
		Joins("LEFT JOIN shipments AS s ON m.shipment_id = s.id").
		Where("m.sender_id = ?", senderID).
		Order("m.created_at DESC").
		Find(&entities).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return toMessageRowModels(entities)
}

// CountBySender supports the audit property that N sends leave exactly N
// rows.
func (r *MessageRepository) CountBySender(ctx context.Context, senderID int64) (int64, error) {
	var total int64
	err := r.Read(ctx).WithContext(ctx).
		Model(&MessageEntity{}).
		Where("sender_id = ?", senderID).
		Count(&total).
		Error
	if err != nil {
		return 0, err
	}
	return total, nil
}
