package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/bargir/dispatch-gateway/internal/model"
	"github.com/bargir/dispatch-gateway/pkg/pg"
)

var (
	ErrShipmentNotFound   = errors.New("shipment not found")
	ErrConcurrentUpdate   = errors.New("concurrent update detected")
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)

type ShipmentRepository struct {
	*pg.DB
}

func NewShipmentRepository(db *pg.DB) *ShipmentRepository {
	return &ShipmentRepository{
		db,
	}
}

func (r *ShipmentRepository) GetByID(ctx context.Context, id int64) (*model.Shipment, error) {
	var entity ShipmentEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("id = ?", id).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShipmentNotFound
		}
		return nil, err
	}
	return toShipmentModel(&entity)
}

// GetRow loads a shipment joined with its customer and driver names. An
// absent customer or driver leaves the name columns NULL rather than
// dropping the row.
func (r *ShipmentRepository) GetRow(ctx context.Context, id int64) (*model.ShipmentRow, error) {
	var entity ShipmentRowEntity
	err := r.rowQuery(ctx).
		Where("s.id = ?", id).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShipmentNotFound
		}
		return nil, err
	}
	return toShipmentRowModel(&entity)
}

// List returns joined shipment rows, optionally filtered by status,
// ordered by creation time. No pagination; this is an internal operations
// surface with a bounded fleet.
func (r *ShipmentRepository) List(ctx context.Context, f model.ShipmentFilter) ([]*model.ShipmentRow, error) {
	q := r.rowQuery(ctx)

	if f.Status != nil {
		q = q.Where("s.status = ?", string(*f.Status))
	}

	var entities []*ShipmentRowEntity
	if err := q.Order("s.created_at ASC").Find(&entities).Error; err != nil {
		return nil, err
	}
	return toShipmentRowModels(entities)
}

func (r *ShipmentRepository) rowQuery(ctx context.Context) *gorm.DB {
	return r.Read(ctx).WithContext(ctx).
		Table("shipments AS s").
		Select(`
            s.*,
            u.full_name AS customer_name,
            u.phone     AS customer_phone,
            d.full_name AS driver_name,
            d.phone     AS driver_phone
        `).
		Joins("LEFT JOIN users AS u ON s.customer_id = u.id").
		Joins("LEFT JOIN drivers AS d ON s.driver_id = d.id")
}

// AssignDriver links the driver and moves the shipment to ASSIGNED in a
// single versioned write. Lost updates between two dispatchers are detected
// by the version check and retried against fresh state.
func (r *ShipmentRepository) AssignDriver(ctx context.Context, shipmentID, driverID int64) (*model.Shipment, error) {
	return r.updateWithRetry(ctx, shipmentID, func(current *ShipmentEntity) map[string]interface{} {
		return map[string]interface{}{
			"driver_id": driverID,
			"status":    string(model.StatusAssigned),
		}
	})
}

// UpdateStatus applies the new status in a single versioned write.
func (r *ShipmentRepository) UpdateStatus(ctx context.Context, shipmentID int64, status model.ShipmentStatus) (*model.Shipment, error) {
	return r.updateWithRetry(ctx, shipmentID, func(current *ShipmentEntity) map[string]interface{} {
		return map[string]interface{}{
			"status": string(status),
		}
	})
}

func (r *ShipmentRepository) updateWithRetry(ctx context.Context, shipmentID int64, changes func(current *ShipmentEntity) map[string]interface{}) (*model.Shipment, error) {
	const maxRetries = 3
	const baseDelay = 2 * time.Millisecond

	for attempt := 0; attempt <= maxRetries; attempt++ {
		s, err := r.updateAttempt(ctx, shipmentID, changes)
		if err == nil {
			return s, nil
		}
		if errors.Is(err, ErrShipmentNotFound) {
			return nil, err
		}

		// version conflict or transient failure, re-read and retry
		if attempt < maxRetries {
			delay := baseDelay * time.Duration(1<<attempt)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
				continue
			}
		}
	}

	return nil, fmt.Errorf("%w: failed after %d attempts", ErrMaxRetriesExceeded, maxRetries+1)
}

func (r *ShipmentRepository) updateAttempt(ctx context.Context, shipmentID int64, changes func(current *ShipmentEntity) map[string]interface{}) (*model.Shipment, error) {
	var updated ShipmentEntity

	err := r.WithinTransaction(ctx, func(ctx context.Context) error {
		var entity ShipmentEntity
		if err := r.Write(ctx).Where("id = ?", shipmentID).First(&entity).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrShipmentNotFound
			}
			return err
		}

		updates := changes(&entity)
		updates["version"] = entity.Version + 1
		updates["updated_at"] = time.Now().UTC()

		result := r.Write(ctx).
			Model(&ShipmentEntity{}).
			Where("id = ? AND version = ?", shipmentID, entity.Version).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrConcurrentUpdate
		}

		return r.Write(ctx).Where("id = ?", shipmentID).First(&updated).Error
	})
	if err != nil {
		return nil, err
	}
	return toShipmentModel(&updated)
}
