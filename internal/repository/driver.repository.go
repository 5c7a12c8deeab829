package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/bargir/dispatch-gateway/internal/model"
	"github.com/bargir/dispatch-gateway/pkg/pg"
)

var (
	ErrDriverNotFound = errors.New("driver not found")
)

type DriverRepository struct {
	*pg.DB
}

func NewDriverRepository(db *pg.DB) *DriverRepository {
	return &DriverRepository{
		db,
	}
}

func (r *DriverRepository) GetByID(ctx context.Context, id int64) (*model.Driver, error) {
	var entity DriverEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("id = ?", id).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDriverNotFound
		}
		return nil, err
	}
	return toDriverModel(&entity), nil
}

func (r *DriverRepository) List(ctx context.Context) ([]*model.Driver, error) {
	var entities []*DriverEntity
	err := r.Read(ctx).WithContext(ctx).
		Order("id ASC").
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}
	return toDriverModels(entities), nil
}
