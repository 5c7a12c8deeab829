package repository

import (
	"time"

	"github.com/bargir/dispatch-gateway/internal/model"
)

type DriverEntity struct {
	ID            int64     `db:"id"             gorm:"primaryKey;autoIncrement;column:id"`
	FullName      string    `db:"full_name"      gorm:"column:full_name;not null"`
	Phone         string    `db:"phone"          gorm:"column:phone"`
	LicenseNumber string    `db:"license_number" gorm:"column:license_number;not null"`
	UserID        *int64    `db:"user_id"        gorm:"column:user_id;index"`
	CreatedAt     time.Time `db:"created_at"     gorm:"column:created_at;autoCreateTime"`
}

func (DriverEntity) TableName() string {
	return "drivers"
}

func toDriverModel(e *DriverEntity) *model.Driver {
	if e == nil {
		return nil
	}
	return &model.Driver{
		ID:            e.ID,
		FullName:      e.FullName,
		Phone:         e.Phone,
		LicenseNumber: e.LicenseNumber,
		UserID:        e.UserID,
		CreatedAt:     e.CreatedAt,
	}
}

func toDriverModels(entities []*DriverEntity) []*model.Driver {
	if entities == nil {
		return nil
	}
	models := make([]*model.Driver, len(entities))
	for i, e := range entities {
		models[i] = toDriverModel(e)
	}
	return models
}
