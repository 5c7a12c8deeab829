package repository

import (
	"time"

	"github.com/bargir/dispatch-gateway/internal/model"
)

type ShipmentEntity struct {
	ID               int64     `db:"id"                gorm:"primaryKey;autoIncrement;column:id"`
	ShipmentNumber   string    `db:"shipment_number"   gorm:"column:shipment_number;not null;unique"`
	PickupLocation   string    `db:"pickup_location"   gorm:"column:pickup_location;not null"`
	DeliveryLocation string    `db:"delivery_location" gorm:"column:delivery_location;not null"`
	CargoType        string    `db:"cargo_type"        gorm:"column:cargo_type"`
	Weight           float64   `db:"weight"            gorm:"column:weight"`
	Dimensions       string    `db:"dimensions"        gorm:"column:dimensions"`
	Status           string    `db:"status"            gorm:"column:status;not null;index"`
	CustomerID       *int64    `db:"customer_id"       gorm:"column:customer_id;index"`
	DriverID         *int64    `db:"driver_id"         gorm:"column:driver_id;index"`
	Version          int64     `db:"version"           gorm:"column:version;not null;default:0"`
	CreatedAt        time.Time `db:"created_at"        gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time `db:"updated_at"        gorm:"column:updated_at;autoUpdateTime"`
}

func (ShipmentEntity) TableName() string {
	return "shipments"
}

func toShipmentModel(e *ShipmentEntity) (*model.Shipment, error) {
	if e == nil {
		return nil, nil
	}
	status, err := model.ParseShipmentStatus(e.Status)
	if err != nil {
		return nil, err
	}
	return &model.Shipment{
		ID:               e.ID,
		ShipmentNumber:   e.ShipmentNumber,
		PickupLocation:   e.PickupLocation,
		DeliveryLocation: e.DeliveryLocation,
		CargoType:        e.CargoType,
		Weight:           e.Weight,
		Dimensions:       e.Dimensions,
		Status:           status,
		CustomerID:       e.CustomerID,
		DriverID:         e.DriverID,
		Version:          e.Version,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}, nil
}

// ShipmentRowEntity is the left-join result of a shipment with its customer
// and driver names.
type ShipmentRowEntity struct {
	ShipmentEntity
	CustomerName  *string `gorm:"column:customer_name"`
	CustomerPhone *string `gorm:"column:customer_phone"`
	DriverName    *string `gorm:"column:driver_name"`
	DriverPhone   *string `gorm:"column:driver_phone"`
}

func toShipmentRowModel(e *ShipmentRowEntity) (*model.ShipmentRow, error) {
	if e == nil {
		return nil, nil
	}
	s, err := toShipmentModel(&e.ShipmentEntity)
	if err != nil {
		return nil, err
	}
	return &model.ShipmentRow{
		Shipment:      *s,
		CustomerName:  e.CustomerName,
		CustomerPhone: e.CustomerPhone,
		DriverName:    e.DriverName,
		DriverPhone:   e.DriverPhone,
	}, nil
}

func toShipmentRowModels(entities []*ShipmentRowEntity) ([]*model.ShipmentRow, error) {
	if entities == nil {
		return nil, nil
	}
	models := make([]*model.ShipmentRow, len(entities))
	for i, e := range entities {
		m, err := toShipmentRowModel(e)
		if err != nil {
			return nil, err
		}
		models[i] = m
	}
	return models, nil
}
