package model

import (
	"fmt"
	"time"
)

// ShipmentStatus is the lifecycle state of a shipment.
type ShipmentStatus string

const (
	StatusPending   ShipmentStatus = "PENDING"
	StatusAssigned  ShipmentStatus = "ASSIGNED"
	StatusInTransit ShipmentStatus = "IN_TRANSIT"
	StatusDelivered ShipmentStatus = "DELIVERED"
	StatusCancelled ShipmentStatus = "CANCELLED"
)

func ParseShipmentStatus(s string) (ShipmentStatus, error) {
	switch ShipmentStatus(s) {
	case StatusPending, StatusAssigned, StatusInTransit, StatusDelivered, StatusCancelled:
		return ShipmentStatus(s), nil
	}
	return "", fmt.Errorf("unknown shipment status %q", s)
}

func (s ShipmentStatus) String() string { return string(s) }

// Terminal reports whether no further transition leaves this state.
func (s ShipmentStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// allowedTransitions is the directed graph of legal status flows. A repeat
// ASSIGNED→ASSIGNED edge is allowed because re-assignment of a driver is a
// supported dispatcher action, not an error.
var allowedTransitions = map[ShipmentStatus][]ShipmentStatus{
	StatusPending:   {StatusAssigned, StatusCancelled},
	StatusAssigned:  {StatusAssigned, StatusInTransit, StatusCancelled},
	StatusInTransit: {StatusDelivered, StatusCancelled},
	StatusDelivered: {},
	StatusCancelled: {},
}

// CanTransition reports whether from → to is a legal status flow. Only
// consulted when strict transition validation is enabled; the compatibility
// mode trusts callers the way the system being replaced did.
func CanTransition(from, to ShipmentStatus) bool {
	allowed, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// Shipment is the unit of work. Created on intake, mutated exclusively by
// the assignment engine. Version backs optimistic-concurrency checks on
// assignment and status writes.
type Shipment struct {
	ID               int64          `json:"id"`
	ShipmentNumber   string         `json:"shipment_number"`
	PickupLocation   string         `json:"pickup_location"`
	DeliveryLocation string         `json:"delivery_location"`
	CargoType        string         `json:"cargo_type"`
	Weight           float64        `json:"weight"`
	Dimensions       string         `json:"dimensions"`
	Status           ShipmentStatus `json:"status"`
	CustomerID       *int64         `json:"customer_id"`
	DriverID         *int64         `json:"driver_id"`
	Version          int64          `json:"-"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

func (Shipment) TableName() string { return "shipments" }

// ShipmentFilter controls List queries.
type ShipmentFilter struct {
	Status *ShipmentStatus // equals
}

// ShipmentRow is a shipment joined with the customer and driver names the
// listing views need. Name pointers are nil when the reference is unset.
type ShipmentRow struct {
	Shipment
	CustomerName  *string
	CustomerPhone *string
	DriverName    *string
	DriverPhone   *string
}
