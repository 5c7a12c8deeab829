package model

// Response-shaped view structs. Field names are the wire contract the
// dispatcher panel depends on; see internal/projection for the assembly.

type ShipmentSummary struct {
	ID               int64   `json:"id"`
	ShipmentNumber   string  `json:"shipment_number"`
	PickupLocation   string  `json:"pickup_location"`
	DeliveryLocation string  `json:"delivery_location"`
	CargoType        string  `json:"cargo_type"`
	Weight           float64 `json:"weight"`
	Dimensions       string  `json:"dimensions"`
	Status           string  `json:"status"`
	CustomerName     string  `json:"customer_name"`
	DriverName       string  `json:"driver_name"`
	CreatedAt        string  `json:"created_at"`
}

type PartyView struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type ShipmentDetail struct {
	ID               int64      `json:"id"`
	ShipmentNumber   string     `json:"shipment_number"`
	PickupLocation   string     `json:"pickup_location"`
	DeliveryLocation string     `json:"delivery_location"`
	CargoType        string     `json:"cargo_type"`
	Weight           float64    `json:"weight"`
	Dimensions       string     `json:"dimensions"`
	Status           string     `json:"status"`
	Customer         *PartyView `json:"customer"`
	Driver           *PartyView `json:"driver"`
	CreatedAt        string     `json:"created_at"`
}

type MessageReceipt struct {
	ID         int64  `json:"id"`
	Content    string `json:"content"`
	SentTo     string `json:"sent_to"`
	SentToRole string `json:"sent_to_role"`
	ShipmentID *int64 `json:"shipment_id"`
	SentAt     string `json:"sent_at"`
}

type MessageSummary struct {
	ID             int64   `json:"id"`
	Content        string  `json:"content"`
	To             string  `json:"to"`
	ToRole         string  `json:"to_role"`
	ShipmentNumber *string `json:"shipment_number"`
	SentAt         string  `json:"sent_at"`
	IsRead         bool    `json:"is_read"`
}

type DriverView struct {
	ID            int64  `json:"id"`
	FullName      string `json:"full_name"`
	Phone         string `json:"phone"`
	LicenseNumber string `json:"license_number"`
}
