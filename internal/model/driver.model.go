package model

import "time"

// Driver is the operational profile the assignment engine links to
// shipments. Its lifecycle is independent from the User identity record;
// UserID is set when a driver also has a login.
type Driver struct {
	ID            int64     `json:"id"`
	FullName      string    `json:"full_name"`
	Phone         string    `json:"phone"`
	LicenseNumber string    `json:"license_number"`
	UserID        *int64    `json:"user_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func (Driver) TableName() string { return "drivers" }
