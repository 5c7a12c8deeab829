// Package projection assembles response-shaped views from persisted
// entities. Everything here is a pure transformation: nullable references
// become display placeholders, timestamps become RFC3339 strings, enums
// become their plain string form. Safe for any number of concurrent
// readers.
package projection

import (
	"time"

	"github.com/bargir/dispatch-gateway/internal/model"
)

const (
	missingCustomer = "—"
	missingDriver   = "Not assigned"
)

func ShipmentSummary(row *model.ShipmentRow) model.ShipmentSummary {
	return model.ShipmentSummary{
		ID:               row.ID,
		ShipmentNumber:   row.ShipmentNumber,
		PickupLocation:   row.PickupLocation,
		DeliveryLocation: row.DeliveryLocation,
		CargoType:        row.CargoType,
		Weight:           row.Weight,
		Dimensions:       row.Dimensions,
		Status:           row.Status.String(),
		CustomerName:     stringOr(row.CustomerName, missingCustomer),
		DriverName:       stringOr(row.DriverName, missingDriver),
		CreatedAt:        formatTime(row.CreatedAt),
	}
}

func ShipmentSummaries(rows []*model.ShipmentRow) []model.ShipmentSummary {
	out := make([]model.ShipmentSummary, len(rows))
	for i, r := range rows {
		out[i] = ShipmentSummary(r)
	}
	return out
}

func ShipmentDetail(row *model.ShipmentRow) model.ShipmentDetail {
	return model.ShipmentDetail{
		ID:               row.ID,
		ShipmentNumber:   row.ShipmentNumber,
		PickupLocation:   row.PickupLocation,
		DeliveryLocation: row.DeliveryLocation,
		CargoType:        row.CargoType,
		Weight:           row.Weight,
		Dimensions:       row.Dimensions,
		Status:           row.Status.String(),
		Customer:         party(row.CustomerID, row.CustomerName, row.CustomerPhone),
		Driver:           party(row.DriverID, row.DriverName, row.DriverPhone),
		CreatedAt:        formatTime(row.CreatedAt),
	}
}

func MessageReceipt(msg *model.Message, recipient *model.User) model.MessageReceipt {
	return model.MessageReceipt{
		ID:         msg.ID,
		Content:    msg.Content,
		SentTo:     recipient.FullName,
		SentToRole: recipient.Role.String(),
		ShipmentID: msg.ShipmentID,
		SentAt:     formatTime(msg.CreatedAt),
	}
}

func MessageSummary(row *model.MessageRow) model.MessageSummary {
	return model.MessageSummary{
		ID:             row.ID,
		Content:        row.Content,
		To:             row.RecipientName,
		ToRole:         row.RecipientRole.String(),
		ShipmentNumber: row.ShipmentNumber,
		SentAt:         formatTime(row.CreatedAt),
		IsRead:         row.IsRead,
	}
}

func MessageSummaries(rows []*model.MessageRow) []model.MessageSummary {
	out := make([]model.MessageSummary, len(rows))
	for i, r := range rows {
		out[i] = MessageSummary(r)
	}
	return out
}

func DriverView(d *model.Driver) model.DriverView {
	return model.DriverView{
		ID:            d.ID,
		FullName:      d.FullName,
		Phone:         d.Phone,
		LicenseNumber: d.LicenseNumber,
	}
}

func DriverViews(drivers []*model.Driver) []model.DriverView {
	out := make([]model.DriverView, len(drivers))
	for i, d := range drivers {
		out[i] = DriverView(d)
	}
	return out
}

func party(id *int64, name, phone *string) *model.PartyView {
	if id == nil || name == nil {
		return nil
	}
	return &model.PartyView{
		ID:    *id,
		Name:  *name,
		Phone: stringOr(phone, ""),
	}
}

func stringOr(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
