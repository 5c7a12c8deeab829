package handlers

import (
	"context"

	"github.com/bargir/dispatch-gateway/internal/model"
	"github.com/bargir/dispatch-gateway/internal/projection"
	xhttp "github.com/bargir/dispatch-gateway/pkg/http"
)

type ShipmentService interface {
	AssignDriver(ctx context.Context, shipmentID, driverID int64) (*model.Shipment, *model.Driver, error)
	UpdateStatus(ctx context.Context, shipmentID int64, status model.ShipmentStatus) (*model.Shipment, error)
	GetDetail(ctx context.Context, shipmentID int64) (*model.ShipmentRow, error)
	List(ctx context.Context, f model.ShipmentFilter) ([]*model.ShipmentRow, error)
	ListDrivers(ctx context.Context) ([]*model.Driver, error)
}

type ShipmentHandler struct {
	svc ShipmentService
}

func NewShipmentHandler(shipmentService ShipmentService) *ShipmentHandler {
	return &ShipmentHandler{
		svc: shipmentService,
	}
}

type assignDriverRequest struct {
	DriverID int64 `json:"driver_id"`
}

type assignDriverResponse struct {
	Message        string           `json:"message"`
	ShipmentNumber string           `json:"shipment_number"`
	Driver         model.DriverView `json:"driver"`
	Status         string           `json:"status"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type updateStatusResponse struct {
	Message        string `json:"message"`
	ShipmentNumber string `json:"shipment_number"`
	NewStatus      string `json:"new_status"`
}

func (h *ShipmentHandler) ListShipments(ctx *xhttp.RequestCtx) {
	var f model.ShipmentFilter
	if v := query(ctx, "status"); v != "" {
		status, err := model.ParseShipmentStatus(v)
		if err != nil {
			writeError(ctx, xhttp.StatusBadRequest, err.Error())
			return
		}
		f.Status = &status
	}

	rows, err := h.svc.List(ctx, f)
	if err != nil {
		writeDomainError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, projection.ShipmentSummaries(rows))
}

func (h *ShipmentHandler) GetShipment(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid shipment id")
		return
	}

	row, err := h.svc.GetDetail(ctx, id)
	if err != nil {
		writeDomainError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, projection.ShipmentDetail(row))
}

func (h *ShipmentHandler) AssignDriver(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid shipment id")
		return
	}
	var req assignDriverRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.DriverID == 0 {
		writeError(ctx, xhttp.StatusBadRequest, "driver_id is required")
		return
	}

	shipment, driver, err := h.svc.AssignDriver(ctx, id, req.DriverID)
	if err != nil {
		writeDomainError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, assignDriverResponse{
		Message:        "driver assigned",
		ShipmentNumber: shipment.ShipmentNumber,
		Driver:         projection.DriverView(driver),
		Status:         shipment.Status.String(),
	})
}

func (h *ShipmentHandler) UpdateStatus(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid shipment id")
		return
	}
	var req updateStatusRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	status, err := model.ParseShipmentStatus(req.Status)
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
		return
	}

	shipment, err := h.svc.UpdateStatus(ctx, id, status)
	if err != nil {
		writeDomainError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, updateStatusResponse{
		Message:        "status updated",
		ShipmentNumber: shipment.ShipmentNumber,
		NewStatus:      shipment.Status.String(),
	})
}

func (h *ShipmentHandler) ListDrivers(ctx *xhttp.RequestCtx) {
	drivers, err := h.svc.ListDrivers(ctx)
	if err != nil {
		writeDomainError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, projection.DriverViews(drivers))
}
