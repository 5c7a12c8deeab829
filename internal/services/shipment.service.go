package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bargir/dispatch-gateway/internal/events"
	"github.com/bargir/dispatch-gateway/internal/model"
	"github.com/bargir/dispatch-gateway/pkg/logger"
	"github.com/bargir/dispatch-gateway/pkg/prom"
)

var (
	ErrInvalidTransition = errors.New("invalid status transition")
)

type ShipmentRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Shipment, error)
	GetRow(ctx context.Context, id int64) (*model.ShipmentRow, error)
	List(ctx context.Context, f model.ShipmentFilter) ([]*model.ShipmentRow, error)
	AssignDriver(ctx context.Context, shipmentID, driverID int64) (*model.Shipment, error)
	UpdateStatus(ctx context.Context, shipmentID int64, status model.ShipmentStatus) (*model.Shipment, error)
}

type DriverRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Driver, error)
	List(ctx context.Context) ([]*model.Driver, error)
}

// EventPublisher receives a compact record of each successful mutation.
// Satisfied by events.Stream.
type EventPublisher interface {
	Publish(ctx context.Context, ev events.Event) (string, error)
}

// ShipmentService is the assignment and status engine. strictTransitions
// selects between validated transitions and the permissive compatibility
// mode of the system this gateway replaces.
type ShipmentService struct {
	shipments         ShipmentRepository
	drivers           DriverRepository
	publisher         EventPublisher
	strictTransitions bool
}

func NewShipmentService(shipments ShipmentRepository, drivers DriverRepository, publisher EventPublisher, strictTransitions bool) *ShipmentService {
	return &ShipmentService{
		shipments:         shipments,
		drivers:           drivers,
		publisher:         publisher,
		strictTransitions: strictTransitions,
	}
}

// AssignDriver links a driver and moves the shipment to ASSIGNED.
// Re-assignment of an already assigned shipment is a supported action; in
// strict mode only terminal shipments refuse assignment. Both referenced
// records must exist before anything is written.
func (s *ShipmentService) AssignDriver(ctx context.Context, shipmentID, driverID int64) (*model.Shipment, *model.Driver, error) {
	defer observeCommand("assign_driver", time.Now())

	shipment, err := s.shipments.GetByID(ctx, shipmentID)
	if err != nil {
		prom.IncCounterVec(prom.SystemDispatch, prom.MetricAssignments, "not_found")
		return nil, nil, fmt.Errorf("load shipment: %w", err)
	}

	driver, err := s.drivers.GetByID(ctx, driverID)
	if err != nil {
		prom.IncCounterVec(prom.SystemDispatch, prom.MetricAssignments, "not_found")
		return nil, nil, fmt.Errorf("load driver: %w", err)
	}

	if s.strictTransitions && shipment.Status.Terminal() {
		return nil, nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, shipment.Status, model.StatusAssigned)
	}

	updated, err := s.shipments.AssignDriver(ctx, shipmentID, driverID)
	if err != nil {
		prom.IncCounterVec(prom.SystemDispatch, prom.MetricAssignments, "error")
		return nil, nil, fmt.Errorf("assign driver: %w", err)
	}

	prom.IncCounterVec(prom.SystemDispatch, prom.MetricAssignments, "ok")
	s.publish(ctx, events.Event{
		Kind:           events.KindDriverAssigned,
		ShipmentID:     updated.ID,
		ShipmentNumber: updated.ShipmentNumber,
		Status:         updated.Status.String(),
		DriverID:       updated.DriverID,
		At:             time.Now().UTC(),
	})

	return updated, driver, nil
}

// UpdateStatus applies the new status. The compatibility default trusts the
// caller; strict mode consults the transition table.
func (s *ShipmentService) UpdateStatus(ctx context.Context, shipmentID int64, status model.ShipmentStatus) (*model.Shipment, error) {
	defer observeCommand("update_status", time.Now())

	shipment, err := s.shipments.GetByID(ctx, shipmentID)
	if err != nil {
		return nil, fmt.Errorf("load shipment: %w", err)
	}

	if s.strictTransitions && !model.CanTransition(shipment.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, shipment.Status, status)
	}

	updated, err := s.shipments.UpdateStatus(ctx, shipmentID, status)
	if err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}

	prom.IncCounterVec(prom.SystemDispatch, prom.MetricStatusTransitions, status.String())
	s.publish(ctx, events.Event{
		Kind:           events.KindStatusChanged,
		ShipmentID:     updated.ID,
		ShipmentNumber: updated.ShipmentNumber,
		Status:         updated.Status.String(),
		DriverID:       updated.DriverID,
		At:             time.Now().UTC(),
	})

	return updated, nil
}

func (s *ShipmentService) GetDetail(ctx context.Context, shipmentID int64) (*model.ShipmentRow, error) {
	return s.shipments.GetRow(ctx, shipmentID)
}

func (s *ShipmentService) List(ctx context.Context, f model.ShipmentFilter) ([]*model.ShipmentRow, error) {
	return s.shipments.List(ctx, f)
}

func (s *ShipmentService) ListDrivers(ctx context.Context) ([]*model.Driver, error) {
	return s.drivers.List(ctx)
}

func observeCommand(command string, start time.Time) {
	prom.ObserveHistogramVec(prom.SystemDispatch, prom.MetricCommandDuration, time.Since(start).Seconds(), command)
}

// publish is fire-and-forget: the stream is an operational feed and a
// publish failure must never fail the command that already committed.
func (s *ShipmentService) publish(ctx context.Context, ev events.Event) {
	if s.publisher == nil {
		return
	}
	if _, err := s.publisher.Publish(ctx, ev); err != nil {
		logger.Warn("failed to publish shipment event", "kind", ev.Kind, "shipment_id", ev.ShipmentID, "error", err)
	}
}
