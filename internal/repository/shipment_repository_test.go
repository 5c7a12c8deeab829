package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bargir/dispatch-gateway/internal/model"
)

func seedShipment(t *testing.T, db *testDB, number string, status model.ShipmentStatus, customerID, driverID *int64) *ShipmentEntity {
	t.Helper()
	entity := &ShipmentEntity{
		ShipmentNumber:   number,
		PickupLocation:   "Warehouse 12, Oakland",
		DeliveryLocation: "501 Pine St, Seattle",
		CargoType:        "electronics",
		Weight:           420.5,
		Dimensions:       "120x80x100",
		Status:           string(status),
		CustomerID:       customerID,
		DriverID:         driverID,
	}
	require.NoError(t, db.rawDB.Create(entity).Error)
	return entity
}

func seedUser(t *testing.T, db *testDB, email string, role model.Role) *UserEntity {
	t.Helper()
	entity := &UserEntity{
		Email:        email,
		PasswordHash: "$2a$10$irrelevant",
		FullName:     "Seeded " + string(role),
		Phone:        "+15550100",
		Role:         string(role),
	}
	require.NoError(t, db.rawDB.Create(entity).Error)
	return entity
}

func seedDriver(t *testing.T, db *testDB, name string) *DriverEntity {
	t.Helper()
	entity := &DriverEntity{
		FullName:      name,
		Phone:         "+15550101",
		LicenseNumber: "DL-48213",
	}
	require.NoError(t, db.rawDB.Create(entity).Error)
	return entity
}

func TestShipmentRepository_GetByID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewShipmentRepository(db.DB)
	ctx := context.Background()

	seeded := seedShipment(t, db, "SHP-001", model.StatusPending, nil, nil)

	t.Run("found", func(t *testing.T) {
		s, err := repo.GetByID(ctx, seeded.ID)
		require.NoError(t, err)
		assert.Equal(t, "SHP-001", s.ShipmentNumber)
		assert.Equal(t, model.StatusPending, s.Status)
		assert.Nil(t, s.DriverID)
	})

	t.Run("absent id yields not found", func(t *testing.T) {
		_, err := repo.GetByID(ctx, 999)
		assert.ErrorIs(t, err, ErrShipmentNotFound)
	})
}

func TestShipmentRepository_AssignDriver(t *testing.T) {
	db := setupTestDB(t)
	repo := NewShipmentRepository(db.DB)
	ctx := context.Background()

	driver := seedDriver(t, db, "Dmitri Driver")
	shipment := seedShipment(t, db, "SHP-001", model.StatusPending, nil, nil)

	t.Run("links driver and moves to ASSIGNED", func(t *testing.T) {
		updated, err := repo.AssignDriver(ctx, shipment.ID, driver.ID)
		require.NoError(t, err)
		assert.Equal(t, model.StatusAssigned, updated.Status)
		require.NotNil(t, updated.DriverID)
		assert.Equal(t, driver.ID, *updated.DriverID)
	})

	t.Run("bumps version on every write", func(t *testing.T) {
		before, err := repo.GetByID(ctx, shipment.ID)
		require.NoError(t, err)

		updated, err := repo.AssignDriver(ctx, shipment.ID, driver.ID)
		require.NoError(t, err)
		assert.Equal(t, before.Version+1, updated.Version)
	})

	t.Run("re-assignment with same driver is idempotent", func(t *testing.T) {
		first, err := repo.AssignDriver(ctx, shipment.ID, driver.ID)
		require.NoError(t, err)
		second, err := repo.AssignDriver(ctx, shipment.ID, driver.ID)
		require.NoError(t, err)

		assert.Equal(t, first.Status, second.Status)
		assert.Equal(t, *first.DriverID, *second.DriverID)
	})

	t.Run("absent shipment yields not found and no write", func(t *testing.T) {
		_, err := repo.AssignDriver(ctx, 999, driver.ID)
		assert.ErrorIs(t, err, ErrShipmentNotFound)

		var count int64
		require.NoError(t, db.rawDB.Model(&ShipmentEntity{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})
}

func TestShipmentRepository_UpdateStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewShipmentRepository(db.DB)
	ctx := context.Background()

	driver := seedDriver(t, db, "Dmitri Driver")
	shipment := seedShipment(t, db, "SHP-001", model.StatusAssigned, nil, &driver.ID)

	t.Run("applies new status and keeps driver", func(t *testing.T) {
		updated, err := repo.UpdateStatus(ctx, shipment.ID, model.StatusInTransit)
		require.NoError(t, err)
		assert.Equal(t, model.StatusInTransit, updated.Status)
		require.NotNil(t, updated.DriverID)
		assert.Equal(t, driver.ID, *updated.DriverID)
	})

	t.Run("absent shipment yields not found", func(t *testing.T) {
		_, err := repo.UpdateStatus(ctx, 999, model.StatusDelivered)
		assert.ErrorIs(t, err, ErrShipmentNotFound)
	})
}

func TestShipmentRepository_GetRow(t *testing.T) {
	db := setupTestDB(t)
	repo := NewShipmentRepository(db.DB)
	ctx := context.Background()

	customer := seedUser(t, db, "customer@example.com", model.RoleCustomer)
	driver := seedDriver(t, db, "Dmitri Driver")

	t.Run("joins customer and driver names", func(t *testing.T) {
		shipment := seedShipment(t, db, "SHP-001", model.StatusAssigned, &customer.ID, &driver.ID)

		row, err := repo.GetRow(ctx, shipment.ID)
		require.NoError(t, err)
		require.NotNil(t, row.CustomerName)
		assert.Equal(t, customer.FullName, *row.CustomerName)
		require.NotNil(t, row.DriverName)
		assert.Equal(t, "Dmitri Driver", *row.DriverName)
	})

	t.Run("absent references leave name columns nil", func(t *testing.T) {
		shipment := seedShipment(t, db, "SHP-002", model.StatusPending, nil, nil)

		row, err := repo.GetRow(ctx, shipment.ID)
		require.NoError(t, err)
		assert.Nil(t, row.CustomerName)
		assert.Nil(t, row.DriverName)
	})

	t.Run("absent shipment yields not found", func(t *testing.T) {
		_, err := repo.GetRow(ctx, 999)
		assert.ErrorIs(t, err, ErrShipmentNotFound)
	})
}

func TestShipmentRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewShipmentRepository(db.DB)
	ctx := context.Background()

	seedShipment(t, db, "SHP-001", model.StatusPending, nil, nil)
	seedShipment(t, db, "SHP-002", model.StatusPending, nil, nil)
	driver := seedDriver(t, db, "Dmitri Driver")
	seedShipment(t, db, "SHP-003", model.StatusAssigned, nil, &driver.ID)

	t.Run("no filter returns everything", func(t *testing.T) {
		rows, err := repo.List(ctx, model.ShipmentFilter{})
		require.NoError(t, err)
		assert.Len(t, rows, 3)
	})

	t.Run("status filter is an equality match", func(t *testing.T) {
		status := model.StatusPending
		rows, err := repo.List(ctx, model.ShipmentFilter{Status: &status})
		require.NoError(t, err)
		require.Len(t, rows, 2)
		for _, r := range rows {
			assert.Equal(t, model.StatusPending, r.Status)
		}
	})

	t.Run("no matches returns empty list", func(t *testing.T) {
		status := model.StatusDelivered
		rows, err := repo.List(ctx, model.ShipmentFilter{Status: &status})
		require.NoError(t, err)
		assert.Empty(t, rows)
	})
}
