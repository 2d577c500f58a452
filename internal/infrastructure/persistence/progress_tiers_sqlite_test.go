package persistence

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fulfil/backend/internal/domain/fulfillment"
	"github.com/fulfil/backend/internal/domain/picking"
	"github.com/fulfil/backend/internal/infrastructure/persistence/models"
)

// The tests below run the same behavioral suite against every increment tier
// on a real database, so tier selection can never change outcomes. The
// pessimistic tier declines SQLite up front; that refusal is asserted as its
// contract here and its locking behavior is covered by the sqlmock tests.

func newTierTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "tiers.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A single pooled connection serializes statements, so concurrent
	// writers contend on versions and predicates instead of SQLITE_BUSY.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.SessionModel{},
		&models.SessionOrderModel{},
		&models.SessionItemModel{},
		&models.OrderModel{},
		&models.OrderLineItemModel{},
		&models.PackingProgressModel{},
	))
	return db
}

type packingFixture struct {
	sessionID uuid.UUID
	orderID   uuid.UUID
	productID uuid.UUID
}

func seedPackingCounter(t *testing.T, db *gorm.DB, needed int64) packingFixture {
	t.Helper()

	now := time.Now()
	f := packingFixture{
		sessionID: uuid.New(),
		orderID:   uuid.New(),
		productID: uuid.New(),
	}
	storeID := uuid.New()

	session := models.SessionModel{
		Code:           "PICK-05032026-01",
		Status:         picking.SessionStatusPacking,
		LastActivityAt: now,
	}
	session.ID = f.sessionID
	session.StoreID = storeID
	session.Version = 1
	session.CreatedAt = now
	session.UpdatedAt = now
	require.NoError(t, db.Create(&session).Error)

	order := models.OrderModel{
		OrderNumber: "ORD-1001",
		Status:      fulfillment.OrderStatusInPreparation,
	}
	order.ID = f.orderID
	order.StoreID = storeID
	order.Version = 1
	order.CreatedAt = now
	order.UpdatedAt = now
	require.NoError(t, db.Create(&order).Error)

	require.NoError(t, db.Create(&models.PackingProgressModel{
		ID:             uuid.New(),
		SessionID:      f.sessionID,
		OrderID:        f.orderID,
		ProductID:      f.productID,
		QuantityNeeded: needed,
		QuantityPacked: 0,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}).Error)

	return f
}

func readCounter(t *testing.T, db *gorm.DB, f packingFixture) models.PackingProgressModel {
	t.Helper()

	var model models.PackingProgressModel
	require.NoError(t, db.
		Where("session_id = ? AND order_id = ? AND product_id = ?", f.sessionID, f.orderID, f.productID).
		First(&model).Error)
	return model
}

// incrementTiers builds one instance of every tier against the given
// database. The optimistic retry budget is generous so conflict storms in
// the concurrency test never exhaust it.
func incrementTiers(db *gorm.DB) []picking.ProgressIncrementer {
	return []picking.ProgressIncrementer{
		NewConditionalIncrementer(db),
		NewPessimisticIncrementer(db),
		NewOptimisticIncrementer(db, 100),
	}
}

func TestIncrementTiers_SharedBehavior(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name string
		run  func(t *testing.T, db *gorm.DB, tier picking.ProgressIncrementer, f packingFixture)
	}{
		{
			name: "applies delta and reports the new count",
			run: func(t *testing.T, db *gorm.DB, tier picking.ProgressIncrementer, f packingFixture) {
				progress, err := tier.IncrementPacked(ctx, f.sessionID, f.orderID, f.productID, 3)

				require.NoError(t, err)
				assert.Equal(t, int64(3), progress.QuantityPacked)
				assert.Equal(t, int64(3), readCounter(t, db, f).QuantityPacked)
			},
		},
		{
			name: "rejects packing past the needed quantity",
			run: func(t *testing.T, db *gorm.DB, tier picking.ProgressIncrementer, f packingFixture) {
				_, err := tier.IncrementPacked(ctx, f.sessionID, f.orderID, f.productID, 6)

				assert.ErrorIs(t, err, picking.ErrOverPack)
				assert.Equal(t, int64(0), readCounter(t, db, f).QuantityPacked)
			},
		},
		{
			name: "rejects decrementing below zero",
			run: func(t *testing.T, db *gorm.DB, tier picking.ProgressIncrementer, f packingFixture) {
				_, err := tier.IncrementPacked(ctx, f.sessionID, f.orderID, f.productID, -1)

				assert.ErrorIs(t, err, picking.ErrUnderPack)
				assert.Equal(t, int64(0), readCounter(t, db, f).QuantityPacked)
			},
		},
		{
			name: "rejects when the session left packing",
			run: func(t *testing.T, db *gorm.DB, tier picking.ProgressIncrementer, f packingFixture) {
				require.NoError(t, db.Model(&models.SessionModel{}).
					Where("id = ?", f.sessionID).
					Update("status", picking.SessionStatusCompleted).Error)

				_, err := tier.IncrementPacked(ctx, f.sessionID, f.orderID, f.productID, 1)

				assert.ErrorIs(t, err, picking.ErrSessionNotPacking)
				assert.Equal(t, int64(0), readCounter(t, db, f).QuantityPacked)
			},
		},
		{
			name: "rejects once the order is stock-committed",
			run: func(t *testing.T, db *gorm.DB, tier picking.ProgressIncrementer, f packingFixture) {
				require.NoError(t, db.Model(&models.OrderModel{}).
					Where("id = ?", f.orderID).
					Update("status", fulfillment.OrderStatusReadyToShip).Error)

				_, err := tier.IncrementPacked(ctx, f.sessionID, f.orderID, f.productID, 1)

				assert.ErrorIs(t, err, picking.ErrOrderStockCommitted)
				assert.Equal(t, int64(0), readCounter(t, db, f).QuantityPacked)
			},
		},
	}

	db := newTierTestDB(t)
	for _, tier := range incrementTiers(db) {
		t.Run(tier.Name(), func(t *testing.T) {
			if tier.Name() == "pessimistic" {
				f := seedPackingCounter(t, db, 5)
				_, err := tier.IncrementPacked(ctx, f.sessionID, f.orderID, f.productID, 1)
				assert.ErrorIs(t, err, picking.ErrPrimitiveUnavailable)
				return
			}
			for _, tc := range cases {
				t.Run(tc.name, func(t *testing.T) {
					tc.run(t, db, tier, seedPackingCounter(t, db, 5))
				})
			}
		})
	}
}

// Fifty goroutines each add one unit to the same counter; every unit must
// land exactly once and the counter must finish at exactly fifty.
func TestIncrementTiers_ConcurrentWritersLoseNoIncrements(t *testing.T) {
	const writers = 50

	db := newTierTestDB(t)
	for _, tier := range incrementTiers(db) {
		if tier.Name() == "pessimistic" {
			continue
		}
		t.Run(tier.Name(), func(t *testing.T) {
			f := seedPackingCounter(t, db, writers)

			var wg sync.WaitGroup
			errs := make(chan error, writers)
			for w := 0; w < writers; w++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := tier.IncrementPacked(context.Background(), f.sessionID, f.orderID, f.productID, 1)
					errs <- err
				}()
			}
			wg.Wait()
			close(errs)

			for err := range errs {
				require.NoError(t, err)
			}

			final := readCounter(t, db, f)
			assert.Equal(t, int64(writers), final.QuantityPacked)
			if tier.Name() == "optimistic" {
				// Every swap bumps the version, one per landed unit.
				assert.Equal(t, 1+writers, final.Version)
			}
		})
	}
}
