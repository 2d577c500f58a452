package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fulfil/backend/internal/domain/picking"
	"github.com/fulfil/backend/internal/domain/shared"
)

// ============================================
// Fixtures
// ============================================

func newMockGormDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

type progressRowState struct {
	id      uuid.UUID
	needed  int64
	packed  int64
	version int
}

func progressRows(sessionID, orderID, productID uuid.UUID, row progressRowState) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "session_id", "order_id", "product_id",
		"quantity_needed", "quantity_packed", "version",
		"created_at", "updated_at",
	}).AddRow(row.id, sessionID, orderID, productID, row.needed, row.packed, row.version, now, now)
}

func sessionStatusRows(sessionID uuid.UUID, status picking.SessionStatus) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "status"}).AddRow(sessionID, string(status))
}

func orderStatusRows(orderID uuid.UUID, status string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "status"}).AddRow(orderID, status)
}

// expectPreconditionReads queues the unlocked session and order status
// lookups used for error classification.
func expectPreconditionReads(mock sqlmock.Sqlmock, sessionID, orderID uuid.UUID, sessionStatus picking.SessionStatus, orderStatus string) {
	mock.ExpectQuery(`SELECT \* FROM "picking_sessions"`).
		WillReturnRows(sessionStatusRows(sessionID, sessionStatus))
	mock.ExpectQuery(`SELECT \* FROM "orders"`).
		WillReturnRows(orderStatusRows(orderID, orderStatus))
}

// expectSharedLockPreconditionReads queues the FOR SHARE status lookups the
// row-lock tier performs inside its transaction.
func expectSharedLockPreconditionReads(mock sqlmock.Sqlmock, sessionID, orderID uuid.UUID, sessionStatus picking.SessionStatus, orderStatus string) {
	mock.ExpectQuery(`SELECT \* FROM "picking_sessions".*FOR SHARE`).
		WillReturnRows(sessionStatusRows(sessionID, sessionStatus))
	mock.ExpectQuery(`SELECT \* FROM "orders".*FOR SHARE`).
		WillReturnRows(orderStatusRows(orderID, orderStatus))
}

// ============================================
// ConditionalIncrementer
// ============================================

func TestConditionalIncrementer_Name(t *testing.T) {
	db, _, mockDB := newMockGormDB(t)
	defer mockDB.Close()

	assert.Equal(t, "conditional", NewConditionalIncrementer(db).Name())
}

func TestConditionalIncrementer_Success(t *testing.T) {
	db, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()

	sessionID := uuid.New()
	orderID := uuid.New()
	productID := uuid.New()
	rowID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "packing_progress" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "picking_sessions" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM "packing_progress"`).
		WillReturnRows(progressRows(sessionID, orderID, productID, progressRowState{
			id: rowID, needed: 5, packed: 3, version: 1,
		}))
	mock.ExpectCommit()

	incrementer := NewConditionalIncrementer(db)
	progress, err := incrementer.IncrementPacked(context.Background(), sessionID, orderID, productID, 2)

	require.NoError(t, err)
	assert.Equal(t, int64(3), progress.QuantityPacked)
	assert.Equal(t, int64(5), progress.QuantityNeeded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConditionalIncrementer_ZeroRowClassification(t *testing.T) {
	sessionID := uuid.New()
	orderID := uuid.New()
	productID := uuid.New()

	t.Run("over pack", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "packing_progress" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		expectPreconditionReads(mock, sessionID, orderID, picking.SessionStatusPacking, "in_preparation")
		mock.ExpectQuery(`SELECT \* FROM "packing_progress"`).
			WillReturnRows(progressRows(sessionID, orderID, productID, progressRowState{
				id: uuid.New(), needed: 5, packed: 4, version: 1,
			}))
		mock.ExpectRollback()

		_, err := NewConditionalIncrementer(db).IncrementPacked(context.Background(), sessionID, orderID, productID, 2)

		assert.ErrorIs(t, err, picking.ErrOverPack)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("under pack", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "packing_progress" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		expectPreconditionReads(mock, sessionID, orderID, picking.SessionStatusPacking, "in_preparation")
		mock.ExpectQuery(`SELECT \* FROM "packing_progress"`).
			WillReturnRows(progressRows(sessionID, orderID, productID, progressRowState{
				id: uuid.New(), needed: 5, packed: 1, version: 1,
			}))
		mock.ExpectRollback()

		_, err := NewConditionalIncrementer(db).IncrementPacked(context.Background(), sessionID, orderID, productID, -3)

		assert.ErrorIs(t, err, picking.ErrUnderPack)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("session not packing", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "packing_progress" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT \* FROM "picking_sessions"`).
			WillReturnRows(sessionStatusRows(sessionID, picking.SessionStatusCompleted))
		mock.ExpectRollback()

		_, err := NewConditionalIncrementer(db).IncrementPacked(context.Background(), sessionID, orderID, productID, 1)

		assert.ErrorIs(t, err, picking.ErrSessionNotPacking)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("order already stock committed", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "packing_progress" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		expectPreconditionReads(mock, sessionID, orderID, picking.SessionStatusPacking, "ready_to_ship")
		mock.ExpectRollback()

		_, err := NewConditionalIncrementer(db).IncrementPacked(context.Background(), sessionID, orderID, productID, 1)

		assert.ErrorIs(t, err, picking.ErrOrderStockCommitted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("counter row missing", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "packing_progress" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		expectPreconditionReads(mock, sessionID, orderID, picking.SessionStatusPacking, "in_preparation")
		mock.ExpectQuery(`SELECT \* FROM "packing_progress"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectRollback()

		_, err := NewConditionalIncrementer(db).IncrementPacked(context.Background(), sessionID, orderID, productID, 1)

		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("predicate holds on reread means a raced increment", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "packing_progress" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		expectPreconditionReads(mock, sessionID, orderID, picking.SessionStatusPacking, "in_preparation")
		mock.ExpectQuery(`SELECT \* FROM "packing_progress"`).
			WillReturnRows(progressRows(sessionID, orderID, productID, progressRowState{
				id: uuid.New(), needed: 5, packed: 2, version: 1,
			}))
		mock.ExpectRollback()

		_, err := NewConditionalIncrementer(db).IncrementPacked(context.Background(), sessionID, orderID, productID, 1)

		assert.ErrorIs(t, err, shared.ErrConcurrentModification)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// ============================================
// PessimisticIncrementer
// ============================================

func TestPessimisticIncrementer_Name(t *testing.T) {
	db, _, mockDB := newMockGormDB(t)
	defer mockDB.Close()

	assert.Equal(t, "pessimistic", NewPessimisticIncrementer(db).Name())
}

func TestPessimisticIncrementer_Success(t *testing.T) {
	db, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()

	sessionID := uuid.New()
	orderID := uuid.New()
	productID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "packing_progress".*FOR UPDATE`).
		WillReturnRows(progressRows(sessionID, orderID, productID, progressRowState{
			id: uuid.New(), needed: 10, packed: 4, version: 1,
		}))
	expectSharedLockPreconditionReads(mock, sessionID, orderID, picking.SessionStatusPacking, "in_preparation")
	mock.ExpectExec(`UPDATE "packing_progress" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "picking_sessions" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	incrementer := NewPessimisticIncrementer(db)
	progress, err := incrementer.IncrementPacked(context.Background(), sessionID, orderID, productID, 3)

	require.NoError(t, err)
	assert.Equal(t, int64(7), progress.QuantityPacked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPessimisticIncrementer_BoundsCheckedUnderLock(t *testing.T) {
	db, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()

	sessionID := uuid.New()
	orderID := uuid.New()
	productID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "packing_progress".*FOR UPDATE`).
		WillReturnRows(progressRows(sessionID, orderID, productID, progressRowState{
			id: uuid.New(), needed: 5, packed: 5, version: 1,
		}))
	expectSharedLockPreconditionReads(mock, sessionID, orderID, picking.SessionStatusPacking, "in_preparation")
	mock.ExpectRollback()

	_, err := NewPessimisticIncrementer(db).IncrementPacked(context.Background(), sessionID, orderID, productID, 1)

	assert.ErrorIs(t, err, picking.ErrOverPack)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPessimisticIncrementer_StockCommittedOrderRejectedUnderLock(t *testing.T) {
	db, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()

	sessionID := uuid.New()
	orderID := uuid.New()
	productID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "packing_progress".*FOR UPDATE`).
		WillReturnRows(progressRows(sessionID, orderID, productID, progressRowState{
			id: uuid.New(), needed: 10, packed: 0, version: 1,
		}))
	expectSharedLockPreconditionReads(mock, sessionID, orderID, picking.SessionStatusPacking, "ready_to_ship")
	mock.ExpectRollback()

	_, err := NewPessimisticIncrementer(db).IncrementPacked(context.Background(), sessionID, orderID, productID, 1)

	assert.ErrorIs(t, err, picking.ErrOrderStockCommitted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPessimisticIncrementer_UnavailableOnSQLite(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	incrementer := NewPessimisticIncrementer(db)
	_, err = incrementer.IncrementPacked(context.Background(), uuid.New(), uuid.New(), uuid.New(), 1)

	assert.ErrorIs(t, err, picking.ErrPrimitiveUnavailable)
}

// ============================================
// OptimisticIncrementer
// ============================================

func TestOptimisticIncrementer_Name(t *testing.T) {
	db, _, mockDB := newMockGormDB(t)
	defer mockDB.Close()

	assert.Equal(t, "optimistic", NewOptimisticIncrementer(db, 3).Name())
}

func TestOptimisticIncrementer_FirstAttemptSucceeds(t *testing.T) {
	db, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()

	sessionID := uuid.New()
	orderID := uuid.New()
	productID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "packing_progress"`).
		WillReturnRows(progressRows(sessionID, orderID, productID, progressRowState{
			id: uuid.New(), needed: 8, packed: 2, version: 3,
		}))
	expectPreconditionReads(mock, sessionID, orderID, picking.SessionStatusPacking, "in_preparation")
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "packing_progress" SET .* WHERE id = \$\d+ AND version = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "picking_sessions" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	incrementer := NewOptimisticIncrementer(db, 5)
	progress, err := incrementer.IncrementPacked(context.Background(), sessionID, orderID, productID, 4)

	require.NoError(t, err)
	assert.Equal(t, int64(6), progress.QuantityPacked)
	assert.Equal(t, 4, progress.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOptimisticIncrementer_SwapGuardsSessionAndOrderStatus(t *testing.T) {
	db, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()

	sessionID := uuid.New()
	orderID := uuid.New()
	productID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "packing_progress"`).
		WillReturnRows(progressRows(sessionID, orderID, productID, progressRowState{
			id: uuid.New(), needed: 8, packed: 2, version: 3,
		}))
	expectPreconditionReads(mock, sessionID, orderID, picking.SessionStatusPacking, "in_preparation")
	mock.ExpectBegin()
	// The status gates ride in the swap's WHERE clause, so the database
	// evaluates them in the same atomic step as the version check.
	mock.ExpectExec(`UPDATE "packing_progress" SET .* WHERE id = .* AND version = .* ` +
		`AND EXISTS \(SELECT 1 FROM picking_sessions WHERE picking_sessions\.id = .* AND picking_sessions\.status = .*\) ` +
		`AND NOT EXISTS \(SELECT 1 FROM orders WHERE orders\.id = .* AND orders\.status IN .*\)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "picking_sessions" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	incrementer := NewOptimisticIncrementer(db, 5)
	progress, err := incrementer.IncrementPacked(context.Background(), sessionID, orderID, productID, 1)

	require.NoError(t, err)
	assert.Equal(t, int64(3), progress.QuantityPacked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOptimisticIncrementer_TransitionDuringSwapIsRejected(t *testing.T) {
	db, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()

	sessionID := uuid.New()
	orderID := uuid.New()
	productID := uuid.New()
	rowID := uuid.New()

	// Attempt 1: the order is still open when the preconditions are read,
	// then commits ready_to_ship before the swap. The gated WHERE matches
	// zero rows, so no increment lands.
	mock.ExpectQuery(`SELECT \* FROM "packing_progress"`).
		WillReturnRows(progressRows(sessionID, orderID, productID, progressRowState{
			id: rowID, needed: 10, packed: 0, version: 1,
		}))
	expectPreconditionReads(mock, sessionID, orderID, picking.SessionStatusPacking, "in_preparation")
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "packing_progress" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	// Attempt 2: the fresh read surfaces the committed transition as the
	// final error.
	mock.ExpectQuery(`SELECT \* FROM "packing_progress"`).
		WillReturnRows(progressRows(sessionID, orderID, productID, progressRowState{
			id: rowID, needed: 10, packed: 0, version: 1,
		}))
	expectPreconditionReads(mock, sessionID, orderID, picking.SessionStatusPacking, "ready_to_ship")

	incrementer := NewOptimisticIncrementer(db, 5)
	_, err := incrementer.IncrementPacked(context.Background(), sessionID, orderID, productID, 1)

	assert.ErrorIs(t, err, picking.ErrOrderStockCommitted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOptimisticIncrementer_RetriesAfterLostRace(t *testing.T) {
	db, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()

	sessionID := uuid.New()
	orderID := uuid.New()
	productID := uuid.New()
	rowID := uuid.New()

	// First attempt loses the compare-and-swap, second sees the fresh
	// version and wins.
	mock.ExpectQuery(`SELECT \* FROM "packing_progress"`).
		WillReturnRows(progressRows(sessionID, orderID, productID, progressRowState{
			id: rowID, needed: 8, packed: 2, version: 3,
		}))
	expectPreconditionReads(mock, sessionID, orderID, picking.SessionStatusPacking, "in_preparation")
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "packing_progress" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	mock.ExpectQuery(`SELECT \* FROM "packing_progress"`).
		WillReturnRows(progressRows(sessionID, orderID, productID, progressRowState{
			id: rowID, needed: 8, packed: 3, version: 4,
		}))
	expectPreconditionReads(mock, sessionID, orderID, picking.SessionStatusPacking, "in_preparation")
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "packing_progress" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "picking_sessions" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	incrementer := NewOptimisticIncrementer(db, 5)
	progress, err := incrementer.IncrementPacked(context.Background(), sessionID, orderID, productID, 1)

	require.NoError(t, err)
	assert.Equal(t, int64(4), progress.QuantityPacked)
	assert.Equal(t, 5, progress.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOptimisticIncrementer_RetryExhaustion(t *testing.T) {
	db, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()

	sessionID := uuid.New()
	orderID := uuid.New()
	productID := uuid.New()
	rowID := uuid.New()

	for attempt := 0; attempt < 2; attempt++ {
		mock.ExpectQuery(`SELECT \* FROM "packing_progress"`).
			WillReturnRows(progressRows(sessionID, orderID, productID, progressRowState{
				id: rowID, needed: 8, packed: 2, version: 3 + attempt,
			}))
		expectPreconditionReads(mock, sessionID, orderID, picking.SessionStatusPacking, "in_preparation")
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "packing_progress" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()
	}

	incrementer := NewOptimisticIncrementer(db, 2)
	_, err := incrementer.IncrementPacked(context.Background(), sessionID, orderID, productID, 1)

	assert.ErrorIs(t, err, shared.ErrTooManyConflicts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOptimisticIncrementer_BoundsViolationIsFinal(t *testing.T) {
	db, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()

	sessionID := uuid.New()
	orderID := uuid.New()
	productID := uuid.New()

	// A full counter never reaches the write, and never retries.
	mock.ExpectQuery(`SELECT \* FROM "packing_progress"`).
		WillReturnRows(progressRows(sessionID, orderID, productID, progressRowState{
			id: uuid.New(), needed: 5, packed: 5, version: 1,
		}))
	expectPreconditionReads(mock, sessionID, orderID, picking.SessionStatusPacking, "in_preparation")

	incrementer := NewOptimisticIncrementer(db, 5)
	_, err := incrementer.IncrementPacked(context.Background(), sessionID, orderID, productID, 1)

	assert.ErrorIs(t, err, picking.ErrOverPack)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOptimisticIncrementer_CounterNotFound(t *testing.T) {
	db, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()

	mock.ExpectQuery(`SELECT \* FROM "packing_progress"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	incrementer := NewOptimisticIncrementer(db, 5)
	_, err := incrementer.IncrementPacked(context.Background(), uuid.New(), uuid.New(), uuid.New(), 1)

	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOptimisticIncrementer_DefaultsRetryBudget(t *testing.T) {
	db, _, mockDB := newMockGormDB(t)
	defer mockDB.Close()

	incrementer := NewOptimisticIncrementer(db, 0)
	assert.Equal(t, 10, incrementer.maxRetries)
}

// ============================================
// BuildIncrementers
// ============================================

func TestBuildIncrementers(t *testing.T) {
	db, _, mockDB := newMockGormDB(t)
	defer mockDB.Close()

	t.Run("builds tiers in configured order", func(t *testing.T) {
		tiers := BuildIncrementers(db, []string{"conditional", "pessimistic", "optimistic"}, 5)

		require.Len(t, tiers, 3)
		assert.Equal(t, "conditional", tiers[0].Name())
		assert.Equal(t, "pessimistic", tiers[1].Name())
		assert.Equal(t, "optimistic", tiers[2].Name())
	})

	t.Run("skips unknown tier names", func(t *testing.T) {
		tiers := BuildIncrementers(db, []string{"conditional", "bogus"}, 5)

		require.Len(t, tiers, 1)
		assert.Equal(t, "conditional", tiers[0].Name())
	})

	t.Run("empty config yields no tiers", func(t *testing.T) {
		assert.Empty(t, BuildIncrementers(db, nil, 5))
	})
}
