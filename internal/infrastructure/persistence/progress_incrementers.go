package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/fulfil/backend/internal/domain/fulfillment"
	"github.com/fulfil/backend/internal/domain/picking"
	"github.com/fulfil/backend/internal/domain/shared"
	"github.com/fulfil/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// The three increment tiers below share exact semantics: apply delta to the
// (session, order, product) counter if and only if the bounds hold, the
// session is in packing and the member order is not stock-committed, all in
// one indivisible step, and bump the session's activity timestamp in the
// same transaction. They differ only in the storage primitive used to get
// atomicity.

// stockCommittedStatuses is the order-status set after which packing
// increments are rejected.
var stockCommittedStatuses = []string{
	string(fulfillment.OrderStatusReadyToShip),
	string(fulfillment.OrderStatusShipped),
	string(fulfillment.OrderStatusDelivered),
}

// ConditionalIncrementer is the preferred tier: a single server-side UPDATE
// whose WHERE clause carries the bounds and both preconditions. The database
// evaluates predicate and write as one atomic step, so no locks are held
// across round trips.
type ConditionalIncrementer struct {
	db *gorm.DB
}

// NewConditionalIncrementer creates the conditional-update tier
func NewConditionalIncrementer(db *gorm.DB) *ConditionalIncrementer {
	return &ConditionalIncrementer{db: db}
}

// Name identifies the tier in logs and metrics
func (i *ConditionalIncrementer) Name() string { return "conditional" }

// IncrementPacked applies the delta with one conditional UPDATE
func (i *ConditionalIncrementer) IncrementPacked(ctx context.Context, sessionID, orderID, productID uuid.UUID, delta int64) (*picking.PackingProgress, error) {
	var progress *picking.PackingProgress
	err := i.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		result := tx.Model(&models.PackingProgressModel{}).
			Where("session_id = ? AND order_id = ? AND product_id = ?", sessionID, orderID, productID).
			Where("quantity_packed + ? >= 0", delta).
			Where("quantity_packed + ? <= quantity_needed", delta).
			Where("EXISTS (SELECT 1 FROM picking_sessions WHERE picking_sessions.id = packing_progress.session_id AND picking_sessions.status = ?)",
				picking.SessionStatusPacking).
			Where("NOT EXISTS (SELECT 1 FROM orders WHERE orders.id = packing_progress.order_id AND orders.status IN ?)",
				stockCommittedStatuses).
			Updates(map[string]interface{}{
				"quantity_packed": gorm.Expr("quantity_packed + ?", delta),
				"updated_at":      now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return classifyPackFailure(tx, sessionID, orderID, productID, delta)
		}

		if err := touchSession(tx, sessionID, now); err != nil {
			return err
		}

		var model models.PackingProgressModel
		if err := tx.Where("session_id = ? AND order_id = ? AND product_id = ?", sessionID, orderID, productID).
			First(&model).Error; err != nil {
			return err
		}
		progress = model.ToDomain()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return progress, nil
}

// PessimisticIncrementer is the row-lock tier: SELECT ... FOR UPDATE on the
// counter, session and order rows read under FOR SHARE, validate in Go while
// the locks are held, then write. The share locks keep a concurrent order
// transition or session completion from committing between the status check
// and the increment. Correct under any interleaving but holds locks across
// round trips.
type PessimisticIncrementer struct {
	db *gorm.DB
}

// NewPessimisticIncrementer creates the row-lock tier
func NewPessimisticIncrementer(db *gorm.DB) *PessimisticIncrementer {
	return &PessimisticIncrementer{db: db}
}

// Name identifies the tier in logs and metrics
func (i *PessimisticIncrementer) Name() string { return "pessimistic" }

// IncrementPacked applies the delta under a FOR UPDATE row lock
func (i *PessimisticIncrementer) IncrementPacked(ctx context.Context, sessionID, orderID, productID uuid.UUID, delta int64) (*picking.PackingProgress, error) {
	// SQLite has no row locks; report the primitive unavailable so the
	// caller falls through.
	if i.db.Dialector.Name() == "sqlite" {
		return nil, picking.ErrPrimitiveUnavailable
	}

	var progress *picking.PackingProgress
	err := i.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model models.PackingProgressModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("session_id = ? AND order_id = ? AND product_id = ?", sessionID, orderID, productID).
			First(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if err := checkPackPreconditions(tx, sessionID, orderID, "SHARE"); err != nil {
			return err
		}

		current := model.ToDomain()
		if err := current.CheckIncrement(delta); err != nil {
			return err
		}

		now := time.Now()
		if err := tx.Model(&models.PackingProgressModel{}).
			Where("id = ?", model.ID).
			Updates(map[string]interface{}{
				"quantity_packed": gorm.Expr("quantity_packed + ?", delta),
				"updated_at":      now,
			}).Error; err != nil {
			return err
		}
		if err := touchSession(tx, sessionID, now); err != nil {
			return err
		}

		current.QuantityPacked += delta
		current.UpdatedAt = now
		progress = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return progress, nil
}

// OptimisticIncrementer is the compare-and-swap tier: read without locks,
// validate, then write conditioned on the version read with the session and
// order status gates folded into the swap's WHERE clause. The database
// evaluates gates and write as one atomic step, so a transition committing
// after the read can only void the swap, never let an increment through.
// A voided swap retries from a fresh read, up to maxRetries attempts.
type OptimisticIncrementer struct {
	db         *gorm.DB
	maxRetries int
}

// NewOptimisticIncrementer creates the compare-and-swap tier
func NewOptimisticIncrementer(db *gorm.DB, maxRetries int) *OptimisticIncrementer {
	if maxRetries < 1 {
		maxRetries = 10
	}
	return &OptimisticIncrementer{db: db, maxRetries: maxRetries}
}

// Name identifies the tier in logs and metrics
func (i *OptimisticIncrementer) Name() string { return "optimistic" }

// IncrementPacked applies the delta with a bounded retry loop. Bounds and
// preconditions are re-validated on every attempt against the freshly read
// row; only version conflicts retry, violations are final.
func (i *OptimisticIncrementer) IncrementPacked(ctx context.Context, sessionID, orderID, productID uuid.UUID, delta int64) (*picking.PackingProgress, error) {
	for attempt := 0; attempt < i.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var model models.PackingProgressModel
		if err := i.db.WithContext(ctx).
			Where("session_id = ? AND order_id = ? AND product_id = ?", sessionID, orderID, productID).
			First(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, shared.ErrNotFound
			}
			return nil, err
		}

		// Unlocked pre-check for a precise early error. The swap below
		// re-evaluates both gates atomically; this read never decides
		// whether the write happens.
		if err := checkPackPreconditions(i.db.WithContext(ctx), sessionID, orderID, ""); err != nil {
			return nil, err
		}

		current := model.ToDomain()
		if err := current.CheckIncrement(delta); err != nil {
			return nil, err
		}

		now := time.Now()
		var swapped bool
		err := i.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			result := tx.Model(&models.PackingProgressModel{}).
				Where("id = ? AND version = ?", model.ID, model.Version).
				Where("EXISTS (SELECT 1 FROM picking_sessions WHERE picking_sessions.id = ? AND picking_sessions.status = ?)",
					sessionID, picking.SessionStatusPacking).
				Where("NOT EXISTS (SELECT 1 FROM orders WHERE orders.id = ? AND orders.status IN ?)",
					orderID, stockCommittedStatuses).
				Updates(map[string]interface{}{
					"quantity_packed": model.QuantityPacked + delta,
					"version":         model.Version + 1,
					"updated_at":      now,
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return nil
			}
			swapped = true
			return touchSession(tx, sessionID, now)
		})
		if err != nil {
			return nil, err
		}
		if !swapped {
			// Version conflict or a gate flipped mid-flight. The next
			// attempt's fresh read reports a flipped gate as its final
			// error.
			continue
		}

		current.QuantityPacked += delta
		current.Version = model.Version + 1
		current.UpdatedAt = now
		return current, nil
	}

	return nil, shared.ErrTooManyConflicts
}

// checkPackPreconditions validates the session and order status gates. With
// a non-empty lock strength the rows are read under that lock, so the gates
// hold until the surrounding transaction commits; with an empty strength the
// result is advisory and only classifies errors.
func checkPackPreconditions(tx *gorm.DB, sessionID, orderID uuid.UUID, lockStrength string) error {
	sessionQuery := tx
	orderQuery := tx
	if lockStrength != "" {
		sessionQuery = tx.Clauses(clause.Locking{Strength: lockStrength})
		orderQuery = tx.Clauses(clause.Locking{Strength: lockStrength})
	}

	var session models.SessionModel
	if err := sessionQuery.First(&session, "id = ?", sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.ErrNotFound
		}
		return err
	}
	if session.Status != picking.SessionStatusPacking {
		return picking.ErrSessionNotPacking
	}

	var order models.OrderModel
	if err := orderQuery.First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.ErrNotFound
		}
		return err
	}
	if order.Status.IsStockCommitted() {
		return picking.ErrOrderStockCommitted
	}
	return nil
}

// classifyPackFailure turns a zero-row conditional update into a precise
// error. The re-reads are not atomic with the attempt; they decide what to
// report, never whether state changed.
func classifyPackFailure(tx *gorm.DB, sessionID, orderID, productID uuid.UUID, delta int64) error {
	if err := checkPackPreconditions(tx, sessionID, orderID, ""); err != nil {
		return err
	}

	var model models.PackingProgressModel
	if err := tx.Where("session_id = ? AND order_id = ? AND product_id = ?", sessionID, orderID, productID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.ErrNotFound
		}
		return err
	}
	if model.QuantityPacked+delta > model.QuantityNeeded {
		return picking.ErrOverPack
	}
	if model.QuantityPacked+delta < 0 {
		return picking.ErrUnderPack
	}
	// The predicate held on re-read: another increment raced the attempt.
	return shared.ErrConcurrentModification
}

// touchSession bumps the session's staleness detector inside the caller's
// transaction.
func touchSession(tx *gorm.DB, sessionID uuid.UUID, at time.Time) error {
	return tx.Model(&models.SessionModel{}).
		Where("id = ?", sessionID).
		Updates(map[string]interface{}{
			"last_activity_at": at,
			"updated_at":       at,
		}).Error
}

// BuildIncrementers assembles the tier slice from configured tier names, in
// fallback order.
func BuildIncrementers(db *gorm.DB, tiers []string, casMaxRetries int) []picking.ProgressIncrementer {
	out := make([]picking.ProgressIncrementer, 0, len(tiers))
	for _, tier := range tiers {
		switch tier {
		case "conditional":
			out = append(out, NewConditionalIncrementer(db))
		case "pessimistic":
			out = append(out, NewPessimisticIncrementer(db))
		case "optimistic":
			out = append(out, NewOptimisticIncrementer(db, casMaxRetries))
		}
	}
	return out
}

// Ensure the tiers implement ProgressIncrementer
var (
	_ picking.ProgressIncrementer = (*ConditionalIncrementer)(nil)
	_ picking.ProgressIncrementer = (*PessimisticIncrementer)(nil)
	_ picking.ProgressIncrementer = (*OptimisticIncrementer)(nil)
)
