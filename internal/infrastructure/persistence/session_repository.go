package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/fulfil/backend/internal/domain/picking"
	"github.com/fulfil/backend/internal/domain/shared"
	"github.com/fulfil/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSessionRepository implements picking.SessionRepository using GORM
type GormSessionRepository struct {
	db *gorm.DB
}

// NewGormSessionRepository creates a new GormSessionRepository
func NewGormSessionRepository(db *gorm.DB) *GormSessionRepository {
	return &GormSessionRepository{db: db}
}

// FindByID finds a session by ID
func (r *GormSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*picking.Session, error) {
	var model models.SessionModel
	if err := r.db.WithContext(ctx).
		Preload("Orders").
		Preload("Items").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForStore finds a session by ID within a store, with its member
// orders and aggregated items loaded.
func (r *GormSessionRepository) FindByIDForStore(ctx context.Context, storeID, id uuid.UUID) (*picking.Session, error) {
	var model models.SessionModel
	if err := r.db.WithContext(ctx).
		Preload("Orders").
		Preload("Items").
		Where("store_id = ? AND id = ?", storeID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCode finds a session by its human-readable code within a store
func (r *GormSessionRepository) FindByCode(ctx context.Context, storeID uuid.UUID, code string) (*picking.Session, error) {
	var model models.SessionModel
	if err := r.db.WithContext(ctx).
		Preload("Orders").
		Preload("Items").
		Where("store_id = ? AND code = ?", storeID, code).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForStore finds sessions for a store with filtering
func (r *GormSessionRepository) FindAllForStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]picking.Session, error) {
	var rows []models.SessionModel
	query := r.db.WithContext(ctx).
		Model(&models.SessionModel{}).
		Preload("Orders").
		Preload("Items").
		Where("store_id = ?", storeID)

	if filter.Search != "" {
		query = query.Where("code ILIKE ?", "%"+filter.Search+"%")
	}
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	field := ValidateSortField(filter.OrderBy, SessionSortFields, "created_at")
	query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	sessions := make([]picking.Session, len(rows))
	for i := range rows {
		sessions[i] = *rows[i].ToDomain()
	}
	return sessions, nil
}

// FindActiveMemberships returns, for each given order that belongs to an
// active session, the session it belongs to.
func (r *GormSessionRepository) FindActiveMemberships(ctx context.Context, storeID uuid.UUID, orderIDs []uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	if len(orderIDs) == 0 {
		return map[uuid.UUID]uuid.UUID{}, nil
	}

	type row struct {
		OrderID   uuid.UUID
		SessionID uuid.UUID
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&models.SessionOrderModel{}).
		Select("picking_session_orders.order_id, picking_session_orders.session_id").
		Joins("JOIN picking_sessions ON picking_sessions.id = picking_session_orders.session_id").
		Where("picking_sessions.store_id = ?", storeID).
		Where("picking_session_orders.order_id IN ?", orderIDs).
		Where("picking_session_orders.active = ?", true).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	memberships := make(map[uuid.UUID]uuid.UUID, len(rows))
	for _, r := range rows {
		memberships[r.OrderID] = r.SessionID
	}
	return memberships, nil
}

// FindStale lists active sessions whose last activity is older than the window
func (r *GormSessionRepository) FindStale(ctx context.Context, storeID uuid.UUID, window time.Duration) ([]picking.Session, error) {
	cutoff := time.Now().Add(-window)
	var rows []models.SessionModel
	if err := r.db.WithContext(ctx).
		Preload("Orders").
		Preload("Items").
		Where("store_id = ? AND status IN ? AND last_activity_at < ?",
			storeID, []string{string(picking.SessionStatusPicking), string(picking.SessionStatusPacking)}, cutoff).
		Order("last_activity_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	sessions := make([]picking.Session, len(rows))
	for i := range rows {
		sessions[i] = *rows[i].ToDomain()
	}
	return sessions, nil
}

// Save creates or updates a session with its member orders and items
func (r *GormSessionRepository) Save(ctx context.Context, session *picking.Session) error {
	model := models.SessionModelFromDomain(session)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := model.Orders
		items := model.Items
		model.Orders = nil
		model.Items = nil
		if err := tx.Save(model).Error; err != nil {
			return err
		}
		for i := range orders {
			orders[i].SessionID = model.ID
			orders[i].Active = session.Status.IsActive()
			if err := tx.Save(&orders[i]).Error; err != nil {
				return err
			}
		}
		for i := range items {
			items[i].SessionID = model.ID
			if err := tx.Save(&items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveWithLock saves the session row with optimistic locking on its version.
// Leaving an active status also deactivates the membership rows so the member
// orders become eligible for a new session atomically with the status change.
func (r *GormSessionRepository) SaveWithLock(ctx context.Context, session *picking.Session) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		loadedVersion := session.Version
		session.Version++
		session.UpdatedAt = time.Now()
		model := models.SessionModelFromDomain(session)

		result := tx.Model(&models.SessionModel{}).
			Where("id = ? AND version = ?", model.ID, loadedVersion).
			Updates(map[string]interface{}{
				"status":           model.Status,
				"last_activity_at": model.LastActivityAt,
				"completed_at":     model.CompletedAt,
				"abandoned_at":     model.AbandonedAt,
				"version":          model.Version,
				"updated_at":       model.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			session.Version = loadedVersion
			return shared.ErrConcurrentModification
		}

		if !session.Status.IsActive() {
			if err := tx.Model(&models.SessionOrderModel{}).
				Where("session_id = ?", model.ID).
				Update("active", false).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// TouchActivity bumps last_activity_at without rewriting the aggregate
func (r *GormSessionRepository) TouchActivity(ctx context.Context, sessionID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.SessionModel{}).
		Where("id = ?", sessionID).
		Updates(map[string]interface{}{
			"last_activity_at": at,
			"updated_at":       at,
		}).Error
}

// IncrementPicked applies a bounded atomic increment to a session item's
// picked count. The bounds and the session-status precondition are evaluated
// server-side in one conditional update; a zero-row result is classified by
// re-reading the row and the session.
func (r *GormSessionRepository) IncrementPicked(ctx context.Context, sessionID, productID uuid.UUID, delta int64) (*picking.SessionItem, error) {
	var item *picking.SessionItem
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		result := tx.Model(&models.SessionItemModel{}).
			Where("session_id = ? AND product_id = ?", sessionID, productID).
			Where("quantity_picked + ? >= 0", delta).
			Where("quantity_picked + ? <= total_quantity_needed", delta).
			Where("EXISTS (SELECT 1 FROM picking_sessions WHERE picking_sessions.id = picking_session_items.session_id AND picking_sessions.status = ?)",
				picking.SessionStatusPicking).
			Updates(map[string]interface{}{
				"quantity_picked": gorm.Expr("quantity_picked + ?", delta),
				"updated_at":      now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return r.classifyPickFailure(tx, sessionID, productID, delta)
		}

		if err := tx.Model(&models.SessionModel{}).
			Where("id = ?", sessionID).
			Updates(map[string]interface{}{
				"last_activity_at": now,
				"updated_at":       now,
			}).Error; err != nil {
			return err
		}

		var model models.SessionItemModel
		if err := tx.Where("session_id = ? AND product_id = ?", sessionID, productID).
			First(&model).Error; err != nil {
			return err
		}
		item = model.ToDomain()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// classifyPickFailure turns a zero-row conditional update into a precise
// error. The re-reads here are not atomic with the attempt; they only decide
// which error to report, never whether state changed.
func (r *GormSessionRepository) classifyPickFailure(tx *gorm.DB, sessionID, productID uuid.UUID, delta int64) error {
	var session models.SessionModel
	if err := tx.First(&session, "id = ?", sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.ErrNotFound
		}
		return err
	}
	if session.Status != picking.SessionStatusPicking {
		return picking.ErrSessionNotPicking
	}

	var item models.SessionItemModel
	if err := tx.Where("session_id = ? AND product_id = ?", sessionID, productID).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.ErrNotFound
		}
		return err
	}
	if item.QuantityPicked+delta > item.TotalQuantityNeeded {
		return picking.ErrOverPack
	}
	if item.QuantityPicked+delta < 0 {
		return picking.ErrUnderPack
	}
	// The predicate held on re-read: another increment raced the attempt.
	return shared.ErrConcurrentModification
}

// Ensure GormSessionRepository implements SessionRepository
var _ picking.SessionRepository = (*GormSessionRepository)(nil)
