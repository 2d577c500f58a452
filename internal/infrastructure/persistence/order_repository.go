package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/fulfil/backend/internal/domain/fulfillment"
	"github.com/fulfil/backend/internal/domain/shared"
	"github.com/fulfil/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOrderRepository implements fulfillment.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order by its ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*fulfillment.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForStore finds an order by ID within a store
func (r *GormOrderRepository) FindByIDForStore(ctx context.Context, storeID, id uuid.UUID) (*fulfillment.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
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

// FindByOrderNumber finds an order by its platform order number within a store
func (r *GormOrderRepository) FindByOrderNumber(ctx context.Context, storeID uuid.UUID, orderNumber string) (*fulfillment.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("store_id = ? AND order_number = ?", storeID, orderNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds multiple orders by ID within a store
func (r *GormOrderRepository) FindByIDs(ctx context.Context, storeID uuid.UUID, ids []uuid.UUID) ([]fulfillment.Order, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("store_id = ? AND id IN ?", storeID, ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	orders := make([]fulfillment.Order, len(rows))
	for i := range rows {
		orders[i] = *rows[i].ToDomain()
	}
	return orders, nil
}

// FindAllForStore finds all orders for a store with filtering
func (r *GormOrderRepository) FindAllForStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]fulfillment.Order, error) {
	var rows []models.OrderModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.OrderModel{}).Preload("Items").Where("store_id = ?", storeID),
		filter,
	)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	orders := make([]fulfillment.Order, len(rows))
	for i := range rows {
		orders[i] = *rows[i].ToDomain()
	}
	return orders, nil
}

// FindByStatus finds orders in a given lifecycle status
func (r *GormOrderRepository) FindByStatus(ctx context.Context, storeID uuid.UUID, status fulfillment.OrderStatus, filter shared.Filter) ([]fulfillment.Order, error) {
	var rows []models.OrderModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.OrderModel{}).Preload("Items").
			Where("store_id = ? AND status = ?", storeID, status),
		filter,
	)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	orders := make([]fulfillment.Order, len(rows))
	for i := range rows {
		orders[i] = *rows[i].ToDomain()
	}
	return orders, nil
}

// Save creates or updates an order together with its line items
func (r *GormOrderRepository) Save(ctx context.Context, order *fulfillment.Order) error {
	model := models.OrderModelFromDomain(order)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := model.Items
		model.Items = nil
		if err := tx.Save(model).Error; err != nil {
			return err
		}

		currentItemIDs := make([]uuid.UUID, len(items))
		for i, item := range items {
			currentItemIDs[i] = item.ID
		}
		if len(currentItemIDs) > 0 {
			if err := tx.Where("order_id = ? AND id NOT IN ?", model.ID, currentItemIDs).
				Delete(&models.OrderLineItemModel{}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Where("order_id = ?", model.ID).
				Delete(&models.OrderLineItemModel{}).Error; err != nil {
				return err
			}
		}
		for i := range items {
			items[i].OrderID = model.ID
			if err := tx.Save(&items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveWithLock saves with optimistic locking. The status row update is
// conditioned on the version the aggregate was loaded with; zero rows
// affected means another transaction won the race.
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, order *fulfillment.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		loadedVersion := order.Version
		order.Version++
		order.UpdatedAt = time.Now()
		model := models.OrderModelFromDomain(order)

		result := tx.Model(&models.OrderModel{}).
			Where("id = ? AND version = ?", model.ID, loadedVersion).
			Updates(map[string]interface{}{
				"customer_ref":     model.CustomerRef,
				"status":           model.Status,
				"carrier_id":       model.CarrierID,
				"remark":           model.Remark,
				"confirmed_at":     model.ConfirmedAt,
				"preparation_at":   model.PreparationAt,
				"ready_to_ship_at": model.ReadyToShipAt,
				"shipped_at":       model.ShippedAt,
				"delivered_at":     model.DeliveredAt,
				"cancelled_at":     model.CancelledAt,
				"rejected_at":      model.RejectedAt,
				"incident_at":      model.IncidentAt,
				"not_delivered_at": model.NotDeliveredAt,
				"returned_at":      model.ReturnedAt,
				"cancel_reason":    model.CancelReason,
				"version":          model.Version,
				"updated_at":       model.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			order.Version = loadedVersion
			return shared.ErrConcurrentModification
		}

		currentItemIDs := make([]uuid.UUID, len(model.Items))
		for i, item := range model.Items {
			currentItemIDs[i] = item.ID
		}
		if len(currentItemIDs) > 0 {
			if err := tx.Where("order_id = ? AND id NOT IN ?", model.ID, currentItemIDs).
				Delete(&models.OrderLineItemModel{}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Where("order_id = ?", model.ID).
				Delete(&models.OrderLineItemModel{}).Error; err != nil {
				return err
			}
		}
		for i := range model.Items {
			model.Items[i].OrderID = model.ID
			if err := tx.Save(&model.Items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// CountForStore counts orders for a store with optional filters
func (r *GormOrderRepository) CountForStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.OrderModel{}).Where("store_id = ?", storeID)
	query = r.applyFilterWithoutPagination(query, filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts orders in a given status
func (r *GormOrderRepository) CountByStatus(ctx context.Context, storeID uuid.UUID, status fulfillment.OrderStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("store_id = ? AND status = ?", storeID, status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByOrderNumber checks if an order number already exists for a store
func (r *GormOrderRepository) ExistsByOrderNumber(ctx context.Context, storeID uuid.UUID, orderNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("store_id = ? AND order_number = ?", storeID, orderNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies filter options to the query
func (r *GormOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	field := ValidateSortField(filter.OrderBy, OrderSortFields, "created_at")
	query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormOrderRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("order_number ILIKE ? OR customer_ref ILIKE ?",
			searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "statuses":
			if statuses, ok := value.([]string); ok && len(statuses) > 0 {
				query = query.Where("status IN ?", statuses)
			}
		case "carrier_id":
			query = query.Where("carrier_id = ?", value)
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at <= ?", t)
			}
		}
	}

	return query
}

// Ensure GormOrderRepository implements OrderRepository
var _ fulfillment.OrderRepository = (*GormOrderRepository)(nil)
