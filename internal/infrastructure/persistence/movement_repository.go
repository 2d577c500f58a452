package persistence

import (
	"context"

	"github.com/fulfil/backend/internal/domain/inventory"
	"github.com/fulfil/backend/internal/domain/shared"
	"github.com/fulfil/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormInventoryMovementRepository implements the append-only ledger using GORM.
// Inserts only: there is no update or delete method on purpose.
type GormInventoryMovementRepository struct {
	db *gorm.DB
}

// NewGormInventoryMovementRepository creates a new GormInventoryMovementRepository
func NewGormInventoryMovementRepository(db *gorm.DB) *GormInventoryMovementRepository {
	return &GormInventoryMovementRepository{db: db}
}

// Append writes one immutable ledger entry
func (r *GormInventoryMovementRepository) Append(ctx context.Context, movement *inventory.InventoryMovement) error {
	model := models.InventoryMovementModelFromDomain(movement)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByProduct lists ledger entries for a product, newest first
func (r *GormInventoryMovementRepository) FindByProduct(ctx context.Context, storeID, productID uuid.UUID, filter shared.Filter) ([]inventory.InventoryMovement, error) {
	var rows []models.InventoryMovementModel
	query := r.db.WithContext(ctx).
		Model(&models.InventoryMovementModel{}).
		Where("store_id = ? AND product_id = ?", storeID, productID)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	field := ValidateSortField(filter.OrderBy, MovementSortFields, "created_at")
	query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	movements := make([]inventory.InventoryMovement, len(rows))
	for i := range rows {
		movements[i] = *rows[i].ToDomain()
	}
	return movements, nil
}

// FindByOrder lists ledger entries caused by an order
func (r *GormInventoryMovementRepository) FindByOrder(ctx context.Context, storeID, orderID uuid.UUID) ([]inventory.InventoryMovement, error) {
	var rows []models.InventoryMovementModel
	if err := r.db.WithContext(ctx).
		Where("store_id = ? AND order_id = ?", storeID, orderID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	movements := make([]inventory.InventoryMovement, len(rows))
	for i := range rows {
		movements[i] = *rows[i].ToDomain()
	}
	return movements, nil
}

// SumByProduct returns the signed sum of all deltas for a product
func (r *GormInventoryMovementRepository) SumByProduct(ctx context.Context, storeID, productID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	if err := r.db.WithContext(ctx).
		Model(&models.InventoryMovementModel{}).
		Select("SUM(delta)").
		Where("store_id = ? AND product_id = ?", storeID, productID).
		Scan(&sum).Error; err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

// LedgerSums returns the per-product signed delta sums for a store
func (r *GormInventoryMovementRepository) LedgerSums(ctx context.Context, storeID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	type row struct {
		ProductID uuid.UUID
		Total     decimal.Decimal
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&models.InventoryMovementModel{}).
		Select("product_id, SUM(delta) AS total").
		Where("store_id = ?", storeID).
		Group("product_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	sums := make(map[uuid.UUID]decimal.Decimal, len(rows))
	for _, r := range rows {
		sums[r.ProductID] = r.Total
	}
	return sums, nil
}

// CountByOrderAndKind counts ledger entries for an (order, product, kind) triple
func (r *GormInventoryMovementRepository) CountByOrderAndKind(ctx context.Context, storeID, orderID, productID uuid.UUID, kind inventory.MovementKind) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.InventoryMovementModel{}).
		Where("store_id = ? AND order_id = ? AND product_id = ? AND kind = ?", storeID, orderID, productID, kind).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormInventoryMovementRepository implements InventoryMovementRepository
var _ inventory.InventoryMovementRepository = (*GormInventoryMovementRepository)(nil)
