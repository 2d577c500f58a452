package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/fulfil/backend/internal/domain/inventory"
	"github.com/fulfil/backend/internal/domain/shared"
	"github.com/fulfil/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormProductRepository implements inventory.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForStore finds a product by ID within a store
func (r *GormProductRepository) FindByIDForStore(ctx context.Context, storeID, id uuid.UUID) (*inventory.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("store_id = ? AND id = ?", storeID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCode finds a product by code within a store
func (r *GormProductRepository) FindByCode(ctx context.Context, storeID uuid.UUID, code string) (*inventory.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("store_id = ? AND code = ?", storeID, code).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForStore finds all products for a store with filtering
func (r *GormProductRepository) FindAllForStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]inventory.Product, error) {
	var rows []models.ProductModel
	query := r.db.WithContext(ctx).Model(&models.ProductModel{}).Where("store_id = ?", storeID)

	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR code ILIKE ?", searchPattern, searchPattern)
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	field := ValidateSortField(filter.OrderBy, ProductSortFields, "created_at")
	query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	products := make([]inventory.Product, len(rows))
	for i := range rows {
		products[i] = *rows[i].ToDomain()
	}
	return products, nil
}

// FindWithNegativeStock finds products whose cached stock has gone negative
func (r *GormProductRepository) FindWithNegativeStock(ctx context.Context, storeID uuid.UUID) ([]inventory.Product, error) {
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("store_id = ? AND stock < 0", storeID).
		Order("stock ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	products := make([]inventory.Product, len(rows))
	for i := range rows {
		products[i] = *rows[i].ToDomain()
	}
	return products, nil
}

// Save creates or updates a product. The stock column is deliberately left
// out of updates on existing rows; only AdjustStock writes it.
func (r *GormProductRepository) Save(ctx context.Context, product *inventory.Product) error {
	model := models.ProductModelFromDomain(product)

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("id = ?", model.ID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return r.db.WithContext(ctx).Create(model).Error
	}
	return r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"name":       model.Name,
			"code":       model.Code,
			"updated_at": time.Now(),
		}).Error
}

// AdjustStock applies a signed delta with a single relative update. No prior
// read is involved, so concurrent adjustments to the same product serialize
// on the row and none are lost.
func (r *GormProductRepository) AdjustStock(ctx context.Context, storeID, productID uuid.UUID, delta decimal.Decimal) error {
	result := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("store_id = ? AND id = ?", storeID, productID).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock + ?", delta),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountForStore counts products for a store
func (r *GormProductRepository) CountForStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.ProductModel{}).Where("store_id = ?", storeID)
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR code ILIKE ?", searchPattern, searchPattern)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormProductRepository implements ProductRepository
var _ inventory.ProductRepository = (*GormProductRepository)(nil)
