package persistence

import (
	"context"
	"errors"

	"github.com/fulfil/backend/internal/domain/picking"
	"github.com/fulfil/backend/internal/domain/shared"
	"github.com/fulfil/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProgressRepository implements picking.ProgressRepository using GORM
type GormProgressRepository struct {
	db *gorm.DB
}

// NewGormProgressRepository creates a new GormProgressRepository
func NewGormProgressRepository(db *gorm.DB) *GormProgressRepository {
	return &GormProgressRepository{db: db}
}

// FindBySession lists all counters under a session
func (r *GormProgressRepository) FindBySession(ctx context.Context, sessionID uuid.UUID) ([]picking.PackingProgress, error) {
	var rows []models.PackingProgressModel
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	progress := make([]picking.PackingProgress, len(rows))
	for i := range rows {
		progress[i] = *rows[i].ToDomain()
	}
	return progress, nil
}

// FindByTriple finds the counter for a (session, order, product) triple
func (r *GormProgressRepository) FindByTriple(ctx context.Context, sessionID, orderID, productID uuid.UUID) (*picking.PackingProgress, error) {
	var model models.PackingProgressModel
	if err := r.db.WithContext(ctx).
		Where("session_id = ? AND order_id = ? AND product_id = ?", sessionID, orderID, productID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// SaveAll inserts the counters computed at session creation
func (r *GormProgressRepository) SaveAll(ctx context.Context, rows []picking.PackingProgress) error {
	if len(rows) == 0 {
		return nil
	}
	modelRows := make([]models.PackingProgressModel, len(rows))
	for i := range rows {
		modelRows[i] = *models.PackingProgressModelFromDomain(&rows[i])
	}
	return r.db.WithContext(ctx).Create(&modelRows).Error
}

// Shortfalls returns the (order, product) pairs not yet fully packed
func (r *GormProgressRepository) Shortfalls(ctx context.Context, sessionID uuid.UUID) ([]picking.ShortPair, error) {
	type row struct {
		OrderID   uuid.UUID
		ProductID uuid.UUID
		Shortfall int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&models.PackingProgressModel{}).
		Select("order_id, product_id, quantity_needed - quantity_packed AS shortfall").
		Where("session_id = ? AND quantity_packed < quantity_needed", sessionID).
		Order("order_id, product_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	pairs := make([]picking.ShortPair, len(rows))
	for i, r := range rows {
		pairs[i] = picking.ShortPair{OrderID: r.OrderID, ProductID: r.ProductID, Shortfall: r.Shortfall}
	}
	return pairs, nil
}

// Ensure GormProgressRepository implements ProgressRepository
var _ picking.ProgressRepository = (*GormProgressRepository)(nil)
