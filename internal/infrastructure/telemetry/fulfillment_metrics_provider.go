// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormFulfillmentMetricsProvider implements FulfillmentMetricsProvider with
// direct SQL against the products, inventory_movements and picking_sessions
// tables.
type GormFulfillmentMetricsProvider struct {
	db *gorm.DB
}

// NewGormFulfillmentMetricsProvider creates a new GormFulfillmentMetricsProvider.
func NewGormFulfillmentMetricsProvider(db *gorm.DB) *GormFulfillmentMetricsProvider {
	return &GormFulfillmentMetricsProvider{db: db}
}

// GetStockDriftCount returns the number of products whose cached stock
// disagrees with the ledger sum for a store. Products with no movements
// compare against zero.
func (p *GormFulfillmentMetricsProvider) GetStockDriftCount(ctx context.Context, storeID uuid.UUID) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("products").
		Where("products.store_id = ?", storeID).
		Where(`products.stock <> COALESCE((
			SELECT SUM(m.delta) FROM inventory_movements m
			WHERE m.product_id = products.id
		), 0)`).
		Count(&count).Error

	return count, err
}

// GetNegativeStockCount returns the number of products with stock below zero for a store.
func (p *GormFulfillmentMetricsProvider) GetNegativeStockCount(ctx context.Context, storeID uuid.UUID) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("products").
		Where("store_id = ? AND stock < 0", storeID).
		Count(&count).Error

	return count, err
}

// GetStaleSessionCount returns the number of active sessions idle longer than the window for a store.
func (p *GormFulfillmentMetricsProvider) GetStaleSessionCount(ctx context.Context, storeID uuid.UUID, window time.Duration) (int64, error) {
	cutoff := time.Now().Add(-window)

	var count int64
	err := p.db.WithContext(ctx).
		Table("picking_sessions").
		Where("store_id = ?", storeID).
		Where("status IN ?", []string{"picking", "packing"}).
		Where("last_activity_at < ?", cutoff).
		Count(&count).Error

	return count, err
}

// GormStoreProvider implements StoreProvider using GORM.
type GormStoreProvider struct {
	db *gorm.DB
}

// NewGormStoreProvider creates a new GormStoreProvider.
func NewGormStoreProvider(db *gorm.DB) *GormStoreProvider {
	return &GormStoreProvider{db: db}
}

// GetActiveStoreIDs returns the distinct store IDs that own products.
func (p *GormStoreProvider) GetActiveStoreIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := p.db.WithContext(ctx).
		Table("products").
		Distinct("store_id").
		Find(&ids).Error

	return ids, err
}
