// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// FulfillmentMetrics tracks order flow, packing concurrency and inventory
// health. Counter methods are called from the application layer; gauges are
// refreshed by the periodic collector.
type FulfillmentMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	orderTransitionTotal *Counter
	sessionCreatedTotal  *Counter
	packIncrementTotal   *Counter
	packConflictTotal    *Counter
	tierFallbackTotal    *Counter

	// Gauge metrics (point-in-time values)
	stockDriftCount    *Gauge
	negativeStockCount *Gauge
	staleSessionCount  *Gauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	provider FulfillmentMetricsProvider
}

// FulfillmentMetricsProvider supplies inventory health data for periodic
// gauge collection. The interface keeps the telemetry layer off the domain
// repositories.
type FulfillmentMetricsProvider interface {
	// GetStockDriftCount returns the number of products whose cached stock
	// disagrees with the ledger sum for a store
	GetStockDriftCount(ctx context.Context, storeID uuid.UUID) (int64, error)

	// GetNegativeStockCount returns the number of products with stock below zero for a store
	GetNegativeStockCount(ctx context.Context, storeID uuid.UUID) (int64, error)

	// GetStaleSessionCount returns the number of active sessions idle longer than the window for a store
	GetStaleSessionCount(ctx context.Context, storeID uuid.UUID, window time.Duration) (int64, error)
}

// StoreProvider supplies the store IDs the periodic collector iterates.
type StoreProvider interface {
	GetActiveStoreIDs(ctx context.Context) ([]uuid.UUID, error)
}

// FulfillmentMetricsConfig holds configuration for fulfillment metrics.
type FulfillmentMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	CollectInterval time.Duration // Default: 5 minutes
	StaleWindow     time.Duration // Default: 4 hours
	Provider        FulfillmentMetricsProvider
}

// NewFulfillmentMetrics creates a new FulfillmentMetrics instance.
func NewFulfillmentMetrics(cfg FulfillmentMetricsConfig) (*FulfillmentMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	fm := &FulfillmentMetrics{
		meter:    cfg.Meter,
		logger:   logger,
		stopChan: make(chan struct{}),
		provider: cfg.Provider,
	}

	var err error

	fm.orderTransitionTotal, err = NewCounter(
		cfg.Meter,
		"fulfil_order_transition_total",
		"Total number of order status transitions",
		"{transitions}",
	)
	if err != nil {
		return nil, err
	}

	fm.sessionCreatedTotal, err = NewCounter(
		cfg.Meter,
		"fulfil_session_created_total",
		"Total number of picking sessions created",
		"{sessions}",
	)
	if err != nil {
		return nil, err
	}

	fm.packIncrementTotal, err = NewCounter(
		cfg.Meter,
		"fulfil_pack_increment_total",
		"Total number of successful packing increments",
		"{increments}",
	)
	if err != nil {
		return nil, err
	}

	fm.packConflictTotal, err = NewCounter(
		cfg.Meter,
		"fulfil_pack_conflict_total",
		"Total number of packing increments abandoned after retry exhaustion",
		"{conflicts}",
	)
	if err != nil {
		return nil, err
	}

	fm.tierFallbackTotal, err = NewCounter(
		cfg.Meter,
		"fulfil_tier_fallback_total",
		"Total number of increment tier fallbacks",
		"{fallbacks}",
	)
	if err != nil {
		return nil, err
	}

	fm.stockDriftCount, err = NewGauge(
		cfg.Meter,
		"fulfil_stock_drift_count",
		"Number of products whose cached stock disagrees with the ledger",
		"{products}",
	)
	if err != nil {
		return nil, err
	}

	fm.negativeStockCount, err = NewGauge(
		cfg.Meter,
		"fulfil_negative_stock_count",
		"Number of products with stock below zero",
		"{products}",
	)
	if err != nil {
		return nil, err
	}

	fm.staleSessionCount, err = NewGauge(
		cfg.Meter,
		"fulfil_stale_session_count",
		"Number of active picking sessions past the staleness window",
		"{sessions}",
	)
	if err != nil {
		return nil, err
	}

	return fm, nil
}

// RecordOrderTransition records one order status transition.
func (fm *FulfillmentMetrics) RecordOrderTransition(ctx context.Context, storeID uuid.UUID, toStatus string) {
	fm.orderTransitionTotal.Inc(ctx,
		AttrStoreID.String(storeID.String()),
		AttrOrderStatus.String(toStatus),
	)
}

// RecordSessionCreated records one picking session creation.
func (fm *FulfillmentMetrics) RecordSessionCreated(ctx context.Context, storeID uuid.UUID) {
	fm.sessionCreatedTotal.Inc(ctx, AttrStoreID.String(storeID.String()))
}

// PackIncrement records a successful packing increment on the given tier.
func (fm *FulfillmentMetrics) PackIncrement(ctx context.Context, tier string) {
	fm.packIncrementTotal.Inc(ctx, AttrTier.String(tier))
}

// PackConflict records an increment abandoned after exhausting retries.
func (fm *FulfillmentMetrics) PackConflict(ctx context.Context, tier string) {
	fm.packConflictTotal.Inc(ctx, AttrTier.String(tier))
}

// TierFallback records a fall-through from an unavailable tier.
func (fm *FulfillmentMetrics) TierFallback(ctx context.Context, tier string) {
	fm.tierFallbackTotal.Inc(ctx, AttrTier.String(tier))
}

// StartPeriodicCollection starts periodic collection of gauge metrics.
// This is non-blocking; use Stop() to stop collection.
func (fm *FulfillmentMetrics) StartPeriodicCollection(ctx context.Context, stores StoreProvider, interval, staleWindow time.Duration) {
	fm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		if staleWindow <= 0 {
			staleWindow = 4 * time.Hour
		}

		go fm.runPeriodicCollection(ctx, stores, interval, staleWindow)
	})
}

func (fm *FulfillmentMetrics) runPeriodicCollection(ctx context.Context, stores StoreProvider, interval, staleWindow time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	fm.collectGauges(ctx, stores, staleWindow)

	for {
		select {
		case <-fm.stopChan:
			fm.logger.Info("Stopping periodic fulfillment metrics collection")
			return
		case <-ctx.Done():
			fm.logger.Info("Context cancelled, stopping periodic fulfillment metrics collection")
			return
		case <-ticker.C:
			fm.collectGauges(ctx, stores, staleWindow)
		}
	}
}

func (fm *FulfillmentMetrics) collectGauges(ctx context.Context, stores StoreProvider, staleWindow time.Duration) {
	if fm.provider == nil {
		fm.logger.Debug("No metrics provider configured, skipping gauge collection")
		return
	}

	storeIDs, err := stores.GetActiveStoreIDs(ctx)
	if err != nil {
		fm.logger.Error("Failed to get store IDs for metrics collection", zap.Error(err))
		return
	}

	for _, storeID := range storeIDs {
		fm.collectStoreGauges(ctx, storeID, staleWindow)
	}
}

func (fm *FulfillmentMetrics) collectStoreGauges(ctx context.Context, storeID uuid.UUID, staleWindow time.Duration) {
	attrs := AttrStoreID.String(storeID.String())

	drift, err := fm.provider.GetStockDriftCount(ctx, storeID)
	if err != nil {
		fm.logger.Warn("Failed to get stock drift count for store",
			zap.String("store_id", storeID.String()),
			zap.Error(err),
		)
	} else {
		fm.stockDriftCount.Record(ctx, drift, attrs)
	}

	negative, err := fm.provider.GetNegativeStockCount(ctx, storeID)
	if err != nil {
		fm.logger.Warn("Failed to get negative stock count for store",
			zap.String("store_id", storeID.String()),
			zap.Error(err),
		)
	} else {
		fm.negativeStockCount.Record(ctx, negative, attrs)
	}

	stale, err := fm.provider.GetStaleSessionCount(ctx, storeID, staleWindow)
	if err != nil {
		fm.logger.Warn("Failed to get stale session count for store",
			zap.String("store_id", storeID.String()),
			zap.Error(err),
		)
	} else {
		fm.staleSessionCount.Record(ctx, stale, attrs)
	}
}

// Stop stops the periodic collection.
func (fm *FulfillmentMetrics) Stop() {
	fm.stopOnce.Do(func() {
		close(fm.stopChan)
	})
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewFulfillmentMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
