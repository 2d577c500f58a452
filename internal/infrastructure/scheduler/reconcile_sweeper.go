// Package scheduler provides background job scheduling for periodic
// maintenance work.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StoreLister supplies the store IDs a sweep iterates
type StoreLister interface {
	GetActiveStoreIDs(ctx context.Context) ([]uuid.UUID, error)
}

// SweepExecutor runs one reconciliation pass for a store
type SweepExecutor interface {
	Sweep(ctx context.Context, storeID uuid.UUID) error
}

// ReconcileSweeperConfig holds sweeper configuration
type ReconcileSweeperConfig struct {
	Enabled  bool
	Interval time.Duration
}

// DefaultReconcileSweeperConfig returns default sweeper configuration
func DefaultReconcileSweeperConfig() ReconcileSweeperConfig {
	return ReconcileSweeperConfig{
		Enabled:  true,
		Interval: 15 * time.Minute,
	}
}

// ReconcileSweeper periodically runs a stock reconciliation pass over every
// active store. The sweep is read-only; it surfaces drift through logs and
// gauges, it never repairs stock.
type ReconcileSweeper struct {
	config   ReconcileSweeperConfig
	stores   StoreLister
	executor SweepExecutor
	logger   *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewReconcileSweeper creates a new sweeper instance
func NewReconcileSweeper(config ReconcileSweeperConfig, stores StoreLister, executor SweepExecutor, logger *zap.Logger) *ReconcileSweeper {
	if config.Interval <= 0 {
		config.Interval = DefaultReconcileSweeperConfig().Interval
	}
	return &ReconcileSweeper{
		config:   config,
		stores:   stores,
		executor: executor,
		logger:   logger,
	}
}

// Start starts the periodic sweep loop
func (s *ReconcileSweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.run(ctx)

	s.logger.Info("Reconciliation sweeper started",
		zap.Duration("interval", s.config.Interval),
	)
	return nil
}

// Stop gracefully stops the sweeper
func (s *ReconcileSweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Reconciliation sweeper stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Reconciliation sweeper stop timed out")
		return ctx.Err()
	}
}

func (s *ReconcileSweeper) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepAll(ctx)
		}
	}
}

// sweepAll runs one pass over every active store. A failing store does not
// abort the pass for the rest.
func (s *ReconcileSweeper) sweepAll(ctx context.Context) {
	start := time.Now()

	storeIDs, err := s.stores.GetActiveStoreIDs(ctx)
	if err != nil {
		s.logger.Error("Failed to list stores for reconciliation sweep", zap.Error(err))
		return
	}

	var failed int
	for _, storeID := range storeIDs {
		if ctx.Err() != nil {
			return
		}
		if err := s.executor.Sweep(ctx, storeID); err != nil {
			failed++
			s.logger.Error("Reconciliation sweep failed for store",
				zap.String("store_id", storeID.String()),
				zap.Error(err),
			)
		}
	}

	s.logger.Debug("Reconciliation sweep completed",
		zap.Int("stores", len(storeIDs)),
		zap.Int("failed", failed),
		zap.Duration("elapsed", time.Since(start)),
	)
}
