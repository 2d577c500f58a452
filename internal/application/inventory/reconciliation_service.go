package inventory

import (
	"context"
	"time"

	"github.com/fulfil/backend/internal/domain/inventory"
	"github.com/fulfil/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReconciliationService compares every product's cached stock against the
// sum of its ledger deltas and reports the rows that disagree. Read-only:
// repair is a deliberate operator action through a manual adjustment, never
// automatic.
type ReconciliationService struct {
	productRepo  inventory.ProductRepository
	movementRepo inventory.InventoryMovementRepository
	logger       *zap.Logger
}

// NewReconciliationService creates a new ReconciliationService
func NewReconciliationService(productRepo inventory.ProductRepository, movementRepo inventory.InventoryMovementRepository, logger *zap.Logger) *ReconciliationService {
	return &ReconciliationService{
		productRepo:  productRepo,
		movementRepo: movementRepo,
		logger:       logger,
	}
}

// Report builds the drift report for a store
func (s *ReconciliationService) Report(ctx context.Context, storeID uuid.UUID) (*ReconciliationReport, error) {
	sums, err := s.movementRepo.LedgerSums(ctx, storeID)
	if err != nil {
		return nil, err
	}

	// Page through the full catalog; products with no ledger entries still
	// participate with an implicit zero sum.
	filter := shared.Filter{Page: 1, PageSize: 500, OrderBy: "created_at", OrderDir: "asc"}
	checkedAt := time.Now()
	report := &ReconciliationReport{
		StoreID:   storeID,
		CheckedAt: checkedAt,
		DriftRows: make([]inventory.DriftRow, 0),
	}

	for {
		products, err := s.productRepo.FindAllForStore(ctx, storeID, filter)
		if err != nil {
			return nil, err
		}
		if len(products) == 0 {
			break
		}
		report.ProductsTotal += len(products)

		for i := range products {
			product := &products[i]
			ledgerSum, ok := sums[product.ID]
			if !ok {
				ledgerSum = decimal.Zero
			}
			if !product.Stock.Equal(ledgerSum) {
				report.DriftRows = append(report.DriftRows, inventory.DriftRow{
					ProductID:   product.ID,
					ProductCode: product.Code,
					CachedStock: product.Stock,
					LedgerSum:   ledgerSum,
					Drift:       product.Stock.Sub(ledgerSum),
					CheckedAt:   checkedAt,
				})
			}
		}

		if len(products) < filter.PageSize {
			break
		}
		filter.Page++
	}

	negatives, err := s.productRepo.FindWithNegativeStock(ctx, storeID)
	if err != nil {
		return nil, err
	}
	report.NegativeStock = make([]ProductResponse, len(negatives))
	for i := range negatives {
		report.NegativeStock[i] = ToProductResponse(&negatives[i])
	}

	if len(report.DriftRows) > 0 || len(report.NegativeStock) > 0 {
		s.logger.Warn("stock reconciliation found anomalies",
			zap.String("store_id", storeID.String()),
			zap.Int("drift_rows", len(report.DriftRows)),
			zap.Int("negative_stock", len(report.NegativeStock)))
	}

	return report, nil
}

// Sweep runs a reconciliation pass for one store, discarding the report.
// Anomalies are logged by Report; the periodic sweeper only needs the error.
func (s *ReconciliationService) Sweep(ctx context.Context, storeID uuid.UUID) error {
	_, err := s.Report(ctx, storeID)
	return err
}

// Movements lists the ledger for one product, newest first
func (s *ReconciliationService) Movements(ctx context.Context, storeID, productID uuid.UUID, page, pageSize int) ([]MovementResponse, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 50
	}

	rows, err := s.movementRepo.FindByProduct(ctx, storeID, productID, shared.Filter{
		Page:     page,
		PageSize: pageSize,
		OrderBy:  "created_at",
		OrderDir: "desc",
	})
	if err != nil {
		return nil, err
	}

	responses := make([]MovementResponse, len(rows))
	for i := range rows {
		responses[i] = ToMovementResponse(&rows[i])
	}
	return responses, nil
}
