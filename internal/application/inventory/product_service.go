package inventory

import (
	"context"
	"errors"

	"github.com/fulfil/backend/internal/domain/inventory"
	"github.com/fulfil/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ProductService handles product registration and manual stock corrections.
// Order-driven stock changes never pass through here; those belong to the
// order transition path.
type ProductService struct {
	scope       TransactionScope
	productRepo inventory.ProductRepository
	mutator     *inventory.StockMutator
}

// NewProductService creates a new ProductService
func NewProductService(scope TransactionScope, productRepo inventory.ProductRepository) *ProductService {
	return &ProductService{
		scope:       scope,
		productRepo: productRepo,
		mutator:     inventory.NewStockMutator(),
	}
}

// Create registers a product. A non-zero initial stock is loaded through an
// adjustment movement so the ledger accounts for every unit from day one.
func (s *ProductService) Create(ctx context.Context, storeID, actorID uuid.UUID, req CreateProductRequest) (*ProductResponse, error) {
	existing, err := s.productRepo.FindByCode(ctx, storeID, req.Code)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.ErrAlreadyExists
	}

	product, err := inventory.NewProduct(storeID, req.Name, req.Code)
	if err != nil {
		return nil, err
	}
	product.SetCreatedBy(actorID)

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.ProductRepo().Save(ctx, product); err != nil {
			return err
		}
		if req.InitialStock.IsZero() {
			return nil
		}
		movement, err := s.mutator.Apply(ctx, repos, storeID, product.ID, req.InitialStock, inventory.MovementKindAdjustment, uuid.Nil, actorID)
		if err != nil {
			return err
		}
		product.Stock = product.Stock.Add(movement.Delta)
		return nil
	})
	if err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, storeID, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByIDForStore(ctx, storeID, productID)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// List retrieves products with filtering and pagination
func (s *ProductService) List(ctx context.Context, storeID uuid.UUID, filter ProductListFilter) ([]ProductResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	repoFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Search:   filter.Search,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Filters:  make(map[string]interface{}),
	}

	products, err := s.productRepo.FindAllForStore(ctx, storeID, repoFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.productRepo.CountForStore(ctx, storeID, repoFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	return responses, total, nil
}

// AdjustStock applies a manual correction: one adjustment movement plus the
// cached-stock update, in one transaction.
func (s *ProductService) AdjustStock(ctx context.Context, storeID, productID, actorID uuid.UUID, req AdjustStockRequest) (*ProductResponse, error) {
	var response *ProductResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		product, err := repos.ProductRepo().FindByIDForStore(ctx, storeID, productID)
		if err != nil {
			return err
		}
		if _, err := s.mutator.Apply(ctx, repos, storeID, productID, req.Delta, inventory.MovementKindAdjustment, uuid.Nil, actorID); err != nil {
			return err
		}
		product.Stock = product.Stock.Add(req.Delta)
		r := ToProductResponse(product)
		response = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}
