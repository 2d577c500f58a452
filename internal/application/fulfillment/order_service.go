package fulfillment

import (
	"context"

	"github.com/fulfil/backend/internal/domain/fulfillment"
	"github.com/fulfil/backend/internal/domain/inventory"
	"github.com/fulfil/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransitionRecorder receives successful order transition events. A nil
// recorder disables recording.
type TransitionRecorder interface {
	RecordOrderTransition(ctx context.Context, storeID uuid.UUID, toStatus string)
}

// OrderService drives the order lifecycle. Every status change goes through
// Transition, which runs the graph validation, the version-checked status
// write and any stock mutation inside one transaction.
type OrderService struct {
	scope       TransactionScope
	orderRepo   fulfillment.OrderRepository
	mutator     *inventory.StockMutator
	transitions TransitionRecorder
	events      shared.EventPublisher
}

// NewOrderService creates a new OrderService
func NewOrderService(scope TransactionScope, orderRepo fulfillment.OrderRepository) *OrderService {
	return &OrderService{
		scope:     scope,
		orderRepo: orderRepo,
		mutator:   inventory.NewStockMutator(),
	}
}

// SetTransitionRecorder wires an observer for successful transitions
func (s *OrderService) SetTransitionRecorder(r TransitionRecorder) {
	s.transitions = r
}

// SetEventPublisher wires the bus that receives order lifecycle events. A
// nil publisher leaves events unpublished.
func (s *OrderService) SetEventPublisher(p shared.EventPublisher) {
	s.events = p
}

// publishEvents flushes the aggregate's pending events after a successful
// write. Events go out post-commit, so a handler never sees uncommitted
// state.
func (s *OrderService) publishEvents(ctx context.Context, order *fulfillment.Order) {
	if s.events == nil {
		return
	}
	_ = s.events.Publish(ctx, order.GetDomainEvents()...)
	order.ClearDomainEvents()
}

// Create registers a new order in pending status. Called by the external
// sync layer; the order arrives already associated with a platform order
// number.
func (s *OrderService) Create(ctx context.Context, storeID, actorID uuid.UUID, req CreateOrderRequest) (*OrderResponse, error) {
	exists, err := s.orderRepo.ExistsByOrderNumber(ctx, storeID, req.OrderNumber)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.ErrAlreadyExists
	}

	order, err := fulfillment.NewOrder(storeID, req.OrderNumber, req.CustomerRef)
	if err != nil {
		return nil, err
	}
	order.SetCreatedBy(actorID)

	for _, item := range req.Items {
		if _, err := order.AddItem(item.ProductID, item.ProductName, item.ProductCode, item.Quantity); err != nil {
			return nil, err
		}
	}
	if req.Remark != "" {
		order.SetRemark(req.Remark)
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, order)

	response := ToOrderResponse(order)
	return &response, nil
}

// GetByID retrieves an order by ID
func (s *OrderService) GetByID(ctx context.Context, storeID, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByIDForStore(ctx, storeID, orderID)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(order)
	return &response, nil
}

// List retrieves orders with filtering and pagination
func (s *OrderService) List(ctx context.Context, storeID uuid.UUID, filter OrderListFilter) ([]OrderResponse, int64, error) {
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

	var (
		orders []fulfillment.Order
		err    error
	)
	if filter.Status != nil {
		orders, err = s.orderRepo.FindByStatus(ctx, storeID, *filter.Status, repoFilter)
	} else {
		orders, err = s.orderRepo.FindAllForStore(ctx, storeID, repoFilter)
	}
	if err != nil {
		return nil, 0, err
	}

	countFilter := repoFilter
	if filter.Status != nil {
		countFilter.Filters["status"] = filter.Status.String()
	}
	total, err := s.orderRepo.CountForStore(ctx, storeID, countFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]OrderResponse, len(orders))
	for i := range orders {
		responses[i] = ToOrderResponse(&orders[i])
	}
	return responses, total, nil
}

// ListReadyToShip exposes the read-only queue the carrier module consumes
func (s *OrderService) ListReadyToShip(ctx context.Context, storeID uuid.UUID, page, pageSize int) ([]OrderResponse, int64, error) {
	status := fulfillment.OrderStatusReadyToShip
	return s.List(ctx, storeID, OrderListFilter{Status: &status, Page: page, PageSize: pageSize})
}

// Patch applies an order-updated event: carrier assignment, remark and
// line-item edits. Item edits fail with OrderLocked once any item has been
// stock-deducted.
func (s *OrderService) Patch(ctx context.Context, storeID, orderID uuid.UUID, req PatchOrderRequest) (*OrderResponse, error) {
	var response *OrderResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.OrderRepo().FindByIDForStore(ctx, storeID, orderID)
		if err != nil {
			return err
		}

		if req.CarrierID != nil {
			if err := order.AssignCarrier(*req.CarrierID); err != nil {
				return err
			}
		}
		if req.Remark != nil {
			order.SetRemark(*req.Remark)
		}
		for _, patch := range req.Items {
			switch {
			case patch.Remove:
				if err := order.RemoveItem(patch.ItemID); err != nil {
					return err
				}
			case patch.Quantity != nil:
				if err := order.UpdateItemQuantity(patch.ItemID, *patch.Quantity); err != nil {
					return err
				}
			}
		}

		if err := repos.OrderRepo().SaveWithLock(ctx, order); err != nil {
			return err
		}

		r := ToOrderResponse(order)
		response = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

// Transition moves an order to the target status.
//
// The whole operation runs in one storage transaction: the graph check, the
// status write conditioned on the version read here (a lost race surfaces as
// ConcurrentModification for the caller to retry after re-reading), and the
// stock mutation when the transition crosses the stock-commitment boundary.
func (s *OrderService) Transition(ctx context.Context, storeID, orderID uuid.UUID, target fulfillment.OrderStatus, reason string, actorID uuid.UUID) (*OrderResponse, error) {
	var (
		response *OrderResponse
		moved    *fulfillment.Order
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.OrderRepo().FindByIDForStore(ctx, storeID, orderID)
		if err != nil {
			return err
		}

		// Boundary decisions depend on the status before the move.
		deducts := order.CrossesStockCommitBoundary(target)
		restores := order.TriggersStockRestore(target)

		if err := order.TransitionTo(target, reason); err != nil {
			return err
		}

		if deducts {
			if err := s.deductStock(ctx, repos, order, actorID); err != nil {
				return err
			}
		} else if restores {
			if err := s.restoreStock(ctx, repos, order, actorID); err != nil {
				return err
			}
		}

		if err := repos.OrderRepo().SaveWithLock(ctx, order); err != nil {
			return err
		}

		r := ToOrderResponse(order)
		response = &r
		moved = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, moved)
	if s.transitions != nil {
		s.transitions.RecordOrderTransition(ctx, storeID, target.String())
	}
	return response, nil
}

// deductStock subtracts stock for every line item not yet deducted. Items
// already flagged are skipped, so a retried transition deducts at most once.
func (s *OrderService) deductStock(ctx context.Context, repos TransactionalRepositories, order *fulfillment.Order, actorID uuid.UUID) error {
	for _, item := range order.ItemsNeedingDeduction() {
		delta := decimal.NewFromInt(item.Quantity).Neg()
		if _, err := s.mutator.Apply(ctx, repos, order.StoreID, item.ProductID, delta, inventory.MovementKindReadyToShip, order.ID, actorID); err != nil {
			return err
		}
		if err := item.MarkDeducted(); err != nil {
			return err
		}
	}
	return nil
}

// restoreStock adds back stock for every deducted, not-yet-restored item
func (s *OrderService) restoreStock(ctx context.Context, repos TransactionalRepositories, order *fulfillment.Order, actorID uuid.UUID) error {
	for _, item := range order.ItemsNeedingRestore() {
		delta := decimal.NewFromInt(item.Quantity)
		if _, err := s.mutator.Apply(ctx, repos, order.StoreID, item.ProductID, delta, inventory.MovementKindReverted, order.ID, actorID); err != nil {
			return err
		}
		if err := item.MarkRestored(); err != nil {
			return err
		}
	}
	return nil
}
