package picking

import (
	"context"
	"errors"
	"time"

	"github.com/fulfil/backend/internal/domain/fulfillment"
	"github.com/fulfil/backend/internal/domain/inventory"
	"github.com/fulfil/backend/internal/domain/picking"
	"github.com/fulfil/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MetricsRecorder receives counter events from the packing increment path.
// A nil recorder disables recording.
type MetricsRecorder interface {
	// PackIncrement records one successful increment on the named tier
	PackIncrement(ctx context.Context, tier string)
	// PackConflict records one increment that gave up after retry exhaustion
	PackConflict(ctx context.Context, tier string)
	// TierFallback records one fall-through from an unavailable tier
	TierFallback(ctx context.Context, tier string)
	// RecordSessionCreated records one successfully created session
	RecordSessionCreated(ctx context.Context, storeID uuid.UUID)
}

// Config carries the tunables of the picking workflow
type Config struct {
	// CodePrefix is the constant leading segment of session codes
	CodePrefix string
	// StaleAfter is the inactivity window after which an active session is
	// flagged as stale
	StaleAfter time.Duration
}

// SessionService coordinates the picking workflow: batching confirmed orders
// into sessions, tracking pick and pack progress, and completing or
// abandoning sessions.
type SessionService struct {
	scope       TransactionScope
	tiers       IncrementerProvider
	sessionRepo picking.SessionRepository
	codes       picking.CodeAllocator
	mutator     *inventory.StockMutator
	metrics     MetricsRecorder
	events      shared.EventPublisher
	cfg         Config
	logger      *zap.Logger
}

// NewSessionService creates a new SessionService
func NewSessionService(
	scope TransactionScope,
	tiers IncrementerProvider,
	sessionRepo picking.SessionRepository,
	codes picking.CodeAllocator,
	metrics MetricsRecorder,
	cfg Config,
	logger *zap.Logger,
) *SessionService {
	if cfg.CodePrefix == "" {
		cfg.CodePrefix = "PICK"
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = 4 * time.Hour
	}
	return &SessionService{
		scope:       scope,
		tiers:       tiers,
		sessionRepo: sessionRepo,
		codes:       codes,
		mutator:     inventory.NewStockMutator(),
		metrics:     metrics,
		cfg:         cfg,
		logger:      logger,
	}
}

// SetEventPublisher wires the bus that receives session lifecycle events. A
// nil publisher leaves events unpublished.
func (s *SessionService) SetEventPublisher(p shared.EventPublisher) {
	s.events = p
}

// publishEvents flushes the session's pending events after a successful
// write
func (s *SessionService) publishEvents(ctx context.Context, session *picking.Session) {
	if s.events == nil {
		return
	}
	_ = s.events.Publish(ctx, session.GetDomainEvents()...)
	session.ClearDomainEvents()
}

// CreateSession batches the given confirmed orders into a new picking
// session. The batch is all-or-nothing: if any order is missing, not in
// confirmed status, or already in an active session, no session is created
// and the error lists every offending order.
//
// The session code is allocated before the creation transaction so the
// per-store-per-day sequence lock is held only for the sequence bump. A
// creation that fails afterwards leaves a gap in the day's numbering, which
// is acceptable; codes are unique, not dense.
func (s *SessionService) CreateSession(ctx context.Context, storeID, actorID uuid.UUID, req CreateSessionRequest) (*SessionResponse, error) {
	day := time.Now()
	seq, err := s.codes.NextSequence(ctx, storeID, day)
	if err != nil {
		return nil, err
	}
	code := picking.FormatSessionCode(s.cfg.CodePrefix, day, seq)

	var (
		response *SessionResponse
		created  *picking.Session
	)
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		orders, err := repos.OrderRepo().FindByIDs(ctx, storeID, req.OrderIDs)
		if err != nil {
			return err
		}
		byID := make(map[uuid.UUID]*fulfillment.Order, len(orders))
		for i := range orders {
			byID[orders[i].ID] = &orders[i]
		}

		memberships, err := repos.SessionRepo().FindActiveMemberships(ctx, storeID, req.OrderIDs)
		if err != nil {
			return err
		}

		var ineligible []picking.IneligibleOrder
		for _, orderID := range req.OrderIDs {
			order, ok := byID[orderID]
			switch {
			case !ok:
				ineligible = append(ineligible, picking.IneligibleOrder{
					OrderID: orderID,
					Reason:  picking.ReasonNotFound,
				})
			case order.Status != fulfillment.OrderStatusConfirmed:
				ineligible = append(ineligible, picking.IneligibleOrder{
					OrderID: orderID,
					Reason:  picking.ReasonNotConfirmed,
				})
			default:
				if _, active := memberships[orderID]; active {
					ineligible = append(ineligible, picking.IneligibleOrder{
						OrderID: orderID,
						Reason:  picking.ReasonAlreadyInSession,
					})
				}
			}
		}
		if len(ineligible) > 0 {
			return &picking.OrderNotEligibleError{Orders: ineligible}
		}

		session, err := picking.NewSession(storeID, code, actorID)
		if err != nil {
			return err
		}

		for _, orderID := range req.OrderIDs {
			if err := session.AddOrder(orderID); err != nil {
				return err
			}
			order := byID[orderID]
			if err := order.TransitionTo(fulfillment.OrderStatusInPreparation, ""); err != nil {
				return err
			}
			if err := repos.OrderRepo().SaveWithLock(ctx, order); err != nil {
				return err
			}
		}

		session.SetItems(aggregateItems(session.ID, orders))

		if err := repos.SessionRepo().Save(ctx, session); err != nil {
			return err
		}

		progressRows, err := buildProgressRows(session.ID, orders)
		if err != nil {
			return err
		}
		if err := repos.ProgressRepo().SaveAll(ctx, progressRows); err != nil {
			return err
		}

		r := ToSessionResponse(session)
		response = &r
		created = session
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, created)
	if s.metrics != nil {
		s.metrics.RecordSessionCreated(ctx, storeID)
	}

	s.logger.Info("picking session created",
		zap.String("session_id", response.ID.String()),
		zap.String("code", response.Code),
		zap.Int("orders", len(response.OrderIDs)))

	return response, nil
}

// aggregateItems builds the shopping list: one row per distinct product,
// summing the needed quantity across every member order's line items.
func aggregateItems(sessionID uuid.UUID, orders []fulfillment.Order) []picking.SessionItem {
	index := make(map[uuid.UUID]int)
	var items []picking.SessionItem
	for i := range orders {
		for _, line := range orders[i].Items {
			if at, ok := index[line.ProductID]; ok {
				items[at].TotalQuantityNeeded += line.Quantity
				continue
			}
			index[line.ProductID] = len(items)
			now := time.Now()
			items = append(items, picking.SessionItem{
				ID:                  uuid.New(),
				SessionID:           sessionID,
				ProductID:           line.ProductID,
				ProductName:         line.ProductName,
				ProductCode:         line.ProductCode,
				TotalQuantityNeeded: line.Quantity,
				CreatedAt:           now,
				UpdatedAt:           now,
			})
		}
	}
	return items
}

// buildProgressRows seeds one zeroed packing counter per (order, product)
func buildProgressRows(sessionID uuid.UUID, orders []fulfillment.Order) ([]picking.PackingProgress, error) {
	var rows []picking.PackingProgress
	for i := range orders {
		for _, line := range orders[i].Items {
			progress, err := picking.NewPackingProgress(sessionID, orders[i].ID, line.ProductID, line.Quantity)
			if err != nil {
				return nil, err
			}
			rows = append(rows, *progress)
		}
	}
	return rows, nil
}

// GetSession retrieves a session with its orders, items and counters
func (s *SessionService) GetSession(ctx context.Context, storeID, sessionID uuid.UUID) (*SessionResponse, error) {
	session, err := s.sessionRepo.FindByIDForStore(ctx, storeID, sessionID)
	if err != nil {
		return nil, err
	}
	response := ToSessionResponse(session)
	return &response, nil
}

// GetSessionByCode retrieves a session by its human-readable code
func (s *SessionService) GetSessionByCode(ctx context.Context, storeID uuid.UUID, code string) (*SessionResponse, error) {
	session, err := s.sessionRepo.FindByCode(ctx, storeID, code)
	if err != nil {
		return nil, err
	}
	response := ToSessionResponse(session)
	return &response, nil
}

// ListSessions retrieves sessions with filtering and pagination
func (s *SessionService) ListSessions(ctx context.Context, storeID uuid.UUID, filter SessionListFilter) ([]SessionResponse, error) {
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
	if filter.Status != nil {
		repoFilter.Filters["status"] = filter.Status.String()
	}

	sessions, err := s.sessionRepo.FindAllForStore(ctx, storeID, repoFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]SessionResponse, len(sessions))
	for i := range sessions {
		responses[i] = ToSessionResponse(&sessions[i])
	}
	return responses, nil
}

// ListStale flags active sessions idle for longer than the configured
// window. Flagging only; an operator decides whether to resume or abandon.
func (s *SessionService) ListStale(ctx context.Context, storeID uuid.UUID) ([]StaleSessionResponse, error) {
	sessions, err := s.sessionRepo.FindStale(ctx, storeID, s.cfg.StaleAfter)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	responses := make([]StaleSessionResponse, len(sessions))
	for i := range sessions {
		responses[i] = StaleSessionResponse{
			SessionResponse: ToSessionResponse(&sessions[i]),
			IdleFor:         now.Sub(sessions[i].LastActivityAt).Round(time.Second).String(),
		}
	}
	return responses, nil
}

// RecordPick applies one bounded increment to an aggregated item's picked
// quantity. The bounds and the picking-status check run atomically in the
// storage primitive.
func (s *SessionService) RecordPick(ctx context.Context, storeID, sessionID uuid.UUID, req RecordPickRequest) (*SessionItemResponse, error) {
	// Store scoping first; the increment primitive addresses by session ID.
	if _, err := s.sessionRepo.FindByIDForStore(ctx, storeID, sessionID); err != nil {
		return nil, err
	}

	item, err := s.sessionRepo.IncrementPicked(ctx, sessionID, req.ProductID, req.Delta)
	if err != nil {
		return nil, err
	}

	return &SessionItemResponse{
		ID:                  item.ID,
		ProductID:           item.ProductID,
		ProductName:         item.ProductName,
		ProductCode:         item.ProductCode,
		TotalQuantityNeeded: item.TotalQuantityNeeded,
		QuantityPicked:      item.QuantityPicked,
		Remaining:           item.Remaining(),
	}, nil
}

// StartPacking moves a fully picked session from picking to packing
func (s *SessionService) StartPacking(ctx context.Context, storeID, sessionID uuid.UUID) (*SessionResponse, error) {
	var (
		response *SessionResponse
		packing  *picking.Session
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		session, err := repos.SessionRepo().FindByIDForStore(ctx, storeID, sessionID)
		if err != nil {
			return err
		}
		if err := session.StartPacking(); err != nil {
			return err
		}
		if err := repos.SessionRepo().SaveWithLock(ctx, session); err != nil {
			return err
		}
		r := ToSessionResponse(session)
		response = &r
		packing = session
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publishEvents(ctx, packing)
	return response, nil
}

// IncrementPacked applies one bounded increment to a packing counter,
// walking the configured tiers in order and falling through on
// ErrPrimitiveUnavailable. Bounds violations, status preconditions and
// retry exhaustion from a tier are final; only unavailability cascades.
func (s *SessionService) IncrementPacked(ctx context.Context, storeID, sessionID uuid.UUID, req IncrementPackedRequest) (*PackingProgressResponse, error) {
	if _, err := s.sessionRepo.FindByIDForStore(ctx, storeID, sessionID); err != nil {
		return nil, err
	}

	for _, tier := range s.tiers.Incrementers() {
		progress, err := tier.IncrementPacked(ctx, sessionID, req.OrderID, req.ProductID, req.Delta)
		if err == nil {
			if s.metrics != nil {
				s.metrics.PackIncrement(ctx, tier.Name())
			}
			response := ToPackingProgressResponse(progress)
			return &response, nil
		}
		if errors.Is(err, picking.ErrPrimitiveUnavailable) {
			if s.metrics != nil {
				s.metrics.TierFallback(ctx, tier.Name())
			}
			s.logger.Warn("packing increment tier unavailable, falling through",
				zap.String("tier", tier.Name()),
				zap.String("session_id", sessionID.String()))
			continue
		}
		if errors.Is(err, shared.ErrTooManyConflicts) && s.metrics != nil {
			s.metrics.PackConflict(ctx, tier.Name())
		}
		return nil, err
	}

	return nil, picking.ErrPrimitiveUnavailable
}

// ListProgress lists every packing counter under a session
func (s *SessionService) ListProgress(ctx context.Context, storeID, sessionID uuid.UUID) ([]PackingProgressResponse, error) {
	var responses []PackingProgressResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := repos.SessionRepo().FindByIDForStore(ctx, storeID, sessionID); err != nil {
			return err
		}
		rows, err := repos.ProgressRepo().FindBySession(ctx, sessionID)
		if err != nil {
			return err
		}
		responses = make([]PackingProgressResponse, len(rows))
		for i := range rows {
			responses[i] = ToPackingProgressResponse(&rows[i])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return responses, nil
}

// CompleteSession closes a fully packed session and moves every member
// order to ready_to_ship, deducting stock and writing ledger movements for
// each, all inside one transaction. If any counter is short or any order
// fails to transition, nothing moves.
func (s *SessionService) CompleteSession(ctx context.Context, storeID, sessionID, actorID uuid.UUID) (*SessionResponse, error) {
	var (
		response    *SessionResponse
		completed   *picking.Session
		orderEvents []shared.DomainEvent
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		session, err := repos.SessionRepo().FindByIDForStore(ctx, storeID, sessionID)
		if err != nil {
			return err
		}
		if session.Status != picking.SessionStatusPacking {
			return picking.ErrSessionNotPacking
		}

		short, err := repos.ProgressRepo().Shortfalls(ctx, sessionID)
		if err != nil {
			return err
		}
		if len(short) > 0 {
			return &picking.IncompletePackingError{Short: short}
		}

		orders, err := repos.OrderRepo().FindByIDs(ctx, storeID, session.OrderIDs())
		if err != nil {
			return err
		}
		if len(orders) != len(session.Orders) {
			return shared.ErrNotFound
		}

		for i := range orders {
			order := &orders[i]
			deducts := order.CrossesStockCommitBoundary(fulfillment.OrderStatusReadyToShip)
			if err := order.TransitionTo(fulfillment.OrderStatusReadyToShip, ""); err != nil {
				return err
			}
			if deducts {
				for _, item := range order.ItemsNeedingDeduction() {
					delta := decimal.NewFromInt(item.Quantity).Neg()
					if _, err := s.mutator.Apply(ctx, repos, storeID, item.ProductID, delta, inventory.MovementKindReadyToShip, order.ID, actorID); err != nil {
						return err
					}
					if err := item.MarkDeducted(); err != nil {
						return err
					}
				}
			}
			if err := repos.OrderRepo().SaveWithLock(ctx, order); err != nil {
				return err
			}
			orderEvents = append(orderEvents, order.GetDomainEvents()...)
			order.ClearDomainEvents()
		}

		if err := session.Complete(); err != nil {
			return err
		}
		if err := repos.SessionRepo().SaveWithLock(ctx, session); err != nil {
			return err
		}

		r := ToSessionResponse(session)
		response = &r
		completed = session
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, completed)
	if s.events != nil && len(orderEvents) > 0 {
		_ = s.events.Publish(ctx, orderEvents...)
	}
	s.logger.Info("picking session completed",
		zap.String("session_id", response.ID.String()),
		zap.String("code", response.Code),
		zap.Int("orders", len(response.OrderIDs)))

	return response, nil
}

// AbandonSession releases an active session. Member orders stay in their
// current status and become eligible for a new session; counters are kept
// for audit.
func (s *SessionService) AbandonSession(ctx context.Context, storeID, sessionID uuid.UUID) (*SessionResponse, error) {
	var (
		response  *SessionResponse
		abandoned *picking.Session
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		session, err := repos.SessionRepo().FindByIDForStore(ctx, storeID, sessionID)
		if err != nil {
			return err
		}
		if err := session.Abandon(); err != nil {
			return err
		}
		if err := repos.SessionRepo().SaveWithLock(ctx, session); err != nil {
			return err
		}
		r := ToSessionResponse(session)
		response = &r
		abandoned = session
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publishEvents(ctx, abandoned)
	return response, nil
}
