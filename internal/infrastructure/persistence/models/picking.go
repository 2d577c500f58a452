package models

import (
	"time"

	"github.com/fulfil/backend/internal/domain/picking"
	"github.com/google/uuid"
)

// SessionModel is the persistence model for the picking Session aggregate.
type SessionModel struct {
	StoreAggregateModel
	Code           string                `gorm:"type:varchar(30);not null;uniqueIndex:idx_session_store_code,priority:2"`
	Status         picking.SessionStatus `gorm:"type:varchar(20);not null;default:'picking';index"`
	Orders         []SessionOrderModel   `gorm:"foreignKey:SessionID;references:ID"`
	Items          []SessionItemModel    `gorm:"foreignKey:SessionID;references:ID"`
	LastActivityAt time.Time             `gorm:"not null;index"`
	CompletedAt    *time.Time
	AbandonedAt    *time.Time
}

// TableName returns the table name for GORM
func (SessionModel) TableName() string {
	return "picking_sessions"
}

// ToDomain converts the persistence model to a domain Session entity.
func (m *SessionModel) ToDomain() *picking.Session {
	session := &picking.Session{
		Code:           m.Code,
		Status:         m.Status,
		LastActivityAt: m.LastActivityAt,
		CompletedAt:    m.CompletedAt,
		AbandonedAt:    m.AbandonedAt,
		Orders:         make([]picking.SessionOrder, len(m.Orders)),
		Items:          make([]picking.SessionItem, len(m.Items)),
	}
	m.PopulateStoreAggregateRoot(&session.StoreAggregateRoot)
	for i, o := range m.Orders {
		session.Orders[i] = *o.ToDomain()
	}
	for i, item := range m.Items {
		session.Items[i] = *item.ToDomain()
	}
	return session
}

// FromDomain populates the persistence model from a domain Session entity.
func (m *SessionModel) FromDomain(s *picking.Session) {
	m.FromDomainStoreAggregateRoot(s.StoreAggregateRoot)
	m.Code = s.Code
	m.Status = s.Status
	m.LastActivityAt = s.LastActivityAt
	m.CompletedAt = s.CompletedAt
	m.AbandonedAt = s.AbandonedAt
	m.Orders = make([]SessionOrderModel, len(s.Orders))
	for i, o := range s.Orders {
		m.Orders[i] = *SessionOrderModelFromDomain(&o)
	}
	m.Items = make([]SessionItemModel, len(s.Items))
	for i, item := range s.Items {
		m.Items[i] = *SessionItemModelFromDomain(&item)
	}
}

// SessionModelFromDomain creates a new persistence model from a domain Session entity.
func SessionModelFromDomain(s *picking.Session) *SessionModel {
	m := &SessionModel{}
	m.FromDomain(s)
	return m
}

// SessionOrderModel is the junction row linking a session to a member order.
// active mirrors the owning session's status (true while picking or packing)
// so a partial unique index on (order_id) WHERE active can enforce that an
// order belongs to at most one active session.
type SessionOrderModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	SessionID uuid.UUID `gorm:"type:uuid;not null;index"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Active    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SessionOrderModel) TableName() string {
	return "picking_session_orders"
}

// ToDomain converts the persistence model to a domain SessionOrder.
func (m *SessionOrderModel) ToDomain() *picking.SessionOrder {
	return &picking.SessionOrder{
		ID:        m.ID,
		SessionID: m.SessionID,
		OrderID:   m.OrderID,
		CreatedAt: m.CreatedAt,
	}
}

// SessionOrderModelFromDomain creates a new persistence model from a domain SessionOrder.
func SessionOrderModelFromDomain(o *picking.SessionOrder) *SessionOrderModel {
	return &SessionOrderModel{
		ID:        o.ID,
		SessionID: o.SessionID,
		OrderID:   o.OrderID,
		Active:    true,
		CreatedAt: o.CreatedAt,
	}
}

// SessionItemModel is one aggregated shopping-list row. quantity_picked is
// only written through the session repository's conditional increment.
type SessionItemModel struct {
	ID                  uuid.UUID `gorm:"type:uuid;primary_key"`
	SessionID           uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_session_item_product,priority:1"`
	ProductID           uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_session_item_product,priority:2"`
	ProductName         string    `gorm:"type:varchar(200);not null"`
	ProductCode         string    `gorm:"type:varchar(100);not null"`
	TotalQuantityNeeded int64     `gorm:"not null"`
	QuantityPicked      int64     `gorm:"not null;default:0"`
	CreatedAt           time.Time `gorm:"not null"`
	UpdatedAt           time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SessionItemModel) TableName() string {
	return "picking_session_items"
}

// ToDomain converts the persistence model to a domain SessionItem.
func (m *SessionItemModel) ToDomain() *picking.SessionItem {
	return &picking.SessionItem{
		ID:                  m.ID,
		SessionID:           m.SessionID,
		ProductID:           m.ProductID,
		ProductName:         m.ProductName,
		ProductCode:         m.ProductCode,
		TotalQuantityNeeded: m.TotalQuantityNeeded,
		QuantityPicked:      m.QuantityPicked,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

// SessionItemModelFromDomain creates a new persistence model from a domain SessionItem.
func SessionItemModelFromDomain(i *picking.SessionItem) *SessionItemModel {
	return &SessionItemModel{
		ID:                  i.ID,
		SessionID:           i.SessionID,
		ProductID:           i.ProductID,
		ProductName:         i.ProductName,
		ProductCode:         i.ProductCode,
		TotalQuantityNeeded: i.TotalQuantityNeeded,
		QuantityPicked:      i.QuantityPicked,
		CreatedAt:           i.CreatedAt,
		UpdatedAt:           i.UpdatedAt,
	}
}

// PackingProgressModel is the persistence model for one packing counter.
// quantity_packed is written through one of the increment tiers only; the
// version column backs the optimistic tier's compare-and-swap.
type PackingProgressModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key"`
	SessionID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_progress_triple,priority:1"`
	OrderID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_progress_triple,priority:2"`
	ProductID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_progress_triple,priority:3"`
	QuantityNeeded int64     `gorm:"not null"`
	QuantityPacked int64     `gorm:"not null;default:0"`
	Version        int       `gorm:"not null;default:1"`
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PackingProgressModel) TableName() string {
	return "packing_progress"
}

// ToDomain converts the persistence model to a domain PackingProgress.
func (m *PackingProgressModel) ToDomain() *picking.PackingProgress {
	return &picking.PackingProgress{
		ID:             m.ID,
		SessionID:      m.SessionID,
		OrderID:        m.OrderID,
		ProductID:      m.ProductID,
		QuantityNeeded: m.QuantityNeeded,
		QuantityPacked: m.QuantityPacked,
		Version:        m.Version,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// PackingProgressModelFromDomain creates a new persistence model from a domain PackingProgress.
func PackingProgressModelFromDomain(p *picking.PackingProgress) *PackingProgressModel {
	return &PackingProgressModel{
		ID:             p.ID,
		SessionID:      p.SessionID,
		OrderID:        p.OrderID,
		ProductID:      p.ProductID,
		QuantityNeeded: p.QuantityNeeded,
		QuantityPacked: p.QuantityPacked,
		Version:        p.Version,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// SessionCodeSequenceModel is the per-store-per-day sequence row behind
// session code allocation. The Postgres allocator bumps next_seq under a row
// lock held only for the duration of the bump.
type SessionCodeSequenceModel struct {
	StoreID uuid.UUID `gorm:"type:uuid;primary_key"`
	Day     string    `gorm:"type:varchar(8);primary_key"`
	NextSeq int64     `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (SessionCodeSequenceModel) TableName() string {
	return "session_code_sequences"
}
