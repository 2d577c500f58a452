package models

import (
	"time"

	"github.com/fulfil/backend/internal/domain/fulfillment"
	"github.com/fulfil/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// OrderModel is the persistence model for the Order aggregate root.
type OrderModel struct {
	StoreAggregateModel
	OrderNumber string                 `gorm:"type:varchar(50);not null;uniqueIndex:idx_order_store_number,priority:2"`
	CustomerRef string                 `gorm:"type:varchar(200)"`
	Items       []OrderLineItemModel   `gorm:"foreignKey:OrderID;references:ID"`
	Status      fulfillment.OrderStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	CarrierID   *uuid.UUID             `gorm:"type:uuid;index"`
	Remark      string                 `gorm:"type:text"`

	ConfirmedAt    *time.Time `gorm:"index"`
	PreparationAt  *time.Time
	ReadyToShipAt  *time.Time `gorm:"index"`
	ShippedAt      *time.Time
	DeliveredAt    *time.Time
	CancelledAt    *time.Time
	RejectedAt     *time.Time
	IncidentAt     *time.Time
	NotDeliveredAt *time.Time
	ReturnedAt     *time.Time
	CancelReason   string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order entity.
func (m *OrderModel) ToDomain() *fulfillment.Order {
	order := &fulfillment.Order{
		StoreAggregateRoot: shared.StoreAggregateRoot{
			BaseAggregateRoot: shared.BaseAggregateRoot{
				BaseEntity: shared.BaseEntity{
					ID:        m.ID,
					CreatedAt: m.CreatedAt,
					UpdatedAt: m.UpdatedAt,
				},
				Version: m.Version,
			},
			StoreID:   m.StoreID,
			CreatedBy: m.CreatedBy,
		},
		OrderNumber:    m.OrderNumber,
		CustomerRef:    m.CustomerRef,
		Status:         m.Status,
		CarrierID:      m.CarrierID,
		Remark:         m.Remark,
		ConfirmedAt:    m.ConfirmedAt,
		PreparationAt:  m.PreparationAt,
		ReadyToShipAt:  m.ReadyToShipAt,
		ShippedAt:      m.ShippedAt,
		DeliveredAt:    m.DeliveredAt,
		CancelledAt:    m.CancelledAt,
		RejectedAt:     m.RejectedAt,
		IncidentAt:     m.IncidentAt,
		NotDeliveredAt: m.NotDeliveredAt,
		ReturnedAt:     m.ReturnedAt,
		CancelReason:   m.CancelReason,
		Items:          make([]fulfillment.OrderLineItem, len(m.Items)),
	}
	for i, item := range m.Items {
		order.Items[i] = *item.ToDomain()
	}
	return order
}

// FromDomain populates the persistence model from a domain Order entity.
func (m *OrderModel) FromDomain(o *fulfillment.Order) {
	m.FromDomainStoreAggregateRoot(o.StoreAggregateRoot)
	m.OrderNumber = o.OrderNumber
	m.CustomerRef = o.CustomerRef
	m.Status = o.Status
	m.CarrierID = o.CarrierID
	m.Remark = o.Remark
	m.ConfirmedAt = o.ConfirmedAt
	m.PreparationAt = o.PreparationAt
	m.ReadyToShipAt = o.ReadyToShipAt
	m.ShippedAt = o.ShippedAt
	m.DeliveredAt = o.DeliveredAt
	m.CancelledAt = o.CancelledAt
	m.RejectedAt = o.RejectedAt
	m.IncidentAt = o.IncidentAt
	m.NotDeliveredAt = o.NotDeliveredAt
	m.ReturnedAt = o.ReturnedAt
	m.CancelReason = o.CancelReason
	m.Items = make([]OrderLineItemModel, len(o.Items))
	for i, item := range o.Items {
		m.Items[i] = *OrderLineItemModelFromDomain(&item)
	}
}

// OrderModelFromDomain creates a new persistence model from a domain Order entity.
func OrderModelFromDomain(o *fulfillment.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// OrderLineItemModel is the persistence model for the OrderLineItem entity.
// The stock_deducted and stock_restored flags carry the at-most-once
// guarantee for stock mutation and are only flipped inside the transaction
// that writes the corresponding ledger movement.
type OrderLineItemModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key"`
	OrderID       uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID     uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductName   string    `gorm:"type:varchar(200);not null"`
	ProductCode   string    `gorm:"type:varchar(100);not null"`
	Quantity      int64     `gorm:"not null"`
	StockDeducted bool      `gorm:"not null;default:false"`
	StockRestored bool      `gorm:"not null;default:false"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderLineItemModel) TableName() string {
	return "order_line_items"
}

// ToDomain converts the persistence model to a domain OrderLineItem entity.
func (m *OrderLineItemModel) ToDomain() *fulfillment.OrderLineItem {
	return &fulfillment.OrderLineItem{
		ID:            m.ID,
		OrderID:       m.OrderID,
		ProductID:     m.ProductID,
		ProductName:   m.ProductName,
		ProductCode:   m.ProductCode,
		Quantity:      m.Quantity,
		StockDeducted: m.StockDeducted,
		StockRestored: m.StockRestored,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain OrderLineItem entity.
func (m *OrderLineItemModel) FromDomain(i *fulfillment.OrderLineItem) {
	m.ID = i.ID
	m.OrderID = i.OrderID
	m.ProductID = i.ProductID
	m.ProductName = i.ProductName
	m.ProductCode = i.ProductCode
	m.Quantity = i.Quantity
	m.StockDeducted = i.StockDeducted
	m.StockRestored = i.StockRestored
	m.CreatedAt = i.CreatedAt
	m.UpdatedAt = i.UpdatedAt
}

// OrderLineItemModelFromDomain creates a new persistence model from a domain OrderLineItem entity.
func OrderLineItemModelFromDomain(i *fulfillment.OrderLineItem) *OrderLineItemModel {
	m := &OrderLineItemModel{}
	m.FromDomain(i)
	return m
}
