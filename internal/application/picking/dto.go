package picking

import (
	"time"

	"github.com/fulfil/backend/internal/domain/picking"
	"github.com/google/uuid"
)

// CreateSessionRequest represents a request to create a picking session
type CreateSessionRequest struct {
	OrderIDs []uuid.UUID `json:"order_ids" binding:"required,min=1,dive,required"`
}

// RecordPickRequest represents one pick increment against an aggregated item
type RecordPickRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Delta     int64     `json:"delta" binding:"required"`
}

// IncrementPackedRequest represents one pack increment on an order's item
type IncrementPackedRequest struct {
	OrderID   uuid.UUID `json:"order_id" binding:"required"`
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Delta     int64     `json:"delta" binding:"required"`
}

// SessionListFilter represents filtering options for listing sessions
type SessionListFilter struct {
	Status   *picking.SessionStatus `form:"status"`
	Search   string                 `form:"search"`
	Page     int                    `form:"page"`
	PageSize int                    `form:"page_size"`
}

// SessionItemResponse represents one aggregated shopping-list line
type SessionItemResponse struct {
	ID                  uuid.UUID `json:"id"`
	ProductID           uuid.UUID `json:"product_id"`
	ProductName         string    `json:"product_name"`
	ProductCode         string    `json:"product_code"`
	TotalQuantityNeeded int64     `json:"total_quantity_needed"`
	QuantityPicked      int64     `json:"quantity_picked"`
	Remaining           int64     `json:"remaining"`
}

// SessionResponse represents session data in responses
type SessionResponse struct {
	ID             uuid.UUID             `json:"id"`
	StoreID        uuid.UUID             `json:"store_id"`
	Code           string                `json:"code"`
	Status         string                `json:"status"`
	OrderIDs       []uuid.UUID           `json:"order_ids"`
	Items          []SessionItemResponse `json:"items"`
	LastActivityAt time.Time             `json:"last_activity_at"`
	CompletedAt    *time.Time            `json:"completed_at,omitempty"`
	AbandonedAt    *time.Time            `json:"abandoned_at,omitempty"`
	Version        int                   `json:"version"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

// PackingProgressResponse represents one packing counter in responses
type PackingProgressResponse struct {
	ID             uuid.UUID `json:"id"`
	SessionID      uuid.UUID `json:"session_id"`
	OrderID        uuid.UUID `json:"order_id"`
	ProductID      uuid.UUID `json:"product_id"`
	QuantityNeeded int64     `json:"quantity_needed"`
	QuantityPacked int64     `json:"quantity_packed"`
	Complete       bool      `json:"complete"`
}

// StaleSessionResponse represents a flagged inactive session
type StaleSessionResponse struct {
	SessionResponse
	IdleFor string `json:"idle_for"`
}

// ToSessionResponse converts a domain session to a response DTO
func ToSessionResponse(session *picking.Session) SessionResponse {
	items := make([]SessionItemResponse, len(session.Items))
	for i := range session.Items {
		item := &session.Items[i]
		items[i] = SessionItemResponse{
			ID:                  item.ID,
			ProductID:           item.ProductID,
			ProductName:         item.ProductName,
			ProductCode:         item.ProductCode,
			TotalQuantityNeeded: item.TotalQuantityNeeded,
			QuantityPicked:      item.QuantityPicked,
			Remaining:           item.Remaining(),
		}
	}

	return SessionResponse{
		ID:             session.ID,
		StoreID:        session.StoreID,
		Code:           session.Code,
		Status:         session.Status.String(),
		OrderIDs:       session.OrderIDs(),
		Items:          items,
		LastActivityAt: session.LastActivityAt,
		CompletedAt:    session.CompletedAt,
		AbandonedAt:    session.AbandonedAt,
		Version:        session.Version,
		CreatedAt:      session.CreatedAt,
		UpdatedAt:      session.UpdatedAt,
	}
}

// ToPackingProgressResponse converts a domain counter to a response DTO
func ToPackingProgressResponse(p *picking.PackingProgress) PackingProgressResponse {
	return PackingProgressResponse{
		ID:             p.ID,
		SessionID:      p.SessionID,
		OrderID:        p.OrderID,
		ProductID:      p.ProductID,
		QuantityNeeded: p.QuantityNeeded,
		QuantityPacked: p.QuantityPacked,
		Complete:       p.IsComplete(),
	}
}
