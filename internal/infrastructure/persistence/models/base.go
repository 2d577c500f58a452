package models

import (
	"time"

	"github.com/fulfil/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BaseModel provides common persistence fields for all models.
// It maps to the domain's BaseEntity.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToDomain converts BaseModel to domain BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// AggregateModel provides common persistence fields for aggregate roots.
// It extends BaseModel with version for optimistic locking.
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

// FromDomainAggregateRoot populates AggregateModel from domain BaseAggregateRoot
func (m *AggregateModel) FromDomainAggregateRoot(a shared.BaseAggregateRoot) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.Version = a.Version
}

// StoreAggregateModel provides common persistence fields for store-scoped
// aggregate roots. It extends AggregateModel with store ID and creator info.
type StoreAggregateModel struct {
	AggregateModel
	StoreID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedBy *uuid.UUID `gorm:"type:uuid;index"`
}

// FromDomainStoreAggregateRoot populates StoreAggregateModel from domain StoreAggregateRoot
func (m *StoreAggregateModel) FromDomainStoreAggregateRoot(s shared.StoreAggregateRoot) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.StoreID = s.StoreID
	m.CreatedBy = s.CreatedBy
}

// PopulateStoreAggregateRoot populates a domain StoreAggregateRoot from persistence model
func (m *StoreAggregateModel) PopulateStoreAggregateRoot(s *shared.StoreAggregateRoot) {
	s.BaseAggregateRoot.BaseEntity.ID = m.ID
	s.BaseAggregateRoot.BaseEntity.CreatedAt = m.CreatedAt
	s.BaseAggregateRoot.BaseEntity.UpdatedAt = m.UpdatedAt
	s.BaseAggregateRoot.Version = m.Version
	s.StoreID = m.StoreID
	s.CreatedBy = m.CreatedBy
}
