package persistence

import (
	"context"
	"time"

	"github.com/fulfil/backend/internal/domain/picking"
	"github.com/fulfil/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostgresCodeAllocator stores one counter row per (store, day) and bumps it
// under a row lock. Two concurrent allocations on the same pair serialize on
// the lock; the lock is held only for the bump, never across session
// creation.
type PostgresCodeAllocator struct {
	db *gorm.DB
}

// NewPostgresCodeAllocator creates a sequence-table backed allocator
func NewPostgresCodeAllocator(db *gorm.DB) *PostgresCodeAllocator {
	return &PostgresCodeAllocator{db: db}
}

// NextSequence allocates the next number for the (store, day) pair
func (a *PostgresCodeAllocator) NextSequence(ctx context.Context, storeID uuid.UUID, day time.Time) (int64, error) {
	dayKey := day.Format(picking.SessionCodeDateLayout)

	var seq int64
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Ensure the counter row exists; DoNothing keeps a racing insert
		// harmless, the row lock below serializes the bump.
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.SessionCodeSequenceModel{
				StoreID: storeID,
				Day:     dayKey,
				NextSeq: 1,
			}).Error; err != nil {
			return err
		}

		var row models.SessionCodeSequenceModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("store_id = ? AND day = ?", storeID, dayKey).
			First(&row).Error; err != nil {
			return err
		}

		seq = row.NextSeq
		return tx.Model(&models.SessionCodeSequenceModel{}).
			Where("store_id = ? AND day = ?", storeID, dayKey).
			Update("next_seq", gorm.Expr("next_seq + 1")).Error
	})
	if err != nil {
		return 0, err
	}
	return seq, nil
}

var _ picking.CodeAllocator = (*PostgresCodeAllocator)(nil)
