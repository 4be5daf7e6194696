package store

import (
	"context"
	"fmt"
	"time"

	"github.com/happyloop/vendbot/internal/domain"
	"gorm.io/gorm"
)

// GormPurchaseCommitter performs the stock-debit-plus-status-flip that turns
// a pending ledger row into a successful sale. Both writes happen inside one
// database transaction so a success row always has its debit and a rolled
// back debit never leaves a success row behind.
type GormPurchaseCommitter struct {
	db *gorm.DB
}

// NewGormPurchaseCommitter creates a committer sharing the given database
// handle.
func NewGormPurchaseCommitter(db *gorm.DB) *GormPurchaseCommitter {
	return &GormPurchaseCommitter{db: db}
}

// CommitPurchase attempts the conditional debit for the given pending ledger
// row. The stock_quantity >= ? re-check at debit time guards the gap between
// validation and commit. Returns false (with nil error) when stock turned
// out insufficient; the caller then marks the row failed so the attempt
// stays on record.
func (c *GormPurchaseCommitter) CommitPurchase(ctx context.Context, transactionID, productID string, quantity int) (bool, error) {
	if quantity <= 0 {
		return false, fmt.Errorf("CommitPurchase: quantity must be positive, got %d", quantity)
	}

	applied := false
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Product{}).
			Where("id = ? AND stock_quantity >= ?", productID, quantity).
			Updates(map[string]interface{}{
				"stock_quantity": gorm.Expr("stock_quantity - ?", quantity),
				"updated_at":     time.Now(),
			})
		if res.Error != nil {
			return fmt.Errorf("debiting stock: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			// Insufficient stock at commit time. Nothing written yet, so
			// there is nothing to roll back.
			return nil
		}

		flip := tx.Model(&domain.Transaction{}).
			Where("id = ? AND status = ?", transactionID, domain.StatusPending).
			Update("status", domain.StatusSuccess)
		if flip.Error != nil {
			return fmt.Errorf("marking transaction success: %w", flip.Error)
		}
		if flip.RowsAffected == 0 {
			return fmt.Errorf("transaction %s not found or not pending", transactionID)
		}

		applied = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("CommitPurchase: %w", err)
	}
	return applied, nil
}
