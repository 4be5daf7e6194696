package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/happyloop/vendbot/internal/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Seed inserts the initial soda catalog when the products table is empty.
// Running it against a populated database is a no-op.
func Seed(ctx context.Context, db *gorm.DB) (int, error) {
	var count int64
	if err := db.WithContext(ctx).Model(&domain.Product{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("Seed: counting products: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	catalog := []domain.Product{
		{SKU: "COKE_350", Name: "Coca-Cola", Description: "Coca-Cola 350ml", Price: decimal.RequireFromString("3.50"), StockQuantity: 20},
		{SKU: "PEPSI_350", Name: "Pepsi", Description: "Pepsi 350ml", Price: decimal.RequireFromString("3.00"), StockQuantity: 15},
		{SKU: "SPRITE_350", Name: "Sprite", Description: "Sprite 350ml", Price: decimal.RequireFromString("3.25"), StockQuantity: 18},
		{SKU: "FANTA_350", Name: "Fanta Orange", Description: "Fanta Orange 350ml", Price: decimal.RequireFromString("3.25"), StockQuantity: 12},
		{SKU: "GUARANA_350", Name: "Guarana Antarctica", Description: "Guarana Antarctica 350ml", Price: decimal.RequireFromString("3.75"), StockQuantity: 10},
	}

	// Insert one at a time so created_at preserves catalog order; the
	// resolver relies on insertion order for ties.
	for i := range catalog {
		catalog[i].ID = uuid.NewString()
		catalog[i].IsActive = true
		if err := db.WithContext(ctx).Create(&catalog[i]).Error; err != nil {
			return i, fmt.Errorf("Seed: inserting %s: %w", catalog[i].SKU, err)
		}
	}
	return len(catalog), nil
}
