package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/happyloop/vendbot/internal/domain"
	"gorm.io/gorm"
)

// ProductRepository is the inventory side of the datastore. GetByID does not
// filter on IsActive so that ledger rows can always be joined back to their
// product; the listing and search operations only see active products.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetBySKU(ctx context.Context, sku string) (*domain.Product, error)
	ListAvailable(ctx context.Context) ([]domain.Product, error)
	ListAll(ctx context.Context, offset, limit int) ([]domain.Product, error)
	SearchByName(ctx context.Context, name string) ([]domain.Product, error)
	// UpdateStock debits quantitySold from the product's stock, but only if
	// enough stock exists at the moment the update runs. Returns false when
	// the debit was refused.
	UpdateStock(ctx context.Context, id string, quantitySold int) (bool, error)
	Update(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error)
	Deactivate(ctx context.Context, id string) error
	Restock(ctx context.Context, id string, quantity int) (*domain.Product, error)
	ListLowStock(ctx context.Context, threshold int) ([]domain.Product, error)
	ListOutOfStock(ctx context.Context) ([]domain.Product, error)
}

// GormProductRepository is the concrete ProductRepository backed by GORM.
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a product repository sharing the given
// database handle.
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// Create inserts a new product row.
func (r *GormProductRepository) Create(ctx context.Context, product *domain.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("Create: inserting product: %w", err)
	}
	return nil
}

// GetByID returns the product regardless of its active flag, or nil when no
// such row exists.
func (r *GormProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	var product domain.Product
	err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return &product, nil
}

// GetBySKU looks a product up by its unique business key.
func (r *GormProductRepository) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	var product domain.Product
	err := r.db.WithContext(ctx).First(&product, "sku = ?", sku).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetBySKU: %w", err)
	}
	return &product, nil
}

// ListAvailable returns active products with stock remaining, in insertion
// order.
func (r *GormProductRepository) ListAvailable(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	err := r.db.WithContext(ctx).
		Where("stock_quantity > 0 AND is_active = ?", true).
		Order("created_at, id").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("ListAvailable: %w", err)
	}
	return products, nil
}

// ListAll returns a page of the full catalog, including inactive and
// out-of-stock products.
func (r *GormProductRepository) ListAll(ctx context.Context, offset, limit int) ([]domain.Product, error) {
	var products []domain.Product
	err := r.db.WithContext(ctx).
		Order("created_at, id").
		Offset(offset).Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("ListAll: %w", err)
	}
	return products, nil
}

// SearchByName matches active products whose name contains the query,
// case-insensitively, in insertion order.
func (r *GormProductRepository) SearchByName(ctx context.Context, name string) ([]domain.Product, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(name)) + "%"
	var products []domain.Product
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND lower(name) LIKE ?", true, pattern).
		Order("created_at, id").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("SearchByName: %w", err)
	}
	return products, nil
}

// UpdateStock applies the conditional debit. The stock_quantity >= ? guard in
// the WHERE clause is what keeps stock from going negative under concurrent
// purchases; callers must treat a false result as "retry or give up".
func (r *GormProductRepository) UpdateStock(ctx context.Context, id string, quantitySold int) (bool, error) {
	if quantitySold <= 0 {
		return false, fmt.Errorf("UpdateStock: quantity must be positive, got %d", quantitySold)
	}
	res := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ? AND stock_quantity >= ?", id, quantitySold).
		Updates(map[string]interface{}{
			"stock_quantity": gorm.Expr("stock_quantity - ?", quantitySold),
			"updated_at":     time.Now(),
		})
	if res.Error != nil {
		return false, fmt.Errorf("UpdateStock: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// Update applies the non-nil fields of patch and bumps updated_at.
func (r *GormProductRepository) Update(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	updates := map[string]interface{}{}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Price != nil {
		updates["price"] = *patch.Price
	}
	if patch.StockQuantity != nil {
		updates["stock_quantity"] = *patch.StockQuantity
	}
	if patch.IsActive != nil {
		updates["is_active"] = *patch.IsActive
	}
	if len(updates) > 0 {
		updates["updated_at"] = time.Now()
		res := r.db.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, fmt.Errorf("Update: %w", res.Error)
		}
	}
	return r.GetByID(ctx, id)
}

// Deactivate soft-deletes the product; the row and its ledger references
// remain intact.
func (r *GormProductRepository) Deactivate(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_active": false, "updated_at": time.Now()})
	if res.Error != nil {
		return fmt.Errorf("Deactivate: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("Deactivate: product %s not found", id)
	}
	return nil
}

// Restock credits quantity back to the product's stock.
func (r *GormProductRepository) Restock(ctx context.Context, id string, quantity int) (*domain.Product, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("Restock: quantity must be positive, got %d", quantity)
	}
	res := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stock_quantity": gorm.Expr("stock_quantity + ?", quantity),
			"updated_at":     time.Now(),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("Restock: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("Restock: product %s not found", id)
	}
	return r.GetByID(ctx, id)
}

// ListLowStock returns products running low: stock above zero but at or below
// the threshold.
func (r *GormProductRepository) ListLowStock(ctx context.Context, threshold int) ([]domain.Product, error) {
	var products []domain.Product
	err := r.db.WithContext(ctx).
		Where("stock_quantity > 0 AND stock_quantity <= ?", threshold).
		Order("stock_quantity, created_at").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("ListLowStock: %w", err)
	}
	return products, nil
}

// ListOutOfStock returns products with zero stock.
func (r *GormProductRepository) ListOutOfStock(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	err := r.db.WithContext(ctx).
		Where("stock_quantity = 0").
		Order("created_at, id").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("ListOutOfStock: %w", err)
	}
	return products, nil
}
