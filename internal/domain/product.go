package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is one catalog entry held by the vending machine. Stock is debited
// by purchases and credited by restocks; rows are never deleted, only
// deactivated via IsActive.
type Product struct {
	ID            string          `gorm:"primaryKey;size:36" json:"id"`
	SKU           string          `gorm:"uniqueIndex;size:50;not null" json:"sku"`
	Name          string          `gorm:"size:100;not null" json:"name"`
	Description   string          `gorm:"size:255" json:"description,omitempty"`
	Price         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	StockQuantity int             `gorm:"not null;default:0;check:stock_quantity >= 0" json:"stock_quantity"`
	IsActive      bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (Product) TableName() string { return "products" }

// ProductPatch carries optional field updates for a product. Nil fields are
// left untouched.
type ProductPatch struct {
	Name          *string          `json:"name,omitempty"`
	Description   *string          `json:"description,omitempty"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	StockQuantity *int             `json:"stock_quantity,omitempty"`
	IsActive      *bool            `json:"is_active,omitempty"`
}
