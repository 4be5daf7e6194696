package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus is the lifecycle state of a ledger entry. The only legal
// transitions are pending -> success and pending -> failed.
type TransactionStatus string

const (
	StatusPending TransactionStatus = "pending"
	StatusSuccess TransactionStatus = "success"
	StatusFailed  TransactionStatus = "failed"
)

// IntentKind classifies what the user asked the machine to do.
type IntentKind string

const (
	IntentPurchase     IntentKind = "purchase"
	IntentCheckStock   IntentKind = "check_stock"
	IntentListProducts IntentKind = "list_products"
	IntentUnknown      IntentKind = "unknown"
)

// Transaction is one ledger entry recording a purchase attempt, successful or
// not. UnitPrice and TotalPrice are snapshots taken at sale time and are
// immune to later catalog price changes.
type Transaction struct {
	ID          string            `gorm:"primaryKey;size:36" json:"id"`
	ProductID   string            `gorm:"size:36;not null;index" json:"product_id"`
	Quantity    int               `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal   `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	TotalPrice  decimal.Decimal   `gorm:"type:decimal(10,2);not null" json:"total_price"`
	UserMessage string            `gorm:"type:text" json:"user_message"`
	Status      TransactionStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Intent      IntentKind        `gorm:"size:20;not null;default:'purchase'" json:"intent"`
	Confidence  float64           `json:"confidence"`
	CreatedAt   time.Time         `gorm:"index" json:"created_at"`
}

func (Transaction) TableName() string { return "transactions" }
