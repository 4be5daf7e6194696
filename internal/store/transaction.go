package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/civil"
	"github.com/happyloop/vendbot/internal/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DailySummary aggregates one calendar day of successful sales.
type DailySummary struct {
	Date             civil.Date      `json:"date"`
	TransactionCount int             `json:"total_transactions"`
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	TotalItemsSold   int             `json:"total_items_sold"`
}

// ProductSales aggregates successful sales for one product.
type ProductSales struct {
	ProductID        string          `json:"product_id"`
	TotalQuantity    int             `json:"total_quantity"`
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	TransactionCount int             `json:"transaction_count"`
}

// HourlySales aggregates successful sales for one hour of the day.
type HourlySales struct {
	Hour             int             `json:"hour"`
	TransactionCount int             `json:"transaction_count"`
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	TotalItems       int             `json:"total_items"`
}

// TransactionRepository is the ledger side of the datastore. The ledger is
// append-mostly: rows are created once, have their status flipped once, and
// are never deleted.
type TransactionRepository interface {
	Create(ctx context.Context, tx *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	ListAll(ctx context.Context, offset, limit int) ([]domain.Transaction, error)
	ListRecent(ctx context.Context, hours int) ([]domain.Transaction, error)
	ListByStatus(ctx context.Context, status domain.TransactionStatus) ([]domain.Transaction, error)
	ListByProduct(ctx context.Context, productID string) ([]domain.Transaction, error)
	ListByIntent(ctx context.Context, kind domain.IntentKind) ([]domain.Transaction, error)
	TotalSales(ctx context.Context, since *time.Time) (decimal.Decimal, error)
	DailySummary(ctx context.Context, date civil.Date) (*DailySummary, error)
	UpdateStatus(ctx context.Context, id string, status domain.TransactionStatus) error
	PopularProducts(ctx context.Context, days int) ([]ProductSales, error)
	HourlySalesPattern(ctx context.Context, days int) ([]HourlySales, error)
}

// GormTransactionRepository is the concrete TransactionRepository backed by
// GORM.
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a ledger repository sharing the given
// database handle.
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// Create appends a ledger row.
func (r *GormTransactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	if err := r.db.WithContext(ctx).Create(tx).Error; err != nil {
		return fmt.Errorf("Create: inserting transaction: %w", err)
	}
	return nil
}

// GetByID returns the ledger row, or nil when no such row exists.
func (r *GormTransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	var tx domain.Transaction
	err := r.db.WithContext(ctx).First(&tx, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return &tx, nil
}

// ListAll returns a page of the ledger, newest first.
func (r *GormTransactionRepository) ListAll(ctx context.Context, offset, limit int) ([]domain.Transaction, error) {
	var txs []domain.Transaction
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("ListAll: %w", err)
	}
	return txs, nil
}

// ListRecent returns rows created within the past given hours, newest first.
func (r *GormTransactionRepository) ListRecent(ctx context.Context, hours int) ([]domain.Transaction, error) {
	since := time.Now().Add(-time.Duration(hours) * time.Hour)
	var txs []domain.Transaction
	err := r.db.WithContext(ctx).
		Where("created_at >= ?", since).
		Order("created_at DESC").
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("ListRecent: %w", err)
	}
	return txs, nil
}

// ListByStatus returns all rows in the given status, newest first.
func (r *GormTransactionRepository) ListByStatus(ctx context.Context, status domain.TransactionStatus) ([]domain.Transaction, error) {
	var txs []domain.Transaction
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at DESC").
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("ListByStatus: %w", err)
	}
	return txs, nil
}

// ListByProduct returns all rows for the given product, newest first.
func (r *GormTransactionRepository) ListByProduct(ctx context.Context, productID string) ([]domain.Transaction, error) {
	var txs []domain.Transaction
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("ListByProduct: %w", err)
	}
	return txs, nil
}

// ListByIntent returns all rows carrying the given intent kind, newest first.
func (r *GormTransactionRepository) ListByIntent(ctx context.Context, kind domain.IntentKind) ([]domain.Transaction, error) {
	var txs []domain.Transaction
	err := r.db.WithContext(ctx).
		Where("intent = ?", kind).
		Order("created_at DESC").
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("ListByIntent: %w", err)
	}
	return txs, nil
}

// TotalSales sums total_price over successful rows, optionally restricted to
// rows created at or after since. The sum is computed in decimal arithmetic
// rather than SQL to stay exact across dialects.
func (r *GormTransactionRepository) TotalSales(ctx context.Context, since *time.Time) (decimal.Decimal, error) {
	q := r.db.WithContext(ctx).Where("status = ?", domain.StatusSuccess)
	if since != nil {
		q = q.Where("created_at >= ?", *since)
	}
	var txs []domain.Transaction
	if err := q.Find(&txs).Error; err != nil {
		return decimal.Zero, fmt.Errorf("TotalSales: %w", err)
	}
	total := decimal.Zero
	for _, tx := range txs {
		total = total.Add(tx.TotalPrice)
	}
	return total, nil
}

// DailySummary aggregates successful sales for the given calendar day in the
// server's local time zone.
func (r *GormTransactionRepository) DailySummary(ctx context.Context, date civil.Date) (*DailySummary, error) {
	startOfDay := date.In(time.Local)
	endOfDay := startOfDay.AddDate(0, 0, 1)

	var txs []domain.Transaction
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at >= ? AND created_at < ?", domain.StatusSuccess, startOfDay, endOfDay).
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("DailySummary: %w", err)
	}

	summary := &DailySummary{Date: date, TotalRevenue: decimal.Zero}
	for _, tx := range txs {
		summary.TransactionCount++
		summary.TotalRevenue = summary.TotalRevenue.Add(tx.TotalPrice)
		summary.TotalItemsSold += tx.Quantity
	}
	return summary, nil
}

// UpdateStatus flips the status of a ledger row. It refuses to resurrect a
// terminal row: only pending rows can move to success or failed.
func (r *GormTransactionRepository) UpdateStatus(ctx context.Context, id string, status domain.TransactionStatus) error {
	res := r.db.WithContext(ctx).Model(&domain.Transaction{}).
		Where("id = ? AND status = ?", id, domain.StatusPending).
		Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("UpdateStatus: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("UpdateStatus: transaction %s not found or not pending", id)
	}
	return nil
}

// PopularProducts groups successful sales of the past days by product, sorted
// by quantity sold, best seller first.
func (r *GormTransactionRepository) PopularProducts(ctx context.Context, days int) ([]ProductSales, error) {
	since := time.Now().AddDate(0, 0, -days)
	var txs []domain.Transaction
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at >= ?", domain.StatusSuccess, since).
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("PopularProducts: %w", err)
	}

	byProduct := make(map[string]*ProductSales)
	for _, tx := range txs {
		sales, ok := byProduct[tx.ProductID]
		if !ok {
			sales = &ProductSales{ProductID: tx.ProductID, TotalRevenue: decimal.Zero}
			byProduct[tx.ProductID] = sales
		}
		sales.TotalQuantity += tx.Quantity
		sales.TotalRevenue = sales.TotalRevenue.Add(tx.TotalPrice)
		sales.TransactionCount++
	}

	result := make([]ProductSales, 0, len(byProduct))
	for _, sales := range byProduct {
		result = append(result, *sales)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].TotalQuantity != result[j].TotalQuantity {
			return result[i].TotalQuantity > result[j].TotalQuantity
		}
		return result[i].ProductID < result[j].ProductID
	})
	return result, nil
}

// HourlySalesPattern groups successful sales of the past days by hour of day,
// earliest hour first.
func (r *GormTransactionRepository) HourlySalesPattern(ctx context.Context, days int) ([]HourlySales, error) {
	since := time.Now().AddDate(0, 0, -days)
	var txs []domain.Transaction
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at >= ?", domain.StatusSuccess, since).
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("HourlySalesPattern: %w", err)
	}

	byHour := make(map[int]*HourlySales)
	for _, tx := range txs {
		hour := tx.CreatedAt.Hour()
		sales, ok := byHour[hour]
		if !ok {
			sales = &HourlySales{Hour: hour, TotalRevenue: decimal.Zero}
			byHour[hour] = sales
		}
		sales.TransactionCount++
		sales.TotalRevenue = sales.TotalRevenue.Add(tx.TotalPrice)
		sales.TotalItems += tx.Quantity
	}

	result := make([]HourlySales, 0, len(byHour))
	for _, sales := range byHour {
		result = append(result, *sales)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Hour < result[j].Hour })
	return result, nil
}
