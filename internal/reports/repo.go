package reports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/eldorado-books/bookstore-backend/pkg/db/models"
	"github.com/eldorado-books/bookstore-backend/pkg/enums"
)

type salesTotalsRow struct {
	OrderCount int
	Revenue    decimal.Decimal
}

type titleSalesRow struct {
	BookID   uuid.UUID
	Title    string
	Quantity int
	Revenue  decimal.Decimal
}

type inventoryTotalsRow struct {
	TitleCount int
	UnitCount  int
	StockValue decimal.Decimal
}

type lowStockRow struct {
	ID       uuid.UUID
	Title    string
	Author   string
	Quantity int
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a reports repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) completedOrders(ctx context.Context, from, to time.Time) *gorm.DB {
	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("orders.status = ?", enums.OrderStatusCompleted)
	if !from.IsZero() {
		query = query.Where("orders.completed_at >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("orders.completed_at < ?", to)
	}
	return query
}

func (r *repository) SalesTotals(ctx context.Context, from, to time.Time) (*salesTotalsRow, error) {
	var row salesTotalsRow
	err := r.completedOrders(ctx, from, to).
		Select("COUNT(*) AS order_count, COALESCE(SUM(orders.total_price), 0) AS revenue").
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) SalesByTitle(ctx context.Context, from, to time.Time) ([]titleSalesRow, error) {
	var rows []titleSalesRow
	err := r.completedOrders(ctx, from, to).
		Select("order_line_items.book_id AS book_id, order_line_items.title AS title, "+
			"SUM(order_line_items.quantity) AS quantity, SUM(order_line_items.line_total) AS revenue").
		Joins("JOIN order_line_items ON order_line_items.order_id = orders.id").
		Group("order_line_items.book_id, order_line_items.title").
		Order("quantity DESC, title ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) InventoryTotals(ctx context.Context) (*inventoryTotalsRow, error) {
	var row inventoryTotalsRow
	err := r.db.WithContext(ctx).
		Model(&models.Book{}).
		Select("COUNT(*) AS title_count, COALESCE(SUM(quantity), 0) AS unit_count, " +
			"COALESCE(SUM(price * quantity), 0) AS stock_value").
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) LowStock(ctx context.Context, threshold int) ([]lowStockRow, error) {
	var rows []lowStockRow
	err := r.db.WithContext(ctx).
		Model(&models.Book{}).
		Select("id, title, author, quantity").
		Where("quantity <= ?", threshold).
		Order("quantity ASC, title ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
