package reports

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalesReportInput bounds a sales report to a time window. Zero values mean
// an open end on that side.
type SalesReportInput struct {
	From time.Time
	To   time.Time
}

// TitleSales is the sold quantity and revenue for one book title.
type TitleSales struct {
	BookID   uuid.UUID       `json:"book_id"`
	Title    string          `json:"title"`
	Quantity int             `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// SalesReport summarises completed orders within a window.
type SalesReport struct {
	From       time.Time       `json:"from"`
	To         time.Time       `json:"to"`
	OrderCount int             `json:"order_count"`
	Revenue    decimal.Decimal `json:"revenue"`
	ByTitle    []TitleSales    `json:"by_title"`
}

// LowStockBook is a title at or below the restock threshold.
type LowStockBook struct {
	BookID   uuid.UUID `json:"book_id"`
	Title    string    `json:"title"`
	Author   string    `json:"author"`
	Quantity int       `json:"quantity"`
}

// InventoryReport summarises the current catalogue.
type InventoryReport struct {
	TitleCount        int             `json:"title_count"`
	UnitCount         int             `json:"unit_count"`
	StockValue        decimal.Decimal `json:"stock_value"`
	LowStockThreshold int             `json:"low_stock_threshold"`
	LowStock          []LowStockBook  `json:"low_stock"`
}
