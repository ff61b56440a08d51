package reports

import (
	"context"
	"time"
)

// Repository runs the aggregate queries behind the reports.
type Repository interface {
	SalesTotals(ctx context.Context, from, to time.Time) (*salesTotalsRow, error)
	SalesByTitle(ctx context.Context, from, to time.Time) ([]titleSalesRow, error)
	InventoryTotals(ctx context.Context) (*inventoryTotalsRow, error)
	LowStock(ctx context.Context, threshold int) ([]lowStockRow, error)
}
