package reports

import (
	"context"
	"fmt"

	"github.com/eldorado-books/bookstore-backend/pkg/config"
	pkgerrors "github.com/eldorado-books/bookstore-backend/pkg/errors"
)

// Service produces sales and inventory reports.
type Service interface {
	Sales(ctx context.Context, input SalesReportInput) (*SalesReport, error)
	Inventory(ctx context.Context) (*InventoryReport, error)
}

type service struct {
	repo      Repository
	threshold int
}

// NewService builds the reports service.
func NewService(repo Repository, cfg config.InventoryConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reports repository required")
	}
	threshold := cfg.LowStockThreshold
	if threshold < 0 {
		threshold = 0
	}
	return &service{repo: repo, threshold: threshold}, nil
}

func (s *service) Sales(ctx context.Context, input SalesReportInput) (*SalesReport, error) {
	if !input.From.IsZero() && !input.To.IsZero() && input.To.Before(input.From) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "report window end precedes start")
	}

	totals, err := s.repo.SalesTotals(ctx, input.From, input.To)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sales totals")
	}
	byTitle, err := s.repo.SalesByTitle(ctx, input.From, input.To)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sales by title")
	}

	report := &SalesReport{
		From:       input.From,
		To:         input.To,
		OrderCount: totals.OrderCount,
		Revenue:    totals.Revenue,
		ByTitle:    make([]TitleSales, 0, len(byTitle)),
	}
	for _, row := range byTitle {
		report.ByTitle = append(report.ByTitle, TitleSales{
			BookID:   row.BookID,
			Title:    row.Title,
			Quantity: row.Quantity,
			Revenue:  row.Revenue,
		})
	}
	return report, nil
}

func (s *service) Inventory(ctx context.Context) (*InventoryReport, error) {
	totals, err := s.repo.InventoryTotals(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory totals")
	}
	low, err := s.repo.LowStock(ctx, s.threshold)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load low stock titles")
	}

	report := &InventoryReport{
		TitleCount:        totals.TitleCount,
		UnitCount:         totals.UnitCount,
		StockValue:        totals.StockValue,
		LowStockThreshold: s.threshold,
		LowStock:          make([]LowStockBook, 0, len(low)),
	}
	for _, row := range low {
		report.LowStock = append(report.LowStock, LowStockBook{
			BookID:   row.ID,
			Title:    row.Title,
			Author:   row.Author,
			Quantity: row.Quantity,
		})
	}
	return report, nil
}
