package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/eldorado-books/bookstore-backend/internal/audit"
	"github.com/eldorado-books/bookstore-backend/internal/books"
	"github.com/eldorado-books/bookstore-backend/pkg/db/models"
	"github.com/eldorado-books/bookstore-backend/pkg/enums"
	pkgerrors "github.com/eldorado-books/bookstore-backend/pkg/errors"
	"github.com/eldorado-books/bookstore-backend/pkg/metrics"
	"github.com/eldorado-books/bookstore-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type customerStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
}

// Service defines order placement and lifecycle operations.
type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*models.Order, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error)
	UpdateStatus(ctx context.Context, actor audit.Actor, id uuid.UUID, status enums.OrderStatus) (*models.Order, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	stock     books.StockAdjuster
	customers customerStore
	metrics   *metrics.StoreMetrics
}

// NewService builds the orders service with the required dependencies.
func NewService(repo Repository, tx txRunner, stock books.StockAdjuster, customers customerStore, storeMetrics *metrics.StoreMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if stock == nil {
		return nil, fmt.Errorf("stock adjuster required")
	}
	if customers == nil {
		return nil, fmt.Errorf("customer store required")
	}
	return &service{
		repo:      repo,
		tx:        tx,
		stock:     stock,
		customers: customers,
		metrics:   storeMetrics,
	}, nil
}

// PlaceOrder runs the whole placement in one transaction: either every line
// is priced, stock-checked, and written, or nothing is.
func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*models.Order, error) {
	status := enums.OrderStatusCompleted
	if input.Status != nil {
		status = *input.Status
	}

	if err := validatePlaceOrder(input, status); err != nil {
		s.metrics.IncOrderFailed(failureReason(err))
		return nil, err
	}

	started := time.Now()
	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if _, err := s.customers.FindByID(ctx, input.CustomerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
		}

		orderID := uuid.New()
		total := decimal.Zero
		lineItems := make([]models.OrderLineItem, 0, len(input.Items))

		for _, item := range input.Items {
			var book *models.Book
			var err error
			if status == enums.OrderStatusCompleted {
				book, err = s.stock.DecrementStock(ctx, tx, input.Staff, item.BookID, item.Quantity)
			} else {
				book, err = repo.FindBook(ctx, item.BookID)
				if err != nil && errors.Is(err, gorm.ErrRecordNotFound) {
					err = pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
				}
			}
			if err != nil {
				return err
			}

			lineTotal := book.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
			lineItems = append(lineItems, models.OrderLineItem{
				ID:        uuid.New(),
				OrderID:   orderID,
				BookID:    book.ID,
				Title:     book.Title,
				UnitPrice: book.Price,
				Quantity:  item.Quantity,
				LineTotal: lineTotal,
			})
			total = total.Add(lineTotal)
		}

		created := &models.Order{
			ID:         orderID,
			CustomerID: input.CustomerID,
			StaffID:    input.Staff.ID,
			Status:     status,
			TotalPrice: total,
		}
		if status == enums.OrderStatusCompleted {
			now := time.Now().UTC()
			created.CompletedAt = &now
		}

		if _, err := repo.CreateOrder(ctx, created); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		if err := repo.CreateLineItems(ctx, lineItems); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order line items")
		}

		created.LineItems = lineItems
		order = created
		return nil
	})
	if err != nil {
		s.metrics.IncOrderFailed(failureReason(err))
		return nil, err
	}

	s.metrics.IncOrderPlaced(status.String())
	s.metrics.ObserveOrderDuration(status.String(), time.Since(started))
	return order, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error) {
	list, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return list, nil
}

// UpdateStatus moves a Pending order to Completed or Cancelled. Completing
// decrements stock under the same guarded rule as immediate placement.
func (s *service) UpdateStatus(ctx context.Context, actor audit.Actor, id uuid.UUID, status enums.OrderStatus) (*models.Order, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !status.IsValid() || status == enums.OrderStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status must be Completed or Cancelled")
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.Status != enums.OrderStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("order is already %s", order.Status))
		}

		updates := map[string]any{}
		if status == enums.OrderStatusCompleted {
			for _, item := range order.LineItems {
				if _, err := s.stock.DecrementStock(ctx, tx, actor, item.BookID, item.Quantity); err != nil {
					return err
				}
			}
			now := time.Now().UTC()
			updates["completed_at"] = now
			order.CompletedAt = &now
		}

		if err := repo.UpdateStatus(ctx, order.ID, status, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		order.Status = status
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func validatePlaceOrder(input PlaceOrderInput, status enums.OrderStatus) error {
	if input.CustomerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if input.Staff.ID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "staff identity missing")
	}
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one item")
	}
	if status != enums.OrderStatusPending && status != enums.OrderStatusCompleted {
		return pkgerrors.New(pkgerrors.CodeValidation, "orders can only be placed as Pending or Completed")
	}

	seen := make(map[uuid.UUID]struct{}, len(input.Items))
	for _, item := range input.Items {
		if item.BookID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "book id required on every line")
		}
		if item.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "line quantity must be positive")
		}
		if _, dup := seen[item.BookID]; dup {
			return pkgerrors.New(pkgerrors.CodeValidation, "duplicate book in order")
		}
		seen[item.BookID] = struct{}{}
	}
	return nil
}

func failureReason(err error) string {
	typed := pkgerrors.As(err)
	if typed == nil {
		return "internal"
	}
	switch typed.Code() {
	case pkgerrors.CodeValidation:
		return "validation"
	case pkgerrors.CodeUnauthorized:
		return "unauthorized"
	case pkgerrors.CodeStateConflict:
		return "insufficient_stock"
	case pkgerrors.CodeNotFound:
		switch typed.Message() {
		case "customer not found":
			return "unknown_customer"
		default:
			return "unknown_book"
		}
	default:
		return "dependency"
	}
}
