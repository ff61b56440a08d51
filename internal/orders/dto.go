package orders

import (
	"github.com/google/uuid"

	"github.com/eldorado-books/bookstore-backend/internal/audit"
	"github.com/eldorado-books/bookstore-backend/pkg/db/models"
	"github.com/eldorado-books/bookstore-backend/pkg/enums"
)

// LineInput is one requested title within an order.
type LineInput struct {
	BookID   uuid.UUID
	Quantity int
}

// PlaceOrderInput carries everything needed to place an order. Status
// defaults to Completed, which decrements stock immediately; Pending defers
// the decrement until the order is completed.
type PlaceOrderInput struct {
	CustomerID uuid.UUID
	Staff      audit.Actor
	Items      []LineInput
	Status     *enums.OrderStatus
}

// ListFilters narrows order listings.
type ListFilters struct {
	CustomerID *uuid.UUID
	Status     *enums.OrderStatus
}

// OrderList is one page of orders plus the cursor for the next page.
type OrderList struct {
	Orders     []models.Order `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}
