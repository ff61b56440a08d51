package books

import (
	"github.com/shopspring/decimal"

	"github.com/eldorado-books/bookstore-backend/pkg/db/models"
)

// ListFilters narrows catalog listings. Search matches title or author.
type ListFilters struct {
	Search string
	Genre  string
}

// BookList is one page of books plus the cursor for the next page.
type BookList struct {
	Books      []models.Book `json:"books"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

// CreateBookInput carries the fields required to add a title.
type CreateBookInput struct {
	Title     string
	Author    string
	Genre     *string
	Publisher *string
	Price     decimal.Decimal
	Quantity  int
}

// UpdateBookInput carries a partial update. Nil fields are left untouched.
type UpdateBookInput struct {
	Title     *string
	Author    *string
	Genre     *string
	Publisher *string
	Price     *decimal.Decimal
	Quantity  *int
}

// InsufficientStockDetails is attached to stock failures so callers can see
// what was requested versus what remains.
type InsufficientStockDetails struct {
	BookID    string `json:"book_id"`
	Title     string `json:"title,omitempty"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}
