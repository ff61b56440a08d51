package books

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/eldorado-books/bookstore-backend/pkg/db/models"
	"github.com/eldorado-books/bookstore-backend/pkg/pagination"
)

// Repository defines persistence operations for the book catalog.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, book *models.Book) (*models.Book, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Book, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*BookList, error)
	Save(ctx context.Context, book *models.Book) error
	Delete(ctx context.Context, id uuid.UUID) error
	// DecrementQuantity applies a guarded decrement and reports how many rows
	// matched. Zero rows means the book is missing or understocked.
	DecrementQuantity(ctx context.Context, id uuid.UUID, qty int) (int64, error)
	IncrementQuantity(ctx context.Context, id uuid.UUID, qty int) (int64, error)
}
