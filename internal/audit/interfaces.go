package audit

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/eldorado-books/bookstore-backend/pkg/db/models"
	"github.com/eldorado-books/bookstore-backend/pkg/pagination"
)

// Repository defines persistence operations for the append-only audit trail.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.AuditEntry) (*models.AuditEntry, error)
	List(ctx context.Context, params pagination.Params, filters EntryFilters) (*EntryList, error)
	ListByBook(ctx context.Context, bookID uuid.UUID, params pagination.Params) (*EntryList, error)
}
