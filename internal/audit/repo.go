package audit

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/eldorado-books/bookstore-backend/pkg/db/models"
	"github.com/eldorado-books/bookstore-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an audit repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.AuditEntry) (*models.AuditEntry, error) {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters EntryFilters) (*EntryList, error) {
	query := r.db.WithContext(ctx).Model(&models.AuditEntry{})
	if filters.BookID != nil {
		query = query.Where("book_id = ?", *filters.BookID)
	}
	if filters.Action != nil {
		query = query.Where("action = ?", *filters.Action)
	}
	return r.page(query, params)
}

func (r *repository) ListByBook(ctx context.Context, bookID uuid.UUID, params pagination.Params) (*EntryList, error) {
	query := r.db.WithContext(ctx).
		Model(&models.AuditEntry{}).
		Where("book_id = ?", bookID)
	return r.page(query, params)
}

func (r *repository) page(query *gorm.DB, params pagination.Params) (*EntryList, error) {
	cursor, err := pagination.Parse(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at, id) < (?, ?)",
			cursor.CreatedAt, cursor.ID,
		)
	}

	limit := pagination.NormalizeLimit(params.Limit)
	var entries []models.AuditEntry
	err = query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}

	list := &EntryList{Entries: entries}
	if len(entries) > limit {
		list.Entries = entries[:limit]
		last := list.Entries[limit-1]
		list.NextCursor = pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}.Encode()
	}
	return list, nil
}
