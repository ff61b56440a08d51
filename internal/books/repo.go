package books

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/eldorado-books/bookstore-backend/pkg/db/models"
	"github.com/eldorado-books/bookstore-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a books repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, book *models.Book) (*models.Book, error) {
	if err := r.db.WithContext(ctx).Create(book).Error; err != nil {
		return nil, err
	}
	return book, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	var book models.Book
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&book).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters ListFilters) (*BookList, error) {
	query := r.db.WithContext(ctx).Model(&models.Book{})

	if search := strings.TrimSpace(filters.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(author) LIKE ?", pattern, pattern)
	}
	if genre := strings.TrimSpace(filters.Genre); genre != "" {
		query = query.Where("genre = ?", genre)
	}

	cursor, err := pagination.Parse(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	limit := pagination.NormalizeLimit(params.Limit)
	var books []models.Book
	err = query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&books).Error
	if err != nil {
		return nil, err
	}

	list := &BookList{Books: books}
	if len(books) > limit {
		list.Books = books[:limit]
		last := list.Books[limit-1]
		list.NextCursor = pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}.Encode()
	}
	return list, nil
}

func (r *repository) Save(ctx context.Context, book *models.Book) error {
	return r.db.WithContext(ctx).Save(book).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Book{}).Error
}

func (r *repository) DecrementQuantity(ctx context.Context, id uuid.UUID, qty int) (int64, error) {
	result := r.db.WithContext(ctx).Exec(
		"UPDATE books SET quantity = quantity - ?, updated_at = ? WHERE id = ? AND quantity >= ?",
		qty, nowUTC(), id, qty,
	)
	return result.RowsAffected, result.Error
}

func (r *repository) IncrementQuantity(ctx context.Context, id uuid.UUID, qty int) (int64, error) {
	result := r.db.WithContext(ctx).Exec(
		"UPDATE books SET quantity = quantity + ?, updated_at = ? WHERE id = ?",
		qty, nowUTC(), id,
	)
	return result.RowsAffected, result.Error
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
