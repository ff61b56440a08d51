package books

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/eldorado-books/bookstore-backend/pkg/db/models"
	"github.com/eldorado-books/bookstore-backend/pkg/pagination"
)

func setupBooksTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS books (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  author TEXT NOT NULL,
  genre TEXT,
  publisher TEXT,
  price NUMERIC NOT NULL DEFAULT 0,
  quantity INTEGER NOT NULL DEFAULT 0,
  updated_by TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func seedBook(t *testing.T, repo Repository, title, author string, qty int) *models.Book {
	t.Helper()
	book, err := repo.Create(context.Background(), &models.Book{
		ID:       uuid.New(),
		Title:    title,
		Author:   author,
		Price:    decimal.NewFromFloat(12.50),
		Quantity: qty,
	})
	require.NoError(t, err)
	return book
}

func TestDecrementQuantityGuard(t *testing.T) {
	repo := NewRepository(setupBooksTestDB(t))
	ctx := context.Background()
	book := seedBook(t, repo, "Dune", "Frank Herbert", 5)

	affected, err := repo.DecrementQuantity(ctx, book.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	reloaded, err := repo.FindByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.Quantity)

	// more than remains: zero rows touched, quantity unchanged
	affected, err = repo.DecrementQuantity(ctx, book.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	reloaded, err = repo.FindByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.Quantity)
}

func TestIncrementQuantity(t *testing.T) {
	repo := NewRepository(setupBooksTestDB(t))
	ctx := context.Background()
	book := seedBook(t, repo, "Dune", "Frank Herbert", 2)

	affected, err := repo.IncrementQuantity(ctx, book.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	reloaded, err := repo.FindByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, reloaded.Quantity)
}

func TestListSearchMatchesTitleAndAuthor(t *testing.T) {
	repo := NewRepository(setupBooksTestDB(t))
	ctx := context.Background()
	seedBook(t, repo, "Dune", "Frank Herbert", 5)
	seedBook(t, repo, "Hyperion", "Dan Simmons", 3)

	list, err := repo.List(ctx, pagination.Params{}, ListFilters{Search: "herbert"})
	require.NoError(t, err)
	require.Len(t, list.Books, 1)
	assert.Equal(t, "Dune", list.Books[0].Title)

	list, err = repo.List(ctx, pagination.Params{}, ListFilters{Search: "hyper"})
	require.NoError(t, err)
	require.Len(t, list.Books, 1)
	assert.Equal(t, "Hyperion", list.Books[0].Title)
}
