package books

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/eldorado-books/bookstore-backend/internal/audit"
	"github.com/eldorado-books/bookstore-backend/pkg/db/models"
	"github.com/eldorado-books/bookstore-backend/pkg/enums"
	pkgerrors "github.com/eldorado-books/bookstore-backend/pkg/errors"
	"github.com/eldorado-books/bookstore-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines catalog operations. Every mutation lands an audit entry in
// the same transaction.
type Service interface {
	Create(ctx context.Context, actor audit.Actor, input CreateBookInput) (*models.Book, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Book, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*BookList, error)
	Update(ctx context.Context, actor audit.Actor, id uuid.UUID, input UpdateBookInput) (*models.Book, error)
	Delete(ctx context.Context, actor audit.Actor, id uuid.UUID) error
	StockAdjuster
}

// StockAdjuster is the in-transaction surface order placement depends on.
type StockAdjuster interface {
	DecrementStock(ctx context.Context, tx *gorm.DB, actor audit.Actor, bookID uuid.UUID, qty int) (*models.Book, error)
	RestockQuantity(ctx context.Context, tx *gorm.DB, actor audit.Actor, bookID uuid.UUID, qty int) (*models.Book, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	recorder audit.Recorder
}

// NewService builds the catalog service with the required dependencies.
func NewService(repo Repository, tx txRunner, recorder audit.Recorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("books repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	return &service{repo: repo, tx: tx, recorder: recorder}, nil
}

func (s *service) Create(ctx context.Context, actor audit.Actor, input CreateBookInput) (*models.Book, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
	}
	if strings.TrimSpace(input.Author) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "author required")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be non-negative")
	}
	if input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be non-negative")
	}

	book := &models.Book{
		ID:        uuid.New(),
		Title:     strings.TrimSpace(input.Title),
		Author:    strings.TrimSpace(input.Author),
		Genre:     input.Genre,
		Publisher: input.Publisher,
		Price:     input.Price,
		Quantity:  input.Quantity,
		UpdatedBy: &actor.ID,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.repo.WithTx(tx).Create(ctx, book); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create book")
		}
		return s.recorder.Record(ctx, tx, audit.RecordInput{
			Action: enums.AuditActionInsert,
			After:  book,
			Actor:  actor,
		})
	})
	if err != nil {
		return nil, err
	}
	return book, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "book id required")
	}
	book, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load book")
	}
	return book, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) (*BookList, error) {
	list, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list books")
	}
	return list, nil
}

func (s *service) Update(ctx context.Context, actor audit.Actor, id uuid.UUID, input UpdateBookInput) (*models.Book, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "book id required")
	}
	if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title cannot be blank")
	}
	if input.Author != nil && strings.TrimSpace(*input.Author) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "author cannot be blank")
	}
	if input.Price != nil && input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be non-negative")
	}
	if input.Quantity != nil && *input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be non-negative")
	}

	var updated *models.Book
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		before, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load book")
		}

		after := *before
		applyUpdate(&after, input)
		after.UpdatedBy = &actor.ID

		if len(audit.ChangedFields(before, &after)) == 0 {
			updated = before
			return nil
		}

		if err := repo.Save(ctx, &after); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update book")
		}
		updated = &after

		return s.recorder.Record(ctx, tx, audit.RecordInput{
			Action: enums.AuditActionUpdate,
			Before: before,
			After:  &after,
			Actor:  actor,
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, actor audit.Actor, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "book id required")
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		before, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load book")
		}

		if err := repo.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete book")
		}

		return s.recorder.Record(ctx, tx, audit.RecordInput{
			Action: enums.AuditActionDelete,
			Before: before,
			Actor:  actor,
		})
	})
}

// DecrementStock applies a guarded quantity decrement inside the caller's
// transaction. The UPDATE only matches when enough stock remains, so two
// concurrent orders cannot drive the quantity negative.
func (s *service) DecrementStock(ctx context.Context, tx *gorm.DB, actor audit.Actor, bookID uuid.UUID, qty int) (*models.Book, error) {
	if qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	repo := s.repo.WithTx(tx)

	before, err := repo.FindByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load book")
	}

	affected, err := repo.DecrementQuantity(ctx, bookID, qty)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient stock").
			WithDetails(InsufficientStockDetails{
				BookID:    bookID.String(),
				Title:     before.Title,
				Requested: qty,
				Available: before.Quantity,
			})
	}

	after := *before
	after.Quantity = before.Quantity - qty
	if err := s.recorder.Record(ctx, tx, audit.RecordInput{
		Action: enums.AuditActionUpdate,
		Before: before,
		After:  &after,
		Actor:  actor,
	}); err != nil {
		return nil, err
	}
	return &after, nil
}

// RestockQuantity adds stock back, either inside the caller's transaction or
// in one of its own when tx is nil.
func (s *service) RestockQuantity(ctx context.Context, tx *gorm.DB, actor audit.Actor, bookID uuid.UUID, qty int) (*models.Book, error) {
	if qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if tx != nil {
		return s.restock(ctx, tx, actor, bookID, qty)
	}
	var book *models.Book
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var innerErr error
		book, innerErr = s.restock(ctx, tx, actor, bookID, qty)
		return innerErr
	})
	if err != nil {
		return nil, err
	}
	return book, nil
}

func (s *service) restock(ctx context.Context, tx *gorm.DB, actor audit.Actor, bookID uuid.UUID, qty int) (*models.Book, error) {
	repo := s.repo.WithTx(tx)

	before, err := repo.FindByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load book")
	}

	if _, err := repo.IncrementQuantity(ctx, bookID, qty); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restock quantity")
	}

	after := *before
	after.Quantity = before.Quantity + qty
	if err := s.recorder.Record(ctx, tx, audit.RecordInput{
		Action: enums.AuditActionUpdate,
		Before: before,
		After:  &after,
		Actor:  actor,
	}); err != nil {
		return nil, err
	}
	return &after, nil
}

func applyUpdate(book *models.Book, input UpdateBookInput) {
	if input.Title != nil {
		book.Title = strings.TrimSpace(*input.Title)
	}
	if input.Author != nil {
		book.Author = strings.TrimSpace(*input.Author)
	}
	if input.Genre != nil {
		book.Genre = input.Genre
	}
	if input.Publisher != nil {
		book.Publisher = input.Publisher
	}
	if input.Price != nil {
		book.Price = *input.Price
	}
	if input.Quantity != nil {
		book.Quantity = *input.Quantity
	}
}
