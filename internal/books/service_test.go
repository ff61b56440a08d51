package books

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/eldorado-books/bookstore-backend/internal/audit"
	"github.com/eldorado-books/bookstore-backend/pkg/db/models"
	"github.com/eldorado-books/bookstore-backend/pkg/enums"
	pkgerrors "github.com/eldorado-books/bookstore-backend/pkg/errors"
	"github.com/eldorado-books/bookstore-backend/pkg/pagination"
)

type stubBooksRepo struct {
	books   map[uuid.UUID]*models.Book
	deleted []uuid.UUID
}

func newStubBooksRepo(books ...*models.Book) *stubBooksRepo {
	repo := &stubBooksRepo{books: map[uuid.UUID]*models.Book{}}
	for _, book := range books {
		repo.books[book.ID] = book
	}
	return repo
}

func (s *stubBooksRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubBooksRepo) Create(ctx context.Context, book *models.Book) (*models.Book, error) {
	if book.ID == uuid.Nil {
		book.ID = uuid.New()
	}
	s.books[book.ID] = book
	return book, nil
}

func (s *stubBooksRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	book, ok := s.books[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *book
	return &copied, nil
}

func (s *stubBooksRepo) List(ctx context.Context, params pagination.Params, filters ListFilters) (*BookList, error) {
	out := make([]models.Book, 0, len(s.books))
	for _, book := range s.books {
		out = append(out, *book)
	}
	return &BookList{Books: out}, nil
}

func (s *stubBooksRepo) Save(ctx context.Context, book *models.Book) error {
	copied := *book
	s.books[book.ID] = &copied
	return nil
}

func (s *stubBooksRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(s.books, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubBooksRepo) DecrementQuantity(ctx context.Context, id uuid.UUID, qty int) (int64, error) {
	book, ok := s.books[id]
	if !ok || book.Quantity < qty {
		return 0, nil
	}
	book.Quantity -= qty
	return 1, nil
}

func (s *stubBooksRepo) IncrementQuantity(ctx context.Context, id uuid.UUID, qty int) (int64, error) {
	book, ok := s.books[id]
	if !ok {
		return 0, nil
	}
	book.Quantity += qty
	return 1, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubRecorder struct {
	inputs []audit.RecordInput
	err    error
}

func (s *stubRecorder) Record(ctx context.Context, tx *gorm.DB, input audit.RecordInput) error {
	if s.err != nil {
		return s.err
	}
	s.inputs = append(s.inputs, input)
	return nil
}

func testActor() audit.Actor {
	return audit.Actor{ID: uuid.New(), Name: "Morgan Teller"}
}

func newTestService(repo Repository, recorder audit.Recorder) Service {
	svc, err := NewService(repo, stubTxRunner{}, recorder)
	if err != nil {
		panic(err)
	}
	return svc
}

func catalogBook(qty int) *models.Book {
	return &models.Book{
		ID:       uuid.New(),
		Title:    "Dune",
		Author:   "Frank Herbert",
		Price:    decimal.NewFromFloat(12.99),
		Quantity: qty,
	}
}

func TestCreateValidatesAndAudits(t *testing.T) {
	repo := newStubBooksRepo()
	recorder := &stubRecorder{}
	svc := newTestService(repo, recorder)
	ctx := context.Background()

	book, err := svc.Create(ctx, testActor(), CreateBookInput{
		Title:    "  Dune  ",
		Author:   "Frank Herbert",
		Price:    decimal.NewFromFloat(12.99),
		Quantity: 5,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if book.Title != "Dune" {
		t.Fatalf("title should be trimmed, got %q", book.Title)
	}
	if len(recorder.inputs) != 1 || recorder.inputs[0].Action != enums.AuditActionInsert {
		t.Fatal("create should record an INSERT audit entry")
	}
	if recorder.inputs[0].Before != nil {
		t.Fatal("insert entry should have no before snapshot")
	}

	_, err = svc.Create(ctx, testActor(), CreateBookInput{Title: "x", Author: "y", Quantity: -1})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("negative quantity should be rejected, got %v", err)
	}

	_, err = svc.Create(ctx, testActor(), CreateBookInput{Author: "y"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("missing title should be rejected, got %v", err)
	}
}

func TestUpdateAuditsDiffAndSkipsNoops(t *testing.T) {
	book := catalogBook(5)
	repo := newStubBooksRepo(book)
	recorder := &stubRecorder{}
	svc := newTestService(repo, recorder)
	ctx := context.Background()

	qty := 9
	updated, err := svc.Update(ctx, testActor(), book.ID, UpdateBookInput{Quantity: &qty})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Quantity != 9 {
		t.Fatalf("expected quantity 9, got %d", updated.Quantity)
	}
	if len(recorder.inputs) != 1 || recorder.inputs[0].Action != enums.AuditActionUpdate {
		t.Fatal("update should record an UPDATE audit entry")
	}
	if recorder.inputs[0].Before.Quantity != 5 || recorder.inputs[0].After.Quantity != 9 {
		t.Fatal("audit snapshots should capture the quantity change")
	}

	// same value again: no write, no audit entry
	if _, err := svc.Update(ctx, testActor(), book.ID, UpdateBookInput{Quantity: &qty}); err != nil {
		t.Fatalf("noop update: %v", err)
	}
	if len(recorder.inputs) != 1 {
		t.Fatal("noop update should not record an audit entry")
	}

	negative := -1
	_, err = svc.Update(ctx, testActor(), book.ID, UpdateBookInput{Quantity: &negative})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("negative quantity should be rejected, got %v", err)
	}

	_, err = svc.Update(ctx, testActor(), uuid.New(), UpdateBookInput{Quantity: &qty})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unknown book should 404, got %v", err)
	}
}

func TestDeleteAuditsWithBeforeSnapshot(t *testing.T) {
	book := catalogBook(3)
	repo := newStubBooksRepo(book)
	recorder := &stubRecorder{}
	svc := newTestService(repo, recorder)

	if err := svc.Delete(context.Background(), testActor(), book.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(repo.deleted) != 1 {
		t.Fatal("expected the book to be deleted")
	}
	if len(recorder.inputs) != 1 || recorder.inputs[0].Action != enums.AuditActionDelete {
		t.Fatal("delete should record a DELETE audit entry")
	}
	if recorder.inputs[0].After != nil {
		t.Fatal("delete entry should have no after snapshot")
	}

	err := svc.Delete(context.Background(), testActor(), book.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("deleting a missing book should 404, got %v", err)
	}
}

func TestDecrementStockGuardsQuantity(t *testing.T) {
	book := catalogBook(5)
	repo := newStubBooksRepo(book)
	recorder := &stubRecorder{}
	svc := newTestService(repo, recorder)
	ctx := context.Background()

	after, err := svc.DecrementStock(ctx, nil, testActor(), book.ID, 3)
	if err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if after.Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", after.Quantity)
	}

	// not enough left now
	_, err = svc.DecrementStock(ctx, nil, testActor(), book.ID, 10)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected insufficient stock conflict, got %v", err)
	}
	details, ok := typed.Details().(InsufficientStockDetails)
	if !ok {
		t.Fatalf("expected stock details, got %T", typed.Details())
	}
	if details.Requested != 10 || details.Available != 2 {
		t.Fatalf("unexpected details %+v", details)
	}
	if repo.books[book.ID].Quantity != 2 {
		t.Fatal("failed decrement must not change stock")
	}

	_, err = svc.DecrementStock(ctx, nil, testActor(), uuid.New(), 1)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unknown book should 404, got %v", err)
	}

	_, err = svc.DecrementStock(ctx, nil, testActor(), book.ID, 0)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("non-positive quantity should be rejected, got %v", err)
	}
}

func TestRestockQuantity(t *testing.T) {
	book := catalogBook(2)
	repo := newStubBooksRepo(book)
	recorder := &stubRecorder{}
	svc := newTestService(repo, recorder)

	after, err := svc.RestockQuantity(context.Background(), nil, testActor(), book.ID, 3)
	if err != nil {
		t.Fatalf("restock: %v", err)
	}
	if after.Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", after.Quantity)
	}
	if len(recorder.inputs) != 1 || recorder.inputs[0].Action != enums.AuditActionUpdate {
		t.Fatal("restock should record an UPDATE audit entry")
	}
}
