package audit

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/eldorado-books/bookstore-backend/pkg/db/models"
	"github.com/eldorado-books/bookstore-backend/pkg/enums"
	pkgerrors "github.com/eldorado-books/bookstore-backend/pkg/errors"
	"github.com/eldorado-books/bookstore-backend/pkg/pagination"
)

type stubAuditRepo struct {
	created []*models.AuditEntry
	listErr error
}

func (s *stubAuditRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubAuditRepo) Create(ctx context.Context, entry *models.AuditEntry) (*models.AuditEntry, error) {
	s.created = append(s.created, entry)
	return entry, nil
}

func (s *stubAuditRepo) List(ctx context.Context, params pagination.Params, filters EntryFilters) (*EntryList, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]models.AuditEntry, 0, len(s.created))
	for _, entry := range s.created {
		out = append(out, *entry)
	}
	return &EntryList{Entries: out}, nil
}

func (s *stubAuditRepo) ListByBook(ctx context.Context, bookID uuid.UUID, params pagination.Params) (*EntryList, error) {
	var out []models.AuditEntry
	for _, entry := range s.created {
		if entry.BookID == bookID {
			out = append(out, *entry)
		}
	}
	return &EntryList{Entries: out}, nil
}

func sampleBook() *models.Book {
	genre := "Fiction"
	return &models.Book{
		ID:       uuid.New(),
		Title:    "The Name of the Rose",
		Author:   "Umberto Eco",
		Genre:    &genre,
		Price:    decimal.NewFromFloat(18.50),
		Quantity: 5,
	}
}

func testActor() Actor {
	return Actor{ID: uuid.New(), Name: "Morgan Teller"}
}

func TestRecordUpdateCapturesDiff(t *testing.T) {
	repo := &stubAuditRepo{}
	svc, err := NewService(repo, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	before := sampleBook()
	after := *before
	after.Quantity = 2
	after.Price = decimal.NewFromFloat(19.99)

	err = svc.Record(context.Background(), nil, RecordInput{
		Action: enums.AuditActionUpdate,
		Before: before,
		After:  &after,
		Actor:  testActor(),
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	if len(repo.created) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(repo.created))
	}
	entry := repo.created[0]
	if entry.BookID != before.ID {
		t.Fatal("entry should reference the mutated book")
	}
	if entry.Action != enums.AuditActionUpdate {
		t.Fatalf("unexpected action %s", entry.Action)
	}
	if got := []string(entry.ChangedFields); len(got) != 2 || got[0] != "price" || got[1] != "quantity" {
		t.Fatalf("unexpected changed fields %v", got)
	}

	var beforeSnap, afterSnap map[string]any
	if err := json.Unmarshal(entry.Before, &beforeSnap); err != nil {
		t.Fatalf("unmarshal before: %v", err)
	}
	if err := json.Unmarshal(entry.After, &afterSnap); err != nil {
		t.Fatalf("unmarshal after: %v", err)
	}
	if beforeSnap["quantity"].(float64) != 5 || afterSnap["quantity"].(float64) != 2 {
		t.Fatalf("snapshots should capture quantity change: %v -> %v", beforeSnap["quantity"], afterSnap["quantity"])
	}
	if afterSnap["price"].(string) != "19.99" {
		t.Fatalf("price should be fixed-point formatted, got %v", afterSnap["price"])
	}
}

func TestRecordInsertAndDeleteListAllFields(t *testing.T) {
	repo := &stubAuditRepo{}
	svc, _ := NewService(repo, nil)
	book := sampleBook()

	if err := svc.Record(context.Background(), nil, RecordInput{
		Action: enums.AuditActionInsert,
		After:  book,
		Actor:  testActor(),
	}); err != nil {
		t.Fatalf("record insert: %v", err)
	}
	if err := svc.Record(context.Background(), nil, RecordInput{
		Action: enums.AuditActionDelete,
		Before: book,
		Actor:  testActor(),
	}); err != nil {
		t.Fatalf("record delete: %v", err)
	}

	insert, del := repo.created[0], repo.created[1]
	if len(insert.ChangedFields) != len(allFields) || len(del.ChangedFields) != len(allFields) {
		t.Fatal("insert and delete should list every field")
	}
	if insert.Before != nil {
		t.Fatal("insert should have no before snapshot")
	}
	if del.After != nil {
		t.Fatal("delete should have no after snapshot")
	}
}

func TestRecordRejectsBadInput(t *testing.T) {
	repo := &stubAuditRepo{}
	svc, _ := NewService(repo, nil)

	err := svc.Record(context.Background(), nil, RecordInput{
		Action: enums.AuditAction("TRUNCATE"),
		After:  sampleBook(),
		Actor:  testActor(),
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	err = svc.Record(context.Background(), nil, RecordInput{
		Action: enums.AuditActionInsert,
		After:  sampleBook(),
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error for missing actor, got %v", err)
	}

	err = svc.Record(context.Background(), nil, RecordInput{
		Action: enums.AuditActionInsert,
		Actor:  testActor(),
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for missing snapshots, got %v", err)
	}
}

func TestListByBookRequiresID(t *testing.T) {
	svc, _ := NewService(&stubAuditRepo{}, nil)
	_, err := svc.ListByBook(context.Background(), uuid.Nil, pagination.Params{})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
