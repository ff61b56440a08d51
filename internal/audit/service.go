package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/eldorado-books/bookstore-backend/pkg/db/models"
	"github.com/eldorado-books/bookstore-backend/pkg/enums"
	pkgerrors "github.com/eldorado-books/bookstore-backend/pkg/errors"
	"github.com/eldorado-books/bookstore-backend/pkg/metrics"
	"github.com/eldorado-books/bookstore-backend/pkg/pagination"
)

// Actor identifies the staff member behind a recorded mutation.
type Actor struct {
	ID   uuid.UUID
	Name string
}

// RecordInput captures one book mutation for the trail. Before is nil on
// insert, After is nil on delete.
type RecordInput struct {
	Action enums.AuditAction
	Before *models.Book
	After  *models.Book
	Actor  Actor
}

// Recorder is the write-side surface other services depend on. Record must be
// called with the same transaction that performs the mutation so the entry
// and the change commit or roll back together.
type Recorder interface {
	Record(ctx context.Context, tx *gorm.DB, input RecordInput) error
}

// Service exposes the audit trail.
type Service interface {
	Recorder
	List(ctx context.Context, params pagination.Params, filters EntryFilters) (*EntryList, error)
	ListByBook(ctx context.Context, bookID uuid.UUID, params pagination.Params) (*EntryList, error)
}

type service struct {
	repo    Repository
	metrics *metrics.StoreMetrics
}

// NewService builds the audit service.
func NewService(repo Repository, storeMetrics *metrics.StoreMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("audit repository required")
	}
	return &service{repo: repo, metrics: storeMetrics}, nil
}

func (s *service) Record(ctx context.Context, tx *gorm.DB, input RecordInput) error {
	if !input.Action.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid audit action")
	}
	if input.Actor.ID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}

	entry, err := buildEntry(input)
	if err != nil {
		return err
	}

	if _, err := s.repo.WithTx(tx).Create(ctx, entry); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write audit entry")
	}
	s.metrics.IncAuditEntry(input.Action.String())
	return nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters EntryFilters) (*EntryList, error) {
	list, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list audit entries")
	}
	return list, nil
}

func (s *service) ListByBook(ctx context.Context, bookID uuid.UUID, params pagination.Params) (*EntryList, error) {
	if bookID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "book id required")
	}
	list, err := s.repo.ListByBook(ctx, bookID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list audit entries for book")
	}
	return list, nil
}

func buildEntry(input RecordInput) (*models.AuditEntry, error) {
	subject := input.After
	if subject == nil {
		subject = input.Before
	}
	if subject == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "audit entry requires a before or after snapshot")
	}

	entry := &models.AuditEntry{
		ID:            uuid.New(),
		BookID:        subject.ID,
		Action:        input.Action,
		ChangedFields: pq.StringArray(ChangedFields(input.Before, input.After)),
		ActorID:       input.Actor.ID,
		ActorName:     input.Actor.Name,
	}

	if input.Before != nil {
		raw, err := json.Marshal(snapshot(input.Before))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal before snapshot")
		}
		entry.Before = raw
	}
	if input.After != nil {
		raw, err := json.Marshal(snapshot(input.After))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal after snapshot")
		}
		entry.After = raw
	}
	return entry, nil
}

type bookSnapshot struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Genre     *string   `json:"genre,omitempty"`
	Publisher *string   `json:"publisher,omitempty"`
	Price     string    `json:"price"`
	Quantity  int       `json:"quantity"`
}

func snapshot(book *models.Book) bookSnapshot {
	return bookSnapshot{
		ID:        book.ID,
		Title:     book.Title,
		Author:    book.Author,
		Genre:     book.Genre,
		Publisher: book.Publisher,
		Price:     book.Price.StringFixed(2),
		Quantity:  book.Quantity,
	}
}

// ChangedFields diffs two snapshots field by field. Inserts and deletes list
// every populated field of the surviving snapshot.
func ChangedFields(before, after *models.Book) []string {
	switch {
	case before == nil && after == nil:
		return nil
	case before == nil:
		return allFields
	case after == nil:
		return allFields
	}

	var changed []string
	if before.Title != after.Title {
		changed = append(changed, "title")
	}
	if before.Author != after.Author {
		changed = append(changed, "author")
	}
	if !equalStringPtr(before.Genre, after.Genre) {
		changed = append(changed, "genre")
	}
	if !equalStringPtr(before.Publisher, after.Publisher) {
		changed = append(changed, "publisher")
	}
	if !before.Price.Equal(after.Price) {
		changed = append(changed, "price")
	}
	if before.Quantity != after.Quantity {
		changed = append(changed, "quantity")
	}
	return changed
}

var allFields = []string{"title", "author", "genre", "publisher", "price", "quantity"}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
