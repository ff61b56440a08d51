package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/eldorado-books/bookstore-backend/internal/audit"
	booksvc "github.com/eldorado-books/bookstore-backend/internal/books"
	"github.com/eldorado-books/bookstore-backend/pkg/db/models"
	"github.com/eldorado-books/bookstore-backend/pkg/pagination"
)

type stubBookService struct {
	book *models.Book
	err  error

	createdInput  booksvc.CreateBookInput
	restockedQty  int
	restockedBook uuid.UUID
}

func (s *stubBookService) Create(ctx context.Context, actor audit.Actor, input booksvc.CreateBookInput) (*models.Book, error) {
	s.createdInput = input
	return s.book, s.err
}

func (s *stubBookService) Get(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	return s.book, s.err
}

func (s *stubBookService) List(ctx context.Context, params pagination.Params, filters booksvc.ListFilters) (*booksvc.BookList, error) {
	return &booksvc.BookList{}, s.err
}

func (s *stubBookService) Update(ctx context.Context, actor audit.Actor, id uuid.UUID, input booksvc.UpdateBookInput) (*models.Book, error) {
	return s.book, s.err
}

func (s *stubBookService) Delete(ctx context.Context, actor audit.Actor, id uuid.UUID) error {
	return s.err
}

func (s *stubBookService) DecrementStock(ctx context.Context, tx *gorm.DB, actor audit.Actor, bookID uuid.UUID, qty int) (*models.Book, error) {
	return s.book, s.err
}

func (s *stubBookService) RestockQuantity(ctx context.Context, tx *gorm.DB, actor audit.Actor, bookID uuid.UUID, qty int) (*models.Book, error) {
	s.restockedBook = bookID
	s.restockedQty = qty
	return s.book, s.err
}

func TestBookCreateParsesPrice(t *testing.T) {
	svc := &stubBookService{book: &models.Book{ID: uuid.New(), Title: "Dune"}}
	handler := BookCreate(svc, nil)

	body := []byte(`{"title":"Dune","author":"Frank Herbert","price":"12.50","quantity":5}`)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/books", body))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if !svc.createdInput.Price.Equal(decimal.NewFromFloat(12.50)) {
		t.Fatalf("expected parsed price 12.50, got %s", svc.createdInput.Price)
	}
	if svc.createdInput.Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", svc.createdInput.Quantity)
	}
}

func TestBookCreateRejectsBadPrice(t *testing.T) {
	handler := BookCreate(&stubBookService{}, nil)

	body := []byte(`{"title":"Dune","author":"Frank Herbert","price":"free","quantity":5}`)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/books", body))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestBookCreateRejectsNegativeQuantity(t *testing.T) {
	handler := BookCreate(&stubBookService{}, nil)

	body := []byte(`{"title":"Dune","author":"Frank Herbert","price":"12.50","quantity":-1}`)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/books", body))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestBookRestock(t *testing.T) {
	bookID := uuid.New()
	svc := &stubBookService{book: &models.Book{ID: bookID, Title: "Dune", Quantity: 9}}

	router := chi.NewRouter()
	router.Post("/api/v1/books/{bookId}/restock", BookRestock(svc, nil))

	body := []byte(`{"quantity":4}`)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, authedRequest(http.MethodPost, fmt.Sprintf("/api/v1/books/%s/restock", bookID), body))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.restockedBook != bookID || svc.restockedQty != 4 {
		t.Fatalf("expected restock of 4 on %s, got %d on %s", bookID, svc.restockedQty, svc.restockedBook)
	}

	var envelope struct {
		Data models.Book `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Quantity != 9 {
		t.Fatalf("expected updated book in payload, got %+v", envelope.Data)
	}
}
