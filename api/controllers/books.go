package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/eldorado-books/bookstore-backend/api/responses"
	"github.com/eldorado-books/bookstore-backend/api/validators"
	booksvc "github.com/eldorado-books/bookstore-backend/internal/books"
	pkgerrors "github.com/eldorado-books/bookstore-backend/pkg/errors"
	"github.com/eldorado-books/bookstore-backend/pkg/logger"
)

// BookCreate adds a title to the catalogue.
func BookCreate(svc booksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "book service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createBookRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		book, err := svc.Create(r.Context(), actor, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, book)
	}
}

// BookDetail fetches one title by id.
func BookDetail(svc booksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "book service unavailable"))
			return
		}

		id, err := validators.PathUUID(chi.URLParam(r, "bookId"), "bookId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		book, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, book)
	}
}

// BookList returns a page of the catalogue.
func BookList(svc booksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "book service unavailable"))
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := booksvc.ListFilters{
			Search: strings.TrimSpace(r.URL.Query().Get("search")),
			Genre:  strings.TrimSpace(r.URL.Query().Get("genre")),
		}

		list, err := svc.List(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// BookUpdate applies a partial update to a title.
func BookUpdate(svc booksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "book service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := validators.PathUUID(chi.URLParam(r, "bookId"), "bookId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateBookRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toUpdateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		book, err := svc.Update(r.Context(), actor, id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, book)
	}
}

// BookDelete removes a title from the catalogue.
func BookDelete(svc booksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "book service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := validators.PathUUID(chi.URLParam(r, "bookId"), "bookId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), actor, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// BookRestock raises a title's quantity by a positive amount.
func BookRestock(svc booksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "book service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := validators.PathUUID(chi.URLParam(r, "bookId"), "bookId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload restockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		book, err := svc.RestockQuantity(r.Context(), nil, actor, id, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, book)
	}
}

type createBookRequest struct {
	Title     string  `json:"title" validate:"required"`
	Author    string  `json:"author" validate:"required"`
	Genre     *string `json:"genre,omitempty"`
	Publisher *string `json:"publisher,omitempty"`
	Price     string  `json:"price" validate:"required"`
	Quantity  int     `json:"quantity" validate:"min=0"`
}

type updateBookRequest struct {
	Title     *string `json:"title,omitempty"`
	Author    *string `json:"author,omitempty"`
	Genre     *string `json:"genre,omitempty"`
	Publisher *string `json:"publisher,omitempty"`
	Price     *string `json:"price,omitempty"`
	Quantity  *int    `json:"quantity,omitempty" validate:"omitempty,min=0"`
}

type restockRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

func (req createBookRequest) toCreateInput() (booksvc.CreateBookInput, error) {
	price, err := parsePrice(req.Price)
	if err != nil {
		return booksvc.CreateBookInput{}, err
	}
	return booksvc.CreateBookInput{
		Title:     req.Title,
		Author:    req.Author,
		Genre:     req.Genre,
		Publisher: req.Publisher,
		Price:     price,
		Quantity:  req.Quantity,
	}, nil
}

func (req updateBookRequest) toUpdateInput() (booksvc.UpdateBookInput, error) {
	input := booksvc.UpdateBookInput{
		Title:     req.Title,
		Author:    req.Author,
		Genre:     req.Genre,
		Publisher: req.Publisher,
		Quantity:  req.Quantity,
	}
	if req.Price != nil {
		price, err := parsePrice(*req.Price)
		if err != nil {
			return booksvc.UpdateBookInput{}, err
		}
		input.Price = &price
	}
	return input, nil
}

func parsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price")
	}
	if price.IsNegative() {
		return decimal.Decimal{}, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	return price, nil
}
