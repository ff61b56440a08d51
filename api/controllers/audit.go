package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/eldorado-books/bookstore-backend/api/responses"
	"github.com/eldorado-books/bookstore-backend/api/validators"
	auditsvc "github.com/eldorado-books/bookstore-backend/internal/audit"
	"github.com/eldorado-books/bookstore-backend/pkg/enums"
	pkgerrors "github.com/eldorado-books/bookstore-backend/pkg/errors"
	"github.com/eldorado-books/bookstore-backend/pkg/logger"
)

// AuditList returns a page of audit entries, optionally filtered by book or
// action.
func AuditList(svc auditsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "audit service unavailable"))
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		bookID, err := validators.ParseQueryUUID(r, "book_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := auditsvc.EntryFilters{BookID: bookID}
		if raw := strings.TrimSpace(r.URL.Query().Get("action")); raw != "" {
			action, err := enums.ParseAuditAction(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid action"))
				return
			}
			filters.Action = &action
		}

		list, err := svc.List(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// AuditBookHistory returns the audit trail of a single book.
func AuditBookHistory(svc auditsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "audit service unavailable"))
			return
		}

		id, err := validators.PathUUID(chi.URLParam(r, "bookId"), "bookId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListByBook(r.Context(), id, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}
