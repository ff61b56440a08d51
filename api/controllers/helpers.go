package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/eldorado-books/bookstore-backend/api/middleware"
	"github.com/eldorado-books/bookstore-backend/api/validators"
	"github.com/eldorado-books/bookstore-backend/internal/audit"
	pkgerrors "github.com/eldorado-books/bookstore-backend/pkg/errors"
	"github.com/eldorado-books/bookstore-backend/pkg/pagination"
)

// actorFromRequest rebuilds the audit actor from the authenticated context.
func actorFromRequest(r *http.Request) (audit.Actor, error) {
	raw := middleware.StaffIDFromContext(r.Context())
	if raw == "" {
		return audit.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "staff context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return audit.Actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid staff id")
	}
	return audit.Actor{ID: id, Name: middleware.StaffNameFromContext(r.Context())}, nil
}

func pageParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}
