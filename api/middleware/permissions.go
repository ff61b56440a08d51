package middleware

import (
	"net/http"

	"github.com/eldorado-books/bookstore-backend/api/responses"
	"github.com/eldorado-books/bookstore-backend/pkg/enums"
	pkgerrors "github.com/eldorado-books/bookstore-backend/pkg/errors"
	"github.com/eldorado-books/bookstore-backend/pkg/logger"
	"github.com/eldorado-books/bookstore-backend/pkg/permissions"
)

// RequirePermission denies the request unless the authenticated role is
// granted the named operation.
func RequirePermission(op permissions.Operation, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, err := enums.ParseStaffRole(RoleFromContext(r.Context()))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "operation not permitted"))
				return
			}
			if !permissions.Allowed(role, op) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "operation not permitted"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
