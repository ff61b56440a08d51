package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eldorado-books/bookstore-backend/api/controllers"
	"github.com/eldorado-books/bookstore-backend/api/middleware"
	auditsvc "github.com/eldorado-books/bookstore-backend/internal/audit"
	"github.com/eldorado-books/bookstore-backend/internal/auth"
	booksvc "github.com/eldorado-books/bookstore-backend/internal/books"
	customersvc "github.com/eldorado-books/bookstore-backend/internal/customers"
	ordersvc "github.com/eldorado-books/bookstore-backend/internal/orders"
	reportsvc "github.com/eldorado-books/bookstore-backend/internal/reports"
	staffsvc "github.com/eldorado-books/bookstore-backend/internal/staff"
	"github.com/eldorado-books/bookstore-backend/pkg/auth/session"
	"github.com/eldorado-books/bookstore-backend/pkg/config"
	"github.com/eldorado-books/bookstore-backend/pkg/logger"
	"github.com/eldorado-books/bookstore-backend/pkg/permissions"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// Services bundles everything the router mounts.
type Services struct {
	Auth      auth.Service
	Books     booksvc.Service
	Customers customersvc.Service
	Orders    ordersvc.Service
	Staff     staffsvc.Service
	Audit     auditsvc.Service
	Reports   reportsvc.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP pinger,
	cacheP pinger,
	sessions session.AccessSessionChecker,
	svcs Services,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, cacheP))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(svcs.Auth, logg))
		r.With(middleware.Auth(cfg.JWT, sessions, logg)).Post("/logout", controllers.AuthLogout(svcs.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))

		r.Route("/books", func(r chi.Router) {
			r.With(middleware.RequirePermission(permissions.OpBooksRead, logg)).Get("/", controllers.BookList(svcs.Books, logg))
			r.With(middleware.RequirePermission(permissions.OpBooksRead, logg)).Get("/{bookId}", controllers.BookDetail(svcs.Books, logg))
			r.With(middleware.RequirePermission(permissions.OpBooksWrite, logg)).Post("/", controllers.BookCreate(svcs.Books, logg))
			r.With(middleware.RequirePermission(permissions.OpBooksWrite, logg)).Patch("/{bookId}", controllers.BookUpdate(svcs.Books, logg))
			r.With(middleware.RequirePermission(permissions.OpBooksWrite, logg)).Post("/{bookId}/restock", controllers.BookRestock(svcs.Books, logg))
			r.With(middleware.RequirePermission(permissions.OpBooksDelete, logg)).Delete("/{bookId}", controllers.BookDelete(svcs.Books, logg))
			r.With(middleware.RequirePermission(permissions.OpAuditView, logg)).Get("/{bookId}/audit", controllers.AuditBookHistory(svcs.Audit, logg))
		})

		r.Route("/customers", func(r chi.Router) {
			r.With(middleware.RequirePermission(permissions.OpCustomersRead, logg)).Get("/", controllers.CustomerList(svcs.Customers, logg))
			r.With(middleware.RequirePermission(permissions.OpCustomersRead, logg)).Get("/{customerId}", controllers.CustomerDetail(svcs.Customers, logg))
			r.With(middleware.RequirePermission(permissions.OpCustomersWrite, logg)).Post("/", controllers.CustomerCreate(svcs.Customers, logg))
			r.With(middleware.RequirePermission(permissions.OpCustomersWrite, logg)).Patch("/{customerId}", controllers.CustomerUpdate(svcs.Customers, logg))
			r.With(middleware.RequirePermission(permissions.OpCustomersDelete, logg)).Delete("/{customerId}", controllers.CustomerDelete(svcs.Customers, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.With(middleware.RequirePermission(permissions.OpOrdersRead, logg)).Get("/", controllers.OrderList(svcs.Orders, logg))
			r.With(middleware.RequirePermission(permissions.OpOrdersRead, logg)).Get("/{orderId}", controllers.OrderDetail(svcs.Orders, logg))
			r.With(middleware.RequirePermission(permissions.OpOrdersPlace, logg)).Post("/", controllers.OrderPlace(svcs.Orders, logg))
			r.With(middleware.RequirePermission(permissions.OpOrdersUpdateStatus, logg)).Post("/{orderId}/status", controllers.OrderUpdateStatus(svcs.Orders, logg))
		})

		r.Route("/staff", func(r chi.Router) {
			r.Use(middleware.RequirePermission(permissions.OpStaffManage, logg))
			r.Get("/", controllers.StaffList(svcs.Staff, logg))
			r.Get("/{staffId}", controllers.StaffDetail(svcs.Staff, logg))
			r.Post("/", controllers.StaffCreate(svcs.Staff, logg))
			r.Patch("/{staffId}", controllers.StaffUpdate(svcs.Staff, logg))
			r.Post("/{staffId}/reset-password", controllers.StaffResetPassword(svcs.Staff, logg))
			r.Delete("/{staffId}", controllers.StaffDelete(svcs.Staff, logg))
		})

		r.With(middleware.RequirePermission(permissions.OpAuditView, logg)).Get("/audit", controllers.AuditList(svcs.Audit, logg))

		r.Route("/reports", func(r chi.Router) {
			r.Use(middleware.RequirePermission(permissions.OpReportsView, logg))
			r.Get("/sales", controllers.ReportSales(svcs.Reports, logg))
			r.Get("/inventory", controllers.ReportInventory(svcs.Reports, logg))
		})
	})

	return r
}
