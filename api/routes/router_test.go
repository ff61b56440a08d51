package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	auditsvc "github.com/eldorado-books/bookstore-backend/internal/audit"
	"github.com/eldorado-books/bookstore-backend/internal/auth"
	booksvc "github.com/eldorado-books/bookstore-backend/internal/books"
	customersvc "github.com/eldorado-books/bookstore-backend/internal/customers"
	ordersvc "github.com/eldorado-books/bookstore-backend/internal/orders"
	reportsvc "github.com/eldorado-books/bookstore-backend/internal/reports"
	staffsvc "github.com/eldorado-books/bookstore-backend/internal/staff"
	pkgAuth "github.com/eldorado-books/bookstore-backend/pkg/auth"
	"github.com/eldorado-books/bookstore-backend/pkg/auth/session"
	"github.com/eldorado-books/bookstore-backend/pkg/config"
	"github.com/eldorado-books/bookstore-backend/pkg/db/models"
	"github.com/eldorado-books/bookstore-backend/pkg/enums"
	"github.com/eldorado-books/bookstore-backend/pkg/logger"
	"github.com/eldorado-books/bookstore-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

type stubAuthService struct{}

func (stubAuthService) Login(ctx context.Context, input auth.LoginInput) (*auth.Session, error) {
	return &auth.Session{AccessToken: "a", RefreshToken: "r"}, nil
}
func (stubAuthService) Refresh(ctx context.Context, input auth.RefreshInput) (*auth.Session, error) {
	return &auth.Session{}, nil
}
func (stubAuthService) Logout(ctx context.Context, accessID string) error { return nil }

type stubBookService struct{}

func (stubBookService) Create(ctx context.Context, actor auditsvc.Actor, input booksvc.CreateBookInput) (*models.Book, error) {
	return &models.Book{}, nil
}
func (stubBookService) Get(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	return &models.Book{}, nil
}
func (stubBookService) List(ctx context.Context, params pagination.Params, filters booksvc.ListFilters) (*booksvc.BookList, error) {
	return &booksvc.BookList{}, nil
}
func (stubBookService) Update(ctx context.Context, actor auditsvc.Actor, id uuid.UUID, input booksvc.UpdateBookInput) (*models.Book, error) {
	return &models.Book{}, nil
}
func (stubBookService) Delete(ctx context.Context, actor auditsvc.Actor, id uuid.UUID) error {
	return nil
}
func (stubBookService) DecrementStock(ctx context.Context, tx *gorm.DB, actor auditsvc.Actor, bookID uuid.UUID, qty int) (*models.Book, error) {
	return &models.Book{}, nil
}
func (stubBookService) RestockQuantity(ctx context.Context, tx *gorm.DB, actor auditsvc.Actor, bookID uuid.UUID, qty int) (*models.Book, error) {
	return &models.Book{}, nil
}

type stubCustomerService struct{}

func (stubCustomerService) Create(ctx context.Context, input customersvc.CreateCustomerInput) (*models.Customer, error) {
	return &models.Customer{}, nil
}
func (stubCustomerService) Get(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	return &models.Customer{}, nil
}
func (stubCustomerService) List(ctx context.Context, params pagination.Params, filters customersvc.ListFilters) (*customersvc.CustomerList, error) {
	return &customersvc.CustomerList{}, nil
}
func (stubCustomerService) Update(ctx context.Context, id uuid.UUID, input customersvc.UpdateCustomerInput) (*models.Customer, error) {
	return &models.Customer{}, nil
}
func (stubCustomerService) Delete(ctx context.Context, id uuid.UUID) error { return nil }

type stubOrderService struct{}

func (stubOrderService) PlaceOrder(ctx context.Context, input ordersvc.PlaceOrderInput) (*models.Order, error) {
	return &models.Order{}, nil
}
func (stubOrderService) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return &models.Order{}, nil
}
func (stubOrderService) List(ctx context.Context, params pagination.Params, filters ordersvc.ListFilters) (*ordersvc.OrderList, error) {
	return &ordersvc.OrderList{}, nil
}
func (stubOrderService) UpdateStatus(ctx context.Context, actor auditsvc.Actor, id uuid.UUID, status enums.OrderStatus) (*models.Order, error) {
	return &models.Order{}, nil
}

type stubStaffService struct{}

func (stubStaffService) Create(ctx context.Context, input staffsvc.CreateAccountInput) (*models.StaffAccount, error) {
	return &models.StaffAccount{}, nil
}
func (stubStaffService) Get(ctx context.Context, id uuid.UUID) (*models.StaffAccount, error) {
	return &models.StaffAccount{}, nil
}
func (stubStaffService) List(ctx context.Context, params pagination.Params) (*staffsvc.AccountList, error) {
	return &staffsvc.AccountList{}, nil
}
func (stubStaffService) Update(ctx context.Context, id uuid.UUID, input staffsvc.UpdateAccountInput) (*models.StaffAccount, error) {
	return &models.StaffAccount{}, nil
}
func (stubStaffService) Delete(ctx context.Context, actorID, id uuid.UUID) error { return nil }
func (stubStaffService) ResetPassword(ctx context.Context, id uuid.UUID) (string, error) {
	return "temp", nil
}

type stubAuditService struct{}

func (stubAuditService) Record(ctx context.Context, tx *gorm.DB, input auditsvc.RecordInput) error {
	return nil
}
func (stubAuditService) List(ctx context.Context, params pagination.Params, filters auditsvc.EntryFilters) (*auditsvc.EntryList, error) {
	return &auditsvc.EntryList{}, nil
}
func (stubAuditService) ListByBook(ctx context.Context, bookID uuid.UUID, params pagination.Params) (*auditsvc.EntryList, error) {
	return &auditsvc.EntryList{}, nil
}

type stubReportService struct{}

func (stubReportService) Sales(ctx context.Context, input reportsvc.SalesReportInput) (*reportsvc.SalesReport, error) {
	return &reportsvc.SalesReport{}, nil
}
func (stubReportService) Inventory(ctx context.Context) (*reportsvc.InventoryReport, error) {
	return &reportsvc.InventoryReport{}, nil
}

func testRouter(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	return NewRouter(cfg, logg, stubPinger{}, stubPinger{}, stubSessionChecker{}, Services{
		Auth:      stubAuthService{},
		Books:     stubBookService{},
		Customers: stubCustomerService{},
		Orders:    stubOrderService{},
		Staff:     stubStaffService{},
		Audit:     stubAuditService{},
		Reports:   stubReportService{},
	}, nil)
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "dev", Port: "0"},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60},
	}
}

func bearerFor(t *testing.T, cfg *config.Config, role enums.StaffRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		StaffID:  uuid.New(),
		Username: "staff",
		FullName: "Staff Member",
		Role:     role,
		JTI:      session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return "Bearer " + token
}

func TestHealthLiveIsPublic(t *testing.T) {
	cfg := testConfig()
	router := testRouter(t, cfg)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestBooksRequireAuthentication(t *testing.T) {
	cfg := testConfig()
	router := testRouter(t, cfg)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/books", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestClerkCannotManageStaff(t *testing.T) {
	cfg := testConfig()
	router := testRouter(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/staff", nil)
	req.Header.Set("Authorization", bearerFor(t, cfg, enums.StaffRoleClerk))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestLibrarianCannotUpdateOrderStatus(t *testing.T) {
	cfg := testConfig()
	router := testRouter(t, cfg)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+uuid.NewString()+"/status", nil)
	req.Header.Set("Authorization", bearerFor(t, cfg, enums.StaffRoleLibrarian))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestManagerCanViewAudit(t *testing.T) {
	cfg := testConfig()
	router := testRouter(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/audit", nil)
	req.Header.Set("Authorization", bearerFor(t, cfg, enums.StaffRoleManager))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestClerkCanPlaceOrders(t *testing.T) {
	cfg := testConfig()
	router := testRouter(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", bearerFor(t, cfg, enums.StaffRoleClerk))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}
