package httpserver

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/domain"
	customersvc "storefront/internal/service/customer"
	"github.com/gin-gonic/gin"
)

func logDiscard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

type stubCatalogService struct {
	items []domain.Item
	item  *domain.Item
	err   error
}

func (s *stubCatalogService) List(_ context.Context) ([]domain.Item, error) {
	return s.items, s.err
}

func (s *stubCatalogService) Get(_ context.Context, _ string) (*domain.Item, error) {
	return s.item, s.err
}

type stubCartService struct {
	order *domain.Order
	err   error
}

func (s *stubCartService) AddItem(_ context.Context, _, _ string) (*domain.Order, error) {
	return s.order, s.err
}

func (s *stubCartService) RemoveItem(_ context.Context, _, _ string) (*domain.Order, error) {
	return s.order, s.err
}

func (s *stubCartService) RemoveSingleItem(_ context.Context, _, _ string) (*domain.Order, error) {
	return s.order, s.err
}

func (s *stubCartService) View(_ context.Context, _ string) (*domain.Order, error) {
	return s.order, s.err
}

type stubCheckoutService struct {
	order    *domain.Order
	customer *domain.Customer
	payment  *domain.Payment
	payments []domain.Payment
	infoErr  error
	payErr   error
}

func (s *stubCheckoutService) Info(_ context.Context, _ string) (*domain.Order, *domain.Customer, error) {
	return s.order, s.customer, s.infoErr
}

func (s *stubCheckoutService) Pay(_ context.Context, _, _ string) (*domain.Order, *domain.Payment, error) {
	if s.payErr != nil {
		return nil, nil, s.payErr
	}
	return s.order, s.payment, nil
}

func (s *stubCheckoutService) Payments(_ context.Context, _ string) ([]domain.Payment, error) {
	return s.payments, nil
}

type stubCustomerService struct {
	customer  *domain.Customer
	signupErr error
	loginErr  error
	lookupErr error
}

func (s *stubCustomerService) Signup(_ context.Context, _ customersvc.SignupInput) (*domain.Customer, error) {
	return s.customer, s.signupErr
}

func (s *stubCustomerService) Login(_ context.Context, _, _ string) (*domain.Customer, string, string, error) {
	if s.loginErr != nil {
		return nil, "", "", s.loginErr
	}
	return s.customer, "access-token", "refresh-token", nil
}

func (s *stubCustomerService) LookupByToken(_ context.Context, _ string) (*domain.Customer, error) {
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	return s.customer, nil
}

func (s *stubCustomerService) AccessTTLSeconds() int {
	return 3600
}

func testDeps() Deps {
	return Deps{
		CatalogSvc:  &stubCatalogService{},
		CartSvc:     &stubCartService{},
		CheckoutSvc: &stubCheckoutService{},
		CustomerSvc: &stubCustomerService{customer: &domain.Customer{ID: "cust-1", Email: "me@example.com"}},
	}
}

func serve(t *testing.T, deps Deps, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := buildRouter(logDiscard(), nil, deps)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := serve(t, testDeps(), req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/me/cart", nil)
	rec := serve(t, testDeps(), req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	deps := testDeps()
	deps.CustomerSvc = &stubCustomerService{lookupErr: customersvc.ErrInvalidToken}

	req := httptest.NewRequest(http.MethodGet, "/me/cart", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	rec := serve(t, deps, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"Basic abc", ""},
		{"Bearer", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := bearerToken(tc.header); got != tc.want {
			t.Fatalf("bearerToken(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}
