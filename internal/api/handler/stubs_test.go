package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/order-tracking/internal/api/middleware"
	"github.com/99minutos/order-tracking/internal/core/domain"
	"github.com/99minutos/order-tracking/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error)
	loginFn    func(ctx context.Context, email, password string) (*ports.AuthResult, error)
	meFn       func(ctx context.Context, userID string) (*domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	return s.meFn(ctx, userID)
}

type stubOrderService struct {
	createFn       func(ctx context.Context, in ports.CreateOrderInput) (*domain.Order, error)
	getFn          func(ctx context.Context, id string) (*domain.Order, error)
	userOrdersFn   func(ctx context.Context, userID string) ([]domain.Order, error)
	allFn          func(ctx context.Context, page ports.Page) ([]domain.Order, int64, error)
	updateStatusFn func(ctx context.Context, in ports.UpdateOrderStatusInput) (*domain.Order, error)
	deleteFn       func(ctx context.Context, id string) error
}

func (s *stubOrderService) CreateOrder(ctx context.Context, in ports.CreateOrderInput) (*domain.Order, error) {
	return s.createFn(ctx, in)
}

func (s *stubOrderService) GetOrderByID(ctx context.Context, id string) (*domain.Order, error) {
	return s.getFn(ctx, id)
}

func (s *stubOrderService) GetUserOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.userOrdersFn(ctx, userID)
}

func (s *stubOrderService) GetAllOrders(ctx context.Context, page ports.Page) ([]domain.Order, int64, error) {
	return s.allFn(ctx, page)
}

func (s *stubOrderService) UpdateOrderStatus(ctx context.Context, in ports.UpdateOrderStatusInput) (*domain.Order, error) {
	return s.updateStatusFn(ctx, in)
}

func (s *stubOrderService) DeleteOrder(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

type stubUserService struct {
	getFn    func(ctx context.Context, id string) (*domain.User, error)
	allFn    func(ctx context.Context, page ports.Page) ([]domain.User, int64, error)
	byRoleFn func(ctx context.Context, role string) ([]domain.User, error)
	searchFn func(ctx context.Context, q string) ([]domain.User, error)
	updateFn func(ctx context.Context, id string, in ports.UpdateUserInput) (*domain.User, error)
	deleteFn func(ctx context.Context, id string) error
}

func (s *stubUserService) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return s.getFn(ctx, id)
}

func (s *stubUserService) GetAllUsers(ctx context.Context, page ports.Page) ([]domain.User, int64, error) {
	return s.allFn(ctx, page)
}

func (s *stubUserService) GetUsersByRole(ctx context.Context, role string) ([]domain.User, error) {
	return s.byRoleFn(ctx, role)
}

func (s *stubUserService) SearchUsers(ctx context.Context, q string) ([]domain.User, error) {
	return s.searchFn(ctx, q)
}

func (s *stubUserService) UpdateUser(ctx context.Context, id string, in ports.UpdateUserInput) (*domain.User, error) {
	return s.updateFn(ctx, id, in)
}

func (s *stubUserService) DeleteUser(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

// request builds an echo context for method/target with an optional JSON
// body and, when role is non-empty, an authenticated actor.
type request struct {
	method string
	target string
	body   string
	userID string
	role   domain.Role
	params map[string]string
}

func (r request) context() (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var body io.Reader
	if r.body != "" {
		body = strings.NewReader(r.body)
	}
	req := httptest.NewRequest(r.method, r.target, body)
	if r.body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if r.role != "" {
		c.Set(middleware.ContextKeyUserID, r.userID)
		c.Set(middleware.ContextKeyRole, string(r.role))
	}
	if len(r.params) > 0 {
		names := make([]string, 0, len(r.params))
		values := make([]string, 0, len(r.params))
		for name, value := range r.params {
			names = append(names, name)
			values = append(values, value)
		}
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}
	return c, rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return body
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

func expectHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	if he.Code != code {
		t.Fatalf("expected %d, got %d", code, he.Code)
	}
}
