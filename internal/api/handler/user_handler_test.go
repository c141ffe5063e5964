package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/99minutos/order-tracking/internal/core/domain"
	"github.com/99minutos/order-tracking/internal/core/ports"
)

func TestUserHandler_Get_SelfOrAdmin(t *testing.T) {
	stub := &stubUserService{
		getFn: func(_ context.Context, id string) (*domain.User, error) {
			return &domain.User{ID: id, Role: domain.RoleCustomer}, nil
		},
	}

	cases := []struct {
		name   string
		userID string
		role   domain.Role
		want   error
	}{
		{"self", "u-1", domain.RoleCustomer, nil},
		{"admin", "a-1", domain.RoleAdmin, nil},
		{"other", "u-2", domain.RoleCustomer, domain.ErrForbidden},
		{"delivery partner", "d-1", domain.RoleDeliveryPartner, domain.ErrForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := request{
				method: http.MethodGet,
				target: "/users/u-1",
				userID: tc.userID,
				role:   tc.role,
				params: map[string]string{"id": "u-1"},
			}.context()

			err := NewUserHandler(stub).Get(c)
			if tc.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				expectStatus(t, rec, http.StatusOK)
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestUserHandler_Update_SelfCannotChangeRole(t *testing.T) {
	stub := &stubUserService{
		updateFn: func(context.Context, string, ports.UpdateUserInput) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	c, _ := request{
		method: http.MethodPatch,
		target: "/users/u-1",
		body:   `{"role":"ADMIN"}`,
		userID: "u-1",
		role:   domain.RoleCustomer,
		params: map[string]string{"id": "u-1"},
	}.context()

	if err := NewUserHandler(stub).Update(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestUserHandler_Update_SelfChangesName(t *testing.T) {
	stub := &stubUserService{
		updateFn: func(_ context.Context, id string, in ports.UpdateUserInput) (*domain.User, error) {
			if in.Name == nil || *in.Name != "New Name" || in.Email != nil || in.Role != nil {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.User{ID: id, Name: *in.Name, Role: domain.RoleCustomer}, nil
		},
	}
	c, rec := request{
		method: http.MethodPatch,
		target: "/users/u-1",
		body:   `{"name":"New Name"}`,
		userID: "u-1",
		role:   domain.RoleCustomer,
		params: map[string]string{"id": "u-1"},
	}.context()

	if err := NewUserHandler(stub).Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	expectStatus(t, rec, http.StatusOK)
	if decodeBody(t, rec)["message"] != "User updated successfully" {
		t.Fatal("unexpected message")
	}
}

func TestUserHandler_Update_AdminChangesRole(t *testing.T) {
	stub := &stubUserService{
		updateFn: func(_ context.Context, id string, in ports.UpdateUserInput) (*domain.User, error) {
			if in.Role == nil || *in.Role != "DELIVERY_PARTNER" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.User{ID: id, Role: domain.RoleDeliveryPartner}, nil
		},
	}
	c, rec := request{
		method: http.MethodPatch,
		target: "/users/u-1",
		body:   `{"role":"DELIVERY_PARTNER"}`,
		userID: "a-1",
		role:   domain.RoleAdmin,
		params: map[string]string{"id": "u-1"},
	}.context()

	if err := NewUserHandler(stub).Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	expectStatus(t, rec, http.StatusOK)
}

func TestUserHandler_Update_EmailConflict(t *testing.T) {
	stub := &stubUserService{
		updateFn: func(context.Context, string, ports.UpdateUserInput) (*domain.User, error) {
			return nil, domain.ErrEmailInUse
		},
	}
	c, _ := request{
		method: http.MethodPatch,
		target: "/users/u-1",
		body:   `{"email":"taken@example.com"}`,
		userID: "u-1",
		role:   domain.RoleCustomer,
		params: map[string]string{"id": "u-1"},
	}.context()

	if err := NewUserHandler(stub).Update(c); !errors.Is(err, domain.ErrEmailInUse) {
		t.Fatalf("expected ErrEmailInUse, got %v", err)
	}
}

func TestUserHandler_Delete_OtherForbidden(t *testing.T) {
	stub := &stubUserService{
		deleteFn: func(context.Context, string) error {
			t.Fatalf("should not be called")
			return nil
		},
	}
	c, _ := request{method: http.MethodDelete, target: "/users/u-1", userID: "u-2", role: domain.RoleCustomer, params: map[string]string{"id": "u-1"}}.context()

	if err := NewUserHandler(stub).Delete(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestUserHandler_Delete_Self(t *testing.T) {
	stub := &stubUserService{deleteFn: func(context.Context, string) error { return nil }}
	c, rec := request{method: http.MethodDelete, target: "/users/u-1", userID: "u-1", role: domain.RoleCustomer, params: map[string]string{"id": "u-1"}}.context()

	if err := NewUserHandler(stub).Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if decodeBody(t, rec)["responseCode"] != "DELETED" {
		t.Fatal("expected DELETED envelope")
	}
}

func TestUserHandler_List_Paginated(t *testing.T) {
	stub := &stubUserService{
		allFn: func(_ context.Context, p ports.Page) ([]domain.User, int64, error) {
			return []domain.User{{ID: "u-1"}}, 1, nil
		},
	}
	c, rec := request{method: http.MethodGet, target: "/users", userID: "a-1", role: domain.RoleAdmin}.context()

	if err := NewUserHandler(stub).List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	body := decodeBody(t, rec)
	if body["pagination"].(map[string]any)["pages"] != float64(1) {
		t.Fatalf("unexpected pagination: %v", body["pagination"])
	}
}

func TestUserHandler_ByRoleAndSearch_PassQuery(t *testing.T) {
	stub := &stubUserService{
		byRoleFn: func(_ context.Context, role string) ([]domain.User, error) {
			if role != "ADMIN" {
				t.Fatalf("unexpected role %q", role)
			}
			return nil, nil
		},
		searchFn: func(_ context.Context, q string) ([]domain.User, error) {
			if q != "ali" {
				t.Fatalf("unexpected query %q", q)
			}
			return []domain.User{{ID: "u-1", Name: "Alice"}}, nil
		},
	}
	h := NewUserHandler(stub)

	c, rec := request{method: http.MethodGet, target: "/users/role?role=ADMIN", userID: "a-1", role: domain.RoleAdmin}.context()
	if err := h.ByRole(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	expectStatus(t, rec, http.StatusOK)

	c, rec = request{method: http.MethodGet, target: "/users/search?q=ali", userID: "a-1", role: domain.RoleAdmin}.context()
	if err := h.Search(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if decodeBody(t, rec)["message"] != "Users found successfully" {
		t.Fatal("unexpected message")
	}
}
