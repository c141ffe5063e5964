// Package policy decides whether an authenticated actor may perform an
// operation. It is a pure function of the actor, the operation and, where it
// matters, the id of the resource owner.
package policy

import "github.com/99minutos/order-tracking/internal/core/domain"

// Operation names a gated action.
type Operation string

const (
	CreateOrder       Operation = "order:create"
	ViewOwnOrders     Operation = "order:list-own"
	ViewOrder         Operation = "order:view"
	ListOrders        Operation = "order:list"
	UpdateOrderStatus Operation = "order:update-status"
	DeleteOrder       Operation = "order:delete"

	ViewUser        Operation = "user:view"
	UpdateUser      Operation = "user:update"
	DeleteUser      Operation = "user:delete"
	ChangeUserRole  Operation = "user:change-role"
	ListUsers       Operation = "user:list"
	ListUsersByRole Operation = "user:list-by-role"
	SearchUsers     Operation = "user:search"
)

// Actor is the identity behind a request.
type Actor struct {
	ID   string
	Role domain.Role
}

// Anonymous reports whether the actor carries no identity.
func (a Actor) Anonymous() bool {
	return a.ID == "" || a.Role == ""
}

// Can reports whether actor may perform op on a resource owned by ownerID.
// ownerID is ignored by operations that are gated on role alone.
func Can(actor Actor, op Operation, ownerID string) bool {
	if actor.Anonymous() {
		return false
	}

	switch op {
	case CreateOrder, ViewOwnOrders:
		return actor.Role == domain.RoleCustomer
	case ViewOrder, ViewUser, UpdateUser, DeleteUser:
		return isOwner(actor, ownerID) || actor.Role == domain.RoleAdmin
	case UpdateOrderStatus:
		return actor.Role == domain.RoleAdmin || actor.Role == domain.RoleDeliveryPartner
	case ListOrders, DeleteOrder, ChangeUserRole, ListUsers, ListUsersByRole, SearchUsers:
		return actor.Role == domain.RoleAdmin
	default:
		return false
	}
}

// Authorize is Can expressed as an error: ErrUnauthorized when there is no
// identity at all, ErrForbidden when the policy denies.
func Authorize(actor Actor, op Operation, ownerID string) error {
	if actor.Anonymous() {
		return domain.ErrUnauthorized
	}
	if !Can(actor, op, ownerID) {
		return domain.ErrForbidden
	}
	return nil
}

func isOwner(actor Actor, ownerID string) bool {
	return ownerID != "" && actor.ID == ownerID
}
