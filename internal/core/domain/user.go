package domain

import "time"

// Role is the authorization role carried by every user and session token.
type Role string

const (
	RoleCustomer        Role = "CUSTOMER"
	RoleAdmin           Role = "ADMIN"
	RoleDeliveryPartner Role = "DELIVERY_PARTNER"
)

// Roles lists every valid role.
var Roles = []Role{RoleCustomer, RoleAdmin, RoleDeliveryPartner}

// ParseRole reports whether s names one of the known roles.
func ParseRole(s string) (Role, bool) {
	for _, r := range Roles {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

// User is the public view of a user record. It never carries the password
// hash; see Credentials for the login-only projection.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Credentials pairs a user with its stored password hash. Only the login path
// reads it.
type Credentials struct {
	User         User
	PasswordHash string
}
