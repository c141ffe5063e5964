package handler

import (
	"time"

	"github.com/99minutos/order-tracking/internal/api/response"
	"github.com/99minutos/order-tracking/internal/core/domain"
)

// --- Auth ---

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authPayload struct {
	User      domain.User `json:"user"`
	Token     string      `json:"token"`
	ExpiresIn string      `json:"expiresIn"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// --- Orders ---

type orderItemRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

// createOrderRequest has no total: it is always computed from the items.
type createOrderRequest struct {
	Items           []orderItemRequest `json:"items"`
	ShippingAddress string             `json:"shippingAddress"`
	Notes           string             `json:"notes"`
}

type updateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,order_status"`
	Notes  string `json:"notes"`
}

// --- Users ---

// updateUserRequest uses pointers to tell "absent" from "empty".
type updateUserRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Role  *string `json:"role"`
}

// --- Swagger envelopes ---
// These types only describe response bodies for the generated docs.

type envelope struct {
	Success      bool      `json:"success"`
	Message      string    `json:"message"`
	ResponseCode string    `json:"responseCode"`
	StatusCode   int       `json:"statusCode"`
	Timestamp    time.Time `json:"timestamp"`
}

type authEnvelope struct {
	envelope
	Data authPayload `json:"data"`
}

type userEnvelope struct {
	envelope
	Data domain.User `json:"data"`
}

type usersEnvelope struct {
	envelope
	Data []domain.User `json:"data"`
}

type pagedUsersEnvelope struct {
	envelope
	Data       []domain.User       `json:"data"`
	Pagination response.Pagination `json:"pagination"`
}

type orderEnvelope struct {
	envelope
	Data domain.Order `json:"data"`
}

type ordersEnvelope struct {
	envelope
	Data []domain.Order `json:"data"`
}

type pagedOrdersEnvelope struct {
	envelope
	Data       []domain.Order      `json:"data"`
	Pagination response.Pagination `json:"pagination"`
}

type errorEnvelope struct {
	Success    bool      `json:"success"`
	Message    string    `json:"message"`
	ErrorCode  string    `json:"errorCode"`
	StatusCode int       `json:"statusCode"`
	Errors     []string  `json:"errors,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
