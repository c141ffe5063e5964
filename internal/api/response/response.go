// Package response renders the JSON envelope shared by every endpoint.
package response

import (
	"math"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Response codes carried by successful envelopes.
const (
	CodeSuccess          = "SUCCESS"
	CodeCreated          = "CREATED"
	CodeDeleted          = "DELETED"
	CodePaginatedSuccess = "PAGINATED_SUCCESS"
)

// Error codes carried by failed envelopes.
const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodeNotFound          = "NOT_FOUND"
	CodeConflict          = "CONFLICT"
	CodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	CodeInternal          = "INTERNAL_SERVER_ERROR"
)

// ValidationFailedMessage heads every VALIDATION_ERROR envelope.
const ValidationFailedMessage = "Validation failed!"

// Envelope is the body of every API response.
type Envelope struct {
	Success      bool        `json:"success"`
	Message      string      `json:"message"`
	ResponseCode string      `json:"responseCode,omitempty"`
	ErrorCode    string      `json:"errorCode,omitempty"`
	StatusCode   int         `json:"statusCode"`
	Data         any         `json:"data,omitempty"`
	Errors       []string    `json:"errors,omitempty"`
	Pagination   *Pagination `json:"pagination,omitempty"`
	Timestamp    time.Time   `json:"timestamp"`
}

// Pagination describes one page of a list response.
type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int   `json:"pages"`
}

// NewPagination computes the page count for total items split by limit.
func NewPagination(total int64, page, limit int) *Pagination {
	pages := 0
	if limit > 0 {
		pages = int(math.Ceil(float64(total) / float64(limit)))
	}
	return &Pagination{Total: total, Page: page, Limit: limit, Pages: pages}
}

var now = func() time.Time { return time.Now().UTC() }

// Success writes a 200 SUCCESS envelope.
func Success(c echo.Context, message string, data any) error {
	return c.JSON(http.StatusOK, Envelope{
		Success:      true,
		Message:      message,
		ResponseCode: CodeSuccess,
		StatusCode:   http.StatusOK,
		Data:         data,
		Timestamp:    now(),
	})
}

// Created writes a 201 CREATED envelope.
func Created(c echo.Context, message string, data any) error {
	return c.JSON(http.StatusCreated, Envelope{
		Success:      true,
		Message:      message,
		ResponseCode: CodeCreated,
		StatusCode:   http.StatusCreated,
		Data:         data,
		Timestamp:    now(),
	})
}

// Deleted writes a 200 DELETED envelope without data.
func Deleted(c echo.Context, message string) error {
	return c.JSON(http.StatusOK, Envelope{
		Success:      true,
		Message:      message,
		ResponseCode: CodeDeleted,
		StatusCode:   http.StatusOK,
		Timestamp:    now(),
	})
}

// Paginated writes a 200 PAGINATED_SUCCESS envelope.
func Paginated(c echo.Context, message string, data any, p *Pagination) error {
	return c.JSON(http.StatusOK, Envelope{
		Success:      true,
		Message:      message,
		ResponseCode: CodePaginatedSuccess,
		StatusCode:   http.StatusOK,
		Data:         data,
		Pagination:   p,
		Timestamp:    now(),
	})
}

// Error writes a failed envelope with the given status and error code.
func Error(c echo.Context, status int, code, message string, errs ...string) error {
	return c.JSON(status, ErrorEnvelope(status, code, message, errs...))
}

// ErrorEnvelope builds a failed envelope without writing it.
func ErrorEnvelope(status int, code, message string, errs ...string) Envelope {
	return Envelope{
		Success:    false,
		Message:    message,
		ErrorCode:  code,
		StatusCode: status,
		Errors:     errs,
		Timestamp:  now(),
	}
}
