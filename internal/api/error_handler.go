package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/order-tracking/internal/api/response"
	"github.com/99minutos/order-tracking/internal/core/domain"
)

// kindMapping ties a domain error kind to its HTTP rendering. fallback is
// used when the error carries no message of its own.
type kindMapping struct {
	kind     error
	status   int
	code     string
	fallback string
}

var kindMappings = []kindMapping{
	{domain.ErrUnauthorized, http.StatusUnauthorized, response.CodeUnauthorized, "Unauthorized"},
	{domain.ErrForbidden, http.StatusForbidden, response.CodeForbidden, "You don't have permission to perform this action"},
	{domain.ErrNotFound, http.StatusNotFound, response.CodeNotFound, "Resource not found"},
	{domain.ErrConflict, http.StatusConflict, response.CodeConflict, "Resource already exists"},
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Renders validation failures as 400 VALIDATION_ERROR with one message per field.
//   - Maps domain error kinds to 401/403/404/409.
//   - Logs unexpected errors and, in production, hides their text from the client.
func NewHTTPErrorHandler(log zerolog.Logger, production bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		env := resolveError(err, log, c, production)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(env.StatusCode)
			return
		}
		_ = c.JSON(env.StatusCode, env)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context, production bool) response.Envelope {
	// Echo's own errors (bind failures, unknown routes, middleware rejections).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return fromHTTPError(he, log, c, production)
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return response.ErrorEnvelope(http.StatusBadRequest, response.CodeValidation,
			response.ValidationFailedMessage, ve.Errors...)
	}

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return response.ErrorEnvelope(http.StatusBadRequest, response.CodeValidation,
			response.ValidationFailedMessage, domain.Message(err))
	// Registration reports a taken email as a validation failure.
	case errors.Is(err, domain.ErrUserExists):
		return response.ErrorEnvelope(http.StatusBadRequest, response.CodeValidation,
			response.ValidationFailedMessage, domain.Message(err))
	}

	for _, m := range kindMappings {
		if errors.Is(err, m.kind) {
			msg := domain.Message(err)
			if msg == m.kind.Error() {
				msg = m.fallback
			}
			return response.ErrorEnvelope(m.status, m.code, msg)
		}
	}

	return internalError(err, log, c, production)
}

func fromHTTPError(he *echo.HTTPError, log zerolog.Logger, c echo.Context, production bool) response.Envelope {
	if he.Code >= http.StatusInternalServerError {
		return internalError(he, log, c, production)
	}

	msg := fmt.Sprint(he.Message)
	switch he.Code {
	case http.StatusBadRequest:
		return response.ErrorEnvelope(he.Code, response.CodeValidation, response.ValidationFailedMessage, msg)
	case http.StatusUnauthorized:
		return response.ErrorEnvelope(he.Code, response.CodeUnauthorized, msg)
	case http.StatusForbidden:
		return response.ErrorEnvelope(he.Code, response.CodeForbidden, msg)
	case http.StatusNotFound:
		return response.ErrorEnvelope(he.Code, response.CodeNotFound, msg)
	case http.StatusConflict:
		return response.ErrorEnvelope(he.Code, response.CodeConflict, msg)
	case http.StatusTooManyRequests:
		return response.ErrorEnvelope(he.Code, response.CodeRateLimitExceeded, msg)
	default:
		return response.ErrorEnvelope(he.Code, statusCode(he.Code), msg)
	}
}

// internalError logs the real cause and returns a generic envelope. Outside
// production the cause is echoed in errors to ease debugging.
func internalError(err error, log zerolog.Logger, c echo.Context, production bool) response.Envelope {
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")

	if production {
		return response.ErrorEnvelope(http.StatusInternalServerError, response.CodeInternal, "Internal server error")
	}
	return response.ErrorEnvelope(http.StatusInternalServerError, response.CodeInternal, "Internal server error", err.Error())
}

// statusCode turns a status such as 405 into "METHOD_NOT_ALLOWED".
func statusCode(status int) string {
	return strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_"))
}
