package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/order-tracking/internal/api/middleware"
	"github.com/99minutos/order-tracking/internal/core/policy"
	"github.com/99minutos/order-tracking/internal/core/ports"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// ctxActor returns the identity injected by the Auth middleware and fails
// fast with 401 when it is missing.
func ctxActor(c echo.Context) (policy.Actor, error) {
	actor := middleware.ActorFrom(c)
	if actor.Anonymous() {
		return policy.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	return actor, nil
}

// pageParams reads ?page= and ?limit=. Missing or invalid values fall back
// to page 1 and defaultPageLimit; limit is capped at maxPageLimit.
func pageParams(c echo.Context) (page, limit int, p ports.Page) {
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err = strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit, ports.Page{Limit: limit, Offset: (page - 1) * limit}
}

// bindBody decodes the request body, turning decode failures into a 400.
func bindBody(c echo.Context, dst any) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	return nil
}
