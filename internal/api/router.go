package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/99minutos/order-tracking/docs"
	"github.com/99minutos/order-tracking/internal/api/handler"
	"github.com/99minutos/order-tracking/internal/api/middleware"
	"github.com/99minutos/order-tracking/internal/core/policy"
	"github.com/99minutos/order-tracking/internal/core/ports"
	"github.com/99minutos/order-tracking/internal/infrastructure/config"
)

// Dependencies groups everything the router needs. Limiter may be nil, in
// which case no rate limiting is applied.
type Dependencies struct {
	Logger     zerolog.Logger
	Production bool

	Tokens       middleware.TokenVerifier
	AuthService  ports.AuthService
	OrderService ports.OrderService
	UserService  ports.UserService

	Limiter   middleware.Limiter
	RateLimit config.RateLimitConfig

	Readiness []handler.Dependency
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger, deps.Production)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Logger))
	e.Use(echoprometheus.NewMiddleware("order_tracking"))

	// --- Operational endpoints (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Readiness...)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	requireAuth := middleware.Auth(deps.Tokens)
	rl := rateLimiters(deps)

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(deps.AuthService)
	authGroup := e.Group("/auth", rl.general)
	authGroup.POST("/register", authHandler.Register, rl.auth)
	authGroup.POST("/login", authHandler.Login, rl.auth)
	authGroup.GET("/me", authHandler.Me, requireAuth)

	// --- Order routes ---
	orderHandler := handler.NewOrderHandler(deps.OrderService)
	orders := e.Group("/orders", rl.general, requireAuth)
	orders.POST("", orderHandler.Create, middleware.RBAC(policy.CreateOrder), rl.orders)
	orders.GET("", orderHandler.List, middleware.RBAC(policy.ListOrders))
	orders.GET("/my-orders", orderHandler.MyOrders, middleware.RBAC(policy.ViewOwnOrders))
	orders.GET("/:id", orderHandler.Get)
	orders.PATCH("/:id/status", orderHandler.UpdateStatus, middleware.RBAC(policy.UpdateOrderStatus))
	orders.DELETE("/:id", orderHandler.Delete, middleware.RBAC(policy.DeleteOrder))

	// --- User routes ---
	userHandler := handler.NewUserHandler(deps.UserService)
	users := e.Group("/users", rl.general, requireAuth)
	users.GET("", userHandler.List, middleware.RBAC(policy.ListUsers))
	users.GET("/role", userHandler.ByRole, middleware.RBAC(policy.ListUsersByRole))
	users.GET("/search", userHandler.Search, middleware.RBAC(policy.SearchUsers))
	users.GET("/:id", userHandler.Get)
	users.PATCH("/:id", userHandler.Update)
	users.DELETE("/:id", userHandler.Delete)

	return e
}

type limiters struct {
	general echo.MiddlewareFunc
	auth    echo.MiddlewareFunc
	orders  echo.MiddlewareFunc
}

func rateLimiters(deps Dependencies) limiters {
	if deps.Limiter == nil || !deps.RateLimit.Enabled {
		pass := func(next echo.HandlerFunc) echo.HandlerFunc { return next }
		return limiters{general: pass, auth: pass, orders: pass}
	}

	cfg := deps.RateLimit
	return limiters{
		general: middleware.RateLimit(deps.Limiter, middleware.RateLimitRule{
			Scope:   "general",
			Limit:   cfg.GeneralLimit,
			Window:  cfg.GeneralWindow,
			Message: "Too many requests from this IP, please try again later",
		}, deps.Logger),
		auth: middleware.RateLimit(deps.Limiter, middleware.RateLimitRule{
			Scope:   "auth",
			Limit:   cfg.AuthLimit,
			Window:  cfg.AuthWindow,
			Message: "Too many login attempts, please try again later",
		}, deps.Logger),
		orders: middleware.RateLimit(deps.Limiter, middleware.RateLimitRule{
			Scope:   "orders",
			Limit:   cfg.OrderLimit,
			Window:  cfg.OrderWindow,
			Message: "Too many order requests, please slow down",
		}, deps.Logger),
	}
}

// requestLogger emits one zerolog event per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogUserAgent: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil {
				evt = log.Warn().Err(v.Error)
			}
			evt.
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("ip", v.RemoteIP).
				Str("user_agent", v.UserAgent).
				Msg("request")
			return nil
		},
	})
}

