package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/kikipackaging/backoffice/internal/api/handler"
	"github.com/kikipackaging/backoffice/internal/api/middleware"
	"github.com/kikipackaging/backoffice/internal/core/domain"
	"github.com/kikipackaging/backoffice/internal/core/ports"
	"github.com/kikipackaging/backoffice/internal/infrastructure/http/handlers"
)

// RouterConfig carries the services and probes the router exposes.
type RouterConfig struct {
	Auth      ports.AuthService
	Catalog   ports.CatalogService
	Inventory ports.InventoryService
	Accounts  ports.AccountService
	Activity  ports.ActivityService

	HealthChecks map[string]handlers.Check
	Log          zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(cfg.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(cfg.Log))
	e.Use(echoprometheus.NewMiddleware("backoffice"))

	// --- Health probes and metrics (no session required) ---
	e.GET("/health", handlers.NewHealthHandler().Liveness)
	e.GET("/health/ready", handlers.NewHealthDependenciesHandler(cfg.HealthChecks).Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	authHandler := handler.NewAuthHandler(cfg.Auth)
	productHandler := handler.NewProductHandler(cfg.Catalog, cfg.Inventory)
	orderHandler := handler.NewOrderHandler(cfg.Inventory)
	accountHandler := handler.NewAccountHandler(cfg.Accounts)
	activityHandler := handler.NewActivityHandler(cfg.Activity)

	// --- Public routes ---
	e.POST("/v1/auth/login", authHandler.Login)
	e.GET("/v1/auth/session", authHandler.Session)
	e.GET("/v1/invitations/validate", accountHandler.Validate)
	e.POST("/v1/invitations/accept", accountHandler.Accept)

	// --- Signed-in operator ---
	v1 := e.Group("/v1", middleware.RequireSession(cfg.Auth))
	admin := middleware.RBAC(domain.RoleAdmin)

	v1.POST("/auth/logout", authHandler.Logout)

	v1.GET("/products", productHandler.List)
	v1.GET("/products/low-stock", productHandler.LowStock)
	v1.GET("/products/categories", productHandler.Categories)
	v1.GET("/products/:id", productHandler.Get)
	v1.POST("/products", productHandler.Create, admin)
	v1.PATCH("/products/:id", productHandler.Update, admin)
	v1.DELETE("/products/:id", productHandler.Deactivate, admin)
	v1.POST("/products/:id/reactivate", productHandler.Reactivate, admin)
	v1.POST("/products/:id/stock", productHandler.AdjustStock, admin)

	v1.GET("/orders", orderHandler.List)
	v1.POST("/orders", orderHandler.Create)
	v1.GET("/orders/:id", orderHandler.Get)
	v1.PATCH("/orders/:id", orderHandler.Update)
	v1.POST("/orders/:id/status", orderHandler.ChangeStatus)
	v1.POST("/orders/:id/cancel", orderHandler.Cancel)
	v1.DELETE("/orders/:id", orderHandler.Delete, admin)
	v1.DELETE("/orders/items/:id", orderHandler.DeleteItem)

	v1.GET("/users", accountHandler.ListUsers, admin)
	v1.DELETE("/users/:id", accountHandler.DeleteUser, admin)
	v1.GET("/invitations", accountHandler.Pending, admin)
	v1.POST("/invitations", accountHandler.Invite, admin)
	v1.POST("/invitations/:id/resend", accountHandler.Resend, admin)
	v1.DELETE("/invitations/:id", accountHandler.Revoke, admin)

	v1.GET("/activity", activityHandler.List, admin)
	v1.GET("/activity/me", activityHandler.Mine)
	v1.GET("/activity/:entity_type/:entity_id", activityHandler.ForEntity, admin)

	return e
}

// requestLogger writes one structured line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
