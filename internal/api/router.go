package api

import (
	"context"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/playvault/client-gateway/internal/api/handler"
	"github.com/playvault/client-gateway/internal/api/middleware"
	"github.com/playvault/client-gateway/internal/core/ports"
	"github.com/playvault/client-gateway/internal/routes"
)

// Deps carries everything the router wires together.
type Deps struct {
	Sessions     ports.SessionService
	Platform     ports.PlatformClient
	Analytics    middleware.PageViewSink
	HealthChecks map[string]func(context.Context) error
	CookieSecret string
	SessionTTL   time.Duration
	Logger       zerolog.Logger
}

// NewRouter builds the Echo instance with the three guarded route trees and
// the legacy redirect resolver registered ahead of routing.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	// Legacy paths resolve before router matching: /portal/* and
	// /client-login redirect, they never 404.
	e.Pre(middleware.LegacyRedirect(d.Sessions, d.CookieSecret))

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("gateway"))
	e.Use(middleware.Session(d.Sessions, d.CookieSecret))
	if d.Analytics != nil {
		e.Use(middleware.Analytics(d.Analytics))
	}

	authHandler := handler.NewAuthHandler(d.Sessions, d.CookieSecret, d.SessionTTL)
	clientHandler := handler.NewClientHandler(d.Platform)
	adminHandler := handler.NewAdminHandler(d.Platform)

	healthHandler := handler.NewHealthHandler(d.HealthChecks)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)

	// --- Public tree ---
	e.GET("/", clientHandler.Games) // landing shows the public catalog
	e.GET("/games", clientHandler.Games)
	e.GET("/session", authHandler.Current)
	e.POST("/logout", authHandler.Logout)
	e.GET("/p/:token", authHandler.MagicLink)

	// Guest routes carry the guard per route rather than through a group: a
	// group with middleware registers a catch-all under its prefix, and the
	// guard must not claim paths beyond these six. The GET views exist so
	// guard redirects always land on a renderable page.
	guestGuard := middleware.GuestGuard()
	e.GET(routes.Login, authHandler.View("login", routes.Login), guestGuard)
	e.POST(routes.Login, authHandler.ClientLogin, guestGuard)
	e.GET(routes.Register, authHandler.View("register", routes.Register), guestGuard)
	e.POST(routes.Register, authHandler.Register, guestGuard)
	e.GET(routes.AdminLogin, authHandler.View("admin_login", routes.AdminLogin), guestGuard)
	e.POST(routes.AdminLogin, authHandler.AdminLogin, guestGuard)

	// --- Client tree ---
	client := e.Group("/client", middleware.ClientGuard())
	client.GET("", clientHandler.Home)
	client.GET("/wallet", clientHandler.WalletBalance)
	client.POST("/wallet/add", clientHandler.Deposit)
	client.POST("/wallet/withdraw", clientHandler.Withdraw)
	client.GET("/wallet/transaction/:orderId", clientHandler.Transaction)
	client.GET("/games", clientHandler.Games)
	client.GET("/referrals", clientHandler.Referrals)
	client.POST("/promos", clientHandler.RedeemPromo)
	client.GET("/profile", clientHandler.Profile)
	client.PATCH("/profile", clientHandler.UpdateProfile)

	// --- Admin tree ---
	admin := e.Group("/admin", middleware.AdminGuard())
	admin.GET("", adminHandler.Dashboard)
	for _, resource := range handler.AdminResources {
		admin.GET("/"+resource, adminHandler.List(resource))
		admin.POST("/"+resource, adminHandler.Create(resource))
		admin.GET("/"+resource+"/:id", adminHandler.Get(resource))
		admin.PUT("/"+resource+"/:id", adminHandler.Update(resource))
		admin.DELETE("/"+resource+"/:id", adminHandler.Delete(resource))
	}

	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
