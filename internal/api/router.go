package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/invoiceflow/console/internal/api/handler"
	"github.com/invoiceflow/console/internal/api/middleware"
	"github.com/invoiceflow/console/internal/core/domain"
	"github.com/invoiceflow/console/internal/core/ports"
)

// Deps carries the wired services the router needs.
type Deps struct {
	Auth       ports.AuthService
	Sessions   ports.SessionStore
	Dashboards ports.DashboardService
	Actions    ports.ActionService
	Redis      *redis.Client
	Log        zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("console"))
	e.Use(middleware.Session())

	// --- Handlers ---
	sessionHandler := handler.NewSessionHandler(deps.Auth, deps.Sessions)
	dashboardHandler := handler.NewDashboardHandler(deps.Dashboards, deps.Sessions)
	actionHandler := handler.NewActionHandler(deps.Actions)
	healthHandler := handler.NewHealthHandler(deps.Redis)

	// --- Session routes ---
	e.GET("/session", sessionHandler.State)
	e.POST("/session/token", sessionHandler.Token)
	e.POST("/session/login", sessionHandler.Login)
	e.POST("/session/logout", sessionHandler.Logout)
	e.POST("/session/language", sessionHandler.Language)

	// --- Dashboards (views are role-guarded; the landing page is public) ---
	e.GET("/", dashboardHandler.Home)
	e.GET("/admin", dashboardHandler.Admin, middleware.Guard(domain.RoleAdmin, deps.Auth))
	e.GET("/investor/market", dashboardHandler.InvestorMarket, middleware.Guard(domain.RoleInvestor, deps.Auth))
	e.GET("/investor/portfolio", dashboardHandler.InvestorPortfolio, middleware.Guard(domain.RoleInvestor, deps.Auth))
	e.GET("/sme/marketplace", dashboardHandler.SmeWorkspace, middleware.Guard(domain.RoleSME, deps.Auth))
	e.GET("/sme/portfolio", dashboardHandler.SmePortfolio, middleware.Guard(domain.RoleSME, deps.Auth))

	// --- Actions (unguarded: a missing token answers with a credential
	// challenge instead of a redirect) ---
	e.POST("/admin/invoices/:id/approve", actionHandler.Approve)
	e.POST("/admin/invoices/:id/mark-paid", actionHandler.MarkPaid)
	e.POST("/invoices", actionHandler.Create)
	e.POST("/invoices/:id/submit", actionHandler.Submit)
	e.POST("/invoices/:id/fund", actionHandler.Fund)
	e.POST("/wallet/deposit", actionHandler.Deposit)

	// --- Observability ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/healthz", healthHandler.Liveness)
	e.GET("/healthz/ready", healthHandler.Readiness)

	return e
}
