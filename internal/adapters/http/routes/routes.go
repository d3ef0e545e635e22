package routes

import (
	"time"

	"saeta-access/internal/adapters/http/handlers"
	"saeta-access/internal/adapters/http/middleware"
	"saeta-access/internal/config"
	"saeta-access/internal/core/domain"
	"saeta-access/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Setup configures all routes for the application. checkDB backs the health
// check and may be nil.
func Setup(app *fiber.App, svc *services.Container, cfg *config.Config, gatherer prometheus.Gatherer, checkDB func() error) {
	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg, checkDB)
	qrHandler := handlers.NewQRHandler(svc.Tokens)
	accessHandler := handlers.NewAccessHandler(svc.Access)
	cardHandler := handlers.NewCardHandler(svc.Cards)
	accessLogHandler := handlers.NewAccessLogHandler(svc.Access)
	sweepHandler := handlers.NewSweepHandler(svc.Sweeps)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	apiV1.Get("/", healthHandler.APIInfo)

	auth := middleware.AuthMiddleware(cfg)
	scanner := middleware.ScannerAuth(svc.Scanners)

	setupQRRoutes(apiV1.Group("/qr"), qrHandler, auth, scanner)
	setupAccessRoutes(apiV1.Group("/access"), accessHandler, auth, scanner)

	cardRoutes := apiV1.Group("/cards")
	cardRoutes.Use(auth)
	setupCardRoutes(cardRoutes, cardHandler)

	logRoutes := apiV1.Group("/access-logs")
	logRoutes.Use(auth, middleware.OperatorOrAdmin())
	setupAccessLogRoutes(logRoutes, accessLogHandler)

	adminRoutes := apiV1.Group("/admin")
	adminRoutes.Use(auth, middleware.AdminOnly())
	adminRoutes.Post("/sweeps", middleware.StrictRateLimiter(), sweepHandler.RunSweeps)
}

// setupQRRoutes configures QR token routes
func setupQRRoutes(router fiber.Router, handler *handlers.QRHandler, auth, scanner fiber.Handler) {
	router.Use(middleware.NoCacheHeaders())

	// A user may request their own token, staff may request anyone's
	router.Post("/users/:userId/token",
		auth,
		middleware.SelfOrRoles("userId", domain.RoleOperator, domain.RoleAdmin),
		handler.IssueToken,
	)

	// Scanners only
	router.Post("/validate", middleware.ScannerRateLimiter(), scanner, handler.ValidateToken)
}

// setupAccessRoutes configures checkpoint and status routes
func setupAccessRoutes(router fiber.Router, handler *handlers.AccessHandler, auth, scanner fiber.Handler) {
	router.Post("/scan", middleware.NoCacheHeaders(), middleware.ScannerRateLimiter(), scanner, handler.Scan)

	staff := router.Group("/users", auth, middleware.OperatorOrAdmin())
	staff.Post("/:userId/status", handler.ChangeStatus)
	staff.Post("/:userId/activate", handler.Activate)
}

// setupCardRoutes configures card routes. Per-card owner checks happen in
// the handler since the owner is only known after loading the card.
func setupCardRoutes(router fiber.Router, handler *handlers.CardHandler) {
	staff := middleware.OperatorOrAdmin()

	router.Post("/users/:userId", middleware.AdminOnly(), handler.CreateCard)
	router.Get("/users/:userId",
		middleware.SelfOrRoles("userId", domain.RoleOperator, domain.RoleAdmin),
		middleware.PrivateCacheHeaders(30*time.Second),
		handler.GetCardForUser,
	)

	router.Get("/:id", middleware.PrivateCacheHeaders(30*time.Second), handler.GetCard)
	router.Get("/:id/renew-qr", middleware.NoCacheHeaders(), handler.RenewToken)
	router.Get("/:id/validate", staff, middleware.NoCacheHeaders(), handler.ValidateCard)
	router.Patch("/:id/activate", staff, handler.ActivateCard)
	router.Patch("/:id/deactivate", staff, handler.DeactivateCard)
}

// setupAccessLogRoutes configures access history routes (Operator/Admin)
func setupAccessLogRoutes(router fiber.Router, handler *handlers.AccessLogHandler) {
	router.Get("/", handler.Between)
	router.Get("/users/:userId", handler.History)
	router.Get("/users/:userId/latest", handler.Latest)
}
