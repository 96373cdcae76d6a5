package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/Kenshin-api/internal/application/auth"
	"github.com/jhoicas/Kenshin-api/internal/application/billing"
	"github.com/jhoicas/Kenshin-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	BillingUC   *billing.BillingUseCase
	RateUC      *billing.RateUseCase
	ExportUC    *billing.ExportUseCase
	MeterReadUC *billing.MeterReadUseCase
	DLMS        availability
	JWTSecret   string
	// Gatherer de /metrics; nil = sin endpoint de métricas.
	Gatherer prometheus.Gatherer
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	meterHandler := NewMeterHandler(deps.MeterReadUC, deps.DLMS)
	api.Get("/dlms/availability", meterHandler.Availability)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	adminOnly := RequireRole(entity.RoleAdmin)

	protected.Post("/readers", adminOnly, authHandler.Register)

	bills := protected.Group("/billing")
	billingHandler := NewBillingHandler(deps.BillingUC)
	bills.Post("/compute", billingHandler.Compute)
	bills.Get("/meters", billingHandler.ListMeters)
	bills.Delete("/", adminOnly, billingHandler.ClearAll)
	bills.Get("/:serial", billingHandler.Latest)
	bills.Get("/:serial/history", billingHandler.History)
	bills.Get("/:serial/summary", billingHandler.Summary)
	bills.Delete("/:serial", billingHandler.Clear)

	rates := protected.Group("/rates")
	rateHandler := NewRateHandler(deps.RateUC)
	rates.Get("/", rateHandler.Current)
	rates.Post("/validate", rateHandler.Validate)
	rates.Put("/", adminOnly, rateHandler.Replace)

	exportHandler := NewExportHandler(deps.ExportUC)
	protected.Get("/exports/:serial", exportHandler.Export)

	protected.Post("/meters/read", RequireDevice(deps.DLMS), meterHandler.Read)
}
