package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kenshin-api/internal/application/auth"
	"github.com/jhoicas/Kenshin-api/internal/application/billing"
	"github.com/jhoicas/Kenshin-api/internal/application/dto"
	"github.com/jhoicas/Kenshin-api/internal/domain"
	calc "github.com/jhoicas/Kenshin-api/internal/domain/billing"
	"github.com/jhoicas/Kenshin-api/internal/domain/entity"
	"github.com/jhoicas/Kenshin-api/internal/domain/repository"
	"github.com/jhoicas/Kenshin-api/internal/infrastructure/cache"
	"github.com/jhoicas/Kenshin-api/internal/infrastructure/dlms"
	"github.com/jhoicas/Kenshin-api/internal/infrastructure/export"
	"github.com/jhoicas/Kenshin-api/internal/infrastructure/filestore"
	"github.com/jhoicas/Kenshin-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Kenshin-api/internal/infrastructure/ratefile"
	"github.com/jhoicas/Kenshin-api/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/Kenshin-api/internal/interfaces/http"
	"github.com/jhoicas/Kenshin-api/internal/observability/metrics"
	"github.com/jhoicas/Kenshin-api/pkg/config"
	"github.com/jhoicas/Kenshin-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Billing.Storage).
		Msg("iniciando aplicación")

	metrics.Register(prometheus.DefaultRegisterer)
	ctx := context.Background()

	// ── Almacenamiento ────────────────────────────────────────────────────────
	var (
		billingRepo repository.BillingRepository
		readerRepo  repository.ReaderRepository
	)
	switch cfg.Billing.Storage {
	case config.StoragePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("crear esquema")
		}
		billingRepo = postgres.NewBillingRepository(pool)
		readerRepo = postgres.NewReaderRepository(pool)
	default:
		billingRepo = filestore.NewBillingRepository(filepath.Join(cfg.Billing.DataDir, "billing"), log.Component("filestore"))
		readerRepo = filestore.NewReaderRepository(cfg.Billing.DataDir)
	}

	if cfg.Redis.Enabled() {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("redis no disponible, se continúa sin cache")
		} else {
			defer rdb.Close()
			billingRepo = cache.NewBillingCache(billingRepo, rdb, cfg.Redis.Prefix, cfg.Redis.TTL, log.Component("cache"))
		}
	}

	var uploader billing.Uploader
	if cfg.S3.Enabled() {
		s3, err := storage.NewS3Uploader(cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("configurar almacenamiento S3")
		}
		uploader = s3
	}

	rates := ratefile.NewLoader(cfg.Billing.RateFile, log.Component("ratefile"))
	table := rates.Load()
	log.Info().Str("rate_type", table.RateType).Bool("defaults", rates.UsingDefaults()).Msg("tarifas cargadas")

	// ── DLMS ──────────────────────────────────────────────────────────────────
	// El binario no incluye codec COSEM: la Factory reporta no_codec y las lecturas
	// responden DEVICE_UNAVAILABLE hasta que se enlace uno.
	factory := dlms.NewFactory(dlms.WithLogger(log.Component("dlms")))
	connector := dlms.NewGatewayConnector(dlms.GatewayConfig{
		Addr:            cfg.DLMS.GatewayAddr,
		ClientWPort:     uint16(cfg.DLMS.ClientWPort),
		ServerWPort:     uint16(cfg.DLMS.ServerWPort),
		ResponseTimeout: cfg.DLMS.ResponseTimeout,
		Objects: dlms.Objects{
			BillingParams: cfg.DLMS.BillingParamsObject,
			DatetimeNow:   cfg.DLMS.DatetimeObject,
			DemandReset:   cfg.DLMS.DemandResetObject,
		},
	}, nil, log.Component("dlms"))
	opener := dlms.NewOpener(connector, factory)
	sessionOpener := billing.OpenerFunc(func(ctx context.Context, serialID string) (billing.MeterSession, error) {
		s, err := opener.Open(ctx, serialID)
		if err != nil {
			return nil, err
		}
		return s, nil
	})

	// ── Casos de uso ──────────────────────────────────────────────────────────
	defaults := calc.Defaults{
		Commercial: cfg.Billing.Commercial,
		Multiplier: decimalOr(cfg.Billing.Multiplier, decimal.NewFromInt(1), log.Zerolog()),
		Discount:   decimalOr(cfg.Billing.Discount, decimal.Zero, log.Zerolog()),
		Interest:   decimalOr(cfg.Billing.Interest, decimal.Zero, log.Zerolog()),
		Reader:     cfg.Billing.Reader,
		Version:    cfg.Billing.Version,
	}
	issuer := entity.Issuer{Name: cfg.Billing.Company, Address: cfg.Billing.Address, Phone: cfg.Billing.Phone}

	authUC := auth.NewAuthUseCase(readerRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	bootstrapAdmin(authUC, cfg.Admin, log.Zerolog())

	billingUC := billing.NewBillingUseCase(billingRepo, rates, defaults, log.Component("billing"))
	rateUC := billing.NewRateUseCase(rates)
	exportUC := billing.NewExportUseCase(billingRepo, rates, issuer, uploader, log.Component("export"))
	meterReadUC := billing.NewMeterReadUseCase(sessionOpener, billingRepo, rates,
		export.NewDirSink(cfg.Billing.ExportDir), defaults, log.Component("meter"))

	// ── HTTP ──────────────────────────────────────────────────────────────────
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Kenshin API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "dlms": factory.IsAvailable()})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		BillingUC:   billingUC,
		RateUC:      rateUC,
		ExportUC:    exportUC,
		MeterReadUC: meterReadUC,
		DLMS:        factory,
		JWTSecret:   cfg.JWT.Secret,
		Gatherer:    prometheus.DefaultGatherer,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// decimalOr interpreta un valor de configuración; inválido = def.
func decimalOr(s string, def decimal.Decimal, log zerolog.Logger) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		log.Warn().Str("value", s).Msg("valor numérico de configuración inválido, se usa el valor por defecto")
		return def
	}
	return d
}

// bootstrapAdmin crea el admin configurado si todavía no existe.
func bootstrapAdmin(uc *auth.AuthUseCase, cfg config.AdminConfig, log zerolog.Logger) {
	if cfg.Username == "" {
		return
	}
	_, err := uc.Register(dto.RegisterRequest{
		Username: cfg.Username,
		Password: cfg.Password,
		Name:     cfg.Name,
		Role:     entity.RoleAdmin,
	})
	switch {
	case err == nil:
		log.Info().Str("username", cfg.Username).Msg("admin creado")
	case errors.Is(err, domain.ErrUsernameTaken):
	default:
		log.Error().Err(err).Msg("crear admin")
	}
}
