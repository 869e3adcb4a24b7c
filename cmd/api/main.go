package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/pharmacy-api/docs"
	"github.com/jhoicas/pharmacy-api/internal/application/analytics"
	"github.com/jhoicas/pharmacy-api/internal/application/auth"
	"github.com/jhoicas/pharmacy-api/internal/application/inventory"
	"github.com/jhoicas/pharmacy-api/internal/application/reports"
	"github.com/jhoicas/pharmacy-api/internal/application/usecase"
	"github.com/jhoicas/pharmacy-api/internal/infrastructure/backend"
	infraexcel "github.com/jhoicas/pharmacy-api/internal/infrastructure/excel"
	infrapdf "github.com/jhoicas/pharmacy-api/internal/infrastructure/pdf"
	httpRouter "github.com/jhoicas/pharmacy-api/internal/interfaces/http"
	"github.com/jhoicas/pharmacy-api/pkg/config"
	"github.com/jhoicas/pharmacy-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

// @title                       Pharmacy API
// @version                     1.0
// @description                 Inventario por lotes, dispensación y registros regulatorios de farmacia.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("db_driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store, err := backend.Open(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento")
	}
	defer store.Close()

	ledger := inventory.NewLedgerUseCase(store.TxRunner, store.Movements, inventory.LedgerConfig{
		ReceiptPrefix:          cfg.Pharmacy.ReceiptPrefix,
		DefaultExpiryAlertDays: cfg.Pharmacy.DefaultExpiryAlertDays,
	}, log)
	stockUC := inventory.NewStockUseCase(store.Batches, cfg.Pharmacy.ChecklistWindowDays)
	importUC := inventory.NewImportUseCase(ledger, store.Products, store.Suppliers, infraexcel.NewStockReader())

	// Documentos: tablas en PDF (maroto) o Excel (excelize); recibos en PDF (fpdf)
	documents := reports.NewDocumentUseCase(
		store.Sales,
		infrapdf.NewTableRenderer(cfg.Pharmacy.Name),
		infraexcel.NewTableRenderer(),
		infrapdf.NewReceiptRenderer(),
		reports.Config{PharmacyName: cfg.Pharmacy.Name, Currency: cfg.Pharmacy.Currency},
	)

	authUC := auth.NewAuthUseCase(store.Users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    10 * 1024 * 1024,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  corsOrigins(cfg.HTTP.CORSOrigins),
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		AllowMethods:  "GET,POST,PUT,DELETE,OPTIONS",
		ExposeHeaders: "Content-Disposition, X-Receipt-Number",
	}))
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	docs.SwaggerInfo.Host = cfg.HTTP.Addr()
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    docs.SwaggerInfo.Title,
		}))
	} else {
		log.Warn().Str("file", swaggerFile).Msg("swagger.json no encontrado, /docs deshabilitado")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:     authUC,
		ProductUC:  usecase.NewProductUseCase(store.Products, store.Generics),
		GenericUC:  usecase.NewGenericUseCase(store.Generics),
		SupplierUC: usecase.NewSupplierUseCase(store.Suppliers),
		Ledger:     ledger,
		Stock:      stockUC,
		Import:     importUC,
		Documents:  documents,
		Sales:      analytics.NewSalesUseCase(store.Analytics, store.Sales),
		JWTSecret:  cfg.JWT.Secret,
		Log:        log,
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

// corsOrigins normaliza la lista separada por comas de CORS_ORIGINS.
func corsOrigins(raw string) string {
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return "*"
	}
	return strings.Join(out, ",")
}
