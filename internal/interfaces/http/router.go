package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pharmacy-api/internal/application/analytics"
	"github.com/jhoicas/pharmacy-api/internal/application/auth"
	"github.com/jhoicas/pharmacy-api/internal/application/inventory"
	"github.com/jhoicas/pharmacy-api/internal/application/reports"
	"github.com/jhoicas/pharmacy-api/internal/application/usecase"
	"github.com/jhoicas/pharmacy-api/internal/domain/entity"
	"github.com/jhoicas/pharmacy-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC     *auth.AuthUseCase
	ProductUC  *usecase.ProductUseCase
	GenericUC  *usecase.GenericUseCase
	SupplierUC *usecase.SupplierUseCase
	Ledger     *inventory.LedgerUseCase
	Stock      *inventory.StockUseCase
	Import     *inventory.ImportUseCase
	Documents  *reports.DocumentUseCase
	Sales      *analytics.SalesUseCase
	JWTSecret  string
	Log        *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	can := RequireCapability

	api := app.Group("/api")

	// Auth: signup es público salvo el primer admin; con token de admin permite elegir rol
	authHandler := NewAuthHandler(deps.AuthUC, log)
	authGroup := api.Group("/auth")
	authGroup.Post("/signup", OptionalAuth(deps.JWTSecret), authHandler.Signup)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/reset-password", authHandler.ResetPassword)

	jwtMW := AuthMiddleware(deps.JWTSecret)
	authGroup.Get("/me", jwtMW, authHandler.Me)
	authGroup.Put("/me/pin", jwtMW, authHandler.SetPIN)
	users := authGroup.Group("/users", jwtMW, can(entity.CapManageUsers))
	users.Get("/", authHandler.ListUsers)
	users.Put("/:id/role", authHandler.ChangeRole)
	users.Put("/:id/active", authHandler.SetActive)

	// Stock (protegido). Rutas estáticas antes de los parámetros.
	stockHandler := NewStockHandler(deps.Ledger, deps.Stock, deps.Import, deps.Documents, log)
	catalogHandler := NewCatalogHandler(deps.ProductUC, deps.GenericUC, deps.SupplierUC, log)
	stock := api.Group("/stock", jwtMW)
	stock.Get("/", can(entity.CapViewStock), stockHandler.List)
	stock.Post("/", can(entity.CapReceiveStock), stockHandler.Receive)
	stock.Post("/sell", can(entity.CapDispense), stockHandler.Sell)
	stock.Post("/bulk-sell", can(entity.CapDispense), stockHandler.BulkSell)
	stock.Post("/import", can(entity.CapImportStock), stockHandler.Import)
	stock.Get("/dda-ledger", can(entity.CapViewRegisters), stockHandler.DDALedger)
	stock.Get("/prescription-book", can(entity.CapViewRegisters), stockHandler.PrescriptionBook)
	stock.Get("/batches/:id", can(entity.CapViewStock), stockHandler.GetBatch)

	products := stock.Group("/products")
	products.Get("/", can(entity.CapViewStock), catalogHandler.ListProducts)
	products.Post("/", can(entity.CapManageCatalog), catalogHandler.CreateProduct)
	products.Get("/:id", can(entity.CapViewStock), catalogHandler.GetProduct)
	products.Put("/:id", can(entity.CapManageCatalog), catalogHandler.UpdateProduct)
	products.Delete("/:id", can(entity.CapDeleteCatalog), catalogHandler.DeleteProduct)

	generics := stock.Group("/generics")
	generics.Get("/", can(entity.CapViewStock), catalogHandler.ListGenerics)
	generics.Post("/", can(entity.CapManageCatalog), catalogHandler.CreateGeneric)
	generics.Get("/:id", can(entity.CapViewStock), catalogHandler.GetGeneric)
	generics.Put("/:id", can(entity.CapManageCatalog), catalogHandler.UpdateGeneric)
	generics.Delete("/:id", can(entity.CapDeleteCatalog), catalogHandler.DeleteGeneric)

	suppliers := stock.Group("/suppliers")
	suppliers.Get("/", can(entity.CapViewStock), catalogHandler.ListSuppliers)
	suppliers.Post("/", can(entity.CapManageCatalog), catalogHandler.CreateSupplier)
	suppliers.Get("/:id", can(entity.CapViewStock), catalogHandler.GetSupplier)
	suppliers.Put("/:id", can(entity.CapManageCatalog), catalogHandler.UpdateSupplier)
	suppliers.Delete("/:id", can(entity.CapDeleteCatalog), catalogHandler.DeleteSupplier)

	// Alertas y conciliación (protegido)
	alertsHandler := NewAlertsHandler(deps.Stock, deps.Ledger, deps.Documents, log)
	alerts := api.Group("/alerts", jwtMW)
	alerts.Get("/", can(entity.CapViewStock), alertsHandler.Alerts)
	alerts.Get("/checklist", can(entity.CapViewStock), alertsHandler.Checklist)
	alerts.Post("/reconcile", can(entity.CapReconcile), alertsHandler.Reconcile)

	// Auditoría (protegido)
	auditHandler := NewAuditHandler(deps.Ledger, deps.Documents, log)
	audit := api.Group("/audit", jwtMW, can(entity.CapViewAudit))
	audit.Get("/", auditHandler.List)
	audit.Get("/reprint/:txId", auditHandler.Reprint)

	// Ventas (protegido)
	salesHandler := NewSalesHandler(deps.Sales, deps.Documents, log)
	sales := api.Group("/sales", jwtMW)
	sales.Get("/my-sales", can(entity.CapViewOwnSales), salesHandler.MySales)
	sales.Get("/admin/overview", can(entity.CapViewAllSales), salesHandler.AdminOverview)
	sales.Get("/export-report", can(entity.CapExportReports), salesHandler.ExportReport)
}
