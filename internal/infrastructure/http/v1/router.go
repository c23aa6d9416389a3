// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appctx "github.com/shabani2/salemanagement-api/internal/core/context"
	"github.com/shabani2/salemanagement-api/internal/domain"
	"github.com/shabani2/salemanagement-api/internal/domain/catalogs/pointofsale"
	"github.com/shabani2/salemanagement-api/internal/domain/catalogs/product"
	"github.com/shabani2/salemanagement-api/internal/domain/catalogs/region"
	"github.com/shabani2/salemanagement-api/internal/domain/ledger"
	"github.com/shabani2/salemanagement-api/internal/domain/orders"
	"github.com/shabani2/salemanagement-api/internal/domain/reports"
	"github.com/shabani2/salemanagement-api/internal/infrastructure/http/v1/handlers"
	"github.com/shabani2/salemanagement-api/internal/infrastructure/http/v1/middleware"
	"github.com/shabani2/salemanagement-api/internal/infrastructure/storage/postgres"
	"github.com/shabani2/salemanagement-api/internal/infrastructure/storage/postgres/catalog_repo"
	"github.com/shabani2/salemanagement-api/internal/infrastructure/storage/postgres/ledger_repo"
	"github.com/shabani2/salemanagement-api/internal/infrastructure/storage/postgres/order_repo"
	"github.com/shabani2/salemanagement-api/pkg/config"
	"github.com/shabani2/salemanagement-api/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	Pool      *postgres.Pool
	TxManager *postgres.TxManager
	Logger    *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// Stock behavior and aggregation defaults
	Ledger  config.LedgerConfig
	Reports config.ReportsConfig

	Version string
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)

	domain.SetDefaultPageSize(cfg.Ledger.DefaultPageSize)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.Metrics())
	router.Use(middleware.ErrorHandler())

	// Health and metrics endpoints (no auth)
	healthHandler := handlers.NewHealthHandler(cfg.Pool, cfg.Version)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Repositories
	productRepo := catalog_repo.NewProductRepo(cfg.TxManager)
	regionRepo := catalog_repo.NewRegionRepo(cfg.TxManager)
	posRepo := catalog_repo.NewPointOfSaleRepo(cfg.TxManager)
	locations := catalog_repo.NewLocationChecker(regionRepo, posRepo)
	ledgerRepo := ledger_repo.NewRepo(cfg.TxManager)
	orderRepo := order_repo.NewRepo(cfg.TxManager)
	orderNumbers := order_repo.NewOrderNumbers(cfg.TxManager)
	auditTrail, err := postgres.NewFulfillmentAudit(cfg.TxManager)
	if err != nil {
		return nil, err
	}

	// Services
	productService := product.NewService(productRepo)
	regionService := region.NewService(regionRepo)
	posService := pointofsale.NewService(posRepo)
	ledgerService := ledger.NewService(ledgerRepo, productRepo, locations, cfg.TxManager, cfg.Ledger.StockPolicy)
	orderService := orders.NewService(orderRepo, productRepo, ledgerService, orderNumbers, auditTrail, cfg.TxManager)
	reportService := reports.NewService(
		ledgerService, posRepo, productRepo, regionRepo, posRepo,
		reports.Period(cfg.Reports.DefaultPeriod),
	)

	// API v1: authenticated, scope resolved once per request
	api := router.Group("/api/v1")
	api.Use(middleware.Auth(cfg.JWTValidator))
	api.Use(middleware.Scope(posService))

	baseHandler := handlers.NewBaseHandler()

	// Catalogs: reference data is maintained centrally
	catalogs := api.Group("/catalog")
	{
		productHandler := handlers.NewProductHandler(baseHandler, productService)
		regionHandler := handlers.NewRegionHandler(baseHandler, regionService)
		posHandler := handlers.NewPointOfSaleHandler(baseHandler, posService)

		registerCatalog(catalogs.Group("/products"), productHandler)
		registerCatalog(catalogs.Group("/regions"), regionHandler)
		registerCatalog(catalogs.Group("/points-of-sale"), posHandler)
	}

	// Ledger
	{
		movementHandler := handlers.NewMovementHandler(baseHandler, ledgerService)
		stockHandler := handlers.NewStockHandler(baseHandler, ledgerService)

		api.POST("/movements", movementHandler.Record)
		api.GET("/movements", movementHandler.List)
		api.GET("/stock", stockHandler.List)
	}

	// Orders
	{
		orderHandler := handlers.NewOrderHandler(baseHandler, orderService)

		api.POST("/orders", orderHandler.Create)
		api.GET("/orders", orderHandler.List)
		api.GET("/orders/:id", orderHandler.Get)
		api.GET("/orders/:id/audit", orderHandler.Audit)
		api.POST("/orders/:id/lines/:lineId/deliver", orderHandler.DeliverLine)
		api.POST("/orders/:id/lines/:lineId/cancel", orderHandler.CancelLine)
	}

	// Reports
	{
		reportsHandler := handlers.NewReportsHandler(baseHandler, reportService)

		api.GET("/reports/aggregate", reportsHandler.Aggregate)
		api.GET("/reports/top-products", reportsHandler.TopProducts)
	}

	return router, nil
}

// CatalogRouteHandler defines the interface for catalog handlers.
type CatalogRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	SetDeletionMark(c *gin.Context)
}

// registerCatalog registers standard CRUD routes for a catalog. Reads are
// open to every authenticated role; mutations are an administrator concern.
func registerCatalog(group *gin.RouterGroup, handler CatalogRouteHandler) {
	admins := middleware.RequireRole(appctx.RoleSuperAdmin, appctx.RoleRegionAdmin)

	group.GET("", handler.List)
	group.GET("/:id", handler.Get)
	group.POST("", admins, handler.Create)
	group.PUT("/:id", admins, handler.Update)
	group.DELETE("/:id", admins, handler.Delete)
	group.POST("/:id/deletion-mark", admins, handler.SetDeletionMark)
}
