// internal/router/router.go
package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/larderline/larder-backend/internal/config"
	"github.com/larderline/larder-backend/internal/domain"
	"github.com/larderline/larder-backend/internal/handlers"
	"github.com/larderline/larder-backend/internal/metrics"
	"github.com/larderline/larder-backend/internal/middleware"
	"github.com/larderline/larder-backend/internal/services"
	"github.com/larderline/larder-backend/internal/utils"
)

const version = "1.0.0"

// Dependencies are the storage backends the API runs on. Audit and Registry are optional.
type Dependencies struct {
	Products   domain.ProductRepository
	Selections domain.VendorSelectionRepository
	Audit      middleware.AuditRecorder
	Registry   *prometheus.Registry
}

// Initialize wires services, handlers and middleware. ctx bounds background work such as rate limiter cleanup.
func Initialize(ctx context.Context, cfg *config.Config, deps Dependencies) *gin.Engine {
	var m *metrics.Metrics
	if cfg.Metrics.Enabled && deps.Registry != nil {
		m = metrics.New(deps.Registry)
	}

	// Initialize services
	productService := services.NewProductService(deps.Products, m)
	selectionService := services.NewVendorSelectionService(deps.Selections, m)

	// Initialize handlers
	houseItemHandler := handlers.NewHouseItemHandler(productService)
	selectionHandler := handlers.NewVendorSelectionHandler(selectionService)

	utils.SetJWTSecret(cfg.JWT.SecretKey)
	utils.SetJWTIssuer(cfg.JWT.Issuer)

	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(m))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept-Language", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader, "X-Total-Count", "X-Total-Pages"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.I18nMiddleware(cfg.I18n.DefaultLocale))
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst)
		go limiter.Run(ctx)
		r.Use(limiter.Middleware())
	}
	if deps.Audit != nil {
		r.Use(middleware.AuditLogMiddleware(deps.Audit))
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"version":  version,
			"database": cfg.Database.Driver,
		})
	})

	if m != nil {
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	}

	// API v1 routes
	v1 := r.Group("/v1")
	v1.Use(middleware.OptionalAuth())
	{
		houseItems := v1.Group("/house-items")
		{
			houseItems.GET("", houseItemHandler.GetHouseItems)
			houseItems.POST("", houseItemHandler.CreateHouseItem)
			houseItems.GET("/:id", houseItemHandler.GetHouseItem)
			houseItems.PUT("/:id", houseItemHandler.UpdateHouseItem)
			houseItems.DELETE("/:id", houseItemHandler.DeleteHouseItem)
			houseItems.POST("/:id/adjust-stock", houseItemHandler.AdjustStock)
			houseItems.PUT("/:id/stock-count", houseItemHandler.SetStockCount)
		}

		inventories := v1.Group("/inventories")
		{
			inventories.GET("/summary", houseItemHandler.GetInventorySummary)
			inventories.GET("/reorder", houseItemHandler.GetReorderList)
			inventories.GET("/location/:location", houseItemHandler.GetInventoryByLocation)
		}

		houseOrders := v1.Group("/house-orders")
		{
			houseOrders.GET("/:id/vendor-selections", selectionHandler.GetOrderSelections)
			houseOrders.GET("/:id/vendor-selection-stats", selectionHandler.GetOrderSelectionStats)
			houseOrders.GET("/items/:itemId/vendor-selection", selectionHandler.GetItemSelection)

			// Authenticated routes
			protected := houseOrders.Group("/items/:itemId")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("/override-vendor-selection", selectionHandler.OverrideSelection)
				protected.POST("/reset-vendor-selection", selectionHandler.ResetSelection)
			}
		}

		selections := v1.Group("/vendor-selections")
		{
			selections.GET("", selectionHandler.GetVendorSelections)
			selections.GET("/analysis", selectionHandler.GetAnalysis)
			selections.GET("/best-strategy", selectionHandler.GetBestStrategy)
			selections.GET("/recommendations", selectionHandler.GetRecommendations)
			selections.POST("/validate", selectionHandler.ValidateSelection)
		}
	}

	return r
}
