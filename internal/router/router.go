package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"ledgerlens/internal/handler"
	"ledgerlens/internal/metrics"
	"ledgerlens/internal/middleware"
)

// Options carries the router's cross-cutting configuration.
type Options struct {
	APIKey         string
	AllowedOrigins []string
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	documentH *handler.DocumentHandler,
	templateH *handler.TemplateHandler,
	usageH *handler.UsageHandler,
	healthH *handler.HealthHandler,
	m *metrics.Metrics,
	opts Options,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger("/healthz", "/readyz", "/metrics"))
	r.Use(middleware.CORS(opts.AllowedOrigins))
	r.Use(middleware.Metrics(m))

	// Health checks and operational endpoints
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)
	r.GET("/metrics", gin.WrapH(m.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	v1.Use(middleware.APIKeyAuth(opts.APIKey))

	// Document extraction routes
	documents := v1.Group("/documents")
	documents.POST("/process", documentH.Process)
	documents.POST("/reprocess", documentH.Reprocess)
	documents.POST("/validate", documentH.Validate)

	// Prompt template routes
	templates := v1.Group("/templates")
	templates.GET("", templateH.List)
	templates.POST("/reload", templateH.Reload)

	// Usage reporting routes
	usage := v1.Group("/usage")
	usage.GET("/costs", usageH.GetCosts)
	usage.GET("/export", usageH.Export)

	return r
}
