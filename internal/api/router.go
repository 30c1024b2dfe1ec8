package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/rosterdesk/rosterdesk/internal/cache"
	"github.com/rosterdesk/rosterdesk/internal/dbpool"
	"github.com/rosterdesk/rosterdesk/internal/middleware"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Log         *logrus.Logger
	Pool        *dbpool.Pool  // nil in remote-catalog mode
	Catalog     CatalogReader
	Writer      CatalogWriter // nil in remote-catalog mode
	Resolver    ResolverService
	Batch       BatchService
	Loader      PreloadService
	Cache       *cache.Cache
	CORSOrigins []string
	Version     string
}

// Router-level limits.
const (
	maxBodySize = 1 << 20 // 1 MB
	rateLimit   = 100     // requests per second per IP
	rateBurst   = 200     // token bucket burst size
)

// setupMiddleware configures all middleware on the Gin engine.
func setupMiddleware(ctx context.Context, r *gin.Engine, deps *RouterDeps) {
	r.SetTrustedProxies(nil) //nolint:errcheck // nil always succeeds.
	r.Use(middleware.RequestID(deps.Log))
	r.Use(ginLogger(deps.Log))
	r.Use(gin.Recovery())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.MaxBodySize(maxBodySize))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		MaxAge:           1 * time.Hour,
		AllowCredentials: false,
	}))
	r.Use(middleware.NewRateLimiter(ctx, rateLimit, rateBurst).Handler())
	r.Use(middleware.PrometheusMiddleware())

	// Metrics endpoint (unauthenticated, like health).
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// registerRoutes sets up all API route handlers on the given router group.
func registerRoutes(api *gin.RouterGroup, deps *RouterDeps) {
	log := deps.Log

	health := NewHealthHandler(deps.Pool, log, deps.Version)
	resolve := NewResolveHandler(deps.Resolver, deps.Batch, log)
	preload := NewPreloadHandler(deps.Loader, deps.Catalog, log)
	entities := NewEntityHandler(deps.Catalog, deps.Writer, deps.Resolver, log)
	cacheH := NewCacheHandler(deps.Resolver, deps.Cache, log)
	stats := NewStatsHandler(deps.Writer, deps.Cache, log)

	api.GET("/health", health.Liveness)
	api.GET("/ready", health.Readiness)

	// Resolution.
	api.POST("/resolve", resolve.Resolve)
	api.POST("/resolve/batch", resolve.ResolveBatch)

	// Preloading and relationships.
	api.POST("/preload/:set", preload.PreloadSet)
	api.POST("/relationships", preload.LoadRelationships)

	// Catalog reads.
	api.GET("/entities/:type", entities.List)
	api.GET("/entities/:type/:id", entities.Get)

	// Catalog mutations exist only when the catalog is local.
	if deps.Writer != nil {
		api.POST("/entities", entities.Create)
		api.PUT("/entities/:type/:id", entities.Update)
		api.DELETE("/entities/:type/:id", entities.Delete)
	}

	// Cache management.
	api.GET("/cache/stats", cacheH.Stats)
	api.DELETE("/cache", cacheH.Clear)
	api.DELETE("/cache/:type/:key", cacheH.ClearEntry)

	// Stats.
	api.GET("/stats", stats.GetStats)
}

// NewRouter creates and configures the Gin engine with all middleware and routes.
func NewRouter(ctx context.Context, deps *RouterDeps) http.Handler {
	r := gin.New()
	setupMiddleware(ctx, r, deps)
	registerRoutes(r.Group("/api/v1"), deps)

	return r
}
