package router

import (
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/cinema-catalog/internal/config"
    "github.com/iliyamo/cinema-catalog/internal/handler"
    "github.com/iliyamo/cinema-catalog/internal/middleware"
)

// Deps carries what the route table needs besides the handlers.  Redis may
// be nil, in which case caching and rate limiting are skipped.
type Deps struct {
    JWTSecret string
    Redis     *redis.Client
    Cache     config.CacheConfig
    RateLimit config.RateLimitConfig
    // MediaDir is served read-only under MediaPrefix when non-empty.
    MediaDir    string
    MediaPrefix string
}

// RegisterRoutes registers the liveness probe.
func RegisterRoutes(e *echo.Echo) {
    e.GET("/healthz", handler.Health)
}

// RegisterCatalog registers /v1/movies and /v1/genres.  Reads are public and
// cached; writes need an ADMIN token and purge the cache on success;
// reservation requests need any valid token.
func RegisterCatalog(e *echo.Echo, d Deps, mh *handler.MovieHandler, gh *handler.GenreHandler) {
    limit := middleware.NewTokenBucket(d.RateLimit, d.Redis)
    read := []echo.MiddlewareFunc{limit, middleware.NewRedisCache(d.Cache, d.Redis)}
    // Authenticated chains limit after JWTAuth so buckets are per user.
    admin := []echo.MiddlewareFunc{
        middleware.JWTAuth(d.JWTSecret),
        middleware.RequireRole(middleware.RoleAdmin),
        limit,
        middleware.NewCachePurge(d.Cache, d.Redis),
    }
    customer := []echo.MiddlewareFunc{
        middleware.JWTAuth(d.JWTSecret),
        middleware.RequireRole(middleware.RoleAdmin, middleware.RoleCustomer),
        limit,
    }

    // Route-level middleware keeps unknown /v1 paths a plain 404.
    v1 := e.Group("/v1")
    v1.GET("/movies", mh.List, read...)
    v1.GET("/movies/:id", mh.Get, read...)
    v1.GET("/genres", gh.List, read...)
    v1.GET("/genres/:id", gh.Get, read...)
    v1.GET("/genres/:id/movies", gh.Movies, read...)
    // Availability changes outside this service; never cached.
    v1.GET("/movies/:id/seances", mh.Seances, limit)

    v1.POST("/movies", mh.Create, admin...)
    v1.PUT("/movies/:id", mh.Update, admin...)
    v1.PATCH("/movies/:id", mh.Update, admin...)
    v1.DELETE("/movies/:id", mh.Delete, admin...)
    v1.POST("/movies/:id/upload", mh.Upload, admin...)
    v1.POST("/genres", gh.Create, admin...)
    v1.PUT("/genres/:id", gh.Update, admin...)
    v1.PATCH("/genres/:id", gh.Update, admin...)
    v1.DELETE("/genres/:id", gh.Delete, admin...)

    v1.POST("/movies/:id/reservations", mh.Reserve, customer...)

    if d.MediaDir != "" {
        prefix := d.MediaPrefix
        if prefix == "" {
            prefix = "/media"
        }
        e.Static(prefix, d.MediaDir)
    }
}
