// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns:
// tracing, correlation IDs, logging, panic recovery, metrics, CORS, and
// rate limiting.
//
// Two surfaces are mounted:
//   - POST /slack/events, the webhook the chat platform delivers to
//   - GET <base>/leaderboard, the public read API
//
// plus /health and /metrics for operations.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/holyguacamole/go-avocado-backend/internal/config"
	"github.com/holyguacamole/go-avocado-backend/internal/dedup"
	"github.com/holyguacamole/go-avocado-backend/internal/http/handlers"
	"github.com/holyguacamole/go-avocado-backend/internal/http/middleware"
	"github.com/holyguacamole/go-avocado-backend/internal/services"
	"github.com/holyguacamole/go-avocado-backend/internal/slack"
)

// RegisterRoutes attaches all middleware and HTTP endpoints to the given
// Gin engine.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured access logs
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Rate limiter (per client IP)
//  8. CORS
func RegisterRoutes(r *gin.Engine, db *gorm.DB, client *slack.Client, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured access logging
	r.Use(middleware.Logger())

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Token-bucket rate limiter per client IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByIP())
	r.Use(rl.Handler())

	// 8) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Dependency injection: services ← repo/db/client
	loc, err := time.LoadLocation(cfg.Award.QuotaTimezone)
	if err != nil {
		loc = time.UTC
	}
	directory := services.NewCachedDirectory(client.UserInfo)
	awards := &services.AwardService{
		DB: db,
		Quota: &services.QuotaEnforcer{
			DB:       db,
			Cap:      cfg.Award.DailyCap,
			Location: loc,
		},
		Users:    directory,
		Notifier: client,
	}
	events := &services.EventService{
		DB:          db,
		Awards:      awards,
		Users:       directory,
		Notifier:    client,
		BotUserID:   cfg.Slack.BotUserID,
		SeasonMonth: cfg.Award.SeasonMonth,
		SeasonDay:   cfg.Award.SeasonDay,
		Location:    loc,
	}
	h := handlers.New(events, events, dedup.NewCache(cfg.Award.DedupSize))

	// Webhook: the platform posts here, outside the public API base path.
	r.POST("/slack/events", h.ReceiveEvent)

	// Public read API (gzip-compressed)
	api := groupWithPrefix(r, cfg.APIBasePath)
	api.Use(gzip.Gzip(gzip.DefaultCompression))
	{
		api.GET("/leaderboard", h.GetLeaderboard)
	}
}

// limitBody caps the request body size for all endpoints using
// http.MaxBytesReader; oversized bodies error on downstream reads.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
