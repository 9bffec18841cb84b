// Package api wires the HTTP routes and server lifecycle.
package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/meridian-advisory/insights-api/internal/handler"
	"github.com/meridian-advisory/insights-api/internal/logger"
	"github.com/meridian-advisory/insights-api/internal/middleware"
	"github.com/meridian-advisory/insights-api/internal/ratelimit"
)

// Handlers groups the route handlers for registration.
type Handlers struct {
	Search   *handler.SearchHandler
	Lead     *handler.LeadHandler
	Download *handler.DownloadHandler
	Health   *handler.HealthHandler
}

// Limiters groups the per-policy rate limiters.
type Limiters struct {
	Lead     *ratelimit.Limiter
	Download *ratelimit.Limiter
}

// SetupRoutes configures all API routes.
func SetupRoutes(
	router *gin.Engine,
	h Handlers,
	limiters Limiters,
	metrics *middleware.Metrics,
	log logger.Logger,
) {
	router.GET("/health", h.Health.Live)
	router.GET("/health/ready", h.Health.Ready)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := router.Group("/api")
	apiGroup.GET("/search", h.Search.Search)
	apiGroup.GET("/insights/keywords", h.Search.Keywords)

	apiGroup.POST("/lead",
		middleware.RateLimit(limiters.Lead, "lead", metrics, log),
		h.Lead.Submit,
	)

	download := apiGroup.Group("")
	download.Use(middleware.RateLimit(limiters.Download, "download", metrics, log))
	download.GET("/download", h.Download.Redeem)
	download.GET("/media-kit", h.Download.MediaKit)
}
