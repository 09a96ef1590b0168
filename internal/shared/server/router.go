package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resolution-backend/internal/resolutions"
	"resolution-backend/internal/services/health"
	"resolution-backend/internal/shared/config"
	"resolution-backend/internal/shared/metrics"
	"resolution-backend/internal/shared/server/middleware"
	"resolution-backend/internal/shared/server/respond"
)

const generateGroup = "GENERATE"

// RouterDeps carries the handlers the router mounts.
type RouterDeps struct {
	Config            config.Config
	ResolutionHandler *resolutions.Handler
	Health            *health.Service
	Limiter           *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.RateLimit(rateLimitConfig(deps)),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		if deps.Health == nil {
			respond.OK(c, gin.H{"ok": true})
			return
		}
		status := deps.Health.Status(c.Request.Context())
		code := http.StatusOK
		if ok, _ := status["ok"].(bool); !ok {
			code = http.StatusServiceUnavailable
		}
		respond.JSON(c, code, status)
	})
	if deps.ResolutionHandler != nil {
		deps.ResolutionHandler.RegisterRoutes(api)
	}

	return r
}

func rateLimitConfig(deps RouterDeps) middleware.RateLimitConfig {
	rules := map[string]middleware.RateLimitRule{}
	if deps.Config.GenerateRatePerSec > 0 && deps.Config.GenerateBurst > 0 {
		rules[generateGroup] = middleware.RateLimitRule{
			Rate:  deps.Config.GenerateRatePerSec,
			Burst: deps.Config.GenerateBurst,
		}
	}
	return middleware.RateLimitConfig{
		Rules:   rules,
		Limiter: deps.Limiter,
		GroupFor: func(c *gin.Context) string {
			if c.Request.Method == http.MethodPost && c.FullPath() == "/api/v1/documents" {
				return generateGroup
			}
			return ""
		},
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
