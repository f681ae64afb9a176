package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"healthdocs-backend/internal/documents"
	"healthdocs-backend/internal/services/health"
	"healthdocs-backend/internal/shared/auth"
	"healthdocs-backend/internal/shared/config"
	"healthdocs-backend/internal/shared/metrics"
	"healthdocs-backend/internal/shared/server/middleware"
	"healthdocs-backend/internal/shared/server/respond"
)

const (
	rateGroupDefault = "DEFAULT"
	rateGroupUpload  = "UPLOAD"
	rateGroupExempt  = "EXEMPT"
)

// RouterDeps groups the handlers and collaborators the router mounts.
type RouterDeps struct {
	Config           config.Config
	DocumentsHandler *documents.Handler
	Health           *health.Service
	Verifier         *auth.Verifier
	Limiter          *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	if deps.Health == nil {
		deps.Health = health.NewService()
	}

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		metrics.HTTP(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(middleware.AuthConfig{
			Verifier: deps.Verifier,
			Required: deps.Config.AuthRequired,
			Public:   []string{"/health", "/metrics"},
		}),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules:        rateLimitRules(deps.Config),
			DefaultGroup: rateGroupDefault,
			GroupFor:     rateGroup,
			Limiter:      deps.Limiter,
		}),
	)

	r.GET("/health", func(c *gin.Context) {
		report := deps.Health.Status(c.Request.Context())
		status := http.StatusOK
		if !report.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, report)
	})
	r.GET("/metrics", metrics.Handler())

	if deps.DocumentsHandler != nil {
		deps.DocumentsHandler.RegisterRoutes(r)
	}
	return r
}

func rateLimitRules(cfg config.Config) map[string]middleware.RateLimitRule {
	rules := map[string]middleware.RateLimitRule{}
	if cfg.RateLimitRPS > 0 && cfg.RateLimitBurst > 0 {
		rules[rateGroupDefault] = middleware.RateLimitRule{Rate: cfg.RateLimitRPS, Burst: cfg.RateLimitBurst}
	}
	if cfg.UploadRateLimitRPS > 0 && cfg.UploadRateLimitBurst > 0 {
		rules[rateGroupUpload] = middleware.RateLimitRule{Rate: cfg.UploadRateLimitRPS, Burst: cfg.UploadRateLimitBurst}
	}
	return rules
}

func rateGroup(c *gin.Context) string {
	switch c.Request.URL.Path {
	case "/health", "/metrics":
		return rateGroupExempt
	case "/upload":
		if c.Request.Method == http.MethodPost {
			return rateGroupUpload
		}
	}
	return rateGroupDefault
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":5000"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
