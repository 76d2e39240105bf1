package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/exchangecore/pkg/config"
	"github.com/wyfcoding/exchangecore/pkg/middleware"
	"github.com/wyfcoding/exchangecore/pkg/ratelimit"
)

// NewRouter builds the gin engine for the client-facing API: logging and
// panic-recovery middleware, CORS, a Redis-backed rate limiter ahead of
// the order/cancel endpoints, and the Handler's routes.
func NewRouter(h *Handler, limiter ratelimit.RateLimiter, rateLimitCfg config.RateLimitConfig) *gin.Engine {
	r := gin.New()
	r.Use(middleware.GinRecoveryMiddleware())
	r.Use(middleware.GinLoggingMiddleware())
	r.Use(middleware.GinCORSMiddleware())

	api := r.Group("/")
	if limiter != nil {
		api.Use(middleware.RateLimitMiddleware(limiter, rateLimitCfg))
	}
	h.Register(api)

	return r
}
