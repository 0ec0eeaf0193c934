package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yungbote/lendtrack-backend/internal/clients/redis"
	"github.com/yungbote/lendtrack-backend/internal/platform/ctxutil"
	"github.com/yungbote/lendtrack-backend/internal/platform/logger"
)

type RateLimitConfig struct {
	Limit  int
	Window time.Duration
}

// RateLimit enforces a fixed-window cap per caller, keyed on the
// authenticated user when available and the client IP otherwise. A redis
// outage fails open.
func RateLimit(log *logger.Logger, limiter redis.Limiter, scope string, cfg RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || cfg.Limit <= 0 {
			c.Next()
			return
		}

		subject := c.ClientIP()
		if rd := ctxutil.GetRequestData(c.Request.Context()); rd != nil && rd.UserID != uuid.Nil {
			subject = rd.UserID.String()
		}

		allowed, retryAfter, err := limiter.Allow(c.Request.Context(), scope+":"+subject, cfg.Limit, cfg.Window)
		if err != nil {
			if log != nil {
				log.Warn("rate limiter unavailable, allowing request", "scope", scope, "error", err.Error())
			}
			c.Next()
			return
		}
		if !allowed {
			c.Header("Retry-After", fmt.Sprintf("%d", int(retryAfter.Seconds())+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{"message": "too many requests", "code": "rate_limited"},
			})
			return
		}
		c.Next()
	}
}
