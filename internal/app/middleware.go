package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/lendtrack-backend/internal/clients/redis"
	httpMW "github.com/yungbote/lendtrack-backend/internal/http/middleware"
	"github.com/yungbote/lendtrack-backend/internal/platform/logger"
)

type Middleware struct {
	Auth            *httpMW.AuthMiddleware
	GlobalRateLimit gin.HandlerFunc
	LoanRateLimit   gin.HandlerFunc
}

func wireMiddleware(log *logger.Logger, cfg Config, svcs Services) Middleware {
	log.Info("Wiring middleware...")

	mw := Middleware{
		Auth: httpMW.NewAuthMiddleware(log, svcs.Auth),
	}

	// Rate limiting needs redis; without it the API simply runs uncapped.
	limiter, err := redis.NewLimiter(log)
	if err != nil {
		log.Warn("rate limiting disabled", "reason", err.Error())
		return mw
	}
	mw.GlobalRateLimit = httpMW.RateLimit(log, limiter, "api", httpMW.RateLimitConfig{
		Limit:  cfg.GlobalRateLimit,
		Window: cfg.GlobalRateWindow,
	})
	mw.LoanRateLimit = httpMW.RateLimit(log, limiter, "loan_create", httpMW.RateLimitConfig{
		Limit:  cfg.LoanCreateRateLimit,
		Window: cfg.LoanCreateWindow,
	})
	return mw
}
