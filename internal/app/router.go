package app

import (
	internalhttp "github.com/yungbote/lendtrack-backend/internal/http"
)

func wireServer(handlers Handlers, mw Middleware) *internalhttp.Server {
	return internalhttp.NewServer(internalhttp.RouterConfig{
		AuthHandler:         handlers.Auth,
		AuthMiddleware:      mw.Auth,
		UserHandler:         handlers.User,
		LoanHandler:         handlers.Loan,
		GroupHandler:        handlers.Group,
		NotificationHandler: handlers.Notification,
		HealthHandler:       handlers.Health,

		GlobalRateLimit: mw.GlobalRateLimit,
		LoanRateLimit:   mw.LoanRateLimit,
	})
}
