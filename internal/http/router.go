package http

import (
	"github.com/gin-gonic/gin"
	httpH "github.com/yungbote/lendtrack-backend/internal/http/handlers"
	httpMW "github.com/yungbote/lendtrack-backend/internal/http/middleware"
)

type RouterConfig struct {
	AuthHandler         *httpH.AuthHandler
	AuthMiddleware      *httpMW.AuthMiddleware
	UserHandler         *httpH.UserHandler
	LoanHandler         *httpH.LoanHandler
	GroupHandler        *httpH.GroupHandler
	NotificationHandler *httpH.NotificationHandler
	HealthHandler       *httpH.HealthHandler

	// GlobalRateLimit applies to every /api route; LoanRateLimit is the
	// tighter cap on loan creation.
	GlobalRateLimit gin.HandlerFunc
	LoanRateLimit   gin.HandlerFunc
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.Default()
	r.Use(httpMW.AttachRequestContext())
	r.Use(httpMW.CORS())

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	if cfg.GlobalRateLimit != nil {
		api.Use(cfg.GlobalRateLimit)
	}
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/auth/register", cfg.AuthHandler.Register)
			api.POST("/auth/login", cfg.AuthHandler.Login)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Users
		if cfg.UserHandler != nil {
			protected.GET("/auth/me", cfg.UserHandler.GetMe)
			protected.GET("/users", cfg.UserHandler.List)
			protected.GET("/users/search", cfg.UserHandler.Search)
			protected.GET("/users/:id", cfg.UserHandler.Get)
			protected.PUT("/users/:id", cfg.UserHandler.Update)
			protected.DELETE("/users/:id", cfg.UserHandler.Delete)
			protected.POST("/notifications/device-token", cfg.UserHandler.RegisterDeviceToken)
		}

		// Loans
		if cfg.LoanHandler != nil {
			if cfg.LoanRateLimit != nil {
				protected.POST("/loans/request", cfg.LoanRateLimit, cfg.LoanHandler.Request)
			} else {
				protected.POST("/loans/request", cfg.LoanHandler.Request)
			}
			protected.GET("/loans/myloans", cfg.LoanHandler.MyLoans)
			protected.GET("/loans/:id", cfg.LoanHandler.Get)
			protected.PUT("/loans/:id/approve", cfg.LoanHandler.Approve)
			protected.PUT("/loans/:id/reject", cfg.LoanHandler.Reject)
			protected.POST("/loans/:id/payment", cfg.LoanHandler.Pay)
			protected.PUT("/loans/:id/status", cfg.LoanHandler.SetStatus)
		}

		// Groups
		if cfg.GroupHandler != nil {
			protected.POST("/groups", cfg.GroupHandler.Create)
			protected.GET("/groups/mygroups", cfg.GroupHandler.ListMine)
			protected.GET("/groups/:id", cfg.GroupHandler.Get)
			protected.POST("/groups/:id/members", cfg.GroupHandler.AddMember)
			protected.DELETE("/groups/:id/members/:userId", cfg.GroupHandler.RemoveMember)
			if cfg.LoanRateLimit != nil {
				protected.POST("/groups/:id/loans", cfg.LoanRateLimit, cfg.GroupHandler.RequestLoan)
			} else {
				protected.POST("/groups/:id/loans", cfg.GroupHandler.RequestLoan)
			}
			protected.POST("/groups/:id/loans/:loanId/contribute", cfg.GroupHandler.Contribute)
			protected.GET("/groups/:id/loans/:loanId/contributions", cfg.GroupHandler.ListContributions)
		}

		// Notifications
		if cfg.NotificationHandler != nil {
			protected.GET("/notifications", cfg.NotificationHandler.List)
			protected.PUT("/notifications/:id/read", cfg.NotificationHandler.MarkRead)
			protected.DELETE("/notifications/:id", cfg.NotificationHandler.Delete)
		}
	}

	return r
}
