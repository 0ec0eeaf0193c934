package app

import (
	"gorm.io/gorm"

	httpH "github.com/yungbote/lendtrack-backend/internal/http/handlers"
	"github.com/yungbote/lendtrack-backend/internal/platform/logger"
)

type Handlers struct {
	Auth         *httpH.AuthHandler
	User         *httpH.UserHandler
	Loan         *httpH.LoanHandler
	Group        *httpH.GroupHandler
	Notification *httpH.NotificationHandler
	Health       *httpH.HealthHandler
}

func wireHandlers(db *gorm.DB, log *logger.Logger, svcs Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Auth:         httpH.NewAuthHandler(svcs.Auth),
		User:         httpH.NewUserHandler(svcs.User),
		Loan:         httpH.NewLoanHandler(svcs.Loan),
		Group:        httpH.NewGroupHandler(svcs.Group, svcs.Loan),
		Notification: httpH.NewNotificationHandler(svcs.Notification),
		Health:       httpH.NewHealthHandler(db),
	}
}
