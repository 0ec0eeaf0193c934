package app

import (
	"gorm.io/gorm"

	grouprepo "github.com/yungbote/lendtrack-backend/internal/data/repos/group"
	loanrepo "github.com/yungbote/lendtrack-backend/internal/data/repos/loan"
	notificationrepo "github.com/yungbote/lendtrack-backend/internal/data/repos/notification"
	userrepo "github.com/yungbote/lendtrack-backend/internal/data/repos/user"
	"github.com/yungbote/lendtrack-backend/internal/platform/logger"
)

type Repos struct {
	User         userrepo.UserRepo
	Loan         loanrepo.LoanRepo
	Group        grouprepo.GroupRepo
	Notification notificationrepo.NotificationRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:         userrepo.NewUserRepo(db, log),
		Loan:         loanrepo.NewLoanRepo(db, log),
		Group:        grouprepo.NewGroupRepo(db, log),
		Notification: notificationrepo.NewNotificationRepo(db, log),
	}
}
