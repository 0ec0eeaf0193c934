package app

import (
	"fmt"

	"github.com/yungbote/lendtrack-backend/internal/clients/fcm"
	"github.com/yungbote/lendtrack-backend/internal/jobs/latewatch"
	"github.com/yungbote/lendtrack-backend/internal/notify"
	"github.com/yungbote/lendtrack-backend/internal/platform/logger"
	"github.com/yungbote/lendtrack-backend/internal/services"
)

type Services struct {
	Auth         services.AuthService
	User         services.UserService
	Loan         services.LoanService
	Group        services.GroupService
	Notification services.NotificationService

	Dispatcher  notify.Dispatcher
	PushSender  *notify.PushSender
	LateWatcher *latewatch.Watcher
}

func wireServices(log *logger.Logger, cfg Config, repos Repos, aggs Aggregates) (Services, error) {
	log.Info("Wiring services...")

	// Push is optional: without FCM credentials the API runs with in-app
	// notifications only.
	var pushClient fcm.Client
	if client, err := fcm.NewFromEnv(log); err != nil {
		log.Warn("push disabled", "reason", err.Error())
	} else {
		pushClient = client
	}
	pushSender := notify.NewPushSender(log, pushClient, notify.PushConfig{
		QueueSize: cfg.PushQueueSize,
		Workers:   cfg.PushWorkers,
		Timeout:   cfg.PushSendTimeout,
	})
	dispatcher := notify.NewDispatcher(log, repos.Notification, repos.User, pushSender)

	authService, err := services.NewAuthService(log, repos.User, services.AuthConfig{
		JWTSecret: cfg.JWTSecretKey,
		TokenTTL:  cfg.TokenTTL,
	})
	if err != nil {
		return Services{}, fmt.Errorf("init auth service: %w", err)
	}

	loanService := services.NewLoanService(log, aggs.Loan, repos.Loan, repos.User, repos.Group, dispatcher)
	groupService := services.NewGroupService(log, aggs.Group, aggs.Contribution, repos.Group, dispatcher)

	return Services{
		Auth:         authService,
		User:         services.NewUserService(log, repos.User),
		Loan:         loanService,
		Group:        groupService,
		Notification: services.NewNotificationService(log, repos.Notification),

		Dispatcher:  dispatcher,
		PushSender:  pushSender,
		LateWatcher: latewatch.New(log, repos.Loan, aggs.Loan, dispatcher, cfg.LateCheckInterval),
	}, nil
}
