package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/yungbote/lendtrack-backend/internal/data/aggregates"
	notificationrepo "github.com/yungbote/lendtrack-backend/internal/data/repos/notification"
	types "github.com/yungbote/lendtrack-backend/internal/domain"
	"github.com/yungbote/lendtrack-backend/internal/platform/logger"
)

type NotificationService interface {
	List(ctx context.Context) ([]*types.Notification, error)
	MarkRead(ctx context.Context, notificationID uuid.UUID) (*types.Notification, error)
	Delete(ctx context.Context, notificationID uuid.UUID) error
}

type notificationService struct {
	log       *logger.Logger
	notifRepo notificationrepo.NotificationRepo
}

func NewNotificationService(log *logger.Logger, notifRepo notificationrepo.NotificationRepo) NotificationService {
	return &notificationService{log: log.With("service", "NotificationService"), notifRepo: notifRepo}
}

func (s *notificationService) List(ctx context.Context) ([]*types.Notification, error) {
	rd, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	return s.notifRepo.ListByRecipient(ctx, nil, rd.UserID)
}

// MarkRead is idempotent: re-reading an already read notification succeeds.
func (s *notificationService) MarkRead(ctx context.Context, notificationID uuid.UUID) (*types.Notification, error) {
	rd, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	n, err := s.notifRepo.GetByID(ctx, nil, notificationID)
	if err != nil {
		return nil, aggregates.MapError("notification.mark_read", err)
	}
	if n.RecipientID != rd.UserID {
		return nil, aggregates.MapError("notification.mark_read", aggregates.ForbiddenError("not the recipient of this notification"))
	}
	if !n.Read {
		if err := s.notifRepo.MarkRead(ctx, nil, notificationID); err != nil {
			return nil, aggregates.MapError("notification.mark_read", err)
		}
		n.Read = true
	}
	return n, nil
}

func (s *notificationService) Delete(ctx context.Context, notificationID uuid.UUID) error {
	rd, err := actorFrom(ctx)
	if err != nil {
		return err
	}
	n, err := s.notifRepo.GetByID(ctx, nil, notificationID)
	if err != nil {
		return aggregates.MapError("notification.delete", err)
	}
	if n.RecipientID != rd.UserID {
		return aggregates.MapError("notification.delete", aggregates.ForbiddenError("not the recipient of this notification"))
	}
	return aggregates.MapError("notification.delete", s.notifRepo.Delete(ctx, nil, notificationID))
}
