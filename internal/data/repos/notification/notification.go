package notification

import (
	"context"

	"github.com/google/uuid"
	types "github.com/yungbote/lendtrack-backend/internal/domain"
	"github.com/yungbote/lendtrack-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type NotificationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, notifications []*types.Notification) ([]*types.Notification, error)
	GetByID(ctx context.Context, tx *gorm.DB, notificationID uuid.UUID) (*types.Notification, error)
	ListByRecipient(ctx context.Context, tx *gorm.DB, recipientID uuid.UUID) ([]*types.Notification, error)
	MarkRead(ctx context.Context, tx *gorm.DB, notificationID uuid.UUID) error
	Delete(ctx context.Context, tx *gorm.DB, notificationID uuid.UUID) error
}

type notificationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNotificationRepo(db *gorm.DB, baseLog *logger.Logger) NotificationRepo {
	return &notificationRepo{db: db, log: baseLog.With("repo", "NotificationRepo")}
}

func (nr *notificationRepo) base(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return nr.db
}

func (nr *notificationRepo) Create(ctx context.Context, tx *gorm.DB, notifications []*types.Notification) ([]*types.Notification, error) {
	if len(notifications) == 0 {
		return []*types.Notification{}, nil
	}
	if err := nr.base(tx).WithContext(ctx).Create(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

func (nr *notificationRepo) GetByID(ctx context.Context, tx *gorm.DB, notificationID uuid.UUID) (*types.Notification, error) {
	var result types.Notification
	if err := nr.base(tx).WithContext(ctx).
		Where("id = ?", notificationID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (nr *notificationRepo) ListByRecipient(ctx context.Context, tx *gorm.DB, recipientID uuid.UUID) ([]*types.Notification, error) {
	var results []*types.Notification
	if err := nr.base(tx).WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// MarkRead is idempotent: re-marking a read notification succeeds and leaves
// the flag set.
func (nr *notificationRepo) MarkRead(ctx context.Context, tx *gorm.DB, notificationID uuid.UUID) error {
	return nr.base(tx).WithContext(ctx).
		Model(&types.Notification{}).
		Where("id = ?", notificationID).
		Update("read", true).Error
}

func (nr *notificationRepo) Delete(ctx context.Context, tx *gorm.DB, notificationID uuid.UUID) error {
	return nr.base(tx).WithContext(ctx).
		Where("id = ?", notificationID).
		Delete(&types.Notification{}).Error
}
