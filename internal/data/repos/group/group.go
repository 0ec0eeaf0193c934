package group

import (
	"context"

	"github.com/google/uuid"
	types "github.com/yungbote/lendtrack-backend/internal/domain"
	"github.com/yungbote/lendtrack-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type GroupRepo interface {
	Create(ctx context.Context, tx *gorm.DB, group *types.Group) (*types.Group, error)
	GetByID(ctx context.Context, tx *gorm.DB, groupID uuid.UUID) (*types.Group, error)
	ListByMember(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Group, error)
	AddMember(ctx context.Context, tx *gorm.DB, member *types.GroupMember) error
	RemoveMember(ctx context.Context, tx *gorm.DB, groupID, userID uuid.UUID) error
	PromoteMember(ctx context.Context, tx *gorm.DB, groupID, userID uuid.UUID) error
	Delete(ctx context.Context, tx *gorm.DB, groupID uuid.UUID) error
}

type groupRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGroupRepo(db *gorm.DB, baseLog *logger.Logger) GroupRepo {
	return &groupRepo{db: db, log: baseLog.With("repo", "GroupRepo")}
}

func (gr *groupRepo) base(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return gr.db
}

func (gr *groupRepo) Create(ctx context.Context, tx *gorm.DB, group *types.Group) (*types.Group, error) {
	if err := gr.base(tx).WithContext(ctx).Create(group).Error; err != nil {
		return nil, err
	}
	return group, nil
}

func (gr *groupRepo) GetByID(ctx context.Context, tx *gorm.DB, groupID uuid.UUID) (*types.Group, error) {
	var result types.Group
	if err := gr.base(tx).WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("id = ?", groupID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (gr *groupRepo) ListByMember(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Group, error) {
	var results []*types.Group
	if err := gr.base(tx).WithContext(ctx).
		Preload("Members").
		Joins(`JOIN group_member ON group_member.group_id = "group".id`).
		Where("group_member.user_id = ?", userID).
		Order(`"group".created_at DESC`).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (gr *groupRepo) AddMember(ctx context.Context, tx *gorm.DB, member *types.GroupMember) error {
	return gr.base(tx).WithContext(ctx).Create(member).Error
}

func (gr *groupRepo) RemoveMember(ctx context.Context, tx *gorm.DB, groupID, userID uuid.UUID) error {
	return gr.base(tx).WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&types.GroupMember{}).Error
}

// PromoteMember flips the member row to ADMIN and moves the group's admin
// pointer in the same statement pair; callers wrap this in a transaction.
func (gr *groupRepo) PromoteMember(ctx context.Context, tx *gorm.DB, groupID, userID uuid.UUID) error {
	db := gr.base(tx).WithContext(ctx)
	if err := db.Model(&types.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Update("role", types.GroupRoleAdmin).Error; err != nil {
		return err
	}
	return db.Model(&types.Group{}).
		Where("id = ?", groupID).
		Update("admin_id", userID).Error
}

func (gr *groupRepo) Delete(ctx context.Context, tx *gorm.DB, groupID uuid.UUID) error {
	db := gr.base(tx).WithContext(ctx)
	if err := db.Where("group_id = ?", groupID).Delete(&types.GroupMember{}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", groupID).Delete(&types.Group{}).Error
}
