package aggregates

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/yungbote/lendtrack-backend/internal/data/repos/group"
	"github.com/yungbote/lendtrack-backend/internal/data/repos/user"
	types "github.com/yungbote/lendtrack-backend/internal/domain"
	domainagg "github.com/yungbote/lendtrack-backend/internal/domain/aggregates"
	"github.com/yungbote/lendtrack-backend/internal/platform/dbctx"
	"gorm.io/gorm"
)

// GroupAggregate owns group membership writes, including the admin
// succession rule: a group never outlives its last member, and never exists
// without an admin.
type GroupAggregate struct {
	deps      BaseDeps
	groupRepo group.GroupRepo
	userRepo  user.UserRepo
}

func NewGroupAggregate(deps BaseDeps, groupRepo group.GroupRepo, userRepo user.UserRepo) *GroupAggregate {
	return &GroupAggregate{deps: deps.withDefaults(), groupRepo: groupRepo, userRepo: userRepo}
}

func (a *GroupAggregate) Contract() domainagg.Contract {
	return domainagg.GroupAggregateContract
}

type CreateGroupResult struct {
	Group *types.Group
	// AddedMemberIDs lists the initial members that actually exist and were
	// enrolled, excluding the admin.
	AddedMemberIDs []uuid.UUID
}

// CreateGroup creates a group with the actor as admin. Initial member IDs
// that do not resolve to a user are skipped rather than failing the whole
// create.
func (a *GroupAggregate) CreateGroup(ctx context.Context, adminID uuid.UUID, name, description string, memberIDs []uuid.UUID) (*CreateGroupResult, error) {
	if strings.TrimSpace(name) == "" {
		return nil, MapError("group.create", ValidationError("group name is required"))
	}

	var result *CreateGroupResult
	err := executeWrite(ctx, a.deps, "group.create", func(dbc dbctx.Context) error {
		grp, err := a.groupRepo.Create(dbc.Ctx, dbc.Tx, &types.Group{
			Name:        strings.TrimSpace(name),
			Description: strings.TrimSpace(description),
			AdminID:     adminID,
		})
		if err != nil {
			return err
		}
		if err := a.groupRepo.AddMember(dbc.Ctx, dbc.Tx, &types.GroupMember{
			GroupID: grp.ID,
			UserID:  adminID,
			Role:    types.GroupRoleAdmin,
		}); err != nil {
			return err
		}

		added := make([]uuid.UUID, 0, len(memberIDs))
		seen := map[uuid.UUID]bool{adminID: true}
		for _, id := range memberIDs {
			if seen[id] {
				continue
			}
			seen[id] = true
			if _, err := a.userRepo.GetByID(dbc.Ctx, dbc.Tx, id); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				return err
			}
			if err := a.groupRepo.AddMember(dbc.Ctx, dbc.Tx, &types.GroupMember{
				GroupID: grp.ID,
				UserID:  id,
				Role:    types.GroupRoleMember,
			}); err != nil {
				return err
			}
			added = append(added, id)
		}

		full, err := a.groupRepo.GetByID(dbc.Ctx, dbc.Tx, grp.ID)
		if err != nil {
			return err
		}
		result = &CreateGroupResult{Group: full, AddedMemberIDs: added}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AddMember enrolls a user into the group. Admin only.
func (a *GroupAggregate) AddMember(ctx context.Context, actorID, groupID, userID uuid.UUID) (*types.Group, error) {
	var updated *types.Group
	err := executeWrite(ctx, a.deps, "group.add_member", func(dbc dbctx.Context) error {
		grp, err := a.groupRepo.GetByID(dbc.Ctx, dbc.Tx, groupID)
		if err != nil {
			return notFoundAs(err, "group.add_member", "group not found")
		}
		if !types.CanManageMembers(actorID, grp.Members) {
			return ForbiddenError("only the group admin can add members")
		}
		if types.IsGroupMember(grp.Members, userID) {
			return ConflictError("user is already a member of this group")
		}
		if _, err := a.userRepo.GetByID(dbc.Ctx, dbc.Tx, userID); err != nil {
			return notFoundAs(err, "group.add_member", "user not found")
		}
		if err := a.groupRepo.AddMember(dbc.Ctx, dbc.Tx, &types.GroupMember{
			GroupID: groupID,
			UserID:  userID,
			Role:    types.GroupRoleMember,
		}); err != nil {
			return err
		}
		updated, err = a.groupRepo.GetByID(dbc.Ctx, dbc.Tx, groupID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

type RemoveMemberResult struct {
	Group *types.Group
	// PromotedAdminID is set when the departing admin handed the group to the
	// longest-standing remaining member.
	PromotedAdminID *uuid.UUID
	// GroupDeleted is true when the last member left and the group was
	// removed with them.
	GroupDeleted bool
}

// RemoveMember removes a member from the group. The admin can remove anyone;
// a member can remove only themselves. When the admin leaves, the oldest
// remaining member is promoted; when the last member leaves, the group is
// deleted.
func (a *GroupAggregate) RemoveMember(ctx context.Context, actorID, groupID, userID uuid.UUID) (*RemoveMemberResult, error) {
	var result *RemoveMemberResult
	err := executeWrite(ctx, a.deps, "group.remove_member", func(dbc dbctx.Context) error {
		grp, err := a.groupRepo.GetByID(dbc.Ctx, dbc.Tx, groupID)
		if err != nil {
			return notFoundAs(err, "group.remove_member", "group not found")
		}
		if !types.IsGroupMember(grp.Members, userID) {
			return NotFoundError("user is not a member of this group")
		}
		if !types.CanRemoveMember(actorID, userID, grp.Members) {
			return ForbiddenError("only the admin or the member themselves can remove a member")
		}
		removingAdmin := userID == grp.AdminID
		if removingAdmin && !types.CanRemoveAdmin(grp, userID, actorID == userID) {
			return ForbiddenError("the admin can only leave the group, not be removed")
		}

		if err := a.groupRepo.RemoveMember(dbc.Ctx, dbc.Tx, groupID, userID); err != nil {
			return err
		}

		if !removingAdmin {
			fresh, err := a.groupRepo.GetByID(dbc.Ctx, dbc.Tx, groupID)
			if err != nil {
				return err
			}
			result = &RemoveMemberResult{Group: fresh}
			return nil
		}

		next := types.NextAdmin(grp.Members, userID)
		if next == nil {
			if err := a.groupRepo.Delete(dbc.Ctx, dbc.Tx, groupID); err != nil {
				return err
			}
			result = &RemoveMemberResult{GroupDeleted: true}
			return nil
		}
		if err := a.groupRepo.PromoteMember(dbc.Ctx, dbc.Tx, groupID, next.UserID); err != nil {
			return err
		}
		fresh, err := a.groupRepo.GetByID(dbc.Ctx, dbc.Tx, groupID)
		if err != nil {
			return err
		}
		promoted := next.UserID
		result = &RemoveMemberResult{Group: fresh, PromotedAdminID: &promoted}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
