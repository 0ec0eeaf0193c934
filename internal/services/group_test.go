package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/yungbote/lendtrack-backend/internal/data/aggregates"
	grouprepo "github.com/yungbote/lendtrack-backend/internal/data/repos/group"
	loanrepo "github.com/yungbote/lendtrack-backend/internal/data/repos/loan"
	"github.com/yungbote/lendtrack-backend/internal/data/repos/testutil"
	userrepo "github.com/yungbote/lendtrack-backend/internal/data/repos/user"
	types "github.com/yungbote/lendtrack-backend/internal/domain"
	"gorm.io/gorm"
)

type recordingDispatcher struct {
	noopDispatcher
	promotions   int
	promotedFrom uuid.UUID
	promotedTo   uuid.UUID
}

func (r *recordingDispatcher) AdminPromoted(_ context.Context, _ *types.Group, formerAdminID, newAdminID uuid.UUID) {
	r.promotions++
	r.promotedFrom = formerAdminID
	r.promotedTo = newAdminID
}

func newGroupService(t *testing.T, tx *gorm.DB, dispatch *recordingDispatcher) GroupService {
	t.Helper()
	log := testutil.Logger(t)
	gRepo := grouprepo.NewGroupRepo(tx, log)
	uRepo := userrepo.NewUserRepo(tx, log)
	lRepo := loanrepo.NewLoanRepo(tx, log)
	deps := aggregates.BaseDeps{DB: tx, Log: log}
	groupAgg := aggregates.NewGroupAggregate(deps, gRepo, uRepo)
	contribAgg := aggregates.NewContributionAggregate(deps, lRepo, gRepo)
	return NewGroupService(log, groupAgg, contribAgg, gRepo, dispatch)
}

func TestRemoveMemberNotifiesPromotedAdmin(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	rec := &recordingDispatcher{}
	svc := newGroupService(t, tx, rec)

	admin := testutil.SeedUser(t, tx, "Admin")
	member := testutil.SeedUser(t, tx, "Member")
	grp := testutil.SeedGroup(t, tx, admin.ID, "Road trip")
	if err := tx.Create(&types.GroupMember{GroupID: grp.ID, UserID: member.ID, Role: types.GroupRoleMember}).Error; err != nil {
		t.Fatalf("add member: %v", err)
	}

	res, err := svc.RemoveMember(asUser(admin), grp.ID, admin.ID)
	if err != nil {
		t.Fatalf("admin self-removal: %v", err)
	}
	if res.PromotedAdminID == nil || *res.PromotedAdminID != member.ID {
		t.Fatalf("expected %s promoted, got %+v", member.ID, res.PromotedAdminID)
	}
	if rec.promotions != 1 {
		t.Fatalf("expected one promotion dispatch, got %d", rec.promotions)
	}
	if rec.promotedFrom != admin.ID || rec.promotedTo != member.ID {
		t.Fatalf("promotion dispatched from %s to %s", rec.promotedFrom, rec.promotedTo)
	}

	// A plain member removal must not dispatch a promotion.
	other := testutil.SeedUser(t, tx, "Other")
	grp2 := testutil.SeedGroup(t, tx, admin.ID, "Dinner club")
	if err := tx.Create(&types.GroupMember{GroupID: grp2.ID, UserID: other.ID, Role: types.GroupRoleMember}).Error; err != nil {
		t.Fatalf("add member: %v", err)
	}
	if _, err := svc.RemoveMember(asUser(admin), grp2.ID, other.ID); err != nil {
		t.Fatalf("member removal: %v", err)
	}
	if rec.promotions != 1 {
		t.Fatalf("unexpected promotion dispatch on plain removal, got %d", rec.promotions)
	}
}
