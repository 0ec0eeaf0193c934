package group

import (
	"context"
	"testing"

	"github.com/yungbote/lendtrack-backend/internal/data/repos/testutil"
	types "github.com/yungbote/lendtrack-backend/internal/domain"
)

func TestGroupRepoMembership(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewGroupRepo(db, testutil.Logger(t))
	ctx := context.Background()

	admin := testutil.SeedUser(t, tx, "Admin")
	member := testutil.SeedUser(t, tx, "Member")
	grp := testutil.SeedGroup(t, tx, admin.ID, "savings circle")

	if err := repo.AddMember(ctx, tx, &types.GroupMember{
		GroupID: grp.ID,
		UserID:  member.ID,
		Role:    types.GroupRoleMember,
	}); err != nil {
		t.Fatalf("AddMember: %v", err)
	}

	got, err := repo.GetByID(ctx, tx, grp.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(got.Members) != 2 {
		t.Fatalf("GetByID: expected 2 members, got %d", len(got.Members))
	}
	// Members come back oldest first; the admin joined at creation.
	if got.Members[0].UserID != admin.ID {
		t.Fatalf("GetByID: expected admin first, got %+v", got.Members[0])
	}

	mine, err := repo.ListByMember(ctx, tx, member.ID)
	if err != nil {
		t.Fatalf("ListByMember: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != grp.ID {
		t.Fatalf("ListByMember: unexpected result %+v", mine)
	}

	if err := repo.PromoteMember(ctx, tx, grp.ID, member.ID); err != nil {
		t.Fatalf("PromoteMember: %v", err)
	}
	got, err = repo.GetByID(ctx, tx, grp.ID)
	if err != nil {
		t.Fatalf("GetByID after promote: %v", err)
	}
	if got.AdminID != member.ID {
		t.Fatalf("PromoteMember: admin_id not updated: %+v", got)
	}

	if err := repo.RemoveMember(ctx, tx, grp.ID, admin.ID); err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}
	got, err = repo.GetByID(ctx, tx, grp.ID)
	if err != nil {
		t.Fatalf("GetByID after remove: %v", err)
	}
	if len(got.Members) != 1 || got.Members[0].UserID != member.ID {
		t.Fatalf("RemoveMember: unexpected members %+v", got.Members)
	}

	if err := repo.Delete(ctx, tx, grp.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, tx, grp.ID); err == nil {
		t.Fatalf("Delete: group still present")
	}
}
