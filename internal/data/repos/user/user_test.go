package user

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/yungbote/lendtrack-backend/internal/data/repos/testutil"
	types "github.com/yungbote/lendtrack-backend/internal/domain"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewUserRepo(db, testutil.Logger(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, tx, []*types.User{
		{
			ID:       uuid.New(),
			Name:     "Ada Borrower",
			Email:    "userrepo@example.com",
			Password: "pw",
			Role:     types.RoleUser,
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("Create: expected 1 user, got %d", len(created))
	}

	got, err := repo.GetByID(ctx, tx, created[0].ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Email != created[0].Email {
		t.Fatalf("GetByID: unexpected user %+v", got)
	}

	byEmail, err := repo.GetByEmail(ctx, tx, created[0].Email)
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if byEmail.ID != created[0].ID {
		t.Fatalf("GetByEmail: unexpected user %+v", byEmail)
	}

	exists, err := repo.EmailExists(ctx, tx, created[0].Email)
	if err != nil {
		t.Fatalf("EmailExists: %v", err)
	}
	if !exists {
		t.Fatalf("EmailExists: expected true")
	}

	exists, err = repo.EmailExists(ctx, tx, "does-not-exist@example.com")
	if err != nil {
		t.Fatalf("EmailExists (missing): %v", err)
	}
	if exists {
		t.Fatalf("EmailExists (missing): expected false")
	}

	found, err := repo.Search(ctx, tx, "ada bor")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(found) != 1 || found[0].ID != created[0].ID {
		t.Fatalf("Search: unexpected result: %+v", found)
	}

	if err := repo.UpdateName(ctx, tx, created[0].ID, "Ada Lender"); err != nil {
		t.Fatalf("UpdateName: %v", err)
	}
	if err := repo.UpdatePushToken(ctx, tx, created[0].ID, "device-token-1"); err != nil {
		t.Fatalf("UpdatePushToken: %v", err)
	}
	got, err = repo.GetByID(ctx, tx, created[0].ID)
	if err != nil {
		t.Fatalf("GetByID after update: %v", err)
	}
	if got.Name != "Ada Lender" || got.PushToken != "device-token-1" {
		t.Fatalf("updates not applied: %+v", got)
	}
}
