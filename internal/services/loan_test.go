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
	domainagg "github.com/yungbote/lendtrack-backend/internal/domain/aggregates"
	"github.com/yungbote/lendtrack-backend/internal/platform/ctxutil"
	"gorm.io/gorm"
)

type noopDispatcher struct{}

func (noopDispatcher) LoanRequested(context.Context, *types.Loan, *types.User, []types.GroupMember) {}
func (noopDispatcher) LoanApproved(context.Context, *types.Loan, uuid.UUID)                         {}
func (noopDispatcher) LoanRejected(context.Context, *types.Loan)                                    {}
func (noopDispatcher) PaymentReceived(context.Context, *types.Loan, *types.Payment, bool)           {}
func (noopDispatcher) LoanLate(context.Context, *types.Loan)                                        {}
func (noopDispatcher) ContributionRecorded(context.Context, *types.Loan, *types.GroupLoanContribution, []types.GroupMember) {
}
func (noopDispatcher) GroupInvited(context.Context, *types.Group, uuid.UUID, []uuid.UUID) {}
func (noopDispatcher) AdminPromoted(context.Context, *types.Group, uuid.UUID, uuid.UUID)  {}

func newLoanService(t *testing.T, tx *gorm.DB) LoanService {
	t.Helper()
	log := testutil.Logger(t)
	lRepo := loanrepo.NewLoanRepo(tx, log)
	uRepo := userrepo.NewUserRepo(tx, log)
	gRepo := grouprepo.NewGroupRepo(tx, log)
	agg := aggregates.NewLoanAggregate(aggregates.BaseDeps{DB: tx, Log: log}, lRepo, uRepo, gRepo)
	return NewLoanService(log, agg, lRepo, uRepo, gRepo, noopDispatcher{})
}

func asUser(u *types.User) context.Context {
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{
		UserID:   u.ID,
		UserName: u.Name,
		Role:     u.Role,
	})
}

func TestLoanGetRestrictedToParticipants(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	svc := newLoanService(t, tx)

	lender := testutil.SeedUser(t, tx, "Lender")
	borrower := testutil.SeedUser(t, tx, "Borrower")
	bystander := testutil.SeedUser(t, tx, "Bystander")

	grp := testutil.SeedGroup(t, tx, lender.ID, "Road trip")
	for _, id := range []uuid.UUID{borrower.ID, bystander.ID} {
		if err := tx.Create(&types.GroupMember{GroupID: grp.ID, UserID: id, Role: types.GroupRoleMember}).Error; err != nil {
			t.Fatalf("add member: %v", err)
		}
	}
	l := testutil.SeedLoan(t, tx, lender.ID, borrower.ID, 100)
	if err := tx.Model(l).Update("group_id", grp.ID).Error; err != nil {
		t.Fatalf("attach loan to group: %v", err)
	}

	if _, err := svc.Get(asUser(lender), l.ID); err != nil {
		t.Fatalf("lender read rejected: %v", err)
	}
	if _, err := svc.Get(asUser(borrower), l.ID); err != nil {
		t.Fatalf("borrower read rejected: %v", err)
	}
	// Group membership alone does not grant loan reads.
	if _, err := svc.Get(asUser(bystander), l.ID); !domainagg.IsCode(err, domainagg.CodeForbidden) {
		t.Fatalf("expected forbidden for non-participant, got %v", err)
	}
}
