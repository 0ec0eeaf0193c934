package aggregates

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	grouprepo "github.com/yungbote/lendtrack-backend/internal/data/repos/group"
	loanrepo "github.com/yungbote/lendtrack-backend/internal/data/repos/loan"
	"github.com/yungbote/lendtrack-backend/internal/data/repos/testutil"
	userrepo "github.com/yungbote/lendtrack-backend/internal/data/repos/user"
	types "github.com/yungbote/lendtrack-backend/internal/domain"
	domainagg "github.com/yungbote/lendtrack-backend/internal/domain/aggregates"
	"gorm.io/gorm"
)

func newLoanAgg(t *testing.T, tx *gorm.DB) (*LoanAggregate, loanrepo.LoanRepo) {
	t.Helper()
	log := testutil.Logger(t)
	lRepo := loanrepo.NewLoanRepo(tx, log)
	uRepo := userrepo.NewUserRepo(tx, log)
	gRepo := grouprepo.NewGroupRepo(tx, log)
	return NewLoanAggregate(BaseDeps{DB: tx, Log: log}, lRepo, uRepo, gRepo), lRepo
}

func TestLoanAggregateLifecycle(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	agg, repo := newLoanAgg(t, tx)
	ctx := context.Background()

	lender := testutil.SeedUser(t, tx, "Lender")
	borrower := testutil.SeedUser(t, tx, "Borrower")

	l, err := agg.Request(ctx, RequestLoanInput{
		ActorID:           borrower.ID,
		LenderID:          lender.ID,
		Amount:            100,
		Description:       "laptop repair",
		PaymentType:       types.PaymentInstallments,
		InstallmentsCount: 2,
		DueDate:           time.Now().Add(30 * 24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if l.Status != types.LoanPending {
		t.Fatalf("Request: expected PENDING, got %s", l.Status)
	}

	if _, err := agg.Decide(ctx, borrower.ID, l.ID, true); !domainagg.IsCode(err, domainagg.CodeForbidden) {
		t.Fatalf("Decide by borrower: expected forbidden, got %v", err)
	}

	l, err = agg.Decide(ctx, lender.ID, l.ID, true)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if l.Status != types.LoanApproved {
		t.Fatalf("Approve: expected APPROVED, got %s", l.Status)
	}

	// A decided loan cannot be decided again.
	if _, err := agg.Decide(ctx, lender.ID, l.ID, false); !domainagg.IsCode(err, domainagg.CodePreconditionFailed) {
		t.Fatalf("second Decide: expected precondition failure, got %v", err)
	}

	res, err := agg.RecordPayment(ctx, borrower.ID, l.ID, 60)
	if err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	if res.Loan.Status != types.LoanActive || res.Completed {
		t.Fatalf("partial payment: expected ACTIVE, got %s", res.Loan.Status)
	}
	if res.Loan.InstallmentsPaid != 1 {
		t.Fatalf("partial payment: expected 1 installment paid, got %d", res.Loan.InstallmentsPaid)
	}

	if _, err := agg.RecordPayment(ctx, lender.ID, l.ID, 10); !domainagg.IsCode(err, domainagg.CodeForbidden) {
		t.Fatalf("payment by lender: expected forbidden, got %v", err)
	}

	res, err = agg.RecordPayment(ctx, borrower.ID, l.ID, 40)
	if err != nil {
		t.Fatalf("final RecordPayment: %v", err)
	}
	if res.Loan.Status != types.LoanCompleted || !res.Completed {
		t.Fatalf("final payment: expected COMPLETED, got %s", res.Loan.Status)
	}
	if res.Loan.InstallmentsPaid != 2 {
		t.Fatalf("final payment: expected 2 installments paid, got %d", res.Loan.InstallmentsPaid)
	}

	// COMPLETED is terminal for payments.
	if _, err := agg.RecordPayment(ctx, borrower.ID, l.ID, 5); !domainagg.IsCode(err, domainagg.CodePreconditionFailed) {
		t.Fatalf("payment on completed loan: expected precondition failure, got %v", err)
	}

	fresh, err := repo.GetByID(ctx, tx, l.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got := fresh.TotalPaid(); got != 100 {
		t.Fatalf("ledger total: expected 100, got %v", got)
	}
}

func TestLoanAggregateReject(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	agg, _ := newLoanAgg(t, tx)
	ctx := context.Background()

	lender := testutil.SeedUser(t, tx, "Lender")
	borrower := testutil.SeedUser(t, tx, "Borrower")
	l := testutil.SeedLoan(t, tx, lender.ID, borrower.ID, 100)

	rejected, err := agg.Decide(ctx, lender.ID, l.ID, false)
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if rejected.Status != types.LoanRejected {
		t.Fatalf("Reject: expected REJECTED, got %s", rejected.Status)
	}

	if _, err := agg.RecordPayment(ctx, borrower.ID, l.ID, 10); !domainagg.IsCode(err, domainagg.CodePreconditionFailed) {
		t.Fatalf("payment on rejected loan: expected precondition failure, got %v", err)
	}
}

func TestLoanAggregateRequestValidation(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	agg, _ := newLoanAgg(t, tx)
	ctx := context.Background()

	lender := testutil.SeedUser(t, tx, "Lender")
	borrower := testutil.SeedUser(t, tx, "Borrower")
	due := time.Now().Add(24 * time.Hour)

	cases := []struct {
		name string
		in   RequestLoanInput
	}{
		{"zero amount", RequestLoanInput{ActorID: borrower.ID, LenderID: lender.ID, Amount: 0, Description: "x", PaymentType: types.PaymentLumpSum, DueDate: due}},
		{"negative amount", RequestLoanInput{ActorID: borrower.ID, LenderID: lender.ID, Amount: -5, Description: "x", PaymentType: types.PaymentLumpSum, DueDate: due}},
		{"empty description", RequestLoanInput{ActorID: borrower.ID, LenderID: lender.ID, Amount: 10, Description: "  ", PaymentType: types.PaymentLumpSum, DueDate: due}},
		{"missing due date", RequestLoanInput{ActorID: borrower.ID, LenderID: lender.ID, Amount: 10, Description: "x", PaymentType: types.PaymentLumpSum}},
		{"bad payment type", RequestLoanInput{ActorID: borrower.ID, LenderID: lender.ID, Amount: 10, Description: "x", PaymentType: "WEEKLY", DueDate: due}},
		{"zero installments", RequestLoanInput{ActorID: borrower.ID, LenderID: lender.ID, Amount: 10, Description: "x", PaymentType: types.PaymentInstallments, DueDate: due}},
		{"self loan", RequestLoanInput{ActorID: borrower.ID, LenderID: borrower.ID, Amount: 10, Description: "x", PaymentType: types.PaymentLumpSum, DueDate: due}},
	}
	for _, tc := range cases {
		if _, err := agg.Request(ctx, tc.in); !domainagg.IsCode(err, domainagg.CodeValidation) {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
	}

	if _, err := agg.Request(ctx, RequestLoanInput{
		ActorID: borrower.ID, LenderID: uuid.New(), Amount: 10,
		Description: "x", PaymentType: types.PaymentLumpSum, DueDate: due,
	}); !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("unknown lender: expected not found, got %v", err)
	}
}

func TestLoanAggregateMarkLate(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	agg, _ := newLoanAgg(t, tx)
	ctx := context.Background()

	lender := testutil.SeedUser(t, tx, "Lender")
	borrower := testutil.SeedUser(t, tx, "Borrower")
	l := testutil.SeedLoan(t, tx, lender.ID, borrower.ID, 100)

	// PENDING never goes LATE.
	_, changed, err := agg.MarkLate(ctx, l.ID)
	if err != nil {
		t.Fatalf("MarkLate on pending: %v", err)
	}
	if changed {
		t.Fatalf("MarkLate on pending: expected no change")
	}

	if _, err := agg.Decide(ctx, lender.ID, l.ID, true); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	marked, changed, err := agg.MarkLate(ctx, l.ID)
	if err != nil {
		t.Fatalf("MarkLate: %v", err)
	}
	if !changed || marked.Status != types.LoanLate {
		t.Fatalf("MarkLate: expected LATE, got changed=%v status=%v", changed, marked)
	}

	// Second sweep is a no-op.
	_, changed, err = agg.MarkLate(ctx, l.ID)
	if err != nil {
		t.Fatalf("MarkLate repeat: %v", err)
	}
	if changed {
		t.Fatalf("MarkLate repeat: expected no change")
	}

	var audits []types.LoanStatusAudit
	if err := tx.Where("loan_id = ?", l.ID).Find(&audits).Error; err != nil {
		t.Fatalf("load audits: %v", err)
	}
	if len(audits) != 1 || audits[0].ToStatus != types.LoanLate || audits[0].ActorID != nil {
		t.Fatalf("audit trail: unexpected rows %+v", audits)
	}

	// A late loan recovers to ACTIVE when a payment lands.
	res, err := agg.RecordPayment(ctx, borrower.ID, l.ID, 20)
	if err != nil {
		t.Fatalf("RecordPayment on late loan: %v", err)
	}
	if res.Loan.Status != types.LoanActive {
		t.Fatalf("late recovery: expected ACTIVE, got %s", res.Loan.Status)
	}
}

func TestLoanAggregateOverrideStatus(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	agg, _ := newLoanAgg(t, tx)
	ctx := context.Background()

	lender := testutil.SeedUser(t, tx, "Lender")
	borrower := testutil.SeedUser(t, tx, "Borrower")
	admin := testutil.SeedUser(t, tx, "Admin")
	l := testutil.SeedLoan(t, tx, lender.ID, borrower.ID, 100)

	if _, err := agg.OverrideStatus(ctx, lender.ID, types.RoleUser, l.ID, types.LoanActive, "manual fix"); !domainagg.IsCode(err, domainagg.CodeForbidden) {
		t.Fatalf("override by non-admin: expected forbidden, got %v", err)
	}
	if _, err := agg.OverrideStatus(ctx, admin.ID, types.RoleAdmin, l.ID, "SHREDDED", "manual fix"); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("override to bogus status: expected validation error, got %v", err)
	}
	if _, err := agg.OverrideStatus(ctx, admin.ID, types.RoleAdmin, l.ID, types.LoanActive, "  "); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("override without reason: expected validation error, got %v", err)
	}

	updated, err := agg.OverrideStatus(ctx, admin.ID, types.RoleAdmin, l.ID, types.LoanActive, "support escalation")
	if err != nil {
		t.Fatalf("OverrideStatus: %v", err)
	}
	if updated.Status != types.LoanActive {
		t.Fatalf("OverrideStatus: expected ACTIVE, got %s", updated.Status)
	}

	var audits []types.LoanStatusAudit
	if err := tx.Where("loan_id = ?", l.ID).Find(&audits).Error; err != nil {
		t.Fatalf("load audits: %v", err)
	}
	if len(audits) != 1 || audits[0].ActorID == nil || *audits[0].ActorID != admin.ID {
		t.Fatalf("audit trail: unexpected rows %+v", audits)
	}
}
