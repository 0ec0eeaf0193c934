package aggregates

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/lendtrack-backend/internal/data/repos/group"
	"github.com/yungbote/lendtrack-backend/internal/data/repos/loan"
	"github.com/yungbote/lendtrack-backend/internal/data/repos/user"
	types "github.com/yungbote/lendtrack-backend/internal/domain"
	domainagg "github.com/yungbote/lendtrack-backend/internal/domain/aggregates"
	"github.com/yungbote/lendtrack-backend/internal/platform/dbctx"
)

// LoanAggregate owns every write to the loan row and its payment ledger.
// All status changes go through compare-and-set so concurrent writers lose
// cleanly instead of overwriting each other.
type LoanAggregate struct {
	deps      BaseDeps
	loanRepo  loan.LoanRepo
	userRepo  user.UserRepo
	groupRepo group.GroupRepo
}

func NewLoanAggregate(deps BaseDeps, loanRepo loan.LoanRepo, userRepo user.UserRepo, groupRepo group.GroupRepo) *LoanAggregate {
	return &LoanAggregate{deps: deps.withDefaults(), loanRepo: loanRepo, userRepo: userRepo, groupRepo: groupRepo}
}

func (a *LoanAggregate) Contract() domainagg.Contract {
	return domainagg.LoanAggregateContract
}

type RequestLoanInput struct {
	ActorID           uuid.UUID
	LenderID          uuid.UUID
	Amount            float64
	Description       string
	PaymentType       types.PaymentType
	InstallmentsCount int
	DueDate           time.Time
	GroupID           *uuid.UUID
}

// Request creates a PENDING loan with the actor as borrower. For group loans
// the lender is always the group admin, whatever the caller passed.
func (a *LoanAggregate) Request(ctx context.Context, in RequestLoanInput) (*types.Loan, error) {
	if in.Amount <= 0 {
		return nil, MapError("loan.request", ValidationError("amount must be positive"))
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, MapError("loan.request", ValidationError("description is required"))
	}
	if in.DueDate.IsZero() {
		return nil, MapError("loan.request", ValidationError("due date is required"))
	}
	switch in.PaymentType {
	case types.PaymentLumpSum:
		in.InstallmentsCount = 1
	case types.PaymentInstallments:
		if in.InstallmentsCount < 1 {
			return nil, MapError("loan.request", ValidationError("installments count must be at least 1"))
		}
	default:
		return nil, MapError("loan.request", ValidationError(fmt.Sprintf("unknown payment type %q", in.PaymentType)))
	}

	var created *types.Loan
	err := executeWrite(ctx, a.deps, "loan.request", func(dbc dbctx.Context) error {
		lenderID := in.LenderID
		if in.GroupID != nil {
			grp, err := a.groupRepo.GetByID(dbc.Ctx, dbc.Tx, *in.GroupID)
			if err != nil {
				return notFoundAs(err, "loan.request", "group not found")
			}
			if !types.IsGroupMember(grp.Members, in.ActorID) {
				return ForbiddenError("only group members can request group loans")
			}
			lenderID = grp.AdminID
		}
		if lenderID == in.ActorID {
			return ValidationError("borrower and lender must differ")
		}
		if _, err := a.userRepo.GetByID(dbc.Ctx, dbc.Tx, lenderID); err != nil {
			return notFoundAs(err, "loan.request", "lender not found")
		}

		l := &types.Loan{
			Amount:            in.Amount,
			Description:       strings.TrimSpace(in.Description),
			LenderID:          lenderID,
			BorrowerID:        in.ActorID,
			Status:            types.LoanPending,
			PaymentType:       in.PaymentType,
			InstallmentsCount: in.InstallmentsCount,
			DueDate:           in.DueDate,
			GroupID:           in.GroupID,
		}
		rows, err := a.loanRepo.Create(dbc.Ctx, dbc.Tx, []*types.Loan{l})
		if err != nil {
			return err
		}
		created = rows[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Decide resolves a PENDING loan to APPROVED or REJECTED. Only the lender may
// decide, and only once: the compare-and-set fails for any loan that has
// already left PENDING.
func (a *LoanAggregate) Decide(ctx context.Context, actorID, loanID uuid.UUID, approve bool) (*types.Loan, error) {
	op := "loan.reject"
	target := types.LoanRejected
	if approve {
		op = "loan.approve"
		target = types.LoanApproved
	}

	var decided *types.Loan
	err := executeWrite(ctx, a.deps, op, func(dbc dbctx.Context) error {
		l, err := a.loanRepo.GetByID(dbc.Ctx, dbc.Tx, loanID)
		if err != nil {
			return notFoundAs(err, op, "loan not found")
		}
		if !types.CanApproveOrReject(actorID, l) {
			return ForbiddenError("only the lender can decide this loan")
		}
		if l.Status != types.LoanPending {
			return PreconditionError(fmt.Sprintf("loan is %s, only pending loans can be decided", l.Status))
		}
		ok, err := a.deps.CASGuard.UpdateByStatus(dbc, types.Loan{}.TableName(), loanID,
			[]string{string(types.LoanPending)},
			map[string]any{"status": target})
		if err != nil {
			return err
		}
		if err := RequireCASSuccess(ok, "loan was decided concurrently"); err != nil {
			return err
		}
		l.Status = target
		decided = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return decided, nil
}

type PaymentResult struct {
	Loan      *types.Loan
	Payment   *types.Payment
	Completed bool
}

// RecordPayment appends a COMPLETED ledger entry and rolls the loan status
// forward. The status write is guarded on the payable set, so two overlapping
// payments cannot both drive the final transition.
func (a *LoanAggregate) RecordPayment(ctx context.Context, actorID, loanID uuid.UUID, amount float64) (*PaymentResult, error) {
	if amount <= 0 {
		return nil, MapError("loan.record_payment", ValidationError("payment amount must be positive"))
	}

	var result *PaymentResult
	err := executeWrite(ctx, a.deps, "loan.record_payment", func(dbc dbctx.Context) error {
		l, err := a.loanRepo.GetByID(dbc.Ctx, dbc.Tx, loanID)
		if err != nil {
			return notFoundAs(err, "loan.record_payment", "loan not found")
		}
		if !types.CanPay(actorID, l) {
			return ForbiddenError("only the borrower can make payments")
		}
		if !types.IsPayable(l.Status) {
			return PreconditionError(fmt.Sprintf("loan is %s and does not accept payments", l.Status))
		}

		p, err := a.loanRepo.AppendPayment(dbc.Ctx, dbc.Tx, &types.Payment{
			LoanID: loanID,
			Amount: amount,
			Status: types.PaymentCompleted,
			PaidAt: time.Now().UTC(),
		})
		if err != nil {
			return err
		}

		totalPaid := l.TotalPaid() + amount
		next := types.StatusAfterPayment(totalPaid, l.Amount)

		updates := map[string]any{"status": next}
		installmentsPaid := l.InstallmentsPaid
		if l.PaymentType == types.PaymentInstallments && installmentsPaid < l.InstallmentsCount {
			installmentsPaid++
			updates["installments_paid"] = installmentsPaid
		}

		allowed := make([]string, 0, 3)
		for _, s := range types.PayableStatuses() {
			allowed = append(allowed, string(s))
		}
		ok, err := a.deps.CASGuard.UpdateByStatus(dbc, types.Loan{}.TableName(), loanID, allowed, updates)
		if err != nil {
			return err
		}
		if err := RequireCASSuccess(ok, "loan status changed while recording payment"); err != nil {
			return err
		}

		l.Status = next
		l.InstallmentsPaid = installmentsPaid
		l.Payments = append(l.Payments, *p)
		result = &PaymentResult{Loan: l, Payment: p, Completed: next == types.LoanCompleted}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// MarkLate flips an overdue loan to LATE and records the change in the audit
// trail. It reports false without error when another writer got there first;
// the watcher treats that as already handled.
func (a *LoanAggregate) MarkLate(ctx context.Context, loanID uuid.UUID) (*types.Loan, bool, error) {
	var (
		marked  *types.Loan
		changed bool
	)
	err := executeWrite(ctx, a.deps, "loan.mark_late", func(dbc dbctx.Context) error {
		l, err := a.loanRepo.GetByID(dbc.Ctx, dbc.Tx, loanID)
		if err != nil {
			return notFoundAs(err, "loan.mark_late", "loan not found")
		}
		if !types.CanTransition(l.Status, types.LoanLate) {
			return nil
		}
		from := l.Status
		ok, err := a.deps.CASGuard.UpdateByStatus(dbc, types.Loan{}.TableName(), loanID,
			[]string{string(types.LoanApproved), string(types.LoanActive)},
			map[string]any{"status": types.LoanLate})
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := a.loanRepo.CreateAudit(dbc.Ctx, dbc.Tx, &types.LoanStatusAudit{
			LoanID:     loanID,
			FromStatus: from,
			ToStatus:   types.LoanLate,
			Reason:     "due date passed",
		}); err != nil {
			return err
		}
		l.Status = types.LoanLate
		marked = l
		changed = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return marked, changed, nil
}

// OverrideStatus is the platform-admin escape hatch. It bypasses the
// transition graph but never skips the audit trail.
func (a *LoanAggregate) OverrideStatus(ctx context.Context, actorID uuid.UUID, actorRole types.UserRole, loanID uuid.UUID, to types.LoanStatus, reason string) (*types.Loan, error) {
	if actorRole != types.RoleAdmin {
		return nil, MapError("loan.override_status", ForbiddenError("only platform admins can force a loan status"))
	}
	switch to {
	case types.LoanPending, types.LoanApproved, types.LoanRejected, types.LoanActive, types.LoanCompleted, types.LoanLate:
	default:
		return nil, MapError("loan.override_status", ValidationError(fmt.Sprintf("unknown loan status %q", to)))
	}
	if strings.TrimSpace(reason) == "" {
		return nil, MapError("loan.override_status", ValidationError("override reason is required"))
	}

	var updated *types.Loan
	err := executeWrite(ctx, a.deps, "loan.override_status", func(dbc dbctx.Context) error {
		l, err := a.loanRepo.GetByID(dbc.Ctx, dbc.Tx, loanID)
		if err != nil {
			return notFoundAs(err, "loan.override_status", "loan not found")
		}
		from := l.Status
		if from == to {
			updated = l
			return nil
		}
		ok, err := a.deps.CASGuard.UpdateByStatus(dbc, types.Loan{}.TableName(), loanID,
			[]string{string(from)},
			map[string]any{"status": to})
		if err != nil {
			return err
		}
		if err := RequireCASSuccess(ok, "loan status changed during override"); err != nil {
			return err
		}
		actor := actorID
		if err := a.loanRepo.CreateAudit(dbc.Ctx, dbc.Tx, &types.LoanStatusAudit{
			LoanID:     loanID,
			ActorID:    &actor,
			FromStatus: from,
			ToStatus:   to,
			Reason:     strings.TrimSpace(reason),
		}); err != nil {
			return err
		}
		l.Status = to
		updated = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	if a.deps.Log != nil {
		a.deps.Log.Warn("loan status overridden",
			"loan_id", loanID.String(), "actor_id", actorID.String(),
			"to_status", string(to))
	}
	return updated, nil
}
