package aggregates

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/yungbote/lendtrack-backend/internal/data/repos/group"
	"github.com/yungbote/lendtrack-backend/internal/data/repos/loan"
	types "github.com/yungbote/lendtrack-backend/internal/domain"
	domainagg "github.com/yungbote/lendtrack-backend/internal/domain/aggregates"
	"github.com/yungbote/lendtrack-backend/internal/platform/dbctx"
)

// ContributionAggregate records member funding toward group loans. The first
// confirmed contribution to a pending loan approves it, and the approval is
// claimed with a compare-and-set so exactly one contributor wins it.
type ContributionAggregate struct {
	deps      BaseDeps
	loanRepo  loan.LoanRepo
	groupRepo group.GroupRepo
}

func NewContributionAggregate(deps BaseDeps, loanRepo loan.LoanRepo, groupRepo group.GroupRepo) *ContributionAggregate {
	return &ContributionAggregate{deps: deps.withDefaults(), loanRepo: loanRepo, groupRepo: groupRepo}
}

func (a *ContributionAggregate) Contract() domainagg.Contract {
	return domainagg.ContributionAggregateContract
}

type ContributeResult struct {
	Contribution *types.GroupLoanContribution
	Loan         *types.Loan
	// Members is the group roster at contribution time, for notification
	// fan-out.
	Members []types.GroupMember
	// AutoApproved is true only for the contribution whose compare-and-set
	// moved the loan from PENDING to APPROVED.
	AutoApproved bool
}

func (a *ContributionAggregate) Contribute(ctx context.Context, actorID, groupID, loanID uuid.UUID, amount float64) (*ContributeResult, error) {
	if amount <= 0 {
		return nil, MapError("contribution.contribute", ValidationError("contribution amount must be positive"))
	}

	var result *ContributeResult
	err := executeWrite(ctx, a.deps, "contribution.contribute", func(dbc dbctx.Context) error {
		grp, err := a.groupRepo.GetByID(dbc.Ctx, dbc.Tx, groupID)
		if err != nil {
			return notFoundAs(err, "contribution.contribute", "group not found")
		}
		l, err := a.loanRepo.GetByIDInGroup(dbc.Ctx, dbc.Tx, loanID, groupID)
		if err != nil {
			return notFoundAs(err, "contribution.contribute", "loan not found in group")
		}
		if !types.CanContribute(actorID, l, grp.Members) {
			return ForbiddenError("only group members other than the borrower can contribute")
		}
		if l.Status != types.LoanPending && l.Status != types.LoanApproved {
			return PreconditionError(fmt.Sprintf("loan is %s and no longer accepts contributions", l.Status))
		}

		c, err := a.loanRepo.CreateContribution(dbc.Ctx, dbc.Tx, &types.GroupLoanContribution{
			LoanID:        loanID,
			ContributorID: actorID,
			Amount:        amount,
			Status:        types.ContributionConfirmed,
		})
		if err != nil {
			return err
		}

		autoApproved := false
		if l.Status == types.LoanPending {
			ok, err := a.deps.CASGuard.UpdateByStatus(dbc, types.Loan{}.TableName(), loanID,
				[]string{string(types.LoanPending)},
				map[string]any{"status": types.LoanApproved})
			if err != nil {
				return err
			}
			if ok {
				autoApproved = true
				l.Status = types.LoanApproved
			} else {
				// Another contribution approved the loan between our read and
				// the claim. Reload and keep the contribution unless the loan
				// has meanwhile left the fundable states entirely.
				fresh, err := a.loanRepo.GetByID(dbc.Ctx, dbc.Tx, loanID)
				if err != nil {
					return notFoundAs(err, "contribution.contribute", "loan not found")
				}
				if fresh.Status != types.LoanApproved && fresh.Status != types.LoanActive {
					return ConflictError(fmt.Sprintf("loan moved to %s while contributing", fresh.Status))
				}
				l = fresh
			}
		}

		result = &ContributeResult{Contribution: c, Loan: l, Members: grp.Members, AutoApproved: autoApproved}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListForLoan returns the contribution ledger for a group loan. Any member of
// the group may read it.
func (a *ContributionAggregate) ListForLoan(ctx context.Context, actorID, groupID, loanID uuid.UUID) ([]*types.GroupLoanContribution, error) {
	grp, err := a.groupRepo.GetByID(ctx, nil, groupID)
	if err != nil {
		return nil, MapError("contribution.list", notFoundAs(err, "contribution.list", "group not found"))
	}
	if !types.IsGroupMember(grp.Members, actorID) {
		return nil, MapError("contribution.list", ForbiddenError("only group members can view contributions"))
	}
	if _, err := a.loanRepo.GetByIDInGroup(ctx, nil, loanID, groupID); err != nil {
		return nil, MapError("contribution.list", notFoundAs(err, "contribution.list", "loan not found in group"))
	}
	rows, err := a.loanRepo.ListContributions(ctx, nil, loanID)
	if err != nil {
		return nil, MapError("contribution.list", err)
	}
	return rows, nil
}
