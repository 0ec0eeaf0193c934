package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/lendtrack-backend/internal/data/aggregates"
	grouprepo "github.com/yungbote/lendtrack-backend/internal/data/repos/group"
	types "github.com/yungbote/lendtrack-backend/internal/domain"
	"github.com/yungbote/lendtrack-backend/internal/notify"
	"github.com/yungbote/lendtrack-backend/internal/platform/logger"
)

type RequestGroupLoanParams struct {
	Amount            float64
	Description       string
	PaymentType       types.PaymentType
	InstallmentsCount int
	DueDate           time.Time
}

type GroupService interface {
	Create(ctx context.Context, name, description string, memberIDs []uuid.UUID) (*types.Group, error)
	Get(ctx context.Context, groupID uuid.UUID) (*types.Group, error)
	ListMine(ctx context.Context) ([]*types.Group, error)
	AddMember(ctx context.Context, groupID, userID uuid.UUID) (*types.Group, error)
	RemoveMember(ctx context.Context, groupID, userID uuid.UUID) (*aggregates.RemoveMemberResult, error)
	Contribute(ctx context.Context, groupID, loanID uuid.UUID, amount float64) (*aggregates.ContributeResult, error)
	ListContributions(ctx context.Context, groupID, loanID uuid.UUID) ([]*types.GroupLoanContribution, error)
}

type groupService struct {
	log       *logger.Logger
	groupAgg  *aggregates.GroupAggregate
	contribs  *aggregates.ContributionAggregate
	groupRepo grouprepo.GroupRepo
	dispatch  notify.Dispatcher
}

func NewGroupService(log *logger.Logger, groupAgg *aggregates.GroupAggregate, contribs *aggregates.ContributionAggregate, groupRepo grouprepo.GroupRepo, dispatch notify.Dispatcher) GroupService {
	return &groupService{
		log:       log.With("service", "GroupService"),
		groupAgg:  groupAgg,
		contribs:  contribs,
		groupRepo: groupRepo,
		dispatch:  dispatch,
	}
}

func (s *groupService) Create(ctx context.Context, name, description string, memberIDs []uuid.UUID) (*types.Group, error) {
	rd, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.groupAgg.CreateGroup(ctx, rd.UserID, name, description, memberIDs)
	if err != nil {
		return nil, err
	}
	if len(res.AddedMemberIDs) > 0 {
		s.dispatch.GroupInvited(ctx, res.Group, rd.UserID, res.AddedMemberIDs)
	}
	return res.Group, nil
}

func (s *groupService) Get(ctx context.Context, groupID uuid.UUID) (*types.Group, error) {
	rd, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	grp, err := s.groupRepo.GetByID(ctx, nil, groupID)
	if err != nil {
		return nil, aggregates.MapError("group.get", err)
	}
	if !types.IsGroupMember(grp.Members, rd.UserID) {
		return nil, aggregates.MapError("group.get", aggregates.ForbiddenError("only group members can view the group"))
	}
	return grp, nil
}

func (s *groupService) ListMine(ctx context.Context) ([]*types.Group, error) {
	rd, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	return s.groupRepo.ListByMember(ctx, nil, rd.UserID)
}

func (s *groupService) AddMember(ctx context.Context, groupID, userID uuid.UUID) (*types.Group, error) {
	rd, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	grp, err := s.groupAgg.AddMember(ctx, rd.UserID, groupID, userID)
	if err != nil {
		return nil, err
	}
	s.dispatch.GroupInvited(ctx, grp, rd.UserID, []uuid.UUID{userID})
	return grp, nil
}

func (s *groupService) RemoveMember(ctx context.Context, groupID, userID uuid.UUID) (*aggregates.RemoveMemberResult, error) {
	rd, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.groupAgg.RemoveMember(ctx, rd.UserID, groupID, userID)
	if err != nil {
		return nil, err
	}
	if res.PromotedAdminID != nil {
		s.dispatch.AdminPromoted(ctx, res.Group, userID, *res.PromotedAdminID)
	}
	return res, nil
}

func (s *groupService) Contribute(ctx context.Context, groupID, loanID uuid.UUID, amount float64) (*aggregates.ContributeResult, error) {
	rd, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.contribs.Contribute(ctx, rd.UserID, groupID, loanID, amount)
	if err != nil {
		return nil, err
	}
	s.dispatch.ContributionRecorded(ctx, res.Loan, res.Contribution, res.Members)
	if res.AutoApproved {
		s.dispatch.LoanApproved(ctx, res.Loan, rd.UserID)
	}
	return res, nil
}

func (s *groupService) ListContributions(ctx context.Context, groupID, loanID uuid.UUID) ([]*types.GroupLoanContribution, error) {
	rd, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	return s.contribs.ListForLoan(ctx, rd.UserID, groupID, loanID)
}
