package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/lendtrack-backend/internal/data/aggregates"
	grouprepo "github.com/yungbote/lendtrack-backend/internal/data/repos/group"
	loanrepo "github.com/yungbote/lendtrack-backend/internal/data/repos/loan"
	userrepo "github.com/yungbote/lendtrack-backend/internal/data/repos/user"
	types "github.com/yungbote/lendtrack-backend/internal/domain"
	"github.com/yungbote/lendtrack-backend/internal/notify"
	"github.com/yungbote/lendtrack-backend/internal/platform/logger"
)

type RequestLoanParams struct {
	LenderID          uuid.UUID
	Amount            float64
	Description       string
	PaymentType       types.PaymentType
	InstallmentsCount int
	DueDate           time.Time
	GroupID           *uuid.UUID
}

type LoanService interface {
	Request(ctx context.Context, params RequestLoanParams) (*types.Loan, error)
	Approve(ctx context.Context, loanID uuid.UUID) (*types.Loan, error)
	Reject(ctx context.Context, loanID uuid.UUID) (*types.Loan, error)
	Pay(ctx context.Context, loanID uuid.UUID, amount float64) (*aggregates.PaymentResult, error)
	Get(ctx context.Context, loanID uuid.UUID) (*types.Loan, error)
	ListLent(ctx context.Context) ([]*types.Loan, error)
	ListBorrowed(ctx context.Context) ([]*types.Loan, error)
	OverrideStatus(ctx context.Context, loanID uuid.UUID, to types.LoanStatus, reason string) (*types.Loan, error)
}

type loanService struct {
	log       *logger.Logger
	loanAgg   *aggregates.LoanAggregate
	loanRepo  loanrepo.LoanRepo
	userRepo  userrepo.UserRepo
	groupRepo grouprepo.GroupRepo
	dispatch  notify.Dispatcher
}

func NewLoanService(log *logger.Logger, loanAgg *aggregates.LoanAggregate, loanRepo loanrepo.LoanRepo, userRepo userrepo.UserRepo, groupRepo grouprepo.GroupRepo, dispatch notify.Dispatcher) LoanService {
	return &loanService{
		log:       log.With("service", "LoanService"),
		loanAgg:   loanAgg,
		loanRepo:  loanRepo,
		userRepo:  userRepo,
		groupRepo: groupRepo,
		dispatch:  dispatch,
	}
}

func (s *loanService) Request(ctx context.Context, params RequestLoanParams) (*types.Loan, error) {
	rd, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	l, err := s.loanAgg.Request(ctx, aggregates.RequestLoanInput{
		ActorID:           rd.UserID,
		LenderID:          params.LenderID,
		Amount:            params.Amount,
		Description:       params.Description,
		PaymentType:       params.PaymentType,
		InstallmentsCount: params.InstallmentsCount,
		DueDate:           params.DueDate,
		GroupID:           params.GroupID,
	})
	if err != nil {
		return nil, err
	}

	borrower, err := s.userRepo.GetByID(ctx, nil, rd.UserID)
	if err == nil {
		var members []types.GroupMember
		if l.GroupID != nil {
			if grp, gerr := s.groupRepo.GetByID(ctx, nil, *l.GroupID); gerr == nil {
				members = grp.Members
			}
		}
		s.dispatch.LoanRequested(ctx, l, borrower, members)
	}
	return l, nil
}

func (s *loanService) Approve(ctx context.Context, loanID uuid.UUID) (*types.Loan, error) {
	rd, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	l, err := s.loanAgg.Decide(ctx, rd.UserID, loanID, true)
	if err != nil {
		return nil, err
	}
	s.dispatch.LoanApproved(ctx, l, rd.UserID)
	return l, nil
}

func (s *loanService) Reject(ctx context.Context, loanID uuid.UUID) (*types.Loan, error) {
	rd, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	l, err := s.loanAgg.Decide(ctx, rd.UserID, loanID, false)
	if err != nil {
		return nil, err
	}
	s.dispatch.LoanRejected(ctx, l)
	return l, nil
}

func (s *loanService) Pay(ctx context.Context, loanID uuid.UUID, amount float64) (*aggregates.PaymentResult, error) {
	rd, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.loanAgg.RecordPayment(ctx, rd.UserID, loanID, amount)
	if err != nil {
		return nil, err
	}
	s.dispatch.PaymentReceived(ctx, res.Loan, res.Payment, res.Completed)
	return res, nil
}

func (s *loanService) Get(ctx context.Context, loanID uuid.UUID) (*types.Loan, error) {
	rd, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	l, err := s.loanRepo.GetByID(ctx, nil, loanID)
	if err != nil {
		return nil, aggregates.MapError("loan.get", err)
	}
	if !types.CanViewLoan(rd.UserID, l) {
		return nil, aggregates.MapError("loan.get", aggregates.ForbiddenError("not a participant of this loan"))
	}
	return l, nil
}

func (s *loanService) ListLent(ctx context.Context) ([]*types.Loan, error) {
	rd, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	return s.loanRepo.ListByLender(ctx, nil, rd.UserID)
}

func (s *loanService) ListBorrowed(ctx context.Context) ([]*types.Loan, error) {
	rd, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	return s.loanRepo.ListByBorrower(ctx, nil, rd.UserID)
}

func (s *loanService) OverrideStatus(ctx context.Context, loanID uuid.UUID, to types.LoanStatus, reason string) (*types.Loan, error) {
	rd, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	return s.loanAgg.OverrideStatus(ctx, rd.UserID, rd.Role, loanID, to, reason)
}
