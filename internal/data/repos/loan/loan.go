package loan

import (
	"context"
	"time"

	"github.com/google/uuid"
	types "github.com/yungbote/lendtrack-backend/internal/domain"
	"github.com/yungbote/lendtrack-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type LoanRepo interface {
	Create(ctx context.Context, tx *gorm.DB, loans []*types.Loan) ([]*types.Loan, error)
	GetByID(ctx context.Context, tx *gorm.DB, loanID uuid.UUID) (*types.Loan, error)
	GetByIDInGroup(ctx context.Context, tx *gorm.DB, loanID, groupID uuid.UUID) (*types.Loan, error)
	ListByLender(ctx context.Context, tx *gorm.DB, lenderID uuid.UUID) ([]*types.Loan, error)
	ListByBorrower(ctx context.Context, tx *gorm.DB, borrowerID uuid.UUID) ([]*types.Loan, error)
	ListDueBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time, statuses []types.LoanStatus) ([]*types.Loan, error)
	AppendPayment(ctx context.Context, tx *gorm.DB, payment *types.Payment) (*types.Payment, error)
	CreateAudit(ctx context.Context, tx *gorm.DB, audit *types.LoanStatusAudit) error
	CreateContribution(ctx context.Context, tx *gorm.DB, contribution *types.GroupLoanContribution) (*types.GroupLoanContribution, error)
	ListContributions(ctx context.Context, tx *gorm.DB, loanID uuid.UUID) ([]*types.GroupLoanContribution, error)
}

type loanRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLoanRepo(db *gorm.DB, baseLog *logger.Logger) LoanRepo {
	return &loanRepo{db: db, log: baseLog.With("repo", "LoanRepo")}
}

func (lr *loanRepo) base(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return lr.db
}

func (lr *loanRepo) Create(ctx context.Context, tx *gorm.DB, loans []*types.Loan) ([]*types.Loan, error) {
	if len(loans) == 0 {
		return []*types.Loan{}, nil
	}
	if err := lr.base(tx).WithContext(ctx).Create(&loans).Error; err != nil {
		return nil, err
	}
	return loans, nil
}

func (lr *loanRepo) GetByID(ctx context.Context, tx *gorm.DB, loanID uuid.UUID) (*types.Loan, error) {
	var result types.Loan
	if err := lr.base(tx).WithContext(ctx).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("paid_at ASC") }).
		Where("id = ?", loanID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (lr *loanRepo) GetByIDInGroup(ctx context.Context, tx *gorm.DB, loanID, groupID uuid.UUID) (*types.Loan, error) {
	var result types.Loan
	if err := lr.base(tx).WithContext(ctx).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("paid_at ASC") }).
		Where("id = ? AND group_id = ?", loanID, groupID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (lr *loanRepo) ListByLender(ctx context.Context, tx *gorm.DB, lenderID uuid.UUID) ([]*types.Loan, error) {
	var results []*types.Loan
	if err := lr.base(tx).WithContext(ctx).
		Preload("Payments").
		Where("lender_id = ?", lenderID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (lr *loanRepo) ListByBorrower(ctx context.Context, tx *gorm.DB, borrowerID uuid.UUID) ([]*types.Loan, error) {
	var results []*types.Loan
	if err := lr.base(tx).WithContext(ctx).
		Preload("Payments").
		Where("borrower_id = ?", borrowerID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (lr *loanRepo) ListDueBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time, statuses []types.LoanStatus) ([]*types.Loan, error) {
	var results []*types.Loan
	if len(statuses) == 0 {
		return results, nil
	}
	if err := lr.base(tx).WithContext(ctx).
		Where("due_date < ? AND status IN ?", cutoff, statuses).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (lr *loanRepo) AppendPayment(ctx context.Context, tx *gorm.DB, payment *types.Payment) (*types.Payment, error) {
	if err := lr.base(tx).WithContext(ctx).Create(payment).Error; err != nil {
		return nil, err
	}
	return payment, nil
}

func (lr *loanRepo) CreateAudit(ctx context.Context, tx *gorm.DB, audit *types.LoanStatusAudit) error {
	return lr.base(tx).WithContext(ctx).Create(audit).Error
}

func (lr *loanRepo) CreateContribution(ctx context.Context, tx *gorm.DB, contribution *types.GroupLoanContribution) (*types.GroupLoanContribution, error) {
	if err := lr.base(tx).WithContext(ctx).Create(contribution).Error; err != nil {
		return nil, err
	}
	return contribution, nil
}

func (lr *loanRepo) ListContributions(ctx context.Context, tx *gorm.DB, loanID uuid.UUID) ([]*types.GroupLoanContribution, error) {
	var results []*types.GroupLoanContribution
	if err := lr.base(tx).WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
