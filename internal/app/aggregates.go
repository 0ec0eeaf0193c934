package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/lendtrack-backend/internal/data/aggregates"
	"github.com/yungbote/lendtrack-backend/internal/platform/logger"
)

type Aggregates struct {
	Loan         *aggregates.LoanAggregate
	Contribution *aggregates.ContributionAggregate
	Group        *aggregates.GroupAggregate
}

func wireAggregates(db *gorm.DB, log *logger.Logger, repos Repos) Aggregates {
	log.Info("Wiring aggregates...")
	deps := aggregates.BaseDeps{DB: db, Log: log}
	return Aggregates{
		Loan:         aggregates.NewLoanAggregate(deps, repos.Loan, repos.User, repos.Group),
		Contribution: aggregates.NewContributionAggregate(deps, repos.Loan, repos.Group),
		Group:        aggregates.NewGroupAggregate(deps, repos.Group, repos.User),
	}
}
