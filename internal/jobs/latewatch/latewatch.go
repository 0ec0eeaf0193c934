// Package latewatch sweeps for loans past their due date and marks them
// LATE. Producing LATE belongs here and in the contribution-free write path,
// never in read handlers.
package latewatch

import (
	"context"
	"time"

	"github.com/yungbote/lendtrack-backend/internal/data/aggregates"
	loanrepo "github.com/yungbote/lendtrack-backend/internal/data/repos/loan"
	types "github.com/yungbote/lendtrack-backend/internal/domain"
	"github.com/yungbote/lendtrack-backend/internal/notify"
	"github.com/yungbote/lendtrack-backend/internal/platform/logger"
)

type Watcher struct {
	log      *logger.Logger
	loanRepo loanrepo.LoanRepo
	loanAgg  *aggregates.LoanAggregate
	dispatch notify.Dispatcher
	interval time.Duration
}

func New(log *logger.Logger, loanRepo loanrepo.LoanRepo, loanAgg *aggregates.LoanAggregate, dispatch notify.Dispatcher, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &Watcher{
		log:      log.With("worker", "LateWatcher"),
		loanRepo: loanRepo,
		loanAgg:  loanAgg,
		dispatch: dispatch,
		interval: interval,
	}
}

// Start blocks until ctx is cancelled. One sweep runs immediately so a
// restart never delays overdue handling by a full interval.
func (w *Watcher) Start(ctx context.Context) {
	w.sweep(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *Watcher) sweep(ctx context.Context) {
	due, err := w.loanRepo.ListDueBefore(ctx, nil, time.Now().UTC(), []types.LoanStatus{types.LoanApproved, types.LoanActive})
	if err != nil {
		w.log.Error("late sweep query failed", "error", err.Error())
		return
	}
	if len(due) == 0 {
		return
	}

	marked := 0
	for _, l := range due {
		loan, changed, err := w.loanAgg.MarkLate(ctx, l.ID)
		if err != nil {
			w.log.Warn("failed to mark loan late", "loan_id", l.ID.String(), "error", err.Error())
			continue
		}
		if !changed {
			continue
		}
		marked++
		if w.dispatch != nil {
			w.dispatch.LoanLate(ctx, loan)
		}
	}
	if marked > 0 {
		w.log.Info("late sweep complete", "overdue", len(due), "marked", marked)
	}
}
