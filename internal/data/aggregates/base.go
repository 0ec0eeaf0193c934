package aggregates

import (
	"context"
	"errors"
	"strings"
	"time"

	domainagg "github.com/yungbote/lendtrack-backend/internal/domain/aggregates"
	"github.com/yungbote/lendtrack-backend/internal/platform/dbctx"
	"github.com/yungbote/lendtrack-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type BaseDeps struct {
	DB       *gorm.DB
	Log      *logger.Logger
	Runner   TxRunner
	CASGuard CASGuard
}

func (d BaseDeps) withDefaults() BaseDeps {
	if d.Runner == nil {
		d.Runner = NewGormTxRunner(d.DB)
	}
	if d.CASGuard.db == nil {
		d.CASGuard = NewCASGuard(d.DB)
	}
	return d
}

func executeWrite(ctx context.Context, deps BaseDeps, op string, fn func(dbc dbctx.Context) error) error {
	start := time.Now()
	deps = deps.withDefaults()
	op = strings.TrimSpace(op)
	if op == "" {
		op = "aggregate.write"
	}
	err := deps.Runner.InTx(ctx, fn)
	mapped := MapError(op, err)

	if deps.Log != nil {
		switch {
		case mapped == nil:
			deps.Log.Debug("aggregate write", "op", op, "duration_ms", time.Since(start).Milliseconds())
		case domainagg.IsCode(mapped, domainagg.CodeConflict):
			deps.Log.Warn("aggregate write conflict", "op", op, "error", mapped.Error())
		case domainagg.IsCode(mapped, domainagg.CodeInternal):
			deps.Log.Error("aggregate write failed", "op", op, "error", mapped.Error())
		}
	}
	return mapped
}

func notFoundAs(err error, op, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainagg.NewError(domainagg.CodeNotFound, op, message, err)
	}
	return err
}
