package aggregates

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	domainagg "github.com/nahuelRo/first-plug-api/internal/domain/aggregates"
	"github.com/nahuelRo/first-plug-api/internal/platform/dbctx"
	"github.com/nahuelRo/first-plug-api/internal/platform/logger"
)

const tracerName = "github.com/nahuelRo/first-plug-api/internal/data/aggregates"

type BaseDeps struct {
	DB        *gorm.DB
	Log       *logger.Logger
	Runner    TxRunner
	Hooks     Hooks
	CASGuard  CASGuard
	TxOptions *sql.TxOptions
	Clock     func() time.Time
}

func (d BaseDeps) withDefaults() BaseDeps {
	if d.Runner == nil {
		d.Runner = NewGormTxRunner(d.DB, d.TxOptions)
	}
	if d.Hooks == nil {
		d.Hooks = noopHooks{}
	}
	if d.CASGuard.db == nil {
		d.CASGuard = NewCASGuard(d.DB)
	}
	if d.Clock == nil {
		d.Clock = func() time.Time { return time.Now().UTC() }
	}
	return d
}

func (d BaseDeps) now() time.Time {
	if d.Clock == nil {
		return time.Now().UTC()
	}
	return d.Clock().UTC()
}

// executeWrite runs fn in one transaction and maps the outcome into aggregate codes.
func executeWrite(ctx context.Context, deps BaseDeps, op string, fn func(dbc dbctx.Context) error) error {
	deps = deps.withDefaults()
	return observe(ctx, deps, op, "write", func(ctx context.Context) error {
		return deps.Runner.InTx(ctx, fn)
	})
}

// executeRead runs fn outside a transaction with the same error mapping and hooks.
func executeRead(ctx context.Context, deps BaseDeps, op string, fn func(dbc dbctx.Context) error) error {
	deps = deps.withDefaults()
	return observe(ctx, deps, op, "read", func(ctx context.Context) error {
		return fn(dbctx.Context{Ctx: ctx})
	})
}

func observe(ctx context.Context, deps BaseDeps, op, kind string, run func(ctx context.Context) error) error {
	start := time.Now()
	op = strings.TrimSpace(op)
	if op == "" {
		op = "aggregate." + kind
	}
	ctx, span := otel.Tracer(tracerName).Start(ctx, op)
	defer span.End()
	span.SetAttributes(attribute.String("aggregate.kind", kind))

	mapped := MapError(op, run(ctx))

	status := "success"
	if mapped != nil {
		status = aggregateErrorStatus(mapped)
		span.SetAttributes(attribute.String("aggregate.code", status))
		if domainagg.IsCode(mapped, domainagg.CodeConflict) {
			deps.Hooks.IncConflict(op)
		}
		if domainagg.IsCode(mapped, domainagg.CodeRetryable) {
			deps.Hooks.IncRetry(op)
		}
		if !domainagg.IsClientFacing(mapped) {
			span.RecordError(mapped)
			span.SetStatus(codes.Error, status)
			if deps.Log != nil {
				deps.Log.Warn("aggregate operation failed", "op", op, "code", status, "error", mapped)
			}
		}
	}
	deps.Hooks.ObserveOperation(op, status, time.Since(start))
	return mapped
}

func aggregateErrorStatus(err error) string {
	if err == nil {
		return "success"
	}
	code := strings.TrimSpace(string(domainagg.CodeOf(err)))
	if code == "" {
		code = strings.TrimSpace(string(domainagg.CodeOf(MapError("aggregate.status", err))))
	}
	if code == "" {
		return "failure"
	}
	return code
}
