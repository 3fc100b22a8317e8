package aggregates

import (
	"context"
	"database/sql"

	domainagg "github.com/nahuelRo/first-plug-api/internal/domain/aggregates"
	"github.com/nahuelRo/first-plug-api/internal/platform/dbctx"
	"gorm.io/gorm"
)

// TxRunner provides a shared transaction boundary primitive for aggregate writes.
type TxRunner interface {
	InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error
}

type gormTxRunner struct {
	db   *gorm.DB
	opts *sql.TxOptions
}

// NewGormTxRunner returns a transaction runner backed by GORM transactions.
// opts may be nil (driver default isolation).
func NewGormTxRunner(db *gorm.DB, opts *sql.TxOptions) TxRunner {
	return &gormTxRunner{db: db, opts: opts}
}

func (r *gormTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	if r == nil || r.db == nil {
		return domainagg.NewError(domainagg.CodeInternal, "aggregate.tx", "transaction runner has nil db", nil)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	body := func(tx *gorm.DB) error {
		if err := fn(dbctx.Context{Ctx: ctx, Tx: tx}); err != nil {
			return err
		}
		// a request cancelled mid-body must not commit
		return ctx.Err()
	}
	if r.opts != nil {
		return r.db.WithContext(ctx).Transaction(body, r.opts)
	}
	return r.db.WithContext(ctx).Transaction(body)
}
