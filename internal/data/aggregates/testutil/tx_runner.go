package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/nahuelRo/first-plug-api/internal/data/aggregates"
	"github.com/nahuelRo/first-plug-api/internal/platform/dbctx"
)

// errInjectedRollback forces the inner transaction to roll back when commit failure is injected.
var errInjectedRollback = errors.New("injected rollback")

// InjectedTxRunner is a test helper for aggregate integration tests.
// With Inner set, the body runs inside a real transaction and every injected
// failure rolls that transaction back.
type InjectedTxRunner struct {
	mu sync.Mutex

	Inner aggregates.TxRunner

	FailBegin      error
	FailBeforeBody error
	FailCommit     error

	BeginCalls    int
	CommitCalls   int
	RollbackCalls int
}

var _ aggregates.TxRunner = (*InjectedTxRunner)(nil)

func (r *InjectedTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.mu.Lock()
	r.BeginCalls++
	failBegin := r.FailBegin
	failBeforeBody := r.FailBeforeBody
	failCommit := r.FailCommit
	inner := r.Inner
	r.mu.Unlock()

	if failBegin != nil {
		return failBegin
	}
	if failBeforeBody != nil {
		r.rollback()
		return failBeforeBody
	}
	if fn == nil {
		r.commit()
		return nil
	}

	body := func(dbc dbctx.Context) error {
		if err := fn(dbc); err != nil {
			return err
		}
		if failCommit != nil {
			return errInjectedRollback
		}
		return nil
	}

	var err error
	if inner != nil {
		err = inner.InTx(ctx, body)
	} else {
		err = body(dbctx.Context{Ctx: ctx})
	}
	switch {
	case errors.Is(err, errInjectedRollback):
		r.rollback()
		return failCommit
	case err != nil:
		r.rollback()
		return err
	}
	r.commit()
	return nil
}

func (r *InjectedTxRunner) commit() {
	r.mu.Lock()
	r.CommitCalls++
	r.mu.Unlock()
}

func (r *InjectedTxRunner) rollback() {
	r.mu.Lock()
	r.RollbackCalls++
	r.mu.Unlock()
}
