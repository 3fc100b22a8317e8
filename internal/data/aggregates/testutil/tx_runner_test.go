package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/nahuelRo/first-plug-api/internal/platform/dbctx"
)

type countingRunner struct {
	calls int
}

func (c *countingRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	c.calls++
	return fn(dbctx.Context{Ctx: ctx})
}

func TestInjectedTxRunner_CommitsOnSuccess(t *testing.T) {
	r := &InjectedTxRunner{}
	called := false
	err := r.InTx(context.Background(), func(_ dbctx.Context) error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !called {
		t.Fatalf("expected callback to run")
	}
	if r.BeginCalls != 1 || r.CommitCalls != 1 || r.RollbackCalls != 0 {
		t.Fatalf("counters: begin=%d commit=%d rollback=%d", r.BeginCalls, r.CommitCalls, r.RollbackCalls)
	}
}

func TestInjectedTxRunner_RollbackOnBodyError(t *testing.T) {
	r := &InjectedTxRunner{}
	bodyErr := errors.New("boom")
	err := r.InTx(context.Background(), func(_ dbctx.Context) error { return bodyErr })
	if !errors.Is(err, bodyErr) {
		t.Fatalf("body err: want=%v got=%v", bodyErr, err)
	}
	if r.CommitCalls != 0 || r.RollbackCalls != 1 {
		t.Fatalf("counters: commit=%d rollback=%d", r.CommitCalls, r.RollbackCalls)
	}
}

func TestInjectedTxRunner_FailCommitRollsBackInner(t *testing.T) {
	commitErr := errors.New("commit failed")
	inner := &countingRunner{}
	r := &InjectedTxRunner{Inner: inner, FailCommit: commitErr}
	ran := false
	err := r.InTx(context.Background(), func(_ dbctx.Context) error {
		ran = true
		return nil
	})
	if !errors.Is(err, commitErr) {
		t.Fatalf("commit err: want=%v got=%v", commitErr, err)
	}
	if !ran || inner.calls != 1 {
		t.Fatalf("inner runner should execute the body once: ran=%v calls=%d", ran, inner.calls)
	}
	if r.CommitCalls != 0 || r.RollbackCalls != 1 {
		t.Fatalf("counters: commit=%d rollback=%d", r.CommitCalls, r.RollbackCalls)
	}
}

func TestInjectedTxRunner_FailBeginSkipsBody(t *testing.T) {
	beginErr := errors.New("no connection")
	r := &InjectedTxRunner{FailBegin: beginErr}
	err := r.InTx(context.Background(), func(_ dbctx.Context) error {
		t.Fatalf("body must not run")
		return nil
	})
	if !errors.Is(err, beginErr) {
		t.Fatalf("begin err: want=%v got=%v", beginErr, err)
	}
}
