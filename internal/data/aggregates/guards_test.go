package aggregates

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/nahuelRo/first-plug-api/internal/data/repos/testutil"
	types "github.com/nahuelRo/first-plug-api/internal/domain"
	domainagg "github.com/nahuelRo/first-plug-api/internal/domain/aggregates"
	"github.com/nahuelRo/first-plug-api/internal/domain/inventory"
	"github.com/nahuelRo/first-plug-api/internal/platform/dbctx"
)

func TestRequireCASSuccess(t *testing.T) {
	if err := RequireCASSuccess(true, "ok"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	err := RequireCASSuccess(false, "stale")
	if err == nil {
		t.Fatalf("expected conflict error")
	}
	if !domainagg.IsCode(MapError("op", err), domainagg.CodeConflict) {
		t.Fatalf("code: want=conflict got=%s", domainagg.CodeOf(MapError("op", err)))
	}
}

func TestCASGuardUpdateByVersion(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	tx := testutil.Tx(t, db)
	row := testutil.SeedPoolAsset(t, ctx, tx, types.Asset{Name: "Laptop", Category: inventory.CategoryComputer})
	guard := NewCASGuard(db)
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	ok, err := guard.UpdateByVersion(dbc, "asset", row.ID, row.Version, map[string]any{"location": "Office"})
	if err != nil || !ok {
		t.Fatalf("first update: ok=%v err=%v", ok, err)
	}
	ok, err = guard.UpdateByVersion(dbc, "asset", row.ID, row.Version, map[string]any{"location": "Home"})
	if err != nil {
		t.Fatalf("stale update err: %v", err)
	}
	if ok {
		t.Fatalf("stale version must not match")
	}

	var got types.Asset
	if err := tx.Where("id = ?", row.ID).Take(&got).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Version != row.Version+1 || got.Location != "Office" {
		t.Fatalf("row: want version=%d location=Office got version=%d location=%s", row.Version+1, got.Version, got.Location)
	}
}

func TestCASGuardRejectsMissingArguments(t *testing.T) {
	guard := NewCASGuard(nil)
	if _, err := guard.UpdateByVersion(dbctx.Context{Ctx: context.Background()}, "asset", uuid.New(), 0, nil); err == nil {
		t.Fatalf("expected error without db")
	}
}
