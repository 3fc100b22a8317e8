package ctxutil

import (
	"context"
	"testing"
)

func TestTenantDataRoundTrip(t *testing.T) {
	ctx := context.Background()
	if got := TenantName(ctx); got != "" {
		t.Fatalf("TenantName on empty ctx: want=\"\" got=%q", got)
	}
	ctx = WithTenantData(ctx, &TenantData{TenantName: "acme", HolderID: "u-1"})
	if got := TenantName(ctx); got != "acme" {
		t.Fatalf("TenantName: want=acme got=%q", got)
	}
	ctx = WithTraceData(ctx, &TraceData{TraceID: "t", RequestID: "r"})
	if td := GetTraceData(ctx); td == nil || td.RequestID != "r" {
		t.Fatalf("GetTraceData: unexpected %+v", td)
	}
	if td := GetTenantData(ctx); td == nil || td.HolderID != "u-1" {
		t.Fatalf("GetTenantData after trace: unexpected %+v", td)
	}
}

func TestSetTraceTenant(t *testing.T) {
	SetTraceTenant(context.Background(), "acme")

	td := &TraceData{TraceID: "t-1"}
	ctx := WithTraceData(context.Background(), td)
	SetTraceTenant(ctx, "acme")
	if td.Tenant != "acme" {
		t.Fatalf("tenant: want=acme got=%q", td.Tenant)
	}
	got := td.LogFields()
	want := []interface{}{"trace_id", "t-1", "tenant", "acme"}
	if len(got) != len(want) {
		t.Fatalf("LogFields: want=%v got=%v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("LogFields[%d]: want=%v got=%v", i, want[i], got[i])
		}
	}
	var none *TraceData
	if none.LogFields() != nil {
		t.Fatalf("nil LogFields: want nil")
	}
}
