package observability

import (
	"context"
	"testing"
)

func TestParseHeaders(t *testing.T) {
	got := parseHeaders(" api-key = abc ,broken, =x, tenant=acme")
	if len(got) != 2 || got["api-key"] != "abc" || got["tenant"] != "acme" {
		t.Fatalf("parseHeaders: got=%v", got)
	}
	if parseHeaders("") != nil {
		t.Fatalf("empty headers should be nil")
	}
}

func TestClampRatio(t *testing.T) {
	for in, want := range map[float64]float64{-1: 0, 0.25: 0.25, 3: 1} {
		if got := clampRatio(in); got != want {
			t.Fatalf("clampRatio(%v): want=%v got=%v", in, want, got)
		}
	}
}

func TestInitOTelDisabled(t *testing.T) {
	if shutdown := InitOTel(context.Background(), nil, OtelConfig{}); shutdown != nil {
		t.Fatalf("disabled tracing should not return a shutdown func")
	}
}
