package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/api/products/:id", "200", time.Millisecond)
	m.IncTenantHandleEvent("open")
	m.SetTenantHandles(3)
	if err := m.WritePrometheus(&bytes.Buffer{}); err != nil {
		t.Fatalf("nil WritePrometheus: %v", err)
	}
}

func TestWritePrometheus(t *testing.T) {
	m := New(time.Second)
	m.ObserveAPI("GET", "/api/products/:id", "200", 20*time.Millisecond)
	m.ObserveAggregateOperation("acme", "Inventory.Asset.Update", "success", 5*time.Millisecond)
	m.IncAggregateConflict("acme", "Inventory.Asset.Update")
	m.IncTenantHandleEvent("open")
	m.SetTenantHandles(2)

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`fp_api_requests_total{method="GET",route="/api/products/:id",status="200"} 1`,
		`fp_aggregate_conflicts_total{tenant="acme",op="Inventory.Asset.Update"} 1`,
		`fp_tenant_handle_events_total{event="open"} 1`,
		`fp_tenant_handles_open 2`,
		`fp_api_request_duration_seconds_bucket{method="GET",route="/api/products/:id",le="0.025"} 1`,
		`# TYPE fp_aggregate_operation_duration_seconds histogram`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestLabelString(t *testing.T) {
	got := labelString([]string{"a", "b"}, []string{`x"y`})
	if got != `{a="x\"y",b="unknown"}` {
		t.Fatalf("labelString: got=%s", got)
	}
	if got := withLe("", "+Inf"); got != `{le="+Inf"}` {
		t.Fatalf("withLe: got=%s", got)
	}
}
