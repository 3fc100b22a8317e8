package ctxutil

import "context"

type traceDataKey struct{}

// TraceData identifies one request across logs and spans. It is attached once per
// request and shared by pointer, so later middleware can fill in Tenant.
type TraceData struct {
	TraceID   string
	RequestID string
	Tenant    string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	if ctx == nil {
		return nil
	}
	if td, ok := ctx.Value(traceDataKey{}).(*TraceData); ok {
		return td
	}
	return nil
}

// SetTraceTenant records the resolved tenant on the request's trace data, if any.
func SetTraceTenant(ctx context.Context, tenant string) {
	if td := GetTraceData(ctx); td != nil {
		td.Tenant = tenant
	}
}

// LogFields returns the non-empty ids as logger key/value pairs.
func (td *TraceData) LogFields() []interface{} {
	if td == nil {
		return nil
	}
	out := make([]interface{}, 0, 6)
	if td.TraceID != "" {
		out = append(out, "trace_id", td.TraceID)
	}
	if td.RequestID != "" {
		out = append(out, "request_id", td.RequestID)
	}
	if td.Tenant != "" {
		out = append(out, "tenant", td.Tenant)
	}
	return out
}
