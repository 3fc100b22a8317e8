package ctxutil

import "context"

type tenantDataKey struct{}

// TenantData is the resolved tenant identity for the current request.
type TenantData struct {
	TenantName string
	HolderID   string
	Email      string
}

func WithTenantData(ctx context.Context, td *TenantData) context.Context {
	return context.WithValue(ctx, tenantDataKey{}, td)
}

func GetTenantData(ctx context.Context) *TenantData {
	if ctx == nil {
		return nil
	}
	val := ctx.Value(tenantDataKey{})
	if td, ok := val.(*TenantData); ok {
		return td
	}
	return nil
}

// TenantName returns the resolved tenant name, or "" when the request is not tenant scoped.
func TenantName(ctx context.Context) string {
	if td := GetTenantData(ctx); td != nil {
		return td.TenantName
	}
	return ""
}
