package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/nahuelRo/first-plug-api/internal/data/repos/testutil"
	"github.com/nahuelRo/first-plug-api/internal/data/tenantdb"
	"github.com/nahuelRo/first-plug-api/internal/platform/ctxutil"
	"github.com/nahuelRo/first-plug-api/internal/services"
)

type stubResolver struct {
	tenant string
	err    error
}

func (r stubResolver) Resolve(ctx context.Context, authorization string) (context.Context, *ctxutil.TenantData, error) {
	if r.err != nil {
		return ctx, nil, r.err
	}
	td := &ctxutil.TenantData{TenantName: r.tenant}
	return ctxutil.WithTenantData(ctx, td), td, nil
}

type stubAcquirer struct {
	err      error
	acquired []string
}

func (a *stubAcquirer) Acquire(ctx context.Context, tenantName string) (*tenantdb.Scope, error) {
	if a.err != nil {
		return nil, a.err
	}
	a.acquired = append(a.acquired, tenantName)
	return &tenantdb.Scope{TenantName: tenantName, DBName: "tenant_" + tenantName}, nil
}

func serveTenant(t *testing.T, resolver services.TenantResolver, acq ScopeAcquirer) (*httptest.ResponseRecorder, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	var seen string
	r := gin.New()
	r.Use(NewTenantMiddleware(testutil.Logger(t), resolver, acq).RequireTenant())
	r.GET("/api/products", func(c *gin.Context) {
		if s := tenantdb.ScopeFrom(c.Request.Context()); s != nil {
			seen = s.DBName
		}
		c.Status(http.StatusOK)
	})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set("Authorization", "Bearer x")
	r.ServeHTTP(rec, req)
	return rec, seen
}

func TestRequireTenantBindsScope(t *testing.T) {
	acq := &stubAcquirer{}
	rec, seen := serveTenant(t, stubResolver{tenant: "acme"}, acq)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=%d got=%d", http.StatusOK, rec.Code)
	}
	if seen != "tenant_acme" || len(acq.acquired) != 1 {
		t.Fatalf("scope: want=tenant_acme got=%q acquired=%v", seen, acq.acquired)
	}
}

func TestRequireTenantRejections(t *testing.T) {
	const unauthorized = `{"error":{"message":"unauthorized","code":"unauthorized"}}`
	cases := []struct {
		name     string
		resolver stubResolver
		acq      *stubAcquirer
		status   int
	}{
		{"unauthenticated", stubResolver{err: services.ErrUnauthenticated}, &stubAcquirer{}, http.StatusUnauthorized},
		{"tenant_not_found", stubResolver{err: services.ErrTenantNotFound}, &stubAcquirer{}, http.StatusUnauthorized},
		{"unroutable_name", stubResolver{tenant: "acme"}, &stubAcquirer{err: tenantdb.ErrInvalidTenantName}, http.StatusUnauthorized},
		{"directory_down", stubResolver{err: errors.New("control db down")}, &stubAcquirer{}, http.StatusInternalServerError},
		{"open_failed", stubResolver{tenant: "acme"}, &stubAcquirer{err: errors.New("too many connections")}, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, seen := serveTenant(t, tc.resolver, tc.acq)
			if rec.Code != tc.status {
				t.Fatalf("status: want=%d got=%d", tc.status, rec.Code)
			}
			if seen != "" {
				t.Fatalf("handler ran after rejection")
			}
			if tc.status == http.StatusUnauthorized && rec.Body.String() != unauthorized {
				t.Fatalf("body: want=%s got=%s", unauthorized, rec.Body.String())
			}
		})
	}
}

func TestRequireTenantTagsTraceData(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var td *ctxutil.TraceData
	r := gin.New()
	r.Use(AttachTraceContext())
	r.Use(func(c *gin.Context) {
		c.Next()
		td = ctxutil.GetTraceData(c.Request.Context())
	})
	r.Use(NewTenantMiddleware(testutil.Logger(t), stubResolver{tenant: "acme"}, &stubAcquirer{}).RequireTenant())
	r.GET("/api/teams", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/teams", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=%d got=%d", http.StatusOK, rec.Code)
	}
	if td == nil || td.Tenant != "acme" {
		t.Fatalf("trace tenant: want=acme got=%+v", td)
	}
}
