package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/nahuelRo/first-plug-api/internal/platform/ctxutil"
)

func TestAttachTraceContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		name       string
		requestID  string
		keepClient bool
	}{
		{"client_id", "req-123", true},
		{"missing", "", false},
		{"too_long", strings.Repeat("a", maxClientID+1), false},
		{"control_chars", "req\r\nX-Injected: 1", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var seen *ctxutil.TraceData
			r := gin.New()
			r.Use(AttachTraceContext())
			r.GET("/", func(c *gin.Context) {
				seen = ctxutil.GetTraceData(c.Request.Context())
				ctxutil.SetTraceTenant(c.Request.Context(), "acme")
				c.Status(http.StatusOK)
			})
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.requestID != "" {
				req.Header.Set(headerRequestID, tc.requestID)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if seen == nil || seen.TraceID == "" || seen.RequestID == "" {
				t.Fatalf("trace data: got=%+v", seen)
			}
			if got := seen.RequestID == tc.requestID; got != tc.keepClient {
				t.Fatalf("request id: keep=%v got=%q", tc.keepClient, seen.RequestID)
			}
			if rec.Header().Get(headerRequestID) != seen.RequestID || rec.Header().Get(headerTraceID) != seen.TraceID {
				t.Fatalf("echoed headers: got=%v", rec.Header())
			}
			if seen.Tenant != "acme" {
				t.Fatalf("tenant: want=acme got=%q", seen.Tenant)
			}
		})
	}
}
