package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	domainagg "github.com/nahuelRo/first-plug-api/internal/domain/aggregates"
	"github.com/nahuelRo/first-plug-api/internal/platform/apierr"
)

func TestRespondDomainError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name      string
		err       error
		status    int
		code      string
		message   string
		retryable bool
	}{
		{"validation", domainagg.NewError(domainagg.CodeValidation, "op", "category is required", nil), http.StatusBadRequest, "validation", "category is required", false},
		{"not_found", domainagg.NewError(domainagg.CodeNotFound, "op", "asset not found", nil), http.StatusNotFound, "not_found", "asset not found", false},
		{"member_not_found", domainagg.NewError(domainagg.CodeMemberNotFound, "op", "no member bob@x.io", nil), http.StatusNotFound, "member_not_found", "no member bob@x.io", false},
		{"duplicate_serial", domainagg.NewError(domainagg.CodeDuplicateSerial, "op", "serial SN-1 in use", nil), http.StatusConflict, "duplicate_serial", "serial SN-1 in use", false},
		{"invalid_transition", domainagg.NewError(domainagg.CodeInvalidTransition, "op", "asset is deleted", nil), http.StatusConflict, "invalid_transition", "asset is deleted", false},
		{"conflict", domainagg.NewError(domainagg.CodeConflict, "op", "version changed", nil), http.StatusConflict, "transaction_conflict", "version changed", true},
		{"retryable", fmt.Errorf("wrapped: %w", domainagg.NewError(domainagg.CodeRetryable, "op", "database is locked", nil)), http.StatusConflict, "transaction_conflict", "database is locked", true},
		{"invariant", domainagg.NewError(domainagg.CodeInvariantViolation, "op", "asset in two places", nil), http.StatusInternalServerError, "internal", "internal server error", false},
		{"plain", errors.New("boom"), http.StatusInternalServerError, "internal", "internal server error", false},
		{"apierr", apierr.New(http.StatusConflict, "tenant_exists", errors.New("tenant already exists")), http.StatusConflict, "tenant_exists", "tenant already exists", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			RespondDomainError(c, nil, tc.err)

			if rec.Code != tc.status {
				t.Fatalf("status: want=%d got=%d", tc.status, rec.Code)
			}
			var body ErrorEnvelope
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error.Code != tc.code || body.Error.Message != tc.message || body.Error.Retryable != tc.retryable {
				t.Fatalf("body: want=%s/%q/%v got=%+v", tc.code, tc.message, tc.retryable, body.Error)
			}
		})
	}
}

func TestRespondUnauthorizedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	RespondUnauthorized(c)

	want := `{"error":{"message":"unauthorized","code":"unauthorized"}}`
	if rec.Code != http.StatusUnauthorized || rec.Body.String() != want {
		t.Fatalf("unauthorized: want=%d %s got=%d %s", http.StatusUnauthorized, want, rec.Code, rec.Body.String())
	}
}
