package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainagg "github.com/nahuelRo/first-plug-api/internal/domain/aggregates"
	"github.com/nahuelRo/first-plug-api/internal/observability"
	"github.com/nahuelRo/first-plug-api/internal/platform/apierr"
	"github.com/nahuelRo/first-plug-api/internal/platform/logger"
)

const (
	CodeUnauthorized        = "unauthorized"
	CodeTransactionConflict = "transaction_conflict"
	CodeInternal            = "internal"
)

var errInternal = errors.New("internal server error")

// RespondUnauthorized writes the single 401 body used for every authorization failure.
func RespondUnauthorized(c *gin.Context) {
	observability.Current().IncAPIError(CodeUnauthorized)
	RespondError(c, http.StatusUnauthorized, CodeUnauthorized, errors.New("unauthorized"))
}

// RespondDomainError maps aggregate and service errors onto HTTP. Server faults
// are logged with their cause and answered opaquely.
func RespondDomainError(c *gin.Context, log *logger.Logger, err error) {
	status, code, retryable := classify(err)
	observability.Current().IncAPIError(code)

	if status >= http.StatusInternalServerError {
		if log != nil {
			log.Error("Request failed", "path", c.FullPath(), "error", err)
		}
		RespondError(c, status, CodeInternal, errInternal)
		return
	}
	msg := err.Error()
	var aggErr *domainagg.Error
	if errors.As(err, &aggErr) && aggErr.Message != "" {
		msg = aggErr.Message
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: APIError{Message: msg, Code: code, Retryable: retryable},
	})
}

func classify(err error) (status int, code string, retryable bool) {
	if ae, ok := apierr.From(err); ok {
		code = ae.Code
		if code == "" {
			code = http.StatusText(ae.Status)
		}
		return ae.Status, code, false
	}
	switch domainagg.CodeOf(err) {
	case domainagg.CodeValidation:
		return http.StatusBadRequest, string(domainagg.CodeValidation), false
	case domainagg.CodeNotFound:
		return http.StatusNotFound, string(domainagg.CodeNotFound), false
	case domainagg.CodeMemberNotFound:
		return http.StatusNotFound, string(domainagg.CodeMemberNotFound), false
	case domainagg.CodeDuplicateSerial:
		return http.StatusConflict, string(domainagg.CodeDuplicateSerial), false
	case domainagg.CodeInvalidTransition:
		return http.StatusConflict, string(domainagg.CodeInvalidTransition), false
	case domainagg.CodeConflict, domainagg.CodeRetryable:
		return http.StatusConflict, CodeTransactionConflict, true
	default:
		return http.StatusInternalServerError, CodeInternal, false
	}
}
