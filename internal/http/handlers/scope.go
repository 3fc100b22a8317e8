package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nahuelRo/first-plug-api/internal/data/tenantdb"
	"github.com/nahuelRo/first-plug-api/internal/http/response"
	"github.com/nahuelRo/first-plug-api/internal/platform/logger"
)

var errNoScope = errors.New("tenant scope missing from request")

// requireScope returns the tenant scope bound by the tenant middleware.
func requireScope(c *gin.Context, log *logger.Logger) (*tenantdb.Scope, bool) {
	s := tenantdb.ScopeFrom(c.Request.Context())
	if s == nil {
		response.RespondDomainError(c, log, errNoScope)
		return nil, false
	}
	return s, true
}

func parseID(c *gin.Context, code string) (uuid.UUID, bool) {
	return parseParam(c, "id", code)
}

func parseParam(c *gin.Context, name, code string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil || id == uuid.Nil {
		if err == nil {
			err = fmt.Errorf("%s is required", name)
		}
		response.RespondError(c, http.StatusBadRequest, code, err)
		return uuid.Nil, false
	}
	return id, true
}
