package middleware

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/nahuelRo/first-plug-api/internal/data/tenantdb"
	"github.com/nahuelRo/first-plug-api/internal/http/response"
	"github.com/nahuelRo/first-plug-api/internal/platform/ctxutil"
	"github.com/nahuelRo/first-plug-api/internal/platform/logger"
	"github.com/nahuelRo/first-plug-api/internal/services"
)

// ScopeAcquirer hands out tenant-bound storage scopes.
type ScopeAcquirer interface {
	Acquire(ctx context.Context, tenantName string) (*tenantdb.Scope, error)
}

type TenantMiddleware struct {
	log      *logger.Logger
	resolver services.TenantResolver
	router   ScopeAcquirer
}

func NewTenantMiddleware(log *logger.Logger, resolver services.TenantResolver, router ScopeAcquirer) *TenantMiddleware {
	return &TenantMiddleware{
		log:      log.With("middleware", "TenantMiddleware"),
		resolver: resolver,
		router:   router,
	}
}

// RequireTenant resolves the caller's tenant and binds its storage scope for the
// rest of the chain. The scope is released once the handler returns.
func (tm *TenantMiddleware) RequireTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, td, err := tm.resolver.Resolve(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			if services.IsAuthFailure(err) {
				tm.log.Debug("Tenant resolution rejected", "error", err)
				response.RespondUnauthorized(c)
				return
			}
			response.RespondDomainError(c, tm.log, err)
			return
		}

		scope, err := tm.router.Acquire(ctx, td.TenantName)
		if err != nil {
			if errors.Is(err, tenantdb.ErrInvalidTenantName) {
				tm.log.Debug("Tenant name not routable", "tenant", td.TenantName)
				response.RespondUnauthorized(c)
				return
			}
			response.RespondDomainError(c, tm.log, err)
			return
		}
		defer scope.Release()

		ctxutil.SetTraceTenant(ctx, td.TenantName)
		c.Request = c.Request.WithContext(tenantdb.WithScope(ctx, scope))
		c.Set("tenant", td.TenantName)
		c.Next()
	}
}
