package app

import (
	"gorm.io/gorm"

	"github.com/nahuelRo/first-plug-api/internal/data/tenantdb"
	"github.com/nahuelRo/first-plug-api/internal/http"
	httpH "github.com/nahuelRo/first-plug-api/internal/http/handlers"
	httpMW "github.com/nahuelRo/first-plug-api/internal/http/middleware"
	"github.com/nahuelRo/first-plug-api/internal/observability"
	"github.com/nahuelRo/first-plug-api/internal/platform/logger"
)

type Middleware struct {
	Tenant *httpMW.TenantMiddleware
}

type Handlers struct {
	Health  *httpH.HealthHandler
	Product *httpH.ProductHandler
	Member  *httpH.MemberHandler
	Team    *httpH.TeamHandler
}

func wireMiddleware(log *logger.Logger, services Services, router *tenantdb.Router) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Tenant: httpMW.NewTenantMiddleware(log, services.Resolver, router),
	}
}

func wireHandlers(log *logger.Logger, control *gorm.DB) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:  httpH.NewHealthHandler(control),
		Product: httpH.NewProductHandler(log),
		Member:  httpH.NewMemberHandler(log),
		Team:    httpH.NewTeamHandler(log),
	}
}

func wireServer(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) *http.Server {
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return http.NewServer(http.RouterConfig{
		Log:              log,
		Metrics:          metrics,
		ServiceName:      serviceName,
		CORSOrigins:      cfg.CORSOrigins,
		TenantMiddleware: middleware.Tenant,
		ProductHandler:   handlers.Product,
		MemberHandler:    handlers.Member,
		TeamHandler:      handlers.Team,
		HealthHandler:    handlers.Health,
	})
}
