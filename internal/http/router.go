package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/nahuelRo/first-plug-api/internal/http/handlers"
	httpMW "github.com/nahuelRo/first-plug-api/internal/http/middleware"
	"github.com/nahuelRo/first-plug-api/internal/observability"
	"github.com/nahuelRo/first-plug-api/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins string

	TenantMiddleware *httpMW.TenantMiddleware

	ProductHandler *httpH.ProductHandler
	MemberHandler  *httpH.MemberHandler
	TeamHandler    *httpH.TeamHandler
	HealthHandler  *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	if cfg.TenantMiddleware != nil {
		api.Use(cfg.TenantMiddleware.RequireTenant())
	}
	{
		// Products
		if cfg.ProductHandler != nil {
			api.POST("/products", cfg.ProductHandler.Create)
			api.POST("/products/bulkcreate", cfg.ProductHandler.BulkCreate)
			api.GET("/products/table", cfg.ProductHandler.TableGrouping)
			api.GET("/products/available", cfg.ProductHandler.ListAvailable)
			api.GET("/products/assigned", cfg.ProductHandler.ListAssigned)
			api.GET("/products/:id", cfg.ProductHandler.Get)
			api.PATCH("/products/:id", cfg.ProductHandler.Update)
			api.PATCH("/products/reassign/:id", cfg.ProductHandler.Reassign)
			api.DELETE("/products/:id", cfg.ProductHandler.SoftDelete)
		}

		// Members
		if cfg.MemberHandler != nil {
			api.POST("/members", cfg.MemberHandler.Create)
			api.POST("/members/bulkcreate", cfg.MemberHandler.BulkCreate)
			api.GET("/members", cfg.MemberHandler.List)
			api.GET("/members/:id", cfg.MemberHandler.Get)
			api.PATCH("/members/:id", cfg.MemberHandler.Update)
			api.DELETE("/members/:id", cfg.MemberHandler.SoftDelete)
		}

		// Teams
		if cfg.TeamHandler != nil {
			api.POST("/teams", cfg.TeamHandler.Create)
			api.GET("/teams", cfg.TeamHandler.List)
			api.GET("/teams/:id", cfg.TeamHandler.Get)
			api.PATCH("/teams/:id", cfg.TeamHandler.Update)
			api.PUT("/teams/change-members/:id", cfg.TeamHandler.ChangeMembers)
			api.PUT("/teams/:id/members/:memberId", cfg.TeamHandler.AssignMember)
			api.PUT("/teams/:id/change-member/:teamId", cfg.TeamHandler.ChangeMemberTeam)
			api.PUT("/teams/:id/unassign-member", cfg.TeamHandler.UnassignMember)
			api.DELETE("/teams/:id", cfg.TeamHandler.Delete)
		}
	}

	return r
}
