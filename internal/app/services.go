package app

import (
	"github.com/nahuelRo/first-plug-api/internal/data/tenantdb"
	"github.com/nahuelRo/first-plug-api/internal/observability"
	"github.com/nahuelRo/first-plug-api/internal/platform/logger"
	"github.com/nahuelRo/first-plug-api/internal/services"
)

type Services struct {
	Verifier    services.CredentialVerifier
	Directory   services.TenantDirectory
	Resolver    services.TenantResolver
	Provisioner services.TenantProvisioner
}

func wireServices(log *logger.Logger, cfg Config, reposet Repos, clients Clients, router *tenantdb.Router, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")
	verifier := services.NewJWTVerifier(cfg.JWTSecretKey, cfg.JWTLeeway, log)
	directory := services.NewRepoTenantDirectory(reposet.Tenant)
	if clients.Redis != nil {
		directory = services.NewCachedTenantDirectory(directory, clients.Redis, cfg.TenantCacheTTL, metrics, log)
	}
	return Services{
		Verifier:    verifier,
		Directory:   directory,
		Resolver:    services.NewTenantResolver(verifier, directory, metrics, log),
		Provisioner: services.NewTenantProvisioner(reposet.Tenant, router, log),
	}
}
