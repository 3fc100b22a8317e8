package app

import (
	"gorm.io/gorm"

	"github.com/nahuelRo/first-plug-api/internal/data/repos"
	"github.com/nahuelRo/first-plug-api/internal/platform/logger"
)

// Repos are bound to the control database. Tenant repos come from a tenantdb.Scope.
type Repos struct {
	Tenant repos.TenantRepo
}

func wireRepos(control *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Tenant: repos.NewTenantRepo(control, log),
	}
}
