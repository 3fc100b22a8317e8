package repos

import (
	"github.com/nahuelRo/first-plug-api/internal/data/repos/inventory"
	"github.com/nahuelRo/first-plug-api/internal/data/repos/tenant"
	"github.com/nahuelRo/first-plug-api/internal/platform/logger"
	"gorm.io/gorm"
)

type AssetRepo = inventory.AssetRepo
type MemberRepo = inventory.MemberRepo
type TeamRepo = inventory.TeamRepo

type TenantRepo = tenant.TenantRepo

// Inventory is the set of accessors bound to one tenant database.
type Inventory struct {
	Assets  AssetRepo
	Members MemberRepo
	Teams   TeamRepo
}

func NewInventory(db *gorm.DB, log *logger.Logger) Inventory {
	return Inventory{
		Assets:  inventory.NewAssetRepo(db, log),
		Members: inventory.NewMemberRepo(db, log),
		Teams:   inventory.NewTeamRepo(db, log),
	}
}

func NewTenantRepo(db *gorm.DB, log *logger.Logger) TenantRepo {
	return tenant.NewTenantRepo(db, log)
}
