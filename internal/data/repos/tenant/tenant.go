package tenant

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	types "github.com/nahuelRo/first-plug-api/internal/domain"
	"github.com/nahuelRo/first-plug-api/internal/platform/dbctx"
	"github.com/nahuelRo/first-plug-api/internal/platform/logger"
)

// TenantRepo reads the control database tenant directory.
type TenantRepo interface {
	Create(dbc dbctx.Context, row *types.Tenant) (*types.Tenant, error)
	GetByTenantName(dbc dbctx.Context, tenantName string) (*types.Tenant, error)
	ExistsByTenantName(dbc dbctx.Context, tenantName string) (bool, error)
	ExistsByEmail(dbc dbctx.Context, email string) (bool, error)
}

type tenantRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTenantRepo(db *gorm.DB, baseLog *logger.Logger) TenantRepo {
	return &tenantRepo{db: db, log: baseLog.With("repo", "TenantRepo")}
}

func (r *tenantRepo) Create(dbc dbctx.Context, row *types.Tenant) (*types.Tenant, error) {
	if row == nil {
		return nil, nil
	}
	if err := dbc.DB(r.db).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *tenantRepo) GetByTenantName(dbc dbctx.Context, tenantName string) (*types.Tenant, error) {
	tenantName = strings.TrimSpace(tenantName)
	if tenantName == "" {
		return nil, nil
	}
	var row types.Tenant
	if err := dbc.DB(r.db).Where("tenant_name = ?", tenantName).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *tenantRepo) ExistsByTenantName(dbc dbctx.Context, tenantName string) (bool, error) {
	tenantName = strings.TrimSpace(tenantName)
	if tenantName == "" {
		return false, nil
	}
	var count int64
	if err := dbc.DB(r.db).
		Model(&types.Tenant{}).
		Where("tenant_name = ?", tenantName).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *tenantRepo) ExistsByEmail(dbc dbctx.Context, email string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false, nil
	}
	var count int64
	if err := dbc.DB(r.db).
		Model(&types.Tenant{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
