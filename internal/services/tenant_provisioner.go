package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/nahuelRo/first-plug-api/internal/data/repos"
	"github.com/nahuelRo/first-plug-api/internal/data/tenantdb"
	types "github.com/nahuelRo/first-plug-api/internal/domain"
	"github.com/nahuelRo/first-plug-api/internal/platform/apierr"
	"github.com/nahuelRo/first-plug-api/internal/platform/dbctx"
	"github.com/nahuelRo/first-plug-api/internal/platform/logger"
)

var ErrTenantExists = errors.New("tenant already exists")

// ScopeAcquirer is the part of the storage router the provisioner needs.
type ScopeAcquirer interface {
	Acquire(ctx context.Context, tenantName string) (*tenantdb.Scope, error)
}

type ProvisionTenantInput struct {
	TenantName string
	Name       string
	Email      string
	Password   string
}

type TenantProvisioner interface {
	Provision(ctx context.Context, in ProvisionTenantInput) (*types.Tenant, error)
}

type tenantProvisioner struct {
	tenants repos.TenantRepo
	router  ScopeAcquirer
	cost    int
	log     *logger.Logger
}

func NewTenantProvisioner(tenants repos.TenantRepo, router ScopeAcquirer, log *logger.Logger) TenantProvisioner {
	return &tenantProvisioner{
		tenants: tenants,
		router:  router,
		cost:    bcrypt.DefaultCost,
		log:     log.With("service", "TenantProvisioner"),
	}
}

// Provision registers a tenant and opens its database so the first request does not pay for migration.
func (p *tenantProvisioner) Provision(ctx context.Context, in ProvisionTenantInput) (*types.Tenant, error) {
	name := strings.TrimSpace(in.TenantName)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if name == "" || email == "" || in.Password == "" {
		return nil, apierr.Validation(fmt.Errorf("tenant name, email and password are required"))
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apierr.Validation(fmt.Errorf("invalid email %q", in.Email))
	}

	dbc := dbctx.Context{Ctx: ctx}
	if exists, err := p.tenants.ExistsByTenantName(dbc, name); err != nil {
		return nil, err
	} else if exists {
		return nil, apierr.Conflict(apierr.CodeTenantExists, ErrTenantExists)
	}
	if exists, err := p.tenants.ExistsByEmail(dbc, email); err != nil {
		return nil, err
	} else if exists {
		return nil, apierr.Conflict(apierr.CodeTenantExists, fmt.Errorf("%w: email in use", ErrTenantExists))
	}

	// reject names the router cannot map before the record exists
	scope, err := p.router.Acquire(ctx, name)
	if err != nil {
		if errors.Is(err, tenantdb.ErrInvalidTenantName) {
			return nil, apierr.Validation(err)
		}
		return nil, fmt.Errorf("open tenant database: %w", err)
	}
	defer scope.Release()

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), p.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	row, err := p.tenants.Create(dbc, &types.Tenant{
		TenantName: name,
		Name:       strings.TrimSpace(in.Name),
		Email:      email,
		Password:   string(hash),
	})
	if err != nil {
		return nil, err
	}
	p.log.Info("Provisioned tenant", "tenant", name, "database", scope.DBName)
	return row, nil
}
