package domain

import (
	"github.com/nahuelRo/first-plug-api/internal/domain/inventory"
	"github.com/nahuelRo/first-plug-api/internal/domain/tenant"
)

const (
	StatusAvailable  = inventory.StatusAvailable
	StatusDelivered  = inventory.StatusDelivered
	StatusDeprecated = inventory.StatusDeprecated
)

type Asset = inventory.Asset
type Attribute = inventory.Attribute
type Member = inventory.Member
type Team = inventory.Team
type Location = inventory.Location
type Located = inventory.Located

type Tenant = tenant.Tenant
