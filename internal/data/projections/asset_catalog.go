package projections

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/nahuelRo/first-plug-api/internal/data/repos"
	types "github.com/nahuelRo/first-plug-api/internal/domain"
	"github.com/nahuelRo/first-plug-api/internal/domain/inventory"
	"github.com/nahuelRo/first-plug-api/internal/platform/dbctx"
	"github.com/nahuelRo/first-plug-api/internal/platform/logger"
)

// CatalogGroup is one row of the grouped inventory table.
type CatalogGroup struct {
	Category   string        `json:"category"`
	Name       string        `json:"name,omitempty"`
	Attributes []string      `json:"attributes,omitempty"`
	Products   []types.Asset `json:"products"`
}

// AssetCatalogProjector builds read-only views over both asset locations.
type AssetCatalogProjector interface {
	TableGrouping(ctx context.Context) ([]CatalogGroup, error)
	GetAllProductsWithMembers(ctx context.Context) ([]types.Asset, error)
	ListAvailable(ctx context.Context) ([]types.Asset, error)
}

type assetCatalogProjector struct {
	assets  repos.AssetRepo
	members repos.MemberRepo
	catalog *inventory.Catalog
	log     *logger.Logger
}

func NewAssetCatalogProjector(assets repos.AssetRepo, members repos.MemberRepo, catalog *inventory.Catalog, baseLog *logger.Logger) AssetCatalogProjector {
	if catalog == nil {
		catalog = inventory.DefaultCatalog()
	}
	return &assetCatalogProjector{
		assets:  assets,
		members: members,
		catalog: catalog,
		log:     baseLog.With("projection", "AssetCatalog"),
	}
}

func (p *assetCatalogProjector) TableGrouping(ctx context.Context) ([]CatalogGroup, error) {
	var (
		pool    []*types.Asset
		members []*types.Member
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := p.assets.ListActive(dbctx.Context{Ctx: gctx})
		pool = rows
		return err
	})
	g.Go(func() error {
		rows, err := p.members.ListActive(dbctx.Context{Ctx: gctx})
		members = rows
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// discovery order: pool first, then members in stable order
	all := make([]types.Asset, 0, len(pool))
	for _, a := range pool {
		all = append(all, *a)
	}
	for _, m := range members {
		for _, a := range m.Assets {
			if !a.IsDeleted {
				all = append(all, a)
			}
		}
	}

	groups := []*CatalogGroup{}
	bySignature := map[string]*CatalogGroup{}
	for _, a := range all {
		a.Attributes = p.stripVolatile(a.Attributes)
		group := p.signature(a)
		key := group.Category + "\x00" + group.Name + "\x00" + strings.Join(group.Attributes, "\x1f")
		if existing, ok := bySignature[key]; ok {
			existing.Products = append(existing.Products, a)
			continue
		}
		group.Products = []types.Asset{a}
		bySignature[key] = group
		groups = append(groups, group)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return categoryLess(groups[i].Category, groups[j].Category)
	})
	out := make([]CatalogGroup, 0, len(groups))
	for _, grp := range groups {
		out = append(out, *grp)
	}
	p.log.Debug("table grouping built", "groups", len(out), "assets", len(all))
	return out, nil
}

func (p *assetCatalogProjector) GetAllProductsWithMembers(ctx context.Context) ([]types.Asset, error) {
	members, err := p.members.ListActive(dbctx.Context{Ctx: ctx})
	if err != nil {
		return nil, err
	}
	out := []types.Asset{}
	for _, m := range members {
		for _, a := range m.Assets {
			if !a.IsDeleted {
				out = append(out, a)
			}
		}
	}
	return out, nil
}

func (p *assetCatalogProjector) ListAvailable(ctx context.Context) ([]types.Asset, error) {
	rows, err := p.assets.ListActiveByStatus(dbctx.Context{Ctx: ctx}, inventory.StatusAvailable)
	if err != nil {
		return nil, err
	}
	out := make([]types.Asset, 0, len(rows))
	for _, a := range rows {
		out = append(out, *a)
	}
	return out, nil
}

func (p *assetCatalogProjector) stripVolatile(attrs []types.Attribute) []types.Attribute {
	out := make([]types.Attribute, 0, len(attrs))
	for _, attr := range attrs {
		if p.catalog.IsVolatileAttribute(attr.Key) {
			continue
		}
		out = append(out, attr)
	}
	return out
}

func (p *assetCatalogProjector) signature(a types.Asset) *CatalogGroup {
	if p.catalog.GroupsByName(a.Category) {
		return &CatalogGroup{Category: a.Category, Name: strings.ToLower(strings.TrimSpace(a.Name))}
	}
	values := make([]string, 0, len(a.Attributes))
	for _, attr := range a.Attributes {
		values = append(values, attr.Value)
	}
	sort.Strings(values)
	return &CatalogGroup{Category: a.Category, Attributes: values}
}

// categoryLess orders Computer first, then the rest alphabetically.
func categoryLess(a, b string) bool {
	if a == b {
		return false
	}
	if a == inventory.CategoryComputer {
		return true
	}
	if b == inventory.CategoryComputer {
		return false
	}
	return a < b
}
