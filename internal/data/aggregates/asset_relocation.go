package aggregates

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/nahuelRo/first-plug-api/internal/data/repos"
	types "github.com/nahuelRo/first-plug-api/internal/domain"
	domainagg "github.com/nahuelRo/first-plug-api/internal/domain/aggregates"
	"github.com/nahuelRo/first-plug-api/internal/domain/inventory"
	"github.com/nahuelRo/first-plug-api/internal/platform/dbctx"
)

type AssetRelocationDeps struct {
	Base    BaseDeps
	Assets  repos.AssetRepo
	Members repos.MemberRepo
	Store   AssetLocationStore
	Catalog *inventory.Catalog
}

type assetRelocationAggregate struct {
	deps AssetRelocationDeps
}

var _ domainagg.AssetRelocationAggregate = (*assetRelocationAggregate)(nil)

func NewAssetRelocationAggregate(deps AssetRelocationDeps) domainagg.AssetRelocationAggregate {
	deps.Base = deps.Base.withDefaults()
	if deps.Store == nil {
		deps.Store = NewAssetLocationStore(deps.Assets, deps.Members, deps.Base.CASGuard, deps.Base.Clock)
	}
	if deps.Catalog == nil {
		deps.Catalog = inventory.DefaultCatalog()
	}
	return &assetRelocationAggregate{deps: deps}
}

func (a *assetRelocationAggregate) Contract() domainagg.Contract {
	return domainagg.AssetRelocationContract
}

func (a *assetRelocationAggregate) Create(ctx context.Context, in domainagg.CreateAssetInput) (domainagg.AssetResult, error) {
	const op = "Inventory.Asset.Create"
	var out domainagg.AssetResult
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		res, err := a.create(dbc, op, in, map[string]*types.Member{})
		if err != nil {
			return err
		}
		out = res
		return nil
	})
	if err != nil {
		return domainagg.AssetResult{}, err
	}
	return out, nil
}

func (a *assetRelocationAggregate) CreateMany(ctx context.Context, in []domainagg.CreateAssetInput) ([]domainagg.AssetResult, error) {
	const op = "Inventory.Asset.CreateMany"
	if len(in) == 0 {
		return nil, validation(op, "at least one asset is required")
	}
	seen := map[string]int{}
	for i, item := range in {
		serial := strings.TrimSpace(item.SerialNumber)
		if serial == "" {
			continue
		}
		if j, dup := seen[serial]; dup {
			return nil, domainagg.NewError(domainagg.CodeDuplicateSerial, op,
				fmt.Sprintf("serial number %q repeated at items %d and %d", serial, j, i), nil)
		}
		seen[serial] = i
	}

	out := make([]domainagg.AssetResult, 0, len(in))
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		// members touched earlier in the batch carry their bumped version
		holders := map[string]*types.Member{}
		for _, item := range in {
			res, err := a.create(dbc, op, item, holders)
			if err != nil {
				return err
			}
			out = append(out, res)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (a *assetRelocationAggregate) create(dbc dbctx.Context, op string, in domainagg.CreateAssetInput, holders map[string]*types.Member) (domainagg.AssetResult, error) {
	asset := types.Asset{
		ID:              uuid.New(),
		Name:            in.Name,
		Category:        in.Category,
		Attributes:      datatypes.JSONSlice[types.Attribute](append([]types.Attribute{}, in.Attributes...)),
		Status:          strings.TrimSpace(in.Status),
		SerialNumber:    in.SerialNumber,
		AssignedEmail:   in.AssignedEmail,
		AcquisitionDate: strings.TrimSpace(in.AcquisitionDate),
		Location:        strings.TrimSpace(in.Location),
	}
	if err := a.validate(op, &asset); err != nil {
		return domainagg.AssetResult{}, err
	}
	now := a.deps.Base.now()
	asset.CreatedAt, asset.UpdatedAt = now, now
	if err := a.requireUniqueSerial(dbc, op, asset.SerialNumber, uuid.Nil); err != nil {
		return domainagg.AssetResult{}, err
	}

	holder, err := a.resolveHolder(dbc, asset.HolderEmail(), holders)
	if err != nil {
		return domainagg.AssetResult{}, err
	}
	if holder != nil {
		if asset.Status == "" {
			asset.Status = inventory.StatusDelivered
		}
		asset.AssignedEmail = holder.Email
		asset.AssignedMember = holder.FullName()
		if err := a.deps.Store.InsertIntoMember(dbc, holder, asset); err != nil {
			return domainagg.AssetResult{}, err
		}
		return domainagg.AssetResult{Asset: asset, Location: inventory.AssignedTo(holder.ID)}, nil
	}

	// a holder that does not resolve yet stays on the pool row as pending
	if asset.Status == "" {
		asset.Status = inventory.StatusAvailable
	}
	if err := a.deps.Store.InsertIntoPool(dbc, &asset); err != nil {
		return domainagg.AssetResult{}, err
	}
	return domainagg.AssetResult{Asset: asset, Location: inventory.Pool()}, nil
}

func (a *assetRelocationAggregate) Update(ctx context.Context, id uuid.UUID, patch domainagg.AssetPatch) (domainagg.AssetResult, error) {
	return a.update(ctx, "Inventory.Asset.Update", id, patch)
}

func (a *assetRelocationAggregate) Reassign(ctx context.Context, id uuid.UUID, patch domainagg.AssetPatch) (domainagg.AssetResult, error) {
	const op = "Inventory.Asset.Reassign"
	if patch.AssignedEmail == nil {
		return domainagg.AssetResult{}, validation(op, "assigned_email is required")
	}
	target := strings.TrimSpace(*patch.AssignedEmail)
	if inventory.IsUnassigned(target) {
		target = ""
	}
	patch.AssignedEmail = &target
	return a.update(ctx, op, id, patch)
}

func (a *assetRelocationAggregate) update(ctx context.Context, op string, id uuid.UUID, patch domainagg.AssetPatch) (domainagg.AssetResult, error) {
	if id == uuid.Nil {
		return domainagg.AssetResult{}, validation(op, "asset id is required")
	}
	var out domainagg.AssetResult
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		loc, err := a.deps.Store.Locate(dbc, id)
		if err != nil {
			return err
		}
		if loc == nil {
			return notFound(op, fmt.Sprintf("asset %s not found", id))
		}
		switch loc.Location.Kind {
		case inventory.LocationDeleted:
			return invalidTransition(op, "asset is deleted")
		case inventory.LocationPool, inventory.LocationAssigned:
		default:
			return InvariantError(fmt.Sprintf("asset %s has unknown location %s", id, loc.Location))
		}

		next := loc.Asset.Clone()
		applyPatch(&next, patch)
		if err := a.validate(op, &next); err != nil {
			return err
		}
		if next.SerialNumber != loc.Asset.SerialNumber {
			if err := a.requireUniqueSerial(dbc, op, next.SerialNumber, id); err != nil {
				return err
			}
		}

		if patch.AssignedEmail == nil || a.sameHolder(loc, *patch.AssignedEmail) {
			out, err = a.updateInPlace(dbc, loc, next)
			return err
		}
		if inventory.IsUnassigned(*patch.AssignedEmail) {
			out, err = a.unassign(dbc, loc, next, patch.Status != nil)
			return err
		}

		target, err := a.deps.Members.FindByEmailOrID(dbc, *patch.AssignedEmail)
		if err != nil {
			return err
		}
		if target == nil {
			return domainagg.NewError(domainagg.CodeMemberNotFound, op,
				fmt.Sprintf("member %q not found", strings.TrimSpace(*patch.AssignedEmail)), nil)
		}
		if loc.Location.Kind == inventory.LocationAssigned && loc.Member.ID == target.ID {
			out, err = a.updateInPlace(dbc, loc, next)
			return err
		}
		out, err = a.moveToMember(dbc, loc, next, target, patch.Status != nil)
		return err
	})
	if err != nil {
		return domainagg.AssetResult{}, err
	}
	return out, nil
}

func (a *assetRelocationAggregate) SoftDelete(ctx context.Context, id uuid.UUID) (domainagg.AssetResult, error) {
	const op = "Inventory.Asset.SoftDelete"
	if id == uuid.Nil {
		return domainagg.AssetResult{}, validation(op, "asset id is required")
	}
	var out domainagg.AssetResult
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		loc, err := a.deps.Store.Locate(dbc, id)
		if err != nil {
			return err
		}
		if loc == nil {
			return notFound(op, fmt.Sprintf("asset %s not found", id))
		}
		now := a.deps.Base.now()
		next := loc.Asset.Clone()
		switch loc.Location.Kind {
		case inventory.LocationDeleted:
			return invalidTransition(op, "asset is already deleted")
		case inventory.LocationPool:
			next.MarkDeprecated(now)
			if err := a.deps.Store.UpdateInPool(dbc, &next); err != nil {
				return err
			}
		case inventory.LocationAssigned:
			if _, err := a.deps.Store.RemoveFromMember(dbc, loc.Member, id); err != nil {
				return err
			}
			next.ClearHolder()
			next.LastAssigned = loc.Member.Email
			next.MarkDeprecated(now)
			next.Version = 0
			if err := a.deps.Store.InsertIntoPool(dbc, &next); err != nil {
				return err
			}
		default:
			return InvariantError(fmt.Sprintf("asset %s has unknown location %s", id, loc.Location))
		}
		out = domainagg.AssetResult{Asset: next, Location: inventory.Deleted()}
		return nil
	})
	if err != nil {
		return domainagg.AssetResult{}, err
	}
	return out, nil
}

func (a *assetRelocationAggregate) FindByID(ctx context.Context, id uuid.UUID) (domainagg.AssetResult, error) {
	const op = "Inventory.Asset.FindByID"
	var out domainagg.AssetResult
	err := executeRead(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		loc, err := a.deps.Store.Locate(dbc, id)
		if err != nil {
			return err
		}
		if loc == nil {
			return notFound(op, fmt.Sprintf("asset %s not found", id))
		}
		out = domainagg.AssetResult{Asset: loc.Asset, Location: loc.Location}
		return nil
	})
	if err != nil {
		return domainagg.AssetResult{}, err
	}
	return out, nil
}

func (a *assetRelocationAggregate) updateInPlace(dbc dbctx.Context, loc *types.Located, next types.Asset) (domainagg.AssetResult, error) {
	switch loc.Location.Kind {
	case inventory.LocationPool:
		if err := a.deps.Store.UpdateInPool(dbc, &next); err != nil {
			return domainagg.AssetResult{}, err
		}
	case inventory.LocationAssigned:
		if err := a.deps.Store.ReplaceInMember(dbc, loc.Member, next); err != nil {
			return domainagg.AssetResult{}, err
		}
	default:
		return domainagg.AssetResult{}, InvariantError("in-place update outside pool or member")
	}
	return domainagg.AssetResult{Asset: next, Location: loc.Location}, nil
}

func (a *assetRelocationAggregate) unassign(dbc dbctx.Context, loc *types.Located, next types.Asset, statusSet bool) (domainagg.AssetResult, error) {
	next.AssignedEmail = ""
	next.AssignedMember = ""
	switch loc.Location.Kind {
	case inventory.LocationPool:
		// a pending holder never held the asset, so last_assigned stays as is
		if err := a.deps.Store.UpdateInPool(dbc, &next); err != nil {
			return domainagg.AssetResult{}, err
		}
	case inventory.LocationAssigned:
		if _, err := a.deps.Store.RemoveFromMember(dbc, loc.Member, next.ID); err != nil {
			return domainagg.AssetResult{}, err
		}
		next.LastAssigned = loc.Member.Email
		if !statusSet {
			next.Status = inventory.StatusAvailable
		}
		next.Version = 0
		if err := a.deps.Store.InsertIntoPool(dbc, &next); err != nil {
			return domainagg.AssetResult{}, err
		}
	default:
		return domainagg.AssetResult{}, InvariantError("unassign outside pool or member")
	}
	return domainagg.AssetResult{Asset: next, Location: inventory.Pool()}, nil
}

func (a *assetRelocationAggregate) moveToMember(dbc dbctx.Context, loc *types.Located, next types.Asset, target *types.Member, statusSet bool) (domainagg.AssetResult, error) {
	switch loc.Location.Kind {
	case inventory.LocationPool:
		if err := a.deps.Store.RemoveFromPool(dbc, &loc.Asset); err != nil {
			return domainagg.AssetResult{}, err
		}
	case inventory.LocationAssigned:
		if _, err := a.deps.Store.RemoveFromMember(dbc, loc.Member, next.ID); err != nil {
			return domainagg.AssetResult{}, err
		}
		next.LastAssigned = loc.Member.Email
	default:
		return domainagg.AssetResult{}, InvariantError("move outside pool or member")
	}
	next.AssignedEmail = target.Email
	next.AssignedMember = target.FullName()
	if !statusSet {
		next.Status = inventory.StatusDelivered
	}
	if err := a.deps.Store.InsertIntoMember(dbc, target, next); err != nil {
		return domainagg.AssetResult{}, err
	}
	return domainagg.AssetResult{Asset: next, Location: inventory.AssignedTo(target.ID)}, nil
}

func (a *assetRelocationAggregate) sameHolder(loc *types.Located, identity string) bool {
	identity = strings.TrimSpace(identity)
	if inventory.IsUnassigned(identity) {
		return loc.Asset.HolderEmail() == ""
	}
	if strings.EqualFold(identity, loc.Asset.HolderEmail()) {
		return true
	}
	return loc.Member != nil && strings.EqualFold(identity, loc.Member.ID.String())
}

func (a *assetRelocationAggregate) resolveHolder(dbc dbctx.Context, identity string, cache map[string]*types.Member) (*types.Member, error) {
	if identity == "" {
		return nil, nil
	}
	if m, ok := cache[identity]; ok {
		return m, nil
	}
	m, err := a.deps.Members.FindByEmailOrID(dbc, identity)
	if err != nil {
		return nil, err
	}
	cache[identity] = m
	return m, nil
}

func (a *assetRelocationAggregate) requireUniqueSerial(dbc dbctx.Context, op, serial string, excludeID uuid.UUID) error {
	if serial == "" {
		return nil
	}
	clash, err := a.deps.Store.FindBySerial(dbc, serial, excludeID)
	if err != nil {
		return err
	}
	if clash != nil {
		return domainagg.NewError(domainagg.CodeDuplicateSerial, op,
			fmt.Sprintf("serial number %q is already in use", serial), nil)
	}
	return nil
}

func (a *assetRelocationAggregate) validate(op string, asset *types.Asset) error {
	if strings.TrimSpace(asset.Category) == "" {
		return validation(op, "category is required")
	}
	spec, ok := a.deps.Catalog.Lookup(asset.Category)
	if !ok {
		return validation(op, fmt.Sprintf("unknown category %q", asset.Category))
	}
	asset.Normalize(a.deps.Catalog)
	if spec.Name == inventory.CategoryMerchandising && asset.Name == "" {
		return validation(op, "name is required for Merchandising")
	}
	for _, attr := range asset.Attributes {
		if attr.Key == "" {
			return validation(op, "attribute key is required")
		}
	}
	if asset.Status == "" {
		return nil
	}
	if !inventory.IsValidStatus(asset.Status) {
		return validation(op, fmt.Sprintf("unknown status %q", asset.Status))
	}
	if asset.Status == inventory.StatusDeprecated {
		return validation(op, "status Deprecated is set by deleting the asset")
	}
	return nil
}

func applyPatch(asset *types.Asset, patch domainagg.AssetPatch) {
	if patch.Name != nil {
		asset.Name = *patch.Name
	}
	if patch.Category != nil {
		asset.Category = *patch.Category
	}
	if patch.Attributes != nil {
		asset.Attributes = datatypes.JSONSlice[types.Attribute](append([]types.Attribute{}, (*patch.Attributes)...))
	}
	if patch.Status != nil {
		asset.Status = strings.TrimSpace(*patch.Status)
	}
	if patch.SerialNumber != nil {
		asset.SerialNumber = *patch.SerialNumber
	}
	if patch.AcquisitionDate != nil {
		asset.AcquisitionDate = strings.TrimSpace(*patch.AcquisitionDate)
	}
	if patch.Location != nil {
		asset.Location = strings.TrimSpace(*patch.Location)
	}
}
