package aggregates

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nahuelRo/first-plug-api/internal/data/repos"
	types "github.com/nahuelRo/first-plug-api/internal/domain"
	"github.com/nahuelRo/first-plug-api/internal/domain/inventory"
	"github.com/nahuelRo/first-plug-api/internal/platform/dbctx"
)

// MemberAsset is an embedded asset together with the member holding it.
type MemberAsset struct {
	Member *types.Member
	Asset  types.Asset
}

// AssetLocationStore reads and writes an asset in either of its two storage regimes:
// a pool row or an element of a member's embedded list. Every method runs against the
// session carried by dbc so that a remove and the matching insert commit together.
type AssetLocationStore interface {
	FindInPool(dbc dbctx.Context, id uuid.UUID) (*types.Asset, error)
	FindAmongMembers(dbc dbctx.Context, id uuid.UUID) (*MemberAsset, error)
	FindBySerial(dbc dbctx.Context, serial string, excludeID uuid.UUID) (*types.Asset, error)
	Locate(dbc dbctx.Context, id uuid.UUID) (*types.Located, error)

	RemoveFromPool(dbc dbctx.Context, asset *types.Asset) error
	RemoveFromMember(dbc dbctx.Context, member *types.Member, assetID uuid.UUID) (types.Asset, error)
	InsertIntoPool(dbc dbctx.Context, asset *types.Asset) error
	InsertIntoMember(dbc dbctx.Context, member *types.Member, asset types.Asset) error
	UpdateInPool(dbc dbctx.Context, asset *types.Asset) error
	ReplaceInMember(dbc dbctx.Context, member *types.Member, asset types.Asset) error
}

type assetLocationStore struct {
	assets  repos.AssetRepo
	members repos.MemberRepo
	guard   CASGuard
	clock   func() time.Time
}

func NewAssetLocationStore(assets repos.AssetRepo, members repos.MemberRepo, guard CASGuard, clock func() time.Time) AssetLocationStore {
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &assetLocationStore{assets: assets, members: members, guard: guard, clock: clock}
}

// FindInPool includes soft-deleted rows.
func (s *assetLocationStore) FindInPool(dbc dbctx.Context, id uuid.UUID) (*types.Asset, error) {
	return s.assets.GetByID(dbc, id)
}

// FindAmongMembers scans every active member's list. There is no index on embedded ids.
func (s *assetLocationStore) FindAmongMembers(dbc dbctx.Context, id uuid.UUID) (*MemberAsset, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	members, err := s.members.ListActive(dbc)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		if i := m.IndexOfAsset(id); i >= 0 {
			return &MemberAsset{Member: m, Asset: m.Assets[i].Clone()}, nil
		}
	}
	return nil, nil
}

func (s *assetLocationStore) FindBySerial(dbc dbctx.Context, serial string, excludeID uuid.UUID) (*types.Asset, error) {
	serial = strings.TrimSpace(serial)
	if serial == "" {
		return nil, nil
	}
	if row, err := s.assets.GetActiveBySerial(dbc, serial, excludeID); err != nil || row != nil {
		return row, err
	}
	members, err := s.members.ListActive(dbc)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		for i := range m.Assets {
			a := m.Assets[i]
			if a.ID == excludeID || a.IsDeleted || a.SerialNumber != serial {
				continue
			}
			out := a.Clone()
			return &out, nil
		}
	}
	return nil, nil
}

// Locate returns nil when the id is in neither location.
func (s *assetLocationStore) Locate(dbc dbctx.Context, id uuid.UUID) (*types.Located, error) {
	row, err := s.FindInPool(dbc, id)
	if err != nil {
		return nil, err
	}
	if row != nil {
		loc := inventory.Pool()
		if row.IsDeleted {
			loc = inventory.Deleted()
		}
		return &types.Located{Asset: *row, Location: loc}, nil
	}
	held, err := s.FindAmongMembers(dbc, id)
	if err != nil || held == nil {
		return nil, err
	}
	return &types.Located{
		Asset:    held.Asset,
		Location: inventory.AssignedTo(held.Member.ID),
		Member:   held.Member,
	}, nil
}

func (s *assetLocationStore) RemoveFromPool(dbc dbctx.Context, asset *types.Asset) error {
	ok, err := s.assets.DeleteByVersion(dbc, asset.ID, asset.Version)
	if err != nil {
		return err
	}
	return RequireCASSuccess(ok, fmt.Sprintf("pool asset %s changed concurrently", asset.ID))
}

func (s *assetLocationStore) RemoveFromMember(dbc dbctx.Context, member *types.Member, assetID uuid.UUID) (types.Asset, error) {
	i := member.IndexOfAsset(assetID)
	if i < 0 {
		return types.Asset{}, InvariantError(fmt.Sprintf("asset %s is not held by member %s", assetID, member.ID))
	}
	removed := member.Assets[i].Clone()
	next := make([]types.Asset, 0, len(member.Assets)-1)
	next = append(next, member.Assets[:i]...)
	next = append(next, member.Assets[i+1:]...)
	if err := s.writeMember(dbc, member, next); err != nil {
		return types.Asset{}, err
	}
	return removed, nil
}

func (s *assetLocationStore) InsertIntoPool(dbc dbctx.Context, asset *types.Asset) error {
	held, err := s.FindAmongMembers(dbc, asset.ID)
	if err != nil {
		return err
	}
	if held != nil {
		return InvariantError(fmt.Sprintf("asset %s is still held by member %s", asset.ID, held.Member.ID))
	}
	now := s.clock()
	if asset.CreatedAt.IsZero() {
		asset.CreatedAt = now
	}
	asset.UpdatedAt = now
	_, err = s.assets.Create(dbc, []*types.Asset{asset})
	return err
}

func (s *assetLocationStore) InsertIntoMember(dbc dbctx.Context, member *types.Member, asset types.Asset) error {
	if member.IndexOfAsset(asset.ID) >= 0 {
		return InvariantError(fmt.Sprintf("member %s already holds asset %s", member.ID, asset.ID))
	}
	row, err := s.FindInPool(dbc, asset.ID)
	if err != nil {
		return err
	}
	if row != nil && !row.IsDeleted {
		return InvariantError(fmt.Sprintf("asset %s is still in the pool", asset.ID))
	}
	held, err := s.FindAmongMembers(dbc, asset.ID)
	if err != nil {
		return err
	}
	if held != nil && held.Member.ID != member.ID {
		return InvariantError(fmt.Sprintf("asset %s is held by member %s", asset.ID, held.Member.ID))
	}
	now := s.clock()
	if asset.CreatedAt.IsZero() {
		asset.CreatedAt = now
	}
	asset.UpdatedAt = now
	next := make([]types.Asset, 0, len(member.Assets)+1)
	next = append(next, member.Assets...)
	next = append(next, asset)
	return s.writeMember(dbc, member, next)
}

func (s *assetLocationStore) UpdateInPool(dbc dbctx.Context, asset *types.Asset) error {
	now := s.clock()
	ok, err := s.guard.UpdateByVersion(dbc, asset.TableName(), asset.ID, asset.Version, map[string]any{
		"name":             asset.Name,
		"category":         asset.Category,
		"attributes":       asset.Attributes,
		"status":           asset.Status,
		"recoverable":      asset.Recoverable,
		"serial_number":    asset.SerialNumber,
		"assigned_email":   asset.AssignedEmail,
		"assigned_member":  asset.AssignedMember,
		"last_assigned":    asset.LastAssigned,
		"acquisition_date": asset.AcquisitionDate,
		"location":         asset.Location,
		"is_deleted":       asset.IsDeleted,
		"deleted_at":       asset.DeletedAt,
		"updated_at":       now,
	})
	if err != nil {
		return err
	}
	if err := RequireCASSuccess(ok, fmt.Sprintf("pool asset %s changed concurrently", asset.ID)); err != nil {
		return err
	}
	asset.Version++
	asset.UpdatedAt = now
	return nil
}

func (s *assetLocationStore) ReplaceInMember(dbc dbctx.Context, member *types.Member, asset types.Asset) error {
	i := member.IndexOfAsset(asset.ID)
	if i < 0 {
		return InvariantError(fmt.Sprintf("asset %s is not held by member %s", asset.ID, member.ID))
	}
	asset.UpdatedAt = s.clock()
	next := make([]types.Asset, len(member.Assets))
	copy(next, member.Assets)
	next[i] = asset
	return s.writeMember(dbc, member, next)
}

// writeMember applies the new list under the member's version and mirrors it in memory on success.
func (s *assetLocationStore) writeMember(dbc dbctx.Context, member *types.Member, assets []types.Asset) error {
	now := s.clock()
	ok, err := s.members.CASUpdateAssets(dbc, member.ID, member.Version, assets, now)
	if err != nil {
		return err
	}
	if err := RequireCASSuccess(ok, fmt.Sprintf("member %s changed concurrently", member.ID)); err != nil {
		return err
	}
	member.Assets = assets
	member.Version++
	member.UpdatedAt = now
	return nil
}
