package aggregates

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/nahuelRo/first-plug-api/internal/data/repos"
	types "github.com/nahuelRo/first-plug-api/internal/domain"
	domainagg "github.com/nahuelRo/first-plug-api/internal/domain/aggregates"
	"github.com/nahuelRo/first-plug-api/internal/domain/inventory"
	"github.com/nahuelRo/first-plug-api/internal/platform/dbctx"
)

type MemberLifecycleDeps struct {
	Base    BaseDeps
	Assets  repos.AssetRepo
	Members repos.MemberRepo
	Teams   repos.TeamRepo
	Store   AssetLocationStore
}

type memberLifecycleAggregate struct {
	deps MemberLifecycleDeps
}

var _ domainagg.MemberLifecycleAggregate = (*memberLifecycleAggregate)(nil)

func NewMemberLifecycleAggregate(deps MemberLifecycleDeps) domainagg.MemberLifecycleAggregate {
	deps.Base = deps.Base.withDefaults()
	if deps.Store == nil {
		deps.Store = NewAssetLocationStore(deps.Assets, deps.Members, deps.Base.CASGuard, deps.Base.Clock)
	}
	return &memberLifecycleAggregate{deps: deps}
}

func (a *memberLifecycleAggregate) Contract() domainagg.Contract {
	return domainagg.MemberLifecycleContract
}

func (a *memberLifecycleAggregate) CreateMember(ctx context.Context, in domainagg.CreateMemberInput) (*types.Member, error) {
	out, err := a.bulkCreate(ctx, "Inventory.Member.Create", []domainagg.CreateMemberInput{in})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (a *memberLifecycleAggregate) BulkCreateMembers(ctx context.Context, in []domainagg.CreateMemberInput) ([]*types.Member, error) {
	return a.bulkCreate(ctx, "Inventory.Member.BulkCreate", in)
}

func (a *memberLifecycleAggregate) bulkCreate(ctx context.Context, op string, in []domainagg.CreateMemberInput) ([]*types.Member, error) {
	if len(in) == 0 {
		return nil, validation(op, "at least one member is required")
	}
	rows := make([]*types.Member, 0, len(in))
	emails := make([]string, 0, len(in))
	seen := map[string]struct{}{}
	for i, item := range in {
		m := memberFromInput(item)
		if m.FirstName == "" || m.LastName == "" {
			return nil, validation(op, fmt.Sprintf("member %d: first and last name are required", i))
		}
		if _, err := mail.ParseAddress(m.Email); err != nil {
			return nil, validation(op, fmt.Sprintf("member %d: invalid email %q", i, m.Email))
		}
		if _, dup := seen[m.Email]; dup {
			return nil, validation(op, fmt.Sprintf("email %s repeated in request", m.Email))
		}
		seen[m.Email] = struct{}{}
		emails = append(emails, m.Email)
		rows = append(rows, m)
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		taken, err := a.deps.Members.ExistingEmails(dbc, emails)
		if err != nil {
			return err
		}
		if len(taken) > 0 {
			return validation(op, "email already registered: "+strings.Join(taken, ", "))
		}
		if err := a.attachTeams(dbc, in, rows); err != nil {
			return err
		}
		if _, err := a.deps.Members.Create(dbc, rows); err != nil {
			return err
		}
		for _, m := range rows {
			if err := a.absorbPending(dbc, m); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// attachTeams resolves team names, creating the ones that do not exist yet.
func (a *memberLifecycleAggregate) attachTeams(dbc dbctx.Context, in []domainagg.CreateMemberInput, rows []*types.Member) error {
	names := []string{}
	seen := map[string]struct{}{}
	for _, item := range in {
		name := inventory.TitleCase(item.Team)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil
	}
	existing, err := a.deps.Teams.GetByNames(dbc, names)
	if err != nil {
		return err
	}
	byName := map[string]*types.Team{}
	for _, t := range existing {
		byName[t.Name] = t
	}
	missing := []*types.Team{}
	for _, name := range names {
		if _, ok := byName[name]; !ok {
			t := &types.Team{ID: uuid.New(), Name: name}
			missing = append(missing, t)
			byName[name] = t
		}
	}
	if _, err := a.deps.Teams.Create(dbc, missing); err != nil {
		return err
	}
	for i, item := range in {
		if t, ok := byName[inventory.TitleCase(item.Team)]; ok {
			id := t.ID
			rows[i].TeamID = &id
			rows[i].Team = t
		}
	}
	return nil
}

// absorbPending moves pool assets that already named m as holder into m's list.
func (a *memberLifecycleAggregate) absorbPending(dbc dbctx.Context, m *types.Member) error {
	pending, err := a.deps.Assets.ListPendingForHolder(dbc, m.Email)
	if err != nil {
		return err
	}
	for _, row := range pending {
		if err := a.deps.Store.RemoveFromPool(dbc, row); err != nil {
			return err
		}
		next := row.Clone()
		next.AssignedEmail = m.Email
		next.AssignedMember = m.FullName()
		next.Status = inventory.StatusDelivered
		if err := a.deps.Store.InsertIntoMember(dbc, m, next); err != nil {
			return err
		}
	}
	return nil
}

func (a *memberLifecycleAggregate) SoftDeleteMember(ctx context.Context, id uuid.UUID) (domainagg.SoftDeleteMemberResult, error) {
	const op = "Inventory.Member.SoftDelete"
	out := domainagg.SoftDeleteMemberResult{MemberID: id}
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		m, err := a.deps.Members.GetByID(dbc, id)
		if err != nil {
			return err
		}
		if m == nil {
			return notFound(op, fmt.Sprintf("member %s not found", id))
		}
		if m.HasRecoverableAssets() {
			return invalidTransition(op, "member still holds recoverable assets; unassign them first")
		}
		now := a.deps.Base.now()
		held := append([]types.Asset{}, m.Assets...)
		ok, err := a.deps.Members.SoftDeleteByVersion(dbc, m.ID, m.Version, now)
		if err != nil {
			return err
		}
		if err := RequireCASSuccess(ok, fmt.Sprintf("member %s changed concurrently", m.ID)); err != nil {
			return err
		}
		for _, asset := range held {
			detached := asset.Clone()
			detached.ClearHolder()
			detached.LastAssigned = m.Email
			detached.MarkDeprecated(now)
			detached.Version = 0
			if err := a.deps.Store.InsertIntoPool(dbc, &detached); err != nil {
				return err
			}
			out.Detached = append(out.Detached, detached.ID)
		}
		return nil
	})
	if err != nil {
		return domainagg.SoftDeleteMemberResult{}, err
	}
	return out, nil
}

func (a *memberLifecycleAggregate) UpdateMember(ctx context.Context, id uuid.UUID, patch domainagg.MemberPatch) (*types.Member, error) {
	const op = "Inventory.Member.Update"
	var out *types.Member
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		m, err := a.deps.Members.GetByID(dbc, id)
		if err != nil {
			return err
		}
		if m == nil {
			return notFound(op, fmt.Sprintf("member %s not found", id))
		}
		prevEmail, prevName := m.Email, m.FullName()
		applyMemberPatch(m, patch)
		m.Normalize()
		if m.FirstName == "" || m.LastName == "" {
			return validation(op, "first and last name are required")
		}
		if m.Email != prevEmail {
			if _, err := mail.ParseAddress(m.Email); err != nil {
				return validation(op, fmt.Sprintf("invalid email %q", m.Email))
			}
			other, err := a.deps.Members.GetByEmail(dbc, m.Email)
			if err != nil {
				return err
			}
			if other != nil && other.ID != m.ID {
				return validation(op, "email already registered: "+m.Email)
			}
		}
		if patch.Team != nil {
			if err := a.setTeamByName(dbc, m, *patch.Team); err != nil {
				return err
			}
		}
		if m.Email != prevEmail || m.FullName() != prevName {
			m.Assets = rebindHolder(m)
		}
		if err := a.writeProfile(dbc, m); err != nil {
			return err
		}
		if m.Email != prevEmail {
			if err := a.absorbPending(dbc, m); err != nil {
				return err
			}
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (a *memberLifecycleAggregate) AssignTeam(ctx context.Context, memberID, teamID uuid.UUID) (*types.Member, error) {
	out, err := a.assignTeam(ctx, "Inventory.Member.AssignTeam", teamID, []uuid.UUID{memberID})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (a *memberLifecycleAggregate) AssignTeamMany(ctx context.Context, teamID uuid.UUID, memberIDs []uuid.UUID) ([]*types.Member, error) {
	return a.assignTeam(ctx, "Inventory.Member.AssignTeamMany", teamID, memberIDs)
}

func (a *memberLifecycleAggregate) assignTeam(ctx context.Context, op string, teamID uuid.UUID, memberIDs []uuid.UUID) ([]*types.Member, error) {
	if len(memberIDs) == 0 {
		return nil, validation(op, "at least one member is required")
	}
	var out []*types.Member
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		team, err := a.deps.Teams.GetByID(dbc, teamID)
		if err != nil {
			return err
		}
		if team == nil {
			return notFound(op, fmt.Sprintf("team %s not found", teamID))
		}
		seen := map[uuid.UUID]struct{}{}
		for _, id := range memberIDs {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			m, err := a.deps.Members.GetByID(dbc, id)
			if err != nil {
				return err
			}
			if m == nil {
				return notFound(op, fmt.Sprintf("member %s not found", id))
			}
			tid := team.ID
			m.TeamID = &tid
			m.Team = team
			if err := a.writeProfile(dbc, m); err != nil {
				return err
			}
			out = append(out, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (a *memberLifecycleAggregate) UnassignTeam(ctx context.Context, memberID uuid.UUID) (*types.Member, error) {
	const op = "Inventory.Member.UnassignTeam"
	var out *types.Member
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		m, err := a.deps.Members.GetByID(dbc, memberID)
		if err != nil {
			return err
		}
		if m == nil {
			return notFound(op, fmt.Sprintf("member %s not found", memberID))
		}
		if m.TeamID == nil {
			out = m
			return nil
		}
		m.TeamID = nil
		m.Team = nil
		if err := a.writeProfile(dbc, m); err != nil {
			return err
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// setTeamByName finds or creates the named team; an empty name clears it.
func (a *memberLifecycleAggregate) setTeamByName(dbc dbctx.Context, m *types.Member, raw string) error {
	name := inventory.TitleCase(raw)
	if name == "" {
		m.TeamID = nil
		m.Team = nil
		return nil
	}
	team, err := a.deps.Teams.GetByName(dbc, name)
	if err != nil {
		return err
	}
	if team == nil {
		team = &types.Team{ID: uuid.New(), Name: name}
		if _, err := a.deps.Teams.Create(dbc, []*types.Team{team}); err != nil {
			return err
		}
	}
	id := team.ID
	m.TeamID = &id
	m.Team = team
	return nil
}

func (a *memberLifecycleAggregate) writeProfile(dbc dbctx.Context, m *types.Member) error {
	now := a.deps.Base.now()
	ok, err := a.deps.Members.CASUpdateProfile(dbc, m, m.Version, now)
	if err != nil {
		return err
	}
	if err := RequireCASSuccess(ok, fmt.Sprintf("member %s changed concurrently", m.ID)); err != nil {
		return err
	}
	m.Version++
	m.UpdatedAt = now
	return nil
}

// rebindHolder points every held asset at the member's current email and name.
func rebindHolder(m *types.Member) datatypes.JSONSlice[types.Asset] {
	out := make(datatypes.JSONSlice[types.Asset], 0, len(m.Assets))
	for _, asset := range m.Assets {
		next := asset.Clone()
		next.AssignedEmail = m.Email
		next.AssignedMember = m.FullName()
		out = append(out, next)
	}
	return out
}

func applyMemberPatch(m *types.Member, p domainagg.MemberPatch) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&m.FirstName, p.FirstName)
	set(&m.LastName, p.LastName)
	set(&m.Email, p.Email)
	set(&m.Picture, p.Picture)
	set(&m.Position, p.Position)
	set(&m.PersonalEmail, p.PersonalEmail)
	set(&m.Phone, p.Phone)
	set(&m.City, p.City)
	set(&m.Country, p.Country)
	set(&m.ZipCode, p.ZipCode)
	set(&m.Address, p.Address)
	set(&m.Apartment, p.Apartment)
	set(&m.AdditionalInfo, p.AdditionalInfo)
	set(&m.StartDate, p.StartDate)
	set(&m.BirthDate, p.BirthDate)
	set(&m.DNI, p.DNI)
}

func (a *memberLifecycleAggregate) GetMember(ctx context.Context, id uuid.UUID) (*types.Member, error) {
	const op = "Inventory.Member.Get"
	var out *types.Member
	err := executeRead(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		m, err := a.deps.Members.GetByIDWithTeam(dbc, id)
		if err != nil {
			return err
		}
		if m == nil {
			return notFound(op, fmt.Sprintf("member %s not found", id))
		}
		out = m
		return nil
	})
	return out, err
}

func (a *memberLifecycleAggregate) ListMembers(ctx context.Context) ([]*types.Member, error) {
	var out []*types.Member
	err := executeRead(ctx, a.deps.Base, "Inventory.Member.List", func(dbc dbctx.Context) error {
		rows, err := a.deps.Members.ListActiveWithTeam(dbc)
		out = rows
		return err
	})
	return out, err
}

func memberFromInput(in domainagg.CreateMemberInput) *types.Member {
	m := &types.Member{
		ID:             uuid.New(),
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Email:          in.Email,
		Picture:        strings.TrimSpace(in.Picture),
		Position:       strings.TrimSpace(in.Position),
		PersonalEmail:  strings.TrimSpace(in.PersonalEmail),
		Phone:          strings.TrimSpace(in.Phone),
		City:           strings.TrimSpace(in.City),
		Country:        strings.TrimSpace(in.Country),
		ZipCode:        strings.TrimSpace(in.ZipCode),
		Address:        strings.TrimSpace(in.Address),
		Apartment:      strings.TrimSpace(in.Apartment),
		AdditionalInfo: strings.TrimSpace(in.AdditionalInfo),
		StartDate:      strings.TrimSpace(in.StartDate),
		BirthDate:      strings.TrimSpace(in.BirthDate),
		DNI:            strings.TrimSpace(in.DNI),
		Assets:         datatypes.JSONSlice[types.Asset]{},
	}
	m.Normalize()
	return m
}
