package aggregates

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nahuelRo/first-plug-api/internal/data/repos"
	types "github.com/nahuelRo/first-plug-api/internal/domain"
	domainagg "github.com/nahuelRo/first-plug-api/internal/domain/aggregates"
	"github.com/nahuelRo/first-plug-api/internal/domain/inventory"
	"github.com/nahuelRo/first-plug-api/internal/platform/dbctx"
)

type TeamLifecycleDeps struct {
	Base    BaseDeps
	Members repos.MemberRepo
	Teams   repos.TeamRepo
}

type teamLifecycleAggregate struct {
	deps TeamLifecycleDeps
}

var _ domainagg.TeamLifecycleAggregate = (*teamLifecycleAggregate)(nil)

func NewTeamLifecycleAggregate(deps TeamLifecycleDeps) domainagg.TeamLifecycleAggregate {
	deps.Base = deps.Base.withDefaults()
	return &teamLifecycleAggregate{deps: deps}
}

func (a *teamLifecycleAggregate) Contract() domainagg.Contract {
	return domainagg.TeamLifecycleContract
}

func (a *teamLifecycleAggregate) CreateTeam(ctx context.Context, in domainagg.CreateTeamInput) (*types.Team, error) {
	const op = "Inventory.Team.Create"
	name := inventory.TitleCase(in.Name)
	if name == "" {
		return nil, validation(op, "team name is required")
	}
	team := &types.Team{ID: uuid.New(), Name: name, Color: strings.TrimSpace(in.Color)}
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		existing, err := a.deps.Teams.GetByName(dbc, name)
		if err != nil {
			return err
		}
		if existing != nil {
			return validation(op, fmt.Sprintf("team %q already exists", name))
		}
		_, err = a.deps.Teams.Create(dbc, []*types.Team{team})
		return err
	})
	if err != nil {
		return nil, err
	}
	return team, nil
}

func (a *teamLifecycleAggregate) UpdateTeam(ctx context.Context, id uuid.UUID, patch domainagg.TeamPatch) (*types.Team, error) {
	const op = "Inventory.Team.Update"
	var out *types.Team
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		team, err := a.deps.Teams.GetByID(dbc, id)
		if err != nil {
			return err
		}
		if team == nil {
			return notFound(op, fmt.Sprintf("team %s not found", id))
		}
		if patch.Name != nil {
			name := inventory.TitleCase(*patch.Name)
			if name == "" {
				return validation(op, "team name is required")
			}
			if name != team.Name {
				other, err := a.deps.Teams.GetByName(dbc, name)
				if err != nil {
					return err
				}
				if other != nil && other.ID != team.ID {
					return validation(op, fmt.Sprintf("another team is already named %q", name))
				}
			}
			team.Name = name
		}
		if patch.Color != nil {
			team.Color = strings.TrimSpace(*patch.Color)
		}
		now := a.deps.Base.now()
		ok, err := a.deps.Teams.Update(dbc, team, now)
		if err != nil {
			return err
		}
		if err := RequireCASSuccess(ok, fmt.Sprintf("team %s deleted concurrently", id)); err != nil {
			return err
		}
		team.UpdatedAt = now
		out = team
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (a *teamLifecycleAggregate) DeleteTeam(ctx context.Context, id uuid.UUID) error {
	const op = "Inventory.Team.Delete"
	return executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		team, err := a.deps.Teams.GetByID(dbc, id)
		if err != nil {
			return err
		}
		if team == nil {
			return notFound(op, fmt.Sprintf("team %s not found", id))
		}
		n, err := a.deps.Members.CountByTeam(dbc, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return invalidTransition(op, fmt.Sprintf("team %q still has %d members", team.Name, n))
		}
		ok, err := a.deps.Teams.Delete(dbc, id)
		if err != nil {
			return err
		}
		return RequireCASSuccess(ok, fmt.Sprintf("team %s deleted concurrently", id))
	})
}

func (a *teamLifecycleAggregate) GetTeam(ctx context.Context, id uuid.UUID) (*types.Team, error) {
	const op = "Inventory.Team.Get"
	var out *types.Team
	err := executeRead(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		team, err := a.deps.Teams.GetByID(dbc, id)
		if err != nil {
			return err
		}
		if team == nil {
			return notFound(op, fmt.Sprintf("team %s not found", id))
		}
		out = team
		return nil
	})
	return out, err
}

func (a *teamLifecycleAggregate) ListTeams(ctx context.Context) ([]*types.Team, error) {
	var out []*types.Team
	err := executeRead(ctx, a.deps.Base, "Inventory.Team.List", func(dbc dbctx.Context) error {
		rows, err := a.deps.Teams.List(dbc)
		out = rows
		return err
	})
	return out, err
}
