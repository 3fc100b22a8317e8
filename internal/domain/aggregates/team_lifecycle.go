package aggregates

import (
	"context"

	"github.com/google/uuid"
	"github.com/nahuelRo/first-plug-api/internal/domain/inventory"
)

var TeamLifecycleContract = Contract{
	Name:             "Inventory.TeamLifecycle",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "Team names are unique after normalization; a team referenced by an active member cannot be deleted.",
}

type TeamLifecycleAggregate interface {
	Aggregate

	CreateTeam(ctx context.Context, in CreateTeamInput) (*inventory.Team, error)
	UpdateTeam(ctx context.Context, id uuid.UUID, patch TeamPatch) (*inventory.Team, error)
	DeleteTeam(ctx context.Context, id uuid.UUID) error
	GetTeam(ctx context.Context, id uuid.UUID) (*inventory.Team, error)
	ListTeams(ctx context.Context) ([]*inventory.Team, error)
}

type CreateTeamInput struct {
	Name  string
	Color string
}

type TeamPatch struct {
	Name  *string
	Color *string
}
