package aggregates

import (
	"context"

	"github.com/google/uuid"
	"github.com/nahuelRo/first-plug-api/internal/domain/inventory"
)

var MemberLifecycleContract = Contract{
	Name:             "Inventory.MemberLifecycle",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "Creates and updates members absorbing pending pool assets, moves members between teams and soft-deletes members detaching non-recoverable assets.",
}

// MemberLifecycleAggregate owns member creation and deletion.
type MemberLifecycleAggregate interface {
	Aggregate

	CreateMember(ctx context.Context, in CreateMemberInput) (*inventory.Member, error)
	BulkCreateMembers(ctx context.Context, in []CreateMemberInput) ([]*inventory.Member, error)
	SoftDeleteMember(ctx context.Context, id uuid.UUID) (SoftDeleteMemberResult, error)

	// UpdateMember patches profile fields and the team. The embedded list is never replaced:
	// held assets only follow a new email or name, in the same member write.
	UpdateMember(ctx context.Context, id uuid.UUID, patch MemberPatch) (*inventory.Member, error)

	// AssignTeam moves a member into an existing team.
	AssignTeam(ctx context.Context, memberID, teamID uuid.UUID) (*inventory.Member, error)
	// AssignTeamMany moves several members into one team in a single transaction.
	AssignTeamMany(ctx context.Context, teamID uuid.UUID, memberIDs []uuid.UUID) ([]*inventory.Member, error)
	// UnassignTeam leaves the member without a team.
	UnassignTeam(ctx context.Context, memberID uuid.UUID) (*inventory.Member, error)

	GetMember(ctx context.Context, id uuid.UUID) (*inventory.Member, error)
	ListMembers(ctx context.Context) ([]*inventory.Member, error)
}

type CreateMemberInput struct {
	FirstName      string
	LastName       string
	Email          string
	Team           string
	Picture        string
	Position       string
	PersonalEmail  string
	Phone          string
	City           string
	Country        string
	ZipCode        string
	Address        string
	Apartment      string
	AdditionalInfo string
	StartDate      string
	BirthDate      string
	DNI            string
}

type SoftDeleteMemberResult struct {
	MemberID uuid.UUID
	Detached []uuid.UUID
}

// MemberPatch carries optional profile fields; nil means "leave unchanged".
// Team is a team name: found or created, "" clears it.
type MemberPatch struct {
	FirstName      *string
	LastName       *string
	Email          *string
	Team           *string
	Picture        *string
	Position       *string
	PersonalEmail  *string
	Phone          *string
	City           *string
	Country        *string
	ZipCode        *string
	Address        *string
	Apartment      *string
	AdditionalInfo *string
	StartDate      *string
	BirthDate      *string
	DNI            *string
}
