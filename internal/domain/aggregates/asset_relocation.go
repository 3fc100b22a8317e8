package aggregates

import (
	"context"

	"github.com/google/uuid"
	"github.com/nahuelRo/first-plug-api/internal/domain/inventory"
)

var AssetRelocationContract = Contract{
	Name:             "Inventory.AssetRelocation",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "Sole writer moving an asset between the pool and a member's embedded list; remove and insert commit together.",
}

// AssetRelocationAggregate owns asset location and serial uniqueness invariants.
//
// Write method failures return *aggregates.Error with codes:
// CodeValidation, CodeNotFound, CodeDuplicateSerial, CodeMemberNotFound,
// CodeInvalidTransition, CodeConflict, CodeRetryable, CodeInternal.
type AssetRelocationAggregate interface {
	Aggregate

	// Create inserts a new asset, embedding it directly in the holder when the holder resolves.
	Create(ctx context.Context, in CreateAssetInput) (AssetResult, error)

	// CreateMany creates a batch in one transaction; serials must be unique within the batch too.
	CreateMany(ctx context.Context, in []CreateAssetInput) ([]AssetResult, error)

	// Update patches an asset and relocates it when the holder changes.
	Update(ctx context.Context, id uuid.UUID, patch AssetPatch) (AssetResult, error)

	// Reassign is Update for patches that always carry a holder.
	Reassign(ctx context.Context, id uuid.UUID, patch AssetPatch) (AssetResult, error)

	// SoftDelete deprecates an asset, materializing a pool copy when it was embedded.
	SoftDelete(ctx context.Context, id uuid.UUID) (AssetResult, error)

	// FindByID locates an asset in either location.
	FindByID(ctx context.Context, id uuid.UUID) (AssetResult, error)
}

type CreateAssetInput struct {
	Name            string
	Category        string
	Attributes      []inventory.Attribute
	Status          string
	SerialNumber    string
	AssignedEmail   string
	AcquisitionDate string
	Location        string
}

// AssetPatch carries optional fields; nil means "leave unchanged".
type AssetPatch struct {
	Name            *string
	Category        *string
	Attributes      *[]inventory.Attribute
	Status          *string
	SerialNumber    *string
	AssignedEmail   *string
	AcquisitionDate *string
	Location        *string
}

type AssetResult struct {
	Asset    inventory.Asset
	Location inventory.Location
}
