package inventory

import (
	"fmt"

	"github.com/google/uuid"
)

// LocationKind tags where an asset currently lives.
type LocationKind int

const (
	LocationNone LocationKind = iota
	LocationPool
	LocationAssigned
	LocationDeleted
)

func (k LocationKind) String() string {
	switch k {
	case LocationPool:
		return "pool"
	case LocationAssigned:
		return "assigned"
	case LocationDeleted:
		return "deleted"
	default:
		return "none"
	}
}

// Location is Pool | AssignedTo(memberID) | Deleted. MemberID is only set for LocationAssigned.
type Location struct {
	Kind     LocationKind
	MemberID uuid.UUID
}

func Pool() Location { return Location{Kind: LocationPool} }
func AssignedTo(memberID uuid.UUID) Location { return Location{Kind: LocationAssigned, MemberID: memberID} }
func Deleted() Location { return Location{Kind: LocationDeleted} }

func (l Location) String() string {
	if l.Kind == LocationAssigned {
		return fmt.Sprintf("assigned(%s)", l.MemberID)
	}
	return l.Kind.String()
}

// Located is an asset together with the record that currently owns it.
// Member is non-nil only for LocationAssigned.
type Located struct {
	Asset    Asset
	Location Location
	Member   *Member
}
