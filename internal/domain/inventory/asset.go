package inventory

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	StatusAvailable  = "Available"
	StatusDelivered  = "Delivered"
	StatusDeprecated = "Deprecated"
)

// UnassignedSentinel is accepted from clients as "no holder".
const UnassignedSentinel = "none"

type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Asset is a trackable inventory item. The same struct is stored as a pool row
// and as an element of Member.Assets.
type Asset struct {
	ID              uuid.UUID                      `gorm:"type:uuid;primaryKey" json:"id"`
	Name            string                         `gorm:"column:name" json:"name"`
	Category        string                         `gorm:"column:category;not null;index" json:"category"`
	Attributes      datatypes.JSONSlice[Attribute] `gorm:"column:attributes" json:"attributes"`
	Status          string                         `gorm:"column:status;not null" json:"status"`
	Recoverable     bool                           `gorm:"column:recoverable;not null" json:"recoverable"`
	SerialNumber    string                         `gorm:"column:serial_number" json:"serial_number,omitempty"`
	AssignedEmail   string                         `gorm:"column:assigned_email;index" json:"assigned_email"`
	AssignedMember  string                         `gorm:"column:assigned_member" json:"assigned_member"`
	LastAssigned    string                         `gorm:"column:last_assigned" json:"last_assigned"`
	AcquisitionDate string                         `gorm:"column:acquisition_date" json:"acquisition_date,omitempty"`
	Location        string                         `gorm:"column:location" json:"location,omitempty"`
	IsDeleted       bool                           `gorm:"column:is_deleted;not null;index" json:"is_deleted"`
	DeletedAt       *time.Time                     `gorm:"column:deleted_at" json:"deleted_at,omitempty"`
	Version         int                            `gorm:"column:version;not null" json:"version"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Asset) TableName() string { return "asset" }

func (a *Asset) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// HolderEmail returns the normalized holder identity, "" when unassigned.
func (a *Asset) HolderEmail() string {
	if a == nil || IsUnassigned(a.AssignedEmail) {
		return ""
	}
	return NormalizeEmail(a.AssignedEmail)
}

// ClearHolder drops the assignment, remembering the previous holder when there was one.
func (a *Asset) ClearHolder() {
	if prev := a.HolderEmail(); prev != "" {
		a.LastAssigned = prev
	}
	a.AssignedEmail = ""
	a.AssignedMember = ""
}

// MarkDeprecated soft-deletes the asset in place.
func (a *Asset) MarkDeprecated(at time.Time) {
	at = at.UTC()
	a.Status = StatusDeprecated
	a.IsDeleted = true
	a.DeletedAt = &at
}

// Clone returns a deep copy safe to mutate independently.
func (a Asset) Clone() Asset {
	out := a
	if a.Attributes != nil {
		out.Attributes = append(datatypes.JSONSlice[Attribute]{}, a.Attributes...)
	}
	if a.DeletedAt != nil {
		t := *a.DeletedAt
		out.DeletedAt = &t
	}
	return out
}

// Normalize canonicalizes category casing, trims text fields and derives recoverability.
func (a *Asset) Normalize(c *Catalog) {
	if c == nil {
		c = DefaultCatalog()
	}
	if spec, ok := c.Lookup(a.Category); ok {
		a.Category = spec.Name
		a.Recoverable = spec.Recoverable
	}
	a.Name = strings.TrimSpace(a.Name)
	a.SerialNumber = strings.TrimSpace(a.SerialNumber)
	if IsUnassigned(a.AssignedEmail) {
		a.AssignedEmail = ""
	} else {
		a.AssignedEmail = NormalizeEmail(a.AssignedEmail)
	}
	if a.Attributes == nil {
		a.Attributes = datatypes.JSONSlice[Attribute]{}
	}
	for i := range a.Attributes {
		a.Attributes[i].Key = strings.TrimSpace(a.Attributes[i].Key)
		a.Attributes[i].Value = strings.TrimSpace(a.Attributes[i].Value)
	}
}

func IsValidStatus(status string) bool {
	switch status {
	case StatusAvailable, StatusDelivered, StatusDeprecated:
		return true
	default:
		return false
	}
}
