package inventory

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Member struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	FirstName      string     `gorm:"column:first_name;not null" json:"first_name"`
	LastName       string     `gorm:"column:last_name;not null" json:"last_name"`
	Email          string     `gorm:"column:email;not null" json:"email"`
	Picture        string     `gorm:"column:picture" json:"picture,omitempty"`
	Position       string     `gorm:"column:position" json:"position,omitempty"`
	PersonalEmail  string     `gorm:"column:personal_email" json:"personal_email,omitempty"`
	Phone          string     `gorm:"column:phone" json:"phone,omitempty"`
	City           string     `gorm:"column:city" json:"city,omitempty"`
	Country        string     `gorm:"column:country" json:"country,omitempty"`
	ZipCode        string     `gorm:"column:zip_code" json:"zip_code,omitempty"`
	Address        string     `gorm:"column:address" json:"address,omitempty"`
	Apartment      string     `gorm:"column:apartment" json:"apartment,omitempty"`
	AdditionalInfo string     `gorm:"column:additional_info" json:"additional_info,omitempty"`
	StartDate      string     `gorm:"column:start_date" json:"start_date,omitempty"`
	BirthDate      string     `gorm:"column:birth_date" json:"birth_date,omitempty"`
	DNI            string     `gorm:"column:dni" json:"dni,omitempty"`
	TeamID         *uuid.UUID `gorm:"type:uuid;column:team_id;index" json:"team_id,omitempty"`
	Team           *Team      `gorm:"foreignKey:TeamID;references:ID" json:"team,omitempty"`

	// Assets currently held by this member. Order is not significant.
	Assets  datatypes.JSONSlice[Asset] `gorm:"column:assets" json:"products"`
	Version int                        `gorm:"column:version;not null" json:"version"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Member) TableName() string { return "member" }

func (m *Member) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.Assets == nil {
		m.Assets = datatypes.JSONSlice[Asset]{}
	}
	return nil
}

func (m *Member) FullName() string {
	if m == nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimSpace(m.FirstName) + " " + strings.TrimSpace(m.LastName))
}

// IndexOfAsset returns the position of assetID in the embedded list, or -1.
func (m *Member) IndexOfAsset(assetID uuid.UUID) int {
	if m == nil {
		return -1
	}
	for i := range m.Assets {
		if m.Assets[i].ID == assetID {
			return i
		}
	}
	return -1
}

func (m *Member) HasRecoverableAssets() bool {
	if m == nil {
		return false
	}
	for _, a := range m.Assets {
		if a.Recoverable && !a.IsDeleted {
			return true
		}
	}
	return false
}

// Normalize lower-cases the email and title-cases the names.
func (m *Member) Normalize() {
	m.Email = NormalizeEmail(m.Email)
	m.FirstName = TitleCase(m.FirstName)
	m.LastName = TitleCase(m.LastName)
}
