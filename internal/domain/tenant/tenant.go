package tenant

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tenant lives in the control database; its inventory lives in a database of its own.
type Tenant struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TenantName string    `gorm:"column:tenant_name;not null;uniqueIndex" json:"tenant_name"`
	Name       string    `gorm:"column:name" json:"name"`
	Email      string    `gorm:"column:email;not null;uniqueIndex" json:"email"`
	Image      string    `gorm:"column:image" json:"image,omitempty"`
	Password   string    `gorm:"column:password" json:"-"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Tenant) TableName() string { return "tenant" }

func (t *Tenant) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
