package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/nahuelRo/first-plug-api/internal/domain"
	"github.com/nahuelRo/first-plug-api/internal/domain/inventory"
)

func SeedTeam(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.Team {
	tb.Helper()
	t := &types.Team{ID: uuid.New(), Name: name}
	if err := tx.WithContext(ctx).Create(t).Error; err != nil {
		tb.Fatalf("seed team: %v", err)
	}
	return t
}

func SeedMember(tb testing.TB, ctx context.Context, tx *gorm.DB, email string, assets ...types.Asset) *types.Member {
	tb.Helper()
	m := &types.Member{
		ID:        uuid.New(),
		FirstName: "First",
		LastName:  "Last",
		Email:     inventory.NormalizeEmail(email),
		Assets:    datatypes.JSONSlice[types.Asset](assets),
	}
	for i := range m.Assets {
		if m.Assets[i].ID == uuid.Nil {
			m.Assets[i].ID = uuid.New()
		}
		m.Assets[i].AssignedEmail = m.Email
		m.Assets[i].AssignedMember = m.FullName()
	}
	if err := tx.WithContext(ctx).Omit("Team").Create(m).Error; err != nil {
		tb.Fatalf("seed member: %v", err)
	}
	return m
}

func SeedPoolAsset(tb testing.TB, ctx context.Context, tx *gorm.DB, a types.Asset) *types.Asset {
	tb.Helper()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Category == "" {
		a.Category = inventory.CategoryComputer
	}
	if a.Status == "" {
		a.Status = inventory.StatusAvailable
	}
	a.Normalize(nil)
	if err := tx.WithContext(ctx).Create(&a).Error; err != nil {
		tb.Fatalf("seed pool asset: %v", err)
	}
	return &a
}

// NewAsset builds an unsaved, normalized asset.
func NewAsset(category, serial string, attrs ...types.Attribute) types.Asset {
	a := types.Asset{
		ID:           uuid.New(),
		Name:         category + " item",
		Category:     category,
		Status:       inventory.StatusDelivered,
		SerialNumber: serial,
		Attributes:   datatypes.JSONSlice[types.Attribute](attrs),
	}
	a.Normalize(nil)
	return a
}
