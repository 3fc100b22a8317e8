package db

import (
	"fmt"

	types "github.com/nahuelRo/first-plug-api/internal/domain"
	"gorm.io/gorm"
)

// AutoMigrateControl migrates the control database (tenant directory).
func AutoMigrateControl(db *gorm.DB) error {
	if err := db.AutoMigrate(&types.Tenant{}); err != nil {
		return fmt.Errorf("control automigrate: %w", err)
	}
	return nil
}

// AutoMigrateTenant migrates one tenant database.
func AutoMigrateTenant(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&types.Team{},
		&types.Member{},
		&types.Asset{},
	); err != nil {
		return fmt.Errorf("tenant automigrate: %w", err)
	}
	return EnsureInventoryIndexes(db)
}

// EnsureInventoryIndexes creates the partial unique indexes AutoMigrate cannot express.
func EnsureInventoryIndexes(db *gorm.DB) error {
	stmts := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_asset_serial_active
		 ON asset (serial_number)
		 WHERE serial_number <> '' AND is_deleted = false`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_member_email_active
		 ON member (email)
		 WHERE deleted_at IS NULL`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("ensure inventory indexes: %w", err)
		}
	}
	return nil
}
