package app

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/nahuelRo/first-plug-api/internal/data/db"
	"github.com/nahuelRo/first-plug-api/internal/data/tenantdb"
	"github.com/nahuelRo/first-plug-api/internal/platform/logger"
)

var openPostgresControl = func(cfg db.PostgresConfig, log *logger.Logger) (*gorm.DB, error) {
	pg, err := db.NewPostgresService(cfg, log)
	if err != nil {
		return nil, err
	}
	return pg.DB(), nil
}

type StorageBootstrapErrorCode string

const (
	StorageBootstrapErrorInvalidDriver StorageBootstrapErrorCode = "invalid_driver"
	StorageBootstrapErrorConnectFailed StorageBootstrapErrorCode = "connect_failed"
	StorageBootstrapErrorMigrateFailed StorageBootstrapErrorCode = "migrate_failed"
)

type StorageBootstrapError struct {
	Code   StorageBootstrapErrorCode
	Driver string
	Cause  error
}

func (e *StorageBootstrapError) Error() string {
	if e == nil {
		return "storage bootstrap failed"
	}
	return fmt.Sprintf("storage bootstrap failed (code=%s driver=%q): %v", e.Code, e.Driver, e.Cause)
}

func (e *StorageBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Storage is the control database plus the opener for tenant databases on the same server.
type Storage struct {
	Control *gorm.DB
	Opener  tenantdb.Opener
}

func resolveStorage(log *logger.Logger, cfg Config) (Storage, error) {
	log.Info("Selecting storage provider", "driver", cfg.DBDriver, "sqlite_dir", cfg.SQLiteDir)

	var (
		control *gorm.DB
		opener  tenantdb.Opener
		err     error
	)
	switch cfg.DBDriver {
	case db.DriverPostgres:
		control, err = openPostgresControl(cfg.Postgres, log)
		if err == nil {
			opener = tenantdb.NewPostgresOpener(cfg.Postgres, control, log)
		}
	case db.DriverSQLite:
		control, err = db.OpenSQLite(db.SQLiteDSN(cfg.SQLiteDir, "control"), log)
		if err == nil {
			opener = tenantdb.NewSQLiteOpener(cfg.SQLiteDir, log)
		}
	default:
		err := &StorageBootstrapError{
			Code:   StorageBootstrapErrorInvalidDriver,
			Driver: cfg.DBDriver,
			Cause:  fmt.Errorf("unsupported driver %q", cfg.DBDriver),
		}
		log.Error("Storage provider selection failed", "driver", cfg.DBDriver, "error_code", err.Code)
		return Storage{}, err
	}
	if err != nil {
		return Storage{}, storageBootstrapFailure(log, cfg.DBDriver, StorageBootstrapErrorConnectFailed, err)
	}
	if err := db.AutoMigrateControl(control); err != nil {
		return Storage{}, storageBootstrapFailure(log, cfg.DBDriver, StorageBootstrapErrorMigrateFailed, err)
	}
	return Storage{Control: control, Opener: opener}, nil
}

func storageBootstrapFailure(log *logger.Logger, driver string, code StorageBootstrapErrorCode, cause error) error {
	err := &StorageBootstrapError{Code: code, Driver: driver, Cause: cause}
	log.Error("Storage provider bootstrap failed", "driver", driver, "error_code", code, "error", cause)
	return err
}

func storageBootstrapErrorCode(err error) StorageBootstrapErrorCode {
	var bootstrapErr *StorageBootstrapError
	if errors.As(err, &bootstrapErr) && bootstrapErr.Code != "" {
		return bootstrapErr.Code
	}
	return StorageBootstrapErrorConnectFailed
}
