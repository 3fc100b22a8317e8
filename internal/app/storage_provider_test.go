package app

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/nahuelRo/first-plug-api/internal/data/db"
	"github.com/nahuelRo/first-plug-api/internal/data/repos"
	"github.com/nahuelRo/first-plug-api/internal/data/repos/testutil"
	"github.com/nahuelRo/first-plug-api/internal/platform/dbctx"
	"github.com/nahuelRo/first-plug-api/internal/platform/logger"
)

func TestResolveStorageRejectsUnknownDriver(t *testing.T) {
	_, err := resolveStorage(testutil.Logger(t), Config{DBDriver: "mongodb"})

	var got *StorageBootstrapError
	if !errors.As(err, &got) {
		t.Fatalf("expected StorageBootstrapError, got=%T", err)
	}
	if got.Code != StorageBootstrapErrorInvalidDriver || got.Driver != "mongodb" {
		t.Fatalf("code: want=%q got=%q", StorageBootstrapErrorInvalidDriver, got.Code)
	}
}

func TestResolveStorageClassifiesConnectFailure(t *testing.T) {
	prev := openPostgresControl
	t.Cleanup(func() { openPostgresControl = prev })
	openPostgresControl = func(db.PostgresConfig, *logger.Logger) (*gorm.DB, error) {
		return nil, errors.New("dial tcp: connection refused")
	}

	_, err := resolveStorage(testutil.Logger(t), Config{DBDriver: db.DriverPostgres})
	if code := storageBootstrapErrorCode(err); code != StorageBootstrapErrorConnectFailed {
		t.Fatalf("code: want=%q got=%q", StorageBootstrapErrorConnectFailed, code)
	}
}

func TestResolveStorageSQLite(t *testing.T) {
	log := testutil.Logger(t)
	storage, err := resolveStorage(log, Config{DBDriver: db.DriverSQLite, SQLiteDir: t.TempDir()})
	if err != nil {
		t.Fatalf("resolveStorage: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := storage.Control.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	ok, err := repos.NewTenantRepo(storage.Control, log).ExistsByTenantName(dbctx.Context{Ctx: context.Background()}, "acme")
	if err != nil || ok {
		t.Fatalf("control db not migrated: ok=%v err=%v", ok, err)
	}
	if storage.Opener.TxOptions() != nil {
		t.Fatalf("sqlite opener should use default isolation")
	}
}

func TestStorageBootstrapErrorCodeDefault(t *testing.T) {
	if code := storageBootstrapErrorCode(errors.New("x")); code != StorageBootstrapErrorConnectFailed {
		t.Fatalf("code: want=%q got=%q", StorageBootstrapErrorConnectFailed, code)
	}
}
