package tenantdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	"gorm.io/gorm"

	"github.com/nahuelRo/first-plug-api/internal/data/db"
	"github.com/nahuelRo/first-plug-api/internal/platform/logger"
)

// Opener creates a migrated handle for one tenant database.
type Opener interface {
	Open(ctx context.Context, dbName string) (*gorm.DB, error)
	// TxOptions returns the isolation used for aggregate writes on this dialect.
	TxOptions() *sql.TxOptions
}

type postgresOpener struct {
	cfg   db.PostgresConfig
	admin *gorm.DB
	log   *logger.Logger
}

// NewPostgresOpener opens tenant databases on the server admin is connected to,
// creating them on first use.
func NewPostgresOpener(cfg db.PostgresConfig, admin *gorm.DB, log *logger.Logger) Opener {
	return &postgresOpener{cfg: cfg, admin: admin, log: log.With("opener", "postgres")}
}

func (o *postgresOpener) Open(ctx context.Context, dbName string) (*gorm.DB, error) {
	var exists int64
	if err := o.admin.WithContext(ctx).
		Raw("SELECT COUNT(*) FROM pg_database WHERE datname = ?", dbName).
		Scan(&exists).Error; err != nil {
		return nil, fmt.Errorf("lookup database %s: %w", dbName, err)
	}
	if exists == 0 {
		// dbName passed validTenantName, so quoting is enough
		stmt := fmt.Sprintf(`CREATE DATABASE "%s"`, strings.ReplaceAll(dbName, `"`, ""))
		if err := o.admin.WithContext(ctx).Exec(stmt).Error; err != nil && !strings.Contains(err.Error(), "already exists") {
			return nil, fmt.Errorf("create database %s: %w", dbName, err)
		}
		o.log.Info("Created tenant database", "database", dbName)
	}
	gdb, err := db.OpenPostgres(o.cfg.DSN(dbName), o.log)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrateTenant(gdb.WithContext(ctx)); err != nil {
		closeHandle(gdb)
		return nil, err
	}
	return gdb, nil
}

func (o *postgresOpener) TxOptions() *sql.TxOptions {
	return &sql.TxOptions{Isolation: sql.LevelSerializable}
}

type sqliteOpener struct {
	dir string
	log *logger.Logger
}

// NewSQLiteOpener keeps one file per tenant under dir, or shared in-memory databases when dir is empty.
func NewSQLiteOpener(dir string, log *logger.Logger) Opener {
	return &sqliteOpener{dir: strings.TrimSpace(dir), log: log.With("opener", "sqlite")}
}

func (o *sqliteOpener) Open(ctx context.Context, dbName string) (*gorm.DB, error) {
	if o.dir != "" {
		if err := os.MkdirAll(o.dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	gdb, err := db.OpenSQLite(db.SQLiteDSN(o.dir, dbName), o.log)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrateTenant(gdb.WithContext(ctx)); err != nil {
		closeHandle(gdb)
		return nil, err
	}
	return gdb, nil
}

// SQLite transactions are already serializable.
func (o *sqliteOpener) TxOptions() *sql.TxOptions { return nil }

func closeHandle(gdb *gorm.DB) error {
	if gdb == nil {
		return nil
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
