package db

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nahuelRo/first-plug-api/internal/platform/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN builds a connection string for dbName on the configured server.
func (c PostgresConfig) DSN(dbName string) string {
	sslMode := strings.TrimSpace(c.SSLMode)
	if sslMode == "" {
		sslMode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + c.Port,
		Path:     "/" + dbName,
		RawQuery: "sslmode=" + url.QueryEscape(sslMode),
	}
	return u.String()
}

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(cfg PostgresConfig, logg *logger.Logger) (*PostgresService, error) {
	serviceLog := logg.With("service", "PostgresService")
	db, err := OpenPostgres(cfg.DSN(cfg.Name), logg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	serviceLog.Info("Connected to control database", "host", cfg.Host, "database", cfg.Name)
	return &PostgresService{db: db, log: serviceLog}, nil
}

func (s *PostgresService) DB() *gorm.DB { return s.db }

func gormConfig(logg *logger.Logger) *gorm.Config {
	cfg := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc:                                  func() time.Time { return time.Now().UTC() },
	}
	if logg != nil {
		cfg.Logger = logg.Gorm(time.Second)
	}
	return cfg
}

func OpenPostgres(dsn string, logg *logger.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), gormConfig(logg))
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	return db, nil
}

// OpenSQLite opens a SQLite handle capped at one open connection.
func OpenSQLite(dsn string, logg *logger.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig(logg))
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// SQLiteDSN returns a file DSN under dir, or a named shared in-memory database when dir is empty.
func SQLiteDSN(dir, name string) string {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", url.PathEscape(name))
	}
	return fmt.Sprintf("file:%s/%s.db?_busy_timeout=5000", strings.TrimRight(dir, "/"), name)
}
