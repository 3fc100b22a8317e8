package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nahuelRo/first-plug-api/internal/data/db"
	"github.com/nahuelRo/first-plug-api/internal/data/tenantdb"
	"github.com/nahuelRo/first-plug-api/internal/observability"
	"github.com/nahuelRo/first-plug-api/internal/platform/envutil"
	"github.com/nahuelRo/first-plug-api/internal/platform/logger"
)

type Config struct {
	Environment string
	Port        string

	JWTSecretKey string
	JWTLeeway    time.Duration

	DBDriver  string
	Postgres  db.PostgresConfig
	SQLiteDir string

	Tenants        tenantdb.Config
	TenantCacheTTL time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MetricsEnabled bool
	MetricsAddr    string
	Otel           observability.OtelConfig

	CORSOrigins string

	SeedTenantName     string
	SeedTenantEmail    string
	SeedTenantPassword string
}

// LoadConfig reads the environment, falling back to the YAML file named by
// CONFIG_FILE and then to built-in defaults.
func LoadConfig(log *logger.Logger) (Config, error) {
	defaults, err := loadConfigFile(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return Config{}, err
	}
	return buildConfig(defaults, log), nil
}

// loadConfigFile decodes a flat mapping of environment keys to values.
func loadConfigFile(path string) (envutil.Defaults, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	var values map[string]any
	if err := yaml.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	out := envutil.Defaults{}
	for k, v := range values {
		if v == nil {
			continue
		}
		out[strings.ToUpper(strings.TrimSpace(k))] = fmt.Sprint(v)
	}
	return out, nil
}

func buildConfig(d envutil.Defaults, log *logger.Logger) Config {
	env := d.String("LOG_MODE", "development", log)
	return Config{
		Environment: env,
		Port:        d.String("PORT", "3001", log),

		JWTSecretKey: d.String("JWT_SECRET_KEY", "", log),
		JWTLeeway:    d.Seconds("JWT_LEEWAY_SECONDS", 30*time.Second, log),

		DBDriver: strings.ToLower(d.String("DB_DRIVER", db.DriverPostgres, log)),
		Postgres: db.PostgresConfig{
			Host:     d.String("POSTGRES_HOST", "localhost", log),
			Port:     d.String("POSTGRES_PORT", "5432", log),
			User:     d.String("POSTGRES_USER", "postgres", log),
			Password: d.String("POSTGRES_PASSWORD", "", log),
			Name:     d.String("POSTGRES_NAME", "firstplug", log),
			SSLMode:  d.String("POSTGRES_SSLMODE", "disable", log),
		},
		SQLiteDir: d.String("SQLITE_DIR", "", log),

		Tenants: tenantdb.Config{
			Prefix:     d.String("TENANT_DB_PREFIX", "tenant_", log),
			Fallback:   d.String("TENANT_FALLBACK_DB", "invited", log),
			TTL:        d.Seconds("TENANT_HANDLE_TTL_SECONDS", 30*time.Minute, log),
			MaxHandles: d.Int("TENANT_HANDLE_MAX", 256, log),
		},
		TenantCacheTTL: d.Seconds("TENANT_CACHE_TTL_SECONDS", time.Minute, log),

		RedisAddr:     d.String("REDIS_ADDR", "", log),
		RedisPassword: d.String("REDIS_PASSWORD", "", log),
		RedisDB:       d.Int("REDIS_DB", 0, log),

		MetricsEnabled: d.Bool("METRICS_ENABLED", false),
		MetricsAddr:    d.String("METRICS_ADDR", ":9090", log),
		Otel: observability.OtelConfig{
			Enabled:     d.Bool("OTEL_ENABLED", false),
			ServiceName: d.String("OTEL_SERVICE_NAME", "first-plug-api", log),
			Environment: env,
			Version:     d.String("APP_VERSION", "", log),
			Endpoint:    d.String("OTEL_EXPORTER_OTLP_ENDPOINT", "", log),
			Headers:     d.String("OTEL_EXPORTER_OTLP_HEADERS", "", log),
			Insecure:    d.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
			SampleRatio: d.Float("OTEL_SAMPLER_RATIO", 1, log),
		},

		CORSOrigins: d.String("CORS_ALLOWED_ORIGINS", "", log),

		SeedTenantName:     d.String("SEED_TENANT_NAME", "", log),
		SeedTenantEmail:    d.String("SEED_TENANT_EMAIL", "", log),
		SeedTenantPassword: d.String("SEED_TENANT_PASSWORD", "", log),
	}
}

// Validate rejects configurations the server cannot run with.
func (c Config) Validate() error {
	if c.JWTSecretKey == "" && c.Environment == "production" {
		return fmt.Errorf("JWT_SECRET_KEY is required in production")
	}
	switch c.DBDriver {
	case db.DriverPostgres, db.DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	return nil
}
