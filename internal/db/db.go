package db

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/HappyHacker143/taskflow/internal/config"
	"github.com/HappyHacker143/taskflow/internal/logging"
	"github.com/HappyHacker143/taskflow/internal/models"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

func Connect(cfg config.Config, log *slog.Logger) (*gorm.DB, error) {
	gormLogger := logger.New(
		logging.StdLogger(log, slog.LevelWarn),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	return Open(cfg.DatabaseURL, gormLogger)
}

// Open connects to the database named by databaseURL. postgres:// and
// postgresql:// URLs use the postgres driver; sqlite://, file: and :memory:
// use sqlite with foreign keys enforced.
func Open(databaseURL string, gormLogger logger.Interface) (*gorm.DB, error) {
	dialect, dsn, err := ParseURL(databaseURL)
	if err != nil {
		return nil, err
	}

	gormConfig := &gorm.Config{
		Logger: gormLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	var database *gorm.DB
	switch dialect {
	case DialectPostgres:
		database, err = gorm.Open(postgres.Open(dsn), gormConfig)
		if err != nil {
			return nil, err
		}
	default:
		database, err = gorm.Open(sqlite.Open(dsn), gormConfig)
		if err != nil {
			return nil, err
		}
		sqlDB, err := database.DB()
		if err != nil {
			return nil, fmt.Errorf("sqlite handle: %w", err)
		}
		// sqlite serializes writers; one connection also keeps in-memory databases alive.
		sqlDB.SetMaxOpenConns(1)
	}

	if err := models.SetupJoinTables(database); err != nil {
		return nil, fmt.Errorf("setup join tables: %w", err)
	}
	return database, nil
}

func ParseURL(databaseURL string) (Dialect, string, error) {
	raw := strings.TrimSpace(databaseURL)
	switch {
	case strings.HasPrefix(raw, "postgres://"), strings.HasPrefix(raw, "postgresql://"):
		return DialectPostgres, raw, nil
	case raw == ":memory:":
		return DialectSQLite, withForeignKeys("file::memory:"), nil
	case strings.HasPrefix(raw, "sqlite://"):
		path := strings.TrimPrefix(raw, "sqlite://")
		if path == "" {
			return "", "", errors.New("sqlite database path is empty")
		}
		if path == ":memory:" {
			path = "file::memory:"
		}
		return DialectSQLite, withForeignKeys(path), nil
	case strings.HasPrefix(raw, "file:"):
		return DialectSQLite, withForeignKeys(raw), nil
	}
	return "", "", fmt.Errorf("unsupported database url %q", databaseURL)
}

func withForeignKeys(dsn string) string {
	base, query, _ := strings.Cut(dsn, "?")
	values, err := url.ParseQuery(query)
	if err != nil {
		values = url.Values{}
	}
	values.Set("_foreign_keys", "on")
	return base + "?" + values.Encode()
}

// Migrate brings the schema up to date: versioned SQL migrations on postgres,
// AutoMigrate of the models on sqlite.
func Migrate(database *gorm.DB) error {
	if database.Dialector.Name() != string(DialectPostgres) {
		if err := database.AutoMigrate(models.All()...); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		return nil
	}

	m, err := migrator(database)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

type MigrationStatus struct {
	Dialect        Dialect
	CurrentVersion uint
	Dirty          bool
}

func Status(database *gorm.DB) (MigrationStatus, error) {
	if database.Dialector.Name() != string(DialectPostgres) {
		return MigrationStatus{Dialect: DialectSQLite}, nil
	}

	m, err := migrator(database)
	if err != nil {
		return MigrationStatus{}, err
	}
	defer m.Close()

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return MigrationStatus{}, fmt.Errorf("migration version: %w", err)
	}

	return MigrationStatus{
		Dialect:        DialectPostgres,
		CurrentVersion: version,
		Dirty:          dirty,
	}, nil
}

func migrator(database *gorm.DB) (*migrate.Migrate, error) {
	sqlDB, err := database.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}

	driver, err := pgxmigrate.WithInstance(sqlDB, &pgxmigrate.Config{})
	if err != nil {
		return nil, fmt.Errorf("migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("migration source: %w", err)
	}

	return migrate.NewWithInstance("iofs", source, "pgx5", driver)
}
