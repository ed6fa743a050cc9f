package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"budgeter/models"
	"budgeter/pkg/config"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Driver picks the SQL driver from the shape of the DSN. Anything that does
// not look like a postgres URL or keyword DSN is treated as a sqlite path.
func Driver(dsn string) string {
	d := strings.ToLower(strings.TrimSpace(dsn))
	switch {
	case strings.HasPrefix(d, "postgres://"), strings.HasPrefix(d, "postgresql://"):
		return DriverPostgres
	case strings.Contains(d, "host=") || strings.Contains(d, "dbname="):
		return DriverPostgres
	}
	return DriverSQLite
}

// sqliteDSN strips an optional sqlite:// prefix and turns on foreign keys for
// every connection the pool opens.
func sqliteDSN(dsn string) string {
	dsn = strings.TrimPrefix(strings.TrimSpace(dsn), "sqlite://")
	if strings.Contains(dsn, "_foreign_keys") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&_foreign_keys=on"
	}
	return dsn + "?_foreign_keys=on"
}

// Open connects to postgres or sqlite depending on the DSN.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormLogger := logger.Default
	if !cfg.LogMode {
		gormLogger = gormLogger.LogMode(logger.Silent)
	}
	gcfg := &gorm.Config{Logger: gormLogger, TranslateError: true}

	driver := Driver(cfg.DSN)
	var dialector gorm.Dialector
	if driver == DriverPostgres {
		dialector = postgres.Open(cfg.DSN)
	} else {
		dsn := sqliteDSN(cfg.DSN)
		if path := sqlitePath(dsn); path != "" {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, fmt.Errorf("create db dir: %w", err)
			}
		}
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, gcfg)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	if driver == DriverSQLite {
		// one writer; also keeps a :memory: database alive on a single connection
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
	} else {
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}
	return db, nil
}

func sqlitePath(dsn string) string {
	p := dsn
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}
	p = strings.TrimPrefix(p, "file:")
	if p == "" || strings.Contains(p, ":memory:") {
		return ""
	}
	if strings.Contains(dsn, "mode=memory") {
		return ""
	}
	return p
}

// AutoMigrate creates the schema from the models. Used for sqlite, where the
// postgres SQL migrations do not apply.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Budget{},
		&models.Category{},
		&models.Transaction{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Migrate brings the schema up to date using the strategy of the driver.
func Migrate(db *gorm.DB, dsn string) error {
	if Driver(dsn) == DriverPostgres {
		return RunMigrations(dsn)
	}
	return AutoMigrate(db)
}

// IsUniqueViolation reports whether err comes from a unique index, for both
// drivers and with or without gorm's error translation.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	s := err.Error()
	return strings.Contains(s, "UNIQUE constraint failed") || strings.Contains(s, "duplicate key")
}
