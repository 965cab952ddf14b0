package database

import (
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/factoryops/inventory/app/logging"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Open connects gorm to Postgres. Driver errors are translated so unique and
// foreign-key violations surface as gorm.ErrDuplicatedKey and
// gorm.ErrForeignKeyViolated.
func Open(dsn string, log *slog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logging.Gorm(log),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

// Migrate applies the embedded goose migrations.
func Migrate(dsn string, log *slog.Logger) error {
	sqlDB, err := goose.OpenDBWithDriver("postgres", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()

	return migrate(sqlDB, log)
}

func migrate(sqlDB *sql.DB, log *slog.Logger) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(slog.NewLogLogger(log.With("component", "goose").Handler(), slog.LevelInfo))
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.Up(sqlDB, "migrations"); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
