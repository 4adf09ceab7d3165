package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/migrations"
	"gorm.io/gorm"
)

// AutoMigrate creates the schema from the models. Used for sqlite, where
// the versioned postgres migrations do not apply.
func AutoMigrate(db *gorm.DB) error {
	if err := SetupJoinTables(db); err != nil {
		return err
	}
	return db.AutoMigrate(
		&models.User{},
		&models.Tag{},
		&models.Ingredient{},
		&models.Recipe{},
	)
}

// SetupJoinTables registers the explicit join models with gorm. It must run
// on every connection before recipes are preloaded or created with links.
func SetupJoinTables(db *gorm.DB) error {
	if err := db.SetupJoinTable(&models.Recipe{}, "Tags", &models.RecipeTag{}); err != nil {
		return fmt.Errorf("failed to set up recipe_tags: %w", err)
	}
	if err := db.SetupJoinTable(&models.Recipe{}, "Ingredients", &models.RecipeIngredient{}); err != nil {
		return fmt.Errorf("failed to set up recipe_ingredients: %w", err)
	}
	return nil
}

// RunMigrations brings the schema up to date for whichever driver db uses
func RunMigrations(db *gorm.DB, databaseURL string, logger *slog.Logger) error {
	if db.Dialector.Name() == "sqlite" {
		logger.Info("using GORM auto-migration for SQLite")
		return AutoMigrate(db)
	}

	if err := SetupJoinTables(db); err != nil {
		return err
	}

	m, err := NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer CloseMigrator(m, logger)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return err
	}
	logger.Info("database schema up to date", "version", version, "dirty", dirty)
	return nil
}

// NewMigrator opens a lib/pq connection and wraps it in a migrate instance
// reading the embedded migration files.
func NewMigrator(databaseURL string) (*migrate.Migrate, error) {
	sqlDB, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open migration connection: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect for migrations: %w", err)
	}

	driver, err := migratepg.WithInstance(sqlDB, &migratepg.Config{})
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	return m, nil
}

// CloseMigrator releases a migrator built by NewMigrator
func CloseMigrator(m *migrate.Migrate, logger *slog.Logger) {
	srcErr, dbErr := m.Close()
	if srcErr != nil {
		logger.Warn("failed to close migration source", "error", srcErr)
	}
	if dbErr != nil {
		logger.Warn("failed to close migration database", "error", dbErr)
	}
}
