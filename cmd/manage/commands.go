package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/urfave/cli/v3"
	"gorm.io/gorm"

	"github.com/pageza/recipebox/backend/config"
	"github.com/pageza/recipebox/backend/internal/database"
	"github.com/pageza/recipebox/backend/internal/logging"
	"github.com/pageza/recipebox/backend/internal/service"
)

// Starter catalog inserted by the seed command
var (
	seedTags = []string{
		"Breakfast", "Lunch", "Dinner", "Dessert", "Quick", "Vegan", "Vegetarian",
	}
	seedIngredients = []string{
		"Butter", "Eggs", "Flour", "Garlic", "Olive oil", "Onion", "Pepper", "Rice", "Salt", "Sugar",
	}
)

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "manage",
		Usage: "recipebox maintenance commands",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Value: "",
				Usage: "log level (debug, info, warn, error); defaults to LOG_LEVEL",
			},
		},
		Commands: []*cli.Command{
			migrateCmd(),
			createSuperuserCmd(),
			seedCmd(),
		},
	}
}

// setup loads configuration and builds a logger honouring --log-level
func setup(cmd *cli.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	level := cfg.LogLevel
	if v := cmd.String("log-level"); v != "" {
		level = v
	}
	logger := logging.New(logging.Options{Level: level, Format: "text", Output: os.Stderr})
	return cfg, logger, nil
}

// withDB opens the configured database for the duration of fn
func withDB(cmd *cli.Command, fn func(cfg *config.Config, db *gorm.DB, logger *slog.Logger) error) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	db, err := database.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Warn("failed to close database", "error", err)
		}
	}()
	return fn(cfg, db, logger)
}

func migrateCmd() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply or roll back schema migrations",
		Commands: []*cli.Command{
			{
				Name:  "up",
				Usage: "Apply all pending migrations",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withDB(cmd, func(cfg *config.Config, db *gorm.DB, logger *slog.Logger) error {
						if err := database.RunMigrations(db, cfg.DatabaseURL(), logger); err != nil {
							return err
						}
						fmt.Fprintln(cmd.Root().Writer, "migrations applied")
						return nil
					})
				},
			},
			{
				Name:  "down",
				Usage: "Roll back migrations",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "steps",
						Value: 1,
						Usage: "number of migrations to roll back",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					steps := cmd.Int("steps")
					if steps < 1 {
						return fmt.Errorf("--steps must be at least 1")
					}
					return withMigrator(cmd, func(m *migrate.Migrate) error {
						if err := m.Steps(-int(steps)); err != nil && !errors.Is(err, migrate.ErrNoChange) {
							return fmt.Errorf("failed to roll back: %w", err)
						}
						fmt.Fprintf(cmd.Root().Writer, "rolled back %d migration(s)\n", steps)
						return nil
					})
				},
			},
			{
				Name:  "version",
				Usage: "Print the current schema version",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withMigrator(cmd, func(m *migrate.Migrate) error {
						version, dirty, err := m.Version()
						if errors.Is(err, migrate.ErrNilVersion) {
							fmt.Fprintln(cmd.Root().Writer, "no migrations applied")
							return nil
						}
						if err != nil {
							return err
						}
						fmt.Fprintf(cmd.Root().Writer, "version %d (dirty: %t)\n", version, dirty)
						return nil
					})
				},
			},
		},
	}
}

// withMigrator runs fn against the postgres migration history. SQLite
// databases are created by auto-migration and keep no history.
func withMigrator(cmd *cli.Command, fn func(m *migrate.Migrate) error) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	if cfg.DBDriver != "postgres" {
		return fmt.Errorf("migration history is only kept for postgres, DB_DRIVER is %q", cfg.DBDriver)
	}
	m, err := database.NewMigrator(cfg.DatabaseURL())
	if err != nil {
		return err
	}
	defer database.CloseMigrator(m, logger)
	return fn(m)
}

func createSuperuserCmd() *cli.Command {
	return &cli.Command{
		Name:  "createsuperuser",
		Usage: "Create a staff account with superuser rights",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "email",
				Required: true,
				Usage:    "login email",
			},
			&cli.StringFlag{
				Name:     "password",
				Required: true,
				Sources:  cli.EnvVars("SUPERUSER_PASSWORD"),
				Usage:    "password, at least 5 characters",
			},
			&cli.StringFlag{
				Name:  "name",
				Usage: "display name",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withDB(cmd, func(cfg *config.Config, db *gorm.DB, logger *slog.Logger) error {
				auth := service.NewAuthService(db, cfg.JWTSecret, cfg.TokenTTL)
				user, err := auth.CreateSuperuser(ctx, cmd.String("email"), cmd.String("password"), cmd.String("name"))
				if err != nil {
					return fmt.Errorf("failed to create superuser: %w", err)
				}
				logger.Info("superuser created", "user_id", user.ID)
				fmt.Fprintf(cmd.Root().Writer, "superuser %s created\n", user.Email)
				return nil
			})
		},
	}
}

func seedCmd() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Insert a starter catalog of tags and ingredients",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withDB(cmd, func(cfg *config.Config, db *gorm.DB, logger *slog.Logger) error {
				catalogs := []struct {
					svc   *service.CatalogService
					names []string
				}{
					{service.NewTagService(db), seedTags},
					{service.NewIngredientService(db), seedIngredients},
				}
				for _, c := range catalogs {
					for _, name := range c.names {
						if _, err := c.svc.Create(ctx, name); err != nil {
							return fmt.Errorf("failed to seed %s %q: %w", c.svc.Kind().Name, name, err)
						}
					}
					logger.Info("catalog seeded", "kind", c.svc.Kind().Name, "count", len(c.names))
				}
				fmt.Fprintln(cmd.Root().Writer, "catalog seeded")
				return nil
			})
		},
	}
}
