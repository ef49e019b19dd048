package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/musicmeta/internal/shared"
)

// SetupConfig writes the example configuration to --path.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("path")

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", path)
	r.writePlain("%s\n", r.palette.OK("✓ Config written to "+path))
	return nil
}

// SetupDatabase creates both SQLite databases and runs their migrations (or rolls back the latest one).
//
// Databases are prepared regardless of the configured driver so switching to sqlite later needs no extra step.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	config, err := r.settings(cmd)
	if err != nil {
		return err
	}

	targets := []struct {
		name    string
		storage shared.StorageConfig
		set     shared.MigrationSet
	}{
		{"catalog", config.Catalog.Storage, shared.CatalogMigrations},
		{"library", config.Library.Storage, shared.LibraryMigrations},
	}

	for _, t := range targets {
		if err := r.migrate(t.storage, t.set, cmd.Bool("rollback")); err != nil {
			return fmt.Errorf("%s database: %w", t.name, err)
		}
		r.writePlain("%s\n", r.palette.Status(t.name, t.storage.DatabasePath, true))
	}
	return nil
}

func (r *Runner) migrate(storage shared.StorageConfig, set shared.MigrationSet, rollback bool) error {
	r.logger.Info("initializing database", "path", storage.DatabasePath, "set", set)

	db, err := shared.NewDatabase(storage.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, storage.MaxOpenConns, storage.MaxOpenConns)

	if rollback {
		r.logger.Info("rolling back latest migration", "set", set)
		if err := shared.RollbackMigration(db, set); err != nil {
			return fmt.Errorf("failed to roll back migration: %w", err)
		}
		return nil
	}

	r.logger.Info("running database migrations", "set", set)
	if err := shared.RunMigrations(db, set); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
