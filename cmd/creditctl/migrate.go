package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"

	"github.com/ManuelReschke/CreditFox/internal/pkg/database"
)

// migrator is the subset of *migrate.Migrate the subcommands use.
type migrator interface {
	Up() error
	Steps(n int) error
	Migrate(version uint) error
	Version() (uint, bool, error)
}

func newMigrateCommand() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect schema migrations",
	}
	cmd.PersistentFlags().StringVar(&dir, "path", "migrations", "directory holding one migration folder per driver")

	// withMigrator opens golang-migrate for the configured driver and closes it afterwards.
	withMigrator := func(fn func(m migrator, out io.Writer) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg := database.ConfigFromEnv()
			source := "file://" + filepath.ToSlash(filepath.Join(dir, cfg.Driver))
			fmt.Fprintf(cmd.OutOrStdout(), "connecting to %s database %s@%s:%s/%s\n", cfg.Driver, cfg.User, cfg.Host, cfg.Port, cfg.Name)

			m, err := migrate.New(source, cfg.MigrateURL())
			if err != nil {
				return fmt.Errorf("init migrations: %w", err)
			}
			defer func() {
				if sourceErr, dbErr := m.Close(); sourceErr != nil || dbErr != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "closing migration resources: %v, %v\n", sourceErr, dbErr)
				}
			}()
			return fn(m, cmd.OutOrStdout())
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE:  withMigrator(migrateUp),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the last migration",
			Args:  cobra.NoArgs,
			RunE:  withMigrator(migrateDown),
		},
		&cobra.Command{
			Use:   "goto VERSION",
			Short: "Migrate up or down to VERSION",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				version, err := strconv.ParseUint(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid version %q: %w", args[0], err)
				}
				return withMigrator(func(m migrator, out io.Writer) error {
					return migrateGoto(m, out, uint(version))
				})(cmd, args)
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Print the current migration version",
			Args:  cobra.NoArgs,
			RunE:  withMigrator(migrateStatus),
		},
	)
	return cmd
}

func migrateUp(m migrator, out io.Writer) error {
	err := m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		fmt.Fprintln(out, "no change: database is up to date")
	case err != nil:
		return fmt.Errorf("apply migrations: %w", err)
	default:
		fmt.Fprintln(out, "migrations applied")
	}
	return nil
}

func migrateDown(m migrator, out io.Writer) error {
	if err := m.Steps(-1); err != nil {
		return fmt.Errorf("roll back last migration: %w", err)
	}
	fmt.Fprintln(out, "rolled back last migration")
	return nil
}

func migrateGoto(m migrator, out io.Writer, version uint) error {
	err := m.Migrate(version)
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		fmt.Fprintf(out, "no change: database is already at version %d\n", version)
	case err != nil:
		return fmt.Errorf("migrate to version %d: %w", version, err)
	default:
		fmt.Fprintf(out, "migrated to version %d\n", version)
	}
	return nil
}

func migrateStatus(m migrator, out io.Writer) error {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		fmt.Fprintln(out, "no migrations applied yet")
		return nil
	}
	if err != nil {
		return fmt.Errorf("read migration version: %w", err)
	}
	dirtyStatus := ""
	if dirty {
		dirtyStatus = " (dirty)"
	}
	fmt.Fprintf(out, "current version: %d%s\n", version, dirtyStatus)
	return nil
}
