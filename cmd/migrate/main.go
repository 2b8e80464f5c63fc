package main

import (
	"fmt"
	"homestay/config"
	"homestay/helper"
	"homestay/shared/logger"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}
}

func newRootCommand() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the Postgres schema",
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			cfg := config.Get()
			logger.InitLogger(cfg)
			logger.SetLogLevel(cfg)
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&path, "path", helper.DefaultMigrationsPath, "directory holding the SQL migrations")

	withMigrator := func(fn func(m *helper.Migrator, args []string) error) func(*cobra.Command, []string) error {
		return func(_ *cobra.Command, args []string) error {
			m, err := helper.NewMigrator(config.Get(), path)
			if err != nil {
				return err //nolint:wrapcheck
			}
			defer m.Close()

			return fn(m, args)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply every pending migration",
			RunE:  withMigrator(func(m *helper.Migrator, _ []string) error { return m.Up() }),
		},
		&cobra.Command{
			Use:   "step-up",
			Short: "Apply the next migration",
			RunE:  withMigrator(func(m *helper.Migrator, _ []string) error { return m.Steps(1) }),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the last migration",
			RunE:  withMigrator(func(m *helper.Migrator, _ []string) error { return m.Steps(-1) }),
		},
		&cobra.Command{
			Use:   "drop",
			Short: "Roll back every migration",
			RunE:  withMigrator(func(m *helper.Migrator, _ []string) error { return m.Drop() }),
		},
		&cobra.Command{
			Use:   "force <version>",
			Short: "Set the schema version without running migrations",
			Args:  cobra.ExactArgs(1),
			RunE: withMigrator(func(m *helper.Migrator, args []string) error {
				version, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid version %q: %w", args[0], err)
				}

				return m.Force(version)
			}),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			RunE: withMigrator(func(m *helper.Migrator, _ []string) error {
				version, dirty, err := m.Version()
				if err != nil {
					return err
				}

				log.Info().Uint("version", version).Bool("dirty", dirty).Msg("schema version")

				return nil
			}),
		},
	)

	return cmd
}
