package helper

//nolint:revive
import (
	"errors"
	"fmt"
	"homestay/config"
	"net"
	"net/url"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog/log"
)

const DefaultMigrationsPath = "migrations/postgres"

// Migrator applies the SQL files under a directory to the write database.
type Migrator struct {
	mig *migrate.Migrate
}

func getDBName(config *config.Config, baseName string) string {
	if config.DB.Postgres.Prefix != "" {
		return config.DB.Postgres.Prefix + baseName
	}

	return baseName
}

// ConnectionString builds the migrate DSN for the write endpoint.
func ConnectionString(config *config.Config) string {
	write := config.DB.Postgres.Write

	query := url.Values{}
	query.Set("sslmode", write.SSLMode)

	if config.DB.Postgres.MigrationTable != "" {
		query.Set("x-migrations-table", config.DB.Postgres.MigrationTable)
	}

	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(write.Username, write.Password),
		Host:     net.JoinHostPort(write.Host, write.Port),
		Path:     "/" + getDBName(config, write.Name),
		RawQuery: query.Encode(),
	}

	return dsn.String()
}

func NewMigrator(config *config.Config, path string) (*Migrator, error) {
	if path == "" {
		path = DefaultMigrationsPath
	}

	mig, err := migrate.New("file://"+path, ConnectionString(config))
	if err != nil {
		return nil, fmt.Errorf("error creating migrate instance: %w", err)
	}

	return &Migrator{mig: mig}, nil
}

func (m *Migrator) Close() {
	srcErr, dbErr := m.mig.Close()
	if err := errors.Join(srcErr, dbErr); err != nil {
		log.Warn().Err(err).Msg("failed to close migrate instance")
	}
}

// Up applies every pending migration.
func (m *Migrator) Up() error {
	return m.run("applied pending migrations", m.mig.Up)
}

// Steps moves n migrations forward, or back when n is negative.
func (m *Migrator) Steps(n int) error {
	return m.run(fmt.Sprintf("moved %d migration steps", n), func() error { return m.mig.Steps(n) })
}

// Drop rolls back every migration.
func (m *Migrator) Drop() error {
	return m.run("rolled back all migrations", m.mig.Down)
}

// Force sets the version without running anything, to recover from a dirty state.
func (m *Migrator) Force(version int) error {
	return m.run(fmt.Sprintf("forced version %d", version), func() error { return m.mig.Force(version) })
}

func (m *Migrator) Version() (version uint, dirty bool, err error) {
	version, dirty, err = m.mig.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}

	if err != nil {
		return 0, false, fmt.Errorf("error reading migration version: %w", err)
	}

	return version, dirty, nil
}

func (m *Migrator) run(done string, fn func() error) error {
	if err := fn(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("error running migrations: %w", err)
	}

	log.Info().Msg("Database migrations: " + done)

	return nil
}
