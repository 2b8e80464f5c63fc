package postgres

//nolint:revive
import (
	"errors"
	"homestay/config"
	"net"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	postgresMaxIdleConnection = 10
	postgresMaxOpenConnection = 10
	postgresConnMaxLifetime   = 30 * time.Minute
)

// Connection splits reads and writes. Transactions always run on Write.
type Connection struct {
	Read  *sqlx.DB
	Write *sqlx.DB
}

type endpoint struct {
	name     string
	host     string
	port     string
	username string
	password string
	dbName   string
	sslMode  string
	timezone string
}

func New(config *config.Config) *Connection {
	pg := config.DB.Postgres

	write := endpoint{
		name:     "write",
		host:     pg.Write.Host,
		port:     pg.Write.Port,
		username: pg.Write.Username,
		password: pg.Write.Password,
		dbName:   pg.Prefix + pg.Write.Name,
		sslMode:  pg.Write.SSLMode,
		timezone: pg.Write.Timezone,
	}

	read := endpoint{
		name:     "read",
		host:     pg.Read.Host,
		port:     pg.Read.Port,
		username: pg.Read.Username,
		password: pg.Read.Password,
		dbName:   pg.Prefix + pg.Read.Name,
		sslMode:  pg.Read.SSLMode,
		timezone: pg.Read.Timezone,
	}

	return &Connection{
		Read:  connect(read, pg.MaxRetry, pg.RetryWaitTime),
		Write: connect(write, pg.MaxRetry, pg.RetryWaitTime),
	}
}

func (c *Connection) Close() error {
	var errs []error

	if c.Read != nil && c.Read != c.Write {
		errs = append(errs, c.Read.Close())
	}

	if c.Write != nil {
		errs = append(errs, c.Write.Close())
	}

	return errors.Join(errs...)
}

// DSN builds the lib/pq connection URL of an endpoint.
func (e endpoint) DSN() string {
	query := url.Values{}

	if e.sslMode != "" {
		query.Set("sslmode", e.sslMode)
	}

	if e.timezone != "" {
		query.Set("timezone", e.timezone)
	}

	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(e.username, e.password),
		Host:     net.JoinHostPort(e.host, e.port),
		Path:     e.dbName,
		RawQuery: query.Encode(),
	}

	return dsn.String()
}

func connect(e endpoint, maxRetry, waitTime int) *sqlx.DB {
	for retry := range max(maxRetry, 1) {
		sqlDB, err := sqlx.Connect("postgres", e.DSN())
		if err == nil {
			log.
				Info().
				Str("name", e.name).
				Str("host", e.host).
				Str("port", e.port).
				Str("dbName", e.dbName).
				Msg("Connected to database")

			sqlDB.SetMaxIdleConns(postgresMaxIdleConnection)
			sqlDB.SetMaxOpenConns(postgresMaxOpenConnection)
			sqlDB.SetConnMaxLifetime(postgresConnMaxLifetime)

			return sqlDB
		}

		log.
			Error().
			Err(err).
			Str("name", e.name).
			Str("host", e.host).
			Str("dbName", e.dbName).
			Int("attempt", retry+1).
			Msg("Failed connecting to database, retrying")

		time.Sleep(time.Duration(waitTime) * time.Second)
	}

	log.Fatal().Str("name", e.name).Msgf("could not connect to database after %d attempts", max(maxRetry, 1))

	return nil
}
