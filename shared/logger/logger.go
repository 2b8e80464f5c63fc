package logger

import (
	"homestay/config"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const envDevelopment = "development"

// NewLogger writes human readable lines in development and JSON everywhere else.
func NewLogger(w io.Writer, cfg *config.Config) zerolog.Logger {
	if cfg.Server.Env == envDevelopment {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(w).With().Timestamp()
	if cfg.App.Name != "" {
		ctx = ctx.Str("service", cfg.App.Name)
	}

	return ctx.Logger()
}

func InitLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	log.Logger = NewLogger(os.Stdout, cfg)
	log.Trace().Msg("Zerolog initialized.")
}

func ErrorWithStack(err error) {
	log.Error().Msgf("%+v", errors.WithStack(err))
}

func SetLogLevel(config *config.Config) {
	level, err := zerolog.ParseLevel(config.Server.LogLevel)
	if err != nil || config.Server.LogLevel == "" {
		level = zerolog.TraceLevel
		log.Trace().Str("loglevel", level.String()).Msg("Environment has no log level set up, using default.")
	} else {
		log.Trace().Str("loglevel", level.String()).Msg("Desired log level detected.")
	}

	zerolog.SetGlobalLevel(level)
}
