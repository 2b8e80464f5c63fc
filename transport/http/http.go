package http

import (
	"context"
	"errors"
	"homestay/config"
	"homestay/transport/http/middleware"
	"homestay/transport/http/response"
	"homestay/transport/http/router"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

type ServerState int32

const (
	ServerStateReady ServerState = iota + 1
	ServerStateInGracePeriod
	ServerStateInCleanupPeriod
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 10 * time.Second
)

type HTTP struct {
	Config     *config.Config
	Router     router.Router
	Middleware middleware.AppMiddleware
	AuthRole   middleware.AuthRole

	state  atomic.Int32
	once   sync.Once
	mux    *chi.Mux
	server *http.Server
}

func New(cfg *config.Config, r router.Router, appMiddleware middleware.AppMiddleware, authRole middleware.AuthRole) *HTTP {
	return &HTTP{
		Config:     cfg,
		Router:     r,
		Middleware: appMiddleware,
		AuthRole:   authRole,
	}
}

func (h *HTTP) State() ServerState {
	return ServerState(h.state.Load())
}

func (h *HTTP) Serve() {
	h.once.Do(h.setup)
	h.setupGracefulShutdown()

	h.server = &http.Server{
		Addr:              net.JoinHostPort(h.Config.Server.Host, h.Config.Server.Port),
		Handler:           h.mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	log.Info().Str("port", h.Config.Server.Port).Msg("Starting up HTTP server.")

	if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Failed to start HTTP server")
	}
}

// ServeHTTP lets the app run behind a serverless entrypoint without a listener.
func (h *HTTP) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.once.Do(h.setup)
	h.mux.ServeHTTP(w, r)
}

func (h *HTTP) setup() {
	h.mux = chi.NewRouter()

	h.mux.Use(
		chiMiddleware.RequestID,
		chiMiddleware.RealIP,
		chiMiddleware.Recoverer,
		h.Middleware.CORS(),
		h.Middleware.Tracing,
		h.Middleware.Metrics,
		h.drain,
		h.Middleware.RateLimit(),
		h.AuthRole.APIKey,
		h.AuthRole.Auth,
		h.AuthRole.RBAC,
	)

	h.Router.SetupRoutes(h.mux)
	h.state.Store(int32(ServerStateReady))
}

// drain fails readiness during the grace period so the balancer stops routing here,
// and refuses new work once cleanup has begun.
func (h *HTTP) drain(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch h.State() {
		case ServerStateInGracePeriod:
			if r.URL.Path == router.ReadinessPath {
				response.WithPreparingShutdown(w)

				return
			}
		case ServerStateInCleanupPeriod:
			response.WithPreparingShutdown(w)

			return
		case ServerStateReady:
		}

		next.ServeHTTP(w, r)
	})
}

func (h *HTTP) setupGracefulShutdown() {
	serverStateCh := make(chan os.Signal, 1)

	signal.Notify(serverStateCh, os.Interrupt, syscall.SIGTERM)

	go h.respondToSigterm(serverStateCh)
}

func (h *HTTP) respondToSigterm(done chan os.Signal) {
	<-done

	defer h.shutdown()

	if h.Config.Server.Env == "development" {
		log.Warn().Msg("Received SIGTERM. Shutting down now.")

		return
	}

	shutdownConfig := h.Config.Server.Shutdown

	log.Info().Msg("Received SIGTERM.")
	log.Info().Int64("seconds", shutdownConfig.GracePeriodSeconds).Msg("Entering grace period.")

	h.state.Store(int32(ServerStateInGracePeriod))

	time.Sleep(time.Duration(shutdownConfig.GracePeriodSeconds) * time.Second)

	log.Info().Int64("seconds", shutdownConfig.CleanupPeriodSeconds).Msg("Entering cleanup period.")

	h.state.Store(int32(ServerStateInCleanupPeriod))

	time.Sleep(time.Duration(shutdownConfig.CleanupPeriodSeconds) * time.Second)

	log.Info().Msg("Cleaning up completed. Shutting down now.")
}

func (h *HTTP) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := h.server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to shut down HTTP server")
	}
}
