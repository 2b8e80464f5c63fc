package health

import (
	"context"
	"homestay/infras/postgres"
	"homestay/transport/http/response"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	goRedis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const pingTimeout = 2 * time.Second

type Handler struct {
	db    *postgres.Connection
	redis *goRedis.Client
}

func New(db *postgres.Connection, redis *goRedis.Client) Handler {
	return Handler{
		db:    db,
		redis: redis,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/health", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.Live)
		routerGroup.Get("/ready", handler.Ready)
	})
}

// Live reports that the process is serving.
// @Summary Liveness probe
// @Tags Health
// @Produce json
// @Success 200 {object} response.Message
// @Router /health [get]
func (handler *Handler) Live(w http.ResponseWriter, _ *http.Request) {
	response.WithMessage(w, http.StatusOK, "ok")
}

// Ready reports whether the database and the cache answer.
// @Summary Readiness probe
// @Tags Health
// @Produce json
// @Success 200 {object} response.Message
// @Failure 503 {object} response.Message
// @Router /health/ready [get]
func (handler *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	if err := handler.db.Write.PingContext(ctx); err != nil {
		log.Error().Err(err).Msg("database is not reachable")

		response.WithUnhealthy(w)

		return
	}

	if handler.redis != nil {
		if err := handler.redis.Ping(ctx).Err(); err != nil {
			log.Error().Err(err).Msg("redis is not reachable")

			response.WithUnhealthy(w)

			return
		}
	}

	response.WithMessage(w, http.StatusOK, "ok")
}
