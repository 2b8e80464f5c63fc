package cron

import (
	"homestay/infras/otel"
	"homestay/internal/domains/booking/service"
	"homestay/shared/constant"
	"homestay/transport/http/response"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// Handler exposes scheduled jobs to an external scheduler. Callers present the API key.
type Handler struct {
	service service.Booking
	otel    otel.Otel
}

func New(service service.Booking, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/cron", func(routerGroup chi.Router) {
		routerGroup.Get("/update-booking-status", handler.UpdateBookingStatus)
	})
}

// UpdateBookingStatus completes every paid booking, confirmed or not, that checks out today.
// @Summary Complete finished stays
// @Tags Cron
// @Produce json
// @Param X-API-Key header string true "API key"
// @Success 200 {object} response.Data[dto.CompleteDueResponse]
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/cron/update-booking-status [get]
func (handler *Handler) UpdateBookingStatus(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateBookingStatus")
	defer scope.End()

	res, err := handler.service.CompleteDue(ctx)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to complete due bookings")

		response.WithError(w, err)

		return
	}

	log.Info().Int64("completed", res.Completed).Msg("completed due bookings")

	response.WithJSON(w, http.StatusOK, res)
}
