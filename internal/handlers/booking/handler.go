package booking

import (
	"context"
	"fmt"
	"homestay/infras/otel"
	"homestay/internal/domains/booking/model/dto"
	"homestay/internal/domains/booking/service"
	"homestay/shared/constant"
	gDto "homestay/shared/dto"
	"homestay/shared/timezone"
	"homestay/shared/validator"
	"homestay/transport/http/response"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

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
	router.Route("/bookings", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.GetBookings)
		routerGroup.Get("/me", handler.GetMyBookings)
		routerGroup.Get("/owned", handler.GetOwnedBookings)
		routerGroup.Get("/export", handler.ExportBookings)
		routerGroup.Get("/{id}", handler.GetBookingByID)
		routerGroup.Post("/{id}/cancel", handler.CancelBooking)
		routerGroup.Patch("/{id}/status", handler.UpdateBookingStatus)
	})
}

// filterFromRequest reads and validates the listing filters from the query string.
func filterFromRequest(r *http.Request) (dto.BookingFilter, error) {
	query := r.URL.Query()

	filter := dto.BookingFilter{
		Status:        query.Get("status"),
		PaymentStatus: query.Get("payment_status"),
		HomestayID:    query.Get("homestay_id"),
		CustomerID:    query.Get("customer_id"),
		CheckInFrom:   query.Get("check_in_from"),
		CheckInTo:     query.Get("check_in_to"),
	}

	return filter, validator.ValidateStruct(&filter)
}

type lister func(ctx context.Context, req gDto.QueryParams, filter dto.BookingFilter) (dto.GetBookingsResponse, error)

func (handler *Handler) list(w http.ResponseWriter, r *http.Request, name string, fn lister) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+"."+name)
	defer scope.End()

	filter, err := filterFromRequest(r)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate booking filter")

		response.WithError(w, err)

		return
	}

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	res, err := fn(ctx, queryParams, filter)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get bookings")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// GetBookings lists every booking for the back office.
// @Summary List bookings
// @Tags Booking
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param status query string false "Booking status"
// @Param payment_status query string false "Payment status"
// @Param homestay_id query string false "Homestay ID"
// @Param customer_id query string false "Customer ID"
// @Param check_in_from query string false "Check-in on or after (YYYY-MM-DD)"
// @Param check_in_to query string false "Check-in on or before (YYYY-MM-DD)"
// @Success 200 {object} response.Data[dto.GetBookingsResponse]
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings [get]
// @Security BearerAuth
func (handler *Handler) GetBookings(w http.ResponseWriter, r *http.Request) {
	handler.list(w, r, "GetBookings", handler.service.GetAll)
}

// GetMyBookings lists the bookings of the signed in customer.
// @Summary List my bookings
// @Tags Booking
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param status query string false "Booking status"
// @Success 200 {object} response.Data[dto.GetBookingsResponse]
// @Failure 400 {object} response.Error
// @Router /v1/bookings/me [get]
// @Security BearerAuth
func (handler *Handler) GetMyBookings(w http.ResponseWriter, r *http.Request) {
	handler.list(w, r, "GetMyBookings", handler.service.GetMine)
}

// GetOwnedBookings lists the bookings made on homestays of the signed in owner.
// @Summary List bookings of my homestays
// @Tags Booking
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param status query string false "Booking status"
// @Param homestay_id query string false "Homestay ID"
// @Success 200 {object} response.Data[dto.GetBookingsResponse]
// @Failure 400 {object} response.Error
// @Router /v1/bookings/owned [get]
// @Security BearerAuth
func (handler *Handler) GetOwnedBookings(w http.ResponseWriter, r *http.Request) {
	handler.list(w, r, "GetOwnedBookings", handler.service.GetOwned)
}

// ExportBookings downloads the filtered bookings as a spreadsheet.
// @Summary Export bookings
// @Tags Booking
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param status query string false "Booking status"
// @Param check_in_from query string false "Check-in on or after (YYYY-MM-DD)"
// @Param check_in_to query string false "Check-in on or before (YYYY-MM-DD)"
// @Success 200 {file} file
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings/export [get]
// @Security BearerAuth
func (handler *Handler) ExportBookings(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ExportBookings")
	defer scope.End()

	filter, err := filterFromRequest(r)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate booking filter")

		response.WithError(w, err)

		return
	}

	content, err := handler.service.Export(ctx, filter)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to export bookings")

		response.WithError(w, err)

		return
	}

	fileName := fmt.Sprintf("bookings-%s.xlsx", timezone.Now().Format("20060102"))
	response.WithFile(w, constant.ContentTypeXLSX, fileName, content)
}

// GetBookingByID returns one booking with its room lines.
// @Summary Get a booking
// @Tags Booking
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Data[dto.BookingResponse]
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/bookings/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetBookingByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookingByID")
	defer scope.End()

	res, err := handler.service.Get(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get booking")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// CancelBooking cancels a booking that has not started.
// @Summary Cancel a booking
// @Tags Booking
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Data[dto.BookingResponse]
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/bookings/{id}/cancel [post]
// @Security BearerAuth
func (handler *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CancelBooking")
	defer scope.End()

	res, err := handler.service.Cancel(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to cancel booking")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// UpdateBookingStatus lets the owner confirm or cancel a booking.
// @Summary Update a booking status
// @Tags Booking
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body dto.UpdateStatusRequest true "Update Status Request"
// @Success 200 {object} response.Data[dto.BookingResponse]
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/bookings/{id}/status [patch]
// @Security BearerAuth
func (handler *Handler) UpdateBookingStatus(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateBookingStatus")
	defer scope.End()

	req := dto.UpdateStatusRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.UpdateStatus(ctx, req, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update booking status")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}
