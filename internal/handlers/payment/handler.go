package payment

import (
	"context"
	"homestay/infras/otel"
	"homestay/internal/domains/payment/model/dto"
	"homestay/internal/domains/payment/service"
	"homestay/shared/constant"
	gDto "homestay/shared/dto"
	"homestay/shared/validator"
	"homestay/transport/http/response"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Payment
	otel    otel.Otel
}

func New(service service.Payment, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/payment", func(routerGroup chi.Router) {
		routerGroup.Post("/checkout", handler.Checkout)
		routerGroup.Post("/create-payment-intent", handler.CreatePaymentIntent)
	})

	router.Route("/payments", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.GetPayments)
		routerGroup.Get("/me", handler.GetMyPayments)
		routerGroup.Post("/{id}/confirm", handler.ConfirmPayment)
		routerGroup.Post("/{id}/refund", handler.RefundPayment)
	})
}

// Checkout books every stay in the request and records one payment per booking.
// A repeated Idempotency-Key is refused while the first attempt is running.
// @Summary Checkout
// @Tags Payment
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Idempotency key"
// @Param request body dto.CheckoutRequest true "Checkout Request"
// @Success 201 {object} response.Data[[]dto.CheckoutResult]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/payment/checkout [post]
// @Security BearerAuth
func (handler *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Checkout")
	defer scope.End()

	req := dto.CheckoutRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	req.IdempotencyKey = r.Header.Get(constant.RequestHeaderIdempotencyKey)

	res, err := handler.service.Checkout(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to checkout")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusCreated, res)
}

// CreatePaymentIntent prices the stays and opens a card payment intent for the total.
// @Summary Create a payment intent
// @Tags Payment
// @Accept json
// @Produce json
// @Param request body dto.PaymentIntentRequest true "Payment Intent Request"
// @Success 200 {object} response.Data[dto.PaymentIntentResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 502 {object} response.Error
// @Router /v1/payment/create-payment-intent [post]
// @Security BearerAuth
func (handler *Handler) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreatePaymentIntent")
	defer scope.End()

	req := dto.PaymentIntentRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.CreatePaymentIntent(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create payment intent")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

type lister func(ctx context.Context, req gDto.QueryParams, filter dto.PaymentFilter) (dto.GetPaymentsResponse, error)

func (handler *Handler) list(w http.ResponseWriter, r *http.Request, name string, fn lister) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+"."+name)
	defer scope.End()

	filter := dto.PaymentFilter{
		Status: r.URL.Query().Get("status"),
		Method: r.URL.Query().Get("method"),
	}

	if err := validator.ValidateStruct(&filter); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate payment filter")

		response.WithError(w, err)

		return
	}

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	res, err := fn(ctx, queryParams, filter)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get payments")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// GetPayments lists every payment for the back office.
// @Summary List payments
// @Tags Payment
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param status query string false "Payment status"
// @Param method query string false "Payment method"
// @Success 200 {object} response.Data[dto.GetPaymentsResponse]
// @Failure 400 {object} response.Error
// @Router /v1/payments [get]
// @Security BearerAuth
func (handler *Handler) GetPayments(w http.ResponseWriter, r *http.Request) {
	handler.list(w, r, "GetPayments", handler.service.GetAll)
}

// GetMyPayments lists the payments on bookings of the signed in customer.
// @Summary List my payments
// @Tags Payment
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param status query string false "Payment status"
// @Success 200 {object} response.Data[dto.GetPaymentsResponse]
// @Failure 400 {object} response.Error
// @Router /v1/payments/me [get]
// @Security BearerAuth
func (handler *Handler) GetMyPayments(w http.ResponseWriter, r *http.Request) {
	handler.list(w, r, "GetMyPayments", handler.service.GetMine)
}

// ConfirmPayment marks a pending cash payment as received.
// @Summary Confirm a payment
// @Tags Payment
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} response.Data[dto.PaymentResponse]
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/payments/{id}/confirm [post]
// @Security BearerAuth
func (handler *Handler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ConfirmPayment")
	defer scope.End()

	res, err := handler.service.Confirm(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to confirm payment")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// RefundPayment refunds a settled payment.
// @Summary Refund a payment
// @Tags Payment
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} response.Data[dto.PaymentResponse]
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/payments/{id}/refund [post]
// @Security BearerAuth
func (handler *Handler) RefundPayment(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".RefundPayment")
	defer scope.End()

	res, err := handler.service.Refund(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to refund payment")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}
