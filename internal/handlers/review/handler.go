package review

import (
	"homestay/infras/otel"
	"homestay/internal/domains/review/model/dto"
	"homestay/internal/domains/review/service"
	"homestay/shared/constant"
	gDto "homestay/shared/dto"
	"homestay/shared/validator"
	"homestay/transport/http/response"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Review
	otel    otel.Otel
}

func New(service service.Review, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Get("/homestays/{homestay_id}/reviews", handler.GetHomestayReviews)

	router.Route("/reviews", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateReview)
		routerGroup.Delete("/{id}", handler.DeleteReview)
	})
}

// GetHomestayReviews lists the reviews of a homestay with its average rating.
// @Summary List homestay reviews
// @Tags Review
// @Produce json
// @Param homestay_id path string true "Homestay ID"
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Success 200 {object} response.Data[dto.GetReviewsResponse]
// @Failure 500 {object} response.Error
// @Router /v1/homestays/{homestay_id}/reviews [get]
func (handler *Handler) GetHomestayReviews(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetHomestayReviews")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	res, err := handler.service.ListByHomestay(ctx, queryParams, chi.URLParam(r, constant.RequestParamHomestayID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get reviews")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// CreateReview reviews a completed stay.
// @Summary Review a stay
// @Tags Review
// @Accept json
// @Produce json
// @Param request body dto.CreateReviewRequest true "Create Review Request"
// @Success 201 {object} response.Data[dto.ReviewResponse]
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/reviews [post]
// @Security BearerAuth
func (handler *Handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateReview")
	defer scope.End()

	req := dto.CreateReviewRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create review")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusCreated, res)
}

// DeleteReview removes a review.
// @Summary Delete a review
// @Tags Review
// @Produce json
// @Param id path string true "Review ID"
// @Success 200 {object} response.Message
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/reviews/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteReview")
	defer scope.End()

	if err := handler.service.Delete(ctx, chi.URLParam(r, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete review")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Review deleted successfully")
}
