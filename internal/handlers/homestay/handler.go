package homestay

import (
	"homestay/infras/otel"
	"homestay/internal/domains/homestay/model/dto"
	"homestay/internal/domains/homestay/service"
	"homestay/shared"
	"homestay/shared/constant"
	gDto "homestay/shared/dto"
	"homestay/shared/validator"
	"homestay/transport/http/response"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Homestay
	otel    otel.Otel
}

func New(service service.Homestay, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/homestays", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.GetHomestays)
		routerGroup.Post("/", handler.CreateHomestay)
		routerGroup.Get("/mine", handler.GetMyHomestays)
		routerGroup.Get("/{id}", handler.GetHomestayByID)
		routerGroup.Patch("/{id}", handler.UpdateHomestay)
		routerGroup.Delete("/{id}", handler.DeleteHomestay)
		routerGroup.Post("/{id}/images", handler.UploadImage)
		routerGroup.Delete("/{id}/images", handler.RemoveImage)
	})
}

// searchFromRequest reads the catalog filters from the query string.
func searchFromRequest(r *http.Request) dto.SearchRequest {
	query := r.URL.Query()

	return dto.SearchRequest{
		Name:     query.Get("name"),
		City:     query.Get("city"),
		Guests:   shared.ConvertStringToInt(query.Get("guests")),
		MinPrice: shared.ConvertStringToInt64(query.Get("min_price")),
		MaxPrice: shared.ConvertStringToInt64(query.Get("max_price")),
	}
}

// GetHomestays searches the public catalog.
// @Summary Search homestays
// @Description List active homestays with optional filters and pagination.
// @Tags Homestay
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param name query string false "Name contains"
// @Param city query string false "City contains"
// @Param guests query integer false "Minimum guest capacity"
// @Param min_price query integer false "Minimum nightly price in VND"
// @Param max_price query integer false "Maximum nightly price in VND"
// @Success 200 {object} response.Data[dto.GetHomestaysResponse]
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/homestays [get]
func (handler *Handler) GetHomestays(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetHomestays")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	res, err := handler.service.GetAll(ctx, queryParams, searchFromRequest(r))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get homestays")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// GetMyHomestays lists the homestays of the signed in owner, inactive ones included.
// @Summary List own homestays
// @Tags Homestay
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Success 200 {object} response.Data[dto.GetHomestaysResponse]
// @Failure 500 {object} response.Error
// @Router /v1/homestays/mine [get]
// @Security BearerAuth
func (handler *Handler) GetMyHomestays(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetMyHomestays")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	search := searchFromRequest(r)
	search.OwnerID = shared.UserID(ctx)
	search.IncludeInactive = true

	res, err := handler.service.GetAll(ctx, queryParams, search)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get own homestays")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// CreateHomestay handles the creation of a homestay by its owner.
// @Summary Create a homestay
// @Tags Homestay
// @Accept json
// @Produce json
// @Param request body dto.CreateHomestayRequest true "Create Homestay Request"
// @Success 201 {object} response.Data[dto.HomestayResponse]
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/homestays [post]
// @Security BearerAuth
func (handler *Handler) CreateHomestay(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateHomestay")
	defer scope.End()

	req := dto.CreateHomestayRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create homestay")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Homestay created by user " + shared.UserID(ctx))

	response.WithJSON(w, http.StatusCreated, res)
}

// GetHomestayByID returns one homestay.
// @Summary Get a homestay
// @Tags Homestay
// @Produce json
// @Param id path string true "Homestay ID"
// @Success 200 {object} response.Data[dto.HomestayResponse]
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/homestays/{id} [get]
func (handler *Handler) GetHomestayByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetHomestayByID")
	defer scope.End()

	res, err := handler.service.Get(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get homestay")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// UpdateHomestay changes the given fields of a homestay.
// @Summary Update a homestay
// @Tags Homestay
// @Accept json
// @Produce json
// @Param id path string true "Homestay ID"
// @Param request body dto.UpdateHomestayRequest true "Update Homestay Request"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/homestays/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateHomestay(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateHomestay")
	defer scope.End()

	req := dto.UpdateHomestayRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	if err := handler.service.Update(ctx, req, chi.URLParam(r, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update homestay")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Homestay updated successfully")
}

// DeleteHomestay removes a homestay without bookings.
// @Summary Delete a homestay
// @Tags Homestay
// @Produce json
// @Param id path string true "Homestay ID"
// @Success 200 {object} response.Message
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/homestays/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteHomestay(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteHomestay")
	defer scope.End()

	if err := handler.service.Delete(ctx, chi.URLParam(r, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete homestay")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Homestay deleted successfully")
}

// UploadImage stores an image in object storage and appends it to the homestay.
// @Summary Upload a homestay image
// @Tags Homestay
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Homestay ID"
// @Param image formData file true "Image (png, jpg, jpeg, webp; max 5 MB)"
// @Success 201 {object} response.Data[dto.UploadImageResponse]
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/homestays/{id}/images [post]
// @Security BearerAuth
func (handler *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UploadImage")
	defer scope.End()

	if err := r.ParseMultipartForm(constant.RequestMaxMemory); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to parse multipart form")

		response.WithError(w, err)

		return
	}

	req := dto.UploadImageRequest{}

	file, fileHeader, err := r.FormFile("image")
	if err == nil {
		req.Image = fileHeader
		req.ImageFile = file

		defer file.Close()
	}

	if err := validator.ValidateStruct(&req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.UploadImage(ctx, req, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to upload homestay image")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusCreated, res)
}

// RemoveImage deletes one image of a homestay.
// @Summary Remove a homestay image
// @Tags Homestay
// @Accept json
// @Produce json
// @Param id path string true "Homestay ID"
// @Param request body dto.RemoveImageRequest true "Remove Image Request"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Router /v1/homestays/{id}/images [delete]
// @Security BearerAuth
func (handler *Handler) RemoveImage(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".RemoveImage")
	defer scope.End()

	req := dto.RemoveImageRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	if err := handler.service.RemoveImage(ctx, req, chi.URLParam(r, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to remove homestay image")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Image removed successfully")
}
