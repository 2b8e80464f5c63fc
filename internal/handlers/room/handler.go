package room

import (
	"homestay/infras/otel"
	"homestay/internal/domains/room/model/dto"
	"homestay/internal/domains/room/service"
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
	service service.Room
	otel    otel.Otel
}

func New(service service.Room, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/homestays/{homestay_id}/rooms", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.GetRooms)
		routerGroup.Post("/", handler.CreateRoom)
	})

	router.Route("/rooms", func(routerGroup chi.Router) {
		routerGroup.Get("/{id}", handler.GetRoomByID)
		routerGroup.Patch("/{id}", handler.UpdateRoom)
		routerGroup.Delete("/{id}", handler.DeleteRoom)
	})
}

// CreateRoom adds a room to a homestay.
// @Summary Create a room
// @Description Add a bookable room to a homestay of the signed in owner.
// @Tags Room
// @Accept json
// @Produce json
// @Param homestay_id path string true "Homestay ID"
// @Param request body dto.CreateRoomRequest true "Create Room Request"
// @Success 201 {object} response.Data[dto.RoomResponse]
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/homestays/{homestay_id}/rooms [post]
// @Security BearerAuth
func (handler *Handler) CreateRoom(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateRoom")
	defer scope.End()

	req := dto.CreateRoomRequest{}

	if err := validator.Decode(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to decode request body")

		response.WithError(writer, err)

		return
	}

	req.HomestayID = chi.URLParam(request, constant.RequestParamHomestayID)

	if err := validator.ValidateStruct(&req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(writer, err)

		return
	}

	res, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create room")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Room created successfully by user " + shared.UserID(ctx))

	response.WithJSON(writer, http.StatusCreated, res)
}

// GetRooms lists the active rooms of a homestay.
// @Summary List rooms of a homestay
// @Tags Room
// @Produce json
// @Param homestay_id path string true "Homestay ID"
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Success 200 {object} response.Data[dto.GetRoomsResponse]
// @Failure 500 {object} response.Error
// @Router /v1/homestays/{homestay_id}/rooms [get]
func (handler *Handler) GetRooms(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetRooms")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(request, true)

	res, err := handler.service.GetAllByHomestay(ctx, queryParams, chi.URLParam(request, constant.RequestParamHomestayID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get rooms")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

// GetRoomByID returns one room.
// @Summary Get a room
// @Tags Room
// @Produce json
// @Param id path string true "Room ID"
// @Success 200 {object} response.Data[dto.RoomResponse]
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/rooms/{id} [get]
func (handler *Handler) GetRoomByID(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetRoomByID")
	defer scope.End()

	res, err := handler.service.Get(ctx, chi.URLParam(request, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get room")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

// UpdateRoom changes the given fields of a room.
// @Summary Update a room
// @Tags Room
// @Accept json
// @Produce json
// @Param id path string true "Room ID"
// @Param request body dto.UpdateRoomRequest true "Update Room Request"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/rooms/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateRoom(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateRoom")
	defer scope.End()

	req := dto.UpdateRoomRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	if err := handler.service.Update(ctx, req, chi.URLParam(request, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update room")

		response.WithError(writer, err)

		return
	}

	response.WithMessage(writer, http.StatusOK, "Room updated successfully")
}

// DeleteRoom removes a room that no booking references.
// @Summary Delete a room
// @Tags Room
// @Produce json
// @Param id path string true "Room ID"
// @Success 200 {object} response.Message
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/rooms/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteRoom(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteRoom")
	defer scope.End()

	if err := handler.service.Delete(ctx, chi.URLParam(request, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete room")

		response.WithError(writer, err)

		return
	}

	response.WithMessage(writer, http.StatusOK, "Room deleted successfully")
}
