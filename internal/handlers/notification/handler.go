package notification

import (
	"homestay/infras/otel"
	"homestay/internal/domains/notification/service"
	"homestay/shared"
	"homestay/shared/constant"
	gDto "homestay/shared/dto"
	"homestay/transport/http/response"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Notification
	otel    otel.Otel
}

func New(service service.Notification, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/notifications", func(routerGroup chi.Router) {
		routerGroup.Get("/me", handler.GetMyNotifications)
		routerGroup.Get("/unread-count", handler.CountUnread)
		routerGroup.Patch("/read-all", handler.MarkAllRead)
		routerGroup.Patch("/{id}/read", handler.MarkRead)
	})
}

// GetMyNotifications lists the notifications of the signed in user, newest first.
// @Summary List my notifications
// @Tags Notification
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param unread query boolean false "Only unread notifications"
// @Success 200 {object} response.Data[dto.GetNotificationsResponse]
// @Failure 500 {object} response.Error
// @Router /v1/notifications/me [get]
// @Security BearerAuth
func (handler *Handler) GetMyNotifications(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetMyNotifications")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	unread := shared.ConvertStringToBool(r.URL.Query().Get("unread"))

	res, err := handler.service.GetMine(ctx, queryParams, unread != nil && *unread)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get notifications")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// CountUnread returns how many notifications the signed in user has not read.
// @Summary Count unread notifications
// @Tags Notification
// @Produce json
// @Success 200 {object} response.Data[dto.UnreadCountResponse]
// @Failure 500 {object} response.Error
// @Router /v1/notifications/unread-count [get]
// @Security BearerAuth
func (handler *Handler) CountUnread(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CountUnread")
	defer scope.End()

	res, err := handler.service.CountUnread(ctx)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to count unread notifications")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// MarkRead marks one notification as read.
// @Summary Mark a notification as read
// @Tags Notification
// @Produce json
// @Param id path string true "Notification ID"
// @Success 200 {object} response.Message
// @Failure 404 {object} response.Error
// @Router /v1/notifications/{id}/read [patch]
// @Security BearerAuth
func (handler *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".MarkRead")
	defer scope.End()

	if err := handler.service.MarkRead(ctx, chi.URLParam(r, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to mark notification as read")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Notification marked as read")
}

// MarkAllRead marks every notification of the signed in user as read.
// @Summary Mark all notifications as read
// @Tags Notification
// @Produce json
// @Success 200 {object} response.Message
// @Failure 500 {object} response.Error
// @Router /v1/notifications/read-all [patch]
// @Security BearerAuth
func (handler *Handler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".MarkAllRead")
	defer scope.End()

	if err := handler.service.MarkAllRead(ctx); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to mark notifications as read")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Notifications marked as read")
}
