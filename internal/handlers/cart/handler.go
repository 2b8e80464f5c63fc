package cart

import (
	"homestay/infras/otel"
	"homestay/internal/domains/cart/model/dto"
	"homestay/internal/domains/cart/service"
	"homestay/shared/constant"
	"homestay/shared/validator"
	"homestay/transport/http/response"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Cart
	otel    otel.Otel
}

func New(service service.Cart, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/carts/me", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.GetCart)
		routerGroup.Delete("/", handler.ClearCart)
		routerGroup.Post("/items", handler.AddItem)
		routerGroup.Patch("/items/{item_id}", handler.UpdateItem)
		routerGroup.Delete("/items/{item_id}", handler.RemoveItem)
	})
}

// GetCart returns the cart of the signed in customer with its live items.
// @Summary Get my cart
// @Tags Cart
// @Produce json
// @Success 200 {object} response.Data[dto.CartResponse]
// @Failure 500 {object} response.Error
// @Router /v1/carts/me [get]
// @Security BearerAuth
func (handler *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetCart")
	defer scope.End()

	res, err := handler.service.GetMine(ctx)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get cart")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// AddItem puts a stay in the cart. The stay is priced and checked before it is kept.
// @Summary Add a cart item
// @Tags Cart
// @Accept json
// @Produce json
// @Param request body dto.ItemRequest true "Cart Item Request"
// @Success 201 {object} response.Data[dto.ItemResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/carts/me/items [post]
// @Security BearerAuth
func (handler *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".AddItem")
	defer scope.End()

	req := dto.ItemRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.AddItem(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to add cart item")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusCreated, res)
}

// UpdateItem replaces the stay of a cart item.
// @Summary Update a cart item
// @Tags Cart
// @Accept json
// @Produce json
// @Param item_id path string true "Cart Item ID"
// @Param request body dto.ItemRequest true "Cart Item Request"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/carts/me/items/{item_id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateItem")
	defer scope.End()

	req := dto.ItemRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	if err := handler.service.UpdateItem(ctx, req, chi.URLParam(r, constant.RequestParamItemID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update cart item")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Cart item updated successfully")
}

// RemoveItem drops one item from the cart.
// @Summary Remove a cart item
// @Tags Cart
// @Produce json
// @Param item_id path string true "Cart Item ID"
// @Success 200 {object} response.Message
// @Failure 404 {object} response.Error
// @Router /v1/carts/me/items/{item_id} [delete]
// @Security BearerAuth
func (handler *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".RemoveItem")
	defer scope.End()

	if err := handler.service.RemoveItem(ctx, chi.URLParam(r, constant.RequestParamItemID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to remove cart item")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Cart item removed successfully")
}

// ClearCart empties the cart.
// @Summary Clear my cart
// @Tags Cart
// @Produce json
// @Success 200 {object} response.Message
// @Failure 500 {object} response.Error
// @Router /v1/carts/me [delete]
// @Security BearerAuth
func (handler *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ClearCart")
	defer scope.End()

	if err := handler.service.Clear(ctx); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to clear cart")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Cart cleared successfully")
}
