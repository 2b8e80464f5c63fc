package service

import (
	"context"
	"errors"
	"fmt"
	"homestay/infras/otel"
	"homestay/internal/domains/booking/quote"
	"homestay/internal/domains/cart/model"
	"homestay/internal/domains/cart/model/dto"
	"homestay/internal/domains/cart/repository"
	"homestay/shared"
	"homestay/shared/constant"
	gDto "homestay/shared/dto"
	"homestay/shared/failure"
	gModel "homestay/shared/model"
	"homestay/shared/timezone"
	"homestay/shared/transaction"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

type Cart interface {
	GetMine(ctx context.Context) (dto.CartResponse, error)
	AddItem(ctx context.Context, req dto.ItemRequest) (dto.ItemResponse, error)
	UpdateItem(ctx context.Context, req dto.ItemRequest, itemID string) error
	RemoveItem(ctx context.Context, itemID string) error
	Clear(ctx context.Context) error
}

type serviceImpl struct {
	repo       repository.Cart
	itemRepo   repository.Item
	quoter     quote.Quoter
	transactor transaction.Transactor
	otel       otel.Otel
}

func New(repo repository.Cart, itemRepo repository.Item, quoter quote.Quoter, transactor transaction.Transactor, otel otel.Otel) Cart {
	return &serviceImpl{
		repo:       repo,
		itemRepo:   itemRepo,
		quoter:     quoter,
		transactor: transactor,
		otel:       otel,
	}
}

func (s *serviceImpl) GetMine(ctx context.Context) (res dto.CartResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetMine")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cart, err := s.liveCart(ctx)
	if err != nil {
		return res, err
	}

	items, err := s.itemRepo.GetAll(ctx, gDto.QueryParams{SortBy: constant.FieldCreatedAt, SortDir: gDto.SortDirAsc},
		dto.FilterLiveItems(cart.ID))
	if err != nil {
		log.Error().Err(err).Msg("failed to get cart items")

		return res, fmt.Errorf("failed to get cart items: %w", err)
	}

	res.FromModels(cart, items)

	return res, nil
}

func (s *serviceImpl) AddItem(ctx context.Context, req dto.ItemRequest) (res dto.ItemResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".AddItem")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	stay, err := s.quoter.Quote(ctx, req.StayRequest)
	if err != nil {
		return res, err
	}

	cart, err := s.liveCart(ctx)
	if err != nil {
		return res, err
	}

	item := req.ToModel(cart.ID, shared.Actor(ctx), stay.CheckIn, stay.CheckOut)

	if err = s.itemRepo.Insert(ctx, item); err != nil {
		log.Error().Err(err).Msg("failed to add cart item")

		return res, fmt.Errorf("failed to add cart item: %w", err)
	}

	res.FromModel(item)

	return res, nil
}

func (s *serviceImpl) UpdateItem(ctx context.Context, req dto.ItemRequest, itemID string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".UpdateItem")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	filter, err := s.ownedItem(ctx, itemID)
	if err != nil {
		return err
	}

	stay, err := s.quoter.Quote(ctx, req.StayRequest)
	if err != nil {
		return err
	}

	if err = s.itemRepo.Update(ctx, req.ToFields(shared.Actor(ctx), stay.CheckIn, stay.CheckOut), filter); err != nil {
		log.Error().Err(err).Msg("failed to update cart item")

		return fmt.Errorf("failed to update cart item: %w", err)
	}

	return nil
}

func (s *serviceImpl) RemoveItem(ctx context.Context, itemID string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".RemoveItem")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	filter, err := s.ownedItem(ctx, itemID)
	if err != nil {
		return err
	}

	if err = s.itemRepo.Update(ctx, dto.SoftDeleteFields(shared.Actor(ctx)), filter); err != nil {
		log.Error().Err(err).Msg("failed to remove cart item")

		return fmt.Errorf("failed to remove cart item: %w", err)
	}

	return nil
}

// Clear soft deletes the live cart and its items. The next read starts a fresh cart.
func (s *serviceImpl) Clear(ctx context.Context) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Clear")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cart, err := s.repo.Get(ctx, dto.FilterLiveCart(shared.UserID(ctx)))
	if err != nil {
		log.Error().Err(err).Msg("failed to get cart")

		return fmt.Errorf("failed to get cart: %w", err)
	}

	if cart.ID == constant.Empty {
		return nil
	}

	fields := dto.SoftDeleteFields(shared.Actor(ctx))

	err = s.transactor.WithTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		if err := s.itemRepo.UpdateTx(ctx, tx, fields, dto.FilterLiveItems(cart.ID)); err != nil {
			log.Error().Err(err).Msg("failed to clear cart items")

			return fmt.Errorf("failed to clear cart items: %w", err)
		}

		if err := s.repo.UpdateTx(ctx, tx, fields, shared.FilterByID(cart.ID, model.FieldID, model.TableName)); err != nil {
			log.Error().Err(err).Msg("failed to clear cart")

			return fmt.Errorf("failed to clear cart: %w", err)
		}

		return nil
	})

	return err //nolint:wrapcheck
}

// liveCart returns the caller's live cart, creating it on first use.
func (s *serviceImpl) liveCart(ctx context.Context) (model.Cart, error) {
	userID := shared.UserID(ctx)
	filter := dto.FilterLiveCart(userID)

	cart, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get cart")

		return cart, fmt.Errorf("failed to get cart: %w", err)
	}

	if cart.ID != constant.Empty {
		return cart, nil
	}

	cart = model.Cart{
		ID:         uuid.NewString(),
		CustomerID: userID,
		Metadata:   gModel.NewMetadata(timezone.Now(), userID),
	}

	err = s.repo.Insert(ctx, cart)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == constant.PqErrorCodeUniqueViolation {
		// a concurrent request created the cart first
		return s.repo.Get(ctx, filter)
	}

	if err != nil {
		log.Error().Err(err).Msg("failed to create cart")

		return cart, fmt.Errorf("failed to create cart: %w", err)
	}

	return cart, nil
}

func (s *serviceImpl) ownedItem(ctx context.Context, itemID string) (gDto.FilterGroup, error) {
	cart, err := s.repo.Get(ctx, dto.FilterLiveCart(shared.UserID(ctx)))
	if err != nil {
		log.Error().Err(err).Msg("failed to get cart")

		return gDto.FilterGroup{}, fmt.Errorf("failed to get cart: %w", err)
	}

	if cart.ID == constant.Empty {
		return gDto.FilterGroup{}, failure.NotFound("cart item not found")
	}

	filter := dto.FilterLiveItems(cart.ID, itemID)

	item, err := s.itemRepo.Get(ctx, filter, model.FieldID)
	if err != nil {
		log.Error().Err(err).Msg("failed to get cart item")

		return filter, fmt.Errorf("failed to get cart item: %w", err)
	}

	if item.ID == constant.Empty {
		return filter, failure.NotFound("cart item not found")
	}

	return filter, nil
}
