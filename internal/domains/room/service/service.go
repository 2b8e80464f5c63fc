package service

import (
	"context"
	"errors"
	"fmt"
	"homestay/config"
	"homestay/infras/otel"
	homestayModel "homestay/internal/domains/homestay/model"
	homestayRepo "homestay/internal/domains/homestay/repository"
	"homestay/internal/domains/room/model"
	"homestay/internal/domains/room/model/dto"
	"homestay/internal/domains/room/repository"
	"homestay/shared"
	"homestay/shared/cache"
	"homestay/shared/constant"
	gDto "homestay/shared/dto"
	"homestay/shared/failure"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetRoom    = "room:get"
	cacheGetAllRoom = "room:gets"
)

type Room interface {
	Create(ctx context.Context, req dto.CreateRoomRequest) (dto.RoomResponse, error)
	GetAllByHomestay(ctx context.Context, req gDto.QueryParams, homestayID string) (dto.GetRoomsResponse, error)
	Get(ctx context.Context, id string) (dto.RoomResponse, error)
	Update(ctx context.Context, req dto.UpdateRoomRequest, id string) error
	Delete(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo         repository.Room
	homestayRepo homestayRepo.Homestay
	cfg          *config.Config
	cache        cache.RedisCache
	otel         otel.Otel
}

func New(repo repository.Room, homestayRepo homestayRepo.Homestay, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Room {
	return &serviceImpl{
		repo:         repo,
		homestayRepo: homestayRepo,
		cfg:          cfg,
		cache:        cache,
		otel:         otel,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateRoomRequest) (res dto.RoomResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = s.authorize(ctx, req.HomestayID); err != nil {
		return res, err
	}

	room := req.ToModel(shared.Actor(ctx))

	if err = s.repo.Insert(ctx, room); err != nil {
		log.Error().Err(err).Msg("failed to create room")

		return res, fmt.Errorf("failed to create room: %w", err)
	}

	go func() {
		shared.InvalidateCaches(context.WithoutCancel(ctx), s.cache, cacheGetAllRoom)
	}()

	res.FromModel(room)

	return res, nil
}

func (s *serviceImpl) GetAllByHomestay(ctx context.Context, req gDto.QueryParams, homestayID string) (res dto.GetRoomsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAllByHomestay")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	filter := dto.FilterByHomestay(homestayID, false)
	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllRoom, req, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for rooms")

		return res, nil
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count rooms")

		return res, fmt.Errorf("failed to count rooms: %w", err)
	}

	rooms, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get rooms")

		return res, fmt.Errorf("failed to get rooms: %w", err)
	}

	res.FromModels(rooms, total, req.Limit)

	go func() {
		if err := s.cache.Save(context.WithoutCancel(ctx), cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save rooms to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.RoomResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(cacheGetRoom, id)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		return res, nil
	}

	room, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	res.FromModel(room)

	go func() {
		if err := s.cache.Save(context.WithoutCancel(ctx), cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save room to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateRoomRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if req == (dto.UpdateRoomRequest{}) {
		return failure.BadRequestFromString("update request cannot be empty")
	}

	room, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	if err = s.authorize(ctx, room.HomestayID); err != nil {
		return err
	}

	fields := shared.TransformFields(req, shared.Actor(ctx))
	if err = s.repo.Update(ctx, fields, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to update room")

		return fmt.Errorf("failed to update room: %w", err)
	}

	s.invalidate(ctx, id)

	return nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	room, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	if err = s.authorize(ctx, room.HomestayID); err != nil {
		return err
	}

	if err = s.repo.Delete(ctx, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == constant.PqErrorCodeFkViolation {
			return failure.Conflict("room has bookings, deactivate it instead")
		}

		log.Error().Err(err).Msg("failed to delete room")

		return fmt.Errorf("failed to delete room: %w", err)
	}

	s.invalidate(ctx, id)

	return nil
}

func (s *serviceImpl) find(ctx context.Context, id string) (model.Room, error) {
	room, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get room")

		return room, fmt.Errorf("failed to get room: %w", err)
	}

	if room.ID == constant.Empty {
		return room, failure.NotFound("room not found")
	}

	return room, nil
}

// authorize checks that the caller manages the homestay the room belongs to.
func (s *serviceImpl) authorize(ctx context.Context, homestayID string) error {
	homestay, err := s.homestayRepo.Get(ctx, shared.FilterByID(homestayID, homestayModel.FieldID, homestayModel.TableName),
		homestayModel.FieldID, homestayModel.FieldOwnerID)
	if err != nil {
		log.Error().Err(err).Msg("failed to get homestay")

		return fmt.Errorf("failed to get homestay: %w", err)
	}

	if homestay.ID == constant.Empty {
		return failure.NotFound("homestay not found")
	}

	if !shared.CanManage(ctx, homestay.OwnerID) {
		return failure.ResourceRestrictedError
	}

	return nil
}

func (s *serviceImpl) invalidate(ctx context.Context, id string) {
	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetRoom, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete room cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllRoom)
	}()
}
