package service

import (
	"context"
	"errors"
	"fmt"
	"homestay/config"
	"homestay/infras/otel"
	"homestay/infras/s3"
	"homestay/internal/domains/homestay/model"
	"homestay/internal/domains/homestay/model/dto"
	"homestay/internal/domains/homestay/repository"
	"homestay/shared"
	"homestay/shared/cache"
	"homestay/shared/constant"
	gDto "homestay/shared/dto"
	"homestay/shared/failure"
	"homestay/shared/timezone"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetHomestay    = "homestay:get"
	cacheGetAllHomestay = "homestay:gets"
)

type Homestay interface {
	Create(ctx context.Context, req dto.CreateHomestayRequest) (dto.HomestayResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, search dto.SearchRequest) (dto.GetHomestaysResponse, error)
	Get(ctx context.Context, id string) (dto.HomestayResponse, error)
	Update(ctx context.Context, req dto.UpdateHomestayRequest, id string) error
	Delete(ctx context.Context, id string) error
	UploadImage(ctx context.Context, req dto.UploadImageRequest, id string) (dto.UploadImageResponse, error)
	RemoveImage(ctx context.Context, req dto.RemoveImageRequest, id string) error
}

type serviceImpl struct {
	repo    repository.Homestay
	cfg     *config.Config
	cache   cache.RedisCache
	otel    otel.Otel
	storage s3.Storage
}

func New(repo repository.Homestay, cfg *config.Config, cache cache.RedisCache, otel otel.Otel, storage s3.Storage) Homestay {
	return &serviceImpl{
		repo:    repo,
		cfg:     cfg,
		cache:   cache,
		otel:    otel,
		storage: storage,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateHomestayRequest) (res dto.HomestayResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	homestay := req.ToModel(shared.UserID(ctx))

	if err = s.repo.Insert(ctx, homestay); err != nil {
		log.Error().Err(err).Msg("failed to create homestay")

		return res, fmt.Errorf("failed to create homestay: %w", err)
	}

	go func() {
		shared.InvalidateCaches(context.WithoutCancel(ctx), s.cache, cacheGetAllHomestay)
	}()

	res.FromModel(homestay)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, search dto.SearchRequest) (res dto.GetHomestaysResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	filter := search.ToFilterGroup()
	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllHomestay, req, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for homestays")

		return res, nil
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count homestays")

		return res, fmt.Errorf("failed to count homestays: %w", err)
	}

	homestays, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get homestays")

		return res, fmt.Errorf("failed to get homestays: %w", err)
	}

	res.FromModels(homestays, total, req.Limit)

	go func() {
		if err := s.cache.Save(context.WithoutCancel(ctx), cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save homestays to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.HomestayResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(cacheGetHomestay, id)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for homestay")

		return res, nil
	}

	homestay, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	res.FromModel(homestay)

	go func() {
		if err := s.cache.Save(context.WithoutCancel(ctx), cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save homestay to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateHomestayRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if req == (dto.UpdateHomestayRequest{}) {
		return failure.BadRequestFromString("update request cannot be empty")
	}

	if _, err = s.findManaged(ctx, id); err != nil {
		return err
	}

	fields := shared.TransformFields(req, shared.Actor(ctx))
	if err = s.repo.Update(ctx, fields, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to update homestay")

		return fmt.Errorf("failed to update homestay: %w", err)
	}

	s.invalidate(ctx, id)

	return nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	homestay, err := s.findManaged(ctx, id)
	if err != nil {
		return err
	}

	if err = s.repo.Delete(ctx, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == constant.PqErrorCodeFkViolation {
			return failure.Conflict("homestay has bookings, deactivate it instead")
		}

		log.Error().Err(err).Msg("failed to delete homestay")

		return fmt.Errorf("failed to delete homestay: %w", err)
	}

	s.invalidate(ctx, id)

	go func() {
		c := context.WithoutCancel(ctx)

		for _, url := range homestay.Images {
			if err := s.storage.DeleteByURL(c, url); err != nil {
				log.Error().Err(err).Str("url", url).Msg("failed to delete homestay image")
			}
		}
	}()

	return nil
}

func (s *serviceImpl) UploadImage(ctx context.Context, req dto.UploadImageRequest, id string) (res dto.UploadImageResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".UploadImage")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	homestay, err := s.findManaged(ctx, id)
	if err != nil {
		return res, err
	}

	url, err := s.storage.Upload(ctx, s3.Object{
		Directory:   model.EntityName + "/" + id,
		FileName:    uuid.NewString() + strings.ToLower(filepath.Ext(req.Image.Filename)),
		ContentType: req.Image.Header.Get(constant.RequestHeaderContentType),
		Body:        req.ImageFile,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to upload homestay image")

		return res, fmt.Errorf("failed to upload homestay image: %w", err)
	}

	images := append(slices.Clone(homestay.Images), url)

	if err = s.saveImages(ctx, id, images); err != nil {
		if err := s.storage.DeleteByURL(context.WithoutCancel(ctx), url); err != nil {
			log.Error().Err(err).Str("url", url).Msg("failed to remove orphan homestay image")
		}

		return res, err
	}

	res.URL = url
	res.Images = images

	return res, nil
}

func (s *serviceImpl) RemoveImage(ctx context.Context, req dto.RemoveImageRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".RemoveImage")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	homestay, err := s.findManaged(ctx, id)
	if err != nil {
		return err
	}

	idx := slices.Index(homestay.Images, req.URL)
	if idx < 0 {
		return failure.NotFound("image not found")
	}

	if err = s.saveImages(ctx, id, slices.Delete(slices.Clone(homestay.Images), idx, idx+1)); err != nil {
		return err
	}

	go func() {
		if err := s.storage.DeleteByURL(context.WithoutCancel(ctx), req.URL); err != nil {
			log.Error().Err(err).Str("url", req.URL).Msg("failed to delete homestay image")
		}
	}()

	return nil
}

func (s *serviceImpl) saveImages(ctx context.Context, id string, images []string) error {
	fields := map[string]any{
		model.FieldImages:        pq.StringArray(images),
		constant.FieldModifiedAt: timezone.Now(),
		constant.FieldModifiedBy: shared.Actor(ctx),
	}

	if err := s.repo.Update(ctx, fields, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to update homestay images")

		return fmt.Errorf("failed to update homestay images: %w", err)
	}

	s.invalidate(ctx, id)

	return nil
}

func (s *serviceImpl) find(ctx context.Context, id string) (model.Homestay, error) {
	homestay, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get homestay")

		return homestay, fmt.Errorf("failed to get homestay: %w", err)
	}

	if homestay.ID == constant.Empty {
		return homestay, failure.NotFound("homestay not found")
	}

	return homestay, nil
}

// findManaged loads a homestay the caller owns, or any homestay for an admin.
func (s *serviceImpl) findManaged(ctx context.Context, id string) (model.Homestay, error) {
	homestay, err := s.find(ctx, id)
	if err != nil {
		return homestay, err
	}

	if !shared.CanManage(ctx, homestay.OwnerID) {
		return homestay, failure.ResourceRestrictedError
	}

	return homestay, nil
}

func (s *serviceImpl) invalidate(ctx context.Context, id string) {
	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetHomestay, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete homestay cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllHomestay)
	}()
}
