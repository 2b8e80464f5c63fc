package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Review=MockReviewService

import (
	"context"
	"errors"
	"fmt"
	"homestay/infras/otel"
	bookingModel "homestay/internal/domains/booking/model"
	bookingRepo "homestay/internal/domains/booking/repository"
	homestayModel "homestay/internal/domains/homestay/model"
	homestayRepo "homestay/internal/domains/homestay/repository"
	notificationModel "homestay/internal/domains/notification/model"
	notificationDto "homestay/internal/domains/notification/model/dto"
	notificationService "homestay/internal/domains/notification/service"
	"homestay/internal/domains/review/model"
	"homestay/internal/domains/review/model/dto"
	"homestay/internal/domains/review/repository"
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

type Review interface {
	Create(ctx context.Context, req dto.CreateReviewRequest) (dto.ReviewResponse, error)
	ListByHomestay(ctx context.Context, req gDto.QueryParams, homestayID string) (dto.GetReviewsResponse, error)
	Delete(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo         repository.Review
	bookingRepo  bookingRepo.Booking
	homestayRepo homestayRepo.Homestay
	transactor   transaction.Transactor
	notifier     notificationService.Notifier
	otel         otel.Otel
}

func New(
	repo repository.Review,
	bookingRepo bookingRepo.Booking,
	homestayRepo homestayRepo.Homestay,
	transactor transaction.Transactor,
	notifier notificationService.Notifier,
	otel otel.Otel,
) Review {
	return &serviceImpl{
		repo:         repo,
		bookingRepo:  bookingRepo,
		homestayRepo: homestayRepo,
		transactor:   transactor,
		notifier:     notifier,
		otel:         otel,
	}
}

// Create reviews a completed stay of the caller. A booking takes one review.
func (s *serviceImpl) Create(ctx context.Context, req dto.CreateReviewRequest) (res dto.ReviewResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user := shared.UserID(ctx)

	filter := shared.FilterByID(req.BookingID, bookingModel.FieldID, bookingModel.TableName)
	filter.Filters = append(filter.Filters,
		gDto.Filter{Field: bookingModel.FieldDeleted, Operator: gDto.FilterOperatorEq, Value: false, Table: bookingModel.TableName})

	booking, err := s.bookingRepo.Get(ctx, filter,
		bookingModel.FieldID, bookingModel.FieldBookingNumber, bookingModel.FieldCustomerID, bookingModel.FieldHomestayID, bookingModel.FieldStatus)
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return res, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return res, failure.NotFound("booking not found")
	}

	if booking.CustomerID != user {
		return res, failure.ResourceRestrictedError
	}

	if booking.Status != bookingModel.StatusCompleted {
		return res, failure.BadRequestFromString("only a completed stay can be reviewed")
	}

	homestay, err := s.homestayRepo.Get(ctx, shared.FilterByID(booking.HomestayID, homestayModel.FieldID, homestayModel.TableName),
		homestayModel.FieldID, homestayModel.FieldOwnerID, homestayModel.FieldName)
	if err != nil {
		log.Error().Err(err).Msg("failed to get homestay")

		return res, fmt.Errorf("failed to get homestay: %w", err)
	}

	review := model.Review{
		ID:         uuid.NewString(),
		BookingID:  booking.ID,
		HomestayID: booking.HomestayID,
		CustomerID: user,
		Rating:     req.Rating,
		Comment:    req.Comment,
		Metadata:   gModel.NewMetadata(timezone.Now(), user),
	}

	err = s.transactor.WithTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		if err := s.repo.InsertTx(ctx, tx, review); err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == constant.PqErrorCodeUniqueViolation {
				return failure.Conflict("booking already reviewed")
			}

			log.Error().Err(err).Msg("failed to insert review")

			return fmt.Errorf("failed to insert review: %w", err)
		}

		return s.notifier.NotifyTx(ctx, tx, notificationDto.Notice{
			UserID: homestay.OwnerID,
			Type:   notificationModel.TypeReviewCreated,
			Title:  "New review",
			Body:   fmt.Sprintf("%s rated %d/%d for booking %s", homestay.Name, review.Rating, model.MaxRating, booking.BookingNumber),
		})
	})
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	res.FromModel(review)

	return res, nil
}

func (s *serviceImpl) ListByHomestay(ctx context.Context, req gDto.QueryParams, homestayID string) (res dto.GetReviewsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ListByHomestay")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	filter := dto.FilterByHomestay(homestayID)

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count reviews")

		return res, fmt.Errorf("failed to count reviews: %w", err)
	}

	average, err := s.repo.Average(ctx, model.FieldRating, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to average ratings")

		return res, fmt.Errorf("failed to average ratings: %w", err)
	}

	if req.SortBy == constant.Empty {
		req.SortBy, req.SortDir = constant.FieldCreatedAt, gDto.SortDirDesc
	}

	reviews, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get reviews")

		return res, fmt.Errorf("failed to get reviews: %w", err)
	}

	res.FromModels(reviews, average, total, req.Limit)

	return res, nil
}

// Delete removes a review. Its author and admins may do so.
func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	review, err := s.repo.Get(ctx, filter, model.FieldID, model.FieldCustomerID)
	if err != nil {
		log.Error().Err(err).Msg("failed to get review")

		return fmt.Errorf("failed to get review: %w", err)
	}

	if review.ID == constant.Empty {
		return failure.NotFound("review not found")
	}

	if review.CustomerID != shared.UserID(ctx) && shared.UserRole(ctx) != constant.RoleAdmin {
		return failure.ResourceRestrictedError
	}

	if err = s.repo.Delete(ctx, filter); err != nil {
		log.Error().Err(err).Msg("failed to delete review")

		return fmt.Errorf("failed to delete review: %w", err)
	}

	return nil
}
