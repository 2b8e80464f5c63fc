package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Booking=MockBookingService

import (
	"context"
	"fmt"
	"homestay/infras/metrics"
	"homestay/infras/otel"
	"homestay/internal/domains/booking/model"
	"homestay/internal/domains/booking/model/dto"
	"homestay/internal/domains/booking/repository"
	homestayModel "homestay/internal/domains/homestay/model"
	homestayRepo "homestay/internal/domains/homestay/repository"
	notificationModel "homestay/internal/domains/notification/model"
	notificationDto "homestay/internal/domains/notification/model/dto"
	notificationService "homestay/internal/domains/notification/service"
	paymentModel "homestay/internal/domains/payment/model"
	paymentRepo "homestay/internal/domains/payment/repository"
	"homestay/shared"
	"homestay/shared/constant"
	gDto "homestay/shared/dto"
	"homestay/shared/failure"
	"homestay/shared/timezone"
	"homestay/shared/transaction"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

var cancellable = []string{model.StatusPending, model.StatusPaid, model.StatusConfirmed}

type Booking interface {
	GetMine(ctx context.Context, req gDto.QueryParams, filter dto.BookingFilter) (dto.GetBookingsResponse, error)
	GetOwned(ctx context.Context, req gDto.QueryParams, filter dto.BookingFilter) (dto.GetBookingsResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter dto.BookingFilter) (dto.GetBookingsResponse, error)
	Get(ctx context.Context, id string) (dto.BookingResponse, error)
	Cancel(ctx context.Context, id string) (dto.BookingResponse, error)
	UpdateStatus(ctx context.Context, req dto.UpdateStatusRequest, id string) (dto.BookingResponse, error)
	CompleteDue(ctx context.Context) (dto.CompleteDueResponse, error)
	Export(ctx context.Context, filter dto.BookingFilter) ([]byte, error)
}

type serviceImpl struct {
	repo         repository.Booking
	itemRepo     repository.Item
	paymentRepo  paymentRepo.Payment
	homestayRepo homestayRepo.Homestay
	transactor   transaction.Transactor
	notifier     notificationService.Notifier
	metrics      *metrics.Metrics
	otel         otel.Otel
}

func New(
	repo repository.Booking,
	itemRepo repository.Item,
	paymentRepo paymentRepo.Payment,
	homestayRepo homestayRepo.Homestay,
	transactor transaction.Transactor,
	notifier notificationService.Notifier,
	metrics *metrics.Metrics,
	otel otel.Otel,
) Booking {
	return &serviceImpl{
		repo:         repo,
		itemRepo:     itemRepo,
		paymentRepo:  paymentRepo,
		homestayRepo: homestayRepo,
		transactor:   transactor,
		notifier:     notifier,
		metrics:      metrics,
		otel:         otel,
	}
}

func (s *serviceImpl) GetMine(ctx context.Context, req gDto.QueryParams, filter dto.BookingFilter) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetMine")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	filter.CustomerID = shared.UserID(ctx)

	return s.list(ctx, req, filter.ToFilterGroup())
}

// GetOwned lists the bookings of every homestay the caller owns.
func (s *serviceImpl) GetOwned(ctx context.Context, req gDto.QueryParams, filter dto.BookingFilter) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetOwned")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	homestays, err := s.homestayRepo.GetAll(ctx, gDto.QueryParams{},
		shared.FilterByID(shared.UserID(ctx), homestayModel.FieldOwnerID, homestayModel.TableName), homestayModel.FieldID)
	if err != nil {
		log.Error().Err(err).Msg("failed to get owned homestays")

		return res, fmt.Errorf("failed to get owned homestays: %w", err)
	}

	if len(homestays) == 0 {
		res.FromModels(nil, 0, req.Limit)

		return res, nil
	}

	ids := make([]string, len(homestays))
	for i, homestay := range homestays {
		ids[i] = homestay.ID
	}

	group := filter.ToFilterGroup()
	group.Filters = append(group.Filters, shared.FilterByIDs(ids, model.FieldHomestayID, model.TableName))

	return s.list(ctx, req, group)
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter dto.BookingFilter) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return s.list(ctx, req, filter.ToFilterGroup())
}

func (s *serviceImpl) list(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetBookingsResponse, err error) {
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	if req.SortBy == constant.Empty {
		req.SortBy, req.SortDir = constant.FieldCreatedAt, gDto.SortDirDesc
	}

	bookings, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return res, fmt.Errorf("failed to get bookings: %w", err)
	}

	res.FromModels(bookings, total, req.Limit)

	if err = s.attachDetails(ctx, res.Bookings); err != nil {
		return res, err
	}

	return res, nil
}

// attachDetails loads homestay names, items and payments for a page of bookings in three queries.
func (s *serviceImpl) attachDetails(ctx context.Context, bookings []dto.BookingResponse) error {
	if len(bookings) == 0 {
		return nil
	}

	bookingIDs := make([]string, len(bookings))
	homestayIDs := make([]string, 0, len(bookings))
	seen := map[string]bool{}

	for i, booking := range bookings {
		bookingIDs[i] = booking.ID

		if !seen[booking.HomestayID] {
			seen[booking.HomestayID] = true
			homestayIDs = append(homestayIDs, booking.HomestayID)
		}
	}

	homestays, err := s.homestayRepo.GetAll(ctx, gDto.QueryParams{},
		shared.FilterByIDs(homestayIDs, homestayModel.FieldID, homestayModel.TableName), homestayModel.FieldID, homestayModel.FieldName)
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking homestays")

		return fmt.Errorf("failed to get booking homestays: %w", err)
	}

	items, err := s.itemRepo.GetAll(ctx, gDto.QueryParams{}, shared.FilterByIDs(bookingIDs, model.FieldItemBookingID, model.ItemTableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking items")

		return fmt.Errorf("failed to get booking items: %w", err)
	}

	payments, err := s.paymentRepo.GetAll(ctx, gDto.QueryParams{}, shared.FilterByIDs(bookingIDs, paymentModel.FieldBookingID, paymentModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking payments")

		return fmt.Errorf("failed to get booking payments: %w", err)
	}

	names := make(map[string]string, len(homestays))
	for _, homestay := range homestays {
		names[homestay.ID] = homestay.Name
	}

	itemsByBooking := map[string][]model.Item{}
	for _, item := range items {
		itemsByBooking[item.BookingID] = append(itemsByBooking[item.BookingID], item)
	}

	paymentByBooking := make(map[string]*paymentModel.Payment, len(payments))
	for i := range payments {
		paymentByBooking[payments[i].BookingID] = &payments[i]
	}

	for i := range bookings {
		id := bookings[i].ID
		bookings[i].WithDetails(names[bookings[i].HomestayID], itemsByBooking[id], paymentByBooking[id])
	}

	return nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	booking, homestay, err := s.findVisible(ctx, id)
	if err != nil {
		return res, err
	}

	return s.respond(ctx, booking, homestay)
}

// Cancel is the customer path. Owners go through UpdateStatus.
func (s *serviceImpl) Cancel(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Cancel")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	booking, homestay, err := s.findVisible(ctx, id)
	if err != nil {
		return res, err
	}

	if booking.CustomerID != shared.UserID(ctx) && shared.UserRole(ctx) != constant.RoleAdmin {
		return res, failure.ResourceRestrictedError
	}

	fields := s.statusFields(ctx, model.StatusCancelled)

	err = s.transactor.WithTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		affected, err := s.repo.UpdateTxAffected(ctx, tx, fields, filterStatusIn(id, cancellable...))
		if err != nil {
			log.Error().Err(err).Msg("failed to cancel booking")

			return fmt.Errorf("failed to cancel booking: %w", err)
		}

		if affected == 0 {
			current, err := s.repo.GetTx(ctx, tx, shared.FilterByID(id, model.FieldID, model.TableName), model.FieldStatus)
			if err != nil {
				return fmt.Errorf("failed to reload booking: %w", err)
			}

			return rejectCancel(current.Status)
		}

		return s.notifier.NotifyTx(ctx, tx, notificationDto.Notice{
			UserID: homestay.OwnerID,
			Type:   notificationModel.TypeBookingCancelled,
			Title:  "Booking cancelled",
			Body:   fmt.Sprintf("Booking %s at %s was cancelled by the guest", booking.BookingNumber, homestay.Name),
		})
	})
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	s.metrics.BookingsCancelled.Inc()

	booking.Status = model.StatusCancelled
	cancelledAt, _ := fields[model.FieldCancelledAt].(time.Time)
	booking.CancelledAt = &cancelledAt

	return s.respond(ctx, booking, homestay)
}

func rejectCancel(status string) error {
	switch status {
	case model.StatusCancelled:
		return failure.BadRequestFromString("booking is already cancelled")
	case model.StatusCompleted:
		return failure.BadRequestFromString("completed booking cannot be cancelled")
	default:
		return failure.Conflict("booking changed while cancelling, retry")
	}
}

// UpdateStatus lets the homestay owner confirm or cancel a booking.
func (s *serviceImpl) UpdateStatus(ctx context.Context, req dto.UpdateStatusRequest, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".UpdateStatus")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	booking, homestay, err := s.findVisible(ctx, id)
	if err != nil {
		return res, err
	}

	if !shared.CanManage(ctx, homestay.OwnerID) {
		return res, failure.ResourceRestrictedError
	}

	if !model.CanTransition(booking.Status, req.Status) {
		return res, failure.BadRequestFromString(fmt.Sprintf("booking cannot move from %s to %s", booking.Status, req.Status))
	}

	fields := s.statusFields(ctx, req.Status)

	err = s.transactor.WithTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		affected, err := s.repo.UpdateTxAffected(ctx, tx, fields, filterStatusIn(id, booking.Status))
		if err != nil {
			log.Error().Err(err).Msg("failed to update booking status")

			return fmt.Errorf("failed to update booking status: %w", err)
		}

		if affected == 0 {
			return failure.Conflict("booking changed while updating, retry")
		}

		return s.notifier.NotifyTx(ctx, tx, notificationDto.Notice{
			UserID: booking.CustomerID,
			Type:   notificationModel.TypeBookingStatus,
			Title:  "Booking " + req.Status,
			Body:   fmt.Sprintf("Your booking %s at %s is now %s", booking.BookingNumber, homestay.Name, req.Status),
		})
	})
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	if req.Status == model.StatusCancelled {
		s.metrics.BookingsCancelled.Inc()

		cancelledAt, _ := fields[model.FieldCancelledAt].(time.Time)
		booking.CancelledAt = &cancelledAt
	}

	booking.Status = req.Status

	return s.respond(ctx, booking, homestay)
}

// CompleteDue moves paid bookings that check out today to COMPLETED, whether or not the owner
// confirmed them. Running it twice is harmless.
func (s *serviceImpl) CompleteDue(ctx context.Context) (res dto.CompleteDueResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".CompleteDue")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				ArgName: model.ArgCurrentStatus, Field: model.FieldStatus, Operator: gDto.FilterOperatorIn, Table: model.TableName,
				Value: []string{model.StatusPaid, model.StatusConfirmed},
			},
			gDto.Filter{
				Field: model.FieldPaymentStatus, Operator: gDto.FilterOperatorEq, Value: model.PaymentStatusPaid, Table: model.TableName,
			},
			gDto.Filter{
				Field: model.FieldCheckOut, Operator: gDto.FilterOperatorEq, Table: model.TableName,
				Value: timezone.Today().Format(constant.DateOnlyFormat),
			},
			gDto.Filter{Field: model.FieldDeleted, Operator: gDto.FilterOperatorEq, Value: false, Table: model.TableName},
		},
	}

	fields := map[string]any{
		model.FieldStatus:        model.StatusCompleted,
		constant.FieldModifiedAt: timezone.Now(),
		constant.FieldModifiedBy: constant.ContextCron,
	}

	if res.Completed, err = s.repo.UpdateAffected(ctx, fields, filter); err != nil {
		log.Error().Err(err).Msg("failed to complete due bookings")

		return res, fmt.Errorf("failed to complete due bookings: %w", err)
	}

	s.metrics.BookingsCompleted.Add(float64(res.Completed))

	log.Info().Int64("completed", res.Completed).Msg("completed due bookings")

	return res, nil
}

// findVisible loads a live booking the caller may see: its customer, the homestay owner or an admin.
func (s *serviceImpl) findVisible(ctx context.Context, id string) (booking model.Booking, homestay homestayModel.Homestay, err error) {
	filter := shared.FilterByID(id, model.FieldID, model.TableName)
	filter.Filters = append(filter.Filters,
		gDto.Filter{Field: model.FieldDeleted, Operator: gDto.FilterOperatorEq, Value: false, Table: model.TableName})

	booking, err = s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return booking, homestay, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return booking, homestay, failure.NotFound("booking not found")
	}

	homestay, err = s.homestayRepo.Get(ctx,
		shared.FilterByID(booking.HomestayID, homestayModel.FieldID, homestayModel.TableName),
		homestayModel.FieldID, homestayModel.FieldOwnerID, homestayModel.FieldName)
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking homestay")

		return booking, homestay, fmt.Errorf("failed to get booking homestay: %w", err)
	}

	if booking.CustomerID != shared.UserID(ctx) && !shared.CanManage(ctx, homestay.OwnerID) {
		return booking, homestay, failure.ResourceRestrictedError
	}

	return booking, homestay, nil
}

func (s *serviceImpl) respond(ctx context.Context, booking model.Booking, homestay homestayModel.Homestay) (res dto.BookingResponse, err error) {
	res.FromModel(booking)

	bookings := []dto.BookingResponse{res}
	if err = s.attachDetails(ctx, bookings); err != nil {
		return res, err
	}

	res = bookings[0]
	if res.HomestayName == constant.Empty {
		res.HomestayName = homestay.Name
	}

	return res, nil
}

func (s *serviceImpl) statusFields(ctx context.Context, status string) map[string]any {
	now := timezone.Now()

	fields := map[string]any{
		model.FieldStatus:        status,
		constant.FieldModifiedAt: now,
		constant.FieldModifiedBy: shared.Actor(ctx),
	}

	if status == model.StatusCancelled {
		fields[model.FieldCancelledAt] = now
	}

	return fields
}

func filterStatusIn(id string, statuses ...string) gDto.FilterGroup {
	filter := shared.FilterByID(id, model.FieldID, model.TableName)
	filter.Filters = append(filter.Filters,
		gDto.Filter{Field: model.FieldStatus, Operator: gDto.FilterOperatorIn, Value: statuses, Table: model.TableName})

	return filter
}
