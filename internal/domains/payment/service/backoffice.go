package service

import (
	"context"
	"fmt"
	bookingModel "homestay/internal/domains/booking/model"
	homestayModel "homestay/internal/domains/homestay/model"
	notificationModel "homestay/internal/domains/notification/model"
	notificationDto "homestay/internal/domains/notification/model/dto"
	"homestay/internal/domains/payment/model"
	"homestay/internal/domains/payment/model/dto"
	"homestay/shared"
	"homestay/shared/constant"
	gDto "homestay/shared/dto"
	"homestay/shared/failure"
	"homestay/shared/money"
	"homestay/shared/timezone"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

type managed struct {
	payment  model.Payment
	booking  bookingModel.Booking
	homestay homestayModel.Homestay
}

// Confirm records that a cash payment was collected by the homestay owner.
func (s *serviceImpl) Confirm(ctx context.Context, id string) (res dto.PaymentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Confirm")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	m, err := s.findManaged(ctx, id)
	if err != nil {
		return res, err
	}

	if m.payment.Method != model.MethodCash || m.payment.Status != model.StatusPending {
		return res, failure.BadRequestFromString("only a pending cash payment can be confirmed")
	}

	if m.booking.Status == bookingModel.StatusCancelled {
		return res, failure.BadRequestFromString("booking is cancelled")
	}

	now := timezone.Now()
	actor := shared.Actor(ctx)

	paymentFields := map[string]any{
		model.FieldStatus:        model.StatusPaid,
		model.FieldPaymentDate:   now,
		constant.FieldModifiedAt: now,
		constant.FieldModifiedBy: actor,
	}

	bookingFields := map[string]any{
		bookingModel.FieldPaymentStatus: bookingModel.PaymentStatusPaid,
		constant.FieldModifiedAt:        now,
		constant.FieldModifiedBy:        actor,
	}

	if m.booking.Status == bookingModel.StatusPending {
		bookingFields[bookingModel.FieldStatus] = bookingModel.StatusPaid
	}

	err = s.transactor.WithTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		if err := s.settle(ctx, tx, id, model.StatusPending, paymentFields, m.booking.ID, bookingFields); err != nil {
			return err
		}

		return s.notifier.NotifyTx(ctx, tx, notificationDto.Notice{
			UserID: m.booking.CustomerID,
			Type:   notificationModel.TypePaymentReceived,
			Title:  "Payment received",
			Body:   fmt.Sprintf("%s received for booking %s at %s", money.FormatVND(m.payment.Amount), m.booking.BookingNumber, m.homestay.Name),
		})
	})
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	m.payment.Status = model.StatusPaid
	m.payment.PaymentDate = &now
	res.FromModel(m.payment)

	return res, nil
}

// Refund returns a settled payment. The booking is cancelled unless the stay is already over.
func (s *serviceImpl) Refund(ctx context.Context, id string) (res dto.PaymentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Refund")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	m, err := s.findManaged(ctx, id)
	if err != nil {
		return res, err
	}

	if m.payment.Status != model.StatusPaid {
		return res, failure.BadRequestFromString("only a paid payment can be refunded")
	}

	now := timezone.Now()
	actor := shared.Actor(ctx)

	paymentFields := map[string]any{
		model.FieldStatus:        model.StatusRefunded,
		constant.FieldModifiedAt: now,
		constant.FieldModifiedBy: actor,
	}

	bookingFields := map[string]any{
		bookingModel.FieldPaymentStatus: bookingModel.PaymentStatusRefunded,
		constant.FieldModifiedAt:        now,
		constant.FieldModifiedBy:        actor,
	}

	cancelled := bookingModel.CanTransition(m.booking.Status, bookingModel.StatusCancelled)
	if cancelled {
		bookingFields[bookingModel.FieldStatus] = bookingModel.StatusCancelled
		bookingFields[bookingModel.FieldCancelledAt] = now
	}

	err = s.transactor.WithTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		if err := s.settle(ctx, tx, id, model.StatusPaid, paymentFields, m.booking.ID, bookingFields); err != nil {
			return err
		}

		return s.notifier.NotifyTx(ctx, tx, notificationDto.Notice{
			UserID: m.booking.CustomerID,
			Type:   notificationModel.TypePaymentRefunded,
			Title:  "Payment refunded",
			Body:   fmt.Sprintf("%s refunded for booking %s at %s", money.FormatVND(m.payment.Amount), m.booking.BookingNumber, m.homestay.Name),
		})
	})
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	if cancelled {
		s.metrics.BookingsCancelled.Inc()
	}

	m.payment.Status = model.StatusRefunded
	res.FromModel(m.payment)

	return res, nil
}

// settle moves the payment out of status "from" and applies bookingFields to its booking.
func (s *serviceImpl) settle(
	ctx context.Context,
	tx *sqlx.Tx,
	paymentID, from string,
	paymentFields map[string]any,
	bookingID string,
	bookingFields map[string]any,
) error {
	filter := shared.FilterByID(paymentID, model.FieldID, model.TableName)
	filter.Filters = append(filter.Filters,
		gDto.Filter{ArgName: model.ArgCurrentStatus, Field: model.FieldStatus, Operator: gDto.FilterOperatorEq, Value: from, Table: model.TableName})

	affected, err := s.repo.UpdateTxAffected(ctx, tx, paymentFields, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to update payment")

		return fmt.Errorf("failed to update payment: %w", err)
	}

	if affected == 0 {
		return failure.Conflict("payment changed while updating, retry")
	}

	if err = s.bookingRepo.UpdateTx(ctx, tx, bookingFields, shared.FilterByID(bookingID, bookingModel.FieldID, bookingModel.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to update payment booking")

		return fmt.Errorf("failed to update payment booking: %w", err)
	}

	return nil
}

// findManaged loads a payment with its booking and homestay, for the homestay owner or an admin.
func (s *serviceImpl) findManaged(ctx context.Context, id string) (m managed, err error) {
	if m.payment, err = s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to get payment")

		return m, fmt.Errorf("failed to get payment: %w", err)
	}

	if m.payment.ID == constant.Empty {
		return m, failure.NotFound("payment not found")
	}

	m.booking, err = s.bookingRepo.Get(ctx, shared.FilterByID(m.payment.BookingID, bookingModel.FieldID, bookingModel.TableName),
		bookingModel.FieldID, bookingModel.FieldBookingNumber, bookingModel.FieldCustomerID, bookingModel.FieldHomestayID, bookingModel.FieldStatus)
	if err != nil {
		log.Error().Err(err).Msg("failed to get payment booking")

		return m, fmt.Errorf("failed to get payment booking: %w", err)
	}

	m.homestay, err = s.homestayRepo.Get(ctx, shared.FilterByID(m.booking.HomestayID, homestayModel.FieldID, homestayModel.TableName),
		homestayModel.FieldID, homestayModel.FieldOwnerID, homestayModel.FieldName)
	if err != nil {
		log.Error().Err(err).Msg("failed to get payment homestay")

		return m, fmt.Errorf("failed to get payment homestay: %w", err)
	}

	if !shared.CanManage(ctx, m.homestay.OwnerID) {
		return m, failure.ResourceRestrictedError
	}

	return m, nil
}

// GetMine lists the payments of the caller's bookings.
func (s *serviceImpl) GetMine(ctx context.Context, req gDto.QueryParams, filter dto.PaymentFilter) (res dto.GetPaymentsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetMine")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	bookings, err := s.bookingRepo.GetAll(ctx, gDto.QueryParams{},
		shared.FilterByID(shared.UserID(ctx), bookingModel.FieldCustomerID, bookingModel.TableName), bookingModel.FieldID)
	if err != nil {
		log.Error().Err(err).Msg("failed to get customer bookings")

		return res, fmt.Errorf("failed to get customer bookings: %w", err)
	}

	if len(bookings) == 0 {
		res.FromModels(nil, 0, req.Limit)

		return res, nil
	}

	ids := make([]string, len(bookings))
	for i, booking := range bookings {
		ids[i] = booking.ID
	}

	group := filter.ToFilterGroup()
	group.Filters = append(group.Filters, shared.FilterByIDs(ids, model.FieldBookingID, model.TableName))

	return s.list(ctx, req, group)
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter dto.PaymentFilter) (res dto.GetPaymentsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return s.list(ctx, req, filter.ToFilterGroup())
}

func (s *serviceImpl) list(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetPaymentsResponse, err error) {
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count payments")

		return res, fmt.Errorf("failed to count payments: %w", err)
	}

	if req.SortBy == constant.Empty {
		req.SortBy, req.SortDir = constant.FieldCreatedAt, gDto.SortDirDesc
	}

	payments, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get payments")

		return res, fmt.Errorf("failed to get payments: %w", err)
	}

	res.FromModels(payments, total, req.Limit)

	return res, nil
}
