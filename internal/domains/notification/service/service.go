package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Notification=MockNotificationService

import (
	"context"
	"encoding/json"
	"fmt"
	"homestay/infras/otel"
	"homestay/infras/pusher"
	"homestay/internal/domains/notification/model"
	"homestay/internal/domains/notification/model/dto"
	"homestay/internal/domains/notification/repository"
	outboxModel "homestay/internal/domains/outbox/model"
	outboxRepo "homestay/internal/domains/outbox/repository"
	"homestay/shared"
	"homestay/shared/constant"
	gDto "homestay/shared/dto"
	"homestay/shared/failure"
	gModel "homestay/shared/model"
	"homestay/shared/timezone"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// Notifier records a notification inside the caller's transaction. Delivery to the
// realtime channel happens later through the outbox.
type Notifier interface {
	NotifyTx(ctx context.Context, tx *sqlx.Tx, notice dto.Notice) error
}

type Notification interface {
	Notifier
	GetMine(ctx context.Context, req gDto.QueryParams, unreadOnly bool) (dto.GetNotificationsResponse, error)
	CountUnread(ctx context.Context) (dto.UnreadCountResponse, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) error
}

type serviceImpl struct {
	repo       repository.Notification
	outboxRepo outboxRepo.Event
	otel       otel.Otel
}

func New(repo repository.Notification, outboxRepo outboxRepo.Event, otel otel.Otel) Notification {
	return &serviceImpl{
		repo:       repo,
		outboxRepo: outboxRepo,
		otel:       otel,
	}
}

func (s *serviceImpl) NotifyTx(ctx context.Context, tx *sqlx.Tx, notice dto.Notice) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".NotifyTx")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	actor := shared.Actor(ctx)
	notification := notice.ToModel(actor)

	if err = s.repo.InsertTx(ctx, tx, notification); err != nil {
		log.Error().Err(err).Msg("failed to insert notification")

		return fmt.Errorf("failed to insert notification: %w", err)
	}

	var payload dto.NotificationResponse
	payload.FromModel(notification)

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode notification payload: %w", err)
	}

	now := timezone.Now()

	event := outboxModel.Event{
		ID:            uuid.NewString(),
		AggregateType: model.EntityName,
		AggregateID:   notification.ID,
		EventType:     model.EventName,
		Channel:       pusher.UserChannel(notice.UserID),
		Payload:       string(raw),
		Status:        outboxModel.StatusPending,
		NextAttemptAt: now,
		Metadata:      gModel.NewMetadata(now, actor),
	}

	if err = s.outboxRepo.InsertTx(ctx, tx, event); err != nil {
		log.Error().Err(err).Msg("failed to insert notification outbox event")

		return fmt.Errorf("failed to insert notification outbox event: %w", err)
	}

	return nil
}

func (s *serviceImpl) GetMine(ctx context.Context, req gDto.QueryParams, unreadOnly bool) (res dto.GetNotificationsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetMine")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	filter := dto.FilterByUser(shared.UserID(ctx), unreadOnly)

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count notifications")

		return res, fmt.Errorf("failed to count notifications: %w", err)
	}

	if req.SortBy == constant.Empty {
		req.SortBy, req.SortDir = constant.FieldCreatedAt, gDto.SortDirDesc
	}

	notifications, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get notifications")

		return res, fmt.Errorf("failed to get notifications: %w", err)
	}

	res.FromModels(notifications, total, req.Limit)

	return res, nil
}

func (s *serviceImpl) CountUnread(ctx context.Context) (res dto.UnreadCountResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".CountUnread")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if res.Unread, err = s.repo.Count(ctx, dto.FilterByUser(shared.UserID(ctx), true)); err != nil {
		log.Error().Err(err).Msg("failed to count unread notifications")

		return res, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return res, nil
}

func (s *serviceImpl) MarkRead(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".MarkRead")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	filter := dto.FilterByUser(shared.UserID(ctx), false)
	filter.Filters = append(filter.Filters, gDto.Filter{Field: model.FieldID, Operator: gDto.FilterOperatorEq, Value: id, Table: model.TableName})

	affected, err := s.repo.UpdateAffected(ctx, s.readFields(ctx), filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to mark notification read")

		return fmt.Errorf("failed to mark notification read: %w", err)
	}

	if affected == 0 {
		return failure.NotFound("notification not found")
	}

	return nil
}

func (s *serviceImpl) MarkAllRead(ctx context.Context) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".MarkAllRead")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if _, err = s.repo.UpdateAffected(ctx, s.readFields(ctx), dto.FilterByUser(shared.UserID(ctx), true)); err != nil {
		log.Error().Err(err).Msg("failed to mark notifications read")

		return fmt.Errorf("failed to mark notifications read: %w", err)
	}

	return nil
}

func (s *serviceImpl) readFields(ctx context.Context) map[string]any {
	return map[string]any{
		model.FieldRead:          true,
		constant.FieldModifiedAt: timezone.Now(),
		constant.FieldModifiedBy: shared.Actor(ctx),
	}
}
