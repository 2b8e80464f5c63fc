package service

import (
	"context"
	"encoding/json"
	"fmt"
	"homestay/config"
	"homestay/infras/kafka"
	"homestay/infras/metrics"
	"homestay/infras/otel"
	"homestay/infras/pusher"
	"homestay/internal/domains/outbox/model"
	"homestay/internal/domains/outbox/repository"
	"homestay/shared"
	"homestay/shared/constant"
	"homestay/shared/timezone"
	"homestay/shared/transaction"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const (
	defaultBatchSize    = 50
	defaultMaxAttempts  = 5
	defaultPollInterval = 2 * time.Second
	defaultBackoffBase  = 5 * time.Second
	defaultBackoffMax   = 5 * time.Minute

	headerEventType     = "event_type"
	headerChannel       = "channel"
	headerAggregateType = "aggregate_type"
)

type Relay interface {
	Dispatch(ctx context.Context) (sent, failed int, err error)
	Run(ctx context.Context)
}

type relayImpl struct {
	repo       repository.Event
	transactor transaction.Transactor
	publisher  pusher.Publisher
	producer   kafka.Producer
	metrics    *metrics.Metrics
	cfg        *config.Config
	otel       otel.Otel
}

func New(
	repo repository.Event,
	transactor transaction.Transactor,
	publisher pusher.Publisher,
	producer kafka.Producer,
	metrics *metrics.Metrics,
	cfg *config.Config,
	otel otel.Otel,
) Relay {
	return &relayImpl{
		repo:       repo,
		transactor: transactor,
		publisher:  publisher,
		producer:   producer,
		metrics:    metrics,
		cfg:        cfg,
		otel:       otel,
	}
}

// Backoff doubles base for every attempt after the first, capped at maxDelay.
func Backoff(attempts int, base, maxDelay time.Duration) time.Duration {
	delay := base

	for i := 1; i < attempts && delay < maxDelay; i++ {
		delay *= 2
	}

	return min(delay, maxDelay)
}

// Dispatch publishes one batch of due events. Delivery is at least once: a batch whose
// status update fails is rolled back and published again on the next run.
func (s *relayImpl) Dispatch(ctx context.Context) (sent, failed int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Dispatch")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	err = s.transactor.WithTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		events, err := s.repo.ClaimDueTx(ctx, tx, timezone.Now(), s.batchSize())
		if err != nil {
			return err
		}

		for _, event := range events {
			if pubErr := s.publish(ctx, event); pubErr != nil {
				log.Warn().Err(pubErr).Str("event_id", event.ID).Int("attempts", event.Attempts+1).Msg("failed to publish outbox event")

				if err := s.markFailure(ctx, tx, event, pubErr); err != nil {
					return err
				}

				failed++

				continue
			}

			if err := s.markSent(ctx, tx, event); err != nil {
				return err
			}

			sent++
		}

		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to dispatch outbox events")

		return 0, 0, fmt.Errorf("failed to dispatch outbox events: %w", err)
	}

	s.metrics.IncOutbox(model.StatusSent, sent)
	s.metrics.IncOutbox(model.StatusFailed, failed)

	return sent, failed, nil
}

// Run dispatches on every poll interval until ctx is done.
func (s *relayImpl) Run(ctx context.Context) {
	interval := time.Duration(s.cfg.Outbox.PollIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = defaultPollInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info().Dur("interval", interval).Msg("outbox relay started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("outbox relay stopped")

			return
		case <-ticker.C:
			sent, failed, err := s.Dispatch(ctx)
			if err != nil {
				continue
			}

			if sent+failed > 0 {
				log.Debug().Int("sent", sent).Int("failed", failed).Msg("outbox batch dispatched")
			}
		}
	}
}

func (s *relayImpl) publish(ctx context.Context, event model.Event) error {
	if err := s.publisher.Trigger(ctx, event.Channel, event.EventType, json.RawMessage(event.Payload)); err != nil {
		return err
	}

	if !s.cfg.Kafka.Enable {
		return nil
	}

	return s.producer.SendMessages(ctx, s.cfg.Kafka.Topic, kafka.Message{
		Key:   event.AggregateID,
		Value: event.Payload,
		Headers: map[string]string{
			headerEventType:     event.EventType,
			headerChannel:       event.Channel,
			headerAggregateType: event.AggregateType,
		},
	})
}

func (s *relayImpl) markSent(ctx context.Context, tx *sqlx.Tx, event model.Event) error {
	now := timezone.Now()

	fields := map[string]any{
		model.FieldStatus:        model.StatusSent,
		model.FieldAttempts:      event.Attempts + 1,
		model.FieldSentAt:        now,
		constant.FieldModifiedAt: now,
		constant.FieldModifiedBy: constant.ContextCron,
	}

	return s.repo.UpdateTx(ctx, tx, fields, shared.FilterByID(event.ID, model.FieldID, model.TableName))
}

func (s *relayImpl) markFailure(ctx context.Context, tx *sqlx.Tx, event model.Event, pubErr error) error {
	now := timezone.Now()
	attempts := event.Attempts + 1
	lastError := pubErr.Error()

	fields := map[string]any{
		model.FieldAttempts:      attempts,
		model.FieldLastError:     lastError,
		constant.FieldModifiedAt: now,
		constant.FieldModifiedBy: constant.ContextCron,
	}

	if attempts >= s.maxAttempts() {
		fields[model.FieldStatus] = model.StatusFailed
	} else {
		fields[model.FieldNextAttemptAt] = now.Add(Backoff(attempts, s.backoffBase(), s.backoffMax()))
	}

	return s.repo.UpdateTx(ctx, tx, fields, shared.FilterByID(event.ID, model.FieldID, model.TableName))
}

func (s *relayImpl) batchSize() int {
	if s.cfg.Outbox.BatchSize > 0 {
		return s.cfg.Outbox.BatchSize
	}

	return defaultBatchSize
}

func (s *relayImpl) maxAttempts() int {
	if s.cfg.Outbox.MaxAttempts > 0 {
		return s.cfg.Outbox.MaxAttempts
	}

	return defaultMaxAttempts
}

func (s *relayImpl) backoffBase() time.Duration {
	if s.cfg.Outbox.BackoffBaseSeconds > 0 {
		return time.Duration(s.cfg.Outbox.BackoffBaseSeconds) * time.Second
	}

	return defaultBackoffBase
}

func (s *relayImpl) backoffMax() time.Duration {
	if s.cfg.Outbox.BackoffMaxSeconds > 0 {
		return time.Duration(s.cfg.Outbox.BackoffMaxSeconds) * time.Second
	}

	return defaultBackoffMax
}
