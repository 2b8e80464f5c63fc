package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"homestay/config"
	"homestay/infras/kafka"
	kafkaMocks "homestay/infras/kafka/mocks"
	"homestay/infras/metrics"
	"homestay/infras/otel/mocks"
	pusherMocks "homestay/infras/pusher/mocks"
	outboxMocks "homestay/internal/domains/outbox/mocks"
	"homestay/internal/domains/outbox/model"
	"homestay/internal/domains/outbox/service"
	gDto "homestay/shared/dto"
	"homestay/shared/timezone"
	"homestay/shared/transaction"
	txMocks "homestay/shared/transaction/mocks"
)

func TestBackoff(t *testing.T) {
	base := 5 * time.Second
	maxDelay := time.Minute

	tests := []struct {
		attempts int
		expected time.Duration
	}{
		{attempts: 0, expected: 5 * time.Second},
		{attempts: 1, expected: 5 * time.Second},
		{attempts: 2, expected: 10 * time.Second},
		{attempts: 3, expected: 20 * time.Second},
		{attempts: 4, expected: 40 * time.Second},
		{attempts: 5, expected: time.Minute},
		{attempts: 30, expected: time.Minute},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, service.Backoff(tt.attempts, base, maxDelay), "attempts=%d", tt.attempts)
	}
}

type fixture struct {
	repo      *outboxMocks.MockEvent
	publisher *pusherMocks.MockPublisher
	producer  *kafkaMocks.MockProducer
	cfg       *config.Config
	relay     service.Relay
}

func newFixture(t *testing.T, kafkaEnabled bool) fixture {
	ctrl := gomock.NewController(t)

	transactor := txMocks.NewMockTransactor(ctrl)
	transactor.EXPECT().
		WithTx(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn transaction.TxFunc) error {
			return fn(ctx, nil)
		}).
		AnyTimes()

	f := fixture{
		repo:      outboxMocks.NewMockEvent(ctrl),
		publisher: pusherMocks.NewMockPublisher(ctrl),
		producer:  kafkaMocks.NewMockProducer(ctrl),
		cfg:       &config.Config{},
	}

	f.cfg.Outbox.MaxAttempts = 3
	f.cfg.Outbox.BackoffBaseSeconds = 10
	f.cfg.Outbox.BackoffMaxSeconds = 60
	f.cfg.Kafka.Enable = kafkaEnabled
	f.cfg.Kafka.Topic = "booking.events"

	f.relay = service.New(f.repo, transactor, f.publisher, f.producer, metrics.New(), f.cfg, mocks.NewOtel())

	return f
}

func event(attempts int) model.Event {
	return model.Event{
		ID:            "e1",
		AggregateType: "notification",
		AggregateID:   "n1",
		EventType:     "notification",
		Channel:       "user-customer-1",
		Payload:       `{"title":"Booking confirmed"}`,
		Status:        model.StatusPending,
		Attempts:      attempts,
	}
}

func TestRelay_Dispatch(t *testing.T) {
	t.Run("publishes to pusher and kafka", func(t *testing.T) {
		f := newFixture(t, true)

		f.repo.EXPECT().ClaimDueTx(gomock.Any(), gomock.Any(), gomock.Any(), 50).Return([]model.Event{event(0)}, nil)
		f.publisher.EXPECT().
			Trigger(gomock.Any(), "user-customer-1", "notification", json.RawMessage(`{"title":"Booking confirmed"}`)).
			Return(nil)
		f.producer.EXPECT().
			SendMessages(gomock.Any(), "booking.events", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, messages ...kafka.Message) error {
				require.Len(t, messages, 1)
				assert.Equal(t, "n1", messages[0].Key)
				assert.Equal(t, "notification", messages[0].Headers["event_type"])

				return nil
			})
		f.repo.EXPECT().
			UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ *sqlx.Tx, fields map[string]any, _ gDto.FilterGroup) error {
				assert.Equal(t, model.StatusSent, fields[model.FieldStatus])
				assert.Equal(t, 1, fields[model.FieldAttempts])
				assert.NotNil(t, fields[model.FieldSentAt])

				return nil
			})

		sent, failed, err := f.relay.Dispatch(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, sent)
		assert.Equal(t, 0, failed)
	})

	t.Run("kafka disabled", func(t *testing.T) {
		f := newFixture(t, false)

		f.repo.EXPECT().ClaimDueTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return([]model.Event{event(0)}, nil)
		f.publisher.EXPECT().Trigger(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		f.repo.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		sent, _, err := f.relay.Dispatch(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, sent)
	})

	t.Run("failure schedules retry with backoff", func(t *testing.T) {
		f := newFixture(t, false)
		before := timezone.Now()

		f.repo.EXPECT().ClaimDueTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return([]model.Event{event(1)}, nil)
		f.publisher.EXPECT().Trigger(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("pusher down"))
		f.repo.EXPECT().
			UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ *sqlx.Tx, fields map[string]any, _ gDto.FilterGroup) error {
				assert.Equal(t, 2, fields[model.FieldAttempts])
				assert.Equal(t, "pusher down", fields[model.FieldLastError])
				assert.NotContains(t, fields, model.FieldStatus)

				next, ok := fields[model.FieldNextAttemptAt].(time.Time)
				require.True(t, ok)
				assert.WithinDuration(t, before.Add(20*time.Second), next, 2*time.Second)

				return nil
			})

		sent, failed, err := f.relay.Dispatch(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, sent)
		assert.Equal(t, 1, failed)
	})

	t.Run("max attempts marks failed", func(t *testing.T) {
		f := newFixture(t, true)

		f.repo.EXPECT().ClaimDueTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return([]model.Event{event(2)}, nil)
		f.publisher.EXPECT().Trigger(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		f.producer.EXPECT().SendMessages(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("broker down"))
		f.repo.EXPECT().
			UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ *sqlx.Tx, fields map[string]any, _ gDto.FilterGroup) error {
				assert.Equal(t, model.StatusFailed, fields[model.FieldStatus])
				assert.Equal(t, 3, fields[model.FieldAttempts])
				assert.NotContains(t, fields, model.FieldNextAttemptAt)

				return nil
			})

		_, failed, err := f.relay.Dispatch(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, failed)
	})

	t.Run("claim error", func(t *testing.T) {
		f := newFixture(t, false)

		f.repo.EXPECT().ClaimDueTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))

		_, _, err := f.relay.Dispatch(context.Background())
		assert.Error(t, err)
	})
}

func TestRelay_RunStopsWithContext(t *testing.T) {
	f := newFixture(t, false)
	f.cfg.Outbox.PollIntervalSeconds = 1

	f.repo.EXPECT().ClaimDueTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return([]model.Event{}, nil).AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		f.relay.Run(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("relay did not stop")
	}
}
