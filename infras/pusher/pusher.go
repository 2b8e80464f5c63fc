package pusher

//go:generate go run go.uber.org/mock/mockgen -source=./pusher.go -destination=./mocks/pusher_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"fmt"
	"homestay/config"
	"homestay/infras/otel"
	"homestay/shared/constant"

	pusherGo "github.com/pusher/pusher-http-go/v5"
	"github.com/rs/zerolog/log"
)

const (
	otelScopeName    = "pusher"
	otelAttrChannel  = "channel"
	otelAttrEvent    = "event"
	userChannelLabel = "user-"
)

// UserChannel is the private realtime channel of a user.
func UserChannel(userID string) string {
	return userChannelLabel + userID
}

type Publisher interface {
	Trigger(ctx context.Context, channel, event string, payload json.RawMessage) error
}

type publisherImpl struct {
	client *pusherGo.Client
	otel   otel.Otel
}

func New(config *config.Config, otel otel.Otel) Publisher {
	client := &pusherGo.Client{
		AppID:   config.External.Pusher.AppID,
		Key:     config.External.Pusher.Key,
		Secret:  config.External.Pusher.Secret,
		Cluster: config.External.Pusher.Cluster,
		Secure:  true,
	}

	log.Info().Str("cluster", client.Cluster).Msg("Pusher client initialized")

	return &publisherImpl{
		client: client,
		otel:   otel,
	}
}

// Trigger sends payload as-is so subscribers receive the stored JSON document.
func (p *publisherImpl) Trigger(ctx context.Context, channel, event string, payload json.RawMessage) (err error) {
	_, scope := p.otel.NewScope(ctx, constant.OtelExternalScopeName, otelScopeName+".Trigger")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttributes(map[string]any{
		otelAttrChannel: channel,
		otelAttrEvent:   event,
	})

	if err = p.client.Trigger(channel, event, payload); err != nil {
		log.Error().Err(err).Str("channel", channel).Str("event", event).Msg("failed to trigger pusher event")

		return fmt.Errorf("failed to trigger pusher event: %w", err)
	}

	return nil
}
