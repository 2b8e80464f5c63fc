package stripe

//go:generate go run go.uber.org/mock/mockgen -source=./stripe.go -destination=./mocks/stripe_mock.go -package=mocks

import (
	"context"
	"fmt"
	"homestay/config"
	"homestay/infras/otel"
	"homestay/shared/constant"

	"github.com/rs/zerolog/log"
	stripeGo "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
)

const (
	otelScopeName          = "stripe"
	otelAttrPaymentIntent  = "payment_intent_id"
	otelAttrAmountInCents  = "amount_in_cents"
	defaultPaymentCurrency = "usd"
)

type PaymentIntent struct {
	ID           string
	ClientSecret string
	Status       string
	Amount       int64
	Currency     string
	Metadata     map[string]string
}

func (p PaymentIntent) Succeeded() bool {
	return p.Status == string(stripeGo.PaymentIntentStatusSucceeded)
}

type CreatePaymentIntentParams struct {
	AmountInCents  int64
	Currency       string
	IdempotencyKey string
	Metadata       map[string]string
}

type Stripe interface {
	CreatePaymentIntent(ctx context.Context, params CreatePaymentIntentParams) (PaymentIntent, error)
	GetPaymentIntent(ctx context.Context, id string) (PaymentIntent, error)
}

type stripeImpl struct {
	client paymentintent.Client
	otel   otel.Otel
}

func New(config *config.Config, otel otel.Otel) Stripe {
	if config.External.Stripe.SecretKey == "" {
		log.Warn().Msg("Stripe secret key is empty, payment intents will be rejected")
	}

	return &stripeImpl{
		client: paymentintent.Client{
			B:   stripeGo.GetBackend(stripeGo.APIBackend),
			Key: config.External.Stripe.SecretKey,
		},
		otel: otel,
	}
}

func (s *stripeImpl) CreatePaymentIntent(ctx context.Context, req CreatePaymentIntentParams) (res PaymentIntent, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelExternalScopeName, otelScopeName+".CreatePaymentIntent")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttribute(otelAttrAmountInCents, req.AmountInCents)

	currency := req.Currency
	if currency == "" {
		currency = defaultPaymentCurrency
	}

	params := &stripeGo.PaymentIntentParams{
		Amount:   stripeGo.Int64(req.AmountInCents),
		Currency: stripeGo.String(currency),
		AutomaticPaymentMethods: &stripeGo.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripeGo.Bool(true),
		},
	}
	params.Context = ctx

	for key, value := range req.Metadata {
		params.AddMetadata(key, value)
	}

	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	intent, err := s.client.New(params)
	if err != nil {
		log.Error().Err(err).Int64("amount", req.AmountInCents).Msg("failed to create stripe payment intent")

		return res, fmt.Errorf("failed to create payment intent: %w", err)
	}

	return fromStripe(intent), nil
}

func (s *stripeImpl) GetPaymentIntent(ctx context.Context, id string) (res PaymentIntent, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelExternalScopeName, otelScopeName+".GetPaymentIntent")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttribute(otelAttrPaymentIntent, id)

	params := &stripeGo.PaymentIntentParams{}
	params.Context = ctx

	intent, err := s.client.Get(id, params)
	if err != nil {
		log.Error().Err(err).Str("payment_intent_id", id).Msg("failed to get stripe payment intent")

		return res, fmt.Errorf("failed to get payment intent: %w", err)
	}

	return fromStripe(intent), nil
}

func fromStripe(intent *stripeGo.PaymentIntent) PaymentIntent {
	return PaymentIntent{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
		Status:       string(intent.Status),
		Amount:       intent.Amount,
		Currency:     string(intent.Currency),
		Metadata:     intent.Metadata,
	}
}
