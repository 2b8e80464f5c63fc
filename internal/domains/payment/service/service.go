package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Payment=MockPaymentService

import (
	"context"
	"fmt"
	"homestay/config"
	"homestay/infras/metrics"
	"homestay/infras/otel"
	"homestay/infras/stripe"
	bookingModel "homestay/internal/domains/booking/model"
	"homestay/internal/domains/booking/number"
	"homestay/internal/domains/booking/quote"
	bookingRepo "homestay/internal/domains/booking/repository"
	cartModel "homestay/internal/domains/cart/model"
	cartDto "homestay/internal/domains/cart/model/dto"
	cartRepo "homestay/internal/domains/cart/repository"
	homestayRepo "homestay/internal/domains/homestay/repository"
	notificationModel "homestay/internal/domains/notification/model"
	notificationDto "homestay/internal/domains/notification/model/dto"
	notificationService "homestay/internal/domains/notification/service"
	"homestay/internal/domains/payment/model"
	"homestay/internal/domains/payment/model/dto"
	"homestay/internal/domains/payment/repository"
	"homestay/shared"
	"homestay/shared/cache"
	"homestay/shared/constant"
	gDto "homestay/shared/dto"
	"homestay/shared/failure"
	gModel "homestay/shared/model"
	"homestay/shared/money"
	"homestay/shared/timezone"
	"homestay/shared/transaction"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const (
	defaultIdempotencyTTL = 600
	defaultVNDPerUSD      = 25000
	defaultCurrency       = "usd"
	idempotencyKeyPrefix  = "checkout:idem"
	metadataBookingNumber = "booking_number"
)

type Payment interface {
	Checkout(ctx context.Context, req dto.CheckoutRequest) ([]dto.CheckoutResult, error)
	CreatePaymentIntent(ctx context.Context, req dto.PaymentIntentRequest) (dto.PaymentIntentResponse, error)
	Confirm(ctx context.Context, id string) (dto.PaymentResponse, error)
	Refund(ctx context.Context, id string) (dto.PaymentResponse, error)
	GetMine(ctx context.Context, req gDto.QueryParams, filter dto.PaymentFilter) (dto.GetPaymentsResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter dto.PaymentFilter) (dto.GetPaymentsResponse, error)
}

type serviceImpl struct {
	repo         repository.Payment
	bookingRepo  bookingRepo.Booking
	itemRepo     bookingRepo.Item
	cartRepo     cartRepo.Cart
	cartItemRepo cartRepo.Item
	homestayRepo homestayRepo.Homestay
	quoter       quote.Quoter
	transactor   transaction.Transactor
	notifier     notificationService.Notifier
	stripe       stripe.Stripe
	cache        cache.RedisCache
	metrics      *metrics.Metrics
	cfg          *config.Config
	otel         otel.Otel
}

type Deps struct {
	Repo         repository.Payment
	BookingRepo  bookingRepo.Booking
	ItemRepo     bookingRepo.Item
	CartRepo     cartRepo.Cart
	CartItemRepo cartRepo.Item
	HomestayRepo homestayRepo.Homestay
	Quoter       quote.Quoter
	Transactor   transaction.Transactor
	Notifier     notificationService.Notifier
	Stripe       stripe.Stripe
	Cache        cache.RedisCache
	Metrics      *metrics.Metrics
	Config       *config.Config
	Otel         otel.Otel
}

func New(deps Deps) Payment {
	return &serviceImpl{
		repo:         deps.Repo,
		bookingRepo:  deps.BookingRepo,
		itemRepo:     deps.ItemRepo,
		cartRepo:     deps.CartRepo,
		cartItemRepo: deps.CartItemRepo,
		homestayRepo: deps.HomestayRepo,
		quoter:       deps.Quoter,
		transactor:   deps.Transactor,
		notifier:     deps.Notifier,
		stripe:       deps.Stripe,
		cache:        deps.Cache,
		metrics:      deps.Metrics,
		cfg:          deps.Config,
		otel:         deps.Otel,
	}
}

// Checkout turns the checkout items into bookings sharing one booking number, with one
// payment each. Every row, the notifications and the cart cleanup commit together.
func (s *serviceImpl) Checkout(ctx context.Context, req dto.CheckoutRequest) (res []dto.CheckoutResult, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Checkout")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user := shared.UserID(ctx)

	if req.IdempotencyKey != constant.Empty {
		lockKey := shared.BuildCacheKey(idempotencyKeyPrefix, user, req.IdempotencyKey)

		if err = s.acquire(ctx, lockKey); err != nil {
			return res, err
		}

		defer func() {
			if err != nil {
				s.release(ctx, lockKey)
			}
		}()
	}

	quotes, err := s.quoteAll(ctx, req.BookingData)
	if err != nil {
		return res, err
	}

	bookingNumber, err := number.Generate(req.BookingData.NumberPayload())
	if err != nil {
		log.Error().Err(err).Msg("failed to generate booking number")

		return res, fmt.Errorf("failed to generate booking number: %w", err)
	}

	if req.BookingNumber != constant.Empty && !number.Verify(req.BookingData.NumberPayload(), req.BookingNumber) {
		return res, failure.BadRequestFromString("booking_number does not match the checkout items")
	}

	if err = s.verifyIntent(ctx, req, quotes, bookingNumber); err != nil {
		return res, err
	}

	now := timezone.Now()
	results := make([]dto.CheckoutResult, len(quotes))

	err = s.transactor.WithTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		for i, q := range quotes {
			item := req.BookingData.Items[i]

			booking := bookingModel.Booking{
				ID:            uuid.NewString(),
				BookingNumber: bookingNumber,
				CustomerID:    user,
				HomestayID:    q.HomestayID,
				CheckIn:       q.CheckIn,
				CheckOut:      q.CheckOut,
				Guests:        q.Guests,
				TotalPrice:    q.Total,
				BookingType:   q.BookingType,
				Status:        bookingModel.StatusPending,
				PaymentStatus: bookingModel.PaymentStatusPending,
				PaymentMethod: req.PaymentMethod,
				Note:          item.Note,
				Metadata:      gModel.NewMetadata(now, user),
			}

			if err := s.bookingRepo.InsertTx(ctx, tx, booking); err != nil {
				log.Error().Err(err).Msg("failed to insert booking")

				return fmt.Errorf("failed to insert booking: %w", err)
			}

			lines := bookingItems(booking, q, now)
			if len(lines) > 0 {
				if err := s.itemRepo.InsertBulkTx(ctx, tx, lines); err != nil {
					log.Error().Err(err).Msg("failed to insert booking items")

					return fmt.Errorf("failed to insert booking items: %w", err)
				}
			}

			payment, err := s.recordPayment(ctx, tx, req, &booking, now)
			if err != nil {
				return err
			}

			if err = s.notifyCheckout(ctx, tx, booking, q); err != nil {
				return err
			}

			results[i].Booking.FromModel(booking)
			results[i].Booking.WithDetails(q.HomestayName, lines, &payment)
			results[i].Payment.FromModel(payment)
		}

		return s.consumeCart(ctx, tx, user, req.BookingData.CartItemIDs())
	})
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	for _, result := range results {
		s.metrics.IncCheckout(result.Payment.Method, result.Payment.Status)
	}

	log.Info().Str("booking_number", bookingNumber).Int("bookings", len(results)).Str("method", req.PaymentMethod).Msg("checkout completed")

	return results, nil
}

// recordPayment writes the payment of one booking. Card and bank transfer settle at once
// and move the booking to PAID.
func (s *serviceImpl) recordPayment(ctx context.Context, tx *sqlx.Tx, req dto.CheckoutRequest, booking *bookingModel.Booking, now time.Time) (model.Payment, error) {
	payment := model.Payment{
		ID:        uuid.NewString(),
		BookingID: booking.ID,
		Amount:    booking.TotalPrice,
		Method:    req.PaymentMethod,
		Status:    model.StatusPending,
		Notes:     req.PaymentDetails.Notes(req.PaymentMethod),
		Metadata:  booking.Metadata,
	}

	if model.SettlesImmediately(req.PaymentMethod) {
		txn := req.PaymentIntentID()
		if txn == constant.Empty {
			txn = dto.SyntheticTransactionID(now.UnixMilli(), strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
		}

		payment.Status = model.StatusPaid
		payment.TransactionID = &txn
		payment.PaymentDate = &now
	}

	if err := s.repo.InsertTx(ctx, tx, payment); err != nil {
		log.Error().Err(err).Msg("failed to insert payment")

		return payment, fmt.Errorf("failed to insert payment: %w", err)
	}

	if payment.Status != model.StatusPaid {
		return payment, nil
	}

	fields := map[string]any{
		bookingModel.FieldStatus:        bookingModel.StatusPaid,
		bookingModel.FieldPaymentStatus: bookingModel.PaymentStatusPaid,
		constant.FieldModifiedAt:        now,
		constant.FieldModifiedBy:        booking.CustomerID,
	}

	if err := s.bookingRepo.UpdateTx(ctx, tx, fields, shared.FilterByID(booking.ID, bookingModel.FieldID, bookingModel.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to mark booking paid")

		return payment, fmt.Errorf("failed to mark booking paid: %w", err)
	}

	booking.Status = bookingModel.StatusPaid
	booking.PaymentStatus = bookingModel.PaymentStatusPaid

	return payment, nil
}

func (s *serviceImpl) notifyCheckout(ctx context.Context, tx *sqlx.Tx, booking bookingModel.Booking, q quote.Quote) error {
	total := money.FormatVND(booking.TotalPrice)

	notices := []notificationDto.Notice{
		{
			UserID: booking.CustomerID,
			Type:   notificationModel.TypeBookingCreated,
			Title:  "Booking received",
			Body:   fmt.Sprintf("Booking %s at %s, total %s, payment %s", booking.BookingNumber, q.HomestayName, total, booking.PaymentStatus),
		},
		{
			UserID: q.OwnerID,
			Type:   notificationModel.TypeBookingCreated,
			Title:  "New booking",
			Body: fmt.Sprintf("Booking %s for %s from %s to %s, total %s",
				booking.BookingNumber, q.HomestayName, booking.CheckIn.Format(constant.DateOnlyFormat), booking.CheckOut.Format(constant.DateOnlyFormat), total),
		},
	}

	for _, notice := range notices {
		if err := s.notifier.NotifyTx(ctx, tx, notice); err != nil {
			return fmt.Errorf("failed to notify checkout: %w", err)
		}
	}

	return nil
}

// consumeCart soft deletes the cart lines a checkout was built from.
func (s *serviceImpl) consumeCart(ctx context.Context, tx *sqlx.Tx, user string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	cart, err := s.cartRepo.GetTx(ctx, tx, cartDto.FilterLiveCart(user), cartModel.FieldID)
	if err != nil {
		log.Error().Err(err).Msg("failed to get cart")

		return fmt.Errorf("failed to get cart: %w", err)
	}

	if cart.ID == constant.Empty {
		return nil
	}

	removed, err := s.cartItemRepo.UpdateTxAffected(ctx, tx, cartDto.SoftDeleteFields(user), cartDto.FilterLiveItems(cart.ID, ids...))
	if err != nil {
		log.Error().Err(err).Msg("failed to remove checked out cart items")

		return fmt.Errorf("failed to remove checked out cart items: %w", err)
	}

	log.Debug().Int64("removed", removed).Str("cart_id", cart.ID).Msg("checked out cart items removed")

	return nil
}

// CreatePaymentIntent prices the checkout items and opens a Stripe PaymentIntent in US cents.
func (s *serviceImpl) CreatePaymentIntent(ctx context.Context, req dto.PaymentIntentRequest) (res dto.PaymentIntentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".CreatePaymentIntent")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	quotes, err := s.quoteAll(ctx, req.BookingData)
	if err != nil {
		return res, err
	}

	for _, q := range quotes {
		res.TotalVND += q.Total
	}

	if res.BookingNumber, err = number.Generate(req.BookingData.NumberPayload()); err != nil {
		log.Error().Err(err).Msg("failed to generate booking number")

		return res, fmt.Errorf("failed to generate booking number: %w", err)
	}

	currency := s.currency()
	res.AmountInCents = s.amountInCents(quotes)
	res.AmountInUSD = float64(res.AmountInCents) / 100

	user := shared.UserID(ctx)

	intent, err := s.stripe.CreatePaymentIntent(ctx, stripe.CreatePaymentIntentParams{
		AmountInCents:  res.AmountInCents,
		Currency:       currency,
		IdempotencyKey: shared.BuildCacheKey("intent", user, res.BookingNumber),
		Metadata: map[string]string{
			metadataBookingNumber: res.BookingNumber,
			"user_id":        user,
		},
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to create payment intent")

		return res, fmt.Errorf("failed to create payment intent: %w", err)
	}

	res.ClientSecret = intent.ClientSecret

	return res, nil
}

func (s *serviceImpl) quoteAll(ctx context.Context, data dto.BookingData) ([]quote.Quote, error) {
	quotes := make([]quote.Quote, len(data.Items))

	for i, item := range data.Items {
		q, err := s.quoter.Quote(ctx, item.StayRequest)
		if err != nil {
			return nil, err //nolint:wrapcheck
		}

		quotes[i] = q
	}

	return quotes, nil
}

// verifyIntent checks a card payment that names a Stripe PaymentIntent. The intent must have
// succeeded for exactly this checkout: same amount, same currency, same booking number, and
// not already settle another payment. Without one the payment is recorded as settled on the
// client's word.
func (s *serviceImpl) verifyIntent(ctx context.Context, req dto.CheckoutRequest, quotes []quote.Quote, bookingNumber string) error {
	id := req.PaymentIntentID()
	if id == constant.Empty {
		return nil
	}

	intent, err := s.stripe.GetPaymentIntent(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("payment_intent_id", id).Msg("failed to get payment intent")

		return fmt.Errorf("failed to get payment intent: %w", err)
	}

	switch {
	case !intent.Succeeded():
		return failure.BadRequestFromString("payment intent has not succeeded")
	case intent.Amount != s.amountInCents(quotes):
		log.Warn().Str("payment_intent_id", id).Int64("amount", intent.Amount).Msg("payment intent amount does not match checkout")

		return failure.BadRequestFromString("payment intent amount does not match the checkout total")
	case !strings.EqualFold(intent.Currency, s.currency()):
		return failure.BadRequestFromString("payment intent currency does not match")
	case intent.Metadata[metadataBookingNumber] != bookingNumber:
		return failure.BadRequestFromString("payment intent was created for another booking")
	}

	used, err := s.repo.Count(ctx, filterTransaction(id))
	if err != nil {
		log.Error().Err(err).Str("payment_intent_id", id).Msg("failed to count payments of intent")

		return fmt.Errorf("failed to count payments of intent: %w", err)
	}

	if used > 0 {
		return failure.Conflict("payment intent has already been used")
	}

	return nil
}

func (s *serviceImpl) amountInCents(quotes []quote.Quote) int64 {
	var total int64
	for _, q := range quotes {
		total += q.Total
	}

	rate := s.cfg.Checkout.VNDPerUSD
	if rate <= 0 {
		rate = defaultVNDPerUSD
	}

	return money.VNDToUSDCents(total, rate)
}

func (s *serviceImpl) currency() string {
	if s.cfg.Checkout.Currency == constant.Empty {
		return defaultCurrency
	}

	return s.cfg.Checkout.Currency
}

func filterTransaction(id string) gDto.FilterGroup {
	return gDto.FilterGroup{Filters: []any{
		gDto.Filter{Field: model.FieldTransactionID, Value: id, Operator: gDto.FilterOperatorEq},
	}}
}

func (s *serviceImpl) acquire(ctx context.Context, key string) error {
	ttl := s.cfg.Checkout.IdempotencyTTLSeconds
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}

	acquired, err := s.cache.Lock(ctx, key, ttl)
	if err != nil {
		return fmt.Errorf("failed to lock checkout: %w", err)
	}

	if !acquired {
		return failure.Conflict("checkout with this idempotency key is already in progress or done")
	}

	return nil
}

// release frees the key of a failed checkout so the client may retry with it.
func (s *serviceImpl) release(ctx context.Context, key string) {
	if err := s.cache.Delete(context.WithoutCancel(ctx), key); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to release checkout lock")
	}
}

func bookingItems(booking bookingModel.Booking, q quote.Quote, now time.Time) []bookingModel.Item {
	if q.BookingType != bookingModel.TypeRoom {
		return []bookingModel.Item{}
	}

	items := make([]bookingModel.Item, len(q.Rooms))
	for i, room := range q.Rooms {
		items[i] = bookingModel.Item{
			ID:        uuid.NewString(),
			BookingID: booking.ID,
			RoomID:    room.RoomID,
			Price:     room.Price,
			Quantity:  max(room.Quantity, 1),
			Metadata:  gModel.NewMetadata(now, booking.CustomerID),
		}
	}

	return items
}
