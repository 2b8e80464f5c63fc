package service_test

import (
	"context"
	"errors"
	"homestay/config"
	"homestay/infras/metrics"
	"homestay/infras/otel/mocks"
	"homestay/infras/stripe"
	stripeMocks "homestay/infras/stripe/mocks"
	bookingMocks "homestay/internal/domains/booking/mocks"
	bookingModel "homestay/internal/domains/booking/model"
	bookingDto "homestay/internal/domains/booking/model/dto"
	"homestay/internal/domains/booking/number"
	"homestay/internal/domains/booking/pricing"
	"homestay/internal/domains/booking/quote"
	quoteMocks "homestay/internal/domains/booking/quote/mocks"
	cartMocks "homestay/internal/domains/cart/mocks"
	cartModel "homestay/internal/domains/cart/model"
	homestayMocks "homestay/internal/domains/homestay/mocks"
	homestayModel "homestay/internal/domains/homestay/model"
	notificationMocks "homestay/internal/domains/notification/mocks"
	paymentMocks "homestay/internal/domains/payment/mocks"
	"homestay/internal/domains/payment/model"
	"homestay/internal/domains/payment/model/dto"
	"homestay/internal/domains/payment/service"
	"homestay/shared"
	cacheMocks "homestay/shared/cache/mocks"
	"homestay/shared/constant"
	gDto "homestay/shared/dto"
	"homestay/shared/failure"
	"homestay/shared/transaction"
	txMocks "homestay/shared/transaction/mocks"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	homestayA = "6f1c7e0a-0000-4000-8000-00000000000a"
	homestayB = "6f1c7e0a-0000-4000-8000-00000000000b"
	roomDbl   = "6f1c7e0a-0000-4000-8000-0000000000d1"
	roomTwin  = "6f1c7e0a-0000-4000-8000-0000000000d2"
	cartItem  = "6f1c7e0a-0000-4000-8000-0000000000c1"
)

type fixture struct {
	repo         *paymentMocks.MockPayment
	bookingRepo  *bookingMocks.MockBooking
	itemRepo     *bookingMocks.MockItem
	cartRepo     *cartMocks.MockCart
	cartItemRepo *cartMocks.MockItem
	homestayRepo *homestayMocks.MockHomestay
	quoter       *quoteMocks.MockQuoter
	notifier     *notificationMocks.MockNotifier
	stripe       *stripeMocks.MockStripe
	cache        *cacheMocks.MockRedisCache
	svc          service.Payment
}

func newFixture(t *testing.T) fixture {
	ctrl := gomock.NewController(t)

	transactor := txMocks.NewMockTransactor(ctrl)
	transactor.EXPECT().
		WithTx(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn transaction.TxFunc) error { return fn(ctx, nil) }).
		AnyTimes()

	f := fixture{
		repo:         paymentMocks.NewMockPayment(ctrl),
		bookingRepo:  bookingMocks.NewMockBooking(ctrl),
		itemRepo:     bookingMocks.NewMockItem(ctrl),
		cartRepo:     cartMocks.NewMockCart(ctrl),
		cartItemRepo: cartMocks.NewMockItem(ctrl),
		homestayRepo: homestayMocks.NewMockHomestay(ctrl),
		quoter:       quoteMocks.NewMockQuoter(ctrl),
		notifier:     notificationMocks.NewMockNotifier(ctrl),
		stripe:       stripeMocks.NewMockStripe(ctrl),
		cache:        cacheMocks.NewMockRedisCache(ctrl),
	}

	cfg := &config.Config{}
	cfg.Checkout.VNDPerUSD = 25000

	f.svc = service.New(service.Deps{
		Repo:         f.repo,
		BookingRepo:  f.bookingRepo,
		ItemRepo:     f.itemRepo,
		CartRepo:     f.cartRepo,
		CartItemRepo: f.cartItemRepo,
		HomestayRepo: f.homestayRepo,
		Quoter:       f.quoter,
		Transactor:   transactor,
		Notifier:     f.notifier,
		Stripe:       f.stripe,
		Cache:        f.cache,
		Metrics:      metrics.New(),
		Config:       cfg,
		Otel:         mocks.NewOtel(),
	})

	return f
}

func customerCtx() context.Context {
	return shared.WithUser(context.Background(), "customer-1", "guest@example.com", constant.RoleCustomer)
}

func ownerCtx() context.Context {
	return shared.WithUser(context.Background(), "owner-1", "owner@example.com", constant.RoleOwner)
}

// twoStays is the reference cart: A is two nights in two rooms, B is the whole homestay for three nights.
func twoStays() dto.BookingData {
	id := cartItem

	return dto.BookingData{Items: []dto.CheckoutItem{
		{
			StayRequest: bookingDto.StayRequest{
				HomestayID: homestayA, CheckIn: "2099-03-01", CheckOut: "2099-03-03", Guests: 3, BookingType: bookingModel.TypeRoom,
				Rooms: []bookingModel.RoomSelection{{RoomID: roomDbl, Quantity: 1}, {RoomID: roomTwin, Quantity: 1}},
			},
			CartItemID: &id,
		},
		{
			StayRequest: bookingDto.StayRequest{
				HomestayID: homestayB, CheckIn: "2099-03-05", CheckOut: "2099-03-08", Guests: 4, BookingType: bookingModel.TypeWhole,
			},
		},
	}}
}

func quoteFor(stay bookingDto.StayRequest) quote.Quote {
	checkIn, _ := time.Parse(time.DateOnly, stay.CheckIn)
	checkOut, _ := time.Parse(time.DateOnly, stay.CheckOut)
	nights := pricing.Nights(checkIn, checkOut)

	q := quote.Quote{
		HomestayID: stay.HomestayID, OwnerID: "owner-1", CheckIn: checkIn, CheckOut: checkOut,
		Nights: nights, Guests: stay.Guests, BookingType: stay.BookingType,
	}

	sel := pricing.Selection{BookingType: stay.BookingType}

	if stay.BookingType == bookingModel.TypeRoom {
		q.HomestayName = "Garden House"
		q.Rooms = []quote.Room{{RoomID: roomDbl, Name: "Double", Price: 200000, Quantity: 1}, {RoomID: roomTwin, Name: "Twin", Price: 150000, Quantity: 1}}
		sel.Rooms = []pricing.Room{{Price: 200000, Quantity: 1}, {Price: 150000, Quantity: 1}}
	} else {
		q.HomestayName = "River Villa"
		sel.HomestayPrice = 500000
	}

	q.Total = pricing.Total(sel, nights)

	return q
}

func (f fixture) expectQuotes() {
	f.quoter.EXPECT().
		Quote(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, stay bookingDto.StayRequest) (quote.Quote, error) { return quoteFor(stay), nil }).
		Times(2)
}

// expectWrites records the bookings and payments a checkout inserts.
func (f fixture) expectWrites(t *testing.T, bookings *[]bookingModel.Booking, payments *[]model.Payment) {
	f.bookingRepo.EXPECT().
		InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *sqlx.Tx, b bookingModel.Booking) error {
			*bookings = append(*bookings, b)

			return nil
		}).
		Times(2)
	f.itemRepo.EXPECT().
		InsertBulkTx(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *sqlx.Tx, items []bookingModel.Item) error {
			assert.Len(t, items, 2)

			return nil
		})
	f.repo.EXPECT().
		InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *sqlx.Tx, p model.Payment) error {
			*payments = append(*payments, p)

			return nil
		}).
		Times(2)
	f.notifier.EXPECT().NotifyTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(4)
	f.cartRepo.EXPECT().GetTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(cartModel.Cart{ID: "cart-1"}, nil)
	f.cartItemRepo.EXPECT().
		UpdateTxAffected(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *sqlx.Tx, _ map[string]any, filter gDto.FilterGroup) (int64, error) {
			_, args := filter.GetWhereClause()
			assert.Equal(t, cartItem, args["id_0"])
			assert.Equal(t, "cart-1", args[cartModel.FieldCartID])

			return 1, nil
		})
}

func TestPaymentService_Checkout(t *testing.T) {
	tests := []struct {
		name          string
		method        string
		details       *dto.PaymentDetails
		wantStatus    string
		wantBookingTo string
	}{
		{name: "cash stays pending", method: model.MethodCash, wantStatus: model.StatusPending, wantBookingTo: bookingModel.StatusPending},
		{
			name: "card settles at once", method: model.MethodCreditCard,
			details:    &dto.PaymentDetails{CardBrand: "visa", CardLast4: "4242"},
			wantStatus: model.StatusPaid, wantBookingTo: bookingModel.StatusPaid,
		},
		{
			name: "bank transfer settles at once", method: model.MethodBankTransfer,
			details:    &dto.PaymentDetails{BankName: "VCB", BankAccount: "0011"},
			wantStatus: model.StatusPaid, wantBookingTo: bookingModel.StatusPaid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.expectQuotes()

			var bookings []bookingModel.Booking

			var payments []model.Payment

			f.expectWrites(t, &bookings, &payments)

			if tt.wantStatus == model.StatusPaid {
				f.bookingRepo.EXPECT().
					UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ *sqlx.Tx, fields map[string]any, _ gDto.FilterGroup) error {
						assert.Equal(t, bookingModel.StatusPaid, fields[bookingModel.FieldStatus])
						assert.Equal(t, bookingModel.PaymentStatusPaid, fields[bookingModel.FieldPaymentStatus])

						return nil
					}).
					Times(2)
			}

			res, err := f.svc.Checkout(customerCtx(), dto.CheckoutRequest{
				PaymentMethod: tt.method, BookingData: twoStays(), PaymentDetails: tt.details,
			})
			require.NoError(t, err)
			require.Len(t, res, 2)
			require.Len(t, bookings, 2)
			require.Len(t, payments, 2)

			assert.Equal(t, bookings[0].BookingNumber, bookings[1].BookingNumber)
			assert.True(t, strings.HasPrefix(bookings[0].BookingNumber, number.Prefix))
			assert.Equal(t, int64(700000), bookings[0].TotalPrice)
			assert.Equal(t, int64(1500000), bookings[1].TotalPrice)
			assert.Equal(t, bookingModel.StatusPending, bookings[0].Status)

			for i, p := range payments {
				assert.Equal(t, bookings[i].ID, p.BookingID)
				assert.Equal(t, bookings[i].TotalPrice, p.Amount)
				assert.Equal(t, tt.wantStatus, p.Status)
				assert.Equal(t, tt.wantStatus, res[i].Payment.Status)
				assert.Equal(t, tt.wantBookingTo, res[i].Booking.Status)

				if tt.wantStatus == model.StatusPaid {
					require.NotNil(t, p.TransactionID)
					assert.Regexp(t, `^TXN-\d+-[0-9A-F]{8}$`, *p.TransactionID)
					assert.NotNil(t, p.PaymentDate)
					assert.NotNil(t, p.Notes)
				} else {
					assert.Nil(t, p.TransactionID)
					assert.Nil(t, p.PaymentDate)
				}
			}

			assert.Equal(t, "Garden House", res[0].Booking.HomestayName)
			assert.Len(t, res[0].Booking.Items, 2)
			assert.Empty(t, res[1].Booking.Items)
		})
	}
}

func TestPaymentService_Checkout_Rejections(t *testing.T) {
	t.Run("booking number mismatch", func(t *testing.T) {
		f := newFixture(t)
		f.expectQuotes()

		_, err := f.svc.Checkout(customerCtx(), dto.CheckoutRequest{
			PaymentMethod: model.MethodCreditCard, BookingData: twoStays(), BookingNumber: "AN-HOTEL-BK00000000",
		})
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("duplicate submission", func(t *testing.T) {
		f := newFixture(t)
		f.cache.EXPECT().Lock(gomock.Any(), "checkout:idem:customer-1:key-1", 600).Return(false, nil)

		_, err := f.svc.Checkout(customerCtx(), dto.CheckoutRequest{
			PaymentMethod: model.MethodCash, BookingData: twoStays(), IdempotencyKey: "key-1",
		})
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})

	t.Run("unpaid intent releases the idempotency key", func(t *testing.T) {
		f := newFixture(t)
		f.cache.EXPECT().Lock(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
		f.cache.EXPECT().Delete(gomock.Any(), "checkout:idem:customer-1:key-2").Return(nil)
		f.expectQuotes()
		f.stripe.EXPECT().GetPaymentIntent(gomock.Any(), "pi_1").Return(stripe.PaymentIntent{ID: "pi_1", Status: "requires_payment_method"}, nil)

		_, err := f.svc.Checkout(customerCtx(), dto.CheckoutRequest{
			PaymentMethod:  model.MethodCreditCard,
			BookingData:    twoStays(),
			PaymentDetails: &dto.PaymentDetails{PaymentIntentID: "pi_1"},
			IdempotencyKey: "key-2",
		})
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("failed write surfaces and skips the rest", func(t *testing.T) {
		f := newFixture(t)
		f.expectQuotes()
		f.bookingRepo.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("db down"))

		_, err := f.svc.Checkout(customerCtx(), dto.CheckoutRequest{PaymentMethod: model.MethodCash, BookingData: twoStays()})
		assert.Error(t, err)
	})
}

// paidIntent is a succeeded intent for twoStays: 2,200,000 VND at 25,000 VND per dollar.
func paidIntent(t *testing.T) stripe.PaymentIntent {
	bookingNumber, err := number.Generate(twoStays().NumberPayload())
	require.NoError(t, err)

	return stripe.PaymentIntent{
		ID: "pi_ok", Status: "succeeded", Amount: 8800, Currency: "usd",
		Metadata: map[string]string{"booking_number": bookingNumber},
	}
}

func TestPaymentService_Checkout_VerifiesIntent(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(p *stripe.PaymentIntent)
		used     int
		wantCode int
	}{
		{name: "amount too small", mutate: func(p *stripe.PaymentIntent) { p.Amount = 1 }, wantCode: http.StatusBadRequest},
		{name: "other currency", mutate: func(p *stripe.PaymentIntent) { p.Currency = "eur" }, wantCode: http.StatusBadRequest},
		{name: "other booking", mutate: func(p *stripe.PaymentIntent) { p.Metadata = map[string]string{"booking_number": "AN-HOTEL-BK00000000"} }, wantCode: http.StatusBadRequest},
		{name: "no metadata", mutate: func(p *stripe.PaymentIntent) { p.Metadata = nil }, wantCode: http.StatusBadRequest},
		{name: "already used", mutate: func(*stripe.PaymentIntent) {}, used: 2, wantCode: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.expectQuotes()

			intent := paidIntent(t)
			tt.mutate(&intent)

			f.stripe.EXPECT().GetPaymentIntent(gomock.Any(), "pi_ok").Return(intent, nil)

			if tt.used > 0 {
				f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(tt.used, nil)
			}

			_, err := f.svc.Checkout(customerCtx(), dto.CheckoutRequest{
				PaymentMethod:  model.MethodCreditCard,
				BookingData:    twoStays(),
				PaymentDetails: &dto.PaymentDetails{PaymentIntentID: "pi_ok"},
			})
			assert.Equal(t, tt.wantCode, failure.GetCode(err))
		})
	}

	t.Run("matching intent settles every booking", func(t *testing.T) {
		f := newFixture(t)
		f.expectQuotes()
		f.stripe.EXPECT().GetPaymentIntent(gomock.Any(), "pi_ok").Return(paidIntent(t), nil)
		f.repo.EXPECT().
			Count(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, filter gDto.FilterGroup) (int, error) {
				_, args := filter.GetWhereClause()
				assert.Equal(t, "pi_ok", args[model.FieldTransactionID])

				return 0, nil
			})

		var bookings []bookingModel.Booking

		var payments []model.Payment

		f.expectWrites(t, &bookings, &payments)
		f.bookingRepo.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(2)

		_, err := f.svc.Checkout(customerCtx(), dto.CheckoutRequest{
			PaymentMethod:  model.MethodCreditCard,
			BookingData:    twoStays(),
			PaymentDetails: &dto.PaymentDetails{PaymentIntentID: "pi_ok"},
		})
		require.NoError(t, err)

		for _, p := range payments {
			require.NotNil(t, p.TransactionID)
			assert.Equal(t, "pi_ok", *p.TransactionID)
		}
	})
}

func TestPaymentService_Checkout_BankTransferIgnoresIntent(t *testing.T) {
	f := newFixture(t)
	f.expectQuotes()

	var bookings []bookingModel.Booking

	var payments []model.Payment

	f.expectWrites(t, &bookings, &payments)
	f.bookingRepo.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(2)

	_, err := f.svc.Checkout(customerCtx(), dto.CheckoutRequest{
		PaymentMethod:  model.MethodBankTransfer,
		BookingData:    twoStays(),
		PaymentDetails: &dto.PaymentDetails{BankName: "VCB", PaymentIntentID: "pi_forged"},
	})
	require.NoError(t, err)

	for _, p := range payments {
		require.NotNil(t, p.TransactionID)
		assert.Regexp(t, `^TXN-\d+-[0-9A-F]{8}$`, *p.TransactionID)
	}
}

func TestPaymentService_CreatePaymentIntent(t *testing.T) {
	f := newFixture(t)
	f.expectQuotes()

	want, err := number.Generate(twoStays().NumberPayload())
	require.NoError(t, err)

	f.stripe.EXPECT().
		CreatePaymentIntent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, params stripe.CreatePaymentIntentParams) (stripe.PaymentIntent, error) {
			assert.Equal(t, int64(8800), params.AmountInCents)
			assert.Equal(t, "usd", params.Currency)
			assert.Equal(t, want, params.Metadata["booking_number"])
			assert.Equal(t, "customer-1", params.Metadata["user_id"])

			return stripe.PaymentIntent{ID: "pi_9", ClientSecret: "pi_9_secret"}, nil
		})

	res, err := f.svc.CreatePaymentIntent(customerCtx(), dto.PaymentIntentRequest{BookingData: twoStays()})
	require.NoError(t, err)
	assert.Equal(t, "pi_9_secret", res.ClientSecret)
	assert.Equal(t, 88.0, res.AmountInUSD)
	assert.Equal(t, int64(2200000), res.TotalVND)
	assert.Equal(t, want, res.BookingNumber)
}

func (f fixture) expectManaged(p model.Payment, bookingStatus string) {
	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(p, nil)
	f.bookingRepo.EXPECT().
		Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(bookingModel.Booking{ID: "b1", CustomerID: "customer-1", HomestayID: "h1", BookingNumber: "AN-HOTEL-BK1E4913D2", Status: bookingStatus}, nil)
	f.homestayRepo.EXPECT().
		Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(homestayModel.Homestay{ID: "h1", OwnerID: "owner-1", Name: "Riverside"}, nil)
}

func TestPaymentService_Confirm(t *testing.T) {
	t.Run("owner confirms cash", func(t *testing.T) {
		f := newFixture(t)
		f.expectManaged(model.Payment{ID: "p1", BookingID: "b1", Amount: 700000, Method: model.MethodCash, Status: model.StatusPending}, bookingModel.StatusPending)

		f.repo.EXPECT().
			UpdateTxAffected(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ *sqlx.Tx, fields map[string]any, filter gDto.FilterGroup) (int64, error) {
				assert.Equal(t, model.StatusPaid, fields[model.FieldStatus])

				_, args := filter.GetWhereClause()
				assert.Equal(t, model.StatusPending, args[model.ArgCurrentStatus])

				return 1, nil
			})
		f.bookingRepo.EXPECT().
			UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ *sqlx.Tx, fields map[string]any, _ gDto.FilterGroup) error {
				assert.Equal(t, bookingModel.StatusPaid, fields[bookingModel.FieldStatus])
				assert.Equal(t, bookingModel.PaymentStatusPaid, fields[bookingModel.FieldPaymentStatus])

				return nil
			})
		f.notifier.EXPECT().NotifyTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		res, err := f.svc.Confirm(ownerCtx(), "p1")
		require.NoError(t, err)
		assert.Equal(t, model.StatusPaid, res.Status)
		assert.NotNil(t, res.PaymentDate)
	})

	t.Run("card payment is already settled", func(t *testing.T) {
		f := newFixture(t)
		f.expectManaged(model.Payment{ID: "p1", BookingID: "b1", Method: model.MethodCreditCard, Status: model.StatusPaid}, bookingModel.StatusPaid)

		_, err := f.svc.Confirm(ownerCtx(), "p1")
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("customer cannot confirm", func(t *testing.T) {
		f := newFixture(t)
		f.expectManaged(model.Payment{ID: "p1", BookingID: "b1", Method: model.MethodCash, Status: model.StatusPending}, bookingModel.StatusPending)

		_, err := f.svc.Confirm(customerCtx(), "p1")
		assert.Equal(t, http.StatusForbidden, failure.GetCode(err))
	})
}

func TestPaymentService_Refund(t *testing.T) {
	t.Run("refund cancels an upcoming stay", func(t *testing.T) {
		f := newFixture(t)
		f.expectManaged(model.Payment{ID: "p1", BookingID: "b1", Amount: 1500000, Method: model.MethodBankTransfer, Status: model.StatusPaid}, bookingModel.StatusPaid)

		f.repo.EXPECT().UpdateTxAffected(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(1), nil)
		f.bookingRepo.EXPECT().
			UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ *sqlx.Tx, fields map[string]any, _ gDto.FilterGroup) error {
				assert.Equal(t, bookingModel.StatusCancelled, fields[bookingModel.FieldStatus])
				assert.Equal(t, bookingModel.PaymentStatusRefunded, fields[bookingModel.FieldPaymentStatus])
				assert.NotNil(t, fields[bookingModel.FieldCancelledAt])

				return nil
			})
		f.notifier.EXPECT().NotifyTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		res, err := f.svc.Refund(ownerCtx(), "p1")
		require.NoError(t, err)
		assert.Equal(t, model.StatusRefunded, res.Status)
	})

	t.Run("completed stay keeps its status", func(t *testing.T) {
		f := newFixture(t)
		f.expectManaged(model.Payment{ID: "p1", BookingID: "b1", Method: model.MethodCash, Status: model.StatusPaid}, bookingModel.StatusCompleted)

		f.repo.EXPECT().UpdateTxAffected(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(1), nil)
		f.bookingRepo.EXPECT().
			UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ *sqlx.Tx, fields map[string]any, _ gDto.FilterGroup) error {
				assert.NotContains(t, fields, bookingModel.FieldStatus)

				return nil
			})
		f.notifier.EXPECT().NotifyTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		_, err := f.svc.Refund(ownerCtx(), "p1")
		require.NoError(t, err)
	})

	t.Run("pending payment cannot be refunded", func(t *testing.T) {
		f := newFixture(t)
		f.expectManaged(model.Payment{ID: "p1", BookingID: "b1", Method: model.MethodCash, Status: model.StatusPending}, bookingModel.StatusPending)

		_, err := f.svc.Refund(ownerCtx(), "p1")
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})
}

func TestPaymentService_GetMine(t *testing.T) {
	f := newFixture(t)

	f.bookingRepo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]bookingModel.Booking{{ID: "b1"}, {ID: "b2"}}, nil)
	f.repo.EXPECT().
		Count(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, filter gDto.FilterGroup) (int, error) {
			where, args := filter.GetWhereClause()
			assert.Contains(t, where, "payments.booking_id IN")
			assert.Equal(t, "b2", args["booking_id_1"])

			return 2, nil
		})
	f.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]model.Payment{{ID: "p1", Amount: 700000}, {ID: "p2", Amount: 1500000}}, nil)

	res, err := f.svc.GetMine(customerCtx(), gDto.QueryParams{Page: 1, Limit: 10}, dto.PaymentFilter{})
	require.NoError(t, err)
	assert.Len(t, res.Payments, 2)
	assert.Equal(t, "1.500.000 ₫", res.Payments[1].AmountLabel)
}
