package service_test

import (
	"bytes"
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/mock/gomock"

	"homestay/infras/metrics"
	"homestay/infras/otel/mocks"
	bookingMocks "homestay/internal/domains/booking/mocks"
	"homestay/internal/domains/booking/model"
	"homestay/internal/domains/booking/model/dto"
	"homestay/internal/domains/booking/service"
	homestayMocks "homestay/internal/domains/homestay/mocks"
	homestayModel "homestay/internal/domains/homestay/model"
	notificationMocks "homestay/internal/domains/notification/mocks"
	notificationDto "homestay/internal/domains/notification/model/dto"
	paymentMocks "homestay/internal/domains/payment/mocks"
	paymentModel "homestay/internal/domains/payment/model"
	"homestay/shared"
	"homestay/shared/constant"
	gDto "homestay/shared/dto"
	"homestay/shared/failure"
	"homestay/shared/timezone"
	"homestay/shared/transaction"
	txMocks "homestay/shared/transaction/mocks"
)

type fixture struct {
	repo         *bookingMocks.MockBooking
	itemRepo     *bookingMocks.MockItem
	paymentRepo  *paymentMocks.MockPayment
	homestayRepo *homestayMocks.MockHomestay
	notifier     *notificationMocks.MockNotifier
	metrics      *metrics.Metrics
	svc          service.Booking
}

func newFixture(t *testing.T) fixture {
	ctrl := gomock.NewController(t)

	transactor := txMocks.NewMockTransactor(ctrl)
	transactor.EXPECT().
		WithTx(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn transaction.TxFunc) error { return fn(ctx, nil) }).
		AnyTimes()

	f := fixture{
		repo:         bookingMocks.NewMockBooking(ctrl),
		itemRepo:     bookingMocks.NewMockItem(ctrl),
		paymentRepo:  paymentMocks.NewMockPayment(ctrl),
		homestayRepo: homestayMocks.NewMockHomestay(ctrl),
		notifier:     notificationMocks.NewMockNotifier(ctrl),
		metrics:      metrics.New(),
	}
	f.svc = service.New(f.repo, f.itemRepo, f.paymentRepo, f.homestayRepo, transactor, f.notifier, f.metrics, mocks.NewOtel())

	return f
}

// expectLookup covers findVisible: the booking row and the owner columns of its homestay.
func (f fixture) expectLookup(booking model.Booking) {
	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(booking, nil)
	f.homestayRepo.EXPECT().
		Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(homestayModel.Homestay{ID: booking.HomestayID, OwnerID: "owner-1", Name: "Riverside"}, nil)
}

// expectDetails covers attachDetails for one page of bookings.
func (f fixture) expectDetails(items []model.Item, payments []paymentModel.Payment) {
	f.homestayRepo.EXPECT().
		GetAll(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]homestayModel.Homestay{{ID: "h1", Name: "Riverside"}}, nil)
	f.itemRepo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(items, nil)
	f.paymentRepo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(payments, nil)
}

func customerCtx() context.Context {
	return shared.WithUser(context.Background(), "customer-1", "guest@example.com", constant.RoleCustomer)
}

func ownerCtx() context.Context {
	return shared.WithUser(context.Background(), "owner-1", "owner@example.com", constant.RoleOwner)
}

func booking(status string) model.Booking {
	return model.Booking{
		ID:            "b1",
		BookingNumber: "AN-HOTEL-BK1E4913D2",
		CustomerID:    "customer-1",
		HomestayID:    "h1",
		CheckIn:       time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC),
		CheckOut:      time.Date(2026, 11, 3, 0, 0, 0, 0, time.UTC),
		Guests:        2,
		TotalPrice:    700000,
		BookingType:   model.TypeRoom,
		Status:        status,
		PaymentStatus: model.PaymentStatusPending,
		PaymentMethod: paymentModel.MethodCash,
	}
}

func TestBookingService_Cancel(t *testing.T) {
	tests := []struct {
		name      string
		ctx       context.Context
		current   string
		setupMock func(f fixture)
		wantCode  int
	}{
		{
			name:    "pending booking is cancelled and the owner notified",
			ctx:     customerCtx(),
			current: model.StatusPending,
			setupMock: func(f fixture) {
				f.repo.EXPECT().
					UpdateTxAffected(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ *sqlx.Tx, fields map[string]any, filter gDto.FilterGroup) (int64, error) {
						assert.Equal(t, model.StatusCancelled, fields[model.FieldStatus])
						assert.NotNil(t, fields[model.FieldCancelledAt])

						_, args := filter.GetWhereClause()
						assert.Equal(t, model.StatusPending, args["status_0"])
						assert.Equal(t, model.StatusConfirmed, args["status_2"])

						return 1, nil
					})
				f.notifier.EXPECT().
					NotifyTx(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ *sqlx.Tx, notice notificationDto.Notice) error {
						assert.Equal(t, "owner-1", notice.UserID)
						assert.Contains(t, notice.Body, "AN-HOTEL-BK1E4913D2")

						return nil
					})
				f.expectDetails(nil, nil)
			},
		},
		{
			name:    "already cancelled",
			ctx:     customerCtx(),
			current: model.StatusCancelled,
			setupMock: func(f fixture) {
				f.repo.EXPECT().UpdateTxAffected(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), nil)
				f.repo.EXPECT().GetTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(model.Booking{Status: model.StatusCancelled}, nil)
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name:    "completed booking",
			ctx:     customerCtx(),
			current: model.StatusCompleted,
			setupMock: func(f fixture) {
				f.repo.EXPECT().UpdateTxAffected(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), nil)
				f.repo.EXPECT().GetTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(model.Booking{Status: model.StatusCompleted}, nil)
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name:      "owner uses the status endpoint instead",
			ctx:       ownerCtx(),
			current:   model.StatusPending,
			setupMock: func(_ fixture) {},
			wantCode:  http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.expectLookup(booking(tt.current))
			tt.setupMock(f)

			res, err := f.svc.Cancel(tt.ctx, "b1")

			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, model.StatusCancelled, res.Status)
			assert.NotNil(t, res.CancelledAt)
			assert.Equal(t, "Riverside", res.HomestayName)
		})
	}
}

func TestBookingService_Get(t *testing.T) {
	t.Run("stranger is rejected", func(t *testing.T) {
		f := newFixture(t)
		f.expectLookup(booking(model.StatusPaid))

		stranger := shared.WithUser(context.Background(), "customer-9", "x@example.com", constant.RoleCustomer)

		_, err := f.svc.Get(stranger, "b1")
		assert.Equal(t, http.StatusForbidden, failure.GetCode(err))
	})

	t.Run("missing booking", func(t *testing.T) {
		f := newFixture(t)
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Booking{}, nil)

		_, err := f.svc.Get(customerCtx(), "b1")
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})

	t.Run("owner sees items and payment", func(t *testing.T) {
		f := newFixture(t)
		f.expectLookup(booking(model.StatusPaid))

		txn := "pi_123"
		f.expectDetails(
			[]model.Item{{ID: "i1", BookingID: "b1", RoomID: "r1", Price: 200000, Quantity: 1}},
			[]paymentModel.Payment{{ID: "p1", BookingID: "b1", Amount: 700000, Status: paymentModel.StatusPaid, TransactionID: &txn}},
		)

		res, err := f.svc.Get(ownerCtx(), "b1")
		require.NoError(t, err)
		assert.Equal(t, 2, res.Nights)
		assert.Len(t, res.Items, 1)
		require.NotNil(t, res.Payment)
		assert.Equal(t, "pi_123", *res.Payment.TransactionID)
		assert.Equal(t, "700.000 ₫", res.TotalLabel)
	})
}

func TestBookingService_UpdateStatus(t *testing.T) {
	t.Run("confirms a paid booking", func(t *testing.T) {
		f := newFixture(t)
		f.expectLookup(booking(model.StatusPaid))

		f.repo.EXPECT().UpdateTxAffected(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(1), nil)
		f.notifier.EXPECT().
			NotifyTx(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ *sqlx.Tx, notice notificationDto.Notice) error {
				assert.Equal(t, "customer-1", notice.UserID)

				return nil
			})
		f.expectDetails(nil, nil)

		res, err := f.svc.UpdateStatus(ownerCtx(), dto.UpdateStatusRequest{Status: model.StatusConfirmed}, "b1")
		require.NoError(t, err)
		assert.Equal(t, model.StatusConfirmed, res.Status)
	})

	t.Run("terminal booking cannot move", func(t *testing.T) {
		f := newFixture(t)
		f.expectLookup(booking(model.StatusCompleted))

		_, err := f.svc.UpdateStatus(ownerCtx(), dto.UpdateStatusRequest{Status: model.StatusCancelled}, "b1")
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("concurrent change", func(t *testing.T) {
		f := newFixture(t)
		f.expectLookup(booking(model.StatusPending))
		f.repo.EXPECT().UpdateTxAffected(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), nil)

		_, err := f.svc.UpdateStatus(ownerCtx(), dto.UpdateStatusRequest{Status: model.StatusConfirmed}, "b1")
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})

	t.Run("customer cannot confirm", func(t *testing.T) {
		f := newFixture(t)
		f.expectLookup(booking(model.StatusPending))

		_, err := f.svc.UpdateStatus(customerCtx(), dto.UpdateStatusRequest{Status: model.StatusConfirmed}, "b1")
		assert.Equal(t, http.StatusForbidden, failure.GetCode(err))
	})
}

func TestBookingService_CompleteDue(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().
		UpdateAffected(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, fields map[string]any, filter gDto.FilterGroup) (int64, error) {
			assert.Equal(t, model.StatusCompleted, fields[model.FieldStatus])
			assert.Equal(t, constant.ContextCron, fields[constant.FieldModifiedBy])

			where, args := filter.GetWhereClause()
			assert.Contains(t, where, "bookings.status IN (:current_status_0, :current_status_1)")
			assert.Equal(t, model.StatusPaid, args[model.ArgCurrentStatus+"_0"])
			assert.Equal(t, model.StatusConfirmed, args[model.ArgCurrentStatus+"_1"])
			assert.Equal(t, model.PaymentStatusPaid, args[model.FieldPaymentStatus])
			assert.Equal(t, timezone.Today().Format(constant.DateOnlyFormat), args[model.FieldCheckOut])

			return 3, nil
		})

	res, err := f.svc.CompleteDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Completed)
}

func TestBookingService_GetOwned(t *testing.T) {
	t.Run("owner without homestays", func(t *testing.T) {
		f := newFixture(t)
		f.homestayRepo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return([]homestayModel.Homestay{}, nil)

		res, err := f.svc.GetOwned(ownerCtx(), gDto.QueryParams{Page: 1, Limit: 10}, dto.BookingFilter{})
		require.NoError(t, err)
		assert.Empty(t, res.Bookings)
		assert.Equal(t, 1, res.TotalPage)
	})

	t.Run("restricts to owned homestays", func(t *testing.T) {
		f := newFixture(t)
		f.homestayRepo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return([]homestayModel.Homestay{{ID: "h1"}, {ID: "h2"}}, nil)
		f.repo.EXPECT().
			Count(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, filter gDto.FilterGroup) (int, error) {
				where, args := filter.GetWhereClause()
				assert.Contains(t, where, "bookings.homestay_id IN")
				assert.Equal(t, "h2", args["homestay_id_1"])

				return 1, nil
			})
		f.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return([]model.Booking{booking(model.StatusPaid)}, nil)
		f.expectDetails(nil, nil)

		res, err := f.svc.GetOwned(ownerCtx(), gDto.QueryParams{Page: 1, Limit: 10}, dto.BookingFilter{Status: model.StatusPaid})
		require.NoError(t, err)
		assert.Len(t, res.Bookings, 1)
	})
}

func TestBookingService_Export(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().
		GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, params gDto.QueryParams, _ gDto.FilterGroup, _ ...string) ([]model.Booking, error) {
			assert.Equal(t, model.FieldCheckIn, params.SortBy)

			return []model.Booking{booking(model.StatusPaid)}, nil
		})
	f.expectDetails(nil, nil)

	raw, err := f.svc.Export(context.Background(), dto.BookingFilter{})
	require.NoError(t, err)

	book, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)

	defer book.Close()

	number, err := book.GetCellValue("Bookings", "A2")
	require.NoError(t, err)
	assert.Equal(t, "AN-HOTEL-BK1E4913D2", number)

	homestay, err := book.GetCellValue("Bookings", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Riverside", homestay)
}
