package service_test

import (
	"context"
	"homestay/config"
	"homestay/infras/metrics"
	"homestay/infras/otel/mocks"
	"homestay/infras/postgres"
	stripeMocks "homestay/infras/stripe/mocks"
	bookingDto "homestay/internal/domains/booking/model/dto"
	"homestay/internal/domains/booking/quote"
	quoteMocks "homestay/internal/domains/booking/quote/mocks"
	bookingRepo "homestay/internal/domains/booking/repository"
	cartRepo "homestay/internal/domains/cart/repository"
	homestayMocks "homestay/internal/domains/homestay/mocks"
	notificationRepo "homestay/internal/domains/notification/repository"
	notificationService "homestay/internal/domains/notification/service"
	outboxRepo "homestay/internal/domains/outbox/repository"
	"homestay/internal/domains/payment/model"
	"homestay/internal/domains/payment/model/dto"
	paymentRepo "homestay/internal/domains/payment/repository"
	"homestay/internal/domains/payment/service"
	cacheMocks "homestay/shared/cache/mocks"
	"homestay/shared/transaction"
	"slices"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const metadataColumns = `created_at DATETIME, modified_at DATETIME, created_by TEXT, modified_by TEXT`

var checkoutTables = map[string]string{
	"bookings": `CREATE TABLE bookings (id TEXT PRIMARY KEY, booking_number TEXT, customer_id TEXT, homestay_id TEXT,
		check_in DATETIME, check_out DATETIME, guests INTEGER, total_price INTEGER, booking_type TEXT, status TEXT,
		payment_status TEXT, payment_method TEXT, note TEXT, cancelled_at DATETIME, deleted BOOLEAN DEFAULT 0, ` + metadataColumns + `)`,
	"booking_items": `CREATE TABLE booking_items (id TEXT PRIMARY KEY, booking_id TEXT, room_id TEXT, price INTEGER,
		quantity INTEGER, discount INTEGER, notes TEXT, ` + metadataColumns + `)`,
	"payments": `CREATE TABLE payments (id TEXT PRIMARY KEY, booking_id TEXT UNIQUE, amount INTEGER, method TEXT, status TEXT,
		transaction_id TEXT, payment_date DATETIME, notes TEXT, ` + metadataColumns + `)`,
	"notifications": `CREATE TABLE notifications (id TEXT PRIMARY KEY, user_id TEXT, type TEXT, title TEXT, body TEXT,
		read BOOLEAN DEFAULT 0, ` + metadataColumns + `)`,
	"outbox_events": `CREATE TABLE outbox_events (id TEXT PRIMARY KEY, aggregate_type TEXT, aggregate_id TEXT, event_type TEXT,
		channel TEXT, payload TEXT, status TEXT, attempts INTEGER, next_attempt_at DATETIME, last_error TEXT, sent_at DATETIME, ` + metadataColumns + `)`,
	"carts": `CREATE TABLE carts (id TEXT PRIMARY KEY, customer_id TEXT, deleted BOOLEAN DEFAULT 0, deleted_at DATETIME, ` + metadataColumns + `)`,
	"cart_items": `CREATE TABLE cart_items (id TEXT PRIMARY KEY, cart_id TEXT, homestay_id TEXT, check_in TEXT, check_out TEXT,
		guests INTEGER, booking_type TEXT, rooms TEXT, note TEXT, deleted BOOLEAN DEFAULT 0, deleted_at DATETIME, ` + metadataColumns + `)`,
}

func openCheckoutDB(t *testing.T, skip ...string) *postgres.Connection {
	t.Helper()

	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)

	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	for name, ddl := range checkoutTables {
		if slices.Contains(skip, name) {
			continue
		}

		_, err = db.Exec(ddl)
		require.NoError(t, err, name)
	}

	return &postgres.Connection{Read: db, Write: db}
}

func newStoredService(t *testing.T, conn *postgres.Connection) service.Payment {
	t.Helper()

	ctrl := gomock.NewController(t)
	otel := mocks.NewOtel()

	quoter := quoteMocks.NewMockQuoter(ctrl)
	quoter.EXPECT().
		Quote(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, stay bookingDto.StayRequest) (quote.Quote, error) { return quoteFor(stay), nil }).
		AnyTimes()

	notifier := notificationService.New(notificationRepo.New(conn, otel), outboxRepo.New(conn, otel), otel)

	return service.New(service.Deps{
		Repo:         paymentRepo.New(conn, otel),
		BookingRepo:  bookingRepo.New(conn, otel),
		ItemRepo:     bookingRepo.NewItem(conn, otel),
		CartRepo:     cartRepo.New(conn, otel),
		CartItemRepo: cartRepo.NewItem(conn, otel),
		HomestayRepo: homestayMocks.NewMockHomestay(ctrl),
		Quoter:       quoter,
		Transactor:   transaction.New(conn, otel),
		Notifier:     notifier,
		Stripe:       stripeMocks.NewMockStripe(ctrl),
		Cache:        cacheMocks.NewMockRedisCache(ctrl),
		Metrics:      metrics.New(),
		Config:       &config.Config{},
		Otel:         otel,
	})
}

func countRows(t *testing.T, conn *postgres.Connection, query string, args ...any) int {
	t.Helper()

	var count int
	require.NoError(t, conn.Read.Get(&count, query, args...))

	return count
}

func TestCheckout_Stored(t *testing.T) {
	conn := openCheckoutDB(t)

	_, err := conn.Write.Exec(`INSERT INTO carts (id, customer_id) VALUES ('cart-1', 'customer-1')`)
	require.NoError(t, err)
	_, err = conn.Write.Exec(`INSERT INTO cart_items (id, cart_id, homestay_id) VALUES (?, 'cart-1', ?), ('other', 'cart-1', ?)`,
		cartItem, homestayA, homestayB)
	require.NoError(t, err)

	svc := newStoredService(t, conn)

	res, err := svc.Checkout(customerCtx(), dto.CheckoutRequest{
		PaymentMethod:  model.MethodBankTransfer,
		BookingData:    twoStays(),
		PaymentDetails: &dto.PaymentDetails{BankName: "VCB", BankAccount: "0011"},
	})
	require.NoError(t, err)
	require.Len(t, res, 2)

	assert.Equal(t, 2, countRows(t, conn, `SELECT COUNT(*) FROM bookings WHERE booking_number = ? AND status = 'PAID'`, res[0].Booking.BookingNumber))
	assert.Equal(t, 2, countRows(t, conn, `SELECT COUNT(*) FROM booking_items`))
	assert.Equal(t, 2, countRows(t, conn, `SELECT COUNT(*) FROM payments WHERE status = 'PAID' AND notes = 'bank VCB, account 0011'`))
	assert.Equal(t, 4, countRows(t, conn, `SELECT COUNT(*) FROM notifications`))
	assert.Equal(t, 4, countRows(t, conn, `SELECT COUNT(*) FROM outbox_events`))
	assert.Equal(t, 1, countRows(t, conn, `SELECT COUNT(*) FROM cart_items WHERE deleted = 1`))
	assert.Equal(t, 1, countRows(t, conn, `SELECT COUNT(*) FROM cart_items WHERE id = 'other' AND deleted = 0`))

	var total int64
	require.NoError(t, conn.Read.Get(&total, `SELECT SUM(amount) FROM payments`))
	assert.Equal(t, int64(2200000), total)
	assert.True(t, strings.HasPrefix(*res[0].Payment.TransactionID, "TXN-"))
}

func TestCheckout_StoredRollback(t *testing.T) {
	// Without a carts table the cart cleanup fails after every booking was written.
	conn := openCheckoutDB(t, "carts")
	svc := newStoredService(t, conn)

	_, err := svc.Checkout(customerCtx(), dto.CheckoutRequest{PaymentMethod: model.MethodCash, BookingData: twoStays()})
	require.Error(t, err)

	for _, table := range []string{"bookings", "booking_items", "payments", "notifications", "outbox_events"} {
		assert.Equal(t, 0, countRows(t, conn, `SELECT COUNT(*) FROM `+table), table)
	}
}
