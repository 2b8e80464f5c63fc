package payment_test

import (
	"context"
	"encoding/json"
	"homestay/infras/otel/mocks"
	paymentMocks "homestay/internal/domains/payment/mocks"
	"homestay/internal/domains/payment/model"
	"homestay/internal/domains/payment/model/dto"
	"homestay/internal/handlers/payment"
	"homestay/shared/constant"
	gDto "homestay/shared/dto"
	"homestay/shared/failure"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const checkoutBody = `{
	"payment_method": "CASH",
	"booking_data": {"items": [{
		"homestay_id": "6f1c3a52-8d0e-4b43-9d43-5f1b2b3c4d5e",
		"check_in": "2099-03-05",
		"check_out": "2099-03-08",
		"guests": 2,
		"booking_type": "WHOLE"
	}]}
}`

func newRouter(t *testing.T) (*paymentMocks.MockPaymentService, http.Handler) {
	t.Helper()

	svc := paymentMocks.NewMockPaymentService(gomock.NewController(t))
	handler := payment.New(svc, mocks.NewOtel())

	router := chi.NewRouter()
	handler.Router(router)

	return svc, router
}

func TestHandler_Checkout(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		setup        func(svc *paymentMocks.MockPaymentService)
		expectedCode int
	}{
		{
			name: "created",
			body: checkoutBody,
			setup: func(svc *paymentMocks.MockPaymentService) {
				svc.EXPECT().
					Checkout(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, req dto.CheckoutRequest) ([]dto.CheckoutResult, error) {
						assert.Equal(t, "key-1", req.IdempotencyKey)
						assert.Equal(t, model.MethodCash, req.PaymentMethod)
						assert.Len(t, req.BookingData.Items, 1)

						return []dto.CheckoutResult{{Payment: dto.PaymentResponse{ID: "p1"}}}, nil
					})
			},
			expectedCode: http.StatusCreated,
		},
		{
			name:         "unknown payment method",
			body:         strings.Replace(checkoutBody, "CASH", "BITCOIN", 1),
			setup:        func(*paymentMocks.MockPaymentService) {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "malformed json",
			body:         `{"payment_method":`,
			setup:        func(*paymentMocks.MockPaymentService) {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "duplicate submission",
			body: checkoutBody,
			setup: func(svc *paymentMocks.MockPaymentService) {
				svc.EXPECT().Checkout(gomock.Any(), gomock.Any()).Return(nil, failure.Conflict("checkout already in progress"))
			},
			expectedCode: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, router := newRouter(t)
			tt.setup(svc)

			req := httptest.NewRequest(http.MethodPost, "/payment/checkout", strings.NewReader(tt.body))
			req.Header.Set(constant.RequestHeaderIdempotencyKey, "key-1")
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedCode, rec.Code)
		})
	}
}

func TestHandler_GetPayments(t *testing.T) {
	t.Run("filters and paging reach the service", func(t *testing.T) {
		svc, router := newRouter(t)
		svc.EXPECT().
			GetAll(gomock.Any(), gomock.Any(), dto.PaymentFilter{Status: model.StatusPaid, Method: model.MethodCreditCard}).
			DoAndReturn(func(_ context.Context, params gDto.QueryParams, _ dto.PaymentFilter) (dto.GetPaymentsResponse, error) {
				assert.Equal(t, 2, params.Page)

				return dto.GetPaymentsResponse{TotalData: 1, TotalPage: 1, Payments: []dto.PaymentResponse{{ID: "p1"}}}, nil
			})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/payments/?status=PAID&method=CREDIT_CARD&page=2", nil))

		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Data dto.GetPaymentsResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "p1", body.Data.Payments[0].ID)
	})

	t.Run("invalid status", func(t *testing.T) {
		_, router := newRouter(t)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/payments/me?status=LOST", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandler_Refund(t *testing.T) {
	svc, router := newRouter(t)
	svc.EXPECT().Refund(gomock.Any(), "p1").Return(dto.PaymentResponse{}, failure.BadRequestFromString("only a paid payment can be refunded"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/payments/p1/refund", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "only a paid payment can be refunded")
}
