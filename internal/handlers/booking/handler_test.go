package booking_test

import (
	"homestay/infras/otel/mocks"
	bookingMocks "homestay/internal/domains/booking/mocks"
	"homestay/internal/domains/booking/model/dto"
	"homestay/internal/handlers/booking"
	"homestay/shared/constant"
	"homestay/shared/failure"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func newRouter(t *testing.T) (*bookingMocks.MockBookingService, http.Handler) {
	t.Helper()

	svc := bookingMocks.NewMockBookingService(gomock.NewController(t))
	handler := booking.New(svc, mocks.NewOtel())

	router := chi.NewRouter()
	handler.Router(router)

	return svc, router
}

func TestHandler_GetBookings(t *testing.T) {
	tests := []struct {
		name         string
		target       string
		setup        func(svc *bookingMocks.MockBookingService)
		expectedCode int
	}{
		{
			name:   "admin listing with filters",
			target: "/bookings/?status=PAID&check_in_from=2099-01-01",
			setup: func(svc *bookingMocks.MockBookingService) {
				svc.EXPECT().
					GetAll(gomock.Any(), gomock.Any(), dto.BookingFilter{Status: "PAID", CheckInFrom: "2099-01-01"}).
					Return(dto.GetBookingsResponse{}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:   "own bookings",
			target: "/bookings/me",
			setup: func(svc *bookingMocks.MockBookingService) {
				svc.EXPECT().GetMine(gomock.Any(), gomock.Any(), dto.BookingFilter{}).Return(dto.GetBookingsResponse{}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:   "owned bookings",
			target: "/bookings/owned?homestay_id=6f1c3a52-8d0e-4b43-9d43-5f1b2b3c4d5e",
			setup: func(svc *bookingMocks.MockBookingService) {
				svc.EXPECT().
					GetOwned(gomock.Any(), gomock.Any(), dto.BookingFilter{HomestayID: "6f1c3a52-8d0e-4b43-9d43-5f1b2b3c4d5e"}).
					Return(dto.GetBookingsResponse{}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:         "bad date",
			target:       "/bookings/?check_in_to=03/01/2099",
			setup:        func(*bookingMocks.MockBookingService) {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "unknown status",
			target:       "/bookings/me?status=LOST",
			setup:        func(*bookingMocks.MockBookingService) {},
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, router := newRouter(t)
			tt.setup(svc)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))

			assert.Equal(t, tt.expectedCode, rec.Code)
		})
	}
}

func TestHandler_ExportBookings(t *testing.T) {
	svc, router := newRouter(t)
	svc.EXPECT().Export(gomock.Any(), dto.BookingFilter{Status: "COMPLETED"}).Return([]byte("xlsx"), nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bookings/export?status=COMPLETED", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, constant.ContentTypeXLSX, rec.Header().Get(constant.RequestHeaderContentType))
	assert.Contains(t, rec.Header().Get(constant.RequestHeaderContentDisposition), ".xlsx")
	assert.Equal(t, "xlsx", rec.Body.String())
}

func TestHandler_CancelBooking(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode int
	}{
		{name: "cancelled", expectedCode: http.StatusOK},
		{name: "already completed", err: failure.BadRequestFromString("booking can no longer be cancelled"), expectedCode: http.StatusBadRequest},
		{name: "changed concurrently", err: failure.Conflict("booking status changed"), expectedCode: http.StatusConflict},
		{name: "someone else's", err: failure.ResourceRestrictedError, expectedCode: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, router := newRouter(t)
			svc.EXPECT().Cancel(gomock.Any(), "b1").Return(dto.BookingResponse{ID: "b1"}, tt.err)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/bookings/b1/cancel", nil))

			assert.Equal(t, tt.expectedCode, rec.Code)
		})
	}
}

func TestHandler_UpdateBookingStatus(t *testing.T) {
	t.Run("confirm", func(t *testing.T) {
		svc, router := newRouter(t)
		svc.EXPECT().
			UpdateStatus(gomock.Any(), dto.UpdateStatusRequest{Status: "CONFIRMED"}, "b1").
			Return(dto.BookingResponse{ID: "b1", Status: "CONFIRMED"}, nil)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/bookings/b1/status", strings.NewReader(`{"status":"CONFIRMED"}`)))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"CONFIRMED"`)
	})

	t.Run("completion is not an owner action", func(t *testing.T) {
		_, router := newRouter(t)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/bookings/b1/status", strings.NewReader(`{"status":"COMPLETED"}`)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
