package scheduler_test

import (
	"context"
	"errors"
	"homestay/config"
	bookingMocks "homestay/internal/domains/booking/mocks"
	"homestay/internal/domains/booking/model/dto"
	"homestay/internal/scheduler"
	"testing"

	"go.uber.org/mock/gomock"
)

func TestScheduler_CompleteBookings(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "completes due stays"},
		{name: "logs storage errors", err: errors.New("db down")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			booking := bookingMocks.NewMockBookingService(ctrl)
			booking.EXPECT().CompleteDue(gomock.Any()).Return(dto.CompleteDueResponse{Completed: 3}, tt.err)

			s := scheduler.New(&config.Config{}, booking, nil)
			s.CompleteBookings(context.Background())
		})
	}
}

func TestScheduler_StartStopDisabled(t *testing.T) {
	ctrl := gomock.NewController(t)
	booking := bookingMocks.NewMockBookingService(ctrl)

	s := scheduler.New(&config.Config{}, booking, nil)
	s.Start()
	s.Stop()
}
