package dto

import (
	"homestay/internal/domains/booking/model"
	"homestay/internal/domains/booking/pricing"
	"homestay/shared/failure"
	"homestay/shared/timezone"
	"time"
)

// StayRequest is one homestay selection, as kept in a cart item and sent at checkout.
type StayRequest struct {
	HomestayID  string                `json:"homestay_id"  validate:"required,uuid"`
	CheckIn     string                `json:"check_in"     validate:"required,datetime=2006-01-02"`
	CheckOut    string                `json:"check_out"    validate:"required,datetime=2006-01-02"`
	Guests      int                   `json:"guests"       validate:"required,min=1,max=100"`
	BookingType string                `json:"booking_type" validate:"required,oneof=WHOLE ROOM"`
	Rooms       []model.RoomSelection `json:"rooms"        validate:"required_if=BookingType ROOM,omitempty,dive"`
	Note        *string               `json:"note"         validate:"omitempty,max=500"`
}

// Dates parses the stay window. Check-out must follow check-in and check-in cannot be in the past.
func (s StayRequest) Dates() (checkIn, checkOut time.Time, err error) {
	if checkIn, err = timezone.ParseDate(s.CheckIn); err != nil {
		return checkIn, checkOut, failure.BadRequestFromString("invalid check_in date")
	}

	if checkOut, err = timezone.ParseDate(s.CheckOut); err != nil {
		return checkIn, checkOut, failure.BadRequestFromString("invalid check_out date")
	}

	if pricing.Nights(checkIn, checkOut) < 1 {
		return checkIn, checkOut, failure.BadRequestFromString("check_out must be after check_in")
	}

	if checkIn.Before(timezone.Today()) {
		return checkIn, checkOut, failure.BadRequestFromString("check_in cannot be in the past")
	}

	return checkIn, checkOut, nil
}

// RoomSelections drops the room list of a WHOLE stay.
func (s StayRequest) RoomSelections() model.RoomSelections {
	if s.BookingType != model.TypeRoom {
		return model.RoomSelections{}
	}

	return model.RoomSelections(s.Rooms)
}
