// Package pricing computes stay totals in đồng.
package pricing

import (
	"homestay/internal/domains/booking/model"
	"time"
)

const hoursPerDay = 24

type Room struct {
	Price    int64
	Quantity int
}

// Selection is what a guest picked for one stay. HomestayPrice is used for WHOLE
// bookings and Rooms for ROOM bookings.
type Selection struct {
	BookingType   string
	HomestayPrice int64
	Rooms         []Room
}

func Total(sel Selection, nights int) int64 {
	if nights < 0 {
		nights = 0
	}

	if sel.BookingType == model.TypeWhole {
		return sel.HomestayPrice * int64(nights)
	}

	var perNight int64
	for _, room := range sel.Rooms {
		perNight += room.Price * int64(max(room.Quantity, 1))
	}

	return perNight * int64(nights)
}

// Nights counts calendar days between check-in and check-out.
func Nights(checkIn, checkOut time.Time) int {
	in := time.Date(checkIn.Year(), checkIn.Month(), checkIn.Day(), 0, 0, 0, 0, time.UTC)
	out := time.Date(checkOut.Year(), checkOut.Month(), checkOut.Day(), 0, 0, 0, 0, time.UTC)

	return int(out.Sub(in).Hours() / hoursPerDay)
}
