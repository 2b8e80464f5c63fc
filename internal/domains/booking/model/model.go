package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"homestay/shared/model"
	"time"
)

const (
	TableName      = "bookings"
	EntityName     = "booking"
	ItemTableName  = "booking_items"
	ItemEntityName = "booking item"

	FieldID            = "id"
	FieldBookingNumber = "booking_number"
	FieldCustomerID    = "customer_id"
	FieldHomestayID    = "homestay_id"
	FieldCheckIn       = "check_in"
	FieldCheckOut      = "check_out"
	FieldStatus        = "status"
	FieldPaymentStatus = "payment_status"
	FieldPaymentMethod = "payment_method"
	FieldCancelledAt   = "cancelled_at"
	FieldDeleted       = "deleted"

	FieldItemBookingID = "booking_id"

	ArgCurrentStatus = "current_status"
)

const (
	StatusPending   = "PENDING"
	StatusPaid      = "PAID"
	StatusConfirmed = "CONFIRMED"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
)

const (
	PaymentStatusPending  = "PENDING"
	PaymentStatusPaid     = "PAID"
	PaymentStatusRefunded = "REFUNDED"
)

const (
	TypeWhole = "WHOLE"
	TypeRoom  = "ROOM"
)

var transitions = map[string][]string{
	StatusPending:   {StatusPaid, StatusConfirmed, StatusCancelled},
	StatusPaid:      {StatusConfirmed, StatusCompleted, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether a booking may move from one status to another.
// CANCELLED and COMPLETED are terminal.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}

	return false
}

type Booking struct {
	ID            string     `db:"id"`
	BookingNumber string     `db:"booking_number"`
	CustomerID    string     `db:"customer_id"`
	HomestayID    string     `db:"homestay_id"`
	CheckIn       time.Time  `db:"check_in"`
	CheckOut      time.Time  `db:"check_out"`
	Guests        int        `db:"guests"`
	TotalPrice    int64      `db:"total_price"`
	BookingType   string     `db:"booking_type"`
	Status        string     `db:"status"`
	PaymentStatus string     `db:"payment_status"`
	PaymentMethod string     `db:"payment_method"`
	Note          *string    `db:"note"`
	CancelledAt   *time.Time `db:"cancelled_at"`
	Deleted       bool       `db:"deleted"`
	model.Metadata
}

type Item struct {
	ID        string  `db:"id"`
	BookingID string  `db:"booking_id"`
	RoomID    string  `db:"room_id"`
	Price     int64   `db:"price"`
	Quantity  int     `db:"quantity"`
	Discount  int64   `db:"discount"`
	Notes     *string `db:"notes"`
	model.Metadata
}

type RoomSelection struct {
	RoomID   string `json:"room_id"  validate:"required,uuid"`
	Quantity int    `json:"quantity" validate:"omitempty,min=1,max=20"`
}

// RoomSelections is stored as a JSON text column.
type RoomSelections []RoomSelection

func (r RoomSelections) Value() (driver.Value, error) {
	if r == nil {
		return "[]", nil
	}

	raw, err := json.Marshal([]RoomSelection(r))
	if err != nil {
		return nil, err
	}

	return string(raw), nil
}

func (r *RoomSelections) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*r = RoomSelections{}

		return nil
	case []byte:
		return json.Unmarshal(v, r)
	case string:
		return json.Unmarshal([]byte(v), r)
	default:
		return errors.New("unsupported room selections value")
	}
}

func (r RoomSelections) IDs() []string {
	ids := make([]string, 0, len(r))
	for _, room := range r {
		ids = append(ids, room.RoomID)
	}

	return ids
}
