package model

import "homestay/shared/model"

const (
	TableName  = "reviews"
	EntityName = "review"

	FieldID         = "id"
	FieldBookingID  = "booking_id"
	FieldHomestayID = "homestay_id"
	FieldCustomerID = "customer_id"
	FieldRating     = "rating"
	FieldComment    = "comment"

	MinRating = 1
	MaxRating = 5
)

type Review struct {
	ID         string  `db:"id"`
	BookingID  string  `db:"booking_id"`
	HomestayID string  `db:"homestay_id"`
	CustomerID string  `db:"customer_id"`
	Rating     int     `db:"rating"`
	Comment    *string `db:"comment"`
	model.Metadata
}
