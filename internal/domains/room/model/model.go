package model

import "homestay/shared/model"

const (
	TableName  = "rooms"
	EntityName = "room"

	FieldID            = "id"
	FieldHomestayID    = "homestay_id"
	FieldName          = "name"
	FieldPricePerNight = "price_per_night"
	FieldCapacity      = "capacity"
	FieldActive        = "active"
)

type Room struct {
	ID            string `db:"id"`
	HomestayID    string `db:"homestay_id"`
	Name          string `db:"name"`
	PricePerNight int64  `db:"price_per_night"`
	Capacity      int    `db:"capacity"`
	Active        bool   `db:"active"`
	model.Metadata
}
