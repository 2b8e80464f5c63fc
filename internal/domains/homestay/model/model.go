package model

import (
	"homestay/shared/model"

	"github.com/lib/pq"
)

const (
	TableName  = "homestays"
	EntityName = "homestay"

	FieldID            = "id"
	FieldOwnerID       = "owner_id"
	FieldName          = "name"
	FieldDescription   = "description"
	FieldAddress       = "address"
	FieldCity          = "city"
	FieldPricePerNight = "price_per_night"
	FieldMaxGuests     = "max_guests"
	FieldImages        = "images"
	FieldActive        = "active"
)

type Homestay struct {
	ID            string         `db:"id"`
	OwnerID       string         `db:"owner_id"`
	Name          string         `db:"name"`
	Description   string         `db:"description"`
	Address       string         `db:"address"`
	City          string         `db:"city"`
	PricePerNight int64          `db:"price_per_night"`
	MaxGuests     int            `db:"max_guests"`
	Images        pq.StringArray `db:"images"`
	Active        bool           `db:"active"`
	model.Metadata
}
