package model

import (
	bookingModel "homestay/internal/domains/booking/model"
	"homestay/shared/model"
	"time"
)

const (
	TableName      = "carts"
	EntityName     = "cart"
	ItemTableName  = "cart_items"
	ItemEntityName = "cart item"

	FieldID         = "id"
	FieldCustomerID = "customer_id"
	FieldCartID     = "cart_id"
	FieldDeleted    = "deleted"
	FieldDeletedAt  = "deleted_at"

	// ArgLive names the deleted filter argument. Update values are bound by column name.
	ArgLive = "live_deleted"
)

type Cart struct {
	ID         string     `db:"id"`
	CustomerID string     `db:"customer_id"`
	Deleted    bool       `db:"deleted"`
	DeletedAt  *time.Time `db:"deleted_at"`
	model.Metadata
}

type Item struct {
	ID          string                      `db:"id"`
	CartID      string                      `db:"cart_id"`
	HomestayID  string                      `db:"homestay_id"`
	CheckIn     time.Time                   `db:"check_in"`
	CheckOut    time.Time                   `db:"check_out"`
	Guests      int                         `db:"guests"`
	BookingType string                      `db:"booking_type"`
	Rooms       bookingModel.RoomSelections `db:"rooms"`
	Note        *string                     `db:"note"`
	Deleted     bool                        `db:"deleted"`
	DeletedAt   *time.Time                  `db:"deleted_at"`
	model.Metadata
}
