package model

import "homestay/shared/model"

const (
	TableName  = "notifications"
	EntityName = "notification"

	FieldID     = "id"
	FieldUserID = "user_id"
	FieldType   = "type"
	FieldRead   = "read"

	ArgUnread = "unread"

	// EventName is the realtime event a client subscribes to on its user channel.
	EventName = "notification"
)

const (
	TypeBookingCreated   = "BOOKING_CREATED"
	TypePaymentReceived  = "PAYMENT_RECEIVED"
	TypeBookingStatus    = "BOOKING_STATUS"
	TypeBookingCancelled = "BOOKING_CANCELLED"
	TypePaymentRefunded  = "PAYMENT_REFUNDED"
	TypeReviewCreated    = "REVIEW_CREATED"
)

type Notification struct {
	ID     string `db:"id"`
	UserID string `db:"user_id"`
	Type   string `db:"type"`
	Title  string `db:"title"`
	Body   string `db:"body"`
	Read   bool   `db:"read"`
	model.Metadata
}
