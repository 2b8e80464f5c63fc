package model

import (
	"homestay/shared/model"
	"time"
)

const (
	TableName  = "payments"
	EntityName = "payment"

	FieldID            = "id"
	FieldBookingID     = "booking_id"
	FieldAmount        = "amount"
	FieldMethod        = "method"
	FieldStatus        = "status"
	FieldTransactionID = "transaction_id"
	FieldPaymentDate   = "payment_date"
	FieldNotes         = "notes"

	ArgCurrentStatus = "current_status"
)

const (
	MethodCash         = "CASH"
	MethodCreditCard   = "CREDIT_CARD"
	MethodBankTransfer = "BANK_TRANSFER"
)

const (
	StatusPending  = "PENDING"
	StatusPaid     = "PAID"
	StatusRefunded = "REFUNDED"
)

type Payment struct {
	ID            string     `db:"id"`
	BookingID     string     `db:"booking_id"`
	Amount        int64      `db:"amount"`
	Method        string     `db:"method"`
	Status        string     `db:"status"`
	TransactionID *string    `db:"transaction_id"`
	PaymentDate   *time.Time `db:"payment_date"`
	Notes         *string    `db:"notes"`
	model.Metadata
}

// SettlesImmediately reports whether a payment made with method is PAID at checkout.
func SettlesImmediately(method string) bool {
	return method == MethodCreditCard || method == MethodBankTransfer
}
