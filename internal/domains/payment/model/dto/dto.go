package dto

import (
	"fmt"
	bookingDto "homestay/internal/domains/booking/model/dto"
	"homestay/internal/domains/payment/model"
	"homestay/shared"
	"homestay/shared/constant"
	gDto "homestay/shared/dto"
	"homestay/shared/money"
	"homestay/shared/timezone"
	"strings"
)

// CheckoutItem is one stay to book. CartItemID names the cart line it came from, if any.
type CheckoutItem struct {
	bookingDto.StayRequest
	CartItemID *string `json:"cart_item_id,omitempty" validate:"omitempty,uuid"`
}

type BookingData struct {
	Items []CheckoutItem `json:"items" validate:"required,min=1,max=20,dive"`
}

// CartItemIDs lists the cart lines consumed by a checkout.
func (b BookingData) CartItemIDs() []string {
	ids := []string{}

	for _, item := range b.Items {
		if item.CartItemID != nil && *item.CartItemID != constant.Empty {
			ids = append(ids, *item.CartItemID)
		}
	}

	return ids
}

// NumberPayload is the value the booking number is derived from. The cart
// line ids are left out so the number only depends on what is booked.
func (b BookingData) NumberPayload() []bookingDto.StayRequest {
	stays := make([]bookingDto.StayRequest, len(b.Items))
	for i, item := range b.Items {
		stays[i] = item.StayRequest
	}

	return stays
}

type PaymentDetails struct {
	PaymentIntentID string `json:"payment_intent_id" validate:"omitempty,max=255"`
	CardBrand       string `json:"card_brand"        validate:"omitempty,max=50"`
	CardLast4       string `json:"card_last4"        validate:"omitempty,numeric,len=4"`
	BankName        string `json:"bank_name"         validate:"omitempty,max=100"`
	BankAccount     string `json:"bank_account"      validate:"omitempty,max=50"`
}

// Notes describes the method specific details kept on the payment row.
func (d *PaymentDetails) Notes(method string) *string {
	if d == nil {
		return nil
	}

	var parts []string

	switch method {
	case model.MethodCreditCard:
		if d.CardBrand != constant.Empty {
			parts = append(parts, "card "+d.CardBrand)
		}

		if d.CardLast4 != constant.Empty {
			parts = append(parts, "last4 "+d.CardLast4)
		}
	case model.MethodBankTransfer:
		if d.BankName != constant.Empty {
			parts = append(parts, "bank "+d.BankName)
		}

		if d.BankAccount != constant.Empty {
			parts = append(parts, "account "+d.BankAccount)
		}
	}

	if len(parts) == 0 {
		return nil
	}

	notes := strings.Join(parts, ", ")

	return &notes
}

type CheckoutRequest struct {
	PaymentMethod  string          `json:"payment_method"  validate:"required,oneof=CASH CREDIT_CARD BANK_TRANSFER"`
	BookingData    BookingData     `json:"booking_data"    validate:"required"`
	PaymentDetails *PaymentDetails `json:"payment_details" validate:"omitempty"`
	BookingNumber  string          `json:"booking_number"  validate:"omitempty,max=32"`
	IdempotencyKey string          `json:"-"`
}

// PaymentIntentID is the Stripe intent a card checkout was paid with. Other methods have none.
func (r CheckoutRequest) PaymentIntentID() string {
	if r.PaymentDetails == nil || r.PaymentMethod != model.MethodCreditCard {
		return constant.Empty
	}

	return r.PaymentDetails.PaymentIntentID
}

type PaymentIntentRequest struct {
	BookingData BookingData `json:"booking_data" validate:"required"`
}

type PaymentIntentResponse struct {
	ClientSecret  string  `json:"client_secret"`
	AmountInUSD   float64 `json:"amount_in_usd"`
	AmountInCents int64   `json:"amount_in_cents"`
	TotalVND      int64   `json:"total_vnd"`
	BookingNumber string  `json:"booking_number"`
}

type PaymentResponse struct {
	ID            string  `json:"id"`
	BookingID     string  `json:"booking_id"`
	Amount        int64   `json:"amount"`
	AmountLabel   string  `json:"amount_label"`
	Method        string  `json:"method"`
	Status        string  `json:"status"`
	TransactionID *string `json:"transaction_id"`
	PaymentDate   *string `json:"payment_date"`
	Notes         *string `json:"notes"`
	gDto.Metadata
}

func (r *PaymentResponse) FromModel(m model.Payment) {
	r.ID = m.ID
	r.BookingID = m.BookingID
	r.Amount = m.Amount
	r.AmountLabel = money.FormatVND(m.Amount)
	r.Method = m.Method
	r.Status = m.Status
	r.TransactionID = m.TransactionID
	r.Notes = m.Notes

	if m.PaymentDate != nil {
		paidAt := timezone.Format(*m.PaymentDate, constant.DateFormat)
		r.PaymentDate = &paidAt
	}

	r.Metadata.FromModel(m.Metadata)
}

type GetPaymentsResponse struct {
	Payments  []PaymentResponse `json:"payments"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetPaymentsResponse) FromModels(models []model.Payment, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Payments = make([]PaymentResponse, len(models))
	for i, m := range models {
		r.Payments[i].FromModel(m)
	}
}

type CheckoutResult struct {
	Booking bookingDto.BookingResponse `json:"booking"`
	Payment PaymentResponse            `json:"payment"`
}

type PaymentFilter struct {
	Status string `validate:"omitempty,oneof=PENDING PAID REFUNDED"`
	Method string `validate:"omitempty,oneof=CASH CREDIT_CARD BANK_TRANSFER"`
}

func (f PaymentFilter) ToFilterGroup() gDto.FilterGroup {
	filters := []any{}

	if f.Status != constant.Empty {
		filters = append(filters, gDto.Filter{Field: model.FieldStatus, Operator: gDto.FilterOperatorEq, Value: f.Status, Table: model.TableName})
	}

	if f.Method != constant.Empty {
		filters = append(filters, gDto.Filter{Field: model.FieldMethod, Operator: gDto.FilterOperatorEq, Value: f.Method, Table: model.TableName})
	}

	return gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd, Filters: filters}
}

// SyntheticTransactionID stands in for a gateway reference when none was supplied.
func SyntheticTransactionID(unixMillis int64, suffix string) string {
	return fmt.Sprintf("TXN-%d-%s", unixMillis, strings.ToUpper(suffix))
}
