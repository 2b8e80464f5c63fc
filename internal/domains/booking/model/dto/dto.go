package dto

import (
	"homestay/internal/domains/booking/model"
	"homestay/internal/domains/booking/pricing"
	paymentModel "homestay/internal/domains/payment/model"
	"homestay/shared"
	"homestay/shared/constant"
	gDto "homestay/shared/dto"
	"homestay/shared/money"
	"homestay/shared/timezone"
)

type ItemResponse struct {
	ID       string  `json:"id"`
	RoomID   string  `json:"room_id"`
	Price    int64   `json:"price"`
	Quantity int     `json:"quantity"`
	Discount int64   `json:"discount"`
	Notes    *string `json:"notes"`
}

func (r *ItemResponse) FromModel(m model.Item) {
	r.ID = m.ID
	r.RoomID = m.RoomID
	r.Price = m.Price
	r.Quantity = m.Quantity
	r.Discount = m.Discount
	r.Notes = m.Notes
}

type PaymentSummary struct {
	ID            string  `json:"id"`
	Amount        int64   `json:"amount"`
	Method        string  `json:"method"`
	Status        string  `json:"status"`
	TransactionID *string `json:"transaction_id"`
	PaymentDate   *string `json:"payment_date"`
}

func (r *PaymentSummary) FromModel(m paymentModel.Payment) {
	r.ID = m.ID
	r.Amount = m.Amount
	r.Method = m.Method
	r.Status = m.Status
	r.TransactionID = m.TransactionID

	if m.PaymentDate != nil {
		paidAt := timezone.Format(*m.PaymentDate, constant.DateFormat)
		r.PaymentDate = &paidAt
	}
}

type BookingResponse struct {
	ID            string          `json:"id"`
	BookingNumber string          `json:"booking_number"`
	CustomerID    string          `json:"customer_id"`
	HomestayID    string          `json:"homestay_id"`
	HomestayName  string          `json:"homestay_name"`
	CheckIn       string          `json:"check_in"`
	CheckOut      string          `json:"check_out"`
	Nights        int             `json:"nights"`
	Guests        int             `json:"guests"`
	TotalPrice    int64           `json:"total_price"`
	TotalLabel    string          `json:"total_label"`
	BookingType   string          `json:"booking_type"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"payment_status"`
	PaymentMethod string          `json:"payment_method"`
	Note          *string         `json:"note"`
	CancelledAt   *string         `json:"cancelled_at"`
	Items         []ItemResponse  `json:"items"`
	Payment       *PaymentSummary `json:"payment"`
	gDto.Metadata
}

func (r *BookingResponse) FromModel(m model.Booking) {
	r.ID = m.ID
	r.BookingNumber = m.BookingNumber
	r.CustomerID = m.CustomerID
	r.HomestayID = m.HomestayID
	r.CheckIn = m.CheckIn.Format(constant.DateOnlyFormat)
	r.CheckOut = m.CheckOut.Format(constant.DateOnlyFormat)
	r.Nights = pricing.Nights(m.CheckIn, m.CheckOut)
	r.Guests = m.Guests
	r.TotalPrice = m.TotalPrice
	r.TotalLabel = money.FormatVND(m.TotalPrice)
	r.BookingType = m.BookingType
	r.Status = m.Status
	r.PaymentStatus = m.PaymentStatus
	r.PaymentMethod = m.PaymentMethod
	r.Note = m.Note
	r.Items = []ItemResponse{}

	if m.CancelledAt != nil {
		cancelledAt := timezone.Format(*m.CancelledAt, constant.DateFormat)
		r.CancelledAt = &cancelledAt
	}

	r.Metadata.FromModel(m.Metadata)
}

// WithDetails attaches the rows that live in other tables.
func (r *BookingResponse) WithDetails(homestayName string, items []model.Item, payment *paymentModel.Payment) {
	r.HomestayName = homestayName

	r.Items = make([]ItemResponse, len(items))
	for i, item := range items {
		r.Items[i].FromModel(item)
	}

	if payment != nil {
		r.Payment = &PaymentSummary{}
		r.Payment.FromModel(*payment)
	}
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetBookingsResponse) FromModels(models []model.Booking, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Bookings = make([]BookingResponse, len(models))
	for i, mod := range models {
		r.Bookings[i].FromModel(mod)
	}
}

// BookingFilter narrows back-office listings. Dates are YYYY-MM-DD bounds on check_in.
type BookingFilter struct {
	Status        string `validate:"omitempty,oneof=PENDING PAID CONFIRMED COMPLETED CANCELLED"`
	PaymentStatus string `validate:"omitempty,oneof=PENDING PAID REFUNDED"`
	HomestayID    string `validate:"omitempty,uuid"`
	CustomerID    string `validate:"omitempty,uuid"`
	CheckInFrom   string `validate:"omitempty,datetime=2006-01-02"`
	CheckInTo     string `validate:"omitempty,datetime=2006-01-02"`
}

func (f BookingFilter) ToFilterGroup() gDto.FilterGroup {
	filters := []any{
		gDto.Filter{Field: model.FieldDeleted, Operator: gDto.FilterOperatorEq, Value: false, Table: model.TableName},
	}

	for _, eq := range [][2]string{
		{model.FieldStatus, f.Status},
		{model.FieldPaymentStatus, f.PaymentStatus},
		{model.FieldHomestayID, f.HomestayID},
		{model.FieldCustomerID, f.CustomerID},
	} {
		if eq[1] == constant.Empty {
			continue
		}

		filters = append(filters, gDto.Filter{Field: eq[0], Operator: gDto.FilterOperatorEq, Value: eq[1], Table: model.TableName})
	}

	if f.CheckInFrom != constant.Empty {
		filters = append(filters, gDto.Filter{
			ArgName: "check_in_from", Field: model.FieldCheckIn, Operator: gDto.FilterOperatorGreaterEq, Value: f.CheckInFrom, Table: model.TableName,
		})
	}

	if f.CheckInTo != constant.Empty {
		filters = append(filters, gDto.Filter{
			ArgName: "check_in_to", Field: model.FieldCheckIn, Operator: gDto.FilterOperatorLessEq, Value: f.CheckInTo, Table: model.TableName,
		})
	}

	return gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd, Filters: filters}
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=CONFIRMED CANCELLED"`
}

type CompleteDueResponse struct {
	Completed int64 `json:"completed"`
}
