package dto

import (
	bookingModel "homestay/internal/domains/booking/model"
	bookingDto "homestay/internal/domains/booking/model/dto"
	"homestay/internal/domains/booking/pricing"
	"homestay/internal/domains/cart/model"
	"homestay/shared/constant"
	gDto "homestay/shared/dto"
	gModel "homestay/shared/model"
	"homestay/shared/timezone"
	"time"

	"github.com/google/uuid"
)

type ItemRequest struct {
	bookingDto.StayRequest
}

func (r *ItemRequest) ToModel(cartID, user string, checkIn, checkOut time.Time) model.Item {
	return model.Item{
		ID:          uuid.NewString(),
		CartID:      cartID,
		HomestayID:  r.HomestayID,
		CheckIn:     checkIn,
		CheckOut:    checkOut,
		Guests:      r.Guests,
		BookingType: r.BookingType,
		Rooms:       r.RoomSelections(),
		Note:        r.Note,
		Metadata:    gModel.NewMetadata(timezone.Now(), user),
	}
}

// ToFields is the replacement set for an existing item.
func (r *ItemRequest) ToFields(user string, checkIn, checkOut time.Time) map[string]any {
	return map[string]any{
		"homestay_id":            r.HomestayID,
		"check_in":               checkIn.Format(constant.DateOnlyFormat),
		"check_out":              checkOut.Format(constant.DateOnlyFormat),
		"guests":                 r.Guests,
		"booking_type":           r.BookingType,
		"rooms":                  r.RoomSelections(),
		"note":                   r.Note,
		constant.FieldModifiedAt: timezone.Now(),
		constant.FieldModifiedBy: user,
	}
}

type ItemResponse struct {
	ID          string                       `json:"id"`
	HomestayID  string                       `json:"homestay_id"`
	CheckIn     string                       `json:"check_in"`
	CheckOut    string                       `json:"check_out"`
	Nights      int                          `json:"nights"`
	Guests      int                          `json:"guests"`
	BookingType string                       `json:"booking_type"`
	Rooms       []bookingModel.RoomSelection `json:"rooms"`
	Note        *string                      `json:"note"`
	gDto.Metadata
}

func (r *ItemResponse) FromModel(m model.Item) {
	r.ID = m.ID
	r.HomestayID = m.HomestayID
	r.CheckIn = m.CheckIn.Format(constant.DateOnlyFormat)
	r.CheckOut = m.CheckOut.Format(constant.DateOnlyFormat)
	r.Nights = pricing.Nights(m.CheckIn, m.CheckOut)
	r.Guests = m.Guests
	r.BookingType = m.BookingType
	r.Note = m.Note

	r.Rooms = []bookingModel.RoomSelection{}
	r.Rooms = append(r.Rooms, m.Rooms...)

	r.Metadata.FromModel(m.Metadata)
}

type CartResponse struct {
	ID    string         `json:"id"`
	Items []ItemResponse `json:"items"`
}

func (r *CartResponse) FromModels(cart model.Cart, items []model.Item) {
	r.ID = cart.ID

	r.Items = make([]ItemResponse, len(items))
	for i, item := range items {
		r.Items[i].FromModel(item)
	}
}

// SoftDeleteFields marks a cart or cart item as removed while keeping the row.
func SoftDeleteFields(user string) map[string]any {
	now := timezone.Now()

	return map[string]any{
		model.FieldDeleted:       true,
		model.FieldDeletedAt:     now,
		constant.FieldModifiedAt: now,
		constant.FieldModifiedBy: user,
	}
}

func FilterLiveCart(customerID string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldCustomerID, Operator: gDto.FilterOperatorEq, Value: customerID, Table: model.TableName},
			gDto.Filter{ArgName: model.ArgLive, Field: model.FieldDeleted, Operator: gDto.FilterOperatorEq, Value: false, Table: model.TableName},
		},
	}
}

// FilterLiveItems selects the live items of a cart, restricted to ids when any are given.
func FilterLiveItems(cartID string, ids ...string) gDto.FilterGroup {
	filters := []any{
		gDto.Filter{Field: model.FieldCartID, Operator: gDto.FilterOperatorEq, Value: cartID, Table: model.ItemTableName},
		gDto.Filter{ArgName: model.ArgLive, Field: model.FieldDeleted, Operator: gDto.FilterOperatorEq, Value: false, Table: model.ItemTableName},
	}

	if len(ids) > 0 {
		filters = append(filters, gDto.Filter{Field: model.FieldID, Operator: gDto.FilterOperatorIn, Value: ids, Table: model.ItemTableName})
	}

	return gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd, Filters: filters}
}
