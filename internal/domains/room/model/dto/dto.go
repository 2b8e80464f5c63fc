package dto

import (
	"homestay/internal/domains/room/model"
	"homestay/shared"
	gDto "homestay/shared/dto"
	gModel "homestay/shared/model"
	"homestay/shared/money"
	"homestay/shared/timezone"

	"github.com/google/uuid"
)

type CreateRoomRequest struct {
	HomestayID    string `json:"-"               validate:"required,uuid"`
	Name          string `json:"name"            validate:"required,max=100"`
	PricePerNight int64  `json:"price_per_night" validate:"required,gt=0"`
	Capacity      int    `json:"capacity"        validate:"required,min=1"`
	Active        *bool  `json:"active"          validate:"omitempty"`
}

func (c *CreateRoomRequest) ToModel(user string) model.Room {
	active := true
	if c.Active != nil {
		active = *c.Active
	}

	return model.Room{
		ID:            uuid.NewString(),
		HomestayID:    c.HomestayID,
		Name:          c.Name,
		PricePerNight: c.PricePerNight,
		Capacity:      c.Capacity,
		Active:        active,
		Metadata:      gModel.NewMetadata(timezone.Now(), user),
	}
}

type UpdateRoomRequest struct {
	Name          *string `db:"name"            json:"name,omitempty"            validate:"omitempty,max=100"`
	PricePerNight *int64  `db:"price_per_night" json:"price_per_night,omitempty" validate:"omitempty,gt=0"`
	Capacity      *int    `db:"capacity"        json:"capacity,omitempty"        validate:"omitempty,min=1"`
	Active        *bool   `db:"active"          json:"active,omitempty"`
}

type RoomResponse struct {
	ID            string `json:"id"`
	HomestayID    string `json:"homestay_id"`
	Name          string `json:"name"`
	PricePerNight int64  `json:"price_per_night"`
	PriceLabel    string `json:"price_label"`
	Capacity      int    `json:"capacity"`
	Active        bool   `json:"active"`
	gDto.Metadata
}

func (r *RoomResponse) FromModel(m model.Room) {
	r.ID = m.ID
	r.HomestayID = m.HomestayID
	r.Name = m.Name
	r.PricePerNight = m.PricePerNight
	r.PriceLabel = money.FormatVND(m.PricePerNight)
	r.Capacity = m.Capacity
	r.Active = m.Active
	r.Metadata.FromModel(m.Metadata)
}

type GetRoomsResponse struct {
	Rooms     []RoomResponse `json:"rooms"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetRoomsResponse) FromModels(models []model.Room, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Rooms = make([]RoomResponse, len(models))
	for i, mod := range models {
		r.Rooms[i].FromModel(mod)
	}
}

// FilterByHomestay lists the rooms of one homestay, active ones only unless includeInactive is set.
func FilterByHomestay(homestayID string, includeInactive bool) gDto.FilterGroup {
	filters := []any{
		gDto.Filter{Field: model.FieldHomestayID, Operator: gDto.FilterOperatorEq, Value: homestayID, Table: model.TableName},
	}

	if !includeInactive {
		filters = append(filters, gDto.Filter{Field: model.FieldActive, Operator: gDto.FilterOperatorEq, Value: true, Table: model.TableName})
	}

	return gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd, Filters: filters}
}
