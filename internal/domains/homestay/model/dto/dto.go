package dto

import (
	"homestay/internal/domains/homestay/model"
	"homestay/shared"
	gDto "homestay/shared/dto"
	gModel "homestay/shared/model"
	"homestay/shared/money"
	"homestay/shared/timezone"
	"mime/multipart"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type CreateHomestayRequest struct {
	Name          string `json:"name"            validate:"required,min=3,max=150"`
	Description   string `json:"description"     validate:"omitempty,max=5000"`
	Address       string `json:"address"         validate:"required,max=255"`
	City          string `json:"city"            validate:"required,max=100"`
	PricePerNight int64  `json:"price_per_night" validate:"required,gt=0"`
	MaxGuests     int    `json:"max_guests"      validate:"required,min=1"`
}

func (r *CreateHomestayRequest) ToModel(ownerID string) model.Homestay {
	return model.Homestay{
		ID:            uuid.NewString(),
		OwnerID:       ownerID,
		Name:          r.Name,
		Description:   r.Description,
		Address:       r.Address,
		City:          r.City,
		PricePerNight: r.PricePerNight,
		MaxGuests:     r.MaxGuests,
		Images:        pq.StringArray{},
		Active:        true,
		Metadata:      gModel.NewMetadata(timezone.Now(), ownerID),
	}
}

type UpdateHomestayRequest struct {
	Name          *string `db:"name"            json:"name,omitempty"            validate:"omitempty,min=3,max=150"`
	Description   *string `db:"description"     json:"description,omitempty"     validate:"omitempty,max=5000"`
	Address       *string `db:"address"         json:"address,omitempty"         validate:"omitempty,max=255"`
	City          *string `db:"city"            json:"city,omitempty"            validate:"omitempty,max=100"`
	PricePerNight *int64  `db:"price_per_night" json:"price_per_night,omitempty" validate:"omitempty,gt=0"`
	MaxGuests     *int    `db:"max_guests"      json:"max_guests,omitempty"      validate:"omitempty,min=1"`
	Active        *bool   `db:"active"          json:"active,omitempty"`
}

type HomestayResponse struct {
	ID            string   `json:"id"`
	OwnerID       string   `json:"owner_id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Address       string   `json:"address"`
	City          string   `json:"city"`
	PricePerNight int64    `json:"price_per_night"`
	PriceLabel    string   `json:"price_label"`
	MaxGuests     int      `json:"max_guests"`
	Images        []string `json:"images"`
	Active        bool     `json:"active"`
	gDto.Metadata
}

func (r *HomestayResponse) FromModel(m model.Homestay) {
	r.ID = m.ID
	r.OwnerID = m.OwnerID
	r.Name = m.Name
	r.Description = m.Description
	r.Address = m.Address
	r.City = m.City
	r.PricePerNight = m.PricePerNight
	r.PriceLabel = money.FormatVND(m.PricePerNight)
	r.MaxGuests = m.MaxGuests
	r.Active = m.Active

	r.Images = []string{}
	if m.Images != nil {
		r.Images = append(r.Images, m.Images...)
	}

	r.Metadata.FromModel(m.Metadata)
}

type GetHomestaysResponse struct {
	Homestays []HomestayResponse `json:"homestays"`
	TotalPage int                `json:"total_page"`
	TotalData int                `json:"total_data"`
}

func (r *GetHomestaysResponse) FromModels(models []model.Homestay, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Homestays = make([]HomestayResponse, len(models))
	for i, m := range models {
		r.Homestays[i].FromModel(m)
	}
}

// SearchRequest holds the catalog filters. Empty fields do not filter.
type SearchRequest struct {
	Name            string
	City            string
	OwnerID         string
	Guests          *int
	MinPrice        *int64
	MaxPrice        *int64
	IncludeInactive bool
}

func (s SearchRequest) ToFilterGroup() gDto.FilterGroup {
	filters := []any{}

	if s.Name != "" {
		filters = append(filters, gDto.Filter{Field: model.FieldName, Operator: gDto.FilterOperatorLike, Value: s.Name, Table: model.TableName})
	}

	if s.City != "" {
		filters = append(filters, gDto.Filter{Field: model.FieldCity, Operator: gDto.FilterOperatorLike, Value: s.City, Table: model.TableName})
	}

	if s.OwnerID != "" {
		filters = append(filters, gDto.Filter{Field: model.FieldOwnerID, Operator: gDto.FilterOperatorEq, Value: s.OwnerID, Table: model.TableName})
	}

	if s.Guests != nil {
		filters = append(filters, gDto.Filter{Field: model.FieldMaxGuests, Operator: gDto.FilterOperatorGreaterEq, Value: *s.Guests, Table: model.TableName})
	}

	if s.MinPrice != nil {
		filters = append(filters, gDto.Filter{
			ArgName: "min_price", Field: model.FieldPricePerNight, Operator: gDto.FilterOperatorGreaterEq, Value: *s.MinPrice, Table: model.TableName,
		})
	}

	if s.MaxPrice != nil {
		filters = append(filters, gDto.Filter{
			ArgName: "max_price", Field: model.FieldPricePerNight, Operator: gDto.FilterOperatorLessEq, Value: *s.MaxPrice, Table: model.TableName,
		})
	}

	if !s.IncludeInactive {
		filters = append(filters, gDto.Filter{Field: model.FieldActive, Operator: gDto.FilterOperatorEq, Value: true, Table: model.TableName})
	}

	return gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd, Filters: filters}
}

type UploadImageRequest struct {
	Image     *multipart.FileHeader `json:"image" swaggerignore:"true" validate:"required,mimetypes=image/png image/jpg image/jpeg image/webp,maxfilesize=5"`
	ImageFile multipart.File        `json:"-"`
}

type UploadImageResponse struct {
	URL    string   `json:"url"`
	Images []string `json:"images"`
}

type RemoveImageRequest struct {
	URL string `json:"url" validate:"required,url"`
}
