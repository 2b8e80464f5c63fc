package dto

import (
	"homestay/internal/domains/review/model"
	"homestay/shared"
	"homestay/shared/constant"
	gDto "homestay/shared/dto"
	"homestay/shared/timezone"
	"math"
)

type CreateReviewRequest struct {
	BookingID string  `json:"booking_id" validate:"required,uuid"`
	Rating    int     `json:"rating"     validate:"required,min=1,max=5"`
	Comment   *string `json:"comment"    validate:"omitempty,max=1000"`
}

type ReviewResponse struct {
	ID         string  `json:"id"`
	BookingID  string  `json:"booking_id"`
	HomestayID string  `json:"homestay_id"`
	CustomerID string  `json:"customer_id"`
	Rating     int     `json:"rating"`
	Comment    *string `json:"comment"`
	PostedAt   string  `json:"posted_at"`
}

func (r *ReviewResponse) FromModel(m model.Review) {
	r.ID = m.ID
	r.BookingID = m.BookingID
	r.HomestayID = m.HomestayID
	r.CustomerID = m.CustomerID
	r.Rating = m.Rating
	r.Comment = m.Comment
	r.PostedAt = timezone.Format(m.CreatedAt, constant.DateFormat)
}

type GetReviewsResponse struct {
	Reviews       []ReviewResponse `json:"reviews"`
	AverageRating float64          `json:"average_rating"`
	TotalPage     int              `json:"total_page"`
	TotalData     int              `json:"total_data"`
}

// FromModels fills the page. The average is rounded to one decimal.
func (r *GetReviewsResponse) FromModels(models []model.Review, average float64, totalData, limit int) {
	r.AverageRating = math.Round(average*10) / 10
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Reviews = make([]ReviewResponse, len(models))
	for i, m := range models {
		r.Reviews[i].FromModel(m)
	}
}

func FilterByHomestay(homestayID string) gDto.FilterGroup {
	return shared.FilterByID(homestayID, model.FieldHomestayID, model.TableName)
}
