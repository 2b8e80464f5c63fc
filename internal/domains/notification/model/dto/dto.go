package dto

import (
	"homestay/internal/domains/notification/model"
	"homestay/shared"
	"homestay/shared/constant"
	gDto "homestay/shared/dto"
	gModel "homestay/shared/model"
	"homestay/shared/timezone"

	"github.com/google/uuid"
)

// Notice is a message for one user, written together with the change it reports.
type Notice struct {
	UserID string
	Type   string
	Title  string
	Body   string
}

func (n Notice) ToModel(actor string) model.Notification {
	return model.Notification{
		ID:       uuid.NewString(),
		UserID:   n.UserID,
		Type:     n.Type,
		Title:    n.Title,
		Body:     n.Body,
		Metadata: gModel.NewMetadata(timezone.Now(), actor),
	}
}

type NotificationResponse struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	Read   bool   `json:"read"`
	SentAt string `json:"sent_at"`
}

func (r *NotificationResponse) FromModel(m model.Notification) {
	r.ID = m.ID
	r.Type = m.Type
	r.Title = m.Title
	r.Body = m.Body
	r.Read = m.Read
	r.SentAt = timezone.Format(m.CreatedAt, constant.DateFormat)
}

type GetNotificationsResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	TotalPage     int                    `json:"total_page"`
	TotalData     int                    `json:"total_data"`
}

func (r *GetNotificationsResponse) FromModels(models []model.Notification, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Notifications = make([]NotificationResponse, len(models))
	for i, m := range models {
		r.Notifications[i].FromModel(m)
	}
}

type UnreadCountResponse struct {
	Unread int `json:"unread"`
}

func FilterByUser(userID string, unreadOnly bool) gDto.FilterGroup {
	filters := []any{
		gDto.Filter{Field: model.FieldUserID, Operator: gDto.FilterOperatorEq, Value: userID, Table: model.TableName},
	}

	if unreadOnly {
		filters = append(filters, gDto.Filter{ArgName: model.ArgUnread, Field: model.FieldRead, Operator: gDto.FilterOperatorEq, Value: false, Table: model.TableName})
	}

	return gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd, Filters: filters}
}
