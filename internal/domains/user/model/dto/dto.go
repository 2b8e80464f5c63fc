package dto

import (
	"homestay/internal/domains/user/model"
	"homestay/shared"
	"homestay/shared/constant"
	gDto "homestay/shared/dto"
	gModel "homestay/shared/model"
	"homestay/shared/timezone"

	"github.com/google/uuid"
)

type CreateUserRequest struct {
	Email    string  `json:"email"               validate:"required,email"`
	Password string  `json:"password"            validate:"required,min=8,max=72"`
	Level    string  `json:"level"               validate:"omitempty,oneof=admin owner customer"`
	FullName *string `json:"full_name,omitempty" validate:"omitempty,max=150"`
	Phone    *string `json:"phone,omitempty"     validate:"omitempty,max=20"`
}

func (r *CreateUserRequest) ToModel(username string, hashedPassword string) model.User {
	level := r.Level
	if level == "" {
		level = constant.RoleCustomer
	}

	return model.User{
		ID:       uuid.NewString(),
		Email:    r.Email,
		Password: hashedPassword,
		Level:    level,
		FullName: r.FullName,
		Phone:    r.Phone,
		Active:   true,
		Metadata: gModel.NewMetadata(timezone.Now(), username),
	}
}

type UserResponse struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	Level     string  `json:"level"`
	FullName  *string `json:"full_name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Active    bool    `json:"active"`
	LastLogin *string `json:"last_login,omitempty"`
	gDto.Metadata
}

func (r *UserResponse) FromModel(model model.User) {
	r.ID = model.ID
	r.Email = model.Email
	r.Level = model.Level
	r.FullName = model.FullName
	r.Phone = model.Phone
	r.Active = model.Active
	r.LastLogin = nil

	if model.LastLogin != nil {
		lastLogin := timezone.Format(*model.LastLogin, constant.DateFormat)
		r.LastLogin = &lastLogin
	}

	r.Metadata.FromModel(model.Metadata)
}

// UpdateUserRequest is the admin view of an account. Nil fields are left untouched.
type UpdateUserRequest struct {
	Level    *string `db:"level"     json:"level,omitempty"     validate:"omitempty,oneof=admin owner customer"`
	Active   *bool   `db:"active"    json:"active,omitempty"`
	FullName *string `db:"full_name" json:"full_name,omitempty" validate:"omitempty,max=150"`
	Phone    *string `db:"phone"     json:"phone,omitempty"     validate:"omitempty,max=20"`
}

type UpdateProfileRequest struct {
	FullName *string `db:"full_name" json:"full_name,omitempty" validate:"omitempty,max=150"`
	Phone    *string `db:"phone"     json:"phone,omitempty"     validate:"omitempty,max=20"`
}

type GetUsersResponse struct {
	Users     []UserResponse `json:"users"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetUsersResponse) FromModels(models []model.User, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Users = make([]UserResponse, len(models))
	for i, mod := range models {
		r.Users[i].FromModel(mod)
	}
}
