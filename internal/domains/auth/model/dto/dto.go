package dto

import (
	"homestay/infras/jwt"
	userModel "homestay/internal/domains/user/model"
	userDto "homestay/internal/domains/user/model/dto"
	"homestay/shared/constant"
	gModel "homestay/shared/model"
	"homestay/shared/timezone"
	"time"

	"github.com/google/uuid"
)

type RegisterRequest struct {
	Email    string  `json:"email"               validate:"required,email"`
	Password string  `json:"password"            validate:"required,min=8,max=72"`
	FullName *string `json:"full_name,omitempty" validate:"omitempty,max=150"`
	Phone    *string `json:"phone,omitempty"     validate:"omitempty,max=20"`
	Role     string  `json:"role,omitempty"      validate:"omitempty,oneof=customer owner"`
}

// ToUserModel creates an active account. Admins are never created through registration.
func (r *RegisterRequest) ToUserModel(hashedPassword string) userModel.User {
	role := r.Role
	if role == "" {
		role = constant.RoleCustomer
	}

	return userModel.User{
		ID:       uuid.NewString(),
		Email:    r.Email,
		Password: hashedPassword,
		Level:    role,
		FullName: r.FullName,
		Phone:    r.Phone,
		Active:   true,
		Metadata: gModel.NewMetadata(timezone.Now(), constant.ContextGuest),
	}
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateLastLoginRequest struct {
	LastLogin time.Time `db:"last_login"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

func (t *TokenResponse) FromTokenPair(tokenPair *jwt.TokenPair) {
	t.AccessToken = tokenPair.AccessToken
	t.RefreshToken = tokenPair.RefreshToken
	t.TokenType = tokenPair.TokenType
	t.ExpiresIn = tokenPair.ExpiresIn
}

type LoginResponse struct {
	TokenResponse
	User userDto.UserResponse `json:"user"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=8,max=72,nefield=CurrentPassword"`
}

type UpdatePasswordRequest struct {
	Password string `db:"password"`
}
