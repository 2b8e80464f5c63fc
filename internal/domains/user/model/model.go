package model

import (
	"homestay/shared/model"
	"time"
)

const (
	TableName  = "users"
	EntityName = "user"

	FieldID        = "id"
	FieldEmail     = "email"
	FieldPassword  = "password"
	FieldLevel     = "level"
	FieldFullName  = "full_name"
	FieldPhone     = "phone"
	FieldLastLogin = "last_login"
	FieldActive    = "active"
)

type User struct {
	ID        string     `db:"id"`
	Email     string     `db:"email"`
	Password  string     `db:"password"`
	Level     string     `db:"level"`
	FullName  *string    `db:"full_name"`
	Phone     *string    `db:"phone"`
	Active    bool       `db:"active"`
	LastLogin *time.Time `db:"last_login"`
	model.Metadata
}

// DisplayName falls back to the email when no full name was given.
func (u User) DisplayName() string {
	if u.FullName != nil && *u.FullName != "" {
		return *u.FullName
	}

	return u.Email
}
