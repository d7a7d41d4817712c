package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

type Admin struct {
	ID           int64      `db:"id" json:"id"`
	Name         string     `db:"name" json:"name" validate:"required"`
	Email        string     `db:"email" json:"email" validate:"required,email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	IsActive     bool       `db:"is_active" json:"isActive"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`
}

func (a *Admin) Validate() error {
	validate := validator.New()
	return validate.Struct(a)
}
