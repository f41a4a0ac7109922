package model

import (
	"time"

	"github.com/jwalitptl/chronosync/internal/filter"
)

type User struct {
	Base
	Person
	Username     string `json:"username" db:"username"`
	PasswordHash string `json:"-" db:"password_hash"`
	Role         Role   `json:"role" db:"role"`
	Enabled      bool   `json:"is_enabled" db:"is_enabled"`
	Locked       bool   `json:"is_locked" db:"is_locked"`
	FirmID       int64  `json:"firm_id" db:"firm_id"`
}

// UserRequest is the create and update payload. Role and the flags are
// pointers so an update can leave them untouched.
type UserRequest struct {
	ID               int64  `json:"id"`
	FirstName        string `json:"first_name" binding:"max=100"`
	LastName         string `json:"last_name" binding:"max=100"`
	Address          string `json:"address" binding:"max=255"`
	Phone            string `json:"phone" binding:"max=50"`
	Email            string `json:"email" binding:"omitempty,email"`
	Password         string `json:"password" binding:"omitempty,min=8,max=72"`
	UniqueIdentifier string `json:"unique_identifier" binding:"max=100"`
	Role             *Role  `json:"role" binding:"omitempty,oneof=ADMINISTRATOR MANAGER EMPLOYEE"`
	Enabled          *bool  `json:"is_enabled"`
	Locked           *bool  `json:"is_locked"`
}

// UserSearchRequest filters users. Username is a contains match unless
// ExactUsername is set.
type UserSearchRequest struct {
	filter.PageRequest
	ID               filter.Opt[int64]  `json:"id"`
	FirstName        filter.Opt[string] `json:"first_name"`
	LastName         filter.Opt[string] `json:"last_name"`
	Username         filter.Opt[string] `json:"username"`
	ExactUsername    bool               `json:"exact_username"`
	Roles            []Role             `json:"roles" binding:"omitempty,dive,oneof=ADMINISTRATOR MANAGER EMPLOYEE"`
	FirmID           filter.Opt[int64]  `json:"firm_id"`
	UniqueIdentifier filter.Opt[string] `json:"unique_identifier"`
}

// UserResponse is the public view of a user. It never carries the
// password hash.
type UserResponse struct {
	ID               int64     `json:"id"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	Address          string    `json:"address"`
	Phone            string    `json:"phone"`
	Email            string    `json:"email"`
	UniqueIdentifier string    `json:"unique_identifier"`
	Username         string    `json:"username"`
	Role             Role      `json:"role"`
	Enabled          bool      `json:"is_enabled"`
	Locked           bool      `json:"is_locked"`
	FirmID           int64     `json:"firm_id"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func NewUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:               u.ID,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		Address:          u.Address,
		Phone:            u.Phone,
		Email:            u.Email,
		UniqueIdentifier: u.UniqueIdentifier,
		Username:         u.Username,
		Role:             u.Role,
		Enabled:          u.Enabled,
		Locked:           u.Locked,
		FirmID:           u.FirmID,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}
