package model

import (
	"time"
)

// Base contains common fields for all models
type Base struct {
	ID        int64     `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
	CreatedBy *int64    `json:"created_by,omitempty" db:"created_by"`
	UpdatedBy *int64    `json:"updated_by,omitempty" db:"updated_by"`
}

// StampCreated sets creation and update audit fields for a new row.
func (b *Base) StampCreated(by int64, now time.Time) {
	b.CreatedAt = now
	b.UpdatedAt = now
	b.CreatedBy = &by
	b.UpdatedBy = &by
}

// StampUpdated sets update audit fields. Creation fields are kept.
func (b *Base) StampUpdated(by int64, now time.Time) {
	b.UpdatedAt = now
	b.UpdatedBy = &by
}

// Person holds the identity fields shared by users and clients.
type Person struct {
	FirstName        string `json:"first_name" db:"first_name"`
	LastName         string `json:"last_name" db:"last_name"`
	Address          string `json:"address" db:"address"`
	Phone            string `json:"phone" db:"phone"`
	Email            string `json:"email" db:"email"`
	UniqueIdentifier string `json:"unique_identifier" db:"unique_identifier"`
}

// IDRequest is the payload of delete and get-by-id operations.
type IDRequest struct {
	ID int64 `json:"id" form:"id" uri:"id" binding:"required,min=1"`
}
