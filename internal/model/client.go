package model

import (
	"github.com/jwalitptl/chronosync/internal/filter"
)

// Client is a customer of a firm. (first_name, last_name, email, phone)
// is unique per firm.
type Client struct {
	Base
	Person
	FirmID int64 `json:"firm_id" db:"firm_id"`
}

type ClientRequest struct {
	ID               int64  `json:"id"`
	FirstName        string `json:"first_name" binding:"max=100"`
	LastName         string `json:"last_name" binding:"max=100"`
	Address          string `json:"address" binding:"max=255"`
	Phone            string `json:"phone" binding:"max=50"`
	Email            string `json:"email" binding:"omitempty,email"`
	UniqueIdentifier string `json:"unique_identifier" binding:"max=100"`
}

type ClientSearchRequest struct {
	filter.PageRequest
	ID               filter.Opt[int64]  `json:"id"`
	FirstName        filter.Opt[string] `json:"first_name"`
	LastName         filter.Opt[string] `json:"last_name"`
	Email            filter.Opt[string] `json:"email"`
	Phone            filter.Opt[string] `json:"phone"`
	UniqueIdentifier filter.Opt[string] `json:"unique_identifier"`
}
