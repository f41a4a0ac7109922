package model

import (
	"github.com/jwalitptl/chronosync/internal/filter"
)

// Firm is the tenant boundary. Every user, client, appointment type and
// appointment belongs to exactly one firm.
type Firm struct {
	Base
	Name string `json:"name" db:"name"`
}

type FirmRequest struct {
	Name string `json:"name" binding:"required,max=200"`
}

type FirmSearchRequest struct {
	filter.PageRequest
	ID   filter.Opt[int64]  `json:"id"`
	Name filter.Opt[string] `json:"name"`
}
