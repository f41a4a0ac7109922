package model

import (
	"github.com/jwalitptl/chronosync/internal/filter"
)

type Currency string

const (
	CurrencyEUR Currency = "EUR"
	CurrencyUSD Currency = "USD"
	CurrencyGBP Currency = "GBP"
	CurrencyBAM Currency = "BAM"
)

func (c Currency) Valid() bool {
	switch c {
	case CurrencyEUR, CurrencyUSD, CurrencyGBP, CurrencyBAM:
		return true
	}
	return false
}

type AppointmentType struct {
	Base
	Name            string   `json:"name" db:"name"`
	DurationMinutes int      `json:"duration_minutes" db:"duration_minutes"`
	Price           float64  `json:"price" db:"price"`
	Currency        Currency `json:"currency" db:"currency"`
	ColorCode       string   `json:"color_code" db:"color_code"`
	FirmID          int64    `json:"firm_id" db:"firm_id"`
}

type AppointmentTypeRequest struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name" binding:"max=100"`
	DurationMinutes *int     `json:"duration_minutes" binding:"omitempty,min=1"`
	Price           *float64 `json:"price" binding:"omitempty,min=0"`
	Currency        Currency `json:"currency" binding:"omitempty,oneof=EUR USD GBP BAM"`
	ColorCode       string   `json:"color_code" binding:"omitempty,hexcolor"`
}

type AppointmentTypeSearchRequest struct {
	filter.PageRequest
	ID   filter.Opt[int64]  `json:"id"`
	Name filter.Opt[string] `json:"name"`
}
