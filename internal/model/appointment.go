package model

import (
	"time"

	"github.com/jwalitptl/chronosync/internal/filter"
)

// Appointment references its client, type and assigned employee by id.
// The creator is Base.CreatedBy.
type Appointment struct {
	Base
	Note              string    `json:"note" db:"note"`
	StartTime         time.Time `json:"start_time" db:"start_time"`
	EndTime           time.Time `json:"end_time" db:"end_time"`
	ClientID          int64     `json:"client_id" db:"client_id"`
	AppointmentTypeID int64     `json:"appointment_type_id" db:"appointment_type_id"`
	EmployeeID        int64     `json:"employee_id" db:"employee_id"`
	FirmID            int64     `json:"firm_id" db:"firm_id"`
}

type AppointmentRequest struct {
	ID                int64      `json:"id"`
	Note              string     `json:"note" binding:"max=2000"`
	StartTime         *time.Time `json:"start_time"`
	EndTime           *time.Time `json:"end_time"`
	ClientID          *int64     `json:"client_id"`
	AppointmentTypeID *int64     `json:"appointment_type_id"`
	EmployeeID        *int64     `json:"employee_id"`
}

type AppointmentSearchRequest struct {
	filter.PageRequest
	ID                filter.Opt[int64]     `json:"id"`
	Note              filter.Opt[string]    `json:"note"`
	StartTime         filter.Opt[time.Time] `json:"start_time"`
	EndTime           filter.Opt[time.Time] `json:"end_time"`
	StartFrom         filter.Opt[time.Time] `json:"start_from"`
	StartTo           filter.Opt[time.Time] `json:"start_to"`
	ClientID          filter.Opt[int64]     `json:"client_id"`
	AppointmentTypeID filter.Opt[int64]     `json:"appointment_type_id"`
	EmployeeID        filter.Opt[int64]     `json:"employee_id"`
	CreatedBy         filter.Opt[int64]     `json:"created_by"`
}
