package query

import (
	"github.com/jwalitptl/chronosync/internal/filter"
	"github.com/jwalitptl/chronosync/internal/model"
)

var AppointmentSorting = filter.Sorting{
	Fields: map[string]string{
		"id":         "id",
		"start_time": "start_time",
		"end_time":   "end_time",
		"created_at": "created_at",
	},
	Default: []filter.Order{{Column: "start_time"}},
}

func Appointments(req *model.AppointmentSearchRequest) filter.Spec {
	if req == nil {
		return filter.All()
	}
	return filter.New().
		Where(
			filter.Equal("id", req.ID),
			filter.Contains("note", req.Note),
			filter.Equal("start_time", req.StartTime),
			filter.Equal("end_time", req.EndTime),
			filter.AtLeast("start_time", req.StartFrom),
			filter.AtMost("start_time", req.StartTo),
			filter.Equal("client_id", req.ClientID),
			filter.Equal("appointment_type_id", req.AppointmentTypeID),
			filter.Equal("employee_id", req.EmployeeID),
			filter.Equal("created_by", req.CreatedBy),
		).
		Build()
}
