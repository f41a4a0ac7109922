package query

import (
	"github.com/jwalitptl/chronosync/internal/filter"
	"github.com/jwalitptl/chronosync/internal/model"
)

var AppointmentTypeSorting = filter.Sorting{
	Fields: map[string]string{
		"id":               "id",
		"name":             "name",
		"duration_minutes": "duration_minutes",
		"price":            "price",
		"created_at":       "created_at",
	},
	Default: []filter.Order{{Column: "created_at"}},
}

func AppointmentTypes(req *model.AppointmentTypeSearchRequest) filter.Spec {
	if req == nil {
		return filter.All()
	}
	return filter.New().
		Where(
			filter.Equal("id", req.ID),
			filter.Contains("name", req.Name),
		).
		Build()
}
