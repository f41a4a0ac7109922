package query

import (
	"github.com/jwalitptl/chronosync/internal/filter"
	"github.com/jwalitptl/chronosync/internal/model"
)

var FirmSorting = filter.Sorting{
	Fields: map[string]string{
		"id":         "id",
		"name":       "name",
		"created_at": "created_at",
	},
	Default: []filter.Order{{Column: "created_at"}},
}

func Firms(req *model.FirmSearchRequest) filter.Spec {
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

// InFirm scopes any spec to one firm.
func InFirm(spec filter.Spec, firmID int64) filter.Spec {
	return spec.And(filter.New().Where(filter.Equal("firm_id", filter.Some(firmID))).Build())
}
