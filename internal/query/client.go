package query

import (
	"github.com/jwalitptl/chronosync/internal/filter"
	"github.com/jwalitptl/chronosync/internal/model"
)

var ClientSorting = filter.Sorting{
	Fields: map[string]string{
		"id":         "id",
		"first_name": "first_name",
		"last_name":  "last_name",
		"email":      "email",
		"created_at": "created_at",
	},
	Default: []filter.Order{{Column: "created_at"}},
}

func Clients(req *model.ClientSearchRequest) filter.Spec {
	if req == nil {
		return filter.All()
	}
	return filter.New().
		Where(
			filter.Equal("id", req.ID),
			filter.Contains("first_name", req.FirstName),
			filter.Contains("last_name", req.LastName),
			filter.Contains("email", req.Email),
			filter.Contains("phone", req.Phone),
			filter.Contains("unique_identifier", req.UniqueIdentifier),
		).
		Build()
}

// ClientIdentity matches the exact identity tuple that is unique per firm.
func ClientIdentity(firmID int64, p model.Person) filter.Spec {
	return filter.New().
		Where(
			filter.Equal("first_name", filter.Some(p.FirstName)),
			filter.Equal("last_name", filter.Some(p.LastName)),
			filter.Equal("email", filter.Some(p.Email)),
			filter.Equal("phone", filter.Some(p.Phone)),
			filter.Equal("firm_id", filter.Some(firmID)),
		).
		Build()
}
