package query

import (
	"github.com/jwalitptl/chronosync/internal/filter"
	"github.com/jwalitptl/chronosync/internal/model"
)

var UserSorting = filter.Sorting{
	Fields: map[string]string{
		"id":         "id",
		"first_name": "first_name",
		"last_name":  "last_name",
		"username":   "username",
		"role":       "role",
		"created_at": "created_at",
	},
	Default: []filter.Order{{Column: "created_at"}},
}

// Users builds the user spec. A nil request matches every user.
func Users(req *model.UserSearchRequest) filter.Spec {
	if req == nil {
		return filter.All()
	}
	return filter.New().
		Where(
			filter.Equal("id", req.ID),
			filter.Contains("first_name", req.FirstName),
			filter.Contains("last_name", req.LastName),
			filter.Text("username", req.Username, req.ExactUsername),
			filter.In("role", req.Roles),
			filter.Equal("firm_id", req.FirmID),
			filter.Contains("unique_identifier", req.UniqueIdentifier),
		).
		Build()
}

// UsernameExact matches one username regardless of case.
func UsernameExact(username string) filter.Spec {
	return filter.New().Where(filter.EqualFold("username", filter.Some(username))).Build()
}
