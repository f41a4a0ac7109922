package filter

import (
	"fmt"
	"strings"

	apperrors "github.com/jwalitptl/chronosync/pkg/errors"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// SortOrder is a client sort request on a public field name.
type SortOrder struct {
	Field     string    `json:"field"`
	Direction Direction `json:"direction"`
}

// PageRequest carries zero-based paging and optional sorting.
type PageRequest struct {
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
	Sort     []SortOrder `json:"sort,omitempty"`
}

// Order is one resolved ORDER BY term.
type Order struct {
	Column string
	Desc   bool
}

// Sorting is the per-entity whitelist of sortable fields. TieBreaker is
// always appended so ordering is total.
type Sorting struct {
	Fields     map[string]string
	Default    []Order
	TieBreaker string
}

// Query is a spec bound to one page of a deterministic ordering.
type Query struct {
	Spec  Spec
	Page  int
	Size  int
	Order []Order
}

// Paginate validates the page request and resolves the ordering.
func Paginate(spec Spec, req PageRequest, sorting Sorting) (Query, error) {
	if req.Page < 0 {
		return Query{}, apperrors.BadRequest("page must not be negative", nil)
	}
	if req.PageSize < 0 {
		return Query{}, apperrors.BadRequest("page_size must be positive", nil)
	}

	size := req.PageSize
	if size == 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	order, err := resolveOrder(req.Sort, sorting)
	if err != nil {
		return Query{}, err
	}

	return Query{Spec: spec, Page: req.Page, Size: size, Order: order}, nil
}

func resolveOrder(requested []SortOrder, sorting Sorting) ([]Order, error) {
	order := make([]Order, 0, len(requested)+1)
	for _, s := range requested {
		column, ok := sorting.Fields[s.Field]
		if !ok {
			return nil, apperrors.BadRequest(fmt.Sprintf("cannot sort by %q", s.Field), nil)
		}

		switch Direction(strings.ToUpper(string(s.Direction))) {
		case "", Asc:
			order = append(order, Order{Column: column})
		case Desc:
			order = append(order, Order{Column: column, Desc: true})
		default:
			return nil, apperrors.BadRequest(fmt.Sprintf("invalid sort direction %q", s.Direction), nil)
		}
	}
	if len(order) == 0 {
		order = append(order, sorting.Default...)
	}

	tie := sorting.TieBreaker
	if tie == "" {
		tie = "id"
	}
	for _, o := range order {
		if o.Column == tie {
			return order, nil
		}
	}
	return append(order, Order{Column: tie}), nil
}

func (q Query) Limit() int {
	return q.Size
}

func (q Query) Offset() int {
	return q.Page * q.Size
}

// OrderBy renders the ORDER BY list, without the keyword.
func (q Query) OrderBy() string {
	terms := make([]string, 0, len(q.Order))
	for _, o := range q.Order {
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		terms = append(terms, o.Column+" "+dir)
	}
	return strings.Join(terms, ", ")
}

// Compare orders two rows the way OrderBy would. Rows with a NULL in a
// sort column come last, matching postgres ASC ordering.
func (q Query) Compare(a, b func(column string) any) int {
	for _, o := range q.Order {
		x, y := normalize(a(o.Column)), normalize(b(o.Column))
		var c int
		switch {
		case x == nil && y == nil:
			c = 0
		case x == nil:
			c = 1
		case y == nil:
			c = -1
		default:
			c, _ = compare(x, y)
		}
		if o.Desc {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return 0
}

// Page is one page of results plus totals.
type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	PageSize      int   `json:"page_size"`
	TotalElements int64 `json:"total_elements"`
	TotalPages    int   `json:"total_pages"`
}

func NewPage[T any](content []T, q Query, total int64) Page[T] {
	if content == nil {
		content = []T{}
	}
	size := int64(q.Size)
	if size <= 0 {
		size = DefaultPageSize
	}
	return Page[T]{
		Content:       content,
		Page:          q.Page,
		PageSize:      int(size),
		TotalElements: total,
		TotalPages:    int((total + size - 1) / size),
	}
}

// MapPage converts the content of a page and keeps its totals.
func MapPage[T, U any](p Page[T], fn func(T) U) Page[U] {
	content := make([]U, 0, len(p.Content))
	for _, item := range p.Content {
		content = append(content, fn(item))
	}
	return Page[U]{
		Content:       content,
		Page:          p.Page,
		PageSize:      p.PageSize,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
	}
}
