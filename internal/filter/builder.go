package filter

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

// Op is the comparison a clause applies to its column.
type Op int

const (
	OpEqual Op = iota
	OpContains
	OpEqualFold
	OpIn
	OpAtLeast
	OpAtMost
)

func (o Op) String() string {
	switch o {
	case OpEqual:
		return "eq"
	case OpContains:
		return "contains"
	case OpEqualFold:
		return "eq_fold"
	case OpIn:
		return "in"
	case OpAtLeast:
		return "gte"
	case OpAtMost:
		return "lte"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Clause is one named predicate. The zero Clause has no column and
// contributes nothing when added to a Builder.
type Clause struct {
	Column string
	Op     Op
	Value  any
}

func (c Clause) IsZero() bool {
	return c.Column == ""
}

// Equal matches the column against v. Absent values and blank strings
// produce no clause; numeric zero is a real value.
func Equal[T any](column string, v Opt[T]) Clause {
	val, ok := v.Get()
	if !ok || isBlank(val) {
		return Clause{}
	}
	return Clause{Column: column, Op: OpEqual, Value: val}
}

// Contains is a case-insensitive substring match on the trimmed value.
func Contains(column string, v Opt[string]) Clause {
	s, ok := v.Get()
	s = strings.TrimSpace(s)
	if !ok || s == "" {
		return Clause{}
	}
	return Clause{Column: column, Op: OpContains, Value: strings.ToLower(s)}
}

// EqualFold is a case-insensitive whole-value match.
func EqualFold(column string, v Opt[string]) Clause {
	s, ok := v.Get()
	s = strings.TrimSpace(s)
	if !ok || s == "" {
		return Clause{}
	}
	return Clause{Column: column, Op: OpEqualFold, Value: strings.ToLower(s)}
}

// Text picks EqualFold when exact is set and Contains otherwise.
func Text(column string, v Opt[string], exact bool) Clause {
	if exact {
		return EqualFold(column, v)
	}
	return Contains(column, v)
}

// In matches any of values. An empty list produces no clause.
func In[T any](column string, values []T) Clause {
	if len(values) == 0 {
		return Clause{}
	}
	vals := make([]any, 0, len(values))
	for _, v := range values {
		vals = append(vals, v)
	}
	return Clause{Column: column, Op: OpIn, Value: vals}
}

func AtLeast[T any](column string, v Opt[T]) Clause {
	val, ok := v.Get()
	if !ok {
		return Clause{}
	}
	return Clause{Column: column, Op: OpAtLeast, Value: val}
}

func AtMost[T any](column string, v Opt[T]) Clause {
	val, ok := v.Get()
	if !ok {
		return Clause{}
	}
	return Clause{Column: column, Op: OpAtMost, Value: val}
}

// Builder accumulates clauses for one entity collection.
type Builder struct {
	clauses []Clause
}

func New() *Builder {
	return &Builder{}
}

// Where adds every non-zero clause. Clauses are combined with AND.
func (b *Builder) Where(clauses ...Clause) *Builder {
	for _, c := range clauses {
		if c.IsZero() {
			continue
		}
		b.clauses = append(b.clauses, c)
	}
	return b
}

func (b *Builder) Build() Spec {
	clauses := make([]Clause, len(b.clauses))
	copy(clauses, b.clauses)
	return Spec{clauses: clauses}
}

// Spec is a compiled, immutable conjunction of clauses. The zero Spec
// matches every row.
type Spec struct {
	clauses []Clause
}

func All() Spec {
	return Spec{}
}

func (s Spec) IsEmpty() bool {
	return len(s.clauses) == 0
}

func (s Spec) Clauses() []Clause {
	out := make([]Clause, len(s.clauses))
	copy(out, s.clauses)
	return out
}

// And returns a spec holding the clauses of both.
func (s Spec) And(other Spec) Spec {
	clauses := make([]Clause, 0, len(s.clauses)+len(other.clauses))
	clauses = append(clauses, s.clauses...)
	clauses = append(clauses, other.clauses...)
	return Spec{clauses: clauses}
}

// SQL renders the conjunction with postgres placeholders starting at
// $startArg. An empty spec renders an empty condition and no args.
func (s Spec) SQL(startArg int) (string, []any) {
	if len(s.clauses) == 0 {
		return "", nil
	}

	conds := make([]string, 0, len(s.clauses))
	args := make([]any, 0, len(s.clauses))
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", startArg+len(args)-1)
	}

	for _, c := range s.clauses {
		switch c.Op {
		case OpEqual:
			conds = append(conds, fmt.Sprintf("%s = %s", c.Column, next(c.Value)))
		case OpContains:
			pattern := "%" + escapeLike(c.Value.(string)) + "%"
			conds = append(conds, fmt.Sprintf(`LOWER(%s) LIKE %s ESCAPE '\'`, c.Column, next(pattern)))
		case OpEqualFold:
			conds = append(conds, fmt.Sprintf("LOWER(%s) = %s", c.Column, next(c.Value)))
		case OpIn:
			vals := c.Value.([]any)
			ph := make([]string, 0, len(vals))
			for _, v := range vals {
				ph = append(ph, next(v))
			}
			conds = append(conds, fmt.Sprintf("%s IN (%s)", c.Column, strings.Join(ph, ", ")))
		case OpAtLeast:
			conds = append(conds, fmt.Sprintf("%s >= %s", c.Column, next(c.Value)))
		case OpAtMost:
			conds = append(conds, fmt.Sprintf("%s <= %s", c.Column, next(c.Value)))
		}
	}

	return strings.Join(conds, " AND "), args
}

// Where is SQL prefixed with " WHERE ", or empty for an empty spec.
func (s Spec) Where(startArg int) (string, []any) {
	cond, args := s.SQL(startArg)
	if cond == "" {
		return "", nil
	}
	return " WHERE " + cond, args
}

// Match evaluates the spec against a row exposed through field.
func (s Spec) Match(field func(column string) any) bool {
	for _, c := range s.clauses {
		if !c.match(field(c.Column)) {
			return false
		}
	}
	return true
}

func (c Clause) match(raw any) bool {
	v := normalize(raw)
	if v == nil {
		return false
	}

	switch c.Op {
	case OpEqual:
		cmp, ok := compare(v, normalize(c.Value))
		return ok && cmp == 0
	case OpContains:
		s, ok := v.(string)
		return ok && strings.Contains(strings.ToLower(s), c.Value.(string))
	case OpEqualFold:
		s, ok := v.(string)
		return ok && strings.ToLower(s) == c.Value.(string)
	case OpIn:
		for _, want := range c.Value.([]any) {
			if cmp, ok := compare(v, normalize(want)); ok && cmp == 0 {
				return true
			}
		}
		return false
	case OpAtLeast:
		cmp, ok := compare(v, normalize(c.Value))
		return ok && cmp >= 0
	case OpAtMost:
		cmp, ok := compare(v, normalize(c.Value))
		return ok && cmp <= 0
	}
	return false
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func isBlank(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.String && strings.TrimSpace(rv.String()) == ""
}

// normalize folds named and pointer types onto string, int64, float64,
// bool and time.Time so values of different declared types compare.
func normalize(v any) any {
	if v == nil {
		return nil
	}
	if t, ok := v.(time.Time); ok {
		return t
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if t, ok := rv.Interface().(time.Time); ok {
		return t
	}

	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.Bool:
		return rv.Bool()
	default:
		return rv.Interface()
	}
}

func compare(a, b any) (int, bool) {
	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(x, y), true
	case int64:
		switch y := b.(type) {
		case int64:
			return cmpOrdered(x, y), true
		case float64:
			return cmpOrdered(float64(x), y), true
		}
	case float64:
		switch y := b.(type) {
		case float64:
			return cmpOrdered(x, y), true
		case int64:
			return cmpOrdered(x, float64(y)), true
		}
	case bool:
		y, ok := b.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case x == y:
			return 0, true
		case !x:
			return -1, true
		default:
			return 1, true
		}
	case time.Time:
		y, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return x.Compare(y), true
	}
	return 0, false
}

func cmpOrdered[T int64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
