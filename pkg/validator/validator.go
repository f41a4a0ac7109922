// Package validator configures gin's request validation and turns its
// errors into client-facing messages.
package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	apperrors "github.com/jwalitptl/chronosync/pkg/errors"
)

var messages = map[string]string{
	"required": "is required",
	"email":    "must be a valid email",
	"min":      "is too short or too small",
	"max":      "is too long or too large",
	"oneof":    "must be one of: %s",
	"hexcolor": "must be a hex color",
}

var setup sync.Once

// Setup makes validation errors report json field names. It is safe to
// call more than once.
func Setup() {
	setup.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
	})
}

// FieldError is one rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Fields lists the rejected fields of a validation error.
func Fields(err error) []FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	out := make([]FieldError, 0, len(verrs))
	for _, e := range verrs {
		msg, ok := messages[e.Tag()]
		if !ok {
			msg = "failed " + e.Tag() + " validation"
		}
		if strings.Contains(msg, "%s") {
			msg = fmt.Sprintf(msg, e.Param())
		}
		out = append(out, FieldError{Field: e.Field(), Message: msg})
	}
	return out
}

// BadRequest converts a binding error into a bad request error.
func BadRequest(err error) error {
	if fields := Fields(err); len(fields) > 0 {
		parts := make([]string, len(fields))
		for i, f := range fields {
			parts[i] = f.Field + " " + f.Message
		}
		return apperrors.BadRequest("invalid request: "+strings.Join(parts, "; "), err)
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		return apperrors.BadRequest("malformed JSON body", err)
	case errors.As(err, &typeErr):
		return apperrors.BadRequest(fmt.Sprintf("%s has the wrong type", typeErr.Field), err)
	default:
		return apperrors.BadRequest("invalid request", err)
	}
}
