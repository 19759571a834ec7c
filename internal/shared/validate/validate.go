package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"userpost-service/internal/shared/apperr"

	"github.com/go-playground/validator/v10"
)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	// report json field names so error locations match the wire payload
	val.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return val
}

// Struct validates s against its `validate` tags. Rule violations come back as
// an *apperr.Error of kind validation, located under "body".
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]apperr.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, toFieldError(fe))
	}
	return apperr.Validation(fields...)
}

func toFieldError(fe validator.FieldError) apperr.FieldError {
	loc := []string{"body"}
	ns := strings.Split(fe.Namespace(), ".")
	if len(ns) > 1 {
		loc = append(loc, ns[1:]...)
	} else {
		loc = append(loc, fe.Field())
	}
	switch fe.Tag() {
	case "required":
		return apperr.FieldError{Loc: loc, Msg: "Field required", Type: "missing"}
	case "min":
		if fe.Kind() == reflect.String {
			return apperr.FieldError{
				Loc:  loc,
				Msg:  fmt.Sprintf("String should have at least %s character(s)", fe.Param()),
				Type: "string_too_short",
			}
		}
		return apperr.FieldError{
			Loc:  loc,
			Msg:  fmt.Sprintf("Input should be greater than or equal to %s", fe.Param()),
			Type: "greater_than_equal",
		}
	default:
		return apperr.FieldError{
			Loc:  loc,
			Msg:  fmt.Sprintf("failed on the '%s' rule", fe.Tag()),
			Type: fe.Tag(),
		}
	}
}
