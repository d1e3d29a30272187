package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateStruct checks the `validate` tags of v and reports the first
// violation as INVALID_INPUT, naming the offending field.
func ValidateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) || len(verrs) == 0 {
		return Wrap(ErrCodeInvalidInput, err, "validate")
	}
	e := verrs[0]
	field := e.Namespace()
	switch e.Tag() {
	case "required":
		return New(ErrCodeInvalidInput, "%s: field is required", field)
	case "min":
		return New(ErrCodeInvalidInput, "%s: must be at least %s", field, e.Param())
	case "max":
		return New(ErrCodeInvalidInput, "%s: must not exceed %s", field, e.Param())
	case "oneof":
		return New(ErrCodeInvalidInput, "%s: must be one of [%s]", field, e.Param())
	default:
		return New(ErrCodeInvalidInput, "%s: %s", field, fmt.Sprintf("validation failed (%s)", e.Tag()))
	}
}
