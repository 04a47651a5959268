package contextutils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateStruct runs the `validate` struct tags on s and converts failures into
// an ErrValidationFailed AppError listing every offending field.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return WrapError(err, "validation could not be performed")
	}

	problems := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		if fe.Param() != "" {
			problems = append(problems, fmt.Sprintf("%s failed '%s=%s'", fe.Namespace(), fe.Tag(), fe.Param()))
		} else {
			problems = append(problems, fmt.Sprintf("%s failed '%s'", fe.Namespace(), fe.Tag()))
		}
	}

	return NewAppErrorWithCause(
		ErrorCodeValidationFailed,
		SeverityWarn,
		ErrValidationFailed.Message,
		strings.Join(problems, "; "),
		err,
	)
}

// IsValidURL reports whether raw is an absolute http(s) URL
func IsValidURL(raw string) bool {
	return validate.Var(raw, "required,http_url") == nil
}
