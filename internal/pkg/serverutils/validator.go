package serverutils

import (
	"strings"

	"wiki-craft-be/internal/pkg/apperrors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest runs struct tag validation and reports the first batch of
// violations as one InvalidArgument error.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		var violations []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, verr := range verrs {
				violations = append(violations, verr.Field()+" failed "+verr.Tag())
			}
			return apperrors.InvalidArgument("validation failed: %s", strings.Join(violations, ", "))
		}
		return apperrors.InvalidArgument("validation failed: %v", err)
	}
	return nil
}
