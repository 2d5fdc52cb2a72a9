package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names so messages match request bodies.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// checkStruct validates s and converts the first failure into a
// validation *Error. A missing required field wins over other failures.
func checkStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return validationError(ErrInvalidField, "invalid input")
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return validationError(ErrMissingField, fe.Field()+" is required")
		}
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "email":
		return validationError(ErrInvalidField, fe.Field()+" must be a valid email address")
	case "max":
		return validationError(ErrInvalidField, fe.Field()+" must be at most "+fe.Param()+" characters")
	case "min":
		return validationError(ErrInvalidField, fe.Field()+" must be at least "+fe.Param()+" characters")
	case "oneof":
		return validationError(ErrInvalidField, fe.Field()+" must be one of: "+fe.Param())
	}
	return validationError(ErrInvalidField, fe.Field()+" is invalid")
}
