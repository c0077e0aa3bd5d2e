package serverutils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/CustomGPTer/RAMS-Generator/internal/pkg/apperror"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report json names so messages match the request body
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// ValidateRequest checks the validate tags of req and returns an
// apperror.ErrValidation describing the first failing field.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperror.Validation(err.Error())
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return apperror.Validation(fmt.Sprintf("%s is required", fe.Field()))
	case "max":
		return apperror.Validation(fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
	default:
		return apperror.Validation(fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()))
	}
}
