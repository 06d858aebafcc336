package extract

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validate checks the request against its enumerated sets. Error messages
// list the allowed values so a misconfigured job is diagnosable from logs.
func (r Request) Validate() error {
	validate := validator.New()
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return &ValidationError{Message: err.Error()}
	}

	fe := errs[0]
	switch fe.Field() {
	case "AdsType":
		return &ValidationError{
			Field:   "AdsType",
			Message: fmt.Sprintf("invalid ads type %q: must be one of [%s]", r.AdsType, strings.Join(strings.Fields(fe.Param()), " ")),
		}
	case "PropertyType":
		return &ValidationError{
			Field:   "PropertyType",
			Message: fmt.Sprintf("invalid property type %q: must be one of [%s]", r.PropertyType, strings.Join(strings.Fields(fe.Param()), " ")),
		}
	case "NumPages":
		return &ValidationError{
			Field:   "NumPages",
			Message: "num pages must be a positive integer",
		}
	case "Region":
		return &ValidationError{
			Field:   "Region",
			Message: "region must not be empty",
		}
	}
	return &ValidationError{Field: fe.Field(), Message: fe.Error()}
}
