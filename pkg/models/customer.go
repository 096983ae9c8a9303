package models

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"julianmorley.ca/con-plar/petmart/pkg/global"
)

// CustomerInfo is the contact data submitted at checkout or reservation time.
// Valid is only ever set by Validate.
type CustomerInfo struct {
	Name               string `json:"name" validate:"required,min=2,max=100"`
	Address            string `json:"address" validate:"required,max=255"`
	Email              string `json:"email" validate:"required,email,max=254"`
	Phone              string `json:"phone" validate:"required,min=7,max=20"`
	PreferredVisitDate string `json:"preferredVisitDate,omitempty" validate:"omitempty,max=50"`
	Message            string `json:"message,omitempty" validate:"omitempty,max=1000"`
	Valid              bool   `json:"valid"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func customerValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report json names so field errors match the request body
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Normalize trims whitespace and lower-cases the email
func (ci *CustomerInfo) Normalize() {
	ci.Name = strings.TrimSpace(ci.Name)
	ci.Address = strings.TrimSpace(ci.Address)
	ci.Email = strings.ToLower(strings.TrimSpace(ci.Email))
	ci.Phone = strings.TrimSpace(ci.Phone)
	ci.PreferredVisitDate = strings.TrimSpace(ci.PreferredVisitDate)
	ci.Message = strings.TrimSpace(ci.Message)
}

// Validate normalizes the info, sets Valid and returns the failing fields
func (ci *CustomerInfo) Validate() []global.ValidationError {
	ci.Normalize()
	err := customerValidator().Struct(ci)
	if err == nil {
		ci.Valid = true
		return nil
	}
	ci.Valid = false

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []global.ValidationError{{Field: "customer", Message: err.Error(), Code: "validation_error"}}
	}
	out := make([]global.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, global.ValidationError{
			Field:   fe.Field(),
			Message: describeFieldError(fe),
			Code:    fe.Tag(),
		})
	}
	return out
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}
