package form

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/Piamias-Victor/maju/internal/domain"
	"github.com/go-playground/validator/v10"
)

var (
	emailPattern      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern      = regexp.MustCompile(`^(?:\+33|0)?[1-9][0-9]{8}$`)
	postalCodePattern = regexp.MustCompile(`^[0-9]{5}$`)
)

// Errors maps each failing field to its message.
type Errors map[domain.Field]string

func (e Errors) Has(f domain.Field) bool {
	_, ok := e[f]
	return ok
}

var requiredMessages = map[domain.Field]string{
	domain.FieldFirstName:  "First name is required",
	domain.FieldLastName:   "Last name is required",
	domain.FieldEmail:      "Email is required",
	domain.FieldPhone:      "Phone is required",
	domain.FieldAddress:    "Address is required",
	domain.FieldCity:       "City is required",
	domain.FieldPostalCode: "Postal code is required",
}

var formatMessages = map[string]string{
	"simpleemail": "Invalid email format",
	"frphone":     "Invalid phone number",
	"postalcode":  "Invalid postal code (5 digits)",
}

// Validator checks the shipping form. Safe for concurrent use.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	mustRegister(v, "notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	mustRegister(v, "simpleemail", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "frphone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(stripSpaces(fl.Field().String()))
	})
	mustRegister(v, "postalcode", func(fl validator.FieldLevel) bool {
		return postalCodePattern.MatchString(fl.Field().String())
	})

	return &Validator{v: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// Validate checks every field in one pass. The result is empty when the
// form is valid.
func (v *Validator) Validate(data domain.CheckoutFormData) Errors {
	errs := Errors{}

	err := v.v.Struct(data)
	if err == nil {
		return errs
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// Only reachable on a programming error in the struct tags.
		panic(err)
	}

	for _, fe := range verrs {
		field := domain.Field(fe.Field())
		if fe.Tag() == "notblank" {
			errs[field] = requiredMessages[field]
			continue
		}
		errs[field] = formatMessages[fe.Tag()]
	}
	return errs
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
