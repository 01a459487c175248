package domain

import "fmt"

// Field names a shipping form input.
type Field string

const (
	FieldFirstName  Field = "firstName"
	FieldLastName   Field = "lastName"
	FieldEmail      Field = "email"
	FieldPhone      Field = "phone"
	FieldAddress    Field = "address"
	FieldCity       Field = "city"
	FieldPostalCode Field = "postalCode"
)

// Fields lists the form inputs in display order.
var Fields = []Field{
	FieldFirstName, FieldLastName, FieldEmail, FieldPhone,
	FieldAddress, FieldCity, FieldPostalCode,
}

func ParseField(s string) (Field, error) {
	for _, f := range Fields {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
}

type CheckoutFormData struct {
	FirstName  string `json:"firstName" validate:"notblank"`
	LastName   string `json:"lastName" validate:"notblank"`
	Email      string `json:"email" validate:"notblank,simpleemail"`
	Phone      string `json:"phone" validate:"notblank,frphone"`
	Address    string `json:"address" validate:"notblank"`
	City       string `json:"city" validate:"notblank"`
	PostalCode string `json:"postalCode" validate:"notblank,postalcode"`
}

func (f CheckoutFormData) Get(field Field) string {
	switch field {
	case FieldFirstName:
		return f.FirstName
	case FieldLastName:
		return f.LastName
	case FieldEmail:
		return f.Email
	case FieldPhone:
		return f.Phone
	case FieldAddress:
		return f.Address
	case FieldCity:
		return f.City
	case FieldPostalCode:
		return f.PostalCode
	}
	return ""
}

// FormPatch is a partial update; nil fields are left untouched.
type FormPatch struct {
	FirstName  *string
	LastName   *string
	Email      *string
	Phone      *string
	Address    *string
	City       *string
	PostalCode *string
}

func PatchField(field Field, value string) (FormPatch, error) {
	var p FormPatch
	switch field {
	case FieldFirstName:
		p.FirstName = &value
	case FieldLastName:
		p.LastName = &value
	case FieldEmail:
		p.Email = &value
	case FieldPhone:
		p.Phone = &value
	case FieldAddress:
		p.Address = &value
	case FieldCity:
		p.City = &value
	case FieldPostalCode:
		p.PostalCode = &value
	default:
		return FormPatch{}, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return p, nil
}

// Apply merges the patch into f and returns the result.
func (p FormPatch) Apply(f CheckoutFormData) CheckoutFormData {
	if p.FirstName != nil {
		f.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		f.LastName = *p.LastName
	}
	if p.Email != nil {
		f.Email = *p.Email
	}
	if p.Phone != nil {
		f.Phone = *p.Phone
	}
	if p.Address != nil {
		f.Address = *p.Address
	}
	if p.City != nil {
		f.City = *p.City
	}
	if p.PostalCode != nil {
		f.PostalCode = *p.PostalCode
	}
	return f
}
