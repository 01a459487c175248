package form

import "errors"

var (
	ErrSubmitInProgress = errors.New("form submission already in progress")
	ErrInvalidForm      = errors.New("shipping form has invalid fields")
)
