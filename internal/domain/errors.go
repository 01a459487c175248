package domain

import "errors"

var (
	ErrInvalidColor    = errors.New("invalid color")
	ErrInvalidQuantity = errors.New("quantity must be an integer between 1 and 10")
	ErrInvalidStep     = errors.New("step must be between 1 and 3")
	ErrUnknownField    = errors.New("unknown form field")
)
