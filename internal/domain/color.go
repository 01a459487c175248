package domain

import (
	"fmt"
	"strings"
)

// Color is a product variant.
type Color string

const (
	ColorRose Color = "rose"
	ColorBleu Color = "bleu"
)

// Colors lists every variant in display order.
var Colors = []Color{ColorRose, ColorBleu}

func (c Color) Valid() bool {
	return c == ColorRose || c == ColorBleu
}

// DisplayName is the human label used in product names.
func (c Color) DisplayName() string {
	switch c {
	case ColorRose:
		return "Rose Vif"
	case ColorBleu:
		return "Bleu"
	default:
		return string(c)
	}
}

func (c Color) String() string {
	return string(c)
}

func ParseColor(s string) (Color, error) {
	c := Color(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return c, nil
}
