package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	ProductID   = "bol-maju"
	ProductType = "bol-maju"
	MadeIn      = "france"
	Currency    = "eur"

	// MinQuantity and MaxQuantity bound what the checkout endpoint accepts.
	MinQuantity = 1
	MaxQuantity = 10
	// CartQuantity is the only quantity the storefront ever orders.
	CartQuantity = 1
)

var (
	UnitPrice     = decimal.RequireFromString("39.99")
	OriginalPrice = decimal.RequireFromString("59.99")
)

// UnitAmount is the unit price in the currency's minor unit (cents).
func UnitAmount() int64 {
	return UnitPrice.Shift(2).IntPart()
}

func Savings() decimal.Decimal {
	return OriginalPrice.Sub(UnitPrice)
}

// SavingsPercent is the discount rounded to a whole percent.
func SavingsPercent() int64 {
	return Savings().Div(OriginalPrice).Shift(2).Round(0).IntPart()
}

func ProductName(c Color) string {
	return fmt.Sprintf("Bol maju - %s", c.DisplayName())
}

func ValidQuantity(q int) bool {
	return q >= MinQuantity && q <= MaxQuantity
}

// FormatPrice renders an amount the way the storefront displays it, e.g. "39,99 €".
func FormatPrice(d decimal.Decimal) string {
	return strings.Replace(d.StringFixed(2), ".", ",", 1) + " €"
}
