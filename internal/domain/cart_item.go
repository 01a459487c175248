package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const cartImageURL = "https://www.maju-nutrition.com/cdn/shop/files/maju-bol-%s-explication-compartiments.jpg"

type CartItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Color    Color           `json:"color"`
	Quantity int             `json:"quantity"`
	Image    string          `json:"image"`
}

// NewCartItem builds the single cart line for the given variant.
func NewCartItem(c Color) (CartItem, error) {
	if !c.Valid() {
		return CartItem{}, fmt.Errorf("%w: %q", ErrInvalidColor, c)
	}
	return CartItem{
		ID:       ProductID,
		Name:     ProductName(c),
		Price:    UnitPrice,
		Color:    c,
		Quantity: CartQuantity,
		Image:    fmt.Sprintf(cartImageURL, c),
	}, nil
}

func (i CartItem) Total() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
