package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    Color
		wantErr bool
	}{
		{"rose", ColorRose, false},
		{"bleu", ColorBleu, false},
		{" Rose ", ColorRose, false},
		{"vert", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidColor)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProductPricing(t *testing.T) {
	assert.Equal(t, int64(3999), UnitAmount())
	assert.Equal(t, "20", Savings().String())
	assert.Equal(t, int64(33), SavingsPercent())
	assert.Equal(t, "39,99 €", FormatPrice(UnitPrice))
}

func TestNewCartItem(t *testing.T) {
	item, err := NewCartItem(ColorBleu)
	require.NoError(t, err)

	assert.Equal(t, "bol-maju", item.ID)
	assert.Equal(t, "Bol maju - Bleu", item.Name)
	assert.Equal(t, 1, item.Quantity)
	assert.True(t, item.Price.Equal(UnitPrice))
	assert.Equal(t, "https://www.maju-nutrition.com/cdn/shop/files/maju-bol-bleu-explication-compartiments.jpg", item.Image)
	assert.Equal(t, "39.99", item.Total().StringFixed(2))

	_, err = NewCartItem("green")
	assert.ErrorIs(t, err, ErrInvalidColor)
}

func TestStepNavigationIsClamped(t *testing.T) {
	assert.Equal(t, StepShipping, StepReview.Next())
	assert.Equal(t, StepPayment, StepPayment.Next())
	assert.Equal(t, StepReview, StepReview.Previous())
	assert.Equal(t, StepShipping, StepPayment.Previous())
	assert.False(t, Step(4).Valid())
	assert.Equal(t, "Shipping details", StepShipping.Title())
}

func TestValidQuantity(t *testing.T) {
	assert.False(t, ValidQuantity(0))
	assert.True(t, ValidQuantity(1))
	assert.True(t, ValidQuantity(10))
	assert.False(t, ValidQuantity(11))
}

func TestFormPatchMergesOnlyProvidedFields(t *testing.T) {
	form := CheckoutFormData{FirstName: "Marie", City: "Lyon"}

	patch, err := PatchField(FieldCity, "Paris")
	require.NoError(t, err)
	form = patch.Apply(form)

	assert.Equal(t, "Marie", form.FirstName)
	assert.Equal(t, "Paris", form.Get(FieldCity))

	_, err = PatchField("nickname", "x")
	assert.ErrorIs(t, err, ErrUnknownField)
}
