package checkout

import (
	"fmt"
	"strconv"

	"github.com/Piamias-Victor/maju/internal/domain"
	"github.com/stripe/stripe-go/v79"
)

// Countries the product ships to.
var ShippingCountries = []string{"FR", "BE", "CH", "LU", "MC"}

const (
	shippingLabel       = "Livraison gratuite"
	deliveryMinDays     = 2
	deliveryMaxDays     = 4
	productDescription  = "Compartment bowl made in France - color %s"
	productImagePattern = "%s/images/bol-maju-%s-600x600.jpg"
)

// SessionParams builds the hosted checkout request for req.
func (s *Service) SessionParams(req domain.CheckoutSessionRequest, idempotencyKey string) *stripe.CheckoutSessionParams {
	color := string(req.Color)

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(domain.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(domain.ProductName(req.Color)),
						Description: stripe.String(fmt.Sprintf(productDescription, req.Color.DisplayName())),
						Images:      stripe.StringSlice([]string{fmt.Sprintf(productImagePattern, s.siteURL, color)}),
						Metadata: map[string]string{
							"color":        color,
							"product_type": domain.ProductType,
							"made_in":      domain.MadeIn,
						},
					},
					UnitAmount: stripe.Int64(domain.UnitAmount()),
				},
				Quantity: stripe.Int64(int64(req.Quantity)),
			},
		},
		ShippingAddressCollection: &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice(ShippingCountries),
		},
		ShippingOptions: []*stripe.CheckoutSessionShippingOptionParams{
			{
				ShippingRateData: &stripe.CheckoutSessionShippingOptionShippingRateDataParams{
					Type: stripe.String("fixed_amount"),
					FixedAmount: &stripe.CheckoutSessionShippingOptionShippingRateDataFixedAmountParams{
						Amount:   stripe.Int64(0),
						Currency: stripe.String(domain.Currency),
					},
					DisplayName: stripe.String(shippingLabel),
					DeliveryEstimate: &stripe.CheckoutSessionShippingOptionShippingRateDataDeliveryEstimateParams{
						Minimum: &stripe.CheckoutSessionShippingOptionShippingRateDataDeliveryEstimateMinimumParams{
							Unit:  stripe.String("business_day"),
							Value: stripe.Int64(deliveryMinDays),
						},
						Maximum: &stripe.CheckoutSessionShippingOptionShippingRateDataDeliveryEstimateMaximumParams{
							Unit:  stripe.String("business_day"),
							Value: stripe.Int64(deliveryMaxDays),
						},
					},
				},
			},
		},
		CustomerCreation: stripe.String(string(stripe.CheckoutSessionCustomerCreationAlways)),
		InvoiceCreation: &stripe.CheckoutSessionInvoiceCreationParams{
			Enabled: stripe.Bool(true),
		},
		SuccessURL: stripe.String(s.siteURL + "/merci?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(s.siteURL + "/?cancelled=true"),
	}

	params.AddMetadata("color", color)
	params.AddMetadata("quantity", strconv.Itoa(req.Quantity))
	params.AddMetadata("product", domain.ProductID)

	if idempotencyKey != "" {
		params.SetIdempotencyKey(idempotencyKey)
	}
	return params
}
