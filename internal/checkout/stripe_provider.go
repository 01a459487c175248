package checkout

import (
	"context"
	"errors"
	"net/http"

	"github.com/Piamias-Victor/maju/pkg/circuitbreaker"
	"github.com/Piamias-Victor/maju/pkg/logger"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

// Provider creates hosted checkout sessions.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// SessionAPI is the Stripe checkout session endpoint.
type SessionAPI interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

type StripeProvider struct {
	sessions SessionAPI
	breaker  *circuitbreaker.Breaker[*stripe.CheckoutSession]
	log      logrus.FieldLogger
}

func NewStripeProvider(secretKey string, opts circuitbreaker.Options, log logrus.FieldLogger) (*StripeProvider, error) {
	if secretKey == "" {
		return nil, ErrMissingSecretKey
	}
	sc := client.New(secretKey, nil)
	return NewStripeProviderWithAPI(sc.CheckoutSessions, opts, log), nil
}

func NewStripeProviderWithAPI(api SessionAPI, opts circuitbreaker.Options, log logrus.FieldLogger) *StripeProvider {
	if log == nil {
		log = logger.Discard()
	}
	log = logger.Component(log, "stripe")
	if opts.IsSuccessful == nil {
		opts.IsSuccessful = isNotOutage
	}
	return &StripeProvider{
		sessions: api,
		breaker:  circuitbreaker.New[*stripe.CheckoutSession]("stripe-checkout", opts, log),
		log:      log,
	}
}

func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	params.Context = ctx

	return p.breaker.Execute(func() (*stripe.CheckoutSession, error) {
		s, err := p.sessions.New(params)
		if err != nil {
			return nil, err
		}
		if s == nil {
			return nil, ErrEmptySession
		}
		return s, nil
	})
}

// isNotOutage keeps request errors, which a retry cannot fix, and calls
// abandoned by their caller from opening the breaker.
func isNotOutage(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var se *stripe.Error
	if errors.As(err, &se) {
		return se.HTTPStatusCode >= http.StatusBadRequest &&
			se.HTTPStatusCode < http.StatusInternalServerError &&
			se.HTTPStatusCode != http.StatusTooManyRequests
	}
	return false
}
