package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Piamias-Victor/maju/internal/domain"
	"github.com/Piamias-Victor/maju/internal/events"
	"github.com/Piamias-Victor/maju/pkg/logger"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v79"
	"golang.org/x/sync/singleflight"
)

// DefaultProviderTimeout bounds one provider call.
const DefaultProviderTimeout = 30 * time.Second

// Service turns a color and quantity into a hosted payment session.
type Service struct {
	provider  Provider
	publisher events.Publisher
	siteURL   string
	timeout   time.Duration
	log       logrus.FieldLogger
	now       func() time.Time
	group     singleflight.Group
}

type ServiceOption func(*Service)

// WithProviderTimeout sets the deadline of a provider call. It is owned by
// the server and does not follow the caller's context.
func WithProviderTimeout(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func NewService(provider Provider, publisher events.Publisher, siteURL string, log logrus.FieldLogger, opts ...ServiceOption) (*Service, error) {
	siteURL = strings.TrimRight(strings.TrimSpace(siteURL), "/")
	if siteURL == "" {
		return nil, ErrMissingSiteURL
	}
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if log == nil {
		log = logger.Discard()
	}
	s := &Service{
		provider:  provider,
		publisher: publisher,
		siteURL:   siteURL,
		timeout:   DefaultProviderTimeout,
		log:       logger.Component(log, "checkout"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Validate rejects requests before anything is sent to the provider.
func (s *Service) Validate(req domain.CheckoutSessionRequest) error {
	if !req.Color.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidColor, req.Color)
	}
	if !domain.ValidQuantity(req.Quantity) {
		return domain.ErrInvalidQuantity
	}
	return nil
}

// CreateSession validates req and creates the provider session. Concurrent
// calls sharing an idempotency key and body are collapsed into one provider
// call. An empty key gets a fresh one. The provider call is detached from
// ctx cancellation, so a caller going away neither aborts the session nor
// fails the callers sharing it.
func (s *Service) CreateSession(ctx context.Context, req domain.CheckoutSessionRequest, idempotencyKey string) (*domain.CheckoutSessionResponse, error) {
	if err := s.Validate(req); err != nil {
		return nil, err
	}
	if idempotencyKey == "" {
		idempotencyKey = uuid.NewString()
	}

	log := logger.FromContext(ctx, s.log).WithFields(logrus.Fields{
		"color":    req.Color,
		"quantity": req.Quantity,
	})

	flightKey := fmt.Sprintf("%s:%s:%d", idempotencyKey, req.Color, req.Quantity)
	v, err, shared := s.group.Do(flightKey, func() (interface{}, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()

		session, err := s.provider.CreateCheckoutSession(fctx, s.SessionParams(req, idempotencyKey))
		if err != nil {
			return nil, err
		}
		s.publishCreated(fctx, log, req, session)
		return session, nil
	})
	if err != nil {
		log.WithError(err).Error("checkout session creation failed")
		return nil, &ProviderError{Err: err}
	}

	session := v.(*stripe.CheckoutSession)
	log.WithFields(logrus.Fields{
		"session_id": session.ID,
		"shared":     shared,
	}).Info("checkout session created")

	return &domain.CheckoutSessionResponse{
		SessionID: session.ID,
		URL:       session.URL,
	}, nil
}

func (s *Service) publishCreated(ctx context.Context, log logrus.FieldLogger, req domain.CheckoutSessionRequest, session *stripe.CheckoutSession) {
	amount := session.AmountTotal
	if amount == 0 {
		amount = domain.UnitAmount() * int64(req.Quantity)
	}

	e := events.NewSessionCreated(session.ID, string(req.Color), req.Quantity, amount, domain.Currency, s.now())
	if err := s.publisher.PublishSessionCreated(ctx, e); err != nil {
		log.WithError(err).Warn("failed to publish checkout event")
	}
}
