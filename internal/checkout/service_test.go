package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Piamias-Victor/maju/internal/domain"
	"github.com/Piamias-Victor/maju/internal/events"
	"github.com/Piamias-Victor/maju/pkg/circuitbreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"
)

// mockProvider records every session request.
type mockProvider struct {
	mu      sync.Mutex
	params  []*stripe.CheckoutSessionParams
	session *stripe.CheckoutSession
	err     error
	delay   time.Duration
}

func (m *mockProvider) CreateCheckoutSession(_ context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	m.mu.Lock()
	m.params = append(m.params, params)
	m.mu.Unlock()

	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	return m.session, m.err
}

func (m *mockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.params)
}

type mockPublisher struct {
	mu     sync.Mutex
	events []events.SessionCreated
	err    error
}

func (m *mockPublisher) PublishSessionCreated(_ context.Context, e events.SessionCreated) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return m.err
}

func newTestService(t *testing.T, p Provider, pub events.Publisher) *Service {
	t.Helper()
	s, err := NewService(p, pub, "https://bol.maju.fr/", nil)
	require.NoError(t, err)
	return s
}

func TestNewService_RequiresSiteURL(t *testing.T) {
	_, err := NewService(&mockProvider{}, nil, "  ", nil)
	assert.ErrorIs(t, err, ErrMissingSiteURL)
}

func TestCreateSession_InvalidInputNeverReachesProvider(t *testing.T) {
	provider := &mockProvider{session: &stripe.CheckoutSession{ID: "cs_1"}}
	s := newTestService(t, provider, nil)

	tests := []struct {
		name string
		req  domain.CheckoutSessionRequest
		want error
	}{
		{"unknown color", domain.CheckoutSessionRequest{Color: "vert", Quantity: 1}, domain.ErrInvalidColor},
		{"empty color", domain.CheckoutSessionRequest{Quantity: 1}, domain.ErrInvalidColor},
		{"zero quantity", domain.CheckoutSessionRequest{Color: domain.ColorRose, Quantity: 0}, domain.ErrInvalidQuantity},
		{"quantity eleven", domain.CheckoutSessionRequest{Color: domain.ColorBleu, Quantity: 11}, domain.ErrInvalidQuantity},
		{"negative quantity", domain.CheckoutSessionRequest{Color: domain.ColorBleu, Quantity: -1}, domain.ErrInvalidQuantity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreateSession(context.Background(), tt.req, "")
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Equal(t, 0, provider.Calls())
}

func TestCreateSession_Success(t *testing.T) {
	provider := &mockProvider{session: &stripe.CheckoutSession{
		ID:          "cs_test_a1",
		URL:         "https://checkout.stripe.com/c/pay/cs_test_a1",
		AmountTotal: 7998,
	}}
	pub := &mockPublisher{}
	s := newTestService(t, provider, pub)

	resp, err := s.CreateSession(context.Background(), domain.CheckoutSessionRequest{Color: domain.ColorBleu, Quantity: 2}, "idem-1")

	require.NoError(t, err)
	assert.Equal(t, "cs_test_a1", resp.SessionID)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_a1", resp.URL)

	require.Len(t, pub.events, 1)
	assert.Equal(t, "cs_test_a1", pub.events[0].SessionID)
	assert.Equal(t, "bleu", pub.events[0].Color)
	assert.Equal(t, int64(7998), pub.events[0].AmountTotal)

	require.Equal(t, 1, provider.Calls())
	assert.Equal(t, "idem-1", *provider.params[0].IdempotencyKey)
}

func TestCreateSession_GeneratesIdempotencyKey(t *testing.T) {
	provider := &mockProvider{session: &stripe.CheckoutSession{ID: "cs_1", URL: "u"}}
	s := newTestService(t, provider, nil)

	_, err := s.CreateSession(context.Background(), domain.CheckoutSessionRequest{Color: domain.ColorRose, Quantity: 1}, "")
	require.NoError(t, err)

	require.NotNil(t, provider.params[0].IdempotencyKey)
	assert.Len(t, *provider.params[0].IdempotencyKey, 36)
}

func TestCreateSession_ProviderFailure(t *testing.T) {
	provider := &mockProvider{err: errors.New("Invalid API Key provided: sk_test_***")}
	pub := &mockPublisher{}
	s := newTestService(t, provider, pub)

	_, err := s.CreateSession(context.Background(), domain.CheckoutSessionRequest{Color: domain.ColorRose, Quantity: 1}, "")

	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "Invalid API Key provided: sk_test_***", err.Error())
	assert.Empty(t, pub.events)
}

func TestCreateSession_PublishFailureDoesNotFailCheckout(t *testing.T) {
	provider := &mockProvider{session: &stripe.CheckoutSession{ID: "cs_1", URL: "u"}}
	s := newTestService(t, provider, &mockPublisher{err: events.ErrQueueFull})

	resp, err := s.CreateSession(context.Background(), domain.CheckoutSessionRequest{Color: domain.ColorRose, Quantity: 1}, "")
	require.NoError(t, err)
	assert.Equal(t, "cs_1", resp.SessionID)
}

func TestCreateSession_DuplicateKeyCollapses(t *testing.T) {
	provider := &mockProvider{
		session: &stripe.CheckoutSession{ID: "cs_1", URL: "u"},
		delay:   100 * time.Millisecond,
	}
	pub := &mockPublisher{}
	s := newTestService(t, provider, pub)
	req := domain.CheckoutSessionRequest{Color: domain.ColorRose, Quantity: 1}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := s.CreateSession(context.Background(), req, "same-key")
			assert.NoError(t, err)
			assert.Equal(t, "cs_1", resp.SessionID)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, provider.Calls())
	assert.Len(t, pub.events, 1)
}

func TestSessionParams(t *testing.T) {
	s := newTestService(t, &mockProvider{}, nil)

	params := s.SessionParams(domain.CheckoutSessionRequest{Color: domain.ColorRose, Quantity: 3}, "key-1")

	assert.Equal(t, []*string{stripe.String("card")}, params.PaymentMethodTypes)
	assert.Equal(t, "payment", *params.Mode)
	assert.Equal(t, "always", *params.CustomerCreation)
	assert.True(t, *params.InvoiceCreation.Enabled)
	assert.Equal(t, "https://bol.maju.fr/merci?session_id={CHECKOUT_SESSION_ID}", *params.SuccessURL)
	assert.Equal(t, "https://bol.maju.fr/?cancelled=true", *params.CancelURL)
	assert.Equal(t, map[string]string{"color": "rose", "quantity": "3", "product": "bol-maju"}, params.Metadata)
	assert.Equal(t, "key-1", *params.IdempotencyKey)

	require.Len(t, params.LineItems, 1)
	item := params.LineItems[0]
	assert.Equal(t, int64(3), *item.Quantity)
	assert.Equal(t, "eur", *item.PriceData.Currency)
	assert.Equal(t, int64(3999), *item.PriceData.UnitAmount)

	product := item.PriceData.ProductData
	assert.Equal(t, "Bol maju - Rose Vif", *product.Name)
	assert.Equal(t, "Compartment bowl made in France - color Rose Vif", *product.Description)
	assert.Equal(t, []*string{stripe.String("https://bol.maju.fr/images/bol-maju-rose-600x600.jpg")}, product.Images)
	assert.Equal(t, map[string]string{"color": "rose", "product_type": "bol-maju", "made_in": "france"}, product.Metadata)

	countries := make([]string, 0, len(params.ShippingAddressCollection.AllowedCountries))
	for _, c := range params.ShippingAddressCollection.AllowedCountries {
		countries = append(countries, *c)
	}
	assert.Equal(t, []string{"FR", "BE", "CH", "LU", "MC"}, countries)

	require.Len(t, params.ShippingOptions, 1)
	rate := params.ShippingOptions[0].ShippingRateData
	assert.Equal(t, "fixed_amount", *rate.Type)
	assert.Equal(t, int64(0), *rate.FixedAmount.Amount)
	assert.Equal(t, "Livraison gratuite", *rate.DisplayName)
	assert.Equal(t, int64(2), *rate.DeliveryEstimate.Minimum.Value)
	assert.Equal(t, int64(4), *rate.DeliveryEstimate.Maximum.Value)
	assert.Equal(t, "business_day", *rate.DeliveryEstimate.Maximum.Unit)
}

// gatedProvider holds every call until release is closed and records whether
// the context it was given had ended by then.
type gatedProvider struct {
	started chan struct{}
	release chan struct{}

	mu     sync.Mutex
	calls  int
	ctxErr error
}

func (g *gatedProvider) CreateCheckoutSession(ctx context.Context, _ *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()

	close(g.started)
	<-g.release

	g.mu.Lock()
	g.ctxErr = ctx.Err()
	g.mu.Unlock()
	return &stripe.CheckoutSession{ID: "cs_shared", URL: "https://checkout.stripe.com/c/pay/cs_shared"}, nil
}

func TestCreateSession_CallerLeavingDoesNotAbortSharedSession(t *testing.T) {
	provider := &gatedProvider{started: make(chan struct{}), release: make(chan struct{})}
	pub := &mockPublisher{}
	s := newTestService(t, provider, pub)
	req := domain.CheckoutSessionRequest{Color: domain.ColorBleu, Quantity: 1}

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := s.CreateSession(firstCtx, req, "idem-1")
		first <- err
	}()
	<-provider.started
	cancelFirst()

	second := make(chan *domain.CheckoutSessionResponse, 1)
	go func() {
		resp, err := s.CreateSession(context.Background(), req, "idem-1")
		assert.NoError(t, err)
		second <- resp
	}()
	time.Sleep(20 * time.Millisecond)
	close(provider.release)

	require.NoError(t, <-first)
	resp := <-second
	require.NotNil(t, resp)
	assert.Equal(t, "cs_shared", resp.SessionID)

	provider.mu.Lock()
	defer provider.mu.Unlock()
	assert.Equal(t, 1, provider.calls)
	assert.NoError(t, provider.ctxErr)
	assert.Len(t, pub.events, 1)
}

// deadlineProvider blocks until its context ends.
type deadlineProvider struct{}

func (deadlineProvider) CreateCheckoutSession(ctx context.Context, _ *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestCreateSession_ProviderTimeoutIsServerOwned(t *testing.T) {
	s, err := NewService(deadlineProvider{}, nil, "https://bol.maju.fr", nil, WithProviderTimeout(20*time.Millisecond))
	require.NoError(t, err)

	_, err = s.CreateSession(context.Background(), domain.CheckoutSessionRequest{Color: domain.ColorRose, Quantity: 1}, "")

	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCreateSession_AbortedCheckoutsDoNotOpenBreaker(t *testing.T) {
	api := &blockingSessionAPI{delay: 30 * time.Millisecond}
	provider := NewStripeProviderWithAPI(api, circuitbreaker.Options{MaxFailures: 5, OpenTimeout: time.Minute}, nil)
	s := newTestService(t, provider, nil)
	req := domain.CheckoutSessionRequest{Color: domain.ColorRose, Quantity: 1}

	for i := 0; i < 5; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		time.AfterFunc(5*time.Millisecond, cancel)
		_, err := s.CreateSession(ctx, req, "")
		require.NoError(t, err)
		cancel()
	}

	resp, err := s.CreateSession(context.Background(), req, "")
	require.NoError(t, err)
	assert.Equal(t, "cs_1", resp.SessionID)
	assert.Equal(t, "closed", provider.breaker.State())
	assert.Equal(t, 6, api.Calls())
}
