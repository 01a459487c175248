package form

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Piamias-Victor/maju/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockCart records step advances.
type mockCart struct {
	mu        sync.Mutex
	form      domain.CheckoutFormData
	nextCalls int
}

func (m *mockCart) FormData() domain.CheckoutFormData {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.form
}

func (m *mockCart) UpdateFormData(p domain.FormPatch) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.form = p.Apply(m.form)
}

func (m *mockCart) NextStep() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextCalls++
}

func (m *mockCart) NextCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.nextCalls
}

type recordingSleep struct {
	mu    sync.Mutex
	calls []time.Duration
}

func (r *recordingSleep) Sleep(_ context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, d)
	return nil
}

func TestSubmit_InvalidFormDoesNotAdvance(t *testing.T) {
	cart := &mockCart{form: validForm()}
	cart.form.Email = ""
	sleeper := &recordingSleep{}
	f := NewForm(cart, NewValidator(), WithSleep(sleeper.Sleep))

	errs, err := f.Submit(context.Background())

	assert.ErrorIs(t, err, ErrInvalidForm)
	assert.Equal(t, Errors{domain.FieldEmail: "Email is required"}, errs)
	assert.Equal(t, errs, f.Errors())
	assert.Equal(t, 0, cart.NextCalls())
	assert.Empty(t, sleeper.calls)
}

func TestSubmit_ValidFormAdvancesOnceAfterDelay(t *testing.T) {
	cart := &mockCart{form: validForm()}
	sleeper := &recordingSleep{}
	f := NewForm(cart, NewValidator(), WithSleep(sleeper.Sleep))

	errs, err := f.Submit(context.Background())

	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.Equal(t, 1, cart.NextCalls())
	assert.Equal(t, []time.Duration{DefaultSubmitDelay}, sleeper.calls)
	assert.False(t, f.Submitting())
}

func TestSet_ClearsFieldError(t *testing.T) {
	cart := &mockCart{}
	f := NewForm(cart, NewValidator(), WithSleep((&recordingSleep{}).Sleep))

	_, err := f.Submit(context.Background())
	require.ErrorIs(t, err, ErrInvalidForm)
	require.True(t, f.Errors().Has(domain.FieldCity))

	require.NoError(t, f.Set(domain.FieldCity, "Nantes"))

	assert.False(t, f.Errors().Has(domain.FieldCity))
	assert.True(t, f.Errors().Has(domain.FieldFirstName))
	assert.Equal(t, "Nantes", cart.FormData().City)

	assert.ErrorIs(t, f.Set("nickname", "x"), domain.ErrUnknownField)
}

func TestSubmit_RejectsConcurrentSubmit(t *testing.T) {
	cart := &mockCart{form: validForm()}
	release := make(chan struct{})
	entered := make(chan struct{})
	f := NewForm(cart, NewValidator(), WithSleep(func(ctx context.Context, _ time.Duration) error {
		close(entered)
		<-release
		return nil
	}))

	done := make(chan error, 1)
	go func() {
		_, err := f.Submit(context.Background())
		done <- err
	}()

	<-entered
	assert.True(t, f.Submitting())
	_, err := f.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSubmitInProgress)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, cart.NextCalls())
}

func TestSubmit_DelayCompletesAfterCancel(t *testing.T) {
	cart := &mockCart{form: validForm()}
	f := NewForm(cart, NewValidator(), WithSubmitDelay(20*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	errs, err := f.Submit(ctx)

	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	assert.Equal(t, 1, cart.NextCalls())
	assert.False(t, f.Submitting())
}
