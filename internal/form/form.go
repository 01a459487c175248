package form

import (
	"context"
	"sync"
	"time"

	"github.com/Piamias-Victor/maju/internal/domain"
	"github.com/Piamias-Victor/maju/pkg/logger"
	"github.com/sirupsen/logrus"
)

// DefaultSubmitDelay is a perceived-latency pause before moving on.
const DefaultSubmitDelay = 800 * time.Millisecond

// Cart is the part of the cart state the form reads and writes.
type Cart interface {
	FormData() domain.CheckoutFormData
	UpdateFormData(patch domain.FormPatch)
	NextStep()
}

type Option func(*Form)

func WithSubmitDelay(d time.Duration) Option {
	return func(f *Form) { f.delay = d }
}

// WithSleep replaces the delay implementation, mainly for tests.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(f *Form) { f.sleep = sleep }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(f *Form) { f.log = l }
}

// Form is the shipping step: field edits, error state and submission.
type Form struct {
	cart      Cart
	validator *Validator
	delay     time.Duration
	sleep     func(ctx context.Context, d time.Duration) error
	log       logrus.FieldLogger

	mu         sync.Mutex
	errors     Errors
	submitting bool
}

func NewForm(cart Cart, v *Validator, opts ...Option) *Form {
	f := &Form{
		cart:      cart,
		validator: v,
		delay:     DefaultSubmitDelay,
		sleep:     sleepFull,
		log:       logger.Discard(),
		errors:    Errors{},
	}
	for _, opt := range opts {
		opt(f)
	}
	f.log = logger.Component(f.log, "form")
	return f
}

// Set stores a field value and clears any error previously shown for it.
func (f *Form) Set(field domain.Field, value string) error {
	patch, err := domain.PatchField(field, value)
	if err != nil {
		return err
	}
	f.cart.UpdateFormData(patch)

	f.mu.Lock()
	delete(f.errors, field)
	f.mu.Unlock()
	return nil
}

// Submit validates the whole form. Invalid input is returned with
// ErrInvalidForm and leaves the step unchanged; valid input advances the
// step once after the submit delay, even if ctx is cancelled meanwhile.
func (f *Form) Submit(ctx context.Context) (Errors, error) {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return nil, ErrSubmitInProgress
	}

	errs := f.validator.Validate(f.cart.FormData())
	f.errors = errs
	if len(errs) > 0 {
		f.mu.Unlock()
		f.log.WithField("fields", len(errs)).Debug("shipping form rejected")
		return copyErrors(errs), ErrInvalidForm
	}
	f.submitting = true
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.submitting = false
		f.mu.Unlock()
	}()

	if err := f.sleep(ctx, f.delay); err != nil {
		return nil, err
	}

	f.cart.NextStep()
	return nil, nil
}

func (f *Form) Errors() Errors {
	f.mu.Lock()
	defer f.mu.Unlock()
	return copyErrors(f.errors)
}

func (f *Form) Submitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

// Reset drops every displayed error.
func (f *Form) Reset() {
	f.mu.Lock()
	f.errors = Errors{}
	f.mu.Unlock()
}

func copyErrors(e Errors) Errors {
	out := make(Errors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// sleepFull always runs the full delay; a submitted form is never rolled back.
func sleepFull(_ context.Context, d time.Duration) error {
	time.Sleep(d)
	return nil
}
