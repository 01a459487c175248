package flow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Piamias-Victor/maju/internal/cart"
	"github.com/Piamias-Victor/maju/internal/domain"
	"github.com/Piamias-Victor/maju/internal/form"
	"github.com/Piamias-Victor/maju/pkg/logger"
	"github.com/sirupsen/logrus"
)

// PaymentErrorMessage is shown when a payment session cannot be created.
const PaymentErrorMessage = "Payment error. Please try again."

type SessionCreator interface {
	CreateSession(ctx context.Context, req domain.CheckoutSessionRequest) (*domain.CheckoutSessionResponse, error)
}

// Navigator leaves the storefront for the hosted payment page.
type Navigator interface {
	Navigate(url string) error
}

// Notifier shows a blocking message to the shopper.
type Notifier interface {
	Alert(message string)
}

type Option func(*Controller)

func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Controller) { c.log = l }
}

// Controller drives the three-step checkout modal:
// review, shipping, then payment.
type Controller struct {
	cart     *cart.Provider
	form     *form.Form
	sessions SessionCreator
	nav      Navigator
	notifier Notifier
	log      logrus.FieldLogger

	mu         sync.Mutex
	finalizing bool
	exited     bool
}

func NewController(c *cart.Provider, f *form.Form, sessions SessionCreator, nav Navigator, notifier Notifier, opts ...Option) *Controller {
	ctrl := &Controller{
		cart:     c,
		form:     f,
		sessions: sessions,
		nav:      nav,
		notifier: notifier,
		log:      logger.Discard(),
	}
	for _, opt := range opts {
		opt(ctrl)
	}
	ctrl.log = logger.Component(ctrl.log, "flow")
	return ctrl
}

// Open shows the modal at the review step with the selected color in the cart.
func (c *Controller) Open() error {
	if err := c.checkActive(); err != nil {
		return err
	}
	c.cart.OpenModal()
	return c.cart.AddToCart(c.cart.SelectedColor())
}

// SelectColor changes the variant. While the modal is open the cart item follows.
func (c *Controller) SelectColor(color domain.Color) error {
	if err := c.checkActive(); err != nil {
		return err
	}
	if err := c.cart.SetSelectedColor(color); err != nil {
		return err
	}
	if c.cart.IsModalOpen() {
		return c.cart.AddToCart(color)
	}
	return nil
}

func (c *Controller) Close() {
	c.cart.CloseModal()
}

func (c *Controller) Step() domain.Step {
	return c.cart.Step()
}

func (c *Controller) Title() string {
	return c.cart.Step().Title()
}

// Continue moves forward. On the shipping step the form is submitted and
// the step only advances when it validates; the field errors are returned.
func (c *Controller) Continue(ctx context.Context) (form.Errors, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}

	switch c.cart.Step() {
	case domain.StepReview:
		return nil, c.cart.SetStep(domain.StepShipping)
	case domain.StepShipping:
		return c.form.Submit(ctx)
	default:
		return nil, ErrAtFinalStep
	}
}

// Back returns to the previous step. It does nothing on the review step.
func (c *Controller) Back() error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	if c.cart.Step() != domain.StepReview {
		c.cart.PreviousStep()
	}
	return nil
}

// Finalize requests a payment session for one unit of the selected color and
// hands the shopper to the returned URL. On failure the shopper is alerted and
// stays on the payment step with the form intact so they can try again.
func (c *Controller) Finalize(ctx context.Context) (string, error) {
	if err := c.checkOpen(); err != nil {
		return "", err
	}
	if c.cart.Step() != domain.StepPayment {
		return "", ErrNotAtPayment
	}

	c.mu.Lock()
	if c.finalizing {
		c.mu.Unlock()
		return "", ErrFinalizeInProgress
	}
	c.finalizing = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.finalizing = false
		c.mu.Unlock()
	}()

	req := domain.CheckoutSessionRequest{
		Color:    c.cart.SelectedColor(),
		Quantity: domain.CartQuantity,
	}

	resp, err := c.sessions.CreateSession(ctx, req)
	if err == nil && resp.URL == "" {
		err = ErrNoRedirectURL
	}
	if err != nil {
		c.log.WithError(err).WithField("color", req.Color).Error("payment session failed")
		c.notifier.Alert(PaymentErrorMessage)
		return "", fmt.Errorf("create payment session: %w", err)
	}

	if err := c.nav.Navigate(resp.URL); err != nil {
		c.log.WithError(err).Error("redirect to payment page failed")
		c.notifier.Alert(PaymentErrorMessage)
		return "", fmt.Errorf("redirect to payment: %w", err)
	}

	c.mu.Lock()
	c.exited = true
	c.mu.Unlock()

	c.log.WithField("session_id", resp.SessionID).Info("redirected to payment")
	return resp.SessionID, nil
}

func (c *Controller) Exited() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exited
}

func (c *Controller) checkActive() error {
	if c.Exited() {
		return ErrExited
	}
	return nil
}

func (c *Controller) checkOpen() error {
	if err := c.checkActive(); err != nil {
		return err
	}
	if !c.cart.IsModalOpen() {
		return ErrModalClosed
	}
	return nil
}

// IsUserError reports whether err is a state error the shopper can fix by
// taking another action, as opposed to a payment failure.
func IsUserError(err error) bool {
	return errors.Is(err, ErrAtFinalStep) ||
		errors.Is(err, ErrNotAtPayment) ||
		errors.Is(err, ErrModalClosed) ||
		errors.Is(err, form.ErrInvalidForm) ||
		errors.Is(err, form.ErrSubmitInProgress) ||
		errors.Is(err, ErrFinalizeInProgress)
}
