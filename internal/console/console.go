package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/Piamias-Victor/maju/internal/cart"
	"github.com/Piamias-Victor/maju/internal/domain"
	"github.com/Piamias-Victor/maju/internal/flow"
	"github.com/Piamias-Victor/maju/internal/form"
	"github.com/Piamias-Victor/maju/internal/timer"
)

const helpText = `commands:
  show                     current step, cart and form
  color <rose|bleu>        choose the bowl color
  open | close             open or close the checkout
  next | submit            continue to the next step
  back                     previous step
  set <field> <value>      fill a shipping field (firstName, lastName, email, phone, address, city, postalCode)
  pay                      create the payment session and leave for payment
  clear                    empty the cart and the form
  timer | reset-timer      show or restart the offer countdown
  help | quit`

type Deps struct {
	Flow  *flow.Controller
	Cart  *cart.Provider
	Form  *form.Form
	Timer *timer.Countdown
	In    io.Reader
	Out   io.Writer
}

// Console is a line-based storefront over the checkout flow.
type Console struct {
	flow  *flow.Controller
	cart  *cart.Provider
	form  *form.Form
	timer *timer.Countdown
	in    io.Reader
	out   io.Writer

	mu      sync.Mutex
	expired bool
}

func New(d Deps) *Console {
	return &Console{
		flow:  d.Flow,
		cart:  d.Cart,
		form:  d.Form,
		timer: d.Timer,
		in:    d.In,
		out:   d.Out,
	}
}

// Run reads commands until quit, end of input, a completed payment hand-off
// or ctx cancellation.
func (c *Console) Run(ctx context.Context) error {
	unsubscribe := c.timer.Subscribe(func(st timer.State) {
		c.mu.Lock()
		defer c.mu.Unlock()
		if !st.Active && !c.expired {
			c.expired = true
			fmt.Fprintln(c.out, "The offer has ended.")
		}
	})
	defer unsubscribe()

	c.banner()
	scanner := bufio.NewScanner(c.in)
	c.prompt()
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		done := c.exec(ctx, strings.TrimSpace(scanner.Text()))
		if done {
			return nil
		}
		c.prompt()
	}
	return scanner.Err()
}

func (c *Console) exec(ctx context.Context, line string) bool {
	if line == "" {
		return false
	}
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(cmd) {
	case "help", "?":
		c.println(helpText)
	case "quit", "exit":
		return true
	case "show":
		c.show()
	case "timer":
		c.println(c.timer.State().Text)
	case "reset-timer":
		c.println(c.timer.Reset(ctx).Text)
	case "color":
		color, err := domain.ParseColor(rest)
		if err != nil {
			c.fail(err)
			return false
		}
		c.report(c.flow.SelectColor(color))
	case "open":
		if err := c.flow.Open(); err != nil {
			c.fail(err)
			return false
		}
		c.show()
	case "close":
		c.flow.Close()
		c.println("Checkout closed.")
	case "next", "submit", "continue":
		c.next(ctx)
	case "back":
		if err := c.flow.Back(); err != nil {
			c.fail(err)
			return false
		}
		c.show()
	case "set":
		c.set(rest)
	case "clear":
		c.cart.ClearCart()
		c.form.Reset()
		c.println("Cart emptied.")
	case "pay":
		return c.pay(ctx)
	default:
		c.printf("unknown command %q, type help\n", cmd)
	}
	return false
}

func (c *Console) next(ctx context.Context) {
	if c.flow.Step() == domain.StepShipping {
		c.println("Checking your details...")
	}
	errs, err := c.flow.Continue(ctx)
	if errors.Is(err, form.ErrInvalidForm) {
		c.printErrors(errs)
		return
	}
	if err != nil {
		c.fail(err)
		return
	}
	c.show()
}

func (c *Console) set(args string) {
	name, value, ok := strings.Cut(args, " ")
	if !ok && name == "" {
		c.println("usage: set <field> <value>")
		return
	}
	field, err := domain.ParseField(name)
	if err != nil {
		c.fail(err)
		return
	}
	c.report(c.form.Set(field, strings.TrimSpace(value)))
}

func (c *Console) pay(ctx context.Context) bool {
	c.println("Redirecting to payment...")
	sessionID, err := c.flow.Finalize(ctx)
	if err != nil {
		// Payment failures were already shown by the notifier.
		if flow.IsUserError(err) || errors.Is(err, flow.ErrExited) {
			c.fail(err)
		}
		return false
	}
	c.printf("Payment reference: %s\n", sessionID)
	c.println("Your order is confirmed once the payment page reports success.")
	return true
}

func (c *Console) banner() {
	c.println("Bol MAJU - the compartment bowl, made in France")
	c.printf("%s instead of %s (-%d%%)\n",
		domain.FormatPrice(domain.UnitPrice), domain.FormatPrice(domain.OriginalPrice), domain.SavingsPercent())
	c.println(c.timer.State().Text)
	c.println("type help for commands")
}

func (c *Console) show() {
	snap := c.cart.Snapshot()
	c.printf("Color: %s\n", snap.SelectedColor.DisplayName())
	if !snap.ModalOpen {
		c.println("Checkout closed. Type open to order.")
		return
	}

	c.printf("[%d/3] %s\n", int(snap.Step), snap.Step.Title())
	switch snap.Step {
	case domain.StepReview:
		if snap.Item != nil {
			c.printf("  %s x%d  %s\n", snap.Item.Name, snap.Item.Quantity, domain.FormatPrice(snap.Item.Total()))
			c.printf("  You save %s\n", domain.FormatPrice(domain.Savings()))
		}
		c.println("  Free shipping, 2-4 business days")
	case domain.StepShipping:
		errs := c.form.Errors()
		for _, f := range domain.Fields {
			line := fmt.Sprintf("  %-11s %s", f, snap.Form.Get(f))
			if msg, ok := errs[f]; ok {
				line += "  <- " + msg
			}
			c.println(line)
		}
	case domain.StepPayment:
		c.printf("  Ship to %s %s, %s %s %s\n",
			snap.Form.FirstName, snap.Form.LastName, snap.Form.Address, snap.Form.PostalCode, snap.Form.City)
		if snap.Item != nil {
			c.printf("  Total: %s\n", domain.FormatPrice(snap.Item.Total()))
		}
		c.println("  Type pay to continue to secure payment")
	}
}

func (c *Console) printErrors(errs form.Errors) {
	c.println("Please fix the following:")
	for _, f := range domain.Fields {
		if msg, ok := errs[f]; ok {
			c.printf("  %s: %s\n", f, msg)
		}
	}
}

func (c *Console) report(err error) {
	if err != nil {
		c.fail(err)
		return
	}
	c.println("ok")
}

func (c *Console) fail(err error) {
	c.printf("error: %v\n", err)
}

func (c *Console) prompt() {
	c.printf("maju> ")
}

func (c *Console) println(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, s)
}

func (c *Console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}
