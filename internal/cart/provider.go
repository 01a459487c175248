package cart

import (
	"sync"
	"time"

	"github.com/Piamias-Victor/maju/internal/domain"
	"github.com/Piamias-Victor/maju/pkg/logger"
	"github.com/sirupsen/logrus"
)

// DefaultCloseResetDelay matches the modal's closing animation.
const DefaultCloseResetDelay = 300 * time.Millisecond

// Snapshot is a consistent copy of the cart state.
type Snapshot struct {
	ModalOpen     bool
	Item          *domain.CartItem
	SelectedColor domain.Color
	Step          domain.Step
	Form          domain.CheckoutFormData
}

type Option func(*Provider)

func WithCloseResetDelay(d time.Duration) Option {
	return func(p *Provider) { p.closeDelay = d }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(p *Provider) { p.log = l }
}

// Provider owns the storefront session: the single cart item, the chosen
// variant, the modal visibility, the current step and the shipping form.
type Provider struct {
	mu         sync.Mutex
	modalOpen  bool
	item       *domain.CartItem
	selected   domain.Color
	step       domain.Step
	form       domain.CheckoutFormData
	closeDelay time.Duration
	resetTimer *time.Timer
	closeGen   int
	log        logrus.FieldLogger

	subsMu sync.Mutex
	subs   map[int]func(Snapshot)
	nextID int
}

func NewProvider(opts ...Option) *Provider {
	p := &Provider{
		selected:   domain.ColorRose,
		step:       domain.StepReview,
		closeDelay: DefaultCloseResetDelay,
		log:        logger.Discard(),
		subs:       make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = logger.Component(p.log, "cart")
	return p
}

func (p *Provider) OpenModal() {
	p.update(func() {
		p.cancelResetLocked()
		p.modalOpen = true
		p.step = domain.StepReview
	})
}

// CloseModal hides the modal and returns to the first step once the
// closing delay has elapsed.
func (p *Provider) CloseModal() {
	p.update(func() {
		p.modalOpen = false
		p.cancelResetLocked()
		gen := p.closeGen
		p.resetTimer = time.AfterFunc(p.closeDelay, func() { p.resetAfterClose(gen) })
	})
}

func (p *Provider) resetAfterClose(gen int) {
	p.update(func() {
		if p.modalOpen || gen != p.closeGen {
			return
		}
		p.step = domain.StepReview
		p.resetTimer = nil
	})
}

func (p *Provider) cancelResetLocked() {
	p.closeGen++
	if p.resetTimer != nil {
		p.resetTimer.Stop()
		p.resetTimer = nil
	}
}

// AddToCart replaces the cart content with one unit of the given color.
func (p *Provider) AddToCart(c domain.Color) error {
	item, err := domain.NewCartItem(c)
	if err != nil {
		return err
	}
	p.update(func() {
		p.item = &item
		p.selected = c
	})
	p.log.WithField("color", c).Debug("cart item set")
	return nil
}

func (p *Provider) SetSelectedColor(c domain.Color) error {
	if !c.Valid() {
		return domain.ErrInvalidColor
	}
	p.update(func() { p.selected = c })
	return nil
}

func (p *Provider) SetStep(s domain.Step) error {
	if !s.Valid() {
		return domain.ErrInvalidStep
	}
	p.update(func() { p.step = s })
	return nil
}

func (p *Provider) NextStep() {
	p.update(func() { p.step = p.step.Next() })
}

func (p *Provider) PreviousStep() {
	p.update(func() { p.step = p.step.Previous() })
}

func (p *Provider) UpdateFormData(patch domain.FormPatch) {
	p.update(func() { p.form = patch.Apply(p.form) })
}

// ClearCart empties the cart and the form. The modal stays as it is.
func (p *Provider) ClearCart() {
	p.update(func() {
		p.item = nil
		p.form = domain.CheckoutFormData{}
		p.step = domain.StepReview
	})
}

func (p *Provider) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

func (p *Provider) IsModalOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.modalOpen
}

func (p *Provider) Step() domain.Step {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.step
}

func (p *Provider) SelectedColor() domain.Color {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selected
}

func (p *Provider) FormData() domain.CheckoutFormData {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.form
}

// Item returns a copy of the cart line, or nil when the cart is empty.
func (p *Provider) Item() *domain.CartItem {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.item == nil {
		return nil
	}
	item := *p.item
	return &item
}

// Subscribe registers fn for every state change. The returned func removes it.
func (p *Provider) Subscribe(fn func(Snapshot)) func() {
	p.subsMu.Lock()
	id := p.nextID
	p.nextID++
	p.subs[id] = fn
	p.subsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.subsMu.Lock()
			delete(p.subs, id)
			p.subsMu.Unlock()
		})
	}
}

func (p *Provider) update(mutate func()) {
	p.mu.Lock()
	mutate()
	snap := p.snapshotLocked()
	p.mu.Unlock()

	p.subsMu.Lock()
	fns := make([]func(Snapshot), 0, len(p.subs))
	for _, fn := range p.subs {
		fns = append(fns, fn)
	}
	p.subsMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func (p *Provider) snapshotLocked() Snapshot {
	s := Snapshot{
		ModalOpen:     p.modalOpen,
		SelectedColor: p.selected,
		Step:          p.step,
		Form:          p.form,
	}
	if p.item != nil {
		item := *p.item
		s.Item = &item
	}
	return s
}
