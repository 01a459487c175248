package timer

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/Piamias-Victor/maju/internal/storage"
	"github.com/Piamias-Victor/maju/pkg/logger"
	"github.com/sirupsen/logrus"
)

const (
	// Duration is the length of the daily promotion window.
	Duration = 7*time.Hour + 38*time.Minute + 29*time.Second

	RemainingKey = "maju_timer"
	LastResetKey = "maju_timer_reset"

	// DateLayout formats the reset marker; one marker per calendar day.
	DateLayout = "Mon Jan 02 2006"

	storeTimeout = 2 * time.Second
)

var fullSeconds = int(Duration / time.Second)

type State struct {
	Hours     int
	Minutes   int
	Seconds   int
	Remaining time.Duration
	Active    bool
	Text      string
}

func stateOf(remaining int) State {
	h, m, s := split(remaining)
	return State{
		Hours:     h,
		Minutes:   m,
		Seconds:   s,
		Remaining: time.Duration(remaining) * time.Second,
		Active:    remaining > 0,
		Text:      Format(remaining),
	}
}

type Option func(*Countdown)

func WithClock(now func() time.Time) Option {
	return func(c *Countdown) { c.now = now }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Countdown) { c.log = l }
}

func WithInterval(d time.Duration) Option {
	return func(c *Countdown) { c.interval = d }
}

// Countdown is the daily promotional timer. Its value is persisted after
// every change so a restarted storefront resumes where it stopped.
type Countdown struct {
	mu        sync.Mutex
	store     storage.Store
	now       func() time.Time
	log       logrus.FieldLogger
	interval  time.Duration
	remaining int

	subsMu sync.Mutex
	subs   map[int]func(State)
	nextID int
}

func New(store storage.Store, opts ...Option) *Countdown {
	c := &Countdown{
		store:     store,
		now:       time.Now,
		log:       logger.Discard(),
		interval:  time.Second,
		remaining: fullSeconds,
		subs:      make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = logger.Component(c.log, "timer")
	return c
}

// Init loads the persisted value. A missing or stale day marker starts a
// fresh window; a missing or exhausted value restarts the window too.
func (c *Countdown) Init(ctx context.Context) State {
	today := c.now().Format(DateLayout)

	c.mu.Lock()
	lastReset, err := c.get(ctx, LastResetKey)
	if err != nil || lastReset != today {
		c.remaining = fullSeconds
		c.set(ctx, RemainingKey, strconv.Itoa(c.remaining))
		c.set(ctx, LastResetKey, today)
	} else {
		c.remaining = c.loadRemaining(ctx)
	}
	st := stateOf(c.remaining)
	c.mu.Unlock()

	c.notify(st)
	return st
}

func (c *Countdown) loadRemaining(ctx context.Context) int {
	raw, err := c.get(ctx, RemainingKey)
	if err != nil {
		return fullSeconds
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fullSeconds
	}
	if v > fullSeconds {
		return fullSeconds
	}
	return v
}

// Tick advances the countdown by one second. It is a no-op once the
// countdown has reached zero.
func (c *Countdown) Tick(ctx context.Context) State {
	c.mu.Lock()
	if c.remaining <= 0 {
		st := stateOf(0)
		c.mu.Unlock()
		return st
	}
	c.remaining--
	c.set(ctx, RemainingKey, strconv.Itoa(c.remaining))
	st := stateOf(c.remaining)
	c.mu.Unlock()

	c.notify(st)
	return st
}

// Run ticks once per interval until the countdown is exhausted or ctx is done.
func (c *Countdown) Run(ctx context.Context) error {
	if !c.State().Active {
		return nil
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if st := c.Tick(ctx); !st.Active {
				c.log.Debug("countdown finished")
				return nil
			}
		}
	}
}

// Reset starts a fresh window and stamps today's marker.
func (c *Countdown) Reset(ctx context.Context) State {
	c.mu.Lock()
	c.remaining = fullSeconds
	c.set(ctx, RemainingKey, strconv.Itoa(c.remaining))
	c.set(ctx, LastResetKey, c.now().Format(DateLayout))
	st := stateOf(c.remaining)
	c.mu.Unlock()

	c.notify(st)
	return st
}

func (c *Countdown) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return stateOf(c.remaining)
}

// Subscribe registers fn for every state change. The returned func removes it.
func (c *Countdown) Subscribe(fn func(State)) func() {
	c.subsMu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.subsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.subsMu.Lock()
			delete(c.subs, id)
			c.subsMu.Unlock()
		})
	}
}

func (c *Countdown) notify(st State) {
	c.subsMu.Lock()
	fns := make([]func(State), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subsMu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}

// get and set swallow storage failures; the countdown keeps running in memory.
func (c *Countdown) get(ctx context.Context, key string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	v, err := c.store.Get(ctx, key)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		c.log.WithError(err).WithField("key", key).Debug("timer storage read failed")
	}
	return v, err
}

func (c *Countdown) set(ctx context.Context, key, value string) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	if err := c.store.Set(ctx, key, value); err != nil {
		c.log.WithError(err).WithField("key", key).Debug("timer storage write failed")
	}
}
