package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/storefront-cart/internal/basket"
	"github.com/noah-isme/storefront-cart/internal/discount"
	"github.com/noah-isme/storefront-cart/internal/money"
	"github.com/noah-isme/storefront-cart/internal/page"
	"github.com/noah-isme/storefront-cart/internal/pricing"
	"github.com/noah-isme/storefront-cart/internal/snapshot"
	"github.com/noah-isme/storefront-cart/internal/ui"
)

// ErrClosed is returned for events delivered after Unload.
var ErrClosed = errors.New("cart: session closed")

// BasketService adds items to the server-side basket.
type BasketService interface {
	AddItem(ctx context.Context, p basket.Product) (basket.Result, error)
}

// Options configures a Controller.
type Options struct {
	Registry    discount.Registry
	Currency    string
	Timings     ui.Timings
	Snapshots   *snapshot.Store
	SnapshotKey string
	Basket      BasketService
	Logger      zerolog.Logger
	Now         func() time.Time
}

// Result is the outcome of one dispatched event.
type Result struct {
	Intent  string `json:"intent"`
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
	Value   string `json:"value,omitempty"`
}

type handlerFunc func(ctx context.Context, ev Event) Result

// Controller owns the cart state of one page session. Events and deferred
// UI callbacks are processed one at a time under mu.
type Controller struct {
	mu sync.Mutex

	doc       Display
	discounts *discount.Manager
	items     []LineItem
	summary   pricing.Summary
	currency  string

	sched       *ui.Scheduler
	fx          *ui.Effects
	snapshots   *snapshot.Store
	snapshotKey string
	basket      BasketService
	logger      zerolog.Logger
	now         func() time.Time

	life     context.Context
	stop     context.CancelFunc
	inflight sync.WaitGroup
	closed   bool

	handlers map[Intent]handlerFunc
}

// NewController binds a controller to doc.
func NewController(doc Display, opts Options) *Controller {
	if opts.Currency == "" {
		opts.Currency = money.DefaultCurrency
	}
	if opts.Timings == (ui.Timings{}) {
		opts.Timings = ui.DefaultTimings()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	life, stop := context.WithCancel(context.Background())
	c := &Controller{
		doc:         doc,
		discounts:   discount.NewManager(opts.Registry),
		currency:    opts.Currency,
		sched:       ui.NewScheduler(opts.Logger),
		snapshots:   opts.Snapshots,
		snapshotKey: opts.SnapshotKey,
		basket:      opts.Basket,
		logger:      opts.Logger,
		now:         opts.Now,
		life:        life,
		stop:        stop,
	}
	c.fx = ui.NewEffects(c.sched, doc, &c.mu, opts.Timings)
	c.handlers = map[Intent]handlerFunc{
		IncreaseQty:   func(ctx context.Context, ev Event) Result { return c.adjust(ctx, ev, Increase) },
		DecreaseQty:   func(ctx context.Context, ev Event) Result { return c.adjust(ctx, ev, Decrease) },
		RemoveItem:    c.removeItem,
		SaveItem:      c.saveItem,
		ApplyDiscount: c.applyDiscount,
		ToggleSidebar: c.toggleSidebar,
		FormatCode:    c.formatCode,
		AddToBasket:   c.addToBasket,
		CloseMessage:  c.closeMessage,
	}
	return c
}

// Load runs the page-load bootstrap: replay the stored snapshot, refresh the
// badge and recompute the summary.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.restore(ctx)
	c.items = Rescan(c.doc)
	c.updateBadge()
	c.recompute()
	return nil
}

// Dispatch classifies ev and runs the matching handler. Failures are absorbed
// into the returned Result.
func (c *Controller) Dispatch(ctx context.Context, ev Event) (Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return Result{}, ErrClosed
	}
	ev.Target = resolveTarget(c.doc, ev.Target)
	intent := Classify(ev)
	handler, ok := c.handlers[intent]
	if !ok {
		return Result{Intent: intent.String()}, nil
	}
	res := handler(ctx, ev)
	res.Intent = intent.String()
	return res, nil
}

// Unload writes the snapshot and stops all deferred work. It is safe to call
// more than once.
func (c *Controller) Unload(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	var err error
	if c.snapshots != nil && c.snapshotKey != "" {
		err = c.snapshots.Save(ctx, c.snapshotKey, c.records())
		if err != nil {
			c.logger.Error().Err(err).Str("snapshot", c.snapshotKey).Msg("snapshot_save_failed")
		}
	}
	c.stop()
	c.mu.Unlock()

	c.sched.Close()
	c.inflight.Wait()
	return err
}

// Wait blocks until pending timers and basket calls have finished.
func (c *Controller) Wait() {
	c.sched.Wait()
	c.inflight.Wait()
}

// View returns a copy of the page.
func (c *Controller) View() []page.Element {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.doc.Elements()
}

// Summary returns the last computed totals.
func (c *Controller) Summary() pricing.Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.summary
}

// Items returns the current line items.
func (c *Controller) Items() []LineItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]LineItem(nil), c.items...)
}

// DiscountState reports whether a discount is active.
func (c *Controller) DiscountState() discount.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.discounts.State()
}

// after schedules fn on the controller's lock, skipping it once unloaded.
func (c *Controller) after(region string, delay time.Duration, fn func()) {
	c.fx.After(region, delay, func() {
		if c.closed {
			return
		}
		fn()
	})
}

func (c *Controller) records() []snapshot.Record {
	items := Rescan(c.doc)
	out := make([]snapshot.Record, 0, len(items))
	for _, item := range items {
		rec := recordFor(item)
		if rec.Validate() != nil {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func recordFor(item LineItem) snapshot.Record {
	return snapshot.Record{
		ProductIDName: item.Key,
		CurrentQty:    item.Quantity,
		CurrentPrice:  money.Format(item.UnitPrice),
		SelectorID:    page.QtyID(item.Key),
	}
}
