package discount

import (
	"github.com/noah-isme/storefront-cart/internal/money"
)

// State enumerates the discount lifecycle of a cart.
type State int

const (
	// NoDiscount means no code has been accepted yet.
	NoDiscount State = iota
	// Applied means exactly one code is active.
	Applied
)

func (s State) String() string {
	switch s {
	case NoDiscount:
		return "no_discount"
	case Applied:
		return "applied"
	default:
		return "unknown"
	}
}

// Manager tracks at most one applied discount for a cart session.
type Manager struct {
	registry Registry
	applied  *Discount
}

// NewManager builds a manager over registry, falling back to the default codes.
func NewManager(registry Registry) *Manager {
	if len(registry) == 0 {
		registry = DefaultRegistry()
	}
	return &Manager{registry: registry}
}

// State reports whether a discount is active.
func (m *Manager) State() State {
	if m.applied == nil {
		return NoDiscount
	}
	return Applied
}

// Current returns the applied discount, if any.
func (m *Manager) Current() (Discount, bool) {
	if m.applied == nil {
		return Discount{}, false
	}
	return *m.applied, true
}

// Apply validates code and takes its percentage off cartTotal, which must be
// the fresh undiscounted total. A valid code while a discount is already
// active is rejected with ErrAlreadyApplied unless allowReapply is set.
// Failed calls leave the state untouched.
func (m *Manager) Apply(code string, cartTotal money.Money, allowReapply bool) (Result, error) {
	d, ok := m.registry.Lookup(code)
	if !ok {
		return Result{}, ErrUnknownCode
	}
	if m.applied != nil && !allowReapply {
		return Result{}, ErrAlreadyApplied
	}
	amount, total := Compute(cartTotal, d.Percent)
	m.applied = &d
	return Result{Discount: d, Base: cartTotal, Amount: amount, Total: total}, nil
}

// Reapply re-derives the discounted total for the active code against a new
// undiscounted total. It reports false when no discount is active.
func (m *Manager) Reapply(cartTotal money.Money) (Result, bool) {
	if m.applied == nil {
		return Result{}, false
	}
	res, err := m.Apply(m.applied.Code, cartTotal, true)
	if err != nil {
		return Result{}, false
	}
	return res, true
}

// Clear drops the applied discount.
func (m *Manager) Clear() {
	m.applied = nil
}
