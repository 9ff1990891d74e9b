package ui

import (
	"context"
	"sync"
	"time"

	"github.com/noah-isme/storefront-cart/internal/page"
)

// Surface is the part of the page the effects touch.
type Surface interface {
	AddClass(id, class string) bool
	RemoveClass(id, class string) bool
	SetVisible(id string, visible bool) bool
	SetText(id, text string) bool
}

// Timings configures effect durations.
type Timings struct {
	SpinnerDelay    time.Duration
	PopupDuration   time.Duration
	MessageDuration time.Duration
}

// DefaultTimings mirrors the storefront animation lengths.
func DefaultTimings() Timings {
	return Timings{
		SpinnerDelay:    500 * time.Millisecond,
		PopupDuration:   300 * time.Millisecond,
		MessageDuration: 15 * time.Second,
	}
}

const messageRegion = "message"

// Effects drives transient UI state on a Surface. Deferred callbacks take
// guard before touching the surface, the same lock the event loop holds.
type Effects struct {
	sched   *Scheduler
	surface Surface
	guard   sync.Locker
	timings Timings
}

// NewEffects wires effects to a surface. guard must be held by the caller of
// every Effects method.
func NewEffects(sched *Scheduler, surface Surface, guard sync.Locker, timings Timings) *Effects {
	return &Effects{sched: sched, surface: surface, guard: guard, timings: timings}
}

// Timings returns the configured durations.
func (e *Effects) Timings() Timings { return e.timings }

// After schedules fn in region; fn runs under guard and is skipped when the
// task was superseded while waiting for the lock.
func (e *Effects) After(region string, delay time.Duration, fn func()) {
	e.sched.After(region, delay, func(ctx context.Context) {
		e.guard.Lock()
		defer e.guard.Unlock()
		if ctx.Err() != nil {
			return
		}
		fn()
	})
}

// Notify marks id as popped for the popup duration.
func (e *Effects) Notify(id string) {
	e.surface.AddClass(id, page.ClassPopup)
	e.After("popup:"+id, e.timings.PopupDuration, func() {
		e.surface.RemoveClass(id, page.ClassPopup)
	})
}

// Spinner shows or hides a busy indicator.
func (e *Effects) Spinner(id string, visible bool) {
	e.surface.SetVisible(id, visible)
}

// Message shows text in the message box and hides it after the message
// duration. A newer message restarts the countdown.
func (e *Effects) Message(text string) {
	e.surface.SetText(page.IDMessageText, text)
	e.surface.AddClass(page.IDMessageBox, page.ClassShow)
	e.After(messageRegion, e.timings.MessageDuration, func() {
		e.surface.RemoveClass(page.IDMessageBox, page.ClassShow)
	})
}

// CloseMessage hides the message box immediately.
func (e *Effects) CloseMessage() {
	e.sched.Cancel(messageRegion)
	e.surface.RemoveClass(page.IDMessageBox, page.ClassShow)
}
