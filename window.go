package frameloop

import (
	"context"
	"time"
)

// DefaultQueueSize is the capacity of a Window's posted-function queue.
const DefaultQueueSize = 256

// WindowConfig configures a Window.
type WindowConfig struct {
	// QueueSize overrides DefaultQueueSize when positive.
	QueueSize int
}

// Window is a minimal single-goroutine message loop that satisfies
// WindowHost. The goroutine that calls Run becomes the event goroutine:
// every posted function, every timer fire, and every paint runs there,
// in order. Embedders with a platform event loop of their own implement
// WindowHost directly instead.
//
// Thread Safety: Post and RequestRepaint are safe from any goroutine.
// Focused, SetFocused, and SetPaint belong to the event goroutine; call
// them before Run or from a posted function.
type Window struct {
	posts   chan func()
	repaint chan struct{}
	done    chan struct{}
	paint   func()
	focused bool
}

// NewWindow returns a Window ready to Run.
func NewWindow(cfg WindowConfig) *Window {
	size := cfg.QueueSize
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Window{
		posts:   make(chan func(), size),
		repaint: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

// SetPaint sets the function invoked once per coalesced repaint request,
// typically Controller.RunFrame.
func (w *Window) SetPaint(paint func()) { w.paint = paint }

// SetFocused records whether the window has input focus.
func (w *Window) SetFocused(focused bool) { w.focused = focused }

// Focused reports whether the window has input focus.
func (w *Window) Focused() bool { return w.focused }

// Post queues fn to run on the event goroutine. It blocks while the
// queue is full rather than dropping: timer fires depend on delivery.
// Once Run has returned, posts are discarded.
func (w *Window) Post(fn func()) {
	select {
	case w.posts <- fn:
	case <-w.done:
	}
}

// RequestRepaint asks the event goroutine to paint soon. Any number of
// requests before the next paint coalesce into one.
func (w *Window) RequestRepaint() {
	select {
	case w.repaint <- struct{}{}:
	default:
	}
}

// ArmTimer posts fire to the event goroutine at or shortly after at.
// Times in the past fire immediately. Timers are one-shot and never
// cancelled.
func (w *Window) ArmTimer(at time.Time, fire func()) {
	time.AfterFunc(time.Until(at), func() { w.Post(fire) })
}

// Run drains posted functions and repaint requests until ctx is
// cancelled. It must be called exactly once.
func (w *Window) Run(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-w.posts:
			fn()
		case <-w.repaint:
			if w.paint != nil {
				w.paint()
			}
		}
	}
}
