package frameloop

import (
	"context"
	"testing"
	"time"
)

const testWait = 2 * time.Second

// TestWindowPostRunsInOrder verifies posted functions run FIFO on the
// event goroutine.
func TestWindowPostRunsInOrder(t *testing.T) {
	w := NewWindow(WindowConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	var got []int
	done := make(chan struct{})
	for i := 1; i <= 3; i++ {
		w.Post(func() { got = append(got, i) })
	}
	w.Post(func() { close(done) })

	select {
	case <-done:
	case <-time.After(testWait):
		t.Fatal("posted functions did not run")
	}
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Errorf("posts ran as %v, want [1 2 3]", got)
	}
}

// TestWindowRepaintCoalesces verifies a burst of repaint requests before
// the loop drains produces a single paint.
func TestWindowRepaintCoalesces(t *testing.T) {
	w := NewWindow(WindowConfig{})
	paints := make(chan struct{}, 16)
	w.SetPaint(func() { paints <- struct{}{} })

	// Burst before the loop starts: all three coalesce into one.
	w.RequestRepaint()
	w.RequestRepaint()
	w.RequestRepaint()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	select {
	case <-paints:
	case <-time.After(testWait):
		t.Fatal("paint did not run")
	}

	// Confirm no second paint is queued: a posted marker arrives with
	// the paint channel still empty.
	marker := make(chan struct{})
	w.Post(func() { close(marker) })
	select {
	case <-marker:
	case <-time.After(testWait):
		t.Fatal("marker post did not run")
	}
	select {
	case <-paints:
		t.Error("burst of repaint requests produced more than one paint")
	default:
	}

	// A fresh request after the paint triggers another paint.
	w.RequestRepaint()
	select {
	case <-paints:
	case <-time.After(testWait):
		t.Fatal("second paint did not run")
	}
}

// TestWindowArmTimerDelivers verifies timer callbacks are posted back to
// the event goroutine, including times already in the past.
func TestWindowArmTimerDelivers(t *testing.T) {
	w := NewWindow(WindowConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	fired := make(chan struct{})
	w.ArmTimer(time.Now().Add(-time.Second), func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(testWait):
		t.Fatal("past-due timer did not fire")
	}
}

// TestWindowFocusDefaultsUnfocused verifies the zero state and SetFocused.
func TestWindowFocusDefaultsUnfocused(t *testing.T) {
	w := NewWindow(WindowConfig{})
	if w.Focused() {
		t.Error("new window reports focused, want unfocused")
	}
	w.SetFocused(true)
	if !w.Focused() {
		t.Error("SetFocused(true) not reflected")
	}
}

// TestWindowPostAfterStopDiscards verifies posts do not block once Run
// has returned, so late timer fires cannot hang their goroutines.
func TestWindowPostAfterStopDiscards(t *testing.T) {
	w := NewWindow(WindowConfig{QueueSize: 1})
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(stopped)
	}()
	cancel()
	select {
	case <-stopped:
	case <-time.After(testWait):
		t.Fatal("Run did not return on cancel")
	}

	returned := make(chan struct{})
	go func() {
		// Fill the queue, then one more: neither may block forever.
		w.Post(func() {})
		w.Post(func() {})
		close(returned)
	}()
	select {
	case <-returned:
	case <-time.After(testWait):
		t.Fatal("Post blocked after the window stopped")
	}
}

// TestWindowDrivesController wires a real controller through the window
// and checks an animation wake repaints without an explicit request.
func TestWindowDrivesController(t *testing.T) {
	w := NewWindow(WindowConfig{})
	w.SetFocused(true)

	due := time.Now().Add(20 * time.Millisecond)
	s := &fakeSession{due: due, hasDue: true}
	c, err := NewController(Config{Renderer: s, Resources: s, Host: w})
	if err != nil {
		t.Fatalf("NewController() = %v", err)
	}

	frames := make(chan int, 16)
	w.SetPaint(func() {
		// Animate exactly once so the wake chain terminates.
		if s.draws >= 1 {
			s.hasDue = false
		}
		c.RunFrame()
		frames <- s.draws
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	w.RequestRepaint()

	// First frame paints and schedules the wake; the wake fires and
	// repaints on its own.
	select {
	case <-frames:
	case <-time.After(testWait):
		t.Fatal("first frame did not run")
	}
	select {
	case n := <-frames:
		if n < 2 {
			t.Errorf("draws after wake = %d, want >= 2", n)
		}
	case <-time.After(testWait):
		t.Fatal("animation wake did not trigger a repaint")
	}
}
