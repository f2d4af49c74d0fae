package frameloop

import "time"

// AnimationScheduler turns "animated content needs a frame at time T" into
// at most one pending wake-up per window. After every frame the controller
// reports the earliest animation due time here; the scheduler arms a
// one-shot timer through the window host unless an earlier-or-equal wake
// is already pending.
//
// When the timer fires (on the event goroutine, per the WindowHost
// contract) the pending marker is cleared first, then a repaint is
// requested. The repaint runs another frame, which re-schedules if
// animations remain.
//
// Superseded timers are not cancelled: an out-of-date timer firing clears
// the marker and triggers one extra repaint, which is harmless. A missed
// wake would not be.
//
// All fields are owned by the event goroutine; no locking.
type AnimationScheduler struct {
	host    WindowHost
	pending time.Time // zero means no wake scheduled
}

// NewAnimationScheduler returns a scheduler posting wake-ups through host.
func NewAnimationScheduler(host WindowHost) *AnimationScheduler {
	return &AnimationScheduler{host: host}
}

// OnFrameComplete processes the animation outcome of one frame. It does
// nothing when the window is unfocused (backgrounded windows repaint on
// the next real event instead of self-scheduling) or when nothing
// animates. Otherwise it arms a wake-up at due, unless a wake at or
// before due is already pending: the existing timer covers it. A due
// earlier than the pending wake replaces it and arms a new timer.
func (s *AnimationScheduler) OnFrameComplete(due time.Time, hasDue, focused bool) {
	if !focused || !hasDue {
		return
	}
	if !s.pending.IsZero() && !s.pending.After(due) {
		Logger().Debug("animation wake already pending", "pending", s.pending, "due", due)
		return
	}
	s.pending = due
	s.host.ArmTimer(due, s.fire)
}

// fire runs on the event goroutine when an armed timer elapses.
func (s *AnimationScheduler) fire() {
	s.pending = time.Time{}
	s.host.RequestRepaint()
}

// PendingWake reports the currently scheduled wake time, if any.
func (s *AnimationScheduler) PendingWake() (time.Time, bool) {
	if s.pending.IsZero() {
		return time.Time{}, false
	}
	return s.pending, true
}
