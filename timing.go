package frameloop

import (
	"fmt"
	"time"
)

// FrameTimer tracks frame pacing for one window: a windowed
// frames-per-second estimate and the duration of the most recent frame.
//
// RecordFrame counts frames; MaybeRefresh recomputes the estimate once
// more than a second has elapsed since the previous recomputation, then
// starts a new window. Between recomputations FPS returns the previous
// estimate, smoothing out per-frame jitter.
//
// FrameTimer is owned by the window's event goroutine and is not safe
// for concurrent use.
type FrameTimer struct {
	frames    int
	lastCheck time.Time
	fps       float64
	lastFrame time.Duration
	hist      Histogram
}

// NewFrameTimer returns a timer whose first FPS window starts at now.
func NewFrameTimer(now time.Time) *FrameTimer {
	return &FrameTimer{lastCheck: now}
}

// RecordFrame counts one frame attempt. Call it at frame start, before
// geometry is built.
func (t *FrameTimer) RecordFrame() {
	t.frames++
}

// MaybeRefresh recomputes the FPS estimate if more than one second has
// elapsed since the last recomputation: fps becomes frames/elapsed, the
// frame counter resets, and a new window starts at now. It reports
// whether a recomputation happened.
func (t *FrameTimer) MaybeRefresh(now time.Time) bool {
	elapsed := now.Sub(t.lastCheck)
	if elapsed <= time.Second {
		return false
	}
	t.fps = float64(t.frames) / elapsed.Seconds()
	t.frames = 0
	t.lastCheck = now
	return true
}

// ObserveDuration records the wall time of a frame.
func (t *FrameTimer) ObserveDuration(d time.Duration) {
	t.lastFrame = d
	t.hist.Observe(d)
}

// FPS returns the most recent frames-per-second estimate. It is zero
// until the first window completes.
func (t *FrameTimer) FPS() float64 { return t.fps }

// LastFrameDuration returns the duration of the most recent frame, or
// zero if no frame has completed yet.
func (t *FrameTimer) LastFrameDuration() time.Duration { return t.lastFrame }

// Histogram returns the frame duration histogram.
func (t *FrameTimer) Histogram() *Histogram { return &t.hist }

const (
	histogramBuckets = 16
	histogramBase    = 250 * time.Microsecond
)

// Histogram is a fixed set of exponential duration buckets: bucket i
// counts durations below 250µs·2^i, the last bucket counts everything
// longer (about 8 seconds and up). The zero value is ready to use.
//
// Not safe for concurrent use; like FrameTimer, it is owned by the
// event goroutine.
type Histogram struct {
	buckets [histogramBuckets]uint64
	count   uint64
	sum     time.Duration
	max     time.Duration
}

// Observe records one duration.
func (h *Histogram) Observe(d time.Duration) {
	h.buckets[h.bucketFor(d)]++
	h.count++
	h.sum += d
	if d > h.max {
		h.max = d
	}
}

func (h *Histogram) bucketFor(d time.Duration) int {
	upper := histogramBase
	for i := 0; i < histogramBuckets-1; i++ {
		if d < upper {
			return i
		}
		upper *= 2
	}
	return histogramBuckets - 1
}

func (h *Histogram) bucketUpper(i int) time.Duration {
	return histogramBase << uint(i)
}

// Count returns the number of observations.
func (h *Histogram) Count() uint64 { return h.count }

// Mean returns the mean observed duration, or zero with no observations.
func (h *Histogram) Mean() time.Duration {
	if h.count == 0 {
		return 0
	}
	return h.sum / time.Duration(h.count)
}

// Max returns the largest observed duration.
func (h *Histogram) Max() time.Duration { return h.max }

// Percentile returns an upper bound for the p-th percentile (0 < p <= 100)
// of observed durations: the upper edge of the bucket in which the
// percentile falls, clamped to the observed maximum.
func (h *Histogram) Percentile(p float64) time.Duration {
	if h.count == 0 || p <= 0 {
		return 0
	}
	if p > 100 {
		p = 100
	}
	target := uint64(p / 100 * float64(h.count))
	if target == 0 {
		target = 1
	}
	var seen uint64
	for i := 0; i < histogramBuckets; i++ {
		seen += h.buckets[i]
		if seen >= target {
			if i == histogramBuckets-1 {
				// The overflow bucket has no finite upper edge.
				return h.max
			}
			upper := h.bucketUpper(i)
			if upper > h.max {
				return h.max
			}
			return upper
		}
	}
	return h.max
}

// String summarizes the distribution for logs and the demo.
func (h *Histogram) String() string {
	return fmt.Sprintf("count=%d mean=%v p50=%v p95=%v max=%v",
		h.count, h.Mean(), h.Percentile(50), h.Percentile(95), h.max)
}
