package frameloop

import "time"

// Overlay identifies a cached overlay layer whose geometry the renderer
// may reuse across frames. The controller invalidates overlays whenever
// their cached geometry could reference destroyed GPU resources (atlas
// recreation, quad buffer growth) or stale shaping results.
type Overlay int

const (
	// OverlayTabBar is the tab bar drawn along the window edge.
	OverlayTabBar Overlay = iota
	// OverlayModal is the modal surface drawn over the panes.
	OverlayModal
)

// String returns the string representation of the overlay.
func (o Overlay) String() string {
	switch o {
	case OverlayTabBar:
		return "tab-bar"
	case OverlayModal:
		return "modal"
	default:
		return "unknown"
	}
}

// FrameRenderer builds and presents frame geometry. The controller calls
// it only from the window's event goroutine.
//
// BuildGeometry must be repeatable: the controller calls it again after
// recovery actions (atlas recreation, cache clearing), in the same frame,
// until it succeeds or the frame is abandoned.
type FrameRenderer interface {
	// BuildGeometry assembles the frame's quads at the given image
	// fidelity. Errors it returns are classified by the controller:
	// *OutOfTextureSpaceError triggers atlas recovery, ErrStaleShapeCache
	// triggers a shape cache clear and retry, anything else abandons the
	// frame.
	BuildGeometry(fid ImageFidelity) error

	// InvalidateOverlay drops the cached geometry of one overlay so the
	// next BuildGeometry rebuilds it. Invalidating an already-invalid
	// overlay is a no-op.
	InvalidateOverlay(o Overlay)

	// ClearShapeCache drops all shape-derived caches so the next
	// BuildGeometry reshapes under the current font generation. Called
	// when BuildGeometry reports ErrStaleShapeCache.
	ClearShapeCache()

	// Draw submits the built frame for presentation. A Draw error is
	// logged by the controller and otherwise ignored: the next frame
	// attempt starts fresh.
	Draw() error

	// AnimationDue reports the earliest time at which animated content
	// needs the next frame. ok is false when nothing animates.
	AnimationDue() (due time.Time, ok bool)
}

// RenderResources recovers GPU resources between render passes.
type RenderResources interface {
	// RecreateAtlas destroys and recreates the texture atlas at the given
	// size, dropping all cached entries. It fails when the size exceeds
	// what the device supports; that failure drives fidelity degradation.
	RecreateAtlas(size int) error

	// AllocatedMoreQuads reports whether the last BuildGeometry outgrew
	// the quad buffers. Grown buffers invalidate geometry cached against
	// the old ones, so the controller rebuilds once more before drawing.
	AllocatedMoreQuads() (bool, error)
}

// WindowHost is what the controller needs from the window that owns it.
//
// Focused is called from the event goroutine only. RequestRepaint must be
// safe from any goroutine. ArmTimer's fire callback MUST be invoked on the
// window's event goroutine: the scheduler mutates its pending-wake state
// inside it.
type WindowHost interface {
	// Focused reports whether the window has input focus. Unfocused
	// windows do not schedule animation wake-ups.
	Focused() bool

	// ArmTimer arranges for fire to run on the event goroutine at or
	// shortly after the given time. One-shot; never cancelled.
	ArmTimer(at time.Time, fire func())

	// RequestRepaint asks the window to run a frame soon. Requests
	// coalesce; calling it repeatedly before the paint runs is cheap.
	RequestRepaint()
}
