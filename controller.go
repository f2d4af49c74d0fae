package frameloop

import (
	"errors"
	"time"
)

// DefaultMaxPasses bounds how many render passes one frame may attempt.
// The fidelity ladder is five levels deep; the remainder is slack for
// quad growth and shape-cache retries. Hitting the bound means a
// collaborator misbehaved, and the frame is drawn as-is rather than
// looping forever.
const DefaultMaxPasses = 8

// Config configures a Controller. Renderer, Resources, and Host are
// required; a Session from the render package satisfies both Renderer
// and Resources.
type Config struct {
	// Renderer builds, invalidates, and draws frame geometry.
	Renderer FrameRenderer

	// Resources recreates the atlas and reports quad growth.
	Resources RenderResources

	// Host is the window that owns the event goroutine.
	Host WindowHost

	// MaxPasses overrides DefaultMaxPasses when positive.
	MaxPasses int
}

// Validate checks that the required collaborators are present.
func (c *Config) Validate() error {
	if c.Renderer == nil {
		return errors.New("frameloop: Config.Renderer is required")
	}
	if c.Resources == nil {
		return errors.New("frameloop: Config.Resources is required")
	}
	if c.Host == nil {
		return errors.New("frameloop: Config.Host is required")
	}
	return nil
}

// Controller owns one window's render loop: it retries frame geometry
// under the fidelity ladder when GPU resources run out, tracks frame
// timing, and schedules animation wake-ups.
//
// Thread Safety: a Controller is owned by its window's event goroutine.
// All methods must be called from that goroutine; none of the internal
// state is locked.
type Controller struct {
	renderer  FrameRenderer
	resources RenderResources
	host      WindowHost
	maxPasses int

	timer *FrameTimer
	sched *AnimationScheduler

	clock func() time.Time
}

// NewController validates cfg and returns a ready Controller.
func NewController(cfg Config) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	maxPasses := cfg.MaxPasses
	if maxPasses <= 0 {
		maxPasses = DefaultMaxPasses
	}
	return &Controller{
		renderer:  cfg.Renderer,
		resources: cfg.Resources,
		host:      cfg.Host,
		maxPasses: maxPasses,
		timer:     NewFrameTimer(time.Now()),
		sched:     NewAnimationScheduler(cfg.Host),
		clock:     time.Now,
	}, nil
}

// RunFrame renders one frame. Call it from the window's event goroutine,
// typically as the window's paint function.
//
// Geometry is attempted at FidelityFull first. Recoverable failures
// retry within the same call: atlas exhaustion recreates the atlas (at
// the current size on the first failure, grown afterwards), a failed
// recreation steps image fidelity down one level, a stale shape cache is
// cleared and rebuilt, and quad buffer growth forces one extra pass so
// cached overlays pick up the new slots. Anything else abandons the
// loop. Whatever geometry accumulated is then drawn best-effort and the
// frame's wall time is recorded.
//
// RunFrame never returns an error and never panics on collaborator
// failures: a bad frame costs at most one frame.
func (c *Controller) RunFrame() {
	start := c.clock()
	c.timer.RecordFrame()
	c.timer.MaybeRefresh(start)

	fidelity := FidelityFull

	for pass := 0; ; pass++ {
		if pass >= c.maxPasses {
			Logger().Error("render pass limit reached; drawing partial frame",
				"max_passes", c.maxPasses, "fidelity", fidelity)
			break
		}

		err := c.renderer.BuildGeometry(fidelity)
		if err == nil {
			grew, gerr := c.resources.AllocatedMoreQuads()
			if gerr != nil {
				Logger().Error("quad allocation query failed", "err", gerr)
				break
			}
			if !grew {
				break
			}
			// New quad slots shifted the indices cached by the
			// overlays; rebuild them against the grown buffers.
			Logger().Debug("quad buffers grew; rebuilding overlays", "pass", pass)
			c.invalidateOverlays()
			continue
		}

		if space, ok := AsOutOfTextureSpace(err); ok {
			if c.recoverTextureSpace(pass, space, &fidelity) {
				continue
			}
			break
		}

		if errors.Is(err, ErrStaleShapeCache) {
			Logger().Debug("shape cache stale; clearing and retrying", "pass", pass)
			c.invalidateOverlays()
			c.renderer.ClearShapeCache()
			continue
		}

		Logger().Error("frame geometry failed", "err", err, "pass", pass)
		break
	}

	// Draw whatever accumulated, even after an abandoned pass. A partial
	// frame on screen beats a frozen one; the next frame starts fresh.
	if err := c.renderer.Draw(); err != nil {
		Logger().Error("draw call failed", "err", err)
	}

	elapsed := c.clock().Sub(start)
	c.timer.ObserveDuration(elapsed)
	Logger().Debug("frame complete",
		"elapsed", elapsed, "fps", c.timer.FPS(), "fidelity", fidelity)

	due, hasDue := c.renderer.AnimationDue()
	c.sched.OnFrameComplete(due, hasDue, c.host.Focused())
}

// recoverTextureSpace reacts to atlas exhaustion in one pass and reports
// whether the loop should retry.
//
// The first failure of a frame recreates the atlas at its current size:
// exhaustion is often fragmentation, and clearing is cheaper than
// growing. Later failures grow to the size the allocation asked for.
// When recreation itself fails, image fidelity steps down one level per
// failure until the ladder is exhausted.
func (c *Controller) recoverTextureSpace(pass int, space *OutOfTextureSpaceError, fidelity *ImageFidelity) bool {
	var rerr error
	if pass == 0 {
		Logger().Debug("recreating texture atlas", "size", space.CurrentSize)
		rerr = c.resources.RecreateAtlas(space.CurrentSize)
	} else {
		Logger().Debug("growing texture atlas", "size", space.RequiredSize)
		rerr = c.resources.RecreateAtlas(space.RequiredSize)
	}
	// Cached overlay geometry references regions of the old atlas
	// texture whether or not recreation succeeded.
	c.invalidateOverlays()
	if rerr == nil {
		return true
	}

	next, ok := fidelity.StepDown()
	if !ok {
		action := "grow"
		if pass == 0 {
			action = "clear"
		}
		Logger().Error("failed to "+action+" texture atlas; abandoning frame", "err", rerr)
		return false
	}
	*fidelity = next
	Logger().Warn("not enough texture space; retrying render", "err", rerr, "fidelity", next)
	return true
}

func (c *Controller) invalidateOverlays() {
	c.renderer.InvalidateOverlay(OverlayTabBar)
	c.renderer.InvalidateOverlay(OverlayModal)
}

// FPS returns the current windowed frames-per-second estimate.
func (c *Controller) FPS() float64 { return c.timer.FPS() }

// LastFrameDuration returns the wall time of the most recent frame.
func (c *Controller) LastFrameDuration() time.Duration { return c.timer.LastFrameDuration() }

// Histogram returns the frame duration histogram.
func (c *Controller) Histogram() *Histogram { return c.timer.Histogram() }

// PendingWake reports the animation wake-up currently scheduled, if any.
func (c *Controller) PendingWake() (time.Time, bool) { return c.sched.PendingWake() }
