// Package frameloop drives the per-frame render loop of a GPU-accelerated
// terminal-style surface.
//
// # Overview
//
// A frame is built as textured quads referencing a shared glyph/image atlas,
// then handed to a presenter. GPU resources are finite: building a frame can
// exhaust the texture atlas or race a shape-cache invalidation. frameloop
// provides a Controller that retries frame construction under a bounded
// degradation policy (the image fidelity ladder), a frame timing tracker,
// and an animation scheduler that posts wake-ups back to the window's event
// goroutine. Render failures are never fatal: the worst outcome of a frame
// is a logged error and a skipped present.
//
// # Quick Start
//
//	import "github.com/gogpu/frameloop"
//
//	win := frameloop.NewWindow(frameloop.WindowConfig{})
//	ctrl, err := frameloop.NewController(frameloop.Config{
//	    Renderer:  session, // e.g. *render.Session
//	    Resources: session,
//	    Host:      win,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	win.SetPaint(ctrl.RunFrame)
//	win.RequestRepaint()
//	win.Run(ctx)
//
// # Architecture
//
// The library is organized into:
//   - Root package: Controller (render pass loop), ImageFidelity ladder,
//     FrameTimer, AnimationScheduler, Window message loop, error taxonomy
//   - atlas/: shelf-packed texture atlas over a wgpu/hal texture
//   - quad/: z-layered quad geometry pool over hal vertex buffers
//   - shape/: generation-keyed shape cache with pluggable shapers
//   - render/: Session wiring the pieces into the Controller's contracts,
//     plus the hal presenter
//
// # Concurrency
//
// All mutable render state is owned by one goroutine: the window's event
// goroutine. The Controller, Session, atlas, quad pool, and shape cache
// carry no locks. Cross-goroutine interaction happens only through
// Window.Post, Window.RequestRepaint, and one-shot timers whose callbacks
// are posted back to the event goroutine.
package frameloop

// Version information
const (
	// Version is the current version of the library
	Version = "0.3.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 3

	// VersionPatch is the patch version
	VersionPatch = 0
)
