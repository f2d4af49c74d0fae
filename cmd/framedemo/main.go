// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command framedemo drives the frame loop headlessly and prints timing
// stats. It builds a synthetic two-pane surface with a scrolling log,
// an animated attachment, a tab bar, and a periodic modal, then renders
// a fixed number of frames through a Controller. A deliberately small
// atlas (-atlas) forces texture-space recovery and fidelity degradation
// mid-run.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/gogpu/frameloop"
	"github.com/gogpu/frameloop/render"
	"github.com/gogpu/frameloop/shape"
)

const spinnerPhases = 8

func main() {
	var (
		frames    = flag.Int("frames", 120, "frames to render")
		width     = flag.Int("width", 960, "viewport width in pixels")
		height    = flag.Int("height", 540, "viewport height in pixels")
		atlasSize = flag.Int("atlas", 256, "initial atlas size (small values force degradation)")
		atlasMax  = flag.Int("atlas-max", 1024, "maximum atlas size")
		unfocused = flag.Bool("unfocused", false, "run without focus so animation wake-ups stay disarmed")
		verbose   = flag.Bool("v", false, "log frame-loop internals")
	)
	flag.Parse()

	if *verbose {
		frameloop.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	shaper := &shape.FixedShaper{}
	presenter := &render.NullPresenter{}
	content := newDemoContent()
	chrome := &render.StaticChrome{
		Bar: render.TabBar{
			Titles:     []string{"main", "logs", "build"},
			Background: [4]float32{0.12, 0.12, 0.14, 1},
		},
		ModalBox: render.Modal{
			X: 280, Y: 160, Width: 400, Height: 140,
			Title:      "confirm",
			Lines:      []string{"", "close the session?"},
			Background: [4]float32{0.16, 0.16, 0.2, 0.97},
			Foreground: [4]float32{0.95, 0.95, 0.95, 1},
		},
	}

	sess, err := render.New(render.Config{
		Content:      content,
		Chrome:       chrome,
		Shaper:       shaper,
		Presenter:    presenter,
		Width:        *width,
		Height:       *height,
		AtlasSize:    *atlasSize,
		AtlasMaxSize: *atlasMax,
	})
	if err != nil {
		log.Fatalf("Failed to create render session: %v", err)
	}
	defer sess.Close()

	window := frameloop.NewWindow(frameloop.WindowConfig{})
	window.SetFocused(!*unfocused)

	ctrl, err := frameloop.NewController(frameloop.Config{
		Renderer:  sess,
		Resources: sess,
		Host:      window,
	})
	if err != nil {
		log.Fatalf("Failed to create controller: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		rendered int
		wakes    int
	)
	window.SetPaint(func() {
		ctrl.RunFrame()
		rendered++
		if _, ok := ctrl.PendingWake(); ok {
			wakes++
		}
		content.advance(rendered)
		if rendered == *frames/2 {
			// A font load mid-run: shaped runs go stale and the next
			// frame rebuilds through the recovery path.
			shaper.AdvanceGeneration()
		}
		if rendered%40 == 0 {
			chrome.Bar.Active = (chrome.Bar.Active + 1) % len(chrome.Bar.Titles)
			sess.InvalidateOverlay(frameloop.OverlayTabBar)
		}
		if rendered%30 == 0 {
			chrome.HasModal = !chrome.HasModal
			sess.InvalidateOverlay(frameloop.OverlayModal)
		}
		if rendered < *frames {
			window.RequestRepaint()
		} else {
			cancel()
		}
	})

	window.RequestRepaint()
	window.Run(ctx)

	hist := ctrl.Histogram()
	fmt.Printf("frames rendered:  %d\n", rendered)
	fmt.Printf("fps (windowed):   %.1f\n", ctrl.FPS())
	fmt.Printf("last frame:       %v\n", ctrl.LastFrameDuration())
	fmt.Printf("frame histogram:  %s\n", hist)
	fmt.Printf("atlas:            %dpx, generation %d, %.0f%% used\n",
		sess.Atlas().Size(), sess.Atlas().Generation(), sess.Atlas().Utilization()*100)
	fmt.Printf("quads last frame: %d\n", sess.Pool().QuadCount())
	fmt.Printf("animation wakes:  %d\n", wakes)
}

// demoContent is a synthetic surface: a static greeting pane plus a
// scrolling log pane carrying one animated attachment.
type demoContent struct {
	lines  []string
	frame  int
	sprite [spinnerPhases]*image.RGBA
	panes  []render.Pane
}

func newDemoContent() *demoContent {
	c := &demoContent{}
	for i := range c.sprite {
		c.sprite[i] = spinnerFrame(i)
	}
	c.advance(0)
	return c
}

func (c *demoContent) Panes() []render.Pane { return c.panes }

// advance mutates the surface for the next frame: the log gains a line,
// old lines scroll off, and the spinner moves to its next phase.
func (c *demoContent) advance(frame int) {
	c.frame = frame
	c.lines = append(c.lines, fmt.Sprintf("frame %03d painted", frame))
	if len(c.lines) > 12 {
		c.lines = c.lines[1:]
	}
	phase := frame % spinnerPhases
	c.panes = []render.Pane{
		{
			X: 16, Y: 48, Width: 620, Height: 110,
			Lines: []string{
				"frameloop demo",
				"textured quads over a shared atlas",
			},
			Foreground: [4]float32{0.9, 0.9, 0.95, 1},
			Background: [4]float32{0.09, 0.09, 0.11, 1},
		},
		{
			X: 16, Y: 180, Width: 620, Height: 320,
			Lines: c.lines,
			Attachments: []render.Attachment{{
				Key:          fmt.Sprintf("spinner-%d", phase),
				Image:        c.sprite[phase],
				X:            540,
				Y:            16,
				NextFrameDue: time.Now().Add(8 * time.Millisecond),
			}},
			Foreground: [4]float32{0.65, 0.85, 0.65, 1},
			Background: [4]float32{0.07, 0.1, 0.07, 1},
		},
	}
}

// spinnerFrame renders one phase of the animated attachment as a
// shifting gradient block.
func spinnerFrame(phase int) *image.RGBA {
	const side = 48
	img := image.NewRGBA(image.Rect(0, 0, side, side))
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			v := uint8((x*5 + y*3 + phase*32) % 256) //nolint:gosec // masked into byte range
			img.SetRGBA(x, y, color.RGBA{R: v, G: 255 - v, B: 128, A: 255})
		}
	}
	return img
}
