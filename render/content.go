// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"image"
	"time"
)

// Content supplies the panes to render. The session reads it on the event
// goroutine during every geometry build; implementations return the
// current state and must not block.
type Content interface {
	// Panes returns the panes in paint order, back to front.
	Panes() []Pane
}

// Chrome supplies the window decorations drawn above the panes. Both
// overlays are cached between frames and rebuilt only after
// invalidation, so Chrome is read far less often than Content.
type Chrome interface {
	// TabBar returns the tab bar state. A TabBar with no titles draws
	// nothing.
	TabBar() TabBar

	// Modal returns the active modal, if any.
	Modal() (Modal, bool)
}

// Pane is one rectangular region of text lines and image attachments.
type Pane struct {
	// X, Y is the pane's top-left corner in pixels.
	X, Y float64

	// Width, Height is the pane's extent in pixels, used for the
	// background fill.
	Width, Height float64

	// Lines is the pane's text, one string per row.
	Lines []string

	// Attachments are images anchored within the pane.
	Attachments []Attachment

	// Foreground is the text color, premultiplied RGBA in [0, 1].
	Foreground [4]float32

	// Background is the fill color behind the text. A zero alpha skips
	// the background quad.
	Background [4]float32
}

// Attachment is an image placed within a pane.
type Attachment struct {
	// Key identifies the image content for atlas caching. Attachments
	// with equal keys share one atlas entry per fidelity level; an empty
	// key re-places the image every build.
	Key string

	// Image is the pixel source. It is read during geometry builds, so
	// animated sources should swap the image (and Key) between frames,
	// not mutate it in place.
	Image image.Image

	// X, Y is the attachment's top-left corner in pane coordinates.
	X, Y float64

	// NextFrameDue is when the attachment's next animation frame wants
	// to be on screen. Zero means the attachment is static.
	NextFrameDue time.Time
}

// TabBar is the tab strip drawn along the top edge of the window.
type TabBar struct {
	// Height is the bar height in pixels. Zero or negative selects a
	// height derived from the session's text size.
	Height float64

	// Titles are the tab labels, left to right.
	Titles []string

	// Active is the index of the focused tab. Out-of-range values
	// highlight nothing.
	Active int

	// Background is the bar fill color, premultiplied RGBA in [0, 1].
	Background [4]float32
}

// Modal is a surface drawn over everything else, centered on explicit
// coordinates.
type Modal struct {
	// X, Y is the modal's top-left corner in pixels.
	X, Y float64

	// Width, Height is the modal's extent in pixels.
	Width, Height float64

	// Title is drawn on the modal's first row.
	Title string

	// Lines is the modal body text.
	Lines []string

	// Background is the modal fill, premultiplied RGBA in [0, 1].
	Background [4]float32

	// Foreground is the modal text color.
	Foreground [4]float32
}

// StaticContent is a Content implementation that returns a fixed set of
// panes. Useful for tests and simple embedders; applications with live
// state implement Content themselves.
type StaticContent struct {
	PaneList []Pane
}

// Panes returns the fixed pane list.
func (c *StaticContent) Panes() []Pane { return c.PaneList }

// StaticChrome is a Chrome implementation with fixed decorations.
type StaticChrome struct {
	Bar      TabBar
	ModalBox Modal
	HasModal bool
}

// TabBar returns the fixed tab bar.
func (c *StaticChrome) TabBar() TabBar { return c.Bar }

// Modal returns the fixed modal when HasModal is set.
func (c *StaticChrome) Modal() (Modal, bool) { return c.ModalBox, c.HasModal }

var (
	_ Content = (*StaticContent)(nil)
	_ Chrome  = (*StaticChrome)(nil)
)
