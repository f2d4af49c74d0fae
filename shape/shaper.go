// Package shape turns cell text into positioned glyphs.
//
// A Store caches shaped runs keyed by text, direction, and size, and
// embeds the shaper's generation in every entry. When font state
// changes mid-frame (a fallback font loads, a font reloads after a DPI
// change) the generation advances and cached entries turn stale; the
// Store surfaces that as frameloop.ErrStaleShapeCache so the frame
// loop can clear caches and rebuild geometry within the same frame.
//
// Shaping itself is HarfBuzz via go-text/typesetting; FixedShaper is a
// deterministic metrics-free stand-in for headless use and tests.
package shape

import (
	"fmt"
	"sync/atomic"
)

// Direction is the text flow direction of a run.
type Direction int

const (
	// DirectionLTR is left-to-right text.
	DirectionLTR Direction = iota
	// DirectionRTL is right-to-left text.
	DirectionRTL
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionLTR:
		return "ltr"
	case DirectionRTL:
		return "rtl"
	default:
		return "unknown"
	}
}

// Glyph is one positioned glyph in a shaped run.
type Glyph struct {
	// ID is the glyph index in the font.
	ID uint16

	// Cluster is the rune index in the run's text this glyph maps to.
	Cluster int

	// X and Y position the glyph relative to the run origin.
	X, Y float64

	// XAdvance and YAdvance move the pen to the next glyph.
	XAdvance, YAdvance float64
}

// Shaper converts one directional run of text into glyphs.
//
// Generation reports the shaper's font-state revision. It advances
// whenever previously shaped output becomes unusable, such as after a
// font load; cached runs built under an older generation are stale.
type Shaper interface {
	Shape(seg Segment, sizePx float64) ([]Glyph, error)
	Generation() uint64
}

// FixedShaper is a deterministic monospace Shaper with no font
// dependency. Every rune maps to one glyph advancing by a fixed
// fraction of the size. It is the shaper for headless rendering and
// tests.
//
// FixedShaper is safe for concurrent use.
type FixedShaper struct {
	// AdvanceRatio is the per-glyph advance as a fraction of the
	// point size. Zero means 0.6, a typical monospace aspect.
	AdvanceRatio float64

	generation atomic.Uint64
}

// Shape maps each rune to a glyph on a uniform grid.
func (s *FixedShaper) Shape(seg Segment, sizePx float64) ([]Glyph, error) {
	if sizePx <= 0 {
		return nil, fmt.Errorf("shape: invalid size %v", sizePx)
	}

	ratio := s.AdvanceRatio
	if ratio == 0 {
		ratio = 0.6
	}
	advance := sizePx * ratio

	runes := []rune(seg.Text)
	glyphs := make([]Glyph, len(runes))
	x := 0.0
	for i, r := range runes {
		glyphs[i] = Glyph{
			ID:       uint16(r), //nolint:gosec // synthetic IDs just need determinism
			Cluster:  i,
			X:        x,
			XAdvance: advance,
		}
		x += advance
	}
	return glyphs, nil
}

// Generation returns the current font-state revision.
func (s *FixedShaper) Generation() uint64 {
	return s.generation.Load()
}

// AdvanceGeneration invalidates previously shaped output, as a real
// shaper does when fonts change.
func (s *FixedShaper) AdvanceGeneration() {
	s.generation.Add(1)
}
