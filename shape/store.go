package shape

import (
	"fmt"

	"golang.org/x/image/math/fixed"

	"github.com/gogpu/frameloop"
)

// DefaultCacheLimit is the soft entry limit for a Store's run cache.
const DefaultCacheLimit = 1024

// Run is one shaped directional run within a line.
type Run struct {
	// Segment is the run's text and direction.
	Segment Segment

	// Glyphs are positioned relative to the run origin.
	Glyphs []Glyph

	// Width is the run's total advance in pixels.
	Width float64
}

// runKey identifies a shaped run. Size is 26.6 fixed point so equal
// pixel sizes compare equal.
type runKey struct {
	text string
	dir  Direction
	size fixed.Int26_6
}

type runEntry struct {
	glyphs     []Glyph
	width      float64
	generation uint64
}

// Store caches shaped runs and detects stale entries.
//
// Every entry embeds the shaper generation it was built under. A cache
// hit whose generation no longer matches means font state changed
// after the entry was cached, so its glyph IDs may reference fonts
// that are gone. The Store reports that as
// frameloop.ErrStaleShapeCache rather than returning bad glyphs; the
// frame loop clears caches and rebuilds geometry within the frame.
type Store struct {
	shaper Shaper
	base   Direction
	cache  *Cache[runKey, runEntry]
}

// NewStore creates a run cache in front of shaper. limit <= 0 selects
// DefaultCacheLimit.
func NewStore(shaper Shaper, limit int) *Store {
	if limit <= 0 {
		limit = DefaultCacheLimit
	}
	return &Store{
		shaper: shaper,
		cache:  NewCache[runKey, runEntry](limit),
	}
}

// SetBaseDirection biases direction resolution for neutral text.
func (st *Store) SetBaseDirection(d Direction) {
	st.base = d
}

// ShapeLine splits text into directional runs and shapes each one,
// serving repeats from cache. It returns frameloop.ErrStaleShapeCache
// when a cached run predates the shaper's current font state.
func (st *Store) ShapeLine(text string, sizePx float64) ([]Run, error) {
	segments := SplitRuns(text, st.base)
	if len(segments) == 0 {
		return nil, nil
	}

	runs := make([]Run, 0, len(segments))
	for _, seg := range segments {
		glyphs, width, err := st.shapeRun(seg, sizePx)
		if err != nil {
			return nil, err
		}
		runs = append(runs, Run{Segment: seg, Glyphs: glyphs, Width: width})
	}
	return runs, nil
}

// shapeRun returns one segment's glyphs, from cache when possible.
func (st *Store) shapeRun(seg Segment, sizePx float64) ([]Glyph, float64, error) {
	key := runKey{text: seg.Text, dir: seg.Direction, size: floatToFixed(sizePx)}

	// Read the generation before shaping: if fonts change while this
	// run shapes, the entry must already count as stale.
	gen := st.shaper.Generation()

	if e, ok := st.cache.Get(key); ok {
		if e.generation != gen {
			return nil, 0, fmt.Errorf("shaped run %q: %w", seg.Text, frameloop.ErrStaleShapeCache)
		}
		return e.glyphs, e.width, nil
	}

	glyphs, err := st.shaper.Shape(seg, sizePx)
	if err != nil {
		return nil, 0, err
	}

	width := 0.0
	for _, g := range glyphs {
		width += g.XAdvance
	}

	st.cache.Set(key, runEntry{glyphs: glyphs, width: width, generation: gen})
	return glyphs, width, nil
}

// Clear drops every cached run. The next ShapeLine rebuilds from the
// shaper's current font state.
func (st *Store) Clear() {
	st.cache.Clear()
}

// Len returns the number of cached runs.
func (st *Store) Len() int {
	return st.cache.Len()
}
