package shape

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
)

// ErrNoFont is returned by Shape before any font has been loaded.
var ErrNoFont = errors.New("shape: no font loaded")

// HarfbuzzShaper shapes runs with HarfBuzz via go-text/typesetting:
// kerning, ligatures, and complex scripts included.
//
// HarfbuzzShaper is safe for concurrent use. The parsed font.Font is
// read-only and shared; font.Face instances are created per Shape call
// since they are not concurrent-safe, and shaping.HarfbuzzShaper
// instances are pooled for the same reason.
type HarfbuzzShaper struct {
	pool sync.Pool

	mu   sync.RWMutex
	font *font.Font

	// generation advances on every font load; shaped output cached
	// under an older generation is stale.
	generation atomic.Uint64
}

// NewHarfbuzzShaper creates a shaper with no font loaded.
func NewHarfbuzzShaper() *HarfbuzzShaper {
	return &HarfbuzzShaper{
		pool: sync.Pool{
			New: func() any {
				return &shaping.HarfbuzzShaper{}
			},
		},
	}
}

// LoadFont parses TTF/OTF data and makes it the active font,
// advancing the generation.
func (s *HarfbuzzShaper) LoadFont(data []byte) error {
	face, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("shape: parse font: %w", err)
	}

	s.mu.Lock()
	s.font = face.Font
	s.mu.Unlock()

	s.generation.Add(1)
	return nil
}

// Shape converts one directional run into positioned glyphs.
func (s *HarfbuzzShaper) Shape(seg Segment, sizePx float64) ([]Glyph, error) {
	if seg.Text == "" {
		return nil, nil
	}
	if sizePx <= 0 {
		return nil, fmt.Errorf("shape: invalid size %v", sizePx)
	}

	s.mu.RLock()
	f := s.font
	s.mu.RUnlock()
	if f == nil {
		return nil, ErrNoFont
	}

	runes := []rune(seg.Text)
	dir := di.DirectionLTR
	if seg.Direction == DirectionRTL {
		dir = di.DirectionRTL
	}

	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: dir,
		// font.Face is not concurrent-safe; wrap the shared Font
		// fresh for this call.
		Face:     font.NewFace(f),
		Size:     floatToFixed(sizePx),
		Script:   detectScript(runes),
		Language: language.NewLanguage("en"),
	}

	hb := s.pool.Get().(*shaping.HarfbuzzShaper)
	output := hb.Shape(input)
	s.pool.Put(hb)

	return convertGlyphs(output.Glyphs), nil
}

// Generation returns the font-state revision.
func (s *HarfbuzzShaper) Generation() uint64 {
	return s.generation.Load()
}

// detectScript returns the script of the first non-space rune. Runs
// are already split by direction, and terminal lines rarely mix
// scripts within a run, so first-rune detection is enough.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

// floatToFixed converts a pixel size to 26.6 fixed point.
func floatToFixed(size float64) fixed.Int26_6 {
	return fixed.Int26_6(size * 64)
}

// fixedToFloat converts a 26.6 fixed point value to float64.
func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64.0
}

// convertGlyphs walks the pen across the shaped output, folding each
// glyph's offsets into absolute run-relative positions.
func convertGlyphs(glyphs []shaping.Glyph) []Glyph {
	if len(glyphs) == 0 {
		return nil
	}

	result := make([]Glyph, len(glyphs))
	x := 0.0
	for i, g := range glyphs {
		adv := fixedToFloat(g.Advance)
		result[i] = Glyph{
			ID:       uint16(g.GlyphID), //nolint:gosec // glyph IDs are uint16 in sfnt fonts
			Cluster:  g.TextIndex(),
			X:        x + fixedToFloat(g.XOffset),
			Y:        fixedToFloat(g.YOffset),
			XAdvance: adv,
		}
		x += adv
	}
	return result
}
