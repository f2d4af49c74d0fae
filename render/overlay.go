// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

// cachedQuad is one quad recorded by an overlay build. Valid caches are
// replayed into the pool each frame without re-shaping or re-measuring
// the overlay's text.
type cachedQuad struct {
	z              int
	x0, y0, x1, y1 float32
	uv             [4]float32
	color          [4]float32
}

// overlayCache holds the quads of one overlay between invalidations.
//
// The UVs in cached quads reference atlas regions resolved at build time,
// so any action that destroys those regions (atlas recreation, shape
// cache clearing) must invalidate the cache before the next replay. The
// controller does this through Session.InvalidateOverlay.
type overlayCache struct {
	valid bool
	quads []cachedQuad
}

// invalidate drops the cached quads. Idempotent.
func (c *overlayCache) invalidate() {
	c.valid = false
	c.quads = c.quads[:0]
}

// add records one quad during a rebuild.
func (c *overlayCache) add(z int, x0, y0, x1, y1 float64, uv [4]float32, color [4]float32) {
	c.quads = append(c.quads, cachedQuad{
		z:     z,
		x0:    float32(x0),
		y0:    float32(y0),
		x1:    float32(x1),
		y1:    float32(y1),
		uv:    uv,
		color: color,
	})
}
