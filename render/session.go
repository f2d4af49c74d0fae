// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"
	"image"
	"math"
	"time"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/frameloop"
	"github.com/gogpu/frameloop/atlas"
	"github.com/gogpu/frameloop/quad"
	"github.com/gogpu/frameloop/shape"
)

// ErrSessionClosed is returned by operations on a closed session.
var ErrSessionClosed = errors.New("render: session closed")

// DefaultTextSize is the text size in pixels when Config.TextSize is zero.
const DefaultTextSize = 16

// lineSpacing scales text size into line advance.
const lineSpacing = 1.25

// fillSpriteSize is the edge length of the shared solid-white sprite that
// backs untextured quads (backgrounds, highlights).
const fillSpriteSize = 4

// Quad pool layers, back to front.
const (
	layerBackground = iota // pane fills and image attachments
	layerText              // pane glyphs
	layerTabBar            // tab bar fill and titles
	layerModal             // modal fill and text
)

// Tab bar layout constants, in pixels.
const (
	tabGap = 16.0 // horizontal space between titles
	tabPad = 8.0  // active-tab highlight bleed past the title
)

// modalPad is the modal's interior margin in pixels.
const modalPad = 12.0

var (
	spriteWhite   = [4]float32{1, 1, 1, 1}
	tabActiveFG   = [4]float32{1, 1, 1, 1}
	tabInactiveFG = [4]float32{0.72, 0.72, 0.72, 1}
	tabActiveBG   = [4]float32{0.25, 0.27, 0.32, 1}
)

// Config configures a Session.
type Config struct {
	// Content supplies the panes. Required.
	Content Content

	// Chrome supplies the tab bar and modal. Optional; nil draws no
	// decorations.
	Chrome Chrome

	// Shaper shapes text runs. Required. Sessions without real fonts
	// use shape.FixedShaper.
	Shaper shape.Shaper

	// Device is the host GPU device. Nil (or a NullDeviceHandle) selects
	// headless mode with a CPU-backed atlas.
	Device DeviceHandle

	// Presenter receives built frames. Nil selects a NullPresenter.
	Presenter Presenter

	// Width, Height is the viewport in pixels. Required.
	Width, Height int

	// TextSize is the glyph size in pixels. Zero selects
	// DefaultTextSize.
	TextSize float64

	// AtlasSize and AtlasMaxSize size the texture atlas. Zero selects
	// the atlas package defaults.
	AtlasSize, AtlasMaxSize int

	// CacheLimit bounds the shaped-run cache. Zero selects
	// shape.DefaultCacheLimit.
	CacheLimit int
}

// Validate checks that the required collaborators are present.
func (c *Config) Validate() error {
	if c.Content == nil {
		return errors.New("render: Config.Content is required")
	}
	if c.Shaper == nil {
		return errors.New("render: Config.Shaper is required")
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("render: viewport %dx%d is not positive", c.Width, c.Height)
	}
	return nil
}

// spriteKey identifies a glyph sprite in the atlas. Sprites are keyed per
// glyph so the atlas fills the way a glyph cache does: distinct glyphs
// consume distinct regions, and heavy text variety exhausts space the
// same way it would with rasterized outlines.
type spriteKey struct {
	id   uint16
	w, h int
}

// imageKey identifies a placed attachment. Fidelity is part of the key:
// a frame retried at lower fidelity must not reuse the full-size entry.
type imageKey struct {
	key string
	fid frameloop.ImageFidelity
}

// Session builds frame geometry from Content and Chrome and presents it.
// It implements frameloop.FrameRenderer and frameloop.RenderResources.
//
// Glyphs render as solid coverage blocks modulated by the text color;
// embedders that want rasterized outlines swap the sprite uploads for a
// rasterizer and keep everything else.
type Session struct {
	content   Content
	chrome    Chrome
	store     *shape.Store
	atlas     *atlas.Atlas
	pool      *quad.Pool
	presenter Presenter

	width, height int
	textSize      float64

	overlays [2]overlayCache

	// Atlas-derived caches. All three die together when the atlas
	// generation moves.
	sprites   map[spriteKey]atlas.Region
	images    map[imageKey]atlas.Region
	fill      atlas.Region
	fillOK    bool
	atlasGen  uint64

	animDue time.Time
	animOK  bool
	closed  bool
}

var (
	_ frameloop.FrameRenderer   = (*Session)(nil)
	_ frameloop.RenderResources = (*Session)(nil)
)

// New creates a Session. The returned session owns its atlas and quad
// pool; Close releases them. The presenter and device belong to the
// caller.
func New(cfg Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var halDev hal.Device
	var halQueue hal.Queue
	if cfg.Device != nil && cfg.Device.Device() != nil {
		d, q, err := HALFromProvider(cfg.Device)
		if err != nil {
			return nil, err
		}
		halDev, halQueue = d, q
	}

	atl, err := atlas.New(atlas.Config{
		Size:    cfg.AtlasSize,
		MaxSize: cfg.AtlasMaxSize,
		Label:   "frameloop_atlas",
		Device:  halDev,
		Queue:   halQueue,
	})
	if err != nil {
		return nil, err
	}

	presenter := cfg.Presenter
	if presenter == nil {
		presenter = &NullPresenter{}
	}
	textSize := cfg.TextSize
	if textSize <= 0 {
		textSize = DefaultTextSize
	}

	return &Session{
		content:   cfg.Content,
		chrome:    cfg.Chrome,
		store:     shape.NewStore(cfg.Shaper, cfg.CacheLimit),
		atlas:     atl,
		pool:      quad.NewPool(quad.Config{Device: halDev, Queue: halQueue}),
		presenter: presenter,
		width:     cfg.Width,
		height:    cfg.Height,
		textSize:  textSize,
		sprites:   make(map[spriteKey]atlas.Region),
		images:    make(map[imageKey]atlas.Region),
		atlasGen:  atl.Generation(),
	}, nil
}

// BuildGeometry assembles one frame's quads at the given image fidelity.
// Atlas exhaustion and stale-shape errors propagate unwrapped in type so
// the controller can classify and recover; the session does not retry
// internally.
func (s *Session) BuildGeometry(fid frameloop.ImageFidelity) error {
	if s.closed {
		return ErrSessionClosed
	}

	s.animDue, s.animOK = time.Time{}, false

	// A moved generation means the atlas texture was recreated: every
	// cached region points into a texture that no longer exists.
	if gen := s.atlas.Generation(); gen != s.atlasGen {
		clear(s.sprites)
		clear(s.images)
		s.fillOK = false
		s.atlasGen = gen
	}

	s.pool.ResetAllocations()

	for i, pane := range s.content.Panes() {
		if err := s.buildPane(pane, fid); err != nil {
			return fmt.Errorf("pane %d: %w", i, err)
		}
	}

	if s.chrome != nil {
		if err := s.buildOverlay(frameloop.OverlayTabBar, s.buildTabBar); err != nil {
			return err
		}
		if err := s.buildOverlay(frameloop.OverlayModal, s.buildModal); err != nil {
			return err
		}
	}
	return nil
}

// InvalidateOverlay drops one overlay's cached quads. Idempotent.
func (s *Session) InvalidateOverlay(o frameloop.Overlay) {
	if int(o) < 0 || int(o) >= len(s.overlays) {
		return
	}
	s.overlays[o].invalidate()
}

// ClearShapeCache drops all shaped-run entries so the next build reshapes
// under the shaper's current generation. Overlay caches hold positioned
// glyphs from the old shaping results, so the controller invalidates them
// alongside this call.
func (s *Session) ClearShapeCache() {
	s.store.Clear()
}

// Draw syncs the quad pool's GPU buffers and presents the frame. The
// controller calls it exactly once per frame, even when geometry was
// abandoned mid-build: presenting whatever accumulated beats presenting
// nothing.
func (s *Session) Draw() error {
	if s.closed {
		return ErrSessionClosed
	}
	if err := s.pool.Sync(); err != nil {
		return fmt.Errorf("sync quad buffers: %w", err)
	}
	return s.presenter.Present(s.pool, s.atlas)
}

// AnimationDue reports the earliest attachment frame deadline seen by the
// latest BuildGeometry. ok is false when nothing animates.
func (s *Session) AnimationDue() (time.Time, bool) {
	return s.animDue, s.animOK
}

// RecreateAtlas destroys and recreates the atlas at the given size.
// Overlay caches are invalidated either way: their UVs reference the old
// texture even when recreation fails partway.
func (s *Session) RecreateAtlas(size int) error {
	if s.closed {
		return ErrSessionClosed
	}
	err := s.atlas.Recreate(size)
	s.overlays[frameloop.OverlayTabBar].invalidate()
	s.overlays[frameloop.OverlayModal].invalidate()
	return err
}

// AllocatedMoreQuads reports whether the last build grew the quad
// buffers, consuming the flag.
func (s *Session) AllocatedMoreQuads() (bool, error) {
	return s.pool.AllocatedMore()
}

// Close releases the session's atlas and quad pool. Safe to call twice.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.pool.Close()
	s.atlas.Close()
}

// Atlas exposes the session's atlas for presenters and stats.
func (s *Session) Atlas() *atlas.Atlas { return s.atlas }

// Pool exposes the session's quad pool for presenters and stats.
func (s *Session) Pool() *quad.Pool { return s.pool }

// Store exposes the session's shaped-run cache.
func (s *Session) Store() *shape.Store { return s.store }

// ---- Geometry builders ----

// quadSink receives one positioned quad. The pool path allocates it
// immediately; the overlay path records it for replay.
type quadSink func(z int, x0, y0, x1, y1 float64, uv [4]float32, color [4]float32) error

// emit allocates one quad in the pool.
func (s *Session) emit(z int, x0, y0, x1, y1 float64, uv [4]float32, color [4]float32) error {
	q, err := s.pool.Layer(z).Allocate()
	if err != nil {
		return err
	}
	q.SetPosition(float32(x0), float32(y0), float32(x1), float32(y1))
	q.SetUV(uv)
	q.SetColor(color[0], color[1], color[2], color[3])
	return nil
}

func (s *Session) buildPane(p Pane, fid frameloop.ImageFidelity) error {
	if p.Background[3] > 0 {
		fill, err := s.fillUV()
		if err != nil {
			return err
		}
		if err := s.emit(layerBackground, p.X, p.Y, p.X+p.Width, p.Y+p.Height, fill, p.Background); err != nil {
			return err
		}
	}

	for _, att := range p.Attachments {
		if err := s.placeAttachment(p, att, fid); err != nil {
			return err
		}
	}

	lineH := s.lineHeight()
	for i, line := range p.Lines {
		if line == "" {
			continue
		}
		y := p.Y + float64(i)*lineH
		if _, err := s.layoutText(line, p.X, y, layerText, p.Foreground, s.emit); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) placeAttachment(p Pane, att Attachment, fid frameloop.ImageFidelity) error {
	// Animated attachments keep their wake-ups even on frames that skip
	// image placement: the next frame starts back at full fidelity.
	if !att.NextFrameDue.IsZero() {
		if !s.animOK || att.NextFrameDue.Before(s.animDue) {
			s.animDue, s.animOK = att.NextFrameDue, true
		}
	}
	if att.Image == nil || !fid.AllowsImages() {
		return nil
	}

	region, err := s.attachmentRegion(att, fid)
	if err != nil {
		return err
	}
	// The quad keeps the image's native extent; reduced fidelity stores
	// fewer texels behind the same screen area.
	b := att.Image.Bounds()
	x0 := p.X + att.X
	y0 := p.Y + att.Y
	return s.emit(layerBackground, x0, y0, x0+float64(b.Dx()), y0+float64(b.Dy()),
		region.UV(s.atlas.Size()), spriteWhite)
}

func (s *Session) attachmentRegion(att Attachment, fid frameloop.ImageFidelity) (atlas.Region, error) {
	if att.Key == "" {
		return s.atlas.PlaceImage(att.Image, fid)
	}
	k := imageKey{key: att.Key, fid: fid}
	if r, ok := s.images[k]; ok {
		return r, nil
	}
	r, err := s.atlas.PlaceImage(att.Image, fid)
	if err != nil {
		return atlas.Region{}, err
	}
	s.images[k] = r
	return r, nil
}

// buildOverlay replays o's cache into the pool, rebuilding it first when
// invalid.
func (s *Session) buildOverlay(o frameloop.Overlay, build func(*overlayCache) error) error {
	c := &s.overlays[o]
	if !c.valid {
		c.quads = c.quads[:0]
		if err := build(c); err != nil {
			return fmt.Errorf("%s overlay: %w", o, err)
		}
		c.valid = true
	}
	for _, q := range c.quads {
		if err := s.emit(q.z, float64(q.x0), float64(q.y0), float64(q.x1), float64(q.y1), q.uv, q.color); err != nil {
			return fmt.Errorf("%s overlay: %w", o, err)
		}
	}
	return nil
}

func (s *Session) buildTabBar(c *overlayCache) error {
	bar := s.chrome.TabBar()
	if len(bar.Titles) == 0 {
		return nil
	}
	h := bar.Height
	if h <= 0 {
		h = math.Ceil(s.textSize * 1.5)
	}

	fill, err := s.fillUV()
	if err != nil {
		return err
	}
	if bar.Background[3] > 0 {
		c.add(layerTabBar, 0, 0, float64(s.width), h, fill, bar.Background)
	}

	sink := func(z int, x0, y0, x1, y1 float64, uv [4]float32, color [4]float32) error {
		c.add(z, x0, y0, x1, y1, uv, color)
		return nil
	}

	x := tabGap
	textY := math.Floor((h - s.textSize) / 2)
	for i, title := range bar.Titles {
		w, err := s.measure(title)
		if err != nil {
			return err
		}
		fg := tabInactiveFG
		if i == bar.Active {
			fg = tabActiveFG
			c.add(layerTabBar, x-tabPad, 0, x+w+tabPad, h, fill, tabActiveBG)
		}
		if _, err := s.layoutText(title, x, textY, layerTabBar, fg, sink); err != nil {
			return err
		}
		x += w + tabGap
	}
	return nil
}

func (s *Session) buildModal(c *overlayCache) error {
	m, ok := s.chrome.Modal()
	if !ok {
		return nil
	}

	fill, err := s.fillUV()
	if err != nil {
		return err
	}
	c.add(layerModal, m.X, m.Y, m.X+m.Width, m.Y+m.Height, fill, m.Background)

	sink := func(z int, x0, y0, x1, y1 float64, uv [4]float32, color [4]float32) error {
		c.add(z, x0, y0, x1, y1, uv, color)
		return nil
	}

	y := m.Y + modalPad
	if m.Title != "" {
		if _, err := s.layoutText(m.Title, m.X+modalPad, y, layerModal, m.Foreground, sink); err != nil {
			return err
		}
		y += s.lineHeight()
	}
	for _, line := range m.Lines {
		if line == "" {
			y += s.lineHeight()
			continue
		}
		if _, err := s.layoutText(line, m.X+modalPad, y, layerModal, m.Foreground, sink); err != nil {
			return err
		}
		y += s.lineHeight()
	}
	return nil
}

// layoutText shapes text and feeds one quad per visible glyph to sink.
// Returns the advance width of the whole line.
func (s *Session) layoutText(text string, x, y float64, z int, color [4]float32, sink quadSink) (float64, error) {
	runs, err := s.store.ShapeLine(text, s.textSize)
	if err != nil {
		return 0, err
	}
	glyphH := math.Ceil(s.textSize)
	penX := x
	for _, run := range runs {
		for _, g := range run.Glyphs {
			w := math.Ceil(g.XAdvance)
			if w <= 0 {
				continue
			}
			sprite, err := s.glyphSprite(g.ID, int(w), int(glyphH))
			if err != nil {
				return 0, err
			}
			gx := penX + g.X
			gy := y + g.Y
			if err := sink(z, gx, gy, gx+w, gy+glyphH, sprite.UV(s.atlas.Size()), color); err != nil {
				return 0, err
			}
		}
		penX += run.Width
	}
	return penX - x, nil
}

// measure returns the advance width of text without emitting quads. Runs
// shaped here stay in the cache for the layout pass that follows.
func (s *Session) measure(text string) (float64, error) {
	runs, err := s.store.ShapeLine(text, s.textSize)
	if err != nil {
		return 0, err
	}
	var w float64
	for _, r := range runs {
		w += r.Width
	}
	return w, nil
}

// glyphSprite returns the atlas region for one glyph's coverage block,
// reserving and uploading it on first use.
func (s *Session) glyphSprite(id uint16, w, h int) (atlas.Region, error) {
	k := spriteKey{id: id, w: w, h: h}
	if r, ok := s.sprites[k]; ok {
		return r, nil
	}
	r, err := s.atlas.Reserve(w, h)
	if err != nil {
		return atlas.Region{}, err
	}
	if err := s.atlas.Upload(r, whiteRGBA(w, h)); err != nil {
		return atlas.Region{}, err
	}
	s.sprites[k] = r
	return r, nil
}

// fillUV returns a single-texel UV inside the shared white sprite.
// Sampling one texel at the sprite's center keeps linear filtering from
// reading neighboring atlas entries.
func (s *Session) fillUV() ([4]float32, error) {
	if !s.fillOK {
		r, err := s.atlas.Reserve(fillSpriteSize, fillSpriteSize)
		if err != nil {
			return [4]float32{}, err
		}
		if err := s.atlas.Upload(r, whiteRGBA(fillSpriteSize, fillSpriteSize)); err != nil {
			return [4]float32{}, err
		}
		s.fill = r
		s.fillOK = true
	}
	uv := s.fill.UV(s.atlas.Size())
	cu := (uv[0] + uv[2]) / 2
	cv := (uv[1] + uv[3]) / 2
	return [4]float32{cu, cv, cu, cv}, nil
}

func (s *Session) lineHeight() float64 {
	return math.Ceil(s.textSize * lineSpacing)
}

func whiteRGBA(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xFF
	}
	return img
}
