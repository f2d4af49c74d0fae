// Package atlas provides a shelf-packed texture atlas for glyph and
// image regions.
//
// An Atlas hands out rectangular regions from a single square texture
// and reports exhaustion as *frameloop.OutOfTextureSpaceError so the
// frame loop can recreate it at a larger size. With a hal device the
// backing texture lives on the GPU; without one a CPU pixmap stands in,
// which keeps the packing behavior testable and drives headless use.
//
// An Atlas is owned by the goroutine that runs the frame loop and is
// not safe for concurrent use.
package atlas

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/frameloop"
)

// Atlas errors.
var (
	// ErrClosed is returned when operating on a closed atlas.
	ErrClosed = errors.New("atlas: atlas is closed")

	// ErrRegionOutOfBounds is returned when an upload region lies
	// outside the atlas bounds.
	ErrRegionOutOfBounds = errors.New("atlas: region is outside atlas bounds")

	// ErrImagesDisabled is returned by PlaceImage when image fidelity
	// has degraded to the point that images are skipped entirely.
	ErrImagesDisabled = errors.New("atlas: image placement disabled at this fidelity")
)

// Default atlas settings.
const (
	// DefaultSize is the default atlas dimension (2048x2048).
	DefaultSize = 2048

	// DefaultMaxSize is the largest dimension Recreate will grow to.
	// Growth past this limit fails, which makes the frame loop step
	// image fidelity down instead.
	DefaultMaxSize = 8192

	// MinSize is the minimum atlas dimension (256x256).
	MinSize = 256

	// DefaultPadding is the padding between packed regions.
	DefaultPadding = 1
)

// Config configures an Atlas. The zero value of every field selects a
// default; Device and Queue must be provided together or not at all.
type Config struct {
	// Size is the initial atlas dimension. Defaults to DefaultSize.
	Size int

	// MaxSize caps Recreate growth. Defaults to DefaultMaxSize.
	MaxSize int

	// Padding separates packed regions. Defaults to DefaultPadding.
	Padding int

	// Label names the backing texture in GPU debuggers.
	Label string

	// Device and Queue select the GPU backing. Leave both nil for a
	// CPU-backed atlas.
	Device hal.Device
	Queue  hal.Queue
}

// DefaultConfig returns a CPU-backed configuration with default sizing.
func DefaultConfig() Config {
	return Config{
		Size:    DefaultSize,
		MaxSize: DefaultMaxSize,
		Padding: DefaultPadding,
	}
}

// Validate checks the configuration after defaults are applied.
func (c *Config) Validate() error {
	if c.Size < MinSize {
		return fmt.Errorf("atlas: Config.Size %d is below minimum %d", c.Size, MinSize)
	}
	if c.MaxSize < c.Size {
		return fmt.Errorf("atlas: Config.MaxSize %d is below Config.Size %d", c.MaxSize, c.Size)
	}
	if c.Padding < 0 {
		return errors.New("atlas: Config.Padding must not be negative")
	}
	if (c.Device == nil) != (c.Queue == nil) {
		return errors.New("atlas: Config.Device and Config.Queue must be set together")
	}
	return nil
}

// withDefaults fills zero fields with their defaults.
func (c Config) withDefaults() Config {
	if c.Size == 0 {
		c.Size = DefaultSize
	}
	if c.MaxSize == 0 {
		c.MaxSize = DefaultMaxSize
	}
	if c.Padding == 0 {
		c.Padding = DefaultPadding
	}
	if c.Label == "" {
		c.Label = "frame_atlas"
	}
	return c
}

// Atlas packs glyphs and images into one texture.
type Atlas struct {
	size    int
	maxSize int
	padding int
	label   string

	device hal.Device
	queue  hal.Queue

	alloc *Allocator
	tex   *texture

	// generation increments every Recreate. Cached regions from an
	// older generation point into a texture that no longer exists.
	generation uint64

	closed bool
}

// New creates an atlas from cfg. Zero-valued fields take defaults.
func New(cfg Config) (*Atlas, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tex, err := newTexture(cfg.Device, cfg.Queue, cfg.Size, cfg.Label)
	if err != nil {
		return nil, err
	}

	return &Atlas{
		size:    cfg.Size,
		maxSize: cfg.MaxSize,
		padding: cfg.Padding,
		label:   cfg.Label,
		device:  cfg.Device,
		queue:   cfg.Queue,
		alloc:   NewAllocator(cfg.Size, cfg.Size, cfg.Padding),
		tex:     tex,
	}, nil
}

// Reserve allocates a width x height region. When the atlas is full it
// returns a *frameloop.OutOfTextureSpaceError carrying the size a
// retry should recreate the atlas at.
func (a *Atlas) Reserve(width, height int) (Region, error) {
	if a.closed {
		return Region{}, ErrClosed
	}
	if width <= 0 || height <= 0 {
		return Region{}, fmt.Errorf("atlas: invalid region size %dx%d", width, height)
	}

	r := a.alloc.Allocate(width, height)
	if !r.IsValid() {
		return Region{}, &frameloop.OutOfTextureSpaceError{
			RequiredSize: a.requiredFor(width, height),
			CurrentSize:  a.size,
		}
	}
	return r, nil
}

// requiredFor reports the texture size a failed width x height
// allocation calls for: at least double the current size, doubling
// further until the padded request fits.
func (a *Atlas) requiredFor(width, height int) int {
	need := width + a.padding
	if h := height + a.padding; h > need {
		need = h
	}
	next := a.size * 2
	for next < need {
		next *= 2
	}
	return next
}

// Upload copies src into a region previously returned by Reserve. The
// image bounds must match the region dimensions exactly.
func (a *Atlas) Upload(r Region, src *image.RGBA) error {
	if a.closed {
		return ErrClosed
	}
	if !r.IsValid() || r.X < 0 || r.Y < 0 || r.X+r.Width > a.size || r.Y+r.Height > a.size {
		return ErrRegionOutOfBounds
	}
	b := src.Bounds()
	if b.Dx() != r.Width || b.Dy() != r.Height {
		return fmt.Errorf("atlas: image %dx%d does not match %v", b.Dx(), b.Dy(), r)
	}

	a.tex.upload(r, src)
	return nil
}

// Recreate replaces the backing texture with a fresh one of the given
// size, dropping every existing allocation. Recreating at the current
// size evicts stale entries; a larger size grows the atlas. Sizes above
// the configured maximum fail, leaving the atlas untouched.
func (a *Atlas) Recreate(size int) error {
	if a.closed {
		return ErrClosed
	}
	if size <= 0 {
		size = a.size
	}
	if size < MinSize {
		size = MinSize
	}
	if size > a.maxSize {
		return fmt.Errorf("atlas: size %d exceeds maximum %d", size, a.maxSize)
	}

	tex, err := newTexture(a.device, a.queue, size, a.label)
	if err != nil {
		return fmt.Errorf("atlas: recreate at %d: %w", size, err)
	}

	a.tex.destroy()
	a.tex = tex
	a.size = size
	a.alloc = NewAllocator(size, size, a.padding)
	a.generation++
	return nil
}

// Generation returns the recreate counter. Regions reserved under an
// older generation are stale and must be reserved again.
func (a *Atlas) Generation() uint64 {
	return a.generation
}

// Size returns the current atlas dimension.
func (a *Atlas) Size() int {
	return a.size
}

// Utilization returns the fraction of atlas area in use (0.0 to 1.0).
func (a *Atlas) Utilization() float64 {
	return a.alloc.Utilization()
}

// AllocCount returns the number of regions reserved since the last
// Recreate.
func (a *Atlas) AllocCount() int {
	return a.alloc.AllocCount()
}

// View returns the GPU texture view, or nil for a CPU-backed atlas.
func (a *Atlas) View() hal.TextureView {
	if a.tex == nil {
		return nil
	}
	return a.tex.view
}

// Pixels returns the CPU pixmap backing a deviceless atlas, or nil when
// the atlas lives on the GPU.
func (a *Atlas) Pixels() *image.RGBA {
	if a.tex == nil {
		return nil
	}
	return a.tex.pix
}

// Close releases the backing texture. Further operations return
// ErrClosed.
func (a *Atlas) Close() {
	if a.closed {
		return
	}
	a.closed = true
	a.tex.destroy()
	a.tex = nil
}
