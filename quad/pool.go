// Package quad batches textured quads into z-ordered layers backed by
// growable GPU vertex buffers.
//
// A Pool hands out layers by z-index; the frame loop allocates quads
// into them while building geometry, then syncs the dirty layers to the
// GPU before drawing. Layers grow by doubling, and the pool reports the
// growth once per frame so cached geometry referencing the replaced
// buffers can be rebuilt.
//
// A Pool is owned by the goroutine that runs the frame loop and is not
// safe for concurrent use.
package quad

import (
	"slices"

	"github.com/gogpu/wgpu/hal"
)

// Default pool settings.
const (
	// DefaultInitialCapacity is the starting quad capacity per layer.
	DefaultInitialCapacity = 256

	// DefaultMaxCapacity is the largest quad capacity a layer may
	// grow to. It keeps vertex indices within uint16 range.
	DefaultMaxCapacity = 16384
)

// Config configures a Pool. Zero-valued fields select defaults; leave
// Device and Queue nil for a headless pool.
type Config struct {
	// InitialCapacity is the starting quad capacity of new layers.
	InitialCapacity int

	// MaxCapacity bounds layer growth.
	MaxCapacity int

	// Device and Queue select the GPU backing.
	Device hal.Device
	Queue  hal.Queue
}

// Pool owns the quad layers for one window, rendered in ascending
// z-order.
type Pool struct {
	initialCapacity int
	maxCapacity     int

	device hal.Device
	queue  hal.Queue

	layers map[int]*Layer

	// zOrder caches the layers sorted by z; nil when stale.
	zOrder []*Layer
}

// NewPool creates an empty pool from cfg.
func NewPool(cfg Config) *Pool {
	if cfg.InitialCapacity <= 0 {
		cfg.InitialCapacity = DefaultInitialCapacity
	}
	if cfg.MaxCapacity <= 0 {
		cfg.MaxCapacity = DefaultMaxCapacity
	}
	if cfg.MaxCapacity < cfg.InitialCapacity {
		cfg.MaxCapacity = cfg.InitialCapacity
	}
	return &Pool{
		initialCapacity: cfg.InitialCapacity,
		maxCapacity:     cfg.MaxCapacity,
		device:          cfg.Device,
		queue:           cfg.Queue,
		layers:          make(map[int]*Layer),
	}
}

// Layer returns the layer for the given z-index, creating it on first
// use. Higher z values render on top of lower ones.
func (p *Pool) Layer(z int) *Layer {
	if l, ok := p.layers[z]; ok {
		return l
	}

	l := newLayer(z, p.initialCapacity, p.maxCapacity, p.device, p.queue)
	p.layers[z] = l

	// Invalidate cached z-order
	p.zOrder = nil
	return l
}

// Layers returns all layers in ascending z order. The slice is
// invalidated by the next Layer call.
func (p *Pool) Layers() []*Layer {
	if p.zOrder == nil {
		p.zOrder = make([]*Layer, 0, len(p.layers))
		for _, l := range p.layers {
			p.zOrder = append(p.zOrder, l)
		}
		slices.SortFunc(p.zOrder, func(a, b *Layer) int {
			return a.z - b.z
		})
	}
	return p.zOrder
}

// ResetAllocations drops every layer's quads at the start of a frame.
// Capacity is retained, so steady-state frames allocate without
// growing.
func (p *Pool) ResetAllocations() {
	for _, l := range p.Layers() {
		l.reset()
	}
}

// AllocatedMore reports whether any layer grew since the last call,
// rebuilding the grown layers' GPU buffers. Growth means quads handed
// out earlier in the frame landed in replaced buffers, so the frame
// loop must rebuild cached geometry and render again.
func (p *Pool) AllocatedMore() (bool, error) {
	grew := false
	for _, l := range p.Layers() {
		g, err := l.takeGrew()
		grew = grew || g
		if err != nil {
			return grew, err
		}
	}
	return grew, nil
}

// Sync uploads every dirty layer's vertices to the GPU. Headless pools
// only clear the dirty flags.
func (p *Pool) Sync() error {
	for _, l := range p.Layers() {
		if err := l.sync(); err != nil {
			return err
		}
	}
	return nil
}

// QuadCount returns the total quads allocated this frame across all
// layers.
func (p *Pool) QuadCount() int {
	total := 0
	for _, l := range p.Layers() {
		total += l.QuadCount()
	}
	return total
}

// Close releases all GPU buffers.
func (p *Pool) Close() {
	for _, l := range p.Layers() {
		l.destroyBuffers()
	}
	p.layers = nil
	p.zOrder = nil
}
