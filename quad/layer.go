package quad

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ErrCapacityExhausted is returned when a layer cannot grow past its
// configured maximum quad count.
var ErrCapacityExhausted = errors.New("quad: layer quad capacity exhausted")

// Layer is one z-ordered batch of quads sharing a vertex buffer.
//
// Allocations are bump-style: Allocate hands out consecutive quads
// until the pool resets the layer at the next frame. When demand
// outgrows the current capacity the layer doubles it and records the
// growth so the frame loop can rebuild cached quads against the new
// buffers.
type Layer struct {
	z int

	// CPU-side vertices, 4 per quad.
	verts []Vertex

	// capacity is the current quad capacity; maxCapacity bounds growth.
	capacity    int
	maxCapacity int

	// grew is set when capacity doubled since the last AllocatedMore.
	grew bool

	// dirty is set when verts changed since the last Sync.
	dirty bool

	device hal.Device
	queue  hal.Queue

	vertexBuf hal.Buffer
	indexBuf  hal.Buffer
	// bufQuads is the quad capacity the GPU buffers were created for.
	bufQuads int
}

func newLayer(z, capacity, maxCapacity int, device hal.Device, queue hal.Queue) *Layer {
	return &Layer{
		z:           z,
		verts:       make([]Vertex, 0, capacity*4),
		capacity:    capacity,
		maxCapacity: maxCapacity,
		device:      device,
		queue:       queue,
	}
}

// Z returns the layer's z-index.
func (l *Layer) Z() int {
	return l.z
}

// QuadCount returns the number of quads allocated this frame.
func (l *Layer) QuadCount() int {
	return len(l.verts) / 4
}

// Capacity returns the current quad capacity.
func (l *Layer) Capacity() int {
	return l.capacity
}

// Vertices returns the CPU-side vertex data. The slice is invalidated
// by the next Allocate or reset.
func (l *Layer) Vertices() []Vertex {
	return l.verts
}

// Allocate returns the next free quad, doubling capacity when the
// layer is full. Growth past the configured maximum fails with
// ErrCapacityExhausted.
func (l *Layer) Allocate() (Quad, error) {
	if l.QuadCount() == l.capacity {
		next := l.capacity * 2
		if next > l.maxCapacity {
			return Quad{}, fmt.Errorf("%w: layer %d at %d quads", ErrCapacityExhausted, l.z, l.capacity)
		}
		l.capacity = next
		l.grew = true
	}

	index := l.QuadCount()
	l.verts = append(l.verts, make([]Vertex, 4)...)
	l.dirty = true
	return Quad{layer: l, index: index}, nil
}

// reset drops this frame's allocations but keeps capacity.
func (l *Layer) reset() {
	l.verts = l.verts[:0]
	l.dirty = true
}

// takeGrew reports and clears the growth flag, recreating the GPU
// buffers at the new capacity when a device is attached.
func (l *Layer) takeGrew() (bool, error) {
	if !l.grew {
		return false, nil
	}
	l.grew = false
	if l.device != nil {
		if err := l.recreateBuffers(); err != nil {
			return true, err
		}
	}
	return true, nil
}

// sync uploads this frame's vertices, creating the GPU buffers on
// first use.
func (l *Layer) sync() error {
	if l.device == nil || !l.dirty {
		l.dirty = false
		return nil
	}
	if l.vertexBuf == nil || l.bufQuads != l.capacity {
		if err := l.recreateBuffers(); err != nil {
			return err
		}
	}
	if len(l.verts) > 0 {
		l.queue.WriteBuffer(l.vertexBuf, 0, vertexBytes(l.verts))
	}
	l.dirty = false
	return nil
}

// recreateBuffers replaces the GPU buffers with ones sized for the
// current capacity. The index buffer is written once per capacity; its
// contents only depend on the quad count.
func (l *Layer) recreateBuffers() error {
	l.destroyBuffers()

	vb, err := l.device.CreateBuffer(&hal.BufferDescriptor{
		Label: fmt.Sprintf("quad_layer_%d_vertices", l.z),
		Size:  uint64(l.capacity) * 4 * VertexStride, //nolint:gosec // capacity is bounded
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("quad: create vertex buffer for layer %d: %w", l.z, err)
	}

	indexData := indexBytes(l.capacity)
	ib, err := l.device.CreateBuffer(&hal.BufferDescriptor{
		Label: fmt.Sprintf("quad_layer_%d_indices", l.z),
		Size:  uint64(len(indexData)),
		Usage: gputypes.BufferUsageIndex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		l.device.DestroyBuffer(vb)
		return fmt.Errorf("quad: create index buffer for layer %d: %w", l.z, err)
	}
	l.queue.WriteBuffer(ib, 0, indexData)

	l.vertexBuf = vb
	l.indexBuf = ib
	l.bufQuads = l.capacity
	l.dirty = true
	return nil
}

func (l *Layer) destroyBuffers() {
	if l.device == nil {
		return
	}
	if l.vertexBuf != nil {
		l.device.DestroyBuffer(l.vertexBuf)
		l.vertexBuf = nil
	}
	if l.indexBuf != nil {
		l.device.DestroyBuffer(l.indexBuf)
		l.indexBuf = nil
	}
	l.bufQuads = 0
}

// VertexBuffer returns the layer's GPU vertex buffer, nil when
// headless or before the first sync.
func (l *Layer) VertexBuffer() hal.Buffer {
	return l.vertexBuf
}

// IndexBuffer returns the layer's GPU index buffer, nil when headless
// or before the first sync.
func (l *Layer) IndexBuffer() hal.Buffer {
	return l.indexBuf
}
