package quad

import (
	"encoding/binary"
	"math"
)

// Vertex is one corner of a textured quad.
//
// The layout matches the WGSL vertex input: position in clip space,
// atlas texture coordinates, premultiplied RGBA color.
type Vertex struct {
	Pos   [2]float32
	UV    [2]float32
	Color [4]float32
}

// VertexStride is the byte size of one Vertex in the GPU buffer.
const VertexStride = 32

// Quad is a handle to one allocated quad in a layer. It stays valid
// until the layer's allocations are reset.
type Quad struct {
	layer *Layer
	index int
}

// vertices returns the quad's four-vertex window, ordered top-left,
// top-right, bottom-right, bottom-left.
func (q Quad) vertices() []Vertex {
	base := q.index * 4
	return q.layer.verts[base : base+4]
}

// SetPosition places the quad's corners at the rectangle (x0, y0) to
// (x1, y1) in clip space.
func (q Quad) SetPosition(x0, y0, x1, y1 float32) {
	v := q.vertices()
	v[0].Pos = [2]float32{x0, y0}
	v[1].Pos = [2]float32{x1, y0}
	v[2].Pos = [2]float32{x1, y1}
	v[3].Pos = [2]float32{x0, y1}
	q.layer.dirty = true
}

// SetUV maps the quad onto the atlas region [u0, v0, u1, v1].
func (q Quad) SetUV(uv [4]float32) {
	v := q.vertices()
	v[0].UV = [2]float32{uv[0], uv[1]}
	v[1].UV = [2]float32{uv[2], uv[1]}
	v[2].UV = [2]float32{uv[2], uv[3]}
	v[3].UV = [2]float32{uv[0], uv[3]}
	q.layer.dirty = true
}

// SetColor tints all four corners with a premultiplied RGBA color.
func (q Quad) SetColor(r, g, b, a float32) {
	v := q.vertices()
	for i := range v {
		v[i].Color = [4]float32{r, g, b, a}
	}
	q.layer.dirty = true
}

// vertexBytes serializes vertices little-endian for GPU upload.
func vertexBytes(verts []Vertex) []byte {
	data := make([]byte, len(verts)*VertexStride)
	off := 0
	put := func(f float32) {
		binary.LittleEndian.PutUint32(data[off:], math.Float32bits(f))
		off += 4
	}
	for _, v := range verts {
		put(v.Pos[0])
		put(v.Pos[1])
		put(v.UV[0])
		put(v.UV[1])
		put(v.Color[0])
		put(v.Color[1])
		put(v.Color[2])
		put(v.Color[3])
	}
	return data
}

// quadIndices generates index data for numQuads quads using the
// pattern 0,1,2 / 2,3,0 per quad.
func quadIndices(numQuads int) []uint16 {
	indices := make([]uint16, numQuads*6)
	for i := range numQuads {
		base := i * 6
		vertex := uint16(i * 4) //nolint:gosec // numQuads is bounded by MaxQuadCapacity

		indices[base+0] = vertex + 0
		indices[base+1] = vertex + 1
		indices[base+2] = vertex + 2

		indices[base+3] = vertex + 2
		indices[base+4] = vertex + 3
		indices[base+5] = vertex + 0
	}
	return indices
}

// indexBytes serializes quad indices little-endian for GPU upload.
func indexBytes(numQuads int) []byte {
	indices := quadIndices(numQuads)
	data := make([]byte, len(indices)*2)
	for i, idx := range indices {
		binary.LittleEndian.PutUint16(data[i*2:], idx)
	}
	return data
}
