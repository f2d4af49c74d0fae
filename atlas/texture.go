package atlas

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// texture is the atlas backing store. With a hal device it lives on the
// GPU and is updated through queue.WriteTexture; without one it keeps a
// CPU pixmap so packing and cache logic run the same way off-GPU.
type texture struct {
	size   int
	device hal.Device
	queue  hal.Queue
	handle hal.Texture
	view   hal.TextureView

	// CPU backing, only when device is nil.
	pix *image.RGBA
}

func newTexture(device hal.Device, queue hal.Queue, size int, label string) (*texture, error) {
	t := &texture{size: size, device: device, queue: queue}

	if device == nil {
		t.pix = image.NewRGBA(image.Rect(0, 0, size, size))
		return t, nil
	}

	dim := uint32(size) //nolint:gosec // atlas size always fits uint32
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: dim, Height: dim, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("atlas: create texture: %w", err)
	}

	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         label + "_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		device.DestroyTexture(tex)
		return nil, fmt.Errorf("atlas: create texture view: %w", err)
	}

	t.handle = tex
	t.view = view
	return t, nil
}

// upload copies src into the given region. The caller has already
// checked that src matches the region size and that the region is in
// bounds.
func (t *texture) upload(r Region, src *image.RGBA) {
	if t.pix != nil {
		dst := image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
		draw.Draw(t.pix, dst, src, src.Bounds().Min, draw.Src)
		return
	}

	t.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  t.handle,
			MipLevel: 0,
			Origin:   hal.Origin3D{X: uint32(r.X), Y: uint32(r.Y), Z: 0}, //nolint:gosec // bounds checked
			Aspect:   gputypes.TextureAspectAll,
		},
		packRows(src, r.Width, r.Height),
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(r.Width * 4), //nolint:gosec // region fits atlas
			RowsPerImage: uint32(r.Height),    //nolint:gosec // region fits atlas
		},
		&hal.Extent3D{
			Width:              uint32(r.Width),  //nolint:gosec // region fits atlas
			Height:             uint32(r.Height), //nolint:gosec // region fits atlas
			DepthOrArrayLayers: 1,
		},
	)
}

// packRows copies src into a tightly packed RGBA byte slice of
// width*4 bytes per row, as WriteTexture expects.
func packRows(src *image.RGBA, width, height int) []byte {
	rowBytes := width * 4
	origin := src.Bounds().Min
	if src.Stride == rowBytes && origin == (image.Point{}) && len(src.Pix) >= rowBytes*height {
		return src.Pix[:rowBytes*height]
	}
	out := make([]byte, rowBytes*height)
	for y := range height {
		off := src.PixOffset(origin.X, origin.Y+y)
		copy(out[y*rowBytes:(y+1)*rowBytes], src.Pix[off:off+rowBytes])
	}
	return out
}

func (t *texture) destroy() {
	if t.device == nil {
		t.pix = nil
		return
	}
	if t.view != nil {
		t.device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.handle != nil {
		t.device.DestroyTexture(t.handle)
		t.handle = nil
	}
}
