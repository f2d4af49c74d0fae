package atlas

import (
	"errors"
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/frameloop"
)

// PlaceImage reserves a region for img at the given fidelity and
// uploads the (possibly downsampled) pixels into it. At FidelityFull
// the image keeps its native resolution; each reduced level halves,
// quarters, or eighths both dimensions. At FidelityOff nothing is
// placed and ErrImagesDisabled is returned.
//
// A full atlas surfaces as *frameloop.OutOfTextureSpaceError from the
// underlying Reserve.
func (a *Atlas) PlaceImage(img image.Image, fid frameloop.ImageFidelity) (Region, error) {
	if !fid.AllowsImages() {
		return Region{}, ErrImagesDisabled
	}

	b := img.Bounds()
	if b.Empty() {
		return Region{}, errors.New("atlas: cannot place empty image")
	}

	width, height := b.Dx(), b.Dy()
	if scale := fid.Scale(); scale > 1 {
		// Ceiling division keeps 1px slivers alive at every level.
		width = (width + scale - 1) / scale
		height = (height + scale - 1) / scale
	}

	r, err := a.Reserve(width, height)
	if err != nil {
		return Region{}, err
	}
	if err := a.Upload(r, scaleToRGBA(img, width, height)); err != nil {
		return Region{}, err
	}
	return r, nil
}

// scaleToRGBA renders img into a width x height RGBA buffer. CatmullRom
// keeps downsampled images legible at reduced fidelity.
func scaleToRGBA(img image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
		return dst
	}
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}
