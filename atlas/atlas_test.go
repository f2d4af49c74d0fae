package atlas

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/gogpu/frameloop"
)

// newTestAtlas returns a small CPU-backed atlas.
func newTestAtlas(t *testing.T, size int) *Atlas {
	t.Helper()
	a, err := New(Config{Size: size, MaxSize: DefaultMaxSize})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(a.Close)
	return a
}

// solidImage returns a width x height image filled with c.
func solidImage(width, height int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func TestNewAppliesDefaults(t *testing.T) {
	a, err := New(Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	if got := a.Size(); got != DefaultSize {
		t.Errorf("Size = %d, want %d", got, DefaultSize)
	}
	if got := a.Generation(); got != 0 {
		t.Errorf("Generation = %d, want 0", got)
	}
	if a.Pixels() == nil {
		t.Error("deviceless atlas should have a CPU pixmap")
	}
	if a.View() != nil {
		t.Error("deviceless atlas should have no texture view")
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"size below minimum", Config{Size: 64}},
		{"max below size", Config{Size: 1024, MaxSize: 512}},
		{"negative padding", Config{Padding: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.cfg); err == nil {
				t.Fatalf("New(%+v) succeeded, want error", tc.cfg)
			}
		})
	}
}

func TestReserveAndUpload(t *testing.T) {
	a := newTestAtlas(t, 256)

	r, err := a.Reserve(10, 10)
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if !r.IsValid() {
		t.Fatalf("Reserve returned invalid region %v", r)
	}

	red := color.RGBA{R: 255, A: 255}
	if err := a.Upload(r, solidImage(10, 10, red)); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	pix := a.Pixels()
	if got := pix.RGBAAt(r.X, r.Y); got != red {
		t.Errorf("top-left pixel = %v, want %v", got, red)
	}
	if got := pix.RGBAAt(r.X+9, r.Y+9); got != red {
		t.Errorf("bottom-right pixel = %v, want %v", got, red)
	}
	if got := pix.RGBAAt(r.X+10, r.Y); got == red {
		t.Error("upload bled past the region's right edge")
	}
}

func TestUploadRejectsBadRegions(t *testing.T) {
	a := newTestAtlas(t, 256)
	img := solidImage(10, 10, color.RGBA{A: 255})

	if err := a.Upload(Region{X: 250, Y: 0, Width: 10, Height: 10}, img); !errors.Is(err, ErrRegionOutOfBounds) {
		t.Errorf("out-of-bounds upload error = %v, want ErrRegionOutOfBounds", err)
	}
	if err := a.Upload(Region{X: -1, Y: 0, Width: 10, Height: 10}, img); !errors.Is(err, ErrRegionOutOfBounds) {
		t.Errorf("negative-origin upload error = %v, want ErrRegionOutOfBounds", err)
	}
	if err := a.Upload(Region{X: 0, Y: 0, Width: 12, Height: 12}, img); err == nil {
		t.Error("size-mismatched upload succeeded, want error")
	}
}

func TestReserveReportsOutOfTextureSpace(t *testing.T) {
	a := newTestAtlas(t, 256)

	if _, err := a.Reserve(200, 200); err != nil {
		t.Fatalf("first Reserve: %v", err)
	}

	_, err := a.Reserve(200, 200)
	var oots *frameloop.OutOfTextureSpaceError
	if !errors.As(err, &oots) {
		t.Fatalf("second Reserve error = %v, want OutOfTextureSpaceError", err)
	}
	if oots.CurrentSize != 256 {
		t.Errorf("CurrentSize = %d, want 256", oots.CurrentSize)
	}
	if oots.RequiredSize != 512 {
		t.Errorf("RequiredSize = %d, want 512", oots.RequiredSize)
	}
}

func TestReserveSizesGrowthToTheRequest(t *testing.T) {
	a := newTestAtlas(t, 256)

	// A 2000px-wide request needs more than one doubling.
	_, err := a.Reserve(2000, 10)
	var oots *frameloop.OutOfTextureSpaceError
	if !errors.As(err, &oots) {
		t.Fatalf("Reserve error = %v, want OutOfTextureSpaceError", err)
	}
	if oots.RequiredSize != 2048 {
		t.Errorf("RequiredSize = %d, want 2048", oots.RequiredSize)
	}
}

func TestRecreateGrowsAndInvalidates(t *testing.T) {
	a := newTestAtlas(t, 256)
	a.Reserve(200, 200)

	if err := a.Recreate(512); err != nil {
		t.Fatalf("Recreate: %v", err)
	}

	if got := a.Size(); got != 512 {
		t.Errorf("Size = %d, want 512", got)
	}
	if got := a.Generation(); got != 1 {
		t.Errorf("Generation = %d, want 1", got)
	}
	if got := a.AllocCount(); got != 0 {
		t.Errorf("AllocCount = %d, want 0 after recreate", got)
	}

	// The previously impossible second 200x200 now fits twice.
	for i := range 2 {
		if _, err := a.Reserve(200, 200); err != nil {
			t.Fatalf("Reserve %d after growth: %v", i, err)
		}
	}
}

func TestRecreateAtCurrentSizeEvicts(t *testing.T) {
	a := newTestAtlas(t, 256)
	a.Reserve(200, 200)

	if err := a.Recreate(0); err != nil {
		t.Fatalf("Recreate(0): %v", err)
	}

	if got := a.Size(); got != 256 {
		t.Errorf("Size = %d, want unchanged 256", got)
	}
	if got := a.Generation(); got != 1 {
		t.Errorf("Generation = %d, want 1", got)
	}
	if _, err := a.Reserve(200, 200); err != nil {
		t.Errorf("Reserve after eviction: %v", err)
	}
}

func TestRecreateRefusesToPassMaxSize(t *testing.T) {
	a, err := New(Config{Size: 256, MaxSize: 512})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	if err := a.Recreate(1024); err == nil {
		t.Fatal("Recreate past MaxSize succeeded, want error")
	}
	if got := a.Size(); got != 256 {
		t.Errorf("failed Recreate changed Size to %d, want 256", got)
	}
	if got := a.Generation(); got != 0 {
		t.Errorf("failed Recreate bumped Generation to %d, want 0", got)
	}
}

func TestClosedAtlasRejectsEverything(t *testing.T) {
	a := newTestAtlas(t, 256)
	a.Close()
	a.Close() // double close is fine

	if _, err := a.Reserve(10, 10); !errors.Is(err, ErrClosed) {
		t.Errorf("Reserve error = %v, want ErrClosed", err)
	}
	if err := a.Upload(Region{Width: 10, Height: 10}, solidImage(10, 10, color.RGBA{})); !errors.Is(err, ErrClosed) {
		t.Errorf("Upload error = %v, want ErrClosed", err)
	}
	if err := a.Recreate(512); !errors.Is(err, ErrClosed) {
		t.Errorf("Recreate error = %v, want ErrClosed", err)
	}
}

func TestPlaceImageScalesWithFidelity(t *testing.T) {
	cases := []struct {
		name     string
		fidelity frameloop.ImageFidelity
		src      int // square source dimension
		want     int // expected placed dimension
	}{
		{"full keeps native size", frameloop.FidelityFull, 64, 64},
		{"half halves", frameloop.FidelityHalf, 64, 32},
		{"quarter quarters", frameloop.FidelityQuarter, 64, 16},
		{"eighth eighths", frameloop.FidelityEighth, 64, 8},
		{"odd sizes round up", frameloop.FidelityHalf, 33, 17},
		{"slivers survive", frameloop.FidelityEighth, 3, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := newTestAtlas(t, 256)
			img := solidImage(tc.src, tc.src, color.RGBA{G: 255, A: 255})

			r, err := a.PlaceImage(img, tc.fidelity)
			if err != nil {
				t.Fatalf("PlaceImage: %v", err)
			}
			if r.Width != tc.want || r.Height != tc.want {
				t.Fatalf("placed %dx%d, want %dx%d", r.Width, r.Height, tc.want, tc.want)
			}
		})
	}
}

func TestPlaceImagePreservesPixelsAtFullFidelity(t *testing.T) {
	a := newTestAtlas(t, 256)
	green := color.RGBA{G: 255, A: 255}

	r, err := a.PlaceImage(solidImage(16, 16, green), frameloop.FidelityFull)
	if err != nil {
		t.Fatalf("PlaceImage: %v", err)
	}
	if got := a.Pixels().RGBAAt(r.X+8, r.Y+8); got != green {
		t.Errorf("placed pixel = %v, want %v", got, green)
	}
}

func TestPlaceImageDisabled(t *testing.T) {
	a := newTestAtlas(t, 256)

	_, err := a.PlaceImage(solidImage(8, 8, color.RGBA{}), frameloop.FidelityOff)
	if !errors.Is(err, ErrImagesDisabled) {
		t.Fatalf("PlaceImage at FidelityOff error = %v, want ErrImagesDisabled", err)
	}
	if got := a.AllocCount(); got != 0 {
		t.Errorf("disabled placement still reserved %d regions", got)
	}
}

func TestPlaceImageSurfacesExhaustion(t *testing.T) {
	a := newTestAtlas(t, 256)
	a.Reserve(250, 250)

	_, err := a.PlaceImage(solidImage(200, 200, color.RGBA{A: 255}), frameloop.FidelityFull)
	var oots *frameloop.OutOfTextureSpaceError
	if !errors.As(err, &oots) {
		t.Fatalf("PlaceImage on a full atlas error = %v, want OutOfTextureSpaceError", err)
	}
}
