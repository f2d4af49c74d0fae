package atlas

import "fmt"

// Region is a rectangular slot inside a texture atlas.
type Region struct {
	// X is the left edge of the region.
	X int
	// Y is the top edge of the region.
	Y int
	// Width is the region width.
	Width int
	// Height is the region height.
	Height int
}

// IsValid returns true if the region has valid dimensions.
func (r Region) IsValid() bool {
	return r.Width > 0 && r.Height > 0
}

// Contains returns true if the point (x, y) is inside the region.
func (r Region) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// String returns a string representation of the region.
func (r Region) String() string {
	return fmt.Sprintf("Region(%d,%d %dx%d)", r.X, r.Y, r.Width, r.Height)
}

// UV returns the normalized texture coordinates of the region within an
// atlas of the given size, as [u0, v0, u1, v1].
func (r Region) UV(atlasSize int) [4]float32 {
	if atlasSize <= 0 {
		return [4]float32{}
	}
	s := float32(atlasSize)
	return [4]float32{
		float32(r.X) / s,
		float32(r.Y) / s,
		float32(r.X+r.Width) / s,
		float32(r.Y+r.Height) / s,
	}
}

// shelf is a horizontal band in the shelf-packing algorithm.
type shelf struct {
	y      int // Top Y coordinate of this shelf
	height int // Height of this shelf (tallest item so far)
	nextX  int // Next available X position on this shelf
}

// Allocator implements a shelf-packing algorithm for allocating
// rectangular regions within a fixed-size area.
//
// The area is divided into horizontal "shelves". Each new rectangle is
// placed on the first shelf with room for it, or a new shelf is opened
// below the last one.
//
// Allocator is not safe for concurrent use; the goroutine that owns the
// frame loop owns the allocator.
type Allocator struct {
	width  int
	height int

	// Shelves, sorted by Y position.
	shelves []*shelf

	// Padding between items and shelves.
	padding int

	allocCount int
	usedArea   int
}

// NewAllocator creates an allocator for a width x height area.
func NewAllocator(width, height, padding int) *Allocator {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	if padding < 0 {
		padding = 0
	}
	return &Allocator{
		width:   width,
		height:  height,
		shelves: make([]*shelf, 0, 16),
		padding: padding,
	}
}

// Allocate finds space for a rectangle of the given size.
// It returns an invalid region if the rectangle cannot be placed.
func (a *Allocator) Allocate(width, height int) Region {
	if width <= 0 || height <= 0 {
		return Region{}
	}

	paddedWidth := width + a.padding
	paddedHeight := height + a.padding

	if paddedWidth > a.width || paddedHeight > a.height {
		return Region{}
	}

	for i, s := range a.shelves {
		if a.fitsOnShelf(s, paddedWidth, paddedHeight) {
			return a.allocateOnShelf(i, width, height, paddedWidth)
		}
	}

	return a.allocateNewShelf(width, height, paddedWidth, paddedHeight)
}

// fitsOnShelf checks if a padded rectangle fits on the given shelf. A
// taller item can still grow an empty shelf, but not one that already
// holds items.
func (a *Allocator) fitsOnShelf(s *shelf, paddedWidth, paddedHeight int) bool {
	if s.nextX+paddedWidth > a.width {
		return false
	}
	if paddedHeight > s.height && s.nextX > 0 {
		return false
	}
	return true
}

// allocateOnShelf places the rectangle on an existing shelf.
func (a *Allocator) allocateOnShelf(shelfIndex, width, height, paddedWidth int) Region {
	s := a.shelves[shelfIndex]

	region := Region{
		X:      s.nextX,
		Y:      s.y,
		Width:  width,
		Height: height,
	}

	s.nextX += paddedWidth
	if height+a.padding > s.height {
		s.height = height + a.padding
	}

	a.allocCount++
	a.usedArea += width * height

	return region
}

// allocateNewShelf opens a new shelf below the last one and places the
// rectangle on it.
func (a *Allocator) allocateNewShelf(width, height, paddedWidth, paddedHeight int) Region {
	newY := 0
	if len(a.shelves) > 0 {
		last := a.shelves[len(a.shelves)-1]
		newY = last.y + last.height
	}

	if newY+paddedHeight > a.height {
		return Region{}
	}

	a.shelves = append(a.shelves, &shelf{
		y:      newY,
		height: paddedHeight,
		nextX:  paddedWidth,
	})

	a.allocCount++
	a.usedArea += width * height

	return Region{
		X:      0,
		Y:      newY,
		Width:  width,
		Height: height,
	}
}

// Reset clears all allocations, making the entire area available again.
func (a *Allocator) Reset() {
	a.shelves = a.shelves[:0]
	a.allocCount = 0
	a.usedArea = 0
}

// UsedArea returns the total area of allocated rectangles.
func (a *Allocator) UsedArea() int {
	return a.usedArea
}

// Utilization returns the fraction of area used (0.0 to 1.0).
func (a *Allocator) Utilization() float64 {
	totalArea := a.width * a.height
	if totalArea == 0 {
		return 0
	}
	return float64(a.usedArea) / float64(totalArea)
}

// AllocCount returns the number of successful allocations.
func (a *Allocator) AllocCount() int {
	return a.allocCount
}
