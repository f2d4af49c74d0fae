package frameloop

// ImageFidelity is the image rendering quality for one frame attempt.
// When the texture atlas cannot be recreated at the size a frame needs,
// the controller steps fidelity down one level and rebuilds: reduced
// levels downsample images before atlas placement, and FidelityOff skips
// image placement entirely. Text is unaffected at every level.
//
// Fidelity is per-frame state: every frame starts at FidelityFull.
type ImageFidelity int

const (
	// FidelityFull places images at native resolution.
	FidelityFull ImageFidelity = iota
	// FidelityHalf downsamples images by 2x before placement.
	FidelityHalf
	// FidelityQuarter downsamples images by 4x before placement.
	FidelityQuarter
	// FidelityEighth downsamples images by 8x before placement.
	FidelityEighth
	// FidelityOff places no images at all.
	FidelityOff
)

// StepDown returns the next lower fidelity level. The second result is
// false when f is already FidelityOff: the degradation ladder is exhausted
// and the frame must be abandoned.
func (f ImageFidelity) StepDown() (ImageFidelity, bool) {
	switch f {
	case FidelityFull:
		return FidelityHalf, true
	case FidelityHalf:
		return FidelityQuarter, true
	case FidelityQuarter:
		return FidelityEighth, true
	case FidelityEighth:
		return FidelityOff, true
	default:
		return FidelityOff, false
	}
}

// Scale returns the downsample divisor for image dimensions: 1 for full
// fidelity, 2/4/8 for the reduced levels, and 0 for FidelityOff (images
// are not placed at all).
func (f ImageFidelity) Scale() int {
	switch f {
	case FidelityFull:
		return 1
	case FidelityHalf:
		return 2
	case FidelityQuarter:
		return 4
	case FidelityEighth:
		return 8
	default:
		return 0
	}
}

// AllowsImages reports whether images are placed at this fidelity.
func (f ImageFidelity) AllowsImages() bool {
	return f != FidelityOff
}

// String returns the string representation of the fidelity level.
func (f ImageFidelity) String() string {
	switch f {
	case FidelityFull:
		return "full"
	case FidelityHalf:
		return "half"
	case FidelityQuarter:
		return "quarter"
	case FidelityEighth:
		return "eighth"
	case FidelityOff:
		return "off"
	default:
		return "unknown"
	}
}
