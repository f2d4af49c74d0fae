package frameloop

import (
	"errors"
	"fmt"
)

// ErrStaleShapeCache reports that shape-derived caches were invalidated
// while a frame was being built (for example, a fallback font finished
// loading and changed shaping results). The frame is retried after the
// caches are cleared; fidelity is not affected.
var ErrStaleShapeCache = errors.New("frameloop: shape cache stale")

// ErrDegradationExhausted reports that a frame could not be rendered even
// with images disabled. The frame is abandoned; the next frame starts
// fresh at full fidelity.
var ErrDegradationExhausted = errors.New("frameloop: image degradation exhausted")

// OutOfTextureSpaceError reports that the texture atlas could not satisfy
// an allocation. RequiredSize is the atlas size that would have satisfied
// it; CurrentSize is the atlas size at the time of the failure.
//
// The controller reacts by recreating the atlas: first at CurrentSize
// (dropping stale entries often frees enough room), then at RequiredSize
// on subsequent failures in the same frame.
type OutOfTextureSpaceError struct {
	RequiredSize int
	CurrentSize  int
}

func (e *OutOfTextureSpaceError) Error() string {
	return fmt.Sprintf("frameloop: out of texture space: need atlas size %d, have %d",
		e.RequiredSize, e.CurrentSize)
}

// AsOutOfTextureSpace unwraps err as an *OutOfTextureSpaceError.
func AsOutOfTextureSpace(err error) (*OutOfTextureSpaceError, bool) {
	var oots *OutOfTextureSpaceError
	if errors.As(err, &oots) {
		return oots, true
	}
	return nil, false
}
