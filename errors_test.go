package frameloop

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// TestAsOutOfTextureSpace verifies detection through wrapping.
func TestAsOutOfTextureSpace(t *testing.T) {
	base := &OutOfTextureSpaceError{RequiredSize: 4096, CurrentSize: 2048}
	wrapped := fmt.Errorf("building pane quads: %w", base)

	got, ok := AsOutOfTextureSpace(wrapped)
	if !ok {
		t.Fatal("AsOutOfTextureSpace did not detect wrapped error")
	}
	if got.RequiredSize != 4096 || got.CurrentSize != 2048 {
		t.Errorf("unwrapped sizes = (%d, %d), want (4096, 2048)",
			got.RequiredSize, got.CurrentSize)
	}

	if _, ok := AsOutOfTextureSpace(errors.New("unrelated")); ok {
		t.Error("AsOutOfTextureSpace matched an unrelated error")
	}
	if _, ok := AsOutOfTextureSpace(nil); ok {
		t.Error("AsOutOfTextureSpace matched nil")
	}
}

// TestOutOfTextureSpaceErrorMessage checks both sizes appear in the text.
func TestOutOfTextureSpaceErrorMessage(t *testing.T) {
	err := &OutOfTextureSpaceError{RequiredSize: 8192, CurrentSize: 4096}
	msg := err.Error()
	if !strings.Contains(msg, "8192") || !strings.Contains(msg, "4096") {
		t.Errorf("Error() = %q, want both sizes present", msg)
	}
}

// TestStaleShapeCacheSentinel verifies errors.Is through wrapping.
func TestStaleShapeCacheSentinel(t *testing.T) {
	wrapped := fmt.Errorf("shaping line 12: %w", ErrStaleShapeCache)
	if !errors.Is(wrapped, ErrStaleShapeCache) {
		t.Error("errors.Is did not detect wrapped ErrStaleShapeCache")
	}
	if errors.Is(errors.New("other"), ErrStaleShapeCache) {
		t.Error("errors.Is matched an unrelated error")
	}
}
