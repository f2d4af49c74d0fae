package frameloop

import "testing"

// TestFidelityStepDown verifies the degradation ladder order and its
// terminal level.
func TestFidelityStepDown(t *testing.T) {
	tests := []struct {
		name string
		from ImageFidelity
		want ImageFidelity
		ok   bool
	}{
		{"full to half", FidelityFull, FidelityHalf, true},
		{"half to quarter", FidelityHalf, FidelityQuarter, true},
		{"quarter to eighth", FidelityQuarter, FidelityEighth, true},
		{"eighth to off", FidelityEighth, FidelityOff, true},
		{"off is terminal", FidelityOff, FidelityOff, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.from.StepDown()
			if got != tt.want || ok != tt.ok {
				t.Errorf("%v.StepDown() = (%v, %v), want (%v, %v)",
					tt.from, got, ok, tt.want, tt.ok)
			}
		})
	}
}

// TestFidelityLadderLength walks the ladder from the top and checks it
// terminates after exactly four steps.
func TestFidelityLadderLength(t *testing.T) {
	fid := FidelityFull
	steps := 0
	for {
		next, ok := fid.StepDown()
		if !ok {
			break
		}
		if next <= fid {
			t.Fatalf("StepDown did not strictly descend: %v -> %v", fid, next)
		}
		fid = next
		steps++
	}
	if steps != 4 {
		t.Errorf("ladder took %d steps, want 4", steps)
	}
	if fid != FidelityOff {
		t.Errorf("ladder ended at %v, want %v", fid, FidelityOff)
	}
}

// TestFidelityScale checks the downsample divisor per level.
func TestFidelityScale(t *testing.T) {
	tests := []struct {
		fid  ImageFidelity
		want int
	}{
		{FidelityFull, 1},
		{FidelityHalf, 2},
		{FidelityQuarter, 4},
		{FidelityEighth, 8},
		{FidelityOff, 0},
	}
	for _, tt := range tests {
		if got := tt.fid.Scale(); got != tt.want {
			t.Errorf("%v.Scale() = %d, want %d", tt.fid, got, tt.want)
		}
	}
}

// TestFidelityAllowsImages checks that only FidelityOff disables images.
func TestFidelityAllowsImages(t *testing.T) {
	for _, fid := range []ImageFidelity{FidelityFull, FidelityHalf, FidelityQuarter, FidelityEighth} {
		if !fid.AllowsImages() {
			t.Errorf("%v.AllowsImages() = false, want true", fid)
		}
	}
	if FidelityOff.AllowsImages() {
		t.Error("FidelityOff.AllowsImages() = true, want false")
	}
}

// TestFidelityString checks log representations.
func TestFidelityString(t *testing.T) {
	tests := []struct {
		fid  ImageFidelity
		want string
	}{
		{FidelityFull, "full"},
		{FidelityHalf, "half"},
		{FidelityQuarter, "quarter"},
		{FidelityEighth, "eighth"},
		{FidelityOff, "off"},
		{ImageFidelity(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.fid.String(); got != tt.want {
			t.Errorf("ImageFidelity(%d).String() = %q, want %q", int(tt.fid), got, tt.want)
		}
	}
}
