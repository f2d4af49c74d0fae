package shape

import (
	"testing"

	"github.com/go-text/typesetting/language"
)

func TestFixedShaperUniformAdvance(t *testing.T) {
	s := &FixedShaper{}
	seg := Segment{Text: "abc", Direction: DirectionLTR}

	glyphs, err := s.Shape(seg, 10)
	if err != nil {
		t.Fatalf("Shape: %v", err)
	}
	if len(glyphs) != 3 {
		t.Fatalf("glyph count = %d, want 3", len(glyphs))
	}

	for i, g := range glyphs {
		if g.ID != uint16("abc"[i]) {
			t.Errorf("glyph %d ID = %d, want %d", i, g.ID, "abc"[i])
		}
		if g.Cluster != i {
			t.Errorf("glyph %d cluster = %d, want %d", i, g.Cluster, i)
		}
		if g.XAdvance != 6 {
			t.Errorf("glyph %d advance = %v, want 6 (0.6 * 10)", i, g.XAdvance)
		}
		if want := float64(i) * 6; g.X != want {
			t.Errorf("glyph %d X = %v, want %v", i, g.X, want)
		}
	}
}

func TestFixedShaperCustomRatio(t *testing.T) {
	s := &FixedShaper{AdvanceRatio: 0.5}

	glyphs, err := s.Shape(Segment{Text: "xy"}, 20)
	if err != nil {
		t.Fatalf("Shape: %v", err)
	}
	if glyphs[1].X != 10 {
		t.Errorf("second glyph X = %v, want 10", glyphs[1].X)
	}
}

func TestFixedShaperRejectsBadSize(t *testing.T) {
	s := &FixedShaper{}
	if _, err := s.Shape(Segment{Text: "a"}, 0); err == nil {
		t.Fatal("Shape with size 0 succeeded, want error")
	}
	if _, err := s.Shape(Segment{Text: "a"}, -4); err == nil {
		t.Fatal("Shape with negative size succeeded, want error")
	}
}

func TestFixedShaperGeneration(t *testing.T) {
	s := &FixedShaper{}
	if got := s.Generation(); got != 0 {
		t.Fatalf("initial Generation = %d, want 0", got)
	}
	s.AdvanceGeneration()
	s.AdvanceGeneration()
	if got := s.Generation(); got != 2 {
		t.Fatalf("Generation = %d, want 2", got)
	}
}

func TestHarfbuzzShaperRequiresFont(t *testing.T) {
	s := NewHarfbuzzShaper()

	if _, err := s.Shape(Segment{Text: "hi"}, 12); err != ErrNoFont {
		t.Fatalf("Shape without font error = %v, want ErrNoFont", err)
	}
	if err := s.LoadFont([]byte("not a font")); err == nil {
		t.Fatal("LoadFont with garbage succeeded, want error")
	}
	if got := s.Generation(); got != 0 {
		t.Fatalf("failed LoadFont advanced generation to %d", got)
	}
}

func TestHarfbuzzShaperEmptyRun(t *testing.T) {
	s := NewHarfbuzzShaper()
	glyphs, err := s.Shape(Segment{}, 12)
	if err != nil || glyphs != nil {
		t.Fatalf("Shape(empty) = (%v, %v), want (nil, nil)", glyphs, err)
	}
}

func TestDetectScriptSkipsSpaces(t *testing.T) {
	if got := detectScript([]rune("  hello")); got != language.Latin {
		t.Errorf("detectScript(ascii) = %v, want Latin", got)
	}
	if got := detectScript([]rune(" שלום")); got == language.Latin {
		t.Error("detectScript(hebrew) = Latin, want a non-Latin script")
	}
	if got := detectScript([]rune("   ")); got != language.Latin {
		t.Errorf("detectScript(blank) = %v, want Latin fallback", got)
	}
}

func TestFixedPointConversion(t *testing.T) {
	if got := floatToFixed(12.5); got != 800 {
		t.Errorf("floatToFixed(12.5) = %d, want 800", got)
	}
	if got := fixedToFloat(800); got != 12.5 {
		t.Errorf("fixedToFloat(800) = %v, want 12.5", got)
	}
}
