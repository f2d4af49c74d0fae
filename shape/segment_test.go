package shape

import (
	"strings"
	"testing"
)

func TestSplitRunsSingleDirection(t *testing.T) {
	segs := SplitRuns("hello world", DirectionLTR)

	if len(segs) != 1 {
		t.Fatalf("segment count = %d, want 1", len(segs))
	}
	s := segs[0]
	if s.Text != "hello world" || s.Start != 0 || s.End != 11 {
		t.Errorf("segment = %+v, want full string [0,11)", s)
	}
	if s.Direction != DirectionLTR {
		t.Errorf("direction = %v, want ltr", s.Direction)
	}
}

func TestSplitRunsRTL(t *testing.T) {
	text := "שלום"
	segs := SplitRuns(text, DirectionLTR)

	if len(segs) != 1 {
		t.Fatalf("segment count = %d, want 1", len(segs))
	}
	if segs[0].Direction != DirectionRTL {
		t.Errorf("direction = %v, want rtl", segs[0].Direction)
	}
	if segs[0].Text != text {
		t.Errorf("text = %q, want %q", segs[0].Text, text)
	}
}

func TestSplitRunsMixed(t *testing.T) {
	text := "abc שלום"
	segs := SplitRuns(text, DirectionLTR)

	if len(segs) != 2 {
		t.Fatalf("segment count = %d, want 2: %+v", len(segs), segs)
	}
	if segs[0].Direction != DirectionLTR || segs[0].Text != "abc " {
		t.Errorf("first segment = %+v, want ltr %q", segs[0], "abc ")
	}
	if segs[1].Direction != DirectionRTL || segs[1].Text != "שלום" {
		t.Errorf("second segment = %+v, want rtl %q", segs[1], "שלום")
	}
	if segs[0].End != segs[1].Start {
		t.Errorf("segments not contiguous: %d != %d", segs[0].End, segs[1].Start)
	}
}

func TestSplitRunsBaseDirectionBiasesNeutrals(t *testing.T) {
	// Pure neutral text takes the paragraph direction.
	if segs := SplitRuns("- - -", DirectionRTL); len(segs) != 1 || segs[0].Direction != DirectionRTL {
		t.Errorf("neutral text with rtl base = %+v, want one rtl segment", segs)
	}
	if segs := SplitRuns("- - -", DirectionLTR); len(segs) != 1 || segs[0].Direction != DirectionLTR {
		t.Errorf("neutral text with ltr base = %+v, want one ltr segment", segs)
	}
}

func TestSplitRunsReassembles(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{"ascii", "plain ascii text"},
		{"hebrew", "עברית בלבד"},
		{"mixed", "ls -la בן.txt done"},
		{"multibyte", "tag: 🎉 party"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			segs := SplitRuns(tc.text, DirectionLTR)
			var sb strings.Builder
			last := 0
			for i, s := range segs {
				sb.WriteString(s.Text)
				if s.Start != last {
					t.Errorf("segment %d starts at %d, want %d", i, s.Start, last)
				}
				last = s.End
			}
			if got := sb.String(); got != tc.text {
				t.Errorf("reassembled %q, want %q", got, tc.text)
			}
			if last != len(tc.text) {
				t.Errorf("last segment ends at %d, want %d", last, len(tc.text))
			}
		})
	}
}

func TestSplitRunsEmpty(t *testing.T) {
	if segs := SplitRuns("", DirectionLTR); segs != nil {
		t.Fatalf("SplitRuns(\"\") = %+v, want nil", segs)
	}
}
