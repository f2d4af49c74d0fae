package shape

import "golang.org/x/text/unicode/bidi"

// Segment is a contiguous run of text flowing in one direction.
type Segment struct {
	// Text is the run's slice of the original string.
	Text string

	// Start and End are byte offsets into the original string.
	Start, End int

	// Direction is the resolved flow direction.
	Direction Direction
}

// SplitRuns splits text into directional runs using the Unicode bidi
// algorithm. base biases direction resolution for direction-neutral
// text. Runs come back in logical order; an empty string yields nil.
func SplitRuns(text string, base Direction) []Segment {
	if text == "" {
		return nil
	}

	runes := []rune(text)
	levels := bidiLevels(text, base, len(runes))

	offsets := byteOffsets(text, runes)
	segments := make([]Segment, 0, 4)

	start := 0
	for i := 1; i <= len(runes); i++ {
		if i < len(runes) && levels[i] == levels[start] {
			continue
		}
		dir := DirectionLTR
		if levels[start]%2 == 1 {
			dir = DirectionRTL
		}
		segments = append(segments, Segment{
			Text:      text[offsets[start]:offsets[i]],
			Start:     offsets[start],
			End:       offsets[i],
			Direction: dir,
		})
		start = i
	}
	return segments
}

// bidiLevels resolves one embedding level per rune. Errors from the
// bidi package leave every level at 0 (left-to-right).
func bidiLevels(text string, base Direction, n int) []int {
	levels := make([]int, n)

	defaultDir := bidi.Neutral
	if base == DirectionRTL {
		defaultDir = bidi.RightToLeft
	}

	p := bidi.Paragraph{}
	if _, err := p.SetString(text, bidi.DefaultDirection(defaultDir)); err != nil {
		return levels
	}
	ordering, err := p.Order()
	if err != nil {
		return levels
	}

	// run.Pos() returns rune indices, end inclusive.
	for i := 0; i < ordering.NumRuns(); i++ {
		run := ordering.Run(i)
		startRune, endRune := run.Pos()
		level := 0
		if run.Direction() == bidi.RightToLeft {
			level = 1
		}
		for j := startRune; j <= endRune && j < n; j++ {
			levels[j] = level
		}
	}
	return levels
}

// byteOffsets maps rune index to byte offset, with a final entry for
// len(text).
func byteOffsets(text string, runes []rune) []int {
	offsets := make([]int, len(runes)+1)
	off := 0
	for i, r := range runes {
		offsets[i] = off
		off += len(string(r))
	}
	offsets[len(runes)] = len(text)
	return offsets
}
