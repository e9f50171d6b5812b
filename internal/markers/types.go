package markers

type Resolution string

const (
	ResolutionUnset Resolution = ""
	ResolutionHead  Resolution = "head"
	ResolutionBase  Resolution = "base"
	ResolutionBoth  Resolution = "both"
	ResolutionNone  Resolution = "none"
)

// ParseResolution maps user input to a Resolution.
func ParseResolution(s string) (Resolution, bool) {
	switch r := Resolution(s); r {
	case ResolutionHead, ResolutionBase, ResolutionBoth, ResolutionNone:
		return r, true
	default:
		return ResolutionUnset, false
	}
}

type Document struct {
	Segments  []Segment
	Conflicts []ConflictRef
}

type Segment interface{ isSegment() }

type TextSegment struct{ Bytes []byte }

func (TextSegment) isSegment() {}

// ConflictSegment is one <<<<<<< / ======= / >>>>>>> block. Head holds the
// proposed lines (first section), Base the mainline lines (second section).
type ConflictSegment struct {
	Head []byte
	Base []byte

	HeadLabel string
	BaseLabel string

	Resolution Resolution

	// Unterminated is set when the end marker is the last line of the
	// document and has no newline after it.
	Unterminated bool
}

func (ConflictSegment) isSegment() {}

// ConflictRef points to a conflict segment inside Document.Segments.
//
// We keep an index list for convenient iteration and stable ordering.
type ConflictRef struct {
	SegmentIndex int
}

// Conflict returns the i-th conflict segment.
func (d Document) Conflict(i int) (ConflictSegment, bool) {
	if i < 0 || i >= len(d.Conflicts) {
		return ConflictSegment{}, false
	}
	seg, ok := d.Segments[d.Conflicts[i].SegmentIndex].(ConflictSegment)
	return seg, ok
}
