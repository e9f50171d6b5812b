package markers

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/chojs23/docmerge/internal/conflict"
)

var ErrMalformedConflict = errors.New("malformed conflict markers")

var (
	markStart = []byte(conflict.StartMarker)
	markMid   = []byte(conflict.SeparatorMarker)
	markEnd   = []byte(conflict.EndMarker)
)

// Parse splits a merge document into text segments and conflict segments.
//
// It is strict: once it sees a start marker it requires a separator and an end
// marker, in that order.
func Parse(data []byte) (Document, error) {
	var doc Document

	// Work line-by-line, keeping line endings so rendering is lossless.
	lines := splitLinesKeepEOL(data)

	appendText := func(buf *bytes.Buffer) {
		if buf.Len() == 0 {
			return
		}
		doc.Segments = append(doc.Segments, TextSegment{Bytes: append([]byte(nil), buf.Bytes()...)})
		buf.Reset()
	}

	var textBuf bytes.Buffer
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if !isMarkerLine(line, markStart) {
			textBuf.Write(line)
			continue
		}
		appendText(&textBuf)
		headLabel := markerLabel(line, markStart)
		startLine := i + 1

		// Collect head until the separator.
		i++
		var head bytes.Buffer
		for ; i < len(lines); i++ {
			if isMarkerLine(lines[i], markMid) {
				break
			}
			if isMarkerLine(lines[i], markStart) || isMarkerLine(lines[i], markEnd) {
				return Document{}, fmt.Errorf("%w: line %d: expected %s", ErrMalformedConflict, i+1, markMid)
			}
			head.Write(lines[i])
		}
		if i >= len(lines) {
			return Document{}, fmt.Errorf("%w: block at line %d: missing separator", ErrMalformedConflict, startLine)
		}

		// Collect base until the end marker.
		i++
		var base bytes.Buffer
		for ; i < len(lines); i++ {
			if isMarkerLine(lines[i], markEnd) {
				break
			}
			if isMarkerLine(lines[i], markStart) || isMarkerLine(lines[i], markMid) {
				return Document{}, fmt.Errorf("%w: line %d: expected %s", ErrMalformedConflict, i+1, markEnd)
			}
			base.Write(lines[i])
		}
		if i >= len(lines) {
			return Document{}, fmt.Errorf("%w: block at line %d: missing end marker", ErrMalformedConflict, startLine)
		}

		segIndex := len(doc.Segments)
		doc.Segments = append(doc.Segments, ConflictSegment{
			Head:         head.Bytes(),
			Base:         base.Bytes(),
			HeadLabel:    headLabel,
			BaseLabel:    markerLabel(lines[i], markEnd),
			Resolution:   ResolutionUnset,
			Unterminated: !bytes.HasSuffix(lines[i], []byte("\n")),
		})
		doc.Conflicts = append(doc.Conflicts, ConflictRef{SegmentIndex: segIndex})
	}

	appendText(&textBuf)
	return doc, nil
}

// isMarkerLine matches a marker alone on its line or followed by a space and
// a label. Longer runs such as a Markdown "==========" underline do not match.
func isMarkerLine(line, marker []byte) bool {
	body := trimEOL(line)
	if !bytes.HasPrefix(body, marker) {
		return false
	}
	return len(body) == len(marker) || body[len(marker)] == ' '
}

func markerLabel(line, marker []byte) string {
	return string(bytes.TrimSpace(trimEOL(line)[len(marker):]))
}

func trimEOL(line []byte) []byte {
	line = bytes.TrimSuffix(line, []byte("\n"))
	return bytes.TrimSuffix(line, []byte("\r"))
}

func splitLinesKeepEOL(b []byte) [][]byte {
	if len(b) == 0 {
		return nil
	}

	var out [][]byte
	start := 0
	for i := 0; i < len(b); i++ {
		if b[i] == '\n' {
			out = append(out, b[start:i+1])
			start = i + 1
		}
	}
	if start < len(b) {
		out = append(out, b[start:])
	}
	return out
}

// IsResolved reports whether data parses cleanly and has no conflict blocks.
// Malformed marker structure counts as unresolved.
func IsResolved(data []byte) bool {
	n, err := Count(data)
	return err == nil && n == 0
}

// Count returns the number of conflict blocks in data.
func Count(data []byte) (int, error) {
	doc, err := Parse(data)
	if err != nil {
		return 0, err
	}
	return len(doc.Conflicts), nil
}
