package markers

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/chojs23/docmerge/internal/conflict"
)

var ErrUnresolved = errors.New("unresolved")

// RenderResolved writes the document with every conflict replaced by its
// resolved content.
//
// A merge document ends without a newline when its source text did; a final
// conflict block then carries Unterminated, and the newline its last content
// line gained from the end marker is dropped again.
func RenderResolved(doc Document) ([]byte, error) {
	var out bytes.Buffer
	trimFinalEOL := false

	for _, seg := range doc.Segments {
		switch s := seg.(type) {
		case TextSegment:
			out.Write(s.Bytes)
			trimFinalEOL = false
		case ConflictSegment:
			chunk, err := resolvedChunk(s)
			if err != nil {
				return nil, err
			}
			out.Write(chunk)
			trimFinalEOL = s.Unterminated
		default:
			return nil, fmt.Errorf("unknown segment type %T", seg)
		}
	}

	data := out.Bytes()
	if trimFinalEOL {
		data = bytes.TrimSuffix(data, []byte("\n"))
	}
	return data, nil
}

func resolvedChunk(s ConflictSegment) ([]byte, error) {
	switch s.Resolution {
	case ResolutionHead:
		return s.Head, nil
	case ResolutionBase:
		return s.Base, nil
	case ResolutionBoth:
		return append(append([]byte(nil), s.Head...), s.Base...), nil
	case ResolutionNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: conflict without resolution", ErrUnresolved)
	}
}

// RenderMarked writes the document with resolved conflicts replaced by their
// content and unresolved ones written back as marker blocks.
func RenderMarked(doc Document) []byte {
	var out bytes.Buffer
	trimFinalEOL := false

	for _, seg := range doc.Segments {
		switch s := seg.(type) {
		case TextSegment:
			out.Write(s.Bytes)
			trimFinalEOL = false
		case ConflictSegment:
			if s.Resolution == ResolutionUnset {
				writeBlock(&out, s)
				trimFinalEOL = false
				continue
			}
			chunk, _ := resolvedChunk(s)
			out.Write(chunk)
			trimFinalEOL = s.Unterminated
		}
	}

	data := out.Bytes()
	if trimFinalEOL {
		data = bytes.TrimSuffix(data, []byte("\n"))
	}
	return data
}

func writeBlock(out *bytes.Buffer, s ConflictSegment) {
	writeMarker(out, conflict.StartMarker, s.HeadLabel)
	out.WriteByte('\n')
	out.Write(s.Head)
	out.WriteString(conflict.SeparatorMarker)
	out.WriteByte('\n')
	out.Write(s.Base)
	writeMarker(out, conflict.EndMarker, s.BaseLabel)
	if !s.Unterminated {
		out.WriteByte('\n')
	}
}

func writeMarker(out *bytes.Buffer, marker, label string) {
	out.WriteString(marker)
	if label != "" {
		out.WriteByte(' ')
		out.WriteString(label)
	}
}
