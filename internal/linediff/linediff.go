// Package linediff computes line-oriented differences between two text blobs.
//
// The pipeline is Split -> Align -> Classify. Align finds a longest common
// subsequence of lines with a dynamic-programming table, and Classify walks
// both line slices against that alignment to produce one Operation per step.
// Everything here is pure: no shared state, no I/O, safe for concurrent use.
package linediff

import "strings"

// Kind classifies a single Operation.
type Kind int

const (
	Unchanged Kind = iota
	Added
	Deleted
	Changed
)

func (k Kind) String() string {
	switch k {
	case Unchanged:
		return "unchanged"
	case Added:
		return "added"
	case Deleted:
		return "deleted"
	case Changed:
		return "changed"
	default:
		return "unknown"
	}
}

// Operation is one classified step of the walk.
//
// Content carries the line for Unchanged, Added and Deleted. Changed uses
// DeletedContent and AddedContent instead. Line numbers are 1-based; zero means
// the operation has no line on that side.
type Operation struct {
	Kind           Kind
	Content        string
	DeletedContent string
	AddedContent   string
	OldLineNo      int
	NewLineNo      int
}

// OldText returns the line this operation contributes to the old side.
func (op Operation) OldText() (string, bool) {
	switch op.Kind {
	case Unchanged, Deleted:
		return op.Content, true
	case Changed:
		return op.DeletedContent, true
	default:
		return "", false
	}
}

// NewText returns the line this operation contributes to the new side.
func (op Operation) NewText() (string, bool) {
	switch op.Kind {
	case Unchanged, Added:
		return op.Content, true
	case Changed:
		return op.AddedContent, true
	default:
		return "", false
	}
}

// Pair is one element of the alignment: oldLines[Old] == newLines[New].
type Pair struct {
	Old int
	New int
}

// Split breaks text into lines on "\n". The empty string has no lines; a
// trailing newline produces a trailing empty line.
func Split(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// Compute splits both texts and returns the classified operations that turn
// oldText into newText.
func Compute(oldText, newText string) []Operation {
	oldLines := Split(oldText)
	newLines := Split(newText)
	return Classify(oldLines, newLines, Align(oldLines, newLines))
}

// OldLines rebuilds the old side from ops.
func OldLines(ops []Operation) []string {
	var lines []string
	for _, op := range ops {
		if text, ok := op.OldText(); ok {
			lines = append(lines, text)
		}
	}
	return lines
}

// NewLines rebuilds the new side from ops.
func NewLines(ops []Operation) []string {
	var lines []string
	for _, op := range ops {
		if text, ok := op.NewText(); ok {
			lines = append(lines, text)
		}
	}
	return lines
}

// Stats counts operations by kind.
type Stats struct {
	Unchanged int
	Added     int
	Deleted   int
	Changed   int
}

// Identical reports whether the operations contain no differences.
func (s Stats) Identical() bool {
	return s.Added == 0 && s.Deleted == 0 && s.Changed == 0
}

// Summarize counts the operations of each kind.
func Summarize(ops []Operation) Stats {
	var s Stats
	for _, op := range ops {
		switch op.Kind {
		case Unchanged:
			s.Unchanged++
		case Added:
			s.Added++
		case Deleted:
			s.Deleted++
		case Changed:
			s.Changed++
		}
	}
	return s
}
