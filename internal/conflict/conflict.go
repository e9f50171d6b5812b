// Package conflict turns a line diff between a base and a head revision into
// a conflict-marked document that a reviewer edits to resolution.
package conflict

import (
	"strings"

	"github.com/chojs23/docmerge/internal/linediff"
)

const (
	StartMarker     = "<<<<<<<"
	SeparatorMarker = "======="
	EndMarker       = ">>>>>>>"

	DefaultHeadLabel = "head"
	DefaultBaseLabel = "base"
)

// Merge wraps every run of non-unchanged operations in a conflict block.
//
// ops must come from diffing base (old side) against head (new side). Each
// block lists the head lines, then the base lines:
//
//	<<<<<<< headLabel
//	head lines
//	=======
//	base lines
//	>>>>>>> baseLabel
//
// Unchanged lines are copied verbatim between blocks. The result is joined
// with "\n" and has no trailing newline of its own.
func Merge(ops []linediff.Operation, headLabel, baseLabel string) string {
	var out []string
	var headBlock, baseBlock []string
	inConflict := false

	flush := func() {
		out = append(out, StartMarker+" "+headLabel)
		out = append(out, headBlock...)
		out = append(out, SeparatorMarker)
		out = append(out, baseBlock...)
		out = append(out, EndMarker+" "+baseLabel)
		headBlock = headBlock[:0]
		baseBlock = baseBlock[:0]
	}

	for _, op := range ops {
		switch op.Kind {
		case linediff.Unchanged:
			if inConflict {
				flush()
				inConflict = false
			}
			out = append(out, op.Content)
		case linediff.Changed:
			inConflict = true
			headBlock = append(headBlock, op.AddedContent)
			baseBlock = append(baseBlock, op.DeletedContent)
		case linediff.Added:
			inConflict = true
			headBlock = append(headBlock, op.Content)
		case linediff.Deleted:
			inConflict = true
			baseBlock = append(baseBlock, op.Content)
		}
	}
	if inConflict {
		flush()
	}

	return strings.Join(out, "\n")
}

// BuildText diffs baseText against headText and returns the merge document.
func BuildText(baseText, headText, headLabel, baseLabel string) string {
	return Merge(linediff.Compute(baseText, headText), headLabel, baseLabel)
}

// Blocks reports how many conflict blocks Merge emits for ops.
func Blocks(ops []linediff.Operation) int {
	blocks := 0
	inConflict := false
	for _, op := range ops {
		if op.Kind == linediff.Unchanged {
			inConflict = false
			continue
		}
		if !inConflict {
			blocks++
			inConflict = true
		}
	}
	return blocks
}
