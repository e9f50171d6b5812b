package engine

import (
	"fmt"

	"github.com/chojs23/docmerge/internal/markers"
)

// State tracks block resolutions for a merge document with bounded undo and redo.
type State struct {
	doc         markers.Document
	undoStack   []markers.Document
	redoStack   []markers.Document
	maxUndoSize int
}

// NewState creates a State for doc. maxUndoSize bounds both history stacks and must be >= 1.
func NewState(doc markers.Document, maxUndoSize int) (*State, error) {
	if maxUndoSize < 1 {
		return nil, fmt.Errorf("maxUndoSize must be >= 1, got %d", maxUndoSize)
	}
	return &State{
		doc:         cloneDocument(doc),
		undoStack:   make([]markers.Document, 0, maxUndoSize),
		redoStack:   make([]markers.Document, 0, maxUndoSize),
		maxUndoSize: maxUndoSize,
	}, nil
}

// ApplyResolution resolves one block. conflictIndex indexes doc.Conflicts, not doc.Segments.
func (s *State) ApplyResolution(conflictIndex int, resolution markers.Resolution) error {
	if conflictIndex < 0 || conflictIndex >= len(s.doc.Conflicts) {
		return fmt.Errorf("conflict index %d out of bounds [0, %d)", conflictIndex, len(s.doc.Conflicts))
	}
	if _, ok := markers.ParseResolution(string(resolution)); !ok {
		return fmt.Errorf("invalid resolution: %q", resolution)
	}

	ref := s.doc.Conflicts[conflictIndex]
	seg, ok := s.doc.Segments[ref.SegmentIndex].(markers.ConflictSegment)
	if !ok {
		return fmt.Errorf("internal: conflict index %d points to non-ConflictSegment", conflictIndex)
	}
	if seg.Resolution == resolution {
		return nil
	}

	s.beginMutation()
	seg.Resolution = resolution
	s.doc.Segments[ref.SegmentIndex] = seg
	return nil
}

// ApplyAll resolves every block the same way.
func (s *State) ApplyAll(resolution markers.Resolution) error {
	if _, ok := markers.ParseResolution(string(resolution)); !ok {
		return fmt.Errorf("invalid resolution: %q", resolution)
	}

	s.beginMutation()
	for _, ref := range s.doc.Conflicts {
		seg, ok := s.doc.Segments[ref.SegmentIndex].(markers.ConflictSegment)
		if !ok {
			return fmt.Errorf("internal: conflict points to non-ConflictSegment")
		}
		seg.Resolution = resolution
		s.doc.Segments[ref.SegmentIndex] = seg
	}
	return nil
}

// Unset clears the resolution of one block.
func (s *State) Unset(conflictIndex int) error {
	seg, ok := s.doc.Conflict(conflictIndex)
	if !ok {
		return fmt.Errorf("conflict index %d out of bounds [0, %d)", conflictIndex, len(s.doc.Conflicts))
	}
	if seg.Resolution == markers.ResolutionUnset {
		return nil
	}
	s.beginMutation()
	seg.Resolution = markers.ResolutionUnset
	s.doc.Segments[s.doc.Conflicts[conflictIndex].SegmentIndex] = seg
	return nil
}

func (s *State) Undo() error {
	if len(s.undoStack) == 0 {
		return fmt.Errorf("no undo history available")
	}

	s.pushWithLimit(&s.redoStack, s.doc)
	lastIdx := len(s.undoStack) - 1
	s.doc = s.undoStack[lastIdx]
	s.undoStack = s.undoStack[:lastIdx]
	return nil
}

func (s *State) Redo() error {
	if len(s.redoStack) == 0 {
		return fmt.Errorf("no redo history available")
	}

	s.pushWithLimit(&s.undoStack, s.doc)
	lastIdx := len(s.redoStack) - 1
	s.doc = s.redoStack[lastIdx]
	s.redoStack = s.redoStack[:lastIdx]
	return nil
}

// Preview renders the document with resolutions applied. It fails with
// markers.ErrUnresolved while any block is unset.
func (s *State) Preview() ([]byte, error) {
	return markers.RenderResolved(s.doc)
}

// Resolved reports whether every block has a resolution.
func (s *State) Resolved() bool {
	return s.Remaining() == 0
}

// Remaining counts blocks without a resolution.
func (s *State) Remaining() int {
	n := 0
	for i := range s.doc.Conflicts {
		if seg, ok := s.doc.Conflict(i); ok && seg.Resolution == markers.ResolutionUnset {
			n++
		}
	}
	return n
}

// Document returns a copy of the current document.
func (s *State) Document() markers.Document {
	return cloneDocument(s.doc)
}

func (s *State) UndoDepth() int {
	return len(s.undoStack)
}

func (s *State) RedoDepth() int {
	return len(s.redoStack)
}

func (s *State) beginMutation() {
	s.pushWithLimit(&s.undoStack, s.doc)
	s.redoStack = s.redoStack[:0]
}

func (s *State) pushWithLimit(stack *[]markers.Document, doc markers.Document) {
	*stack = append(*stack, cloneDocument(doc))
	if len(*stack) > s.maxUndoSize {
		*stack = (*stack)[1:]
	}
}

// cloneDocument copies the segment and ref slices. Segment byte slices are
// never mutated, so they are shared.
func cloneDocument(doc markers.Document) markers.Document {
	docCopy := markers.Document{
		Segments:  make([]markers.Segment, len(doc.Segments)),
		Conflicts: make([]markers.ConflictRef, len(doc.Conflicts)),
	}
	copy(docCopy.Segments, doc.Segments)
	copy(docCopy.Conflicts, doc.Conflicts)
	return docCopy
}
