package engine

import (
	"errors"
	"testing"

	"github.com/chojs23/docmerge/internal/markers"
)

const twoBlocks = `intro
<<<<<<< feature/docs
new setup
=======
old setup
>>>>>>> main
middle
<<<<<<< feature/docs
new usage
=======
old usage
>>>>>>> main
outro
`

func newTestState(t *testing.T, maxUndo int) *State {
	t.Helper()
	doc, err := markers.Parse([]byte(twoBlocks))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(doc.Conflicts) != 2 {
		t.Fatalf("expected 2 conflicts, got %d", len(doc.Conflicts))
	}
	state, err := NewState(doc, maxUndo)
	if err != nil {
		t.Fatalf("NewState failed: %v", err)
	}
	return state
}

func resolutionOf(t *testing.T, s *State, i int) markers.Resolution {
	t.Helper()
	seg, ok := s.Document().Conflict(i)
	if !ok {
		t.Fatalf("conflict %d missing", i)
	}
	return seg.Resolution
}

func TestNewState(t *testing.T) {
	tests := []struct {
		name        string
		maxUndoSize int
		wantErr     bool
	}{
		{"valid size 1", 1, false},
		{"valid size 10", 10, false},
		{"invalid size 0", 0, true},
		{"invalid size -1", -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewState(markers.Document{}, tt.maxUndoSize)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewState() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyResolution(t *testing.T) {
	state := newTestState(t, 10)

	if err := state.ApplyResolution(0, markers.ResolutionHead); err != nil {
		t.Fatalf("ApplyResolution failed: %v", err)
	}
	if got := resolutionOf(t, state, 0); got != markers.ResolutionHead {
		t.Errorf("conflict 0 resolution = %q, want head", got)
	}
	if got := resolutionOf(t, state, 1); got != markers.ResolutionUnset {
		t.Errorf("conflict 1 resolution = %q, want unset", got)
	}

	errCases := []struct {
		name  string
		index int
		res   markers.Resolution
	}{
		{"out of bounds", 2, markers.ResolutionHead},
		{"negative", -1, markers.ResolutionHead},
		{"invalid resolution", 0, markers.Resolution("ours")},
		{"unset rejected", 0, markers.ResolutionUnset},
	}
	for _, tt := range errCases {
		t.Run(tt.name, func(t *testing.T) {
			if err := state.ApplyResolution(tt.index, tt.res); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestApplyResolutionSameValueKeepsHistory(t *testing.T) {
	state := newTestState(t, 10)
	if err := state.ApplyResolution(0, markers.ResolutionBase); err != nil {
		t.Fatal(err)
	}
	if err := state.ApplyResolution(0, markers.ResolutionBase); err != nil {
		t.Fatal(err)
	}
	if state.UndoDepth() != 1 {
		t.Errorf("UndoDepth = %d, want 1", state.UndoDepth())
	}
}

func TestApplyAll(t *testing.T) {
	state := newTestState(t, 10)

	if err := state.ApplyAll(markers.ResolutionBoth); err != nil {
		t.Fatalf("ApplyAll failed: %v", err)
	}
	for i := 0; i < 2; i++ {
		if got := resolutionOf(t, state, i); got != markers.ResolutionBoth {
			t.Errorf("conflict %d resolution = %q, want both", i, got)
		}
	}
	if !state.Resolved() {
		t.Error("expected Resolved after ApplyAll")
	}

	if err := state.ApplyAll(markers.Resolution("mine")); err == nil {
		t.Error("expected error for invalid resolution")
	}
}

func TestUnset(t *testing.T) {
	state := newTestState(t, 10)
	if err := state.ApplyAll(markers.ResolutionHead); err != nil {
		t.Fatal(err)
	}
	if err := state.Unset(1); err != nil {
		t.Fatalf("Unset failed: %v", err)
	}
	if state.Remaining() != 1 {
		t.Errorf("Remaining = %d, want 1", state.Remaining())
	}
	if err := state.Unset(5); err == nil {
		t.Error("expected error for out of bounds index")
	}
}

func TestUndoRedo(t *testing.T) {
	state := newTestState(t, 10)

	if err := state.Undo(); err == nil {
		t.Error("expected error with empty undo history")
	}
	if err := state.Redo(); err == nil {
		t.Error("expected error with empty redo history")
	}

	if err := state.ApplyResolution(0, markers.ResolutionHead); err != nil {
		t.Fatal(err)
	}
	if err := state.ApplyResolution(1, markers.ResolutionBase); err != nil {
		t.Fatal(err)
	}

	if err := state.Undo(); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if got := resolutionOf(t, state, 1); got != markers.ResolutionUnset {
		t.Errorf("after undo conflict 1 = %q, want unset", got)
	}
	if got := resolutionOf(t, state, 0); got != markers.ResolutionHead {
		t.Errorf("after undo conflict 0 = %q, want head", got)
	}
	if state.RedoDepth() != 1 {
		t.Errorf("RedoDepth = %d, want 1", state.RedoDepth())
	}

	if err := state.Redo(); err != nil {
		t.Fatalf("Redo failed: %v", err)
	}
	if got := resolutionOf(t, state, 1); got != markers.ResolutionBase {
		t.Errorf("after redo conflict 1 = %q, want base", got)
	}

	// A new mutation clears redo history.
	if err := state.Undo(); err != nil {
		t.Fatal(err)
	}
	if err := state.ApplyResolution(1, markers.ResolutionNone); err != nil {
		t.Fatal(err)
	}
	if state.RedoDepth() != 0 {
		t.Errorf("RedoDepth = %d after new mutation, want 0", state.RedoDepth())
	}
}

func TestUndoStackLimit(t *testing.T) {
	state := newTestState(t, 2)

	for _, r := range []markers.Resolution{markers.ResolutionHead, markers.ResolutionBase, markers.ResolutionBoth, markers.ResolutionNone} {
		if err := state.ApplyResolution(0, r); err != nil {
			t.Fatal(err)
		}
	}
	if state.UndoDepth() != 2 {
		t.Fatalf("UndoDepth = %d, want 2", state.UndoDepth())
	}

	if err := state.Undo(); err != nil {
		t.Fatal(err)
	}
	if err := state.Undo(); err != nil {
		t.Fatal(err)
	}
	if got := resolutionOf(t, state, 0); got != markers.ResolutionBase {
		t.Errorf("oldest retained resolution = %q, want base", got)
	}
	if err := state.Undo(); err == nil {
		t.Error("expected undo history to be exhausted")
	}
}

func TestPreview(t *testing.T) {
	tests := []struct {
		name       string
		resolution markers.Resolution
		expected   string
	}{
		{"head", markers.ResolutionHead, "intro\nnew setup\nmiddle\nnew usage\noutro\n"},
		{"base", markers.ResolutionBase, "intro\nold setup\nmiddle\nold usage\noutro\n"},
		{"both", markers.ResolutionBoth, "intro\nnew setup\nold setup\nmiddle\nnew usage\nold usage\noutro\n"},
		{"none", markers.ResolutionNone, "intro\nmiddle\noutro\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := newTestState(t, 10)
			if err := state.ApplyAll(tt.resolution); err != nil {
				t.Fatal(err)
			}
			got, err := state.Preview()
			if err != nil {
				t.Fatalf("Preview failed: %v", err)
			}
			if string(got) != tt.expected {
				t.Errorf("Preview mismatch:\ngot  %q\nwant %q", got, tt.expected)
			}
		})
	}
}

func TestPreviewUnresolved(t *testing.T) {
	state := newTestState(t, 10)
	if err := state.ApplyResolution(0, markers.ResolutionHead); err != nil {
		t.Fatal(err)
	}
	if _, err := state.Preview(); !errors.Is(err, markers.ErrUnresolved) {
		t.Fatalf("expected ErrUnresolved, got %v", err)
	}
	if state.Resolved() {
		t.Error("Resolved should be false with one block left")
	}
}

func TestDocumentIsACopy(t *testing.T) {
	state := newTestState(t, 10)
	doc := state.Document()

	ref := doc.Conflicts[0]
	seg := doc.Segments[ref.SegmentIndex].(markers.ConflictSegment)
	seg.Resolution = markers.ResolutionHead
	doc.Segments[ref.SegmentIndex] = seg

	if got := resolutionOf(t, state, 0); got != markers.ResolutionUnset {
		t.Errorf("mutating returned document changed state: %q", got)
	}
}
