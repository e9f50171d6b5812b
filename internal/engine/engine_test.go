package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chojs23/docmerge/internal/markers"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestCheckSize(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxLines int
		wantErr  bool
	}{
		{"disabled", "a\nb\nc", 0, false},
		{"empty", "", 1, false},
		{"at limit", "a\nb", 2, false},
		{"trailing newline counts", "a\nb\n", 2, true},
		{"over limit", "a\nb\nc", 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckSize(tt.text, tt.maxLines)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckSize error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInputTooLarge) {
				t.Fatalf("expected ErrInputTooLarge, got %v", err)
			}
		})
	}
}

func TestDiffTextsRejectsLargeInput(t *testing.T) {
	_, err := DiffTexts("a", "a\nb\nc", Limits{MaxLines: 2})
	if !errors.Is(err, ErrInputTooLarge) {
		t.Fatalf("expected ErrInputTooLarge, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "head:") {
		t.Fatalf("expected error to name the head side, got %v", err)
	}
}

func TestMergeTexts(t *testing.T) {
	got, err := MergeTexts("line1\nline2\nline3", "line1\nlineX\nline3", "head", "base", Limits{})
	if err != nil {
		t.Fatalf("MergeTexts failed: %v", err)
	}
	want := "line1\n<<<<<<< head\nlineX\n=======\nline2\n>>>>>>> base\nline3"
	if got.Text != want {
		t.Errorf("MergeTexts mismatch:\ngot  %q\nwant %q", got.Text, want)
	}
	if got.Blocks != 1 {
		t.Errorf("Blocks = %d, want 1", got.Blocks)
	}
}

func TestMergeTextsDefaultLabels(t *testing.T) {
	got, err := MergeTexts("a", "b", "", "", Limits{})
	if err != nil {
		t.Fatalf("MergeTexts failed: %v", err)
	}
	want := "<<<<<<< head\nb\n=======\na\n>>>>>>> base"
	if got.Text != want {
		t.Errorf("MergeTexts mismatch:\ngot  %q\nwant %q", got.Text, want)
	}
}

func TestMergeTextsRejectsLargeInput(t *testing.T) {
	_, err := MergeTexts("1\n2\n3", "1", "head", "base", Limits{MaxLines: 2})
	if !errors.Is(err, ErrInputTooLarge) {
		t.Fatalf("expected ErrInputTooLarge, got %v", err)
	}
}

func TestCheckResolvedFile(t *testing.T) {
	dir := t.TempDir()
	clean := filepath.Join(dir, "clean.md")
	marked := filepath.Join(dir, "marked.md")
	broken := filepath.Join(dir, "broken.md")
	writeFile(t, clean, "# Done\n")
	writeFile(t, marked, "<<<<<<< head\na\n=======\nb\n>>>>>>> base\n")
	writeFile(t, broken, "<<<<<<< head\na\n")

	if ok, err := CheckResolvedFile(clean); err != nil || !ok {
		t.Errorf("clean: ok=%v err=%v", ok, err)
	}
	if ok, err := CheckResolvedFile(marked); err != nil || ok {
		t.Errorf("marked: ok=%v err=%v", ok, err)
	}
	if _, err := CheckResolvedFile(broken); !errors.Is(err, markers.ErrMalformedConflict) {
		t.Errorf("broken: expected ErrMalformedConflict, got %v", err)
	}
	if _, err := CheckResolvedFile(filepath.Join(dir, "missing.md")); err == nil {
		t.Error("missing: expected error")
	}
}

func TestWriteMerged(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "main.md")
	head := filepath.Join(dir, "branch.md")
	out := filepath.Join(dir, "merged.md")
	writeFile(t, base, "# Guide\nOld intro\nFooter\n")
	writeFile(t, head, "# Guide\nNew intro\nFooter\n")
	writeFile(t, out, "stale\n")

	result, err := WriteMerged(context.Background(), MergeOptions{
		BaseRef:    base,
		HeadRef:    head,
		HeadLabel:  "feature/docs",
		BaseLabel:  "main",
		OutputPath: out,
		Backup:     true,
	})
	if err != nil {
		t.Fatalf("WriteMerged failed: %v", err)
	}
	if result.Blocks != 1 {
		t.Errorf("Blocks = %d, want 1", result.Blocks)
	}

	want := "# Guide\n<<<<<<< feature/docs\nNew intro\n=======\nOld intro\n>>>>>>> main\nFooter\n"
	if got := readFile(t, out); got != want {
		t.Errorf("merged mismatch:\ngot  %q\nwant %q", got, want)
	}
	if got := readFile(t, out+BackupSuffix); got != "stale\n" {
		t.Errorf("backup = %q, want previous content", got)
	}
}

func TestWriteMergedDefaultsLabelsAndSkipsWrite(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "a.md")
	head := filepath.Join(dir, "b.md")
	writeFile(t, base, "x")
	writeFile(t, head, "y")

	result, err := WriteMerged(context.Background(), MergeOptions{BaseRef: base, HeadRef: head})
	if err != nil {
		t.Fatalf("WriteMerged failed: %v", err)
	}
	if result.Text != "<<<<<<< head\ny\n=======\nx\n>>>>>>> base" {
		t.Errorf("Text = %q", result.Text)
	}
}

func TestWriteMergedMissingSource(t *testing.T) {
	dir := t.TempDir()
	_, err := WriteMerged(context.Background(), MergeOptions{
		BaseRef: filepath.Join(dir, "absent.md"),
		HeadRef: filepath.Join(dir, "absent2.md"),
	})
	if err == nil || !strings.Contains(err.Error(), "load base") {
		t.Fatalf("expected load base error, got %v", err)
	}
}

func TestApplyAllAndWrite_WritesResolvedAndBackup(t *testing.T) {
	dir := t.TempDir()
	mergedPath := filepath.Join(dir, "merged.md")
	original := "line1\n<<<<<<< head\nlocal change\n=======\nbase content\n>>>>>>> base\nline3\n"
	writeFile(t, mergedPath, original)

	opts := ApplyOptions{MergedPath: mergedPath, Take: markers.ResolutionHead, Backup: true}
	if err := ApplyAllAndWrite(context.Background(), opts); err != nil {
		t.Fatalf("ApplyAllAndWrite failed: %v", err)
	}

	expected := "line1\nlocal change\nline3\n"
	if got := readFile(t, mergedPath); got != expected {
		t.Errorf("resolved output mismatch:\nexpected: %q\ngot: %q", expected, got)
	}
	if got := readFile(t, mergedPath+BackupSuffix); got != original {
		t.Errorf("backup content mismatch:\nexpected: %q\ngot: %q", original, got)
	}
}

func TestApplyAllAndWrite_RoundTripsMergedDocument(t *testing.T) {
	base := "# Title\nkeep\nold line\n"
	head := "# Title\nkeep\nnew line\nextra\n"
	merged, err := MergeTexts(base, head, "head", "base", Limits{})
	if err != nil {
		t.Fatal(err)
	}

	for _, tt := range []struct {
		take markers.Resolution
		want string
	}{
		{markers.ResolutionHead, head},
		{markers.ResolutionBase, base},
	} {
		t.Run(string(tt.take), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "doc.md")
			writeFile(t, path, merged.Text)
			if err := ApplyAllAndWrite(context.Background(), ApplyOptions{MergedPath: path, Take: tt.take}); err != nil {
				t.Fatalf("ApplyAllAndWrite failed: %v", err)
			}
			if got := readFile(t, path); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
			if _, err := os.Stat(path + BackupSuffix); !os.IsNotExist(err) {
				t.Errorf("unexpected backup file: %v", err)
			}
		})
	}
}

func TestApplyAllAndWrite_NoConflictsLeavesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clean.md")
	writeFile(t, path, "nothing to do\n")

	if err := ApplyAllAndWrite(context.Background(), ApplyOptions{MergedPath: path, Take: markers.ResolutionBase, Backup: true}); err != nil {
		t.Fatalf("ApplyAllAndWrite failed: %v", err)
	}
	if _, err := os.Stat(path + BackupSuffix); !os.IsNotExist(err) {
		t.Errorf("backup should not be written when nothing changes")
	}
}

func TestApplyAllAndWrite_InvalidResolution(t *testing.T) {
	err := ApplyAllAndWrite(context.Background(), ApplyOptions{MergedPath: "unused", Take: markers.Resolution("theirs")})
	if err == nil {
		t.Fatal("expected error for invalid resolution")
	}
}
