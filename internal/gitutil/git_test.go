package gitutil

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRepoRootSuccess(t *testing.T) {
	withFakeGit(t, `#!/bin/sh
if [ "$1" = "rev-parse" ] && [ "$2" = "--show-toplevel" ]; then
  echo "/tmp/repo"
  exit 0
fi
echo "unexpected args" 1>&2
exit 1
`)

	rootDir := t.TempDir()
	root, err := RepoRoot(context.Background(), rootDir)
	if err != nil {
		t.Fatalf("RepoRoot error: %v", err)
	}
	if root != "/tmp/repo" {
		t.Fatalf("RepoRoot = %q, want /tmp/repo", root)
	}
}

func TestRepoRootFailure(t *testing.T) {
	withFakeGit(t, "#!/bin/sh\nexit 1\n")

	rootDir := t.TempDir()
	if _, err := RepoRoot(context.Background(), rootDir); err == nil {
		t.Fatalf("expected error")
	}
}

func TestListMarkedFiles(t *testing.T) {
	withFakeGit(t, `#!/bin/sh
if [ "$1" = "grep" ] && [ "$2" = "-l" ]; then
  echo "docs/guide.md"
  echo "README.md"
  exit 0
fi
exit 2
`)

	repoRoot := t.TempDir()
	paths, err := ListMarkedFiles(context.Background(), repoRoot, ".")
	if err != nil {
		t.Fatalf("ListMarkedFiles error: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 paths, got %d", len(paths))
	}
	if paths[0] != "docs/guide.md" || paths[1] != "README.md" {
		t.Fatalf("unexpected paths: %v", paths)
	}
}

func TestListMarkedFilesNoMatch(t *testing.T) {
	withFakeGit(t, "#!/bin/sh\nexit 1\n")

	repoRoot := t.TempDir()
	paths, err := ListMarkedFiles(context.Background(), repoRoot, ".")
	if err != nil {
		t.Fatalf("ListMarkedFiles error: %v", err)
	}
	if len(paths) != 0 {
		t.Fatalf("expected no paths, got %v", paths)
	}
}

func TestListMarkedFilesFailure(t *testing.T) {
	withFakeGit(t, "#!/bin/sh\nexit 128\n")

	if _, err := ListMarkedFiles(context.Background(), t.TempDir(), ""); err == nil {
		t.Fatalf("expected error")
	}
}

func TestShowRevision(t *testing.T) {
	withFakeGit(t, `#!/bin/sh
if [ "$1" = "show" ] && [ "$2" = "main:docs/guide.md" ]; then
  printf "# Guide\n"
  exit 0
fi
exit 1
`)

	repoRoot := t.TempDir()
	data, err := ShowRevision(context.Background(), repoRoot, "main", "docs/guide.md")
	if err != nil {
		t.Fatalf("ShowRevision error: %v", err)
	}
	if string(data) != "# Guide\n" {
		t.Fatalf("ShowRevision data = %q", string(data))
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.md")
	if err := os.WriteFile(path, []byte("hello\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Load(context.Background(), path, false)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if got != "hello\n" {
		t.Fatalf("Load = %q", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.md"), false); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadStdin(t *testing.T) {
	original := Stdin
	Stdin = strings.NewReader("from stdin")
	t.Cleanup(func() { Stdin = original })

	got, err := Load(context.Background(), "-", false)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if got != "from stdin" {
		t.Fatalf("Load = %q", got)
	}
}

func TestLoadGitRevision(t *testing.T) {
	withFakeGit(t, `#!/bin/sh
if [ "$1" = "rev-parse" ]; then
  pwd
  exit 0
fi
if [ "$1" = "show" ] && [ "$2" = "HEAD~1:notes.md" ]; then
  printf "old notes"
  exit 0
fi
exit 1
`)

	t.Chdir(t.TempDir())
	got, err := Load(context.Background(), "HEAD~1:notes.md", true)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if got != "old notes" {
		t.Fatalf("Load = %q", got)
	}
}

func TestSplitRevPath(t *testing.T) {
	tests := []struct {
		ref  string
		rev  string
		path string
		ok   bool
	}{
		{"main:README.md", "main", "README.md", true},
		{"README.md", "", "", false},
		{":README.md", "", "", false},
		{"main:", "", "", false},
	}
	for _, tt := range tests {
		rev, path, ok := splitRevPath(tt.ref)
		if rev != tt.rev || path != tt.path || ok != tt.ok {
			t.Errorf("splitRevPath(%q) = %q, %q, %v", tt.ref, rev, path, ok)
		}
	}
}

func withFakeGit(t *testing.T, script string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "git")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write fake git: %v", err)
	}

	original := os.Getenv("PATH")
	pathEnv := strings.Join([]string{dir, original}, string(os.PathListSeparator))
	t.Setenv("PATH", pathEnv)
}
