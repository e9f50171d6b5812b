package gitutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// RepoRoot returns the repository root directory for the given working directory.
func RepoRoot(ctx context.Context, cwd string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--show-toplevel")
	cmd.Dir = cwd
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git rev-parse --show-toplevel failed: %w", err)
	}
	root := strings.TrimSpace(string(output))
	if root == "" {
		return "", fmt.Errorf("git rev-parse returned empty repo root")
	}
	return root, nil
}

// ListMarkedFiles returns repo-relative paths of tracked files under
// scopePathspec that contain a line starting with a conflict start marker.
func ListMarkedFiles(ctx context.Context, repoRoot string, scopePathspec string) ([]string, error) {
	pathspec := scopePathspec
	if pathspec == "" {
		pathspec = "."
	}

	cmd := exec.CommandContext(ctx, "git", "grep", "-l", "-I", "-e", "^<<<<<<<", "--", pathspec)
	cmd.Dir = repoRoot
	output, err := cmd.Output()
	if err != nil {
		// git grep exits 1 when nothing matches.
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return nil, nil
		}
		return nil, fmt.Errorf("git grep -l failed: %w", err)
	}

	lines := bytes.Split(bytes.TrimSpace(output), []byte{'\n'})
	if len(lines) == 1 && len(lines[0]) == 0 {
		return nil, nil
	}

	paths := make([]string, 0, len(lines))
	for _, line := range lines {
		p := strings.TrimSpace(string(line))
		if p == "" {
			continue
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// ShowRevision reads a file as committed at rev.
func ShowRevision(ctx context.Context, repoRoot string, rev string, path string) ([]byte, error) {
	ref := rev + ":" + filepath.ToSlash(path)
	cmd := exec.CommandContext(ctx, "git", "show", ref)
	cmd.Dir = repoRoot
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git show %s failed: %w", ref, err)
	}
	return output, nil
}

// Stdin is the reader Load uses for "-".
var Stdin io.Reader = os.Stdin

// Load reads a document revision. "-" reads Stdin. With useGit, a REV:PATH
// reference is resolved through git relative to the current directory's
// repository; anything else is a file path.
func Load(ctx context.Context, ref string, useGit bool) (string, error) {
	if ref == "-" {
		data, err := io.ReadAll(Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}

	if useGit {
		if rev, path, ok := splitRevPath(ref); ok {
			cwd, err := os.Getwd()
			if err != nil {
				return "", err
			}
			root, err := RepoRoot(ctx, cwd)
			if err != nil {
				return "", err
			}
			data, err := ShowRevision(ctx, root, rev, path)
			if err != nil {
				return "", err
			}
			return string(data), nil
		}
	}

	data, err := os.ReadFile(ref)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", ref, err)
	}
	return string(data), nil
}

func splitRevPath(ref string) (string, string, bool) {
	rev, path, ok := strings.Cut(ref, ":")
	if !ok || rev == "" || path == "" {
		return "", "", false
	}
	return rev, path, true
}
