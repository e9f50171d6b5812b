package run

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/chojs23/docmerge/internal/engine"
	"github.com/chojs23/docmerge/internal/gitutil"
	"github.com/chojs23/docmerge/internal/logging"
	"github.com/chojs23/docmerge/internal/markers"
	"github.com/chojs23/docmerge/internal/tui"
)

var errNoConflicts = errors.New("no documents with conflict blocks found")

// selectMarkedFile lists documents with conflict blocks under the current
// directory and asks the user to pick one. Paths in seen that no longer carry
// blocks stay listed as resolved; the chosen path is added to seen.
func selectMarkedFile(ctx context.Context, seen map[string]bool) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	paths, err := listMarkedFiles(ctx, cwd)
	if err != nil {
		return "", err
	}

	candidates := buildFileCandidates(paths, seen)
	if len(candidates) == 0 {
		return "", errNoConflicts
	}

	var selected string
	if isInteractiveTTY() {
		selected, err = tui.SelectFile(ctx, candidates)
	} else {
		names := make([]string, 0, len(candidates))
		for _, c := range candidates {
			names = append(names, c.Path)
		}
		selected, err = selectPath(names)
	}
	if err != nil {
		return "", err
	}

	seen[selected] = true
	return selected, nil
}

// listMarkedFiles returns document paths relative to cwd. Inside a git work
// tree it asks git; elsewhere it walks cwd.
func listMarkedFiles(ctx context.Context, cwd string) ([]string, error) {
	repoRoot, err := gitutil.RepoRoot(ctx, cwd)
	if err != nil {
		logging.Debug("not a git work tree, walking directory", zap.String("dir", cwd))
		return walkMarkedFiles(cwd)
	}

	scope, err := filepath.Rel(repoRoot, cwd)
	if err != nil {
		scope = "."
	}
	repoPaths, err := gitutil.ListMarkedFiles(ctx, repoRoot, filepath.ToSlash(scope))
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(repoPaths))
	for _, p := range repoPaths {
		if !isDocument(p) {
			continue
		}
		rel, err := filepath.Rel(cwd, filepath.Join(repoRoot, filepath.FromSlash(p)))
		if err != nil {
			rel = filepath.Join(repoRoot, p)
		}
		paths = append(paths, rel)
	}
	return paths, nil
}

func walkMarkedFiles(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !isDocument(path) {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if markers.IsResolved(data) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return paths, nil
}

func isDocument(path string) bool {
	ext := filepath.Ext(path)
	for _, e := range engine.DefaultExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

func buildFileCandidates(paths []string, seen map[string]bool) []tui.FileCandidate {
	listed := make(map[string]bool, len(paths))
	candidates := make([]tui.FileCandidate, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			logging.Warn("skipping unreadable document", zap.String("path", path), zap.Error(err))
			continue
		}
		blocks, err := markers.Count(data)
		if err != nil {
			logging.Warn("skipping malformed document", zap.String("path", path), zap.Error(err))
			continue
		}
		listed[path] = true
		candidates = append(candidates, tui.FileCandidate{Path: path, Blocks: blocks})
	}

	if len(candidates) == 0 {
		return nil
	}
	for path := range seen {
		if !listed[path] {
			candidates = append(candidates, tui.FileCandidate{Path: path})
		}
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Path < candidates[j].Path })
	return candidates
}

func selectPath(paths []string) (string, error) {
	if len(paths) == 1 {
		return paths[0], nil
	}

	fmt.Fprintln(os.Stdout, "Documents with conflict blocks:")
	for i, p := range paths {
		fmt.Fprintf(os.Stdout, "  %d) %s\n", i+1, p)
	}

	reader := bufio.NewReader(os.Stdin)
	for attempt := 0; attempt < 3; attempt++ {
		fmt.Fprintf(os.Stdout, "Select a document to resolve [1-%d]: ", len(paths))
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("read selection: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		idx, err := strconv.Atoi(line)
		if err != nil || idx < 1 || idx > len(paths) {
			fmt.Fprintln(os.Stdout, "Invalid selection.")
			continue
		}
		return paths[idx-1], nil
	}

	return "", fmt.Errorf("invalid selection")
}

func isInteractiveTTY() bool {
	return isTTY(os.Stdin) && isTTY(os.Stdout)
}

func isTTY(file *os.File) bool {
	return term.IsTerminal(int(file.Fd()))
}
