package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/chojs23/docmerge/internal/linediff"
	"github.com/chojs23/docmerge/internal/logging"
)

// FileStatus classifies a path in a tree comparison.
type FileStatus string

const (
	FileModified  FileStatus = "modified"
	FileIdentical FileStatus = "identical"
	FileAdded     FileStatus = "added"
	FileRemoved   FileStatus = "removed"
)

// FileSummary is the comparison result for one relative path.
type FileSummary struct {
	Path   string
	Status FileStatus
	Stats  linediff.Stats
	Err    error
}

// Progress reports how many files have been compared.
type Progress struct {
	Completed int64
	Total     int64
}

// TreeOptions configures CompareTrees.
type TreeOptions struct {
	Workers int
	Limits  Limits
	// Extensions restricts which files are compared. Empty means DefaultExtensions.
	Extensions []string
}

var DefaultExtensions = []string{".md", ".markdown", ".txt", ".rst", ".adoc"}

// CompareTrees walks baseDir and headDir and diffs every document present in
// both. Files present on one side only are reported as added or removed.
// onProgress is called after each file; it may be nil. Results are sorted by path.
func CompareTrees(ctx context.Context, baseDir, headDir string, opts TreeOptions, onProgress func(Progress)) ([]FileSummary, error) {
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	baseFiles, err := listDocuments(baseDir, exts)
	if err != nil {
		return nil, err
	}
	headFiles, err := listDocuments(headDir, exts)
	if err != nil {
		return nil, err
	}

	var paths []string
	seen := make(map[string]bool)
	for p := range baseFiles {
		paths = append(paths, p)
		seen[p] = true
	}
	for p := range headFiles {
		if !seen[p] {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	total := int64(len(paths))
	var completed atomic.Int64
	results := make([]FileSummary, len(paths))
	work := make(chan int, len(paths))
	for i := range paths {
		work <- i
	}
	close(work)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				p := paths[i]
				switch {
				case ctx.Err() != nil:
					results[i] = FileSummary{Path: p, Err: ctx.Err()}
				case !headFiles[p]:
					results[i] = FileSummary{Path: p, Status: FileRemoved}
				case !baseFiles[p]:
					results[i] = FileSummary{Path: p, Status: FileAdded}
				default:
					results[i] = compareFile(baseDir, headDir, p, opts.Limits)
				}

				n := completed.Add(1)
				if onProgress != nil {
					onProgress(Progress{Completed: n, Total: total})
				}
			}
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return results, err
	}
	logging.Debug("trees compared", zap.String("base", baseDir), zap.String("head", headDir), zap.Int("files", len(paths)))
	return results, nil
}

func compareFile(baseDir, headDir, rel string, limits Limits) FileSummary {
	summary := FileSummary{Path: rel}
	base, err := os.ReadFile(filepath.Join(baseDir, rel))
	if err != nil {
		summary.Err = err
		return summary
	}
	head, err := os.ReadFile(filepath.Join(headDir, rel))
	if err != nil {
		summary.Err = err
		return summary
	}

	ops, err := DiffTexts(string(base), string(head), limits)
	if err != nil {
		summary.Err = err
		return summary
	}
	summary.Stats = linediff.Summarize(ops)
	if summary.Stats.Identical() {
		summary.Status = FileIdentical
	} else {
		summary.Status = FileModified
	}
	return summary
}

func listDocuments(root string, exts []string) (map[string]bool, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	files := make(map[string]bool)
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !hasExtension(path, exts) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return files, nil
}

func hasExtension(path string, exts []string) bool {
	ext := filepath.Ext(path)
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// Failed returns the summaries that carry an error, joined into one error.
func Failed(summaries []FileSummary) error {
	var errs []error
	for _, s := range summaries {
		if s.Err != nil && !errors.Is(s.Err, context.Canceled) {
			errs = append(errs, fmt.Errorf("%s: %w", s.Path, s.Err))
		}
	}
	return errors.Join(errs...)
}
