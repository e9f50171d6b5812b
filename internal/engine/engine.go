package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/chojs23/docmerge/internal/conflict"
	"github.com/chojs23/docmerge/internal/gitutil"
	"github.com/chojs23/docmerge/internal/linediff"
	"github.com/chojs23/docmerge/internal/logging"
	"github.com/chojs23/docmerge/internal/markers"
)

// BackupSuffix is appended to a file's path when a backup is written.
const BackupSuffix = ".docmerge.bak"

// ErrInputTooLarge is returned when a document exceeds the configured line limit.
var ErrInputTooLarge = errors.New("input too large")

// CheckSize rejects text with more than maxLines lines. maxLines <= 0 disables the check.
func CheckSize(text string, maxLines int) error {
	if maxLines <= 0 || text == "" {
		return nil
	}
	if n := strings.Count(text, "\n") + 1; n > maxLines {
		return fmt.Errorf("%w: %d lines exceeds limit of %d", ErrInputTooLarge, n, maxLines)
	}
	return nil
}

// Limits bounds the documents accepted by DiffTexts and MergeTexts.
type Limits struct {
	MaxLines int
}

func (l Limits) check(base, head string) error {
	if err := CheckSize(base, l.MaxLines); err != nil {
		return fmt.Errorf("base: %w", err)
	}
	if err := CheckSize(head, l.MaxLines); err != nil {
		return fmt.Errorf("head: %w", err)
	}
	return nil
}

// DiffTexts computes the line diff of base against head after the size check.
func DiffTexts(base, head string, limits Limits) ([]linediff.Operation, error) {
	if err := limits.check(base, head); err != nil {
		return nil, err
	}
	ops := linediff.Compute(base, head)
	stats := linediff.Summarize(ops)
	logging.Debug("diff computed",
		zap.Int("ops", len(ops)),
		zap.Int("unchanged", stats.Unchanged),
		zap.Int("added", stats.Added),
		zap.Int("deleted", stats.Deleted),
		zap.Int("changed", stats.Changed),
	)
	return ops, nil
}

// MergeTexts builds the conflict-marked document for base and head after the
// size check. Empty labels fall back to the conflict package defaults.
func MergeTexts(base, head, headLabel, baseLabel string, limits Limits) (MergeResult, error) {
	if headLabel == "" {
		headLabel = conflict.DefaultHeadLabel
	}
	if baseLabel == "" {
		baseLabel = conflict.DefaultBaseLabel
	}
	ops, err := DiffTexts(base, head, limits)
	if err != nil {
		return MergeResult{}, err
	}
	return MergeResult{
		Text:   conflict.Merge(ops, headLabel, baseLabel),
		Blocks: conflict.Blocks(ops),
	}, nil
}

func CheckResolvedFile(mergedPath string) (bool, error) {
	data, err := os.ReadFile(mergedPath)
	if err != nil {
		return false, fmt.Errorf("read merged: %w", err)
	}

	doc, err := markers.Parse(data)
	if err != nil {
		// Malformed markers are an error, not a resolved file.
		return false, err
	}

	return len(doc.Conflicts) == 0, nil
}

// MergeOptions describes a merge document to build and write.
type MergeOptions struct {
	// BaseRef and HeadRef are file paths, "-" for stdin, or with UseGit a REV:PATH.
	BaseRef string
	HeadRef string
	UseGit  bool

	HeadLabel string
	BaseLabel string

	// OutputPath is the file to write. Empty means the result is only returned.
	OutputPath string
	Backup     bool
	Limits     Limits
}

// MergeResult reports what WriteMerged produced.
type MergeResult struct {
	Text   string
	Blocks int
}

// WriteMerged loads both revisions, builds the merge document and writes it
// to opts.OutputPath when set.
func WriteMerged(ctx context.Context, opts MergeOptions) (MergeResult, error) {
	base, err := gitutil.Load(ctx, opts.BaseRef, opts.UseGit)
	if err != nil {
		return MergeResult{}, fmt.Errorf("load base: %w", err)
	}
	head, err := gitutil.Load(ctx, opts.HeadRef, opts.UseGit)
	if err != nil {
		return MergeResult{}, fmt.Errorf("load head: %w", err)
	}

	result, err := MergeTexts(base, head, opts.HeadLabel, opts.BaseLabel, opts.Limits)
	if err != nil {
		return MergeResult{}, err
	}
	logging.Info("merge document built",
		zap.String("base", opts.BaseRef),
		zap.String("head", opts.HeadRef),
		zap.Int("blocks", result.Blocks),
	)

	if opts.OutputPath == "" {
		return result, nil
	}
	if err := writeWithBackup(opts.OutputPath, []byte(result.Text), opts.Backup); err != nil {
		return MergeResult{}, err
	}
	return result, nil
}

// ApplyOptions selects a merged file and the resolution applied to every block.
type ApplyOptions struct {
	MergedPath string
	Take       markers.Resolution
	Backup     bool
}

// ApplyAllAndWrite resolves every conflict block in opts.MergedPath with
// opts.Take and rewrites the file. A file without blocks is left untouched.
func ApplyAllAndWrite(ctx context.Context, opts ApplyOptions) error {
	if _, ok := markers.ParseResolution(string(opts.Take)); !ok {
		return fmt.Errorf("invalid resolution: %q", opts.Take)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	mergedBytes, err := os.ReadFile(opts.MergedPath)
	if err != nil {
		return fmt.Errorf("read merged: %w", err)
	}
	doc, err := markers.Parse(mergedBytes)
	if err != nil {
		return err
	}
	log := logging.With(zap.String("path", opts.MergedPath))
	if len(doc.Conflicts) == 0 {
		log.Info("no conflict blocks")
		return nil
	}

	state, err := NewState(doc, 1)
	if err != nil {
		return err
	}
	if err := state.ApplyAll(opts.Take); err != nil {
		return err
	}
	resolved, err := state.Preview()
	if err != nil {
		return err
	}

	if err := writeWithBackup(opts.MergedPath, resolved, opts.Backup); err != nil {
		return err
	}

	// Verify no conflict markers remain.
	postDoc, err := markers.Parse(resolved)
	if err != nil {
		return fmt.Errorf("post-parse merged: %w", err)
	}
	if len(postDoc.Conflicts) != 0 {
		return errors.New("resolution output still contains conflict markers")
	}

	log.Info("conflicts resolved",
		zap.Int("blocks", len(doc.Conflicts)),
		zap.String("take", string(opts.Take)),
	)
	return nil
}

// WriteResolved writes data to path, keeping the previous content in a
// backup file when backup is set.
func WriteResolved(path string, data []byte, backup bool) error {
	return writeWithBackup(path, data, backup)
}

func writeWithBackup(path string, data []byte, backup bool) error {
	if backup {
		previous, err := os.ReadFile(path)
		switch {
		case err == nil:
			if bytes.Equal(previous, data) {
				return nil
			}
			bak := path + BackupSuffix
			if err := os.WriteFile(bak, previous, 0o644); err != nil {
				return fmt.Errorf("write backup %s: %w", filepath.Base(bak), err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return fmt.Errorf("read %s for backup: %w", path, err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
