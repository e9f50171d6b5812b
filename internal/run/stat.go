package run

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"

	"github.com/chojs23/docmerge/internal/cli"
	"github.com/chojs23/docmerge/internal/engine"
)

type statEntry struct {
	Path      string `json:"path"`
	Status    string `json:"status"`
	Unchanged int    `json:"unchanged"`
	Added     int    `json:"added"`
	Deleted   int    `json:"deleted"`
	Changed   int    `json:"changed"`
	Error     string `json:"error,omitempty"`
}

func runStat(ctx context.Context, opts cli.Options) int {
	var progressOut io.Writer = io.Discard
	if isTTY(os.Stderr) {
		progressOut = os.Stderr
	}
	bar := newProgressBar(progressOut)

	summaries, err := engine.CompareTrees(ctx, opts.Base, opts.Head, engine.TreeOptions{
		Workers: opts.Config.Workers,
		Limits:  engine.Limits{MaxLines: opts.Config.MaxLines},
	}, func(p engine.Progress) {
		bar.ChangeMax64(p.Total)
		_ = bar.Add(1)
	})
	_ = bar.Finish()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	if opts.Format == "json" {
		if err := writeStatJSON(os.Stdout, summaries); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
	} else {
		writeStatText(os.Stdout, summaries)
	}

	if err := engine.Failed(summaries); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	return 0
}

func newProgressBar(w io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions64(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("comparing"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func writeStatText(w io.Writer, summaries []engine.FileSummary) {
	var modified, added, removed int
	for _, s := range summaries {
		switch {
		case s.Err != nil:
			fmt.Fprintf(w, "!  %s: %v\n", s.Path, s.Err)
		case s.Status == engine.FileModified:
			modified++
			fmt.Fprintf(w, "M  %s  %d changed, %d added, %d deleted\n", s.Path, s.Stats.Changed, s.Stats.Added, s.Stats.Deleted)
		case s.Status == engine.FileAdded:
			added++
			fmt.Fprintf(w, "A  %s\n", s.Path)
		case s.Status == engine.FileRemoved:
			removed++
			fmt.Fprintf(w, "D  %s\n", s.Path)
		}
	}
	fmt.Fprintf(w, "%d documents compared: %d modified, %d added, %d removed\n", len(summaries), modified, added, removed)
}

func writeStatJSON(w io.Writer, summaries []engine.FileSummary) error {
	entries := make([]statEntry, 0, len(summaries))
	for _, s := range summaries {
		entry := statEntry{
			Path:      s.Path,
			Status:    string(s.Status),
			Unchanged: s.Stats.Unchanged,
			Added:     s.Stats.Added,
			Deleted:   s.Stats.Deleted,
			Changed:   s.Stats.Changed,
		}
		if s.Err != nil {
			entry.Error = s.Err.Error()
		}
		entries = append(entries, entry)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}
