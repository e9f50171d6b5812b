package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Page shows text through $PAGER, falling back to "less -R". The command runs
// with the terminal's stdout and stderr attached.
func Page(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}

	name, args := pagerCommand()
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = strings.NewReader(text)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to page output with %s: %w", name, err)
	}
	return nil
}

// OpenFile opens path in $PAGER or $EDITOR for viewing, defaulting to less.
func OpenFile(ctx context.Context, path string) error {
	if path == "" {
		return fmt.Errorf("file path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}

	viewer := os.Getenv("PAGER")
	if viewer == "" {
		viewer = os.Getenv("EDITOR")
	}
	if viewer == "" {
		viewer = "less"
	}
	fields := strings.Fields(viewer)

	cmd := exec.CommandContext(ctx, fields[0], append(fields[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open %s with %s: %w", path, viewer, err)
	}
	return nil
}

func pagerCommand() (string, []string) {
	if fields := strings.Fields(os.Getenv("PAGER")); len(fields) > 0 {
		return fields[0], fields[1:]
	}
	return "less", []string{"-R"}
}

// WriteOrPage writes text to w, or pages it when usePager is set.
func WriteOrPage(ctx context.Context, w io.Writer, text string, usePager bool) error {
	if usePager {
		return Page(ctx, text)
	}
	_, err := io.WriteString(w, text)
	return err
}
