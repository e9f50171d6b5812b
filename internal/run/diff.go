package run

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/chojs23/docmerge/internal/cli"
	"github.com/chojs23/docmerge/internal/engine"
	"github.com/chojs23/docmerge/internal/gitutil"
	"github.com/chojs23/docmerge/internal/mdhtml"
	"github.com/chojs23/docmerge/internal/render"
	"github.com/chojs23/docmerge/internal/tui"
)

func runDiff(ctx context.Context, opts cli.Options) error {
	base, err := gitutil.Load(ctx, opts.Base, opts.UseGit)
	if err != nil {
		return fmt.Errorf("load base: %w", err)
	}
	head, err := gitutil.Load(ctx, opts.Head, opts.UseGit)
	if err != nil {
		return fmt.Errorf("load head: %w", err)
	}

	if opts.HTML {
		if base, err = mdhtml.Render(base); err != nil {
			return fmt.Errorf("render base: %w", err)
		}
		if head, err = mdhtml.Render(head); err != nil {
			return fmt.Errorf("render head: %w", err)
		}
	}

	ops, err := engine.DiffTexts(base, head, engine.Limits{MaxLines: opts.Config.MaxLines})
	if err != nil {
		return err
	}

	if opts.Interactive {
		return tui.ShowDiff(ctx, tui.DiffView{OldName: opts.Base, NewName: opts.Head, Ops: ops})
	}

	var text string
	if opts.Format == "json" {
		data, err := render.JSON(ops)
		if err != nil {
			return fmt.Errorf("encode diff: %w", err)
		}
		text = string(data) + "\n"
	} else {
		text = render.Unified(ops, render.Options{
			Color:       useColor(opts.Config.Color),
			LineNumbers: !opts.NoNumbers,
		})
	}
	return engine.WriteOrPage(ctx, os.Stdout, text, opts.Pager)
}

// useColor decides whether diff text is colorized. "always" also forces the
// lipgloss profile, which otherwise drops colors when stdout is not a terminal.
func useColor(mode string) bool {
	switch mode {
	case "always":
		lipgloss.SetColorProfile(termenv.ANSI256)
		return true
	case "never":
		return false
	}
	return os.Getenv("NO_COLOR") == "" && isTTY(os.Stdout)
}
