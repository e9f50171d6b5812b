package run

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/chojs23/docmerge/internal/cli"
	"github.com/chojs23/docmerge/internal/engine"
	"github.com/chojs23/docmerge/internal/logging"
	"github.com/chojs23/docmerge/internal/tui"
)

// Run executes the parsed command and returns the process exit code:
// 0 on success, 1 when check finds conflict blocks, 2 on any error.
func Run(ctx context.Context, opts cli.Options) int {
	closeLog, err := setupLogging(opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	defer closeLog()

	logging.Debug("command start", zap.String("command", string(opts.Command)))

	switch opts.Command {
	case cli.CommandDiff:
		return exitOn(runDiff(ctx, opts))
	case cli.CommandMerge:
		return exitOn(runMerge(ctx, opts))
	case cli.CommandCheck:
		return runCheck(opts)
	case cli.CommandApply:
		return exitOn(engine.ApplyAllAndWrite(ctx, engine.ApplyOptions{
			MergedPath: opts.Merged,
			Take:       opts.Take,
			Backup:     opts.Config.Backup,
		}))
	case cli.CommandResolve:
		return runResolve(ctx, opts)
	case cli.CommandStat:
		return runStat(ctx, opts)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", opts.Command)
		return 2
	}
}

func exitOn(err error) int {
	if err != nil {
		logging.Error("command failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	return 0
}

// setupLogging installs the process logger. Interactive commands own the
// terminal, so without a log file they log nowhere.
func setupLogging(opts cli.Options) (func(), error) {
	interactive := opts.Command == cli.CommandResolve || (opts.Command == cli.CommandDiff && opts.Interactive)
	if interactive && opts.Config.LogFile == "" {
		logging.SetLogger(nil)
		return func() {}, nil
	}

	logger, err := logging.New(logging.Options{Level: opts.Config.LogLevel, File: opts.Config.LogFile})
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}
	logging.SetLogger(logger)
	return func() {
		_ = logging.Sync()
		logging.SetLogger(nil)
	}, nil
}

func runCheck(opts cli.Options) int {
	resolved, err := engine.CheckResolvedFile(opts.Merged)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if resolved {
		return 0
	}
	return 1
}

func runMerge(ctx context.Context, opts cli.Options) error {
	result, err := engine.WriteMerged(ctx, engine.MergeOptions{
		BaseRef:    opts.Base,
		HeadRef:    opts.Head,
		UseGit:     opts.UseGit,
		HeadLabel:  opts.Config.HeadLabel,
		BaseLabel:  opts.Config.BaseLabel,
		OutputPath: opts.Output,
		Backup:     opts.Config.Backup,
		Limits:     engine.Limits{MaxLines: opts.Config.MaxLines},
	})
	if err != nil {
		return err
	}
	if opts.Output == "" {
		return engine.WriteOrPage(ctx, os.Stdout, result.Text, opts.Pager)
	}
	fmt.Fprintf(os.Stderr, "Wrote %s (%d conflict blocks)\n", opts.Output, result.Blocks)
	if opts.Pager {
		return engine.OpenFile(ctx, opts.Output)
	}
	return nil
}

func runResolve(ctx context.Context, opts cli.Options) int {
	tuiOpts := tui.Options{MergedPath: opts.Merged, Backup: opts.Config.Backup}
	if opts.Merged != "" {
		if err := tui.Run(ctx, tuiOpts); err != nil && !errors.Is(err, tui.ErrBackToSelector) {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		return 0
	}

	seen := make(map[string]bool)
	for {
		path, err := selectMarkedFile(ctx, seen)
		if err != nil {
			if errors.Is(err, errNoConflicts) {
				fmt.Fprintln(os.Stdout, "No documents with conflict blocks found in the current directory.")
				return 0
			}
			if errors.Is(err, tui.ErrSelectorQuit) {
				return 0
			}
			fmt.Fprintln(os.Stderr, err)
			return 2
		}

		tuiOpts.MergedPath = path
		if err := tui.Run(ctx, tuiOpts); err != nil {
			if errors.Is(err, tui.ErrBackToSelector) {
				continue
			}
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		return 0
	}
}
