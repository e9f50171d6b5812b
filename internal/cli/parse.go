package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chojs23/docmerge/internal/config"
	"github.com/chojs23/docmerge/internal/markers"
)

// ErrHelp is returned when help or version output was printed and there is
// nothing left to run.
var ErrHelp = errors.New("help requested")

type parser struct {
	opts       Options
	configPath string
	take       string
	parsed     bool
}

// Parse parses args into Options. Help and version text are written to out.
func Parse(args []string, version string, out io.Writer) (Options, error) {
	p := &parser{}
	root := p.rootCommand(version)
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(io.Discard)

	if err := root.Execute(); err != nil {
		usage := root.UsageString()
		if cmd, _, findErr := root.Find(args); findErr == nil && cmd != nil {
			usage = cmd.UsageString()
		}
		return Options{}, fmt.Errorf("%w\n\n%s", err, strings.TrimSpace(usage))
	}
	if !p.parsed {
		return Options{}, ErrHelp
	}
	return p.opts, nil
}

func (p *parser) rootCommand(version string) *cobra.Command {
	def := config.Default()

	root := &cobra.Command{
		Use:           "docmerge",
		Short:         "Line diff and conflict-marked merge for text documents",
		Long:          "docmerge compares two revisions of a document line by line and builds a merge document with conflict blocks that can be resolved interactively or in bulk.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate("docmerge {{.Version}}\n")

	pf := root.PersistentFlags()
	pf.StringVar(&p.configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/docmerge/config.yaml)")
	pf.String("log-level", def.LogLevel, "Log level: debug|info|warn|error")
	pf.String("log-file", "", "Write JSON logs to this file instead of stderr")
	pf.Int("max-lines", def.MaxLines, "Reject inputs with more lines than this (0 disables)")
	pf.BoolVarP(&p.opts.Verbose, "verbose", "v", false, "Verbose logging (same as --log-level debug)")

	root.AddCommand(
		p.diffCommand(def),
		p.mergeCommand(def),
		p.checkCommand(),
		p.applyCommand(def),
		p.resolveCommand(def),
		p.statCommand(def),
	)
	return root
}

func (p *parser) diffCommand(def config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff OLD NEW",
		Short: "Show a line diff between two revisions",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p.opts.Base, p.opts.Head = args[0], args[1]
			if p.opts.Base == "-" && p.opts.Head == "-" {
				return errors.New("only one input can be read from stdin")
			}
			switch p.opts.Format {
			case "text", "json":
			default:
				return fmt.Errorf("invalid --format %q (expected text|json)", p.opts.Format)
			}
			if p.opts.Interactive && p.opts.Format == "json" {
				return errors.New("--interactive cannot be combined with --format json")
			}
			return p.finish(cmd, CommandDiff)
		},
	}
	f := cmd.Flags()
	f.BoolVar(&p.opts.UseGit, "git", false, "Treat REV:PATH arguments as git revisions")
	f.BoolVar(&p.opts.HTML, "html", false, "Render Markdown to HTML before diffing")
	f.StringVar(&p.opts.Format, "format", "text", "Output format: text|json")
	f.String("color", def.Color, "Colorize text output: auto|always|never")
	f.BoolVar(&p.opts.Pager, "pager", false, "Show output through $PAGER")
	f.BoolVarP(&p.opts.Interactive, "interactive", "i", false, "Open the side-by-side viewer")
	f.BoolVar(&p.opts.NoNumbers, "no-numbers", false, "Omit line numbers from text output")
	return cmd
}

func (p *parser) mergeCommand(def config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge BASE HEAD",
		Short: "Build a merge document with conflict blocks",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p.opts.Base, p.opts.Head = args[0], args[1]
			if p.opts.Base == "-" && p.opts.Head == "-" {
				return errors.New("only one input can be read from stdin")
			}
			return p.finish(cmd, CommandMerge)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&p.opts.Output, "output", "o", "", "Write the merge document here instead of stdout")
	f.String("head-label", def.HeadLabel, "Label after <<<<<<<")
	f.String("base-label", def.BaseLabel, "Label after >>>>>>>")
	f.BoolVar(&p.opts.UseGit, "git", false, "Treat REV:PATH arguments as git revisions")
	f.Bool("backup", def.Backup, "Keep the previous output as OUT.docmerge.bak")
	f.BoolVar(&p.opts.Pager, "pager", false, "Show the merge document through $PAGER")
	return cmd
}

func (p *parser) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check MERGED",
		Short: "Exit 0 if MERGED has no conflict blocks, 1 if it does",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p.opts.Merged = args[0]
			return p.finish(cmd, CommandCheck)
		},
	}
}

func (p *parser) applyCommand(def config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply MERGED",
		Short: "Resolve every conflict block in MERGED the same way",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p.opts.Merged = args[0]
			take, ok := markers.ParseResolution(strings.ToLower(strings.TrimSpace(p.take)))
			if !ok {
				return fmt.Errorf("invalid --take %q (expected head|base|both|none)", p.take)
			}
			p.opts.Take = take
			return p.finish(cmd, CommandApply)
		},
	}
	f := cmd.Flags()
	f.StringVar(&p.take, "take", "", "Resolution for every block: head|base|both|none")
	f.Bool("backup", def.Backup, "Keep the previous content as MERGED.docmerge.bak")
	_ = cmd.MarkFlagRequired("take")
	return cmd
}

func (p *parser) resolveCommand(def config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve [MERGED]",
		Short: "Resolve conflict blocks interactively",
		Long:  "Open the three-pane resolver for MERGED. Without an argument, documents with conflict blocks under the current directory are listed for selection.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				p.opts.Merged = args[0]
			}
			return p.finish(cmd, CommandResolve)
		},
	}
	cmd.Flags().Bool("backup", def.Backup, "Keep the previous content as MERGED.docmerge.bak on write")
	return cmd
}

func (p *parser) statCommand(def config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stat BASE_DIR HEAD_DIR",
		Short: "Summarize line changes between two document trees",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p.opts.Base, p.opts.Head = args[0], args[1]
			switch p.opts.Format {
			case "text", "json":
			default:
				return fmt.Errorf("invalid --format %q (expected text|json)", p.opts.Format)
			}
			return p.finish(cmd, CommandStat)
		},
	}
	f := cmd.Flags()
	f.Int("workers", def.Workers, "Files compared concurrently")
	f.StringVar(&p.opts.Format, "format", "text", "Output format: text|json")
	return cmd
}

// finish resolves the layered configuration for cmd and records the command.
func (p *parser) finish(cmd *cobra.Command, command Command) error {
	v, err := config.New(p.configPath)
	if err != nil {
		return err
	}
	if err := config.BindFlags(v, cmd.Flags()); err != nil {
		return err
	}
	if p.opts.Verbose && !cmd.Flags().Changed("log-level") {
		v.Set("log_level", "debug")
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	p.opts.Config = cfg
	p.opts.Command = command
	p.parsed = true
	return nil
}
