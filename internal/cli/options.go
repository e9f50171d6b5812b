package cli

import (
	"github.com/chojs23/docmerge/internal/config"
	"github.com/chojs23/docmerge/internal/markers"
)

// Command names the subcommand selected on the command line.
type Command string

const (
	CommandDiff    Command = "diff"
	CommandMerge   Command = "merge"
	CommandCheck   Command = "check"
	CommandApply   Command = "apply"
	CommandResolve Command = "resolve"
	CommandStat    Command = "stat"
)

// Options is the fully-parsed configuration for a single invocation.
type Options struct {
	Command Command
	Config  config.Config

	// Base and Head are the two inputs of diff, merge and stat. For diff and
	// merge they are file paths, "-" for stdin, or REV:PATH with UseGit.
	Base string
	Head string

	// Merged is the conflict-marked document for check, apply and resolve.
	// Empty for resolve means "pick one from the current directory".
	Merged string
	// Output is the merge target. Empty writes to stdout.
	Output string

	UseGit      bool
	HTML        bool
	Format      string // text|json
	Pager       bool
	Interactive bool
	NoNumbers   bool

	Take markers.Resolution

	Verbose bool
}
