package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"

	"github.com/chojs23/docmerge/internal/cli"
	"github.com/chojs23/docmerge/internal/run"
)

var version = "dev"

func main() {
	opts, err := cli.Parse(os.Args[1:], versionString(), os.Stdout)
	if err != nil {
		if errors.Is(err, cli.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	exitCode := run.Run(ctx, opts)
	stop()
	os.Exit(exitCode)
}

func versionString() string {
	if version != "dev" {
		return version
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return version
	}
	if info.Main.Version == "" || info.Main.Version == "(devel)" {
		return version
	}
	return info.Main.Version
}
