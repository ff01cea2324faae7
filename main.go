// Package main implements the main entry point for a cycle accurate NES emulator
package main

import (
	"errors"
	"os"

	"github.com/retroenv/nesgoemu/internal/cli"
	"github.com/retroenv/nesgoemu/internal/config"
	"github.com/retroenv/nesgoemu/internal/runner"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx := app.Context()

	opts, err := cli.ParseFlags()
	if err != nil {
		logger := config.CreateLogger(opts)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			runner.PrintBanner(logger, opts, version, commit, date)
			usageErr.ShowUsage()
		} else {
			logger.Fatal(err.Error())
		}
		os.Exit(1)
	}

	logger := config.CreateLogger(opts)
	runner.PrintBanner(logger, opts, version, commit, date)

	if err := runner.RunFile(ctx, logger, opts, os.Stdout); err != nil {
		logger.Error("Emulation failed", log.Err(err))
		os.Exit(1)
	}
}
