// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/retroenv/nesgoemu/internal/options"
	"github.com/retroenv/nesgoemu/internal/ppu"
	"github.com/retroenv/nesgoemu/internal/scheduler"
)

// ParseFlags parses command line flags and returns the program options
func ParseFlags() (options.Program, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	var opts options.Program
	readOptionFlags(flags, &opts)

	err := flags.Parse(os.Args[1:])
	args := flags.Args()
	if err != nil || (len(args) == 0 && opts.Input == "") {
		return opts, &UsageError{flags: flags}
	}

	if err := validateArgs(args); err != nil {
		return opts, err
	}

	if err := normalizeOptions(&opts); err != nil {
		return opts, err
	}

	if len(args) > 0 {
		opts.Input = args[0]
	}
	return opts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: nesgoemu [options] <ROM file to run>\n\n")
	if e.flags != nil {
		e.flags.PrintDefaults()
	}
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after ROM file, please pass the ROM file as last argument", arg),
			}
		}
	}
	return nil
}

// normalizeOptions validates option combinations and converts a frame count
// into master cycles.
func normalizeOptions(opts *options.Program) error {
	if opts.Frames == 0 {
		return nil
	}
	if opts.Cycles != 0 {
		return fmt.Errorf("options -cycles and -frames can not be combined")
	}

	opts.Cycles = FramesToCycles(opts.Frames)
	return nil
}

// FramesToCycles returns the number of master cycles that cover the given
// number of complete video frames.
func FramesToCycles(frames uint64) uint64 {
	dots := frames * ppu.DotsPerFrame
	return (dots + scheduler.VideoDotsPerCPUCycle - 1) / scheduler.VideoDotsPerCPUCycle
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Input, "i", "", "name of the input ROM file")
	flags.Uint64Var(&opts.Cycles, "cycles", 0, "number of master cycles to run, runs until interrupted if 0")
	flags.Uint64Var(&opts.Frames, "frames", 0, "number of video frames to run, can not be combined with -cycles")
	flags.BoolVar(&opts.Binary, "binary", false, "read input file as raw PRG binary file without any header")
	flags.BoolVar(&opts.Trace, "trace", false, "log every executed instruction with the CPU state")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
	flags.BoolVar(&opts.NoColor, "nocolor", false, "print the final state report without colors")
}
