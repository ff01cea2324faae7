// Package runner handles loading a ROM file and running it on the emulated
// machine.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/retroenv/nesgoemu/internal/cpu"
	"github.com/retroenv/nesgoemu/internal/detector"
	"github.com/retroenv/nesgoemu/internal/loader"
	"github.com/retroenv/nesgoemu/internal/nes"
	"github.com/retroenv/nesgoemu/internal/options"
	"github.com/retroenv/nesgoemu/internal/trace"
	"github.com/retroenv/retrogolib/arch/system/nes/cartridge"
	"github.com/retroenv/retrogolib/log"
)

// RunFile loads the input file, runs it for the requested number of master
// cycles and prints the final machine state to out. The report is also
// printed if the emulation fails.
func RunFile(ctx context.Context, logger *log.Logger, opts options.Program, out io.Writer) error {
	opts.Binary = detector.New(logger).Detect(opts) == detector.Binary

	cart, err := loader.New().Load(opts)
	if err != nil {
		return fmt.Errorf("loading cartridge: %w", err)
	}

	if !opts.Quiet {
		logger.Info("Running NES ROM",
			log.String("file", opts.Input),
			log.Uint16("mapper", cart.Mapper),
			log.Int("prg_size", len(cart.PRG)),
		)
	}

	report, runErr := Run(ctx, logger, cart, opts)
	if report != nil {
		report.File = opts.Input
		report.Print(out, !opts.NoColor)
	}
	return runErr
}

// Run executes the program of the cartridge and returns a report of the final
// state. A cancelled context ends the emulation without an error. The report
// is nil if the machine could not be created.
func Run(ctx context.Context, logger *log.Logger, cart *cartridge.Cartridge, opts options.Program) (*Report, error) {
	var tracer *trace.Tracer
	machine, err := nes.NewFromCartridge(cart, nes.WithInstructionHook(func(ins cpu.Instruction) {
		tracer.Hook(ins)
	}))
	if err != nil {
		return nil, fmt.Errorf("creating machine: %w", err)
	}
	tracer = trace.New(logger, machine.Bus(), machine.Registers(), opts.Trace)

	logger.Debug("Reset", log.Hex("pc", machine.Registers().PC))

	s := machine.Scheduler()
	err = s.Run(ctx, opts.Cycles, nil)
	if errors.Is(err, context.Canceled) {
		logger.Info("Emulation stopped", log.Int("cycles", int(s.Cycles())))
		err = nil
	}

	report := newReport(machine, s.Cycles(), tracer)
	if err != nil {
		report.Err = err
		return report, fmt.Errorf("emulating: %w", err)
	}
	return report, nil
}

// PrintBanner prints application version information
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}

	versionString := version
	if commit != "" {
		if len(commit) > 7 {
			commit = commit[:7]
		}
		versionString += fmt.Sprintf(" (%s)", commit)
	}

	logger.Info("nesgoemu", log.String("version", versionString))

	if date != "" && !strings.Contains(date, "unknown") {
		logger.Info("Build", log.String("date", date))
	}
}
