package runner

import (
	"fmt"
	"io"

	"github.com/retroenv/nesgoemu/internal/nes"
	"github.com/retroenv/nesgoemu/internal/trace"
)

// zeroPageDumpSize is the number of RAM bytes shown in the report.
const zeroPageDumpSize = 16

// Report is the machine state at the end of an emulation run.
type Report struct {
	File string
	Err  error

	MasterCycles uint64
	CPUCycles    uint64
	Instructions uint64
	Interrupts   uint64

	Frame    uint64
	Scanline int
	Dot      int

	Registers string
	Executed  int    // number of distinct executed instruction addresses
	ZeroPage  []byte // start of RAM
}

func newReport(machine *nes.Machine, masterCycles uint64, tracer *trace.Tracer) *Report {
	c := machine.CPU()
	p := machine.PPU()
	ram := machine.Bus().RAM()

	return &Report{
		MasterCycles: masterCycles,
		CPUCycles:    c.Cycles(),
		Instructions: c.Instructions(),
		Interrupts:   c.Interrupts(),
		Frame:        p.Frame(),
		Scanline:     p.Scanline(),
		Dot:          p.Dot(),
		Registers:    machine.Registers().String(),
		Executed:     len(tracer.Executed()),
		ZeroPage:     ram[:zeroPageDumpSize],
	}
}

// Print writes the report to the writer, optionally with ANSI colors.
func (r *Report) Print(w io.Writer, color bool) {
	st := newStyles(color)

	title := "machine state"
	if r.File != "" {
		title = fmt.Sprintf("machine state of %s", r.File)
	}
	_, _ = fmt.Fprintln(w, st.title.Render(title))

	if r.Err != nil {
		_, _ = fmt.Fprintln(w, st.err.Render(r.Err.Error()))
	}

	_, _ = fmt.Fprintln(w, st.cpu.Render(r.Registers))
	_, _ = fmt.Fprintln(w, st.cpu.Render(fmt.Sprintf(
		"cycles=%d instructions=%d interrupts=%d executed=%d",
		r.CPUCycles, r.Instructions, r.Interrupts, r.Executed)))
	_, _ = fmt.Fprintln(w, st.video.Render(fmt.Sprintf(
		"master cycles=%d frame=%d scanline=%d dot=%d",
		r.MasterCycles, r.Frame, r.Scanline, r.Dot)))
	_, _ = fmt.Fprintln(w, st.mem.Render(fmt.Sprintf("$0000: % X", r.ZeroPage)))
}
