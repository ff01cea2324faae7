// Package ppu implements the video clock of the NES picture processing unit.
// It produces no pixels, the only visible effect is the vertical blank
// interrupt that it raises once per frame.
package ppu

// Frame timing of the NTSC PPU.
const (
	DotsPerScanline   = 341
	ScanlinesPerFrame = 262
	DotsPerFrame      = DotsPerScanline * ScanlinesPerFrame
)

// interruptDot is the dot of scanline 0 at which the interrupt is raised.
const interruptDot = 1

// InterruptLine receives the interrupts raised by the video clock.
type InterruptLine interface {
	RaiseInterrupt()
}

// PPU is the video clock state machine, advanced one dot per step.
type PPU struct {
	line InterruptLine

	dot      int
	scanline int
	frame    uint64

	interrupts uint64
}

// New returns a video clock positioned at the first dot of frame 0.
func New(line InterruptLine) *PPU {
	return &PPU{
		line: line,
	}
}

// Step handles the current dot and advances to the next one.
func (p *PPU) Step() error {
	if p.scanline == 0 && p.dot == interruptDot {
		p.line.RaiseInterrupt()
		p.interrupts++
	}

	p.dot++
	if p.dot < DotsPerScanline {
		return nil
	}
	p.dot = 0
	p.scanline++
	if p.scanline < ScanlinesPerFrame {
		return nil
	}
	p.scanline = 0
	p.frame++
	return nil
}

// Dot returns the dot within the current scanline that the next step handles.
func (p *PPU) Dot() int {
	return p.dot
}

// Scanline returns the current scanline within the frame.
func (p *PPU) Scanline() int {
	return p.scanline
}

// Frame returns the number of completed frames.
func (p *PPU) Frame() uint64 {
	return p.frame
}

// Interrupts returns the number of raised interrupts.
func (p *PPU) Interrupts() uint64 {
	return p.interrupts
}
