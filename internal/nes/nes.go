// Package nes assembles the bus, register file, CPU and video clock into a
// machine that runs a program ROM.
package nes

import (
	"errors"
	"fmt"

	"github.com/retroenv/nesgoemu/internal/bus"
	"github.com/retroenv/nesgoemu/internal/cpu"
	"github.com/retroenv/nesgoemu/internal/ppu"
	"github.com/retroenv/nesgoemu/internal/register"
	"github.com/retroenv/nesgoemu/internal/scheduler"
	"github.com/retroenv/retrogolib/arch/cpu/cpu6502"
	"github.com/retroenv/retrogolib/arch/system/nes/cartridge"
)

// ErrUnsupportedMapper is returned for cartridges that need bank switching.
var ErrUnsupportedMapper = errors.New("unsupported mapper")

// Option configures a machine.
type Option func(*Machine)

// WithInstructionHook sets a hook that is called after every instruction of
// every CPU created by the machine.
func WithInstructionHook(hook cpu.InstructionHook) Option {
	return func(m *Machine) {
		m.hook = hook
	}
}

// Machine owns the register file and the bus. The steppers are created by
// Scheduler and share both.
type Machine struct {
	regs *register.Registers
	bus  *bus.Bus
	hook cpu.InstructionHook

	cpu *cpu.CPU
	ppu *ppu.PPU
}

// New returns a machine in its power-up state for the given program ROM.
// The program counter is initialized from the reset vector.
func New(prg []byte, opts ...Option) (*Machine, error) {
	b, err := bus.New(prg)
	if err != nil {
		return nil, fmt.Errorf("creating bus: %w", err)
	}

	m := &Machine{
		regs: register.New(),
		bus:  b,
	}
	for _, opt := range opts {
		opt(m)
	}

	reset, err := b.Read16(cpu6502.ResetAddress)
	if err != nil {
		return nil, fmt.Errorf("reading reset vector: %w", err)
	}
	m.regs.PC = reset

	return m, nil
}

// NewFromCartridge returns a machine for a parsed cartridge. Only cartridges
// without a mapper are supported.
func NewFromCartridge(cart *cartridge.Cartridge, opts ...Option) (*Machine, error) {
	if cart.Mapper != 0 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedMapper, cart.Mapper)
	}
	return New(cart.PRG, opts...)
}

// Scheduler returns a scheduler with a new CPU and video clock that continue
// from the current register and memory state.
func (m *Machine) Scheduler() *scheduler.Scheduler {
	m.cpu = cpu.New(m.bus, m.regs)
	if m.hook != nil {
		m.cpu.OnInstruction(m.hook)
	}
	m.ppu = ppu.New(m.regs)
	return scheduler.New(m.cpu, m.ppu)
}

// Registers returns the register file of the machine.
func (m *Machine) Registers() *register.Registers {
	return m.regs
}

// Bus returns the memory bus of the machine.
func (m *Machine) Bus() *bus.Bus {
	return m.bus
}

// CPU returns the CPU of the last created scheduler, nil before the first
// call of Scheduler.
func (m *Machine) CPU() *cpu.CPU {
	return m.cpu
}

// PPU returns the video clock of the last created scheduler.
func (m *Machine) PPU() *ppu.PPU {
	return m.ppu
}
