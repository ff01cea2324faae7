// Package cpu implements a cycle stepped 6502 CPU as found in the NES.
//
// The CPU does not execute whole instructions. Every call to Step performs the
// bus activity and register changes of exactly one clock cycle and then
// returns, which allows other hardware to run between the cycles of an
// instruction. Each opcode is described by a sequence of micro steps, one
// per cycle following the opcode fetch.
package cpu

import (
	"fmt"

	"github.com/retroenv/nesgoemu/internal/register"
)

// Bus is the memory interface the CPU accesses on every cycle.
type Bus interface {
	Read(address uint16) (uint8, error)
	Write(address uint16, value uint8) error
}

// Instruction describes a completed instruction or interrupt sequence.
type Instruction struct {
	Address   uint16 // address of the opcode, or of the interrupted instruction
	Opcode    uint8
	Name      string
	Interrupt bool
	Cycles    int
}

// InstructionHook is called after the last cycle of every instruction.
type InstructionHook func(ins Instruction)

// microStep performs the work of a single clock cycle.
type microStep func(c *CPU) error

// CPU is the 6502 state machine.
type CPU struct {
	bus  Bus
	regs *register.Registers

	// state of the instruction in flight. steps is nil at an instruction
	// boundary.
	current *instruction
	steps   []microStep
	next    int
	done    bool
	elapsed int
	start   uint16

	// locals that live across cycles of an instruction
	operand     uint8  // low byte of an operand or a branch offset
	address     uint16 // effective address
	base        uint16 // address before indexing
	value       uint8  // value of a read-modify-write instruction
	pageCrossed bool

	cycles       uint64
	instructions uint64
	interrupts   uint64

	hook InstructionHook
}

// New returns a CPU that starts at an instruction boundary. The registers are
// shared with the rest of the machine and are not reset.
func New(bus Bus, regs *register.Registers) *CPU {
	return &CPU{
		bus:  bus,
		regs: regs,
	}
}

// OnInstruction sets a hook that is called after every completed instruction.
func (c *CPU) OnInstruction(hook InstructionHook) {
	c.hook = hook
}

// Step advances the CPU by one clock cycle.
func (c *CPU) Step() error {
	c.cycles++
	c.elapsed++

	if c.steps == nil {
		return c.startInstruction()
	}
	return c.runStep()
}

// AtBoundary returns whether the next cycle starts a new instruction.
func (c *CPU) AtBoundary() bool {
	return c.steps == nil
}

// Cycles returns the number of elapsed CPU cycles.
func (c *CPU) Cycles() uint64 {
	return c.cycles
}

// Instructions returns the number of completed instructions, not counting
// interrupt sequences.
func (c *CPU) Instructions() uint64 {
	return c.instructions
}

// Interrupts returns the number of acknowledged interrupts.
func (c *CPU) Interrupts() uint64 {
	return c.interrupts
}

// startInstruction runs the first cycle of an instruction. A pending interrupt
// is only checked here, never in the middle of an instruction.
func (c *CPU) startInstruction() error {
	c.start = c.regs.PC
	c.done = false
	c.next = 0

	if c.regs.InterruptPending() {
		c.regs.ClearInterrupt()
		c.current = &nmiSequence
		c.steps = nmiSequence.steps
		return c.runStep()
	}

	opcode, err := c.fetch()
	if err != nil {
		return fmt.Errorf("fetching opcode: %w", err)
	}

	ins := instructionSet[opcode]
	if ins == nil {
		return &UnimplementedOpcodeError{Opcode: opcode, Address: c.start}
	}

	c.current = ins
	c.steps = ins.steps
	return nil
}

func (c *CPU) runStep() error {
	step := c.steps[c.next]
	c.next++

	if err := step(c); err != nil {
		return fmt.Errorf("executing %s at $%04X: %w", c.current.name, c.start, err)
	}

	if c.done || c.next == len(c.steps) {
		c.endInstruction()
	}
	return nil
}

// endInstruction returns the state machine to an instruction boundary.
func (c *CPU) endInstruction() {
	ins := Instruction{
		Address:   c.start,
		Opcode:    c.current.opcode,
		Name:      c.current.name,
		Interrupt: c.current.interrupt,
		Cycles:    c.elapsed,
	}

	if ins.Interrupt {
		c.interrupts++
	} else {
		c.instructions++
	}

	c.steps = nil
	c.current = nil
	c.elapsed = 0

	if c.hook != nil {
		c.hook(ins)
	}
}

// finish ends the current instruction after the running micro step, for
// instructions with a variable cycle count.
func (c *CPU) finish() {
	c.done = true
}

func (c *CPU) fetch() (uint8, error) {
	value, err := c.bus.Read(c.regs.PC)
	if err != nil {
		return 0, err
	}
	c.regs.PC++
	return value, nil
}

// dummyRead performs a read whose result the CPU discards.
func (c *CPU) dummyRead(address uint16) error {
	_, err := c.bus.Read(address)
	return err
}

func (c *CPU) push(value uint8) error {
	if err := c.bus.Write(c.regs.StackAddress(), value); err != nil {
		return err
	}
	c.regs.SP--
	return nil
}

// pull reads the stack at the current stack pointer, the pointer has to be
// incremented by the previous cycle.
func (c *CPU) pull() (uint8, error) {
	return c.bus.Read(c.regs.StackAddress())
}

func (c *CPU) String() string {
	return fmt.Sprintf("%s cycles=%d", c.regs, c.cycles)
}
