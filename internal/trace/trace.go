// Package trace logs executed instructions and records which addresses were
// executed.
package trace

import (
	"fmt"
	"slices"

	"github.com/retroenv/nesgoemu/internal/cpu"
	"github.com/retroenv/retrogolib/arch/cpu/cpu6502"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
)

// Reader reads the memory that instructions are disassembled from.
type Reader interface {
	Read(address uint16) (uint8, error)
}

// Tracer is a cpu.InstructionHook that tracks executed instructions.
type Tracer struct {
	logger    *log.Logger
	bus       Reader
	registers fmt.Stringer
	verbose   bool

	executed   set.Set[uint16]
	interrupts uint64
}

// New returns a tracer. If verbose is set every instruction is disassembled
// and logged at debug level together with the register state.
func New(logger *log.Logger, bus Reader, registers fmt.Stringer, verbose bool) *Tracer {
	return &Tracer{
		logger:    logger,
		bus:       bus,
		registers: registers,
		verbose:   verbose,
		executed:  set.New[uint16](),
	}
}

// Hook processes a completed instruction.
func (t *Tracer) Hook(ins cpu.Instruction) {
	if ins.Interrupt {
		t.interrupts++
		if t.verbose {
			t.logger.Debug("Interrupt",
				log.Hex("return", ins.Address),
				log.Int("cycles", ins.Cycles),
				log.Stringer("registers", t.registers))
		}
		return
	}

	t.executed.Add(ins.Address)
	if !t.verbose {
		return
	}

	code, err := Disassemble(t.bus, ins.Address)
	if err != nil {
		t.logger.Warn("Disassembling instruction failed",
			log.Hex("address", ins.Address),
			log.Err(err))
		code = ins.Name
	}

	t.logger.Debug("Instruction",
		log.Hex("address", ins.Address),
		log.String("code", code),
		log.Int("cycles", ins.Cycles),
		log.Stringer("registers", t.registers))
}

// Executed returns the sorted addresses of all executed instructions.
func (t *Tracer) Executed() []uint16 {
	addresses := make([]uint16, 0, len(t.executed))
	for address := range t.executed {
		addresses = append(addresses, address)
	}
	slices.Sort(addresses)
	return addresses
}

// Covered returns whether an instruction at the address was executed.
func (t *Tracer) Covered(address uint16) bool {
	return t.executed.Contains(address)
}

// Interrupts returns the number of traced interrupt sequences.
func (t *Tracer) Interrupts() uint64 {
	return t.interrupts
}

// Disassemble returns the instruction at the address in assembler notation.
func Disassemble(bus Reader, address uint16) (string, error) {
	opcode, err := bus.Read(address)
	if err != nil {
		return "", fmt.Errorf("reading opcode: %w", err)
	}

	op := cpu6502.Opcodes[opcode]
	if op.Instruction == nil {
		return fmt.Sprintf(".byte $%02x", opcode), nil
	}

	var operand uint16
	for i := range operandSize(op.Addressing) {
		value, err := bus.Read(address + 1 + uint16(i))
		if err != nil {
			return "", fmt.Errorf("reading operand: %w", err)
		}
		operand |= uint16(value) << (8 * i)
	}

	switch op.Addressing {
	case cpu6502.ImpliedAddressing:
		return op.Instruction.Name, nil
	case cpu6502.AccumulatorAddressing:
		return op.Instruction.Name + " a", nil
	case cpu6502.ImmediateAddressing:
		return fmt.Sprintf("%s #$%02x", op.Instruction.Name, operand), nil
	case cpu6502.ZeroPageAddressing:
		return fmt.Sprintf("%s $%02x", op.Instruction.Name, operand), nil
	case cpu6502.ZeroPageXAddressing:
		return fmt.Sprintf("%s $%02x,x", op.Instruction.Name, operand), nil
	case cpu6502.ZeroPageYAddressing:
		return fmt.Sprintf("%s $%02x,y", op.Instruction.Name, operand), nil
	case cpu6502.AbsoluteAddressing:
		return fmt.Sprintf("%s $%04x", op.Instruction.Name, operand), nil
	case cpu6502.AbsoluteXAddressing:
		return fmt.Sprintf("%s $%04x,x", op.Instruction.Name, operand), nil
	case cpu6502.AbsoluteYAddressing:
		return fmt.Sprintf("%s $%04x,y", op.Instruction.Name, operand), nil
	case cpu6502.IndirectAddressing:
		return fmt.Sprintf("%s ($%04x)", op.Instruction.Name, operand), nil
	case cpu6502.IndirectXAddressing:
		return fmt.Sprintf("%s ($%02x,x)", op.Instruction.Name, operand), nil
	case cpu6502.IndirectYAddressing:
		return fmt.Sprintf("%s ($%02x),y", op.Instruction.Name, operand), nil
	case cpu6502.RelativeAddressing:
		target := address + 2 + uint16(int8(operand))
		return fmt.Sprintf("%s $%04x", op.Instruction.Name, target), nil
	default:
		return "", fmt.Errorf("unsupported addressing mode %d", op.Addressing)
	}
}

func operandSize(addressing cpu6502.AddressingMode) int {
	switch addressing {
	case cpu6502.ImpliedAddressing, cpu6502.AccumulatorAddressing:
		return 0
	case cpu6502.AbsoluteAddressing, cpu6502.AbsoluteXAddressing, cpu6502.AbsoluteYAddressing,
		cpu6502.IndirectAddressing:
		return 2
	default:
		return 1
	}
}
