package cpu

import (
	"fmt"

	"github.com/retroenv/nesgoemu/internal/register"
	"github.com/retroenv/retrogolib/arch/cpu/cpu6502"
)

// instruction is a registered opcode with its micro steps. The steps do not
// include the opcode fetch cycle.
type instruction struct {
	opcode    uint8
	name      string
	interrupt bool
	cycles    int // minimum cycle count including the opcode fetch
	steps     []microStep
}

// instructionSet maps opcodes to their micro step sequence, nil entries are
// not implemented.
var instructionSet [256]*instruction

var nmiSequence = instruction{
	name:      "nmi",
	interrupt: true,
	cycles:    7,
	steps:     nmiSteps(cpu6502.NMIAddress),
}

// Implemented returns whether the opcode has a micro step sequence.
func Implemented(opcode uint8) bool {
	return instructionSet[opcode] != nil
}

// CycleCount returns the number of cycles of an opcode including the opcode
// fetch, not counting extra cycles for taken branches or crossed pages.
// It returns 0 for opcodes that are not implemented.
func CycleCount(opcode uint8) int {
	ins := instructionSet[opcode]
	if ins == nil {
		return 0
	}
	return ins.cycles
}

func init() {
	registerLoads()
	registerStores()
	registerArithmetic()
	registerReadModifyWrite()
	registerImplied()
	registerStack()
	registerControlFlow()
}

// lookup returns the opcode information of the m6502 opcode table, which is
// the reference for the name and addressing mode of every opcode.
func lookup(opcode uint8) cpu6502.Opcode {
	op := cpu6502.Opcodes[opcode]
	if op.Instruction == nil {
		panic(fmt.Sprintf("opcode $%02X is not defined in the opcode table", opcode))
	}
	return op
}

func add(opcode uint8, steps []microStep) *instruction {
	if instructionSet[opcode] != nil {
		panic(fmt.Sprintf("opcode $%02X registered twice", opcode))
	}
	op := lookup(opcode)
	ins := &instruction{
		opcode: opcode,
		name:   op.Instruction.Name,
		cycles: 1 + len(steps),
		steps:  steps,
	}
	instructionSet[opcode] = ins
	return ins
}

func addRead(fn readFunc, opcodes ...uint8) {
	for _, opcode := range opcodes {
		var steps []microStep
		pageCrossCycle := false

		switch mode := lookup(opcode).Addressing; mode {
		case cpu6502.ImmediateAddressing:
			steps = immediateRead(fn)
		case cpu6502.ZeroPageAddressing:
			steps = zeroPageRead(fn)
		case cpu6502.ZeroPageXAddressing:
			steps = zeroPageIndexedRead(indexX, fn)
		case cpu6502.ZeroPageYAddressing:
			steps = zeroPageIndexedRead(indexY, fn)
		case cpu6502.AbsoluteAddressing:
			steps = absoluteRead(fn)
		case cpu6502.AbsoluteXAddressing:
			steps = absoluteIndexedRead(indexX, fn)
			pageCrossCycle = true
		case cpu6502.AbsoluteYAddressing:
			steps = absoluteIndexedRead(indexY, fn)
			pageCrossCycle = true
		default:
			panic(fmt.Sprintf("unsupported read addressing mode %d of opcode $%02X", mode, opcode))
		}

		ins := add(opcode, steps)
		if pageCrossCycle {
			ins.cycles--
		}
	}
}

func addWrite(fn writeFunc, opcodes ...uint8) {
	for _, opcode := range opcodes {
		var steps []microStep

		switch mode := lookup(opcode).Addressing; mode {
		case cpu6502.ZeroPageAddressing:
			steps = zeroPageWrite(fn)
		case cpu6502.ZeroPageXAddressing:
			steps = zeroPageIndexedWrite(indexX, fn)
		case cpu6502.ZeroPageYAddressing:
			steps = zeroPageIndexedWrite(indexY, fn)
		case cpu6502.AbsoluteAddressing:
			steps = absoluteWrite(fn)
		case cpu6502.AbsoluteXAddressing:
			steps = absoluteIndexedWrite(indexX, fn)
		case cpu6502.AbsoluteYAddressing:
			steps = absoluteIndexedWrite(indexY, fn)
		default:
			panic(fmt.Sprintf("unsupported write addressing mode %d of opcode $%02X", mode, opcode))
		}

		add(opcode, steps)
	}
}

func addModify(fn modifyFunc, opcodes ...uint8) {
	for _, opcode := range opcodes {
		var steps []microStep

		switch mode := lookup(opcode).Addressing; mode {
		case cpu6502.AccumulatorAddressing, cpu6502.ImpliedAddressing:
			steps = accumulatorModify(fn)
		case cpu6502.ZeroPageAddressing:
			steps = zeroPageModify(fn)
		case cpu6502.ZeroPageXAddressing:
			steps = zeroPageIndexedModify(indexX, fn)
		case cpu6502.AbsoluteAddressing:
			steps = absoluteModify(fn)
		case cpu6502.AbsoluteXAddressing:
			steps = absoluteIndexedModify(indexX, fn)
		default:
			panic(fmt.Sprintf("unsupported read-modify-write addressing mode %d of opcode $%02X", mode, opcode))
		}

		add(opcode, steps)
	}
}

func registerLoads() {
	addRead(lda, 0xA9, 0xA5, 0xB5, 0xAD, 0xBD, 0xB9)
	addRead(ldx, 0xA2, 0xA6, 0xB6, 0xAE, 0xBE)
	addRead(ldy, 0xA0, 0xA4, 0xB4, 0xAC, 0xBC)
}

func registerStores() {
	addWrite(sta, 0x85, 0x95, 0x8D, 0x9D, 0x99)
	addWrite(stx, 0x86, 0x96, 0x8E)
	addWrite(sty, 0x84, 0x94, 0x8C)
}

func registerArithmetic() {
	addRead(adc, 0x69, 0x65, 0x75, 0x6D, 0x7D, 0x79)
	addRead(sbc, 0xE9, 0xE5, 0xF5, 0xED, 0xFD, 0xF9)
	addRead(and, 0x29, 0x25, 0x35, 0x2D, 0x3D, 0x39)
	addRead(ora, 0x09, 0x05, 0x15, 0x0D, 0x1D, 0x19)
	addRead(eor, 0x49, 0x45, 0x55, 0x4D, 0x5D, 0x59)
	addRead(cmp, 0xC9, 0xC5, 0xD5, 0xCD, 0xDD, 0xD9)
	addRead(cpx, 0xE0, 0xE4, 0xEC)
	addRead(cpy, 0xC0, 0xC4, 0xCC)
	addRead(bit, 0x24, 0x2C)
}

func registerReadModifyWrite() {
	addModify(inc, 0xE6, 0xF6, 0xEE, 0xFE)
	addModify(dec, 0xC6, 0xD6, 0xCE, 0xDE)
	addModify(asl, 0x0A, 0x06, 0x16, 0x0E, 0x1E)
	addModify(lsr, 0x4A, 0x46, 0x56, 0x4E, 0x5E)
	addModify(rol, 0x2A, 0x26, 0x36, 0x2E, 0x3E)
	addModify(ror, 0x6A, 0x66, 0x76, 0x6E, 0x7E)
}

func registerImplied() {
	implied := map[uint8]impliedFunc{
		0xAA: tax,
		0xA8: tay,
		0x8A: txa,
		0x98: tya,
		0xBA: tsx,
		0x9A: txs,
		0xE8: inx,
		0xC8: iny,
		0xCA: dex,
		0x88: dey,
		0x18: clc,
		0x38: sec,
		0x58: cli,
		0x78: sei,
		0xD8: cld,
		0xF8: sed,
		0xB8: clv,
		0xEA: nop,
	}
	for opcode, fn := range implied {
		add(opcode, impliedSteps(fn))
	}
}

func registerStack() {
	add(0x48, pushSteps(pha))
	add(0x08, pushSteps(php))
	add(0x68, pullSteps(pla))
	add(0x28, pullSteps(plp))
}

func registerControlFlow() {
	add(0x4C, jumpAbsoluteSteps())
	add(0x20, jumpSubroutineSteps())
	add(0x60, returnSubroutineSteps())
	add(0x40, returnInterruptSteps())
	add(0x00, breakSteps(cpu6502.IrqAddress))

	branches := map[uint8]func(r *register.Registers) bool{
		0x10: bpl,
		0x30: bmi,
		0x50: bvc,
		0x70: bvs,
		0x90: bcc,
		0xB0: bcs,
		0xD0: bne,
		0xF0: beq,
	}
	for opcode, taken := range branches {
		ins := add(opcode, branchSteps(taken))
		ins.cycles = 2
	}
}
