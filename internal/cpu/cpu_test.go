package cpu

import (
	"errors"
	"fmt"
	"testing"

	"github.com/retroenv/nesgoemu/internal/register"
	"github.com/retroenv/retrogolib/assert"
)

var errBusFault = errors.New("bus fault")

// testBus is a flat 64K memory that can fail on a single address.
type testBus struct {
	memory  [0x10000]uint8
	faultAt int
}

func (b *testBus) Read(address uint16) (uint8, error) {
	if int(address) == b.faultAt {
		return 0, errBusFault
	}
	return b.memory[address], nil
}

func (b *testBus) Write(address uint16, value uint8) error {
	if int(address) == b.faultAt {
		return errBusFault
	}
	b.memory[address] = value
	return nil
}

func setup(t *testing.T, code ...uint8) (*CPU, *testBus, *register.Registers) {
	t.Helper()

	bus := &testBus{faultAt: -1}
	copy(bus.memory[0x8000:], code)
	regs := register.New()
	regs.PC = 0x8000
	return New(bus, regs), bus, regs
}

// runInstruction steps the CPU until the next instruction boundary and
// returns the number of cycles taken.
func runInstruction(t *testing.T, c *CPU) int {
	t.Helper()

	for cycles := 1; cycles <= 8; cycles++ {
		assert.NoError(t, c.Step())
		if c.AtBoundary() {
			return cycles
		}
	}
	t.Fatal("instruction did not finish within 8 cycles")
	return 0
}

func TestLoadImmediate(t *testing.T) {
	for _, value := range []uint8{0x00, 0x0B, 0x7F, 0x80, 0xFF} {
		t.Run(fmt.Sprintf("%02X", value), func(t *testing.T) {
			c, _, regs := setup(t, 0xA9, value)

			assert.NoError(t, c.Step())
			assert.False(t, c.AtBoundary())
			assert.NoError(t, c.Step())
			assert.True(t, c.AtBoundary())

			assert.Equal(t, value, regs.A)
			assert.Equal(t, uint16(0x8002), regs.PC)
			assert.Equal(t, uint64(2), c.Cycles())
			assert.Equal(t, value == 0, regs.Flag(register.Zero))
			assert.Equal(t, value >= 0x80, regs.Flag(register.Negative))
		})
	}
}

func TestAddWithCarry(t *testing.T) {
	c, _, regs := setup(t, 0xA9, 0xFF, 0x69, 0x02)

	assert.Equal(t, 2, runInstruction(t, c))
	assert.Equal(t, 2, runInstruction(t, c))

	assert.Equal(t, uint8(0x01), regs.A)
	assert.True(t, regs.Flag(register.Carry))
	assert.False(t, regs.Flag(register.Overflow))
	assert.False(t, regs.Flag(register.Zero))
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		name     string
		code     []uint8
		a        uint8
		carry    bool
		overflow bool
	}{
		{name: "adc overflow", code: []uint8{0xA9, 0x50, 0x69, 0x50}, a: 0xA0, overflow: true},
		{name: "adc carry in", code: []uint8{0x38, 0xA9, 0x01, 0x69, 0x01}, a: 0x03},
		{name: "sbc borrow", code: []uint8{0xA9, 0x05, 0xE9, 0x03}, a: 0x01, carry: true},
		{name: "sbc no borrow", code: []uint8{0x38, 0xA9, 0x05, 0xE9, 0x03}, a: 0x02, carry: true},
		{name: "and", code: []uint8{0xA9, 0xF0, 0x29, 0x3C}, a: 0x30},
		{name: "ora", code: []uint8{0xA9, 0xF0, 0x09, 0x0F}, a: 0xFF},
		{name: "eor", code: []uint8{0xA9, 0xFF, 0x49, 0x0F}, a: 0xF0},
		{name: "asl", code: []uint8{0xA9, 0x81, 0x0A}, a: 0x02, carry: true},
		{name: "lsr", code: []uint8{0xA9, 0x03, 0x4A}, a: 0x01, carry: true},
		{name: "rol", code: []uint8{0x38, 0xA9, 0x80, 0x2A}, a: 0x01, carry: true},
		{name: "ror", code: []uint8{0x38, 0xA9, 0x02, 0x6A}, a: 0x81},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, regs := setup(t, tt.code...)
			for regs.PC < 0x8000+uint16(len(tt.code)) {
				runInstruction(t, c)
			}

			assert.Equal(t, tt.a, regs.A)
			assert.Equal(t, tt.carry, regs.Flag(register.Carry))
			assert.Equal(t, tt.overflow, regs.Flag(register.Overflow))
		})
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		value    uint8
		carry    bool
		zero     bool
		negative bool
	}{
		{value: 0x10, carry: true, zero: true},
		{value: 0x01, carry: true},
		{value: 0x20, negative: true},
	}

	for _, tt := range tests {
		c, _, regs := setup(t, 0xA0, 0x10, 0xC0, tt.value)
		runInstruction(t, c)
		runInstruction(t, c)

		assert.Equal(t, tt.carry, regs.Flag(register.Carry))
		assert.Equal(t, tt.zero, regs.Flag(register.Zero))
		assert.Equal(t, tt.negative, regs.Flag(register.Negative))
	}
}

func TestJumpAbsolute(t *testing.T) {
	c, _, regs := setup(t, 0x4C, 0x34, 0x12)

	for range 2 {
		assert.NoError(t, c.Step())
		assert.False(t, c.AtBoundary())
	}
	assert.NoError(t, c.Step())
	assert.True(t, c.AtBoundary())
	assert.Equal(t, uint16(0x1234), regs.PC)
}

func TestStoreAndLoadZeroPage(t *testing.T) {
	c, bus, regs := setup(t,
		0xA2, 0x42, // ldx #$42
		0x86, 0x10, // stx $10
		0xA5, 0x10, // lda $10
	)

	assert.Equal(t, 2, runInstruction(t, c))
	assert.Equal(t, 3, runInstruction(t, c))
	assert.Equal(t, uint8(0x42), bus.memory[0x10])
	assert.Equal(t, 3, runInstruction(t, c))
	assert.Equal(t, uint8(0x42), regs.A)
}

func TestIndexedAddressing(t *testing.T) {
	t.Run("zero page index wraps", func(t *testing.T) {
		c, bus, regs := setup(t, 0xA2, 0x02, 0xB5, 0xFF)
		bus.memory[0x0001] = 0x99

		runInstruction(t, c)
		assert.Equal(t, 4, runInstruction(t, c))
		assert.Equal(t, uint8(0x99), regs.A)
	})

	t.Run("absolute index same page", func(t *testing.T) {
		c, bus, regs := setup(t, 0xA0, 0x01, 0xB9, 0x00, 0x02)
		bus.memory[0x0201] = 0x55

		runInstruction(t, c)
		assert.Equal(t, 4, runInstruction(t, c))
		assert.Equal(t, uint8(0x55), regs.A)
	})

	t.Run("absolute index crosses page", func(t *testing.T) {
		c, bus, regs := setup(t, 0xA2, 0x01, 0xBD, 0xFF, 0x02)
		bus.memory[0x0300] = 0x66

		runInstruction(t, c)
		assert.Equal(t, 5, runInstruction(t, c))
		assert.Equal(t, uint8(0x66), regs.A)
	})

	t.Run("absolute indexed store", func(t *testing.T) {
		c, bus, _ := setup(t, 0xA9, 0x77, 0xA2, 0x03, 0x9D, 0x00, 0x02)

		runInstruction(t, c)
		runInstruction(t, c)
		assert.Equal(t, 5, runInstruction(t, c))
		assert.Equal(t, uint8(0x77), bus.memory[0x0203])
	})
}

func TestReadModifyWrite(t *testing.T) {
	c, bus, regs := setup(t, 0xE6, 0x10, 0xCE, 0x00, 0x02)
	bus.memory[0x0010] = 0xFF
	bus.memory[0x0200] = 0x01

	assert.Equal(t, 5, runInstruction(t, c))
	assert.Equal(t, uint8(0x00), bus.memory[0x0010])
	assert.True(t, regs.Flag(register.Zero))

	assert.Equal(t, 6, runInstruction(t, c))
	assert.Equal(t, uint8(0x00), bus.memory[0x0200])
}

func TestBranch(t *testing.T) {
	tests := []struct {
		name   string
		origin uint16
		offset uint8
		zero   bool
		cycles int
		pc     uint16
	}{
		{name: "not taken", origin: 0x8000, offset: 0x05, zero: true, cycles: 2, pc: 0x8002},
		{name: "taken same page", origin: 0x8000, offset: 0x05, cycles: 3, pc: 0x8007},
		{name: "taken backwards", origin: 0x8010, offset: 0xFC, cycles: 3, pc: 0x800E},
		{name: "taken other page", origin: 0x80F0, offset: 0x20, cycles: 4, pc: 0x8112},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, bus, regs := setup(t)
			bus.memory[tt.origin] = 0xD0 // bne
			bus.memory[tt.origin+1] = tt.offset
			regs.PC = tt.origin
			regs.SetFlag(register.Zero, tt.zero)

			assert.Equal(t, tt.cycles, runInstruction(t, c))
			assert.Equal(t, tt.pc, regs.PC)
		})
	}
}

func TestSubroutine(t *testing.T) {
	c, bus, regs := setup(t, 0x20, 0x00, 0x90)
	bus.memory[0x9000] = 0x60 // rts

	assert.Equal(t, 6, runInstruction(t, c))
	assert.Equal(t, uint16(0x9000), regs.PC)
	assert.Equal(t, uint8(0xFB), regs.SP)
	assert.Equal(t, uint8(0x80), bus.memory[0x01FD])
	assert.Equal(t, uint8(0x02), bus.memory[0x01FC])

	assert.Equal(t, 6, runInstruction(t, c))
	assert.Equal(t, uint16(0x8003), regs.PC)
	assert.Equal(t, register.InitialStackPointer, regs.SP)
}

func TestStack(t *testing.T) {
	c, bus, regs := setup(t,
		0xA9, 0x80, // lda #$80
		0x48,       // pha
		0xA9, 0x00, // lda #$00
		0x68,       // pla
		0x08,       // php
	)

	runInstruction(t, c)
	assert.Equal(t, 3, runInstruction(t, c))
	assert.Equal(t, uint8(0x80), bus.memory[0x01FD])
	runInstruction(t, c)
	assert.True(t, regs.Flag(register.Zero))

	assert.Equal(t, 4, runInstruction(t, c))
	assert.Equal(t, uint8(0x80), regs.A)
	assert.True(t, regs.Flag(register.Negative))

	runInstruction(t, c)
	assert.Equal(t, regs.P|register.Break, bus.memory[0x01FD])
}

func TestInterruptSequence(t *testing.T) {
	c, bus, regs := setup(t)
	bus.memory[0xFFFA] = 0x00
	bus.memory[0xFFFB] = 0x90

	var completed []Instruction
	c.OnInstruction(func(ins Instruction) {
		completed = append(completed, ins)
	})

	regs.RaiseInterrupt()
	for range 6 {
		assert.NoError(t, c.Step())
		assert.False(t, c.AtBoundary())
	}
	assert.NoError(t, c.Step())
	assert.True(t, c.AtBoundary())

	assert.Equal(t, uint16(0x9000), regs.PC)
	assert.Equal(t, uint8(0xFA), regs.SP)
	assert.Equal(t, uint8(0x80), bus.memory[0x01FD])
	assert.Equal(t, uint8(0x00), bus.memory[0x01FC])
	assert.Equal(t, register.InitialStatus&^register.Break|register.Unused, bus.memory[0x01FB])
	assert.True(t, regs.Flag(register.InterruptDisable))
	assert.False(t, regs.InterruptPending())

	assert.Equal(t, uint64(1), c.Interrupts())
	assert.Equal(t, uint64(0), c.Instructions())
	assert.Len(t, completed, 1)
	assert.True(t, completed[0].Interrupt)
	assert.Equal(t, 7, completed[0].Cycles)
	assert.Equal(t, uint16(0x8000), completed[0].Address)
}

func TestInterruptWaitsForBoundary(t *testing.T) {
	c, bus, regs := setup(t, 0xAD, 0x00, 0x02) // lda $0200
	bus.memory[0x0200] = 0x42
	bus.memory[0xFFFA] = 0x00
	bus.memory[0xFFFB] = 0x90

	assert.NoError(t, c.Step())
	regs.RaiseInterrupt()
	for range 3 {
		assert.NoError(t, c.Step())
	}

	assert.True(t, c.AtBoundary())
	assert.Equal(t, uint8(0x42), regs.A)
	assert.True(t, regs.InterruptPending())

	assert.NoError(t, c.Step())
	assert.False(t, regs.InterruptPending())
	assert.Equal(t, 6, runInstruction(t, c))
	assert.Equal(t, uint16(0x9000), regs.PC)
	assert.Equal(t, uint8(0x80), bus.memory[0x01FD])
	assert.Equal(t, uint8(0x03), bus.memory[0x01FC])
}

func TestReturnFromInterrupt(t *testing.T) {
	c, bus, regs := setup(t)
	bus.memory[0xFFFA] = 0x00
	bus.memory[0xFFFB] = 0x90
	bus.memory[0x9000] = 0x40 // rti

	regs.RaiseInterrupt()
	assert.Equal(t, 7, runInstruction(t, c))
	assert.Equal(t, 6, runInstruction(t, c))

	assert.Equal(t, uint16(0x8000), regs.PC)
	assert.Equal(t, register.InitialStackPointer, regs.SP)
	assert.Equal(t, register.InitialStatus&^register.Break, regs.P)
}

func TestBreak(t *testing.T) {
	c, bus, regs := setup(t, 0x00, 0xFF)
	bus.memory[0xFFFE] = 0x00
	bus.memory[0xFFFF] = 0xA0

	assert.Equal(t, 7, runInstruction(t, c))
	assert.Equal(t, uint16(0xA000), regs.PC)
	assert.Equal(t, uint8(0x80), bus.memory[0x01FD])
	assert.Equal(t, uint8(0x02), bus.memory[0x01FC])
	assert.True(t, bus.memory[0x01FB]&register.Break != 0)
}

func TestUnimplementedOpcode(t *testing.T) {
	c, _, _ := setup(t, 0x02)

	err := c.Step()
	var unimplemented *UnimplementedOpcodeError
	assert.True(t, errors.As(err, &unimplemented))
	assert.Equal(t, uint8(0x02), unimplemented.Opcode)
	assert.Equal(t, uint16(0x8000), unimplemented.Address)
	assert.ErrorContains(t, err, "unimplemented opcode $02 at $8000")
}

func TestBusErrorIsWrapped(t *testing.T) {
	c, bus, _ := setup(t, 0xAD, 0x00, 0x02)
	bus.faultAt = 0x0200

	for range 3 {
		assert.NoError(t, c.Step())
	}
	err := c.Step()
	assert.True(t, errors.Is(err, errBusFault))
	assert.ErrorContains(t, err, "executing lda at $8000")
}

func TestCycleCount(t *testing.T) {
	tests := []struct {
		opcode uint8
		cycles int
	}{
		{opcode: 0xA9, cycles: 2}, // lda #
		{opcode: 0xA5, cycles: 3}, // lda zp
		{opcode: 0xBD, cycles: 4}, // lda abs,x
		{opcode: 0x9D, cycles: 5}, // sta abs,x
		{opcode: 0xFE, cycles: 7}, // inc abs,x
		{opcode: 0x0A, cycles: 2}, // asl a
		{opcode: 0x4C, cycles: 3}, // jmp
		{opcode: 0x20, cycles: 6}, // jsr
		{opcode: 0x60, cycles: 6}, // rts
		{opcode: 0x40, cycles: 6}, // rti
		{opcode: 0x00, cycles: 7}, // brk
		{opcode: 0x48, cycles: 3}, // pha
		{opcode: 0x68, cycles: 4}, // pla
		{opcode: 0xD0, cycles: 2}, // bne
		{opcode: 0x02, cycles: 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.cycles, CycleCount(tt.opcode), fmt.Sprintf("opcode $%02X", tt.opcode))
		assert.Equal(t, tt.cycles != 0, Implemented(tt.opcode))
	}
}
