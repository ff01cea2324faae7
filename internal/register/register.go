// Package register contains the CPU register file that is shared between the
// CPU and the video clock.
package register

import "fmt"

// Status register flag bits.
const (
	Carry            uint8 = 1 << 0
	Zero             uint8 = 1 << 1
	InterruptDisable uint8 = 1 << 2
	Decimal          uint8 = 1 << 3
	Break            uint8 = 1 << 4 // only exists in copies of P pushed to the stack
	Unused           uint8 = 1 << 5
	Overflow         uint8 = 1 << 6
	Negative         uint8 = 1 << 7
)

// Power-up state, see http://wiki.nesdev.com/w/index.php/CPU_power_up_state
const (
	InitialStackPointer uint8 = 0xFD
	InitialStatus       uint8 = 0x34
)

// StackPage is the high byte of all stack addresses.
const StackPage = 0x0100

// Registers is the mutable CPU state. Every field wraps on overflow.
type Registers struct {
	PC uint16 // program counter
	A  uint8  // accumulator
	X  uint8  // X index register
	Y  uint8  // Y index register
	SP uint8  // stack pointer
	P  uint8  // processor status flags

	interrupt bool
}

// New returns the register file in its power-up state. The program counter
// is set by the owner after reading the reset vector.
func New() *Registers {
	return &Registers{
		SP: InitialStackPointer,
		P:  InitialStatus,
	}
}

// RaiseInterrupt marks an interrupt as pending. It is acknowledged by the
// CPU at the next instruction boundary.
func (r *Registers) RaiseInterrupt() {
	r.interrupt = true
}

// ClearInterrupt removes a pending interrupt.
func (r *Registers) ClearInterrupt() {
	r.interrupt = false
}

// InterruptPending returns whether an interrupt is waiting to be acknowledged.
func (r *Registers) InterruptPending() bool {
	return r.interrupt
}

// Flag returns whether all bits of the given status flag are set.
func (r *Registers) Flag(flag uint8) bool {
	return r.P&flag == flag
}

// SetFlag sets or clears the given status flag.
func (r *Registers) SetFlag(flag uint8, set bool) {
	if set {
		r.P |= flag
	} else {
		r.P &^= flag
	}
}

// SetZeroNegative updates the zero and negative flags from a result value.
func (r *Registers) SetZeroNegative(value uint8) {
	r.SetFlag(Zero, value == 0)
	r.SetFlag(Negative, value&0x80 != 0)
}

// StackAddress returns the memory address the stack pointer points to.
func (r *Registers) StackAddress() uint16 {
	return StackPage | uint16(r.SP)
}

func (r *Registers) String() string {
	return fmt.Sprintf("PC=%04X A=%02X X=%02X Y=%02X SP=%02X P=%02X [%s]",
		r.PC, r.A, r.X, r.Y, r.SP, r.P, r.flagString())
}

func (r *Registers) flagString() string {
	const names = "NV-BDIZC"
	b := []byte(names)
	for i := range b {
		if r.P&(0x80>>i) == 0 {
			b[i] = '.'
		}
	}
	return string(b)
}
