package cpu

import "github.com/retroenv/nesgoemu/internal/register"

// Loads and stores.

func lda(c *CPU, value uint8) {
	c.regs.A = value
	c.regs.SetZeroNegative(value)
}

func ldx(c *CPU, value uint8) {
	c.regs.X = value
	c.regs.SetZeroNegative(value)
}

func ldy(c *CPU, value uint8) {
	c.regs.Y = value
	c.regs.SetZeroNegative(value)
}

func sta(c *CPU) uint8 { return c.regs.A }
func stx(c *CPU) uint8 { return c.regs.X }
func sty(c *CPU) uint8 { return c.regs.Y }

// Arithmetic and logic.

// adc adds the value and the carry to the accumulator. Decimal mode is not
// supported by the NES CPU.
func adc(c *CPU, value uint8) {
	a := c.regs.A
	var carry uint16
	if c.regs.Flag(register.Carry) {
		carry = 1
	}
	sum := uint16(a) + uint16(value) + carry
	result := uint8(sum)

	c.regs.SetFlag(register.Carry, sum > 0xFF)
	c.regs.SetFlag(register.Overflow, (a^result)&(value^result)&0x80 != 0)
	c.regs.A = result
	c.regs.SetZeroNegative(result)
}

func sbc(c *CPU, value uint8) {
	adc(c, ^value)
}

func and(c *CPU, value uint8) {
	c.regs.A &= value
	c.regs.SetZeroNegative(c.regs.A)
}

func ora(c *CPU, value uint8) {
	c.regs.A |= value
	c.regs.SetZeroNegative(c.regs.A)
}

func eor(c *CPU, value uint8) {
	c.regs.A ^= value
	c.regs.SetZeroNegative(c.regs.A)
}

func compare(r *register.Registers, reg, value uint8) {
	r.SetFlag(register.Carry, reg >= value)
	r.SetZeroNegative(reg - value)
}

func cmp(c *CPU, value uint8) { compare(c.regs, c.regs.A, value) }
func cpx(c *CPU, value uint8) { compare(c.regs, c.regs.X, value) }
func cpy(c *CPU, value uint8) { compare(c.regs, c.regs.Y, value) }

func bit(c *CPU, value uint8) {
	c.regs.SetFlag(register.Zero, c.regs.A&value == 0)
	c.regs.SetFlag(register.Overflow, value&0x40 != 0)
	c.regs.SetFlag(register.Negative, value&0x80 != 0)
}

// Read-modify-write.

func inc(c *CPU, value uint8) uint8 {
	value++
	c.regs.SetZeroNegative(value)
	return value
}

func dec(c *CPU, value uint8) uint8 {
	value--
	c.regs.SetZeroNegative(value)
	return value
}

func asl(c *CPU, value uint8) uint8 {
	c.regs.SetFlag(register.Carry, value&0x80 != 0)
	value <<= 1
	c.regs.SetZeroNegative(value)
	return value
}

func lsr(c *CPU, value uint8) uint8 {
	c.regs.SetFlag(register.Carry, value&0x01 != 0)
	value >>= 1
	c.regs.SetZeroNegative(value)
	return value
}

func rol(c *CPU, value uint8) uint8 {
	carry := c.regs.P & register.Carry
	c.regs.SetFlag(register.Carry, value&0x80 != 0)
	value = value<<1 | carry
	c.regs.SetZeroNegative(value)
	return value
}

func ror(c *CPU, value uint8) uint8 {
	var carry uint8
	if c.regs.Flag(register.Carry) {
		carry = 0x80
	}
	c.regs.SetFlag(register.Carry, value&0x01 != 0)
	value = value>>1 | carry
	c.regs.SetZeroNegative(value)
	return value
}

// Implied.

func tax(c *CPU) { ldx(c, c.regs.A) }
func tay(c *CPU) { ldy(c, c.regs.A) }
func txa(c *CPU) { lda(c, c.regs.X) }
func tya(c *CPU) { lda(c, c.regs.Y) }
func tsx(c *CPU) { ldx(c, c.regs.SP) }
func txs(c *CPU) { c.regs.SP = c.regs.X }

func inx(c *CPU) { c.regs.X = inc(c, c.regs.X) }
func iny(c *CPU) { c.regs.Y = inc(c, c.regs.Y) }
func dex(c *CPU) { c.regs.X = dec(c, c.regs.X) }
func dey(c *CPU) { c.regs.Y = dec(c, c.regs.Y) }

func clc(c *CPU) { c.regs.SetFlag(register.Carry, false) }
func sec(c *CPU) { c.regs.SetFlag(register.Carry, true) }
func cli(c *CPU) { c.regs.SetFlag(register.InterruptDisable, false) }
func sei(c *CPU) { c.regs.SetFlag(register.InterruptDisable, true) }
func cld(c *CPU) { c.regs.SetFlag(register.Decimal, false) }
func sed(c *CPU) { c.regs.SetFlag(register.Decimal, true) }
func clv(c *CPU) { c.regs.SetFlag(register.Overflow, false) }

func nop(*CPU) {}

// Stack.

func pha(c *CPU) uint8 { return c.regs.A }

// php always pushes the status with the break flag set.
func php(c *CPU) uint8 { return c.regs.P | register.Break | register.Unused }

func pla(c *CPU, value uint8) { lda(c, value) }

func plp(c *CPU, value uint8) {
	c.regs.P = value&^register.Break | register.Unused
}

// Branch conditions.

func bpl(r *register.Registers) bool { return !r.Flag(register.Negative) }
func bmi(r *register.Registers) bool { return r.Flag(register.Negative) }
func bvc(r *register.Registers) bool { return !r.Flag(register.Overflow) }
func bvs(r *register.Registers) bool { return r.Flag(register.Overflow) }
func bcc(r *register.Registers) bool { return !r.Flag(register.Carry) }
func bcs(r *register.Registers) bool { return r.Flag(register.Carry) }
func bne(r *register.Registers) bool { return !r.Flag(register.Zero) }
func beq(r *register.Registers) bool { return r.Flag(register.Zero) }
