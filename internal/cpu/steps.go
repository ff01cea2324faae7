package cpu

import "github.com/retroenv/nesgoemu/internal/register"

type (
	readFunc    func(c *CPU, value uint8)
	writeFunc   func(c *CPU) uint8
	modifyFunc  func(c *CPU, value uint8) uint8
	impliedFunc func(c *CPU)
	indexFunc   func(r *register.Registers) uint8
)

func indexX(r *register.Registers) uint8 { return r.X }
func indexY(r *register.Registers) uint8 { return r.Y }

// Shared micro steps of the addressing modes.

func fetchZeroPageAddress(c *CPU) error {
	low, err := c.fetch()
	if err != nil {
		return err
	}
	c.address = uint16(low)
	return nil
}

func fetchAddressLow(c *CPU) error {
	low, err := c.fetch()
	if err != nil {
		return err
	}
	c.operand = low
	return nil
}

func fetchAddressHigh(c *CPU) error {
	high, err := c.fetch()
	if err != nil {
		return err
	}
	c.address = uint16(high)<<8 | uint16(c.operand)
	return nil
}

func dummyReadPC(c *CPU) error {
	return c.dummyRead(c.regs.PC)
}

// incrementStackPointer is the internal cycle that precedes every pull.
func incrementStackPointer(c *CPU) error {
	if err := c.dummyRead(c.regs.StackAddress()); err != nil {
		return err
	}
	c.regs.SP++
	return nil
}

// indexZeroPage reads the unindexed address and adds the index register,
// the result wraps within the zero page.
func indexZeroPage(index indexFunc) microStep {
	return func(c *CPU) error {
		if err := c.dummyRead(c.address); err != nil {
			return err
		}
		c.address = uint16(uint8(c.address) + index(c.regs))
		return nil
	}
}

// fetchAddressHighIndexed fetches the high address byte and adds the index
// register, remembering whether the result is on another page.
func fetchAddressHighIndexed(index indexFunc) microStep {
	return func(c *CPU) error {
		if err := fetchAddressHigh(c); err != nil {
			return err
		}
		c.base = c.address
		c.address = c.base + uint16(index(c.regs))
		c.pageCrossed = c.base&0xFF00 != c.address&0xFF00
		return nil
	}
}

// readUnfixedAddress reads from the indexed address before the carry was
// added to the high byte.
func readUnfixedAddress(c *CPU) error {
	return c.dummyRead(c.base&0xFF00 | c.address&0x00FF)
}

func readOperand(fn readFunc) microStep {
	return func(c *CPU) error {
		value, err := c.bus.Read(c.address)
		if err != nil {
			return err
		}
		fn(c, value)
		return nil
	}
}

func writeOperand(fn writeFunc) microStep {
	return func(c *CPU) error {
		return c.bus.Write(c.address, fn(c))
	}
}

// Read instructions.

func immediateRead(fn readFunc) []microStep {
	return []microStep{
		func(c *CPU) error {
			value, err := c.fetch()
			if err != nil {
				return err
			}
			fn(c, value)
			return nil
		},
	}
}

func zeroPageRead(fn readFunc) []microStep {
	return []microStep{
		fetchZeroPageAddress,
		readOperand(fn),
	}
}

func zeroPageIndexedRead(index indexFunc, fn readFunc) []microStep {
	return []microStep{
		fetchZeroPageAddress,
		indexZeroPage(index),
		readOperand(fn),
	}
}

func absoluteRead(fn readFunc) []microStep {
	return []microStep{
		fetchAddressLow,
		fetchAddressHigh,
		readOperand(fn),
	}
}

// absoluteIndexedRead takes one cycle less if the indexed address stays on
// the same page.
func absoluteIndexedRead(index indexFunc, fn readFunc) []microStep {
	read := readOperand(fn)
	return []microStep{
		fetchAddressLow,
		fetchAddressHighIndexed(index),
		func(c *CPU) error {
			if c.pageCrossed {
				return readUnfixedAddress(c)
			}
			c.finish()
			return read(c)
		},
		read,
	}
}

// Write instructions.

func zeroPageWrite(fn writeFunc) []microStep {
	return []microStep{
		fetchZeroPageAddress,
		writeOperand(fn),
	}
}

func zeroPageIndexedWrite(index indexFunc, fn writeFunc) []microStep {
	return []microStep{
		fetchZeroPageAddress,
		indexZeroPage(index),
		writeOperand(fn),
	}
}

func absoluteWrite(fn writeFunc) []microStep {
	return []microStep{
		fetchAddressLow,
		fetchAddressHigh,
		writeOperand(fn),
	}
}

func absoluteIndexedWrite(index indexFunc, fn writeFunc) []microStep {
	return []microStep{
		fetchAddressLow,
		fetchAddressHighIndexed(index),
		readUnfixedAddress,
		writeOperand(fn),
	}
}

// Read-modify-write instructions write the unmodified value back in the
// cycle before the modified value is written.

func accumulatorModify(fn modifyFunc) []microStep {
	return []microStep{
		func(c *CPU) error {
			if err := dummyReadPC(c); err != nil {
				return err
			}
			c.regs.A = fn(c, c.regs.A)
			return nil
		},
	}
}

func modifySteps(fn modifyFunc) []microStep {
	return []microStep{
		func(c *CPU) error {
			value, err := c.bus.Read(c.address)
			if err != nil {
				return err
			}
			c.value = value
			return nil
		},
		func(c *CPU) error {
			if err := c.bus.Write(c.address, c.value); err != nil {
				return err
			}
			c.value = fn(c, c.value)
			return nil
		},
		func(c *CPU) error {
			return c.bus.Write(c.address, c.value)
		},
	}
}

func zeroPageModify(fn modifyFunc) []microStep {
	return append([]microStep{
		fetchZeroPageAddress,
	}, modifySteps(fn)...)
}

func zeroPageIndexedModify(index indexFunc, fn modifyFunc) []microStep {
	return append([]microStep{
		fetchZeroPageAddress,
		indexZeroPage(index),
	}, modifySteps(fn)...)
}

func absoluteModify(fn modifyFunc) []microStep {
	return append([]microStep{
		fetchAddressLow,
		fetchAddressHigh,
	}, modifySteps(fn)...)
}

func absoluteIndexedModify(index indexFunc, fn modifyFunc) []microStep {
	return append([]microStep{
		fetchAddressLow,
		fetchAddressHighIndexed(index),
		readUnfixedAddress,
	}, modifySteps(fn)...)
}

// Implied and stack instructions.

func impliedSteps(fn impliedFunc) []microStep {
	return []microStep{
		func(c *CPU) error {
			if err := dummyReadPC(c); err != nil {
				return err
			}
			fn(c)
			return nil
		},
	}
}

func pushSteps(value writeFunc) []microStep {
	return []microStep{
		dummyReadPC,
		func(c *CPU) error {
			return c.push(value(c))
		},
	}
}

func pullSteps(fn readFunc) []microStep {
	return []microStep{
		dummyReadPC,
		incrementStackPointer,
		func(c *CPU) error {
			value, err := c.pull()
			if err != nil {
				return err
			}
			fn(c, value)
			return nil
		},
	}
}

// Control flow instructions.

func jumpAbsoluteSteps() []microStep {
	return []microStep{
		fetchAddressLow,
		func(c *CPU) error {
			high, err := c.bus.Read(c.regs.PC)
			if err != nil {
				return err
			}
			c.regs.PC = uint16(high)<<8 | uint16(c.operand)
			return nil
		},
	}
}

func jumpSubroutineSteps() []microStep {
	return []microStep{
		fetchAddressLow,
		func(c *CPU) error {
			return c.dummyRead(c.regs.StackAddress())
		},
		func(c *CPU) error {
			return c.push(uint8(c.regs.PC >> 8))
		},
		func(c *CPU) error {
			return c.push(uint8(c.regs.PC))
		},
		func(c *CPU) error {
			high, err := c.bus.Read(c.regs.PC)
			if err != nil {
				return err
			}
			c.regs.PC = uint16(high)<<8 | uint16(c.operand)
			return nil
		},
	}
}

func pullProgramCounterLow(c *CPU) error {
	low, err := c.pull()
	if err != nil {
		return err
	}
	c.operand = low
	c.regs.SP++
	return nil
}

func pullProgramCounterHigh(c *CPU) error {
	high, err := c.pull()
	if err != nil {
		return err
	}
	c.regs.PC = uint16(high)<<8 | uint16(c.operand)
	return nil
}

func returnSubroutineSteps() []microStep {
	return []microStep{
		dummyReadPC,
		incrementStackPointer,
		pullProgramCounterLow,
		pullProgramCounterHigh,
		func(c *CPU) error {
			if err := dummyReadPC(c); err != nil {
				return err
			}
			c.regs.PC++
			return nil
		},
	}
}

func returnInterruptSteps() []microStep {
	return []microStep{
		dummyReadPC,
		incrementStackPointer,
		func(c *CPU) error {
			status, err := c.pull()
			if err != nil {
				return err
			}
			c.regs.P = status&^register.Break | register.Unused
			c.regs.SP++
			return nil
		},
		pullProgramCounterLow,
		pullProgramCounterHigh,
	}
}

// interruptSteps pushes the return address and status and loads the program
// counter from the given vector. The break flag is only set in the pushed
// status for BRK.
func interruptSteps(vector uint16, brk bool) []microStep {
	return []microStep{
		func(c *CPU) error {
			return c.push(uint8(c.regs.PC >> 8))
		},
		func(c *CPU) error {
			return c.push(uint8(c.regs.PC))
		},
		func(c *CPU) error {
			status := c.regs.P | register.Unused
			if brk {
				status |= register.Break
			} else {
				status &^= register.Break
			}
			return c.push(status)
		},
		func(c *CPU) error {
			low, err := c.bus.Read(vector)
			if err != nil {
				return err
			}
			c.operand = low
			c.regs.SetFlag(register.InterruptDisable, true)
			return nil
		},
		func(c *CPU) error {
			high, err := c.bus.Read(vector + 1)
			if err != nil {
				return err
			}
			c.regs.PC = uint16(high)<<8 | uint16(c.operand)
			return nil
		},
	}
}

func breakSteps(vector uint16) []microStep {
	return append([]microStep{
		func(c *CPU) error {
			// the byte following BRK is skipped
			_, err := c.fetch()
			return err
		},
	}, interruptSteps(vector, true)...)
}

// nmiSteps replaces the opcode fetch: the first two cycles read the program
// counter without incrementing it.
func nmiSteps(vector uint16) []microStep {
	return append([]microStep{
		dummyReadPC,
		dummyReadPC,
	}, interruptSteps(vector, false)...)
}

// branchSteps takes 2 cycles if the branch is not taken, 3 if it is taken to
// the same page and 4 if the target is on another page.
func branchSteps(taken func(r *register.Registers) bool) []microStep {
	return []microStep{
		func(c *CPU) error {
			offset, err := c.fetch()
			if err != nil {
				return err
			}
			c.operand = offset
			if !taken(c.regs) {
				c.finish()
			}
			return nil
		},
		func(c *CPU) error {
			if err := dummyReadPC(c); err != nil {
				return err
			}
			pc := c.regs.PC
			c.address = pc + uint16(int8(c.operand))
			c.regs.PC = pc&0xFF00 | c.address&0x00FF
			if c.address&0xFF00 == pc&0xFF00 {
				c.finish()
			}
			return nil
		},
		func(c *CPU) error {
			if err := dummyReadPC(c); err != nil {
				return err
			}
			c.regs.PC = c.address
			return nil
		},
	}
}
