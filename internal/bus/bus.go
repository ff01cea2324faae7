// Package bus implements the CPU address bus of a NES with a fixed NROM
// cartridge mapping: mirrored internal RAM and mirrored PRG-ROM.
package bus

import (
	"errors"
	"fmt"

	"github.com/retroenv/retrogolib/arch/system/nes"
)

const (
	// RAMSize is the size of the internal working RAM.
	RAMSize = 0x0800
	// RAMMirrorEnd is the first address after the RAM mirror region.
	RAMMirrorEnd = 0x2000

	// PRGBankSize is the size of a single PRG-ROM bank.
	PRGBankSize = 0x4000
)

// ErrInvalidROMSize is returned for PRG-ROM images that are not a power of two
// multiple of the PRG bank size.
var ErrInvalidROMSize = errors.New("invalid PRG-ROM size")

// romBase is the first address of the PRG-ROM window.
var romBase = uint16(nes.CodeBaseAddress)

// UnmappedAddressError is returned for bus accesses outside of any mapped
// window.
type UnmappedAddressError struct {
	Address uint16
	Write   bool
}

func (e *UnmappedAddressError) Error() string {
	if e.Write {
		return fmt.Sprintf("write to unmapped address $%04X", e.Address)
	}
	return fmt.Sprintf("read from unmapped address $%04X", e.Address)
}

// Bus resolves CPU addresses to RAM and PRG-ROM.
type Bus struct {
	ram [RAMSize]byte
	prg []byte
}

// New returns a bus with zeroed RAM and a private copy of the PRG-ROM.
func New(prg []byte) (*Bus, error) {
	if err := validateROMSize(len(prg)); err != nil {
		return nil, err
	}

	b := &Bus{
		prg: make([]byte, len(prg)),
	}
	copy(b.prg, prg)
	return b, nil
}

func validateROMSize(size int) error {
	if size == 0 || size%PRGBankSize != 0 {
		return fmt.Errorf("%w: %d bytes", ErrInvalidROMSize, size)
	}
	banks := size / PRGBankSize
	if banks&(banks-1) != 0 {
		return fmt.Errorf("%w: %d banks is not a power of two", ErrInvalidROMSize, banks)
	}
	return nil
}

// Read returns the byte at the given address.
func (b *Bus) Read(address uint16) (uint8, error) {
	switch {
	case address < RAMMirrorEnd:
		return b.ram[address%RAMSize], nil

	case address >= romBase:
		return b.prg[b.prgIndex(address)], nil

	default:
		return 0, &UnmappedAddressError{Address: address}
	}
}

// Write stores a byte at the given address. Writes to the PRG-ROM window are
// discarded.
func (b *Bus) Write(address uint16, value uint8) error {
	switch {
	case address < RAMMirrorEnd:
		b.ram[address%RAMSize] = value
		return nil

	case address >= romBase:
		return nil

	default:
		return &UnmappedAddressError{Address: address, Write: true}
	}
}

// Read16 reads a little endian word. The address of the high byte wraps at
// the end of the address space, the 6502 page wrap bug is not emulated.
func (b *Bus) Read16(address uint16) (uint16, error) {
	low, err := b.Read(address)
	if err != nil {
		return 0, err
	}
	high, err := b.Read(address + 1)
	if err != nil {
		return 0, err
	}
	return uint16(high)<<8 | uint16(low), nil
}

// RAM returns a copy of the internal RAM.
func (b *Bus) RAM() []byte {
	ram := make([]byte, RAMSize)
	copy(ram, b.ram[:])
	return ram
}

// PRGSize returns the size of the mapped PRG-ROM.
func (b *Bus) PRGSize() int {
	return len(b.prg)
}

func (b *Bus) prgIndex(address uint16) int {
	return int(address-romBase) % len(b.prg)
}
