// Package loader handles cartridge file loading operations.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/nesgoemu/internal/options"
	"github.com/retroenv/retrogolib/arch/system/nes/cartridge"
)

// ErrNoProgram is returned for cartridges without program ROM.
var ErrNoProgram = errors.New("cartridge contains no program ROM")

// Loader handles loading cartridge files from disk.
type Loader struct{}

// New creates a new cartridge loader.
func New() *Loader {
	return &Loader{}
}

// Load loads and parses the input file of the options. It supports the iNES
// format and raw PRG binaries without a header.
func (l *Loader) Load(opts options.Program) (*cartridge.Cartridge, error) {
	file, err := os.Open(opts.Input)
	if err != nil {
		return nil, fmt.Errorf("opening file %s: %w", opts.Input, err)
	}
	defer func() { _ = file.Close() }()

	return l.load(file, opts.Binary)
}

// LoadFromBytes parses a cartridge from a memory buffer.
func (l *Loader) LoadFromBytes(data []byte, binary bool) (*cartridge.Cartridge, error) {
	return l.load(bytes.NewReader(data), binary)
}

func (l *Loader) load(reader io.Reader, binary bool) (*cartridge.Cartridge, error) {
	var cart *cartridge.Cartridge
	var err error

	if binary {
		cart, err = cartridge.LoadBuffer(reader)
	} else {
		cart, err = cartridge.LoadFile(reader)
	}
	if err != nil {
		return nil, fmt.Errorf("loading cartridge: %w", err)
	}

	if len(cart.PRG) == 0 {
		return nil, ErrNoProgram
	}
	return cart, nil
}
