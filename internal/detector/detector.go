// Package detector handles ROM file format detection.
package detector

import (
	"path/filepath"
	"strings"

	"github.com/retroenv/nesgoemu/internal/options"
	"github.com/retroenv/retrogolib/log"
)

// Format is the container format of a ROM file.
type Format int

// Supported ROM file formats.
const (
	INES   Format = iota // iNES file with a 16 byte header
	Binary               // raw PRG-ROM without header
)

func (f Format) String() string {
	switch f {
	case INES:
		return "ines"
	case Binary:
		return "binary"
	default:
		return "unknown"
	}
}

// Detector handles ROM format detection from file extensions and options.
type Detector struct {
	logger *log.Logger
}

// New creates a new format detector.
func New(logger *log.Logger) *Detector {
	return &Detector{
		logger: logger,
	}
}

// Detect determines the ROM format from options or the input file name.
// The binary option always selects the raw format, otherwise the format is
// derived from the file extension.
func (d *Detector) Detect(opts options.Program) Format {
	if opts.Binary {
		return Binary
	}

	format := d.detectFromFile(opts.Input)
	d.logger.Debug("Auto-detected ROM format",
		log.Stringer("format", format),
		log.String("file", opts.Input))
	return format
}

// detectFromFile determines the format based on the file extension.
func (d *Detector) detectFromFile(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".bin", ".prg":
		return Binary
	default:
		return INES
	}
}
