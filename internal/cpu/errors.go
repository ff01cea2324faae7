package cpu

import "fmt"

// UnimplementedOpcodeError is returned when the CPU fetches an opcode that has
// no registered micro step sequence.
type UnimplementedOpcodeError struct {
	Opcode  uint8
	Address uint16
}

func (e *UnimplementedOpcodeError) Error() string {
	return fmt.Sprintf("unimplemented opcode $%02X at $%04X", e.Opcode, e.Address)
}
