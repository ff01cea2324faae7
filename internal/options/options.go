// Package options contains the program options.
package options

// Parameters contains file path options.
type Parameters struct {
	Input string `flag:"i" usage:"input ROM file"`
}

// Flags contains behavior options.
type Flags struct {
	Cycles  uint64 `flag:"cycles" usage:"number of master cycles to run (0: until interrupted)"`
	Frames  uint64 `flag:"frames" usage:"number of video frames to run"`
	Binary  bool   `flag:"binary" usage:"treat input as raw PRG binary without header"`
	Trace   bool   `flag:"trace" usage:"log every executed instruction"`
	Debug   bool   `flag:"debug" usage:"enable debug logging"`
	Quiet   bool   `flag:"q" usage:"quiet mode"`
	NoColor bool   `flag:"nocolor" usage:"print the state report without colors"`
}

// Program options of the emulator.
type Program struct {
	Parameters
	Flags
}
