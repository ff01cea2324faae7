// Package scheduler runs the CPU and the video clock in lockstep.
package scheduler

import (
	"context"
	"fmt"
)

// VideoDotsPerCPUCycle is the number of video clock dots per CPU cycle.
const VideoDotsPerCPUCycle = 3

// Stepper is a clock domain that advances by one tick per step.
type Stepper interface {
	Step() error
}

// Scheduler combines the CPU and video clock domains into master cycles.
// Every master cycle runs one CPU cycle followed by three video dots, the CPU
// cycle always completes before any dot of the same master cycle.
type Scheduler struct {
	cpu    Stepper
	video  Stepper
	cycles uint64
}

// New returns a scheduler for the given steppers.
func New(cpu, video Stepper) *Scheduler {
	return &Scheduler{
		cpu:   cpu,
		video: video,
	}
}

// Step runs one master cycle. The first error stops the cycle.
func (s *Scheduler) Step() error {
	if err := s.cpu.Step(); err != nil {
		return fmt.Errorf("cpu cycle %d: %w", s.cycles, err)
	}

	for dot := range VideoDotsPerCPUCycle {
		if err := s.video.Step(); err != nil {
			return fmt.Errorf("video dot %d of master cycle %d: %w", dot, s.cycles, err)
		}
	}

	s.cycles++
	return nil
}

// Cycles returns the number of completed master cycles.
func (s *Scheduler) Cycles() uint64 {
	return s.cycles
}

// Run executes master cycles until the given number of cycles has run, the
// context is cancelled or a step fails. A cycle count of 0 runs until the
// context is cancelled. The optional hook is called after every master cycle.
func (s *Scheduler) Run(ctx context.Context, cycles uint64, hook func() error) error {
	for ran := uint64(0); cycles == 0 || ran < cycles; ran++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := s.Step(); err != nil {
			return err
		}

		if hook != nil {
			if err := hook(); err != nil {
				return err
			}
		}
	}
	return nil
}
