// Package core provides the cycle-accurate CPU core model.
// It wraps the pipeline implementation to provide a high-level interface.
package core

import (
	"github.com/sarchlab/p5sim/emu"
	"github.com/sarchlab/p5sim/insts"
	"github.com/sarchlab/p5sim/timing/config"
	"github.com/sarchlab/p5sim/timing/pipeline"
)

// Stats holds performance statistics for the core.
type Stats struct {
	// Cycles is the total number of cycles simulated.
	Cycles uint64
	// Instructions is the number of instructions retired.
	Instructions uint64
	// Stalls is the number of load-use stall cycles.
	Stalls uint64
	// Flushes is the number of taken-branch flushes.
	Flushes uint64
	// Forwards is the number of cycles in which an operand was forwarded.
	Forwards uint64
}

// Result is the outcome of a complete run.
type Result struct {
	Stats

	// CPI is cycles per retired instruction, 0 if nothing retired.
	CPI float64

	// LimitReached is set when the run stopped on the cycle limit before
	// the program drained.
	LimitReached bool

	// Registers is the final register file.
	Registers [insts.NumRegs]int32

	// Memory holds every written address and its final value.
	Memory map[int32]int32
}

// Core represents a cycle-accurate CPU core model.
// It wraps a 5-stage pipeline and provides a simple interface for simulation.
type Core struct {
	// Pipeline is the underlying 5-stage pipeline.
	Pipeline *pipeline.Pipeline

	// Shared resources
	regFile *emu.RegFile
	memory  *emu.Memory
}

// NewCore creates a new Core running program on the given register file and
// memory.
func NewCore(
	program []insts.Instruction,
	regFile *emu.RegFile,
	memory *emu.Memory,
	opts ...pipeline.PipelineOption,
) *Core {
	return &Core{
		Pipeline: pipeline.NewPipeline(program, regFile, memory, opts...),
		regFile:  regFile,
		memory:   memory,
	}
}

// NewCoreFromConfig creates a Core with fresh architectural state initialized
// from cfg. The cycle limit in cfg is applied before opts.
func NewCoreFromConfig(
	program []insts.Instruction,
	cfg *config.SimConfig,
	opts ...pipeline.PipelineOption,
) (*Core, error) {
	regFile := &emu.RegFile{}
	memory := emu.NewMemory()

	if err := cfg.Apply(regFile, memory); err != nil {
		return nil, err
	}

	allOpts := append([]pipeline.PipelineOption{
		pipeline.WithMaxCycles(cfg.MaxCycles),
	}, opts...)

	return NewCore(program, regFile, memory, allOpts...), nil
}

// RegFile returns the core's register file.
func (c *Core) RegFile() *emu.RegFile {
	return c.regFile
}

// Memory returns the core's data memory.
func (c *Core) Memory() *emu.Memory {
	return c.memory
}

// Tick executes one pipeline cycle.
func (c *Core) Tick() {
	c.Pipeline.Tick()
}

// Done returns true once the program has drained from the pipeline.
func (c *Core) Done() bool {
	return c.Pipeline.Done()
}

// Stats returns performance statistics for the core.
func (c *Core) Stats() Stats {
	pipeStats := c.Pipeline.Stats()
	return Stats{
		Cycles:       pipeStats.Cycles,
		Instructions: pipeStats.Instructions,
		Stalls:       pipeStats.Stalls,
		Flushes:      pipeStats.Flushes,
		Forwards:     pipeStats.DataHazards,
	}
}

// Run executes the core until the program drains or the cycle limit is hit.
func (c *Core) Run() Result {
	c.Pipeline.Run()
	return c.Result()
}

// Result reports the current statistics and architectural state.
func (c *Core) Result() Result {
	return Result{
		Stats:        c.Stats(),
		CPI:          c.Pipeline.Stats().CPI(),
		LimitReached: c.Pipeline.LimitReached(),
		Registers:    c.regFile.Snapshot(),
		Memory:       c.memory.Snapshot(),
	}
}

// RunCycles executes the core for the specified number of cycles.
// Returns true if still running, false if done.
func (c *Core) RunCycles(cycles uint64) bool {
	return c.Pipeline.RunCycles(cycles)
}

// Reset clears all pipeline state. Architectural state is kept.
func (c *Core) Reset() {
	c.Pipeline.Reset()
}
