package emu

import (
	"fmt"

	"github.com/sarchlab/p5sim/insts"
)

// StepResult represents the result of executing a single instruction.
type StepResult struct {
	// Done is true once the program counter has left the program.
	Done bool

	// Err is set if an error occurred during execution.
	Err error
}

// Emulator executes instructions functionally, one per step, with no
// pipeline timing. It is the reference model the pipeline is checked against.
type Emulator struct {
	regFile *RegFile
	memory  *Memory
	program []insts.Instruction

	pc int

	// Execution state
	instructionCount uint64
	maxInstructions  uint64 // 0 means no limit
}

// EmulatorOption is a functional option for configuring the Emulator.
type EmulatorOption func(*Emulator)

// WithRegFile makes the emulator operate on an existing register file.
func WithRegFile(regFile *RegFile) EmulatorOption {
	return func(e *Emulator) {
		e.regFile = regFile
	}
}

// WithMemory makes the emulator operate on an existing memory.
func WithMemory(memory *Memory) EmulatorOption {
	return func(e *Emulator) {
		e.memory = memory
	}
}

// WithMaxInstructions sets the maximum number of instructions to execute.
// A value of 0 means no limit.
func WithMaxInstructions(max uint64) EmulatorOption {
	return func(e *Emulator) {
		e.maxInstructions = max
	}
}

// NewEmulator creates a new emulator for program.
func NewEmulator(program []insts.Instruction, opts ...EmulatorOption) *Emulator {
	e := &Emulator{
		program: insts.Renumber(program),
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.regFile == nil {
		e.regFile = &RegFile{}
	}
	if e.memory == nil {
		e.memory = NewMemory()
	}

	return e
}

// RegFile returns the emulator's register file.
func (e *Emulator) RegFile() *RegFile {
	return e.regFile
}

// Memory returns the emulator's memory.
func (e *Emulator) Memory() *Memory {
	return e.memory
}

// PC returns the index of the next instruction.
func (e *Emulator) PC() int {
	return e.pc
}

// InstructionCount returns the number of instructions executed.
func (e *Emulator) InstructionCount() uint64 {
	return e.instructionCount
}

// Step executes a single instruction.
func (e *Emulator) Step() StepResult {
	if e.pc < 0 || e.pc >= len(e.program) {
		return StepResult{Done: true}
	}

	if e.maxInstructions > 0 && e.instructionCount >= e.maxInstructions {
		return StepResult{
			Err: fmt.Errorf("max instructions reached at pc=%d", e.pc),
		}
	}

	inst := e.program[e.pc]
	e.execute(inst)
	e.instructionCount++

	return StepResult{Done: e.pc < 0 || e.pc >= len(e.program)}
}

// Run executes instructions until the program counter leaves the program or
// the instruction limit is hit.
func (e *Emulator) Run() error {
	for {
		result := e.Step()
		if result.Err != nil {
			return result.Err
		}
		if result.Done {
			return nil
		}
	}
}

func (e *Emulator) execute(inst insts.Instruction) {
	rs := e.regFile.ReadReg(inst.Rs)
	rt := e.regFile.ReadReg(inst.Rt)
	imm := insts.SignExtend16(inst.Imm)

	switch inst.Op {
	case insts.OpADD:
		e.regFile.WriteReg(inst.Rd, rs+rt)
	case insts.OpSUB:
		e.regFile.WriteReg(inst.Rd, rs-rt)
	case insts.OpLW:
		e.regFile.WriteReg(inst.Rt, e.memory.Read(rs+imm))
	case insts.OpSW:
		e.memory.Write(rs+imm, rt)
	case insts.OpBEQ:
		if rs == rt {
			e.pc = inst.BranchTarget()
			return
		}
	}

	e.pc++
}
